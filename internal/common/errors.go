package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound           = errors.New("requested resource not found")
	ErrUnauthorized       = errors.New("could not validate credentials")
	ErrForbidden          = errors.New("not enough permissions")
	ErrValidation         = errors.New("validation failed")
	ErrDuplicate          = errors.New("resource with such credentials already exists")
	ErrStoreUnavailable   = errors.New("storage temporarily unavailable")
	ErrServiceUnavailable = errors.New("service unavailable") // e.g. directory upstream down
	ErrInternalServer     = errors.New("internal server error")
)

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrValidation), errors.Is(err, ErrDuplicate):
		return http.StatusBadRequest
	case errors.Is(err, ErrStoreUnavailable), errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// PublicMessage is the text a client may see for err. Validation errors carry
// the detail we wrote ourselves; everything else collapses to its sentinel.
func PublicMessage(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return err.Error()
	case errors.Is(err, ErrDuplicate):
		return ErrDuplicate.Error()
	case errors.Is(err, ErrNotFound):
		return ErrNotFound.Error()
	case errors.Is(err, ErrUnauthorized):
		return ErrUnauthorized.Error()
	case errors.Is(err, ErrForbidden):
		return ErrForbidden.Error()
	}
	if HTTPStatusFromError(err) == http.StatusServiceUnavailable {
		return "Service unavailable"
	}
	return "Internal server error"
}

// Validationf builds an ErrValidation carrying a client-facing detail.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
