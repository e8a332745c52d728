package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"snippetbox/internal/common"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// TranslateError maps driver errors onto the common sentinels and prefixes op.
// The driver error stays in the chain for logging.
func TranslateError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", op, common.ErrNotFound)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, driver.ErrBadConn), errors.Is(err, sql.ErrConnDone), pgconn.Timeout(err):
		return fmt.Errorf("%s: %w: %w", op, common.ErrStoreUnavailable, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == uniqueViolation:
			return fmt.Errorf("%s: %w: %w", op, common.ErrDuplicate, err)
		case isTransient(pgErr.Code):
			return fmt.Errorf("%s: %w: %w", op, common.ErrStoreUnavailable, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%s: %w: %w", op, common.ErrStoreUnavailable, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}

// isTransient covers connection exceptions, serialization failures, deadlocks
// and admin shutdown.
func isTransient(code string) bool {
	switch {
	case strings.HasPrefix(code, "08"):
		return true
	case code == "40001", code == "40P01", code == "57P01":
		return true
	}
	return false
}
