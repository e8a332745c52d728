package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"snippetbox/internal/common"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func pgUniqueViolation() error {
	return &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
}

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, common.ErrNotFound},
		{"unique violation", pgUniqueViolation(), common.ErrDuplicate},
		{"connection exception", &pgconn.PgError{Code: "08006"}, common.ErrStoreUnavailable},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, common.ErrStoreUnavailable},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, common.ErrStoreUnavailable},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, common.ErrStoreUnavailable},
		{"bad conn", driver.ErrBadConn, common.ErrStoreUnavailable},
		{"conn done", sql.ErrConnDone, common.ErrStoreUnavailable},
		{"deadline", context.DeadlineExceeded, context.DeadlineExceeded},
		{"canceled", context.Canceled, context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TranslateError("op", tt.err)
			assert.True(t, errors.Is(got, tt.want), "got %v", got)
			assert.Contains(t, got.Error(), "op: ")
		})
	}
}

func TestTranslateError_Other(t *testing.T) {
	raw := &pgconn.PgError{Code: "42601", Message: "syntax error"}
	got := TranslateError("op", raw)

	var pgErr *pgconn.PgError
	assert.True(t, errors.As(got, &pgErr))
	for _, sentinel := range []error{common.ErrNotFound, common.ErrDuplicate, common.ErrStoreUnavailable} {
		assert.False(t, errors.Is(got, sentinel))
	}
	assert.Equal(t, 500, common.HTTPStatusFromError(got))
}

func TestTranslateError_Nil(t *testing.T) {
	assert.NoError(t, TranslateError("op", nil))
}
