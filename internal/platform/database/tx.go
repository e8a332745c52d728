package database

import (
	"context"
	"database/sql"
)

// Querier is the part of *sql.DB and *sql.Tx that repositories use.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Transactor runs fn as one unit of work. fn's error is returned unchanged.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(q Querier) error) error
}

type SQLTransactor struct {
	db *sql.DB
}

func NewTransactor(db *sql.DB) *SQLTransactor {
	return &SQLTransactor{db: db}
}

// WithinTx commits when fn returns nil and rolls back on error or panic.
// A cancelled ctx aborts the transaction inside database/sql.
func (t *SQLTransactor) WithinTx(ctx context.Context, fn func(q Querier) error) (err error) {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return TranslateError("begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = TranslateError("commit transaction", cerr)
		}
	}()

	return fn(tx)
}
