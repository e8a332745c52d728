package repository

import (
	"context"
	"database/sql"
	"fmt"

	"snippetbox/internal/domain/model"
	"snippetbox/internal/platform/database"
)

// RoleRepository lazily creates one row per role name.
type RoleRepository interface {
	// Ensure returns the id of the row for role, inserting it if absent.
	// Concurrent callers for the same role all receive the same id.
	Ensure(ctx context.Context, q database.Querier, role model.Role) (int64, error)
}

type pgRoleRepository struct {
	db *sql.DB
}

func NewPgRoleRepository(db *sql.DB) RoleRepository {
	return &pgRoleRepository{db: db}
}

func (r *pgRoleRepository) Ensure(ctx context.Context, q database.Querier, role model.Role) (int64, error) {
	if !role.Valid() {
		return 0, fmt.Errorf("pgRoleRepository.Ensure: unknown role %q", role)
	}
	if q == nil {
		q = r.db
	}

	// A concurrent insert of the same name resolves to DO NOTHING here, so the
	// select below always sees exactly one row.
	_, err := q.ExecContext(ctx, `INSERT INTO roles (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, string(role))
	if err != nil {
		return 0, database.TranslateError("pgRoleRepository.Ensure insert", err)
	}

	var id int64
	if err := q.QueryRowContext(ctx, `SELECT id FROM roles WHERE name = $1`, string(role)).Scan(&id); err != nil {
		return 0, database.TranslateError("pgRoleRepository.Ensure select", err)
	}
	return id, nil
}
