package repository

import (
	"context"
	"database/sql"

	"snippetbox/internal/domain/model"
	"snippetbox/internal/platform/database"
)

// UserRepository stores accounts. q may be a transaction; nil uses the pool.
type UserRepository interface {
	Create(ctx context.Context, q database.Querier, user *model.User) (int64, error)
	FindByEmail(ctx context.Context, q database.Querier, email string) (*model.User, error)
	FindByID(ctx context.Context, q database.Querier, id int64) (*model.User, error)
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

func (r *pgUserRepository) querier(q database.Querier) database.Querier {
	if q != nil {
		return q
	}
	return r.db
}

func (r *pgUserRepository) Create(ctx context.Context, q database.Querier, user *model.User) (int64, error) {
	query := `INSERT INTO users (name, email, hashed_password, salt, role_id)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`
	var id int64
	err := r.querier(q).QueryRowContext(ctx, query,
		user.Name, user.Email, user.HashedPassword, user.Salt, user.RoleID,
	).Scan(&id)
	if err != nil {
		return 0, database.TranslateError("pgUserRepository.Create", err)
	}
	user.ID = id
	return id, nil
}

const selectUser = `SELECT u.id, u.name, u.email, u.hashed_password, u.salt, u.role_id, r.name
	          FROM users u
	          JOIN roles r ON r.id = u.role_id`

func (r *pgUserRepository) FindByEmail(ctx context.Context, q database.Querier, email string) (*model.User, error) {
	user, err := scanUser(r.querier(q).QueryRowContext(ctx, selectUser+` WHERE u.email = $1`, email))
	if err != nil {
		return nil, database.TranslateError("pgUserRepository.FindByEmail", err)
	}
	return user, nil
}

func (r *pgUserRepository) FindByID(ctx context.Context, q database.Querier, id int64) (*model.User, error) {
	user, err := scanUser(r.querier(q).QueryRowContext(ctx, selectUser+` WHERE u.id = $1`, id))
	if err != nil {
		return nil, database.TranslateError("pgUserRepository.FindByID", err)
	}
	return user, nil
}

func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	var role string
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.HashedPassword, &user.Salt, &user.RoleID, &role); err != nil {
		return nil, err
	}
	user.Role = model.Role(role)
	return user, nil
}
