package repository

import (
	"context"
	"database/sql"

	"snippetbox/internal/domain/model"
	"snippetbox/internal/platform/database"
)

// SnippetRepository stores snippets. Rows returned by FindBySharedURL are
// always public.
type SnippetRepository interface {
	Create(ctx context.Context, q database.Querier, s *model.Snippet) error
	FindByID(ctx context.Context, q database.Querier, id int64) (*model.Snippet, error)
	// FindByIDForUpdate locks the row until q's transaction ends.
	FindByIDForUpdate(ctx context.Context, q database.Querier, id int64) (*model.Snippet, error)
	List(ctx context.Context, q database.Querier, skip, limit int) ([]model.Snippet, error)
	Update(ctx context.Context, q database.Querier, s *model.Snippet) error
	Delete(ctx context.Context, q database.Querier, id int64) error
	FindBySharedURL(ctx context.Context, q database.Querier, sharedURL string) (*model.Snippet, error)
}

type pgSnippetRepository struct {
	db *sql.DB
}

func NewPgSnippetRepository(db *sql.DB) SnippetRepository {
	return &pgSnippetRepository{db: db}
}

func (r *pgSnippetRepository) querier(q database.Querier) database.Querier {
	if q != nil {
		return q
	}
	return r.db
}

const selectSnippet = `SELECT id, title, content, is_private, created_at, shared_url FROM snippets`

func (r *pgSnippetRepository) Create(ctx context.Context, q database.Querier, s *model.Snippet) error {
	query := `INSERT INTO snippets (title, content, is_private, shared_url)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id, created_at`
	err := r.querier(q).QueryRowContext(ctx, query, s.Title, s.Content, s.IsPrivate, s.SharedURL).
		Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return database.TranslateError("pgSnippetRepository.Create", err)
	}
	return nil
}

func (r *pgSnippetRepository) FindByID(ctx context.Context, q database.Querier, id int64) (*model.Snippet, error) {
	s, err := scanSnippet(r.querier(q).QueryRowContext(ctx, selectSnippet+` WHERE id = $1`, id))
	if err != nil {
		return nil, database.TranslateError("pgSnippetRepository.FindByID", err)
	}
	return s, nil
}

func (r *pgSnippetRepository) FindByIDForUpdate(ctx context.Context, q database.Querier, id int64) (*model.Snippet, error) {
	s, err := scanSnippet(r.querier(q).QueryRowContext(ctx, selectSnippet+` WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, database.TranslateError("pgSnippetRepository.FindByIDForUpdate", err)
	}
	return s, nil
}

func (r *pgSnippetRepository) List(ctx context.Context, q database.Querier, skip, limit int) ([]model.Snippet, error) {
	rows, err := r.querier(q).QueryContext(ctx, selectSnippet+` ORDER BY id OFFSET $1 LIMIT $2`, skip, limit)
	if err != nil {
		return nil, database.TranslateError("pgSnippetRepository.List", err)
	}
	defer rows.Close()

	snippets := make([]model.Snippet, 0, limit)
	for rows.Next() {
		s, err := scanSnippet(rows)
		if err != nil {
			return nil, database.TranslateError("pgSnippetRepository.List scan", err)
		}
		snippets = append(snippets, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, database.TranslateError("pgSnippetRepository.List rows", err)
	}
	return snippets, nil
}

func (r *pgSnippetRepository) Update(ctx context.Context, q database.Querier, s *model.Snippet) error {
	query := `UPDATE snippets SET title = $1, content = $2, is_private = $3, shared_url = $4
	          WHERE id = $5`
	res, err := r.querier(q).ExecContext(ctx, query, s.Title, s.Content, s.IsPrivate, s.SharedURL, s.ID)
	if err != nil {
		return database.TranslateError("pgSnippetRepository.Update", err)
	}
	return expectOneRow("pgSnippetRepository.Update", res)
}

func (r *pgSnippetRepository) Delete(ctx context.Context, q database.Querier, id int64) error {
	res, err := r.querier(q).ExecContext(ctx, `DELETE FROM snippets WHERE id = $1`, id)
	if err != nil {
		return database.TranslateError("pgSnippetRepository.Delete", err)
	}
	return expectOneRow("pgSnippetRepository.Delete", res)
}

func (r *pgSnippetRepository) FindBySharedURL(ctx context.Context, q database.Querier, sharedURL string) (*model.Snippet, error) {
	s, err := scanSnippet(r.querier(q).QueryRowContext(ctx,
		selectSnippet+` WHERE shared_url = $1 AND is_private = FALSE`, sharedURL))
	if err != nil {
		return nil, database.TranslateError("pgSnippetRepository.FindBySharedURL", err)
	}
	return s, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnippet(row rowScanner) (*model.Snippet, error) {
	s := &model.Snippet{}
	var shared sql.NullString
	if err := row.Scan(&s.ID, &s.Title, &s.Content, &s.IsPrivate, &s.CreatedAt, &shared); err != nil {
		return nil, err
	}
	if shared.Valid {
		s.SharedURL = &shared.String
	}
	return s, nil
}

func expectOneRow(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return database.TranslateError(op, err)
	}
	if n == 0 {
		return database.TranslateError(op, sql.ErrNoRows)
	}
	return nil
}
