package service

import (
	"context"
	"io"
	"testing"

	"snippetbox/internal/common/security"
	"snippetbox/internal/domain/model"
	"snippetbox/internal/domain/repository"
	"snippetbox/internal/platform/database"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "service-test-secret-at-least-32-bytes"

var nopLogger = zerolog.New(io.Discard)

func newTestAuthService(t *testing.T, store *repository.MemoryStore) (*AuthService, *security.TokenService) {
	t.Helper()
	hasher, err := security.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	tokens, err := security.NewTokenService([]byte(testSecret), security.DefaultTokenTTL)
	require.NoError(t, err)
	return NewAuthService(store.Transactor(), store.Users(), store.Roles(), hasher, tokens, nopLogger), tokens
}

// mockUserRepository lets a test inject store failures.
type mockUserRepository struct {
	CreateFunc      func(ctx context.Context, q database.Querier, user *model.User) (int64, error)
	FindByEmailFunc func(ctx context.Context, q database.Querier, email string) (*model.User, error)
	FindByIDFunc    func(ctx context.Context, q database.Querier, id int64) (*model.User, error)
}

func (m *mockUserRepository) Create(ctx context.Context, q database.Querier, user *model.User) (int64, error) {
	return m.CreateFunc(ctx, q, user)
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, q database.Querier, email string) (*model.User, error) {
	return m.FindByEmailFunc(ctx, q, email)
}

func (m *mockUserRepository) FindByID(ctx context.Context, q database.Querier, id int64) (*model.User, error) {
	return m.FindByIDFunc(ctx, q, id)
}

type mockSnippetRepository struct {
	repository.SnippetRepository
	CreateFunc func(ctx context.Context, q database.Querier, s *model.Snippet) error
}

func (m *mockSnippetRepository) Create(ctx context.Context, q database.Querier, s *model.Snippet) error {
	return m.CreateFunc(ctx, q, s)
}
