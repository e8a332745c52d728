package service

import (
	"context"
	"errors"
	"testing"

	"snippetbox/internal/common"
	"snippetbox/internal/common/security"
	"snippetbox/internal/domain/model"
	"snippetbox/internal/domain/repository"
	"snippetbox/internal/platform/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// =============================================================================
// Register
// =============================================================================

func TestRegister_Success(t *testing.T) {
	store := repository.NewMemoryStore()
	svc, _ := newTestAuthService(t, store)

	resp, err := svc.Register(context.Background(), RegisterRequest{Name: "alice", Email: "a@b.com", Password: "pw1", Role: "user"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, resp.Role)
	assert.NotZero(t, resp.ID)

	u, err := store.Users().FindByEmail(context.Background(), nil, "a@b.com")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", u.HashedPassword)
	assert.NotEmpty(t, u.Salt)
	assert.Equal(t, model.RoleUser, u.Role)
}

func TestRegister_DefaultRoleIsUser(t *testing.T) {
	svc, _ := newTestAuthService(t, repository.NewMemoryStore())

	resp, err := svc.Register(context.Background(), RegisterRequest{Name: "bob", Email: "bob@b.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, resp.Role)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService(t, repository.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Name: "alice", Email: "a@b.com", Password: "pw1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Name: "alice2", Email: "a@b.com", Password: "pw2"})
	assert.True(t, errors.Is(err, common.ErrDuplicate))
	assert.Equal(t, 400, common.HTTPStatusFromError(err))
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestAuthService(t, repository.NewMemoryStore())

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"unknown role", RegisterRequest{Name: "a", Email: "a@b.com", Password: "pw", Role: "superuser"}},
		{"missing name", RegisterRequest{Email: "a@b.com", Password: "pw"}},
		{"missing email", RegisterRequest{Name: "a", Password: "pw"}},
		{"bad email", RegisterRequest{Name: "a", Email: "not-an-email", Password: "pw"}},
		{"display name email", RegisterRequest{Name: "a", Email: "Alice <a@b.com>", Password: "pw"}},
		{"missing password", RegisterRequest{Name: "a", Email: "a@b.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.req)
			assert.True(t, errors.Is(err, common.ErrValidation), "got %v", err)
		})
	}
}

func TestRegister_StoreFailure(t *testing.T) {
	store := repository.NewMemoryStore()
	hasher, _ := security.NewPasswordHasher(bcrypt.MinCost)
	tokens, _ := security.NewTokenService([]byte(testSecret), 0)
	users := &mockUserRepository{
		CreateFunc: func(ctx context.Context, q database.Querier, user *model.User) (int64, error) {
			return 0, common.ErrStoreUnavailable
		},
	}
	svc := NewAuthService(store.Transactor(), users, store.Roles(), hasher, tokens, nopLogger)

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "a", Email: "a@b.com", Password: "pw"})
	assert.True(t, errors.Is(err, ErrRegistrationFailed))
	assert.Equal(t, 503, common.HTTPStatusFromError(err))
	assert.Equal(t, "Service unavailable", common.PublicMessage(err))
}

// =============================================================================
// Login
// =============================================================================

func TestLogin_IssuesTokenWithRole(t *testing.T) {
	svc, tokens := newTestAuthService(t, repository.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Name: "alice", Email: "a@b.com", Password: "pw1", Role: "user"})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, LoginRequest{Email: "a@b.com", Password: "pw1"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 900, resp.ExpiresIn)

	claims, err := tokens.Verify(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", claims.Subject)
	assert.Equal(t, model.RoleUser, claims.Role)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newTestAuthService(t, repository.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Name: "alice", Email: "a@b.com", Password: "pw1"})
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, LoginRequest{Email: "a@b.com", Password: "wrong"})
	_, unknownUser := svc.Login(ctx, LoginRequest{Email: "nobody@b.com", Password: "pw1"})
	_, empty := svc.Login(ctx, LoginRequest{})

	for _, err := range []error{wrongPassword, unknownUser, empty} {
		assert.Equal(t, common.ErrUnauthorized, err)
	}
}

func TestLogin_StoreFailureIsNotAuthFailure(t *testing.T) {
	store := repository.NewMemoryStore()
	hasher, _ := security.NewPasswordHasher(bcrypt.MinCost)
	tokens, _ := security.NewTokenService([]byte(testSecret), 0)
	users := &mockUserRepository{
		FindByEmailFunc: func(ctx context.Context, q database.Querier, email string) (*model.User, error) {
			return nil, common.ErrStoreUnavailable
		},
	}
	svc := NewAuthService(store.Transactor(), users, store.Roles(), hasher, tokens, nopLogger)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "pw"})
	assert.True(t, errors.Is(err, common.ErrStoreUnavailable))
	assert.False(t, errors.Is(err, common.ErrUnauthorized))
}

// =============================================================================
// GetUser
// =============================================================================

func TestGetUser(t *testing.T) {
	svc, _ := newTestAuthService(t, repository.NewMemoryStore())
	ctx := context.Background()

	resp, err := svc.Register(ctx, RegisterRequest{Name: "root", Email: "root@b.com", Password: "pw", Role: "ADMIN"})
	require.NoError(t, err)

	u, err := svc.GetUser(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "root", u.Name)
	assert.Equal(t, model.RoleAdmin, u.Role)

	_, err = svc.GetUser(ctx, resp.ID+100)
	assert.True(t, errors.Is(err, common.ErrNotFound))
	_, err = svc.GetUser(ctx, 0)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}
