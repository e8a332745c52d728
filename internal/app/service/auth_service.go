package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"snippetbox/internal/common"
	"snippetbox/internal/common/security"
	"snippetbox/internal/domain/model"
	"snippetbox/internal/domain/repository"
	"snippetbox/internal/platform/database"

	"github.com/rs/zerolog"
)

// ErrRegistrationFailed wraps store failures during registration other than
// a duplicate account.
var ErrRegistrationFailed = errors.New("registration failed")

const tokenTypeBearer = "bearer"

type AuthService struct {
	tx     database.Transactor
	users  repository.UserRepository
	roles  repository.RoleRepository
	hasher *security.PasswordHasher
	tokens *security.TokenService
	log    zerolog.Logger

	dummyOnce sync.Once
	dummySalt string
	dummyHash string
}

func NewAuthService(
	tx database.Transactor,
	users repository.UserRepository,
	roles repository.RoleRepository,
	hasher *security.PasswordHasher,
	tokens *security.TokenService,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		tx:     tx,
		users:  users,
		roles:  roles,
		hasher: hasher,
		tokens: tokens,
		log:    log.With().Str("component", "auth").Logger(),
	}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type RegisterResponse struct {
	ID      int64      `json:"id"`
	Role    model.Role `json:"role"`
	Message string     `json:"message"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, common.Validationf("name is required")
	}
	if err := validateEmail(req.Email); err != nil {
		return nil, err
	}
	if req.Password == "" {
		return nil, common.Validationf("password is required")
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	// bcrypt is slow; keep it outside the transaction.
	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}
	hash, err := s.hasher.Hash(req.Password, salt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}

	user := &model.User{
		Name:           name,
		Email:          req.Email,
		HashedPassword: hash,
		Salt:           salt,
		Role:           role,
	}
	err = s.tx.WithinTx(ctx, func(q database.Querier) error {
		roleID, err := s.roles.Ensure(ctx, q, role)
		if err != nil {
			return err
		}
		user.RoleID = roleID
		_, err = s.users.Create(ctx, q, user)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicate) {
			return nil, common.ErrDuplicate
		}
		return nil, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}

	s.log.Info().Int64("user_id", user.ID).Str("role", role.String()).Msg("user registered")
	return &RegisterResponse{ID: user.ID, Role: role, Message: "User registered successfully"}, nil
}

// Login never tells the caller whether the email or the password was wrong.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	if req.Email == "" || req.Password == "" {
		s.burnHash(req.Password)
		return nil, common.ErrUnauthorized
	}

	user, err := s.users.FindByEmail(ctx, nil, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.burnHash(req.Password)
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !s.hasher.Verify(req.Password, user.Salt, user.HashedPassword) {
		return nil, common.ErrUnauthorized
	}

	token, err := s.tokens.Issue(user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &TokenResponse{
		AccessToken: token,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   int(s.tokens.TTL().Seconds()),
	}, nil
}

func (s *AuthService) GetUser(ctx context.Context, id int64) (*model.User, error) {
	if id <= 0 {
		return nil, common.ErrNotFound
	}
	return s.users.FindByID(ctx, nil, id)
}

// burnHash spends one bcrypt comparison so a missing account costs the same
// as a wrong password.
func (s *AuthService) burnHash(password string) {
	s.dummyOnce.Do(func() {
		salt, err := s.hasher.GenerateSalt()
		if err != nil {
			salt = "dummy-salt"
		}
		hash, err := s.hasher.Hash("dummy-password", salt)
		if err != nil {
			s.log.Error().Err(err).Msg("failed to prepare dummy hash")
		}
		s.dummySalt, s.dummyHash = salt, hash
	})
	s.hasher.Verify(password, s.dummySalt, s.dummyHash)
}

func validateEmail(email string) error {
	if email == "" {
		return common.Validationf("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return common.Validationf("invalid email address")
	}
	return nil
}
