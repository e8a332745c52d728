package security

import (
	"errors"
	"fmt"
	"time"

	"snippetbox/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
	jwxjwt "github.com/lestrrat-go/jwx/v2/jwt"
)

// SigningAlgorithm is the only algorithm tokens are issued with or accepted under.
const SigningAlgorithm = "HS256"

const DefaultTokenTTL = 15 * time.Minute

const roleClaim = "role"

var ErrInvalidToken = errors.New("invalid token")

// Claims is the verified identity carried by an access token.
type Claims struct {
	Subject   string     `json:"sub"`
	Role      model.Role `json:"role"`
	ExpiresAt time.Time  `json:"exp"`
}

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues HS256 access tokens and verifies them.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	auth   *jwtauth.JWTAuth
}

type TokenOption func(*TokenService)

// WithClock replaces time.Now for both issuance and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

func NewTokenService(secret []byte, ttl time.Duration, opts ...TokenOption) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret must not be empty")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	s := &TokenService{secret: secret, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.auth = jwtauth.New(SigningAlgorithm, secret, nil,
		jwxjwt.WithClock(jwxjwt.ClockFunc(s.now)),
		jwxjwt.WithRequiredClaim(jwxjwt.ExpirationKey),
		jwxjwt.WithRequiredClaim(jwxjwt.SubjectKey),
		jwxjwt.WithRequiredClaim(roleClaim),
	)
	return s, nil
}

// JWTAuth exposes the verifier used by the HTTP middleware.
func (s *TokenService) JWTAuth() *jwtauth.JWTAuth {
	return s.auth
}

func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for subject and role with the default lifetime.
func (s *TokenService) Issue(subject string, role model.Role) (string, error) {
	return s.IssueWithTTL(subject, role, s.ttl)
}

func (s *TokenService) IssueWithTTL(subject string, role model.Role, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("token subject must not be empty")
	}
	if !role.Valid() {
		return "", fmt.Errorf("cannot issue token for role %q", role)
	}
	now := s.now()
	claims := tokenClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks signature, algorithm, expiry and required claims. Every
// failure is reported as ErrInvalidToken.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	token, err := jwtauth.VerifyToken(s.auth, tokenString)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return ClaimsFromToken(token)
}

// ClaimsFromToken extracts claims from a token that has already been verified.
func ClaimsFromToken(token jwxjwt.Token) (*Claims, error) {
	if token == nil {
		return nil, ErrInvalidToken
	}
	raw, ok := token.Get(roleClaim)
	if !ok {
		return nil, fmt.Errorf("%w: role claim is missing", ErrInvalidToken)
	}
	role, ok := raw.(string)
	if !ok || role == "" {
		return nil, fmt.Errorf("%w: role claim is not a string", ErrInvalidToken)
	}
	if token.Subject() == "" {
		return nil, fmt.Errorf("%w: sub claim is missing", ErrInvalidToken)
	}
	if token.Expiration().IsZero() {
		return nil, fmt.Errorf("%w: exp claim is missing", ErrInvalidToken)
	}
	return &Claims{
		Subject:   token.Subject(),
		Role:      model.Role(role),
		ExpiresAt: token.Expiration(),
	}, nil
}
