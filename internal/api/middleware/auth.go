package middleware

import (
	"context"
	"net/http"

	"snippetbox/internal/common"
	"snippetbox/internal/common/security"
	"snippetbox/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const claimsCtxKey contextKey = "claims"

// Authenticator rejects requests whose bearer token jwtauth.Verifier could not
// verify and stores the verified claims in the context.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, _, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			common.RespondWithDomainError(w, r, common.ErrUnauthorized)
			return
		}

		claims, err := security.ClaimsFromToken(token)
		if err != nil {
			common.RespondWithDomainError(w, r, common.ErrUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// RequireRoles lets the request through only when the claims' role is one of
// roles. It must run after Authenticator.
func RequireRoles(roles ...model.Role) func(http.Handler) http.Handler {
	guard := security.Require(roles...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, _ := ClaimsFromContext(r.Context())
			if err := guard.Check(claims); err != nil {
				common.RespondWithDomainError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithClaims(ctx context.Context, claims *security.Claims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, claims)
}

func ClaimsFromContext(ctx context.Context) (*security.Claims, bool) {
	claims, ok := ctx.Value(claimsCtxKey).(*security.Claims)
	return claims, ok && claims != nil
}
