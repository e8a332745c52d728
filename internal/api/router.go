package api

import (
	"net/http"
	"time"

	"snippetbox/internal/api/handler"
	"snippetbox/internal/api/middleware"
	"snippetbox/internal/app/service"
	"snippetbox/internal/common"
	"snippetbox/internal/common/security"
	"snippetbox/internal/domain/model"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"github.com/rs/zerolog"
)

// Dependencies is everything the router hands to its handlers.
type Dependencies struct {
	Logger         zerolog.Logger
	RequestTimeout time.Duration
	Tokens         *security.TokenService

	AuthService         *service.AuthService
	SnippetService      *service.SnippetService
	DirectoryService    *service.DirectoryService
	NotificationService *service.NotificationService

	HealthChecks []handler.HealthCheck
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(chiMiddleware.Timeout(timeout))

	// Only "Authorization: Bearer T" is read, never the jwt cookie; protected
	// groups add Authenticator.
	r.Use(jwtauth.Verify(deps.Tokens.JWTAuth(), jwtauth.TokenFromHeader))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithError(w, http.StatusNotFound, common.ErrNotFound.Error())
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Method(http.MethodGet, "/health", handler.NewHealthHandler(deps.HealthChecks...))

	r.Route("/api/v1", func(v1 chi.Router) {
		authHandler := handler.NewAuthHandler(deps.AuthService)
		userHandler := handler.NewUserHandler(deps.AuthService, deps.NotificationService)
		v1.Route("/users", func(users chi.Router) {
			authHandler.RegisterRoutes(users)

			users.Group(func(admin chi.Router) {
				admin.Use(middleware.Authenticator)
				admin.Use(middleware.RequireRoles(model.RoleAdmin))
				userHandler.RegisterRoutes(admin)
			})
		})

		snippetHandler := handler.NewSnippetHandler(deps.SnippetService)
		v1.Route("/snippets", func(snippets chi.Router) {
			snippetHandler.RegisterPublicRoutes(snippets)

			snippets.Group(func(user chi.Router) {
				user.Use(middleware.Authenticator)
				user.Use(middleware.RequireRoles(model.RoleUser))
				snippetHandler.RegisterRoutes(user)
			})
		})

		directoryHandler := handler.NewDirectoryHandler(deps.DirectoryService)
		v1.Route("/directory", func(dir chi.Router) {
			dir.Use(middleware.Authenticator)
			dir.Use(middleware.RequireRoles(model.Roles...))
			directoryHandler.RegisterRoutes(dir)
		})
	})

	return r
}
