package handler

import (
	"context"
	"net/http"

	"snippetbox/internal/common"

	"github.com/rs/zerolog/hlog"
)

// HealthCheck reports whether one dependency is reachable.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type HealthHandler struct {
	checks []HealthCheck
}

func NewHealthHandler(checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

type healthResponse struct {
	Status string          `json:"status"`
	Checks map[string]bool `json:"checks"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Checks: make(map[string]bool, len(h.checks))}
	code := http.StatusOK
	for _, c := range h.checks {
		err := c.Check(r.Context())
		resp.Checks[c.Name] = err == nil
		if err != nil {
			hlog.FromRequest(r).Warn().Err(err).Str("dependency", c.Name).Msg("health check failed")
			resp.Status = "unavailable"
			code = http.StatusServiceUnavailable
		}
	}
	common.RespondWithJSON(w, code, resp)
}
