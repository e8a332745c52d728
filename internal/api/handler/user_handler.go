package handler

import (
	"net/http"

	"snippetbox/internal/app/service"
	"snippetbox/internal/common"

	"github.com/go-chi/chi/v5"
)

// UserHandler serves the admin-only account endpoints.
type UserHandler struct {
	authService         *service.AuthService
	notificationService *service.NotificationService
}

func NewUserHandler(authService *service.AuthService, notificationService *service.NotificationService) *UserHandler {
	return &UserHandler{authService: authService, notificationService: notificationService}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{userID}", h.getUser)
	r.Post("/notifications/{email}", h.sendNotification)
}

func (h *UserHandler) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "userID")
	if err != nil {
		common.RespondWithDomainError(w, r, err)
		return
	}
	user, err := h.authService.GetUser(r.Context(), id)
	if err != nil {
		common.RespondWithDomainError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

type notificationRequest struct {
	Message string `json:"message"`
}

func (h *UserHandler) sendNotification(w http.ResponseWriter, r *http.Request) {
	var req notificationRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		common.RespondWithDomainError(w, r, err)
		return
	}
	n, err := h.notificationService.Enqueue(r.Context(), chi.URLParam(r, "email"), req.Message)
	if err != nil {
		common.RespondWithDomainError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusAccepted, n)
}
