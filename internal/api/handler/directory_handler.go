package handler

import (
	"net/http"

	"snippetbox/internal/app/service"
	"snippetbox/internal/common"

	"github.com/go-chi/chi/v5"
)

type DirectoryHandler struct {
	directoryService *service.DirectoryService
}

func NewDirectoryHandler(ds *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directoryService: ds}
}

func (h *DirectoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/users/{userID}", h.getUser)
}

func (h *DirectoryHandler) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "userID")
	if err != nil {
		common.RespondWithDomainError(w, r, err)
		return
	}
	body, err := h.directoryService.GetUser(r.Context(), id)
	if err != nil {
		common.RespondWithDomainError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, body)
}
