package handler

import (
	"net/http"

	"snippetbox/internal/app/service"
	"snippetbox/internal/common"

	"github.com/go-chi/chi/v5"
)

type SnippetHandler struct {
	snippetService *service.SnippetService
}

func NewSnippetHandler(ss *service.SnippetService) *SnippetHandler {
	return &SnippetHandler{snippetService: ss}
}

// RegisterPublicRoutes mounts the unauthenticated shared-link lookup.
func (h *SnippetHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/shared/{sharedURL}", h.getShared)
}

func (h *SnippetHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.createSnippet)
	r.Get("/", h.listSnippets)
	r.Get("/{snippetID}", h.getSnippet)
	r.Put("/{snippetID}", h.updateSnippet)
	r.Delete("/{snippetID}", h.deleteSnippet)
}

func (h *SnippetHandler) createSnippet(w http.ResponseWriter, r *http.Request) {
	var req service.CreateSnippetRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		common.RespondWithDomainError(w, r, err)
		return
	}
	snippet, err := h.snippetService.Create(r.Context(), req)
	if err != nil {
		common.RespondWithDomainError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, snippet)
}

func (h *SnippetHandler) listSnippets(w http.ResponseWriter, r *http.Request) {
	skip, err := intQuery(r, "skip", 0)
	if err != nil {
		common.RespondWithDomainError(w, r, err)
		return
	}
	limit, err := intQuery(r, "limit", service.DefaultListLimit)
	if err != nil {
		common.RespondWithDomainError(w, r, err)
		return
	}

	snippets, err := h.snippetService.List(r.Context(), skip, limit)
	if err != nil {
		common.RespondWithDomainError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, snippets)
}

func (h *SnippetHandler) getSnippet(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "snippetID")
	if err != nil {
		common.RespondWithDomainError(w, r, err)
		return
	}
	snippet, err := h.snippetService.Get(r.Context(), id)
	if err != nil {
		common.RespondWithDomainError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, snippet)
}

func (h *SnippetHandler) updateSnippet(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "snippetID")
	if err != nil {
		common.RespondWithDomainError(w, r, err)
		return
	}
	var req service.UpdateSnippetRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		common.RespondWithDomainError(w, r, err)
		return
	}
	snippet, err := h.snippetService.Update(r.Context(), id, req)
	if err != nil {
		common.RespondWithDomainError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, snippet)
}

func (h *SnippetHandler) deleteSnippet(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "snippetID")
	if err != nil {
		common.RespondWithDomainError(w, r, err)
		return
	}
	if err := h.snippetService.Delete(r.Context(), id); err != nil {
		common.RespondWithDomainError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: "Snippet deleted"})
}

func (h *SnippetHandler) getShared(w http.ResponseWriter, r *http.Request) {
	snippet, err := h.snippetService.GetByShareLink(r.Context(), chi.URLParam(r, "sharedURL"))
	if err != nil {
		common.RespondWithDomainError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, snippet)
}
