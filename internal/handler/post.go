package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/picshare/picshare-go/internal/model"
	"github.com/picshare/picshare-go/internal/service"
)

// PostService is the subset of service.PostService used by PostHandler.
type PostService interface {
	List(ctx context.Context, page int) (model.PostListResponse, error)
	ListByUser(ctx context.Context, userID int64, page int) (model.PostListResponse, error)
}

// PostHandler handles HTTP requests for post listings.
type PostHandler struct {
	service PostService
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(svc PostService) *PostHandler {
	return &PostHandler{service: svc}
}

// HandleList handles GET /posts requests.
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, err := service.ParsePage(r.URL.Query().Get("page"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp, err := h.service.List(r.Context(), page)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respond(w, http.StatusOK, resp, "Posts retrieved successfully")
}

// HandleListByUser handles GET /users/{id}/posts requests.
func (h *PostHandler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || userID < 1 {
		respondError(w, r, service.ErrNotFound)
		return
	}

	page, err := service.ParsePage(r.URL.Query().Get("page"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp, err := h.service.ListByUser(r.Context(), userID, page)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respond(w, http.StatusOK, resp, "Posts retrieved successfully")
}
