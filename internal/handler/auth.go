package handler

import (
	"context"
	"net/http"

	"github.com/picshare/picshare-go/internal/middleware"
	"github.com/picshare/picshare-go/internal/model"
	"github.com/picshare/picshare-go/internal/service"
)

// AuthService is the subset of service.AuthService used by AuthHandler.
type AuthService interface {
	Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error)
	Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error)
	Logout(ctx context.Context, identity *model.Identity) error
	Me(ctx context.Context, identity *model.Identity) (model.MeResponse, error)
}

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	service AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// HandleRegister handles POST /register requests.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respond(w, http.StatusCreated, resp, "User registered successfully")
}

// HandleLogin handles POST /login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respond(w, http.StatusOK, resp, "Login successful")
}

// HandleLogout handles POST /logout requests.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, r, service.ErrUnauthenticated)
		return
	}

	if err := h.service.Logout(r.Context(), identity); err != nil {
		respondError(w, r, err)
		return
	}

	respondMessage(w, http.StatusOK, "Logged out successfully")
}

// HandleMe handles GET /me requests.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, r, service.ErrUnauthenticated)
		return
	}

	resp, err := h.service.Me(r.Context(), identity)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respond(w, http.StatusOK, resp, "User retrieved successfully")
}
