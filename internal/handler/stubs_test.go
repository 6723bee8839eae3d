package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/picshare/picshare-go/internal/model"
	"github.com/picshare/picshare-go/internal/service"
)

type stubAuthService struct {
	registerFn func(model.RegisterRequest) (model.AuthResponse, error)
	loginFn    func(model.LoginRequest) (model.AuthResponse, error)
	logoutFn   func(*model.Identity) error
	meFn       func(*model.Identity) (model.MeResponse, error)
}

func (s *stubAuthService) Register(_ context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	return s.registerFn(req)
}

func (s *stubAuthService) Login(_ context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	return s.loginFn(req)
}

func (s *stubAuthService) Logout(_ context.Context, identity *model.Identity) error {
	return s.logoutFn(identity)
}

func (s *stubAuthService) Me(_ context.Context, identity *model.Identity) (model.MeResponse, error) {
	return s.meFn(identity)
}

type stubPostService struct {
	listFn       func(page int) (model.PostListResponse, error)
	listByUserFn func(userID int64, page int) (model.PostListResponse, error)
}

func (s *stubPostService) List(_ context.Context, page int) (model.PostListResponse, error) {
	return s.listFn(page)
}

func (s *stubPostService) ListByUser(_ context.Context, userID int64, page int) (model.PostListResponse, error) {
	return s.listByUserFn(userID, page)
}

// stubAuthenticator accepts exactly one token.
type stubAuthenticator struct {
	token    string
	identity *model.Identity
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (*model.Identity, error) {
	if token != s.token {
		return nil, service.ErrUnauthenticated
	}
	return s.identity, nil
}

// rawEnvelope keeps data undecoded so each test can decode it into its own type.
type rawEnvelope struct {
	Data    json.RawMessage     `json:"data"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) rawEnvelope {
	t.Helper()
	var env rawEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return env
}

func strPtr(s string) *string { return &s }
