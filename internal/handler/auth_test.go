package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picshare/picshare-go/internal/middleware"
	"github.com/picshare/picshare-go/internal/model"
	"github.com/picshare/picshare-go/internal/service"
)

var testUser = model.UserResponse{
	ID:       1,
	Username: "testuser",
	Name:     "Test User",
	Email:    "test@example.com",
	Bio:      strPtr("This is a test account for development."),
}

func TestHandleRegister_Created(t *testing.T) {
	var got model.RegisterRequest
	h := NewAuthHandler(&stubAuthService{
		registerFn: func(req model.RegisterRequest) (model.AuthResponse, error) {
			got = req
			return model.AuthResponse{User: testUser, Token: "1|abc"}, nil
		},
	})

	body := `{"username":"testuser","name":"Test User","email":"test@example.com","password":"password"}`
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.HandleRegister(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "testuser", got.Username)
	assert.Equal(t, "password", got.Password)

	env := decodeBody(t, w)
	assert.Equal(t, "User registered successfully", env.Message)
	assert.Nil(t, env.Errors)

	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "1|abc", data["token"])
	user := data["user"].(map[string]any)
	assert.Equal(t, "testuser", user["username"])
	assert.Contains(t, user, "avatar_url")
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "password_hash")
}

func TestHandleRegister_ValidationError(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{
		registerFn: func(model.RegisterRequest) (model.AuthResponse, error) {
			v := service.NewValidationError()
			v.Add("email", "The email has already been taken.")
			v.Add("password", "The password field must be at least 8 characters.")
			return model.AuthResponse{}, v
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	h.HandleRegister(w, req)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	env := decodeBody(t, w)
	assert.Equal(t, "The email has already been taken. (and 1 more error)", env.Message)
	assert.Equal(t, []string{"The email has already been taken."}, env.Errors["email"])
	assert.Equal(t, "null", string(env.Data))
}

func TestHandleRegister_BadBodies(t *testing.T) {
	called := false
	h := NewAuthHandler(&stubAuthService{
		registerFn: func(model.RegisterRequest) (model.AuthResponse, error) {
			called = true
			return model.AuthResponse{}, nil
		},
	})

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantMsg    string
	}{
		{"malformed json", `{"username":`, http.StatusBadRequest, "Invalid request body"},
		{"wrong type", `{"username":42}`, http.StatusBadRequest, "Invalid request body"},
		{"too large", `{"name":"` + strings.Repeat("a", maxBodyBytes) + `"}`, http.StatusRequestEntityTooLarge, "Request body too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			h.HandleRegister(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantMsg, decodeBody(t, w).Message)
		})
	}
	assert.False(t, called, "service must not be called for unreadable bodies")
}

func TestHandleRegister_EmptyBodyReachesValidation(t *testing.T) {
	var got *model.RegisterRequest
	h := NewAuthHandler(&stubAuthService{
		registerFn: func(req model.RegisterRequest) (model.AuthResponse, error) {
			got = &req
			v := service.NewValidationError()
			v.Add("username", "The username field is required.")
			return model.AuthResponse{}, v
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/register", http.NoBody)
	w := httptest.NewRecorder()
	h.HandleRegister(w, req)

	require.NotNil(t, got)
	assert.Equal(t, model.RegisterRequest{}, *got)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHandleLogin(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"success", nil, http.StatusOK, "Login successful"},
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
		{"internal error", errors.New("connection refused"), http.StatusInternalServerError, "Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&stubAuthService{
				loginFn: func(model.LoginRequest) (model.AuthResponse, error) {
					if tt.err != nil {
						return model.AuthResponse{}, tt.err
					}
					return model.AuthResponse{User: testUser, Token: "2|xyz"}, nil
				},
			})

			body, _ := json.Marshal(model.LoginRequest{Email: "test@example.com", Password: "password"})
			req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
			w := httptest.NewRecorder()
			h.HandleLogin(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			env := decodeBody(t, w)
			assert.Equal(t, tt.wantMsg, env.Message)
			if tt.err != nil {
				assert.Equal(t, "null", string(env.Data))
				assert.NotContains(t, w.Body.String(), "connection refused", "internal details must not leak")
			}
		})
	}
}

func TestHandleLogout(t *testing.T) {
	identity := &model.Identity{User: model.User{ID: 1}, TokenID: 9}
	var revoked *model.Identity
	h := NewAuthHandler(&stubAuthService{
		logoutFn: func(id *model.Identity) error {
			revoked = id
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req = req.WithContext(middleware.ContextWithIdentity(req.Context(), identity))
	w := httptest.NewRecorder()
	h.HandleLogout(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Same(t, identity, revoked)
	env := decodeBody(t, w)
	assert.Equal(t, "Logged out successfully", env.Message)
	assert.Equal(t, "null", string(env.Data))
}

func TestHandleLogout_NoIdentity(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	w := httptest.NewRecorder()
	h.HandleLogout(w, httptest.NewRequest(http.MethodPost, "/logout", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthenticated.", decodeBody(t, w).Message)
}

func TestHandleMe(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	identity := &model.Identity{User: model.User{ID: 1}, TokenID: 9}
	h := NewAuthHandler(&stubAuthService{
		meFn: func(*model.Identity) (model.MeResponse, error) {
			return model.MeResponse{UserResponse: testUser, CreatedAt: created}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req = req.WithContext(middleware.ContextWithIdentity(req.Context(), identity))
	w := httptest.NewRecorder()
	h.HandleMe(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	env := decodeBody(t, w)
	assert.Equal(t, "User retrieved successfully", env.Message)

	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "2024-05-01T12:00:00Z", data["created_at"])
	assert.Equal(t, "test@example.com", data["email"])
	assert.Nil(t, data["avatar_url"])
}
