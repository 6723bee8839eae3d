package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/picshare/picshare-go/internal/crypto"
	"github.com/picshare/picshare-go/internal/model"
	"github.com/picshare/picshare-go/internal/repository"
)

// AuthService handles registration, login, logout and the current-user lookup.
type AuthService struct {
	users  UserStore
	tokens *TokenService
	events EventRecorder

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService. events may be nil.
func NewAuthService(users UserStore, tokens *TokenService, events EventRecorder) *AuthService {
	if events == nil {
		events = noopRecorder{}
	}
	return &AuthService{
		users:  users,
		tokens: tokens,
		events: events,
	}
}

// Register creates a new user account and returns it with a fresh token.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	if err := s.validateRegister(ctx, req); err != nil {
		return model.AuthResponse{}, err
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return model.AuthResponse{}, err
	}

	user := &model.User{
		Username:     req.Username,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration.
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			v := NewValidationError()
			v.Add("email", msgTaken("email"))
			return model.AuthResponse{}, v
		case errors.Is(err, repository.ErrDuplicateUsername):
			v := NewValidationError()
			v.Add("username", msgTaken("username"))
			return model.AuthResponse{}, v
		}
		return model.AuthResponse{}, err
	}

	token, err := s.tokens.Issue(ctx, user.ID, model.AuthTokenName)
	if err != nil {
		return model.AuthResponse{}, err
	}

	s.events.RecordAuthEvent(EventRegister)
	return model.AuthResponse{User: user.ToResponse(), Token: token}, nil
}

// Login authenticates a user by email and password and issues a new token.
// Existing tokens of the user stay valid.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	req.Email = strings.TrimSpace(req.Email)

	v := NewValidationError()
	validateEmail(v, req.Email)
	if req.Password == "" {
		v.Add("password", msgRequired("password"))
	}
	if err := v.Err(); err != nil {
		return model.AuthResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Spend the same hashing time as a real check.
			_, _ = crypto.VerifyPassword(req.Password, s.dummyPasswordHash())
			s.events.RecordAuthEvent(EventLoginFailure)
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}

	match, err := crypto.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return model.AuthResponse{}, err
	}
	if !match {
		s.events.RecordAuthEvent(EventLoginFailure)
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	if crypto.NeedsRehash(user.PasswordHash) {
		s.upgradeHash(ctx, user.ID, req.Password)
	}

	token, err := s.tokens.Issue(ctx, user.ID, model.AuthTokenName)
	if err != nil {
		return model.AuthResponse{}, err
	}

	s.events.RecordAuthEvent(EventLoginSuccess)
	return model.AuthResponse{User: user.ToResponse(), Token: token}, nil
}

// Logout revokes only the token the caller authenticated with.
func (s *AuthService) Logout(ctx context.Context, identity *model.Identity) error {
	if identity == nil {
		return ErrUnauthenticated
	}
	if err := s.tokens.Revoke(ctx, identity.TokenID); err != nil {
		return err
	}
	s.events.RecordAuthEvent(EventLogout)
	return nil
}

// Me returns the profile of the authenticated user.
func (s *AuthService) Me(_ context.Context, identity *model.Identity) (model.MeResponse, error) {
	if identity == nil {
		return model.MeResponse{}, ErrUnauthenticated
	}
	return model.MeResponse{
		UserResponse: identity.User.ToResponse(),
		CreatedAt:    identity.User.CreatedAt,
	}, nil
}

func (s *AuthService) validateRegister(ctx context.Context, req model.RegisterRequest) error {
	v := NewValidationError()

	usernameOK := validateUsername(v, req.Username)
	requireString(v, "name", req.Name)
	emailOK := validateEmail(v, req.Email)
	validatePassword(v, req.Password)

	if usernameOK {
		taken, err := s.users.ExistsByUsername(ctx, req.Username)
		if err != nil {
			return err
		}
		if taken {
			v.Add("username", msgTaken("username"))
		}
	}
	if emailOK {
		taken, err := s.users.ExistsByEmail(ctx, req.Email)
		if err != nil {
			return err
		}
		if taken {
			v.Add("email", msgTaken("email"))
		}
	}

	return v.Err()
}

// upgradeHash replaces a legacy or outdated hash after a successful login.
// Failure only delays the upgrade to the next login.
func (s *AuthService) upgradeHash(ctx context.Context, userID int64, password string) {
	hash, err := crypto.HashPassword(password)
	if err == nil {
		err = s.users.UpdatePasswordHash(ctx, userID, hash)
	}
	if err != nil {
		slog.Warn("failed to upgrade password hash", "user_id", userID, "error", err)
		return
	}
	slog.Info("password hash upgraded", "user_id", userID)
}

func (s *AuthService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = crypto.HashPassword("dummy-password-for-timing")
	})
	return s.dummyHash
}
