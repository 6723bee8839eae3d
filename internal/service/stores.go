package service

import (
	"context"
	"time"

	"github.com/picshare/picshare-go/internal/model"
)

// UserStore is the credential store used by the services.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
}

// TokenStore persists access tokens.
type TokenStore interface {
	Create(ctx context.Context, token *model.AccessToken) error
	GetByID(ctx context.Context, id int64) (*model.AccessToken, error)
	GetByHash(ctx context.Context, hash string) (*model.AccessToken, error)
	Delete(ctx context.Context, id int64) error
	TouchLastUsed(ctx context.Context, id int64, at time.Time) error
}

// PostStore reads posts joined with their authors.
type PostStore interface {
	List(ctx context.Context, limit, offset int) ([]model.Post, error)
	Count(ctx context.Context) (int64, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]model.Post, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
}

// TokenCache is an optional lookup cache in front of TokenStore.
type TokenCache interface {
	Get(ctx context.Context, tokenHash string) (*model.Identity, bool, error)
	Set(ctx context.Context, tokenHash string, identity *model.Identity) error
	Delete(ctx context.Context, tokenHash string) error
}

// EventRecorder receives authentication events, e.g. for metrics.
type EventRecorder interface {
	RecordAuthEvent(event string)
}

const (
	EventRegister     = "register"
	EventLoginSuccess = "login_success"
	EventLoginFailure = "login_failure"
	EventLogout       = "logout"
	EventTokenIssued  = "token_issued"
	EventTokenRevoked = "token_revoked"
)

type noopRecorder struct{}

func (noopRecorder) RecordAuthEvent(string) {}
