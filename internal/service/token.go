package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/picshare/picshare-go/internal/crypto"
	"github.com/picshare/picshare-go/internal/model"
	"github.com/picshare/picshare-go/internal/repository"
)

// TokenService issues, revokes and authenticates opaque bearer tokens.
// Tokens never expire; a user may hold any number of them at once.
type TokenService struct {
	tokens TokenStore
	users  UserStore
	cache  TokenCache
	events EventRecorder
	now    func() time.Time
}

// NewTokenService creates a new TokenService. cache and events may be nil.
func NewTokenService(tokens TokenStore, users UserStore, cache TokenCache, events EventRecorder) *TokenService {
	if events == nil {
		events = noopRecorder{}
	}
	return &TokenService{
		tokens: tokens,
		users:  users,
		cache:  cache,
		events: events,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Issue creates a token for userID and returns its plaintext form. The
// plaintext is not stored and cannot be recovered later.
func (s *TokenService) Issue(ctx context.Context, userID int64, name string) (string, error) {
	secret, err := crypto.GenerateTokenSecret()
	if err != nil {
		return "", fmt.Errorf("generating token secret: %w", err)
	}

	token := &model.AccessToken{
		UserID:    userID,
		Name:      name,
		TokenHash: crypto.HashToken(secret),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return "", err
	}

	s.events.RecordAuthEvent(EventTokenIssued)
	return crypto.FormatToken(token.ID, secret), nil
}

// Revoke deletes the token with the given ID. Revoking an absent token is not an error.
// The row is deleted before the cache entry is evicted; a failed eviction is
// logged and left to the cache TTL.
func (s *TokenService) Revoke(ctx context.Context, tokenID int64) error {
	var hash string
	if s.cache != nil {
		token, err := s.tokens.GetByID(ctx, tokenID)
		switch {
		case err == nil:
			hash = token.TokenHash
		case !errors.Is(err, repository.ErrTokenNotFound):
			return err
		}
	}

	if err := s.tokens.Delete(ctx, tokenID); err != nil {
		return err
	}

	if hash != "" {
		if err := s.cache.Delete(ctx, hash); err != nil {
			slog.Warn("failed to evict revoked token from cache", "token_id", tokenID, "error", err)
		}
	}

	s.events.RecordAuthEvent(EventTokenRevoked)
	return nil
}

// Authenticate resolves a presented token to the identity it belongs to.
// Any failure to match yields ErrUnauthenticated.
func (s *TokenService) Authenticate(ctx context.Context, presented string) (*model.Identity, error) {
	id, secret, hasID, err := crypto.ParseToken(presented)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	hash := crypto.HashToken(secret)

	if identity, ok := s.fromCache(ctx, hash); ok {
		if hasID && identity.TokenID != id {
			return nil, ErrUnauthenticated
		}
		return identity, nil
	}

	var token *model.AccessToken
	if hasID {
		token, err = s.tokens.GetByID(ctx, id)
		if err == nil && !crypto.TokenHashesEqual(token.TokenHash, hash) {
			return nil, ErrUnauthenticated
		}
	} else {
		token, err = s.tokens.GetByHash(ctx, hash)
	}
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	if err := s.tokens.TouchLastUsed(ctx, token.ID, s.now()); err != nil {
		slog.Warn("failed to update token last_used_at", "token_id", token.ID, "error", err)
	}

	identity := &model.Identity{User: *user, TokenID: token.ID}
	if s.cache != nil {
		if err := s.fillCache(ctx, hash, identity); err != nil {
			return nil, err
		}
	}

	return identity, nil
}

// fillCache stores identity under hash and then confirms the token row still
// exists, evicting the entry again if a concurrent Revoke deleted the row.
func (s *TokenService) fillCache(ctx context.Context, hash string, identity *model.Identity) error {
	if err := s.cache.Set(ctx, hash, identity); err != nil {
		slog.Warn("failed to cache token", "token_id", identity.TokenID, "error", err)
		return nil
	}

	_, err := s.tokens.GetByID(ctx, identity.TokenID)
	if err == nil {
		return nil
	}

	if delErr := s.cache.Delete(ctx, hash); delErr != nil {
		slog.Warn("failed to evict token from cache", "token_id", identity.TokenID, "error", delErr)
	}
	if errors.Is(err, repository.ErrTokenNotFound) {
		return ErrUnauthenticated
	}
	return err
}

func (s *TokenService) fromCache(ctx context.Context, hash string) (*model.Identity, bool) {
	if s.cache == nil {
		return nil, false
	}
	identity, found, err := s.cache.Get(ctx, hash)
	if err != nil {
		slog.Warn("token cache lookup failed", "error", err)
		return nil, false
	}
	return identity, found
}
