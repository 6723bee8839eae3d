package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/picshare/picshare-go/internal/model"
)

const tokenKeyPrefix = "auth:token:"

// TokenCache maps token hashes to the identity they authenticate.
// Entries are evicted explicitly on revoke and otherwise expire after ttl.
type TokenCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// cachedIdentity is the cached form of model.Identity, without the password hash.
type cachedIdentity struct {
	TokenID   int64     `json:"token_id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Bio       *string   `json:"bio"`
	AvatarURL *string   `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTokenCache creates a TokenCache. A non-positive ttl defaults to one minute.
func NewTokenCache(client redis.Cmdable, ttl time.Duration) *TokenCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &TokenCache{client: client, ttl: ttl}
}

// Get returns the cached identity for a token hash. found is false on a miss.
func (c *TokenCache) Get(ctx context.Context, tokenHash string) (*model.Identity, bool, error) {
	raw, err := c.client.Get(ctx, tokenKey(tokenHash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get token: %w", err)
	}

	var cached cachedIdentity
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached token: %w", err)
	}

	return cached.identity(), true, nil
}

// Set stores the identity for a token hash.
func (c *TokenCache) Set(ctx context.Context, tokenHash string, identity *model.Identity) error {
	payload, err := json.Marshal(newCachedIdentity(identity))
	if err != nil {
		return fmt.Errorf("marshal cached token: %w", err)
	}
	if err := c.client.Set(ctx, tokenKey(tokenHash), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set token: %w", err)
	}
	return nil
}

// Delete evicts a token hash.
func (c *TokenCache) Delete(ctx context.Context, tokenHash string) error {
	if err := c.client.Del(ctx, tokenKey(tokenHash)).Err(); err != nil {
		return fmt.Errorf("redis delete token: %w", err)
	}
	return nil
}

func tokenKey(tokenHash string) string {
	return tokenKeyPrefix + tokenHash
}

func newCachedIdentity(identity *model.Identity) cachedIdentity {
	u := identity.User
	return cachedIdentity{
		TokenID:   identity.TokenID,
		UserID:    u.ID,
		Username:  u.Username,
		Name:      u.Name,
		Email:     u.Email,
		Bio:       u.Bio,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (c cachedIdentity) identity() *model.Identity {
	return &model.Identity{
		TokenID: c.TokenID,
		User: model.User{
			ID:        c.UserID,
			Username:  c.Username,
			Name:      c.Name,
			Email:     c.Email,
			Bio:       c.Bio,
			AvatarURL: c.AvatarURL,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		},
	}
}
