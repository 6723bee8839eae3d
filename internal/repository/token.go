package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/picshare/picshare-go/internal/model"
)

// TokenRepository persists personal access tokens.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Create inserts a token row and sets the generated ID on the token struct.
func (r *TokenRepository) Create(ctx context.Context, token *model.AccessToken) error {
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	query := `INSERT INTO personal_access_tokens (user_id, name, token_hash, created_at) VALUES (?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, token.UserID, token.Name, token.TokenHash, token.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting token: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	token.ID = id
	return nil
}

// GetByID retrieves a token row by its ID.
func (r *TokenRepository) GetByID(ctx context.Context, id int64) (*model.AccessToken, error) {
	return r.getOne(ctx, `SELECT id, user_id, name, token_hash, last_used_at, created_at
		FROM personal_access_tokens WHERE id = ?`, id)
}

// GetByHash retrieves a token row by the SHA-256 of its secret.
func (r *TokenRepository) GetByHash(ctx context.Context, hash string) (*model.AccessToken, error) {
	return r.getOne(ctx, `SELECT id, user_id, name, token_hash, last_used_at, created_at
		FROM personal_access_tokens WHERE token_hash = ?`, hash)
}

// Delete removes a token row. Deleting a missing row is not an error.
func (r *TokenRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM personal_access_tokens WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting token: %w", err)
	}
	return nil
}

// TouchLastUsed records the time a token was last presented.
func (r *TokenRepository) TouchLastUsed(ctx context.Context, id int64, at time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE personal_access_tokens SET last_used_at = ? WHERE id = ?`, at, id); err != nil {
		return fmt.Errorf("updating token last_used_at: %w", err)
	}
	return nil
}

func (r *TokenRepository) getOne(ctx context.Context, query string, arg any) (*model.AccessToken, error) {
	var (
		token      model.AccessToken
		lastUsedAt sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&token.ID, &token.UserID, &token.Name, &token.TokenHash, &lastUsedAt, &token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("querying token: %w", err)
	}

	token.LastUsedAt = timePtr(lastUsedAt)
	return &token, nil
}
