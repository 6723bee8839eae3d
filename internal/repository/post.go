package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/picshare/picshare-go/internal/model"
)

const postSelect = `SELECT p.id, p.user_id, p.caption, p.image_url, p.created_at, p.updated_at, u.username, u.avatar_url
	FROM posts p
	INNER JOIN users u ON u.id = p.user_id`

// Newest first; id breaks ties between posts created in the same second.
const postOrder = ` ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?`

// PostRepository reads posts together with their author's public fields.
type PostRepository struct {
	db *sql.DB
}

// NewPostRepository creates a new PostRepository.
func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

// Create inserts a post and sets the generated ID on the post struct.
func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	post.UpdatedAt = post.CreatedAt

	query := `INSERT INTO posts (user_id, caption, image_url, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, post.UserID, post.Caption, post.ImageURL, post.CreatedAt, post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting post: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	post.ID = id
	return nil
}

// List returns a page of all posts, newest first.
func (r *PostRepository) List(ctx context.Context, limit, offset int) ([]model.Post, error) {
	return r.query(ctx, postSelect+postOrder, limit, offset)
}

// Count returns the total number of posts.
func (r *PostRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&total); err != nil {
		return 0, fmt.Errorf("counting posts: %w", err)
	}
	return total, nil
}

// ListByUser returns a page of one user's posts, newest first.
func (r *PostRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]model.Post, error) {
	return r.query(ctx, postSelect+` WHERE p.user_id = ?`+postOrder, userID, limit, offset)
}

// CountByUser returns the number of posts owned by a user.
func (r *PostRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE user_id = ?`, userID).Scan(&total); err != nil {
		return 0, fmt.Errorf("counting posts: %w", err)
	}
	return total, nil
}

func (r *PostRepository) query(ctx context.Context, query string, args ...any) ([]model.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying posts: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		var (
			p         model.Post
			avatarURL sql.NullString
		)
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.Caption, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
			&p.AuthorUsername, &avatarURL,
		); err != nil {
			return nil, err
		}
		p.AuthorAvatarURL = stringPtr(avatarURL)
		posts = append(posts, p)
	}

	return posts, rows.Err()
}
