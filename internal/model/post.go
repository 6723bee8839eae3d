package model

import "time"

// Post is a post row joined with the public fields of its author.
type Post struct {
	ID        int64
	UserID    int64
	Caption   string
	ImageURL  string
	CreatedAt time.Time
	UpdatedAt time.Time

	AuthorUsername  string
	AuthorAvatarURL *string
}

// PostAuthor is the minimal author projection embedded in listed posts.
type PostAuthor struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatar_url"`
}

// PostResponse is a single post in a listing.
type PostResponse struct {
	ID        int64      `json:"id"`
	Caption   string     `json:"caption"`
	ImageURL  string     `json:"image_url"`
	CreatedAt time.Time  `json:"created_at"`
	User      PostAuthor `json:"user"`
}

// Pagination describes an offset page of a listing.
type Pagination struct {
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
}

// PostListResponse is the payload of the post listing endpoints.
type PostListResponse struct {
	Posts      []PostResponse `json:"posts"`
	Pagination Pagination     `json:"pagination"`
}

// ToResponse projects a post and its author for listing.
func (p *Post) ToResponse() PostResponse {
	return PostResponse{
		ID:        p.ID,
		Caption:   p.Caption,
		ImageURL:  p.ImageURL,
		CreatedAt: p.CreatedAt,
		User: PostAuthor{
			ID:        p.UserID,
			Username:  p.AuthorUsername,
			AvatarURL: p.AuthorAvatarURL,
		},
	}
}
