package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/picshare/picshare-go/internal/model"
	"github.com/picshare/picshare-go/internal/repository"
)

// DefaultPerPage is the page size used when none is configured.
const DefaultPerPage = 15

// PostService lists posts page by page, newest first.
type PostService struct {
	posts   PostStore
	users   UserStore
	perPage int
}

// NewPostService creates a new PostService. A non-positive perPage uses DefaultPerPage.
func NewPostService(posts PostStore, users UserStore, perPage int) *PostService {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	return &PostService{posts: posts, users: users, perPage: perPage}
}

// ParsePage converts the raw page query value. An empty value means page 1.
func ParsePage(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		v := NewValidationError()
		v.Add("page", "The page field must be an integer.")
		return 0, v
	}
	return page, nil
}

// List returns one page of all posts. Pages past the last one are empty, not an error.
func (s *PostService) List(ctx context.Context, page int) (model.PostListResponse, error) {
	if err := validatePage(page); err != nil {
		return model.PostListResponse{}, err
	}

	total, err := s.posts.Count(ctx)
	if err != nil {
		return model.PostListResponse{}, err
	}

	return s.paginate(page, total, func(limit, offset int) ([]model.Post, error) {
		return s.posts.List(ctx, limit, offset)
	})
}

// ListByUser returns one page of the posts owned by userID.
// It returns ErrNotFound when the user does not exist.
func (s *PostService) ListByUser(ctx context.Context, userID int64, page int) (model.PostListResponse, error) {
	if err := validatePage(page); err != nil {
		return model.PostListResponse{}, err
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.PostListResponse{}, ErrNotFound
		}
		return model.PostListResponse{}, err
	}

	total, err := s.posts.CountByUser(ctx, userID)
	if err != nil {
		return model.PostListResponse{}, err
	}

	return s.paginate(page, total, func(limit, offset int) ([]model.Post, error) {
		return s.posts.ListByUser(ctx, userID, limit, offset)
	})
}

func (s *PostService) paginate(page int, total int64, fetch func(limit, offset int) ([]model.Post, error)) (model.PostListResponse, error) {
	lastPage := int((total + int64(s.perPage) - 1) / int64(s.perPage))
	if lastPage < 1 {
		lastPage = 1
	}

	resp := model.PostListResponse{
		Posts: []model.PostResponse{},
		Pagination: model.Pagination{
			CurrentPage: page,
			LastPage:    lastPage,
			PerPage:     s.perPage,
			Total:       total,
		},
	}

	if page > lastPage {
		return resp, nil
	}

	posts, err := fetch(s.perPage, (page-1)*s.perPage)
	if err != nil {
		return model.PostListResponse{}, err
	}

	for i := range posts {
		resp.Posts = append(resp.Posts, posts[i].ToResponse())
	}
	return resp, nil
}

func validatePage(page int) error {
	if page < 1 {
		v := NewValidationError()
		v.Add("page", "The page field must be at least 1.")
		return v
	}
	return nil
}
