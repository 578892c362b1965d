package posts

import (
	"context"
	"fmt"
	"log/slog"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type postService struct {
	repo   Repository
	cache  CounterCache // Optional; nil reads counts from the repository
	logger *slog.Logger
}

// NewPostService creates a new post service.
// cache may be nil when Redis is not configured.
func NewPostService(repo Repository, cache CounterCache, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &postService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// GetPost retrieves a post and overlays the cached like counter
func (s *postService) GetPost(ctx context.Context, id string) (*Post, error) {
	if id == "" {
		return nil, NewValidationError("postId", "required")
	}

	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.overlayLikes(ctx, post)
	return post, nil
}

// ListPosts returns a feed page
func (s *postService) ListPosts(ctx context.Context, req ListPostsRequest) (*ListPostsResponse, error) {
	if req.Limit <= 0 {
		req.Limit = defaultListLimit
	}
	if req.Limit > maxListLimit {
		req.Limit = maxListLimit
	}
	if req.Offset < 0 {
		return nil, NewValidationError("offset", "must not be negative")
	}

	list, err := s.repo.List(ctx, req.Limit, req.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	for _, post := range list {
		s.overlayLikes(ctx, post)
	}

	return &ListPostsResponse{Posts: list}, nil
}

// overlayLikes replaces the row's like count with the cached one, or seeds the cache on a miss.
// Cache failures are logged and the database value is served.
func (s *postService) overlayLikes(ctx context.Context, post *Post) {
	if s.cache == nil {
		return
	}

	count, ok, err := s.cache.GetLikes(ctx, post.ID)
	if err != nil {
		s.logger.Warn("like counter cache read failed",
			"post_id", post.ID,
			"error", err)
		return
	}
	if ok {
		post.Likes = count
		return
	}

	if err := s.cache.SeedLikes(ctx, post.ID, post.Likes); err != nil {
		s.logger.Warn("like counter cache seed failed",
			"post_id", post.ID,
			"error", err)
	}
}
