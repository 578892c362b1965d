package users

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"Morsel/internal/core/likes"
	"Morsel/internal/core/posts"
)

type userService struct {
	userRepo UserRepository
	postRepo posts.Repository
	cache    posts.CounterCache // Optional
	logger   *slog.Logger
}

// NewUserService creates a new user service.
// cache may be nil; when set it is kept in step with committed like changes.
func NewUserService(userRepo UserRepository, postRepo posts.Repository, cache posts.CounterCache, logger *slog.Logger) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{
		userRepo: userRepo,
		postRepo: postRepo,
		cache:    cache,
		logger:   logger,
	}
}

// GetUser retrieves a user by id
func (s *userService) GetUser(ctx context.Context, id string) (*User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("user id is required")
	}
	return s.userRepo.GetByID(ctx, id)
}

// ChangeLike likes or unlikes a post.
// Repeating an action is idempotent: the counter only moves when the like row changes.
func (s *userService) ChangeLike(ctx context.Context, actorID, userID string, action likes.Action, postID string, body likes.ChangeLikeRequest) (*ChangeLikeResult, error) {
	if _, err := likes.ParseAction(string(action)); err != nil {
		return nil, err
	}
	if userID == "" || postID == "" {
		return nil, posts.NewValidationError("path", "userId and postId are required")
	}
	if actorID != userID {
		return nil, ErrForbidden
	}
	if (body.UserID != "" && body.UserID != userID) || (body.PostID != "" && body.PostID != postID) {
		return nil, ErrBodyMismatch
	}

	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to check post: %w", err)
	}
	if !exists {
		return nil, posts.ErrNotFound
	}

	var (
		changed bool
		count   int
	)
	switch action {
	case likes.ActionLike:
		changed, count, err = s.userRepo.AddLike(ctx, userID, postID)
	default:
		changed, count, err = s.userRepo.RemoveLike(ctx, userID, postID)
	}
	if err != nil {
		s.logger.Error("failed to change like",
			"error", err,
			"user_id", userID,
			"post_id", postID,
			"action", action)
		return nil, fmt.Errorf("failed to %s post: %w", action, err)
	}

	if changed {
		s.syncCounter(ctx, postID, count)
		s.logger.Info("like changed",
			"user_id", userID,
			"post_id", postID,
			"action", action,
			"likes", count)
	} else {
		s.logger.Debug("like unchanged",
			"user_id", userID,
			"post_id", postID,
			"action", action)
	}

	return &ChangeLikeResult{Changed: changed, Likes: count}, nil
}

// syncCounter writes the committed count into the cache. If that fails the entry is dropped so the
// next read repopulates it from the database.
func (s *userService) syncCounter(ctx context.Context, postID string, committed int) {
	if s.cache == nil {
		return
	}

	if err := s.cache.SetLikes(ctx, postID, committed); err != nil {
		s.logger.Warn("like counter cache update failed, invalidating",
			"post_id", postID,
			"committed_likes", committed,
			"error", err)
		if err := s.cache.Invalidate(ctx, postID); err != nil {
			s.logger.Warn("like counter cache invalidation failed",
				"post_id", postID,
				"error", err)
		}
	}
}
