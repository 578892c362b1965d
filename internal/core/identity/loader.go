package identity

import (
	"context"
	"fmt"
	"log/slog"

	"Morsel/internal/core/users"
)

// UserFetcher reads a user document from the posts API
type UserFetcher interface {
	GetUser(ctx context.Context, userID string, token string) (*users.User, error)
}

// Loader builds sessions from the remote user document
type Loader struct {
	fetcher UserFetcher
	logger  *slog.Logger
}

// NewLoader creates a session loader
func NewLoader(fetcher UserFetcher, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{fetcher: fetcher, logger: logger}
}

// Load fetches the user's liked-post set and returns a session around it
func (l *Loader) Load(ctx context.Context, userID string, tokens TokenSource) (*Session, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if tokens == nil {
		return nil, ErrNoToken
	}

	token, err := tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get auth token: %w", err)
	}

	user, err := l.fetcher.GetUser(ctx, userID, token)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", userID, err)
	}

	l.logger.Debug("session loaded",
		"user_id", userID,
		"liked_posts", len(user.Likes))

	return NewSession(user.ID, tokens, user.Likes), nil
}
