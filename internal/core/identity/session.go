// Package identity provides the acting user's session: who they are, how to get a bearer token
// for the posts API, and which posts they had already liked when the session was built.
package identity

import (
	"context"
	"errors"
)

// ErrNoToken is returned by a TokenSource that has nothing to hand out
var ErrNoToken = errors.New("no auth token available")

// TokenSource supplies bearer tokens for the posts API
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token
type StaticToken string

// Token returns the token, or ErrNoToken when it is empty
func (t StaticToken) Token(ctx context.Context) (string, error) {
	if t == "" {
		return "", ErrNoToken
	}
	return string(t), nil
}

// TokenFunc adapts a function to TokenSource
type TokenFunc func(ctx context.Context) (string, error)

// Token calls f
func (f TokenFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// Session is the acting user as seen by rendered posts.
// It is immutable after construction and safe to share between instances.
type Session struct {
	tokens TokenSource
	liked  map[string]struct{}
	userID string
}

// NewSession builds a session. likedKeys are composite post keys ("posts/<id>").
func NewSession(userID string, tokens TokenSource, likedKeys []string) *Session {
	liked := make(map[string]struct{}, len(likedKeys))
	for _, key := range likedKeys {
		liked[key] = struct{}{}
	}
	if tokens == nil {
		tokens = StaticToken("")
	}
	return &Session{
		tokens: tokens,
		liked:  liked,
		userID: userID,
	}
}

// UserID returns the acting user's id
func (s *Session) UserID() string {
	return s.userID
}

// Token returns a bearer token for the posts API
func (s *Session) Token(ctx context.Context) (string, error) {
	return s.tokens.Token(ctx)
}

// HasLiked reports whether the post was liked when the session was built
func (s *Session) HasLiked(postKey string) bool {
	_, ok := s.liked[postKey]
	return ok
}

// LikedCount returns the size of the liked-post set
func (s *Session) LikedCount() int {
	return len(s.liked)
}
