package likes

import "context"

// Remote is the posts API as seen by a rendered instance
type Remote interface {
	// GetLikeCount reads the authoritative like count of a post.
	// GET /api/posts/{postId}
	GetLikeCount(ctx context.Context, postID string, token string) (int, error)

	// ChangeLike likes or unlikes a post on behalf of a user.
	// PATCH /api/users/{userId}/{action}/{postId}; the response body is ignored.
	ChangeLike(ctx context.Context, req ChangeLikeRequest, token string) error
}

// Identity is the acting user, supplied by the session.
// Instances only read from it.
type Identity interface {
	UserID() string
	Token(ctx context.Context) (string, error)
	HasLiked(postKey string) bool
}

// Observer receives synchronizer events, typically for metrics.
// Calls happen while the instance lock is held and must not call back into the instance.
type Observer interface {
	RequestIssued(action Action)
	RequestSettled(action Action, err error)
	FetchSettled(err error)
}

// ChangeLikeRequest is the body of the like endpoint.
// Action travels in the path, not the body.
type ChangeLikeRequest struct {
	UserID string `json:"user_id"`
	PostID string `json:"post_id"`
	Action Action `json:"-"`
}

type noopObserver struct{}

func (noopObserver) RequestIssued(Action)         {}
func (noopObserver) RequestSettled(Action, error) {}
func (noopObserver) FetchSettled(error)           {}
