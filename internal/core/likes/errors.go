package likes

import "errors"

var (
	// ErrFetch wraps failures of the authoritative count read.
	// The card shows the -1 sentinel; toggling keeps working.
	ErrFetch = errors.New("like count fetch failed")

	// ErrMutation wraps failures of a like/unlike request.
	// Logged only: flag and count keep their optimistic values.
	ErrMutation = errors.New("like toggle request failed")

	// ErrInvalidAction indicates an action other than "like" or "unlike"
	ErrInvalidAction = errors.New("invalid like action: must be 'like' or 'unlike'")

	// ErrMissingCollaborator is returned by Mount when the identity or remote is nil
	ErrMissingCollaborator = errors.New("likes: identity and remote are required")
)
