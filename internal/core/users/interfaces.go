package users

import (
	"context"

	"Morsel/internal/core/likes"
)

// UserRepository defines the interface for user data persistence
type UserRepository interface {
	// GetByID retrieves a user together with the keys of the posts they like
	GetByID(ctx context.Context, id string) (*User, error)

	// AddLike records a like and increments the post's counter in one transaction.
	// Returns changed=false (and no error) when the like already exists.
	AddLike(ctx context.Context, userID, postID string) (changed bool, likes int, err error)

	// RemoveLike deletes a like and decrements the post's counter in one transaction.
	// Returns changed=false (and no error) when there was no like to remove.
	RemoveLike(ctx context.Context, userID, postID string) (changed bool, likes int, err error)
}

// UserService defines the interface for user business logic
type UserService interface {
	GetUser(ctx context.Context, id string) (*User, error)

	// ChangeLike applies a like or unlike on behalf of actorID.
	// actorID must equal userID; the body, when filled, must agree with the path.
	ChangeLike(ctx context.Context, actorID, userID string, action likes.Action, postID string, body likes.ChangeLikeRequest) (*ChangeLikeResult, error)
}
