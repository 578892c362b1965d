package users

import (
	"errors"
)

// Sentinel errors for common user operations
var (
	// ErrUserNotFound is returned when a user lookup finds no matching record
	ErrUserNotFound = errors.New("user not found")

	// ErrForbidden is returned when the authenticated user acts on another user's likes
	ErrForbidden = errors.New("cannot change likes of another user")

	// ErrBodyMismatch is returned when the request body disagrees with the path
	ErrBodyMismatch = errors.New("request body does not match path")
)
