package users

import (
	"time"
)

// User represents an account as served by the posts API.
// Likes holds composite post keys ("posts/<id>") the user currently likes.
type User struct {
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	ID        string    `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Likes     []string  `json:"likes"`
}

// ChangeLikeResult reports the outcome of a like or unlike.
// Changed is false when the request was a no-op (already liked / not liked).
type ChangeLikeResult struct {
	Changed bool `json:"changed"`
	Likes   int  `json:"likes"`
}
