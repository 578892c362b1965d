package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Typed errors for posts API calls.
// These allow callers to use errors.Is() instead of matching status codes.
var (
	// ErrUnauthorized indicates a missing, invalid or expired token (HTTP 401).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the token may not act on the resource (HTTP 403).
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates the post or user does not exist (HTTP 404).
	ErrNotFound = errors.New("not found")

	// ErrBadRequest indicates the request was malformed or invalid (HTTP 400).
	ErrBadRequest = errors.New("bad request")

	// ErrRateLimited indicates the client exceeded its request budget (HTTP 429).
	ErrRateLimited = errors.New("rate limited")

	// ErrUnexpectedResponse indicates any other non-2xx status or an undecodable body.
	ErrUnexpectedResponse = errors.New("unexpected response")
)

// APIError is the JSON error envelope returned by the posts API
type APIError struct {
	StatusCode int    `json:"-"`
	Name       string `json:"error"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Name, e.Message)
}

// IsAuthError returns true if the error is an authentication/authorization error.
// Re-authenticating may help; retrying as-is will not.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden)
}

// wrapStatus maps a non-2xx response to a typed error
func wrapStatus(apiErr *APIError, operation string) error {
	var kind error
	switch apiErr.StatusCode {
	case http.StatusBadRequest:
		kind = ErrBadRequest
	case http.StatusUnauthorized:
		kind = ErrUnauthorized
	case http.StatusForbidden:
		kind = ErrForbidden
	case http.StatusNotFound:
		kind = ErrNotFound
	case http.StatusTooManyRequests:
		kind = ErrRateLimited
	default:
		kind = ErrUnexpectedResponse
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, apiErr)
}
