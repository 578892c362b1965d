package user

import (
	"errors"
	"log/slog"
	"net/http"

	"Morsel/internal/api/handlers"
	"Morsel/internal/core/likes"
	"Morsel/internal/core/posts"
	"Morsel/internal/core/users"
)

// handleServiceError maps service errors to HTTP responses
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, users.ErrUserNotFound):
		handlers.WriteError(w, http.StatusNotFound, "UserNotFound", "User not found")
	case errors.Is(err, posts.ErrNotFound):
		handlers.WriteError(w, http.StatusNotFound, "PostNotFound", "Post not found")
	case errors.Is(err, likes.ErrInvalidAction):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidAction", "Action must be 'like' or 'unlike'")
	case errors.Is(err, users.ErrBodyMismatch):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
	case errors.Is(err, users.ErrForbidden):
		handlers.WriteError(w, http.StatusForbidden, "NotAuthorized", "Cannot change likes of another user")
	case posts.IsValidationError(err):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
	default:
		slog.Error("unexpected error in user handler", "error", err)
		handlers.WriteError(w, http.StatusInternalServerError, "InternalServerError",
			"An internal error occurred")
	}
}
