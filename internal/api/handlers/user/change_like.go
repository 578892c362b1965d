package user

import (
	"encoding/json"
	"io"
	"net/http"

	"Morsel/internal/api/handlers"
	"Morsel/internal/api/middleware"
	"Morsel/internal/core/likes"
	"Morsel/internal/core/users"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 4 << 10

// ChangeLikeHandler handles like and unlike
type ChangeLikeHandler struct {
	service users.UserService
}

// NewChangeLikeHandler creates a new change like handler
func NewChangeLikeHandler(service users.UserService) *ChangeLikeHandler {
	return &ChangeLikeHandler{service: service}
}

// HandleChangeLike likes or unlikes a post for the authenticated user
// PATCH /api/users/{userId}/{action}/{postId}
//
// Request body (optional): { "user_id": "...", "post_id": "..." }
func (h *ChangeLikeHandler) HandleChangeLike(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r)
	if actorID == "" {
		handlers.WriteError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	action, err := likes.ParseAction(chi.URLParam(r, "action"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	var body likes.ChangeLikeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&body); err != nil && err != io.EOF {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}

	result, err := h.service.ChangeLike(r.Context(), actorID,
		chi.URLParam(r, "userId"), action, chi.URLParam(r, "postId"), body)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, result)
}
