package user

import (
	"net/http"

	"Morsel/internal/api/handlers"
	"Morsel/internal/core/users"

	"github.com/go-chi/chi/v5"
)

// GetHandler serves user documents
type GetHandler struct {
	service users.UserService
}

// NewGetHandler creates a new get user handler
func NewGetHandler(service users.UserService) *GetHandler {
	return &GetHandler{service: service}
}

// HandleGet returns a user and the keys of the posts they like
// GET /api/users/{userId}
func (h *GetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, user)
}
