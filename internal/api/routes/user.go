package routes

import (
	"net/http"

	"Morsel/internal/api/handlers/user"
	"Morsel/internal/api/middleware"
	"Morsel/internal/core/users"

	"github.com/go-chi/chi/v5"
)

// RegisterUserRoutes registers user documents and the like endpoint.
// extra middleware runs after authentication.
func RegisterUserRoutes(r chi.Router, service users.UserService, authMiddleware *middleware.AuthMiddleware, extra ...func(http.Handler) http.Handler) {
	getHandler := user.NewGetHandler(service)
	changeLikeHandler := user.NewChangeLikeHandler(service)

	protected := r.With(authMiddleware.RequireAuth).With(extra...)
	protected.Get("/api/users/{userId}", getHandler.HandleGet)

	// action is "like" or "unlike"; anything else is rejected with InvalidAction
	protected.Patch("/api/users/{userId}/{action}/{postId}", changeLikeHandler.HandleChangeLike)
}
