package routes

import (
	"net/http"

	"Morsel/internal/api/handlers/post"
	"Morsel/internal/api/middleware"
	"Morsel/internal/core/posts"

	"github.com/go-chi/chi/v5"
)

// RegisterPostRoutes registers the read side of the posts API.
// extra middleware runs after authentication.
func RegisterPostRoutes(r chi.Router, service posts.Service, authMiddleware *middleware.AuthMiddleware, extra ...func(http.Handler) http.Handler) {
	getHandler := post.NewGetHandler(service)
	listHandler := post.NewListHandler(service)

	protected := r.With(authMiddleware.RequireAuth).With(extra...)
	protected.Get("/api/posts", listHandler.HandleList)
	protected.Get("/api/posts/{postId}", getHandler.HandleGet)
}
