package routes

import (
	"net/http"

	"Morsel/internal/web"

	"github.com/go-chi/chi/v5"
)

// RegisterWebRoutes registers the card renderer pages and view endpoints
func RegisterWebRoutes(r chi.Router, handlers *web.Handlers) {
	r.Get("/", handlers.FeedHandler)
	r.Post("/session", handlers.SessionHandler)

	r.Route("/views/{viewID}", func(r chi.Router) {
		r.Get("/", handlers.CardHandler)
		r.Delete("/", handlers.UnmountHandler)
		r.Post("/like", handlers.LikeHandler)
		r.Post("/refresh", handlers.RefreshHandler)
	})

	r.Get("/health", handlers.HealthHandler)
}

// NewWebRouter builds the card renderer router. metricsHandler is served at /metrics when set.
func NewWebRouter(handlers *web.Handlers, metricsHandler http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	for _, mw := range middlewares {
		r.Use(mw)
	}

	RegisterWebRoutes(r, handlers)
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}
	return r
}
