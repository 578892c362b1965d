package routes

import (
	"net/http"
	"time"

	"Morsel/internal/api/handlers"
	"Morsel/internal/api/middleware"
	"Morsel/internal/core/posts"
	"Morsel/internal/core/users"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// APIConfig holds what the posts API router needs beyond its services
type APIConfig struct {
	Auth           *middleware.AuthMiddleware
	RateLimiter    *middleware.RateLimiter // Optional
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// NewAPIRouter builds the posts API router
func NewAPIRouter(postService posts.Service, userService users.UserService, cfg APIConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(chiMiddleware.Timeout(cfg.RequestTimeout))
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	var extra []func(http.Handler) http.Handler
	if cfg.RateLimiter != nil {
		extra = append(extra, cfg.RateLimiter.Middleware)
	}
	RegisterPostRoutes(r, postService, cfg.Auth, extra...)
	RegisterUserRoutes(r, userService, cfg.Auth, extra...)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, http.StatusNotFound, "NotFound", "No such endpoint")
	})

	return r
}
