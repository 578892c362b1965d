// cmd/web serves the post card renderer: the feed page and the like
// interactions of mounted cards, backed by the posts API.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"Morsel/internal/api/client"
	"Morsel/internal/api/routes"
	"Morsel/internal/core/postview"
	"Morsel/internal/metrics"
	"Morsel/internal/web"
)

func main() {
	_ = godotenv.Load()

	var level slog.Level
	if err := level.UnmarshalText([]byte(envString("LOG_LEVEL", "info"))); err != nil {
		level = slog.LevelInfo
	}
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	apiURL := envString("POSTS_API_URL", "http://localhost:8081")
	apiClient, err := client.New(apiURL, client.WithUserAgent("morsel-web/1.0"))
	if err != nil {
		log.Fatal("Failed to create posts API client:", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry, envString("METRICS_NAMESPACE", metrics.DefaultNamespace))

	views, err := web.NewRegistry(envInt("MAX_MOUNTED_VIEWS", web.DefaultMaxViews), m, logger)
	if err != nil {
		log.Fatal("Failed to create view registry:", err)
	}

	cookies, err := web.NewCookieSessions(os.Getenv("COOKIE_SECRET"), envString("COOKIE_SECURE", "true") == "true")
	if err != nil {
		log.Fatal("Failed to configure cookie sessions:", err)
	}

	templates, err := web.NewTemplates()
	if err != nil {
		log.Fatal("Failed to load templates:", err)
	}

	requestTimeout, err := time.ParseDuration(envString("LIKE_REQUEST_TIMEOUT", "10s"))
	if err != nil {
		log.Fatal("Invalid LIKE_REQUEST_TIMEOUT:", err)
	}

	handlers := web.NewHandlers(templates, views, cookies, apiClient, web.Config{
		Title:          envString("SITE_TITLE", "Morsel"),
		FeedSize:       envInt("FEED_SIZE", web.DefaultFeedSize),
		RequestTimeout: requestTimeout,
		PreviewLength:  envInt("PREVIEW_LENGTH", postview.DefaultPreviewGraphemes),
		CommentsBase:   envString("COMMENTS_BASE", "/posts"),
		Observer:       m,
		Logger:         logger,
	})

	router := routes.NewWebRouter(handlers,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		chiMiddleware.RequestID,
		chiMiddleware.RealIP,
		chiMiddleware.Logger,
		chiMiddleware.Recoverer,
		m.Middleware,
	)

	port := envString("WEB_PORT", "8080")
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           otelhttp.NewHandler(router, "morsel-web"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("card renderer starting", "port", port, "posts_api", apiURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed:", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down card renderer")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}

	// Unmount every card and let in-flight like requests settle
	views.Close()
	logger.Info("all views unmounted")
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
