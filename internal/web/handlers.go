package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"Morsel/internal/api/client"
	"Morsel/internal/core/identity"
	"Morsel/internal/core/likes"
	"Morsel/internal/core/postview"
	"Morsel/internal/core/posts"

	"github.com/go-chi/chi/v5"
)

// DefaultFeedSize is the number of cards rendered on the feed page
const DefaultFeedSize = 20

// PostsAPI is what the card renderer needs from the posts API
type PostsAPI interface {
	likes.Remote
	identity.UserFetcher
	ListPosts(ctx context.Context, req posts.ListPostsRequest, token string) (*posts.ListPostsResponse, error)
}

// Config holds the card renderer's settings
type Config struct {
	Title          string
	FeedSize       int
	RequestTimeout time.Duration
	PreviewLength  int            // Description preview in grapheme clusters; 0 uses postview's default
	CommentsBase   string         // Path prefix of comment links; "" uses postview's default
	Observer       likes.Observer // Optional
	Logger         *slog.Logger   // Optional
}

// Handlers provides HTTP handlers for the card renderer
type Handlers struct {
	templates *Templates
	registry  *Registry
	cookies   *CookieSessions
	api       PostsAPI
	loader    *identity.Loader
	cfg       Config
	logger    *slog.Logger
	now       func() time.Time
}

// NewHandlers creates a new Handlers instance with the provided dependencies.
func NewHandlers(templates *Templates, registry *Registry, cookies *CookieSessions, api PostsAPI, cfg Config) *Handlers {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Title == "" {
		cfg.Title = "Morsel"
	}
	if cfg.FeedSize <= 0 {
		cfg.FeedSize = DefaultFeedSize
	}
	return &Handlers{
		templates: templates,
		registry:  registry,
		cookies:   cookies,
		api:       api,
		loader:    identity.NewLoader(api, cfg.Logger),
		cfg:       cfg,
		logger:    cfg.Logger,
		now:       time.Now,
	}
}

// FeedHandler renders the feed, mounting one card per post
// GET /
func (h *Handlers) FeedHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, token, err := h.cookies.Load(r)
	if err != nil {
		h.renderSessionPage(w, "", "")
		return
	}

	session, err := h.loader.Load(ctx, userID, identity.StaticToken(token))
	if err != nil {
		h.handleSessionError(w, r, userID, err)
		return
	}

	feed, err := h.api.ListPosts(ctx, posts.ListPostsRequest{Limit: h.cfg.FeedSize}, token)
	if err != nil {
		h.handleSessionError(w, r, userID, err)
		return
	}

	opts := h.mountOptions(r)
	now := h.now()
	data := FeedPageData{
		Title:  h.cfg.Title,
		UserID: userID,
		Cards:  make([]CardData, 0, len(feed.Posts)),
	}
	for _, post := range feed.Posts {
		controller, err := postview.Mount(ctx, post, session, h.api, opts...)
		if err != nil {
			h.logger.Warn("skipping unmountable post",
				"post_key", post.Key,
				"error", err)
			continue
		}
		h.registry.Add(userID, controller)
		data.Cards = append(data.Cards, newCardData(controller.Card(now)))
	}

	if err := h.templates.Render(w, "feed.html", data); err != nil {
		h.logger.Error("failed to render feed", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// SessionHandler stores the acting user in the identity cookie
// POST /session
func (h *Handlers) SessionHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	userID := strings.TrimSpace(r.FormValue("user_id"))
	token := strings.TrimSpace(r.FormValue("token"))
	if userID == "" || token == "" {
		w.WriteHeader(http.StatusBadRequest)
		h.renderSessionPage(w, userID, "User id and token are required")
		return
	}

	if err := h.cookies.Save(w, r, userID, token); err != nil {
		h.logger.Error("failed to save session cookie", "error", err)
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// LikeHandler toggles the card's like flag and re-renders it
// POST /views/{viewID}/like
func (h *Handlers) LikeHandler(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.view(w, r)
	if !ok {
		return
	}

	controller.ToggleLike()
	h.renderCard(w, controller)
}

// CardHandler re-renders one card
// GET /views/{viewID}
func (h *Handlers) CardHandler(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.view(w, r)
	if !ok {
		return
	}
	h.renderCard(w, controller)
}

// RefreshHandler starts a new authoritative count read for the card
// POST /views/{viewID}/refresh
func (h *Handlers) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.view(w, r)
	if !ok {
		return
	}

	controller.Invalidate(r.Context())
	h.renderCard(w, controller)
}

// UnmountHandler ends the card's lifetime
// DELETE /views/{viewID}
func (h *Handlers) UnmountHandler(w http.ResponseWriter, r *http.Request) {
	userID, _, err := h.cookies.Load(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.registry.Remove(chi.URLParam(r, "viewID"), userID); err != nil {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthHandler reports liveness and the number of mounted cards
// GET /health
func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// view resolves the card of the request's viewID for the cookie user
func (h *Handlers) view(w http.ResponseWriter, r *http.Request) (*postview.Controller, bool) {
	userID, _, err := h.cookies.Load(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil, false
	}

	controller, err := h.registry.Get(chi.URLParam(r, "viewID"), userID)
	if err != nil {
		http.NotFound(w, r)
		return nil, false
	}
	return controller, true
}

func (h *Handlers) renderCard(w http.ResponseWriter, controller *postview.Controller) {
	if err := h.templates.Render(w, "post_card.html", newCardData(controller.Card(h.now()))); err != nil {
		h.logger.Error("failed to render card",
			"view_id", controller.ID(),
			"error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handlers) renderSessionPage(w http.ResponseWriter, userID, message string) {
	data := SessionPageData{Title: h.cfg.Title, UserID: userID, Error: message}
	if err := h.templates.Render(w, "session.html", data); err != nil {
		h.logger.Error("failed to render session page", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// handleSessionError maps posts API failures on the feed path to a page
func (h *Handlers) handleSessionError(w http.ResponseWriter, r *http.Request, userID string, err error) {
	switch {
	case client.IsAuthError(err):
		h.logger.Info("session rejected by posts API", "user_id", userID, "error", err)
		h.cookies.Clear(w, r)
		w.WriteHeader(http.StatusUnauthorized)
		h.renderSessionPage(w, userID, "Your session has expired. Please sign in again.")
	case errors.Is(err, client.ErrNotFound):
		h.cookies.Clear(w, r)
		w.WriteHeader(http.StatusNotFound)
		h.renderSessionPage(w, userID, "Unknown user")
	default:
		h.logger.Error("failed to load feed", "user_id", userID, "error", err)
		http.Error(w, "Posts are unavailable right now", http.StatusBadGateway)
	}
}

func (h *Handlers) mountOptions(r *http.Request) []postview.Option {
	opts := []postview.Option{
		postview.WithLogger(h.logger),
		postview.WithRequestTimeout(h.cfg.RequestTimeout),
		postview.WithPlatform(detectPlatform(r)),
	}
	if h.cfg.PreviewLength > 0 {
		opts = append(opts, postview.WithPreviewLength(h.cfg.PreviewLength))
	}
	if h.cfg.CommentsBase != "" {
		opts = append(opts, postview.WithCommentsBase(h.cfg.CommentsBase))
	}
	if h.cfg.Observer != nil {
		opts = append(opts, postview.WithObserver(h.cfg.Observer))
	}
	return opts
}

// detectPlatform prefers an explicit ?platform= hint and falls back to the User-Agent
func detectPlatform(r *http.Request) postview.Platform {
	if hint := r.URL.Query().Get("platform"); hint != "" {
		return postview.ParsePlatform(hint)
	}

	ua := r.UserAgent()
	switch {
	case strings.Contains(ua, "iPhone"), strings.Contains(ua, "iPad"):
		return postview.PlatformIOS
	case strings.Contains(ua, "Android"):
		return postview.PlatformAndroid
	default:
		return postview.PlatformWeb
	}
}
