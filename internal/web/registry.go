package web

import (
	"errors"
	"log/slog"
	"sync"

	"Morsel/internal/core/postview"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMaxViews bounds the number of mounted cards
const DefaultMaxViews = 5000

// ErrViewNotFound is returned for unknown, evicted or foreign view ids
var ErrViewNotFound = errors.New("view not found")

// ViewMetrics receives registry events
type ViewMetrics interface {
	ViewMounted()
	ViewUnmounted(evicted bool)
}

type mountedView struct {
	controller *postview.Controller
	userID     string
}

// Registry holds the mounted cards. Leaving the registry, by removal or by
// eviction of the least recently used card, unmounts the card.
type Registry struct {
	mu       sync.Mutex
	views    *lru.Cache[string, *mountedView]
	metrics  ViewMetrics
	logger   *slog.Logger
	removing bool
}

// NewRegistry creates a registry holding at most size cards. metrics may be nil.
func NewRegistry(size int, metrics ViewMetrics, logger *slog.Logger) (*Registry, error) {
	if size <= 0 {
		size = DefaultMaxViews
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Registry{metrics: metrics, logger: logger}
	views, err := lru.NewWithEvict[string, *mountedView](size, r.onEvict)
	if err != nil {
		return nil, err
	}
	r.views = views
	return r, nil
}

// onEvict runs on the goroutine that holds r.mu
func (r *Registry) onEvict(id string, v *mountedView) {
	v.controller.Unmount()
	if r.metrics != nil {
		r.metrics.ViewUnmounted(!r.removing)
	}
	if !r.removing {
		r.logger.Debug("view evicted", "view_id", id, "user_id", v.userID)
	}
}

// Add registers a mounted card owned by userID
func (r *Registry) Add(userID string, c *postview.Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.views.Add(c.ID(), &mountedView{controller: c, userID: userID})
	if r.metrics != nil {
		r.metrics.ViewMounted()
	}
}

// Get returns the card if it is mounted and owned by userID
func (r *Registry) Get(id, userID string) (*postview.Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.views.Get(id)
	if !ok || v.userID != userID {
		return nil, ErrViewNotFound
	}
	return v.controller, nil
}

// Remove unmounts the card
func (r *Registry) Remove(id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.views.Peek(id)
	if !ok || v.userID != userID {
		return ErrViewNotFound
	}

	r.removing = true
	r.views.Remove(id)
	r.removing = false
	return nil
}

// Len returns the number of mounted cards
func (r *Registry) Len() int {
	return r.views.Len()
}

// Close unmounts every card and waits for their requests to settle
func (r *Registry) Close() {
	r.mu.Lock()
	views := r.views.Values()
	r.removing = true
	r.views.Purge()
	r.removing = false
	r.mu.Unlock()

	for _, v := range views {
		v.controller.Wait()
	}
}
