// Package metrics exposes Prometheus instrumentation for the like synchronizer and both HTTP servers.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"Morsel/internal/core/likes"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultNamespace prefixes every metric name
const DefaultNamespace = "morsel"

// Metrics holds the collectors. It implements likes.Observer.
type Metrics struct {
	likeRequests  *prometheus.CounterVec
	likeFailures  *prometheus.CounterVec
	likeInFlight  prometheus.Gauge
	countFetches  *prometheus.CounterVec
	mountedViews  prometheus.Gauge
	viewEvictions prometheus.Counter
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

var _ likes.Observer = (*Metrics)(nil)

// New registers the collectors with reg. namespace "" uses DefaultNamespace.
func New(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	factory := promauto.With(reg)

	return &Metrics{
		likeRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "like_requests_total",
			Help:      "Like and unlike requests issued by rendered posts",
		}, []string{"action"}),

		likeFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "like_request_failures_total",
			Help:      "Like and unlike requests that failed; the flag is not rolled back",
		}, []string{"action"}),

		likeInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "like_requests_in_flight",
			Help:      "Like and unlike requests that have not settled",
		}),

		countFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "like_count_fetches_total",
			Help:      "Authoritative like count reads by result",
		}, []string{"result"}),

		mountedViews: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mounted_views",
			Help:      "Post cards currently mounted",
		}),

		viewEvictions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_evictions_total",
			Help:      "Post cards unmounted because the registry was full",
		}),

		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status",
		}, []string{"method", "route", "status"}),

		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// RequestIssued implements likes.Observer
func (m *Metrics) RequestIssued(action likes.Action) {
	m.likeRequests.WithLabelValues(string(action)).Inc()
	m.likeInFlight.Inc()
}

// RequestSettled implements likes.Observer
func (m *Metrics) RequestSettled(action likes.Action, err error) {
	m.likeInFlight.Dec()
	if err != nil {
		m.likeFailures.WithLabelValues(string(action)).Inc()
	}
}

// FetchSettled implements likes.Observer
func (m *Metrics) FetchSettled(err error) {
	switch {
	case err == nil:
		m.countFetches.WithLabelValues("success").Inc()
	case errors.Is(err, likes.ErrFetch):
		m.countFetches.WithLabelValues("failure").Inc()
	default:
		m.countFetches.WithLabelValues("error").Inc()
	}
}

// ViewMounted records a card entering the registry
func (m *Metrics) ViewMounted() {
	m.mountedViews.Inc()
}

// ViewUnmounted records a card leaving the registry. evicted is true when capacity forced it out.
func (m *Metrics) ViewUnmounted(evicted bool) {
	m.mountedViews.Dec()
	if evicted {
		m.viewEvictions.Inc()
	}
}

// Middleware records request counts and durations by chi route pattern
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
