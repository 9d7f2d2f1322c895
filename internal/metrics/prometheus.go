// Package metrics provides Prometheus metrics for the web front-end.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"

	"booteh.app/web/internal/observability"
)

// Manager owns the collectors exported at /metrics.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	backendRequests        *prometheus.CounterVec
	backendRequestDuration *prometheus.HistogramVec

	backgroundResources prometheus.Gauge
	backgroundFrames    prometheus.Counter
}

// NewManager creates a Manager on a private registry unless overridden.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "booteh",
		subsystem:        "web",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by route, method and status code",
	}, []string{"route", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   m.histogramBuckets,
	}, []string{"route", "method"})

	m.backendRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "backend_requests_total",
		Help:      "Total number of backend API calls by endpoint and outcome",
	}, []string{"endpoint", "outcome"})

	m.backendRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "backend_request_duration_seconds",
		Help:      "Backend API call duration in seconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint"})

	m.backgroundResources = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "background_resources_live",
		Help:      "Background scene resources currently allocated and not yet disposed",
	})

	m.backgroundFrames = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "background_frames_total",
		Help:      "Total number of background frames rendered",
	})
}

// ObserveBackend records one backend call. It satisfies backend.Observer.
func (m *Manager) ObserveBackend(endpoint string, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.backendRequests.WithLabelValues(endpoint, outcome).Inc()
	m.backendRequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// ResourceAllocated and ResourceDisposed track background resources.
func (m *Manager) ResourceAllocated() { m.backgroundResources.Inc() }

func (m *Manager) ResourceDisposed() { m.backgroundResources.Dec() }

// LiveBackgroundResources reports how many background resources are currently held.
func (m *Manager) LiveBackgroundResources() float64 {
	var out dto.Metric
	if err := m.backgroundResources.Write(&out); err != nil {
		return 0
	}
	return out.GetGauge().GetValue()
}

// FrameRendered counts one background frame.
func (m *Manager) FrameRendered() { m.backgroundFrames.Inc() }

// Middleware records request counts and durations by chi route pattern.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := observability.NewResponseRecorder(w)
		start := time.Now()
		next.ServeHTTP(rec, r)
		route := observability.RoutePattern(r)
		m.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(rec.Status())).Inc()
		m.httpRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes the registry in the Prometheus text format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }
