package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// APICollector bundles Prometheus metrics for the risk API surface and the
// catalog refresh loop, and provides helpers to wire them into HTTP
// handlers.
type APICollector struct {
	gatherer prometheus.Gatherer

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec

	CatalogObjects   prometheus.Gauge
	CatalogFetchedAt prometheus.Gauge
	CatalogRefreshes *prometheus.CounterVec
}

// NewAPICollector registers the API Prometheus metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewAPICollector(reg prometheus.Registerer) (*APICollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "risk_api_requests_total",
		Help: "Total number of handled API requests, labeled by route, method, and HTTP status code.",
	}, []string{"route", "method", "code"})
	requests, err := registerCounterVec(reg, requests, "risk_api_requests_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "risk_api_request_duration_seconds",
		Help:    "API request latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"route"})
	durations, err = registerHistogramVec(reg, durations, "risk_api_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	objects, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_objects",
		Help: "Number of tracked objects in the current catalog generation.",
	}), "catalog_objects")
	if err != nil {
		return nil, err
	}
	fetchedAt, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_fetched_at_seconds",
		Help: "Unix timestamp of the current catalog generation.",
	}), "catalog_fetched_at_seconds")
	if err != nil {
		return nil, err
	}

	refreshes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_refreshes_total",
		Help: "Catalog refresh attempts, labeled by result (ok, error, stale_fallback).",
	}, []string{"result"})
	refreshes, err = registerCounterVec(reg, refreshes, "catalog_refreshes_total")
	if err != nil {
		return nil, err
	}

	return &APICollector{
		gatherer:         gatherer,
		HTTPRequests:     requests,
		HTTPDurations:    durations,
		CatalogObjects:   objects,
		CatalogFetchedAt: fetchedAt,
		CatalogRefreshes: refreshes,
	}, nil
}

// Middleware records request counts and durations for one named route.
func (c *APICollector) Middleware(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)

		if c.HTTPRequests != nil {
			c.HTTPRequests.WithLabelValues(route, r.Method, fmt.Sprintf("%d", rec.code)).Inc()
		}
		if c.HTTPDurations != nil {
			c.HTTPDurations.WithLabelValues(route).Observe(time.Since(start).Seconds())
		}
	})
}

// Handler exposes a ready-to-use /metrics handler.
func (c *APICollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetCatalogStats satisfies the catalog.MetricsRecorder interface so the
// provider can drive gauge values directly from its refresh path.
func (c *APICollector) SetCatalogStats(objects int, fetchedAt time.Time) {
	if c == nil {
		return
	}
	if c.CatalogObjects != nil {
		c.CatalogObjects.Set(float64(objects))
	}
	if c.CatalogFetchedAt != nil && !fetchedAt.IsZero() {
		c.CatalogFetchedAt.Set(float64(fetchedAt.Unix()))
	}
}

// ObserveCatalogRefresh counts one refresh attempt outcome.
func (c *APICollector) ObserveCatalogRefresh(result string) {
	if c == nil || c.CatalogRefreshes == nil {
		return
	}
	c.CatalogRefreshes.WithLabelValues(result).Inc()
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
