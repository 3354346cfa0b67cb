package api

import (
	"context"
	"net/http"

	"github.com/signalsfoundry/orbit-risk/internal/logging"
	"github.com/signalsfoundry/orbit-risk/internal/observability"
	"github.com/signalsfoundry/orbit-risk/model"
)

// CatalogProvider supplies the current TLE catalog generation. The batch is
// internally consistent: every record comes from one fetch.
type CatalogProvider interface {
	Records(ctx context.Context) ([]model.Record, error)
}

// DefaultRelativeVelocityKmS is assumed when the caller omits V_rel. It is
// a typical LEO debris closing speed.
const DefaultRelativeVelocityKmS = 12.5

// orbitShellHalfWidthKm is how far above and below the requested height the
// dwelling-risk endpoint looks for neighbours.
const orbitShellHalfWidthKm = 50

// launchCorridorRadiusKm bounds how far a propagated subpoint may sit from
// the launch site and still count toward the ascent population.
const launchCorridorRadiusKm = 10000

// Server exposes the congestion and collision-risk estimates over HTTP.
type Server struct {
	catalog CatalogProvider
	log     logging.Logger
	metrics *observability.APICollector
}

// Option customises a Server.
type Option func(*Server)

// WithCollector instruments the server's routes with the given collector.
func WithCollector(c *observability.APICollector) Option {
	return func(s *Server) { s.metrics = c }
}

// NewServer constructs a Server over the given catalog provider.
func NewServer(catalog CatalogProvider, log logging.Logger, opts ...Option) *Server {
	if log == nil {
		log = logging.Noop()
	}
	s := &Server{catalog: catalog, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the fully wired route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.route(mux, "/healthz", http.HandlerFunc(s.handleHealth))
	s.route(mux, "/orbit_risk", http.HandlerFunc(s.handleOrbitRisk))
	s.route(mux, "/takeoff_risk", http.HandlerFunc(s.handleTakeoffRisk))
	s.route(mux, "/congestion", http.HandlerFunc(s.handleCongestion))
	return mux
}

func (s *Server) route(mux *http.ServeMux, pattern string, h http.Handler) {
	h = RequestIDMiddleware(s.log, h)
	if s.metrics != nil {
		h = s.metrics.Middleware(pattern, h)
	}
	mux.Handle(pattern, h)
}
