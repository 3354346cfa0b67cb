package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/signalsfoundry/orbit-risk/internal/logging"
	"github.com/signalsfoundry/orbit-risk/model"
)

// Source yields one complete catalog fetch.
type Source interface {
	Fetch(ctx context.Context) ([]model.Record, error)
}

// MetricsRecorder receives catalog freshness updates.
// *observability.APICollector satisfies it.
type MetricsRecorder interface {
	SetCatalogStats(objects int, fetchedAt time.Time)
	ObserveCatalogRefresh(result string)
}

// Provider owns the freshness policy for the TLE catalog: it serves an
// in-memory generation while it is within the TTL, refreshes from the
// source when it is not, and falls back to the stale generation when the
// upstream fetch fails. Every batch it hands out comes from a single fetch
// generation.
type Provider struct {
	source Source
	store  *Store
	ttl    time.Duration

	log     logging.Logger
	metrics MetricsRecorder
	now     func() time.Time

	mu        sync.Mutex
	records   []model.Record
	fetchedAt time.Time
	warmed    bool
}

// ProviderOption customises a Provider.
type ProviderOption func(*Provider)

// WithLogger attaches a logger to the provider's refresh path.
func WithLogger(log logging.Logger) ProviderOption {
	return func(p *Provider) { p.log = log }
}

// WithMetrics attaches a metrics recorder driven on every refresh.
func WithMetrics(m MetricsRecorder) ProviderOption {
	return func(p *Provider) { p.metrics = m }
}

// WithClock overrides the provider's time source, for tests.
func WithClock(now func() time.Time) ProviderOption {
	return func(p *Provider) { p.now = now }
}

// NewProvider constructs a provider over the given source and optional
// persistent store (nil disables persistence).
func NewProvider(source Source, store *Store, ttl time.Duration, opts ...ProviderOption) *Provider {
	p := &Provider{
		source: source,
		store:  store,
		ttl:    ttl,
		log:    logging.Noop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Records returns the current catalog generation, refreshing it first when
// the TTL has lapsed. The returned slice is shared and must be treated as
// read-only, which is the records' contract anyway.
func (p *Provider) Records(ctx context.Context) ([]model.Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.warmed {
		p.loadFromStore(ctx)
		p.warmed = true
	}

	if p.records != nil && p.now().Sub(p.fetchedAt) < p.ttl {
		return p.records, nil
	}

	records, err := p.source.Fetch(ctx)
	if err != nil {
		p.observeRefresh("error")
		if p.records != nil {
			// Serve the stale generation rather than failing the caller.
			p.observeRefresh("stale_fallback")
			p.log.Warn(ctx, "catalog refresh failed; serving stale generation",
				logging.Err(err),
				logging.Int("objects", len(p.records)),
				logging.Any("fetched_at", p.fetchedAt),
			)
			return p.records, nil
		}
		return nil, fmt.Errorf("refresh catalog: %w", err)
	}

	fetchedAt := p.now()
	p.records = records
	p.fetchedAt = fetchedAt
	p.observeRefresh("ok")
	if p.metrics != nil {
		p.metrics.SetCatalogStats(len(records), fetchedAt)
	}
	p.log.Info(ctx, "catalog refreshed", logging.Int("objects", len(records)))

	if p.store != nil {
		if err := p.store.Save(ctx, fetchedAt, records); err != nil {
			// Persistence is best-effort; the in-memory generation is live.
			p.log.Warn(ctx, "failed to persist catalog generation", logging.Err(err))
		}
	}

	return p.records, nil
}

// FetchedAt reports when the current generation was fetched. Zero when no
// generation has been loaded yet.
func (p *Provider) FetchedAt() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fetchedAt
}

func (p *Provider) loadFromStore(ctx context.Context) {
	if p.store == nil {
		return
	}
	records, fetchedAt, err := p.store.Latest(ctx)
	if err != nil {
		p.log.Warn(ctx, "failed to load cached catalog", logging.Err(err))
		return
	}
	if records == nil {
		return
	}
	p.records = records
	p.fetchedAt = fetchedAt
	if p.metrics != nil {
		p.metrics.SetCatalogStats(len(records), fetchedAt)
	}
	p.log.Info(ctx, "loaded cached catalog generation",
		logging.Int("objects", len(records)),
		logging.Any("fetched_at", fetchedAt),
	)
}

func (p *Provider) observeRefresh(result string) {
	if p.metrics != nil {
		p.metrics.ObserveCatalogRefresh(result)
	}
}
