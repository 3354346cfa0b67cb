package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/signalsfoundry/orbit-risk/internal/api"
	"github.com/signalsfoundry/orbit-risk/internal/catalog"
	"github.com/signalsfoundry/orbit-risk/internal/logging"
	"github.com/signalsfoundry/orbit-risk/internal/observability"
)

func main() {
	httpAddr := flag.String("http-addr", ":8000", "TCP address the risk API listens on")
	metricsAddr := flag.String("metrics-addr", ":9090", "HTTP address for Prometheus /metrics")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.Err(err))
		os.Exit(1)
	}

	collector, err := observability.NewAPICollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.Err(err))
		os.Exit(1)
	}

	metricsSrv := serveMetrics(*metricsAddr, collector, log)

	cfg, err := catalog.ConfigFromEnv()
	if err != nil {
		log.Error(ctx, "invalid catalog configuration", logging.Err(err))
		os.Exit(1)
	}

	store, err := catalog.OpenStore(cfg.CachePath)
	if err != nil {
		log.Error(ctx, "failed to open catalog cache", logging.String("path", cfg.CachePath), logging.Err(err))
		os.Exit(1)
	}
	defer store.Close()

	provider := catalog.NewProvider(
		catalog.NewClient(cfg.SourceURL, cfg.FetchTimeout),
		store,
		cfg.TTL,
		catalog.WithLogger(log),
		catalog.WithMetrics(collector),
	)

	server := api.NewServer(provider, log, api.WithCollector(collector))

	srv := &http.Server{
		Addr:    *httpAddr,
		Handler: server.Handler(),
	}

	log.Info(ctx, "starting risk API server",
		logging.String("addr", *httpAddr),
		logging.String("catalog_source", cfg.SourceURL),
	)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "risk API server exited", logging.Err(err))
		}
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-stopCtx.Done()

	log.Info(ctx, "shutting down risk API server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)
}

func serveMetrics(addr string, collector *observability.APICollector, log logging.Logger) *http.Server {
	if collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
