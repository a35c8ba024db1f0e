// Command ingestd is the long-running ingestion daemon. It schedules the
// per-domain fetch jobs, the retention pass, and serves the operational
// HTTP endpoints.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	httpadapter "github.com/vientodata/enviro-etl-service/internal/adapter/http"
	"github.com/vientodata/enviro-etl-service/internal/adapter/kafka"
	"github.com/vientodata/enviro-etl-service/internal/adapter/openmeteo"
	"github.com/vientodata/enviro-etl-service/internal/config"
	"github.com/vientodata/enviro-etl-service/internal/ingest"
	"github.com/vientodata/enviro-etl-service/internal/observability"
	"github.com/vientodata/enviro-etl-service/internal/registry"
	"github.com/vientodata/enviro-etl-service/internal/retention"
	"github.com/vientodata/enviro-etl-service/internal/scheduler"
	"github.com/vientodata/enviro-etl-service/internal/storage"
)

// Climate projections change on the scale of model releases, not hours.
const climateInterval = 7 * 24 * time.Hour

// climateHorizonYears is how far past today the default projection range
// reaches.
const climateHorizonYears = 10

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ingestd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg)
	slog.SetDefault(logger)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg.DatabaseURL, logger, clock)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	client := openmeteo.NewClient(openmeteo.Options{
		Timeout:    cfg.FetchTimeout,
		MaxRetries: cfg.FetchMaxRetries,
		BaseDelay:  cfg.FetchBaseDelay,
		Logger:     logger,
		Metrics:    metrics,
		Clock:      clock,
	})
	defer client.Close()

	locations := registry.NewLocations(store, logger)
	params := registry.NewParameters(store)
	models := registry.NewModels(store)

	weather := ingest.NewWeather(client, store, locations, params, models, cfg, clock, logger, metrics)
	airQuality := ingest.NewAirQuality(client, store, locations, params, models, cfg, clock, logger, metrics)
	marine := ingest.NewMarine(client, store, locations, params, models, cfg, clock, logger, metrics)
	satellite := ingest.NewSatellite(client, store, locations, models, cfg, clock, logger, metrics)

	now := clock.Now().UTC()
	climateStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	climateEnd := time.Date(now.Year()+climateHorizonYears, 12, 31, 0, 0, 0, 0, time.UTC)
	climate := ingest.NewClimate(client, store, locations, models, cfg, climateStart, climateEnd, clock, logger, metrics)

	runner := ingest.NewRunner(cfg.Locations, cfg.Workers, logger, metrics)
	janitor := retention.NewJanitor(store, cfg, clock, logger, metrics)

	publisher := kafka.NewPublisher(cfg.KafkaEnabled, cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	defer publisher.Close()

	ready := &readiness{store: store}
	httpServer := httpadapter.NewServer(cfg.HTTPAddr, ready, logger)

	sched := scheduler.New(ctx, publisher, logger, metrics)

	domains := []struct {
		name     string
		interval time.Duration
		ing      ingest.LocationIngester
	}{
		{ingest.DomainWeather, cfg.WeatherInterval, weather},
		{ingest.DomainAirQuality, cfg.AirQualityInterval, airQuality},
		{ingest.DomainMarine, cfg.MarineInterval, marine},
		{ingest.DomainSatellite, cfg.SatelliteInterval, satellite},
		{ingest.DomainClimate, climateInterval, climate},
	}
	for _, d := range domains {
		runFn := domainRun(runner, d.ing, ready)
		if err := sched.AddDomainJob(d.name, d.interval, runFn); err != nil {
			return err
		}
	}
	if err := sched.AddCleanupJob(cfg.CleanupSpec, janitor.Run); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	sched.Start()

	// First pass immediately; the cron ticks take over from there.
	go func() {
		for _, d := range domains {
			sched.RunDomain(d.name, domainRun(runner, d.ing, ready))
		}
	}()

	logger.Info("ingestd started",
		"locations", len(cfg.Locations), "workers", cfg.Workers, "http_addr", cfg.HTTPAddr)

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown incomplete", "error", err)
	}

	logger.Info("ingestd stopped")
	return nil
}

func domainRun(runner *ingest.Runner, ing ingest.LocationIngester, ready *readiness) scheduler.RunFunc {
	return func(ctx context.Context) (ingest.Summary, error) {
		summary, err := runner.Run(ctx, ing)
		if err == nil {
			ready.markIngested()
		}
		return summary, err
	}
}

// readiness gates /readyz on database reachability and on the first
// successful ingestion run.
type readiness struct {
	store    *storage.Store
	ingested atomic.Bool
}

func (r *readiness) markIngested() {
	r.ingested.Store(true)
}

func (r *readiness) Ready(ctx context.Context) error {
	if err := r.store.Ping(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if !r.ingested.Load() {
		return errors.New("no successful ingestion run yet")
	}
	return nil
}
