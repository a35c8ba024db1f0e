// Command backfill runs a one-shot historical ingestion for the satellite or
// climate domain over an explicit date range, then exits.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/vientodata/enviro-etl-service/internal/adapter/openmeteo"
	"github.com/vientodata/enviro-etl-service/internal/config"
	"github.com/vientodata/enviro-etl-service/internal/ingest"
	"github.com/vientodata/enviro-etl-service/internal/observability"
	"github.com/vientodata/enviro-etl-service/internal/registry"
	"github.com/vientodata/enviro-etl-service/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "backfill: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		domain    = flag.String("domain", "", "domain to backfill: satellite or climate")
		startFlag = flag.String("start", "", "range start date (YYYY-MM-DD)")
		endFlag   = flag.String("end", "", "range end date (YYYY-MM-DD)")
		model     = flag.String("model", "", "climate model code (overrides CLIMATE_MODEL)")
	)
	flag.Parse()

	start, err := time.Parse("2006-01-02", *startFlag)
	if err != nil {
		return fmt.Errorf("invalid -start: %w", err)
	}
	end, err := time.Parse("2006-01-02", *endFlag)
	if err != nil {
		return fmt.Errorf("invalid -end: %w", err)
	}
	if end.Before(start) {
		return fmt.Errorf("-end %s precedes -start %s", *endFlag, *startFlag)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *model != "" {
		cfg.ClimateModel = *model
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
	models := registry.NewModels(store)

	switch *domain {
	case ingest.DomainSatellite:
		return backfillSatellite(ctx, cfg, client, store, locations, models, start, end, clock, logger, metrics)
	case ingest.DomainClimate:
		return backfillClimate(ctx, cfg, client, store, locations, models, start, end, clock, logger, metrics)
	default:
		return fmt.Errorf("unsupported -domain %q (want satellite or climate)", *domain)
	}
}

// backfillSatellite aggregates one row per day in the range, walking the
// range day by day so each day gets its own aggregate.
func backfillSatellite(ctx context.Context, cfg *config.Config, client *openmeteo.Client, store *storage.Store, locations *registry.Locations, models *registry.Models, start, end time.Time, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) error {
	sat := ingest.NewSatellite(client, store, locations, models, cfg, clock, logger, metrics)

	var days, failures int
	for _, loc := range cfg.Locations {
		for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := sat.IngestWindow(ctx, loc, day, day)
			days++
			if !res.Success {
				failures++
				logger.Error("satellite backfill day failed",
					"location", loc.Name, "date", day.Format("2006-01-02"), "error", res.Err)
			}
		}
	}

	logger.Info("satellite backfill finished", "days", days, "failures", failures)
	if failures == days && days > 0 {
		return fmt.Errorf("satellite backfill: all %d days failed", days)
	}
	return nil
}

func backfillClimate(ctx context.Context, cfg *config.Config, client *openmeteo.Client, store *storage.Store, locations *registry.Locations, models *registry.Models, start, end time.Time, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) error {
	climate := ingest.NewClimate(client, store, locations, models, cfg, start, end, clock, logger, metrics)
	runner := ingest.NewRunner(cfg.Locations, cfg.Workers, logger, metrics)

	summary, err := runner.Run(ctx, climate)
	if err != nil {
		return fmt.Errorf("climate backfill: %w", err)
	}
	logger.Info("climate backfill finished",
		"model", cfg.ClimateModel, "succeeded", summary.Succeeded, "failed", summary.Failed,
		"daily_rows", summary.DailyRows)
	return nil
}
