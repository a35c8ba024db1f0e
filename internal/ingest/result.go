// Package ingest holds the per-domain ingestion runs: fetch, validate,
// resolve identities, persist. Each domain has its own runner; this file
// carries the shared run machinery.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vientodata/enviro-etl-service/internal/config"
	"github.com/vientodata/enviro-etl-service/internal/observability"
)

// Domain labels, used in logs, metrics, and run summaries.
const (
	DomainWeather    = "weather"
	DomainAirQuality = "air_quality"
	DomainMarine     = "marine"
	DomainSatellite  = "satellite"
	DomainClimate    = "climate"
)

// ErrNoLocations is returned when a run is started with nothing to do.
var ErrNoLocations = errors.New("no locations configured")

// ErrAllLocationsFailed is returned when every location in a run failed.
var ErrAllLocationsFailed = errors.New("all locations failed")

// Result is the outcome of ingesting one location.
type Result struct {
	Location   config.Location
	LocationID int64
	Success    bool
	Err        error

	CurrentSaved   bool
	PointsInserted int64
	DailySaved     int64
}

// Summary aggregates one domain run over all its locations.
type Summary struct {
	RunID      uuid.UUID `json:"run_id"`
	Domain     string    `json:"domain"`
	StartedAt  time.Time `json:"started_at"`
	Duration   float64   `json:"duration_seconds"`
	Attempted  int       `json:"attempted"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	PointsRows int64     `json:"points_rows"`
	DailyRows  int64     `json:"daily_rows"`
	Errors     []string  `json:"errors,omitempty"`
}

// LocationIngester ingests a single location for one domain.
type LocationIngester interface {
	Domain() string
	IngestLocation(ctx context.Context, loc config.Location) Result
}

// Runner fans a domain run out over the configured locations with a bounded
// worker pool. One location failing never stops the others; the run as a
// whole fails only when nothing succeeded.
type Runner struct {
	locations []config.Location
	workers   int
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewRunner creates a run executor for the given locations.
func NewRunner(locations []config.Location, workers int, logger *slog.Logger, metrics *observability.Metrics) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{locations: locations, workers: workers, logger: logger, metrics: metrics}
}

// Run executes one domain ingestion over all locations and returns its
// summary. The returned error is non-nil only when the run produced nothing:
// no locations configured, or every location failed.
func (r *Runner) Run(ctx context.Context, ing LocationIngester) (Summary, error) {
	domain := ing.Domain()
	summary := Summary{
		RunID:     uuid.New(),
		Domain:    domain,
		StartedAt: time.Now().UTC(),
		Attempted: len(r.locations),
	}

	if len(r.locations) == 0 {
		r.logger.Warn("ingestion run skipped", "domain", domain, "reason", "no locations configured")
		return summary, ErrNoLocations
	}

	r.logger.Info("ingestion run started",
		"domain", domain, "run_id", summary.RunID, "locations", len(r.locations), "workers", r.workers)

	results := make([]Result, len(r.locations))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = r.ingestOne(ctx, ing, r.locations[i])
			}
		}()
	}

feed:
	for i := range r.locations {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	for _, res := range results {
		if res.Success {
			summary.Succeeded++
			summary.PointsRows += res.PointsInserted
			summary.DailyRows += res.DailySaved
			continue
		}
		summary.Failed++
		if res.Err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", res.Location.Name, res.Err))
		}
	}
	summary.Duration = time.Since(summary.StartedAt).Seconds()

	if r.metrics != nil {
		r.metrics.LocationsSucceeded.WithLabelValues(domain).Add(float64(summary.Succeeded))
		r.metrics.LocationsFailed.WithLabelValues(domain).Add(float64(summary.Failed))
		r.metrics.RunDuration.WithLabelValues(domain).Observe(summary.Duration)
	}

	r.logger.Info("ingestion run finished",
		"domain", domain, "run_id", summary.RunID,
		"succeeded", summary.Succeeded, "failed", summary.Failed,
		"points_rows", summary.PointsRows, "daily_rows", summary.DailyRows,
		"duration_seconds", summary.Duration)

	if summary.Succeeded == 0 {
		return summary, fmt.Errorf("%s run: %w", domain, ErrAllLocationsFailed)
	}
	return summary, nil
}

func (r *Runner) ingestOne(ctx context.Context, ing LocationIngester, loc config.Location) Result {
	if err := ctx.Err(); err != nil {
		return Result{Location: loc, Err: err}
	}
	res := ing.IngestLocation(ctx, loc)
	if res.Err != nil {
		r.logger.Error("location ingestion failed",
			"domain", ing.Domain(), "location", loc.Name, "error", res.Err)
	}
	return res
}
