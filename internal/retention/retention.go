// Package retention prunes expired rows on a schedule so the database stays
// bounded without manual intervention.
package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/vientodata/enviro-etl-service/internal/config"
	"github.com/vientodata/enviro-etl-service/internal/observability"
)

// Store is the persistence slice the janitor needs.
type Store interface {
	DeleteBatchesBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteAggregatesBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteStaleSnapshots(ctx context.Context, cutoff time.Time) (int64, error)
	Stats(ctx context.Context) (map[string]int64, error)
}

// Janitor runs the retention policy: short-lived forecast batches, longer
// lived daily aggregates, and snapshots abandoned by dropped locations.
type Janitor struct {
	store Store

	batchRetention     time.Duration
	aggregateRetention time.Duration
	snapshotRetention  time.Duration

	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewJanitor creates the retention janitor from the configured windows.
func NewJanitor(store Store, cfg *config.Config, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Janitor {
	return &Janitor{
		store:              store,
		batchRetention:     cfg.BatchRetention,
		aggregateRetention: cfg.AggregateRetention,
		snapshotRetention:  cfg.SnapshotRetention,
		clock:              clock,
		logger:             logger,
		metrics:            metrics,
	}
}

// Run executes one cleanup pass. Each family is cut at its own horizon;
// running twice in a row deletes nothing the second time.
func (j *Janitor) Run(ctx context.Context) error {
	now := j.clock.Now().UTC()
	j.logger.Info("retention pass started",
		"batch_cutoff", now.Add(-j.batchRetention),
		"aggregate_cutoff", now.Add(-j.aggregateRetention),
		"snapshot_cutoff", now.Add(-j.snapshotRetention))

	batches, err := j.store.DeleteBatchesBefore(ctx, now.Add(-j.batchRetention))
	j.countDeleted("batches", batches)
	if err != nil {
		return fmt.Errorf("delete expired batches: %w", err)
	}

	aggregates, err := j.store.DeleteAggregatesBefore(ctx, now.Add(-j.aggregateRetention))
	j.countDeleted("aggregates", aggregates)
	if err != nil {
		return fmt.Errorf("delete expired aggregates: %w", err)
	}

	snapshots, err := j.store.DeleteStaleSnapshots(ctx, now.Add(-j.snapshotRetention))
	j.countDeleted("snapshots", snapshots)
	if err != nil {
		return fmt.Errorf("delete stale snapshots: %w", err)
	}

	j.logger.Info("retention pass finished",
		"batches_deleted", batches, "aggregates_deleted", aggregates, "snapshots_deleted", snapshots)

	stats, err := j.store.Stats(ctx)
	if err != nil {
		j.logger.Warn("post-cleanup stats unavailable", "error", err)
		return nil
	}
	attrs := make([]any, 0, len(stats)*2)
	for table, n := range stats {
		attrs = append(attrs, table, n)
	}
	j.logger.Info("table sizes after cleanup", attrs...)
	return nil
}

func (j *Janitor) countDeleted(family string, n int64) {
	if j.metrics != nil && n > 0 {
		j.metrics.RowsDeleted.WithLabelValues(family).Add(float64(n))
	}
}
