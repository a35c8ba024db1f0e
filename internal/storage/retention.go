package storage

import (
	"context"
	"fmt"
	"time"
)

// deleteChunkSize bounds each retention DELETE so cleanup never holds a
// long-running transaction over a large table.
const deleteChunkSize = 5000

// retentionTarget names one table and the timestamp column cleanup cuts on.
type retentionTarget struct {
	table  string
	column string
}

// Batch headers cascade to their data tables, so deleting a header removes
// its readings in the same statement.
var (
	batchRetentionTargets = []retentionTarget{
		{table: TableWeatherForecasts, column: "fetched_at"},
		{table: TableAirQualityForecasts, column: "fetched_at"},
		{table: TableMarineForecasts, column: "fetched_at"},
	}
	aggregateRetentionTargets = []retentionTarget{
		{table: TableWeatherDaily, column: "fetched_at"},
		{table: TableMarineDaily, column: "fetched_at"},
		{table: TableSatelliteDaily, column: "fetched_at"},
		{table: TableClimateProjections, column: "fetched_at"},
	}
	snapshotRetentionTargets = []retentionTarget{
		{table: TableCurrentWeather, column: "fetched_at"},
		{table: TableAirQualityCurrent, column: "fetched_at"},
		{table: TableMarineCurrent, column: "fetched_at"},
	}
)

// DeleteBatchesBefore removes forecast batches fetched before cutoff across
// all three time-series families. Data rows go with their headers via
// cascade.
func (s *Store) DeleteBatchesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.deleteTargetsBefore(ctx, batchRetentionTargets, cutoff)
}

// DeleteAggregatesBefore removes daily aggregates and climate projection
// runs fetched before cutoff. Climate days cascade from their headers.
func (s *Store) DeleteAggregatesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.deleteTargetsBefore(ctx, aggregateRetentionTargets, cutoff)
}

// DeleteStaleSnapshots removes snapshot rows whose last refresh predates
// cutoff. A healthy scheduler keeps snapshots fresh, so this only ever taxes
// locations that were dropped from the configuration.
func (s *Store) DeleteStaleSnapshots(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.deleteTargetsBefore(ctx, snapshotRetentionTargets, cutoff)
}

func (s *Store) deleteTargetsBefore(ctx context.Context, targets []retentionTarget, cutoff time.Time) (int64, error) {
	var total int64
	for _, t := range targets {
		n, err := s.deleteChunked(ctx, t, cutoff)
		total += n
		if err != nil {
			return total, err
		}
		if n > 0 {
			s.logger.Info("retention pass deleted rows", "table", t.table, "rows", n)
		}
	}
	return total, nil
}

// deleteChunked repeatedly deletes bounded slices of expired rows until none
// remain, keeping each statement short.
func (s *Store) deleteChunked(ctx context.Context, t retentionTarget, cutoff time.Time) (int64, error) {
	query := fmt.Sprintf(`
		DELETE FROM %[1]s
		WHERE ctid IN (
			SELECT ctid FROM %[1]s WHERE %[2]s < $1 LIMIT %[3]d
		)`, t.table, t.column, deleteChunkSize)

	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		res, err := s.db.ExecContext(ctx, query, cutoff)
		if err != nil {
			return total, fmt.Errorf("delete from %s: %w", t.table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("rows affected for %s: %w", t.table, err)
		}
		total += n
		if n < deleteChunkSize {
			return total, nil
		}
	}
}

// TableCount returns the row count of one of the schema's tables. The name
// must be one of the Table* constants.
func (s *Store) TableCount(ctx context.Context, table string) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// Stats reports per-table row counts for the post-cleanup log line.
func (s *Store) Stats(ctx context.Context) (map[string]int64, error) {
	tables := []string{
		TableLocations,
		TableCurrentWeather, TableWeatherForecasts, TableForecastData, TableWeatherDaily,
		TableAirQualityCurrent, TableAirQualityForecasts, TableAirQualityData,
		TableMarineCurrent, TableMarineForecasts, TableMarineData, TableMarineDaily,
		TableSatelliteDaily, TableClimateProjections, TableClimateDaily,
	}
	out := make(map[string]int64, len(tables))
	for _, table := range tables {
		n, err := s.TableCount(ctx, table)
		if err != nil {
			return nil, err
		}
		out[table] = n
	}
	return out, nil
}
