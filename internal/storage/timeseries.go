package storage

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// BatchFamily names the header and data tables of one time-series domain.
// Only the package-level families below are ever used, so the table names
// never come from external input.
type BatchFamily struct {
	Name       string
	BatchTable string
	DataTable  string
}

var (
	WeatherBatches    = BatchFamily{Name: "weather", BatchTable: TableWeatherForecasts, DataTable: TableForecastData}
	AirQualityBatches = BatchFamily{Name: "air_quality", BatchTable: TableAirQualityForecasts, DataTable: TableAirQualityData}
	MarineBatches     = BatchFamily{Name: "marine", BatchTable: TableMarineForecasts, DataTable: TableMarineData}
)

// DataPoint is one (parameter, timestamp, value) reading within a batch.
// A nil Value persists as NULL; QualityFlag records whether the upstream
// supplied the value or left a gap.
type DataPoint struct {
	ParameterID int64
	ValidTime   time.Time
	Value       *float64
	Unit        string
	QualityFlag string
}

// Batch is the header shared by every data point of one fetch. The
// provider metadata fields come from the response envelope.
type Batch struct {
	LocationID       int64
	ModelID          int64
	ForecastDays     int
	GenerationTimeMs float64
	Timezone         string
	UTCOffsetSeconds int
	FetchedAt        time.Time
}

// insertChunkSize keeps multi-row inserts under Postgres' 65535 placeholder
// limit with a comfortable margin (6 placeholders per row).
const insertChunkSize = 1000

// CreateBatch inserts a batch header row and returns its id. Each fetch
// produces a fresh batch; data points always attach to the batch they came
// from. A zero FetchedAt is stamped from the store clock.
func (s *Store) CreateBatch(ctx context.Context, fam BatchFamily, b Batch) (int64, error) {
	if b.FetchedAt.IsZero() {
		b.FetchedAt = s.clock.Now().UTC()
	}
	if b.Timezone == "" {
		b.Timezone = "auto"
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (location_id, model_id, forecast_days, generation_time_ms, timezone, utc_offset_seconds, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`, fam.BatchTable)

	var id int64
	err := s.db.QueryRowContext(ctx, query,
		b.LocationID, b.ModelID, b.ForecastDays,
		b.GenerationTimeMs, b.Timezone, b.UTCOffsetSeconds, b.FetchedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create %s batch: %w", fam.Name, err)
	}
	return id, nil
}

// InsertDataPoints bulk-inserts readings for a batch in chunks and returns
// the number of rows actually written. Duplicate (batch, parameter, time)
// keys are skipped, so re-running an insert is harmless.
func (s *Store) InsertDataPoints(ctx context.Context, fam BatchFamily, batchID int64, points []DataPoint) (int64, error) {
	var total int64
	for start := 0; start < len(points); start += insertChunkSize {
		end := start + insertChunkSize
		if end > len(points) {
			end = len(points)
		}
		n, err := s.insertPointChunk(ctx, fam, batchID, points[start:end])
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (s *Store) insertPointChunk(ctx context.Context, fam BatchFamily, batchID int64, points []DataPoint) (int64, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (forecast_id, parameter_id, valid_time, value, unit, quality_flag) VALUES ", fam.DataTable)

	args := make([]any, 0, len(points)*6)
	for i, p := range points {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * 6
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5, n+6)
		args = append(args, batchID, p.ParameterID, p.ValidTime, p.Value, p.Unit, p.QualityFlag)
	}
	sb.WriteString(" ON CONFLICT (forecast_id, parameter_id, valid_time) DO NOTHING")

	res, err := s.db.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return 0, fmt.Errorf("insert %s data points: %w", fam.Name, err)
	}
	return res.RowsAffected()
}

// ListDataPoints returns the readings attached to a batch, ordered by
// parameter then valid time. NULL values come back as nil.
func (s *Store) ListDataPoints(ctx context.Context, fam BatchFamily, batchID int64) ([]DataPoint, error) {
	query := fmt.Sprintf(`
		SELECT parameter_id, valid_time, value, unit, quality_flag
		FROM %s
		WHERE forecast_id = $1
		ORDER BY parameter_id, valid_time`, fam.DataTable)

	rows, err := s.db.QueryContext(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("list %s data points: %w", fam.Name, err)
	}
	defer rows.Close()

	var points []DataPoint
	for rows.Next() {
		var p DataPoint
		if err := rows.Scan(&p.ParameterID, &p.ValidTime, &p.Value, &p.Unit, &p.QualityFlag); err != nil {
			return nil, fmt.Errorf("scan %s data point: %w", fam.Name, err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// CountDataPoints returns the number of readings attached to a batch.
func (s *Store) CountDataPoints(ctx context.Context, fam BatchFamily, batchID int64) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE forecast_id = $1", fam.DataTable)
	var n int64
	if err := s.db.QueryRowContext(ctx, query, batchID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s data points: %w", fam.Name, err)
	}
	return n, nil
}
