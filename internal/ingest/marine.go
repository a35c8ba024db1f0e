package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/vientodata/enviro-etl-service/internal/adapter/openmeteo"
	"github.com/vientodata/enviro-etl-service/internal/config"
	"github.com/vientodata/enviro-etl-service/internal/observability"
	"github.com/vientodata/enviro-etl-service/internal/storage"
)

// MarineModelCode is the measurement model marine rows attribute to.
const MarineModelCode = "ECMWF_WAVES"

// MarineFetcher is the upstream slice the marine ingester needs.
type MarineFetcher interface {
	Marine(ctx context.Context, req openmeteo.MarineRequest) (*openmeteo.MarineResponse, error)
}

// MarineStore is the persistence slice the marine ingester needs.
type MarineStore interface {
	UpsertMarineCurrent(ctx context.Context, row storage.MarineCurrentRow) error
	CreateBatch(ctx context.Context, fam storage.BatchFamily, b storage.Batch) (int64, error)
	InsertDataPoints(ctx context.Context, fam storage.BatchFamily, batchID int64, points []storage.DataPoint) (int64, error)
	UpsertMarineDaily(ctx context.Context, rows []storage.MarineDailyRow) (int64, error)
}

// Marine ingests current sea state, hourly wave forecasts, and daily marine
// aggregates. Inland locations typically fail fetch or validation; the run
// isolates them like any other per-location failure.
type Marine struct {
	fetcher   MarineFetcher
	store     MarineStore
	locations LocationResolver
	params    CodeResolver
	models    CodeResolver

	forecastDays int
	clock        clockwork.Clock
	logger       *slog.Logger
	metrics      *observability.Metrics
}

// NewMarine creates the marine ingester.
func NewMarine(fetcher MarineFetcher, store MarineStore, locations LocationResolver, params, models CodeResolver, cfg *config.Config, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Marine {
	return &Marine{
		fetcher:      fetcher,
		store:        store,
		locations:    locations,
		params:       params,
		models:       models,
		forecastDays: cfg.ForecastDays,
		clock:        clock,
		logger:       logger,
		metrics:      metrics,
	}
}

// Domain implements LocationIngester.
func (m *Marine) Domain() string { return DomainMarine }

// IngestLocation fetches and persists marine sections for one location.
func (m *Marine) IngestLocation(ctx context.Context, loc config.Location) Result {
	res := Result{Location: loc}

	resp, err := m.fetcher.Marine(ctx, openmeteo.MarineRequest{
		Latitude:       loc.Latitude,
		Longitude:      loc.Longitude,
		Timezone:       loc.Timezone,
		ForecastDays:   m.forecastDays,
		IncludeCurrent: true,
		IncludeHourly:  true,
		IncludeDaily:   true,
	})
	if err != nil {
		res.Err = fmt.Errorf("fetch marine: %w", err)
		return res
	}
	if err := openmeteo.Validate(resp); err != nil {
		if m.metrics != nil {
			m.metrics.ValidationErrors.WithLabelValues(DomainMarine).Inc()
		}
		res.Err = err
		return res
	}

	locationID, err := m.locations.ResolveOrCreate(ctx, storage.LocationRow{
		Name:      loc.Name,
		Latitude:  resp.Latitude,
		Longitude: resp.Longitude,
		Timezone:  loc.Timezone,
		Elevation: resp.Elevation,
	})
	if err != nil {
		res.Err = err
		return res
	}
	res.LocationID = locationID

	modelID, err := m.models.Resolve(ctx, MarineModelCode)
	if err != nil {
		res.Err = err
		return res
	}

	fetchedAt := m.clock.Now().UTC()

	if resp.Current != nil {
		if err := m.saveCurrent(ctx, locationID, resp.Current, fetchedAt); err != nil {
			m.logger.Error("save marine current failed", "location", loc.Name, "error", err)
		} else {
			res.CurrentSaved = true
			if m.metrics != nil {
				m.metrics.RowsInserted.WithLabelValues("snapshot").Inc()
			}
		}
	}

	if resp.Hourly != nil {
		inserted, err := m.saveHourly(ctx, locationID, modelID, resp, fetchedAt)
		if err != nil {
			m.logger.Error("save marine hourly failed", "location", loc.Name, "error", err)
		}
		res.PointsInserted = inserted
	}

	if resp.Daily != nil {
		saved, err := m.saveDaily(ctx, locationID, modelID, resp.Daily, fetchedAt)
		if err != nil {
			m.logger.Error("save marine daily failed", "location", loc.Name, "error", err)
		}
		res.DailySaved = saved
	}

	res.Success = res.CurrentSaved || res.PointsInserted > 0 || res.DailySaved > 0
	if !res.Success {
		res.Err = fmt.Errorf("no marine sections persisted for %s", loc.Name)
	}
	return res
}

func (m *Marine) saveCurrent(ctx context.Context, locationID int64, cur *openmeteo.CurrentMarine, fetchedAt time.Time) error {
	return m.store.UpsertMarineCurrent(ctx, storage.MarineCurrentRow{
		LocationID:            locationID,
		ObservedAt:            parseHourlyTimePtr(&cur.Time),
		WaveHeight:            cur.WaveHeight,
		WaveDirection:         cur.WaveDirection,
		WavePeriod:            cur.WavePeriod,
		SwellWaveHeight:       cur.SwellWaveHeight,
		SwellWaveDirection:    cur.SwellWaveDirection,
		SwellWavePeriod:       cur.SwellWavePeriod,
		WindWaveHeight:        cur.WindWaveHeight,
		SeaSurfaceTemperature: cur.SeaSurfaceTemperature,
		OceanCurrentVelocity:  cur.OceanCurrentVelocity,
		OceanCurrentDirection: cur.OceanCurrentDirection,
		FetchedAt:             fetchedAt,
	})
}

func (m *Marine) saveHourly(ctx context.Context, locationID, modelID int64, resp *openmeteo.MarineResponse, fetchedAt time.Time) (int64, error) {
	hourly := resp.Hourly
	series := []paramSeries{
		{code: "wave_height", values: hourly.WaveHeight},
		{code: "wave_direction", values: hourly.WaveDirection},
		{code: "wave_period", values: hourly.WavePeriod},
		{code: "swell_wave_height", values: hourly.SwellWaveHeight},
		{code: "swell_wave_direction", values: hourly.SwellWaveDirection},
		{code: "swell_wave_period", values: hourly.SwellWavePeriod},
		{code: "wind_wave_height", values: hourly.WindWaveHeight},
		{code: "sea_temp", values: hourly.SeaSurfaceTemperature},
	}

	points, err := buildDataPoints(ctx, m.params, hourly.Time, series)
	if err != nil {
		return 0, err
	}
	if len(points) == 0 {
		return 0, nil
	}

	batchID, err := m.store.CreateBatch(ctx, storage.MarineBatches, storage.Batch{
		LocationID:       locationID,
		ModelID:          modelID,
		ForecastDays:     m.forecastDays,
		GenerationTimeMs: resp.GenerationTimeMs,
		Timezone:         resp.Timezone,
		UTCOffsetSeconds: resp.UTCOffsetSeconds,
		FetchedAt:        fetchedAt,
	})
	if err != nil {
		return 0, err
	}
	inserted, err := m.store.InsertDataPoints(ctx, storage.MarineBatches, batchID, points)
	if err != nil {
		return inserted, err
	}
	if m.metrics != nil && inserted > 0 {
		m.metrics.RowsInserted.WithLabelValues("points").Add(float64(inserted))
	}
	return inserted, nil
}

func (m *Marine) saveDaily(ctx context.Context, locationID, modelID int64, daily *openmeteo.MarineDaily, fetchedAt time.Time) (int64, error) {
	rows := make([]storage.MarineDailyRow, 0, len(daily.Time))
	for i, day := range daily.Time {
		validDate, err := parseDate(day)
		if err != nil {
			continue
		}
		rows = append(rows, storage.MarineDailyRow{
			LocationID:            locationID,
			ModelID:               modelID,
			ValidDate:             validDate,
			WaveHeightMax:         at(daily.WaveHeightMax, i),
			WaveDirectionDom:      at(daily.WaveDirectionDominant, i),
			WavePeriodMax:         at(daily.WavePeriodMax, i),
			SwellWaveHeightMax:    at(daily.SwellWaveHeightMax, i),
			SwellWaveDirectionDom: at(daily.SwellWaveDirectionDominant, i),
			SeaSurfaceTempMean:    at(daily.SeaSurfaceTemperatureMean, i),
			OceanCurrentVelMax:    at(daily.OceanCurrentVelocityMax, i),
			FetchedAt:             fetchedAt,
		})
	}

	saved, err := m.store.UpsertMarineDaily(ctx, rows)
	if m.metrics != nil && saved > 0 {
		m.metrics.RowsInserted.WithLabelValues("daily").Add(float64(saved))
	}
	return saved, err
}
