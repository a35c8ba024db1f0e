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

// AirQualityModelCode is the measurement model air quality rows attribute to.
const AirQualityModelCode = "CAMS_EUROPE"

// AirQualityFetcher is the upstream slice the air quality ingester needs.
type AirQualityFetcher interface {
	AirQuality(ctx context.Context, req openmeteo.AirQualityRequest) (*openmeteo.AirQualityResponse, error)
}

// AirQualityStore is the persistence slice the air quality ingester needs.
type AirQualityStore interface {
	UpsertAirQualityCurrent(ctx context.Context, row storage.AirQualityCurrentRow) error
	CreateBatch(ctx context.Context, fam storage.BatchFamily, b storage.Batch) (int64, error)
	InsertDataPoints(ctx context.Context, fam storage.BatchFamily, batchID int64, points []storage.DataPoint) (int64, error)
}

// AirQuality ingests current and hourly pollutant concentrations.
type AirQuality struct {
	fetcher   AirQualityFetcher
	store     AirQualityStore
	locations LocationResolver
	params    CodeResolver
	models    CodeResolver

	forecastDays int
	clock        clockwork.Clock
	logger       *slog.Logger
	metrics      *observability.Metrics
}

// NewAirQuality creates the air quality ingester.
func NewAirQuality(fetcher AirQualityFetcher, store AirQualityStore, locations LocationResolver, params, models CodeResolver, cfg *config.Config, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *AirQuality {
	return &AirQuality{
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
func (a *AirQuality) Domain() string { return DomainAirQuality }

// IngestLocation fetches and persists air quality sections for one location.
func (a *AirQuality) IngestLocation(ctx context.Context, loc config.Location) Result {
	res := Result{Location: loc}

	resp, err := a.fetcher.AirQuality(ctx, openmeteo.AirQualityRequest{
		Latitude:       loc.Latitude,
		Longitude:      loc.Longitude,
		Timezone:       loc.Timezone,
		ForecastDays:   a.forecastDays,
		IncludeCurrent: true,
		IncludeHourly:  true,
	})
	if err != nil {
		res.Err = fmt.Errorf("fetch air quality: %w", err)
		return res
	}
	if err := openmeteo.Validate(resp); err != nil {
		if a.metrics != nil {
			a.metrics.ValidationErrors.WithLabelValues(DomainAirQuality).Inc()
		}
		res.Err = err
		return res
	}

	locationID, err := a.locations.ResolveOrCreate(ctx, storage.LocationRow{
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

	modelID, err := a.models.Resolve(ctx, AirQualityModelCode)
	if err != nil {
		res.Err = err
		return res
	}

	fetchedAt := a.clock.Now().UTC()

	if resp.Current != nil {
		if err := a.saveCurrent(ctx, locationID, resp.Current, fetchedAt); err != nil {
			a.logger.Error("save air quality current failed", "location", loc.Name, "error", err)
		} else {
			res.CurrentSaved = true
			if a.metrics != nil {
				a.metrics.RowsInserted.WithLabelValues("snapshot").Inc()
			}
		}
	}

	if resp.Hourly != nil {
		inserted, err := a.saveHourly(ctx, locationID, modelID, resp, fetchedAt)
		if err != nil {
			a.logger.Error("save air quality hourly failed", "location", loc.Name, "error", err)
		}
		res.PointsInserted = inserted
	}

	res.Success = res.CurrentSaved || res.PointsInserted > 0
	if !res.Success {
		res.Err = fmt.Errorf("no air quality sections persisted for %s", loc.Name)
	}
	return res
}

func (a *AirQuality) saveCurrent(ctx context.Context, locationID int64, cur *openmeteo.CurrentAirQuality, fetchedAt time.Time) error {
	return a.store.UpsertAirQualityCurrent(ctx, storage.AirQualityCurrentRow{
		LocationID:      locationID,
		ObservedAt:      parseHourlyTimePtr(&cur.Time),
		PM25:            cur.PM25,
		PM10:            cur.PM10,
		EuropeanAQI:     cur.EuropeanAQI,
		USAQI:           cur.USAQI,
		NitrogenDioxide: cur.NitrogenDioxide,
		Ozone:           cur.Ozone,
		SulphurDioxide:  cur.SulphurDioxide,
		CarbonMonoxide:  cur.CarbonMonoxide,
		Dust:            cur.Dust,
		Ammonia:         cur.Ammonia,
		FetchedAt:       fetchedAt,
	})
}

func (a *AirQuality) saveHourly(ctx context.Context, locationID, modelID int64, resp *openmeteo.AirQualityResponse, fetchedAt time.Time) (int64, error) {
	hourly := resp.Hourly
	series := []paramSeries{
		{code: "pm2_5", values: hourly.PM25},
		{code: "pm10", values: hourly.PM10},
		{code: "aqi_european", values: hourly.EuropeanAQI},
		{code: "aqi_us", values: hourly.USAQI},
		{code: "no2", values: hourly.NitrogenDioxide},
		{code: "o3", values: hourly.Ozone},
		{code: "so2", values: hourly.SulphurDioxide},
		{code: "co", values: hourly.CarbonMonoxide},
	}

	points, err := buildDataPoints(ctx, a.params, hourly.Time, series)
	if err != nil {
		return 0, err
	}
	if len(points) == 0 {
		return 0, nil
	}

	batchID, err := a.store.CreateBatch(ctx, storage.AirQualityBatches, storage.Batch{
		LocationID:       locationID,
		ModelID:          modelID,
		ForecastDays:     a.forecastDays,
		GenerationTimeMs: resp.GenerationTimeMs,
		Timezone:         resp.Timezone,
		UTCOffsetSeconds: resp.UTCOffsetSeconds,
		FetchedAt:        fetchedAt,
	})
	if err != nil {
		return 0, err
	}
	inserted, err := a.store.InsertDataPoints(ctx, storage.AirQualityBatches, batchID, points)
	if err != nil {
		return inserted, err
	}
	if a.metrics != nil && inserted > 0 {
		a.metrics.RowsInserted.WithLabelValues("points").Add(float64(inserted))
	}
	return inserted, nil
}
