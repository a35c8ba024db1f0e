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

// ClimateFetcher is the upstream slice the climate ingester needs.
type ClimateFetcher interface {
	ClimateProjection(ctx context.Context, req openmeteo.ClimateRequest) (*openmeteo.ClimateResponse, error)
}

// ClimateStore is the persistence slice the climate ingester needs.
type ClimateStore interface {
	UpsertClimateProjection(ctx context.Context, locationID, modelID int64, startDate, endDate, fetchedAt time.Time) (int64, error)
	UpsertClimateDaily(ctx context.Context, climateID int64, rows []storage.ClimateDailyRow) (int64, error)
}

// Climate ingests long-range scenario projections: one header per
// (location, model, date range), with projected days hanging off it.
type Climate struct {
	fetcher   ClimateFetcher
	store     ClimateStore
	locations LocationResolver
	models    CodeResolver

	modelCode string
	startDate time.Time
	endDate   time.Time
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewClimate creates the climate ingester for one model and date range.
func NewClimate(fetcher ClimateFetcher, store ClimateStore, locations LocationResolver, models CodeResolver, cfg *config.Config, startDate, endDate time.Time, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Climate {
	return &Climate{
		fetcher:   fetcher,
		store:     store,
		locations: locations,
		models:    models,
		modelCode: cfg.ClimateModel,
		startDate: startDate,
		endDate:   endDate,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
	}
}

// Domain implements LocationIngester.
func (c *Climate) Domain() string { return DomainClimate }

// IngestLocation fetches and persists the projection for one location.
func (c *Climate) IngestLocation(ctx context.Context, loc config.Location) Result {
	res := Result{Location: loc}

	resp, err := c.fetcher.ClimateProjection(ctx, openmeteo.ClimateRequest{
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Timezone:  loc.Timezone,
		StartDate: c.startDate,
		EndDate:   c.endDate,
		Model:     c.modelCode,
	})
	if err != nil {
		res.Err = fmt.Errorf("fetch climate projection: %w", err)
		return res
	}
	if err := openmeteo.Validate(resp); err != nil {
		if c.metrics != nil {
			c.metrics.ValidationErrors.WithLabelValues(DomainClimate).Inc()
		}
		res.Err = err
		return res
	}
	if resp.Daily == nil || len(resp.Daily.Time) == 0 {
		res.Err = fmt.Errorf("empty climate projection for %s", loc.Name)
		return res
	}

	locationID, err := c.locations.ResolveOrCreate(ctx, storage.LocationRow{
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

	modelID, err := c.models.Resolve(ctx, c.modelCode)
	if err != nil {
		res.Err = err
		return res
	}

	climateID, err := c.store.UpsertClimateProjection(ctx, locationID, modelID, c.startDate, c.endDate, c.clock.Now().UTC())
	if err != nil {
		res.Err = err
		return res
	}

	rows := c.dailyRows(resp.Daily)
	saved, err := c.store.UpsertClimateDaily(ctx, climateID, rows)
	if err != nil {
		res.Err = fmt.Errorf("save climate daily: %w", err)
		return res
	}
	if c.metrics != nil && saved > 0 {
		c.metrics.RowsInserted.WithLabelValues("climate").Add(float64(saved))
	}

	res.Success = saved > 0
	res.DailySaved = saved
	if !res.Success {
		res.Err = fmt.Errorf("no climate days persisted for %s", loc.Name)
	}
	return res
}

func (c *Climate) dailyRows(daily *openmeteo.ClimateDaily) []storage.ClimateDailyRow {
	rows := make([]storage.ClimateDailyRow, 0, len(daily.Time))
	for i, day := range daily.Time {
		validDate, err := parseDate(day)
		if err != nil {
			continue
		}
		rows = append(rows, storage.ClimateDailyRow{
			ValidDate:              validDate,
			Temperature2mMax:       at(daily.Temperature2mMax, i),
			Temperature2mMin:       at(daily.Temperature2mMin, i),
			Temperature2mMean:      at(daily.Temperature2mMean, i),
			PrecipitationSum:       at(daily.PrecipitationSum, i),
			RainSum:                at(daily.RainSum, i),
			SnowfallSum:            at(daily.SnowfallSum, i),
			RelativeHumidity2mMax:  at(daily.RelativeHumidity2mMax, i),
			RelativeHumidity2mMin:  at(daily.RelativeHumidity2mMin, i),
			RelativeHumidity2mMean: at(daily.RelativeHumidity2mMean, i),
			WindSpeed10mMean:       at(daily.WindSpeed10mMean, i),
			WindSpeed10mMax:        at(daily.WindSpeed10mMax, i),
			PressureMSLMean:        at(daily.PressureMSLMean, i),
			CloudCoverMean:         at(daily.CloudCoverMean, i),
			ShortwaveRadiationSum:  at(daily.ShortwaveRadiationSum, i),
			SoilMoisture0To10cm:    at(daily.SoilMoisture0To10cm, i),
		})
	}
	return rows
}
