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

// WeatherModelCode is the measurement model weather ingestion attributes
// its rows to.
const WeatherModelCode = "OM_FORECAST"

// WeatherFetcher is the upstream slice the weather ingester needs.
type WeatherFetcher interface {
	WeatherForecast(ctx context.Context, req openmeteo.ForecastRequest) (*openmeteo.ForecastResponse, error)
}

// WeatherStore is the persistence slice the weather ingester needs.
type WeatherStore interface {
	UpsertCurrentWeather(ctx context.Context, row storage.CurrentWeatherRow) error
	CreateBatch(ctx context.Context, fam storage.BatchFamily, b storage.Batch) (int64, error)
	InsertDataPoints(ctx context.Context, fam storage.BatchFamily, batchID int64, points []storage.DataPoint) (int64, error)
	UpsertWeatherDaily(ctx context.Context, rows []storage.WeatherDailyRow) (int64, error)
}

// Weather ingests current conditions, hourly forecasts, and daily forecasts
// for each configured location.
type Weather struct {
	fetcher   WeatherFetcher
	store     WeatherStore
	locations LocationResolver
	params    CodeResolver
	models    CodeResolver

	forecastDays int
	clock        clockwork.Clock
	logger       *slog.Logger
	metrics      *observability.Metrics
}

// NewWeather creates the weather ingester.
func NewWeather(fetcher WeatherFetcher, store WeatherStore, locations LocationResolver, params, models CodeResolver, cfg *config.Config, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Weather {
	return &Weather{
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
func (w *Weather) Domain() string { return DomainWeather }

// IngestLocation fetches and persists all weather sections for one location.
// The three sections persist independently; the location only counts as
// failed when nothing could be saved.
func (w *Weather) IngestLocation(ctx context.Context, loc config.Location) Result {
	res := Result{Location: loc}

	resp, err := w.fetcher.WeatherForecast(ctx, openmeteo.ForecastRequest{
		Latitude:       loc.Latitude,
		Longitude:      loc.Longitude,
		Timezone:       loc.Timezone,
		ForecastDays:   w.forecastDays,
		IncludeCurrent: true,
		IncludeHourly:  true,
		IncludeDaily:   true,
	})
	if err != nil {
		res.Err = fmt.Errorf("fetch weather: %w", err)
		return res
	}
	if err := openmeteo.Validate(resp); err != nil {
		w.countValidationError()
		res.Err = err
		return res
	}

	locationID, err := w.locations.ResolveOrCreate(ctx, storage.LocationRow{
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

	modelID, err := w.models.Resolve(ctx, WeatherModelCode)
	if err != nil {
		res.Err = err
		return res
	}

	fetchedAt := w.clock.Now().UTC()

	if resp.Current != nil {
		if err := w.saveCurrent(ctx, locationID, resp.Current, fetchedAt); err != nil {
			w.logger.Error("save current weather failed", "location", loc.Name, "error", err)
		} else {
			res.CurrentSaved = true
			w.countRows("snapshot", 1)
		}
	}

	if resp.Hourly != nil {
		inserted, err := w.saveHourly(ctx, locationID, modelID, resp, fetchedAt)
		if err != nil {
			w.logger.Error("save hourly weather failed", "location", loc.Name, "error", err)
		}
		res.PointsInserted = inserted
	}

	if resp.Daily != nil {
		saved, err := w.saveDaily(ctx, locationID, modelID, resp.Daily, fetchedAt)
		if err != nil {
			w.logger.Error("save daily weather failed", "location", loc.Name, "error", err)
		}
		res.DailySaved = saved
	}

	res.Success = res.CurrentSaved || res.PointsInserted > 0 || res.DailySaved > 0
	if !res.Success {
		res.Err = fmt.Errorf("no weather sections persisted for %s", loc.Name)
	}
	return res
}

func (w *Weather) saveCurrent(ctx context.Context, locationID int64, cur *openmeteo.CurrentWeather, fetchedAt time.Time) error {
	return w.store.UpsertCurrentWeather(ctx, storage.CurrentWeatherRow{
		LocationID:         locationID,
		ObservedAt:         parseHourlyTimePtr(&cur.Time),
		Temperature2m:      cur.Temperature2m,
		RelativeHumidity2m: cur.RelativeHumidity2m,
		ApparentTemp:       cur.ApparentTemp,
		Precipitation:      cur.Precipitation,
		WeatherCode:        cur.WeatherCode,
		CloudCover:         cur.CloudCover,
		WindSpeed10m:       cur.WindSpeed10m,
		WindDirection10m:   cur.WindDirection10m,
		FetchedAt:          fetchedAt,
	})
}

func (w *Weather) saveHourly(ctx context.Context, locationID, modelID int64, resp *openmeteo.ForecastResponse, fetchedAt time.Time) (int64, error) {
	hourly := resp.Hourly
	series := []paramSeries{
		{code: "temp_2m", values: hourly.Temperature2m},
		{code: "humidity_2m", values: hourly.RelativeHumidity2m},
		{code: "precip_prob", values: hourly.PrecipitationProb},
		{code: "precip", values: hourly.Precipitation},
		{code: "weather_code", values: hourly.WeatherCode},
		{code: "wind_speed_10m", values: hourly.WindSpeed10m},
		{code: "wind_dir_10m", values: hourly.WindDirection10m},
	}

	points, err := buildDataPoints(ctx, w.params, hourly.Time, series)
	if err != nil {
		return 0, err
	}
	if len(points) == 0 {
		return 0, nil
	}

	batchID, err := w.store.CreateBatch(ctx, storage.WeatherBatches, storage.Batch{
		LocationID:       locationID,
		ModelID:          modelID,
		ForecastDays:     w.forecastDays,
		GenerationTimeMs: resp.GenerationTimeMs,
		Timezone:         resp.Timezone,
		UTCOffsetSeconds: resp.UTCOffsetSeconds,
		FetchedAt:        fetchedAt,
	})
	if err != nil {
		return 0, err
	}
	inserted, err := w.store.InsertDataPoints(ctx, storage.WeatherBatches, batchID, points)
	if err != nil {
		return inserted, err
	}
	w.countRows("points", inserted)
	return inserted, nil
}

func (w *Weather) saveDaily(ctx context.Context, locationID, modelID int64, daily *openmeteo.WeatherDaily, fetchedAt time.Time) (int64, error) {
	rows := make([]storage.WeatherDailyRow, 0, len(daily.Time))
	for i, day := range daily.Time {
		validDate, err := parseDate(day)
		if err != nil {
			w.countValidationError()
			continue
		}
		rows = append(rows, storage.WeatherDailyRow{
			LocationID:           locationID,
			ModelID:              modelID,
			ValidDate:            validDate,
			Temperature2mMax:     at(daily.Temperature2mMax, i),
			Temperature2mMin:     at(daily.Temperature2mMin, i),
			PrecipitationSum:     at(daily.PrecipitationSum, i),
			PrecipitationHours:   at(daily.PrecipitationHours, i),
			PrecipitationProbMax: at(daily.PrecipitationProbMax, i),
			WeatherCode:          at(daily.WeatherCode, i),
			Sunrise:              at(daily.Sunrise, i),
			Sunset:               at(daily.Sunset, i),
			SunshineDuration:     at(daily.SunshineDuration, i),
			UVIndexMax:           at(daily.UVIndexMax, i),
			WindSpeed10mMax:      at(daily.WindSpeed10mMax, i),
			WindGusts10mMax:      at(daily.WindGusts10mMax, i),
			WindDirectionDom:     at(daily.WindDirection10mDominant, i),
		})
		rows[len(rows)-1].FetchedAt = fetchedAt
	}

	saved, err := w.store.UpsertWeatherDaily(ctx, rows)
	w.countRows("daily", saved)
	return saved, err
}

func (w *Weather) countValidationError() {
	if w.metrics != nil {
		w.metrics.ValidationErrors.WithLabelValues(DomainWeather).Inc()
	}
}

func (w *Weather) countRows(family string, n int64) {
	if w.metrics != nil && n > 0 {
		w.metrics.RowsInserted.WithLabelValues(family).Add(float64(n))
	}
}
