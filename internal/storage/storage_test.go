package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLocation(t *testing.T, store *Store, name string, lat, lon float64) *LocationRow {
	t.Helper()
	loc, err := store.InsertLocation(context.Background(), LocationRow{Name: name, Latitude: lat, Longitude: lon, Timezone: "auto"})
	require.NoError(t, err)
	return loc
}

func seedModel(t *testing.T, store *Store, code string) *ModelRow {
	t.Helper()
	m, err := store.EnsureModel(context.Background(), ModelRow{Code: code, Name: code, Category: "forecast"})
	require.NoError(t, err)
	return m
}

func seedParameter(t *testing.T, store *Store, code string) *ParameterRow {
	t.Helper()
	p, err := store.EnsureParameter(context.Background(), code, code, "unit", "weather")
	require.NoError(t, err)
	return p
}

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func TestFindLocationNear(t *testing.T) {
	store := OpenTestStore(t)
	ctx := context.Background()

	inserted := seedLocation(t, store, "madrid", 40.4168, -3.7038)

	t.Run("within tolerance on both axes", func(t *testing.T) {
		found, err := store.FindLocationNear(ctx, 40.4205, -3.7001, 0.01)
		require.NoError(t, err)
		assert.Equal(t, inserted.ID, found.ID)
	})

	t.Run("one axis out of tolerance misses", func(t *testing.T) {
		_, err := store.FindLocationNear(ctx, 40.4168, -3.7200, 0.01)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("exactly at tolerance misses", func(t *testing.T) {
		// 0.0 and 0.01 differ by exactly the tolerance in float terms.
		meridian := seedLocation(t, store, "meridian", 10.0, 0.0)
		_, err := store.FindLocationNear(ctx, 10.0, 0.01, 0.01)
		assert.ErrorIs(t, err, ErrNotFound, "boundary is exclusive")

		found, err := store.FindLocationNear(ctx, 10.0, 0.009, 0.01)
		require.NoError(t, err)
		assert.Equal(t, meridian.ID, found.ID)
	})

	t.Run("oldest row wins when several match", func(t *testing.T) {
		seedLocation(t, store, "madrid-duplicate", 40.4169, -3.7039)
		found, err := store.FindLocationNear(ctx, 40.4168, -3.7038, 0.01)
		require.NoError(t, err)
		assert.Equal(t, inserted.ID, found.ID)
	})
}

func TestEnsureModel_Idempotent(t *testing.T) {
	store := OpenTestStore(t)
	ctx := context.Background()

	first, err := store.EnsureModel(ctx, ModelRow{
		Code: "om_forecast", Name: "Open-Meteo Forecast", Category: "forecast",
		Provider: "Open-Meteo", ResolutionKm: fptr(11), ForecastDays: iptr(16),
		Description: "default blend",
	})
	require.NoError(t, err)

	second, err := store.EnsureModel(ctx, ModelRow{Code: "om_forecast", Name: "renamed", Category: "other", Description: "changed"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Open-Meteo Forecast", second.Name, "existing row is never overwritten")
	assert.Equal(t, "Open-Meteo", second.Provider)
	require.NotNil(t, second.ResolutionKm)
	assert.InDelta(t, 11, *second.ResolutionKm, 0.001)
}

func TestInsertLocation_KeepsProviderMetadata(t *testing.T) {
	store := OpenTestStore(t)
	ctx := context.Background()

	inserted, err := store.InsertLocation(ctx, LocationRow{
		Name: "madrid", Latitude: 40.4168, Longitude: -3.7038,
		Timezone: "Europe/Madrid", Elevation: fptr(667), Country: "Spain", Admin1: "Madrid",
	})
	require.NoError(t, err)

	found, err := store.FindLocationNear(ctx, 40.4168, -3.7038, 0.01)
	require.NoError(t, err)
	assert.Equal(t, inserted.ID, found.ID)
	require.NotNil(t, found.Elevation)
	assert.InDelta(t, 667, *found.Elevation, 0.001)
	assert.Equal(t, "Spain", found.Country)
	assert.Equal(t, "Madrid", found.Admin1)
}

func TestUpsertCurrentWeather_NullOverwrites(t *testing.T) {
	store := OpenTestStore(t)
	ctx := context.Background()
	loc := seedLocation(t, store, "madrid", 40.4, -3.7)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, store.UpsertCurrentWeather(ctx, CurrentWeatherRow{
		LocationID:    loc.ID,
		Temperature2m: fptr(31.4),
		WeatherCode:   iptr(1),
		FetchedAt:     now,
	}))

	// Second fetch omits temperature. NULL must replace the old reading.
	require.NoError(t, store.UpsertCurrentWeather(ctx, CurrentWeatherRow{
		LocationID:  loc.ID,
		WeatherCode: iptr(3),
		FetchedAt:   now.Add(15 * time.Minute),
	}))

	got, err := store.GetCurrentWeather(ctx, loc.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Temperature2m)
	require.NotNil(t, got.WeatherCode)
	assert.Equal(t, 3, *got.WeatherCode)

	n, err := store.TableCount(ctx, TableCurrentWeather)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "one snapshot row per location")
}

func TestInsertDataPoints_DuplicatesSkipped(t *testing.T) {
	store := OpenTestStore(t)
	ctx := context.Background()
	loc := seedLocation(t, store, "madrid", 40.4, -3.7)
	model := seedModel(t, store, "om_forecast")
	param := seedParameter(t, store, "temp_2m")

	now := time.Now().UTC().Truncate(time.Hour)
	batchID, err := store.CreateBatch(ctx, WeatherBatches, Batch{
		LocationID: loc.ID, ModelID: model.ID, ForecastDays: 3,
		GenerationTimeMs: 2.1, Timezone: "Europe/Madrid", UTCOffsetSeconds: 7200,
		FetchedAt: now,
	})
	require.NoError(t, err)

	points := []DataPoint{
		{ParameterID: param.ID, ValidTime: now, Value: fptr(31.4), Unit: "°C", QualityFlag: "good"},
		{ParameterID: param.ID, ValidTime: now.Add(time.Hour), Value: nil, Unit: "°C", QualityFlag: "missing"},
		{ParameterID: param.ID, ValidTime: now.Add(2 * time.Hour), Value: fptr(29.8), Unit: "°C", QualityFlag: "good"},
	}
	inserted, err := store.InsertDataPoints(ctx, WeatherBatches, batchID, points)
	require.NoError(t, err)
	assert.Equal(t, int64(3), inserted)

	// Same points again: conflict target skips every row.
	inserted, err = store.InsertDataPoints(ctx, WeatherBatches, batchID, points)
	require.NoError(t, err)
	assert.Equal(t, int64(0), inserted)

	n, err := store.CountDataPoints(ctx, WeatherBatches, batchID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	stored, err := store.ListDataPoints(ctx, WeatherBatches, batchID)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, fptr(31.4), stored[0].Value)
	assert.Equal(t, "°C", stored[0].Unit)
	assert.Equal(t, "good", stored[0].QualityFlag)
	assert.Nil(t, stored[1].Value, "absent reading stays NULL")
	assert.Equal(t, "missing", stored[1].QualityFlag)
	assert.Equal(t, fptr(29.8), stored[2].Value)
}

func TestCreateBatch_StampsFetchedAt(t *testing.T) {
	store := OpenTestStore(t)
	ctx := context.Background()
	loc := seedLocation(t, store, "madrid", 40.4, -3.7)
	model := seedModel(t, store, "om_forecast")

	before := time.Now().UTC()
	_, err := store.CreateBatch(ctx, WeatherBatches, Batch{LocationID: loc.ID, ModelID: model.ID, ForecastDays: 3})
	require.NoError(t, err)

	var fetchedAt time.Time
	err = store.db.QueryRowContext(ctx, "SELECT fetched_at FROM weather_forecasts WHERE location_id = $1", loc.ID).Scan(&fetchedAt)
	require.NoError(t, err)
	assert.False(t, fetchedAt.Before(before.Truncate(time.Second)), "zero FetchedAt is stamped from the store clock")
}

func TestUpsertWeatherDaily_Overwrites(t *testing.T) {
	store := OpenTestStore(t)
	ctx := context.Background()
	loc := seedLocation(t, store, "madrid", 40.4, -3.7)
	model := seedModel(t, store, "om_forecast")

	day := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()

	saved, err := store.UpsertWeatherDaily(ctx, []WeatherDailyRow{{
		LocationID:       loc.ID,
		ModelID:          model.ID,
		ValidDate:        day,
		Temperature2mMax: fptr(34.0),
		FetchedAt:        now,
	}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved)

	saved, err = store.UpsertWeatherDaily(ctx, []WeatherDailyRow{{
		LocationID:       loc.ID,
		ModelID:          model.ID,
		ValidDate:        day,
		Temperature2mMax: fptr(35.5),
		FetchedAt:        now.Add(time.Hour),
	}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved)

	got, err := store.GetWeatherDaily(ctx, loc.ID, model.ID, day)
	require.NoError(t, err)
	require.NotNil(t, got.Temperature2mMax)
	assert.InDelta(t, 35.5, *got.Temperature2mMax, 0.001)

	n, err := store.TableCount(ctx, TableWeatherDaily)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestUpsertClimateProjection_HeaderReused(t *testing.T) {
	store := OpenTestStore(t)
	ctx := context.Background()
	loc := seedLocation(t, store, "madrid", 40.4, -3.7)
	model := seedModel(t, store, "ec_earth3p_hr")

	start := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2030, 12, 31, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()

	first, err := store.UpsertClimateProjection(ctx, loc.ID, model.ID, start, end, now)
	require.NoError(t, err)

	second, err := store.UpsertClimateProjection(ctx, loc.ID, model.ID, start, end, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, first, second, "same range reuses the header")

	saved, err := store.UpsertClimateDaily(ctx, first, []ClimateDailyRow{
		{ValidDate: start, Temperature2mMean: fptr(8.2)},
		{ValidDate: start.AddDate(0, 0, 1), Temperature2mMean: nil},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), saved)

	n, err := store.CountClimateDaily(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestRetention_DeletesChildrenWithHeaders(t *testing.T) {
	store := OpenTestStore(t)
	ctx := context.Background()
	loc := seedLocation(t, store, "madrid", 40.4, -3.7)
	model := seedModel(t, store, "om_forecast")
	param := seedParameter(t, store, "temp_2m")

	now := time.Now().UTC()
	old := now.Add(-10 * 24 * time.Hour)

	oldBatch, err := store.CreateBatch(ctx, WeatherBatches, Batch{LocationID: loc.ID, ModelID: model.ID, ForecastDays: 3, FetchedAt: old})
	require.NoError(t, err)
	_, err = store.InsertDataPoints(ctx, WeatherBatches, oldBatch, []DataPoint{
		{ParameterID: param.ID, ValidTime: old, Value: fptr(20)},
	})
	require.NoError(t, err)

	freshBatch, err := store.CreateBatch(ctx, WeatherBatches, Batch{LocationID: loc.ID, ModelID: model.ID, ForecastDays: 3, FetchedAt: now})
	require.NoError(t, err)
	_, err = store.InsertDataPoints(ctx, WeatherBatches, freshBatch, []DataPoint{
		{ParameterID: param.ID, ValidTime: now, Value: fptr(30)},
	})
	require.NoError(t, err)

	deleted, err := store.DeleteBatchesBefore(ctx, now.Add(-7*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted, "one header deleted; its data rows cascade")

	headers, err := store.TableCount(ctx, TableWeatherForecasts)
	require.NoError(t, err)
	assert.Equal(t, int64(1), headers)

	points, err := store.TableCount(ctx, TableForecastData)
	require.NoError(t, err)
	assert.Equal(t, int64(1), points)

	t.Run("idempotent", func(t *testing.T) {
		deleted, err := store.DeleteBatchesBefore(ctx, now.Add(-7*24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(0), deleted)
	})
}

func TestGetSatelliteStats_RangeAggregates(t *testing.T) {
	store := OpenTestStore(t)
	ctx := context.Background()
	loc := seedLocation(t, store, "madrid", 40.4, -3.7)
	model := seedModel(t, store, "cams_solar")

	now := time.Now().UTC()
	days := []SatelliteDailyRow{
		{ValidDate: time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), ShortwaveRadiationMean: fptr(200), SampleCount: 24, ValidSamples: 24},
		{ValidDate: time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC), ShortwaveRadiationMean: fptr(100), DirectRadiationMean: fptr(80), SampleCount: 24, ValidSamples: 20},
		{ValidDate: time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), ShortwaveRadiationMean: nil, SampleCount: 24, ValidSamples: 0},
	}
	for _, d := range days {
		d.LocationID = loc.ID
		d.ModelID = model.ID
		d.DataQuality = "good"
		d.FetchedAt = now
		require.NoError(t, store.UpsertSatelliteDaily(ctx, d))
	}

	stats, err := store.GetSatelliteStats(ctx, loc.ID, model.ID,
		time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.Days)
	require.NotNil(t, stats.ShortwaveRadiationAvg)
	assert.InDelta(t, 150, *stats.ShortwaveRadiationAvg, 0.001, "NULL day excluded from the average")
	require.NotNil(t, stats.DirectRadiationAvg)
	assert.InDelta(t, 80, *stats.DirectRadiationAvg, 0.001)
	assert.Nil(t, stats.GlobalTiltedIrradianceAvg)
	assert.Equal(t, int64(72), stats.TotalSamples)
	assert.Equal(t, int64(44), stats.TotalValidSamples)

	t.Run("empty range", func(t *testing.T) {
		stats, err := store.GetSatelliteStats(ctx, loc.ID, model.ID,
			time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Zero(t, stats.Days)
		assert.Nil(t, stats.ShortwaveRadiationAvg)
	})
}

func TestStats_CoversAllDataTables(t *testing.T) {
	store := OpenTestStore(t)

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Contains(t, stats, TableLocations)
	assert.Contains(t, stats, TableClimateDaily)
	for table, n := range stats {
		assert.Zero(t, n, "table %s should be empty after truncate", table)
	}
}
