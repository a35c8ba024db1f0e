package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CurrentWeatherRow is the single latest-conditions row per location.
// Pointer fields persist as NULL when the upstream omitted the quantity.
type CurrentWeatherRow struct {
	LocationID         int64
	ObservedAt         *time.Time
	Temperature2m      *float64
	RelativeHumidity2m *int
	ApparentTemp       *float64
	Precipitation      *float64
	WeatherCode        *int
	CloudCover         *int
	WindSpeed10m       *float64
	WindDirection10m   *int
	FetchedAt          time.Time
}

// UpsertCurrentWeather replaces the snapshot for the row's location. A NULL
// incoming value overwrites any previous reading; the snapshot always
// reflects the latest fetch exactly.
func (s *Store) UpsertCurrentWeather(ctx context.Context, row CurrentWeatherRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO current_weather (
			location_id, observed_at, temperature_2m, relative_humidity_2m,
			apparent_temperature, precipitation, weather_code, cloud_cover,
			wind_speed_10m, wind_direction_10m, fetched_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (location_id) DO UPDATE SET
			observed_at          = EXCLUDED.observed_at,
			temperature_2m       = EXCLUDED.temperature_2m,
			relative_humidity_2m = EXCLUDED.relative_humidity_2m,
			apparent_temperature = EXCLUDED.apparent_temperature,
			precipitation        = EXCLUDED.precipitation,
			weather_code         = EXCLUDED.weather_code,
			cloud_cover          = EXCLUDED.cloud_cover,
			wind_speed_10m       = EXCLUDED.wind_speed_10m,
			wind_direction_10m   = EXCLUDED.wind_direction_10m,
			fetched_at           = EXCLUDED.fetched_at`,
		row.LocationID, row.ObservedAt, row.Temperature2m, row.RelativeHumidity2m,
		row.ApparentTemp, row.Precipitation, row.WeatherCode, row.CloudCover,
		row.WindSpeed10m, row.WindDirection10m, row.FetchedAt)
	if err != nil {
		return fmt.Errorf("upsert current weather: %w", err)
	}
	return nil
}

// GetCurrentWeather returns the snapshot for a location, or ErrNotFound.
func (s *Store) GetCurrentWeather(ctx context.Context, locationID int64) (*CurrentWeatherRow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT location_id, observed_at, temperature_2m, relative_humidity_2m,
		       apparent_temperature, precipitation, weather_code, cloud_cover,
		       wind_speed_10m, wind_direction_10m, fetched_at
		FROM current_weather
		WHERE location_id = $1`,
		locationID)

	var r CurrentWeatherRow
	err := row.Scan(&r.LocationID, &r.ObservedAt, &r.Temperature2m, &r.RelativeHumidity2m,
		&r.ApparentTemp, &r.Precipitation, &r.WeatherCode, &r.CloudCover,
		&r.WindSpeed10m, &r.WindDirection10m, &r.FetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get current weather: %w", err)
	}
	return &r, nil
}

// AirQualityCurrentRow is the single latest air quality row per location.
type AirQualityCurrentRow struct {
	LocationID      int64
	ObservedAt      *time.Time
	PM25            *float64
	PM10            *float64
	EuropeanAQI     *int
	USAQI           *int
	NitrogenDioxide *float64
	Ozone           *float64
	SulphurDioxide  *float64
	CarbonMonoxide  *float64
	Dust            *float64
	Ammonia         *float64
	FetchedAt       time.Time
}

// UpsertAirQualityCurrent replaces the air quality snapshot for a location.
func (s *Store) UpsertAirQualityCurrent(ctx context.Context, row AirQualityCurrentRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO air_quality_current (
			location_id, observed_at, pm2_5, pm10, european_aqi, us_aqi,
			nitrogen_dioxide, ozone, sulphur_dioxide, carbon_monoxide,
			dust, ammonia, fetched_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (location_id) DO UPDATE SET
			observed_at      = EXCLUDED.observed_at,
			pm2_5            = EXCLUDED.pm2_5,
			pm10             = EXCLUDED.pm10,
			european_aqi     = EXCLUDED.european_aqi,
			us_aqi           = EXCLUDED.us_aqi,
			nitrogen_dioxide = EXCLUDED.nitrogen_dioxide,
			ozone            = EXCLUDED.ozone,
			sulphur_dioxide  = EXCLUDED.sulphur_dioxide,
			carbon_monoxide  = EXCLUDED.carbon_monoxide,
			dust             = EXCLUDED.dust,
			ammonia          = EXCLUDED.ammonia,
			fetched_at       = EXCLUDED.fetched_at`,
		row.LocationID, row.ObservedAt, row.PM25, row.PM10, row.EuropeanAQI, row.USAQI,
		row.NitrogenDioxide, row.Ozone, row.SulphurDioxide, row.CarbonMonoxide,
		row.Dust, row.Ammonia, row.FetchedAt)
	if err != nil {
		return fmt.Errorf("upsert air quality current: %w", err)
	}
	return nil
}

// GetAirQualityCurrent returns the snapshot for a location, or ErrNotFound.
func (s *Store) GetAirQualityCurrent(ctx context.Context, locationID int64) (*AirQualityCurrentRow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT location_id, observed_at, pm2_5, pm10, european_aqi, us_aqi,
		       nitrogen_dioxide, ozone, sulphur_dioxide, carbon_monoxide,
		       dust, ammonia, fetched_at
		FROM air_quality_current
		WHERE location_id = $1`,
		locationID)

	var r AirQualityCurrentRow
	err := row.Scan(&r.LocationID, &r.ObservedAt, &r.PM25, &r.PM10, &r.EuropeanAQI, &r.USAQI,
		&r.NitrogenDioxide, &r.Ozone, &r.SulphurDioxide, &r.CarbonMonoxide,
		&r.Dust, &r.Ammonia, &r.FetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get air quality current: %w", err)
	}
	return &r, nil
}

// MarineCurrentRow is the single latest sea-state row per location.
type MarineCurrentRow struct {
	LocationID            int64
	ObservedAt            *time.Time
	WaveHeight            *float64
	WaveDirection         *int
	WavePeriod            *float64
	SwellWaveHeight       *float64
	SwellWaveDirection    *int
	SwellWavePeriod       *float64
	WindWaveHeight        *float64
	SeaSurfaceTemperature *float64
	OceanCurrentVelocity  *float64
	OceanCurrentDirection *int
	FetchedAt             time.Time
}

// UpsertMarineCurrent replaces the sea-state snapshot for a location.
func (s *Store) UpsertMarineCurrent(ctx context.Context, row MarineCurrentRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO marine_current (
			location_id, observed_at, wave_height, wave_direction, wave_period,
			swell_wave_height, swell_wave_direction, swell_wave_period,
			wind_wave_height, sea_surface_temperature,
			ocean_current_velocity, ocean_current_direction, fetched_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (location_id) DO UPDATE SET
			observed_at             = EXCLUDED.observed_at,
			wave_height             = EXCLUDED.wave_height,
			wave_direction          = EXCLUDED.wave_direction,
			wave_period             = EXCLUDED.wave_period,
			swell_wave_height       = EXCLUDED.swell_wave_height,
			swell_wave_direction    = EXCLUDED.swell_wave_direction,
			swell_wave_period       = EXCLUDED.swell_wave_period,
			wind_wave_height        = EXCLUDED.wind_wave_height,
			sea_surface_temperature = EXCLUDED.sea_surface_temperature,
			ocean_current_velocity  = EXCLUDED.ocean_current_velocity,
			ocean_current_direction = EXCLUDED.ocean_current_direction,
			fetched_at              = EXCLUDED.fetched_at`,
		row.LocationID, row.ObservedAt, row.WaveHeight, row.WaveDirection, row.WavePeriod,
		row.SwellWaveHeight, row.SwellWaveDirection, row.SwellWavePeriod,
		row.WindWaveHeight, row.SeaSurfaceTemperature,
		row.OceanCurrentVelocity, row.OceanCurrentDirection, row.FetchedAt)
	if err != nil {
		return fmt.Errorf("upsert marine current: %w", err)
	}
	return nil
}

// GetMarineCurrent returns the snapshot for a location, or ErrNotFound.
func (s *Store) GetMarineCurrent(ctx context.Context, locationID int64) (*MarineCurrentRow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT location_id, observed_at, wave_height, wave_direction, wave_period,
		       swell_wave_height, swell_wave_direction, swell_wave_period,
		       wind_wave_height, sea_surface_temperature,
		       ocean_current_velocity, ocean_current_direction, fetched_at
		FROM marine_current
		WHERE location_id = $1`,
		locationID)

	var r MarineCurrentRow
	err := row.Scan(&r.LocationID, &r.ObservedAt, &r.WaveHeight, &r.WaveDirection, &r.WavePeriod,
		&r.SwellWaveHeight, &r.SwellWaveDirection, &r.SwellWavePeriod,
		&r.WindWaveHeight, &r.SeaSurfaceTemperature,
		&r.OceanCurrentVelocity, &r.OceanCurrentDirection, &r.FetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get marine current: %w", err)
	}
	return &r, nil
}
