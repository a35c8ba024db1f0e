package storage

import (
	"context"
	"fmt"
)

// Table names. Retention and the batch families reference these constants so
// no table name is ever interpolated from external input.
const (
	TableLocations = "locations"
	TableModels    = "measurement_models"
	TableParams    = "parameters"

	TableCurrentWeather    = "current_weather"
	TableWeatherForecasts  = "weather_forecasts"
	TableForecastData      = "forecast_data"
	TableWeatherDaily      = "weather_forecasts_daily"

	TableAirQualityCurrent   = "air_quality_current"
	TableAirQualityForecasts = "air_quality_forecasts"
	TableAirQualityData      = "air_quality_data"

	TableMarineCurrent   = "marine_current"
	TableMarineForecasts = "marine_forecasts"
	TableMarineData      = "marine_data"
	TableMarineDaily     = "marine_forecasts_daily"

	TableSatelliteDaily = "satellite_radiation_daily"

	TableClimateProjections = "climate_projections"
	TableClimateDaily       = "climate_daily"
)

// schemaStatements run in order; children reference parents, so parents come
// first. Every statement is idempotent.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS locations (
		id          BIGSERIAL PRIMARY KEY,
		name        TEXT NOT NULL,
		latitude    DOUBLE PRECISION NOT NULL,
		longitude   DOUBLE PRECISION NOT NULL,
		timezone    TEXT NOT NULL DEFAULT 'auto',
		elevation   DOUBLE PRECISION,
		country     TEXT NOT NULL DEFAULT '',
		admin1      TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS measurement_models (
		id                     BIGSERIAL PRIMARY KEY,
		code                   TEXT NOT NULL UNIQUE,
		name                   TEXT NOT NULL,
		category               TEXT NOT NULL,
		provider               TEXT NOT NULL DEFAULT '',
		provider_country       TEXT NOT NULL DEFAULT '',
		resolution_km          DOUBLE PRECISION,
		resolution_degrees     DOUBLE PRECISION,
		forecast_days          INTEGER,
		update_frequency_hours INTEGER,
		description            TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS parameters (
		id       BIGSERIAL PRIMARY KEY,
		code     TEXT NOT NULL UNIQUE,
		name     TEXT NOT NULL,
		unit     TEXT NOT NULL,
		category TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS current_weather (
		id                   BIGSERIAL PRIMARY KEY,
		location_id          BIGINT NOT NULL UNIQUE REFERENCES locations(id),
		observed_at          TIMESTAMPTZ,
		temperature_2m       DOUBLE PRECISION,
		relative_humidity_2m INTEGER,
		apparent_temperature DOUBLE PRECISION,
		precipitation        DOUBLE PRECISION,
		weather_code         INTEGER,
		cloud_cover          INTEGER,
		wind_speed_10m       DOUBLE PRECISION,
		wind_direction_10m   INTEGER,
		fetched_at           TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS weather_forecasts (
		id                 BIGSERIAL PRIMARY KEY,
		location_id        BIGINT NOT NULL REFERENCES locations(id),
		model_id           BIGINT NOT NULL REFERENCES measurement_models(id),
		forecast_days      INTEGER NOT NULL,
		generation_time_ms DOUBLE PRECISION NOT NULL DEFAULT 0,
		timezone           TEXT NOT NULL DEFAULT 'auto',
		utc_offset_seconds INTEGER NOT NULL DEFAULT 0,
		fetched_at         TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS forecast_data (
		id           BIGSERIAL PRIMARY KEY,
		forecast_id  BIGINT NOT NULL REFERENCES weather_forecasts(id) ON DELETE CASCADE,
		parameter_id BIGINT NOT NULL REFERENCES parameters(id),
		valid_time   TIMESTAMPTZ NOT NULL,
		value        DOUBLE PRECISION,
		unit         TEXT NOT NULL DEFAULT '',
		quality_flag TEXT NOT NULL DEFAULT 'good',
		UNIQUE (forecast_id, parameter_id, valid_time)
	)`,

	`CREATE TABLE IF NOT EXISTS weather_forecasts_daily (
		id                            BIGSERIAL PRIMARY KEY,
		location_id                   BIGINT NOT NULL REFERENCES locations(id),
		model_id                      BIGINT NOT NULL REFERENCES measurement_models(id),
		valid_date                    DATE NOT NULL,
		temperature_2m_max            DOUBLE PRECISION,
		temperature_2m_min            DOUBLE PRECISION,
		precipitation_sum             DOUBLE PRECISION,
		precipitation_hours           DOUBLE PRECISION,
		precipitation_probability_max INTEGER,
		weather_code                  INTEGER,
		sunrise                       TEXT,
		sunset                        TEXT,
		sunshine_duration             DOUBLE PRECISION,
		uv_index_max                  DOUBLE PRECISION,
		wind_speed_10m_max            DOUBLE PRECISION,
		wind_gusts_10m_max            DOUBLE PRECISION,
		wind_direction_10m_dominant   INTEGER,
		fetched_at                    TIMESTAMPTZ NOT NULL,
		UNIQUE (location_id, model_id, valid_date)
	)`,

	`CREATE TABLE IF NOT EXISTS air_quality_current (
		id               BIGSERIAL PRIMARY KEY,
		location_id      BIGINT NOT NULL UNIQUE REFERENCES locations(id),
		observed_at      TIMESTAMPTZ,
		pm2_5            DOUBLE PRECISION,
		pm10             DOUBLE PRECISION,
		european_aqi     INTEGER,
		us_aqi           INTEGER,
		nitrogen_dioxide DOUBLE PRECISION,
		ozone            DOUBLE PRECISION,
		sulphur_dioxide  DOUBLE PRECISION,
		carbon_monoxide  DOUBLE PRECISION,
		dust             DOUBLE PRECISION,
		ammonia          DOUBLE PRECISION,
		fetched_at       TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS air_quality_forecasts (
		id                 BIGSERIAL PRIMARY KEY,
		location_id        BIGINT NOT NULL REFERENCES locations(id),
		model_id           BIGINT NOT NULL REFERENCES measurement_models(id),
		forecast_days      INTEGER NOT NULL,
		generation_time_ms DOUBLE PRECISION NOT NULL DEFAULT 0,
		timezone           TEXT NOT NULL DEFAULT 'auto',
		utc_offset_seconds INTEGER NOT NULL DEFAULT 0,
		fetched_at         TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS air_quality_data (
		id           BIGSERIAL PRIMARY KEY,
		forecast_id  BIGINT NOT NULL REFERENCES air_quality_forecasts(id) ON DELETE CASCADE,
		parameter_id BIGINT NOT NULL REFERENCES parameters(id),
		valid_time   TIMESTAMPTZ NOT NULL,
		value        DOUBLE PRECISION,
		unit         TEXT NOT NULL DEFAULT '',
		quality_flag TEXT NOT NULL DEFAULT 'good',
		UNIQUE (forecast_id, parameter_id, valid_time)
	)`,

	`CREATE TABLE IF NOT EXISTS marine_current (
		id                      BIGSERIAL PRIMARY KEY,
		location_id             BIGINT NOT NULL UNIQUE REFERENCES locations(id),
		observed_at             TIMESTAMPTZ,
		wave_height             DOUBLE PRECISION,
		wave_direction          INTEGER,
		wave_period             DOUBLE PRECISION,
		swell_wave_height       DOUBLE PRECISION,
		swell_wave_direction    INTEGER,
		swell_wave_period       DOUBLE PRECISION,
		wind_wave_height        DOUBLE PRECISION,
		sea_surface_temperature DOUBLE PRECISION,
		ocean_current_velocity  DOUBLE PRECISION,
		ocean_current_direction INTEGER,
		fetched_at              TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS marine_forecasts (
		id                 BIGSERIAL PRIMARY KEY,
		location_id        BIGINT NOT NULL REFERENCES locations(id),
		model_id           BIGINT NOT NULL REFERENCES measurement_models(id),
		forecast_days      INTEGER NOT NULL,
		generation_time_ms DOUBLE PRECISION NOT NULL DEFAULT 0,
		timezone           TEXT NOT NULL DEFAULT 'auto',
		utc_offset_seconds INTEGER NOT NULL DEFAULT 0,
		fetched_at         TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS marine_data (
		id           BIGSERIAL PRIMARY KEY,
		forecast_id  BIGINT NOT NULL REFERENCES marine_forecasts(id) ON DELETE CASCADE,
		parameter_id BIGINT NOT NULL REFERENCES parameters(id),
		valid_time   TIMESTAMPTZ NOT NULL,
		value        DOUBLE PRECISION,
		unit         TEXT NOT NULL DEFAULT '',
		quality_flag TEXT NOT NULL DEFAULT 'good',
		UNIQUE (forecast_id, parameter_id, valid_time)
	)`,

	`CREATE TABLE IF NOT EXISTS marine_forecasts_daily (
		id                            BIGSERIAL PRIMARY KEY,
		location_id                   BIGINT NOT NULL REFERENCES locations(id),
		model_id                      BIGINT NOT NULL REFERENCES measurement_models(id),
		valid_date                    DATE NOT NULL,
		wave_height_max               DOUBLE PRECISION,
		wave_direction_dominant       INTEGER,
		wave_period_max               DOUBLE PRECISION,
		swell_wave_height_max         DOUBLE PRECISION,
		swell_wave_direction_dominant INTEGER,
		sea_surface_temperature_mean  DOUBLE PRECISION,
		ocean_current_velocity_max    DOUBLE PRECISION,
		fetched_at                    TIMESTAMPTZ NOT NULL,
		UNIQUE (location_id, model_id, valid_date)
	)`,

	`CREATE TABLE IF NOT EXISTS satellite_radiation_daily (
		id                            BIGSERIAL PRIMARY KEY,
		location_id                   BIGINT NOT NULL REFERENCES locations(id),
		model_id                      BIGINT NOT NULL REFERENCES measurement_models(id),
		valid_date                    DATE NOT NULL,
		shortwave_radiation_mean      DOUBLE PRECISION,
		direct_radiation_mean         DOUBLE PRECISION,
		diffuse_radiation_mean        DOUBLE PRECISION,
		direct_normal_irradiance_mean DOUBLE PRECISION,
		global_tilted_irradiance_mean DOUBLE PRECISION,
		terrestrial_radiation_mean    DOUBLE PRECISION,
		panel_tilt                    INTEGER NOT NULL DEFAULT 0,
		panel_azimuth                 INTEGER NOT NULL DEFAULT 0,
		sample_count                  INTEGER NOT NULL DEFAULT 0,
		valid_samples                 INTEGER NOT NULL DEFAULT 0,
		data_quality                  TEXT NOT NULL DEFAULT 'poor',
		fetched_at                    TIMESTAMPTZ NOT NULL,
		UNIQUE (location_id, model_id, valid_date)
	)`,

	`CREATE TABLE IF NOT EXISTS climate_projections (
		id          BIGSERIAL PRIMARY KEY,
		location_id BIGINT NOT NULL REFERENCES locations(id),
		model_id    BIGINT NOT NULL REFERENCES measurement_models(id),
		start_date  DATE NOT NULL,
		end_date    DATE NOT NULL,
		fetched_at  TIMESTAMPTZ NOT NULL,
		UNIQUE (location_id, model_id, start_date, end_date)
	)`,

	`CREATE TABLE IF NOT EXISTS climate_daily (
		id                          BIGSERIAL PRIMARY KEY,
		climate_id                  BIGINT NOT NULL REFERENCES climate_projections(id) ON DELETE CASCADE,
		valid_date                  DATE NOT NULL,
		temperature_2m_max          DOUBLE PRECISION,
		temperature_2m_min          DOUBLE PRECISION,
		temperature_2m_mean         DOUBLE PRECISION,
		precipitation_sum           DOUBLE PRECISION,
		rain_sum                    DOUBLE PRECISION,
		snowfall_sum                DOUBLE PRECISION,
		relative_humidity_2m_max    DOUBLE PRECISION,
		relative_humidity_2m_min    DOUBLE PRECISION,
		relative_humidity_2m_mean   DOUBLE PRECISION,
		wind_speed_10m_mean         DOUBLE PRECISION,
		wind_speed_10m_max          DOUBLE PRECISION,
		pressure_msl_mean           DOUBLE PRECISION,
		cloud_cover_mean            DOUBLE PRECISION,
		shortwave_radiation_sum     DOUBLE PRECISION,
		soil_moisture_0_to_10cm     DOUBLE PRECISION,
		UNIQUE (climate_id, valid_date)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_forecast_data_valid_time ON forecast_data (valid_time)`,
	`CREATE INDEX IF NOT EXISTS idx_air_quality_data_valid_time ON air_quality_data (valid_time)`,
	`CREATE INDEX IF NOT EXISTS idx_marine_data_valid_time ON marine_data (valid_time)`,
	`CREATE INDEX IF NOT EXISTS idx_weather_forecasts_fetched_at ON weather_forecasts (fetched_at)`,
	`CREATE INDEX IF NOT EXISTS idx_air_quality_forecasts_fetched_at ON air_quality_forecasts (fetched_at)`,
	`CREATE INDEX IF NOT EXISTS idx_marine_forecasts_fetched_at ON marine_forecasts (fetched_at)`,
}

// EnsureSchema creates all tables and indexes if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	s.logger.Info("database schema verified", "statements", len(schemaStatements))
	return nil
}
