package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// WeatherDailyRow is one daily weather forecast aggregate.
type WeatherDailyRow struct {
	LocationID           int64
	ModelID              int64
	ValidDate            time.Time
	Temperature2mMax     *float64
	Temperature2mMin     *float64
	PrecipitationSum     *float64
	PrecipitationHours   *float64
	PrecipitationProbMax *int
	WeatherCode          *int
	Sunrise              *string
	Sunset               *string
	SunshineDuration     *float64
	UVIndexMax           *float64
	WindSpeed10mMax      *float64
	WindGusts10mMax      *float64
	WindDirectionDom     *int
	FetchedAt            time.Time
}

// UpsertWeatherDaily writes daily rows one by one so a bad row cannot poison
// the rest of the batch. A later fetch for the same day overwrites the
// earlier row entirely.
func (s *Store) UpsertWeatherDaily(ctx context.Context, rows []WeatherDailyRow) (int64, error) {
	var saved int64
	for _, r := range rows {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO weather_forecasts_daily (
				location_id, model_id, valid_date,
				temperature_2m_max, temperature_2m_min,
				precipitation_sum, precipitation_hours, precipitation_probability_max,
				weather_code, sunrise, sunset, sunshine_duration, uv_index_max,
				wind_speed_10m_max, wind_gusts_10m_max, wind_direction_10m_dominant,
				fetched_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
			ON CONFLICT (location_id, model_id, valid_date) DO UPDATE SET
				temperature_2m_max            = EXCLUDED.temperature_2m_max,
				temperature_2m_min            = EXCLUDED.temperature_2m_min,
				precipitation_sum             = EXCLUDED.precipitation_sum,
				precipitation_hours           = EXCLUDED.precipitation_hours,
				precipitation_probability_max = EXCLUDED.precipitation_probability_max,
				weather_code                  = EXCLUDED.weather_code,
				sunrise                       = EXCLUDED.sunrise,
				sunset                        = EXCLUDED.sunset,
				sunshine_duration             = EXCLUDED.sunshine_duration,
				uv_index_max                  = EXCLUDED.uv_index_max,
				wind_speed_10m_max            = EXCLUDED.wind_speed_10m_max,
				wind_gusts_10m_max            = EXCLUDED.wind_gusts_10m_max,
				wind_direction_10m_dominant   = EXCLUDED.wind_direction_10m_dominant,
				fetched_at                    = EXCLUDED.fetched_at`,
			r.LocationID, r.ModelID, r.ValidDate,
			r.Temperature2mMax, r.Temperature2mMin,
			r.PrecipitationSum, r.PrecipitationHours, r.PrecipitationProbMax,
			r.WeatherCode, r.Sunrise, r.Sunset, r.SunshineDuration, r.UVIndexMax,
			r.WindSpeed10mMax, r.WindGusts10mMax, r.WindDirectionDom,
			r.FetchedAt)
		if err != nil {
			return saved, fmt.Errorf("upsert weather daily %s: %w", r.ValidDate.Format("2006-01-02"), err)
		}
		saved++
	}
	return saved, nil
}

// GetWeatherDaily returns the daily row for (location, model, date).
func (s *Store) GetWeatherDaily(ctx context.Context, locationID, modelID int64, validDate time.Time) (*WeatherDailyRow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT location_id, model_id, valid_date,
		       temperature_2m_max, temperature_2m_min,
		       precipitation_sum, precipitation_hours, precipitation_probability_max,
		       weather_code, sunrise, sunset, sunshine_duration, uv_index_max,
		       wind_speed_10m_max, wind_gusts_10m_max, wind_direction_10m_dominant,
		       fetched_at
		FROM weather_forecasts_daily
		WHERE location_id = $1 AND model_id = $2 AND valid_date = $3`,
		locationID, modelID, validDate)

	var r WeatherDailyRow
	err := row.Scan(&r.LocationID, &r.ModelID, &r.ValidDate,
		&r.Temperature2mMax, &r.Temperature2mMin,
		&r.PrecipitationSum, &r.PrecipitationHours, &r.PrecipitationProbMax,
		&r.WeatherCode, &r.Sunrise, &r.Sunset, &r.SunshineDuration, &r.UVIndexMax,
		&r.WindSpeed10mMax, &r.WindGusts10mMax, &r.WindDirectionDom,
		&r.FetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get weather daily: %w", err)
	}
	return &r, nil
}

// MarineDailyRow is one daily marine forecast aggregate.
type MarineDailyRow struct {
	LocationID            int64
	ModelID               int64
	ValidDate             time.Time
	WaveHeightMax         *float64
	WaveDirectionDom      *int
	WavePeriodMax         *float64
	SwellWaveHeightMax    *float64
	SwellWaveDirectionDom *int
	SeaSurfaceTempMean    *float64
	OceanCurrentVelMax    *float64
	FetchedAt             time.Time
}

// UpsertMarineDaily writes daily marine rows, overwriting on conflict.
func (s *Store) UpsertMarineDaily(ctx context.Context, rows []MarineDailyRow) (int64, error) {
	var saved int64
	for _, r := range rows {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO marine_forecasts_daily (
				location_id, model_id, valid_date,
				wave_height_max, wave_direction_dominant, wave_period_max,
				swell_wave_height_max, swell_wave_direction_dominant,
				sea_surface_temperature_mean, ocean_current_velocity_max,
				fetched_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (location_id, model_id, valid_date) DO UPDATE SET
				wave_height_max               = EXCLUDED.wave_height_max,
				wave_direction_dominant       = EXCLUDED.wave_direction_dominant,
				wave_period_max               = EXCLUDED.wave_period_max,
				swell_wave_height_max         = EXCLUDED.swell_wave_height_max,
				swell_wave_direction_dominant = EXCLUDED.swell_wave_direction_dominant,
				sea_surface_temperature_mean  = EXCLUDED.sea_surface_temperature_mean,
				ocean_current_velocity_max    = EXCLUDED.ocean_current_velocity_max,
				fetched_at                    = EXCLUDED.fetched_at`,
			r.LocationID, r.ModelID, r.ValidDate,
			r.WaveHeightMax, r.WaveDirectionDom, r.WavePeriodMax,
			r.SwellWaveHeightMax, r.SwellWaveDirectionDom,
			r.SeaSurfaceTempMean, r.OceanCurrentVelMax,
			r.FetchedAt)
		if err != nil {
			return saved, fmt.Errorf("upsert marine daily %s: %w", r.ValidDate.Format("2006-01-02"), err)
		}
		saved++
	}
	return saved, nil
}

// SatelliteDailyRow is one daily solar irradiance aggregate. Mean fields are
// averaged over the valid hourly samples of the fetch window; a day with no
// valid samples for a component stores NULL.
type SatelliteDailyRow struct {
	LocationID                 int64
	ModelID                    int64
	ValidDate                  time.Time
	ShortwaveRadiationMean     *float64
	DirectRadiationMean        *float64
	DiffuseRadiationMean       *float64
	DirectNormalIrradianceMean *float64
	GlobalTiltedIrradianceMean *float64
	TerrestrialRadiationMean   *float64
	PanelTilt                  int
	PanelAzimuth               int
	SampleCount                int
	ValidSamples               int
	DataQuality                string
	FetchedAt                  time.Time
}

// UpsertSatelliteDaily writes one irradiance aggregate, overwriting on
// conflict.
func (s *Store) UpsertSatelliteDaily(ctx context.Context, r SatelliteDailyRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO satellite_radiation_daily (
			location_id, model_id, valid_date,
			shortwave_radiation_mean, direct_radiation_mean, diffuse_radiation_mean,
			direct_normal_irradiance_mean, global_tilted_irradiance_mean,
			terrestrial_radiation_mean,
			panel_tilt, panel_azimuth, sample_count, valid_samples, data_quality,
			fetched_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (location_id, model_id, valid_date) DO UPDATE SET
			shortwave_radiation_mean      = EXCLUDED.shortwave_radiation_mean,
			direct_radiation_mean         = EXCLUDED.direct_radiation_mean,
			diffuse_radiation_mean        = EXCLUDED.diffuse_radiation_mean,
			direct_normal_irradiance_mean = EXCLUDED.direct_normal_irradiance_mean,
			global_tilted_irradiance_mean = EXCLUDED.global_tilted_irradiance_mean,
			terrestrial_radiation_mean    = EXCLUDED.terrestrial_radiation_mean,
			panel_tilt                    = EXCLUDED.panel_tilt,
			panel_azimuth                 = EXCLUDED.panel_azimuth,
			sample_count                  = EXCLUDED.sample_count,
			valid_samples                 = EXCLUDED.valid_samples,
			data_quality                  = EXCLUDED.data_quality,
			fetched_at                    = EXCLUDED.fetched_at`,
		r.LocationID, r.ModelID, r.ValidDate,
		r.ShortwaveRadiationMean, r.DirectRadiationMean, r.DiffuseRadiationMean,
		r.DirectNormalIrradianceMean, r.GlobalTiltedIrradianceMean,
		r.TerrestrialRadiationMean,
		r.PanelTilt, r.PanelAzimuth, r.SampleCount, r.ValidSamples, r.DataQuality,
		r.FetchedAt)
	if err != nil {
		return fmt.Errorf("upsert satellite daily %s: %w", r.ValidDate.Format("2006-01-02"), err)
	}
	return nil
}

// GetSatelliteDaily returns the aggregate for (location, model, date).
func (s *Store) GetSatelliteDaily(ctx context.Context, locationID, modelID int64, validDate time.Time) (*SatelliteDailyRow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT location_id, model_id, valid_date,
		       shortwave_radiation_mean, direct_radiation_mean, diffuse_radiation_mean,
		       direct_normal_irradiance_mean, global_tilted_irradiance_mean,
		       terrestrial_radiation_mean,
		       panel_tilt, panel_azimuth, sample_count, valid_samples, data_quality,
		       fetched_at
		FROM satellite_radiation_daily
		WHERE location_id = $1 AND model_id = $2 AND valid_date = $3`,
		locationID, modelID, validDate)

	var r SatelliteDailyRow
	err := row.Scan(&r.LocationID, &r.ModelID, &r.ValidDate,
		&r.ShortwaveRadiationMean, &r.DirectRadiationMean, &r.DiffuseRadiationMean,
		&r.DirectNormalIrradianceMean, &r.GlobalTiltedIrradianceMean,
		&r.TerrestrialRadiationMean,
		&r.PanelTilt, &r.PanelAzimuth, &r.SampleCount, &r.ValidSamples, &r.DataQuality,
		&r.FetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get satellite daily: %w", err)
	}
	return &r, nil
}

// SatelliteStats summarises irradiance aggregates over a date range.
// Averages skip days where a component is NULL; Days counts the rows that
// fell inside the range.
type SatelliteStats struct {
	Days                      int64
	ShortwaveRadiationAvg     *float64
	DirectRadiationAvg        *float64
	DiffuseRadiationAvg       *float64
	DirectNormalIrradianceAvg *float64
	GlobalTiltedIrradianceAvg *float64
	TotalSamples              int64
	TotalValidSamples         int64
}

// GetSatelliteStats aggregates the daily rows of (location, model) over
// [start, end] inclusive.
func (s *Store) GetSatelliteStats(ctx context.Context, locationID, modelID int64, start, end time.Time) (*SatelliteStats, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       AVG(shortwave_radiation_mean),
		       AVG(direct_radiation_mean),
		       AVG(diffuse_radiation_mean),
		       AVG(direct_normal_irradiance_mean),
		       AVG(global_tilted_irradiance_mean),
		       COALESCE(SUM(sample_count), 0),
		       COALESCE(SUM(valid_samples), 0)
		FROM satellite_radiation_daily
		WHERE location_id = $1 AND model_id = $2 AND valid_date BETWEEN $3 AND $4`,
		locationID, modelID, start, end)

	var st SatelliteStats
	err := row.Scan(&st.Days,
		&st.ShortwaveRadiationAvg, &st.DirectRadiationAvg, &st.DiffuseRadiationAvg,
		&st.DirectNormalIrradianceAvg, &st.GlobalTiltedIrradianceAvg,
		&st.TotalSamples, &st.TotalValidSamples)
	if err != nil {
		return nil, fmt.Errorf("satellite stats: %w", err)
	}
	return &st, nil
}
