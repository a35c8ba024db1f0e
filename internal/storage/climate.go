package storage

import (
	"context"
	"fmt"
	"time"
)

// ClimateDailyRow is one projected day within a climate projection run.
type ClimateDailyRow struct {
	ValidDate              time.Time
	Temperature2mMax       *float64
	Temperature2mMin       *float64
	Temperature2mMean      *float64
	PrecipitationSum       *float64
	RainSum                *float64
	SnowfallSum            *float64
	RelativeHumidity2mMax  *float64
	RelativeHumidity2mMin  *float64
	RelativeHumidity2mMean *float64
	WindSpeed10mMean       *float64
	WindSpeed10mMax        *float64
	PressureMSLMean        *float64
	CloudCoverMean         *float64
	ShortwaveRadiationSum  *float64
	SoilMoisture0To10cm    *float64
}

// UpsertClimateProjection writes the projection header for one
// (location, model, date range) and returns its id. Refreshing the same
// range reuses the header and only bumps fetched_at.
func (s *Store) UpsertClimateProjection(ctx context.Context, locationID, modelID int64, startDate, endDate, fetchedAt time.Time) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO climate_projections (location_id, model_id, start_date, end_date, fetched_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (location_id, model_id, start_date, end_date) DO UPDATE SET
			fetched_at = EXCLUDED.fetched_at
		RETURNING id`,
		locationID, modelID, startDate, endDate, fetchedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert climate projection: %w", err)
	}
	return id, nil
}

// UpsertClimateDaily writes projected days under a projection header,
// overwriting existing days on conflict. Returns the number of rows written.
func (s *Store) UpsertClimateDaily(ctx context.Context, climateID int64, rows []ClimateDailyRow) (int64, error) {
	var saved int64
	for _, r := range rows {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO climate_daily (
				climate_id, valid_date,
				temperature_2m_max, temperature_2m_min, temperature_2m_mean,
				precipitation_sum, rain_sum, snowfall_sum,
				relative_humidity_2m_max, relative_humidity_2m_min, relative_humidity_2m_mean,
				wind_speed_10m_mean, wind_speed_10m_max,
				pressure_msl_mean, cloud_cover_mean, shortwave_radiation_sum,
				soil_moisture_0_to_10cm
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
			ON CONFLICT (climate_id, valid_date) DO UPDATE SET
				temperature_2m_max        = EXCLUDED.temperature_2m_max,
				temperature_2m_min        = EXCLUDED.temperature_2m_min,
				temperature_2m_mean       = EXCLUDED.temperature_2m_mean,
				precipitation_sum         = EXCLUDED.precipitation_sum,
				rain_sum                  = EXCLUDED.rain_sum,
				snowfall_sum              = EXCLUDED.snowfall_sum,
				relative_humidity_2m_max  = EXCLUDED.relative_humidity_2m_max,
				relative_humidity_2m_min  = EXCLUDED.relative_humidity_2m_min,
				relative_humidity_2m_mean = EXCLUDED.relative_humidity_2m_mean,
				wind_speed_10m_mean       = EXCLUDED.wind_speed_10m_mean,
				wind_speed_10m_max        = EXCLUDED.wind_speed_10m_max,
				pressure_msl_mean         = EXCLUDED.pressure_msl_mean,
				cloud_cover_mean          = EXCLUDED.cloud_cover_mean,
				shortwave_radiation_sum   = EXCLUDED.shortwave_radiation_sum,
				soil_moisture_0_to_10cm   = EXCLUDED.soil_moisture_0_to_10cm`,
			climateID, r.ValidDate,
			r.Temperature2mMax, r.Temperature2mMin, r.Temperature2mMean,
			r.PrecipitationSum, r.RainSum, r.SnowfallSum,
			r.RelativeHumidity2mMax, r.RelativeHumidity2mMin, r.RelativeHumidity2mMean,
			r.WindSpeed10mMean, r.WindSpeed10mMax,
			r.PressureMSLMean, r.CloudCoverMean, r.ShortwaveRadiationSum,
			r.SoilMoisture0To10cm)
		if err != nil {
			return saved, fmt.Errorf("upsert climate daily %s: %w", r.ValidDate.Format("2006-01-02"), err)
		}
		saved++
	}
	return saved, nil
}

// CountClimateDaily returns the number of projected days under a header.
func (s *Store) CountClimateDaily(ctx context.Context, climateID int64) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM climate_daily WHERE climate_id = $1", climateID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count climate daily: %w", err)
	}
	return n, nil
}
