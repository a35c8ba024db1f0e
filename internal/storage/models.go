package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ModelRow is a persisted measurement model. Provider and resolution
// metadata mirror the static catalog entry the row was created from.
type ModelRow struct {
	ID                   int64
	Code                 string
	Name                 string
	Category             string
	Provider             string
	ProviderCountry      string
	ResolutionKm         *float64
	ResolutionDegrees    *float64
	ForecastDays         *int
	UpdateFrequencyHours *int
	Description          string
}

// GetModelByCode looks a model up by its unique code.
func (s *Store) GetModelByCode(ctx context.Context, code string) (*ModelRow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, code, name, category, provider, provider_country,
		       resolution_km, resolution_degrees, forecast_days, update_frequency_hours,
		       description
		FROM measurement_models
		WHERE code = $1`,
		code)

	var m ModelRow
	err := row.Scan(&m.ID, &m.Code, &m.Name, &m.Category, &m.Provider, &m.ProviderCountry,
		&m.ResolutionKm, &m.ResolutionDegrees, &m.ForecastDays, &m.UpdateFrequencyHours,
		&m.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get model %q: %w", code, err)
	}
	return &m, nil
}

// EnsureModel inserts the model if its code is new and returns the stored
// row either way. Existing rows are never overwritten.
func (s *Store) EnsureModel(ctx context.Context, m ModelRow) (*ModelRow, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO measurement_models
			(code, name, category, provider, provider_country,
			 resolution_km, resolution_degrees, forecast_days, update_frequency_hours,
			 description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (code) DO NOTHING`,
		m.Code, m.Name, m.Category, m.Provider, m.ProviderCountry,
		m.ResolutionKm, m.ResolutionDegrees, m.ForecastDays, m.UpdateFrequencyHours,
		m.Description)
	if err != nil {
		return nil, fmt.Errorf("ensure model %q: %w", m.Code, err)
	}
	return s.GetModelByCode(ctx, m.Code)
}
