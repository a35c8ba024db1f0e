package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ParameterRow is a persisted measured quantity definition.
type ParameterRow struct {
	ID       int64
	Code     string
	Name     string
	Unit     string
	Category string
}

// GetParameterByCode looks a parameter up by its unique code.
func (s *Store) GetParameterByCode(ctx context.Context, code string) (*ParameterRow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, code, name, unit, category
		FROM parameters
		WHERE code = $1`,
		code)

	var p ParameterRow
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Unit, &p.Category)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get parameter %q: %w", code, err)
	}
	return &p, nil
}

// EnsureParameter inserts the parameter if its code is new and returns the
// stored row either way.
func (s *Store) EnsureParameter(ctx context.Context, code, name, unit, category string) (*ParameterRow, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO parameters (code, name, unit, category)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (code) DO NOTHING`,
		code, name, unit, category)
	if err != nil {
		return nil, fmt.Errorf("ensure parameter %q: %w", code, err)
	}
	return s.GetParameterByCode(ctx, code)
}
