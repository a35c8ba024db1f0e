package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by lookups that matched no row.
var ErrNotFound = errors.New("not found")

// LocationRow is a persisted monitoring location. Elevation comes from the
// provider payload when it reports one; Country and Admin1 are free-form
// administrative labels and may be empty.
type LocationRow struct {
	ID        int64
	Name      string
	Latitude  float64
	Longitude float64
	Timezone  string
	Elevation *float64
	Country   string
	Admin1    string
	CreatedAt time.Time
}

// FindLocationNear returns the location whose coordinates lie strictly
// within tol degrees of (lat, lon) on both axes, or ErrNotFound. A point
// exactly tol away is a different location. When several match, the oldest
// row wins so repeated lookups stay stable.
func (s *Store) FindLocationNear(ctx context.Context, lat, lon, tol float64) (*LocationRow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, latitude, longitude, timezone, elevation, country, admin1, created_at
		FROM locations
		WHERE ABS(latitude - $1) < $3 AND ABS(longitude - $2) < $3
		ORDER BY id
		LIMIT 1`,
		lat, lon, tol)

	var loc LocationRow
	err := row.Scan(&loc.ID, &loc.Name, &loc.Latitude, &loc.Longitude, &loc.Timezone,
		&loc.Elevation, &loc.Country, &loc.Admin1, &loc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find location: %w", err)
	}
	return &loc, nil
}

// InsertLocation stores a new location and returns it with its id.
func (s *Store) InsertLocation(ctx context.Context, loc LocationRow) (*LocationRow, error) {
	if loc.Timezone == "" {
		loc.Timezone = "auto"
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO locations (name, latitude, longitude, timezone, elevation, country, admin1)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		loc.Name, loc.Latitude, loc.Longitude, loc.Timezone, loc.Elevation, loc.Country, loc.Admin1).
		Scan(&loc.ID, &loc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert location: %w", err)
	}
	return &loc, nil
}

// ListLocations returns all known locations ordered by id.
func (s *Store) ListLocations(ctx context.Context) ([]LocationRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, latitude, longitude, timezone, elevation, country, admin1, created_at
		FROM locations
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var out []LocationRow
	for rows.Next() {
		var loc LocationRow
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.Latitude, &loc.Longitude, &loc.Timezone,
			&loc.Elevation, &loc.Country, &loc.Admin1, &loc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}
