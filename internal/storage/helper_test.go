package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/jonboulle/clockwork"
)

// OpenTestStore connects to the database named by TEST_DATABASE_URL, applies
// the schema, and truncates all data tables so each test starts clean. Tests
// are skipped when the variable is unset.
func OpenTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping database integration test")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	store := NewStore(db, logger, clockwork.NewRealClock())

	ctx := context.Background()
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if err := store.truncateAll(ctx); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
	return store
}

func (s *Store) truncateAll(ctx context.Context) error {
	tables := []string{
		TableClimateDaily, TableClimateProjections,
		TableSatelliteDaily,
		TableMarineDaily, TableMarineData, TableMarineForecasts, TableMarineCurrent,
		TableAirQualityData, TableAirQualityForecasts, TableAirQualityCurrent,
		TableWeatherDaily, TableForecastData, TableWeatherForecasts, TableCurrentWeather,
		TableParams, TableModels, TableLocations,
	}
	stmt := fmt.Sprintf("TRUNCATE %s RESTART IDENTITY CASCADE", strings.Join(tables, ", "))
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}
	return nil
}
