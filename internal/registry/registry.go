// Package registry resolves measurement identities (locations, parameters,
// measurement models) against the database, caching resolved ids in memory
// for the lifetime of the process.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vientodata/enviro-etl-service/internal/catalog"
	"github.com/vientodata/enviro-etl-service/internal/storage"
)

// CoordinateTolerance is the per-axis matching window, in degrees, used to
// treat nearby coordinates as the same location. Matching is strict: a
// point exactly this far away is a different location. Roughly one
// kilometre at mid latitudes.
const CoordinateTolerance = 0.01

// LocationStore is the slice of the persistence layer the location registry
// needs.
type LocationStore interface {
	FindLocationNear(ctx context.Context, lat, lon, tol float64) (*storage.LocationRow, error)
	InsertLocation(ctx context.Context, loc storage.LocationRow) (*storage.LocationRow, error)
}

// Locations resolves coordinates to stable location ids. The first
// registration within the tolerance window wins; later registrations with
// slightly different coordinates or names reuse the original row.
type Locations struct {
	store  LocationStore
	logger *slog.Logger

	mu    sync.Mutex
	cache map[cacheKey]int64
}

type cacheKey struct {
	lat float64
	lon float64
}

// NewLocations creates a location registry.
func NewLocations(store LocationStore, logger *slog.Logger) *Locations {
	return &Locations{
		store:  store,
		logger: logger,
		cache:  make(map[cacheKey]int64),
	}
}

// ResolveOrCreate returns the id for the location described by cand,
// creating a row when no existing location falls within the tolerance
// window of its coordinates.
func (l *Locations) ResolveOrCreate(ctx context.Context, cand storage.LocationRow) (int64, error) {
	key := cacheKey{lat: cand.Latitude, lon: cand.Longitude}

	l.mu.Lock()
	if id, ok := l.cache[key]; ok {
		l.mu.Unlock()
		return id, nil
	}
	l.mu.Unlock()

	found, err := l.store.FindLocationNear(ctx, cand.Latitude, cand.Longitude, CoordinateTolerance)
	switch {
	case err == nil:
		l.remember(key, found.ID)
		return found.ID, nil
	case !errors.Is(err, storage.ErrNotFound):
		return 0, fmt.Errorf("resolve location %q: %w", cand.Name, err)
	}

	inserted, err := l.store.InsertLocation(ctx, cand)
	if err != nil {
		return 0, fmt.Errorf("create location %q: %w", cand.Name, err)
	}
	l.logger.Info("registered new location",
		"name", cand.Name, "latitude", cand.Latitude, "longitude", cand.Longitude,
		"location_id", inserted.ID)
	l.remember(key, inserted.ID)
	return inserted.ID, nil
}

func (l *Locations) remember(key cacheKey, id int64) {
	l.mu.Lock()
	l.cache[key] = id
	l.mu.Unlock()
}

// ParameterStore is the slice of the persistence layer the parameter
// registry needs.
type ParameterStore interface {
	EnsureParameter(ctx context.Context, code, name, unit, category string) (*storage.ParameterRow, error)
}

// Parameters resolves parameter codes to database ids via the static
// catalog. Unknown codes are rejected before touching the database.
type Parameters struct {
	store ParameterStore

	mu    sync.Mutex
	cache map[string]int64
}

// NewParameters creates a parameter registry.
func NewParameters(store ParameterStore) *Parameters {
	return &Parameters{store: store, cache: make(map[string]int64)}
}

// Resolve returns the database id for a catalog parameter code.
func (p *Parameters) Resolve(ctx context.Context, code string) (int64, error) {
	p.mu.Lock()
	if id, ok := p.cache[code]; ok {
		p.mu.Unlock()
		return id, nil
	}
	p.mu.Unlock()

	def, err := catalog.LookupParameter(code)
	if err != nil {
		return 0, err
	}

	row, err := p.store.EnsureParameter(ctx, def.Code, def.Name, def.Unit, def.Category)
	if err != nil {
		return 0, fmt.Errorf("resolve parameter %q: %w", code, err)
	}

	p.mu.Lock()
	p.cache[code] = row.ID
	p.mu.Unlock()
	return row.ID, nil
}

// ModelStore is the slice of the persistence layer the model registry needs.
type ModelStore interface {
	EnsureModel(ctx context.Context, m storage.ModelRow) (*storage.ModelRow, error)
}

// Models resolves measurement model codes to database ids via the static
// catalog.
type Models struct {
	store ModelStore

	mu    sync.Mutex
	cache map[string]int64
}

// NewModels creates a model registry.
func NewModels(store ModelStore) *Models {
	return &Models{store: store, cache: make(map[string]int64)}
}

// Resolve returns the database id for a catalog model code.
func (m *Models) Resolve(ctx context.Context, code string) (int64, error) {
	m.mu.Lock()
	if id, ok := m.cache[code]; ok {
		m.mu.Unlock()
		return id, nil
	}
	m.mu.Unlock()

	def, err := catalog.LookupModel(code)
	if err != nil {
		return 0, err
	}

	row, err := m.store.EnsureModel(ctx, storage.ModelRow{
		Code:                 def.Code,
		Name:                 def.Name,
		Category:             def.Domain,
		Provider:             def.Provider,
		ProviderCountry:      def.ProviderCountry,
		ResolutionKm:         nonZeroFloat(def.ResolutionKm),
		ResolutionDegrees:    nonZeroFloat(def.ResolutionDegrees),
		ForecastDays:         nonZeroInt(def.ForecastDays),
		UpdateFrequencyHours: nonZeroInt(def.UpdateFrequencyHours),
		Description:          def.Description,
	})
	if err != nil {
		return 0, fmt.Errorf("resolve model %q: %w", code, err)
	}

	m.mu.Lock()
	m.cache[code] = row.ID
	m.mu.Unlock()
	return row.ID, nil
}

// nonZeroFloat maps the catalog's zero-means-unknown convention to NULL.
func nonZeroFloat(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}

func nonZeroInt(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}
