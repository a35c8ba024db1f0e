package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/vientodata/enviro-etl-service/internal/adapter/openmeteo"
	"github.com/vientodata/enviro-etl-service/internal/config"
	"github.com/vientodata/enviro-etl-service/internal/observability"
	"github.com/vientodata/enviro-etl-service/internal/storage"
)

// SatelliteModelCode is the measurement model irradiance rows attribute to.
const SatelliteModelCode = "CAMS_SOLAR"

// SatelliteFetcher is the upstream slice the satellite ingester needs.
type SatelliteFetcher interface {
	SolarRadiation(ctx context.Context, req openmeteo.SatelliteRequest) (*openmeteo.SatelliteResponse, error)
}

// SatelliteStore is the persistence slice the satellite ingester needs.
type SatelliteStore interface {
	UpsertSatelliteDaily(ctx context.Context, row storage.SatelliteDailyRow) error
}

// Satellite ingests solar irradiance over a recent window and persists one
// aggregated row per fetch, dated to the window's end. The hourly samples
// themselves are never stored; only their NULL-aware means survive.
type Satellite struct {
	fetcher   SatelliteFetcher
	store     SatelliteStore
	locations LocationResolver
	models    CodeResolver

	daysBack     int
	panelTilt    int
	panelAzimuth int
	clock        clockwork.Clock
	logger       *slog.Logger
	metrics      *observability.Metrics
}

// NewSatellite creates the satellite ingester.
func NewSatellite(fetcher SatelliteFetcher, store SatelliteStore, locations LocationResolver, models CodeResolver, cfg *config.Config, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Satellite {
	return &Satellite{
		fetcher:      fetcher,
		store:        store,
		locations:    locations,
		models:       models,
		daysBack:     cfg.SatelliteDaysBack,
		panelTilt:    cfg.PanelTilt,
		panelAzimuth: cfg.PanelAzimuth,
		clock:        clock,
		logger:       logger,
		metrics:      metrics,
	}
}

// Domain implements LocationIngester.
func (s *Satellite) Domain() string { return DomainSatellite }

// IngestLocation aggregates the trailing window ending yesterday. Satellite
// irradiance arrives with a lag, so today's samples are still incomplete.
func (s *Satellite) IngestLocation(ctx context.Context, loc config.Location) Result {
	end := s.clock.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -1)
	start := end.AddDate(0, 0, -s.daysBack)
	return s.IngestWindow(ctx, loc, start, end)
}

// IngestWindow aggregates one explicit date window. Backfill calls this
// day by day.
func (s *Satellite) IngestWindow(ctx context.Context, loc config.Location, start, end time.Time) Result {
	res := Result{Location: loc}

	resp, err := s.fetcher.SolarRadiation(ctx, openmeteo.SatelliteRequest{
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Timezone:  loc.Timezone,
		StartDate: start,
		EndDate:   end,
		Tilt:      s.panelTilt,
		Azimuth:   s.panelAzimuth,
	})
	if err != nil {
		res.Err = fmt.Errorf("fetch solar radiation: %w", err)
		return res
	}
	if err := openmeteo.Validate(resp); err != nil {
		if s.metrics != nil {
			s.metrics.ValidationErrors.WithLabelValues(DomainSatellite).Inc()
		}
		res.Err = err
		return res
	}
	if resp.Hourly == nil || len(resp.Hourly.Time) == 0 {
		res.Err = fmt.Errorf("empty radiation window for %s", loc.Name)
		return res
	}

	locationID, err := s.locations.ResolveOrCreate(ctx, storage.LocationRow{
		Name:      loc.Name,
		Latitude:  resp.Latitude,
		Longitude: resp.Longitude,
		Timezone:  loc.Timezone,
		Elevation: resp.Elevation,
	})
	if err != nil {
		res.Err = err
		return res
	}
	res.LocationID = locationID

	modelID, err := s.models.Resolve(ctx, SatelliteModelCode)
	if err != nil {
		res.Err = err
		return res
	}

	row := s.aggregate(resp.Hourly, locationID, modelID, end)
	if err := s.store.UpsertSatelliteDaily(ctx, row); err != nil {
		res.Err = fmt.Errorf("save satellite daily: %w", err)
		return res
	}
	if s.metrics != nil {
		s.metrics.RowsInserted.WithLabelValues("daily").Inc()
	}

	res.Success = true
	res.DailySaved = 1
	return res
}

// aggregate collapses the window's samples into one row. Completeness is
// judged on shortwave radiation, the component every provider reports.
func (s *Satellite) aggregate(hourly *openmeteo.SatelliteHourly, locationID, modelID int64, validDate time.Time) storage.SatelliteDailyRow {
	total := len(hourly.Time)
	valid := 0
	for _, v := range hourly.ShortwaveRadiation {
		if v != nil {
			valid++
		}
	}
	score := QualityScore(total, valid)

	return storage.SatelliteDailyRow{
		LocationID:                 locationID,
		ModelID:                    modelID,
		ValidDate:                  validDate,
		ShortwaveRadiationMean:     MeanSkipNulls(hourly.ShortwaveRadiation),
		DirectRadiationMean:        MeanSkipNulls(hourly.DirectRadiation),
		DiffuseRadiationMean:       MeanSkipNulls(hourly.DiffuseRadiation),
		DirectNormalIrradianceMean: MeanSkipNulls(hourly.DirectNormalIrradiance),
		GlobalTiltedIrradianceMean: MeanSkipNulls(hourly.GlobalTiltedIrradiance),
		TerrestrialRadiationMean:   MeanSkipNulls(hourly.TerrestrialRadiation),
		PanelTilt:                  s.panelTilt,
		PanelAzimuth:               s.panelAzimuth,
		SampleCount:                total,
		ValidSamples:               valid,
		DataQuality:                QualityFlag(score),
		FetchedAt:                  s.clock.Now().UTC(),
	}
}
