package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vientodata/enviro-etl-service/internal/adapter/openmeteo"
	"github.com/vientodata/enviro-etl-service/internal/config"
	"github.com/vientodata/enviro-etl-service/internal/observability"
	"github.com/vientodata/enviro-etl-service/internal/storage"
)

type fakeResolvers struct {
	lastCandidate storage.LocationRow
}

func (f *fakeResolvers) ResolveOrCreate(_ context.Context, cand storage.LocationRow) (int64, error) {
	f.lastCandidate = cand
	return 7, nil
}

type codeResolverFunc func(ctx context.Context, code string) (int64, error)

func (f codeResolverFunc) Resolve(ctx context.Context, code string) (int64, error) {
	return f(ctx, code)
}

func sequentialCodes() CodeResolver {
	ids := map[string]int64{}
	return codeResolverFunc(func(_ context.Context, code string) (int64, error) {
		if id, ok := ids[code]; ok {
			return id, nil
		}
		id := int64(len(ids) + 1)
		ids[code] = id
		return id, nil
	})
}

type fakeWeatherFetcher struct {
	resp *openmeteo.ForecastResponse
	err  error
}

func (f *fakeWeatherFetcher) WeatherForecast(_ context.Context, _ openmeteo.ForecastRequest) (*openmeteo.ForecastResponse, error) {
	return f.resp, f.err
}

type fakeWeatherStore struct {
	current    []storage.CurrentWeatherRow
	currentErr error
	batches    int
	lastBatch  storage.Batch
	points     []storage.DataPoint
	pointsErr  error
	daily      []storage.WeatherDailyRow
	dailyErr   error
}

func (f *fakeWeatherStore) UpsertCurrentWeather(_ context.Context, row storage.CurrentWeatherRow) error {
	if f.currentErr != nil {
		return f.currentErr
	}
	f.current = append(f.current, row)
	return nil
}

func (f *fakeWeatherStore) CreateBatch(_ context.Context, _ storage.BatchFamily, b storage.Batch) (int64, error) {
	f.batches++
	f.lastBatch = b
	return int64(f.batches), nil
}

func (f *fakeWeatherStore) InsertDataPoints(_ context.Context, _ storage.BatchFamily, _ int64, points []storage.DataPoint) (int64, error) {
	if f.pointsErr != nil {
		return 0, f.pointsErr
	}
	f.points = append(f.points, points...)
	return int64(len(points)), nil
}

func (f *fakeWeatherStore) UpsertWeatherDaily(_ context.Context, rows []storage.WeatherDailyRow) (int64, error) {
	if f.dailyErr != nil {
		return 0, f.dailyErr
	}
	f.daily = append(f.daily, rows...)
	return int64(len(rows)), nil
}

func weatherTestResponse() *openmeteo.ForecastResponse {
	return &openmeteo.ForecastResponse{
		Envelope: openmeteo.Envelope{
			Latitude: 40.4, Longitude: -3.7, Timezone: "Europe/Madrid",
			GenerationTimeMs: 1.9, UTCOffsetSeconds: 7200, Elevation: fptr(667),
		},
		Current: &openmeteo.CurrentWeather{
			Time:          "2026-08-31T12:00",
			Temperature2m: fptr(31.4),
		},
		Hourly: &openmeteo.WeatherHourly{
			Time:          []string{"2026-08-31T12:00", "2026-08-31T13:00"},
			Temperature2m: []*float64{fptr(31.4), nil},
			Precipitation: []*float64{fptr(0), fptr(0.2)},
		},
		Daily: &openmeteo.WeatherDaily{
			Time:             []string{"2026-08-31", "2026-09-01"},
			Temperature2mMax: []*float64{fptr(34), fptr(33)},
		},
	}
}

func newTestWeather(fetcher *fakeWeatherFetcher, store *fakeWeatherStore) *Weather {
	cfg := &config.Config{ForecastDays: 3}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewWeather(fetcher, store, &fakeResolvers{}, sequentialCodes(), sequentialCodes(),
		cfg, clockwork.NewFakeClock(), logger, observability.NewMetricsForTesting())
}

func TestWeather_IngestLocation(t *testing.T) {
	loc := config.Location{Name: "madrid", Latitude: 40.4, Longitude: -3.7}

	t.Run("all sections persist", func(t *testing.T) {
		store := &fakeWeatherStore{}
		w := newTestWeather(&fakeWeatherFetcher{resp: weatherTestResponse()}, store)

		res := w.IngestLocation(context.Background(), loc)
		require.NoError(t, res.Err)
		assert.True(t, res.Success)
		assert.True(t, res.CurrentSaved)
		assert.Equal(t, int64(4), res.PointsInserted, "two series, two timestamps each")
		assert.Equal(t, int64(2), res.DailySaved)
		assert.Equal(t, int64(7), res.LocationID)

		require.Len(t, store.current, 1)
		require.NotNil(t, store.current[0].Temperature2m)
		assert.InDelta(t, 31.4, *store.current[0].Temperature2m, 0.001)

		// nil hourly entry survives as a NULL reading at its timestamp,
		// flagged missing; present readings carry the catalog unit.
		var nilValues int
		for _, p := range store.points {
			if p.Value == nil {
				nilValues++
				assert.Equal(t, "missing", p.QualityFlag)
			} else {
				assert.Equal(t, "good", p.QualityFlag)
			}
			assert.NotEmpty(t, p.Unit)
		}
		assert.Equal(t, 1, nilValues)

		// Batch header carries the response envelope's provider metadata.
		assert.Equal(t, "Europe/Madrid", store.lastBatch.Timezone)
		assert.InDelta(t, 1.9, store.lastBatch.GenerationTimeMs, 0.001)
		assert.Equal(t, 7200, store.lastBatch.UTCOffsetSeconds)

		require.Len(t, store.daily, 2)
		wantDaily := storage.WeatherDailyRow{
			LocationID:       7,
			ModelID:          1,
			ValidDate:        time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
			Temperature2mMax: fptr(34),
			FetchedAt:        store.daily[0].FetchedAt,
		}
		if diff := cmp.Diff(wantDaily, store.daily[0]); diff != "" {
			t.Errorf("daily row mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("payload metadata reaches the location registry", func(t *testing.T) {
		resolver := &fakeResolvers{}
		cfg := &config.Config{ForecastDays: 3}
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		w := NewWeather(&fakeWeatherFetcher{resp: weatherTestResponse()}, &fakeWeatherStore{},
			resolver, sequentialCodes(), sequentialCodes(),
			cfg, clockwork.NewFakeClock(), logger, observability.NewMetricsForTesting())

		res := w.IngestLocation(context.Background(), loc)
		require.NoError(t, res.Err)

		assert.InDelta(t, 40.4, resolver.lastCandidate.Latitude, 0.001, "response coordinates, not configured ones")
		require.NotNil(t, resolver.lastCandidate.Elevation)
		assert.InDelta(t, 667, *resolver.lastCandidate.Elevation, 0.001)
	})

	t.Run("snapshot upsert counted as a row insert", func(t *testing.T) {
		metrics := observability.NewMetricsForTesting()
		cfg := &config.Config{ForecastDays: 3}
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		w := NewWeather(&fakeWeatherFetcher{resp: weatherTestResponse()}, &fakeWeatherStore{},
			&fakeResolvers{}, sequentialCodes(), sequentialCodes(),
			cfg, clockwork.NewFakeClock(), logger, metrics)

		res := w.IngestLocation(context.Background(), loc)
		require.NoError(t, res.Err)

		got := testutil.ToFloat64(metrics.RowsInserted.WithLabelValues("snapshot"))
		assert.Equal(t, 1.0, got)
	})

	t.Run("fetch failure fails the location", func(t *testing.T) {
		w := newTestWeather(&fakeWeatherFetcher{err: errors.New("connection refused")}, &fakeWeatherStore{})

		res := w.IngestLocation(context.Background(), loc)
		assert.False(t, res.Success)
		assert.ErrorContains(t, res.Err, "fetch weather")
	})

	t.Run("invalid payload fails the location", func(t *testing.T) {
		resp := weatherTestResponse()
		resp.Envelope.Latitude = 120
		w := newTestWeather(&fakeWeatherFetcher{resp: resp}, &fakeWeatherStore{})

		res := w.IngestLocation(context.Background(), loc)
		assert.False(t, res.Success)
		assert.ErrorContains(t, res.Err, "validation")
	})

	t.Run("sections persist independently", func(t *testing.T) {
		store := &fakeWeatherStore{currentErr: errors.New("constraint violation")}
		w := newTestWeather(&fakeWeatherFetcher{resp: weatherTestResponse()}, store)

		res := w.IngestLocation(context.Background(), loc)
		assert.True(t, res.Success, "hourly and daily still saved")
		assert.False(t, res.CurrentSaved)
		assert.Equal(t, int64(4), res.PointsInserted)
	})

	t.Run("nothing persisted fails the location", func(t *testing.T) {
		store := &fakeWeatherStore{
			currentErr: errors.New("down"),
			pointsErr:  errors.New("down"),
			dailyErr:   errors.New("down"),
		}
		w := newTestWeather(&fakeWeatherFetcher{resp: weatherTestResponse()}, store)

		res := w.IngestLocation(context.Background(), loc)
		assert.False(t, res.Success)
		assert.ErrorContains(t, res.Err, "no weather sections persisted")
	})

	t.Run("missing sections tolerated", func(t *testing.T) {
		resp := weatherTestResponse()
		resp.Current = nil
		resp.Daily = nil
		store := &fakeWeatherStore{}
		w := newTestWeather(&fakeWeatherFetcher{resp: resp}, store)

		res := w.IngestLocation(context.Background(), loc)
		assert.True(t, res.Success)
		assert.False(t, res.CurrentSaved)
		assert.Zero(t, res.DailySaved)
		assert.Equal(t, int64(4), res.PointsInserted)
	})
}
