package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vientodata/enviro-etl-service/internal/config"
	"github.com/vientodata/enviro-etl-service/internal/observability"
)

type scriptedIngester struct {
	mu       sync.Mutex
	failFor  map[string]error
	seen     []string
	inFlight int
	maxSeen  int
}

func (s *scriptedIngester) Domain() string { return "weather" }

func (s *scriptedIngester) IngestLocation(_ context.Context, loc config.Location) Result {
	s.mu.Lock()
	s.seen = append(s.seen, loc.Name)
	s.inFlight++
	if s.inFlight > s.maxSeen {
		s.maxSeen = s.inFlight
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	if err, ok := s.failFor[loc.Name]; ok {
		return Result{Location: loc, Err: err}
	}
	return Result{Location: loc, Success: true, PointsInserted: 10, DailySaved: 2}
}

func testLocations(names ...string) []config.Location {
	out := make([]config.Location, len(names))
	for i, n := range names {
		out[i] = config.Location{Name: n, Latitude: float64(i), Longitude: float64(i)}
	}
	return out
}

func testRunner(locs []config.Location, workers int) *Runner {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRunner(locs, workers, logger, observability.NewMetricsForTesting())
}

func TestRunner_AllSucceed(t *testing.T) {
	ing := &scriptedIngester{}
	runner := testRunner(testLocations("a", "b", "c"), 2)

	summary, err := runner.Run(context.Background(), ing)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Attempted)
	assert.Equal(t, 3, summary.Succeeded)
	assert.Zero(t, summary.Failed)
	assert.Equal(t, int64(30), summary.PointsRows)
	assert.Equal(t, int64(6), summary.DailyRows)
	assert.Empty(t, summary.Errors)
	assert.Len(t, ing.seen, 3)
	assert.NotEqual(t, summary.RunID.String(), "00000000-0000-0000-0000-000000000000")
}

func TestRunner_FailureIsolation(t *testing.T) {
	ing := &scriptedIngester{failFor: map[string]error{"b": errors.New("upstream down")}}
	runner := testRunner(testLocations("a", "b", "c"), 1)

	summary, err := runner.Run(context.Background(), ing)
	require.NoError(t, err, "run succeeds when at least one location succeeded")

	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "b: upstream down")
	assert.Len(t, ing.seen, 3, "a failure never stops later locations")
}

func TestRunner_AllFailed(t *testing.T) {
	ing := &scriptedIngester{failFor: map[string]error{
		"a": errors.New("boom"),
		"b": errors.New("boom"),
	}}
	runner := testRunner(testLocations("a", "b"), 2)

	summary, err := runner.Run(context.Background(), ing)
	assert.ErrorIs(t, err, ErrAllLocationsFailed)
	assert.Equal(t, 2, summary.Failed)
}

func TestRunner_NoLocations(t *testing.T) {
	ing := &scriptedIngester{}
	runner := testRunner(nil, 2)

	summary, err := runner.Run(context.Background(), ing)
	assert.ErrorIs(t, err, ErrNoLocations)
	assert.Zero(t, summary.Attempted)
	assert.Empty(t, ing.seen)
}

func TestRunner_BoundedConcurrency(t *testing.T) {
	ing := &scriptedIngester{}
	runner := testRunner(testLocations("a", "b", "c", "d", "e", "f", "g", "h"), 3)

	_, err := runner.Run(context.Background(), ing)
	require.NoError(t, err)
	assert.LessOrEqual(t, ing.maxSeen, 3, "never more in flight than the worker count")
}

func TestRunner_ContextCancelled(t *testing.T) {
	ing := &scriptedIngester{}
	runner := testRunner(testLocations("a", "b", "c"), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := runner.Run(ctx, ing)
	assert.Error(t, err)
	assert.Zero(t, summary.Succeeded)
}
