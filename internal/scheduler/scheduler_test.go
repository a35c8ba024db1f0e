package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vientodata/enviro-etl-service/internal/ingest"
	"github.com/vientodata/enviro-etl-service/internal/observability"
)

type capturePublisher struct {
	mu        sync.Mutex
	summaries []ingest.Summary
	err       error
}

func (c *capturePublisher) PublishSummary(_ context.Context, s ingest.Summary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summaries = append(c.summaries, s)
	return c.err
}

func newTestScheduler(pub SummaryPublisher) *Scheduler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(context.Background(), pub, logger, observability.NewMetricsForTesting())
}

func TestRunDomain_PublishesSummary(t *testing.T) {
	pub := &capturePublisher{}
	s := newTestScheduler(pub)

	s.RunDomain("weather", func(context.Context) (ingest.Summary, error) {
		return ingest.Summary{Domain: "weather", Attempted: 2, Succeeded: 2}, nil
	})

	require.Len(t, pub.summaries, 1)
	assert.Equal(t, "weather", pub.summaries[0].Domain)
}

func TestRunDomain_SkipsEmptyRuns(t *testing.T) {
	pub := &capturePublisher{}
	s := newTestScheduler(pub)

	s.RunDomain("weather", func(context.Context) (ingest.Summary, error) {
		return ingest.Summary{Domain: "weather"}, ingest.ErrNoLocations
	})

	assert.Empty(t, pub.summaries, "nothing attempted, nothing published")
}

func TestRunDomain_PublishFailureIsNonFatal(t *testing.T) {
	pub := &capturePublisher{err: errors.New("broker down")}
	s := newTestScheduler(pub)

	s.RunDomain("marine", func(context.Context) (ingest.Summary, error) {
		return ingest.Summary{Domain: "marine", Attempted: 1, Succeeded: 1}, nil
	})
	// No panic, no error escalation; the run itself already succeeded.
	assert.Len(t, pub.summaries, 1)
}

func TestRunDomain_NoOverlap(t *testing.T) {
	pub := &capturePublisher{}
	s := newTestScheduler(pub)

	started := make(chan struct{})
	release := make(chan struct{})
	var runs atomic.Int32

	slow := func(context.Context) (ingest.Summary, error) {
		runs.Add(1)
		close(started)
		<-release
		return ingest.Summary{Domain: "weather", Attempted: 1, Succeeded: 1}, nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.RunDomain("weather", slow)
	}()

	<-started
	// Second tick while the first is still running: skipped.
	s.RunDomain("weather", slow)
	assert.Equal(t, int32(1), runs.Load())

	close(release)
	wg.Wait()
}

func TestRunDomain_DifferentDomainsDoNotBlock(t *testing.T) {
	pub := &capturePublisher{}
	s := newTestScheduler(pub)

	started := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.RunDomain("weather", func(context.Context) (ingest.Summary, error) {
			close(started)
			<-release
			return ingest.Summary{Domain: "weather", Attempted: 1, Succeeded: 1}, nil
		})
	}()

	<-started
	s.RunDomain("marine", func(context.Context) (ingest.Summary, error) {
		return ingest.Summary{Domain: "marine", Attempted: 1, Succeeded: 1}, nil
	})

	pub.mu.Lock()
	published := len(pub.summaries)
	pub.mu.Unlock()
	assert.Equal(t, 1, published, "marine ran while weather was busy")

	close(release)
	wg.Wait()
}

func TestAddDomainJob(t *testing.T) {
	s := newTestScheduler(&capturePublisher{})
	err := s.AddDomainJob("weather", 15*time.Minute, func(context.Context) (ingest.Summary, error) {
		return ingest.Summary{}, nil
	})
	assert.NoError(t, err)
}

func TestAddCleanupJob(t *testing.T) {
	s := newTestScheduler(&capturePublisher{})

	require.NoError(t, s.AddCleanupJob("0 2 * * *", func(context.Context) error { return nil }))
	assert.Error(t, s.AddCleanupJob("not a cron spec", func(context.Context) error { return nil }))
}
