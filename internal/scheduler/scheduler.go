// Package scheduler drives the recurring ingestion and cleanup jobs. Each
// domain runs on its own interval, and a domain never overlaps itself: a
// tick that lands while the previous run is still going is skipped.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/vientodata/enviro-etl-service/internal/ingest"
	"github.com/vientodata/enviro-etl-service/internal/observability"
)

// SummaryPublisher receives finished run summaries.
type SummaryPublisher interface {
	PublishSummary(ctx context.Context, summary ingest.Summary) error
}

// RunFunc executes one domain ingestion run.
type RunFunc func(ctx context.Context) (ingest.Summary, error)

// Scheduler owns the cron instance and the per-domain overlap guards.
type Scheduler struct {
	cron      *cron.Cron
	ctx       context.Context
	logger    *slog.Logger
	metrics   *observability.Metrics
	publisher SummaryPublisher

	mu     sync.Mutex
	guards map[string]*atomic.Bool
}

// New creates a scheduler whose jobs run under ctx.
func New(ctx context.Context, publisher SummaryPublisher, logger *slog.Logger, metrics *observability.Metrics) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		ctx:       ctx,
		logger:    logger,
		metrics:   metrics,
		publisher: publisher,
		guards:    make(map[string]*atomic.Bool),
	}
}

// AddDomainJob schedules an ingestion run every interval. The first run
// fires one interval after Start; callers wanting an immediate run call
// RunDomain themselves.
func (s *Scheduler) AddDomainJob(domain string, interval time.Duration, run RunFunc) error {
	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		s.RunDomain(domain, run)
	})
	if err != nil {
		return fmt.Errorf("schedule %s job: %w", domain, err)
	}
	s.logger.Info("ingestion job scheduled", "domain", domain, "interval", interval)
	return nil
}

// RunDomain executes one guarded run of a domain and publishes its summary.
func (s *Scheduler) RunDomain(domain string, run RunFunc) {
	guard := s.guardFor(domain)
	if !guard.CompareAndSwap(false, true) {
		s.logger.Warn("ingestion run skipped", "domain", domain, "reason", "previous run still in progress")
		return
	}
	defer guard.Store(false)

	summary, err := run(s.ctx)
	if err != nil {
		s.logger.Error("scheduled ingestion run failed", "domain", domain, "error", err)
	}
	if summary.Attempted > 0 {
		if pubErr := s.publisher.PublishSummary(s.ctx, summary); pubErr != nil {
			s.logger.Warn("run summary not published", "domain", domain, "error", pubErr)
		}
	}
}

// AddCleanupJob schedules the retention pass with a cron expression.
func (s *Scheduler) AddCleanupJob(spec string, run func(ctx context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := run(s.ctx); err != nil {
			s.logger.Error("scheduled cleanup failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule cleanup job: %w", err)
	}
	s.logger.Info("cleanup job scheduled", "spec", spec)
	return nil
}

// Start launches the cron loop.
func (s *Scheduler) Start() {
	s.cron.Start()
	if s.metrics != nil {
		s.metrics.SchedulerRunning.Set(1)
	}
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	if s.metrics != nil {
		s.metrics.SchedulerRunning.Set(0)
	}
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) guardFor(domain string) *atomic.Bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.guards[domain]
	if !ok {
		g = &atomic.Bool{}
		s.guards[domain] = g
	}
	return g
}
