package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion service.
type Metrics struct {
	// Fetch client metrics.
	FetchRequests  *prometheus.CounterVec   // labels: endpoint, outcome={success,error}
	FetchRetries   *prometheus.CounterVec   // labels: endpoint
	FetchDuration  *prometheus.HistogramVec // labels: endpoint

	// Per-domain ingestion metrics.
	LocationsSucceeded *prometheus.CounterVec // labels: domain
	LocationsFailed    *prometheus.CounterVec // labels: domain
	ValidationErrors   *prometheus.CounterVec // labels: domain
	RunDuration        *prometheus.HistogramVec // labels: domain

	// Persistence metrics.
	RowsInserted *prometheus.CounterVec // labels: family={snapshot,points,daily,climate}

	// Retention metrics.
	RowsDeleted *prometheus.CounterVec // labels: family

	SchedulerRunning prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FetchRequests,
		m.FetchRetries,
		m.FetchDuration,
		m.LocationsSucceeded,
		m.LocationsFailed,
		m.ValidationErrors,
		m.RunDuration,
		m.RowsInserted,
		m.RowsDeleted,
		m.SchedulerRunning,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "enviro_etl",
			Name:      "fetch_requests_total",
			Help:      "Upstream API requests by endpoint family and outcome.",
		}, []string{"endpoint", "outcome"}),
		FetchRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "enviro_etl",
			Name:      "fetch_retries_total",
			Help:      "Retried upstream API attempts by endpoint family.",
		}, []string{"endpoint"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "enviro_etl",
			Name:      "fetch_duration_seconds",
			Help:      "Upstream API request duration in seconds, including retries.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"endpoint"}),
		LocationsSucceeded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "enviro_etl",
			Name:      "locations_succeeded_total",
			Help:      "Locations ingested successfully by domain.",
		}, []string{"domain"}),
		LocationsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "enviro_etl",
			Name:      "locations_failed_total",
			Help:      "Locations that failed ingestion by domain.",
		}, []string{"domain"}),
		ValidationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "enviro_etl",
			Name:      "validation_errors_total",
			Help:      "Upstream payloads rejected by constraint validation.",
		}, []string{"domain"}),
		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "enviro_etl",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete multi-location ingestion run.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		}, []string{"domain"}),
		RowsInserted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "enviro_etl",
			Name:      "rows_inserted_total",
			Help:      "Rows written to the store by table family.",
		}, []string{"family"}),
		RowsDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "enviro_etl",
			Name:      "rows_deleted_total",
			Help:      "Rows reclaimed by retention jobs by table family.",
		}, []string{"family"}),
		SchedulerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "enviro_etl",
			Name:      "scheduler_running",
			Help:      "1 when the job scheduler is active, 0 when shut down.",
		}),
	}
}
