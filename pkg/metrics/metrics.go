package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector provides application metrics collection. A nil *Collector is
// valid and records nothing, so tests can run without a registry.
type Collector struct {
	// API metrics
	APIRequestsTotal *prometheus.CounterVec

	// Ingestion metrics
	FetchesTotal       *prometheus.CounterVec
	SnapshotsStored    prometheus.Counter
	InvalidInputsTotal prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBErrorsTotal   *prometheus.CounterVec
}

// NewCollector creates a new metrics collector registered on the default
// Prometheus registry.
func NewCollector(namespace string) *Collector {
	return &Collector{
		APIRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of API requests by endpoint and status",
			},
			[]string{"endpoint", "status"},
		),

		FetchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_fetches_total",
				Help:      "Total number of upstream provider fetches by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),

		SnapshotsStored: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshots_stored_total",
				Help:      "Total number of air quality snapshots persisted",
			},
		),

		InvalidInputsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invalid_concentrations_total",
				Help:      "Total number of upstream concentrations rejected as invalid",
			},
		),

		DBQueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "db_query_duration_seconds",
				Help:      "Database query duration in seconds by query type",
				Buckets:   []float64{0.001, 0.002, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5},
			},
			[]string{"query_type"},
		),

		DBErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "db_errors_total",
				Help:      "Total number of database errors by type",
			},
			[]string{"error_type"},
		),
	}
}

// RecordAPIRequest increments the API request counter.
func (c *Collector) RecordAPIRequest(endpoint, status string) {
	if c == nil {
		return
	}
	c.APIRequestsTotal.WithLabelValues(endpoint, status).Inc()
}

// RecordFetch increments the provider fetch counter.
func (c *Collector) RecordFetch(provider, outcome string) {
	if c == nil {
		return
	}
	c.FetchesTotal.WithLabelValues(provider, outcome).Inc()
}

// RecordSnapshotStored increments the stored snapshot counter.
func (c *Collector) RecordSnapshotStored() {
	if c == nil {
		return
	}
	c.SnapshotsStored.Inc()
}

// RecordInvalidInput increments the rejected concentration counter.
func (c *Collector) RecordInvalidInput() {
	if c == nil {
		return
	}
	c.InvalidInputsTotal.Inc()
}

// ObserveDBQuery records the duration of a database query in seconds.
func (c *Collector) ObserveDBQuery(queryType string, seconds float64) {
	if c == nil {
		return
	}
	c.DBQueryDuration.WithLabelValues(queryType).Observe(seconds)
}

// RecordDBError increments the database error counter.
func (c *Collector) RecordDBError(errorType string) {
	if c == nil {
		return
	}
	c.DBErrorsTotal.WithLabelValues(errorType).Inc()
}
