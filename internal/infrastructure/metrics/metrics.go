package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// Ledger metrics
	TransactionsRecorded *prometheus.CounterVec
	TransactionsDeleted  prometheus.Counter
	AdjustmentsRecorded  prometheus.Counter

	// Schedule metrics
	OccurrencesRecorded prometheus.Counter
	OccurrencesSkipped  prometheus.Counter
	SchedulesActive     prometheus.Gauge

	// Integrity metrics
	IntegrityChecks        prometheus.Counter
	IntegrityDiscrepancies prometheus.Gauge

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBQueries  *prometheus.CounterVec
	DBDuration *prometheus.HistogramVec
	DBErrors   *prometheus.CounterVec
}

// New creates all metrics and registers them on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates all metrics on a caller-provided registry. Tests use it
// to avoid duplicate registration on the process-wide default.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TransactionsRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cashplan_transactions_recorded_total",
			Help: "Total number of transactions recorded, by operation",
		}, []string{"operation"}),
		TransactionsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "cashplan_transactions_deleted_total",
			Help: "Total number of transactions deleted",
		}),
		AdjustmentsRecorded: factory.NewCounter(prometheus.CounterOpts{
			Name: "cashplan_adjustments_recorded_total",
			Help: "Total number of manual balance adjustments",
		}),
		OccurrencesRecorded: factory.NewCounter(prometheus.CounterOpts{
			Name: "cashplan_occurrences_recorded_total",
			Help: "Total number of schedule occurrences turned into transactions",
		}),
		OccurrencesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "cashplan_occurrences_skipped_total",
			Help: "Total number of schedule occurrences skipped",
		}),
		SchedulesActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cashplan_schedules_active",
			Help: "Number of scheduled transaction templates",
		}),
		IntegrityChecks: factory.NewCounter(prometheus.CounterOpts{
			Name: "cashplan_integrity_checks_total",
			Help: "Total number of account integrity checks run",
		}),
		IntegrityDiscrepancies: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cashplan_integrity_discrepancies",
			Help: "Accounts with balance drift found by the last integrity check",
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cashplan_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cashplan_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		DBQueries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cashplan_db_queries_total",
			Help: "Total number of database queries",
		}, []string{"operation"}),
		DBDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cashplan_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		DBErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cashplan_db_errors_total",
			Help: "Total number of database errors",
		}, []string{"operation"}),
	}
}
