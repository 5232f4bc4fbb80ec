package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	IngestAttemptsTotal prometheus.Counter
	IngestFailuresTotal prometheus.Counter
	IngestRecordsTotal  prometheus.Counter
}

// New registers all collectors on reg. Tests pass a private registry so
// parallel packages never collide on collector names.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),

		IngestAttemptsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ingest_attempts_total",
				Help: "Total number of fetch+persist ingestion attempts",
			},
		),

		IngestFailuresTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ingest_failures_total",
				Help: "Total number of failed ingestion attempts",
			},
		),

		IngestRecordsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ingest_records_total",
				Help: "Total number of rate records persisted",
			},
		),
	}
}
