// ABOUTME: Prometheus collectors for imports, generation, reminders and HTTP traffic
// ABOUTME: Collectors register on the default registry and are served at /metrics
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ImportRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_import_rows_total",
			Help: "Imported rows by entity and outcome",
		},
		[]string{"entity", "outcome"}, // outcome: imported, updated, skipped, failed, invalid
	)

	GenerationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_generation_requests_total",
			Help: "Content generation calls by kind and result",
		},
		[]string{"kind", "result"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "outreach_generation_duration_seconds",
			Help:    "Content generation latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~50s
		},
		[]string{"kind"},
	)

	RemindersCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "outreach_reminders_created_total",
			Help: "Follow-up reminder notifications created",
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "outreach_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "route"},
	)
)

// RecordImport adds n rows with the given outcome.
func RecordImport(entity, outcome string, n int) {
	if n <= 0 {
		return
	}
	ImportRows.WithLabelValues(entity, outcome).Add(float64(n))
}

// RecordGeneration records one generation call.
func RecordGeneration(kind string, err error, duration time.Duration) {
	result := "success"
	if err != nil {
		result = "error"
	}
	GenerationRequests.WithLabelValues(kind, result).Inc()
	GenerationDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(method, route, status string, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
