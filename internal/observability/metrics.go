// Package observability provides Prometheus collectors and formatted
// verbose output for the matcher service.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BatchesTotal counts matching batches by outcome.
	BatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matcher_batches_total",
		Help: "Total number of matching batches processed",
	}, []string{"outcome"})

	// CandidatesTotal counts scored candidate documents.
	CandidatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matcher_candidates_total",
		Help: "Total number of candidate documents scored",
	})

	// CandidateFaultsTotal counts candidates whose processing faulted
	// and was isolated.
	CandidateFaultsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matcher_candidate_faults_total",
		Help: "Total number of isolated per-candidate processing faults",
	})

	// BatchDuration observes end-to-end batch latency.
	BatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "matcher_batch_duration_seconds",
		Help:    "End-to-end duration of matching batches",
		Buckets: prometheus.DefBuckets,
	})

	// CatalogSkills reports the size of the loaded skill catalog.
	CatalogSkills = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "matcher_catalog_skills",
		Help: "Number of skills in the loaded catalog",
	})

	// HTTPRequestsTotal counts HTTP requests by path and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"path", "code"})
)

// RecordBatch tracks one finished batch.
func RecordBatch(outcome string, seconds float64) {
	BatchesTotal.WithLabelValues(outcome).Inc()
	BatchDuration.Observe(seconds)
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(path, code string) {
	HTTPRequestsTotal.WithLabelValues(path, code).Inc()
}
