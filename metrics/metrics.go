// Package metrics exposes Prometheus instrumentation for discussion
// retrieval.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hylable_requests_total",
		Help: "HTTP attempts against the discussion service by operation and status",
	}, []string{"op", "status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hylable_request_duration_seconds",
		Help:    "Per-attempt request latency",
		Buckets: []float64{0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0, 10.0},
	}, []string{"op"})

	DiscussionsListed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hylable_discussions_listed_total",
		Help: "Discussions returned by listing calls",
	})

	TranscriptsFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hylable_transcripts_fetched_total",
		Help: "Transcripts retrieved",
	})

	BatchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hylable_batch_failures_total",
		Help: "Per-id failures inside transcript batches",
	}, []string{"reason"})
)

// ObserveRequest records one HTTP attempt. status 0 means no response was
// received. Its signature matches http.Observer.
func ObserveRequest(op string, status int, elapsed time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	RequestsTotal.WithLabelValues(op, label).Inc()
	RequestDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}
