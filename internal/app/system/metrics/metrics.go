// Package metrics exposes Prometheus counters for the bulk deletion cascade.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// batchTotal counts bulk deletion requests by response status code.
	batchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "projecthub_cascade_batches_total",
		Help: "Bulk deletion requests by HTTP status",
	}, []string{"status"})

	// batchDuration tracks end-to-end workflow latency.
	batchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "projecthub_cascade_duration_seconds",
		Help:    "Bulk deletion workflow duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
	})

	// deletedTotal counts records removed, as reported by the store.
	deletedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "projecthub_cascade_deleted_total",
		Help: "Records deleted by the cascade, by category",
	}, []string{"category"})

	// mismatchTotal counts phases where the store removed fewer (or more)
	// records than were requested.
	mismatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "projecthub_cascade_count_mismatch_total",
		Help: "Delete phases whose deleted count differed from the requested count",
	}, []string{"category"})
)

// ObserveBatch records one finished bulk deletion request.
func ObserveBatch(status int, elapsed time.Duration) {
	batchTotal.WithLabelValues(strconv.Itoa(status)).Inc()
	batchDuration.Observe(elapsed.Seconds())
}

// ObservePhase records one delete phase of the cascade.
func ObservePhase(category string, requested, deleted int64) {
	deletedTotal.WithLabelValues(category).Add(float64(deleted))
	if requested != deleted {
		mismatchTotal.WithLabelValues(category).Inc()
	}
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
