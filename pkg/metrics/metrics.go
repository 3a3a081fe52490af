package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// Datastore call latency, one observation per remote read or write.
	DatastoreCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "datastore_call_duration_seconds",
			Help:    "Datastore call duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation", "status"},
	)

	// SlowQueryCount counts PostgreSQL queries above the slow threshold.
	SlowQueryCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "db_slow_query_total",
			Help: "Total number of slow database queries",
		},
	)

	// RoutineMutationCount counts routine store mutations by outcome.
	RoutineMutationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routine_mutation_total",
			Help: "Total number of routine mutations",
		},
		[]string{"operation", "result"}, // result: applied, noop, rejected, rolled_back
	)

	// WeekProgressPercent is the latest weekly average completion.
	WeekProgressPercent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "routine_week_progress_percent",
			Help: "Average completion percentage across the week",
		},
	)

	// DuplicateRequestCount counts requests skipped by idempotency keys.
	DuplicateRequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_duplicate_request_total",
			Help: "Total number of requests skipped as duplicates",
		},
		[]string{"scope"},
	)
)

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func RecordDatastoreCall(operation string, err error, duration time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	DatastoreCallDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
}

func IncrementSlowQuery() {
	SlowQueryCount.Inc()
}

func IncrementRoutineMutation(operation, result string) {
	RoutineMutationCount.WithLabelValues(operation, result).Inc()
}

func SetWeekProgress(percent int) {
	WeekProgressPercent.Set(float64(percent))
}

func IncrementDuplicateRequest(scope string) {
	DuplicateRequestCount.WithLabelValues(scope).Inc()
}
