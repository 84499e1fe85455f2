package s2

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "paperref",
		Subsystem: "s2",
		Name:      "requests_total",
		Help:      "Requests issued to the Semantic Scholar API by endpoint and outcome",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "paperref",
		Subsystem: "s2",
		Name:      "request_duration_seconds",
		Help:      "Latency of Semantic Scholar API requests",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"endpoint"})

	batchIDsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "paperref",
		Subsystem: "s2",
		Name:      "batch_ids_total",
		Help:      "Paper identifiers requested through the batch endpoint",
	})
)

// statusLabel buckets an outcome for the requests_total counter.
func statusLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsRateLimited(err):
		return "rate_limited"
	case IsAuthError(err):
		return "auth_error"
	case IsNotFound(err):
		return "not_found"
	default:
		return "error"
	}
}
