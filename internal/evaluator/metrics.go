package evaluator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "evalboard"

const (
	opList    = "list_conversations"
	opCount   = "count_conversations"
	opGet     = "get_conversation"
	opVersion = "version"

	statusSuccess = "success"
	statusError   = "error"
)

var (
	// requestDuration measures evaluator API latency.
	// Labels:
	//   - operation: list_conversations, count_conversations, get_conversation, version
	//   - status: success, error
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "evaluator",
			Name:      "request_duration_seconds",
			Help:      "Duration of evaluator API requests in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation", "status"},
	)

	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "evaluator",
			Name:      "requests_total",
			Help:      "Total number of evaluator API requests",
		},
		[]string{"operation", "status"},
	)
)

func recordRequest(operation string, durationSeconds float64, success bool) {
	status := statusSuccess
	if !success {
		status = statusError
	}
	requestDuration.WithLabelValues(operation, status).Observe(durationSeconds)
	requestsTotal.WithLabelValues(operation, status).Inc()
}
