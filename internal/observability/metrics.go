// Package observability exposes prometheus metrics for query execution and AI requests.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeInvalid = "invalid"
	// OutcomeGuidance marks an expected non-success outcome such as a clarification request.
	OutcomeGuidance = "guidance"
)

var (
	queryExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dbqa_query_executions_total",
			Help: "Total number of structured query executions by store and outcome.",
		},
		[]string{"store", "outcome"},
	)

	queryExecutionDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dbqa_query_execution_duration_seconds",
			Help:    "Structured query execution latency by store.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"store"},
	)

	aiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dbqa_ai_requests_total",
			Help: "Total number of validation and translation requests by outcome.",
		},
		[]string{"operation", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(queryExecutionsTotal, queryExecutionDurationSeconds, aiRequestsTotal)
}

// ObserveExecution records one executor call.
func ObserveExecution(store, outcome string, elapsed time.Duration) {
	queryExecutionsTotal.WithLabelValues(store, outcome).Inc()
	queryExecutionDurationSeconds.WithLabelValues(store).Observe(elapsed.Seconds())
}

// ObserveAIRequest records one validation or translation call.
func ObserveAIRequest(operation, outcome string) {
	aiRequestsTotal.WithLabelValues(operation, outcome).Inc()
}
