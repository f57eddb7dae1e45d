package apiclient

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK        = "ok"
	outcomeRejected  = "rejected"
	outcomeTransport = "transport_error"
)

var (
	requestCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activityboard",
		Subsystem: "api_client",
		Name:      "requests_total",
		Help:      "Number of activities API calls grouped by operation and outcome.",
	}, []string{"operation", "outcome"})

	requestLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "activityboard",
		Subsystem: "api_client",
		Name:      "request_duration_seconds",
		Help:      "Round-trip latency of activities API calls.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
)

func init() {
	prometheus.MustRegister(requestCounter, requestLatency)
}

func recordRequest(op, outcome string) {
	requestCounter.WithLabelValues(op, outcome).Inc()
}

func observeLatency(op string, d time.Duration) {
	requestLatency.WithLabelValues(op).Observe(d.Seconds())
}
