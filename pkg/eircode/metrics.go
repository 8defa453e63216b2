package eircode

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome classifies how a call ended.
type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomeAPIError       Outcome = "api_error"
	OutcomeInvalidJSON    Outcome = "invalid_json"
	OutcomeTransportError Outcome = "transport_error"
	OutcomeInvalidRequest Outcome = "invalid_request"
	OutcomeNonObject      Outcome = "non_object"
)

// Metrics records request counts and latencies per operation.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the client metrics on the provided registerer. A nil
// registerer yields a Metrics that records nothing.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "eircode_requests_total",
		Help: "Eircode API calls by operation and outcome.",
	}, []string{"operation", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "eircode_request_duration_seconds",
		Help:    "Duration of Eircode API calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	reg.MustRegister(requests, duration)
	return &Metrics{
		requests: requests,
		duration: duration,
	}
}

func (m *Metrics) observe(operation string, outcome Outcome, d time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	m.requests.WithLabelValues(operation, string(outcome)).Inc()
	m.duration.WithLabelValues(operation).Observe(d.Seconds())
}
