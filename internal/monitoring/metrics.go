// Package monitoring exposes Prometheus metrics for the pairing gateway.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics manages the Prometheus metrics.
type Metrics struct {
	PairingRequests    *prometheus.CounterVec
	PairingDecisions   *prometheus.CounterVec
	TokenRotations     *prometheus.CounterVec
	TokenRevocations   *prometheus.CounterVec
	TokenVerifications *prometheus.CounterVec
	RequestLatency     *prometheus.HistogramVec
}

// NewMetrics creates and registers the Prometheus metrics on reg. Passing a
// fresh registry keeps handler tests independent; production wiring passes
// the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PairingRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairgate_pairing_requests_total",
				Help: "Total number of pairing requests, by entity kind and whether a new request was created.",
			},
			[]string{"kind", "result"},
		),
		PairingDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairgate_pairing_decisions_total",
				Help: "Total number of pairing decisions, by entity kind and decision.",
			},
			[]string{"kind", "decision"},
		),
		TokenRotations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairgate_token_rotations_total",
				Help: "Total number of token rotations, by entity kind.",
			},
			[]string{"kind"},
		),
		TokenRevocations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairgate_token_revocations_total",
				Help: "Total number of token revocations, by entity kind.",
			},
			[]string{"kind"},
		),
		TokenVerifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairgate_token_verifications_total",
				Help: "Total number of token verifications, by entity kind and outcome discriminant.",
			},
			[]string{"kind", "result"},
		),
		RequestLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pairgate_http_request_duration_seconds",
				Help:    "Latency of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
	}
}

// RecordPairingRequest records a pairing request outcome (created or
// duplicate).
func (m *Metrics) RecordPairingRequest(kind, result string) {
	m.PairingRequests.WithLabelValues(kind, result).Inc()
}

// RecordDecision records an approve or reject.
func (m *Metrics) RecordDecision(kind, decision string) {
	m.PairingDecisions.WithLabelValues(kind, decision).Inc()
}

// RecordRotation records a token rotation.
func (m *Metrics) RecordRotation(kind string) {
	m.TokenRotations.WithLabelValues(kind).Inc()
}

// RecordRevocation records a token revocation.
func (m *Metrics) RecordRevocation(kind string) {
	m.TokenRevocations.WithLabelValues(kind).Inc()
}

// RecordVerification records a verification outcome: "ok" or the failure
// discriminant.
func (m *Metrics) RecordVerification(kind, result string) {
	m.TokenVerifications.WithLabelValues(kind, result).Inc()
}

// RecordHTTPRequest records request latency.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestLatency.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

//Personal.AI order the ending
