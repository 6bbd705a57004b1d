package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the KYC engine.
// All recording methods are safe on a nil receiver.
type Metrics struct {
	ProviderLatency      *prometheus.HistogramVec
	VerificationsStarted *prometheus.CounterVec
	StatusTransitions    *prometheus.CounterVec
	Callbacks            *prometheus.CounterVec
	UnmappedStatuses     *prometheus.CounterVec
	BreakerOpen          *prometheus.GaugeVec
	HTTPLatency          *prometheus.HistogramVec
}

// New registers the collectors on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the collectors on reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ProviderLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "irdesk_provider_request_duration_seconds",
			Help:    "Duration of verification provider calls by operation and outcome",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"operation", "outcome"}),

		VerificationsStarted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "irdesk_verifications_started_total",
			Help: "Screening attempts by investor kind and result",
		}, []string{"kind", "result"}),

		StatusTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "irdesk_kyc_status_transitions_total",
			Help: "Canonical KYC statuses written by source",
		}, []string{"source", "status"}),

		Callbacks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "irdesk_webhook_callbacks_total",
			Help: "Provider callbacks by outcome",
		}, []string{"outcome"}),

		UnmappedStatuses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "irdesk_unmapped_check_statuses_total",
			Help: "Provider check statuses outside the documented set",
		}, []string{"status"}),

		BreakerOpen: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "irdesk_circuit_breaker_open",
			Help: "1 while the named circuit breaker is open",
		}, []string{"name"}),

		HTTPLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "irdesk_http_request_duration_seconds",
			Help:    "Admin API and webhook latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) ObserveProviderCall(operation, outcome string, d time.Duration) {
	if m != nil {
		m.ProviderLatency.WithLabelValues(operation, outcome).Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementVerificationStarted(kind, result string) {
	if m != nil {
		m.VerificationsStarted.WithLabelValues(kind, result).Inc()
	}
}

func (m *Metrics) IncrementStatusTransition(source, status string) {
	if m != nil {
		m.StatusTransitions.WithLabelValues(source, status).Inc()
	}
}

func (m *Metrics) IncrementCallback(outcome string) {
	if m != nil {
		m.Callbacks.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncrementUnmappedStatus(status string) {
	if m != nil {
		m.UnmappedStatuses.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) SetBreakerOpen(name string, open bool) {
	if m == nil {
		return
	}
	v := 0.0
	if open {
		v = 1
	}
	m.BreakerOpen.WithLabelValues(name).Set(v)
}

func (m *Metrics) ObserveHTTP(method, route, status string, d time.Duration) {
	if m != nil {
		m.HTTPLatency.WithLabelValues(method, route, status).Observe(d.Seconds())
	}
}
