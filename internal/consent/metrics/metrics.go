// Package metrics exposes Prometheus instrumentation for the consent module.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks consent lifecycle counters.
type Metrics struct {
	grants         *prometheus.CounterVec
	withdrawals    prometheus.Counter
	termsUpdates   prometheus.Counter
	termsRejected  prometheus.Counter
	activeConsents prometheus.Gauge
}

func New() *Metrics {
	return &Metrics{
		grants: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "consentflow_consents_granted_total",
			Help: "Number of consent grants, labeled by share mode.",
		}, []string{"mode"}),
		withdrawals: promauto.NewCounter(prometheus.CounterOpts{
			Name: "consentflow_consents_withdrawn_total",
			Help: "Number of consent withdrawals.",
		}),
		termsUpdates: promauto.NewCounter(prometheus.CounterOpts{
			Name: "consentflow_terms_updates_total",
			Help: "Number of successful terms updates.",
		}),
		termsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "consentflow_terms_rejected_total",
			Help: "Number of terms submissions rejected by schema validation.",
		}),
		activeConsents: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "consentflow_active_consents",
			Help: "Current number of active consent records.",
		}),
	}
}

func (m *Metrics) IncrementGrants(mode string) {
	m.grants.WithLabelValues(mode).Inc()
}

func (m *Metrics) IncrementWithdrawals() {
	m.withdrawals.Inc()
}

func (m *Metrics) IncrementTermsUpdates() {
	m.termsUpdates.Inc()
}

func (m *Metrics) IncrementTermsRejected() {
	m.termsRejected.Inc()
}

func (m *Metrics) IncrementActiveConsents() {
	m.activeConsents.Inc()
}

func (m *Metrics) DecrementActiveConsents() {
	m.activeConsents.Dec()
}
