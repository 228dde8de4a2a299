// Package metrics exposes Prometheus instrumentation for flow resolution.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks flow presentation decisions.
type Metrics struct {
	presented    *prometheus.CounterVec
	noops        prometheus.Counter
	termsUpdates prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		presented: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "consentflow_flows_presented_total",
			Help: "Number of consent flows presented, labeled by flow kind.",
		}, []string{"kind"}),
		noops: promauto.NewCounter(prometheus.CounterOpts{
			Name: "consentflow_flow_noops_total",
			Help: "Number of flow open attempts skipped because the contract was unresolved.",
		}),
		termsUpdates: promauto.NewCounter(prometheus.CounterOpts{
			Name: "consentflow_resolver_terms_updates_total",
			Help: "Number of terms updates carried through the resolver.",
		}),
	}
}

func (m *Metrics) IncrementPresented(kind string) {
	m.presented.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementNoops() {
	m.noops.Inc()
}

func (m *Metrics) IncrementTermsUpdates() {
	m.termsUpdates.Inc()
}
