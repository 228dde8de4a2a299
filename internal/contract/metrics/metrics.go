package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for contract reads.
type Metrics struct {
	Fetches       *prometheus.CounterVec
	CacheHits     *prometheus.CounterVec
	CacheMisses   *prometheus.CounterVec
	FetchLatency  prometheus.Histogram
	CacheLatency  *prometheus.HistogramVec
}

// New registers and returns contract metrics collectors.
func New() *Metrics {
	return &Metrics{
		Fetches: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "consentflow_contract_fetches_total",
			Help: "Total number of contract fetches, labeled by outcome",
		}, []string{"outcome"}),
		CacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "consentflow_contract_cache_hits_total",
			Help: "Total number of contract cache hits, labeled by tier",
		}, []string{"tier"}),
		CacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "consentflow_contract_cache_misses_total",
			Help: "Total number of contract cache misses, labeled by tier",
		}, []string{"tier"}),
		FetchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "consentflow_contract_fetch_latency_seconds",
			Help:    "Latency of contract fetch operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		CacheLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "consentflow_contract_cache_latency_seconds",
			Help:    "Latency of contract cache operations in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementFetches(outcome string) {
	m.Fetches.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementCacheHit(tier string) {
	m.CacheHits.WithLabelValues(tier).Inc()
}

func (m *Metrics) IncrementCacheMiss(tier string) {
	m.CacheMisses.WithLabelValues(tier).Inc()
}

func (m *Metrics) ObserveFetchLatency(d time.Duration) {
	m.FetchLatency.Observe(d.Seconds())
}

func (m *Metrics) ObserveCacheLatency(operation string, d time.Duration) {
	m.CacheLatency.WithLabelValues(operation).Observe(d.Seconds())
}
