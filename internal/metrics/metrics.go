// Package metrics registers the service's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles every collector the service exports.
type Metrics struct {
	UpstreamRequests *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	ActiveSessions   prometheus.Gauge
}

// New registers collectors on the given registerer. Pass a fresh
// prometheus.NewRegistry in tests to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UpstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_upstream_requests_total",
			Help: "Upstream fetches by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		UpstreamLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "catalog_upstream_request_seconds",
			Help:    "Upstream fetch latency by endpoint.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "catalog_cache_hits_total",
			Help: "Upstream responses served from cache.",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "catalog_cache_misses_total",
			Help: "Upstream responses fetched on a cache miss.",
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_active_sessions",
			Help: "Browse sessions currently tracked.",
		}),
	}
}
