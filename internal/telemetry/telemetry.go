// Package telemetry wires the prometheus collectors shared across the
// service. Collectors register on the default registry; the server exposes
// them on /metrics.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	LLMCalls        *prometheus.CounterVec
	SearchFailures  *prometheus.CounterVec
	FallbacksServed prometheus.Counter
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
}

// New registers the ResourceScout collectors on reg. Pass nil to use the
// default registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	if reg == nil {
		factory = promauto.With(prometheus.DefaultRegisterer)
	}
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "resourcescout_requests_total",
			Help: "API requests by route and status class.",
		}, []string{"route", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "resourcescout_request_duration_seconds",
			Help:    "API request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		LLMCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "resourcescout_llm_calls_total",
			Help: "LLM calls by brain (architect, writer, vision) and outcome.",
		}, []string{"brain", "outcome"}),
		SearchFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "resourcescout_search_failures_total",
			Help: "Search provider failures by channel (web, video).",
		}, []string{"channel"}),
		FallbacksServed: factory.NewCounter(prometheus.CounterOpts{
			Name: "resourcescout_fallback_links_served_total",
			Help: "Times deterministic fallback links replaced live results.",
		}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "resourcescout_cache_hits_total",
			Help: "Result cache hits.",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "resourcescout_cache_misses_total",
			Help: "Result cache misses.",
		}),
	}
}
