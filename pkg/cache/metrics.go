package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for cache operations.
var (
	// CacheHits counts cache hits.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "enrich_cache_hits_total",
		Help: "Total enrichment cache hits",
	})

	// CacheMisses counts cache misses.
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "enrich_cache_misses_total",
		Help: "Total enrichment cache misses",
	})

	// CacheErrors counts cache operation errors by operation.
	CacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enrich_cache_errors_total",
		Help: "Total enrichment cache operation errors",
	}, []string{"operation"})
)
