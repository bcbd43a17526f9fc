package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks fragment cache hits
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "explorer_fragment_cache_hits_total",
			Help: "Total number of rendered fragment cache hits",
		},
	)

	// CacheMisses tracks fragment cache misses
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "explorer_fragment_cache_misses_total",
			Help: "Total number of rendered fragment cache misses",
		},
	)

	// Invalidations counts keys removed by table or full invalidation
	Invalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "explorer_fragment_cache_invalidated_keys_total",
			Help: "Total number of fragment cache keys removed by invalidation",
		},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explorer_fragment_cache_errors_total",
			Help: "Total number of fragment cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete", "scan"
	)
)
