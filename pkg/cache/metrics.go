package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Bypass reasons.
const (
	BypassUnparseable = "unparseable"
	BypassStructure   = "structure"
	BypassError       = "error"
)

var (
	// CacheHits tracks entries served from the cache, by handler.
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hierarchy_cache_hits_total",
			Help: "Total number of hierarchy responses served from cache",
		},
		[]string{"handler"},
	)

	// CacheMisses tracks lookups that found no entry, by handler.
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hierarchy_cache_misses_total",
			Help: "Total number of hierarchy cache misses",
		},
		[]string{"handler"},
	)

	// CacheBypass tracks entries that were present but not served.
	CacheBypass = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hierarchy_cache_bypass_total",
			Help: "Total number of cache entries skipped by handler and reason",
		},
		[]string{"handler", "reason"},
	)

	// CacheErrors tracks backend failures by operation.
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hierarchy_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "ping"
	)
)
