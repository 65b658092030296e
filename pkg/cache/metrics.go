package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Record kind label values.
const (
	recordIdentity = "identity"
	recordSnapshot = "snapshot"
)

var (
	// CacheHits tracks cache hits by record kind
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hypixel_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"record"}, // "identity", "snapshot"
	)

	// CacheMisses tracks cache misses by record kind
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hypixel_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"record"},
	)

	// CacheWrittenBytes tracks the encoded size of written records
	CacheWrittenBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hypixel_cache_written_bytes_total",
			Help: "Total bytes written to the cache store",
		},
		[]string{"record"},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hypixel_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "decode", "encode"
	)
)
