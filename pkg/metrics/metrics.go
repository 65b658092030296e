// Package metrics exposes the Prometheus registry used by hypixel-cache.
// Metrics are defined in their respective packages (cache, hypixel, mojang,
// ratelimit, lookup, server) and registered via promauto.
//
// This package provides the scrape handler and the metric reference.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer all packages register their metrics with.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer served by Handler.
var Gatherer = prometheus.DefaultGatherer

// Handler returns the /metrics scrape handler.
func Handler() http.Handler {
	return promhttp.InstrumentMetricHandler(Registry, promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{}))
}

// Metrics Documentation
//
// Lookup Metrics (pkg/lookup):
//   - hypixel_cache_lookups_total{type, outcome} (Counter): Lookups by identifier type
//     and outcome ("cached", "fetched" or an error kind)
//
// Cache Metrics (pkg/cache):
//   - hypixel_cache_hits_total{record} (Counter): Cache hits by record kind (identity, snapshot)
//   - hypixel_cache_misses_total{record} (Counter): Cache misses by record kind
//   - hypixel_cache_written_bytes_total{record} (Counter): Bytes written by record kind
//   - hypixel_cache_errors_total{operation} (Counter): Cache operation errors
//
// Upstream Metrics (pkg/hypixel, pkg/mojang):
//   - hypixel_requests_total{status} (Counter): Hypixel requests by HTTP status
//   - hypixel_request_duration_seconds (Histogram): Hypixel request duration
//   - hypixel_errors_total{class} (Counter): Hypixel errors by class
//   - mojang_lookups_total{result} (Counter): Mojang lookups by result
//   - mojang_lookup_duration_seconds (Histogram): Mojang lookup duration
//
// Rate Limit Metrics (pkg/ratelimit):
//   - hypixel_quota_remaining (Gauge): Requests remaining in the current quota window
//   - hypixel_rate_limit_blocks_total (Counter): Requests refused locally while exhausted
//
// HTTP Metrics (pkg/server):
//   - hypixel_cache_http_requests_total{route, status} (Counter): Served requests
//   - hypixel_cache_http_request_duration_seconds{route} (Histogram): Serving latency
//
// Example Prometheus Queries:
//
//   # Snapshot Hit Rate
//   sum(rate(hypixel_cache_hits_total{record="snapshot"}[5m])) /
//   (sum(rate(hypixel_cache_hits_total{record="snapshot"}[5m])) +
//    sum(rate(hypixel_cache_misses_total{record="snapshot"}[5m])))
//
//   # Quota Status
//   hypixel_quota_remaining < 20
//
//   # Rate Limited Lookups
//   rate(hypixel_cache_lookups_total{outcome="rate_limited"}[5m])
//
//   # P95 Serving Latency
//   histogram_quantile(0.95, rate(hypixel_cache_http_request_duration_seconds_bucket[5m]))
