// Package metrics holds the HTTP request metrics and documents every metric the proxy exports.
// Cache and upstream metrics live next to the code that records them (pkg/cache, pkg/upstream).
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the Prometheus registerer all metrics are registered with via promauto.
var Registry = prometheus.DefaultRegisterer

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hierarchy_http_requests_total",
		Help: "Total HTTP requests by route and status code",
	}, []string{"route", "code"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hierarchy_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds by route",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"route"})

	responseStatusTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hierarchy_responses_total",
		Help: "Hierarchy responses by handler and X-Cache status (HIT-M, HIT-D, none)",
	}, []string{"handler", "cache_status"})
)

// ObserveRequest records one served HTTP request.
func ObserveRequest(route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
	httpRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// ObserveCacheStatus records the X-Cache outcome of a hierarchy response.
// An empty status is recorded as "none".
func ObserveCacheStatus(handler, status string) {
	if status == "" {
		status = "none"
	}
	responseStatusTotal.WithLabelValues(handler, status).Inc()
}

// Metrics Documentation
//
// HTTP Metrics (pkg/metrics):
//   - hierarchy_http_requests_total{route, code} (Counter)
//   - hierarchy_http_request_duration_seconds{route} (Histogram)
//   - hierarchy_responses_total{handler, cache_status} (Counter)
//
// Cache Metrics (pkg/cache):
//   - hierarchy_cache_hits_total{handler} (Counter)
//   - hierarchy_cache_misses_total{handler} (Counter)
//   - hierarchy_cache_bypass_total{handler, reason} (Counter): present but unusable entries
//   - hierarchy_cache_errors_total{operation} (Counter)
//
// Upstream Metrics (pkg/upstream):
//   - hierarchy_upstream_requests_total{method, outcome} (Counter)
//   - hierarchy_upstream_request_duration_seconds{method} (Histogram)
//
// Example Prometheus Queries:
//
//   # Cache hit rate for /h
//   sum(rate(hierarchy_cache_hits_total{handler="v2"}[5m])) /
//   (sum(rate(hierarchy_cache_hits_total{handler="v2"}[5m])) + sum(rate(hierarchy_cache_misses_total{handler="v2"}[5m])))
//
//   # Responses masked with an empty object
//   rate(hierarchy_responses_total{cache_status="none"}[5m])
//
//   # P95 upstream latency
//   histogram_quantile(0.95, rate(hierarchy_upstream_request_duration_seconds_bucket[5m]))
