// Package metrics provides the centralized Prometheus metrics registry for
// the catalog client. All metrics are defined in their respective packages
// (catalog, cache, controller, favorites) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the catalog client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/catalog):
//   - catalog_requests_total{endpoint, status} (Counter): Total requests by endpoint and outcome
//   - catalog_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - catalog_errors_total{class} (Counter): Errors by class (client, server, network)
//
// Cache Metrics (pkg/cache):
//   - catalog_cache_hits_total (Counter): Query cache hits
//   - catalog_cache_misses_total (Counter): Query cache misses
//   - catalog_cache_errors_total{operation} (Counter): Cache operation errors
//
// List Controller Metrics (pkg/controller):
//   - catalog_list_reloads_total{trigger} (Counter): List reloads by trigger (filter, search, refresh)
//   - catalog_list_stale_drops_total (Counter): Fetch results dropped because their generation was superseded
//   - catalog_list_fetch_failures_total{mode} (Counter): List fetch failures by merge mode (reset, continue)
//
// Favorites Metrics (pkg/favorites):
//   - catalog_favorite_toggles_total{result} (Counter): Toggles by outcome (added, removed, failed, rejected)
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(catalog_cache_hits_total[5m])) /
//   (sum(rate(catalog_cache_hits_total[5m])) + sum(rate(catalog_cache_misses_total[5m])))
//
//   # Stale Drop Rate (high values suggest a slow catalog backend)
//   rate(catalog_list_stale_drops_total[5m])
//
//   # Request Error Rate
//   rate(catalog_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(catalog_request_duration_seconds_bucket[5m]))
//
//   # Favorite Toggle Rollback Rate
//   rate(catalog_favorite_toggles_total{result="failed"}[5m])
