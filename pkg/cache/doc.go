// Package cache provides a short-TTL Redis cache for catalog list
// responses.
//
// Catalog lists are read-mostly: the same filter combination is requested
// by many sessions within seconds of each other, so a small fixed TTL
// takes most of the load off the backend without making the UI feel
// stale. Keys are derived deterministically from the endpoint path and
// the sorted query parameters, so two clients building the same filter
// state share one entry.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//	manager := cache.NewManager(redisClient)
//
//	key := cache.Key{
//		Endpoint: "/api/cars",
//		Params:   url.Values{"city": []string{"Москва"}},
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// fetch from the catalog, then:
//		manager.Set(ctx, key, cache.NewEntry(body, 30*time.Second))
//	}
//
// # Metrics
//
//   - catalog_cache_hits_total - cache hits
//   - catalog_cache_misses_total - cache misses
//   - catalog_cache_errors_total{operation} - cache operation errors
package cache
