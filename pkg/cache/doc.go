// Package cache provides the key-value store that fronts the hierarchy upstreams.
//
// A Store maps a key (an identifier or cid) to raw JSON text, with an optional
// per-entry TTL. A TTL of zero means the entry never expires.
//
// # Backends
//
//   - Redis: production backend, github.com/redis/go-redis/v9
//   - Memory: single-process store, github.com/patrickmn/go-cache, for local runs and tests
//
// # Basic Usage
//
//	store, err := cache.NewRedisFromURL("redis://localhost:6379/0",
//		cache.WithKeyPrefix("hp"),
//		cache.WithOpTimeout(2*time.Second),
//	)
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	value, ok, err := store.Get(ctx, "3171")
//	if err != nil {
//		// Store unavailable - callers treat this as a miss.
//	}
//	if !ok {
//		_ = store.Set(ctx, "3171", body, 0)
//	}
//
// # Metrics
//
//   - hierarchy_cache_hits_total{handler}
//   - hierarchy_cache_misses_total{handler}
//   - hierarchy_cache_bypass_total{handler,reason}
//   - hierarchy_cache_errors_total{operation}
package cache
