package handler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/hierarchy-proxy/pkg/cache"
)

// readCache reads key from the store. Store errors are logged and reported as a miss.
func readCache(ctx context.Context, store cache.Store, logger zerolog.Logger, handler, key string) (string, bool) {
	value, ok, err := store.Get(ctx, key)
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Str("request_id", RequestID(ctx)).Msg("Cache get error")
		cache.CacheBypass.WithLabelValues(handler, cache.BypassError).Inc()
		return "", false
	}
	if !ok {
		cache.CacheMisses.WithLabelValues(handler).Inc()
		logger.Debug().Str("key", key).Msg("Cache miss")
		return "", false
	}
	return value, true
}

// writeCache stores value under key with a TTL in seconds (0 = no expiry).
// The write outlives a cancelled request; errors are only logged.
func writeCache(ctx context.Context, s cache.Store, logger zerolog.Logger, key, value string, ttlSeconds int) {
	ctx = context.WithoutCancel(ctx)
	if err := s.Set(ctx, key, value, time.Duration(ttlSeconds)*time.Second); err != nil {
		logger.Warn().Err(err).Str("key", key).Str("request_id", RequestID(ctx)).Msg("Failed to cache response")
		return
	}
	logger.Debug().Str("key", key).Int("ttl_seconds", ttlSeconds).Msg("Cached response")
}

// parseObject decodes text as a JSON object.
func parseObject(text string) (map[string]json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// hasDepth reports whether text is a JSON object with a "depth" key.
func hasDepth(text string) bool {
	obj, ok := parseObject(text)
	if !ok {
		return false
	}
	_, ok = obj["depth"]
	return ok
}

// checkCachedHierarchy returns an empty reason when text is servable from cache:
// a JSON object with a "depth" key and a non-empty "data" object.
func checkCachedHierarchy(text string) string {
	obj, ok := parseObject(text)
	if !ok {
		return cache.BypassUnparseable
	}
	if _, ok := obj["depth"]; !ok {
		return cache.BypassStructure
	}
	raw, ok := obj["data"]
	if !ok {
		return cache.BypassStructure
	}
	var data map[string]json.RawMessage
	if err := json.Unmarshal(raw, &data); err != nil || len(data) == 0 {
		return cache.BypassStructure
	}
	return ""
}
