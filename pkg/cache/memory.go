package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultCleanupInterval is how often Memory purges expired entries.
const DefaultCleanupInterval = 10 * time.Minute

// Memory is an in-process Store backed by go-cache.
type Memory struct {
	items *gocache.Cache
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return NewMemoryWithCleanup(DefaultCleanupInterval)
}

// NewMemoryWithCleanup creates an in-memory store that purges expired entries
// every interval. Expired entries are never returned, purged or not.
func NewMemoryWithCleanup(interval time.Duration) *Memory {
	return &Memory{items: gocache.New(gocache.NoExpiration, interval)}
}

// Get returns the value for key unless it is absent or expired.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.items.Get(key)
	if !ok {
		return "", false, nil
	}
	value, _ := v.(string)
	return value, true, nil
}

// Set stores value under key. ttl <= 0 stores without expiry.
func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	// go-cache reads 0 as "default expiration"; ours means never.
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	m.items.Set(key, value, ttl)
	return nil
}

// Ping always succeeds.
func (m *Memory) Ping(context.Context) error {
	return nil
}

// Len reports the number of stored entries, including expired ones not yet purged.
func (m *Memory) Len() int {
	return m.items.ItemCount()
}
