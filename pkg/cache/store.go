package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheUnavailable is wrapped by store errors caused by the backend itself.
var ErrCacheUnavailable = errors.New("cache unavailable")

// Store is the cache collaborator used by the hierarchy handlers.
type Store interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key. A ttl of zero stores it without expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Pinger is implemented by stores that can report their availability.
type Pinger interface {
	Ping(ctx context.Context) error
}
