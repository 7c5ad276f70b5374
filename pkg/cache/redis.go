package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultOpTimeout bounds a single Redis round trip.
const DefaultOpTimeout = 2 * time.Second

// Redis is a Store backed by Redis.
type Redis struct {
	client    *redis.Client
	prefix    string
	opTimeout time.Duration
}

// RedisOption customises a Redis store.
type RedisOption func(*Redis)

// WithKeyPrefix namespaces every key as "prefix:key".
func WithKeyPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		r.prefix = prefix
	}
}

// WithOpTimeout overrides DefaultOpTimeout. Non-positive values are ignored.
func WithOpTimeout(d time.Duration) RedisOption {
	return func(r *Redis) {
		if d > 0 {
			r.opTimeout = d
		}
	}
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, opts ...RedisOption) *Redis {
	if client == nil {
		panic("redis client cannot be nil")
	}

	r := &Redis{
		client:    client,
		opTimeout: DefaultOpTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewRedisFromURL parses a redis:// URL and builds a store on a new client.
func NewRedisFromURL(rawURL string, opts ...RedisOption) (*Redis, error) {
	redisOpts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedis(redis.NewClient(redisOpts), opts...), nil
}

// Client returns the underlying redis client.
func (r *Redis) Client() *redis.Client {
	return r.client
}

// Get retrieves the raw value for key.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	value, err := r.client.Get(ctx, namespaced(r.prefix, key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		CacheErrors.WithLabelValues("get").Inc()
		return "", false, fmt.Errorf("%w: redis get: %v", ErrCacheUnavailable, err)
	}

	return value, true, nil
}

// Set stores value under key. ttl <= 0 stores without expiry.
func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	// go-redis treats -1 as KEEPTTL; only zero means "no expiry".
	if ttl < 0 {
		ttl = 0
	}

	if err := r.client.Set(ctx, namespaced(r.prefix, key), value, ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("%w: redis set: %v", ErrCacheUnavailable, err)
	}

	return nil
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	if err := r.client.Ping(ctx).Err(); err != nil {
		CacheErrors.WithLabelValues("ping").Inc()
		return fmt.Errorf("%w: redis ping: %v", ErrCacheUnavailable, err)
	}
	return nil
}

// Close releases the client's connections.
func (r *Redis) Close() error {
	return r.client.Close()
}
