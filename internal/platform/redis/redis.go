// Package redis provides a cache.Backend backed by Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/summarizer-api/internal/cache"
	"github.com/redis/go-redis/v9"
)

// Backend implements cache.Backend with plain GET / SET EX / PING.
type Backend struct {
	client *redis.Client
}

// NewBackend wraps an existing client.
func NewBackend(client *redis.Client) *Backend {
	return &Backend{client: client}
}

// NewBackendWithURL creates a Backend from a redis:// URL.
func NewBackendWithURL(url string) (*Backend, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return &Backend{client: redis.NewClient(opts)}, nil
}

// Get returns the stored bytes or cache.ErrMiss.
func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := b.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, cache.ErrMiss
		}
		return nil, err
	}
	return data, nil
}

// SetWithTTL stores value with an expiry. A non-positive ttl keeps the key
// until evicted.
func (b *Backend) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return b.client.Set(ctx, key, value, ttl).Err()
}

// Ping checks connectivity.
func (b *Backend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (b *Backend) Close() error {
	return b.client.Close()
}
