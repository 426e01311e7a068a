package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PageKeyPrefix namespaces fetched pages in a shared Redis.
const PageKeyPrefix = "siahl:page:"

// RedisPages is a PageStore backed by Redis.
type RedisPages struct {
	client *redis.Client
}

// NewRedisPages returns a store over an existing client.
func NewRedisPages(client *redis.Client) *RedisPages {
	return &RedisPages{client: client}
}

// OpenRedisPages parses a redis:// URL and pings the server.
func OpenRedisPages(ctx context.Context, redisURL string) (*RedisPages, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisPages{client: client}, nil
}

// Load implements PageStore.
func (r *RedisPages) Load(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, PageKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get page %s: %w", key, err)
	}
	return b, true, nil
}

// Store implements PageStore.
func (r *RedisPages) Store(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, PageKeyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("set page %s: %w", key, err)
	}
	return nil
}

// Close releases the client.
func (r *RedisPages) Close() error {
	return r.client.Close()
}
