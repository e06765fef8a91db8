// Package cache keeps raw job source responses in Redis for a limited time.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL    = 30 * time.Minute
	defaultPrefix = "job-agent:payload:"
)

// Redis stores payloads under a common key prefix with a fixed TTL.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// Connect parses redisURL and verifies connectivity.
func Connect(ctx context.Context, redisURL string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return New(client, ttl), nil
}

func New(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl, prefix: defaultPrefix}
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

// Get returns the cached payload. A miss is reported as (nil, false, nil).
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	payload, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, payload []byte) error {
	return r.client.Set(ctx, r.key(key), payload, r.ttl).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
