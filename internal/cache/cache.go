// Package cache keeps computed dashboards in Redis between order changes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DashboardCache stores one JSON document per company.
type DashboardCache interface {
	// Get decodes the cached value into dst and reports whether it was present.
	Get(ctx context.Context, companyID string, dst any) (bool, error)
	// Set stores v. A positive maxTTL shortens the configured expiry.
	Set(ctx context.Context, companyID string, v any, maxTTL time.Duration) error
	Invalidate(ctx context.Context, companyID string) error
}

// RedisCache is a DashboardCache backed by Redis with a fixed TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func key(companyID string) string {
	return "dashboard:" + companyID
}

func (c *RedisCache) Get(ctx context.Context, companyID string, dst any) (bool, error) {
	raw, err := c.client.Get(ctx, key(companyID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read dashboard cache: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("failed to decode dashboard cache: %w", err)
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, companyID string, v any, maxTTL time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode dashboard: %w", err)
	}
	ttl := c.ttl
	if maxTTL > 0 && maxTTL < ttl {
		ttl = maxTTL
	}
	if err := c.client.Set(ctx, key(companyID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write dashboard cache: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, companyID string) error {
	if err := c.client.Del(ctx, key(companyID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate dashboard cache: %w", err)
	}
	return nil
}

// Noop never stores anything. Used when Redis is not configured.
type Noop struct{}

func (Noop) Get(context.Context, string, any) (bool, error)        { return false, nil }
func (Noop) Set(context.Context, string, any, time.Duration) error { return nil }
func (Noop) Invalidate(context.Context, string) error              { return nil }
