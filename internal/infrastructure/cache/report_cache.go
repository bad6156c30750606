// Package cache provides Redis-backed caching infrastructure.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Senanu-web/bskal-enterprise/internal/domain/reports"
	"github.com/Senanu-web/bskal-enterprise/pkg/logger"
)

// RedisReportCache implements reports.Cache on Redis. Every connected POS
// device polls the sync endpoint, so the report bundle is served from cache
// between recomputes. A cache miss is never an error for callers.
type RedisReportCache struct {
	client *redis.Client
}

var _ reports.Cache = (*RedisReportCache)(nil)

// Config holds Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisReportCache connects to Redis and verifies the connection.
func NewRedisReportCache(ctx context.Context, cfg Config) (*RedisReportCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}
	logger.Info(ctx, "redis connected", "addr", cfg.Addr, "db", cfg.DB)

	return &RedisReportCache{client: client}, nil
}

// Get returns the cached overview for key, with a found flag.
func (c *RedisReportCache) Get(ctx context.Context, key string) (*reports.Overview, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}

	var overview reports.Overview
	if err := json.Unmarshal(raw, &overview); err != nil {
		// A corrupt entry behaves like a miss; the next Set overwrites it.
		logger.Warn(ctx, "corrupt cache entry", "key", key, "error", err)
		return nil, false, nil
	}
	return &overview, true, nil
}

// Set stores the overview under key for ttl.
func (c *RedisReportCache) Set(ctx context.Context, key string, value *reports.Overview, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal overview: %w", err)
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Close releases the Redis connection.
func (c *RedisReportCache) Close() error {
	return c.client.Close()
}
