// Package cache memoizes timecode conversion results in Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/zsiec/vtc/internal/config"
	"github.com/zsiec/vtc/internal/logger"
	"github.com/zsiec/vtc/internal/metrics"
)

// Entry is the set of projections computed for one conversion request.
type Entry struct {
	Rate          string `json:"rate"`
	Timecode      string `json:"timecode"`
	Frames        int64  `json:"frames"`
	Seconds       string `json:"seconds"`
	Rational      string `json:"rational"`
	Runtime       string `json:"runtime"`
	FeetAndFrames string `json:"feet_and_frames"`
	PremiereTicks int64  `json:"premiere_ticks"`
	Negative      bool   `json:"negative"`
}

// Cache stores Entry values in Redis with a fixed TTL.
type Cache struct {
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
	logger *logrus.Entry
}

// New creates a cache backed by client.
func New(client redis.UniversalClient, cfg config.CacheConfig, log *logrus.Logger) *Cache {
	return &Cache{
		client: client,
		ttl:    cfg.TTL,
		prefix: cfg.KeyPrefix,
		logger: logger.WithComponent(log, "cache"),
	}
}

// NewClient builds a Redis client from configuration. A single address
// yields a plain client, several yield a cluster client.
func NewClient(cfg config.RedisConfig) redis.UniversalClient {
	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        cfg.Addresses,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})
}

// Key derives the cache key for a conversion of value of the given kind at rate.
func (c *Cache) Key(kind, value, rate string) string {
	sum := sha256.Sum256([]byte(kind + "|" + value + "|" + rate))
	return fmt.Sprintf("%s:%s", c.prefix, hex.EncodeToString(sum[:]))
}

// Get looks up key. A miss returns (nil, false, nil).
func (c *Cache) Get(ctx context.Context, key string) (*Entry, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.RecordCacheResult(metrics.CacheMiss)
		return nil, false, nil
	}
	if err != nil {
		metrics.RecordCacheResult(metrics.CacheError)
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		metrics.RecordCacheResult(metrics.CacheError)
		return nil, false, fmt.Errorf("cache decode %s: %w", key, err)
	}

	metrics.RecordCacheResult(metrics.CacheHit)
	return &entry, true, nil
}

// Set stores entry under key.
func (c *Cache) Set(ctx context.Context, key string, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// GetOrCompute returns the cached entry for key or calls compute and stores
// its result. Redis failures are logged and never fail the call; errors from
// compute are returned as-is and nothing is stored.
func (c *Cache) GetOrCompute(ctx context.Context, key string, compute func() (*Entry, error)) (*Entry, error) {
	entry, ok, err := c.Get(ctx, key)
	if err != nil {
		c.logger.WithError(err).Warn("Cache lookup failed, computing")
	}
	if ok {
		return entry, nil
	}

	entry, err = compute()
	if err != nil {
		return nil, err
	}

	if err := c.Set(ctx, key, entry); err != nil {
		c.logger.WithError(err).Warn("Failed to store conversion")
	}
	return entry, nil
}
