// Package cache provides a Redis-backed cache of completed analyses, keyed
// by a digest of the raw document bytes. Identical uploads short-circuit the
// pipeline entirely.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pharmwatch/icsr-sentinel/internal/config"
	"github.com/pharmwatch/icsr-sentinel/internal/logger"
	"github.com/pharmwatch/icsr-sentinel/internal/pipeline"
	"go.uber.org/zap"
)

// ResultCache handles Redis-based caching of analysis results.
type ResultCache struct {
	client *redis.Client
	config config.CacheConfig
	logger *logger.Logger
	stats  *cacheStats
}

// cacheStats tracks cache performance counters.
type cacheStats struct {
	hits   int64
	misses int64
}

// Stats is a point-in-time snapshot of cache performance.
type Stats struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	HitRate   float64 `json:"hitRate"`
	TotalKeys int64   `json:"totalKeys"`
}

// NewResultCache creates a Redis-backed result cache and verifies the
// connection before returning.
func NewResultCache(cfg config.CacheConfig, log *logger.Logger) (*ResultCache, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = cfg.MaxConnections
	opts.MinIdleConns = cfg.MinIdleConns

	c := &ResultCache{
		client: redis.NewClient(opts),
		config: cfg,
		logger: log.WithComponent("cache"),
		stats:  &cacheStats{},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := c.client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	c.logger.Info("result cache initialized",
		zap.String("redis_url", maskRedisURL(cfg.RedisURL)),
		zap.Duration("default_ttl", cfg.DefaultTTL),
	)

	return c, nil
}

// Key derives the cache key for a raw document.
func (c *ResultCache) Key(data []byte) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:doc:%s", c.config.KeyPrefix, hex.EncodeToString(sum[:]))
}

// Get returns the cached analysis for a document, or nil on a miss. Lookup
// failures and corrupted entries count as misses; they never fail the caller.
func (c *ResultCache) Get(ctx context.Context, key string) *pipeline.Analysis {
	data, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		c.stats.misses++
		return nil
	}
	if err != nil {
		c.logger.Error("cache lookup failed", zap.Error(err))
		c.stats.misses++
		return nil
	}

	var analysis pipeline.Analysis
	if err := json.Unmarshal([]byte(data), &analysis); err != nil {
		c.logger.Error("failed to unmarshal cached analysis", zap.Error(err))
		c.client.Del(ctx, key)
		c.stats.misses++
		return nil
	}

	c.stats.hits++
	c.logger.Debug("cache hit", zap.String("key", key))
	return &analysis
}

// Put caches an analysis under the given key with the configured TTL.
func (c *ResultCache) Put(ctx context.Context, key string, analysis *pipeline.Analysis) error {
	data, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis for caching: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.config.DefaultTTL).Err(); err != nil {
		c.logger.Error("failed to cache analysis", zap.Error(err))
		return fmt.Errorf("failed to cache analysis: %w", err)
	}

	c.logger.Debug("analysis cached", zap.String("key", key))
	return nil
}

// GetStats returns cache performance statistics.
func (c *ResultCache) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		Hits:   c.stats.hits,
		Misses: c.stats.misses,
	}

	total := stats.Hits + stats.Misses
	if total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total) * 100
	}

	keys, err := c.client.DBSize(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get Redis key count: %w", err)
	}
	stats.TotalKeys = keys

	return stats, nil
}

// Clear removes every cached analysis under the configured prefix.
func (c *ResultCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.config.KeyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache keys: %w", err)
	}

	c.logger.Info("cache cleared", zap.Int("deleted_keys", len(keys)))
	return nil
}

// Close closes the Redis connection.
func (c *ResultCache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// maskRedisURL masks credentials in a Redis URL for logging.
func maskRedisURL(url string) string {
	if !strings.Contains(url, "@") {
		return url
	}
	parts := strings.SplitN(url, "@", 2)
	if idx := strings.LastIndex(parts[0], ":"); idx > strings.Index(parts[0], "//") {
		parts[0] = parts[0][:idx+1] + "***"
	}
	return parts[0] + "@" + parts[1]
}
