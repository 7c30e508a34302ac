package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/Charlescifix/gdpr-safe-rag/internal/config"
	"github.com/Charlescifix/gdpr-safe-rag/internal/privacy"
)

// ResultCache is a Redis-backed cache of detection statistics. Keys are
// derived from a hash of the detector configuration and document text;
// cached entries hold aggregate stats only, never text or PII values.
type ResultCache struct {
	client *redis.Client
	config config.CacheConfig
	logger *zap.Logger
	hits   int64
	misses int64
}

// CachedResult is a detection outcome stored in the cache.
type CachedResult struct {
	PIIDetected bool           `json:"pii_detected"`
	Stats       privacy.Stats  `json:"stats"`
	TypeCounts  map[string]int `json:"type_counts,omitempty"`
	CachedAt    time.Time      `json:"cached_at"`
}

// Stats reports cache performance.
type Stats struct {
	Hits        int64   `json:"hits"`
	Misses      int64   `json:"misses"`
	HitRate     float64 `json:"hit_rate"`
	TotalKeys   int64   `json:"total_keys"`
	MemoryUsage int64   `json:"memory_usage_bytes"`
}

// New creates a result cache and verifies the Redis connection.
func New(cfg config.CacheConfig, logger *zap.Logger) (*ResultCache, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = cfg.MaxConnections
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	cache := &ResultCache{
		client: client,
		config: cfg,
		logger: logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Result cache initialized",
		zap.String("redis_url", maskRedisURL(cfg.RedisURL)),
		zap.Int("max_connections", cfg.MaxConnections),
		zap.Duration("default_ttl", cfg.DefaultTTL))

	return cache, nil
}

// Key derives the cache key for a document under a given detector
// configuration. Only the hash leaves the process.
func (rc *ResultCache) Key(region, level, strategy, text string) string {
	hasher := sha256.New()
	hasher.Write([]byte(region))
	hasher.Write([]byte{0})
	hasher.Write([]byte(level))
	hasher.Write([]byte{0})
	hasher.Write([]byte(strategy))
	hasher.Write([]byte{0})
	hasher.Write([]byte(text))

	hash := hex.EncodeToString(hasher.Sum(nil))
	return fmt.Sprintf("%s:doc:%s", rc.config.KeyPrefix, hash[:16])
}

// Get fetches a cached result. A nil result with a nil error is a cache
// miss; lookup failures are logged and treated as misses.
func (rc *ResultCache) Get(ctx context.Context, key string) (*CachedResult, error) {
	data, err := rc.client.Get(ctx, key).Result()
	if err == redis.Nil {
		atomic.AddInt64(&rc.misses, 1)
		rc.logger.Debug("Cache miss", zap.String("key", key))
		return nil, nil
	} else if err != nil {
		atomic.AddInt64(&rc.misses, 1)
		rc.logger.Error("Cache lookup failed", zap.Error(err))
		return nil, nil
	}

	var result CachedResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		rc.logger.Error("Failed to unmarshal cached result", zap.Error(err))
		rc.client.Del(ctx, key)
		atomic.AddInt64(&rc.misses, 1)
		return nil, nil
	}

	atomic.AddInt64(&rc.hits, 1)
	rc.logger.Debug("Cache hit", zap.String("key", key))
	return &result, nil
}

// Put stores a detection result with the configured TTL.
func (rc *ResultCache) Put(ctx context.Context, key string, result *CachedResult) error {
	result.CachedAt = time.Now().UTC()

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result for caching: %w", err)
	}

	if err := rc.client.Set(ctx, key, data, rc.config.DefaultTTL).Err(); err != nil {
		rc.logger.Error("Failed to cache result", zap.Error(err))
		return fmt.Errorf("failed to cache result: %w", err)
	}

	rc.logger.Debug("Result cached",
		zap.String("key", key),
		zap.Int("pii_count", result.Stats.PIICount))
	return nil
}

// GetStats returns cache performance statistics.
func (rc *ResultCache) GetStats(ctx context.Context) (*Stats, error) {
	info, err := rc.client.Info(ctx, "memory", "stats").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get Redis info: %w", err)
	}

	stats := &Stats{
		Hits:   atomic.LoadInt64(&rc.hits),
		Misses: atomic.LoadInt64(&rc.misses),
	}

	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total) * 100
	}

	for _, line := range strings.Split(info, "\r\n") {
		if strings.HasPrefix(line, "used_memory:") {
			if mem, err := strconv.ParseInt(strings.TrimPrefix(line, "used_memory:"), 10, 64); err == nil {
				stats.MemoryUsage = mem
			}
		}
	}

	if keys, err := rc.client.DBSize(ctx).Result(); err == nil {
		stats.TotalKeys = keys
	}

	return stats, nil
}

// Clear removes all cached results under the configured prefix.
func (rc *ResultCache) Clear(ctx context.Context) error {
	pattern := rc.config.KeyPrefix + "*"

	iter := rc.client.Scan(ctx, 0, pattern, 0).Iterator()
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

	batchSize := 100
	for i := 0; i < len(keys); i += batchSize {
		end := i + batchSize
		if end > len(keys) {
			end = len(keys)
		}
		if err := rc.client.Del(ctx, keys[i:end]...).Err(); err != nil {
			rc.logger.Error("Failed to delete cache keys", zap.Error(err))
			return fmt.Errorf("failed to delete cache keys: %w", err)
		}
	}

	rc.logger.Info("Cache cleared", zap.Int("deleted_keys", len(keys)))
	return nil
}

// Close closes the Redis connection.
func (rc *ResultCache) Close() error {
	if rc.client != nil {
		return rc.client.Close()
	}
	return nil
}

// maskRedisURL hides credentials in Redis URLs before logging.
func maskRedisURL(url string) string {
	if strings.Contains(url, "@") {
		parts := strings.Split(url, "@")
		if len(parts) >= 2 {
			userPart := parts[0]
			if strings.Contains(userPart, ":") {
				userParts := strings.Split(userPart, ":")
				if len(userParts) >= 3 {
					userParts[len(userParts)-1] = "***"
					parts[0] = strings.Join(userParts, ":")
				}
			}
			return strings.Join(parts, "@")
		}
	}
	return url
}
