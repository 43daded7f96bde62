package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/feichai0017/docintel/internal/models"
	"github.com/feichai0017/docintel/pkg/logger"
)

const (
	redisKeyPrefix = "docintel:cache:"
	redisStatsKey  = "docintel:cache:stats"
)

// RedisCache shares extraction results across processes. SET is atomic on the
// redis side, so a concurrent reader sees the old complete entry or the new
// one, never a torn write.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
}

// RedisCacheConfig configures the shared cache.
type RedisCacheConfig struct {
	Addr string
	DB   int
	TTL  time.Duration
}

// NewRedisCache connects to redis and returns the shared cache.
func NewRedisCache(cfg *RedisCacheConfig, log logger.Logger) *RedisCache {
	if log == nil {
		log = logger.NewNop()
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr: cfg.Addr,
			DB:   cfg.DB,
		}),
		ttl: ttl,
		log: log,
	}
}

func (c *RedisCache) Get(ctx context.Context, fingerprint string) (*models.ExtractionResult, bool) {
	data, err := c.client.Get(ctx, redisKeyPrefix+fingerprint).Bytes()
	if err != nil {
		if err != redis.Nil {
			// read failures degrade to a miss
			c.log.Warn("cache read failed, treating as miss",
				logger.String("fingerprint", fingerprint),
				logger.Error(err),
			)
		}
		c.client.HIncrBy(ctx, redisStatsKey, "misses", 1)
		return nil, false
	}

	var result models.ExtractionResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.log.Warn("cache entry unreadable, treating as miss",
			logger.String("fingerprint", fingerprint),
			logger.Error(err),
		)
		c.client.HIncrBy(ctx, redisStatsKey, "misses", 1)
		return nil, false
	}

	c.client.HIncrBy(ctx, redisStatsKey, "hits", 1)
	return &result, true
}

func (c *RedisCache) Set(ctx context.Context, fingerprint string, result *models.ExtractionResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, redisKeyPrefix+fingerprint, payload, c.ttl).Err(); err != nil {
		return err
	}
	c.client.HIncrBy(ctx, redisStatsKey, "stores", 1)
	c.client.HIncrBy(ctx, redisStatsKey, "total_size_bytes", int64(len(payload)))
	return nil
}

func (c *RedisCache) Stats(ctx context.Context) map[string]interface{} {
	stats := map[string]interface{}{
		"backend": "redis",
	}

	entries := 0
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, redisKeyPrefix+"*", 500).Result()
		if err != nil {
			c.log.Warn("cache stats scan failed", logger.Error(err))
			break
		}
		for _, k := range keys {
			if k != redisStatsKey {
				entries++
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	stats["entries"] = entries

	counters, err := c.client.HGetAll(ctx, redisStatsKey).Result()
	if err == nil {
		for k, v := range counters {
			stats[k] = v
		}
	}
	return stats
}

func (c *RedisCache) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, redisKeyPrefix+"*", 500).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
