package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tm-acme-shop/acme-shop-tax-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/models"
)

const (
	resultKeyPrefix = "tax_result:"
	defaultCacheTTL = 5 * time.Minute
)

// ResultCache memoizes tax results by a key derived from the inputs and
// the active tax parameters.
type ResultCache interface {
	Get(ctx context.Context, key string) (*models.TaxResult, error)
	Set(ctx context.Context, key string, result *models.TaxResult) error
	Close() error
}

// RedisResultCache implements ResultCache using Redis.
type RedisResultCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisResultCache creates a new Redis-based result cache.
func NewRedisResultCache(cfg config.RedisConfig, logger *zap.Logger) *RedisResultCache {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisResultCacheWithClient(client, cfg.TTL, logger)
}

// NewRedisResultCacheWithClient wraps an existing client.
func NewRedisResultCacheWithClient(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *RedisResultCache {
	if ttl == 0 {
		ttl = defaultCacheTTL
	}
	return &RedisResultCache{
		client: client,
		ttl:    ttl,
		logger: logger.Named("result-cache"),
	}
}

// Ping checks connectivity to Redis.
func (c *RedisResultCache) Ping(ctx context.Context) error {
	return errors.Wrap(c.client.Ping(ctx).Err(), "redis ping")
}

// Get retrieves a result from cache. A miss returns nil, nil.
func (c *RedisResultCache) Get(ctx context.Context, key string) (*models.TaxResult, error) {
	data, err := c.client.Get(ctx, resultKeyPrefix+key).Bytes()
	if err == redis.Nil {
		c.logger.Debug("Cache miss", zap.String("key", key))
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis get")
	}

	var result models.TaxResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, errors.Wrap(err, "decode cached result")
	}

	c.logger.Debug("Cache hit", zap.String("key", key))
	return &result, nil
}

// Set stores a result in cache.
func (c *RedisResultCache) Set(ctx context.Context, key string, result *models.TaxResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(err, "encode result")
	}

	if err := c.client.Set(ctx, resultKeyPrefix+key, data, c.ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set")
	}

	c.logger.Debug("Result cached", zap.String("key", key), zap.Duration("ttl", c.ttl))
	return nil
}

// Close releases the Redis connection pool.
func (c *RedisResultCache) Close() error {
	return c.client.Close()
}
