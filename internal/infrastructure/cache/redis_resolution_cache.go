package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	catalogapp "github.com/catalogadmin/backend/internal/application/catalog"
	"github.com/catalogadmin/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "catalog:image:"

// RedisResolutionCache implements ResolutionCache using Redis
// This is suitable for distributed deployments where multiple instances
// serve the same bucket
type RedisResolutionCache struct {
	client      *redis.Client
	keyPrefix   string
	positiveTTL time.Duration
	negativeTTL time.Duration
}

// NewRedisResolutionCache connects to Redis and creates a cache
func NewRedisResolutionCache(redisCfg config.RedisConfig, cacheCfg config.CacheConfig) (*RedisResolutionCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr(),
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisResolutionCacheWithClient(client, cacheCfg.KeyPrefix, cacheCfg.PositiveTTL, cacheCfg.NegativeTTL), nil
}

// NewRedisResolutionCacheWithClient creates a cache with an existing Redis client
// This is useful for testing or when sharing a client across components
func NewRedisResolutionCacheWithClient(client *redis.Client, keyPrefix string, positiveTTL, negativeTTL time.Duration) *RedisResolutionCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisResolutionCache{
		client:      client,
		keyPrefix:   keyPrefix,
		positiveTTL: positiveTTL,
		negativeTTL: negativeTTL,
	}
}

// Get returns the cached resolution for key, or nil on a miss
func (c *RedisResolutionCache) Get(ctx context.Context, key string) (*catalogapp.Resolution, error) {
	raw, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cached resolution: %w", err)
	}

	var res catalogapp.Resolution
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("failed to decode cached resolution: %w", err)
	}
	return &res, nil
}

// Set stores res under key with the TTL for its result kind
func (c *RedisResolutionCache) Set(ctx context.Context, key string, res *catalogapp.Resolution) error {
	if res == nil {
		return nil
	}
	ttl := ttlFor(res, c.positiveTTL, c.negativeTTL)
	if ttl <= 0 {
		return nil
	}

	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to encode resolution: %w", err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache resolution: %w", err)
	}
	return nil
}

// Invalidate drops the given keys
func (c *RedisResolutionCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	redisKeys := make([]string, len(keys))
	for i, k := range keys {
		redisKeys[i] = c.keyPrefix + k
	}
	if err := c.client.Del(ctx, redisKeys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached resolutions: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisResolutionCache) Close() error {
	return c.client.Close()
}

// Ensure RedisResolutionCache implements ResolutionCache
var _ catalogapp.ResolutionCache = (*RedisResolutionCache)(nil)
