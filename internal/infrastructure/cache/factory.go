package cache

import (
	"fmt"
	"io"

	catalogapp "github.com/catalogadmin/backend/internal/application/catalog"
	"github.com/catalogadmin/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ResolutionCacheFactory creates resolution caches based on configuration
type ResolutionCacheFactory struct {
	redisConfig           config.RedisConfig
	cacheConfig           config.CacheConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ResolutionCacheFactoryOption is a functional option for configuring the factory
type ResolutionCacheFactoryOption func(*ResolutionCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ResolutionCacheFactoryOption {
	return func(f *ResolutionCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) ResolutionCacheFactoryOption {
	return func(f *ResolutionCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewResolutionCacheFactory creates a new factory
func NewResolutionCacheFactory(redisCfg config.RedisConfig, cacheCfg config.CacheConfig, opts ...ResolutionCacheFactoryOption) *ResolutionCacheFactory {
	f := &ResolutionCacheFactory{
		redisConfig:           redisCfg,
		cacheConfig:           cacheCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateCache returns the cache selected by cache.backend together with a
// closer for its resources. Backend "none" yields a cache that stores nothing.
func (f *ResolutionCacheFactory) CreateCache() (catalogapp.ResolutionCache, io.Closer, error) {
	switch f.cacheConfig.Backend {
	case "none":
		f.logger.Info("image resolution cache disabled")
		return catalogapp.NopResolutionCache(), io.NopCloser(nil), nil
	case "memory", "":
		f.logger.Info("using in-memory image resolution cache")
		c := f.createInMemory()
		return c, c, nil
	case "redis":
		c, err := NewRedisResolutionCache(f.redisConfig, f.cacheConfig)
		if err == nil {
			f.logger.Info("using Redis image resolution cache", zap.String("addr", f.redisConfig.Addr()))
			return c, c, nil
		}
		if !f.allowInMemoryFallback {
			return nil, nil, fmt.Errorf("Redis required for image cache but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory image resolution cache. "+
			"Invalidations will not reach other instances.",
			zap.Error(err),
		)
		mem := f.createInMemory()
		return mem, mem, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", f.cacheConfig.Backend)
	}
}

func (f *ResolutionCacheFactory) createInMemory() *InMemoryResolutionCache {
	return NewInMemoryResolutionCache(f.cacheConfig.PositiveTTL, f.cacheConfig.NegativeTTL)
}
