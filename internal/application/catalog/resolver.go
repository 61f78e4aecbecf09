package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/catalogadmin/backend/internal/domain/catalog"
	"github.com/catalogadmin/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ImageSource tells which storage layout satisfied a resolution
type ImageSource string

const (
	// SourceProduct is the per-SKU folder layout, {sku}/{image_file}
	SourceProduct ImageSource = "product"
	// SourceLegacy is the pre-migration flat layout, keyed without extension
	SourceLegacy ImageSource = "legacy"
)

// Resolution is the outcome of looking up one storage key. Found=false
// records a cacheable not-found.
type Resolution struct {
	Found        bool        `json:"found"`
	Key          string      `json:"key,omitempty"`
	Source       ImageSource `json:"source,omitempty"`
	ContentType  string      `json:"content_type,omitempty"`
	ETag         string      `json:"etag,omitempty"`
	LastModified time.Time   `json:"last_modified,omitempty"`
	Data         []byte      `json:"data,omitempty"`
}

// ImageResolver maps inbound image request paths to stored blobs,
// falling back to the legacy flat layout. Lookups are cached per storage
// key, so invalidating the keys a write touched also covers every request
// path that resolves to them.
type ImageResolver struct {
	storage ObjectStorage
	cache   ResolutionCache
	caching bool
	logger  *zap.Logger
}

// NewImageResolver creates a new ImageResolver. A nil cache disables caching.
func NewImageResolver(storage ObjectStorage, cache ResolutionCache, logger *zap.Logger) *ImageResolver {
	caching := cache != nil
	if cache == nil {
		cache = NopResolutionCache()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageResolver{
		storage: storage,
		cache:   cache,
		caching: caching,
		logger:  logger.Named("resolver"),
	}
}

// Resolve looks up requestPath as a per-SKU key, then as a legacy flat key.
// It returns a NOT_FOUND domain error when neither exists and a
// STORAGE_ERROR when the object store fails.
func (r *ImageResolver) Resolve(ctx context.Context, requestPath string) (*Resolution, error) {
	key := strings.TrimPrefix(requestPath, "/")
	if key == "" {
		return nil, shared.NewNotFoundError("image not found")
	}

	res, err := r.fetch(ctx, key)
	if err != nil {
		return nil, err
	}
	if res.Found {
		return withSource(res, SourceProduct), nil
	}

	legacy := catalog.LegacyKey(key)
	if legacy == "" || legacy == key {
		return nil, shared.NewNotFoundError("image not found: " + key)
	}

	res, err = r.fetch(ctx, legacy)
	if err != nil {
		return nil, err
	}
	if !res.Found {
		return nil, shared.NewNotFoundError("image not found: " + key)
	}

	r.logger.Debug("served legacy image", zap.String("path", key), zap.String("key", legacy))
	return withSource(res, SourceLegacy), nil
}

// fetch reads one storage key through the cache. Storage faults are
// returned and never cached.
func (r *ImageResolver) fetch(ctx context.Context, key string) (*Resolution, error) {
	if cached, err := r.cache.Get(ctx, key); err != nil {
		r.logger.Warn("image cache lookup failed", zap.String("key", key), zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	res, err := r.read(ctx, key)
	if err != nil {
		return nil, err
	}

	if !r.caching {
		return res, nil
	}

	// A create may have written and invalidated the key after the read
	// above; read again so that miss is not cached over the new image.
	if !res.Found {
		if res, err = r.read(ctx, key); err != nil {
			return nil, err
		}
	}

	if err := r.cache.Set(ctx, key, res); err != nil {
		r.logger.Warn("image cache store failed", zap.String("key", key), zap.Error(err))
	}
	return res, nil
}

func (r *ImageResolver) read(ctx context.Context, key string) (*Resolution, error) {
	obj, found, err := r.storage.Get(ctx, key)
	if err != nil {
		return nil, shared.NewStorageError("failed to read image "+key, err)
	}
	if !found {
		return &Resolution{Found: false}, nil
	}
	return &Resolution{
		Found:        true,
		Key:          obj.Key,
		ContentType:  obj.ContentType,
		ETag:         obj.ETag,
		LastModified: obj.LastModified,
		Data:         obj.Data,
	}, nil
}

// withSource copies res so cached entries are never mutated
func withSource(res *Resolution, source ImageSource) *Resolution {
	out := *res
	out.Source = source
	return &out
}

// Invalidate drops cached lookups for the given storage keys
func (r *ImageResolver) Invalidate(ctx context.Context, keys ...string) {
	invalidate(ctx, r.cache, r.logger, keys...)
}

func invalidate(ctx context.Context, cache ResolutionCache, logger *zap.Logger, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := cache.Invalidate(ctx, keys...); err != nil {
		logger.Warn("image cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
