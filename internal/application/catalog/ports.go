package catalog

import (
	"context"
	"time"
)

// StoredObject is a blob read back from object storage
type StoredObject struct {
	Key          string
	Data         []byte
	ContentType  string
	ETag         string
	Size         int64
	LastModified time.Time
}

// ObjectStorage defines the blob operations the catalog needs.
// It is implemented by the infrastructure layer (S3, R2, in-memory).
type ObjectStorage interface {
	// Put writes or overwrites the object at key
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Get reads the object at key. A missing key reports found=false with a nil error.
	Get(ctx context.Context, key string) (obj *StoredObject, found bool, err error)

	// Delete removes one or more keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// List returns every key starting with prefix
	List(ctx context.Context, prefix string) ([]string, error)
}

// ResolutionCache stores storage lookups by key, including negative (not
// found) results. A nil *Resolution with a nil error is a miss.
type ResolutionCache interface {
	Get(ctx context.Context, key string) (*Resolution, error)
	Set(ctx context.Context, key string, res *Resolution) error
	Invalidate(ctx context.Context, keys ...string) error
}

type nopResolutionCache struct{}

func (nopResolutionCache) Get(context.Context, string) (*Resolution, error) { return nil, nil }
func (nopResolutionCache) Set(context.Context, string, *Resolution) error { return nil }
func (nopResolutionCache) Invalidate(context.Context, ...string) error { return nil }

// NopResolutionCache returns a cache that never stores anything
func NopResolutionCache() ResolutionCache {
	return nopResolutionCache{}
}
