package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	catalogapp "github.com/catalogadmin/backend/internal/application/catalog"
)

// Ensure InMemoryObjectStorage implements ObjectStorage
var _ catalogapp.ObjectStorage = (*InMemoryObjectStorage)(nil)

// InMemoryObjectStorage keeps objects in process memory.
// Use this for development and tests when no S3-compatible backend is available.
type InMemoryObjectStorage struct {
	mu      sync.RWMutex
	objects map[string]catalogapp.StoredObject
	now     func() time.Time
}

// NewInMemoryObjectStorage creates an empty InMemoryObjectStorage
func NewInMemoryObjectStorage() *InMemoryObjectStorage {
	return &InMemoryObjectStorage{
		objects: make(map[string]catalogapp.StoredObject),
		now:     time.Now,
	}
}

// Put stores a copy of data at key
func (s *InMemoryObjectStorage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return errors.New("storage key is required")
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	sum := md5.Sum(buf)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = catalogapp.StoredObject{
		Key:          key,
		Data:         buf,
		ContentType:  contentType,
		ETag:         `"` + hex.EncodeToString(sum[:]) + `"`,
		Size:         int64(len(buf)),
		LastModified: s.now().UTC(),
	}
	return nil
}

// Get returns the object at key, or found=false
func (s *InMemoryObjectStorage) Get(ctx context.Context, key string) (*catalogapp.StoredObject, bool, error) {
	if key == "" {
		return nil, false, errors.New("storage key is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, false, nil
	}
	obj.Data = append([]byte(nil), obj.Data...)
	return &obj, true, nil
}

// Delete removes keys; missing keys are ignored
func (s *InMemoryObjectStorage) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.objects, k)
	}
	return nil
}

// List returns every key beginning with prefix in lexical order
func (s *InMemoryObjectStorage) List(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0)
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Len returns the number of stored objects
func (s *InMemoryObjectStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
