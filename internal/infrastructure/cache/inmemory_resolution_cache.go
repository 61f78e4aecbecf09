package cache

import (
	"context"
	"sync"
	"time"

	catalogapp "github.com/catalogadmin/backend/internal/application/catalog"
)

// resolutionEntry is a cached resolution with its expiry
type resolutionEntry struct {
	res       *catalogapp.Resolution
	expiresAt time.Time
}

// InMemoryResolutionCache implements ResolutionCache using an in-memory map.
// Found and not-found results expire after separate TTLs.
// This is suitable for single-instance deployments and testing
type InMemoryResolutionCache struct {
	mu          sync.RWMutex
	entries     map[string]resolutionEntry
	positiveTTL time.Duration
	negativeTTL time.Duration
	stopChan    chan struct{}
	wg          sync.WaitGroup
	closeOnce   sync.Once
}

// NewInMemoryResolutionCache creates a new in-memory resolution cache
// It starts a background goroutine to clean up expired entries
func NewInMemoryResolutionCache(positiveTTL, negativeTTL time.Duration) *InMemoryResolutionCache {
	c := &InMemoryResolutionCache{
		entries:     make(map[string]resolutionEntry),
		positiveTTL: positiveTTL,
		negativeTTL: negativeTTL,
		stopChan:    make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanupLoop()

	return c
}

// Get returns the cached resolution for key, or nil on a miss
func (c *InMemoryResolutionCache) Get(ctx context.Context, key string) (*catalogapp.Resolution, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, nil
	}
	return e.res, nil
}

// Set stores res under key. A zero TTL for the result kind disables caching it.
func (c *InMemoryResolutionCache) Set(ctx context.Context, key string, res *catalogapp.Resolution) error {
	if res == nil {
		return nil
	}
	ttl := ttlFor(res, c.positiveTTL, c.negativeTTL)
	if ttl <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = resolutionEntry{res: res, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Invalidate drops the given keys
func (c *InMemoryResolutionCache) Invalidate(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range keys {
		delete(c.entries, p)
	}
	return nil
}

// Close stops the cleanup goroutine and releases resources
// Safe to call multiple times
func (c *InMemoryResolutionCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

func (c *InMemoryResolutionCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *InMemoryResolutionCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Size returns the number of entries in the cache (for testing/monitoring)
func (c *InMemoryResolutionCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func ttlFor(res *catalogapp.Resolution, positive, negative time.Duration) time.Duration {
	if res.Found {
		return positive
	}
	return negative
}

// Ensure InMemoryResolutionCache implements ResolutionCache
var _ catalogapp.ResolutionCache = (*InMemoryResolutionCache)(nil)
