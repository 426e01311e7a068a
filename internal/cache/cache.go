// Package cache provides TTL caches: an in-memory cache with ETag support for
// API responses, and a page store contract (memory or Redis) for fetched HTML.
package cache

import (
	"context"
	"crypto/md5"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// TTLs for API responses.
const (
	TTLCurrentSeason = 5 * time.Minute
	TTLHistorical    = 24 * time.Hour
	TTLGame          = 1 * time.Hour
)

// PageStore is the contract the fetcher caches raw pages through.
type PageStore interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Store(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

type entry struct {
	data      []byte
	etag      string
	expiresAt time.Time
}

// Cache is a thread-safe in-memory TTL cache.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	enabled bool
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a new cache. Pass enabled=false to create a no-op cache.
func New(enabled bool) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		enabled: enabled,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if enabled {
		go c.evictLoop()
	}
	return c
}

// Get retrieves a cached value. Returns data, etag, and whether the entry was found.
func (c *Cache) Get(key string) (data []byte, etag string, ok bool) {
	if !c.enabled {
		return nil, "", false
	}
	c.mu.RLock()
	e, exists := c.entries[key]
	c.mu.RUnlock()
	if !exists || c.now().After(e.expiresAt) {
		c.misses.Add(1)
		return nil, "", false
	}
	c.hits.Add(1)
	return e.data, e.etag, true
}

// Set stores a value with a TTL and returns its ETag.
func (c *Cache) Set(key string, data []byte, ttl time.Duration) string {
	etag := ComputeETag(data)
	if !c.enabled {
		return etag
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{
		data:      data,
		etag:      etag,
		expiresAt: c.now().Add(ttl),
	}
	return etag
}

// Delete drops a key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Load implements PageStore.
func (c *Cache) Load(_ context.Context, key string) ([]byte, bool, error) {
	data, _, ok := c.Get(key)
	return data, ok, nil
}

// Store implements PageStore.
func (c *Cache) Store(_ context.Context, key string, data []byte, ttl time.Duration) error {
	c.Set(key, data, ttl)
	return nil
}

// Stats is a point-in-time view of the cache for health checks.
type Stats struct {
	Enabled     bool  `json:"enabled"`
	TotalKeys   int   `json:"total_keys"`
	ActiveKeys  int   `json:"active_keys"`
	ExpiredKeys int   `json:"expired_keys"`
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
}

// Stats counts live and expired entries along with lookup hits and misses.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st := Stats{
		Enabled:   c.enabled,
		TotalKeys: len(c.entries),
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
	}
	now := c.now()
	for _, e := range c.entries {
		if now.Before(e.expiresAt) {
			st.ActiveKeys++
		}
	}
	st.ExpiredKeys = st.TotalKeys - st.ActiveKeys
	return st
}

// Close stops the background eviction loop.
func (c *Cache) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *Cache) evictLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.evict()
		}
	}
}

func (c *Cache) evict() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// ComputeETag generates a weak ETag from response data using MD5.
func ComputeETag(data []byte) string {
	hash := md5.Sum(data)
	return fmt.Sprintf(`W/"%x"`, hash[:8])
}

// CheckETagMatch reports whether an If-None-Match header names etag. The
// header may list several tags; comparison is weak, so W/ prefixes are
// ignored on both sides.
func CheckETagMatch(ifNoneMatch, etag string) bool {
	ifNoneMatch = strings.TrimSpace(ifNoneMatch)
	if ifNoneMatch == "" {
		return false
	}
	if ifNoneMatch == "*" {
		return true
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, tag := range strings.Split(ifNoneMatch, ",") {
		if strings.TrimPrefix(strings.TrimSpace(tag), "W/") == want {
			return true
		}
	}
	return false
}
