package imageloader

import (
	"image"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache is the decoded-bitmap cache consulted before any network, disk or
// decode work. Keys are the raw image reference strings.
type Cache interface {
	Get(key string) (image.Image, bool)
	Add(key string, img image.Image)
}

// CacheStats is a point-in-time snapshot used by the stats reporter.
type CacheStats struct {
	Hits    uint64
	Misses  uint64
	Entries int
	Bytes   int64
}

type cacheEntry struct {
	img  image.Image
	cost int64
}

// LRUCache is a byte-bounded LRU over decoded bitmaps. Each map view owns
// its own cache, so concurrent views do not share unbounded state.
type LRUCache struct {
	mu       sync.Mutex
	entries  *lru.Cache[string, cacheEntry]
	bytes    int64
	maxBytes int64
	hits     uint64
	misses   uint64
}

// maxCacheEntries caps the entry count; the effective bound is byte-based.
const maxCacheEntries = 4096

// NewLRUCache creates a cache bounded to roughly maxBytes of decoded pixel
// data. A non-positive bound falls back to 64 MiB.
func NewLRUCache(maxBytes int64) *LRUCache {
	if maxBytes <= 0 {
		maxBytes = 64 << 20
	}
	c := &LRUCache{maxBytes: maxBytes}
	c.entries, _ = lru.NewWithEvict(maxCacheEntries, func(_ string, e cacheEntry) {
		c.bytes -= e.cost
	})
	return c
}

// Get returns the cached bitmap for key, if present.
func (c *LRUCache) Get(key string) (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries.Get(key)
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	return e.img, true
}

// Add stores a decoded bitmap, evicting least-recently-used entries until
// the byte bound is respected again. Concurrent resolution of the same
// reference may Add twice; the last writer wins with an identical value.
func (c *LRUCache) Add(key string, img image.Image) {
	if img == nil {
		return
	}
	cost := pixelCost(img)

	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.entries.Peek(key); ok {
		c.bytes -= old.cost
	}
	c.entries.Add(key, cacheEntry{img: img, cost: cost})
	c.bytes += cost
	for c.bytes > c.maxBytes && c.entries.Len() > 1 {
		c.entries.RemoveOldest()
	}
}

// Stats returns a snapshot of cache counters.
func (c *LRUCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Hits:    c.hits,
		Misses:  c.misses,
		Entries: c.entries.Len(),
		Bytes:   c.bytes,
	}
}

// Purge drops every entry.
func (c *LRUCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Purge()
	c.bytes = 0
}

// pixelCost approximates the decoded size as 4 bytes per pixel.
func pixelCost(img image.Image) int64 {
	b := img.Bounds()
	return int64(b.Dx()) * int64(b.Dy()) * 4
}
