package catalog

import (
	"sort"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultTTL is how long a catalog record stays cached.
const DefaultTTL = time.Hour

// Cache holds catalog records keyed by "PREFIX_NUMBER". Entries expire
// lazily: an expired entry is removed on the lookup that finds it and is
// never swept in the background.
type Cache struct {
	mu    sync.Mutex
	store *gocache.Cache
	ttl   time.Duration
	now   func() time.Time
}

type cacheEntry struct {
	record    Record
	expiresAt time.Time
}

// NewCache creates a cache. A nil clock uses time.Now; a non-positive ttl
// uses DefaultTTL.
func NewCache(ttl time.Duration, now func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Cache{
		// Expiry is tracked per entry against the injected clock, so the
		// store itself never expires or janitors anything.
		store: gocache.New(gocache.NoExpiration, 0),
		ttl:   ttl,
		now:   now,
	}
}

// CacheKey builds the cache key for a course code.
func CacheKey(prefix, number string) string {
	return strings.ToUpper(prefix) + "_" + number
}

// Get returns the cached record for key if it has not expired.
func (c *Cache) Get(key string) (Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.store.Get(key)
	if !ok {
		return Record{}, false
	}
	e := v.(cacheEntry)
	if !c.now().Before(e.expiresAt) {
		c.store.Delete(key)
		return Record{}, false
	}
	return e.record, true
}

// Set stores a record for the cache TTL.
func (c *Cache) Set(key string, rec Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Set(key, cacheEntry{record: rec, expiresAt: c.now().Add(c.ttl)}, gocache.NoExpiration)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Flush()
}

// Len reports the number of stored entries, including expired entries that
// have not been looked up since expiring.
func (c *Cache) Len() int {
	return c.store.ItemCount()
}

// Keys returns the stored keys in sorted order.
func (c *Cache) Keys() []string {
	items := c.store.Items()
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
