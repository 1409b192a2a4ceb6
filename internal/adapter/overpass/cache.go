package overpass

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/couchcryptid/storm-radar-service/internal/domain"
	"github.com/couchcryptid/storm-radar-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

// CachedSource wraps a FeatureSource with an in-memory LRU cache whose
// entries expire after a TTL. Map features change rarely, so a long TTL
// keeps refresh cycles from re-querying Overpass.
type CachedSource struct {
	inner   domain.FeatureSource
	cache   *lruCache
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics
}

// NewCachedSource creates a cache decorator around a feature source.
func NewCachedSource(inner domain.FeatureSource, maxEntries int, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedSource {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CachedSource{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		ttl:     ttl,
		clock:   clock,
		metrics: metrics,
	}
}

// Features returns cached features for q when a fresh entry exists.
func (c *CachedSource) Features(ctx context.Context, q domain.FeatureQuery) ([]domain.Feature, error) {
	key := cacheKey(q)
	now := c.clock.Now()
	if e, ok := c.cache.get(key); ok {
		if now.Before(e.expires) {
			c.metrics.FeatureCache.WithLabelValues("hit").Inc()
			return e.features, nil
		}
		c.cache.delete(key)
		c.metrics.FeatureCache.WithLabelValues("expired").Inc()
	} else {
		c.metrics.FeatureCache.WithLabelValues("miss").Inc()
	}

	features, err := c.inner.Features(ctx, q)
	if err != nil {
		return nil, err
	}
	c.cache.put(key, cached{features: features, expires: now.Add(c.ttl)})
	return features, nil
}

// Len reports the number of cached entries.
func (c *CachedSource) Len() int {
	return c.cache.size()
}

func cacheKey(q domain.FeatureQuery) string {
	return fmt.Sprintf("%.4f,%.4f,%.0f,%d", q.Lat, q.Lon, q.Radius, q.Zoom)
}

type cached struct {
	features []domain.Feature
	expires  time.Time
}

// lruCache is a simple thread-safe LRU cache of feature sets.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value cached
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (cached, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return cached{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value cached) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evict(c.tail)
	}
}

func (c *lruCache) delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		c.evict(e)
	}
}

func (c *lruCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.unlink(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) unlink(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evict(e *entry) {
	if e == nil {
		return
	}
	delete(c.entries, e.key)
	c.unlink(e)
}
