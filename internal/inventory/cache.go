package inventory

import (
	"context"
	"sync"

	"github.com/couchcryptid/mera-explorer/internal/observability"
)

// CachedLoader wraps a Loader with an in-memory LRU cache keyed by medium.
type CachedLoader struct {
	inner   Loader
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedLoader creates a cache decorator around a loader. metrics may be nil.
func NewCachedLoader(inner Loader, maxEntries int, metrics *observability.Metrics) *CachedLoader {
	return &CachedLoader{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedLoader) Load(ctx context.Context, medium string) (Manifest, error) {
	if m, ok := c.cache.get(medium); ok {
		c.observe("hit")
		return m, nil
	}
	c.observe("miss")

	m, err := c.inner.Load(ctx, medium)
	if err != nil {
		return m, err
	}
	c.cache.put(medium, m)
	return m, nil
}

// Index returns the name index of a medium's manifest, built once per
// cached load.
func (c *CachedLoader) Index(ctx context.Context, medium string) (*Index, error) {
	if ix, ok := c.cache.index(medium); ok {
		c.observe("hit")
		return ix, nil
	}
	m, err := c.Load(ctx, medium)
	if err != nil {
		return nil, err
	}
	if ix, ok := c.cache.index(medium); ok {
		return ix, nil
	}
	return NewIndex(m), nil
}

// Invalidate drops a medium so the next Load rereads it.
func (c *CachedLoader) Invalidate(medium string) {
	c.cache.delete(medium)
}

func (c *CachedLoader) observe(result string) {
	if c.metrics == nil {
		return
	}
	c.metrics.ManifestCache.WithLabelValues(result).Inc()
}

// lruCache is a simple thread-safe LRU cache of parsed manifests.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value Manifest
	index *Index
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

func (c *lruCache) get(key string) (Manifest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Manifest{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) index(key string) (*Index, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.index, true
}

func (c *lruCache) put(key string, value Manifest) {
	ix := NewIndex(value)

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.index = ix
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value, index: ix}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		delete(c.entries, key)
		c.remove(e)
	}
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
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

func (c *lruCache) remove(e *entry) {
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

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
