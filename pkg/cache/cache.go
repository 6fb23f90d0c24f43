package cache

import (
	"container/list"
	"sync"
	"time"
)

// Cache is a bounded key-value map with a per-entry write-time TTL and
// least-recently-used eviction once maxEntries is exceeded. All operations
// are safe for concurrent use; atomicity is per key, never across caches.
//
// A Get on an expired entry behaves as a miss and drops the entry. The bool
// return distinguishes a miss from a stored zero value.
type Cache[K comparable, V any] struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	items      map[K]*list.Element
	order      *list.List // front = most recently used
}

type entry[K comparable, V any] struct {
	key       K
	value     V
	writtenAt time.Time
}

// New creates a cache. A ttl <= 0 disables expiry; maxEntries <= 0 disables
// the size bound.
func New[K comparable, V any](ttl time.Duration, maxEntries int) *Cache[K, V] {
	return &Cache[K, V]{
		ttl:        ttl,
		maxEntries: maxEntries,
		items:      make(map[K]*list.Element),
		order:      list.New(),
	}
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, ok := c.items[key]
	if !ok {
		return zero, false
	}

	ent := elem.Value.(*entry[K, V])
	if c.expired(ent, time.Now()) {
		c.remove(elem)
		return zero, false
	}

	c.order.MoveToFront(elem)
	return ent.value, true
}

// Put stores the value, overwriting unconditionally and refreshing the
// entry's write time.
func (c *Cache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		ent := elem.Value.(*entry[K, V])
		ent.value = value
		ent.writtenAt = time.Now()
		c.order.MoveToFront(elem)
		return
	}

	elem := c.order.PushFront(&entry[K, V]{
		key:       key,
		value:     value,
		writtenAt: time.Now(),
	})
	c.items[key] = elem

	if c.maxEntries > 0 && c.order.Len() > c.maxEntries {
		if oldest := c.order.Back(); oldest != nil {
			c.remove(oldest)
		}
	}
}

func (c *Cache[K, V]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.remove(elem)
	}
}

// InvalidateFunc drops every entry whose key matches pred and reports how
// many were removed.
func (c *Cache[K, V]) InvalidateFunc(pred func(K) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		if pred(elem.Value.(*entry[K, V]).key) {
			c.remove(elem)
			removed++
		}
		elem = prev
	}
	return removed
}

func (c *Cache[K, V]) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[K]*list.Element)
	c.order.Init()
}

func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// PurgeExpired drops every expired entry and reports how many were removed.
// Expiry is otherwise enforced lazily on Get; a periodic purge keeps idle
// keys from pinning memory until their next read.
func (c *Cache[K, V]) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		if c.expired(elem.Value.(*entry[K, V]), now) {
			c.remove(elem)
			removed++
		}
		elem = prev
	}
	return removed
}

func (c *Cache[K, V]) expired(ent *entry[K, V], now time.Time) bool {
	return c.ttl > 0 && now.Sub(ent.writtenAt) > c.ttl
}

func (c *Cache[K, V]) remove(elem *list.Element) {
	ent := elem.Value.(*entry[K, V])
	delete(c.items, ent.key)
	c.order.Remove(elem)
}
