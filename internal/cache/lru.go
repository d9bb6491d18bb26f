package cache

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/bvhgo/resource"
)

// LRUBlockCache is a byte-capacity LRU over snapshot blocks. When a
// resource.Controller is attached, every cached byte is charged
// against the global memory limit, so block caches and mapped
// snapshots share one budget.
type LRUBlockCache struct {
	mu       sync.Mutex
	capacity int64
	size     int64
	entries  map[CacheKey]*list.Element
	order    *list.List
	rc       *resource.Controller

	hits   atomic.Int64
	misses atomic.Int64
}

type lruEntry struct {
	key   CacheKey
	block []byte
}

// NewLRUBlockCache creates a cache holding at most capacity bytes of
// block data. rc may be nil.
func NewLRUBlockCache(capacity int64, rc *resource.Controller) *LRUBlockCache {
	return &LRUBlockCache{
		capacity: capacity,
		entries:  make(map[CacheKey]*list.Element),
		order:    list.New(),
		rc:       rc,
	}
}

// Get returns a cached block and marks it most recently used.
func (c *LRUBlockCache) Get(_ context.Context, key CacheKey) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	c.order.MoveToFront(el)

	return el.Value.(*lruEntry).block, true
}

// Set caches a block. Blocks larger than the whole cache are not
// stored, and a block the memory controller refuses is silently
// dropped rather than blocking a read path.
func (c *LRUBlockCache) Set(_ context.Context, key CacheKey, block []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.update(el, block)
		return
	}

	n := int64(len(block))
	if n > c.capacity {
		return
	}

	// Evict before charging the controller, so released bytes are
	// available to re-acquire.
	for c.size+n > c.capacity {
		c.evictOldest()
	}

	if c.rc != nil && !c.rc.TryAcquireMemory(n) {
		return
	}

	c.entries[key] = c.order.PushFront(&lruEntry{key: key, block: block})
	c.size += n
}

func (c *LRUBlockCache) update(el *list.Element, block []byte) {
	c.order.MoveToFront(el)

	ent := el.Value.(*lruEntry)
	oldN, newN := int64(len(ent.block)), int64(len(block))

	if c.rc != nil {
		switch {
		case newN > oldN:
			if !c.rc.TryAcquireMemory(newN - oldN) {
				return
			}
		case newN < oldN:
			c.rc.ReleaseMemory(oldN - newN)
		}
	}

	ent.block = block
	c.size += newN - oldN

	for c.size > c.capacity {
		c.evictOldest()
	}
}

// Invalidate removes every entry matching the predicate.
func (c *LRUBlockCache) Invalidate(match func(key CacheKey) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Collect first; remove mutates the list under iteration.
	var doomed []*list.Element
	for key, el := range c.entries {
		if match(key) {
			doomed = append(doomed, el)
		}
	}

	for _, el := range doomed {
		c.remove(el)
	}
}

func (c *LRUBlockCache) evictOldest() {
	if el := c.order.Back(); el != nil {
		c.remove(el)
	}
}

func (c *LRUBlockCache) remove(el *list.Element) {
	ent := el.Value.(*lruEntry)

	c.order.Remove(el)
	delete(c.entries, ent.key)
	c.size -= int64(len(ent.block))

	if c.rc != nil {
		c.rc.ReleaseMemory(int64(len(ent.block)))
	}
}

// Size returns the cached bytes currently held.
func (c *LRUBlockCache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.size
}

// Stats returns lifetime hit and miss counts.
func (c *LRUBlockCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *LRUBlockCache) Close() error {
	return nil
}
