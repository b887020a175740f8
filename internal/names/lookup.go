// Package names turns the hashes and ids stored in scene files into readable
// names, falling back to deterministic synthesized ones.
package names

import "sync"

// Lookup maps a 64-bit id to a name. A miss is ("", false, nil); err is
// reserved for a backend that could not answer.
type Lookup interface {
	Lookup(id uint64) (string, bool, error)
}

// MapLookup is an in-memory Lookup.
type MapLookup map[uint64]string

func (m MapLookup) Lookup(id uint64) (string, bool, error) {
	v, ok := m[id]
	return v, ok, nil
}

// Cache is a concurrency-safe read-through memo in front of a slower Lookup.
// Misses are cached too; backend errors are not.
type Cache struct {
	mu    sync.RWMutex
	items map[uint64]cacheEntry
	next  Lookup
}

type cacheEntry struct {
	name  string
	found bool
}

func NewCache(next Lookup) *Cache {
	return &Cache{
		items: make(map[uint64]cacheEntry),
		next:  next,
	}
}

func (c *Cache) Lookup(id uint64) (string, bool, error) {
	// Fast path: read lock
	c.mu.RLock()
	if e, ok := c.items[id]; ok {
		c.mu.RUnlock()
		return e.name, e.found, nil
	}
	c.mu.RUnlock()

	name, found, err := c.next.Lookup(id)
	if err != nil {
		return "", false, err
	}

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.items[id]; ok {
		return e.name, e.found, nil
	}
	c.items[id] = cacheEntry{name: name, found: found}
	return name, found, nil
}

// Len returns the number of memoized ids.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
