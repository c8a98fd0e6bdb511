package drtv

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// catalogCache is a TTL-keyed in-memory store for normalized catalog
// entities. Entries are bounded by an LRU so distinct identifiers
// cannot grow the cache without limit, and concurrent refreshes of the
// same key are collapsed so at most one hits the network.
type catalogCache[V any] struct {
	ttl     time.Duration
	entries *lru.Cache[string, cacheEntry[V]]
	group   singleflight.Group
}

type cacheEntry[V any] struct {
	value     V
	fetchedAt time.Time
}

func newCatalogCache[V any](size int, ttl time.Duration) (*catalogCache[V], error) {
	entries, err := lru.New[string, cacheEntry[V]](size)
	if err != nil {
		return nil, err
	}
	return &catalogCache[V]{ttl: ttl, entries: entries}, nil
}

// getOrRefresh returns the cached value for key when it is younger than
// the TTL, and otherwise invokes refresh to rebuild it. A failed
// refresh leaves any stale entry in place and propagates the error; a
// successful one replaces the entry wholesale.
func (c *catalogCache[V]) getOrRefresh(key string, refresh func() (V, error)) (V, error) {
	if v, ok := c.fresh(key); ok {
		return v, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		// A concurrent caller may have refreshed while this one waited.
		if v, ok := c.fresh(key); ok {
			return v, nil
		}
		v, err := refresh()
		if err != nil {
			return nil, err
		}
		c.entries.Add(key, cacheEntry[V]{value: v, fetchedAt: time.Now()})
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

func (c *catalogCache[V]) fresh(key string) (V, bool) {
	entry, ok := c.entries.Get(key)
	if !ok || time.Since(entry.fetchedAt) > c.ttl {
		var zero V
		return zero, false
	}
	return entry.value, true
}

// values returns every cached value regardless of freshness, oldest
// recently used first.
func (c *catalogCache[V]) values() []V {
	entries := c.entries.Values()
	out := make([]V, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.value)
	}
	return out
}
