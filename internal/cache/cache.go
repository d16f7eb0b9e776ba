// Package cache implements the process-local read cache that absorbs
// traffic on hot collections in front of the system of record.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type entry struct {
	value    any
	storedAt time.Time
	ttl      time.Duration
	seq      uint64
}

func (e *entry) expired(now time.Time) bool {
	return now.Sub(e.storedAt) > e.ttl
}

type orderItem struct {
	key string
	seq uint64
}

// Cache is a TTL-bounded key/value store with prefix invalidation.
// Entries expire lazily on read and proactively via the sweeper; when
// the capacity ceiling is reached the oldest entry by insertion order is
// evicted. Eviction is FIFO, not LRU: the workload is read-through, so
// access order carries no signal worth tracking.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]*entry
	order    []orderItem
	capacity int
	nextSeq  uint64
	log      zerolog.Logger
}

// New creates a cache bounded to capacity entries.
func New(capacity int, log zerolog.Logger) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	return &Cache{
		entries:  make(map[string]*entry),
		capacity: capacity,
		log:      log,
	}
}

// Get returns the cached value. An expired entry is indistinguishable
// from one that was never set, and is deleted as a side effect of being
// observed.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if e.expired(time.Now()) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for ttl. At capacity the single oldest
// entry is evicted first.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[key]; ok {
		existing.value = value
		existing.storedAt = time.Now()
		existing.ttl = ttl
		return
	}

	if len(c.entries) >= c.capacity {
		c.evictOldestLocked()
	}

	c.nextSeq++
	c.entries[key] = &entry{value: value, storedAt: time.Now(), ttl: ttl, seq: c.nextSeq}
	c.order = append(c.order, orderItem{key: key, seq: c.nextSeq})
	c.compactLocked()
}

// compactLocked rebuilds the order slice without dead items. A delete
// followed by a re-set leaves the old order item behind, so a workload
// of invalidate-then-refill cycles grows order without ever reaching
// the eviction path. Compaction runs once dead items outnumber the
// capacity, keeping the slice bounded by entries+capacity.
func (c *Cache) compactLocked() {
	if len(c.order) <= len(c.entries)+c.capacity {
		return
	}
	live := c.order[:0]
	for _, item := range c.order {
		if e, ok := c.entries[item.key]; ok && e.seq == item.seq {
			live = append(live, item)
		}
	}
	c.order = live
}

// evictOldestLocked removes the oldest live entry. Order items whose
// entry was already deleted or replaced are skipped.
func (c *Cache) evictOldestLocked() {
	for len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		e, ok := c.entries[oldest.key]
		if !ok || e.seq != oldest.seq {
			continue
		}
		delete(c.entries, oldest.key)
		c.log.Debug().Str("key", oldest.key).Msg("cache evicted oldest entry")
		return
	}
}

// Invalidate deletes every key starting with prefix and returns the
// number of entries removed. Called after any write that could change
// the truth represented by that key family.
func (c *Cache) Invalidate(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
			removed++
		}
	}
	if removed > 0 {
		c.log.Debug().Str("prefix", prefix).Int("removed", removed).Msg("cache prefix invalidated")
	}
	return removed
}

// GetOrCompute is the cache-aside composition: it returns the cached
// value or calls fetch, stores the result under ttl, and returns it.
// fetch may run concurrently for the same key under request bursts;
// duplicate reads are acceptable, this is deliberately not a
// single-flight cache.
func (c *Cache) GetOrCompute(key string, ttl time.Duration, fetch func() (any, error)) (any, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := fetch()
	if err != nil {
		return nil, err
	}
	c.Set(key, v, ttl)
	return v, nil
}

// Len reports the number of live (possibly expired, not yet observed)
// entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// StartSweeper runs a periodic purge of expired entries until ctx is
// cancelled, bounding memory independent of read traffic.
func (c *Cache) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.sweep()
			}
		}
	}()
}

func (c *Cache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
			removed++
		}
	}
	if removed > 0 {
		c.log.Debug().Int("removed", removed).Msg("cache sweep removed expired entries")
	}
}
