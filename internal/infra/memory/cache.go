package memory

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// Cache is an in-process implementation of app.Cache. A ttl of zero never expires.
type Cache struct {
	clock func() time.Time

	mu      sync.Mutex
	entries map[string]cachedValue
}

type cachedValue struct {
	value     string
	expiresAt time.Time
}

func (v cachedValue) live(now time.Time) bool {
	return v.expiresAt.IsZero() || v.expiresAt.After(now)
}

func NewCache() *Cache {
	return NewCacheWithClock(time.Now)
}

// NewCacheWithClock is test-only for deterministic expiry.
func NewCacheWithClock(clock func() time.Time) *Cache {
	return &Cache{clock: clock, entries: make(map[string]cachedValue)}
}

func (c *Cache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.lookupLocked(key)
	return entry.value, ok, nil
}

func (c *Cache) Put(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = c.entryLocked(value, ttl)
	return nil
}

func (c *Cache) PutMulti(_ context.Context, entries map[string]string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, value := range entries {
		c.entries[key] = c.entryLocked(value, ttl)
	}
	return nil
}

func (c *Cache) Remove(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}

func (c *Cache) PutIfAbsent(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.lookupLocked(key); ok {
		return false, nil
	}
	c.entries[key] = c.entryLocked(value, ttl)
	return true, nil
}

func (c *Cache) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.lookupLocked(key)
	if !ok {
		c.entries[key] = c.entryLocked("1", ttl)
		return 1, nil
	}
	n, err := strconv.ParseInt(entry.value, 10, 64)
	if err != nil {
		return 0, err
	}
	n++
	entry.value = strconv.FormatInt(n, 10)
	c.entries[key] = entry
	return n, nil
}

func (c *Cache) lookupLocked(key string) (cachedValue, bool) {
	entry, ok := c.entries[key]
	if !ok {
		return cachedValue{}, false
	}
	if !entry.live(c.clock()) {
		delete(c.entries, key)
		return cachedValue{}, false
	}
	return entry, true
}

func (c *Cache) entryLocked(value string, ttl time.Duration) cachedValue {
	entry := cachedValue{value: value}
	if ttl > 0 {
		entry.expiresAt = c.clock().Add(ttl)
	}
	return entry
}
