package app

import (
	"context"
	"time"
)

const reloadLockKey = "cache_reload_lock"

// ReloadLock is a named try-lock stored in the cache. Its ttl releases it if the
// holder dies without calling Unlock.
type ReloadLock struct {
	cache Cache
	key   string
	ttl   time.Duration
}

func NewReloadLock(cache Cache, ttl time.Duration) *ReloadLock {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &ReloadLock{cache: cache, key: reloadLockKey, ttl: ttl}
}

// TryLock never blocks; it reports false when another holder has the lock.
func (l *ReloadLock) TryLock(ctx context.Context) (bool, error) {
	return l.cache.PutIfAbsent(ctx, l.key, "loading", l.ttl)
}

func (l *ReloadLock) Unlock(ctx context.Context) error {
	return l.cache.Remove(ctx, l.key)
}
