package memory

import (
	"context"
	"testing"
	"time"
)

func TestCacheExpiresEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := NewCacheWithClock(func() time.Time { return now })

	if err := cache.Put(ctx, "q_history_beginner", "[]", time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, ok, _ := cache.Get(ctx, "q_history_beginner"); !ok {
		t.Fatalf("expected hit before expiry")
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := cache.Get(ctx, "q_history_beginner"); ok {
		t.Fatalf("expected miss after expiry")
	}
}

func TestCachePutIfAbsentActsAsTryLock(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := NewCacheWithClock(func() time.Time { return now })

	ok, err := cache.PutIfAbsent(ctx, "cache_reload_lock", "loading", time.Minute)
	if err != nil || !ok {
		t.Fatalf("expected first acquire, got ok=%v err=%v", ok, err)
	}
	if ok, _ := cache.PutIfAbsent(ctx, "cache_reload_lock", "loading", time.Minute); ok {
		t.Fatalf("expected second acquire to fail while held")
	}

	now = now.Add(61 * time.Second)
	if ok, _ := cache.PutIfAbsent(ctx, "cache_reload_lock", "loading", time.Minute); !ok {
		t.Fatalf("expected lock to be free after its ttl")
	}
}

func TestCacheIncrKeepsWindowFromFirstHit(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := NewCacheWithClock(func() time.Time { return now })

	for want := int64(1); want <= 3; want++ {
		got, err := cache.Incr(ctx, "rate_u1", time.Minute)
		if err != nil {
			t.Fatalf("incr: %v", err)
		}
		if got != want {
			t.Fatalf("expected %d, got %d", want, got)
		}
		now = now.Add(15 * time.Second)
	}

	now = now.Add(30 * time.Second)
	got, _ := cache.Incr(ctx, "rate_u1", time.Minute)
	if got != 1 {
		t.Fatalf("expected counter reset after window, got %d", got)
	}
}
