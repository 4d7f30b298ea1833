package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestCacheRoundTripAndExpiry(t *testing.T) {
	mr, cache := newTestCache(t)
	ctx := context.Background()

	if _, ok, err := cache.Get(ctx, "q_history_beginner"); err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	err := cache.PutMulti(ctx, map[string]string{
		"q_history_beginner": "[]",
		"a_history_beginner": "{}",
	}, time.Minute)
	if err != nil {
		t.Fatalf("put multi: %v", err)
	}
	if !mr.Exists("kentei:q_history_beginner") || !mr.Exists("kentei:a_history_beginner") {
		t.Fatalf("expected prefixed keys to be written")
	}
	value, ok, err := cache.Get(ctx, "a_history_beginner")
	if err != nil || !ok || value != "{}" {
		t.Fatalf("expected hit with {}, got %q ok=%v err=%v", value, ok, err)
	}

	mr.FastForward(2 * time.Minute)
	if _, ok, _ := cache.Get(ctx, "q_history_beginner"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestCachePutIfAbsentAndRemove(t *testing.T) {
	mr, cache := newTestCache(t)
	ctx := context.Background()

	ok, err := cache.PutIfAbsent(ctx, "cache_reload_lock", "loading", time.Minute)
	if err != nil || !ok {
		t.Fatalf("expected acquire, got ok=%v err=%v", ok, err)
	}
	if ok, _ := cache.PutIfAbsent(ctx, "cache_reload_lock", "loading", time.Minute); ok {
		t.Fatalf("expected second acquire to fail")
	}
	if err := cache.Remove(ctx, "cache_reload_lock"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if mr.Exists("kentei:cache_reload_lock") {
		t.Fatalf("expected lock key removed")
	}
}

func TestCacheIncrSetsWindowOnce(t *testing.T) {
	mr, cache := newTestCache(t)
	ctx := context.Background()

	for want := int64(1); want <= 2; want++ {
		got, err := cache.Incr(ctx, "rate_u1", time.Minute)
		if err != nil {
			t.Fatalf("incr: %v", err)
		}
		if got != want {
			t.Fatalf("expected %d, got %d", want, got)
		}
	}
	if ttl := mr.TTL("kentei:rate_u1"); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("expected ttl within window, got %s", ttl)
	}

	mr.FastForward(61 * time.Second)
	if got, _ := cache.Incr(ctx, "rate_u1", time.Minute); got != 1 {
		t.Fatalf("expected counter reset, got %d", got)
	}
}

func TestCacheIncrCounterNeverLacksExpiry(t *testing.T) {
	mr, cache := newTestCache(t)
	ctx := context.Background()

	if got, err := cache.Incr(ctx, "rate_u2", time.Minute); err != nil || got != 1 {
		t.Fatalf("first incr: got %d err %v", got, err)
	}
	if ttl := mr.TTL("kentei:rate_u2"); ttl != time.Minute {
		t.Fatalf("expected counter created with full window, got %s", ttl)
	}

	mr.FastForward(30 * time.Second)
	if got, _ := cache.Incr(ctx, "rate_u2", time.Minute); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if ttl := mr.TTL("kentei:rate_u2"); ttl != 30*time.Second {
		t.Fatalf("later hits must not extend the window, got %s", ttl)
	}
}

func newTestCache(t *testing.T) (*miniredis.Miniredis, *Cache) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewCache(client, "kentei:")
}
