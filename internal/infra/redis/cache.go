package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache implements app.Cache on Redis. Every key is stored under prefix.
type Cache struct {
	client *redis.Client
	prefix string
}

func NewCache(client *redis.Client, prefix string) *Cache {
	return &Cache{client: client, prefix: prefix}
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, c.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (c *Cache) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, c.key(key), value, ttl).Err()
}

// PutMulti writes all entries in one MULTI/EXEC so readers see all of them or none.
func (c *Cache) PutMulti(ctx context.Context, entries map[string]string, ttl time.Duration) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, value := range entries {
			pipe.Set(ctx, c.key(key), value, ttl)
		}
		return nil
	})
	return err
}

func (c *Cache) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = c.key(key)
	}
	return c.client.Del(ctx, prefixed...).Err()
}

func (c *Cache) PutIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, c.key(key), value, ttl).Result()
}

// Incr starts the expiry only when the counter is created, giving a fixed window. The
// counter is created with its TTL in the same transaction as the increment, so it can
// never exist without an expiry.
func (c *Cache) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	k := c.key(key)
	var incr *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if ttl > 0 {
			pipe.SetNX(ctx, k, 0, ttl)
		}
		incr = pipe.Incr(ctx, k)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (c *Cache) key(key string) string {
	return c.prefix + key
}
