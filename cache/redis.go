package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonwraymond/collabd/resilience"
)

// RedisCache is a Redis-backed Cache. Values are stored as-is with a per-key
// expiry set at write time, so entries vanish on their own without a sweeper.
//
// A circuit breaker sits in front of the client: once Redis has failed
// repeatedly, reads report misses and writes fail fast without dialing, so a
// dead cache does not tax every request with a connection timeout.
type RedisCache struct {
	client  *redis.Client
	breaker *resilience.Breaker
}

// NewRedisCache creates a RedisCache over an existing client. The caller
// owns the client's lifecycle.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		breaker: resilience.NewBreaker(resilience.BreakerConfig{}),
	}
}

// Get retrieves a cached value. A missing key, an expired key, and an
// unreachable server all return (nil, false).
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if !c.breaker.Allow() {
		return nil, false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		// An absent key is a healthy answer, not a backend failure.
		c.breaker.Record(nil)
		return nil, false
	}
	c.breaker.Record(err)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores a value with the given TTL, overwriting any existing entry.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if ttl <= 0 {
		return nil
	}
	if !c.breaker.Allow() {
		return resilience.ErrCircuitOpen
	}

	err := c.client.Set(ctx, key, value, ttl).Err()
	c.breaker.Record(err)
	return err
}

// Delete removes a cached value. Idempotent - no error on miss.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if !c.breaker.Allow() {
		return resilience.ErrCircuitOpen
	}

	err := c.client.Del(ctx, key).Err()
	if errors.Is(err, redis.Nil) {
		err = nil
	}
	c.breaker.Record(err)
	return err
}

// Ensure RedisCache implements Cache
var _ Cache = (*RedisCache)(nil)
