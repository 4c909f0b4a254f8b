package health

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisChecker pings the identity cache backend. An unhealthy cache is
// reported as degraded, not unhealthy: the cache is disposable and requests
// still resolve against the durable store.
type RedisChecker struct {
	client *redis.Client
}

// NewRedisChecker creates a RedisChecker.
func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

// Name returns "redis".
func (c *RedisChecker) Name() string { return "redis" }

// Check pings the cache.
func (c *RedisChecker) Check(ctx context.Context) Result {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return Result{
			Status:    StatusDegraded,
			Message:   "cache unreachable",
			Error:     err,
			Timestamp: time.Now(),
		}
	}
	return Healthy("cache reachable")
}

// Ensure RedisChecker implements Checker
var _ Checker = (*RedisChecker)(nil)
