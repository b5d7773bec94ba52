package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/aaplamahesh/outreach/internal/database"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Limiter counts hits in a fixed window.
type Limiter interface {
	// Hit records one hit for key and returns the count in the current
	// window and the time until the window resets.
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// RedisLimiter keeps counters in Redis so limits hold across instances.
type RedisLimiter struct {
	rdb *database.Redis
}

// NewRedisLimiter creates a Redis-backed limiter
func NewRedisLimiter(rdb *database.Redis) *RedisLimiter {
	return &RedisLimiter{rdb: rdb}
}

func (l *RedisLimiter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	key = "ratelimit:" + key

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	remaining := ttl.Val()
	if remaining < 0 {
		// New key, or one that lost its expiry.
		if err := l.rdb.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, err
		}
		remaining = window
	}
	return incr.Val(), remaining, nil
}

// MemoryLimiter keeps counters in process memory. Limits are per instance.
type MemoryLimiter struct {
	counters *cache.Cache
}

// NewMemoryLimiter creates an in-process limiter
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{counters: cache.New(time.Minute, 5*time.Minute)}
}

func (l *MemoryLimiter) Hit(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	for range 2 {
		if err := l.counters.Add(key, int64(1), window); err == nil {
			return 1, window, nil
		}

		count, err := l.counters.IncrementInt64(key, 1)
		if err != nil {
			// Expired between Add and Increment; start a new window.
			continue
		}

		_, expires, ok := l.counters.GetWithExpiration(key)
		if !ok {
			continue
		}
		return count, time.Until(expires), nil
	}
	return 0, 0, errors.New("rate limit counter unavailable")
}
