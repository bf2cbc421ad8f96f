package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// WindowLimiter is a fixed-window counter over redis. The first hit in a
// window sets the key's TTL; once the count passes the limit, callers are
// told how long until the window resets.
type WindowLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func NewWindowLimiter(client *redis.Client, limit int, window time.Duration) *WindowLimiter {
	return &WindowLimiter{
		client: client,
		limit:  int64(limit),
		window: window,
	}
}

func (l *WindowLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	redisKey := fmt.Sprintf("ratelimit:%s", key)

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, 0, fmt.Errorf("incr %s: %w", redisKey, err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return false, 0, fmt.Errorf("expire %s: %w", redisKey, err)
		}
	}

	if count > l.limit {
		retryAfter, err := l.client.TTL(ctx, redisKey).Result()
		if err != nil || retryAfter < 0 {
			retryAfter = l.window
		}
		return false, retryAfter, nil
	}

	return true, 0, nil
}
