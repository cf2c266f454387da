package middleware

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter is a sliding-window limiter shared across API instances.
// A rule admits Burst requests per Burst/Rate seconds.
type RedisRateLimiter struct {
	rdb    redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisRateLimiter wraps an existing Redis client.
func NewRedisRateLimiter(rdb redis.UniversalClient, now func() time.Time) *RedisRateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RedisRateLimiter{rdb: rdb, prefix: "velox:ratelimit:", now: now}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string, rule RateLimitRule) (bool, time.Duration, error) {
	if rule.Rate <= 0 || rule.Burst <= 0 {
		return true, 0, nil
	}
	window := time.Duration(math.Ceil(float64(rule.Burst)/rule.Rate*1000.0)) * time.Millisecond
	redisKey := l.prefix + key

	now := l.now().UnixMilli()
	windowStart := now - window.Milliseconds()

	pipe := l.rdb.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart))
	countCmd := pipe.ZCard(ctx, redisKey)
	oldestCmd := pipe.ZRangeWithScores(ctx, redisKey, 0, 0)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return false, 0, fmt.Errorf("ratelimit pipeline: %w", err)
	}

	if countCmd.Val() >= int64(rule.Burst) {
		retryAfter := window
		if oldest := oldestCmd.Val(); len(oldest) > 0 {
			retryAfter = time.Duration(int64(oldest[0].Score)+window.Milliseconds()-now) * time.Millisecond
		}
		return false, retryAfter, nil
	}

	pipe = l.rdb.Pipeline()
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now), Member: uuid.NewString()})
	pipe.PExpire(ctx, redisKey, window*2)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("ratelimit record: %w", err)
	}
	return true, 0, nil
}

var _ Limiter = (*RedisRateLimiter)(nil)
