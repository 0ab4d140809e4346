package httpapi

import (
	"context"
	"time"

	"expense-tracker/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter throttles repeated login attempts per key.
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// RedisLimiter is a fixed-window LoginLimiter shared by every API instance.
type RedisLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

func NewRedisLimiter(rdb *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, limit: limit, window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return utils.AllowAttempt(ctx, l.rdb, key, l.limit, l.window)
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return utils.ResetAttempts(ctx, l.rdb, key)
}
