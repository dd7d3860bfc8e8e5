package cache

import (
	"context"
	"time"

	"github.com/duality-2/SilkRoad/internal/usecase"
	"github.com/redis/go-redis/v9"
)

// RedisPaymentLock marks a session as having a payment in flight. The ttl
// bounds how long a crashed process can keep a session locked.
type RedisPaymentLock struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisPaymentLock(rdb *redis.Client, ttl time.Duration) *RedisPaymentLock {
	return &RedisPaymentLock{rdb: rdb, ttl: ttl}
}

func (l *RedisPaymentLock) TryLock(ctx context.Context, scope string) (bool, error) {
	return l.rdb.SetNX(ctx, lockKey(scope), "1", l.ttl).Result()
}

func (l *RedisPaymentLock) Unlock(ctx context.Context, scope string) error {
	return l.rdb.Del(ctx, lockKey(scope)).Err()
}

func lockKey(scope string) string {
	return "silkroad:payment:pending:" + scope
}

var _ usecase.PaymentLock = (*RedisPaymentLock)(nil)
