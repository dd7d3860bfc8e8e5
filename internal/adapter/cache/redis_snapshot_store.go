package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/duality-2/SilkRoad/internal/usecase"
	"github.com/redis/go-redis/v9"
)

// RedisSnapshotStore keeps session snapshots as plain string values.
// A zero ttl stores them without expiry.
type RedisSnapshotStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSnapshotStore(rdb *redis.Client, ttl time.Duration) *RedisSnapshotStore {
	return &RedisSnapshotStore{rdb: rdb, ttl: ttl}
}

func (r *RedisSnapshotStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return b, true, nil
}

func (r *RedisSnapshotStore) Save(ctx context.Context, key string, blob []byte) error {
	if err := r.rdb.Set(ctx, key, blob, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

var _ usecase.SnapshotStore = (*RedisSnapshotStore)(nil)
