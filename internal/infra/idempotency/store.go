// Package idempotency remembers client-supplied Idempotency-Key values so a retried
// create request does not write a second order.
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const pending = "pending"

type Store interface {
	// Reserve claims key. It reports false when the key was already claimed.
	Reserve(ctx context.Context, key string) (bool, error)
	// Complete records the outcome for a reserved key.
	Complete(ctx context.Context, key, value string) error
	// Lookup returns the recorded outcome, "" while the first request is still running.
	Lookup(ctx context.Context, key string) (string, error)
	Release(ctx context.Context, key string) error
}

type RedisStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl, prefix: "orders:idempotency:"}
}

func (s *RedisStore) Reserve(ctx context.Context, key string) (bool, error) {
	return s.rdb.SetNX(ctx, s.prefix+key, pending, s.ttl).Result()
}

func (s *RedisStore) Complete(ctx context.Context, key, value string) error {
	return s.rdb.Set(ctx, s.prefix+key, value, s.ttl).Err()
}

func (s *RedisStore) Lookup(ctx context.Context, key string) (string, error) {
	v, err := s.rdb.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) || v == pending {
		return "", nil
	}
	return v, err
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.prefix+key).Err()
}

var _ Store = (*RedisStore)(nil)
