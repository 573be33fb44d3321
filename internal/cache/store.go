package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Slot result of reading one key; Found is false for missing or expired keys
type Slot struct {
	Value string
	Found bool
}

// Store the handful of Redis operations UserCache is built on
type Store interface {
	// Fetch reads keys in one round trip, one Slot per key in order
	Fetch(ctx context.Context, keys ...string) ([]Slot, error)
	Save(ctx context.Context, key, value string, ttl time.Duration) error
	// Bump increments a counter and (re)arms its expiry
	Bump(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Drop(ctx context.Context, keys ...string) error
}

// RedisStore Store on a go-redis client
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Fetch(ctx context.Context, keys ...string) ([]Slot, error) {
	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	slots := make([]Slot, len(vals))
	for i, v := range vals {
		if s, ok := v.(string); ok {
			slots[i] = Slot{Value: s, Found: true}
		}
	}
	return slots, nil
}

func (r *RedisStore) Save(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *RedisStore) Bump(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (r *RedisStore) Drop(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}
