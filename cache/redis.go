package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisStore is the production Store backend. Backend errors on the read
// path degrade to a miss so readers never block on a broken cache.
type RedisStore struct {
	client *redis.Client
	log    *logrus.Logger
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client *redis.Client, log *logrus.Logger) *RedisStore {
	return &RedisStore{client: client, log: log}
}

// Get returns the stored value, or (nil, false) on miss, expiry, or backend
// error.
func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		r.log.WithError(err).WithField("key", key).Warn("redis get failed, treating as miss")
		return nil, false
	}
	return data, true
}

// Set stores value under key with the given TTL.
func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Incr increments the counter under key, setting the TTL on first
// increment.
func (r *RedisStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := r.client.Expire(ctx, key, ttl).Err(); err != nil {
			r.log.WithError(err).WithField("key", key).Warn("failed to set counter expiry")
		}
	}
	return n, nil
}
