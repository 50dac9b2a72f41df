package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewRedisStore(client, log), mr
}

func TestRedisStoreSetGet(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Hour))
	got, ok := store.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)
}

func TestRedisStoreGetMiss(t *testing.T) {
	store, _ := newTestRedisStore(t)
	_, ok := store.Get(context.Background(), "absent")
	assert.False(t, ok)
}

func TestRedisStoreExpiry(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), OddsTTL))

	mr.FastForward(OddsTTL - time.Minute)
	_, ok := store.Get(ctx, "k")
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)
	_, ok = store.Get(ctx, "k")
	assert.False(t, ok)
}

func TestRedisStoreBackendErrorDegradesToMiss(t *testing.T) {
	store, mr := newTestRedisStore(t)
	mr.Close()

	_, ok := store.Get(context.Background(), "k")
	assert.False(t, ok)
}

func TestRedisStoreIncrSetsExpiryOnce(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	n, err := store.Incr(ctx, "budget:statsapi:2026-08-25", BudgetTTL)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.Incr(ctx, "budget:statsapi:2026-08-25", BudgetTTL)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	ttl := mr.TTL("budget:statsapi:2026-08-25")
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, BudgetTTL)
}
