package datafetcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"props_edge_backend/cache"
)

func quietLog() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestCallBudgetAllowsUpToLimit(t *testing.T) {
	store := cache.NewMemoryStore()
	budget := NewCallBudget(store, 3, time.UTC, quietLog())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.True(t, budget.Allow(ctx, "statsapi"), "call %d within budget", i+1)
	}
	assert.False(t, budget.Allow(ctx, "statsapi"), "call over budget must be denied")
}

func TestCallBudgetPerProvider(t *testing.T) {
	store := cache.NewMemoryStore()
	budget := NewCallBudget(store, 1, time.UTC, quietLog())
	ctx := context.Background()

	assert.True(t, budget.Allow(ctx, "statsapi"))
	assert.False(t, budget.Allow(ctx, "statsapi"))
	assert.True(t, budget.Allow(ctx, "oddsapi"), "providers have independent budgets")
}

func TestCallBudgetDisabledWhenNonPositive(t *testing.T) {
	store := cache.NewMemoryStore()
	budget := NewCallBudget(store, 0, time.UTC, quietLog())
	ctx := context.Background()

	for i := 0; i < 500; i++ {
		assert.True(t, budget.Allow(ctx, "statsapi"))
	}
}

type brokenCounterStore struct {
	*cache.MemoryStore
}

func (b *brokenCounterStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	return 0, errors.New("counter backend down")
}

func TestCallBudgetFailsOpenOnCounterError(t *testing.T) {
	store := &brokenCounterStore{MemoryStore: cache.NewMemoryStore()}
	budget := NewCallBudget(store, 1, time.UTC, quietLog())

	// A broken counter must not block warming.
	assert.True(t, budget.Allow(context.Background(), "statsapi"))
	assert.True(t, budget.Allow(context.Background(), "statsapi"))
}
