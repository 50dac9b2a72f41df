package datafetcher

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"props_edge_backend/cache"
)

// CallBudget is a soft daily cap on upstream calls per provider. The
// counter lives in the cache backend so concurrent leaders share one
// budget; once exhausted, warm sub-jobs skip their fetches and log the
// skip.
type CallBudget struct {
	store cache.Store
	limit int
	loc   *time.Location
	log   *logrus.Logger
}

// NewCallBudget creates a budget with the given daily per-provider limit.
// A non-positive limit disables budgeting.
func NewCallBudget(store cache.Store, limit int, loc *time.Location, log *logrus.Logger) *CallBudget {
	return &CallBudget{store: store, limit: limit, loc: loc, log: log}
}

// Allow consumes one call from the provider's daily budget and reports
// whether the call may proceed. Counter errors fail open: a broken counter
// should not block warming.
func (b *CallBudget) Allow(ctx context.Context, provider string) bool {
	if b.limit <= 0 {
		return true
	}
	date := cache.DateString(time.Now(), b.loc)
	n, err := b.store.Incr(ctx, cache.BudgetKey(provider, date), cache.BudgetTTL)
	if err != nil {
		b.log.WithError(err).WithField("provider", provider).Warn("budget counter failed, allowing call")
		return true
	}
	if n > int64(b.limit) {
		b.log.WithFields(logrus.Fields{"provider": provider, "calls": n, "limit": b.limit}).
			Warn("daily call budget exhausted, skipping fetch")
		return false
	}
	return true
}
