package cache

import (
	"fmt"
	"time"
)

// Snapshot categories. One cache entry per (league, date, category), plus a
// player id suffix for the per-player categories.
const (
	CategorySchedule  = "schedule"
	CategorySeasonAgg = "season_agg"
	CategoryLastN     = "last_n"
	CategoryPlayers   = "players"
	CategoryOdds      = "odds"
)

// TTL constants. Slow categories outlive a failed deep warm so the next
// cycle still finds prior-day data; odds bridges the 17:10 -> 05:10 gap
// between light refreshes.
const (
	SlowTTL     = 48 * time.Hour
	ScheduleTTL = 26 * time.Hour
	OddsTTL     = 14 * time.Hour
	JobMarkTTL  = 48 * time.Hour
	BudgetTTL   = 26 * time.Hour
)

// Key builds a cache key: {league}:{date}:{category}[:{playerId}].
func Key(league, date, category string) string {
	return fmt.Sprintf("%s:%s:%s", league, date, category)
}

// PlayerKey builds a per-player cache key.
func PlayerKey(league, date, category, playerID string) string {
	return fmt.Sprintf("%s:%s:%s:%s", league, date, category, playerID)
}

// JobKey builds the idempotency-mark key for a scheduled run.
func JobKey(date, kind string) string {
	return fmt.Sprintf("jobs:%s:%s", date, kind)
}

// BudgetKey builds the daily upstream call-budget counter key.
func BudgetKey(provider, date string) string {
	return fmt.Sprintf("budget:%s:%s", provider, date)
}

// DateString formats t as the canonical YYYY-MM-DD date in loc. Every job
// and reader derives "today" through this so they agree on the active date
// regardless of host timezone.
func DateString(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}
