package leagues

import (
	"context"
	"fmt"

	"props_edge_backend/models"
	"props_edge_backend/services/datafetcher"
)

// MLB is the MLB league module: StatsAPI for player data, The Odds API for
// prices.
type MLB struct {
	stats  *datafetcher.StatsAPIClient
	odds   *datafetcher.OddsAPIClient
	budget *datafetcher.CallBudget
	season string

	maxEvents   int
	perEventCap int
}

// NewMLB creates the MLB module.
func NewMLB(stats *datafetcher.StatsAPIClient, odds *datafetcher.OddsAPIClient, budget *datafetcher.CallBudget, season string, maxEvents, perEventCap int) *MLB {
	return &MLB{
		stats:       stats,
		odds:        odds,
		budget:      budget,
		season:      season,
		maxEvents:   maxEvents,
		perEventCap: perEventCap,
	}
}

func (m *MLB) Code() string                   { return models.LeagueMLB }
func (m *MLB) SportKey() string               { return "baseball_mlb" }
func (m *MLB) Props() []models.PropDefinition { return models.PropsFor(models.LeagueMLB) }
func (m *MLB) TrendWindow() int               { return models.TrendWindow(models.LeagueMLB) }

func (m *MLB) FetchPool(ctx context.Context, date string) ([]models.Player, error) {
	if !m.budget.Allow(ctx, "statsapi") {
		return nil, budgetExhausted("statsapi")
	}
	return m.stats.FetchActivePool(ctx, date)
}

func (m *MLB) FetchSchedule(ctx context.Context, date string) ([]models.Game, error) {
	if !m.budget.Allow(ctx, "statsapi") {
		return nil, budgetExhausted("statsapi")
	}
	return m.stats.FetchSchedule(ctx, date)
}

func (m *MLB) FetchSeasonAggregate(ctx context.Context, playerID string) (models.SeasonAggregate, error) {
	if !m.budget.Allow(ctx, "statsapi") {
		return models.SeasonAggregate{}, budgetExhausted("statsapi")
	}
	return m.stats.FetchSeasonAggregate(ctx, playerID, m.season)
}

func (m *MLB) FetchLastN(ctx context.Context, playerID string) (models.LastNTrends, error) {
	if !m.budget.Allow(ctx, "statsapi") {
		return models.LastNTrends{}, budgetExhausted("statsapi")
	}
	return m.stats.FetchLastN(ctx, playerID, m.season, m.TrendWindow())
}

func (m *MLB) FetchOddsBoard(ctx context.Context) ([]models.OddsCandidate, error) {
	if !m.budget.Allow(ctx, "oddsapi") {
		return nil, budgetExhausted("oddsapi")
	}
	return m.odds.FetchBoard(ctx, m.SportKey(), m.Props(), m.maxEvents, m.perEventCap)
}

func budgetExhausted(provider string) error {
	return fmt.Errorf("%s call budget exhausted: %w", provider, models.ErrUpstreamFailure)
}
