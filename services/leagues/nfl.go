package leagues

import (
	"context"

	"props_edge_backend/models"
	"props_edge_backend/services/datafetcher"
)

// NFL is the NFL league module: a local weekly-gamelog CSV for player data,
// The Odds API for prices. The CSV has no schedule-for-date notion, so the
// schedule snapshot warms empty.
type NFL struct {
	csv    *datafetcher.NFLCSVStore
	odds   *datafetcher.OddsAPIClient
	budget *datafetcher.CallBudget

	maxEvents   int
	perEventCap int
}

// NewNFL creates the NFL module.
func NewNFL(csv *datafetcher.NFLCSVStore, odds *datafetcher.OddsAPIClient, budget *datafetcher.CallBudget, maxEvents, perEventCap int) *NFL {
	return &NFL{
		csv:         csv,
		odds:        odds,
		budget:      budget,
		maxEvents:   maxEvents,
		perEventCap: perEventCap,
	}
}

func (n *NFL) Code() string                   { return models.LeagueNFL }
func (n *NFL) SportKey() string               { return "americanfootball_nfl" }
func (n *NFL) Props() []models.PropDefinition { return models.PropsFor(models.LeagueNFL) }
func (n *NFL) TrendWindow() int               { return models.TrendWindow(models.LeagueNFL) }

func (n *NFL) FetchPool(ctx context.Context, _ string) ([]models.Player, error) {
	return n.csv.Players()
}

func (n *NFL) FetchSchedule(ctx context.Context, _ string) ([]models.Game, error) {
	return nil, nil
}

func (n *NFL) FetchSeasonAggregate(ctx context.Context, playerID string) (models.SeasonAggregate, error) {
	return n.csv.SeasonAggregate(playerID)
}

func (n *NFL) FetchLastN(ctx context.Context, playerID string) (models.LastNTrends, error) {
	return n.csv.LastN(playerID, n.TrendWindow())
}

func (n *NFL) FetchOddsBoard(ctx context.Context) ([]models.OddsCandidate, error) {
	if !n.budget.Allow(ctx, "oddsapi") {
		return nil, budgetExhausted("oddsapi")
	}
	return n.odds.FetchBoard(ctx, n.SportKey(), n.Props(), n.maxEvents, n.perEventCap)
}
