// Package datafetcher holds the upstream gateways consumed by the warm
// scheduler. Nothing on the read path imports this package.
package datafetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"props_edge_backend/models"
	"props_edge_backend/services/oddsmath"
)

// StatsAPIClient fetches MLB data from the public StatsAPI.
type StatsAPIClient struct {
	base       string
	httpClient *http.Client
	log        *logrus.Logger
}

// NewStatsAPIClient creates an MLB StatsAPI gateway with a bounded request
// timeout so one stalled fetch cannot stall a whole warm shard.
func NewStatsAPIClient(base string, timeout time.Duration, log *logrus.Logger) *StatsAPIClient {
	return &StatsAPIClient{
		base:       base,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type scheduleResponse struct {
	Dates []struct {
		Games []struct {
			GamePk   int       `json:"gamePk"`
			GameDate time.Time `json:"gameDate"`
			Teams    struct {
				Away struct {
					Team struct {
						ID   int    `json:"id"`
						Name string `json:"name"`
					} `json:"team"`
				} `json:"away"`
				Home struct {
					Team struct {
						ID   int    `json:"id"`
						Name string `json:"name"`
					} `json:"team"`
				} `json:"home"`
			} `json:"teams"`
		} `json:"games"`
	} `json:"dates"`
}

type rosterResponse struct {
	Roster []struct {
		Person struct {
			ID       int    `json:"id"`
			FullName string `json:"fullName"`
		} `json:"person"`
		Position struct {
			Abbreviation string `json:"abbreviation"`
		} `json:"position"`
	} `json:"roster"`
}

type gameLogResponse struct {
	Stats []struct {
		Splits []struct {
			Stat map[string]json.Number `json:"stat"`
		} `json:"splits"`
	} `json:"stats"`
}

type seasonStatsResponse struct {
	Stats []struct {
		Splits []struct {
			Stat struct {
				GamesPlayed int         `json:"gamesPlayed"`
				Hits        int         `json:"hits"`
				TotalBases  json.Number `json:"totalBases"`
			} `json:"stat"`
		} `json:"splits"`
	} `json:"stats"`
}

func (c *StatsAPIClient) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	u := c.base + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %v: %w", path, err, models.ErrUpstreamFailure)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: status %d (%s): %w", path, resp.StatusCode, string(body), models.ErrUpstreamFailure)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode: %v: %w", path, err, models.ErrUpstreamFailure)
	}
	return nil
}

// FetchSchedule returns the games scheduled for a date (YYYY-MM-DD).
func (c *StatsAPIClient) FetchSchedule(ctx context.Context, date string) ([]models.Game, error) {
	params := url.Values{"sportId": {"1"}, "date": {date}}
	var resp scheduleResponse
	if err := c.getJSON(ctx, "/schedule", params, &resp); err != nil {
		return nil, err
	}
	var games []models.Game
	for _, d := range resp.Dates {
		for _, g := range d.Games {
			games = append(games, models.Game{
				GameID: strconv.Itoa(g.GamePk),
				Away:   g.Teams.Away.Team.Name,
				Home:   g.Teams.Home.Team.Name,
				Start:  g.GameDate,
			})
		}
	}
	return games, nil
}

// FetchActivePool returns the hitters on the rosters of every team playing
// on the given date. Pitchers are excluded; no batter-prop market prices
// them.
func (c *StatsAPIClient) FetchActivePool(ctx context.Context, date string) ([]models.Player, error) {
	params := url.Values{"sportId": {"1"}, "date": {date}}
	var sched scheduleResponse
	if err := c.getJSON(ctx, "/schedule", params, &sched); err != nil {
		return nil, err
	}

	teamNames := map[int]string{}
	var teamIDs []int
	for _, d := range sched.Dates {
		for _, g := range d.Games {
			for _, t := range []struct {
				ID   int
				Name string
			}{
				{g.Teams.Away.Team.ID, g.Teams.Away.Team.Name},
				{g.Teams.Home.Team.ID, g.Teams.Home.Team.Name},
			} {
				if _, seen := teamNames[t.ID]; !seen {
					teamNames[t.ID] = t.Name
					teamIDs = append(teamIDs, t.ID)
				}
			}
		}
	}

	var pool []models.Player
	for _, teamID := range teamIDs {
		var roster rosterResponse
		err := c.getJSON(ctx, fmt.Sprintf("/teams/%d/roster", teamID), nil, &roster)
		if err != nil {
			// One team's roster failing should not empty the pool.
			c.log.WithError(err).WithField("team_id", teamID).Warn("roster fetch failed")
			continue
		}
		for _, entry := range roster.Roster {
			if entry.Position.Abbreviation == "P" {
				continue
			}
			pool = append(pool, models.Player{
				ID:   strconv.Itoa(entry.Person.ID),
				Name: entry.Person.FullName,
				Team: teamNames[teamID],
			})
		}
	}
	return pool, nil
}

// FetchLastN returns a player's boolean trend series over their most recent
// n games, oldest to newest, for every MLB prop.
func (c *StatsAPIClient) FetchLastN(ctx context.Context, playerID, season string, n int) (models.LastNTrends, error) {
	params := url.Values{"stats": {"gameLog"}, "group": {"hitting"}, "season": {season}}
	var resp gameLogResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/people/%s/stats", playerID), params, &resp); err != nil {
		return models.LastNTrends{}, err
	}

	trends := models.LastNTrends{Series: map[models.PropCode][]bool{}}
	if len(resp.Stats) == 0 {
		return trends, nil
	}
	splits := resp.Stats[0].Splits
	if len(splits) > n {
		splits = splits[:n]
	}
	// gameLog splits arrive newest first; the series is stored oldest first.
	for i := len(splits) - 1; i >= 0; i-- {
		stat := splits[i].Stat
		hits := numField(stat, "hits")
		tb := numField(stat, "totalBases")
		trends.Series[models.PropHits05] = append(trends.Series[models.PropHits05], hits >= 1)
		trends.Series[models.PropTB15] = append(trends.Series[models.PropTB15], tb >= 2)
	}
	trends.N = len(splits)
	return trends, nil
}

// FetchSeasonAggregate returns a player's season-level baseline rate per
// prop. Season totals only carry per-game averages, so the rate is the
// average divided by the required count, clamped to [0,1].
func (c *StatsAPIClient) FetchSeasonAggregate(ctx context.Context, playerID, season string) (models.SeasonAggregate, error) {
	params := url.Values{"stats": {"season"}, "group": {"hitting"}, "season": {season}}
	var resp seasonStatsResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/people/%s/stats", playerID), params, &resp); err != nil {
		return models.SeasonAggregate{}, err
	}

	agg := models.SeasonAggregate{Rates: map[models.PropCode]float64{}}
	if len(resp.Stats) == 0 || len(resp.Stats[0].Splits) == 0 {
		return agg, nil
	}
	stat := resp.Stats[0].Splits[0].Stat
	if stat.GamesPlayed == 0 {
		return agg, nil
	}
	agg.Games = stat.GamesPlayed
	games := float64(stat.GamesPlayed)
	tb, _ := stat.TotalBases.Float64()
	agg.Rates[models.PropHits05] = oddsmath.Clamp01(float64(stat.Hits) / games)
	agg.Rates[models.PropTB15] = oddsmath.Clamp01(tb / games / requiredCount(models.PropTB15))
	return agg, nil
}

// requiredCount is the integer count a stat must reach to clear the prop's
// Over line: ceil(line).
func requiredCount(code models.PropCode) float64 {
	if def, ok := models.PropFor(models.LeagueMLB, code); ok {
		return def.Line.Ceil().InexactFloat64()
	}
	if def, ok := models.PropFor(models.LeagueNFL, code); ok {
		return def.Line.Ceil().InexactFloat64()
	}
	return 1
}

func numField(stat map[string]json.Number, key string) float64 {
	v, ok := stat[key]
	if !ok {
		return 0
	}
	f, err := v.Float64()
	if err != nil {
		return 0
	}
	return f
}
