package datafetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"props_edge_backend/models"
)

// marketFor maps prop codes to The Odds API player-prop market keys.
var marketFor = map[models.PropCode]string{
	models.PropHits05:    "batter_hits",
	models.PropTB15:      "batter_total_bases",
	models.PropRec35:     "player_receptions",
	models.PropRushYds49: "player_rush_yds",
}

// OddsAPIClient fetches FanDuel player-prop prices from The Odds API v4.
type OddsAPIClient struct {
	base       string
	apiKey     string
	maxAbs     int
	httpClient *http.Client
	log        *logrus.Logger
}

// NewOddsAPIClient creates an odds gateway. maxAbs caps the absolute
// American price accepted onto the board; extreme quotes carry no edge
// signal worth ranking.
func NewOddsAPIClient(base, apiKey string, maxAbs int, timeout time.Duration, log *logrus.Logger) *OddsAPIClient {
	return &OddsAPIClient{
		base:       base,
		apiKey:     apiKey,
		maxAbs:     maxAbs,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type oddsEvent struct {
	ID           string `json:"id"`
	CommenceTime string `json:"commence_time"`
}

type eventOdds struct {
	Bookmakers []struct {
		Key     string `json:"key"`
		Markets []struct {
			Key      string `json:"key"`
			Outcomes []struct {
				Name        string   `json:"name"`
				Description string   `json:"description"`
				Point       *float64 `json:"point"`
				Price       float64  `json:"price"`
			} `json:"outcomes"`
		} `json:"markets"`
	} `json:"bookmakers"`
}

func (c *OddsAPIClient) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	if c.apiKey == "" {
		return fmt.Errorf("odds api key missing: %w", models.ErrUpstreamFailure)
	}
	params.Set("apiKey", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path+"?"+params.Encode(), nil)
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

// FetchBoard builds the odds board for a league: Over outcomes from
// FanDuel's player-prop markets across the nearest maxEvents events,
// merged round-robin so no single game dominates the top of the board.
func (c *OddsAPIClient) FetchBoard(ctx context.Context, sportKey string, props []models.PropDefinition, maxEvents, perEventCap int) ([]models.OddsCandidate, error) {
	var events []oddsEvent
	if err := c.getJSON(ctx, fmt.Sprintf("/%s/events", sportKey), url.Values{}, &events); err != nil {
		return nil, err
	}
	sort.Slice(events, func(i, j int) bool { return events[i].CommenceTime < events[j].CommenceTime })
	if len(events) > maxEvents {
		events = events[:maxEvents]
	}

	var marketKeys []string
	byMarket := map[string]models.PropDefinition{}
	for _, def := range props {
		key, ok := marketFor[def.Code]
		if !ok {
			continue
		}
		marketKeys = append(marketKeys, key)
		byMarket[key] = def
	}

	var perEvent [][]models.OddsCandidate
	for i, ev := range events {
		params := url.Values{
			"regions":    {"us"},
			"bookmakers": {"fanduel"},
			"markets":    {strings.Join(marketKeys, ",")},
			"oddsFormat": {"american"},
		}
		var odds eventOdds
		err := c.getJSON(ctx, fmt.Sprintf("/%s/events/%s/odds", sportKey, ev.ID), params, &odds)
		if err != nil {
			// One event's odds failing leaves the rest of the board intact.
			c.log.WithError(err).WithField("event_id", ev.ID).Warn("event odds fetch failed")
			continue
		}
		cands := c.extractOvers(odds, byMarket, i, perEventCap)
		if len(cands) > 0 {
			perEvent = append(perEvent, cands)
		}
	}

	return roundRobin(perEvent), nil
}

// extractOvers pulls FanDuel Over outcomes that match a prop's exact line.
func (c *OddsAPIClient) extractOvers(odds eventOdds, byMarket map[string]models.PropDefinition, eventIdx, limit int) []models.OddsCandidate {
	var out []models.OddsCandidate
	for _, bm := range odds.Bookmakers {
		if !strings.EqualFold(bm.Key, "fanduel") {
			continue
		}
		for _, m := range bm.Markets {
			def, ok := byMarket[m.Key]
			if !ok {
				continue
			}
			target := def.Line.InexactFloat64()
			for _, o := range m.Outcomes {
				if !strings.EqualFold(o.Name, "over") {
					continue
				}
				if o.Point == nil || math.Abs(*o.Point-target) > 1e-6 {
					continue
				}
				american := int(math.Round(o.Price))
				if american == 0 || abs(american) > c.maxAbs {
					continue
				}
				player := strings.TrimSpace(o.Description)
				if player == "" {
					continue
				}
				out = append(out, models.OddsCandidate{
					PlayerName: player,
					Prop:       def.Code,
					Line:       *o.Point,
					American:   american,
					Event:      eventIdx,
				})
				if len(out) >= limit {
					return out
				}
			}
		}
	}
	return out
}

// roundRobin interleaves per-event candidate lists.
func roundRobin(lists [][]models.OddsCandidate) []models.OddsCandidate {
	var merged []models.OddsCandidate
	for i := 0; ; i++ {
		progressed := false
		for _, lst := range lists {
			if i < len(lst) {
				merged = append(merged, lst[i])
				progressed = true
			}
		}
		if !progressed {
			return merged
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
