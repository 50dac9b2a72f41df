// Package scan implements the ranking scanner: a deterministic, read-only
// pass over the warmed cache that produces the ranked top-picks list. It
// holds no upstream gateway handle, so the read path cannot perform network
// I/O by construction.
package scan

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"props_edge_backend/cache"
	"props_edge_backend/models"
	"props_edge_backend/services/eval"
)

// Filters narrow and bound a scan.
type Filters struct {
	Limit    int     // max picks returned
	MinEdge  float64 // drop picks below this edge
	MinTrend float64 // drop picks below this trend probability
	Events   int     // consider candidates from at most this many events (0 = all)
}

// Scanner ranks prop candidates from cached snapshots only.
type Scanner struct {
	store cache.Store
	th    eval.Thresholds
	loc   *time.Location
	log   *logrus.Logger

	now func() time.Time
}

// New creates a scanner over the given cache store.
func New(store cache.Store, th eval.Thresholds, loc *time.Location, log *logrus.Logger) *Scanner {
	return &Scanner{store: store, th: th, loc: loc, log: log, now: time.Now}
}

type candidateKey struct {
	name string
	prop models.PropCode
}

// Scan iterates the league's cached player pool cross-joined with its prop
// codes, evaluates each pair against the warmed odds board, filters, and
// ranks. Identical cache contents and filters yield identical ordered
// output, including tie-break order.
func (s *Scanner) Scan(ctx context.Context, league string, f Filters) ([]models.Pick, error) {
	date := cache.DateString(s.now(), s.loc)

	pool, err := cache.GetPlayers(ctx, s.store, league, date)
	if err != nil {
		return nil, fmt.Errorf("player pool: %w", err)
	}
	board, err := cache.GetOddsBoard(ctx, s.store, league, date)
	if err != nil {
		return nil, fmt.Errorf("odds board: %w", err)
	}

	// First candidate per (player, prop) wins; the board is round-robin
	// merged in event order, so that is the nearest event's quote.
	quotes := make(map[candidateKey]models.OddsCandidate, len(board.Candidates))
	for _, c := range board.Candidates {
		if f.Events > 0 && c.Event >= f.Events {
			continue
		}
		key := candidateKey{name: models.NormalizeName(c.PlayerName), prop: c.Prop}
		if _, ok := quotes[key]; !ok {
			quotes[key] = c
		}
	}

	players := append([]models.Player(nil), pool.Players...)
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })

	var picks []models.Pick
	for _, player := range players {
		normName := models.NormalizeName(player.Name)
		for _, def := range models.PropsFor(league) {
			cand, ok := quotes[candidateKey{name: normName, prop: def.Code}]
			if !ok {
				continue // no price, nothing to rank
			}
			res, err := s.evaluatePlayer(ctx, league, date, player.ID, def, &cand.American)
			if err != nil {
				continue // required trend data unresolved
			}
			if res.Edge == nil || *res.Edge < f.MinEdge || res.PTrend < f.MinTrend {
				continue
			}
			picks = append(picks, models.Pick{
				PlayerID:      player.ID,
				PlayerName:    player.Name,
				Prop:          def.Code,
				Line:          cand.Line,
				PTrend:        res.PTrend,
				BreakEvenProb: res.BreakEvenProb,
				Edge:          res.Edge,
				Tag:           res.Tag,
				American:      cand.American,
				Spark:         res.Spark,
			})
		}
	}

	// Edge descending, then trend descending, then player id and prop
	// ascending. A total order: required for byte-identical reruns.
	sort.Slice(picks, func(i, j int) bool {
		if *picks[i].Edge != *picks[j].Edge {
			return *picks[i].Edge > *picks[j].Edge
		}
		if picks[i].PTrend != picks[j].PTrend {
			return picks[i].PTrend > picks[j].PTrend
		}
		if picks[i].PlayerID != picks[j].PlayerID {
			return picks[i].PlayerID < picks[j].PlayerID
		}
		return picks[i].Prop < picks[j].Prop
	})

	if f.Limit > 0 && len(picks) > f.Limit {
		picks = picks[:f.Limit]
	}
	return picks, nil
}

// EvaluateOne resolves a player against the cached pool and evaluates a
// single prop. When american is nil the warmed odds board supplies the
// price; a board miss leaves the result priceless (trend-only, Fade-biased)
// rather than failing.
func (s *Scanner) EvaluateOne(ctx context.Context, league string, code models.PropCode, playerQuery string, american *int) (models.Player, models.EvaluationResult, error) {
	def, ok := models.PropFor(league, code)
	if !ok {
		return models.Player{}, models.EvaluationResult{}, fmt.Errorf("unknown prop %s for %s", code, league)
	}
	date := cache.DateString(s.now(), s.loc)

	pool, err := cache.GetPlayers(ctx, s.store, league, date)
	if err != nil {
		return models.Player{}, models.EvaluationResult{}, fmt.Errorf("player pool: %w", err)
	}
	player, err := models.ResolvePlayer(pool.Players, playerQuery)
	if err != nil {
		return models.Player{}, models.EvaluationResult{}, err
	}

	if american == nil {
		if cand, err := s.quoteFor(ctx, league, date, player.Name, code); err == nil {
			american = &cand.American
		}
	}

	res, err := s.evaluatePlayer(ctx, league, date, player.ID, def, american)
	if err != nil && !errors.Is(err, models.ErrDataUnavailable) {
		return player, res, err
	}
	// A data-unavailable evaluation still carries a usable degraded result.
	return player, res, nil
}

// quoteFor looks up a single player's quote on the warmed board.
func (s *Scanner) quoteFor(ctx context.Context, league, date, playerName string, code models.PropCode) (models.OddsCandidate, error) {
	board, err := cache.GetOddsBoard(ctx, s.store, league, date)
	if err != nil {
		return models.OddsCandidate{}, fmt.Errorf("odds board: %w", err)
	}
	norm := models.NormalizeName(playerName)
	for _, c := range board.Candidates {
		if c.Prop == code && models.NormalizeName(c.PlayerName) == norm {
			return c, nil
		}
	}
	return models.OddsCandidate{}, fmt.Errorf("%s %s: %w", playerName, code, models.ErrPriceUnavailable)
}

// evaluatePlayer loads a player's cached trend data and runs the engine.
func (s *Scanner) evaluatePlayer(ctx context.Context, league, date, playerID string, def models.PropDefinition, american *int) (models.EvaluationResult, error) {
	var series []bool
	if lastN, err := cache.GetLastN(ctx, s.store, league, date, playerID); err == nil {
		series = lastN.Trends.Series[def.Code]
	}
	var seasonRate *float64
	if season, err := cache.GetSeasonAgg(ctx, s.store, league, date, playerID); err == nil {
		if rate, ok := season.Aggregate.Rates[def.Code]; ok && season.Aggregate.Games > 0 {
			seasonRate = &rate
		}
	}
	return eval.Evaluate(def, series, seasonRate, american, s.th)
}
