package datafetcher

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"props_edge_backend/models"
	"props_edge_backend/services/oddsmath"
)

// NFLCSVStore is the NFL stats gateway. It reads a local weekly gamelog CSV
// (date, player, team, opponent, rec, recYds, rush, rushYds, targets); an
// API-backed gateway slots into the same league module interface later.
type NFLCSVStore struct {
	path string
}

// NewNFLCSVStore creates a CSV-backed NFL gamelog store.
func NewNFLCSVStore(path string) *NFLCSVStore {
	return &NFLCSVStore{path: path}
}

type nflRow struct {
	Date    string
	Player  string
	Team    string
	Rec     int
	RushYds int
}

func (s *NFLCSVStore) load() ([]nflRow, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %v: %w", s.path, err, models.ErrUpstreamFailure)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %v: %w", s.path, err, models.ErrUpstreamFailure)
	}
	if len(records) < 2 {
		return nil, nil
	}

	col := map[string]int{}
	for i, name := range records[0] {
		col[strings.TrimSpace(name)] = i
	}
	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var rows []nflRow
	for _, rec := range records[1:] {
		rows = append(rows, nflRow{
			Date:    field(rec, "date"),
			Player:  field(rec, "player"),
			Team:    field(rec, "team"),
			Rec:     atoiOrZero(field(rec, "rec")),
			RushYds: atoiOrZero(field(rec, "rushYds")),
		})
	}
	return rows, nil
}

// Players returns the distinct players in the gamelog, id'd by slug.
func (s *NFLCSVStore) Players() ([]models.Player, error) {
	rows, err := s.load()
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var pool []models.Player
	for _, r := range rows {
		if r.Player == "" {
			continue
		}
		id := playerSlug(r.Player)
		if seen[id] {
			continue
		}
		seen[id] = true
		pool = append(pool, models.Player{ID: id, Name: r.Player, Team: r.Team})
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })
	return pool, nil
}

// LastN returns a player's trend series over their most recent n weeks,
// oldest to newest.
func (s *NFLCSVStore) LastN(playerID string, n int) (models.LastNTrends, error) {
	rows, err := s.playerRows(playerID)
	if err != nil {
		return models.LastNTrends{}, err
	}
	if len(rows) > n {
		rows = rows[len(rows)-n:]
	}
	trends := models.LastNTrends{N: len(rows), Series: map[models.PropCode][]bool{}}
	for _, r := range rows {
		trends.Series[models.PropRec35] = append(trends.Series[models.PropRec35], r.Rec >= 4)
		trends.Series[models.PropRushYds49] = append(trends.Series[models.PropRushYds49], r.RushYds >= 50)
	}
	return trends, nil
}

// SeasonAggregate returns a player's full-gamelog hit rate per prop.
func (s *NFLCSVStore) SeasonAggregate(playerID string) (models.SeasonAggregate, error) {
	rows, err := s.playerRows(playerID)
	if err != nil {
		return models.SeasonAggregate{}, err
	}
	agg := models.SeasonAggregate{Games: len(rows), Rates: map[models.PropCode]float64{}}
	if len(rows) == 0 {
		return agg, nil
	}
	recHits, rushHits := 0, 0
	for _, r := range rows {
		if r.Rec >= 4 {
			recHits++
		}
		if r.RushYds >= 50 {
			rushHits++
		}
	}
	games := float64(len(rows))
	agg.Rates[models.PropRec35] = oddsmath.Clamp01(float64(recHits) / games)
	agg.Rates[models.PropRushYds49] = oddsmath.Clamp01(float64(rushHits) / games)
	return agg, nil
}

func (s *NFLCSVStore) playerRows(playerID string) ([]nflRow, error) {
	rows, err := s.load()
	if err != nil {
		return nil, err
	}
	var out []nflRow
	for _, r := range rows {
		if playerSlug(r.Player) == playerID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func playerSlug(name string) string {
	return strings.ReplaceAll(models.NormalizeName(name), " ", "-")
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
