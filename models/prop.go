package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// League codes supported by the prop catalog.
const (
	LeagueMLB = "mlb"
	LeagueNFL = "nfl"
)

// PropCode identifies a single prop SKU (league-scoped)
type PropCode string

const (
	PropHits05    PropCode = "HITS_0_5"      // MLB: 1+ hits
	PropTB15      PropCode = "TB_1_5"        // MLB: 2+ total bases
	PropRec35     PropCode = "REC_3_5"       // NFL: 4+ receptions
	PropRushYds49 PropCode = "RUSH_YDS_49_5" // NFL: 50+ rushing yards
)

// PropDefinition describes one supported prop: the league it belongs to,
// the Over line offered by the book, and the stat field it counts against.
type PropDefinition struct {
	League string          `json:"league"`
	Code   PropCode        `json:"code"`
	Line   decimal.Decimal `json:"line"`
	Stat   string          `json:"stat"`
}

var mlbProps = []PropDefinition{
	{League: LeagueMLB, Code: PropHits05, Line: decimal.NewFromFloat(0.5), Stat: "hits"},
	{League: LeagueMLB, Code: PropTB15, Line: decimal.NewFromFloat(1.5), Stat: "totalBases"},
}

var nflProps = []PropDefinition{
	{League: LeagueNFL, Code: PropRec35, Line: decimal.NewFromFloat(3.5), Stat: "receptions"},
	{League: LeagueNFL, Code: PropRushYds49, Line: decimal.NewFromFloat(49.5), Stat: "rushYds"},
}

// PropsFor returns the supported prop definitions for a league, in a fixed
// order. Unknown leagues get an empty catalog.
func PropsFor(league string) []PropDefinition {
	switch league {
	case LeagueMLB:
		return mlbProps
	case LeagueNFL:
		return nflProps
	}
	return nil
}

// PropFor returns the definition of one prop code within a league.
func PropFor(league string, code PropCode) (PropDefinition, bool) {
	for _, def := range PropsFor(league) {
		if def.Code == code {
			return def, true
		}
	}
	return PropDefinition{}, false
}

// TrendWindow returns the fixed trend window size for a league
// (last 10 games for MLB, last 5 for NFL).
func TrendWindow(league string) int {
	switch league {
	case LeagueMLB:
		return 10
	case LeagueNFL:
		return 5
	}
	return 10
}

// KnownLeague reports whether the league has a prop catalog.
func KnownLeague(league string) bool {
	return len(PropsFor(league)) > 0
}

// Player is one entry in a league's warmed player pool.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Team string `json:"team,omitempty"`
}

// Game is one entry in the warmed schedule.
type Game struct {
	GameID string    `json:"game_id"`
	Away   string    `json:"away"`
	Home   string    `json:"home"`
	Start  time.Time `json:"start,omitempty"`
}

// LastNTrends holds per-game boolean outcomes for a player's recent games,
// oldest to newest, one series per prop code.
type LastNTrends struct {
	N      int                 `json:"n"`
	Series map[PropCode][]bool `json:"series"`
}

// SeasonAggregate holds a player's season-level hit rate per prop code,
// used as the fallback baseline when the game log is short.
type SeasonAggregate struct {
	Games int                  `json:"games"`
	Rates map[PropCode]float64 `json:"rates"`
}

// OddsCandidate is one priced Over outcome from the warmed odds board.
// Event is the ordinal of the source event in commence-time order, so
// readers can bound how many events they consider.
type OddsCandidate struct {
	PlayerName string   `json:"player_name"`
	Prop       PropCode `json:"prop"`
	Line       float64  `json:"line"`
	American   int      `json:"american"`
	Event      int      `json:"event"`
}
