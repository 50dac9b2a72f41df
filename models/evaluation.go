package models

import "errors"

// Confidence tags, ordered weakest to strongest: Fade < Parlay leg < Straight.
const (
	TagStraight  = "Straight"
	TagParlayLeg = "Parlay leg"
	TagFade      = "Fade"
)

// EvaluationResult is the output of one prop evaluation. BreakEvenProb and
// Edge are nil when no price was available; Edge is defined iff both
// operands are.
type EvaluationResult struct {
	PTrend        float64  `json:"p_trend"`
	BreakEvenProb *float64 `json:"break_even_prob"`
	Edge          *float64 `json:"edge"`
	Tag           string   `json:"tag"`
	UsedLine      float64  `json:"used_line"`
	Spark         []bool   `json:"spark"`
	LowConfidence bool     `json:"low_confidence"`
}

// Pick is one row of the ranked top-picks output.
type Pick struct {
	PlayerID      string   `json:"player_id"`
	PlayerName    string   `json:"player_name"`
	Prop          PropCode `json:"prop"`
	Line          float64  `json:"line"`
	PTrend        float64  `json:"p_trend"`
	BreakEvenProb *float64 `json:"break_even_prob"`
	Edge          *float64 `json:"edge"`
	Tag           string   `json:"tag"`
	American      int      `json:"american"`
	Spark         []bool   `json:"spark"`
}

// Error taxonomy. Callers check with errors.Is; every degradation path maps
// to exactly one of these.
var (
	// ErrDataUnavailable: cache miss, expired entry, shape/version mismatch,
	// or a game log too short to evaluate.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrUpstreamFailure: a gateway call failed during a warm sub-job.
	ErrUpstreamFailure = errors.New("upstream failure")

	// ErrPriceUnavailable: no odds quote on the board for a (player, prop).
	ErrPriceUnavailable = errors.New("price unavailable")

	// ErrPlayerUnresolved: no match in the warmed player pool.
	ErrPlayerUnresolved = errors.New("player unresolved")
)
