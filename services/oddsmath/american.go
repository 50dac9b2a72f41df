// Package oddsmath converts American odds prices into the probabilities the
// evaluation pipeline works in.
package oddsmath

import (
	"fmt"
	"math"
)

// BreakEvenProbability returns the implied win probability required for a
// bet at the given American price to break even (vig not removed).
// -150 → 0.60, +120 → 100/220.
func BreakEvenProbability(american int) (float64, error) {
	if american == 0 {
		return 0, fmt.Errorf("invalid American odds: cannot be 0")
	}
	if american > 0 {
		return 100.0 / (float64(american) + 100.0), nil
	}
	abs := float64(-american)
	return abs / (abs + 100.0), nil
}

// BreakEvenProbabilityPtr is the nullable form used on the evaluation path:
// nil price in, nil probability out.
func BreakEvenProbabilityPtr(american *int) *float64 {
	if american == nil {
		return nil
	}
	p, err := BreakEvenProbability(*american)
	if err != nil {
		return nil
	}
	p = Clamp01(p)
	return &p
}

// AmericanToDecimal converts American odds to decimal odds.
// +150 → 2.50, -150 → 1.67.
func AmericanToDecimal(american int) (float64, error) {
	if american == 0 {
		return 0, fmt.Errorf("invalid American odds: cannot be 0")
	}
	if american > 0 {
		return (float64(american) / 100.0) + 1.0, nil
	}
	return (100.0 / float64(-american)) + 1.0, nil
}

// DecimalToAmerican converts decimal odds to American odds.
// 2.50 → +150, 1.67 → -150.
func DecimalToAmerican(decimal float64) (int, error) {
	if decimal < 1.0 {
		return 0, fmt.Errorf("invalid decimal odds: must be >= 1.0")
	}
	if decimal >= 2.0 {
		return int(math.Round((decimal - 1.0) * 100.0)), nil
	}
	return int(math.Round(-100.0 / (decimal - 1.0))), nil
}

// ExpectedValue returns the expected profit of a one-unit stake at the
// given American price when the outcome hits with probability p.
func ExpectedValue(p float64, american int) (float64, error) {
	dec, err := AmericanToDecimal(american)
	if err != nil {
		return 0, err
	}
	p = Clamp01(p)
	return p*(dec-1.0) - (1.0 - p), nil
}

// Edge returns pTrend - breakEven when both are defined, else nil.
func Edge(pTrend float64, breakEven *float64) *float64 {
	if breakEven == nil {
		return nil
	}
	e := pTrend - *breakEven
	return &e
}

// Clamp01 clamps p into [0, 1].
func Clamp01(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
