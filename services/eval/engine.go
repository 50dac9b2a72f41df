// Package eval implements the pure evaluation engine: cached trend data and
// an optional price in, a ranked-comparable result out. Nothing in this
// package performs I/O.
package eval

import (
	"props_edge_backend/models"
	"props_edge_backend/services/oddsmath"
)

// Thresholds are the tunable numeric knobs of the pipeline, externalized so
// tag classification never hides constants in comparison logic.
type Thresholds struct {
	StraightEdgeMin  float64 // minimum edge for a Straight tag
	StraightTrendMin float64 // minimum trend probability for a Straight tag
	ParlayEdgeMin    float64 // edge must exceed this for a Parlay leg tag
	TrendMinGames    int     // below this many games the season baseline blends in
}

// DefaultThresholds mirrors the production configuration defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		StraightEdgeMin:  0.08,
		StraightTrendMin: 0.60,
		ParlayEdgeMin:    0,
		TrendMinGames:    5,
	}
}

// Evaluate turns (prop, trend series, season baseline, price) into an
// EvaluationResult. The series is oldest-to-newest booleans for the trend
// window; seasonRate is nil when no season baseline is cached; american is
// nil when no price is available.
//
// With a full window the trend probability is the plain hit rate. With a
// short series and a season baseline the two blend linearly by n/minGames,
// and the result is marked reduced-confidence. With neither source the
// result degrades to a zero-trend Fade and ErrDataUnavailable is returned
// alongside it.
func Evaluate(def models.PropDefinition, series []bool, seasonRate *float64, american *int, th Thresholds) (models.EvaluationResult, error) {
	res := models.EvaluationResult{
		UsedLine: def.Line.InexactFloat64(),
		Spark:    series,
	}

	pTrend, lowConf, err := trendProbability(series, seasonRate, th.TrendMinGames)
	res.PTrend = oddsmath.Clamp01(pTrend)
	res.LowConfidence = lowConf

	res.BreakEvenProb = oddsmath.BreakEvenProbabilityPtr(american)
	if err == nil {
		res.Edge = oddsmath.Edge(res.PTrend, res.BreakEvenProb)
	}

	res.Tag = classify(res, lowConf, th)
	return res, err
}

func trendProbability(series []bool, seasonRate *float64, minGames int) (p float64, lowConf bool, err error) {
	n := len(series)
	hits := 0
	for _, hit := range series {
		if hit {
			hits++
		}
	}

	switch {
	case n >= minGames:
		return float64(hits) / float64(n), false, nil
	case n > 0 && seasonRate != nil:
		// Linear blend: the shorter the log, the more the season baseline
		// carries. Continuous at both ends of the window.
		w := float64(n) / float64(minGames)
		logRate := float64(hits) / float64(n)
		return w*logRate + (1-w)*(*seasonRate), true, nil
	case n > 0:
		return float64(hits) / float64(n), true, nil
	case seasonRate != nil:
		return *seasonRate, true, nil
	default:
		return 0, true, models.ErrDataUnavailable
	}
}

// classify assigns the confidence tag. Monotonic in edge within a
// confidence class, and never Straight without a price or at reduced
// confidence.
func classify(res models.EvaluationResult, lowConf bool, th Thresholds) string {
	if res.Edge == nil || *res.Edge <= th.ParlayEdgeMin {
		return models.TagFade
	}
	if !lowConf && *res.Edge >= th.StraightEdgeMin && res.PTrend >= th.StraightTrendMin {
		return models.TagStraight
	}
	return models.TagParlayLeg
}
