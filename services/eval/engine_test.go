package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"props_edge_backend/models"
)

func mlbHits(t *testing.T) models.PropDefinition {
	t.Helper()
	def, ok := models.PropFor(models.LeagueMLB, models.PropHits05)
	require.True(t, ok)
	return def
}

func series(hits, total int) []bool {
	out := make([]bool, total)
	for i := 0; i < hits; i++ {
		out[i] = true
	}
	return out
}

func intPtr(n int) *int { return &n }

func floatPtr(f float64) *float64 { return &f }

func TestEvaluateFullWindowPlainRate(t *testing.T) {
	res, err := Evaluate(mlbHits(t), series(6, 10), nil, intPtr(-150), DefaultThresholds())
	require.NoError(t, err)

	assert.InDelta(t, 0.6, res.PTrend, 1e-12)
	assert.False(t, res.LowConfidence)
	require.NotNil(t, res.BreakEvenProb)
	assert.InDelta(t, 0.6, *res.BreakEvenProb, 1e-12)
	require.NotNil(t, res.Edge)
	assert.InDelta(t, 0.0, *res.Edge, 1e-12)
	assert.Equal(t, models.TagFade, res.Tag)
}

func TestEvaluateShortSeriesBlendsSeasonBaseline(t *testing.T) {
	// 2 of 3 recent games, season rate 0.50, window 5:
	// w = 3/5, p = 0.6*(2/3) + 0.4*0.5 = 0.6
	res, err := Evaluate(mlbHits(t), series(2, 3), floatPtr(0.50), intPtr(-120), DefaultThresholds())
	require.NoError(t, err)

	assert.InDelta(t, 0.6, res.PTrend, 1e-12)
	assert.True(t, res.LowConfidence)
}

func TestEvaluateShortSeriesNoSeasonUsesRawRate(t *testing.T) {
	res, err := Evaluate(mlbHits(t), series(3, 3), nil, nil, DefaultThresholds())
	require.NoError(t, err)

	assert.InDelta(t, 1.0, res.PTrend, 1e-12)
	assert.True(t, res.LowConfidence)
}

func TestEvaluateEmptySeriesSeasonOnly(t *testing.T) {
	res, err := Evaluate(mlbHits(t), nil, floatPtr(0.72), intPtr(-110), DefaultThresholds())
	require.NoError(t, err)

	assert.InDelta(t, 0.72, res.PTrend, 1e-12)
	assert.True(t, res.LowConfidence)
}

func TestEvaluateNoDataDegradesToFade(t *testing.T) {
	res, err := Evaluate(mlbHits(t), nil, nil, intPtr(-150), DefaultThresholds())
	require.ErrorIs(t, err, models.ErrDataUnavailable)

	assert.Equal(t, 0.0, res.PTrend)
	assert.Equal(t, models.TagFade, res.Tag)
	assert.Nil(t, res.Edge)
	assert.True(t, res.LowConfidence)
}

func TestClassifyTagTable(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		name     string
		hits     int
		american *int
		want     string
	}{
		// p=0.70, break-even 0.60, edge 0.10: clears both Straight gates.
		{"straight", 7, intPtr(-150), models.TagStraight},
		// p=0.65, break-even 163/263 ≈ 0.620, edge ≈ 0.030: positive but
		// below the Straight edge floor.
		{"parlay leg small edge", 13, intPtr(-163), models.TagParlayLeg},
		// p=0.50, break-even 0.60, edge -0.10.
		{"fade negative edge", 5, intPtr(-150), models.TagFade},
		// No price means no edge, which can never rank as a bet.
		{"fade missing price", 9, nil, models.TagFade},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := 10
			if tt.hits > 10 {
				total = 20
			}
			res, err := Evaluate(mlbHits(t), series(tt.hits, total), nil, tt.american, th)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Tag)
		})
	}
}

func TestClassifyLowConfidenceNeverStraight(t *testing.T) {
	// 3 of 3 with a strong season baseline: huge edge, but the short window
	// caps the tag at Parlay leg.
	res, err := Evaluate(mlbHits(t), series(3, 3), floatPtr(0.80), intPtr(-110), DefaultThresholds())
	require.NoError(t, err)

	assert.True(t, res.LowConfidence)
	require.NotNil(t, res.Edge)
	assert.Greater(t, *res.Edge, 0.08)
	assert.Equal(t, models.TagParlayLeg, res.Tag)
}

func TestClassifyMonotonicInEdge(t *testing.T) {
	// Same trend, better price never yields a weaker tag.
	rank := map[string]int{models.TagFade: 0, models.TagParlayLeg: 1, models.TagStraight: 2}
	prev := -1
	for _, american := range []int{-250, -200, -150, -110, 120, 180} {
		res, err := Evaluate(mlbHits(t), series(7, 10), nil, intPtr(american), DefaultThresholds())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, rank[res.Tag], prev, "american %d", american)
		prev = rank[res.Tag]
	}
}

func TestEvaluateCarriesSparkAndLine(t *testing.T) {
	s := series(4, 10)
	res, err := Evaluate(mlbHits(t), s, nil, nil, DefaultThresholds())
	require.NoError(t, err)

	assert.Equal(t, s, res.Spark)
	assert.Equal(t, 0.5, res.UsedLine)
}
