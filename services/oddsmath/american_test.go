package oddsmath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakEvenProbability(t *testing.T) {
	tests := []struct {
		name     string
		american int
		want     float64
	}{
		{"minus 150", -150, 0.60},
		{"plus 120", 120, 100.0 / 220.0},
		{"minus 110", -110, 110.0 / 210.0},
		{"even money", 100, 0.50},
		{"heavy favorite", -250, 250.0 / 350.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BreakEvenProbability(tt.american)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestBreakEvenProbabilityZeroInvalid(t *testing.T) {
	_, err := BreakEvenProbability(0)
	assert.Error(t, err)
}

func TestBreakEvenProbabilityPtr(t *testing.T) {
	assert.Nil(t, BreakEvenProbabilityPtr(nil))

	zero := 0
	assert.Nil(t, BreakEvenProbabilityPtr(&zero))

	price := -150
	p := BreakEvenProbabilityPtr(&price)
	require.NotNil(t, p)
	assert.InDelta(t, 0.60, *p, 1e-12)
}

func TestAmericanDecimalRoundTrip(t *testing.T) {
	for _, american := range []int{-250, -150, -110, 100, 120, 250} {
		dec, err := AmericanToDecimal(american)
		require.NoError(t, err)
		back, err := DecimalToAmerican(dec)
		require.NoError(t, err)
		assert.Equal(t, american, back, "american %d", american)
	}
}

func TestDecimalToAmericanRejectsSubUnity(t *testing.T) {
	_, err := DecimalToAmerican(0.95)
	assert.Error(t, err)
}

func TestExpectedValue(t *testing.T) {
	// At the break-even probability EV is exactly zero.
	ev, err := ExpectedValue(0.60, -150)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, ev, 1e-12)

	ev, err = ExpectedValue(0.70, -150)
	require.NoError(t, err)
	assert.Greater(t, ev, 0.0)

	ev, err = ExpectedValue(0.50, -150)
	require.NoError(t, err)
	assert.Less(t, ev, 0.0)

	_, err = ExpectedValue(0.5, 0)
	assert.Error(t, err)
}

func TestEdge(t *testing.T) {
	assert.Nil(t, Edge(0.7, nil))

	be := 0.60
	e := Edge(0.70, &be)
	require.NotNil(t, e)
	assert.InDelta(t, 0.10, *e, 1e-12)

	e = Edge(0.55, &be)
	require.NotNil(t, e)
	assert.InDelta(t, -0.05, *e, 1e-12)
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-0.2))
	assert.Equal(t, 1.0, Clamp01(1.7))
	assert.Equal(t, 0.42, Clamp01(0.42))
}
