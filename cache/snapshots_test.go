package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"props_edge_backend/models"
)

const testDate = "2026-08-25"

func TestPlayersSnapshotRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	snap := PlayersSnapshot{Players: []models.Player{
		{ID: "660271", Name: "Shohei Ohtani", Team: "LAD"},
		{ID: "665742", Name: "Juan Soto", Team: "NYM"},
	}}
	require.NoError(t, PutPlayers(ctx, store, models.LeagueMLB, testDate, snap))

	got, err := GetPlayers(ctx, store, models.LeagueMLB, testDate)
	require.NoError(t, err)
	assert.Equal(t, snap, got)
}

func TestGetPlayersMissIsDataUnavailable(t *testing.T) {
	store := NewMemoryStore()
	_, err := GetPlayers(context.Background(), store, models.LeagueMLB, testDate)
	assert.ErrorIs(t, err, models.ErrDataUnavailable)
}

func TestSnapshotVersionMismatchReadsAsUnavailable(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	// An entry written by an older build with a different payload shape.
	stale := envelope{Version: SnapshotVersion + 1, WrittenAt: time.Now(), Data: json.RawMessage(`{"players":[]}`)}
	raw, err := json.Marshal(stale)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, Key(models.LeagueMLB, testDate, CategoryPlayers), raw, time.Hour))

	_, err = GetPlayers(ctx, store, models.LeagueMLB, testDate)
	assert.ErrorIs(t, err, models.ErrDataUnavailable)
}

func TestSnapshotCorruptEnvelopeReadsAsUnavailable(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, Key(models.LeagueMLB, testDate, CategoryOdds), []byte("{not json"), time.Hour))

	_, err := GetOddsBoard(ctx, store, models.LeagueMLB, testDate)
	assert.ErrorIs(t, err, models.ErrDataUnavailable)
}

func TestPerPlayerSnapshotsAreIndependent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	trendsA := LastNSnapshot{Trends: models.LastNTrends{
		N:      3,
		Series: map[models.PropCode][]bool{models.PropHits05: {true, false, true}},
	}}
	require.NoError(t, PutLastN(ctx, store, models.LeagueMLB, testDate, "a", trendsA))

	got, err := GetLastN(ctx, store, models.LeagueMLB, testDate, "a")
	require.NoError(t, err)
	assert.Equal(t, trendsA, got)

	_, err = GetLastN(ctx, store, models.LeagueMLB, testDate, "b")
	assert.ErrorIs(t, err, models.ErrDataUnavailable)
}

func TestSeasonAggSnapshotRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	snap := SeasonAggSnapshot{Aggregate: models.SeasonAggregate{
		Games: 120,
		Rates: map[models.PropCode]float64{models.PropHits05: 0.64, models.PropTB15: 0.41},
	}}
	require.NoError(t, PutSeasonAgg(ctx, store, models.LeagueMLB, testDate, "660271", snap))

	got, err := GetSeasonAgg(ctx, store, models.LeagueMLB, testDate, "660271")
	require.NoError(t, err)
	assert.Equal(t, snap, got)
}

func TestOddsBoardSnapshotRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	snap := OddsBoardSnapshot{Candidates: []models.OddsCandidate{
		{PlayerName: "Shohei Ohtani", Prop: models.PropHits05, Line: 0.5, American: -145, Event: 0},
		{PlayerName: "Juan Soto", Prop: models.PropTB15, Line: 1.5, American: 115, Event: 1},
	}}
	require.NoError(t, PutOddsBoard(ctx, store, models.LeagueMLB, testDate, snap))

	got, err := GetOddsBoard(ctx, store, models.LeagueMLB, testDate)
	require.NoError(t, err)
	assert.Equal(t, snap, got)
}
