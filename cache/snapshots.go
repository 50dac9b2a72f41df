package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"props_edge_backend/models"
)

// SnapshotVersion is bumped whenever a snapshot payload shape changes.
// Entries written under a different version read back as unavailable
// rather than as a silently wrong number.
const SnapshotVersion = 1

// envelope wraps every cached payload with its version and write time.
type envelope struct {
	Version   int             `json:"version"`
	WrittenAt time.Time       `json:"written_at"`
	Data      json.RawMessage `json:"data"`
}

// PlayersSnapshot is the warmed player pool for a (league, date).
type PlayersSnapshot struct {
	Players []models.Player `json:"players"`
}

// ScheduleSnapshot is the warmed schedule for a (league, date).
type ScheduleSnapshot struct {
	Games []models.Game `json:"games"`
}

// SeasonAggSnapshot is one player's warmed season baseline.
type SeasonAggSnapshot struct {
	Aggregate models.SeasonAggregate `json:"aggregate"`
}

// LastNSnapshot is one player's warmed recent-game trend series.
type LastNSnapshot struct {
	Trends models.LastNTrends `json:"trends"`
}

// OddsBoardSnapshot is the warmed odds board for a (league, date).
type OddsBoardSnapshot struct {
	Candidates []models.OddsCandidate `json:"candidates"`
}

func putSnapshot(ctx context.Context, store Store, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal snapshot %s: %w", key, err)
	}
	env := envelope{Version: SnapshotVersion, WrittenAt: time.Now().UTC(), Data: data}
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope %s: %w", key, err)
	}
	return store.Set(ctx, key, raw, ttl)
}

func getSnapshot(ctx context.Context, store Store, key string, out interface{}) error {
	raw, ok := store.Get(ctx, key)
	if !ok {
		return fmt.Errorf("%s: %w", key, models.ErrDataUnavailable)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%s: bad envelope: %w", key, models.ErrDataUnavailable)
	}
	if env.Version != SnapshotVersion {
		return fmt.Errorf("%s: version %d: %w", key, env.Version, models.ErrDataUnavailable)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s: bad payload: %w", key, models.ErrDataUnavailable)
	}
	return nil
}

// PutPlayers writes the player pool snapshot.
func PutPlayers(ctx context.Context, store Store, league, date string, snap PlayersSnapshot) error {
	return putSnapshot(ctx, store, Key(league, date, CategoryPlayers), snap, SlowTTL)
}

// GetPlayers reads the player pool snapshot.
func GetPlayers(ctx context.Context, store Store, league, date string) (PlayersSnapshot, error) {
	var snap PlayersSnapshot
	err := getSnapshot(ctx, store, Key(league, date, CategoryPlayers), &snap)
	return snap, err
}

// PutSchedule writes the schedule snapshot.
func PutSchedule(ctx context.Context, store Store, league, date string, snap ScheduleSnapshot) error {
	return putSnapshot(ctx, store, Key(league, date, CategorySchedule), snap, ScheduleTTL)
}

// GetSchedule reads the schedule snapshot.
func GetSchedule(ctx context.Context, store Store, league, date string) (ScheduleSnapshot, error) {
	var snap ScheduleSnapshot
	err := getSnapshot(ctx, store, Key(league, date, CategorySchedule), &snap)
	return snap, err
}

// PutSeasonAgg writes one player's season baseline snapshot.
func PutSeasonAgg(ctx context.Context, store Store, league, date, playerID string, snap SeasonAggSnapshot) error {
	return putSnapshot(ctx, store, PlayerKey(league, date, CategorySeasonAgg, playerID), snap, SlowTTL)
}

// GetSeasonAgg reads one player's season baseline snapshot.
func GetSeasonAgg(ctx context.Context, store Store, league, date, playerID string) (SeasonAggSnapshot, error) {
	var snap SeasonAggSnapshot
	err := getSnapshot(ctx, store, PlayerKey(league, date, CategorySeasonAgg, playerID), &snap)
	return snap, err
}

// PutLastN writes one player's trend-series snapshot.
func PutLastN(ctx context.Context, store Store, league, date, playerID string, snap LastNSnapshot) error {
	return putSnapshot(ctx, store, PlayerKey(league, date, CategoryLastN, playerID), snap, SlowTTL)
}

// GetLastN reads one player's trend-series snapshot.
func GetLastN(ctx context.Context, store Store, league, date, playerID string) (LastNSnapshot, error) {
	var snap LastNSnapshot
	err := getSnapshot(ctx, store, PlayerKey(league, date, CategoryLastN, playerID), &snap)
	return snap, err
}

// PutOddsBoard writes the odds board snapshot.
func PutOddsBoard(ctx context.Context, store Store, league, date string, snap OddsBoardSnapshot) error {
	return putSnapshot(ctx, store, Key(league, date, CategoryOdds), snap, OddsTTL)
}

// GetOddsBoard reads the odds board snapshot.
func GetOddsBoard(ctx context.Context, store Store, league, date string) (OddsBoardSnapshot, error) {
	var snap OddsBoardSnapshot
	err := getSnapshot(ctx, store, Key(league, date, CategoryOdds), &snap)
	return snap, err
}
