package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"props_edge_backend/cache"
	"props_edge_backend/models"
	"props_edge_backend/services/leagues"
)

const (
	kindDeepWarm     = "deep_warm"
	kindLightRefresh = "light_refresh"
)

type jobMark struct {
	RunID       string    `json:"run_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// alreadyRan reports whether a run with this (date, kind) idempotency key
// already completed. Guards process restarts and duplicate timers.
func (s *Scheduler) alreadyRan(ctx context.Context, date, kind string) bool {
	_, ok := s.store.Get(ctx, cache.JobKey(date, kind))
	return ok
}

// markDone writes the idempotency mark; only a completed run writes it, so
// a failed run retries on the next trigger.
func (s *Scheduler) markDone(ctx context.Context, date, kind, runID string) {
	data, err := json.Marshal(jobMark{RunID: runID, CompletedAt: s.now()})
	if err != nil {
		s.log.WithError(err).WithField("kind", kind).Warn("failed to encode job mark")
		return
	}
	if err := s.store.Set(ctx, cache.JobKey(date, kind), data, cache.JobMarkTTL); err != nil {
		s.log.WithError(err).WithField("kind", kind).Warn("failed to write job mark")
	}
}

// RunDeepWarm executes the daily deep warm: player pool, schedule, odds
// board, season aggregates, and last-N logs for every league, sharded into
// alphabetic buckets. Exported so operators (and tests) can trigger it
// directly.
func (s *Scheduler) RunDeepWarm() {
	ctx := context.Background()
	date := cache.DateString(s.now(), s.loc)

	if s.alreadyRan(ctx, date, kindDeepWarm) {
		s.log.WithField("date", date).Info("deep warm already completed, skipping")
		return
	}

	runID := uuid.NewString()
	jobLog := s.log.WithFields(logrus.Fields{"job": kindDeepWarm, "date": date, "run_id": runID})
	jobLog.Info("deep warm starting")
	start := s.now()

	completed := true
	for _, mod := range s.leagues.All() {
		if err := s.deepWarmLeague(ctx, jobLog, mod, date); err != nil {
			// League-level failure leaves that league's prior-cycle data in
			// place; siblings proceed.
			jobLog.WithError(err).WithField("league", mod.Code()).Error("deep warm failed for league")
			completed = false
		}
	}

	outcome := "ok"
	if completed {
		s.markDone(ctx, date, kindDeepWarm, runID)
	} else {
		outcome = "partial"
	}
	s.recordOutcome(kindDeepWarm, runID, outcome)
	jobLog.WithFields(logrus.Fields{"outcome": outcome, "duration": s.now().Sub(start).String()}).
		Info("deep warm finished")

	s.sendDigest(ctx, jobLog)
}

// deepWarmLeague warms one league's pool, schedule, and per-player data.
func (s *Scheduler) deepWarmLeague(ctx context.Context, jobLog *logrus.Entry, mod leagues.Module, date string) error {
	pool, err := mod.FetchPool(ctx, date)
	if err != nil {
		return fmt.Errorf("fetch pool: %w", err)
	}
	if err := cache.PutPlayers(ctx, s.store, mod.Code(), date, cache.PlayersSnapshot{Players: pool}); err != nil {
		return fmt.Errorf("write pool: %w", err)
	}

	if games, err := mod.FetchSchedule(ctx, date); err != nil {
		jobLog.WithError(err).WithField("league", mod.Code()).Warn("schedule fetch failed")
	} else if err := cache.PutSchedule(ctx, s.store, mod.Code(), date, cache.ScheduleSnapshot{Games: games}); err != nil {
		jobLog.WithError(err).WithField("league", mod.Code()).Warn("schedule write failed")
	}

	// The post-warm digest scans today's board, and the first light refresh
	// has not fired yet at the deep-warm trigger.
	if cands, err := mod.FetchOddsBoard(ctx); err != nil {
		jobLog.WithError(err).WithField("league", mod.Code()).Warn("odds board warm failed")
	} else if err := cache.PutOddsBoard(ctx, s.store, mod.Code(), date, cache.OddsBoardSnapshot{Candidates: cands}); err != nil {
		jobLog.WithError(err).WithField("league", mod.Code()).Warn("odds board write failed")
	}

	shards := shardPlayers(pool, s.cfg.WarmShards)
	for i, shard := range shards {
		s.warmShard(ctx, jobLog, mod, date, i, shard)
	}
	return nil
}

// warmShard warms season aggregates and last-N logs for one bucket of
// players. Each shard writes its own entries; a failure inside one shard
// never aborts its siblings.
func (s *Scheduler) warmShard(ctx context.Context, jobLog *logrus.Entry, mod leagues.Module, date string, shardIdx int, shard []models.Player) {
	shardLog := jobLog.WithFields(logrus.Fields{"league": mod.Code(), "shard": shardIdx, "players": len(shard)})
	failures := 0
	for _, player := range shard {
		if agg, err := mod.FetchSeasonAggregate(ctx, player.ID); err != nil {
			failures++
			shardLog.WithError(err).WithField("player_id", player.ID).Debug("season aggregate fetch failed")
		} else if err := cache.PutSeasonAgg(ctx, s.store, mod.Code(), date, player.ID, cache.SeasonAggSnapshot{Aggregate: agg}); err != nil {
			failures++
			shardLog.WithError(err).WithField("player_id", player.ID).Debug("season aggregate write failed")
		}

		if trends, err := mod.FetchLastN(ctx, player.ID); err != nil {
			failures++
			shardLog.WithError(err).WithField("player_id", player.ID).Debug("game log fetch failed")
		} else if err := cache.PutLastN(ctx, s.store, mod.Code(), date, player.ID, cache.LastNSnapshot{Trends: trends}); err != nil {
			failures++
			shardLog.WithError(err).WithField("player_id", player.ID).Debug("game log write failed")
		}
	}
	if failures > 0 {
		shardLog.WithField("failures", failures).Warn("shard completed with failures")
	} else {
		shardLog.Info("shard warmed")
	}
}

// RunLightRefresh re-fetches only the cheap, volatile data: today's
// schedule window and the odds board. at is the trigger slot, part of the
// idempotency key so each fixed time runs once per day.
func (s *Scheduler) RunLightRefresh(at string) {
	ctx := context.Background()
	date := cache.DateString(s.now(), s.loc)
	kind := fmt.Sprintf("%s@%s", kindLightRefresh, at)

	if s.alreadyRan(ctx, date, kind) {
		s.log.WithFields(logrus.Fields{"date": date, "kind": kind}).Info("light refresh already completed, skipping")
		return
	}

	runID := uuid.NewString()
	jobLog := s.log.WithFields(logrus.Fields{"job": kind, "date": date, "run_id": runID})
	jobLog.Info("light refresh starting")

	completed := true
	for _, mod := range s.leagues.All() {
		if games, err := mod.FetchSchedule(ctx, date); err != nil {
			jobLog.WithError(err).WithField("league", mod.Code()).Warn("schedule refresh failed")
			completed = false
		} else if err := cache.PutSchedule(ctx, s.store, mod.Code(), date, cache.ScheduleSnapshot{Games: games}); err != nil {
			jobLog.WithError(err).WithField("league", mod.Code()).Warn("schedule write failed")
			completed = false
		}

		if cands, err := mod.FetchOddsBoard(ctx); err != nil {
			jobLog.WithError(err).WithField("league", mod.Code()).Warn("odds board refresh failed")
			completed = false
		} else if err := cache.PutOddsBoard(ctx, s.store, mod.Code(), date, cache.OddsBoardSnapshot{Candidates: cands}); err != nil {
			jobLog.WithError(err).WithField("league", mod.Code()).Warn("odds board write failed")
			completed = false
		}
	}

	outcome := "ok"
	if completed {
		s.markDone(ctx, date, kind, runID)
	} else {
		outcome = "partial"
	}
	s.recordOutcome(kind, runID, outcome)
	jobLog.WithField("outcome", outcome).Info("light refresh finished")
}

// shardPlayers splits the pool into alphabetic buckets: sorted by name,
// then cut into contiguous slices so each sub-job's upstream load is
// bounded.
func shardPlayers(pool []models.Player, shards int) [][]models.Player {
	if shards < 1 {
		shards = 1
	}
	sorted := append([]models.Player(nil), pool...)
	sort.Slice(sorted, func(i, j int) bool {
		return models.NormalizeName(sorted[i].Name) < models.NormalizeName(sorted[j].Name)
	})

	var out [][]models.Player
	size := (len(sorted) + shards - 1) / shards
	if size == 0 {
		return out
	}
	for start := 0; start < len(sorted); start += size {
		end := start + size
		if end > len(sorted) {
			end = len(sorted)
		}
		out = append(out, sorted[start:end])
	}
	return out
}

// sendDigest runs one scan per league and sends the post-warm top-picks
// digest. Failures are logged, never fatal, and never block the warm.
func (s *Scheduler) sendDigest(ctx context.Context, jobLog *logrus.Entry) {
	if s.digest == nil {
		return
	}
	for _, mod := range s.leagues.All() {
		picks, err := s.scanner.Scan(ctx, mod.Code(), s.digest.ScanFilters())
		if err != nil {
			jobLog.WithError(err).WithField("league", mod.Code()).Warn("digest scan failed")
			continue
		}
		if err := s.digest.SendTopPicks(ctx, mod.Code(), picks); err != nil {
			jobLog.WithError(err).WithField("league", mod.Code()).Warn("digest send failed")
		}
	}
}
