// Package scheduler runs the background cache-warming jobs. It is the only
// writer to the cache store; request handling never shares a call path with
// it.
package scheduler

import (
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"props_edge_backend/cache"
	"props_edge_backend/config"
	"props_edge_backend/notifier"
	"props_edge_backend/services/leagues"
	"props_edge_backend/services/scan"
)

// JobStatus records the most recent outcome of one scheduled job.
type JobStatus struct {
	Kind        string    `json:"kind"`
	LastRun     time.Time `json:"last_run"`
	LastRunID   string    `json:"last_run_id"`
	LastOutcome string    `json:"last_outcome"`
}

// Status is the operator-facing scheduler state served by /warm/status.
type Status struct {
	Leader  bool                 `json:"leader"`
	Running bool                 `json:"running"`
	Jobs    map[string]JobStatus `json:"jobs"`
}

// Scheduler owns the warm jobs. All collaborator handles are injected at
// construction; jobs read nothing from ambient globals.
type Scheduler struct {
	cron    *gocron.Scheduler
	cfg     *config.Config
	log     *logrus.Logger
	store   cache.Store
	leagues *leagues.Registry
	scanner *scan.Scanner
	digest  *notifier.Telegram

	loc *time.Location
	now func() time.Time

	mu      sync.RWMutex
	running bool
	jobs    map[string]JobStatus
}

// NewScheduler creates a scheduler. digest may be nil when no Telegram
// credentials are configured.
func NewScheduler(cfg *config.Config, log *logrus.Logger, store cache.Store, registry *leagues.Registry, scanner *scan.Scanner, digest *notifier.Telegram) *Scheduler {
	loc := cfg.Location()
	return &Scheduler{
		cron:    gocron.NewScheduler(loc),
		cfg:     cfg,
		log:     log,
		store:   store,
		leagues: registry,
		scanner: scanner,
		digest:  digest,
		loc:     loc,
		now:     time.Now,
		jobs:    make(map[string]JobStatus),
	}
}

// Start registers and starts the warm jobs. Non-leaders return immediately
// and serve reads only.
func (s *Scheduler) Start() {
	if !s.cfg.RunScheduler {
		s.log.Info("scheduler disabled (RUN_SCHEDULER=false), serving reads only")
		return
	}

	s.log.WithFields(logrus.Fields{
		"deep_warm_at":     s.cfg.DeepWarmAt,
		"light_refresh_at": s.cfg.LightRefreshAt,
		"timezone":         config.ReferenceTimezone,
	}).Info("starting warm scheduler")

	s.cron.Every(1).Day().At(s.cfg.DeepWarmAt).Do(func() {
		s.RunDeepWarm()
	})
	for _, at := range s.cfg.LightRefreshAt {
		at := at
		s.cron.Every(1).Day().At(at).Do(func() {
			s.RunLightRefresh(at)
		})
	}

	s.cron.StartAsync()
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()
	s.log.Info("warm scheduler started")
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.cron.Stop()
	s.running = false
	s.log.Info("warm scheduler stopped")
}

// Status returns the current scheduler state.
func (s *Scheduler) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	jobs := make(map[string]JobStatus, len(s.jobs))
	for k, v := range s.jobs {
		jobs[k] = v
	}
	return Status{Leader: s.cfg.RunScheduler, Running: s.running, Jobs: jobs}
}

func (s *Scheduler) recordOutcome(kind, runID, outcome string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[kind] = JobStatus{
		Kind:        kind,
		LastRun:     s.now(),
		LastRunID:   runID,
		LastOutcome: outcome,
	}
}
