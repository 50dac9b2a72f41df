// Package leagues bundles each league's prop catalog with its upstream
// gateways behind one pluggable module interface. Only the warm scheduler
// holds a module handle; the read path uses the models catalog directly.
package leagues

import (
	"context"
	"fmt"

	"props_edge_backend/models"
)

// Module is the pluggable interface for adding a league.
type Module interface {
	// Identification
	Code() string     // "mlb", "nfl"
	SportKey() string // odds provider sport key

	// Catalog
	Props() []models.PropDefinition
	TrendWindow() int

	// Warm-path fetchers. Each returns data or an explicit error; callers
	// isolate failures per sub-job.
	FetchPool(ctx context.Context, date string) ([]models.Player, error)
	FetchSchedule(ctx context.Context, date string) ([]models.Game, error)
	FetchSeasonAggregate(ctx context.Context, playerID string) (models.SeasonAggregate, error)
	FetchLastN(ctx context.Context, playerID string) (models.LastNTrends, error)
	FetchOddsBoard(ctx context.Context) ([]models.OddsCandidate, error)
}

// Registry manages the available league modules.
type Registry struct {
	modules map[string]Module
	order   []string
}

// NewRegistry creates an empty league registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]Module)}
}

// Register adds a league module.
func (r *Registry) Register(m Module) {
	if _, ok := r.modules[m.Code()]; !ok {
		r.order = append(r.order, m.Code())
	}
	r.modules[m.Code()] = m
}

// Get retrieves a league module by code.
func (r *Registry) Get(code string) (Module, error) {
	m, ok := r.modules[code]
	if !ok {
		return nil, fmt.Errorf("league module not found: %s", code)
	}
	return m, nil
}

// All returns every registered module in registration order.
func (r *Registry) All() []Module {
	out := make([]Module, 0, len(r.order))
	for _, code := range r.order {
		out = append(out, r.modules[code])
	}
	return out
}
