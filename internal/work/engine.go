package work

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/colony/internal/agents"
	"github.com/talgya/colony/internal/config"
	"github.com/talgya/colony/internal/territory"
	"github.com/talgya/colony/internal/world"
)

// ErrStaleTarget marks a work item whose target vanished between listing and
// commitment. The candidate is skipped.
var ErrStaleTarget = errors.New("stale target reference")

// Engine assigns idle agents to work items for one territory and one cycle.
// Commitments made through Assign are visible to later calls in the same
// cycle, so agents are served first-come-first-served.
type Engine struct {
	territory *territory.Territory
	catalog   *Catalog
	rules     Rules
	ranking   []Category
	oracle    world.PathOracle
	alive     func(id world.ObjectID) bool
	logger    *slog.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLiveness replaces the target existence check made at commit time.
func WithLiveness(alive func(id world.ObjectID) bool) Option {
	return func(e *Engine) { e.alive = alive }
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine builds a cycle-scoped assignment engine.
func NewEngine(t *territory.Territory, params config.Params, rules Rules, oracle world.PathOracle, opts ...Option) (*Engine, error) {
	ranking, err := ParseRanking(params.Ranking)
	if err != nil {
		return nil, fmt.Errorf("territory %s: %w", t.Name, err)
	}

	cat := NewCatalog(t, params)
	cat.ledger = make(map[world.ObjectID]agents.Assignment)

	e := &Engine{
		territory: t,
		catalog:   cat,
		rules:     rules,
		ranking:   ranking,
		oracle:    oracle,
		alive:     t.Exists,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Catalog exposes the engine's catalog, including this cycle's commitments.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// Assign commits the agent to the most urgent work it can do. It returns
// false when no eligible category has an uncapped item; the agent stays
// idle this cycle.
func (e *Engine) Assign(a *agents.Agent) (agents.Assignment, bool) {
	for _, cat := range e.rules.Eligible(a, e.ranking) {
		var open []WorkItem
		for _, item := range e.catalog.list(cat, a.ID) {
			if !item.Capped() {
				open = append(open, item)
			}
		}

		// The first category with live open work wins outright.
		for len(open) > 0 {
			i := e.pick(cat, a, open)
			item := open[i]
			if !e.alive(item.Target.ID()) {
				e.logger.Debug("skipping work item",
					"territory", e.territory.Name, "category", cat,
					"target", item.Target.ID(), "error", ErrStaleTarget)
				open = append(open[:i], open[i+1:]...)
				continue
			}
			return e.commit(a, item), true
		}
	}
	return agents.Assignment{}, false
}

func (e *Engine) commit(a *agents.Agent, item WorkItem) agents.Assignment {
	as := agents.Assignment{
		Category: string(item.Category),
		Target:   item.Target.ID(),
		Room:     e.territory.Name,
	}
	e.catalog.ledger[a.ID] = as
	e.logger.Debug("work assigned",
		"territory", e.territory.Name, "agent", a.Name,
		"category", item.Category, "target", as.Target,
		"committed", item.Committed+1, "max", item.MaxAgents)
	return as
}

// pick chooses among open items: fortify takes the most damaged barrier;
// otherwise the nearest item when the agent is in the territory, else the
// first in catalog order.
func (e *Engine) pick(cat Category, a *agents.Agent, items []WorkItem) int {
	best := 0
	switch {
	case cat == Fortify:
		for i, item := range items {
			if hits(item) < hits(items[best]) {
				best = i
			}
		}
	case a.Pos.Room == e.territory.Name && e.oracle != nil:
		bestDist := e.oracle.Distance(a.Pos, items[0].Target.Pos())
		for i := 1; i < len(items); i++ {
			if d := e.oracle.Distance(a.Pos, items[i].Target.Pos()); d < bestDist {
				best, bestDist = i, d
			}
		}
	}
	return best
}

func hits(item WorkItem) int {
	if d, ok := item.Target.(DamageTarget); ok {
		return d.Hits
	}
	return 0
}

// Assignments returns the commitments made this cycle, keyed by agent.
func (e *Engine) Assignments() map[world.ObjectID]agents.Assignment {
	out := make(map[world.ObjectID]agents.Assignment, len(e.catalog.ledger))
	for id, as := range e.catalog.ledger {
		out[id] = as
	}
	return out
}
