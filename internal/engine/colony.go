package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/talgya/colony/internal/agents"
	"github.com/talgya/colony/internal/config"
	"github.com/talgya/colony/internal/production"
	"github.com/talgya/colony/internal/territory"
	"github.com/talgya/colony/internal/work"
	"github.com/talgya/colony/internal/world"
)

const maxEvents = 1000

// Event is a notable occurrence in the colony.
type Event struct {
	Cycle       uint64 `json:"cycle" db:"cycle"`
	Territory   string `json:"territory" db:"territory"`
	Category    string `json:"category" db:"category"` // "build", "spawn", "expire", ...
	Description string `json:"description" db:"description"`
}

// BuildRecord is a build directive and whether the actuator carried it out.
type BuildRecord struct {
	Cycle uint64 `json:"cycle"`
	production.BuildDirective
	Spawned bool `json:"spawned"`
}

// AssignmentRecord is one commitment made during a cycle.
type AssignmentRecord struct {
	Cycle uint64         `json:"cycle"`
	Agent world.ObjectID `json:"agent"`
	agents.Assignment
}

// Actuator materializes build directives. Failures leave the directive to
// be proposed again on a later cycle.
type Actuator interface {
	Produce(bd production.BuildDirective) (*agents.Agent, error)
}

// Colony owns every territory and runs the decision core over them.
type Colony struct {
	mu sync.RWMutex

	territories []*territory.Territory
	index       map[world.RoomName]*territory.Territory
	directives  map[world.RoomName][]production.Directive

	economy   config.EconomyConfig
	registry  agents.Registry
	rules     work.Rules
	oracle    world.PathOracle
	scheduler *production.Scheduler
	assist    config.AssistConfig
	actuator  Actuator
	logger    *slog.Logger

	cycle       uint64
	events      []Event
	builds      []BuildRecord // Since the last drain
	pending     []Event       // Since the last drain
	assignments []AssignmentRecord
	summary     Summary
}

// Option customizes a Colony.
type Option func(*Colony)

// WithDirectives places directives under the care of a territory.
func WithDirectives(room world.RoomName, ds ...production.Directive) Option {
	return func(c *Colony) { c.directives[room] = append(c.directives[room], ds...) }
}

// WithScheduler replaces the default scheduler.
func WithScheduler(s *production.Scheduler) Option {
	return func(c *Colony) { c.scheduler = s }
}

// WithAssist configures cross-territory assist for the default scheduler.
func WithAssist(a config.AssistConfig) Option {
	return func(c *Colony) { c.assist = a }
}

// WithActuator replaces the default spawn actuator.
func WithActuator(a Actuator) Option {
	return func(c *Colony) { c.actuator = a }
}

// WithRegistry replaces the default role registry.
func WithRegistry(r agents.Registry) Option {
	return func(c *Colony) { c.registry = r }
}

// WithRules replaces the default eligibility rules.
func WithRules(r work.Rules) Option {
	return func(c *Colony) { c.rules = r }
}

// WithLogger sets the colony logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Colony) { c.logger = l }
}

// NewColony wires the decision core over the given territories. It fails
// when the rules reference roles without a body pattern or a profile does
// not validate.
func NewColony(ts []*territory.Territory, econ config.EconomyConfig, oracle world.PathOracle, opts ...Option) (*Colony, error) {
	c := &Colony{
		territories: ts,
		index:       make(map[world.RoomName]*territory.Territory, len(ts)),
		directives:  make(map[world.RoomName][]production.Directive),
		economy:     econ,
		registry:    agents.DefaultRegistry(),
		rules:       work.DefaultRules(),
		oracle:      oracle,
		logger:      slog.Default(),
	}
	for _, t := range ts {
		c.index[t.Name] = t
	}
	for _, o := range opts {
		o(c)
	}

	if err := c.rules.Validate(c.registry); err != nil {
		return nil, fmt.Errorf("eligibility rules: %w", err)
	}
	if err := econ.Validate(); err != nil {
		return nil, err
	}
	for _, p := range []config.Params{econ.Normal, econ.Incubating} {
		if _, err := work.ParseRanking(p.Ranking); err != nil {
			return nil, fmt.Errorf("ranking: %w", err)
		}
	}

	if c.scheduler == nil {
		c.scheduler = production.NewScheduler(append(DefaultHandlers(),
			production.WithHaulingReporter(&remoteHauling{colony: c}),
			production.WithAssist(c.assist),
			production.WithLogger(c.logger),
		)...)
	}
	if c.actuator == nil {
		c.actuator = NewSpawnActuator(c.registry, c.lookup).WithFacilityRegistry(c.registryFor)
	}
	c.summary = c.summarize()
	return c, nil
}

func (c *Colony) lookup(name world.RoomName) *territory.Territory {
	return c.index[name]
}

// RunCycle runs production, assignment and the world step for one cycle.
func (c *Colony) RunCycle(cycle uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cycle = cycle
	c.assignments = c.assignments[:0]

	ctxs := c.contexts()
	for _, t := range c.territories {
		c.produce(ctxs[t.Name])
	}
	for _, t := range c.territories {
		c.assign(t, ctxs[t.Name].Params)
	}
	c.step()

	c.summary = c.summarize()
}

// contexts builds one immutable scheduling context per territory.
func (c *Colony) contexts() map[world.RoomName]*production.Context {
	ctxs := make(map[world.RoomName]*production.Context, len(c.territories))
	for _, t := range c.territories {
		p := c.economy.For(t.Name, t.Incubating)
		ctxs[t.Name] = &production.Context{
			Territory:  t,
			Params:     p,
			Registry:   c.registryFor(t.Name),
			Oracle:     c.oracle,
			Directives: c.directives[t.Name],
			Peers:      ctxs,
		}
	}
	return ctxs
}

// registryFor returns the role registry capped by the territory's profile.
func (c *Colony) registryFor(name world.RoomName) agents.Registry {
	t := c.index[name]
	if t == nil {
		return c.registry
	}
	p := c.economy.For(t.Name, t.Incubating)
	return c.registry.WithLimits(roleLimits(p.RepLimits))
}

func roleLimits(limits map[string]int) map[agents.Role]int {
	out := make(map[agents.Role]int, len(limits))
	for role, n := range limits {
		out[agents.Role(role)] = n
	}
	return out
}

func (c *Colony) produce(ctx *production.Context) {
	bd, ok := c.scheduler.Schedule(ctx)
	if !ok {
		return
	}
	rec := BuildRecord{Cycle: c.cycle, BuildDirective: bd}

	a, err := c.actuator.Produce(bd)
	if err != nil {
		c.logger.Debug("build deferred", "territory", bd.Facility, "role", bd.Role, "reps", bd.Reps, "error", err)
	} else {
		rec.Spawned = true
		c.emit(bd.Home, "spawn", fmt.Sprintf("%s spawned at %s for %s", a.Name, bd.Facility, bd.Home))
	}
	c.builds = append(c.builds, rec)
}

func (c *Colony) assign(t *territory.Territory, p config.Params) {
	eng, err := work.NewEngine(t, p, c.rules, c.oracle, work.WithLogger(c.logger))
	if err != nil {
		c.logger.Error("assignment skipped", "territory", t.Name, "error", err)
		return
	}
	for _, a := range t.Agents {
		if !a.Idle() {
			continue
		}
		as, ok := eng.Assign(a)
		if !ok {
			continue
		}
		a.Assignment = &as
		c.assignments = append(c.assignments, AssignmentRecord{Cycle: c.cycle, Agent: a.ID, Assignment: as})
	}
}

func (c *Colony) emit(room world.RoomName, category, desc string) {
	e := Event{Cycle: c.cycle, Territory: string(room), Category: category, Description: desc}
	c.events = append(c.events, e)
	if len(c.events) > maxEvents {
		c.events = c.events[len(c.events)-maxEvents:]
	}
	c.pending = append(c.pending, e)
}

// Cycle returns the last completed cycle.
func (c *Colony) Cycle() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cycle
}

// Territory returns a territory by name.
func (c *Colony) Territory(name world.RoomName) (*territory.Territory, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.index[name]
	return t, ok
}

// Territories returns the territories in name order.
func (c *Colony) Territories() []*territory.Territory {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := append([]*territory.Territory(nil), c.territories...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Events returns up to limit recent events, newest last.
func (c *Colony) Events(limit int) []Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	start := max(len(c.events)-limit, 0)
	return append([]Event(nil), c.events[start:]...)
}

// Assignments returns the commitments made in the last cycle.
func (c *Colony) Assignments() []AssignmentRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]AssignmentRecord(nil), c.assignments...)
}

// Drain returns and forgets the build records and events accumulated since
// the previous drain.
func (c *Colony) Drain() ([]BuildRecord, []Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	builds, events := c.builds, c.pending
	c.builds, c.pending = nil, nil
	return builds, events
}

// AgentsOf returns copies of the agents homed in a territory.
func (c *Colony) AgentsOf(name world.RoomName) ([]agents.Agent, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.index[name]
	if !ok {
		return nil, false
	}
	out := make([]agents.Agent, 0, len(t.Agents))
	for _, a := range t.Agents {
		cp := *a
		if a.Assignment != nil {
			as := *a.Assignment
			cp.Assignment = &as
		}
		out = append(out, cp)
	}
	return out, true
}
