package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/talgya/colony/internal/agents"
	"github.com/talgya/colony/internal/config"
	"github.com/talgya/colony/internal/production"
	"github.com/talgya/colony/internal/territory"
	"github.com/talgya/colony/internal/work"
	"github.com/talgya/colony/internal/world"
)

const home world.RoomName = "Q0R0"

func at(x, y int) world.Pos { return world.Pos{Room: home, X: x, Y: y} }

var chebyshev = world.PathFunc(world.Chebyshev)

func economy() config.EconomyConfig {
	return config.EconomyConfig{Normal: config.DefaultParams(), Incubating: config.DefaultIncubatingParams()}
}

// capital has a full spawn, one source and a container beside it.
func capital() *territory.Territory {
	t := &territory.Territory{
		Name:       home,
		Controller: &territory.Controller{ID: "ctl", Pos: at(25, 25), Level: 2, Owned: true},
		Sources:    []*territory.Source{{ID: "src", Pos: at(20, 10), Capacity: territory.SourceCapacity}},
	}
	spawn := NewStructure("spawn", territory.KindSpawn, at(10, 10))
	spawn.Energy = spawn.EnergyCapacity
	t.Structures = []*territory.Structure{spawn, NewStructure("box", territory.KindContainer, at(21, 10))}
	refreshEnergy(t)
	return t
}

func TestLoopRunsToLimit(t *testing.T) {
	defer goleak.VerifyNone(t)

	l := NewLoop(0)
	l.Limit = 3
	var cycles []uint64
	reports := 0
	l.OnCycle = func(c uint64) { cycles = append(cycles, c) }
	l.OnReport = func(uint64) { reports++ }

	l.Run(context.Background())

	assert.Equal(t, []uint64{1, 2, 3}, cycles)
	assert.Equal(t, 1, reports, "final report on stop")
}

func TestLoopStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := NewLoop(0)
	ran := 0
	l.OnCycle = func(uint64) { ran++ }
	l.Run(ctx)

	assert.Zero(t, ran)
	assert.Zero(t, l.Cycle)
}

func TestLoopReportsPeriodically(t *testing.T) {
	l := NewLoop(0)
	var reported []uint64
	l.OnReport = func(c uint64) { reported = append(reported, c) }
	for i := 0; i < 2*CyclesPerReport; i++ {
		l.Step()
	}
	assert.Equal(t, []uint64{CyclesPerReport, 2 * CyclesPerReport}, reported)
}

func TestNewColonyRejectsInconsistentRules(t *testing.T) {
	reg := agents.DefaultRegistry()
	delete(reg, agents.RoleSupplier)

	_, err := NewColony([]*territory.Territory{capital()}, economy(), chebyshev, WithRegistry(reg))
	require.Error(t, err)
	assert.ErrorIs(t, err, agents.ErrInconsistentConfiguration)
}

func TestNewColonyRejectsBadRanking(t *testing.T) {
	econ := economy()
	econ.Normal.Ranking = append(econ.Normal.Ranking, "pickup")

	_, err := NewColony([]*territory.Territory{capital()}, econ, chebyshev)
	require.Error(t, err)
}

func TestColonySpawnsThenDefers(t *testing.T) {
	tr := capital()
	c, err := NewColony([]*territory.Territory{tr}, economy(), chebyshev)
	require.NoError(t, err)

	c.RunCycle(1)
	s := c.Summary()
	require.Len(t, s.Builds, 1)
	assert.Equal(t, agents.RoleMiner, s.Builds[0].Role)
	assert.True(t, s.Builds[0].Spawned)
	assert.Equal(t, 1, s.Territories[0].Roles[agents.RoleMiner])

	// The miner harvested straight into the container; the spawn paid 250
	// and regenerated one.
	box := structure(tr, "box")
	assert.Equal(t, 4, box.Energy)
	assert.Equal(t, 51, tr.EnergyAvailable)

	// A worker is wanted next but the spawn cannot afford it yet.
	c.RunCycle(2)
	s = c.Summary()
	require.Len(t, s.Builds, 1)
	assert.Equal(t, agents.RoleWorker, s.Builds[0].Role)
	assert.False(t, s.Builds[0].Spawned)

	builds, events := c.Drain()
	assert.Len(t, builds, 2)
	require.Len(t, events, 1)
	assert.Equal(t, "spawn", events[0].Category)

	builds, events = c.Drain()
	assert.Empty(t, builds)
	assert.Empty(t, events)
}

func TestColonyAssignsAndPerforms(t *testing.T) {
	tr := capital()
	tr.Sources = nil
	tr.Structures = tr.Structures[:1]
	tr.Piles = []*territory.Pile{{ID: "pile", Pos: at(5, 5), Amount: 80}}
	h := &agents.Agent{
		ID: "h1", Name: "h1", Role: agents.RoleHauler, Home: home, Pos: at(6, 6),
		Parts:       agents.Count([]agents.Part{agents.PartCarry, agents.PartCarry, agents.PartMove}),
		TicksToLive: 100,
	}
	tr.Agents = []*agents.Agent{h}

	c, err := NewColony([]*territory.Territory{tr}, economy(), chebyshev)
	require.NoError(t, err)
	c.RunCycle(1)

	as := c.Assignments()
	require.Len(t, as, 1)
	assert.Equal(t, string(work.Pickup), as[0].Category)
	assert.Equal(t, world.ObjectID("pile"), as[0].Target)

	assert.Equal(t, 80, h.Energy)
	assert.Nil(t, h.Assignment)
	assert.Empty(t, tr.Piles)
	assert.Equal(t, at(5, 5), h.Pos)
	assert.Equal(t, 99, h.TicksToLive)
}

func TestColonyCompletesOutpostSpawn(t *testing.T) {
	tr := &territory.Territory{
		Name:       home,
		Incubating: true,
		Controller: &territory.Controller{ID: "ctl", Pos: at(25, 25), Level: 1, Owned: true},
		Sites:      []*territory.Site{{ID: "spawn-site", Kind: territory.KindSpawn, Pos: at(10, 10), ProgressTotal: 5}},
	}
	w := &agents.Agent{
		ID: "w1", Name: "w1", Role: agents.RoleWorker, Home: home, Pos: at(12, 12), Energy: 50,
		Parts:       agents.Count([]agents.Part{agents.PartWork, agents.PartCarry, agents.PartMove}),
		TicksToLive: 100,
	}
	tr.Agents = []*agents.Agent{w}

	c, err := NewColony([]*territory.Territory{tr}, economy(), chebyshev)
	require.NoError(t, err)
	c.RunCycle(1)

	require.NotNil(t, tr.Spawn())
	assert.False(t, tr.Incubating)
	assert.Empty(t, tr.Sites)
	assert.Equal(t, 45, w.Energy)

	events := c.Events(10)
	require.Len(t, events, 2)
	assert.Equal(t, "build", events[0].Category)
	assert.Equal(t, "incubation", events[1].Category)
}

func TestColonyExpiresAgents(t *testing.T) {
	tr := capital()
	tr.Sources = nil
	tr.Agents = []*agents.Agent{{ID: "old", Name: "old", Role: agents.RoleScout, Home: home, TicksToLive: 1}}

	c, err := NewColony([]*territory.Territory{tr}, economy(), chebyshev)
	require.NoError(t, err)
	c.RunCycle(1)

	assert.Empty(t, tr.Agents)
	events := c.Events(10)
	require.NotEmpty(t, events)
	assert.Equal(t, "expire", events[len(events)-1].Category)
}

func TestSpawnActuator(t *testing.T) {
	tr := capital()
	lookup := func(n world.RoomName) *territory.Territory {
		if n == home {
			return tr
		}
		return nil
	}
	act := NewSpawnActuator(agents.DefaultRegistry(), lookup)

	_, err := act.Produce(production.BuildDirective{Role: agents.RoleWorker, Facility: "Q9R9", Home: home, Reps: 1})
	assert.ErrorIs(t, err, production.ErrNoProductionFacility)

	_, err = act.Produce(production.BuildDirective{Role: agents.RoleWorker, Facility: home, Home: home, Reps: 2})
	assert.ErrorIs(t, err, agents.ErrInsufficientEnergy)

	a, err := act.Produce(production.BuildDirective{Role: agents.RoleWorker, Facility: home, Home: "Q5R5", Reps: 1})
	require.NoError(t, err)
	assert.Equal(t, home, a.Home, "unknown home falls back to the facility")
	assert.Equal(t, 100, tr.EnergyAvailable)
	assert.Contains(t, tr.Agents, a)
}

func TestDefaultHandlers(t *testing.T) {
	tr := capital()
	peer := &territory.Territory{Name: "Q1R0", Controller: &territory.Controller{ID: "pc", Owned: true}}
	ctx := &production.Context{
		Territory: tr,
		Params:    config.DefaultParams(),
		Registry:  agents.DefaultRegistry(),
		Oracle:    chebyshev,
		Peers: map[world.RoomName]*production.Context{
			home:      {Territory: tr},
			peer.Name: {Territory: peer},
		},
	}

	h := staffer{role: agents.RoleScout}
	d := production.Directive{Name: "look", Category: production.DirVision}
	bd, ok := h.Handle(ctx, d)
	require.True(t, ok)
	assert.Equal(t, agents.RoleScout, bd.Role)
	assert.Equal(t, world.ObjectID("look"), bd.Target)

	tr.Agents = append(tr.Agents, &agents.Agent{ID: "s", Role: agents.RoleScout, Target: "look"})
	_, ok = h.Handle(ctx, d)
	assert.False(t, ok)

	cl := claimer{staffer{role: agents.RoleClaimer}}
	_, ok = cl.Handle(ctx, production.Directive{Name: "grab", Category: production.DirClaim, Pos: world.Pos{Room: peer.Name}})
	assert.False(t, ok, "owned rooms are left to incubation")
	_, ok = cl.Handle(ctx, production.Directive{Name: "grab", Category: production.DirClaim, Pos: world.Pos{Room: "Q2R0"}})
	assert.True(t, ok)
}

func TestSeedAndRun(t *testing.T) {
	atlas := world.Generate(world.SmallTestConfig())
	seeds := world.PlaceTerritories(atlas, 2, 42)
	require.NotEmpty(t, seeds)

	ts, opts := Seed(atlas, seeds)
	require.Len(t, ts, len(seeds))
	require.NotNil(t, ts[0].Spawn())
	for _, out := range ts[1:] {
		assert.True(t, out.Incubating)
		assert.Nil(t, out.Spawn())
	}

	c, err := NewColony(ts, economy(), world.NewTerrainOracle(atlas), opts...)
	require.NoError(t, err)

	l := NewLoop(0)
	l.Limit = 50
	l.OnCycle = c.RunCycle
	l.Run(context.Background())

	s := c.Summary()
	assert.Equal(t, uint64(50), s.Cycle)
	var seat TerritorySummary
	for _, sum := range s.Territories {
		if sum.Name == seeds[0].Room {
			seat = sum
		}
	}
	assert.GreaterOrEqual(t, seat.Roles[agents.RoleMiner], 1)
}

func TestSpawnActuatorHonoursRepLimits(t *testing.T) {
	unbounded := production.BuildDirective{Role: agents.RoleHauler, Facility: home, Home: home, Target: "store", Reps: agents.Unbounded}

	a, err := NewSpawnActuator(agents.DefaultRegistry(), func(world.RoomName) *territory.Territory { return capital() }).Produce(unbounded)
	require.NoError(t, err)
	assert.Equal(t, 4, a.Parts[agents.PartCarry], "300 energy buys two repetitions")

	econ := economy()
	econ.Normal.RepLimits = map[string]int{"hauler": 1}
	tr := capital()
	c, err := NewColony([]*territory.Territory{tr}, econ, chebyshev)
	require.NoError(t, err)
	assert.Equal(t, 1, c.registryFor(home)[agents.RoleHauler].MaxReps)

	a, err = c.actuator.Produce(unbounded)
	require.NoError(t, err)
	assert.Equal(t, 2, a.Parts[agents.PartCarry])
	assert.Equal(t, 150, tr.EnergyAvailable)
}
