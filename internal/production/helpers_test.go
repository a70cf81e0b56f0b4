package production

import (
	"github.com/talgya/colony/internal/agents"
	"github.com/talgya/colony/internal/config"
	"github.com/talgya/colony/internal/territory"
	"github.com/talgya/colony/internal/world"
)

const (
	home world.RoomName = "Q0R0"
	away world.RoomName = "Q1R0"
)

func at(x, y int) world.Pos { return world.Pos{Room: home, X: x, Y: y} }

// roomOracle measures Chebyshev distance inside a room and adds a fixed
// cost per room crossed.
func roomOracle(crossing int) world.PathOracle {
	return world.PathFunc(func(a, b world.Pos) int {
		d := world.Chebyshev(a, b)
		if a.Room != b.Room {
			d += crossing
		}
		return d
	})
}

// newTerritory returns an owned territory with one spawn and no sources.
func newTerritory(name world.RoomName) *territory.Territory {
	return &territory.Territory{
		Name:       name,
		Controller: &territory.Controller{ID: world.ObjectID(name + "-ctl"), Pos: world.Pos{Room: name, X: 25, Y: 25}, Level: 5, Owned: true},
		Structures: []*territory.Structure{
			{ID: world.ObjectID(name + "-spawn"), Kind: territory.KindSpawn, Pos: world.Pos{Room: name, X: 10, Y: 10}, Hits: 5000, HitsMax: 5000, EnergyCapacity: 300},
		},
		EnergyAvailable: 1000,
		EnergyCapacity:  1000,
	}
}

func addStructure(t *territory.Territory, id world.ObjectID, kind territory.StructureKind, pos world.Pos, energy int) *territory.Structure {
	s := &territory.Structure{ID: id, Kind: kind, Pos: pos, Hits: 1000, HitsMax: 1000, Energy: energy}
	t.Structures = append(t.Structures, s)
	return s
}

func addSource(t *territory.Territory, id world.ObjectID, pos world.Pos) *territory.Source {
	s := &territory.Source{ID: id, Pos: pos, Capacity: territory.SourceCapacity}
	t.Sources = append(t.Sources, s)
	return s
}

func addAgent(t *territory.Territory, id world.ObjectID, role agents.Role, target world.ObjectID, parts ...agents.Part) *agents.Agent {
	a := &agents.Agent{ID: id, Name: string(id), Role: role, Home: t.Name, Target: target, Parts: agents.Count(parts)}
	t.Agents = append(t.Agents, a)
	return a
}

func newContext(t *territory.Territory, oracle world.PathOracle) *Context {
	return &Context{
		Territory: t,
		Params:    config.DefaultParams(),
		Registry:  agents.DefaultRegistry(),
		Oracle:    oracle,
	}
}

// link makes every context a peer of every other.
func link(ctxs ...*Context) {
	peers := make(map[world.RoomName]*Context, len(ctxs))
	for _, c := range ctxs {
		peers[c.Territory.Name] = c
	}
	for _, c := range ctxs {
		c.Peers = peers
	}
}

// recorder is a handler that logs the directives it sees and accepts the
// ones named in accept.
type recorder struct {
	seen   []string
	accept map[string]agents.Role
}

func (r *recorder) Handle(_ *Context, d Directive) (BuildDirective, bool) {
	r.seen = append(r.seen, d.Name)
	role, ok := r.accept[d.Name]
	if !ok {
		return BuildDirective{}, false
	}
	return BuildDirective{Role: role, Reps: 1}, true
}

type fixedHauling float64

func (f fixedHauling) HaulingNeed(Directive) float64 { return float64(f) }
