package work

import (
	"github.com/talgya/colony/internal/agents"
	"github.com/talgya/colony/internal/config"
	"github.com/talgya/colony/internal/territory"
	"github.com/talgya/colony/internal/world"
)

const home world.RoomName = "Q0R0"

func at(x, y int) world.Pos { return world.Pos{Room: home, X: x, Y: y} }

// chebyshev is a deterministic stand-in for the path oracle.
var chebyshev = world.PathFunc(world.Chebyshev)

func newTerritory() *territory.Territory {
	return &territory.Territory{
		Name:       home,
		Controller: &territory.Controller{ID: "ctl", Pos: at(25, 25), Level: 5, Owned: true},
	}
}

func body(parts ...agents.Part) agents.PartCounts { return agents.Count(parts) }

func newWorker(id world.ObjectID, pos world.Pos, energy int) *agents.Agent {
	return &agents.Agent{
		ID:     id,
		Name:   string(id),
		Role:   agents.RoleWorker,
		Home:   home,
		Pos:    pos,
		Parts:  body(agents.PartWork, agents.PartCarry, agents.PartCarry, agents.PartMove),
		Energy: energy,
	}
}

func newHauler(id world.ObjectID, pos world.Pos, energy int) *agents.Agent {
	return &agents.Agent{
		ID:     id,
		Name:   string(id),
		Role:   agents.RoleHauler,
		Home:   home,
		Pos:    pos,
		Parts:  body(agents.PartCarry, agents.PartCarry, agents.PartMove),
		Energy: energy,
	}
}

func params() config.Params { return config.DefaultParams() }
