// Package territory provides the read-only territory snapshot both decision
// subsystems consult: structures, sources, dropped resources, construction
// sites, the controller, and the agents homed here.
package territory

import (
	"github.com/talgya/colony/internal/agents"
	"github.com/talgya/colony/internal/world"
)

// StructureKind enumerates built structure types.
type StructureKind string

const (
	KindSpawn     StructureKind = "spawn"
	KindExtension StructureKind = "extension"
	KindTower     StructureKind = "tower"
	KindStorage   StructureKind = "storage"
	KindTerminal  StructureKind = "terminal"
	KindContainer StructureKind = "container"
	KindRoad      StructureKind = "road"
	KindWall      StructureKind = "wall"
	KindRampart   StructureKind = "rampart"
	KindLink      StructureKind = "link"
	KindLab       StructureKind = "lab"
)

// MaxControllerLevel is the highest controller level a territory reaches.
const MaxControllerLevel = 8

// SourceCapacity and SourceRegenTicks define a standard energy source.
const (
	SourceCapacity   = 3000
	SourceRegenTicks = 300
)

// Structure is a built object with hit points and an optional energy store.
type Structure struct {
	ID             world.ObjectID `json:"id"`
	Kind           StructureKind  `json:"kind"`
	Pos            world.Pos      `json:"pos"`
	Hits           int            `json:"hits"`
	HitsMax        int            `json:"hits_max"`
	Energy         int            `json:"energy"`
	EnergyCapacity int            `json:"energy_capacity"`
}

// FreeCapacity returns how much more energy the structure accepts.
func (s *Structure) FreeCapacity() int {
	return max(s.EnergyCapacity-s.Energy, 0)
}

// Source is a regenerating energy deposit.
type Source struct {
	ID       world.ObjectID `json:"id"`
	Pos      world.Pos      `json:"pos"`
	Capacity int            `json:"capacity"`

	// LinkServed is set when a link next to the source ships its energy.
	LinkServed bool `json:"link_served"`
}

// IncomePerTick returns the sustained energy yield of the source.
func (s *Source) IncomePerTick() float64 {
	return float64(s.Capacity) / SourceRegenTicks
}

// Pile is a dropped resource heap.
type Pile struct {
	ID     world.ObjectID `json:"id"`
	Pos    world.Pos      `json:"pos"`
	Amount int            `json:"amount"`
}

// Site is a structure under construction.
type Site struct {
	ID            world.ObjectID `json:"id"`
	Kind          StructureKind  `json:"kind"`
	Pos           world.Pos      `json:"pos"`
	Progress      int            `json:"progress"`
	ProgressTotal int            `json:"progress_total"`
}

// Controller is the territory's claim anchor.
type Controller struct {
	ID    world.ObjectID `json:"id"`
	Pos   world.Pos      `json:"pos"`
	Level int            `json:"level"`
	Owned bool           `json:"owned"`
}

// Territory is a snapshot of one managed room, valid for one cycle.
type Territory struct {
	Name world.RoomName `json:"name"`

	// Incubating is set while another territory's bootstrap directive
	// targets this one.
	Incubating bool `json:"incubating"`

	Controller *Controller     `json:"controller,omitempty"`
	Structures []*Structure    `json:"structures"`
	Sources    []*Source       `json:"sources"`
	Piles      []*Pile         `json:"piles"`
	Sites      []*Site         `json:"sites"`
	Agents     []*agents.Agent `json:"agents"` // Agents homed here

	// Production budget.
	EnergyAvailable int `json:"energy_available"`
	EnergyCapacity  int `json:"energy_capacity"`
}

// Owned reports whether the territory's controller is ours.
func (t *Territory) Owned() bool {
	return t.Controller != nil && t.Controller.Owned
}

// Level returns the controller level, 0 if unowned.
func (t *Territory) Level() int {
	if !t.Owned() {
		return 0
	}
	return t.Controller.Level
}
