// Package agents provides the agent snapshot model, body parts, the static
// role registry, and the spawner that materializes build directives.
package agents

import (
	"github.com/talgya/colony/internal/world"
)

// Part is a single body part of an agent.
type Part uint8

const (
	PartMove Part = iota
	PartWork
	PartCarry
	PartClaim
	PartAttack
	PartRangedAttack
	PartHeal
	PartTough
)

// NumParts is the total number of part types.
const NumParts = 8

// PartCost is the energy cost of each body part.
var PartCost = [NumParts]int{
	PartMove:         50,
	PartWork:         100,
	PartCarry:        50,
	PartClaim:        600,
	PartAttack:       80,
	PartRangedAttack: 150,
	PartHeal:         250,
	PartTough:        10,
}

// CarryPerPart is the energy one carry part holds.
const CarryPerPart = 50

// Lifetimes in ticks. Claim-capable bodies expire much sooner.
const (
	LifetimeDefault = 1500
	LifetimeClaim   = 600
)

// PartCounts is a fixed-size tally of body parts.
type PartCounts [NumParts]int

// Count tallies a body.
func Count(body []Part) PartCounts {
	var c PartCounts
	for _, p := range body {
		c[p]++
	}
	return c
}

// Assignment is the work an agent is committed to, recorded on the agent by
// its action dispatcher.
type Assignment struct {
	Category string         `json:"category"`
	Target   world.ObjectID `json:"target"`
	Room     world.RoomName `json:"room"`
}

// Agent is a read-only snapshot of a mobile unit.
type Agent struct {
	ID   world.ObjectID `json:"id"`
	Name string         `json:"name"`
	Role Role           `json:"role"`

	// Location
	Home world.RoomName `json:"home"`
	Pos  world.Pos      `json:"pos"`

	// Body and load
	Parts  PartCounts `json:"parts"`
	Energy int        `json:"energy"` // Energy currently carried

	// Spawn-time target (source for miners, storage for remote haulers, ...).
	Target world.ObjectID `json:"target,omitempty"`

	Assignment  *Assignment `json:"assignment,omitempty"`
	TicksToLive int         `json:"ticks_to_live"`
	Renew       bool        `json:"renew,omitempty"`
}

// CarryCapacity returns how much energy the agent can hold.
func (a *Agent) CarryCapacity() int {
	return a.Parts[PartCarry] * CarryPerPart
}

// CanCarry reports whether the agent has at least one carry part.
func (a *Agent) CanCarry() bool { return a.Parts[PartCarry] > 0 }

// CanWork reports whether the agent has at least one work part.
func (a *Agent) CanWork() bool { return a.Parts[PartWork] > 0 }

// CanClaim reports whether the agent has at least one claim part.
func (a *Agent) CanClaim() bool { return a.Parts[PartClaim] > 0 }

// Full reports whether the agent's store is at capacity.
func (a *Agent) Full() bool {
	return a.Energy >= a.CarryCapacity()
}

// Idle reports whether the agent has no committed work.
func (a *Agent) Idle() bool {
	return a.Assignment == nil
}
