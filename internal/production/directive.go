// Package production decides, once per cycle and territory, which single
// new agent to produce. Stages run in a fixed order and the first stage to
// propose a build directive ends the decision.
package production

import (
	"errors"
	"sort"

	"github.com/talgya/colony/internal/agents"
	"github.com/talgya/colony/internal/config"
	"github.com/talgya/colony/internal/territory"
	"github.com/talgya/colony/internal/world"
)

// ErrNoProductionFacility means the territory cannot produce agents; the
// scheduler returns no directive.
var ErrNoProductionFacility = errors.New("no production facility")

// Stage names the scheduler stage that produced a directive.
type Stage string

const (
	StageDomestic   Stage = "domestic"
	StageIncubation Stage = "incubation"
	StageAssigned   Stage = "assigned"
	StageInferred   Stage = "inferred"
	StageAssist     Stage = "assist"
)

// BuildDirective proposes one new agent. Reps may be agents.Unbounded.
type BuildDirective struct {
	ID       string         `json:"id"`
	Role     agents.Role    `json:"role"`
	Target   world.ObjectID `json:"target,omitempty"`
	Home     world.RoomName `json:"home"`
	Facility world.RoomName `json:"facility"` // Territory whose facility builds it
	Reps     int            `json:"reps"`
	Renew    bool           `json:"renew,omitempty"`
	Stage    Stage          `json:"stage"`
}

// Order converts the directive into a spawner order.
func (d BuildDirective) Order() agents.Order {
	return agents.Order{Role: d.Role, Reps: d.Reps, Home: d.Home, Target: d.Target, Renew: d.Renew}
}

// DirectiveCategory is the kind of an externally placed directive (marker).
type DirectiveCategory string

const (
	DirVision     DirectiveCategory = "vision"
	DirClaim      DirectiveCategory = "claim" // Claim and bootstrap
	DirGuard      DirectiveCategory = "guard"
	DirColony     DirectiveCategory = "colony"
	DirDestroyer  DirectiveCategory = "destroyer"
	DirSiege      DirectiveCategory = "siege"
	DirRemoteMine DirectiveCategory = "remoteMine"
)

// AssignedOrder is the priority order of directive categories.
var AssignedOrder = []DirectiveCategory{
	DirVision, DirClaim, DirGuard, DirColony, DirDestroyer, DirSiege, DirRemoteMine,
}

// Directive is an externally placed marker this territory is responsible for.
type Directive struct {
	Name     string            `json:"name"`
	Category DirectiveCategory `json:"category"`
	Pos      world.Pos         `json:"pos"`
}

// HighPriority reports whether the directive needs extra supplier capacity.
func (d Directive) HighPriority() bool {
	switch d.Category {
	case DirGuard, DirDestroyer, DirSiege:
		return true
	}
	return false
}

// Context is everything the scheduler reads for one territory and cycle.
// It is built once per territory and never mutated by the scheduler.
type Context struct {
	Territory  *territory.Territory
	Params     config.Params
	Registry   agents.Registry
	Oracle     world.PathOracle
	Directives []Directive

	// Peers are the contexts of the other owned territories.
	Peers map[world.RoomName]*Context
}

// spec returns a role spec; the registry is validated at startup.
func (c *Context) spec(role agents.Role) agents.RoleSpec {
	s, _ := c.Registry.Lookup(role)
	return s
}

func (c *Context) distanceTo(p world.Pos) int {
	return c.Oracle.Distance(c.Territory.Anchor(), p)
}

// byCategory returns the directives of a category, nearest first.
func (c *Context) byCategory(cat DirectiveCategory) []Directive {
	var out []Directive
	for _, d := range c.Directives {
		if d.Category == cat {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return c.distanceTo(out[i].Pos) < c.distanceTo(out[j].Pos)
	})
	return out
}

// peersByDistance returns peer contexts ordered by distance, then name.
func (c *Context) peersByDistance() []*Context {
	out := make([]*Context, 0, len(c.Peers))
	for name, p := range c.Peers {
		if name != c.Territory.Name {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := c.distanceTo(out[i].Territory.Anchor()), c.distanceTo(out[j].Territory.Anchor())
		if di != dj {
			return di < dj
		}
		return out[i].Territory.Name < out[j].Territory.Name
	})
	return out
}
