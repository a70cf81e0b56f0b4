package engine

import (
	"sort"

	"github.com/talgya/colony/internal/agents"
	"github.com/talgya/colony/internal/territory"
	"github.com/talgya/colony/internal/world"
)

// TerritorySummary is a copy of the figures worth reporting for one
// territory.
type TerritorySummary struct {
	Name            world.RoomName      `json:"name"`
	Owned           bool                `json:"owned"`
	Incubating      bool                `json:"incubating"`
	Level           int                 `json:"level"`
	HasSpawn        bool                `json:"has_spawn"`
	EnergyAvailable int                 `json:"energy_available"`
	EnergyCapacity  int                 `json:"energy_capacity"`
	StoredEnergy    int                 `json:"stored_energy"`
	Structures      int                 `json:"structures"`
	Sites           int                 `json:"sites"`
	Piles           int                 `json:"piles"`
	Agents          int                 `json:"agents"`
	Roles           map[agents.Role]int `json:"roles"`
}

// Summary is the state of the colony after a cycle. It is safe to hand to
// other goroutines.
type Summary struct {
	Cycle       uint64             `json:"cycle"`
	Agents      int                `json:"agents"`
	Assignments int                `json:"assignments"`
	Builds      []BuildRecord      `json:"builds"` // This cycle
	Territories []TerritorySummary `json:"territories"`
}

// Summary returns the state after the last completed cycle.
func (c *Colony) Summary() Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.summary
}

// summarize must be called with the lock held.
func (c *Colony) summarize() Summary {
	s := Summary{
		Cycle:       c.cycle,
		Assignments: len(c.assignments),
		Builds:      []BuildRecord{},
	}
	for _, b := range c.builds {
		if b.Cycle == c.cycle {
			s.Builds = append(s.Builds, b)
		}
	}
	for _, t := range c.territories {
		ts := summarizeTerritory(t)
		s.Agents += ts.Agents
		s.Territories = append(s.Territories, ts)
	}
	sort.Slice(s.Territories, func(i, j int) bool { return s.Territories[i].Name < s.Territories[j].Name })
	return s
}

func summarizeTerritory(t *territory.Territory) TerritorySummary {
	ts := TerritorySummary{
		Name:            t.Name,
		Owned:           t.Owned(),
		Incubating:      t.Incubating,
		Level:           t.Level(),
		HasSpawn:        t.Spawn() != nil,
		EnergyAvailable: t.EnergyAvailable,
		EnergyCapacity:  t.EnergyCapacity,
		StoredEnergy:    t.StoredEnergy(),
		Structures:      len(t.Structures),
		Sites:           len(t.Sites),
		Piles:           len(t.Piles),
		Agents:          len(t.Agents),
		Roles:           make(map[agents.Role]int),
	}
	for _, a := range t.Agents {
		ts.Roles[a.Role]++
	}
	return ts
}
