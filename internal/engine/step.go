package engine

import (
	"fmt"
	"slices"

	"github.com/talgya/colony/internal/agents"
	"github.com/talgya/colony/internal/territory"
	"github.com/talgya/colony/internal/work"
	"github.com/talgya/colony/internal/world"
)

// World step rates, per work part and cycle.
const (
	BuildPerWork   = 5
	RepairPerWork  = 100
	UpgradePerWork = 1
	SpawnRegen     = 1 // Energy a spawn regains per cycle while below capacity
)

// structureStats are the hit points and energy capacity of a fresh structure.
var structureStats = map[territory.StructureKind][2]int{
	territory.KindSpawn:     {5000, 300},
	territory.KindExtension: {1000, 50},
	territory.KindTower:     {3000, 1000},
	territory.KindStorage:   {10000, 1000000},
	territory.KindContainer: {250000, 2000},
	territory.KindRoad:      {5000, 0},
	territory.KindWall:      {1, 0},
	territory.KindRampart:   {1, 0},
	territory.KindLink:      {1000, 800},
	territory.KindLab:       {500, 2000},
	territory.KindTerminal:  {3000, 300000},
}

// NewStructure creates a structure at full hits with empty stores.
func NewStructure(id world.ObjectID, kind territory.StructureKind, pos world.Pos) *territory.Structure {
	st := structureStats[kind]
	return &territory.Structure{ID: id, Kind: kind, Pos: pos, Hits: st[0], HitsMax: st[0], EnergyCapacity: st[1]}
}

// step advances the world by one cycle: miners harvest, committed agents
// carry out their work, agents age and spawns regenerate.
func (c *Colony) step() {
	for _, t := range c.territories {
		c.harvest(t)
	}
	for _, t := range c.territories {
		for _, a := range t.Agents {
			c.perform(a)
		}
	}
	for _, t := range c.territories {
		c.age(t)
		for _, sp := range t.ByKind(territory.KindSpawn) {
			if sp.Energy < sp.EnergyCapacity {
				sp.Energy += SpawnRegen
			}
		}
		refreshEnergy(t)
	}
}

// harvest moves miner yield into the container beside the source, or onto
// a pile when there is none or it is full.
func (c *Colony) harvest(t *territory.Territory) {
	perWork := c.economy.For(t.Name, t.Incubating).HarvestPerWork
	for _, a := range t.Agents {
		if a.Role != agents.RoleMiner {
			continue
		}
		var src *territory.Source
		for _, s := range t.Sources {
			if s.ID == a.Target {
				src = s
			}
		}
		if src == nil {
			continue
		}
		a.Pos = src.Pos

		yield := min(a.Parts[agents.PartWork]*perWork, int(src.IncomePerTick()))
		for _, box := range t.ByKind(territory.KindContainer) {
			if world.Chebyshev(box.Pos, src.Pos) <= 1 {
				moved := min(yield, box.FreeCapacity())
				box.Energy += moved
				yield -= moved
			}
		}
		if yield > 0 {
			dropPile(t, src, yield)
		}
	}
}

func dropPile(t *territory.Territory, src *territory.Source, amount int) {
	id := "pile-" + src.ID
	for _, p := range t.Piles {
		if p.ID == id {
			p.Amount += amount
			return
		}
	}
	t.Piles = append(t.Piles, &territory.Pile{ID: id, Pos: src.Pos, Amount: amount})
}

// perform carries out and clears an agent's assignment.
func (c *Colony) perform(a *agents.Agent) {
	as := a.Assignment
	if as == nil {
		return
	}
	a.Assignment = nil

	t := c.index[as.Room]
	if t == nil {
		return
	}
	if pos, ok := t.Lookup(as.Target); ok {
		a.Pos = pos
	}
	parts := a.Parts[agents.PartWork]

	switch category(as.Category) {
	case pickup:
		i := slices.IndexFunc(t.Piles, func(p *territory.Pile) bool { return p.ID == as.Target })
		if i < 0 {
			return
		}
		p := t.Piles[i]
		n := min(p.Amount, a.CarryCapacity()-a.Energy)
		p.Amount -= n
		a.Energy += n
		if p.Amount == 0 {
			t.Piles = slices.Delete(t.Piles, i, i+1)
		}

	case collect:
		if st := structure(t, as.Target); st != nil {
			n := min(st.Energy, a.CarryCapacity()-a.Energy)
			st.Energy -= n
			a.Energy += n
		}

	case supply:
		if st := structure(t, as.Target); st != nil {
			n := min(a.Energy, st.FreeCapacity())
			st.Energy += n
			a.Energy -= n
		}

	case repair:
		if st := structure(t, as.Target); st != nil {
			st.Hits = min(st.Hits+parts*RepairPerWork, st.HitsMax)
			a.Energy = max(a.Energy-parts, 0)
		}

	case build:
		c.build(t, a, as.Target, parts)

	case upgrade:
		a.Energy = max(a.Energy-parts*UpgradePerWork, 0)
	}
}

type action int

const (
	none action = iota
	pickup
	collect
	supply
	repair
	build
	upgrade
)

// category folds work categories into the action that carries them out.
func category(name string) action {
	switch work.Category(name) {
	case work.Pickup:
		return pickup
	case work.Collect:
		return collect
	case work.Supply, work.SupplyCritical:
		return supply
	case work.Repair, work.Fortify:
		return repair
	case work.Build, work.BuildRoad:
		return build
	case work.Upgrade:
		return upgrade
	}
	return none
}

func structure(t *territory.Territory, id world.ObjectID) *territory.Structure {
	for _, st := range t.Structures {
		if st.ID == id {
			return st
		}
	}
	return nil
}

// build spends energy on a site and turns it into a structure once complete.
// A completed spawn ends incubation.
func (c *Colony) build(t *territory.Territory, a *agents.Agent, id world.ObjectID, parts int) {
	i := slices.IndexFunc(t.Sites, func(s *territory.Site) bool { return s.ID == id })
	if i < 0 {
		return
	}
	site := t.Sites[i]
	spent := min(a.Energy, parts*BuildPerWork)
	site.Progress += spent
	a.Energy -= spent
	if site.Progress < site.ProgressTotal {
		return
	}

	t.Sites = slices.Delete(t.Sites, i, i+1)
	t.Structures = append(t.Structures, NewStructure(site.ID, site.Kind, site.Pos))
	c.emit(t.Name, "build", fmt.Sprintf("%s completed at %s", site.Kind, site.Pos))
	if site.Kind == territory.KindSpawn && t.Incubating {
		t.Incubating = false
		c.emit(t.Name, "incubation", fmt.Sprintf("%s is self-sufficient", t.Name))
	}
}

// age counts down agent lifetimes. Renewing agents standing at a home spawn
// are topped up instead.
func (c *Colony) age(t *territory.Territory) {
	spawn := t.Spawn()
	kept := t.Agents[:0]
	for _, a := range t.Agents {
		a.TicksToLive--
		if a.Renew && spawn != nil && world.Chebyshev(a.Pos, spawn.Pos) <= 1 && a.Pos.Room == spawn.Pos.Room {
			a.TicksToLive = agents.LifetimeDefault
		}
		if a.TicksToLive <= 0 {
			c.emit(t.Name, "expire", fmt.Sprintf("%s expired", a.Name))
			continue
		}
		kept = append(kept, a)
	}
	clear(t.Agents[len(kept):])
	t.Agents = kept
}
