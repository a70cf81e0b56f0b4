package work

import (
	"github.com/talgya/colony/internal/agents"
	"github.com/talgya/colony/internal/config"
	"github.com/talgya/colony/internal/territory"
	"github.com/talgya/colony/internal/world"
)

// Catalog lists work items from a territory snapshot. It never caches:
// every call reads the snapshot as it is at call time.
type Catalog struct {
	territory *territory.Territory
	params    config.Params
	ledger    map[world.ObjectID]agents.Assignment
}

// NewCatalog creates a catalog over a territory snapshot.
func NewCatalog(t *territory.Territory, params config.Params) *Catalog {
	return &Catalog{territory: t, params: params}
}

// ListWorkItems returns the current work items of a category. The result is
// empty, never nil, when nothing qualifies.
func (c *Catalog) ListWorkItems(cat Category) []WorkItem {
	return c.list(cat, "")
}

// JobCount sums the repair, construction and fortify backlog.
func (c *Catalog) JobCount() int {
	return len(c.targets(Repair)) + len(c.targets(Build)) +
		len(c.targets(BuildRoad)) + len(c.targets(Fortify))
}

// list builds items with committed counts, ignoring the agent exclude.
func (c *Catalog) list(cat Category, exclude world.ObjectID) []WorkItem {
	targets := c.targets(cat)
	items := make([]WorkItem, 0, len(targets))
	maxAgents := c.maxAgents(cat)
	for _, tg := range targets {
		items = append(items, WorkItem{
			Category:  cat,
			Target:    tg,
			MaxAgents: maxAgents,
			Committed: c.committed(cat, tg.ID(), exclude),
		})
	}
	return items
}

func (c *Catalog) maxAgents(cat Category) int {
	if n, ok := c.params.WorkCaps[string(cat)]; ok {
		return n
	}
	return 1
}

// committed counts commitments made earlier this cycle plus the snapshot
// assignments of agents not reassigned since.
func (c *Catalog) committed(cat Category, id, exclude world.ObjectID) int {
	match := func(as agents.Assignment) bool {
		return as.Category == string(cat) && as.Target == id
	}

	n := 0
	for agentID, as := range c.ledger {
		if agentID != exclude && match(as) {
			n++
		}
	}
	for _, a := range c.territory.Agents {
		if a.ID == exclude || a.Assignment == nil {
			continue
		}
		if _, reassigned := c.ledger[a.ID]; reassigned {
			continue
		}
		if match(*a.Assignment) {
			n++
		}
	}
	return n
}

// targets applies the category predicate to the snapshot.
func (c *Catalog) targets(cat Category) []Target {
	t := c.territory
	var out []Target

	switch cat {
	case Pickup:
		for _, p := range t.Piles {
			if p.Amount >= c.params.MinPickupAmount {
				out = append(out, PileTarget{Object: p.ID, At: p.Pos, Amount: p.Amount})
			}
		}

	case Collect:
		for _, s := range t.ByKind(territory.KindContainer) {
			if s.Energy > c.params.CollectThreshold {
				out = append(out, store(s))
			}
		}

	case SupplyCritical:
		for _, s := range t.ByKind(territory.KindSpawn, territory.KindExtension) {
			if s.FreeCapacity() > 0 {
				out = append(out, store(s))
			}
		}

	case Supply:
		for _, s := range t.ByKind(territory.KindTower) {
			if s.FreeCapacity() > 0 {
				out = append(out, store(s))
			}
		}

	case Repair:
		for _, s := range t.Structures {
			if c.needsRepair(s) {
				out = append(out, damage(s))
			}
		}

	case Build, BuildRoad:
		for _, s := range t.Sites {
			if (s.Kind == territory.KindRoad) == (cat == BuildRoad) {
				out = append(out, SiteTarget{Object: s.ID, At: s.Pos, Remaining: s.ProgressTotal - s.Progress})
			}
		}

	case Fortify:
		for _, s := range t.ByKind(territory.KindWall, territory.KindRampart) {
			if s.Hits < c.params.FortifyLevel && s.Hits < s.HitsMax {
				out = append(out, damage(s))
			}
		}

	case Upgrade:
		if t.Owned() {
			ctl := t.Controller
			out = append(out, ControllerTarget{Object: ctl.ID, At: ctl.Pos, Level: ctl.Level})
		}
	}

	return out
}

// needsRepair excludes barriers (fortify handles them). Roads and containers
// decay constantly and are only repaired once well below max hits.
func (c *Catalog) needsRepair(s *territory.Structure) bool {
	switch s.Kind {
	case territory.KindWall, territory.KindRampart:
		return false
	case territory.KindRoad, territory.KindContainer:
		return float64(s.Hits) < c.params.RepairRatio*float64(s.HitsMax)
	default:
		return s.Hits < s.HitsMax
	}
}

func store(s *territory.Structure) StoreTarget {
	return StoreTarget{Object: s.ID, At: s.Pos, Energy: s.Energy, Free: s.FreeCapacity()}
}

func damage(s *territory.Structure) DamageTarget {
	return DamageTarget{Object: s.ID, At: s.Pos, Hits: s.Hits, HitsMax: s.HitsMax}
}
