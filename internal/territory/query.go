package territory

import (
	"github.com/talgya/colony/internal/agents"
	"github.com/talgya/colony/internal/world"
)

// ByKind returns the structures of the given kinds, in snapshot order.
func (t *Territory) ByKind(kinds ...StructureKind) []*Structure {
	var out []*Structure
	for _, s := range t.Structures {
		for _, k := range kinds {
			if s.Kind == k {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

func (t *Territory) first(kind StructureKind) *Structure {
	for _, s := range t.Structures {
		if s.Kind == kind {
			return s
		}
	}
	return nil
}

// Storage returns the storage structure, or nil.
func (t *Territory) Storage() *Structure { return t.first(KindStorage) }

// Terminal returns the terminal structure, or nil.
func (t *Territory) Terminal() *Structure { return t.first(KindTerminal) }

// Spawn returns the first production facility, or nil.
func (t *Territory) Spawn() *Structure { return t.first(KindSpawn) }

// HasStorageClass reports whether any storage or container exists.
func (t *Territory) HasStorageClass() bool {
	return t.Storage() != nil || t.first(KindContainer) != nil
}

// StoredEnergy returns the energy held in storage.
func (t *Territory) StoredEnergy() int {
	if s := t.Storage(); s != nil {
		return s.Energy
	}
	return 0
}

// EnergyConsumers counts structures that must be kept supplied.
func (t *Territory) EnergyConsumers() int {
	return len(t.ByKind(KindSpawn, KindExtension, KindTower, KindLab))
}

// StorageLink returns a link within two tiles of storage, or nil.
func (t *Territory) StorageLink() *Structure {
	st := t.Storage()
	if st == nil {
		return nil
	}
	for _, l := range t.ByKind(KindLink) {
		if world.Chebyshev(l.Pos, st.Pos) <= 2 {
			return l
		}
	}
	return nil
}

// Exists reports whether an object with the id is still present.
func (t *Territory) Exists(id world.ObjectID) bool {
	_, ok := t.Lookup(id)
	return ok
}

// Lookup returns the position of any object by id.
func (t *Territory) Lookup(id world.ObjectID) (world.Pos, bool) {
	if t.Controller != nil && t.Controller.ID == id {
		return t.Controller.Pos, true
	}
	for _, s := range t.Structures {
		if s.ID == id {
			return s.Pos, true
		}
	}
	for _, s := range t.Sources {
		if s.ID == id {
			return s.Pos, true
		}
	}
	for _, p := range t.Piles {
		if p.ID == id {
			return p.Pos, true
		}
	}
	for _, s := range t.Sites {
		if s.ID == id {
			return s.Pos, true
		}
	}
	return world.Pos{}, false
}

// WithRole returns the homed agents having the role.
func (t *Territory) WithRole(role agents.Role) []*agents.Agent {
	var out []*agents.Agent
	for _, a := range t.Agents {
		if a.Role == role {
			out = append(out, a)
		}
	}
	return out
}

// CountRole counts homed agents having the role.
func (t *Territory) CountRole(role agents.Role) int {
	return len(t.WithRole(role))
}

// CountTargeting counts homed agents of the role whose spawn-time target is id.
func (t *Territory) CountTargeting(role agents.Role, id world.ObjectID) int {
	n := 0
	for _, a := range t.Agents {
		if a.Role == role && a.Target == id {
			n++
		}
	}
	return n
}

// Anchor returns the reference point for distances from this territory:
// the spawn, else the controller, else the room centre.
func (t *Territory) Anchor() world.Pos {
	if s := t.Spawn(); s != nil {
		return s.Pos
	}
	if t.Controller != nil {
		return t.Controller.Pos
	}
	return world.Pos{Room: t.Name, X: world.RoomSize / 2, Y: world.RoomSize / 2}
}

// SourceIncome sums the per-tick income of every source.
func (t *Territory) SourceIncome() float64 {
	total := 0.0
	for _, s := range t.Sources {
		total += s.IncomePerTick()
	}
	return total
}
