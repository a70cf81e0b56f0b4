package engine

import (
	"fmt"
	"sort"

	"github.com/talgya/colony/internal/production"
	"github.com/talgya/colony/internal/territory"
	"github.com/talgya/colony/internal/world"
)

// Starting layout of the capital.
const (
	capitalLevel      = 2
	capitalExtensions = 5
	spawnSiteProgress = 15000
)

// Seed builds the initial territories from placement seeds. The first seed
// becomes the capital with a spawn; every other seed is an owned outpost
// without one, bootstrapped from the capital through a claim directive.
// The nearest unseeded room gets vision and remote mining directives.
func Seed(a *world.Atlas, seeds []world.TerritorySeed) ([]*territory.Territory, []Option) {
	if len(seeds) == 0 {
		return nil, nil
	}

	var ts []*territory.Territory
	var opts []Option
	capital := seeds[0]
	ts = append(ts, newCapital(capital))

	for _, s := range seeds[1:] {
		out := newOutpost(s)
		ts = append(ts, out)
		opts = append(opts, WithDirectives(capital.Room, production.Directive{
			Name:     "bootstrap-" + string(s.Room),
			Category: production.DirClaim,
			Pos:      s.Controller,
		}))
	}

	if remote, ok := nearestUnseeded(a, seeds); ok {
		center := world.Pos{Room: remote.Name, X: world.RoomSize / 2, Y: world.RoomSize / 2}
		opts = append(opts, WithDirectives(capital.Room,
			production.Directive{Name: "vision-" + string(remote.Name), Category: production.DirVision, Pos: center},
			production.Directive{Name: "mine-" + string(remote.Name), Category: production.DirRemoteMine, Pos: center},
		))
	}
	return ts, opts
}

func newTerritory(s world.TerritorySeed, level int) *territory.Territory {
	t := &territory.Territory{
		Name:       s.Room,
		Controller: &territory.Controller{ID: id(s.Room, "controller", 0), Pos: s.Controller, Level: level, Owned: true},
	}
	for i, p := range s.Sources {
		t.Sources = append(t.Sources, &territory.Source{ID: id(s.Room, "source", i), Pos: p, Capacity: territory.SourceCapacity})
	}
	return t
}

func newCapital(s world.TerritorySeed) *territory.Territory {
	t := newTerritory(s, capitalLevel)

	spawn := NewStructure(id(s.Room, "spawn", 0), territory.KindSpawn, s.Spawn)
	spawn.Energy = spawn.EnergyCapacity
	t.Structures = append(t.Structures, spawn)

	for i := 0; i < capitalExtensions; i++ {
		p := clampPos(world.Pos{Room: s.Room, X: s.Spawn.X - 2 + i, Y: s.Spawn.Y + 2})
		t.Sites = append(t.Sites, &territory.Site{ID: id(s.Room, "extension", i), Kind: territory.KindExtension, Pos: p, ProgressTotal: 3000})
	}
	if len(t.Sources) > 0 {
		src := t.Sources[0].Pos
		box := NewStructure(id(s.Room, "container", 0), territory.KindContainer, clampPos(world.Pos{Room: s.Room, X: src.X + 1, Y: src.Y}))
		t.Structures = append(t.Structures, box)
		t.Sites = append(t.Sites, &territory.Site{ID: id(s.Room, "road", 0), Kind: territory.KindRoad, Pos: clampPos(world.Pos{Room: s.Room, X: src.X - 1, Y: src.Y}), ProgressTotal: 300})
	}
	refreshEnergy(t)
	return t
}

func newOutpost(s world.TerritorySeed) *territory.Territory {
	t := newTerritory(s, 1)
	t.Incubating = true
	t.Sites = append(t.Sites, &territory.Site{ID: id(s.Room, "spawn", 0), Kind: territory.KindSpawn, Pos: s.Spawn, ProgressTotal: spawnSiteProgress})
	return t
}

func id(room world.RoomName, kind string, n int) world.ObjectID {
	return world.ObjectID(fmt.Sprintf("%s-%s-%d", room, kind, n))
}

func clampPos(p world.Pos) world.Pos {
	p.X = min(max(p.X, 1), world.RoomSize-2)
	p.Y = min(max(p.Y, 1), world.RoomSize-2)
	return p
}

// nearestUnseeded returns the unseeded room closest to the capital.
func nearestUnseeded(a *world.Atlas, seeds []world.TerritorySeed) (*world.Room, bool) {
	seeded := make(map[world.RoomName]bool, len(seeds))
	for _, s := range seeds {
		seeded[s.Room] = true
	}
	var rooms []*world.Room
	for _, r := range a.Rooms {
		if !seeded[r.Name] {
			rooms = append(rooms, r)
		}
	}
	if len(rooms) == 0 {
		return nil, false
	}
	origin := seeds[0].Coord
	sort.Slice(rooms, func(i, j int) bool {
		di, dj := world.HexDistance(origin, rooms[i].Coord), world.HexDistance(origin, rooms[j].Coord)
		if di != dj {
			return di < dj
		}
		return rooms[i].Name < rooms[j].Name
	})
	return rooms[0], true
}
