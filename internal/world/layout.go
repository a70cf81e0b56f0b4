// Territory placement. Picks rooms and anchor tiles for seeded territories.
package world

import (
	"math/rand"
	"sort"
)

// TerritorySeed holds the anchor positions of an initial territory.
type TerritorySeed struct {
	Room       RoomName
	Coord      HexCoord
	Spawn      Pos
	Controller Pos
	Sources    []Pos
	Score      float64 // Share of open tiles in the room
}

// PlaceTerritories scores every room by open terrain and seeds up to count
// territories on the best rooms, at least two rooms apart.
func PlaceTerritories(a *Atlas, count int, seed int64) []TerritorySeed {
	rng := rand.New(rand.NewSource(seed + 200))

	type scored struct {
		room  *Room
		score float64
	}
	var candidates []scored
	for _, room := range a.Rooms {
		candidates = append(candidates, scored{room, openShare(room)})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].room.Name < candidates[j].room.Name
	})

	var seeds []TerritorySeed
	for _, c := range candidates {
		if len(seeds) >= count {
			break
		}
		tooClose := false
		for _, s := range seeds {
			if HexDistance(s.Coord, c.room.Coord) < 2 {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}

		ts := TerritorySeed{
			Room:       c.room.Name,
			Coord:      c.room.Coord,
			Spawn:      openTile(c.room, rng),
			Controller: openTile(c.room, rng),
			Score:      c.score,
		}
		sources := 1 + rng.Intn(2)
		for i := 0; i < sources; i++ {
			ts.Sources = append(ts.Sources, openTile(c.room, rng))
		}
		seeds = append(seeds, ts)
	}
	return seeds
}

func openShare(r *Room) float64 {
	open := 0
	for y := range r.Tiles {
		for _, t := range r.Tiles[y] {
			if t != TileWall {
				open++
			}
		}
	}
	return float64(open) / float64(RoomSize*RoomSize)
}

// openTile draws random interior tiles until it finds a plain one.
func openTile(r *Room, rng *rand.Rand) Pos {
	for i := 0; i < 200; i++ {
		x, y := 3+rng.Intn(RoomSize-6), 3+rng.Intn(RoomSize-6)
		if r.At(x, y) == TilePlain {
			return Pos{Room: r.Name, X: x, Y: y}
		}
	}
	return Pos{Room: r.Name, X: RoomSize / 2, Y: RoomSize / 2}
}
