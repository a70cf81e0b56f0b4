// Room generation using layered simplex noise.
// Every room samples the same continuous noise field at its own offset so
// terrain is coherent across room borders.
package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds atlas generation parameters.
type GenConfig struct {
	Radius    int     // Hex radius of the room grid
	Seed      int64   // Random seed (0 = random)
	WallLevel float64 // Noise threshold above which a tile is wall (0.0–1.0)
	SwampLvl  float64 // Moisture threshold above which a tile is swamp (0.0–1.0)
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Radius:    3,
		Seed:      0,
		WallLevel: 0.72,
		SwampLvl:  0.68,
	}
}

// SmallTestConfig returns a single-ring atlas for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Radius:    1,
		Seed:      42,
		WallLevel: 0.75,
		SwampLvl:  0.70,
	}
}

// Generate creates every room within the configured radius.
func Generate(cfg GenConfig) *Atlas {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	wallNoise := opensimplex.NewNormalized(seed)
	wetNoise := opensimplex.NewNormalized(seed + 1)

	a := NewAtlas(cfg.Radius)

	for q := -cfg.Radius; q <= cfg.Radius; q++ {
		for r := -cfg.Radius; r <= cfg.Radius; r++ {
			coord := HexCoord{Q: q, R: r}
			if !a.InBounds(coord) {
				continue
			}

			room := &Room{Name: RoomNameFor(coord), Coord: coord}

			// Hex axial → cartesian room origin, in tiles.
			ox := (float64(q) + float64(r)*0.5) * RoomSize
			oy := float64(r) * math.Sqrt(3.0) / 2.0 * RoomSize

			for y := 0; y < RoomSize; y++ {
				for x := 0; x < RoomSize; x++ {
					fx, fy := ox+float64(x), oy+float64(y)
					wall := octaveNoise(wallNoise, fx, fy, 3, 0.06, 0.5)
					wet := octaveNoise(wetNoise, fx, fy, 2, 0.04, 0.5)
					room.Tiles[y][x] = deriveTile(wall, wet, x, y, cfg)
				}
			}

			a.Set(room)
		}
	}

	return a
}

// deriveTile determines a tile from noise samples. Room borders stay open
// so neighbouring rooms are always connected.
func deriveTile(wall, wet float64, x, y int, cfg GenConfig) Tile {
	if x == 0 || y == 0 || x == RoomSize-1 || y == RoomSize-1 {
		return TilePlain
	}
	if wall > cfg.WallLevel {
		return TileWall
	}
	if wet > cfg.SwampLvl {
		return TileSwamp
	}
	return TilePlain
}

// octaveNoise sums several noise octaves and renormalizes to 0..1.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxValue := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxValue += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxValue
}

// TileCounts returns a summary of tile distribution across the atlas.
func TileCounts(a *Atlas) map[Tile]int {
	counts := make(map[Tile]int)
	for _, room := range a.Rooms {
		for y := range room.Tiles {
			for _, t := range room.Tiles[y] {
				counts[t]++
			}
		}
	}
	return counts
}

// TileName returns a human-readable tile name.
func TileName(t Tile) string {
	switch t {
	case TilePlain:
		return "plain"
	case TileSwamp:
		return "swamp"
	case TileWall:
		return "wall"
	default:
		return "unknown"
	}
}
