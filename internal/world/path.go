package world

// PathOracle estimates travel cost between two positions. Implementations
// may approximate but must be deterministic and symmetric within a cycle.
type PathOracle interface {
	Distance(a, b Pos) int
}

// PathFunc adapts a plain function to a PathOracle.
type PathFunc func(a, b Pos) int

// Distance calls f(a, b).
func (f PathFunc) Distance(a, b Pos) int {
	return f(a, b)
}

// Tile step costs used by TerrainOracle.
const (
	costPlain = 1
	costSwamp = 5
	costWall  = 3 // detour estimate around a blocking tile
)

// TerrainOracle walks the straight line between two positions and sums tile
// costs. Cross-room distances add RoomSize per room transition.
type TerrainOracle struct {
	Atlas *Atlas
}

// NewTerrainOracle creates an oracle over a generated atlas.
func NewTerrainOracle(a *Atlas) *TerrainOracle {
	return &TerrainOracle{Atlas: a}
}

// Distance implements PathOracle.
func (o *TerrainOracle) Distance(a, b Pos) int {
	// Normalize endpoint order so the walk is identical in both directions.
	if less(b, a) {
		a, b = b, a
	}

	if a.Room != b.Room {
		ra, rb := o.Atlas.Get(a.Room), o.Atlas.Get(b.Room)
		if ra == nil || rb == nil {
			return Chebyshev(a, b)
		}
		return HexDistance(ra.Coord, rb.Coord)*RoomSize + Chebyshev(a, b)
	}

	room := o.Atlas.Get(a.Room)
	steps := Chebyshev(a, b)
	if room == nil || steps == 0 {
		return steps
	}

	cost := 0
	for i := 1; i <= steps; i++ {
		x := a.X + (b.X-a.X)*i/steps
		y := a.Y + (b.Y-a.Y)*i/steps
		switch room.At(x, y) {
		case TileSwamp:
			cost += costSwamp
		case TileWall:
			cost += costWall
		default:
			cost += costPlain
		}
	}
	return cost
}

func less(a, b Pos) bool {
	if a.Room != b.Room {
		return a.Room < b.Room
	}
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}
