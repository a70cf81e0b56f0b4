package world

import "fmt"

// Tile is the terrain of a single room tile.
type Tile uint8

const (
	TilePlain Tile = iota
	TileSwamp
	TileWall
)

// Room holds the terrain grid of one room.
type Room struct {
	Name  RoomName                 `json:"name"`
	Coord HexCoord                 `json:"coord"`
	Tiles [RoomSize][RoomSize]Tile `json:"-"`
}

// At returns the tile at (x, y). Out-of-range coordinates read as wall.
func (r *Room) At(x, y int) Tile {
	if x < 0 || y < 0 || x >= RoomSize || y >= RoomSize {
		return TileWall
	}
	return r.Tiles[y][x]
}

// Atlas holds every room of the world keyed by name.
type Atlas struct {
	Rooms  map[RoomName]*Room `json:"-"`
	Radius int                `json:"radius"`
}

// NewAtlas creates an empty atlas with the given hex radius.
func NewAtlas(radius int) *Atlas {
	return &Atlas{
		Rooms:  make(map[RoomName]*Room),
		Radius: radius,
	}
}

// Get returns the named room, or nil if unknown.
func (a *Atlas) Get(name RoomName) *Room {
	return a.Rooms[name]
}

// Set places a room in the atlas.
func (a *Atlas) Set(r *Room) {
	a.Rooms[r.Name] = r
}

// InBounds returns true if the coordinate is within the atlas radius.
func (a *Atlas) InBounds(c HexCoord) bool {
	return HexDistance(HexCoord{}, c) <= a.Radius
}

// String returns a summary of the atlas.
func (a *Atlas) String() string {
	return fmt.Sprintf("Atlas(radius=%d, rooms=%d)", a.Radius, len(a.Rooms))
}
