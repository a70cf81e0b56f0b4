// Package world provides positions, the hex grid of rooms, terrain, and the
// path-distance oracle used for tie-breaking and sizing.
// Rooms are laid out on a hex grid using axial coordinates (q, r).
package world

import "fmt"

// RoomSize is the edge length of a room in tiles.
const RoomSize = 50

// RoomName identifies a room (and the territory that owns it).
type RoomName string

// Pos is a tile position inside a named room.
type Pos struct {
	Room RoomName `json:"room"`
	X    int      `json:"x"`
	Y    int      `json:"y"`
}

// String renders the position as "room(x,y)".
func (p Pos) String() string {
	return fmt.Sprintf("%s(%d,%d)", p.Room, p.X, p.Y)
}

// HexCoord locates a room on the hex grid using axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

// RoomNameFor returns the canonical room name for a grid coordinate.
func RoomNameFor(c HexCoord) RoomName {
	return RoomName(fmt.Sprintf("Q%dR%d", c.Q, c.R))
}

// HexNeighborDirections defines the six neighbor offsets in axial coordinates.
var HexNeighborDirections = [6]HexCoord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Neighbors returns the six adjacent room coordinates.
func (h HexCoord) Neighbors() [6]HexCoord {
	var result [6]HexCoord
	for i, dir := range HexNeighborDirections {
		result[i] = HexCoord{Q: h.Q + dir.Q, R: h.R + dir.R}
	}
	return result
}

// HexDistance returns the number of room transitions between two coordinates.
func HexDistance(a, b HexCoord) int {
	return max(abs(a.Q-b.Q), abs(a.R-b.R), abs(a.S()-b.S()))
}

// Chebyshev returns the tile distance between two positions, ignoring rooms.
func Chebyshev(a, b Pos) int {
	return max(abs(a.X-b.X), abs(a.Y-b.Y))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ObjectID identifies a game object (structure, source, pile, site or agent).
type ObjectID string
