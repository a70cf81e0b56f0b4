// Package work derives pending work items from a territory snapshot and
// matches idle agents to them by priority, eligibility, and proximity.
package work

import (
	"fmt"

	"github.com/talgya/colony/internal/world"
)

// Category is one of the fixed work categories.
type Category string

const (
	Pickup         Category = "pickup"
	Collect        Category = "collect"
	Supply         Category = "supply"
	SupplyCritical Category = "supplyCritical"
	Repair         Category = "repair"
	Build          Category = "build"
	BuildRoad      Category = "buildRoad"
	Fortify        Category = "fortify"
	Upgrade        Category = "upgrade"
)

// Categories lists every category in declaration order.
var Categories = []Category{
	Pickup, Collect, Supply, SupplyCritical, Repair, Build, BuildRoad, Fortify, Upgrade,
}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown work category %q", s)
}

// ParseRanking converts configured names into a ranking, highest first.
// Duplicates are rejected so the ranking stays a total order.
func ParseRanking(names []string) ([]Category, error) {
	seen := make(map[Category]bool, len(names))
	ranking := make([]Category, 0, len(names))
	for _, n := range names {
		c, err := ParseCategory(n)
		if err != nil {
			return nil, err
		}
		if seen[c] {
			return nil, fmt.Errorf("work category %q ranked twice", n)
		}
		seen[c] = true
		ranking = append(ranking, c)
	}
	return ranking, nil
}

// Target is the object a work item points at. Each concrete type carries
// only the fields its categories need.
type Target interface {
	ID() world.ObjectID
	Pos() world.Pos
	isTarget()
}

// PileTarget is a dropped resource heap (pickup).
type PileTarget struct {
	Object world.ObjectID
	At     world.Pos
	Amount int
}

// StoreTarget is a structure to draw from or fill (collect, supply,
// supplyCritical).
type StoreTarget struct {
	Object world.ObjectID
	At     world.Pos
	Energy int
	Free   int
}

// DamageTarget is a structure below its wanted hit points (repair, fortify).
type DamageTarget struct {
	Object  world.ObjectID
	At      world.Pos
	Hits    int
	HitsMax int
}

// SiteTarget is a construction site (build, buildRoad).
type SiteTarget struct {
	Object    world.ObjectID
	At        world.Pos
	Remaining int
}

// ControllerTarget is the owned controller (upgrade).
type ControllerTarget struct {
	Object world.ObjectID
	At     world.Pos
	Level  int
}

func (t PileTarget) ID() world.ObjectID       { return t.Object }
func (t StoreTarget) ID() world.ObjectID      { return t.Object }
func (t DamageTarget) ID() world.ObjectID     { return t.Object }
func (t SiteTarget) ID() world.ObjectID       { return t.Object }
func (t ControllerTarget) ID() world.ObjectID { return t.Object }

func (t PileTarget) Pos() world.Pos       { return t.At }
func (t StoreTarget) Pos() world.Pos      { return t.At }
func (t DamageTarget) Pos() world.Pos     { return t.At }
func (t SiteTarget) Pos() world.Pos       { return t.At }
func (t ControllerTarget) Pos() world.Pos { return t.At }

func (PileTarget) isTarget()       {}
func (StoreTarget) isTarget()      {}
func (DamageTarget) isTarget()     {}
func (SiteTarget) isTarget()       {}
func (ControllerTarget) isTarget() {}

// WorkItem is one unit of pending work with a concurrency cap.
type WorkItem struct {
	Category  Category `json:"category"`
	Target    Target   `json:"-"`
	MaxAgents int      `json:"max_agents"`
	Committed int      `json:"committed"`
}

// Capped reports whether no further agent may commit to the item.
func (w WorkItem) Capped() bool {
	return w.Committed >= w.MaxAgents
}
