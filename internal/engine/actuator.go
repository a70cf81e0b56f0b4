package engine

import (
	"fmt"

	"github.com/talgya/colony/internal/agents"
	"github.com/talgya/colony/internal/production"
	"github.com/talgya/colony/internal/territory"
	"github.com/talgya/colony/internal/world"
)

// SpawnActuator builds agents at the facility territory's spawn, paying from
// its spawns and extensions. Directives it cannot afford yet are deferred.
type SpawnActuator struct {
	spawner    *agents.Spawner
	lookup     func(world.RoomName) *territory.Territory
	registryOf func(world.RoomName) agents.Registry
}

// NewSpawnActuator creates an actuator resolving territories through lookup.
// Every facility builds against reg unless WithFacilityRegistry says otherwise.
func NewSpawnActuator(reg agents.Registry, lookup func(world.RoomName) *territory.Territory) *SpawnActuator {
	return &SpawnActuator{
		spawner:    agents.NewSpawner(reg),
		lookup:     lookup,
		registryOf: func(world.RoomName) agents.Registry { return reg },
	}
}

// WithFacilityRegistry resolves the role caps a facility builds under, such
// as the registry lowered by its economic profile's rep limits.
func (s *SpawnActuator) WithFacilityRegistry(f func(world.RoomName) agents.Registry) *SpawnActuator {
	s.registryOf = f
	return s
}

// Produce implements Actuator.
func (s *SpawnActuator) Produce(bd production.BuildDirective) (*agents.Agent, error) {
	facility := s.lookup(bd.Facility)
	if facility == nil || facility.Spawn() == nil {
		return nil, fmt.Errorf("territory %s: %w", bd.Facility, production.ErrNoProductionFacility)
	}
	spec, err := s.registryOf(bd.Facility).Lookup(bd.Role)
	if err != nil {
		return nil, err
	}
	if bd.Reps != agents.Unbounded && bd.Reps*spec.Cost() > facility.EnergyAvailable {
		return nil, fmt.Errorf("%s x%d needs %d, have %d: %w",
			bd.Role, bd.Reps, bd.Reps*spec.Cost(), facility.EnergyAvailable, agents.ErrInsufficientEnergy)
	}

	order := bd.Order()
	order.MaxReps = spec.MaxReps
	a, cost, err := s.spawner.Spawn(order, facility.Spawn().Pos, facility.EnergyAvailable)
	if err != nil {
		return nil, err
	}
	pay(facility, cost)

	home := s.lookup(bd.Home)
	if home == nil {
		home = facility
		a.Home = facility.Name
	}
	home.Agents = append(home.Agents, a)
	return a, nil
}

// pay drains energy from spawns and extensions in structure order.
func pay(t *territory.Territory, cost int) {
	for _, st := range t.ByKind(territory.KindSpawn, territory.KindExtension) {
		take := min(st.Energy, cost)
		st.Energy -= take
		cost -= take
		if cost == 0 {
			break
		}
	}
	refreshEnergy(t)
}

// refreshEnergy recomputes the production budget from spawns and extensions.
func refreshEnergy(t *territory.Territory) {
	t.EnergyAvailable, t.EnergyCapacity = 0, 0
	for _, st := range t.ByKind(territory.KindSpawn, territory.KindExtension) {
		t.EnergyAvailable += st.Energy
		t.EnergyCapacity += st.EnergyCapacity
	}
}
