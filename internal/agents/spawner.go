// Agent spawning: turns a production order into a fresh agent snapshot.
// This is the harness actuator; the decision core never calls it directly.
package agents

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/talgya/colony/internal/world"
)

// Unbounded asks for the largest body the budget affords.
const Unbounded = -1

// ErrInsufficientEnergy is returned when the budget cannot pay for even one
// repetition of the requested role.
var ErrInsufficientEnergy = errors.New("insufficient energy")

// Order describes the agent to materialize.
type Order struct {
	Role    Role
	Reps    int // Pattern repetitions, or Unbounded
	MaxReps int // Lowers the role cap when positive
	Home    world.RoomName
	Target  world.ObjectID
	Renew   bool
}

// Spawner creates agents from orders.
type Spawner struct {
	registry Registry
	serial   uint64
}

// NewSpawner creates a spawner over the given role registry.
func NewSpawner(reg Registry) *Spawner {
	return &Spawner{registry: reg}
}

// Spawn builds the agent for an order at the facility position, spending at
// most budget energy. It returns the agent and the energy spent.
func (s *Spawner) Spawn(o Order, at world.Pos, budget int) (*Agent, int, error) {
	spec, err := s.registry.Lookup(o.Role)
	if err != nil {
		return nil, 0, err
	}

	limit := spec.MaxReps
	if o.MaxReps > 0 {
		limit = min(limit, o.MaxReps)
	}
	affordable := min(budget/spec.Cost(), limit)
	reps := o.Reps
	if reps == Unbounded || reps > affordable {
		reps = affordable
	}
	if reps <= 0 {
		return nil, 0, fmt.Errorf("spawn %s (cost %d, budget %d): %w", o.Role, spec.Cost(), budget, ErrInsufficientEnergy)
	}

	s.serial++
	id := uuid.New()
	body := spec.Body(reps)

	return &Agent{
		ID:          world.ObjectID(id.String()),
		Name:        fmt.Sprintf("%s-%d-%s", o.Role, s.serial, id.String()[:4]),
		Role:        o.Role,
		Home:        o.Home,
		Pos:         at,
		Parts:       Count(body),
		Target:      o.Target,
		TicksToLive: spec.Lifetime(),
		Renew:       o.Renew,
	}, reps * spec.Cost(), nil
}
