package agents

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInconsistentConfiguration is returned when a rule references a role
// without a registered body pattern. It is fatal at startup.
var ErrInconsistentConfiguration = errors.New("inconsistent configuration")

// Role is a named behavioral category.
type Role string

const (
	RoleWorker          Role = "worker"
	RoleHauler          Role = "hauler"
	RoleMiner           Role = "miner"
	RoleLinker          Role = "linker"
	RoleMineralSupplier Role = "mineralSupplier"
	RoleSupplier        Role = "supplier"
	RoleUpgrader        Role = "upgrader"
	RoleClaimer         Role = "claimer"
	RoleScout           Role = "scout"
	RoleDefender        Role = "defender"
	RoleDismantler      Role = "dismantler"
	RoleRemoteMiner     Role = "remoteMiner"
)

// RoleSpec is the static body configuration of a role.
type RoleSpec struct {
	Role    Role
	Pattern []Part // Repeated once per repetition
	MaxReps int
}

// Cost returns the energy cost of one pattern repetition.
func (s RoleSpec) Cost() int {
	cost := 0
	for _, p := range s.Pattern {
		cost += PartCost[p]
	}
	return cost
}

// PerRep tallies the parts of one repetition.
func (s RoleSpec) PerRep() PartCounts {
	return Count(s.Pattern)
}

// Body expands the pattern reps times, clamped to MaxReps.
func (s RoleSpec) Body(reps int) []Part {
	reps = min(reps, s.MaxReps)
	body := make([]Part, 0, reps*len(s.Pattern))
	for i := 0; i < reps; i++ {
		body = append(body, s.Pattern...)
	}
	return body
}

// Lifetime returns the nominal lifetime of an agent built from this role.
func (s RoleSpec) Lifetime() int {
	if s.PerRep()[PartClaim] > 0 {
		return LifetimeClaim
	}
	return LifetimeDefault
}

// Registry maps roles to their body configuration.
type Registry map[Role]RoleSpec

// DefaultRegistry returns the built-in role table.
func DefaultRegistry() Registry {
	specs := []RoleSpec{
		{RoleWorker, []Part{PartWork, PartCarry, PartMove}, 16},
		{RoleHauler, []Part{PartCarry, PartCarry, PartMove}, 16},
		{RoleMiner, []Part{PartWork, PartWork, PartMove}, 3},
		{RoleLinker, []Part{PartCarry, PartCarry, PartMove}, 8},
		{RoleMineralSupplier, []Part{PartCarry, PartCarry, PartMove}, 8},
		{RoleSupplier, []Part{PartCarry, PartCarry, PartMove}, 10},
		{RoleUpgrader, []Part{PartWork, PartWork, PartCarry, PartMove}, 12},
		{RoleClaimer, []Part{PartClaim, PartMove}, 1},
		{RoleScout, []Part{PartMove}, 1},
		{RoleDefender, []Part{PartTough, PartAttack, PartMove}, 10},
		{RoleDismantler, []Part{PartWork, PartMove}, 25},
		{RoleRemoteMiner, []Part{PartWork, PartWork, PartCarry, PartMove}, 3},
	}
	r := make(Registry, len(specs))
	for _, s := range specs {
		r[s.Role] = s
	}
	return r
}

// Lookup returns the spec of a role.
func (r Registry) Lookup(role Role) (RoleSpec, error) {
	s, ok := r[role]
	if !ok || len(s.Pattern) == 0 {
		return RoleSpec{}, fmt.Errorf("role %q has no body pattern: %w", role, ErrInconsistentConfiguration)
	}
	return s, nil
}

// Validate checks every referenced role has a usable body pattern.
func (r Registry) Validate(roles ...Role) error {
	var errs []error
	for _, role := range roles {
		s, err := r.Lookup(role)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if s.MaxReps <= 0 {
			errs = append(errs, fmt.Errorf("role %q has no repetition cap: %w", role, ErrInconsistentConfiguration))
		}
	}
	return errors.Join(errs...)
}

// WithLimits returns a copy of the registry with repetition caps lowered to
// the given per-role limits. Limits never raise a cap.
func (r Registry) WithLimits(limits map[Role]int) Registry {
	out := make(Registry, len(r))
	for role, s := range r {
		if l, ok := limits[role]; ok && l > 0 && l < s.MaxReps {
			s.MaxReps = l
		}
		out[role] = s
	}
	return out
}

// Roles returns the registered roles in name order.
func (r Registry) Roles() []Role {
	roles := make([]Role, 0, len(r))
	for role := range r {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}
