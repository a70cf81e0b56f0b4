package work

import (
	"errors"
	"fmt"
	"slices"

	"github.com/talgya/colony/internal/agents"
)

// Rule says who may take a category: an allowed-role set and a capability
// predicate over the agent's current body and load.
type Rule struct {
	Roles   []agents.Role
	Capable func(a *agents.Agent) bool
}

// Rules is the capability table, indexed by category.
type Rules map[Category]Rule

func canGather(a *agents.Agent) bool    { return a.CanCarry() && !a.Full() }
func canDeliver(a *agents.Agent) bool   { return a.CanCarry() && a.Energy > 0 }
func canSpendWork(a *agents.Agent) bool { return a.CanWork() && a.Energy > 0 }

// DefaultRules returns the built-in capability table.
func DefaultRules() Rules {
	carriers := []agents.Role{agents.RoleSupplier, agents.RoleHauler, agents.RoleWorker}
	return Rules{
		Pickup:         {Roles: []agents.Role{agents.RoleHauler, agents.RoleWorker}, Capable: canGather},
		Collect:        {Roles: []agents.Role{agents.RoleHauler, agents.RoleWorker}, Capable: canGather},
		SupplyCritical: {Roles: carriers, Capable: canDeliver},
		Supply:         {Roles: carriers, Capable: canDeliver},
		Repair:         {Roles: []agents.Role{agents.RoleWorker}, Capable: canSpendWork},
		Build:          {Roles: []agents.Role{agents.RoleWorker}, Capable: canSpendWork},
		BuildRoad:      {Roles: []agents.Role{agents.RoleWorker}, Capable: canSpendWork},
		Fortify:        {Roles: []agents.Role{agents.RoleWorker}, Capable: canSpendWork},
		Upgrade:        {Roles: []agents.Role{agents.RoleUpgrader, agents.RoleWorker}, Capable: canSpendWork},
	}
}

// Eligible narrows the ranking to the categories the agent may perform.
// Ranking order is preserved.
func (r Rules) Eligible(a *agents.Agent, ranking []Category) []Category {
	out := make([]Category, 0, len(ranking))
	for _, cat := range ranking {
		rule, ok := r[cat]
		if !ok || !slices.Contains(rule.Roles, a.Role) {
			continue
		}
		if rule.Capable != nil && !rule.Capable(a) {
			continue
		}
		out = append(out, cat)
	}
	return out
}

// Validate checks that every role named by a rule has a body pattern.
// A rule with no roles is valid and simply never matches.
func (r Rules) Validate(reg agents.Registry) error {
	var errs []error
	for _, cat := range Categories {
		rule, ok := r[cat]
		if !ok {
			continue
		}
		if err := reg.Validate(rule.Roles...); err != nil {
			errs = append(errs, fmt.Errorf("%s rule: %w", cat, err))
		}
	}
	return errors.Join(errs...)
}
