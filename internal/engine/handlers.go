package engine

import (
	"github.com/talgya/colony/internal/agents"
	"github.com/talgya/colony/internal/production"
	"github.com/talgya/colony/internal/territory"
	"github.com/talgya/colony/internal/world"
)

// directiveRoles maps each directive category to the role that serves it.
var directiveRoles = map[production.DirectiveCategory]agents.Role{
	production.DirVision:     agents.RoleScout,
	production.DirClaim:      agents.RoleClaimer,
	production.DirGuard:      agents.RoleDefender,
	production.DirColony:     agents.RoleWorker,
	production.DirDestroyer:  agents.RoleDismantler,
	production.DirSiege:      agents.RoleDefender,
	production.DirRemoteMine: agents.RoleRemoteMiner,
}

// staffer keeps one agent of its role assigned to each directive. The
// directive name doubles as the agent's spawn-time target.
type staffer struct {
	role agents.Role
}

func (h staffer) Handle(ctx *production.Context, d production.Directive) (production.BuildDirective, bool) {
	target := world.ObjectID(d.Name)
	for _, a := range ctx.Territory.WithRole(h.role) {
		if a.Target == target {
			return production.BuildDirective{}, false
		}
	}
	return production.BuildDirective{Role: h.role, Target: target, Reps: agents.Unbounded}, true
}

// claimer staffs claim directives until the target room is owned; the
// incubation stage takes over from there.
type claimer struct {
	staffer
}

func (h claimer) Handle(ctx *production.Context, d production.Directive) (production.BuildDirective, bool) {
	if peer, ok := ctx.Peers[d.Pos.Room]; ok && peer.Territory.Owned() {
		return production.BuildDirective{}, false
	}
	return h.staffer.Handle(ctx, d)
}

// DefaultHandlers returns scheduler options registering a handler for every
// directive category.
func DefaultHandlers() []production.Option {
	var opts []production.Option
	for cat, role := range directiveRoles {
		var h production.Handler = staffer{role: role}
		if cat == production.DirClaim {
			h = claimer{staffer{role: role}}
		}
		opts = append(opts, production.WithHandler(cat, h))
	}
	return opts
}

// remoteSourceIncome is the assumed yield of an unscouted remote source.
const remoteSourceIncome = territory.SourceCapacity / territory.SourceRegenTicks

// remoteHauling estimates the carry parts a remote mining directive needs
// to ship its income home to the owning territory's storage.
type remoteHauling struct {
	colony *Colony
}

func (r *remoteHauling) HaulingNeed(d production.Directive) float64 {
	owner := r.owner(d)
	if owner == nil {
		return 0
	}
	storage := owner.Storage()
	if storage == nil {
		return 0
	}
	trip := 2 * r.colony.oracle.Distance(d.Pos, storage.Pos)
	return float64(remoteSourceIncome*trip) / agents.CarryPerPart
}

func (r *remoteHauling) owner(d production.Directive) *territory.Territory {
	for room, ds := range r.colony.directives {
		for _, other := range ds {
			if other.Name == d.Name {
				return r.colony.index[room]
			}
		}
	}
	return nil
}
