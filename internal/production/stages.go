package production

import (
	"github.com/talgya/colony/internal/agents"
	"github.com/talgya/colony/internal/economy"
	"github.com/talgya/colony/internal/territory"
	"github.com/talgya/colony/internal/world"
)

// incubationTargets returns the owned, still incubating territories this one
// is bootstrapping through a claim directive, nearest first.
func incubationTargets(ctx *Context) []*territory.Territory {
	claimed := make(map[world.RoomName]bool)
	for _, d := range ctx.Directives {
		if d.Category == DirClaim {
			claimed[d.Pos.Room] = true
		}
	}
	var out []*territory.Territory
	for _, peer := range ctx.peersByDistance() {
		if claimed[peer.Territory.Name] && peer.Territory.Owned() && peer.Territory.Incubating {
			out = append(out, peer.Territory)
		}
	}
	return out
}

// incubation sends renewable miners, then renewable workers, to each
// territory being bootstrapped.
func (s *Scheduler) incubation(ctx *Context) (BuildDirective, bool) {
	targets := incubationTargets(ctx)
	if len(targets) == 0 {
		return BuildDirective{}, false
	}
	budget := ctx.Territory.EnergyCapacity

	miner := ctx.spec(agents.RoleMiner)
	for _, tgt := range targets {
		for _, src := range tgt.Sources {
			if tgt.CountTargeting(agents.RoleMiner, src.ID) == 0 {
				return BuildDirective{
					Role:   agents.RoleMiner,
					Target: src.ID,
					Home:   tgt.Name,
					Reps:   economy.MaxAffordableReps(budget, miner),
					Renew:  true,
				}, true
			}
		}
	}

	worker := ctx.spec(agents.RoleWorker)
	for _, tgt := range targets {
		sent := 0
		for _, a := range tgt.WithRole(agents.RoleWorker) {
			if a.Renew {
				sent++
			}
		}
		if sent < ctx.Params.IncubationSendCount {
			return BuildDirective{
				Role:  agents.RoleWorker,
				Home:  tgt.Name,
				Reps:  economy.MaxAffordableReps(budget, worker),
				Renew: true,
			}, true
		}
	}
	return BuildDirective{}, false
}

// assigned hands each placed directive, by category priority and then
// distance, to its handler.
func (s *Scheduler) assigned(ctx *Context) (BuildDirective, bool) {
	for _, cat := range AssignedOrder {
		h, ok := s.handlers[cat]
		if !ok {
			continue
		}
		for _, d := range ctx.byCategory(cat) {
			if bd, ok := h.Handle(ctx, d); ok {
				return bd, true
			}
		}
	}
	return BuildDirective{}, false
}

// inferred adds an unbounded hauler to storage when remote mining reports
// more hauling need than the carry parts already serving it.
func (s *Scheduler) inferred(ctx *Context) (BuildDirective, bool) {
	t := ctx.Territory
	storage := t.Storage()
	if s.hauling == nil || storage == nil {
		return BuildDirective{}, false
	}

	var reports []float64
	for _, d := range ctx.Directives {
		if d.Category == DirRemoteMine {
			reports = append(reports, s.hauling.HaulingNeed(d))
		}
	}
	demand := economy.RemoteHaulingDemand(reports)

	capacity := 0
	for _, a := range t.WithRole(agents.RoleHauler) {
		if a.Target == storage.ID {
			capacity += a.Parts[agents.PartCarry]
		}
	}
	if float64(capacity) >= demand {
		return BuildDirective{}, false
	}
	return BuildDirective{Role: agents.RoleHauler, Target: storage.ID, Reps: agents.Unbounded}, true
}

// assistPeers lends this territory's facility to owned territories without
// one. A peer's directive is accepted only if the agent can reach it within
// the configured fraction of its lifetime.
func (s *Scheduler) assistPeers(ctx *Context) (BuildDirective, bool) {
	if !s.assist.Enabled {
		return BuildDirective{}, false
	}
	host := ctx.Territory
	for _, peer := range ctx.peersByDistance() {
		if peer.Territory.Spawn() != nil {
			continue
		}

		borrowed := *peer.Territory
		borrowed.EnergyAvailable = host.EnergyAvailable
		borrowed.EnergyCapacity = host.EnergyCapacity
		sub := *peer
		sub.Territory = &borrowed

		bd, ok := s.run(&sub, s.localStages())
		if !ok {
			continue
		}
		spec, err := ctx.Registry.Lookup(bd.Role)
		if err != nil {
			continue
		}
		travel := ctx.distanceTo(peer.Territory.Anchor())
		if float64(travel) > s.assist.LifetimeFraction*float64(spec.Lifetime()) {
			s.logger.Debug("assist out of reach",
				"territory", host.Name, "peer", peer.Territory.Name, "role", bd.Role, "travel", travel)
			continue
		}
		if bd.Home == "" {
			bd.Home = peer.Territory.Name
		}
		bd.Stage = StageAssist
		return bd, true
	}
	return BuildDirective{}, false
}
