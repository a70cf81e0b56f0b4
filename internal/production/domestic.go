package production

import (
	"github.com/talgya/colony/internal/agents"
	"github.com/talgya/colony/internal/economy"
	"github.com/talgya/colony/internal/territory"
	"github.com/talgya/colony/internal/work"
	"github.com/talgya/colony/internal/world"
)

// domestic covers the territory's own economy, most critical role first.
func (s *Scheduler) domestic(ctx *Context) (BuildDirective, bool) {
	for _, check := range []func(*Context) (BuildDirective, bool){
		suppliers,
		linker,
		mineralSupplier,
		miners,
		haulers,
		workers,
		upgraders,
	} {
		if bd, ok := check(ctx); ok {
			return bd, true
		}
	}
	return BuildDirective{}, false
}

func suppliers(ctx *Context) (BuildDirective, bool) {
	t, p := ctx.Territory, ctx.Params
	if t.EnergyConsumers() <= 1 {
		return BuildDirective{}, false
	}

	high := 0
	for _, d := range ctx.Directives {
		if d.HighPriority() {
			high++
		}
	}
	required := p.MinSuppliers
	if p.DirectivesPerExtraSupplier > 0 {
		required += high / p.DirectivesPerExtraSupplier
	}
	if t.CountRole(agents.RoleSupplier) >= required {
		return BuildDirective{}, false
	}

	var target world.ObjectID
	switch {
	case t.Storage() != nil:
		target = t.Storage().ID
	case t.Spawn() != nil:
		target = t.Spawn().ID
	case t.Controller != nil:
		target = t.Controller.ID
	}
	return BuildDirective{Role: agents.RoleSupplier, Target: target, Reps: p.SupplierReps}, true
}

func linker(ctx *Context) (BuildDirective, bool) {
	t := ctx.Territory
	link := t.StorageLink()
	if link == nil || t.CountRole(agents.RoleLinker) > 0 {
		return BuildDirective{}, false
	}
	return BuildDirective{Role: agents.RoleLinker, Target: link.ID, Reps: ctx.Params.LinkerReps}, true
}

func mineralSupplier(ctx *Context) (BuildDirective, bool) {
	t := ctx.Territory
	term := t.Terminal()
	if term == nil || len(t.ByKind(territory.KindLab)) == 0 || t.CountRole(agents.RoleMineralSupplier) > 0 {
		return BuildDirective{}, false
	}
	return BuildDirective{Role: agents.RoleMineralSupplier, Target: term.ID, Reps: ctx.Params.MineralSupplierReps}, true
}

func miners(ctx *Context) (BuildDirective, bool) {
	t := ctx.Territory
	if t.Incubating {
		return BuildDirective{}, false
	}
	spec := ctx.spec(agents.RoleMiner)
	for _, src := range t.Sources {
		if t.CountTargeting(agents.RoleMiner, src.ID) < ctx.Params.MinersPerSource {
			reps := economy.MaxAffordableReps(t.EnergyCapacity, spec)
			return BuildDirective{Role: agents.RoleMiner, Target: src.ID, Reps: reps}, true
		}
	}
	return BuildDirective{}, false
}

func haulers(ctx *Context) (BuildDirective, bool) {
	t := ctx.Territory
	storage := t.Storage()
	if storage == nil {
		return BuildDirective{}, false
	}

	spec := ctx.spec(agents.RoleHauler)
	carry := spec.PerRep()[agents.PartCarry] * agents.CarryPerPart
	maxSize := economy.MaxAffordableReps(t.EnergyCapacity, spec)
	for _, src := range t.Sources {
		if src.LinkServed {
			continue
		}
		trip := 2 * ctx.Oracle.Distance(src.Pos, storage.Pos)
		required := economy.HaulerRequiredSize(src.IncomePerTick(), float64(trip), carry)
		plan := economy.SplitHaulers(required, maxSize)
		if t.CountTargeting(agents.RoleHauler, src.ID) < plan.Count {
			return BuildDirective{Role: agents.RoleHauler, Target: src.ID, Reps: plan.Size}, true
		}
	}
	return BuildDirective{}, false
}

func workers(ctx *Context) (BuildDirective, bool) {
	t := ctx.Territory
	if t.Incubating || !t.HasStorageClass() {
		return BuildDirective{}, false
	}

	spec := ctx.spec(agents.RoleWorker)
	var required, size int
	if t.Storage() != nil {
		size = economy.MaxAffordableReps(t.EnergyCapacity, spec)
		jobs := work.NewCatalog(t, ctx.Params).JobCount()
		required = economy.WorkersFromJobs(jobs, size, ctx.Params.MaxWorkers)
	} else {
		plan := economy.WorkersFromIncome(ctx.Params, spec, metrics(ctx))
		required, size = plan.Count, plan.Size
	}

	if t.CountRole(agents.RoleWorker) >= required {
		return BuildDirective{}, false
	}
	return BuildDirective{Role: agents.RoleWorker, Reps: size}, true
}

func upgraders(ctx *Context) (BuildDirective, bool) {
	t := ctx.Territory
	if t.Storage() == nil || !t.Owned() {
		return BuildDirective{}, false
	}

	spec := ctx.spec(agents.RoleUpgrader)
	size := economy.UpgraderSize(ctx.Params, t.StoredEnergy(), t.Level())
	plan := economy.PlanUpgraders(ctx.Params, spec, size, t.EnergyCapacity)
	if t.CountRole(agents.RoleUpgrader) >= plan.Count {
		return BuildDirective{}, false
	}
	return BuildDirective{Role: agents.RoleUpgrader, Target: t.Controller.ID, Reps: plan.Reps}, true
}

// metrics gathers the live figures for the income calculator. The trip is
// the mean round trip between the facility and each source.
func metrics(ctx *Context) economy.Metrics {
	t := ctx.Territory
	trip := 0.0
	if len(t.Sources) > 0 {
		total := 0
		for _, src := range t.Sources {
			total += 2 * ctx.distanceTo(src.Pos)
		}
		trip = float64(total) / float64(len(t.Sources))
	}
	return economy.Metrics{
		Budget:          t.EnergyCapacity,
		SourceIncome:    t.SourceIncome(),
		TripLength:      trip,
		HasStorage:      t.Storage() != nil,
		StoredEnergy:    t.StoredEnergy(),
		ControllerLevel: t.Level(),
	}
}
