// Package economy provides the equilibrium calculators: pure functions that
// turn economic parameters and live territory metrics into required agent
// counts and body sizes.
package economy

import (
	"math"

	"github.com/talgya/colony/internal/agents"
	"github.com/talgya/colony/internal/config"
	"github.com/talgya/colony/internal/territory"
)

const (
	NoStorageTimeLoss  = 1.5 // Workers walk further without central storage
	IncomeSaturation   = 0.8 // Keep workers just under source income
	HaulerOvershoot    = 1.1 // Absorb travel variance
	RemoteInefficiency = 1.2
	MaxLevelUpgraders  = 3 // Upgrader size cap at maximum controller level
)

// Metrics are the live territory figures the calculators consume.
type Metrics struct {
	Budget          int     // Energy capacity available for one agent
	SourceIncome    float64 // Energy per tick across all sources
	TripLength      float64 // Worker round trip between facility and sources
	HasStorage      bool
	StoredEnergy    int
	ControllerLevel int
}

// MaxAffordableReps returns how many pattern repetitions the budget buys,
// bounded by the role's repetition cap.
func MaxAffordableReps(budget int, spec agents.RoleSpec) int {
	cost := spec.Cost()
	if cost <= 0 || budget <= 0 {
		return 0
	}
	return min(budget/cost, spec.MaxReps)
}

// WorkerPlan is a required worker count at a given body size.
type WorkerPlan struct {
	Count      int
	Size       int
	Throughput float64 // Energy per tick one worker moves at equilibrium
}

// WorkersFromIncome sizes the workforce from source income. Each worker
// fills up at the source, walks the round trip, and the cycle is stretched
// by NoStorageTimeLoss while no storage exists.
func WorkersFromIncome(p config.Params, spec agents.RoleSpec, m Metrics) WorkerPlan {
	size := MaxAffordableReps(m.Budget, spec)
	per := spec.PerRep()
	if size == 0 || per[agents.PartWork] == 0 || per[agents.PartCarry] == 0 || p.HarvestPerWork <= 0 {
		return WorkerPlan{}
	}

	load := float64(size * per[agents.PartCarry] * agents.CarryPerPart)
	harvest := load / float64(size*per[agents.PartWork]*p.HarvestPerWork)
	cycle := harvest + m.TripLength
	if !m.HasStorage {
		cycle *= NoStorageTimeLoss
	}
	throughput := load / cycle

	return WorkerPlan{
		Count:      int(math.Ceil(IncomeSaturation * m.SourceIncome / throughput)),
		Size:       size,
		Throughput: throughput,
	}
}

// WorkersFromJobs sizes the workforce from the repair, construction and
// fortify backlog: two repetitions of work per job, capped at maxWorkers.
func WorkersFromJobs(jobs, workerSize, maxWorkers int) int {
	if jobs <= 0 || workerSize <= 0 {
		return 0
	}
	n := int(math.Ceil(2.0 / float64(workerSize) * float64(jobs)))
	return min(n, maxWorkers)
}

// HaulerRequiredSize returns the carry repetitions needed to move income
// energy per tick over a round trip of tripLength tiles.
func HaulerRequiredSize(income, tripLength float64, carryPerRep int) int {
	if income <= 0 || carryPerRep <= 0 {
		return 0
	}
	if tripLength < 1 {
		tripLength = 1
	}
	perRepRate := float64(carryPerRep) / tripLength
	return int(math.Ceil(HaulerOvershoot * (income / perRepRate)))
}

// HaulerPlan is a number of haulers of equal size serving one source.
type HaulerPlan struct {
	Count int
	Size  int
}

// SplitHaulers splits a required size that exceeds the largest affordable
// body into several haulers. Every split hauler is built at full size so
// Count*Size never falls below required.
func SplitHaulers(required, maxSize int) HaulerPlan {
	if required <= 0 || maxSize <= 0 {
		return HaulerPlan{}
	}
	if required <= maxSize {
		return HaulerPlan{Count: 1, Size: required}
	}
	count := math.Ceil(float64(required) / float64(maxSize))
	size := math.Ceil(float64(maxSize) * count / math.Ceil(count))
	return HaulerPlan{Count: int(count), Size: int(size)}
}

// UpgraderSize grows by one step per UpgraderStep energy stored above the
// upgrader buffer. At maximum controller level it is capped.
func UpgraderSize(p config.Params, stored, level int) int {
	surplus := max(stored-p.UpgraderBuffer, 0)
	size := 1 + surplus/p.UpgraderStep
	if level >= territory.MaxControllerLevel {
		size = min(size, MaxLevelUpgraders)
	}
	return size
}

// UpgraderPlan is a required upgrader count at a given body size.
type UpgraderPlan struct {
	Count int
	Reps  int
}

// PlanUpgraders converts an upgrader size into bodies. While one affordable
// body covers the load a single upgrader is built at exactly that size;
// past that point every upgrader is built at full size, so the plan jumps
// from one body to two full ones.
func PlanUpgraders(p config.Params, spec agents.RoleSpec, size, budget int) UpgraderPlan {
	maxReps := MaxAffordableReps(budget, spec)
	need := size * p.UpgraderRepsPerStep
	if maxReps == 0 || need <= 0 {
		return UpgraderPlan{}
	}
	if need <= maxReps {
		return UpgraderPlan{Count: 1, Reps: need}
	}
	return UpgraderPlan{
		Count: int(math.Ceil(float64(need) / float64(maxReps))),
		Reps:  maxReps,
	}
}

// RemoteHaulingDemand sums the hauling need reported by remote mining
// directives, inflated for inefficiency.
func RemoteHaulingDemand(reports []float64) float64 {
	total := 0.0
	for _, r := range reports {
		total += r
	}
	return total * RemoteInefficiency
}
