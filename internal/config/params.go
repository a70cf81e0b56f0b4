package config

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/talgya/colony/internal/world"
)

// ErrInvalidParams is returned when an economic profile cannot be used.
var ErrInvalidParams = errors.New("invalid economic parameters")

// Params is one complete economic profile. A territory uses exactly one
// profile, chosen once when its scheduler context is built.
type Params struct {
	// Catalog thresholds.
	FortifyLevel     int     `koanf:"fortify_level"`
	MinPickupAmount  int     `koanf:"min_pickup_amount"`
	CollectThreshold int     `koanf:"collect_threshold"`
	RepairRatio      float64 `koanf:"repair_ratio"` // Roads/containers repaired below this share of max hits

	// Workforce.
	MaxWorkers                 int `koanf:"max_workers"`
	MinersPerSource            int `koanf:"miners_per_source"`
	MinSuppliers               int `koanf:"min_suppliers"`
	SupplierReps               int `koanf:"supplier_reps"`
	DirectivesPerExtraSupplier int `koanf:"directives_per_extra_supplier"`
	LinkerReps                 int `koanf:"linker_reps"`
	MineralSupplierReps        int `koanf:"mineral_supplier_reps"`
	IncubationSendCount        int `koanf:"incubation_send_count"`

	// Storage buffers and income constants.
	UpgraderBuffer      int `koanf:"upgrader_buffer"`
	UpgraderStep        int `koanf:"upgrader_step"`
	UpgraderRepsPerStep int `koanf:"upgrader_reps_per_step"`
	HarvestPerWork      int `koanf:"harvest_per_work"`

	RepLimits map[string]int `koanf:"rep_limits"` // Per-role repetition caps
	WorkCaps  map[string]int `koanf:"work_caps"`  // Max concurrent agents per work category
	Ranking   []string       `koanf:"ranking"`    // Work categories, highest priority first
}

// DefaultRanking is the work priority order, highest first.
var DefaultRanking = []string{
	"supplyCritical", "supply", "pickup", "collect",
	"repair", "build", "buildRoad", "fortify", "upgrade",
}

// DefaultParams returns the profile of an established territory.
func DefaultParams() Params {
	return Params{
		FortifyLevel:               100000,
		MinPickupAmount:            50,
		CollectThreshold:           500,
		RepairRatio:                0.7,
		MaxWorkers:                 6,
		MinersPerSource:            1,
		MinSuppliers:               1,
		SupplierReps:               6,
		DirectivesPerExtraSupplier: 10,
		LinkerReps:                 4,
		MineralSupplierReps:        4,
		IncubationSendCount:        2,
		UpgraderBuffer:             75000,
		UpgraderStep:               20000,
		UpgraderRepsPerStep:        5,
		HarvestPerWork:             2,
		RepLimits:                  map[string]int{},
		WorkCaps: map[string]int{
			"pickup": 1, "collect": 1, "supply": 1, "supplyCritical": 1,
			"repair": 1, "build": 3, "buildRoad": 2, "fortify": 1, "upgrade": 4,
		},
		Ranking: slices.Clone(DefaultRanking),
	}
}

// DefaultIncubatingParams returns the profile of a territory that is being
// bootstrapped by another one.
func DefaultIncubatingParams() Params {
	p := DefaultParams()
	p.FortifyLevel = 10000
	p.MaxWorkers = 4
	p.MinSuppliers = 0
	p.SupplierReps = 3
	p.UpgraderBuffer = 20000
	p.RepLimits = map[string]int{"worker": 8, "hauler": 8}
	p.WorkCaps["build"] = 4
	return p
}

// Validate reports unusable values.
func (p Params) Validate() error {
	var errs []error
	if p.UpgraderStep <= 0 {
		errs = append(errs, fmt.Errorf("upgrader_step must be positive: %w", ErrInvalidParams))
	}
	if p.HarvestPerWork <= 0 {
		errs = append(errs, fmt.Errorf("harvest_per_work must be positive: %w", ErrInvalidParams))
	}
	if p.DirectivesPerExtraSupplier <= 0 {
		errs = append(errs, fmt.Errorf("directives_per_extra_supplier must be positive: %w", ErrInvalidParams))
	}
	if p.RepairRatio <= 0 || p.RepairRatio > 1 {
		errs = append(errs, fmt.Errorf("repair_ratio %.2f out of (0,1]: %w", p.RepairRatio, ErrInvalidParams))
	}
	if len(p.Ranking) == 0 {
		errs = append(errs, fmt.Errorf("ranking is empty: %w", ErrInvalidParams))
	}
	return errors.Join(errs...)
}

// Clone returns a deep copy so a territory never shares mutable maps.
func (p Params) Clone() Params {
	p.RepLimits = maps.Clone(p.RepLimits)
	p.WorkCaps = maps.Clone(p.WorkCaps)
	p.Ranking = slices.Clone(p.Ranking)
	return p
}

// Override holds per-territory values that replace the profile's.
type Override struct {
	FortifyLevel int `koanf:"fortify_level"`
}

// EconomyConfig holds both profiles and per-territory overrides.
type EconomyConfig struct {
	Normal     Params              `koanf:"normal"`
	Incubating Params              `koanf:"incubating"`
	Overrides  map[string]Override `koanf:"overrides"`
}

// For selects the profile for a territory. The incubating profile replaces
// the normal one wholesale; an override fortify level wins outright.
func (e EconomyConfig) For(room world.RoomName, incubating bool) Params {
	p := e.Normal
	if incubating {
		p = e.Incubating
	}
	p = p.Clone()
	if o, ok := e.Overrides[string(room)]; ok && o.FortifyLevel > 0 {
		p.FortifyLevel = o.FortifyLevel
	}
	return p
}

// Validate checks both profiles.
func (e EconomyConfig) Validate() error {
	if err := e.Normal.Validate(); err != nil {
		return fmt.Errorf("economy.normal: %w", err)
	}
	if err := e.Incubating.Validate(); err != nil {
		return fmt.Errorf("economy.incubating: %w", err)
	}
	return nil
}
