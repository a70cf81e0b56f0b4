// Package config loads colony settings with koanf: built-in defaults, then
// an optional YAML file, then COLONY_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override. A double underscore
// separates key levels: COLONY_ECONOMY__NORMAL__MAX_WORKERS.
const EnvPrefix = "COLONY_"

type Config struct {
	Log     LogConfig     `koanf:"log"`
	DB      DBConfig      `koanf:"db"`
	API     APIConfig     `koanf:"api"`
	Sim     SimConfig     `koanf:"sim"`
	Economy EconomyConfig `koanf:"economy"`
	Assist  AssistConfig  `koanf:"assist"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type DBConfig struct {
	Path string `koanf:"path"`
}

type APIConfig struct {
	Port      int `koanf:"port"`       // 0 disables the HTTP API
	RateLimit int `koanf:"rate_limit"` // Requests per minute per client, 0 disables
}

type SimConfig struct {
	Seed        int64         `koanf:"seed"`
	Radius      int           `koanf:"radius"`
	Territories int           `koanf:"territories"`
	Interval    time.Duration `koanf:"interval"`
	Cycles      uint64        `koanf:"cycles"` // 0 runs until interrupted
}

// AssistConfig controls the cross-territory assist stage.
type AssistConfig struct {
	Enabled bool `koanf:"enabled"`
	// LifetimeFraction of the candidate agent's nominal lifetime that travel
	// to the borrowing territory may consume.
	LifetimeFraction float64 `koanf:"lifetime_fraction"`
}

// Load reads configuration from defaults, the optional file at path, and
// the environment.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	setDefaults(k)

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Economy.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(k *koanf.Koanf) {
	k.Set("log.level", "info")
	k.Set("log.format", "text")
	k.Set("db.path", "data/colony.db")
	k.Set("api.port", 8080)
	k.Set("api.rate_limit", 120)

	k.Set("sim.seed", 42)
	k.Set("sim.radius", 3)
	k.Set("sim.territories", 2)
	k.Set("sim.interval", "500ms")
	k.Set("sim.cycles", 0)

	k.Set("assist.enabled", false)
	k.Set("assist.lifetime_fraction", 0.3)

	for name, p := range map[string]Params{
		"normal":     DefaultParams(),
		"incubating": DefaultIncubatingParams(),
	} {
		prefix := "economy." + name + "."
		k.Set(prefix+"fortify_level", p.FortifyLevel)
		k.Set(prefix+"min_pickup_amount", p.MinPickupAmount)
		k.Set(prefix+"collect_threshold", p.CollectThreshold)
		k.Set(prefix+"repair_ratio", p.RepairRatio)
		k.Set(prefix+"max_workers", p.MaxWorkers)
		k.Set(prefix+"miners_per_source", p.MinersPerSource)
		k.Set(prefix+"min_suppliers", p.MinSuppliers)
		k.Set(prefix+"supplier_reps", p.SupplierReps)
		k.Set(prefix+"directives_per_extra_supplier", p.DirectivesPerExtraSupplier)
		k.Set(prefix+"linker_reps", p.LinkerReps)
		k.Set(prefix+"mineral_supplier_reps", p.MineralSupplierReps)
		k.Set(prefix+"upgrader_buffer", p.UpgraderBuffer)
		k.Set(prefix+"upgrader_step", p.UpgraderStep)
		k.Set(prefix+"upgrader_reps_per_step", p.UpgraderRepsPerStep)
		k.Set(prefix+"harvest_per_work", p.HarvestPerWork)
		k.Set(prefix+"incubation_send_count", p.IncubationSendCount)
		k.Set(prefix+"rep_limits", toAny(p.RepLimits))
		k.Set(prefix+"work_caps", toAny(p.WorkCaps))
		k.Set(prefix+"ranking", p.Ranking)
	}
}

func toAny(m map[string]int) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
