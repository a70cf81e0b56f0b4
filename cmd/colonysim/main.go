// Command colonysim runs the colony controller over a generated world.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/talgya/colony/internal/api"
	"github.com/talgya/colony/internal/config"
	"github.com/talgya/colony/internal/engine"
	"github.com/talgya/colony/internal/persistence"
	"github.com/talgya/colony/internal/world"
)

var (
	cfgFile     string
	cycles      uint64
	seed        int64
	territories int
)

var rootCmd = &cobra.Command{
	Use:          "colonysim",
	Short:        "Run the colony controller over a generated world.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("cycles") {
			cfg.Sim.Cycles = cycles
		}
		if cmd.Flags().Changed("seed") {
			cfg.Sim.Seed = seed
		}
		if cmd.Flags().Changed("territories") {
			cfg.Sim.Territories = territories
		}
		return run(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&cfgFile, "config", "c", "", "YAML config file")
	rootCmd.Flags().Uint64Var(&cycles, "cycles", 0, "stop after this many cycles (0 runs until interrupted)")
	rootCmd.Flags().Int64Var(&seed, "seed", 0, "world generation seed")
	rootCmd.Flags().IntVar(&territories, "territories", 0, "number of seeded territories")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	slog.SetDefault(cfg.Log.NewLogger(os.Stdout))

	// ── Database ──────────────────────────────────────────────────────
	if err := os.MkdirAll(filepath.Dir(cfg.DB.Path), 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	db, err := persistence.Open(cfg.DB.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DB.Path)

	// ── World (always regenerated, deterministic from seed) ───────────
	gen := world.DefaultGenConfig()
	gen.Seed = cfg.Sim.Seed
	gen.Radius = cfg.Sim.Radius
	atlas := world.Generate(gen)
	for t, n := range world.TileCounts(atlas) {
		slog.Info("terrain", "type", world.TileName(t), "count", n)
	}

	seeds := world.PlaceTerritories(atlas, cfg.Sim.Territories, cfg.Sim.Seed)
	if len(seeds) == 0 {
		return fmt.Errorf("no room in a radius %d world fits a territory", cfg.Sim.Radius)
	}
	ts, opts := engine.Seed(atlas, seeds)

	// ── Colony ────────────────────────────────────────────────────────
	colony, err := engine.NewColony(ts, cfg.Economy, world.NewTerrainOracle(atlas),
		append(opts, engine.WithAssist(cfg.Assist))...)
	if err != nil {
		return err
	}

	loop := engine.NewLoop(cfg.Sim.Interval)
	loop.Cycle = db.LastCycle()
	if cfg.Sim.Cycles > 0 {
		loop.Limit = loop.Cycle + cfg.Sim.Cycles
	}
	loop.OnCycle = colony.RunCycle
	loop.OnReport = func(cycle uint64) {
		sum := colony.Summary()
		slog.Info("cycle report", "cycle", cycle, "agents", sum.Agents, "assignments", sum.Assignments)
		if err := db.SaveColonyState(colony); err != nil {
			slog.Error("save failed", "error", err)
		}
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.API.Port > 0 {
		server := &api.Server{Colony: colony, DB: db, Port: cfg.API.Port, RateLimit: cfg.API.RateLimit}
		server.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				slog.Error("HTTP API shutdown", "error", err)
			}
		}()
		fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.API.Port)
	}

	fmt.Printf("Colony seeded: %d territories on %d rooms, capital %s.\n", len(ts), len(atlas.Rooms), seeds[0].Room)
	if loop.Cycle > 0 {
		fmt.Printf("Resuming cycle numbering at %d\n", loop.Cycle)
	}

	loop.Run(ctx)
	fmt.Println("Colony stopped. History saved.")
	return nil
}
