package main

import (
	"flag"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sph/config"
	"github.com/pthm-cable/sph/sim"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	workers := flag.Int("workers", 0, "Worker goroutines for the force passes (0 = use config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	opts := sim.Options{
		Workers:        *workers,
		OutputDir:      *outputDir,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		Logger:         logger,
	}

	s, err := sim.New(cfg, opts)
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}
	defer func() {
		s.Perf().Stats().LogStats()
		if err := s.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}()

	if *headless {
		// Headless mode - pure CPU simulation, no raylib needed
		slog.Info("starting headless simulation",
			"particles", s.Len(),
			"max_ticks", *maxTicks,
		)
		runHeadless(s, cfg.Physics.DT, *maxTicks)
		return
	}

	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "SPH Fluid")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	newViewer(s, cfg).run(*maxTicks)
}

func runHeadless(s *sim.Simulation, dt float64, maxTicks int) {
	for {
		s.Step(dt)

		if maxTicks > 0 && int(s.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", s.Tick())
			return
		}
	}
}
