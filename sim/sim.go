// Package sim drives the SPH fluid: it owns the particle buffers and runs
// one complete simulation tick per Step call.
package sim

import (
	"errors"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sph/components"
	"github.com/pthm-cable/sph/config"
	"github.com/pthm-cable/sph/kernel"
	"github.com/pthm-cable/sph/systems"
	"github.com/pthm-cable/sph/telemetry"
)

// ErrIndexOutOfRange is returned for a particle index outside 0..N-1.
var ErrIndexOutOfRange = errors.New("particle index out of range")

// Options holds runtime settings that are not part of the config file.
type Options struct {
	Workers        int     // Overrides physics.workers when > 0
	OutputDir      string  // Directory for CSV output (empty = disabled)
	LogStats       bool    // Log window and perf stats through slog
	StatsWindowSec float64 // Overrides telemetry.stats_window when > 0
	Logger         *slog.Logger

	// OnStats, if set, receives every flushed stats window.
	OnStats func(telemetry.WindowStats)
}

// Simulation holds the complete fluid state. It is driven by a single
// caller; readers may inspect it only between Step calls.
type Simulation struct {
	cfg *config.Config

	particles *components.Particles
	grid      *systems.HashGrid
	fluid     systems.Fluid
	pool      *systems.Pool

	bounds     r2.Vec
	elasticity float64
	lookahead  float64

	// Telemetry
	perf      *telemetry.PerfCollector
	collector *telemetry.Collector
	output    *telemetry.OutputManager
	logger    *slog.Logger
	logStats  bool
	onStats   func(telemetry.WindowStats)

	tick         int32
	lastForceSum r2.Vec
}

// New validates cfg and allocates a simulation with particles on the start
// lattice. cfg is copied; later changes to it have no effect.
func New(cfg *config.Config, opts Options) (*Simulation, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	cfg = cfg.Clone()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fluid, err := newFluid(cfg.Fluid)
	if err != nil {
		return nil, err
	}

	n := cfg.Particles.Count
	particles := components.NewParticles(n)
	copy(particles.Position, systems.SpawnGrid(n, cfg.Particles.Spacing))
	systems.JitterPositions(particles.Position, cfg.Particles.Jitter, cfg.Particles.Seed)
	particles.SyncPredicted()

	grid, err := systems.NewHashGrid(n, cfg.Fluid.DensityRadius, r2.Vec{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}

	workers := cfg.Physics.Workers
	if opts.Workers > 0 {
		workers = opts.Workers
	}

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	s := &Simulation{
		cfg:        cfg,
		particles:  particles,
		grid:       grid,
		fluid:      fluid,
		pool:       systems.NewPool(workers),
		bounds:     r2.Vec{X: cfg.World.BoundsX, Y: cfg.World.BoundsY},
		elasticity: cfg.Fluid.CollisionElasticity,
		lookahead:  cfg.Physics.Lookahead,
		perf:       telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		collector:  telemetry.NewCollector(statsWindow, cfg.Physics.DT),
		output:     output,
		logger:     logger,
		logStats:   opts.LogStats,
		onStats:    opts.OnStats,
	}

	// Densities are valid from the start so a snapshot taken before the
	// first tick can be colored.
	s.rebuild(particles.Predicted)
	s.fluid.ComputeDensities(s.pool, s.grid, particles)

	logger.Info("simulation created",
		"particles", n,
		"workers", s.pool.Workers(),
		"radius", cfg.Fluid.DensityRadius,
		"density_kernel", cfg.Derived.DensityKernel.String(),
		"viscosity_kernel", cfg.Derived.ViscosityKernel.String(),
		"output_dir", output.Dir(),
	)
	return s, nil
}

// newFluid builds the force solver and its kernels from validated parameters.
func newFluid(f config.FluidConfig) (systems.Fluid, error) {
	densityFamily, viscosityFamily := f.Families()
	dk, err := kernel.New(densityFamily, f.DensityRadius)
	if err != nil {
		return systems.Fluid{}, fmt.Errorf("%w: density kernel: %v", config.ErrInvalidConfig, err)
	}
	vk, err := kernel.New(viscosityFamily, f.DensityRadius)
	if err != nil {
		return systems.Fluid{}, fmt.Errorf("%w: viscosity kernel: %v", config.ErrInvalidConfig, err)
	}
	return systems.Fluid{
		Mass:            f.Mass,
		GasConstant:     f.GasConstant,
		RestDensity:     f.RestDensity,
		Viscosity:       f.Viscosity,
		Gravity:         f.Gravity,
		DensityKernel:   dk,
		ViscosityKernel: vk,
	}, nil
}

// rebuild re-indexes the grid. The buffers never change size, so a count
// mismatch is a programming error.
func (s *Simulation) rebuild(points []r2.Vec) {
	if err := s.grid.Rebuild(points, s.pool); err != nil {
		panic(fmt.Sprintf("sim: %v", err))
	}
}

// Len returns the particle count.
func (s *Simulation) Len() int { return s.particles.Len() }

// Tick returns the number of completed ticks.
func (s *Simulation) Tick() int32 { return s.tick }

// Bounds returns the size of the origin-centered simulation box.
func (s *Simulation) Bounds() r2.Vec { return s.bounds }

// Config returns a copy of the active configuration, including tuning changes.
func (s *Simulation) Config() *config.Config { return s.cfg.Clone() }

// LastForceSum returns the sum of all particle forces of the last tick,
// taken after the force passes and before they were applied.
func (s *Simulation) LastForceSum() r2.Vec { return s.lastForceSum }

// Perf returns the performance collector, for frame timing in the viewer.
func (s *Simulation) Perf() *telemetry.PerfCollector { return s.perf }

// Snapshot copies the display state into dst, reusing its buffers.
func (s *Simulation) Snapshot(dst *components.Snapshot) {
	s.particles.CopyInto(dst)
	dst.Tick = s.tick
}

// Close releases the output files.
func (s *Simulation) Close() error {
	if err := s.output.Close(); err != nil {
		return fmt.Errorf("closing output: %w", err)
	}
	return nil
}
