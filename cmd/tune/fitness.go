package main

import (
	"io"
	"log/slog"
	"math"
	"sync"

	"github.com/pthm-cable/sph/config"
	"github.com/pthm-cable/sph/sim"
	"github.com/pthm-cable/sph/telemetry"
)

// Fitness term weights.
const (
	weightUniformity = 1.0 // density coefficient of variation
	weightRest       = 1.0 // relative distance of mean density from rest density
	weightEnergy     = 0.1 // kinetic energy per particle

	// unstableFitness is returned for runs that blow up.
	unstableFitness = 1e6
)

// FitnessEvaluator runs headless simulations and scores how settled the
// fluid is at the end of the run (lower = better).
type FitnessEvaluator struct {
	params     *ParamVector
	ticks      int
	seeds      []int64
	baseConfig *config.Config
	logger     *slog.Logger

	mu        sync.Mutex
	lastStats telemetry.WindowStats
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, ticks int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		ticks:      ticks,
		seeds:      seeds,
		baseConfig: baseCfg,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// LastStats returns the final window of the most recent evaluation's first seed.
func (fe *FitnessEvaluator) LastStats() telemetry.WindowStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastStats
}

// Evaluate returns the mean fitness over all seeds for raw parameter values.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	results := make([]float64, len(fe.seeds))
	finals := make([]telemetry.WindowStats, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			runCfg := cfg.Clone()
			runCfg.Particles.Seed = s
			finals[idx], results[idx] = fe.runSimulation(runCfg)
		}(i, seed)
	}
	wg.Wait()

	var total float64
	for _, r := range results {
		total += r
	}

	fe.mu.Lock()
	if len(finals) > 0 {
		fe.lastStats = finals[0]
	}
	fe.mu.Unlock()

	return total / float64(len(fe.seeds))
}

// runSimulation executes a single headless run and scores its final window.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config) (telemetry.WindowStats, float64) {
	var final telemetry.WindowStats
	s, err := sim.New(cfg, sim.Options{
		Workers: 1,
		Logger:  fe.logger,
		// One window covering the whole run
		StatsWindowSec: float64(fe.ticks) * cfg.Physics.DT,
		OnStats:        func(w telemetry.WindowStats) { final = w },
	})
	if err != nil {
		return final, unstableFitness
	}
	defer s.Close()

	for range fe.ticks {
		s.Step(cfg.Physics.DT)
	}
	return final, computeFitness(final, cfg.Fluid.RestDensity)
}

// computeFitness combines density uniformity, distance from rest density
// and leftover motion into one score.
func computeFitness(w telemetry.WindowStats, restDensity float64) float64 {
	if w.Particles == 0 || !(w.DensityMean > 0) {
		return unstableFitness
	}
	uniformity := w.DensityStd / w.DensityMean
	rest := math.Abs(w.DensityMean-restDensity) / restDensity
	energy := w.KineticEnergy / float64(w.Particles)

	f := weightUniformity*uniformity + weightRest*rest + weightEnergy*energy
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return unstableFitness
	}
	return f
}
