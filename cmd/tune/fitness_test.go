package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/sph/config"
	"github.com/pthm-cable/sph/telemetry"
)

func TestParamVectorRoundTrip(t *testing.T) {
	pv := NewParamVector()
	raw := []float64{1.2, 0.3}
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-12 {
			t.Errorf("param %d: %v -> %v", i, raw[i], back[i])
		}
	}
}

func TestApplyToConfigClamps(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()
	pv.ApplyToConfig(cfg, []float64{100, -1})
	if cfg.Fluid.GasConstant != pv.Specs[0].Max {
		t.Errorf("gas constant = %v, want clamped to %v", cfg.Fluid.GasConstant, pv.Specs[0].Max)
	}
	if cfg.Fluid.Viscosity != pv.Specs[1].Min {
		t.Errorf("viscosity = %v, want clamped to %v", cfg.Fluid.Viscosity, pv.Specs[1].Min)
	}
	got := pv.ExtractFromConfig(cfg)
	if got[0] != cfg.Fluid.GasConstant || got[1] != cfg.Fluid.Viscosity {
		t.Errorf("ExtractFromConfig = %v", got)
	}
}

func TestComputeFitness(t *testing.T) {
	tests := []struct {
		name string
		w    telemetry.WindowStats
		want float64
	}{
		{"settled at rest", telemetry.WindowStats{Particles: 10, DensityMean: 100}, 0},
		{"spread", telemetry.WindowStats{Particles: 10, DensityMean: 100, DensityStd: 20}, 0.2},
		{"off rest", telemetry.WindowStats{Particles: 10, DensityMean: 150}, 0.5},
		{"moving", telemetry.WindowStats{Particles: 10, DensityMean: 100, KineticEnergy: 50}, 0.5},
		{"empty", telemetry.WindowStats{}, unstableFitness},
		{"nan", telemetry.WindowStats{Particles: 10, DensityMean: 100, KineticEnergy: math.NaN()}, unstableFitness},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := computeFitness(tt.w, 100); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("computeFitness = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateRunsHeadless(t *testing.T) {
	cfg := config.Default()
	cfg.Particles.Count = 36
	pv := NewParamVector()
	fe := NewFitnessEvaluator(pv, 20, []int64{1, 2}, cfg)

	f := fe.Evaluate(pv.ExtractFromConfig(cfg))
	if math.IsNaN(f) || f < 0 || f >= unstableFitness {
		t.Errorf("Evaluate = %v, want a finite score", f)
	}
	if fe.LastStats().Particles != 36 {
		t.Errorf("last stats particles = %d, want 36", fe.LastStats().Particles)
	}
}
