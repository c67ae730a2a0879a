package telemetry

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeDensityStats(t *testing.T) {
	// Unsorted on purpose; the input must not be reordered.
	values := []float64{4, 1, 3, 2}
	s := ComputeDensityStats(values)

	if s.Mean != 2.5 {
		t.Errorf("mean = %v, want 2.5", s.Mean)
	}
	if want := math.Sqrt(5.0 / 3.0); math.Abs(s.Std-want) > 1e-12 {
		t.Errorf("std = %v, want %v", s.Std, want)
	}
	if s.Min != 1 || s.Max != 4 {
		t.Errorf("min/max = %v/%v, want 1/4", s.Min, s.Max)
	}
	if math.Abs(s.P50-2.5) > 1e-12 {
		t.Errorf("p50 = %v, want 2.5", s.P50)
	}
	if values[0] != 4 {
		t.Error("ComputeDensityStats sorted its input")
	}
}

func TestComputeDensityStatsSmall(t *testing.T) {
	if s := ComputeDensityStats(nil); s != (DensityStats{}) {
		t.Errorf("empty input: got %+v, want zero", s)
	}
	s := ComputeDensityStats([]float64{7})
	if s.Mean != 7 || s.Std != 0 || s.P10 != 7 || s.P90 != 7 {
		t.Errorf("single value: got %+v", s)
	}
}

func TestComputeMotionStats(t *testing.T) {
	velocities := []r2.Vec{{X: 3, Y: 4}, {X: -1, Y: 0}, {}}
	s := ComputeMotionStats(velocities, 2)

	// 0.5 * 2 * (25 + 1)
	if s.KineticEnergy != 26 {
		t.Errorf("kinetic energy = %v, want 26", s.KineticEnergy)
	}
	if s.MaxSpeed != 5 {
		t.Errorf("max speed = %v, want 5", s.MaxSpeed)
	}
	if s.Momentum != (r2.Vec{X: 4, Y: 8}) {
		t.Errorf("momentum = %v, want (4, 8)", s.Momentum)
	}
}
