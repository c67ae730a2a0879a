package telemetry

import (
	"log/slog"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated fluid statistics for one time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	Particles int `csv:"particles"`

	// Density distribution (sampled at window end)
	DensityMean float64 `csv:"density_mean"`
	DensityStd  float64 `csv:"density_std"`
	DensityMin  float64 `csv:"density_min"`
	DensityP10  float64 `csv:"density_p10"`
	DensityP50  float64 `csv:"density_p50"`
	DensityP90  float64 `csv:"density_p90"`
	DensityMax  float64 `csv:"density_max"`

	MeanPressure float64 `csv:"mean_pressure"`

	// Motion
	KineticEnergy float64 `csv:"kinetic_energy"`
	MaxSpeed      float64 `csv:"max_speed"`
	MomentumX     float64 `csv:"momentum_x"`
	MomentumY     float64 `csv:"momentum_y"`

	// Events during window
	Collisions int `csv:"collisions"`
}

// DensityStats summarizes a density sample.
type DensityStats struct {
	Mean, Std     float64
	Min, Max      float64
	P10, P50, P90 float64
}

// Percentile calculates the p-th percentile of a sorted slice with linear
// interpolation between ranks. p should be in [0, 1]. Returns 0 if sorted is
// empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDensityStats calculates the distribution of values. Std is the
// sample standard deviation and is zero for fewer than two values.
func ComputeDensityStats(values []float64) DensityStats {
	n := len(values)
	if n == 0 {
		return DensityStats{}
	}

	var s DensityStats
	if n == 1 {
		s.Mean = values[0]
	} else {
		s.Mean, s.Std = stat.MeanStdDev(values, nil)
	}
	s.Min = floats.Min(values)
	s.Max = floats.Max(values)

	sorted := slices.Clone(values)
	slices.Sort(sorted)
	s.P10 = Percentile(sorted, 0.10)
	s.P50 = Percentile(sorted, 0.50)
	s.P90 = Percentile(sorted, 0.90)
	return s
}

// MotionStats summarizes particle velocities for equal-mass particles.
type MotionStats struct {
	KineticEnergy float64
	MaxSpeed      float64
	Momentum      r2.Vec
}

// ComputeMotionStats sums kinetic energy and momentum over velocities.
func ComputeMotionStats(velocities []r2.Vec, mass float64) MotionStats {
	var s MotionStats
	var sqrSum, maxSqr float64
	var sum r2.Vec
	for _, v := range velocities {
		sqr := r2.Norm2(v)
		sqrSum += sqr
		maxSqr = max(maxSqr, sqr)
		sum = r2.Add(sum, v)
	}
	s.KineticEnergy = 0.5 * mass * sqrSum
	s.MaxSpeed = math.Sqrt(maxSqr)
	s.Momentum = r2.Scale(mass, sum)
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("particles", s.Particles),
		slog.Float64("density_mean", s.DensityMean),
		slog.Float64("density_std", s.DensityStd),
		slog.Float64("density_min", s.DensityMin),
		slog.Float64("density_p10", s.DensityP10),
		slog.Float64("density_p50", s.DensityP50),
		slog.Float64("density_p90", s.DensityP90),
		slog.Float64("density_max", s.DensityMax),
		slog.Float64("mean_pressure", s.MeanPressure),
		slog.Float64("kinetic_energy", s.KineticEnergy),
		slog.Float64("max_speed", s.MaxSpeed),
		slog.Float64("momentum_x", s.MomentumX),
		slog.Float64("momentum_y", s.MomentumY),
		slog.Int("collisions", s.Collisions),
	)
}

// LogStats logs the window stats on the default logger.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"density_mean", s.DensityMean,
		"density_std", s.DensityStd,
		"density_p10", s.DensityP10,
		"density_p90", s.DensityP90,
		"mean_pressure", s.MeanPressure,
		"kinetic_energy", s.KineticEnergy,
		"max_speed", s.MaxSpeed,
		"collisions", s.Collisions,
	)
}
