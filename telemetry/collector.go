package telemetry

import "gonum.org/v1/gonum/spatial/r2"

// FluidSample is the particle state read at the end of a window.
type FluidSample struct {
	Densities   []float64
	Velocities  []r2.Vec
	Mass        float64
	GasConstant float64
	RestDensity float64
}

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int32
	dt                  float64

	windowStartTick int32

	// Event counters for the current window
	collisions int
}

// NewCollector creates a stats collector.
// windowDurationSec: length of a window in simulated seconds
// dt: seconds per tick
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int32(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}
	return &Collector{
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordCollisions adds wall clamps from one tick.
func (c *Collector) RecordCollisions(n int) {
	c.collisions += n
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, sample FluidSample) WindowStats {
	density := ComputeDensityStats(sample.Densities)
	motion := ComputeMotionStats(sample.Velocities, sample.Mass)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Particles: len(sample.Densities),

		DensityMean: density.Mean,
		DensityStd:  density.Std,
		DensityMin:  density.Min,
		DensityP10:  density.P10,
		DensityP50:  density.P50,
		DensityP90:  density.P90,
		DensityMax:  density.Max,

		KineticEnergy: motion.KineticEnergy,
		MaxSpeed:      motion.MaxSpeed,
		MomentumX:     motion.Momentum.X,
		MomentumY:     motion.Momentum.Y,

		Collisions: c.collisions,
	}
	// Pressure is linear in density, so the mean pressure is the pressure of
	// the mean density.
	if len(sample.Densities) > 0 {
		stats.MeanPressure = sample.GasConstant * (density.Mean - sample.RestDensity)
	}

	c.windowStartTick = currentTick
	c.collisions = 0
	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
