package sim

import "github.com/pthm-cable/sph/telemetry"

// flushTelemetry closes the stats window when it is due and sends it to the
// callback, the log and the CSV output.
func (s *Simulation) flushTelemetry() {
	if !s.collector.ShouldFlush(s.tick) {
		return
	}

	ps := s.particles
	stats := s.collector.Flush(s.tick, telemetry.FluidSample{
		Densities:   ps.Density,
		Velocities:  ps.Velocity,
		Mass:        s.fluid.Mass,
		GasConstant: s.fluid.GasConstant,
		RestDensity: s.fluid.RestDensity,
	})
	perfStats := s.perf.Stats()

	if s.onStats != nil {
		s.onStats(stats)
	}

	if s.logStats {
		s.logger.Info("stats", "stats", stats)
		s.logger.Info("perf", "perf", perfStats)
	}

	if s.output != nil {
		if err := s.output.WriteTelemetry(stats); err != nil {
			s.logger.Error("failed to write telemetry", "error", err)
		}
		if err := s.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			s.logger.Error("failed to write perf", "error", err)
		}
	}
}
