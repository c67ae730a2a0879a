package sim

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sph/systems"
	"github.com/pthm-cable/sph/telemetry"
)

// Step advances the simulation by dt seconds.
//
// Neighbor search runs on positions advanced by the fixed lookahead rather
// than dt, so fast particles find their neighbors before they arrive.
// Densities are complete before any force pass reads them.
func (s *Simulation) Step(dt float64) {
	ps := s.particles
	s.perf.StartTick()

	s.perf.StartPhase(telemetry.PhasePredict)
	systems.UpdatePositions(s.pool, ps.Predicted, ps.Velocity, s.lookahead)

	s.perf.StartPhase(telemetry.PhaseSpatialGrid)
	s.rebuild(ps.Predicted)

	s.perf.StartPhase(telemetry.PhaseDensity)
	s.fluid.ComputeDensities(s.pool, s.grid, ps)

	s.perf.StartPhase(telemetry.PhaseForces)
	s.fluid.AccumulateForces(s.pool, s.grid, ps)
	s.lastForceSum = sumForces(ps.Force)

	s.perf.StartPhase(telemetry.PhaseIntegrate)
	systems.ApplyForces(s.pool, ps, dt)
	systems.UpdatePositions(s.pool, ps.Position, ps.Velocity, dt)

	s.perf.StartPhase(telemetry.PhaseCollisions)
	clamps := systems.HandleCollisions(ps, s.bounds, s.elasticity)
	s.collector.RecordCollisions(clamps)
	ps.SyncPredicted()

	s.tick++

	s.perf.StartPhase(telemetry.PhaseTelemetry)
	s.flushTelemetry()
	s.perf.EndTick()
}

func sumForces(forces []r2.Vec) r2.Vec {
	var sum r2.Vec
	for _, f := range forces {
		sum = r2.Add(sum, f)
	}
	return sum
}
