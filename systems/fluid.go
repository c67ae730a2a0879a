package systems

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sph/components"
	"github.com/pthm-cable/sph/kernel"
)

// Fluid computes per-particle density and the SPH force contributions.
// All passes read ps.Predicted, the positions the grid was last rebuilt from.
//
// Pressure and viscosity are accumulated one-sided: each pass writes only
// force[i] for its own particle. The reaction on j is not applied, so
// momentum is not conserved exactly.
type Fluid struct {
	Mass        float64
	GasConstant float64
	RestDensity float64
	Viscosity   float64
	Gravity     float64

	DensityKernel   kernel.Kernel // density and pressure
	ViscosityKernel kernel.Kernel
}

// Pressure returns the equation-of-state pressure for a density. It is
// negative below rest density.
func (f *Fluid) Pressure(density float64) float64 {
	return f.GasConstant * (density - f.RestDensity)
}

// DensityAt sums the kernel-weighted mass of every point within the grid
// radius of p, including a point at p itself.
func (f *Fluid) DensityAt(grid *HashGrid, points []r2.Vec, p r2.Vec) float64 {
	var density float64
	for j := range grid.Query(points, p) {
		density += f.Mass * f.DensityKernel.Weight(r2.Sub(points[j], p))
	}
	return density
}

// ComputeDensities fills ps.Density. Returns after every particle is done.
func (f *Fluid) ComputeDensities(pool *Pool, grid *HashGrid, ps *components.Particles) {
	points := ps.Predicted
	pool.For(ps.Len(), func(start, end int) {
		for i := start; i < end; i++ {
			ps.Density[i] = f.DensityAt(grid, points, points[i])
		}
	})
}

// ApplyGravity pulls each particle down in proportion to its density.
func (f *Fluid) ApplyGravity(pool *Pool, ps *components.Particles) {
	pool.For(ps.Len(), func(start, end int) {
		for i := start; i < end; i++ {
			ps.Force[i].Y -= f.Gravity * ps.Density[i]
		}
	})
}

// ApplyPressure adds the symmetric-pressure force from every neighbor.
// Densities must be complete before this is called.
func (f *Fluid) ApplyPressure(pool *Pool, grid *HashGrid, ps *components.Particles) {
	points := ps.Predicted
	pool.For(ps.Len(), func(start, end int) {
		for i := start; i < end; i++ {
			pi := f.Pressure(ps.Density[i])
			var force r2.Vec
			for j := range grid.Query(points, points[i]) {
				diff := r2.Sub(points[i], points[j])
				if r2.Norm2(diff) < kernel.CoincidentSqrDistance {
					continue
				}
				pj := f.Pressure(ps.Density[j])
				scale := -f.Mass * 0.5 * (pi + pj) / ps.Density[j]
				force = r2.Add(force, r2.Scale(scale, f.DensityKernel.Gradient(diff)))
			}
			ps.Force[i] = r2.Add(ps.Force[i], force)
		}
	})
}

// ApplyViscosity adds the velocity-smoothing force. The relative velocity
// scales the kernel gradient per axis.
func (f *Fluid) ApplyViscosity(pool *Pool, grid *HashGrid, ps *components.Particles) {
	points := ps.Predicted
	pool.For(ps.Len(), func(start, end int) {
		for i := start; i < end; i++ {
			vi := ps.Velocity[i]
			var force r2.Vec
			for j := range grid.Query(points, points[i]) {
				diff := r2.Sub(points[i], points[j])
				if r2.Norm2(diff) < kernel.CoincidentSqrDistance {
					continue
				}
				grad := f.ViscosityKernel.Gradient(diff)
				dv := r2.Scale(f.Viscosity*f.Mass/ps.Density[j], r2.Sub(ps.Velocity[j], vi))
				force = r2.Add(force, r2.Vec{X: grad.X * dv.X, Y: grad.Y * dv.Y})
			}
			ps.Force[i] = r2.Add(ps.Force[i], force)
		}
	})
}

// AccumulateForces runs gravity, pressure and viscosity in sequence.
func (f *Fluid) AccumulateForces(pool *Pool, grid *HashGrid, ps *components.Particles) {
	f.ApplyGravity(pool, ps)
	f.ApplyPressure(pool, grid, ps)
	f.ApplyViscosity(pool, grid, ps)
}
