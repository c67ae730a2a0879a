package sim

import "github.com/pthm-cable/sph/config"

// SetTuning replaces the fluid parameters between ticks. A radius change
// rebuilds both kernels and resizes the grid cells together; the grid is
// re-indexed on the next Step. On error nothing is changed.
func (s *Simulation) SetTuning(t config.FluidConfig) (err error) {
	old := s.cfg.Fluid
	defer func() {
		if err != nil {
			s.cfg.Fluid = old
			_ = s.cfg.Validate() // restores derived values
		}
	}()

	s.cfg.Fluid = t
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	fluid, err := newFluid(t)
	if err != nil {
		return err
	}
	if t.DensityRadius != s.grid.Radius() {
		if err := s.grid.SetRadius(t.DensityRadius); err != nil {
			return err
		}
	}
	s.fluid = fluid
	s.elasticity = t.CollisionElasticity

	s.logger.Debug("tuning applied",
		"gravity", t.Gravity,
		"radius", t.DensityRadius,
		"gas_constant", t.GasConstant,
		"rest_density", t.RestDensity,
		"viscosity", t.Viscosity,
	)
	return nil
}
