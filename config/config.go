// Package config provides configuration loading and validation for the fluid simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/sph/kernel"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalidConfig is returned (wrapped) for any configuration that cannot
// drive a simulation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all simulation configuration parameters.
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Particles ParticlesConfig `yaml:"particles"`
	Fluid     FluidConfig     `yaml:"fluid"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Screen    ScreenConfig    `yaml:"screen"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Display   DisplayConfig   `yaml:"display"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds the simulation box. The box is centered on the origin.
type WorldConfig struct {
	BoundsX      float64 `yaml:"bounds_x"`
	BoundsY      float64 `yaml:"bounds_y"`
	MaxParticles int     `yaml:"max_particles"` // Capacity of the particle buffers
}

// ParticlesConfig holds the initial particle layout.
type ParticlesConfig struct {
	Count   int     `yaml:"count"`
	Spacing float64 `yaml:"spacing"` // Distance between neighbouring particles in the start lattice
	Jitter  float64 `yaml:"jitter"`  // Noise displacement amplitude (0 = perfect lattice)
	Seed    int64   `yaml:"seed"`
}

// FluidConfig holds the tunable fluid parameters. It can be swapped at runtime
// through sim.Simulation.SetTuning.
type FluidConfig struct {
	Gravity             float64 `yaml:"gravity"`
	CollisionElasticity float64 `yaml:"collision_elasticity"` // 0 = stop at the wall, 1 = perfect bounce
	DensityRadius       float64 `yaml:"density_radius"`
	Mass                float64 `yaml:"mass"`
	GasConstant         float64 `yaml:"gas_constant"`
	RestDensity         float64 `yaml:"rest_density"`
	Viscosity           float64 `yaml:"viscosity"`
	DensityKernel       string  `yaml:"density_kernel"`   // smooth | spiky
	ViscosityKernel     string  `yaml:"viscosity_kernel"` // smooth | spiky
}

// PhysicsConfig holds stepping parameters.
type PhysicsConfig struct {
	DT        float64 `yaml:"dt"`
	Lookahead float64 `yaml:"lookahead"` // Fixed sub-step used to advance predicted positions
	Workers   int     `yaml:"workers"`   // 0 = GOMAXPROCS
}

// ScreenConfig holds display settings for the viewer.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // Seconds of simulated time per stats window
	PerfWindow  int     `yaml:"perf_window"`  // Ticks averaged by the perf collector
}

// RGB is a color triple in 0..255.
type RGB [3]uint8

// DisplayConfig holds viewer colors.
type DisplayConfig struct {
	ParticleScale         float64 `yaml:"particle_scale"`
	ColorByDensity        bool    `yaml:"color_by_density"`
	ParticleColor         RGB     `yaml:"particle_color"`
	SelectedColor         RGB     `yaml:"selected_color"`
	MultiSelectedColor    RGB     `yaml:"multi_selected_color"`
	RestDensityColor      RGB     `yaml:"rest_density_color"`
	LowDensityColor       RGB     `yaml:"low_density_color"`
	HighDensityColor      RGB     `yaml:"high_density_color"`
	HighDensitySaturation float64 `yaml:"high_density_saturation"`
}

// DerivedConfig holds values computed from the loaded configuration.
type DerivedConfig struct {
	DensityKernel   kernel.Family
	ViscosityKernel kernel.Family
	HalfBoundsX     float64
	HalfBoundsY     float64
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field the simulation depends on and recomputes the
// derived values. It is safe to call again after modifying the config.
func (c *Config) Validate() error {
	if !(c.World.BoundsX > 0) || !(c.World.BoundsY > 0) {
		return fmt.Errorf("%w: world bounds must be positive, got %vx%v", ErrInvalidConfig, c.World.BoundsX, c.World.BoundsY)
	}
	if c.World.MaxParticles < 1 {
		return fmt.Errorf("%w: world.max_particles must be at least 1, got %d", ErrInvalidConfig, c.World.MaxParticles)
	}
	if c.Particles.Count < 1 || c.Particles.Count > c.World.MaxParticles {
		return fmt.Errorf("%w: particles.count %d outside buffer capacity 1..%d", ErrInvalidConfig, c.Particles.Count, c.World.MaxParticles)
	}
	if !(c.Particles.Spacing > 0) {
		return fmt.Errorf("%w: particles.spacing must be positive, got %v", ErrInvalidConfig, c.Particles.Spacing)
	}
	if c.Particles.Jitter < 0 {
		return fmt.Errorf("%w: particles.jitter must not be negative, got %v", ErrInvalidConfig, c.Particles.Jitter)
	}
	if !(c.Physics.DT > 0) {
		return fmt.Errorf("%w: physics.dt must be positive, got %v", ErrInvalidConfig, c.Physics.DT)
	}
	if !(c.Physics.Lookahead > 0) {
		return fmt.Errorf("%w: physics.lookahead must be positive, got %v", ErrInvalidConfig, c.Physics.Lookahead)
	}
	if c.Physics.Workers < 0 {
		return fmt.Errorf("%w: physics.workers must not be negative, got %d", ErrInvalidConfig, c.Physics.Workers)
	}
	if !(c.Telemetry.StatsWindow > 0) || math.IsInf(c.Telemetry.StatsWindow, 0) {
		return fmt.Errorf("%w: telemetry.stats_window must be positive, got %v", ErrInvalidConfig, c.Telemetry.StatsWindow)
	}
	if c.Telemetry.PerfWindow < 1 {
		return fmt.Errorf("%w: telemetry.perf_window must be at least 1, got %d", ErrInvalidConfig, c.Telemetry.PerfWindow)
	}
	if c.Screen.Width < 1 || c.Screen.Height < 1 {
		return fmt.Errorf("%w: screen size must be positive, got %dx%d", ErrInvalidConfig, c.Screen.Width, c.Screen.Height)
	}
	if c.Screen.TargetFPS < 0 {
		return fmt.Errorf("%w: screen.target_fps must not be negative, got %d", ErrInvalidConfig, c.Screen.TargetFPS)
	}
	if err := c.Fluid.Validate(); err != nil {
		return err
	}

	c.computeDerived()
	return nil
}

// Validate checks the tunable fluid parameters.
func (f *FluidConfig) Validate() error {
	if !(f.DensityRadius > 0) || math.IsInf(f.DensityRadius, 0) {
		return fmt.Errorf("%w: fluid.density_radius must be positive, got %v", ErrInvalidConfig, f.DensityRadius)
	}
	if !(f.CollisionElasticity >= 0 && f.CollisionElasticity <= 1) {
		return fmt.Errorf("%w: fluid.collision_elasticity must be in [0,1], got %v", ErrInvalidConfig, f.CollisionElasticity)
	}
	if !(f.Mass > 0) {
		return fmt.Errorf("%w: fluid.mass must be positive, got %v", ErrInvalidConfig, f.Mass)
	}
	if !(f.RestDensity > 0) {
		return fmt.Errorf("%w: fluid.rest_density must be positive, got %v", ErrInvalidConfig, f.RestDensity)
	}
	for _, v := range []float64{f.Gravity, f.GasConstant, f.Viscosity, f.Mass, f.RestDensity} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: fluid parameters must be finite, got %v", ErrInvalidConfig, v)
		}
	}
	if _, err := kernel.ParseFamily(f.DensityKernel); err != nil {
		return fmt.Errorf("%w: fluid.density_kernel: %v", ErrInvalidConfig, err)
	}
	if _, err := kernel.ParseFamily(f.ViscosityKernel); err != nil {
		return fmt.Errorf("%w: fluid.viscosity_kernel: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Families returns the parsed density and viscosity kernel families.
// Call after Validate.
func (f *FluidConfig) Families() (density, viscosity kernel.Family) {
	density, _ = kernel.ParseFamily(f.DensityKernel)
	viscosity, _ = kernel.ParseFamily(f.ViscosityKernel)
	return density, viscosity
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DensityKernel, c.Derived.ViscosityKernel = c.Fluid.Families()
	c.Derived.HalfBoundsX = c.World.BoundsX / 2
	c.Derived.HalfBoundsY = c.World.BoundsY / 2
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
