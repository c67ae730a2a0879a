// Package kernel provides the normalized 2D smoothing kernels used by the SPH solver.
package kernel

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// CoincidentSqrDistance is the squared distance below which two points are
// treated as coincident and gradients are taken to be zero.
const CoincidentSqrDistance = 1e-8

var (
	// ErrInvalidRadius is returned for a zero, negative or non-finite radius.
	ErrInvalidRadius = errors.New("kernel radius must be positive and finite")
	// ErrUnknownFamily is returned for a family outside the enumerated set.
	ErrUnknownFamily = errors.New("unknown kernel family")
)

// Family selects one of the kernel weight/gradient pairs.
type Family uint8

const (
	// Smooth is the Poly6-style kernel, smooth near zero. Used for density and pressure.
	Smooth Family = iota
	// Spiky is steep near zero, which keeps closely packed particles apart.
	Spiky
)

// String returns the config name of the family.
func (f Family) String() string {
	switch f {
	case Smooth:
		return "smooth"
	case Spiky:
		return "spiky"
	}
	return fmt.Sprintf("Family(%d)", uint8(f))
}

// ParseFamily converts a config name into a Family.
func ParseFamily(s string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "smooth", "smoothkernel", "poly6":
		return Smooth, nil
	case "spiky", "spikykernel":
		return Spiky, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFamily, s)
}

// Kernel is an immutable smoothing kernel with its radius powers cached.
// Changing the radius produces a new value, so the cached powers always
// agree with the radius they were computed from.
type Kernel struct {
	family    Family
	radius    float64
	sqrRadius float64
	pow5      float64
	pow8      float64

	weight   func(k *Kernel, d r2.Vec) float64
	gradient func(k *Kernel, d r2.Vec) r2.Vec
}

type kernelFuncs struct {
	weight   func(k *Kernel, d r2.Vec) float64
	gradient func(k *Kernel, d r2.Vec) r2.Vec
}

// families is resolved once per New, never per evaluation.
var families = [...]kernelFuncs{
	Smooth: {weight: smoothWeight, gradient: smoothGradient},
	Spiky:  {weight: spikyWeight, gradient: spikyGradient},
}

// New creates a kernel of the given family and support radius.
func New(family Family, radius float64) (Kernel, error) {
	if int(family) >= len(families) {
		return Kernel{}, fmt.Errorf("%w: %v", ErrUnknownFamily, family)
	}
	if !(radius > 0) || math.IsInf(radius, 0) {
		return Kernel{}, fmt.Errorf("%w: %v", ErrInvalidRadius, radius)
	}
	sqr := radius * radius
	pow8 := sqr * sqr
	pow8 *= pow8
	fn := families[family]
	return Kernel{
		family:    family,
		radius:    radius,
		sqrRadius: sqr,
		pow5:      sqr * sqr * radius,
		pow8:      pow8,
		weight:    fn.weight,
		gradient:  fn.gradient,
	}, nil
}

// WithRadius returns a copy of k with a new radius.
func (k Kernel) WithRadius(radius float64) (Kernel, error) {
	return New(k.family, radius)
}

// Family returns the kernel family.
func (k Kernel) Family() Family { return k.family }

// Radius returns the support radius.
func (k Kernel) Radius() float64 { return k.radius }

// Weight returns the kernel weight for displacement d. Zero outside the radius.
func (k *Kernel) Weight(d r2.Vec) float64 {
	return k.weight(k, d)
}

// Gradient returns the kernel gradient for displacement d. Zero outside the radius.
func (k *Kernel) Gradient(d r2.Vec) r2.Vec {
	return k.gradient(k, d)
}

func smoothWeight(k *Kernel, d r2.Vec) float64 {
	sqrDistance := r2.Norm2(d)
	if sqrDistance > k.sqrRadius {
		return 0
	}
	v := k.sqrRadius - sqrDistance
	return v * v * v * (4 / (math.Pi * k.pow8))
}

func smoothGradient(k *Kernel, d r2.Vec) r2.Vec {
	sqrDistance := r2.Norm2(d)
	if sqrDistance > k.sqrRadius {
		return r2.Vec{}
	}
	v := k.sqrRadius - sqrDistance
	return r2.Scale(v*v*(-24/(math.Pi*k.pow8)), d)
}

func spikyWeight(k *Kernel, d r2.Vec) float64 {
	sqrDistance := r2.Norm2(d)
	if sqrDistance > k.sqrRadius {
		return 0
	}
	v := k.radius - math.Sqrt(sqrDistance)
	return v * v * v * (10 / (math.Pi * k.pow5))
}

func spikyGradient(k *Kernel, d r2.Vec) r2.Vec {
	sqrDistance := r2.Norm2(d)
	if sqrDistance > k.sqrRadius || sqrDistance < CoincidentSqrDistance {
		return r2.Vec{}
	}
	distance := math.Sqrt(sqrDistance)
	v := k.radius - distance
	return r2.Scale(v*v*(-30/(math.Pi*k.pow5*distance)), d)
}
