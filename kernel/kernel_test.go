package kernel

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/spatial/r2"
)

func mustNew(t *testing.T, f Family, radius float64) Kernel {
	t.Helper()
	k, err := New(f, radius)
	if err != nil {
		t.Fatalf("New(%v, %v): %v", f, radius, err)
	}
	return k
}

func TestNewRejectsBadRadius(t *testing.T) {
	for _, r := range []float64{0, -0.1, math.NaN(), math.Inf(1)} {
		if _, err := New(Smooth, r); !errors.Is(err, ErrInvalidRadius) {
			t.Errorf("New(Smooth, %v) error = %v, want ErrInvalidRadius", r, err)
		}
	}
	if _, err := New(Family(7), 1); !errors.Is(err, ErrUnknownFamily) {
		t.Errorf("New(Family(7)) error = %v, want ErrUnknownFamily", err)
	}
}

func TestParseFamily(t *testing.T) {
	tests := []struct {
		in      string
		want    Family
		wantErr bool
	}{
		{"smooth", Smooth, false},
		{"SmoothKernel", Smooth, false},
		{"poly6", Smooth, false},
		{" Spiky ", Spiky, false},
		{"SpikyKernel", Spiky, false},
		{"gaussian", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFamily(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownFamily) {
					t.Errorf("ParseFamily(%q) error = %v, want ErrUnknownFamily", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseFamily(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestZeroOutsideSupport(t *testing.T) {
	for _, f := range []Family{Smooth, Spiky} {
		k := mustNew(t, f, 0.1)
		for _, d := range []r2.Vec{{X: 0.1001}, {X: 0.08, Y: 0.08}, {X: -1, Y: 3}} {
			if w := k.Weight(d); w != 0 {
				t.Errorf("%v: Weight(%v) = %v, want 0", f, d, w)
			}
			if g := k.Gradient(d); g != (r2.Vec{}) {
				t.Errorf("%v: Gradient(%v) = %v, want zero", f, d, g)
			}
		}
	}
}

func TestNonNegativeInside(t *testing.T) {
	for _, f := range []Family{Smooth, Spiky} {
		k := mustNew(t, f, 0.5)
		prev := math.Inf(1)
		for i := 0; i <= 50; i++ {
			r := 0.5 * float64(i) / 50
			w := k.Weight(r2.Vec{X: r})
			if w < 0 {
				t.Fatalf("%v: Weight(%v) = %v, want >= 0", f, r, w)
			}
			if w > prev {
				t.Fatalf("%v: weight increased from %v to %v at r=%v", f, prev, w, r)
			}
			prev = w
		}
	}
}

func TestSmoothBoundaryIsExactlyZero(t *testing.T) {
	const radius = 0.1
	k := mustNew(t, Smooth, radius)
	d := r2.Vec{X: radius}
	if w := k.Weight(d); w != 0 {
		t.Errorf("Weight at distance == radius = %v, want exactly 0", w)
	}
	if g := k.Gradient(d); g != (r2.Vec{}) {
		t.Errorf("Gradient at distance == radius = %v, want exactly zero", g)
	}
}

// The kernels are normalized: integrating the weight over the support disk
// gives 1. Radial symmetry reduces this to a 1D integral of w(r)*2*pi*r.
func TestNormalization(t *testing.T) {
	for _, f := range []Family{Smooth, Spiky} {
		for _, radius := range []float64{0.05, 0.1, 1, 3} {
			k := mustNew(t, f, radius)
			integrand := func(r float64) float64 {
				return k.Weight(r2.Vec{X: r}) * 2 * math.Pi * r
			}
			got := quad.Fixed(integrand, 0, radius, 64, nil, 0)
			if math.Abs(got-1) > 1e-6 {
				t.Errorf("%v radius %v: integral = %v, want 1", f, radius, got)
			}
		}
	}
}

func TestGradientMatchesFiniteDifference(t *testing.T) {
	const h = 1e-7
	for _, f := range []Family{Smooth, Spiky} {
		k := mustNew(t, f, 0.2)
		for _, d := range []r2.Vec{{X: 0.05, Y: 0.02}, {X: -0.1, Y: 0.07}, {X: 0.0, Y: -0.15}} {
			g := k.Gradient(d)
			dx := (k.Weight(r2.Vec{X: d.X + h, Y: d.Y}) - k.Weight(r2.Vec{X: d.X - h, Y: d.Y})) / (2 * h)
			dy := (k.Weight(r2.Vec{X: d.X, Y: d.Y + h}) - k.Weight(r2.Vec{X: d.X, Y: d.Y - h})) / (2 * h)
			if !scalar.EqualWithinAbsOrRel(g.X, dx, 1e-4, 1e-5) || !scalar.EqualWithinAbsOrRel(g.Y, dy, 1e-4, 1e-5) {
				t.Errorf("%v: Gradient(%v) = %v, finite difference = (%v, %v)", f, d, g, dx, dy)
			}
		}
	}
}

func TestSpikyGradientCoincident(t *testing.T) {
	k := mustNew(t, Spiky, 0.1)
	for _, d := range []r2.Vec{{}, {X: 5e-5, Y: 5e-5}} {
		g := k.Gradient(d)
		if g != (r2.Vec{}) {
			t.Errorf("Gradient(%v) = %v, want zero for coincident points", d, g)
		}
	}
	if w := k.Weight(r2.Vec{}); math.Abs(w-10/(math.Pi*0.1*0.1)) > 1e-9 {
		t.Errorf("Weight(0) = %v, want %v", w, 10/(math.Pi*0.01))
	}
}

func TestWithRadiusRecomputesPowers(t *testing.T) {
	k := mustNew(t, Smooth, 0.1)
	k2, err := k.WithRadius(0.2)
	if err != nil {
		t.Fatal(err)
	}
	if k2.Radius() != 0.2 || k2.Family() != Smooth {
		t.Fatalf("WithRadius gave radius %v family %v", k2.Radius(), k2.Family())
	}
	if math.Abs(k2.sqrRadius-0.04) > 1e-15 || math.Abs(k2.pow5-math.Pow(0.2, 5)) > 1e-15 || math.Abs(k2.pow8-math.Pow(0.2, 8)) > 1e-15 {
		t.Errorf("cached powers not recomputed: %v %v %v", k2.sqrRadius, k2.pow5, k2.pow8)
	}
	// Original is untouched.
	if k.Radius() != 0.1 {
		t.Errorf("original radius changed to %v", k.Radius())
	}
	want := 4 / (math.Pi * 0.04)
	if w := k2.Weight(r2.Vec{}); math.Abs(w-want) > 1e-9 {
		t.Errorf("Weight(0) after WithRadius = %v, want %v", w, want)
	}
	if _, err := k.WithRadius(0); !errors.Is(err, ErrInvalidRadius) {
		t.Errorf("WithRadius(0) error = %v", err)
	}
}
