package systems

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sph/components"
)

func TestHandleCollisions(t *testing.T) {
	bounds := r2.Vec{X: 2, Y: 1}
	const elasticity = 0.8
	const eps = 1e-6

	tests := []struct {
		name       string
		pos, vel   r2.Vec
		wantPos    r2.Vec
		wantVel    r2.Vec
		wantClamps int
	}{
		{
			name:       "past right wall",
			pos:        r2.Vec{X: 1 + eps, Y: 0},
			vel:        r2.Vec{X: 2, Y: 0.5},
			wantPos:    r2.Vec{X: 1, Y: 0},
			wantVel:    r2.Vec{X: -elasticity * 2, Y: 0.5},
			wantClamps: 1,
		},
		{
			name:       "exactly on bottom wall",
			pos:        r2.Vec{X: 0.2, Y: -0.5},
			vel:        r2.Vec{X: 0, Y: -1},
			wantPos:    r2.Vec{X: 0.2, Y: -0.5},
			wantVel:    r2.Vec{X: 0, Y: elasticity},
			wantClamps: 1,
		},
		{
			name:       "corner",
			pos:        r2.Vec{X: -3, Y: 4},
			vel:        r2.Vec{X: -1, Y: 1},
			wantPos:    r2.Vec{X: -1, Y: 0.5},
			wantVel:    r2.Vec{X: elasticity, Y: -elasticity},
			wantClamps: 2,
		},
		{
			name:    "inside",
			pos:     r2.Vec{X: 0.99, Y: -0.49},
			vel:     r2.Vec{X: 3, Y: -3},
			wantPos: r2.Vec{X: 0.99, Y: -0.49},
			wantVel: r2.Vec{X: 3, Y: -3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := components.NewParticles(1)
			ps.Position[0] = tt.pos
			ps.Velocity[0] = tt.vel

			clamps := HandleCollisions(ps, bounds, elasticity)
			if clamps != tt.wantClamps {
				t.Errorf("clamps = %d, want %d", clamps, tt.wantClamps)
			}
			if ps.Position[0] != tt.wantPos {
				t.Errorf("position = %v, want %v", ps.Position[0], tt.wantPos)
			}
			if math.Abs(ps.Velocity[0].X-tt.wantVel.X) > 1e-12 || math.Abs(ps.Velocity[0].Y-tt.wantVel.Y) > 1e-12 {
				t.Errorf("velocity = %v, want %v", ps.Velocity[0], tt.wantVel)
			}
		})
	}
}

func TestApplyForcesDividesByDensityAndResets(t *testing.T) {
	ps := components.NewParticles(2)
	ps.Force[0] = r2.Vec{X: 4, Y: -8}
	ps.Force[1] = r2.Vec{X: 1}
	ps.Density[0] = 2
	ps.Density[1] = 4
	ps.Velocity[1] = r2.Vec{Y: 1}

	ApplyForces(nil, ps, 0.5)

	want := []r2.Vec{{X: 1, Y: -2}, {X: 0.125, Y: 1}}
	for i := range want {
		if ps.Velocity[i] != want[i] {
			t.Errorf("velocity[%d] = %v, want %v", i, ps.Velocity[i], want[i])
		}
		if ps.Force[i] != (r2.Vec{}) {
			t.Errorf("force[%d] = %v, want reset", i, ps.Force[i])
		}
	}
}

func TestUpdatePositions(t *testing.T) {
	positions := []r2.Vec{{X: 1}, {Y: 2}}
	velocities := []r2.Vec{{X: 2, Y: 4}, {X: -1}}
	UpdatePositions(NewPool(2), positions, velocities, 0.25)

	want := []r2.Vec{{X: 1.5, Y: 1}, {X: -0.25, Y: 2}}
	for i := range want {
		if positions[i] != want[i] {
			t.Errorf("positions[%d] = %v, want %v", i, positions[i], want[i])
		}
	}
}

func TestSpawnGrid(t *testing.T) {
	tests := []struct {
		n        int
		spacing  float64
		wantSide int
	}{
		{1, 0.1, 1},
		{4, 0.05, 2},
		{10, 0.2, 4},
		{400, 0.03, 20},
	}
	for _, tt := range tests {
		points := SpawnGrid(tt.n, tt.spacing)
		if len(points) != tt.n {
			t.Fatalf("SpawnGrid(%d) returned %d points", tt.n, len(points))
		}

		limit := float64(tt.wantSide-1) * tt.spacing / 2
		var sum r2.Vec
		for _, p := range points {
			if math.Abs(p.X) > limit+1e-12 || math.Abs(p.Y) > limit+1e-12 {
				t.Errorf("n=%d: point %v outside +-%v", tt.n, p, limit)
			}
			sum = r2.Add(sum, p)
		}
		// Full squares are centered on the origin.
		if tt.wantSide*tt.wantSide == tt.n {
			if r2.Norm(sum) > 1e-9 {
				t.Errorf("n=%d: centroid sum %v, want zero", tt.n, sum)
			}
		}
	}

	// Neighbours in a row sit spacing apart.
	points := SpawnGrid(4, 0.05)
	if d := r2.Norm(r2.Sub(points[0], points[1])); math.Abs(d-0.05) > 1e-12 {
		t.Errorf("neighbour distance = %v, want 0.05", d)
	}
}

func TestJitterPositions(t *testing.T) {
	base := SpawnGrid(25, 0.1)

	a := append([]r2.Vec(nil), base...)
	b := append([]r2.Vec(nil), base...)
	JitterPositions(a, 0.01, 42)
	JitterPositions(b, 0.01, 42)

	moved := false
	for i := range base {
		if a[i] != b[i] {
			t.Fatalf("same seed gave different layouts at %d: %v vs %v", i, a[i], b[i])
		}
		d := r2.Sub(a[i], base[i])
		if math.Abs(d.X) > 0.01+1e-12 || math.Abs(d.Y) > 0.01+1e-12 {
			t.Errorf("point %d moved %v, more than the amplitude", i, d)
		}
		if d != (r2.Vec{}) {
			moved = true
		}
	}
	if !moved {
		t.Error("jitter did not move any point")
	}

	c := append([]r2.Vec(nil), base...)
	JitterPositions(c, 0, 42)
	for i := range base {
		if c[i] != base[i] {
			t.Fatalf("zero amplitude moved point %d", i)
		}
	}
}
