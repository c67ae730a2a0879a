package systems

import (
	"math"

	"github.com/ojrac/opensimplex-go"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sph/components"
)

// jitterFrequency is the noise frequency in cycles per world unit.
const jitterFrequency = 7.0

// ApplyForces turns accumulated force into acceleration (force / density),
// advances velocity by dt and clears the accumulator.
func ApplyForces(pool *Pool, ps *components.Particles, dt float64) {
	pool.For(ps.Len(), func(start, end int) {
		for i := start; i < end; i++ {
			accel := r2.Scale(1/ps.Density[i], ps.Force[i])
			ps.Velocity[i] = r2.Add(ps.Velocity[i], r2.Scale(dt, accel))
			ps.Force[i] = r2.Vec{}
		}
	})
}

// UpdatePositions advances positions by velocity over dt. It is used both for
// the real step and for the lookahead of the predicted positions.
func UpdatePositions(pool *Pool, positions, velocities []r2.Vec, dt float64) {
	pool.For(len(positions), func(start, end int) {
		for i := start; i < end; i++ {
			positions[i] = r2.Add(positions[i], r2.Scale(dt, velocities[i]))
		}
	})
}

// HandleCollisions keeps particles inside an origin-centered box of the given
// size. A particle on or past a wall is placed on it and its velocity along
// that axis is reflected and scaled by elasticity. Returns the number of
// axis clamps.
func HandleCollisions(ps *components.Particles, bounds r2.Vec, elasticity float64) int {
	half := r2.Scale(0.5, bounds)
	clamps := 0
	for i := range ps.Position {
		pos := ps.Position[i]
		vel := ps.Velocity[i]
		if half.X-math.Abs(pos.X) <= 0 {
			pos.X = half.X * sign(pos.X)
			vel.X *= -elasticity
			clamps++
		}
		if half.Y-math.Abs(pos.Y) <= 0 {
			pos.Y = half.Y * sign(pos.Y)
			vel.Y *= -elasticity
			clamps++
		}
		ps.Position[i] = pos
		ps.Velocity[i] = vel
	}
	return clamps
}

// sign returns -1, 0 or 1. Unlike math.Copysign a zero stays zero.
func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// SpawnGrid lays out n points on a square lattice centered on the origin with
// neighbours spacing apart. The last row is partial when n is not a square.
func SpawnGrid(n int, spacing float64) []r2.Vec {
	if n <= 0 {
		return nil
	}
	side := int(math.Ceil(math.Sqrt(float64(n))))
	half := spacing / 2
	points := make([]r2.Vec, n)
	for i := range points {
		kx := i % side
		ky := i / side
		points[i] = r2.Vec{
			X: float64(side-1-2*kx) * half,
			Y: float64(side-1-2*ky) * half,
		}
	}
	return points
}

// JitterPositions displaces every position by up to amplitude along each axis
// using two decorrelated simplex noise fields. The same seed always gives the
// same layout.
func JitterPositions(positions []r2.Vec, amplitude float64, seed int64) {
	if amplitude == 0 {
		return
	}
	noiseX := opensimplex.New(seed)
	noiseY := opensimplex.New(seed + 1)
	for i, p := range positions {
		x, y := p.X*jitterFrequency, p.Y*jitterFrequency
		positions[i] = r2.Vec{
			X: p.X + amplitude*noiseX.Eval2(x, y),
			Y: p.Y + amplitude*noiseY.Eval2(x, y),
		}
	}
}
