// Package components defines the particle data owned by the simulation.
package components

import "gonum.org/v1/gonum/spatial/r2"

// SelectionMark annotates a particle for display. The core produces it,
// only renderers consume it.
type SelectionMark uint8

const (
	MarkNone     SelectionMark = iota // Not selected
	MarkSelected                      // Picked once (same cell as the cursor)
	MarkMulti                         // Picked repeatedly or highlighted
)

// Bump raises the mark by one, saturating at MarkMulti.
func (m SelectionMark) Bump() SelectionMark {
	if m >= MarkMulti {
		return MarkMulti
	}
	return m + 1
}

// Particles holds per-particle state as parallel slices. Index i is the
// identity of one particle for the whole run; slices are never resized.
type Particles struct {
	Position  []r2.Vec
	Predicted []r2.Vec // Position advanced by the lookahead, used for neighbor search
	Velocity  []r2.Vec
	Force     []r2.Vec // Accumulator, reset every tick
	Density   []float64
	Selection []SelectionMark
}

// NewParticles allocates buffers for n particles.
func NewParticles(n int) *Particles {
	return &Particles{
		Position:  make([]r2.Vec, n),
		Predicted: make([]r2.Vec, n),
		Velocity:  make([]r2.Vec, n),
		Force:     make([]r2.Vec, n),
		Density:   make([]float64, n),
		Selection: make([]SelectionMark, n),
	}
}

// Len returns the particle count.
func (p *Particles) Len() int {
	return len(p.Position)
}

// ResetForces zeroes the force accumulator.
func (p *Particles) ResetForces() {
	clear(p.Force)
}

// ResetSelection clears every selection mark.
func (p *Particles) ResetSelection() {
	clear(p.Selection)
}

// SyncPredicted copies the real positions into the predicted buffer.
func (p *Particles) SyncPredicted() {
	copy(p.Predicted, p.Position)
}

// Snapshot is a read-only copy of the state display collaborators need.
type Snapshot struct {
	Tick      int32
	Positions []r2.Vec
	Densities []float64
	Selection []SelectionMark
}

// CopyInto fills dst, reusing its buffers when they are large enough.
func (p *Particles) CopyInto(dst *Snapshot) {
	n := p.Len()
	dst.Positions = grow(dst.Positions, n)
	dst.Densities = grow(dst.Densities, n)
	dst.Selection = grow(dst.Selection, n)
	copy(dst.Positions, p.Position)
	copy(dst.Densities, p.Density)
	copy(dst.Selection, p.Selection)
}

func grow[T any](s []T, n int) []T {
	if cap(s) < n {
		return make([]T, n)
	}
	return s[:n]
}
