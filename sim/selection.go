package sim

import (
	"fmt"
	"iter"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sph/components"
)

// PickMode selects how Pick marks particles.
type PickMode uint8

const (
	// PickCell marks every particle in the grid cell under the point.
	PickCell PickMode = iota
	// PickRadius bumps the mark of every particle within the grid radius.
	PickRadius
)

// CellCoordinate returns the grid cell containing p.
func (s *Simulation) CellCoordinate(p r2.Vec) (int32, int32) {
	return s.grid.CellCoord(p)
}

// Neighbors yields every particle within r of p, measured on the current
// positions (not the lookahead ones). r is clamped to the density radius.
// The grid is re-indexed first; consume the sequence before the next Step.
func (s *Simulation) Neighbors(p r2.Vec, r float64) iter.Seq[int] {
	s.rebuild(s.particles.Position)
	return s.grid.QueryRadius(s.particles.Position, p, r)
}

// Pick annotates particles around p and returns how many were marked.
// Marks accumulate across calls; call ClearSelection to start over.
func (s *Simulation) Pick(p r2.Vec, mode PickMode) int {
	ps := s.particles
	marked := 0
	switch mode {
	case PickCell:
		cx, cy := s.grid.CellCoord(p)
		for i, pos := range ps.Position {
			if x, y := s.grid.CellCoord(pos); x == cx && y == cy {
				ps.Selection[i] = components.MarkSelected
				marked++
			}
		}
	case PickRadius:
		for i := range s.Neighbors(p, s.grid.Radius()) {
			ps.Selection[i] = ps.Selection[i].Bump()
			marked++
		}
	}
	return marked
}

// SelectAt replaces the selection with a fresh Pick around p. A viewer holding
// the mouse calls it once per frame, so marks do not pile up across frames.
func (s *Simulation) SelectAt(p r2.Vec, mode PickMode) int {
	s.ClearSelection()
	return s.Pick(p, mode)
}

// ClearSelection resets every selection mark.
func (s *Simulation) ClearSelection() {
	s.particles.ResetSelection()
}

// Highlight marks one particle with MarkMulti.
func (s *Simulation) Highlight(i int) error {
	if i < 0 || i >= s.particles.Len() {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, s.particles.Len())
	}
	s.particles.Selection[i] = components.MarkMulti
	return nil
}
