// Package systems provides the spatial index, force solver and integrator of the fluid simulation.
package systems

import (
	"cmp"
	"errors"
	"fmt"
	"iter"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"
)

// EmptySentinel marks a bucket with no particles. It is never lower than the
// grid size, so a scan starting there terminates immediately.
const EmptySentinel = math.MaxUint32

var (
	// ErrPointCount is returned when a rebuild is given a different number of
	// points than the grid was sized for.
	ErrPointCount = errors.New("point count does not match grid size")
	// ErrInvalidGrid is returned for a non-positive cell count or radius.
	ErrInvalidGrid = errors.New("invalid grid parameters")
)

// cellNeighborOffsets is the 3x3 neighborhood scanned by a query.
var cellNeighborOffsets = [9][2]int32{
	{0, 0},
	{0, 1},
	{0, -1},
	{1, 0},
	{1, 1},
	{1, -1},
	{-1, 0},
	{-1, 1},
	{-1, -1},
}

// cellEntry places one particle into a bucket. The full hash is kept so that
// distinct cells sharing a bucket key can be told apart.
type cellEntry struct {
	index uint32
	hash  uint32
	key   uint32
}

// HashGrid is a spatial hash over particle positions with one bucket per
// particle. Cells are radius-sized, so every point within the radius of a
// query lies in the 3x3 cells around it.
//
// The grid is rebuilt from scratch each tick. A query must be issued against
// the same points slice the last Rebuild saw.
type HashGrid struct {
	radius    float64
	sqrRadius float64
	origin    r2.Vec
	numCells  uint32

	entries    []cellEntry // sorted ascending by key after Rebuild
	startIndex []uint32    // first entries index per key, or EmptySentinel

	generation uint64
}

// NewHashGrid creates a grid for numCells particles with the given cell radius.
func NewHashGrid(numCells int, radius float64, origin r2.Vec) (*HashGrid, error) {
	if numCells <= 0 || uint64(numCells) >= EmptySentinel {
		return nil, fmt.Errorf("%w: cell count %d", ErrInvalidGrid, numCells)
	}
	g := &HashGrid{
		origin:     origin,
		numCells:   uint32(numCells),
		entries:    make([]cellEntry, numCells),
		startIndex: make([]uint32, numCells),
	}
	if err := g.SetRadius(radius); err != nil {
		return nil, err
	}
	return g, nil
}

// SetRadius changes the cell size. The grid is emptied until the next Rebuild.
func (g *HashGrid) SetRadius(radius float64) error {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return fmt.Errorf("%w: radius %v", ErrInvalidGrid, radius)
	}
	g.radius = radius
	g.sqrRadius = radius * radius
	for i := range g.startIndex {
		g.startIndex[i] = EmptySentinel
	}
	return nil
}

// Radius returns the cell size and maximum query radius.
func (g *HashGrid) Radius() float64 { return g.radius }

// Generation returns the number of completed rebuilds.
func (g *HashGrid) Generation() uint64 { return g.generation }

// KeyFromHash maps a cell hash to its bucket.
func (g *HashGrid) KeyFromHash(hash uint32) uint32 {
	return hash % g.numCells
}

// CellCoord returns the cell containing p. The half-cell offset centers
// cells on grid lines.
func (g *HashGrid) CellCoord(p r2.Vec) (int32, int32) {
	half := g.radius * 0.5
	x := math.Floor((p.X - g.origin.X + half) / g.radius)
	y := math.Floor((p.Y - g.origin.Y + half) / g.radius)
	return int32(x), int32(y)
}

// Rebuild re-indexes every point. The hashing and start-index passes run on
// the pool; both only read points and write disjoint indices.
func (g *HashGrid) Rebuild(points []r2.Vec, pool *Pool) error {
	n := len(points)
	if n != int(g.numCells) {
		return fmt.Errorf("%w: got %d points for %d cells", ErrPointCount, n, g.numCells)
	}

	pool.For(n, func(start, end int) {
		for i := start; i < end; i++ {
			cellX, cellY := g.CellCoord(points[i])
			hash := Hash(cellX, cellY)
			g.entries[i] = cellEntry{index: uint32(i), hash: hash, key: g.KeyFromHash(hash)}
			g.startIndex[i] = EmptySentinel
		}
	})

	slices.SortStableFunc(g.entries, func(a, b cellEntry) int {
		return cmp.Compare(a.key, b.key)
	})

	// Only the first entry of each key run writes, so writes never collide.
	pool.For(n, func(start, end int) {
		for i := start; i < end; i++ {
			key := g.entries[i].key
			if i == 0 || key != g.entries[i-1].key {
				g.startIndex[key] = uint32(i)
			}
		}
	})

	g.generation++
	return nil
}

// Query yields the index of every point within the grid radius of p.
// The sequence is lazy and single-pass; each call scans the latest rebuild.
func (g *HashGrid) Query(points []r2.Vec, p r2.Vec) iter.Seq[int] {
	return g.query(points, p, g.sqrRadius)
}

// QueryRadius is like Query with a smaller radius. Radii above the grid
// radius are clamped to it.
func (g *HashGrid) QueryRadius(points []r2.Vec, p r2.Vec, radius float64) iter.Seq[int] {
	if radius > g.radius {
		radius = g.radius
	}
	if radius < 0 {
		return func(func(int) bool) {}
	}
	return g.query(points, p, radius*radius)
}

func (g *HashGrid) query(points []r2.Vec, p r2.Vec, sqrRadius float64) iter.Seq[int] {
	return func(yield func(int) bool) {
		cellX, cellY := g.CellCoord(p)

		var seen [len(cellNeighborOffsets)]uint32
		for n, off := range cellNeighborOffsets {
			hash := Hash(cellX+off[0], cellY+off[1])
			// Two neighbor cells with the same full hash would scan the same
			// entries twice.
			if slices.Contains(seen[:n], hash) {
				seen[n] = hash
				continue
			}
			seen[n] = hash
			key := g.KeyFromHash(hash)

			for i := g.startIndex[key]; i < g.numCells; i++ {
				e := g.entries[i]
				if e.key != key {
					break
				}
				if e.hash != hash {
					continue
				}
				if r2.Norm2(r2.Sub(points[e.index], p)) <= sqrRadius {
					if !yield(int(e.index)) {
						return
					}
				}
			}
		}
	}
}
