// Package systems runs the per-tick pipeline: bucket counting, prefix sum,
// counting-sort reindex and the neighbor interaction pass.
package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/components"
)

// Grid is a uniform G×G partition of the domain. Cells are numbered
// row-major with row 0 at Bounds.Min.Y.
type Grid struct {
	Size   int
	Bounds components.Bounds
}

// NewGrid creates a grid of size×size cells covering bounds.
func NewGrid(size int, bounds components.Bounds) Grid {
	return Grid{Size: size, Bounds: bounds}
}

// NumCells returns G².
func (g Grid) NumCells() int {
	return g.Size * g.Size
}

// CellSize returns the width and height of one cell.
func (g Grid) CellSize() r2.Vec {
	return r2.Scale(1/float64(g.Size), g.Bounds.Size())
}

// CellCoords maps a position to its column and row. Positions outside the
// domain, including non-finite ones, are clamped onto the border cells.
func (g Grid) CellCoords(p r2.Vec) (col, row int) {
	size := g.Bounds.Size()
	col = g.axisIndex((p.X - g.Bounds.Min.X) / size.X)
	row = g.axisIndex((p.Y - g.Bounds.Min.Y) / size.Y)
	return col, row
}

func (g Grid) axisIndex(frac float64) int {
	f := frac * float64(g.Size)
	// NaN fails every comparison and lands in cell 0.
	if !(f >= 0) {
		return 0
	}
	if f >= float64(g.Size) {
		return g.Size - 1
	}
	return int(f)
}

// CellOf returns the row-major cell id of p.
func (g Grid) CellOf(p r2.Vec) uint32 {
	col, row := g.CellCoords(p)
	return uint32(row*g.Size + col)
}

// Cell splits a cell id back into column and row.
func (g Grid) Cell(id uint32) (col, row int) {
	return int(id) % g.Size, int(id) / g.Size
}

// Ring returns how many cells to scan on each side of the home cell, per
// axis, so that every point within radius is visited. A radius of at most
// one cell gives the 3×3 neighborhood.
func (g Grid) Ring(radius float64) (cols, rows int) {
	cell := g.CellSize()
	return g.ringAxis(radius, cell.X), g.ringAxis(radius, cell.Y)
}

func (g Grid) ringAxis(radius, cell float64) int {
	if !(radius > cell) {
		return 1
	}
	ring := math.Ceil(radius / cell)
	if ring >= float64(g.Size) {
		return g.Size
	}
	return int(ring)
}
