package systems

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/components"
)

var unitDomain = components.Bounds{Min: r2.Vec{X: -1, Y: -1}, Max: r2.Vec{X: 1, Y: 1}}

func TestCellOfQuadrants(t *testing.T) {
	g := NewGrid(2, unitDomain)

	tests := []struct {
		pos  r2.Vec
		want uint32
	}{
		{r2.Vec{X: -0.5, Y: -0.5}, 0},
		{r2.Vec{X: 0.5, Y: -0.5}, 1},
		{r2.Vec{X: -0.5, Y: 0.5}, 2},
		{r2.Vec{X: 0.5, Y: 0.5}, 3},
		{r2.Vec{X: 0, Y: 0}, 3},
		{r2.Vec{X: 1, Y: 1}, 3},
		{r2.Vec{X: -1, Y: -1}, 0},
	}
	for _, tt := range tests {
		if got := g.CellOf(tt.pos); got != tt.want {
			t.Errorf("CellOf(%v) = %d, want %d", tt.pos, got, tt.want)
		}
	}
}

func TestCellOfClampsOutsideDomain(t *testing.T) {
	g := NewGrid(4, unitDomain)

	tests := []struct {
		name string
		pos  r2.Vec
		want uint32
	}{
		{"far top right", r2.Vec{X: 5, Y: 5}, 15},
		{"far bottom left", r2.Vec{X: -5, Y: -5}, 0},
		{"left of row 2", r2.Vec{X: -3, Y: 0.1}, 8},
		{"above col 1", r2.Vec{X: -0.4, Y: 9}, 13},
		{"nan", r2.Vec{X: math.NaN(), Y: math.NaN()}, 0},
		{"inf", r2.Vec{X: math.Inf(1), Y: math.Inf(-1)}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.CellOf(tt.pos)
			if got != tt.want {
				t.Errorf("CellOf(%v) = %d, want %d", tt.pos, got, tt.want)
			}
			if int(got) >= g.NumCells() {
				t.Errorf("cell %d out of range", got)
			}
		})
	}
}

func TestCellRoundTrip(t *testing.T) {
	g := NewGrid(5, unitDomain)
	for id := uint32(0); id < uint32(g.NumCells()); id++ {
		col, row := g.Cell(id)
		if uint32(row*g.Size+col) != id {
			t.Errorf("Cell(%d) = (%d, %d)", id, col, row)
		}
	}
}

func TestRing(t *testing.T) {
	g := NewGrid(8, unitDomain) // cells are 0.25 wide

	tests := []struct {
		radius float64
		want   int
	}{
		{0, 1},
		{0.1, 1},
		{0.25, 1},
		{0.3, 2},
		{0.6, 3},
		{10, 8},
		{math.Inf(1), 8},
	}
	for _, tt := range tests {
		cols, rows := g.Ring(tt.radius)
		if cols != tt.want || rows != tt.want {
			t.Errorf("Ring(%v) = (%d, %d), want %d", tt.radius, cols, rows, tt.want)
		}
	}
}
