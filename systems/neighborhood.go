package systems

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/components"
)

// NeighborFunc receives a neighbor, its offset from the querying agent
// (other − self) and the squared distance.
type NeighborFunc func(other *components.Agent, delta r2.Vec, dist2 float64)

// Neighborhood enumerates the agents strictly within a radius of one agent,
// excluding the agent itself.
type Neighborhood interface {
	Each(radius float64, fn NeighborFunc)
}

// GridNeighborhood scans the cells around an agent of a reindexed store.
// It only reads the store, so any number may run concurrently.
type GridNeighborhood struct {
	agents  []components.Agent
	counts  []uint32
	offsets []uint32
	grid    Grid
	self    int
}

// NewGridNeighborhood returns the neighborhood of agents[self]. agents must
// be partitioned by counts and offsets.
func NewGridNeighborhood(grid Grid, agents []components.Agent, counts, offsets []uint32, self int) GridNeighborhood {
	return GridNeighborhood{
		agents:  agents,
		counts:  counts,
		offsets: offsets,
		grid:    grid,
		self:    self,
	}
}

// Each visits the home cell and as many rings around it as radius needs.
// Cells beyond the domain edge are skipped.
func (nb GridNeighborhood) Each(radius float64, fn NeighborFunc) {
	me := &nb.agents[nb.self]
	col, row := nb.grid.Cell(me.CellID)
	ringX, ringY := nb.grid.Ring(radius)
	limit := radius * radius
	size := nb.grid.Size

	for r := max(row-ringY, 0); r <= min(row+ringY, size-1); r++ {
		for c := max(col-ringX, 0); c <= min(col+ringX, size-1); c++ {
			cell := r*size + c
			start := nb.offsets[cell]
			end := start + nb.counts[cell]
			for j := start; j < end; j++ {
				if int(j) == nb.self {
					continue
				}
				other := &nb.agents[j]
				d := r2.Sub(other.Position, me.Position)
				d2 := d.X*d.X + d.Y*d.Y
				if d2 < limit {
					fn(other, d, d2)
				}
			}
		}
	}
}

// BruteNeighborhood tests every agent of a slice. It is the reference the
// grid scan is checked against and serves small populations.
type BruteNeighborhood struct {
	Agents []components.Agent
	Self   int
}

// Each visits every other agent strictly within radius.
func (nb BruteNeighborhood) Each(radius float64, fn NeighborFunc) {
	me := &nb.Agents[nb.Self]
	limit := radius * radius
	for j := range nb.Agents {
		if j == nb.Self {
			continue
		}
		other := &nb.Agents[j]
		d := r2.Sub(other.Position, me.Position)
		d2 := d.X*d.X + d.Y*d.Y
		if d2 < limit {
			fn(other, d, d2)
		}
	}
}
