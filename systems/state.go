package systems

import (
	"fmt"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/device"
)

// Device buffer names, used in error messages and fault hooks.
const (
	BufAgents    = "agents"
	BufScratch   = "agents_scratch"
	BufNext      = "agents_next"
	BufCounts    = "bucket_sizes"
	BufOffsets   = "prefix_sums"
	BufCursors   = "cursors"
	BufViolation = "violations"
)

// SimState owns the device buffers of one simulation and the host-side
// copies the pipeline hands between stages.
//
// The host agent slice is the committed store. The device agent buffer
// mirrors it and is the one the stages reorder and update; a tick's result
// reaches the host store only when the interaction readback succeeds.
type SimState struct {
	dev  *device.Device
	grid Grid
	n    int

	agents     *device.Buffer[components.Agent]
	scratch    *device.Buffer[components.Agent]
	next       *device.Buffer[components.Agent]
	counts     *device.Counters
	cursors    *device.Counters
	offsets    *device.Buffer[uint32]
	violations *device.Counters

	host        []components.Agent
	staging     []components.Agent
	hostCounts  []uint32
	hostOffsets []uint32
}

// NewSimState allocates the buffers for len(agents) agents on grid and
// uploads the initial store.
func NewSimState(dev *device.Device, grid Grid, agents []components.Agent) (*SimState, error) {
	if len(agents) == 0 {
		return nil, fmt.Errorf("new sim state: empty population")
	}
	if grid.Size < 1 {
		return nil, fmt.Errorf("new sim state: grid size %d", grid.Size)
	}
	n := len(agents)
	cells := grid.NumCells()

	st := &SimState{
		dev:         dev,
		grid:        grid,
		n:           n,
		agents:      device.NewBuffer[components.Agent](dev, BufAgents, n),
		scratch:     device.NewBuffer[components.Agent](dev, BufScratch, n),
		next:        device.NewBuffer[components.Agent](dev, BufNext, n),
		counts:      device.NewCounters(dev, BufCounts, cells),
		cursors:     device.NewCounters(dev, BufCursors, cells),
		offsets:     device.NewBuffer[uint32](dev, BufOffsets, cells),
		violations:  device.NewCounters(dev, BufViolation, 1),
		host:        make([]components.Agent, n),
		staging:     make([]components.Agent, n),
		hostCounts:  make([]uint32, cells),
		hostOffsets: make([]uint32, cells),
	}
	copy(st.host, agents)
	if err := st.agents.Write(st.host); err != nil {
		return nil, fmt.Errorf("uploading agents: %w", err)
	}
	return st, nil
}

// Device returns the device the buffers live on.
func (st *SimState) Device() *device.Device { return st.dev }

// Grid returns the partition geometry.
func (st *SimState) Grid() Grid { return st.grid }

// Len returns the population.
func (st *SimState) Len() int { return st.n }

// Agents returns the committed host store. Callers must not modify it.
func (st *SimState) Agents() []components.Agent { return st.host }

// Counts returns the host copy of the last bucket counts.
func (st *SimState) Counts() []uint32 { return st.hostCounts }

// Offsets returns the host copy of the last exclusive prefix sum.
func (st *SimState) Offsets() []uint32 { return st.hostOffsets }

// Reset replaces the store with agents, which must have the same length.
func (st *SimState) Reset(agents []components.Agent) error {
	if len(agents) != st.n {
		return fmt.Errorf("reset: %d agents into a store of %d", len(agents), st.n)
	}
	if err := st.agents.Write(agents); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	copy(st.host, agents)
	return nil
}

// readback copies a buffer to dst through a scoped read mapping. An unmap
// failure is reported even though dst was filled.
func readback[T any](buf *device.Buffer[T], dst []T) (err error) {
	m, err := buf.Map(device.MapRead)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := m.Release(); rerr != nil && err == nil {
			err = rerr
		}
	}()
	copy(dst, m.Data())
	return nil
}
