package systems

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/pthm-cable/flock/components"
)

// Reindex reorders the device agent buffer so that every cell's agents are
// contiguous, starting at the cell's offset.
//
// Each agent claims a slot with a fetch-and-add on its cell cursor, which is
// seeded from the offsets. The result is scattered into a scratch buffer and
// published over the agent buffer only after every invocation has finished.
// Order within a cell follows cursor arrival and is not stable across runs;
// with deterministic set each cell range is then sorted by agent ID.
func Reindex(st *SimState, deterministic bool) error {
	if err := st.cursors.CopyFrom(st.offsets); err != nil {
		return fatal(StageReindex, err)
	}
	if err := st.violations.Fill(0); err != nil {
		return fatal(StageReindex, err)
	}

	src := st.agents.Storage()
	dst := st.scratch.Storage()
	offsets := st.offsets.Storage()
	counts := st.counts.Storage()
	cursors := st.cursors
	violations := st.violations
	err := st.dev.Dispatch(st.n, func(i int) {
		a := src[i]
		cell := int(a.CellID)
		slot := cursors.Add(cell, 1)
		if slot < offsets[cell] || slot >= offsets[cell]+counts[cell] {
			violations.Add(0, 1)
			return
		}
		dst[slot] = a
	})
	if err != nil {
		return fatal(StageReindex, err)
	}
	st.dev.Barrier()

	if v := violations.Load(0); v > 0 {
		return fatal(StageReindex, fmt.Errorf("%w: %d agents fell outside their cell range", ErrInvariantViolation, v))
	}

	if deterministic {
		err := st.dev.Dispatch(st.grid.NumCells(), func(c int) {
			lo, hi := offsets[c], offsets[c]+counts[c]
			slices.SortFunc(dst[lo:hi], byID)
		})
		if err != nil {
			return fatal(StageReindex, err)
		}
		st.dev.Barrier()
	}

	if err := st.agents.CopyFrom(st.scratch); err != nil {
		return fatal(StageReindex, err)
	}
	return nil
}

func byID(a, b components.Agent) int {
	return cmp.Compare(a.ID, b.ID)
}
