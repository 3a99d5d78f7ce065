package systems

import (
	"fmt"

	"github.com/pthm-cable/flock/components"
)

// VerifyPartition checks a reindexed agent array against its counts and
// offsets: every cell range holds exactly its own agents, the ranges cover
// the array, and each agent ID in [0, n) appears once.
func VerifyPartition(agents []components.Agent, counts, offsets []uint32) error {
	if err := CheckConservation(counts, offsets, len(agents)); err != nil {
		return err
	}
	for c := range counts {
		lo, hi := offsets[c], offsets[c]+counts[c]
		for i := lo; i < hi; i++ {
			if agents[i].CellID != uint32(c) {
				return fmt.Errorf("%w: slot %d in cell %d range holds agent of cell %d",
					ErrInvariantViolation, i, c, agents[i].CellID)
			}
		}
	}

	seen := make([]bool, len(agents))
	for i := range agents {
		id := agents[i].ID
		if int(id) >= len(agents) || seen[id] {
			return fmt.Errorf("%w: agent %d duplicated or out of range", ErrInvariantViolation, id)
		}
		seen[id] = true
	}
	return nil
}

// VerifyStore reads the device agent buffer back and runs VerifyPartition
// against the last counts and offsets.
func VerifyStore(st *SimState) error {
	if err := readback(st.agents, st.staging); err != nil {
		return fatal(StageReindex, err)
	}
	if err := VerifyPartition(st.staging, st.hostCounts, st.hostOffsets); err != nil {
		return fatal(StageReindex, err)
	}
	return nil
}
