package systems

// CountBuckets assigns every agent its cell and counts the agents per cell.
//
// Each invocation bumps its cell counter with a fetch-and-add, so the counts
// are exact under any interleaving and the returned old value is the agent's
// rank in the cell. The counts are read back to the host; any failure there
// is fatal since the prefix sum cannot run without them.
func CountBuckets(st *SimState) error {
	if err := st.counts.Fill(0); err != nil {
		return fatal(StageBucketCount, err)
	}

	agents := st.agents.Storage()
	counts := st.counts
	grid := st.grid
	err := st.dev.Dispatch(st.n, func(i int) {
		a := &agents[i]
		a.CellID = grid.CellOf(a.Position)
		a.RankInCell = counts.Add(int(a.CellID), 1)
	})
	if err != nil {
		return fatal(StageBucketCount, err)
	}
	st.dev.Barrier()

	if err := readback(st.counts.Buffer, st.hostCounts); err != nil {
		return fatal(StageBucketCount, err)
	}
	return nil
}
