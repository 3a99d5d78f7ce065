package systems

import "fmt"

// ExclusiveScan writes offsets[c] = Σ counts[0..c) and returns the total.
// offsets must be at least as long as counts.
func ExclusiveScan(counts, offsets []uint32) uint32 {
	var sum uint32
	for c, n := range counts {
		offsets[c] = sum
		sum += n
	}
	return sum
}

// CheckConservation verifies that counts account for exactly n agents and
// that offsets is their exclusive prefix sum.
func CheckConservation(counts, offsets []uint32, n int) error {
	if len(counts) != len(offsets) {
		return fmt.Errorf("%w: %d counts, %d offsets", ErrInvariantViolation, len(counts), len(offsets))
	}
	var sum uint64
	for c, k := range counts {
		if uint64(offsets[c]) != sum {
			return fmt.Errorf("%w: offset[%d] = %d, expected %d", ErrInvariantViolation, c, offsets[c], sum)
		}
		sum += uint64(k)
	}
	if sum != uint64(n) {
		return fmt.Errorf("%w: counts sum to %d for %d agents", ErrInvariantViolation, sum, n)
	}
	return nil
}

// ComputeOffsets scans the host counts on the host, checks conservation and
// uploads the offsets for the reindex stage.
func ComputeOffsets(st *SimState) error {
	ExclusiveScan(st.hostCounts, st.hostOffsets)
	if err := CheckConservation(st.hostCounts, st.hostOffsets, st.n); err != nil {
		return fatal(StagePrefixSum, err)
	}
	if err := st.offsets.Write(st.hostOffsets); err != nil {
		return fatal(StagePrefixSum, err)
	}
	return nil
}
