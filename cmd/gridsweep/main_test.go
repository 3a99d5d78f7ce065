package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/device"
	"github.com/pthm-cable/flock/systems"
)

func sweepConfig(t *testing.T, gridSize int) *config.Config {
	t.Helper()
	cfg, err := config.Defaults()
	require.NoError(t, err)
	cfg.Simulation.Population = 64
	cfg.Simulation.GridSize = gridSize
	cfg.Device.Workers = 2
	require.NoError(t, cfg.Refresh())
	return cfg
}

func TestSweepTimesEveryCommittedTick(t *testing.T) {
	row, err := sweep(sweepConfig(t, 4), "", 1, 2, 10, nil)
	require.NoError(t, err)

	assert.Equal(t, 16, row.Cells)
	assert.Equal(t, 10, row.TimedTicks)
	assert.Empty(t, row.FirstError)
	assert.Greater(t, row.MeanOccupied, 0.0)
	assert.LessOrEqual(t, row.MinTickMs, row.AvgTickMs)
}

func TestSweepReportsFailedTicks(t *testing.T) {
	faults := device.FailTimes(device.OpMap, systems.BufCounts, 3)
	row, err := sweep(sweepConfig(t, 8), "", 1, 0, 10, faults)
	require.NoError(t, err)

	assert.Equal(t, 3, row.AbortedTicks)
	assert.Equal(t, 7, row.TimedTicks, "aborted ticks are not timed")
	assert.Contains(t, row.FirstError, string(systems.StageBucketCount))
}

func TestNextSizeAlwaysGrows(t *testing.T) {
	assert.Equal(t, 8, nextSize(4, 2))
	assert.Equal(t, 5, nextSize(4, 1.1))
}
