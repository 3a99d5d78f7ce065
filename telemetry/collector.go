package telemetry

import (
	"math"

	"github.com/pthm-cable/flock/components"
)

// Collector accumulates tick outcomes within time windows and produces
// WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	windowStartTick int32

	ticks    int
	degraded int
	aborted  int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int32(1)
	if dt > 0 {
		ticksPerWindow = int32(windowDurationSec / dt)
	}
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordTick records a committed tick.
func (c *Collector) RecordTick() {
	c.ticks++
}

// RecordDegraded records a tick whose result was not committed.
func (c *Collector) RecordDegraded() {
	c.degraded++
}

// RecordAborted records a tick aborted by a fatal stage error.
func (c *Collector) RecordAborted() {
	c.aborted++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush samples the store and produces a WindowStats, then resets the
// counters for the next window.
func (c *Collector) Flush(currentTick int32, model string, agents []components.Agent, counts []uint32, bounds components.Bounds) WindowStats {
	speeds := make([]float64, len(agents))
	var densities []float64
	var cx, cy float64
	var hx, hy float64
	moving := 0
	escaped := 0
	for i := range agents {
		a := &agents[i]
		speeds[i] = a.Speed()
		if speeds[i] > 0 {
			hx += a.Velocity.X / speeds[i]
			hy += a.Velocity.Y / speeds[i]
			moving++
		}
		if a.Density > 0 {
			densities = append(densities, a.Density)
		}
		cx += a.Position.X
		cy += a.Position.Y
		if !bounds.Contains(a.Position) {
			escaped++
		}
	}

	var spread float64
	if n := float64(len(agents)); n > 0 {
		cx /= n
		cy /= n
		for i := range agents {
			dx := agents[i].Position.X - cx
			dy := agents[i].Position.Y - cy
			spread += dx*dx + dy*dy
		}
		spread = math.Sqrt(spread / n)
	}
	var polarization float64
	if moving > 0 {
		polarization = math.Hypot(hx, hy) / float64(moving)
	}

	speed := ComputeDistribution(speeds)
	density := ComputeDistribution(densities)
	load := ComputeCellLoad(counts)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Population: len(agents),
		Model:      model,

		Ticks:         c.ticks,
		DegradedTicks: c.degraded,
		AbortedTicks:  c.aborted,

		SpeedMean: speed.Mean,
		SpeedStd:  speed.Std,
		SpeedP10:  speed.P10,
		SpeedP50:  speed.P50,
		SpeedP90:  speed.P90,
		SpeedMax:  speed.Max,

		DensityMean: density.Mean,
		DensityP90:  density.P90,

		OccupiedCells: load.Occupied,
		MaxCellCount:  load.Max,
		CellCountStd:  load.Std,

		CentroidX: cx,
		CentroidY: cy,
		Spread:    spread,
		Escaped:   escaped,

		Polarization: polarization,
	}

	c.windowStartTick = currentTick
	c.ticks = 0
	c.degraded = 0
	c.aborted = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
