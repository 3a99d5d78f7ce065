package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	Population int    `csv:"population"`
	Model      string `csv:"model"`

	// Tick outcomes during the window
	Ticks         int `csv:"ticks"`
	DegradedTicks int `csv:"degraded_ticks"`
	AbortedTicks  int `csv:"aborted_ticks"`

	// Speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
	SpeedMax  float64 `csv:"speed_max"`

	// Fluid density, zero for models that do not compute it
	DensityMean float64 `csv:"density_mean"`
	DensityP90  float64 `csv:"density_p90"`

	// Grid load
	OccupiedCells int     `csv:"occupied_cells"`
	MaxCellCount  int     `csv:"max_cell_count"`
	CellCountStd  float64 `csv:"cell_count_std"`

	// Shape of the swarm
	CentroidX float64 `csv:"centroid_x"`
	CentroidY float64 `csv:"centroid_y"`
	Spread    float64 `csv:"spread"`

	// Length of the mean heading; 1 when every agent moves the same way.
	Polarization float64 `csv:"polarization"`
	Escaped      int     `csv:"escaped"` // agents outside the domain
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Distribution summarizes a sample.
type Distribution struct {
	Mean, Std     float64
	P10, P50, P90 float64
	Max           float64
}

// ComputeDistribution calculates mean, population standard deviation,
// percentiles and maximum of values.
func ComputeDistribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	mean, std := stat.PopMeanStdDev(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return Distribution{
		Mean: mean,
		Std:  std,
		P10:  Percentile(sorted, 0.10),
		P50:  Percentile(sorted, 0.50),
		P90:  Percentile(sorted, 0.90),
		Max:  floats.Max(sorted),
	}
}

// CellLoad describes how agents are spread over the grid cells.
type CellLoad struct {
	Occupied int
	Max      int
	Std      float64
}

// ComputeCellLoad summarizes per-cell agent counts.
func ComputeCellLoad(counts []uint32) CellLoad {
	if len(counts) == 0 {
		return CellLoad{}
	}
	values := make([]float64, len(counts))
	var load CellLoad
	for i, c := range counts {
		values[i] = float64(c)
		if c > 0 {
			load.Occupied++
		}
		if int(c) > load.Max {
			load.Max = int(c)
		}
	}
	_, load.Std = stat.PopMeanStdDev(values, nil)
	if math.IsNaN(load.Std) {
		load.Std = 0
	}
	return load
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("population", s.Population),
		slog.String("model", s.Model),
		slog.Int("ticks", s.Ticks),
		slog.Int("degraded_ticks", s.DegradedTicks),
		slog.Int("aborted_ticks", s.AbortedTicks),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("speed_max", s.SpeedMax),
		slog.Float64("density_mean", s.DensityMean),
		slog.Float64("density_p90", s.DensityP90),
		slog.Int("occupied_cells", s.OccupiedCells),
		slog.Int("max_cell_count", s.MaxCellCount),
		slog.Float64("cell_count_std", s.CellCountStd),
		slog.Float64("centroid_x", s.CentroidX),
		slog.Float64("centroid_y", s.CentroidY),
		slog.Float64("spread", s.Spread),
		slog.Float64("polarization", s.Polarization),
		slog.Int("escaped", s.Escaped),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
