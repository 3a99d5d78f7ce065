package components

import "gonum.org/v1/gonum/spatial/r2"

// Agent is one simulated point. The record is copied whole by the counting
// sort, so it stays a plain value type.
type Agent struct {
	Position r2.Vec
	Velocity r2.Vec

	// CellID is the row-major grid cell, recomputed every tick.
	CellID uint32
	// RankInCell is the arrival order in the cell's counter during bucket
	// counting. Only meaningful between counting and reindexing.
	RankInCell uint32
	// ID is the stable identity assigned at spawn.
	ID uint32

	// Fluid scratch, rebuilt every tick.
	Density          float64
	PressureGradient r2.Vec
}

// Speed returns the velocity magnitude.
func (a *Agent) Speed() float64 {
	return r2.Norm(a.Velocity)
}
