// Package main provides CMA-ES tuning of the flocking parameters.
package main

import (
	"github.com/pthm-cable/flock/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
// Speed bounds stay locked so runs remain comparable.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "visual_range", Path: "flocking.visual_range", Min: 0.05, Max: 0.5, Default: 0.25},
			{Name: "protected_range", Path: "flocking.protected_range", Min: 0.01, Max: 0.2, Default: 0.1},
			{Name: "centering_factor", Path: "flocking.centering_factor", Min: 0.0, Max: 0.1, Default: 0.02},
			{Name: "matching_factor", Path: "flocking.matching_factor", Min: 0.0, Max: 0.3, Default: 0.05},
			{Name: "avoid_factor", Path: "flocking.avoid_factor", Min: 0.0, Max: 1.0, Default: 0.2},
			{Name: "turn_factor", Path: "flocking.turn_factor", Min: 0.05, Max: 1.0, Default: 0.35},
			{Name: "border_margin", Path: "flocking.border_margin", Min: 0.0, Max: 0.4, Default: 0.1},
			{Name: "rand_factor", Path: "flocking.rand_factor", Min: 0.0, Max: 0.2, Default: 0.05},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	c := pv.Clamp(values)
	f := &cfg.Flocking
	f.VisualRange = c[0]
	f.ProtectedRange = c[1]
	f.CenteringFactor = c[2]
	f.MatchingFactor = c[3]
	f.AvoidFactor = c[4]
	f.TurnFactor = c[5]
	f.BorderMargin = c[6]
	f.RandFactor = c[7]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	f := cfg.Flocking
	return []float64{
		f.VisualRange,
		f.ProtectedRange,
		f.CenteringFactor,
		f.MatchingFactor,
		f.AvoidFactor,
		f.TurnFactor,
		f.BorderMargin,
		f.RandFactor,
	}
}
