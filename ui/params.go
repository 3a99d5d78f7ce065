package ui

import "github.com/pthm-cable/flock/systems"

// SliderDescriptor binds a panel slider to a live float64 parameter.
type SliderDescriptor struct {
	ID     string
	Label  string
	Min    float32
	Max    float32
	Format string
	Value  *float64
}

// Get returns the bound value as the slider sees it.
func (d SliderDescriptor) Get() float32 {
	return float32(*d.Value)
}

// Set clamps v into the slider range and stores it. It reports whether the
// bound value changed.
func (d SliderDescriptor) Set(v float32) bool {
	if v < d.Min {
		v = d.Min
	}
	if v > d.Max {
		v = d.Max
	}
	if float32(*d.Value) == v {
		return false
	}
	*d.Value = float64(v)
	return true
}

// ToggleDescriptor binds a panel checkbox to a live flag.
type ToggleDescriptor struct {
	ID       string
	Label    string
	KeyLabel string
	Value    *bool
}

// FlockingSliders returns the sliders for the boid tunables.
func FlockingSliders(p *systems.FlockParams) []SliderDescriptor {
	return []SliderDescriptor{
		{ID: "visual_range", Label: "Visual Range", Min: 0, Max: 2, Format: "%.3f", Value: &p.VisualRange},
		{ID: "protected_range", Label: "Protected Range", Min: 0, Max: 1, Format: "%.3f", Value: &p.ProtectedRange},
		{ID: "centering_factor", Label: "Centering", Min: 0, Max: 0.1, Format: "%.4f", Value: &p.CenteringFactor},
		{ID: "matching_factor", Label: "Matching", Min: 0, Max: 0.1, Format: "%.4f", Value: &p.MatchingFactor},
		{ID: "avoid_factor", Label: "Avoid", Min: 0, Max: 0.5, Format: "%.3f", Value: &p.AvoidFactor},
		{ID: "border_margin", Label: "Border Margin", Min: 0, Max: 0.3, Format: "%.3f", Value: &p.BorderMargin},
		{ID: "turn_factor", Label: "Turn", Min: 0, Max: 0.5, Format: "%.3f", Value: &p.TurnFactor},
		{ID: "min_speed", Label: "Min Speed", Min: 0, Max: 0.5, Format: "%.3f", Value: &p.MinSpeed},
		{ID: "max_speed", Label: "Max Speed", Min: 0, Max: 1, Format: "%.3f", Value: &p.MaxSpeed},
		{ID: "rand_factor", Label: "Wander", Min: 0, Max: 1, Format: "%.3f", Value: &p.RandFactor},
	}
}

// FluidSliders returns the sliders for the fluid tunables.
func FluidSliders(p *systems.FluidParams) []SliderDescriptor {
	return []SliderDescriptor{
		{ID: "smoothing_radius", Label: "Smoothing", Min: 0.01, Max: 0.5, Format: "%.3f", Value: &p.SmoothingRadius},
		{ID: "kernel_scaling_factor", Label: "Kernel Scale", Min: 0, Max: 5, Format: "%.2f", Value: &p.KernelScalingFactor},
		{ID: "target_density", Label: "Target Density", Min: 0, Max: 500, Format: "%.0f", Value: &p.TargetDensity},
		{ID: "pressure_multiplier", Label: "Pressure", Min: 0, Max: 0.02, Format: "%.4f", Value: &p.PressureMultiplier},
		{ID: "gravity_strength", Label: "Gravity", Min: 0, Max: 2, Format: "%.2f", Value: &p.GravityStrength},
		{ID: "collision_damping", Label: "Damping", Min: 0, Max: 1, Format: "%.2f", Value: &p.CollisionDamping},
		{ID: "max_speed", Label: "Max Speed", Min: 0, Max: 3, Format: "%.2f", Value: &p.MaxSpeed},
	}
}

// FluidToggles returns the checkboxes for the fluid flags.
func FluidToggles(p *systems.FluidParams) []ToggleDescriptor {
	return []ToggleDescriptor{
		{ID: "gravity_enabled", Label: "Gravity", Value: &p.GravityEnabled},
	}
}
