package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/components"
)

// FluidParams are the particle-fluid tunables. Every particle has unit mass.
type FluidParams struct {
	SmoothingRadius     float64
	KernelScalingFactor float64
	TargetDensity       float64
	PressureMultiplier  float64
	GravityEnabled      bool
	GravityStrength     float64
	CollisionDamping    float64
	MaxSpeed            float64
}

// Fluid is a smoothed-particle pressure model. Densities come from a
// Prepare pass; forces use the symmetric pressure of each pair.
type Fluid struct {
	Params FluidParams
	Bounds components.Bounds
}

// NewFluid creates the model for bounds.
func NewFluid(p FluidParams, bounds components.Bounds) *Fluid {
	return &Fluid{Params: p, Bounds: bounds}
}

func (f *Fluid) Name() string { return "fluid" }

// Prepare stores the agent's density, its own contribution included.
func (f *Fluid) Prepare(a *components.Agent, nb Neighborhood) {
	density := f.Kernel(0)
	nb.Each(f.Params.SmoothingRadius, func(_ *components.Agent, _ r2.Vec, d2 float64) {
		density += f.Kernel(d2)
	})
	a.Density = density
}

// Kernel is the 2D poly6 smoothing kernel at squared distance d2.
func (f *Fluid) Kernel(d2 float64) float64 {
	h := f.Params.SmoothingRadius
	h2 := h * h
	if d2 >= h2 {
		return 0
	}
	x := h2 - d2
	norm := 4 / (math.Pi * math.Pow(h, 8))
	return f.Params.KernelScalingFactor * norm * x * x * x
}

// KernelSlope is the radial derivative of the 2D spiky kernel at distance r.
// It is zero or negative.
func (f *Fluid) KernelSlope(r float64) float64 {
	h := f.Params.SmoothingRadius
	if r >= h {
		return 0
	}
	x := h - r
	norm := 30 / (math.Pi * math.Pow(h, 5))
	return -f.Params.KernelScalingFactor * norm * x * x
}

// Pressure converts a density into pressure.
func (f *Fluid) Pressure(density float64) float64 {
	return f.Params.PressureMultiplier * (density - f.Params.TargetDensity)
}

// ComputeForces returns the pressure acceleration. The pressure gradient is
// also kept on the agent for the renderer.
func (f *Fluid) ComputeForces(a *components.Agent, nb Neighborhood) r2.Vec {
	self := f.Pressure(a.Density)

	var grad r2.Vec
	nb.Each(f.Params.SmoothingRadius, func(o *components.Agent, d r2.Vec, d2 float64) {
		if d2 == 0 || o.Density == 0 {
			return
		}
		r := math.Sqrt(d2)
		// d points at the neighbor; the gradient direction is self − other.
		dir := r2.Scale(-1/r, d)
		shared := (self + f.Pressure(o.Density)) / 2
		grad = r2.Add(grad, r2.Scale(shared*f.KernelSlope(r)/o.Density, dir))
	})
	a.PressureGradient = grad

	if a.Density == 0 {
		return r2.Vec{}
	}
	return r2.Scale(-1/a.Density, grad)
}

// Integrate applies pressure and gravity, clamps the speed, advances the
// position and bounces off the domain walls.
func (f *Fluid) Integrate(a *components.Agent, accel r2.Vec, dt float64) {
	p := f.Params
	if p.GravityEnabled {
		accel.Y -= p.GravityStrength
	}
	v := r2.Add(a.Velocity, r2.Scale(dt, accel))
	if speed := math.Hypot(v.X, v.Y); speed > p.MaxSpeed && speed > 0 {
		v = r2.Scale(p.MaxSpeed/speed, v)
	}
	pos := r2.Add(a.Position, r2.Scale(dt, v))

	b := f.Bounds
	if pos.X < b.Min.X {
		pos.X = b.Min.X
		v.X = math.Abs(v.X) * p.CollisionDamping
	} else if pos.X > b.Max.X {
		pos.X = b.Max.X
		v.X = -math.Abs(v.X) * p.CollisionDamping
	}
	if pos.Y < b.Min.Y {
		pos.Y = b.Min.Y
		v.Y = math.Abs(v.Y) * p.CollisionDamping
	} else if pos.Y > b.Max.Y {
		pos.Y = b.Max.Y
		v.Y = -math.Abs(v.Y) * p.CollisionDamping
	}

	a.Velocity = v
	a.Position = pos
}
