package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/components"
)

// FlockParams are the boid tunables.
type FlockParams struct {
	VisualRange     float64
	ProtectedRange  float64
	CenteringFactor float64
	MatchingFactor  float64
	AvoidFactor     float64
	BorderMargin    float64
	TurnFactor      float64
	MinSpeed        float64
	MaxSpeed        float64
	RandFactor      float64
}

// Flocking is the separation, alignment and cohesion model with soft walls.
type Flocking struct {
	Params FlockParams
	Bounds components.Bounds

	// Noise drives the optional wander term. Time is the simulation clock
	// it is sampled at, advanced by the caller between ticks.
	Noise *Noise
	Time  float64
}

// NewFlocking creates the model for bounds.
func NewFlocking(p FlockParams, bounds components.Bounds, noise *Noise) *Flocking {
	return &Flocking{Params: p, Bounds: bounds, Noise: noise}
}

func (f *Flocking) Name() string { return "flocking" }

// ComputeForces sums separation over neighbors inside the protected range
// and alignment and cohesion over every neighbor inside the visual range.
func (f *Flocking) ComputeForces(a *components.Agent, nb Neighborhood) r2.Vec {
	p := f.Params
	protected2 := p.ProtectedRange * p.ProtectedRange

	var away, posSum, velSum r2.Vec
	neighbors := 0
	nb.Each(p.VisualRange, func(o *components.Agent, d r2.Vec, d2 float64) {
		if d2 < protected2 {
			away = r2.Sub(away, d)
		}
		posSum = r2.Add(posSum, o.Position)
		velSum = r2.Add(velSum, o.Velocity)
		neighbors++
	})

	dv := r2.Scale(p.AvoidFactor, away)
	if neighbors > 0 {
		inv := 1 / float64(neighbors)
		avgVel := r2.Scale(inv, velSum)
		avgPos := r2.Scale(inv, posSum)
		dv = r2.Add(dv, r2.Scale(p.MatchingFactor, r2.Sub(avgVel, a.Velocity)))
		dv = r2.Add(dv, r2.Scale(p.CenteringFactor, r2.Sub(avgPos, a.Position)))
	}
	return dv
}

// Integrate applies the flocking term, wall steering and wander, clamps the
// speed and advances the position.
func (f *Flocking) Integrate(a *components.Agent, dv r2.Vec, dt float64) {
	p := f.Params
	v := r2.Add(a.Velocity, dv)
	v = r2.Add(v, f.steer(a.Position))
	if p.RandFactor != 0 && f.Noise != nil {
		v = r2.Add(v, r2.Scale(p.RandFactor, f.Noise.Jitter(a.ID, f.Time)))
	}
	a.Velocity = ClampSpeed(v, p.MinSpeed, p.MaxSpeed)
	a.Position = r2.Add(a.Position, r2.Scale(dt, a.Velocity))
}

// steer pushes back toward the interior by TurnFactor per axis once a
// position is within BorderMargin of an edge.
func (f *Flocking) steer(pos r2.Vec) r2.Vec {
	p := f.Params
	var s r2.Vec
	if pos.X < f.Bounds.Min.X+p.BorderMargin {
		s.X += p.TurnFactor
	}
	if pos.X > f.Bounds.Max.X-p.BorderMargin {
		s.X -= p.TurnFactor
	}
	if pos.Y < f.Bounds.Min.Y+p.BorderMargin {
		s.Y += p.TurnFactor
	}
	if pos.Y > f.Bounds.Max.Y-p.BorderMargin {
		s.Y -= p.TurnFactor
	}
	return s
}

// ClampSpeed limits |v| to [lo, hi]. Reversed bounds are swapped. A zero
// vector has no direction and becomes (lo, 0).
func ClampSpeed(v r2.Vec, lo, hi float64) r2.Vec {
	if lo > hi {
		lo, hi = hi, lo
	}
	speed := math.Hypot(v.X, v.Y)
	switch {
	case speed == 0:
		return r2.Vec{X: lo}
	case speed > hi:
		return r2.Scale(hi/speed, v)
	case speed < lo:
		return r2.Scale(lo/speed, v)
	}
	return v
}
