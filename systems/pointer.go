package systems

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/components"
)

// PointerOverride ignores neighbors and sends every agent straight at
// Target at MaxSpeed.
type PointerOverride struct {
	Target   r2.Vec
	MaxSpeed float64
}

func (p *PointerOverride) Name() string { return "pointer" }

// ComputeForces returns the velocity change that replaces the agent's
// velocity with the seek velocity.
func (p *PointerOverride) ComputeForces(a *components.Agent, _ Neighborhood) r2.Vec {
	return r2.Sub(p.Seek(a.Position), a.Velocity)
}

// Seek returns the velocity toward Target at MaxSpeed, or zero at the target.
func (p *PointerOverride) Seek(pos r2.Vec) r2.Vec {
	to := r2.Sub(p.Target, pos)
	if to.X == 0 && to.Y == 0 {
		return r2.Vec{}
	}
	return r2.Scale(p.MaxSpeed, r2.Unit(to))
}

func (p *PointerOverride) Integrate(a *components.Agent, dv r2.Vec, dt float64) {
	a.Velocity = r2.Add(a.Velocity, dv)
	a.Position = r2.Add(a.Position, r2.Scale(dt, a.Velocity))
}
