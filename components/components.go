// Package components defines the agent record and the initial layouts the
// agent store is seeded with.
package components

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// Bounds is an axis-aligned rectangle of the simulated domain.
type Bounds struct {
	Min, Max r2.Vec
}

// Size returns the width and height of the bounds.
func (b Bounds) Size() r2.Vec {
	return r2.Sub(b.Max, b.Min)
}

// Center returns the midpoint of the bounds.
func (b Bounds) Center() r2.Vec {
	return r2.Scale(0.5, r2.Add(b.Min, b.Max))
}

// Contains reports whether p lies inside the closed bounds.
func (b Bounds) Contains(p r2.Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// SpawnRing places every agent near the center, offset 0.1 along its own
// unit-circle direction, moving outward at unit speed.
func SpawnRing(n int, b Bounds) []Agent {
	agents := make([]Agent, n)
	center := b.Center()
	angleStep := 2 * math.Pi / float64(n)

	for i := range agents {
		angle := float64(i) * angleStep
		dir := r2.Vec{X: math.Cos(angle), Y: math.Sin(angle)}
		agents[i] = Agent{
			ID:       uint32(i),
			Position: r2.Add(center, r2.Scale(0.1, dir)),
			Velocity: dir,
		}
	}
	return agents
}

// SpawnRandom scatters agents uniformly over the bounds with small random velocities.
func SpawnRandom(n int, b Bounds, speed float64, rng *rand.Rand) []Agent {
	agents := make([]Agent, n)
	size := b.Size()

	for i := range agents {
		angle := rng.Float64() * 2 * math.Pi
		agents[i] = Agent{
			ID: uint32(i),
			Position: r2.Vec{
				X: b.Min.X + rng.Float64()*size.X,
				Y: b.Min.Y + rng.Float64()*size.Y,
			},
			Velocity: r2.Scale(speed*rng.Float64(), r2.Vec{X: math.Cos(angle), Y: math.Sin(angle)}),
		}
	}
	return agents
}

// SpawnLattice arranges agents at rest on a square lattice centered in the
// bounds, covering the middle half of the domain.
func SpawnLattice(n int, b Bounds) []Agent {
	agents := make([]Agent, n)
	side := int(math.Ceil(math.Sqrt(float64(n))))
	size := b.Size()
	center := b.Center()
	spacing := r2.Vec{X: size.X * 0.5 / float64(side), Y: size.Y * 0.5 / float64(side)}
	origin := r2.Sub(center, r2.Scale(0.5*float64(side-1), spacing))

	for i := range agents {
		col, row := i%side, i/side
		agents[i] = Agent{
			ID: uint32(i),
			Position: r2.Vec{
				X: origin.X + float64(col)*spacing.X,
				Y: origin.Y + float64(row)*spacing.Y,
			},
		}
	}
	return agents
}
