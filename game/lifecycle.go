package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/systems"
	"github.com/pthm-cable/flock/telemetry"
)

// spawnAgents lays out the initial store from the configured spawn.
func (g *Game) spawnAgents() []components.Agent {
	n := g.cfg.Simulation.Population
	switch g.cfg.Simulation.Spawn {
	case config.SpawnRandom:
		speed := g.flock.MaxSpeed
		if g.variant == config.VariantFluid {
			speed = 0
		}
		return components.SpawnRandom(n, g.bounds, speed, g.rng)
	case config.SpawnLattice:
		return components.SpawnLattice(n, g.bounds)
	default:
		return components.SpawnRing(n, g.bounds)
	}
}

// Reset replaces the store with a fresh spawn, or with agents when given.
// The population size cannot change.
func (g *Game) Reset(agents []components.Agent) error {
	if agents == nil {
		agents = g.spawnAgents()
	}
	if len(agents) != g.state.Len() {
		return fmt.Errorf("reset: population is fixed at %d, got %d agents", g.state.Len(), len(agents))
	}
	if err := g.state.Reset(agents); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if g.trails != nil {
		g.trails.Clear()
	}
	slog.Info("store reset", "tick", g.tick, "population", len(agents))
	return nil
}

// Restore loads a snapshot's store and clock.
func (g *Game) Restore(s *telemetry.Snapshot) error {
	agents, err := s.Restore()
	if err != nil {
		return err
	}
	if s.Model != g.variant {
		slog.Warn("snapshot variant differs", "snapshot", s.Model, "running", g.variant)
	}
	if err := g.Reset(agents); err != nil {
		return err
	}
	g.tick = s.Tick
	g.simTime = s.SimTime
	return nil
}

func flockParams(c config.FlockingConfig) systems.FlockParams {
	return systems.FlockParams{
		VisualRange:     c.VisualRange,
		ProtectedRange:  c.ProtectedRange,
		CenteringFactor: c.CenteringFactor,
		MatchingFactor:  c.MatchingFactor,
		AvoidFactor:     c.AvoidFactor,
		BorderMargin:    c.BorderMargin,
		TurnFactor:      c.TurnFactor,
		MinSpeed:        c.MinSpeed,
		MaxSpeed:        c.MaxSpeed,
		RandFactor:      c.RandFactor,
	}
}

func fluidParams(c config.FluidConfig) systems.FluidParams {
	return systems.FluidParams{
		SmoothingRadius:     c.SmoothingRadius,
		KernelScalingFactor: c.KernelScalingFactor,
		TargetDensity:       c.TargetDensity,
		PressureMultiplier:  c.PressureMultiplier,
		GravityEnabled:      c.GravityEnabled,
		GravityStrength:     c.GravityStrength,
		CollisionDamping:    c.CollisionDamping,
		MaxSpeed:            c.MaxSpeed,
	}
}
