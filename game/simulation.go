package game

import (
	"log/slog"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/systems"
	"github.com/pthm-cable/flock/telemetry"
)

// maxFrameDT bounds the wall-clock step so a stalled frame cannot launch
// agents across the domain.
const maxFrameDT = 0.1

// Update handles input and runs stepsPerUpdate ticks with the frame's dt.
func (g *Game) Update() error {
	g.handleInput()

	if g.paused {
		return nil
	}
	return g.runSteps(g.frameDT())
}

// UpdateHeadless runs stepsPerUpdate ticks at the fixed step.
// Fatal stage errors are returned when strict invariants are on.
func (g *Game) UpdateHeadless() error {
	return g.runSteps(g.cfg.Derived.StepDT)
}

func (g *Game) runSteps(dt float64) error {
	for i := 0; i < g.stepsPerUpdate; i++ {
		if err := g.Step(dt); err != nil && g.stopOn(err) {
			return err
		}
	}
	return nil
}

// stopOn reports whether err should end the run.
func (g *Game) stopOn(err error) bool {
	return g.strict && !systems.IsDegraded(err)
}

// Step runs one tick of the pipeline. A degraded or aborted tick leaves the
// store at its pre-tick state and does not advance simulation time; the
// stage error is returned either way.
func (g *Game) Step(dt float64) error {
	g.perfCollector.StartTick()
	launches := g.dev.Stats().Launches

	err := g.runStages(dt)

	g.perfCollector.AddLaunches(int(g.dev.Stats().Launches - launches))
	g.tick++
	g.lastErr = err

	switch {
	case err == nil:
		g.simTime += dt
		g.collector.RecordTick()
	case systems.IsDegraded(err):
		g.degradedTicks++
		g.collector.RecordDegraded()
		slog.Warn("tick degraded", "tick", g.tick, "error", err)
	default:
		g.abortedTicks++
		g.collector.RecordAborted()
		slog.Error("tick aborted", "tick", g.tick, "error", err)
		if g.snapshotDir != "" {
			g.saveSnapshot("aborted")
		}
	}

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()
	g.perfCollector.EndTick()

	return err
}

// runStages sequences the pipeline. Each stage finishes on the device
// before the next one starts.
func (g *Game) runStages(dt float64) error {
	pc := g.perfCollector
	st := g.state

	pc.StartPhase(telemetry.PhaseBucketCount)
	if err := systems.CountBuckets(st); err != nil {
		return err
	}

	pc.StartPhase(telemetry.PhasePrefixSum)
	if err := systems.ComputeOffsets(st); err != nil {
		return err
	}

	pc.StartPhase(telemetry.PhaseReindex)
	if err := systems.Reindex(st, g.cfg.Debug.DeterministicOrder); err != nil {
		return err
	}

	if g.strict {
		pc.StartPhase(telemetry.PhaseVerify)
		if err := systems.VerifyStore(st); err != nil {
			return err
		}
	}

	pc.StartPhase(telemetry.PhaseInteract)
	return systems.Interact(st, g.model(), dt)
}

// model returns the force model for this tick. The pointer override
// replaces the variant's model while it is active.
func (g *Game) model() systems.ForceModel {
	if g.pointerOn {
		return &systems.PointerOverride{Target: g.pointer, MaxSpeed: g.maxSpeed()}
	}
	if g.variant == config.VariantFluid {
		return systems.NewFluid(g.fluid, g.bounds)
	}
	f := systems.NewFlocking(g.flock, g.bounds, g.noise)
	f.Time = g.simTime
	return f
}

func (g *Game) maxSpeed() float64 {
	if g.variant == config.VariantFluid {
		return g.fluid.MaxSpeed
	}
	return g.flock.MaxSpeed
}

// frameDT returns the configured step, or the last frame's wall-clock
// duration when the step is 0.
func (g *Game) frameDT() float64 {
	if g.cfg.Simulation.DT > 0 {
		return g.cfg.Simulation.DT
	}
	dt := float64(frameTime())
	if dt <= 0 {
		return g.cfg.Derived.StepDT
	}
	if dt > maxFrameDT {
		return maxFrameDT
	}
	return dt
}
