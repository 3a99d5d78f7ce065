package game

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/device"
	"github.com/pthm-cable/flock/systems"
	"github.com/pthm-cable/flock/telemetry"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Defaults()
	require.NoError(t, err)
	cfg.Simulation.Population = 64
	cfg.Device.Workers = 2
	return cfg
}

func newHeadless(t *testing.T, opts Options) *Game {
	t.Helper()
	if opts.Config == nil {
		opts.Config = testConfig(t)
	}
	opts.Headless = true
	g, err := NewGameWithOptions(opts)
	require.NoError(t, err)
	t.Cleanup(g.Unload)
	return g
}

func positionsByID(agents []components.Agent) map[uint32]r2.Vec {
	m := make(map[uint32]r2.Vec, len(agents))
	for _, a := range agents {
		m[a.ID] = a.Position
	}
	return m
}

func TestHeadlessTicksCommit(t *testing.T) {
	g := newHeadless(t, Options{Seed: 1, StepsPerUpdate: 5})
	dt := g.cfg.Derived.StepDT

	for i := 0; i < 4; i++ {
		require.NoError(t, g.UpdateHeadless())
	}

	assert.Equal(t, int32(20), g.Tick())
	assert.InDelta(t, 20*dt, g.SimTime(), 1e-9)
	assert.Zero(t, g.DegradedTicks())
	assert.Zero(t, g.AbortedTicks())

	st := g.State()
	require.NoError(t, systems.VerifyStore(st))
	assert.Len(t, g.Agents(), 64)
}

func TestFlockingKeepsSpeedBounds(t *testing.T) {
	g := newHeadless(t, Options{Seed: 2})
	p := g.FlockParams()

	for i := 0; i < 30; i++ {
		require.NoError(t, g.Step(g.cfg.Derived.StepDT))
	}
	for _, a := range g.Agents() {
		s := a.Speed()
		assert.GreaterOrEqual(t, s, p.MinSpeed-1e-9, "agent %d", a.ID)
		assert.LessOrEqual(t, s, p.MaxSpeed+1e-9, "agent %d", a.ID)
	}
}

func TestDegradedTickKeepsStore(t *testing.T) {
	g := newHeadless(t, Options{
		Seed:   3,
		Faults: device.FailTimes(device.OpMap, systems.BufNext, 1),
	})
	before := positionsByID(g.Agents())

	err := g.Step(0.1)
	require.Error(t, err)
	assert.True(t, systems.IsDegraded(err))
	assert.True(t, errors.Is(err, device.ErrMapFailed))

	assert.Equal(t, before, positionsByID(g.Agents()))
	assert.Equal(t, 1, g.DegradedTicks())
	assert.Zero(t, g.SimTime(), "degraded tick must not advance time")
	assert.Equal(t, int32(1), g.Tick())

	// The fault is spent; the next tick commits.
	require.NoError(t, g.Step(0.1))
	assert.NotEqual(t, before, positionsByID(g.Agents()))
	assert.InDelta(t, 0.1, g.SimTime(), 1e-12)
}

func TestDegradedTickDoesNotStopHeadlessRun(t *testing.T) {
	g := newHeadless(t, Options{
		Seed:           4,
		StepsPerUpdate: 3,
		Faults:         device.FailTimes(device.OpMap, systems.BufNext, 2),
	})

	require.NoError(t, g.UpdateHeadless())
	assert.Equal(t, 2, g.DegradedTicks())
	assert.Equal(t, int32(3), g.Tick())
}

func TestFatalTickStopsStrictRun(t *testing.T) {
	g := newHeadless(t, Options{
		Seed:           5,
		StepsPerUpdate: 3,
		Faults:         device.FailTimes(device.OpMap, systems.BufCounts, 1),
	})
	before := positionsByID(g.Agents())

	err := g.UpdateHeadless()
	require.Error(t, err)

	var se *systems.StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, systems.StageBucketCount, se.Stage)
	assert.Equal(t, systems.SeverityFatal, se.Severity)

	assert.Equal(t, int32(1), g.Tick(), "strict run stops at the failing tick")
	assert.Equal(t, 1, g.AbortedTicks())
	assert.Equal(t, before, positionsByID(g.Agents()))
}

func TestFatalTickContinuesWhenNotStrict(t *testing.T) {
	cfg := testConfig(t)
	cfg.Debug.StrictInvariants = false
	g := newHeadless(t, Options{
		Config:         cfg,
		Seed:           6,
		StepsPerUpdate: 3,
		Faults:         device.FailTimes(device.OpMap, systems.BufCounts, 1),
	})

	require.NoError(t, g.UpdateHeadless())
	assert.Equal(t, 1, g.AbortedTicks())
	assert.Equal(t, int32(3), g.Tick())
	assert.InDelta(t, 2*cfg.Derived.StepDT, g.SimTime(), 1e-12)
}

func TestPointerOverrideSteersToTarget(t *testing.T) {
	g := newHeadless(t, Options{Seed: 7})
	target := r2.Vec{X: 0.5, Y: -0.25}
	g.SetPointer(target, true)

	require.NoError(t, g.Step(0.01))

	maxSpeed := g.FlockParams().MaxSpeed
	for _, a := range g.Agents() {
		assert.InDelta(t, maxSpeed, a.Speed(), 1e-9, "agent %d", a.ID)
		to := r2.Sub(target, a.Position)
		// The velocity was aimed from the pre-tick position, so after a short
		// step it still points at the target.
		assert.Greater(t, r2.Dot(to, a.Velocity), 0.0, "agent %d", a.ID)
	}

	g.SetPointer(target, false)
	assert.Equal(t, "flocking", g.model().Name())
}

func TestFluidVariant(t *testing.T) {
	cfg := testConfig(t)
	cfg.Simulation.Spawn = config.SpawnLattice
	g := newHeadless(t, Options{Config: cfg, Seed: 8, Variant: config.VariantFluid})

	assert.Equal(t, config.VariantFluid, g.Variant())
	for i := 0; i < 10; i++ {
		require.NoError(t, g.Step(cfg.Derived.StepDT))
	}
	for _, a := range g.Agents() {
		assert.Greater(t, a.Density, 0.0)
		assert.True(t, g.Bounds().Contains(a.Position), "agent %d escaped to %v", a.ID, a.Position)
	}
}

func TestUnknownVariant(t *testing.T) {
	_, err := NewGameWithOptions(Options{Config: testConfig(t), Headless: true, Variant: "gas"})
	assert.True(t, errors.Is(err, config.ErrInvalid))
}

func TestStatsCallbackAndOutput(t *testing.T) {
	dir := t.TempDir()
	var windows []telemetry.WindowStats

	cfg := testConfig(t)
	g := newHeadless(t, Options{
		Config:         cfg,
		Seed:           9,
		StatsWindowSec: 5.5 * cfg.Derived.StepDT,
		OutputDir:      dir,
		StatsCallback:  func(s telemetry.WindowStats) { windows = append(windows, s) },
	})

	for i := 0; i < 10; i++ {
		require.NoError(t, g.Step(cfg.Derived.StepDT))
	}

	require.Len(t, windows, 2)
	assert.Equal(t, 64, windows[0].Population)
	assert.Equal(t, "flocking", windows[0].Model)
	assert.Equal(t, 5, windows[1].Ticks)

	for _, name := range []string{"telemetry.csv", "perf.csv", "config.yaml"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestSnapshotRestore(t *testing.T) {
	g := newHeadless(t, Options{Seed: 10})
	for i := 0; i < 5; i++ {
		require.NoError(t, g.Step(0.02))
	}

	restored := newHeadless(t, Options{Seed: 10})
	require.NoError(t, restored.Restore(g.Snapshot("test")))
	assert.Equal(t, positionsByID(g.Agents()), positionsByID(restored.Agents()))
	assert.Equal(t, g.Tick(), restored.Tick())
	assert.Equal(t, g.SimTime(), restored.SimTime())

	// Both stores take the same next tick.
	require.NoError(t, g.Step(0.02))
	require.NoError(t, restored.Step(0.02))
	a, b := positionsByID(g.Agents()), positionsByID(restored.Agents())
	for id, p := range a {
		assert.InDelta(t, p.X, b[id].X, 1e-9)
		assert.InDelta(t, p.Y, b[id].Y, 1e-9)
	}
}

func TestRestoredAgentsReplaceSpawn(t *testing.T) {
	agents := components.SpawnLattice(16, components.Bounds{
		Min: r2.Vec{X: -1, Y: -1},
		Max: r2.Vec{X: 1, Y: 1},
	})
	g := newHeadless(t, Options{Seed: 13, Agents: agents})

	assert.Equal(t, 16, g.State().Len(), "a restored store sets the population")
	assert.Equal(t, positionsByID(agents), positionsByID(g.Agents()))
}

func TestResetKeepsPopulation(t *testing.T) {
	g := newHeadless(t, Options{Seed: 11})
	require.NoError(t, g.Step(0.02))

	require.NoError(t, g.Reset(nil))
	center := g.Bounds().Center()
	for _, a := range g.Agents() {
		assert.InDelta(t, 0.1, r2.Norm(r2.Sub(a.Position, center)), 1e-9)
	}

	err := g.Reset(make([]components.Agent, 3))
	assert.Error(t, err)
}

func TestParamsBindLiveValues(t *testing.T) {
	g := newHeadless(t, Options{Seed: 12})

	content := g.Params()
	require.NotEmpty(t, content.Sliders)
	for _, s := range content.Sliders {
		if s.ID == "max_speed" {
			s.Set(0.5)
		}
	}
	assert.InDelta(t, 0.5, g.FlockParams().MaxSpeed, 1e-9)

	for _, tg := range content.Toggles {
		if tg.ID == "additive_blending" {
			*tg.Value = true
		}
	}
	assert.True(t, g.Trail().AdditiveBlending)
}
