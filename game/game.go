// Package game is the frame orchestrator: it owns the simulation state,
// runs the pipeline stages once per tick and drives input, rendering and
// telemetry around them.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/camera"
	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/device"
	"github.com/pthm-cable/flock/renderer"
	"github.com/pthm-cable/flock/systems"
	"github.com/pthm-cable/flock/telemetry"
	"github.com/pthm-cable/flock/ui"
)

// Options configures game initialization.
type Options struct {
	Config         *config.Config // nil = config.Cfg()
	Seed           int64
	LogStats       bool
	StatsWindowSec float64
	SnapshotDir    string
	OutputDir      string
	Headless       bool
	StepsPerUpdate int
	Variant        string             // overrides simulation.variant when set
	Faults         device.FaultFunc   // device fault injection
	Agents         []components.Agent // restored store; replaces the configured spawn
	StatsCallback  func(telemetry.WindowStats)
}

// Game holds the complete simulation state.
type Game struct {
	cfg  *config.Config
	rng  *rand.Rand
	seed int64

	dev    *device.Device
	grid   systems.Grid
	bounds components.Bounds
	state  *systems.SimState
	noise  *systems.Noise

	// Live tunables, edited by the control panel between ticks.
	variant   string
	flock     systems.FlockParams
	fluid     systems.FluidParams
	trail     config.TrailConfig
	pointer   r2.Vec
	pointerOn bool
	follow    bool // mouse drives the pointer target

	// set while pointerOn was switched on by follow rather than SetPointer
	mousePointer bool

	tick           int32
	simTime        float64
	paused         bool
	headless       bool
	strict         bool
	stepsPerUpdate int

	degradedTicks int
	abortedTicks  int
	lastErr       error

	// Telemetry
	collector     *telemetry.Collector
	bookmarks     *telemetry.BookmarkDetector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	statsCallback func(telemetry.WindowStats)
	logStats      bool
	snapshotDir   string

	// Graphics, nil when headless
	camera        *camera.Camera
	trails        *renderer.TrailRenderer
	agentRenderer *renderer.AgentRenderer
	hud           *ui.HUD
	perfPanel     *ui.PerfPanel
	controls      *ui.ControlsPanel
	overlays      *ui.OverlayRegistry
	screenW       float64
	screenH       float64
}

// NewGameWithOptions creates a new game instance.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	for _, w := range cfg.Warnings() {
		slog.Warn("config", "warning", w)
	}

	variant := cfg.Simulation.Variant
	if opts.Variant != "" {
		variant = opts.Variant
	}
	if variant != config.VariantFlocking && variant != config.VariantFluid {
		return nil, fmt.Errorf("%w: unknown variant %q", config.ErrInvalid, variant)
	}

	stepsPerUpdate := opts.StepsPerUpdate
	if stepsPerUpdate < 1 {
		stepsPerUpdate = 1
	}

	g := &Game{
		cfg:            cfg,
		rng:            rand.New(rand.NewSource(opts.Seed)),
		seed:           opts.Seed,
		bounds:         domainBounds(cfg.Domain),
		noise:          systems.NewNoise(opts.Seed),
		variant:        variant,
		flock:          flockParams(cfg.Flocking),
		fluid:          fluidParams(cfg.Fluid),
		trail:          cfg.Trail,
		pointer:        r2.Vec{X: cfg.Pointer.TargetX, Y: cfg.Pointer.TargetY},
		pointerOn:      cfg.Pointer.Enabled,
		headless:       opts.Headless,
		strict:         cfg.Debug.StrictInvariants,
		stepsPerUpdate: stepsPerUpdate,
		logStats:       opts.LogStats,
		snapshotDir:    opts.SnapshotDir,
		statsCallback:  opts.StatsCallback,
	}
	g.grid = systems.NewGrid(cfg.Simulation.GridSize, g.bounds)

	agents := opts.Agents
	if agents == nil {
		agents = g.spawnAgents()
	}

	g.dev = device.New(device.Options{
		Workers:   cfg.Device.Workers,
		ChunkSize: cfg.Device.ChunkSize,
		Faults:    opts.Faults,
	})
	state, err := systems.NewSimState(g.dev, g.grid, agents)
	if err != nil {
		g.dev.Close()
		return nil, fmt.Errorf("creating simulation state: %w", err)
	}
	g.state = state

	// Telemetry
	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}
	g.collector = telemetry.NewCollector(statsWindow, cfg.Derived.StepDT)
	g.perfCollector = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	g.bookmarks = telemetry.NewBookmarkDetector(bookmarkHistory)

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		g.dev.Close()
		return nil, err
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	if !opts.Headless {
		g.initGraphics()
	}

	slog.Info("simulation ready",
		"variant", g.variant,
		"population", state.Len(),
		"grid_size", g.grid.Size,
		"workers", g.dev.Workers(),
		"seed", g.seed,
	)
	return g, nil
}

// initGraphics creates the camera, renderers and UI.
// Requires an open raylib window.
func (g *Game) initGraphics() {
	g.screenW = float64(g.cfg.Screen.Width)
	g.screenH = float64(g.cfg.Screen.Height)
	g.camera = camera.New(g.screenW, g.screenH, g.bounds)
	g.trails = renderer.NewTrailRenderer(int32(g.screenW), int32(g.screenH))
	g.trails.Init()
	g.agentRenderer = renderer.NewAgentRenderer()
	g.hud = ui.NewHUD()
	g.perfPanel = ui.NewPerfPanel(10, int32(g.screenH)-perfPanelMargin)
	g.controls = ui.NewControlsPanel(10, 10, 320)
	g.overlays = ui.NewOverlayRegistry()
}

// Unload releases all resources.
func (g *Game) Unload() {
	if g.snapshotDir != "" {
		g.saveSnapshot("final")
	}
	if g.trails != nil {
		g.trails.Unload()
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
	g.dev.Close()
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 {
	return g.tick
}

// SimTime returns the simulated seconds of all committed ticks.
func (g *Game) SimTime() float64 {
	return g.simTime
}

// Agents returns the host agent store in grid order.
func (g *Game) Agents() []components.Agent {
	return g.state.Agents()
}

// State returns the simulation context.
func (g *Game) State() *systems.SimState {
	return g.state
}

// Variant returns the active interaction variant.
func (g *Game) Variant() string {
	return g.variant
}

// DegradedTicks returns the number of ticks whose result was dropped.
func (g *Game) DegradedTicks() int {
	return g.degradedTicks
}

// AbortedTicks returns the number of ticks stopped by a fatal stage error.
func (g *Game) AbortedTicks() int {
	return g.abortedTicks
}

// LastError returns the stage error of the most recent tick, if any.
func (g *Game) LastError() error {
	return g.lastErr
}

// SetPointer moves the pointer target and enables or disables the override.
func (g *Game) SetPointer(target r2.Vec, enabled bool) {
	g.pointer = target
	g.pointerOn = enabled
	g.mousePointer = false
}

// SetPaused pauses or resumes Update.
func (g *Game) SetPaused(paused bool) {
	g.paused = paused
}

// Paused reports whether the simulation is paused.
func (g *Game) Paused() bool {
	return g.paused
}

// PerfStats returns the rolling stage timings.
func (g *Game) PerfStats() telemetry.PerfStats {
	return g.perfCollector.Stats()
}

// Bounds returns the simulated domain.
func (g *Game) Bounds() components.Bounds {
	return g.bounds
}

func domainBounds(d config.DomainConfig) components.Bounds {
	return components.Bounds{
		Min: r2.Vec{X: d.MinX, Y: d.MinY},
		Max: r2.Vec{X: d.MaxX, Y: d.MaxY},
	}
}
