package main

import (
	"errors"
	"flag"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/game"
	"github.com/pthm-cable/flock/telemetry"
	"github.com/pthm-cable/flock/terminal"
)

func main() {
	os.Exit(run())
}

func run() int {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	tui := flag.Bool("tui", false, "Render in the terminal instead of a window")
	variant := flag.String("variant", "", "Interaction variant: flocking | fluid (empty = use config)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	logFile := flag.String("log-file", "", "Write logs to this file (terminal mode discards logs otherwise)")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files")
	loadSnapshot := flag.String("load-snapshot", "", "Start from a saved snapshot")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call (higher = faster headless runs)")

	flag.Parse()

	// Logging. The terminal viewer owns stdout, so its logs go to a file or nowhere.
	var logOut io.Writer = os.Stdout
	if *logFile != "" {
		f, err := os.Create(*logFile)
		if err != nil {
			slog.Error("failed to open log file", "error", err)
			return 1
		}
		defer f.Close()
		logOut = f
	} else if *tui {
		logOut = io.Discard
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(logOut, nil)))

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	statsWindowSec := cfg.Telemetry.StatsWindow
	if *statsWindow > 0 {
		statsWindowSec = *statsWindow
	}

	opts := game.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		StatsWindowSec: statsWindowSec,
		SnapshotDir:    *snapshotDir,
		OutputDir:      *outputDir,
		Headless:       *headless || *tui,
		StepsPerUpdate: *stepsPerUpdate,
		Variant:        *variant,
	}

	var snap *telemetry.Snapshot
	if *loadSnapshot != "" {
		s, err := telemetry.LoadSnapshot(*loadSnapshot)
		if err != nil {
			slog.Error("failed to load snapshot", "path", *loadSnapshot, "error", err)
			return 1
		}
		agents, err := s.Restore()
		if err != nil {
			slog.Error("invalid snapshot", "path", *loadSnapshot, "error", err)
			return 1
		}
		snap = s
		opts.Agents = agents
	}

	switch {
	case *tui:
		return runTerminal(opts, snap, cfg)
	case *headless:
		return runHeadless(opts, snap, *maxTicks)
	default:
		return runGraphical(opts, snap, cfg, *maxTicks)
	}
}

// newGame builds the game and rewinds its clock to the snapshot, if any.
func newGame(opts game.Options, snap *telemetry.Snapshot) (*game.Game, error) {
	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		return nil, err
	}
	if snap != nil {
		if err := g.Restore(snap); err != nil {
			g.Unload()
			return nil, err
		}
		slog.Info("snapshot restored", "tick", snap.Tick, "population", len(snap.Agents))
	}
	return g, nil
}

// runHeadless is a pure CPU run; no raylib calls are made.
func runHeadless(opts game.Options, snap *telemetry.Snapshot, maxTicks int) int {
	g, err := newGame(opts, snap)
	if err != nil {
		slog.Error("failed to start simulation", "error", err)
		return 1
	}
	defer g.Unload()

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"variant", g.Variant(),
		"stats_window", opts.StatsWindowSec,
		"max_ticks", maxTicks,
		"steps_per_update", opts.StepsPerUpdate,
	)

	for {
		if err := g.UpdateHeadless(); err != nil {
			slog.Error("simulation stopped", "tick", g.Tick(), "error", err)
			return 1
		}
		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick(), "degraded", g.DegradedTicks(), "aborted", g.AbortedTicks())
			return 0
		}
	}
}

func runGraphical(opts game.Options, snap *telemetry.Snapshot, cfg *config.Config, maxTicks int) int {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Flock")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := newGame(opts, snap)
	if err != nil {
		slog.Error("failed to start simulation", "error", err)
		return 1
	}
	defer g.Unload()

	for !rl.WindowShouldClose() {
		if err := g.Update(); err != nil {
			slog.Error("simulation stopped", "tick", g.Tick(), "error", err)
			return 1
		}
		g.Draw()

		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			break
		}
	}
	return 0
}

func runTerminal(opts game.Options, snap *telemetry.Snapshot, cfg *config.Config) int {
	g, err := newGame(opts, snap)
	if err != nil {
		slog.Error("failed to start simulation", "error", err)
		return 1
	}
	defer g.Unload()

	screen, err := tcell.NewScreen()
	if err != nil {
		slog.Error("failed to create screen", "error", err)
		return 1
	}
	if err := screen.Init(); err != nil {
		slog.Error("failed to initialize screen", "error", err)
		return 1
	}
	defer screen.Fini()

	viewer := terminal.NewViewer(screen, g, terminal.Options{
		DT:            cfg.Derived.StepDT,
		StepsPerFrame: opts.StepsPerUpdate,
		StopOnFatal:   cfg.Debug.StrictInvariants,
	})

	err = viewer.Run()
	if err != nil && !errors.Is(err, terminal.ErrQuit) {
		slog.Error("simulation stopped", "tick", g.Tick(), "error", err)
		return 1
	}
	return 0
}
