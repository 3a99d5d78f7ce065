// Package main sweeps the grid size of a headless run and reports how tick
// time and cell occupancy respond.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"slices"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/device"
	"github.com/pthm-cable/flock/game"
)

// SweepRow is one grid size's result.
type SweepRow struct {
	GridSize        int     `csv:"grid_size"`
	Cells           int     `csv:"cells"`
	Population      int     `csv:"population"`
	Ticks           int     `csv:"ticks"`
	AvgTickMs       float64 `csv:"avg_tick_ms"`
	StdTickMs       float64 `csv:"std_tick_ms"`
	MinTickMs       float64 `csv:"min_tick_ms"`
	MaxTickMs       float64 `csv:"max_tick_ms"`
	MaxCellCount    int     `csv:"max_cell_count"`
	MeanOccupied    float64 `csv:"mean_occupied_cells"`
	LaunchesPerTick float64 `csv:"launches_per_tick"`
	DegradedTicks   int     `csv:"degraded_ticks"`
	AbortedTicks    int     `csv:"aborted_ticks"`
	TimedTicks      int     `csv:"timed_ticks"` // committed ticks the timings cover
	FirstError      string  `csv:"first_error"`
}

// failureLog keeps the first failing tick of a run.
type failureLog struct {
	gridSize int
	first    error
}

func (f *failureLog) note(tick int, err error) {
	if err == nil {
		return
	}
	if f.first == nil {
		f.first = err
		log.Printf("grid size %d: tick %d failed: %v", f.gridSize, tick, err)
	}
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	minSize := flag.Int("min", 4, "Smallest grid size (cells per axis)")
	maxSize := flag.Int("max", 64, "Largest grid size (cells per axis)")
	factor := flag.Float64("factor", 2, "Multiplier between successive grid sizes")
	ticks := flag.Int("ticks", 500, "Ticks per grid size")
	warmup := flag.Int("warmup", 50, "Untimed ticks before measuring")
	population := flag.Int("population", 0, "Agent count (0 = use config)")
	variant := flag.String("variant", "", "Interaction variant (empty = use config)")
	seed := flag.Int64("seed", 42, "RNG seed shared by every run")
	output := flag.String("output", "", "CSV output path (empty = stdout table only)")
	flag.Parse()

	if *minSize < 1 || *maxSize < *minSize || *factor <= 1 {
		log.Fatalf("invalid sweep range: min=%d max=%d factor=%g", *minSize, *maxSize, *factor)
	}

	base, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *population > 0 {
		base.Simulation.Population = *population
	}

	var rows []*SweepRow
	fmt.Printf("%6s %8s %10s %10s %10s %10s %8s\n", "grid", "cells", "avg ms", "std ms", "min ms", "max ms", "max/cell")
	for size := *minSize; size <= *maxSize; size = nextSize(size, *factor) {
		cfg := *base
		cfg.Simulation.GridSize = size
		if err := cfg.Refresh(); err != nil {
			log.Fatalf("grid size %d: %v", size, err)
		}

		row, err := sweep(&cfg, *variant, *seed, *warmup, *ticks, nil)
		if err != nil {
			log.Fatalf("grid size %d: %v", size, err)
		}
		rows = append(rows, row)
		fmt.Printf("%6d %8d %10.3f %10.3f %10.3f %10.3f %8d\n",
			row.GridSize, row.Cells, row.AvgTickMs, row.StdTickMs, row.MinTickMs, row.MaxTickMs, row.MaxCellCount)
		if row.FirstError != "" {
			fmt.Printf("%6s %d of %d ticks failed, timings cover %d\n", "", row.DegradedTicks+row.AbortedTicks, *warmup+*ticks, row.TimedTicks)
		}
	}

	if *output == "" {
		return
	}
	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("failed to create output: %v", err)
	}
	defer f.Close()
	if err := gocsv.MarshalFile(&rows, f); err != nil {
		log.Fatalf("failed to write CSV: %v", err)
	}
	fmt.Printf("\nResults saved to: %s\n", *output)
}

func nextSize(size int, factor float64) int {
	next := int(float64(size) * factor)
	if next <= size {
		next = size + 1
	}
	return next
}

// sweep times one headless run at the config's grid size. Failed ticks are
// left out of the timings and reported in the row.
func sweep(cfg *config.Config, variant string, seed int64, warmup, ticks int, faults device.FaultFunc) (*SweepRow, error) {
	g, err := game.NewGameWithOptions(game.Options{
		Config:   cfg,
		Seed:     seed,
		Headless: true,
		Variant:  variant,
		Faults:   faults,
	})
	if err != nil {
		return nil, err
	}
	defer g.Unload()

	failures := &failureLog{gridSize: cfg.Simulation.GridSize}
	dt := cfg.Derived.StepDT
	for i := 0; i < warmup; i++ {
		failures.note(i, g.Step(dt))
	}

	durations := make([]float64, 0, ticks)
	occupied := make([]float64, 0, ticks)
	maxCount := 0
	for i := 0; i < ticks; i++ {
		start := time.Now()
		err := g.Step(dt)
		elapsed := time.Since(start)
		if err != nil {
			failures.note(warmup+i, err)
			continue
		}
		durations = append(durations, float64(elapsed)/float64(time.Millisecond))

		n := 0
		for _, c := range g.State().Counts() {
			if c > 0 {
				n++
			}
			maxCount = max(maxCount, int(c))
		}
		occupied = append(occupied, float64(n))
	}

	row := &SweepRow{
		GridSize:        cfg.Simulation.GridSize,
		Cells:           cfg.Derived.NumCells,
		Population:      cfg.Simulation.Population,
		Ticks:           ticks,
		MaxCellCount:    maxCount,
		LaunchesPerTick: g.PerfStats().LaunchesPerTick,
		DegradedTicks:   g.DegradedTicks(),
		AbortedTicks:    g.AbortedTicks(),
		TimedTicks:      len(durations),
	}
	if failures.first != nil {
		row.FirstError = failures.first.Error()
	}
	if len(durations) > 0 {
		row.AvgTickMs, row.StdTickMs = stat.MeanStdDev(durations, nil)
		row.MinTickMs = slices.Min(durations)
		row.MaxTickMs = slices.Max(durations)
		row.MeanOccupied = stat.Mean(occupied, nil)
	}
	return row, nil
}
