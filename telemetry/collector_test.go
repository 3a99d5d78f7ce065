package telemetry

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/components"
)

func TestCollectorWindow(t *testing.T) {
	c := NewCollector(1.0, 0.1)
	if c.WindowDurationTicks() != 10 {
		t.Fatalf("expected 10 ticks per window, got %d", c.WindowDurationTicks())
	}
	if c.ShouldFlush(9) {
		t.Error("should not flush before the window ends")
	}
	if !c.ShouldFlush(10) {
		t.Error("should flush at the window end")
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(1.0, 0.5)
	for i := 0; i < 3; i++ {
		c.RecordTick()
	}
	c.RecordDegraded()
	c.RecordAborted()

	agents := []components.Agent{
		{Position: r2.Vec{X: -0.5}, Velocity: r2.Vec{X: 0.3, Y: 0.4}},
		{Position: r2.Vec{X: 0.5}, Velocity: r2.Vec{X: 0.1}},
		{Position: r2.Vec{X: 2.5}, Velocity: r2.Vec{X: 0.2}, Density: 5},
	}
	stats := c.Flush(4, "flocking", agents, []uint32{2, 0, 0, 1}, testDomain)

	if stats.Ticks != 3 || stats.DegradedTicks != 1 || stats.AbortedTicks != 1 {
		t.Errorf("unexpected tick counts: %+v", stats)
	}
	if stats.SimTimeSec != 2.0 {
		t.Errorf("sim time = %v, want 2", stats.SimTimeSec)
	}
	if stats.Population != 3 || stats.Model != "flocking" {
		t.Errorf("unexpected header: %+v", stats)
	}
	if math.Abs(stats.SpeedMax-0.5) > 1e-12 {
		t.Errorf("speed max = %v, want 0.5", stats.SpeedMax)
	}
	if stats.DensityMean != 5 {
		t.Errorf("density mean = %v, want 5", stats.DensityMean)
	}
	if stats.Escaped != 1 {
		t.Errorf("escaped = %d, want 1", stats.Escaped)
	}
	if math.Abs(stats.CentroidX-2.5/3) > 1e-12 {
		t.Errorf("centroid x = %v", stats.CentroidX)
	}
	if want := math.Sqrt(2.6*2.6+0.8*0.8) / 3; math.Abs(stats.Polarization-want) > 1e-12 {
		t.Errorf("polarization = %v, want %v", stats.Polarization, want)
	}
	if stats.OccupiedCells != 2 || stats.MaxCellCount != 2 {
		t.Errorf("unexpected cell load: %+v", stats)
	}

	next := c.Flush(8, "flocking", agents, nil, testDomain)
	if next.Ticks != 0 || next.DegradedTicks != 0 || next.WindowStartTick != 4 {
		t.Errorf("counters were not reset: %+v", next)
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	for tick := int32(60); tick <= 180; tick += 60 {
		if err := om.WriteTelemetry(WindowStats{WindowEndTick: tick, Population: 100, Model: "fluid"}); err != nil {
			t.Fatalf("WriteTelemetry: %v", err)
		}
		if err := om.WritePerf(PerfStats{}, tick); err != nil {
			t.Fatalf("WritePerf: %v", err)
		}
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "window_end,sim_time,population,model") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if strings.Count(string(data), "window_end") != 1 {
		t.Error("header written more than once")
	}

	perf, err := os.ReadFile(filepath.Join(dir, "perf.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(perf), "launches_per_tick") {
		t.Error("perf.csv missing launches column")
	}
}

func TestNilOutputManager(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("expected nil manager, got %v, %v", om, err)
	}
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}
