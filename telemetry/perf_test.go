package telemetry

import (
	"math"
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	// Simulate a few ticks
	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseBucketCount)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseInteract)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	// Verify we got timing data
	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration")
	}

	// Verify phases are tracked
	if len(stats.PhaseAvg) == 0 {
		t.Error("expected phase averages to be populated")
	}

	if _, ok := stats.PhaseAvg[PhaseBucketCount]; !ok {
		t.Error("expected bucket_count phase to be tracked")
	}

	if _, ok := stats.PhaseAvg[PhaseInteract]; !ok {
		t.Error("expected interact phase to be tracked")
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5) // Small window

	// Fill window completely
	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseBucketCount)
		pc.EndTick()
	}

	stats := pc.Stats()

	// Should have data
	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration after window filled")
	}

	if stats.TicksPerSecond <= 0 {
		t.Error("expected positive ticks per second")
	}
}

// fakeClock advances only when told to.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)
	clock := &fakeClock{t: time.Unix(0, 0)}
	pc.SetClock(clock.now)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseBucketCount)
		clock.advance(1 * time.Millisecond)
		pc.StartPhase(PhaseInteract)
		clock.advance(3 * time.Millisecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	if got := stats.PhasePct[PhaseBucketCount]; math.Abs(got-25) > 1e-9 {
		t.Errorf("bucket_count = %v%%, want 25%%", got)
	}
	if got := stats.PhasePct[PhaseInteract]; math.Abs(got-75) > 1e-9 {
		t.Errorf("interact = %v%%, want 75%%", got)
	}
	if stats.AvgTickDuration != 4*time.Millisecond {
		t.Errorf("avg tick = %v, want 4ms", stats.AvgTickDuration)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()

	// Empty collector should return zero values without panicking
	if stats.AvgTickDuration != 0 {
		t.Error("expected zero avg tick duration for empty collector")
	}

	if stats.PhaseAvg == nil {
		t.Error("expected non-nil PhaseAvg map")
	}

	if stats.PhasePct == nil {
		t.Error("expected non-nil PhasePct map")
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	// First call establishes baseline
	pc.RecordFrame()
	time.Sleep(16 * time.Millisecond) // ~60fps frame time
	// Second call measures duration
	pc.RecordFrame()

	stats := pc.Stats()

	if stats.FrameDuration < 15*time.Millisecond {
		t.Errorf("expected frame duration >= 15ms, got %v", stats.FrameDuration)
	}

	if stats.FPS <= 0 {
		t.Error("expected positive FPS")
	}

	// With 16ms frames, expect ~60 FPS (allow range 40-80)
	if stats.FPS < 40 || stats.FPS > 80 {
		t.Errorf("expected FPS between 40-80 with 16ms frame time, got %v", stats.FPS)
	}
}

func TestPerfCollector_Launches(t *testing.T) {
	pc := NewPerfCollector(4)

	for i := 0; i < 4; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseReindex)
		pc.AddLaunches(3)
		pc.StartPhase(PhaseInteract)
		pc.AddLaunches(1)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.LaunchesPerTick != 4 {
		t.Errorf("expected 4 launches per tick, got %v", stats.LaunchesPerTick)
	}

	row := stats.ToCSV(100)
	if row.WindowEnd != 100 || row.LaunchesPerTick != 4 {
		t.Errorf("unexpected csv row %+v", row)
	}
}
