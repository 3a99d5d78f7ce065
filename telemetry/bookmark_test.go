package telemetry

import (
	"testing"
)

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_FlockFormed(t *testing.T) {
	bd := NewBookmarkDetector(10)
	bd.Check(WindowStats{WindowEndTick: 60, Polarization: 0.2})

	bookmarks := bd.Check(WindowStats{WindowEndTick: 120, Polarization: 0.95})
	if !hasBookmark(bookmarks, BookmarkFlockFormed) {
		t.Fatal("expected flock_formed bookmark")
	}

	// Staying formed does not retrigger.
	if hasBookmark(bd.Check(WindowStats{WindowEndTick: 180, Polarization: 0.97}), BookmarkFlockFormed) {
		t.Error("flock_formed should trigger once per formation")
	}
}

func TestBookmarkDetector_FlockScattered(t *testing.T) {
	bd := NewBookmarkDetector(10)
	for i := 0; i < 3; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i * 60), Polarization: 0.9})
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 240, Polarization: 0.3})
	if !hasBookmark(bookmarks, BookmarkFlockScattered) {
		t.Fatal("expected flock_scattered bookmark")
	}
	if bd.recentPolarPeak != 0.3 {
		t.Errorf("peak should reset after a scatter, got %v", bd.recentPolarPeak)
	}
}

func TestBookmarkDetector_Congestion(t *testing.T) {
	bd := NewBookmarkDetector(10)
	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i * 60), MaxCellCount: 4})
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 360, MaxCellCount: 20})
	if !hasBookmark(bookmarks, BookmarkCongestion) {
		t.Error("expected congestion bookmark")
	}
}

func TestBookmarkDetector_Escape(t *testing.T) {
	bd := NewBookmarkDetector(10)
	bd.Check(WindowStats{WindowEndTick: 60})

	if !hasBookmark(bd.Check(WindowStats{WindowEndTick: 120, Escaped: 2}), BookmarkEscape) {
		t.Fatal("expected escape bookmark")
	}
	if hasBookmark(bd.Check(WindowStats{WindowEndTick: 180, Escaped: 3}), BookmarkEscape) {
		t.Error("ongoing escape should not retrigger")
	}
}

func TestBookmarkDetector_SteadyState(t *testing.T) {
	bd := NewBookmarkDetector(10)
	steady := WindowStats{Polarization: 0.8, SpeedMean: 0.25, Spread: 0.3}

	triggered := 0
	for i := 0; i < 20; i++ {
		steady.WindowEndTick = int32(i * 60)
		if hasBookmark(bd.Check(steady), BookmarkSteadyState) {
			triggered++
		}
	}
	if triggered != 1 {
		t.Errorf("steady_state triggered %d times, want 1", triggered)
	}
}

func TestBookmarkDetector_HistoryOrder(t *testing.T) {
	bd := NewBookmarkDetector(5)
	for i := 0; i < 7; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i)})
	}
	history := bd.getHistory()
	if len(history) != 5 {
		t.Fatalf("history length %d, want 5", len(history))
	}
	for i, h := range history {
		if h.WindowEndTick != int32(i+2) {
			t.Errorf("history[%d] = tick %d, want %d", i, h.WindowEndTick, i+2)
		}
	}
}
