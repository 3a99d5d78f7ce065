package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkFlockFormed    BookmarkType = "flock_formed"
	BookmarkFlockScattered BookmarkType = "flock_scattered"
	BookmarkCongestion     BookmarkType = "congestion"
	BookmarkEscape         BookmarkType = "escape"
	BookmarkSteadyState    BookmarkType = "steady_state"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType
	Tick        int32
	Description string
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// Detection thresholds.
const (
	formedPolarization    = 0.9
	scatterDrop           = 0.4 // fraction lost from the recent polarization peak
	congestionFactor      = 3.0
	minCongestionCount    = 8
	steadyWindows         = 5
	steadyHistory         = 4
	steadyMaxCVSquared    = 0.0025 // CV < 5%
	steadyMinPolarization = 0.5
)

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	formed             bool    // polarization is above formedPolarization
	recentPolarPeak    float64 // peak polarization since the last scatter
	steadyWindowsCount int     // consecutive windows with a steady flock
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < steadyWindows {
		historySize = steadyWindows
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		for _, check := range []func(WindowStats) *Bookmark{
			bd.checkFlockFormed,
			bd.checkFlockScattered,
			bd.checkCongestion,
			bd.checkEscape,
			bd.checkSteadyState,
		} {
			if b := check(stats); b != nil {
				bookmarks = append(bookmarks, *b)
			}
		}
	}

	bd.addToHistory(stats)
	if stats.Polarization > bd.recentPolarPeak {
		bd.recentPolarPeak = stats.Polarization
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// getHistory returns the stored windows, oldest first.
func (bd *BookmarkDetector) getHistory() []WindowStats {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	ordered := make([]WindowStats, 0, bd.historySize)
	ordered = append(ordered, bd.history[bd.historyIdx:]...)
	return append(ordered, bd.history[:bd.historyIdx]...)
}

func (bd *BookmarkDetector) checkFlockFormed(stats WindowStats) *Bookmark {
	if stats.Polarization < formedPolarization {
		bd.formed = false
		return nil
	}
	if bd.formed {
		return nil
	}
	bd.formed = true
	return &Bookmark{
		Type:        BookmarkFlockFormed,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Polarization reached %.2f", stats.Polarization),
	}
}

func (bd *BookmarkDetector) checkFlockScattered(stats WindowStats) *Bookmark {
	if bd.recentPolarPeak < steadyMinPolarization {
		return nil
	}
	drop := 1 - stats.Polarization/bd.recentPolarPeak
	if drop <= scatterDrop {
		return nil
	}
	oldPeak := bd.recentPolarPeak
	bd.recentPolarPeak = stats.Polarization
	return &Bookmark{
		Type:        BookmarkFlockScattered,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Polarization fell %.0f%% from %.2f to %.2f", drop*100, oldPeak, stats.Polarization),
	}
}

func (bd *BookmarkDetector) checkCongestion(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}
	var total int
	for _, h := range history {
		total += h.MaxCellCount
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 {
		return nil
	}
	if float64(stats.MaxCellCount) > avg*congestionFactor && stats.MaxCellCount >= minCongestionCount {
		return &Bookmark{
			Type:        BookmarkCongestion,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Busiest cell holds %d agents, %.1fx average (%.1f)", stats.MaxCellCount, float64(stats.MaxCellCount)/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkEscape(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if stats.Escaped == 0 || history[len(history)-1].Escaped > 0 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkEscape,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d agents left the domain", stats.Escaped),
	}
}

func (bd *BookmarkDetector) checkSteadyState(stats WindowStats) *Bookmark {
	if stats.Polarization < steadyMinPolarization {
		bd.steadyWindowsCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < steadyHistory {
		return nil
	}
	recent := history[len(history)-steadyHistory:]

	if cvSquared(recent, func(w WindowStats) float64 { return w.SpeedMean }) < steadyMaxCVSquared &&
		cvSquared(recent, func(w WindowStats) float64 { return w.Spread }) < steadyMaxCVSquared {
		bd.steadyWindowsCount++
	} else {
		bd.steadyWindowsCount = 0
	}

	if bd.steadyWindowsCount == steadyWindows { // trigger exactly once
		return &Bookmark{
			Type:        BookmarkSteadyState,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Steady flock (polarization %.2f, spread %.2f) over %d+ windows", stats.Polarization, stats.Spread, steadyWindows),
		}
	}
	return nil
}

// cvSquared returns the squared coefficient of variation of a window field.
func cvSquared(windows []WindowStats, field func(WindowStats) float64) float64 {
	n := float64(len(windows))
	var sum float64
	for _, w := range windows {
		sum += field(w)
	}
	mean := sum / n
	if mean == 0 {
		return 0
	}
	var variance float64
	for _, w := range windows {
		d := field(w) - mean
		variance += d * d
	}
	variance /= n
	return variance / (mean * mean)
}
