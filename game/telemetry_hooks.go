package game

import (
	"log/slog"

	"github.com/pthm-cable/flock/telemetry"
)

// bookmarkHistory is the number of stats windows bookmarks compare against.
const bookmarkHistory = 10

// flushTelemetry writes the stats window once it is full.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.model().Name(), g.state.Agents(), g.state.Counts(), g.bounds)
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	for _, bm := range g.bookmarks.Check(stats) {
		bm.LogBookmark()
		if g.snapshotDir != "" {
			g.saveSnapshot(string(bm.Type))
		}
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// saveSnapshot writes the host store to the snapshot directory.
func (g *Game) saveSnapshot(reason string) {
	snapshot := g.Snapshot(reason)

	path, err := telemetry.SaveSnapshot(snapshot, g.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "tick", g.tick)
}

// Snapshot copies the host store into a snapshot.
func (g *Game) Snapshot(reason string) *telemetry.Snapshot {
	s := telemetry.NewSnapshot(g.tick, g.simTime, g.variant, g.grid.Size, g.bounds, g.state.Agents())
	s.Seed = g.seed
	s.Reason = reason
	return s
}
