package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/components"
)

var testDomain = components.Bounds{Min: r2.Vec{X: -1, Y: -1}, Max: r2.Vec{X: 1, Y: 1}}

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	agents := []components.Agent{
		{ID: 1, Position: r2.Vec{X: 0.5, Y: -0.25}, Velocity: r2.Vec{X: 0.1}, CellID: 7, Density: 3},
		{ID: 0, Position: r2.Vec{X: -0.5, Y: 0.75}, Velocity: r2.Vec{Y: -0.2}},
	}
	snapshot := NewSnapshot(1200, 20, "flocking", 4, testDomain, agents)
	snapshot.Seed = 42

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("snapshot file missing: %v", err)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if loaded.Tick != 1200 || loaded.Seed != 42 || loaded.Model != "flocking" || loaded.GridSize != 4 {
		t.Errorf("header mismatch: %+v", loaded)
	}

	restored, err := loaded.Restore()
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if len(restored) != 2 {
		t.Fatalf("expected 2 agents, got %d", len(restored))
	}
	if restored[1].Position != agents[0].Position || restored[1].Velocity != agents[0].Velocity {
		t.Errorf("agent 1 mismatch: %+v", restored[1])
	}
	if restored[1].CellID != 0 || restored[1].Density != 0 {
		t.Error("scratch fields should not survive a snapshot")
	}
	if restored[0].ID != 0 {
		t.Errorf("expected agents ordered by id, got %d first", restored[0].ID)
	}
}

func TestSnapshotFilename(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := NewSnapshot(5000, 0, "fluid", 2, testDomain, nil)
	snapshot.Reason = "degraded"
	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if expected := filepath.Join(tmpDir, "snapshot_5000_degraded.json"); path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}

	snapshot = NewSnapshot(3000, 0, "fluid", 2, testDomain, nil)
	path, err = SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if expected := filepath.Join(tmpDir, "snapshot_3000.json"); path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}
}

func TestSnapshotRestoreRejectsDuplicates(t *testing.T) {
	s := &Snapshot{Version: SnapshotVersion, Agents: []AgentState{{ID: 0}, {ID: 0}}}
	if _, err := s.Restore(); err == nil {
		t.Error("expected error for duplicate ids")
	}
}

func TestLoadSnapshotVersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	if err := os.WriteFile(path, []byte(`{"version": 99}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected version error")
	}
}
