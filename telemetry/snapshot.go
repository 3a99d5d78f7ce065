package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/components"
)

// SnapshotVersion is bumped whenever the snapshot layout changes.
const SnapshotVersion = 1

// Snapshot is a restorable copy of the agent store.
type Snapshot struct {
	Version  int          `json:"version"`
	Seed     int64        `json:"seed"`
	Model    string       `json:"model"`
	Tick     int32        `json:"tick"`
	SimTime  float64      `json:"sim_time"`
	GridSize int          `json:"grid_size"`
	Domain   [4]float64   `json:"domain"` // min x, max x, min y, max y
	Agents   []AgentState `json:"agents"`
	Reason   string       `json:"reason,omitempty"`
}

// AgentState is the persisted part of an agent. Cell assignment and fluid
// scratch are rebuilt on the next tick.
type AgentState struct {
	ID uint32  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
}

// NewSnapshot copies agents into a snapshot.
func NewSnapshot(tick int32, simTime float64, model string, gridSize int, bounds components.Bounds, agents []components.Agent) *Snapshot {
	s := &Snapshot{
		Version:  SnapshotVersion,
		Model:    model,
		Tick:     tick,
		SimTime:  simTime,
		GridSize: gridSize,
		Domain:   [4]float64{bounds.Min.X, bounds.Max.X, bounds.Min.Y, bounds.Max.Y},
		Agents:   make([]AgentState, len(agents)),
	}
	for i, a := range agents {
		s.Agents[i] = AgentState{
			ID: a.ID,
			X:  a.Position.X,
			Y:  a.Position.Y,
			VX: a.Velocity.X,
			VY: a.Velocity.Y,
		}
	}
	return s
}

// Restore returns the agents of the snapshot ordered by ID.
func (s *Snapshot) Restore() ([]components.Agent, error) {
	agents := make([]components.Agent, len(s.Agents))
	seen := make([]bool, len(s.Agents))
	for _, st := range s.Agents {
		if int(st.ID) >= len(agents) || seen[st.ID] {
			return nil, fmt.Errorf("restore snapshot: agent id %d duplicated or out of range", st.ID)
		}
		seen[st.ID] = true
		agents[st.ID] = components.Agent{
			ID:       st.ID,
			Position: r2.Vec{X: st.X, Y: st.Y},
			Velocity: r2.Vec{X: st.VX, Y: st.VY},
		}
	}
	return agents, nil
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Reason != "" {
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, snapshot.Reason)
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, expected %d", snapshot.Version, SnapshotVersion)
	}
	return &snapshot, nil
}
