package telemetry

// PhaseInfo describes a tick phase for display.
type PhaseInfo struct {
	ID          string // Phase name used by PerfCollector
	Name        string // Display name
	Description string // What the phase does
	Category    string // "device" for dispatched stages, "host" otherwise
}

// PhaseRegistry holds metadata about the tick phases.
// This centralizes phase naming so the UI and perf tracker stay in sync.
type PhaseRegistry struct {
	phases []PhaseInfo
	byID   map[string]PhaseInfo
}

// NewPhaseRegistry creates a registry with every tick phase in pipeline order.
func NewPhaseRegistry() *PhaseRegistry {
	reg := &PhaseRegistry{
		byID: make(map[string]PhaseInfo),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds the pipeline phases. Keep in step with Phases.
func (r *PhaseRegistry) registerDefaults() {
	r.Register(PhaseInfo{ID: PhaseBucketCount, Name: "Bucket Count", Description: "Counts agents per grid cell", Category: "device"})
	r.Register(PhaseInfo{ID: PhasePrefixSum, Name: "Prefix Sum", Description: "Turns cell counts into cell offsets", Category: "host"})
	r.Register(PhaseInfo{ID: PhaseReindex, Name: "Reindex", Description: "Scatters agents into cell order", Category: "device"})
	r.Register(PhaseInfo{ID: PhaseVerify, Name: "Verify", Description: "Checks the cell partition (strict mode)", Category: "host"})
	r.Register(PhaseInfo{ID: PhaseInteract, Name: "Interact", Description: "Applies the force model and integrates", Category: "device"})
	r.Register(PhaseInfo{ID: PhaseTelemetry, Name: "Telemetry", Description: "Window stats and CSV output", Category: "host"})
}

// Register adds a phase to the registry.
func (r *PhaseRegistry) Register(info PhaseInfo) {
	r.phases = append(r.phases, info)
	r.byID[info.ID] = info
}

// Get returns phase info by ID.
func (r *PhaseRegistry) Get(id string) (PhaseInfo, bool) {
	info, ok := r.byID[id]
	return info, ok
}

// GetName returns the display name for a phase ID.
// Falls back to the ID itself if not found.
func (r *PhaseRegistry) GetName(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// All returns all registered phases.
func (r *PhaseRegistry) All() []PhaseInfo {
	return r.phases
}

// ByCategory returns phases filtered by category.
func (r *PhaseRegistry) ByCategory(category string) []PhaseInfo {
	var result []PhaseInfo
	for _, info := range r.phases {
		if info.Category == category {
			result = append(result, info)
		}
	}
	return result
}

// IDs returns all phase IDs in registration order.
func (r *PhaseRegistry) IDs() []string {
	ids := make([]string, len(r.phases))
	for i, info := range r.phases {
		ids[i] = info.ID
	}
	return ids
}
