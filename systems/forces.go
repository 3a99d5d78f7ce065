package systems

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/components"
)

// ForceModel is the per-agent rule of the interaction stage.
//
// ComputeForces returns the neighbor-driven term the model's Integrate
// applies. Both run on a private copy of the agent and must not write to
// neighbors. Models are shared by all invocations of a dispatch, so they
// must not mutate their own state from these methods.
type ForceModel interface {
	Name() string
	ComputeForces(a *components.Agent, nb Neighborhood) r2.Vec
	Integrate(a *components.Agent, force r2.Vec, dt float64)
}

// Preparer is implemented by models that need a pass over all agents before
// forces are computed. Prepare may write only those fields of its own agent
// that no other Prepare call reads.
type Preparer interface {
	Prepare(a *components.Agent, nb Neighborhood)
}

// Interact runs model over the reindexed store and commits the result.
//
// Invocations read the device agent buffer and write a separate output
// buffer, so every agent sees its neighbors' pre-tick state. The output is
// read back through a scoped mapping; if the readback fails the tick is
// degraded and no agent moves: the device mirror keeps its pre-tick
// positions and velocities and the host store is left untouched.
func Interact(st *SimState, model ForceModel, dt float64) error {
	agents := st.agents.Storage()
	grid := st.grid
	counts := st.counts.Storage()
	offsets := st.offsets.Storage()

	if p, ok := model.(Preparer); ok {
		err := st.dev.Dispatch(st.n, func(i int) {
			p.Prepare(&agents[i], NewGridNeighborhood(grid, agents, counts, offsets, i))
		})
		if err != nil {
			return fatal(StageInteract, err)
		}
		st.dev.Barrier()
	}

	out := st.next.Storage()
	err := st.dev.Dispatch(st.n, func(i int) {
		a := agents[i]
		force := model.ComputeForces(&a, NewGridNeighborhood(grid, agents, counts, offsets, i))
		model.Integrate(&a, force, dt)
		out[i] = a
	})
	if err != nil {
		return fatal(StageInteract, err)
	}
	st.dev.Barrier()

	if err := readback(st.next, st.staging); err != nil {
		return degraded(StageInteract, err)
	}
	if err := st.agents.CopyFrom(st.next); err != nil {
		return degraded(StageInteract, err)
	}
	copy(st.host, st.staging)
	return nil
}
