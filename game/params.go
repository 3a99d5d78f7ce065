package game

import (
	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/systems"
	"github.com/pthm-cable/flock/ui"
)

// Params returns the control panel content for the active variant. The
// descriptors point into the game's live tunables, so edits apply from the
// next tick.
func (g *Game) Params() ui.PanelContent {
	toggles := []ui.ToggleDescriptor{
		{ID: "additive_blending", Label: "Additive blending", KeyLabel: "B", Value: &g.trail.AdditiveBlending},
		{ID: "follow_pointer", Label: "Follow mouse", KeyLabel: "F", Value: &g.follow},
	}

	if g.variant == config.VariantFluid {
		return ui.PanelContent{
			Title:   "Fluid [G]",
			Sliders: ui.FluidSliders(&g.fluid),
			Toggles: append(ui.FluidToggles(&g.fluid), toggles...),
		}
	}
	return ui.PanelContent{
		Title:   "Flocking [G]",
		Sliders: ui.FlockingSliders(&g.flock),
		Toggles: toggles,
	}
}

// FlockParams returns the live flocking tunables.
func (g *Game) FlockParams() *systems.FlockParams {
	return &g.flock
}

// FluidParams returns the live fluid tunables.
func (g *Game) FluidParams() *systems.FluidParams {
	return &g.fluid
}

// Trail returns the live trail settings.
func (g *Game) Trail() *config.TrailConfig {
	return &g.trail
}
