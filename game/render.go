package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/renderer"
	"github.com/pthm-cable/flock/ui"
)

// perfPanelMargin is the distance from the bottom edge to the perf panel.
const perfPanelMargin = 210

const controlsHelp = "[Space] pause  [G] panel  [F] follow  [B] blend  [R] reset  [</>] speed  [Home] camera"

// Draw renders the game state.
func (g *Game) Draw() {
	if g.headless {
		return
	}
	g.perfCollector.RecordFrame()

	agents := g.state.Agents()
	style := g.pointStyle()
	trails := g.overlays.IsEnabled(ui.OverlayTrails)

	if trails {
		g.trails.Compose(g.trail, func() {
			g.agentRenderer.Draw(agents, g.camera, style)
		})
	}

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	if g.overlays.IsEnabled(ui.OverlayCellLoad) {
		g.agentRenderer.DrawCellLoad(g.grid, g.state.Counts(), g.camera, 120)
	}

	if trails {
		g.trails.Draw()
	} else {
		g.agentRenderer.Draw(agents, g.camera, style)
	}

	g.drawActiveOverlays()

	if g.pointerOn {
		g.agentRenderer.DrawPointer(g.pointer, g.camera)
	}

	g.drawUI()

	rl.EndDrawing()
}

// pointStyle picks the point tint for the active variant.
func (g *Game) pointStyle() renderer.PointStyle {
	style := renderer.PointStyle{Size: float32(g.trail.PointSize)}
	if g.variant == config.VariantFluid {
		style.Mode = renderer.TintDensity
		style.TargetDensity = g.fluid.TargetDensity
		return style
	}
	style.Mode = renderer.TintSpeed
	style.MinSpeed = g.flock.MinSpeed
	style.MaxSpeed = g.flock.MaxSpeed
	return style
}

// drawActiveOverlays renders the enabled debug overlays over the agents.
func (g *Game) drawActiveOverlays() {
	agents := g.state.Agents()
	for _, id := range g.overlays.EnabledOverlays() {
		switch id {
		case ui.OverlayGrid:
			g.agentRenderer.DrawGrid(g.grid, g.camera)
		case ui.OverlayVelocity:
			g.agentRenderer.DrawVectors(agents, g.camera, renderer.Velocity, 0.25, rl.SkyBlue)
		case ui.OverlayPressure:
			g.agentRenderer.DrawVectors(agents, g.camera, renderer.Pressure, 0.05, rl.Orange)
		}
	}
}

// drawUI renders the HUD and panels.
func (g *Game) drawUI() {
	sw := int32(g.screenW)
	sh := int32(g.screenH)

	g.hud.Draw(ui.HUDData{
		Title:          "Flock",
		Model:          g.model().Name(),
		Population:     g.state.Len(),
		Tick:           g.tick,
		SimTime:        g.simTime,
		StepsPerUpdate: g.stepsPerUpdate,
		FPS:            rl.GetFPS(),
		Paused:         g.paused,
		Follow:         g.follow,
		Degraded:       g.degradedTicks,
		Aborted:        g.abortedTicks,
		ScreenWidth:    sw,
		ScreenHeight:   sh,
	})
	g.hud.DrawControls(sw, sh, controlsHelp)

	g.controls.Draw(g.Params(), g.overlays)

	if g.overlays.IsEnabled(ui.OverlayPerf) {
		g.perfPanel.Draw(g.perfCollector.Stats())
	}
}
