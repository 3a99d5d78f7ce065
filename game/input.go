package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flock/ui"
)

// frameTime is the last frame's wall-clock duration in seconds.
var frameTime = rl.GetFrameTime

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}
	if rl.IsKeyPressed(rl.KeyG) {
		g.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyF) {
		g.follow = !g.follow
	}
	if rl.IsKeyPressed(rl.KeyB) {
		g.trail.AdditiveBlending = !g.trail.AdditiveBlending
	}
	if rl.IsKeyPressed(rl.KeyR) {
		if err := g.Reset(nil); err != nil {
			slog.Error("reset failed", "error", err)
		}
	}
	if rl.IsKeyPressed(rl.KeyS) && g.snapshotDir != "" {
		g.saveSnapshot("manual")
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < 10 {
		g.stepsPerUpdate++
	}

	g.handleOverlayKeys()
	g.handleCameraInput()
	g.handlePointerInput()
}

// handlePointerInput aims the pointer override at the mouse while follow
// is on. The cursor over the control panel does not move the target.
func (g *Game) handlePointerInput() {
	if !g.follow {
		if g.mousePointer {
			g.pointerOn = false
			g.mousePointer = false
		}
		return
	}
	mouse := rl.GetMousePosition()
	if g.controls.Contains(mouse.X, mouse.Y) {
		return
	}
	g.pointer = g.camera.ScreenToWorld(mouse.X, mouse.Y)
	g.pointerOn = true
	g.mousePointer = true
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float64(rl.GetScreenWidth())
	h := float64(rl.GetScreenHeight())
	if w == g.screenW && h == g.screenH {
		return
	}
	g.screenW = w
	g.screenH = h

	g.camera.Resize(w, h)
	g.trails.Resize(int32(w), int32(h))
	g.perfPanel.SetPosition(10, int32(h)-perfPanelMargin)
}

// handleCameraInput processes camera pan/zoom controls.
func (g *Game) handleCameraInput() {
	const panSpeed = 8.0

	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Pan(0, -panSpeed)
	}

	mouse := rl.GetMousePosition()
	if wheel := rl.GetMouseWheelMove(); wheel != 0 && !g.controls.Contains(mouse.X, mouse.Y) {
		g.camera.ZoomBy(1.0 + float64(wheel)*0.1)
	}

	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}

// handleOverlayKeys checks for overlay toggle key presses.
func (g *Game) handleOverlayKeys() {
	for _, desc := range g.overlays.All() {
		if desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
			on := g.overlays.Toggle(desc.ID)
			if desc.ID == ui.OverlayTrails && on {
				g.trails.Clear()
			}
		}
	}
}
