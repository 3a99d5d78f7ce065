// Package renderer draws the agent store with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flock/config"
)

// TrailRenderer composites each frame's points over a fading history.
// Two render textures are swapped every frame: the previous history is
// drawn into the other one, faded, and the fresh points go on top.
type TrailRenderer struct {
	history [2]rl.RenderTexture2D
	front   int

	width, height int32
	initialized   bool
}

// NewTrailRenderer creates a trail renderer for the given screen size.
func NewTrailRenderer(width, height int32) *TrailRenderer {
	return &TrailRenderer{width: width, height: height}
}

// Init allocates the render textures (must be called after the raylib
// window is created).
func (t *TrailRenderer) Init() {
	if t.initialized {
		return
	}
	for i := range t.history {
		t.history[i] = rl.LoadRenderTexture(t.width, t.height)
		rl.BeginTextureMode(t.history[i])
		rl.ClearBackground(rl.Black)
		rl.EndTextureMode()
	}
	t.initialized = true
}

// Resize reallocates the textures when the window size changes.
func (t *TrailRenderer) Resize(width, height int32) {
	if width == t.width && height == t.height {
		return
	}
	t.Unload()
	t.width = width
	t.height = height
	t.Init()
}

// Clear wipes the accumulated history.
func (t *TrailRenderer) Clear() {
	if !t.initialized {
		return
	}
	for i := range t.history {
		rl.BeginTextureMode(t.history[i])
		rl.ClearBackground(rl.Black)
		rl.EndTextureMode()
	}
}

// TrailFactors returns the blend and decay factors for the selected mode.
func TrailFactors(cfg config.TrailConfig) (blend, decay float64) {
	if cfg.AdditiveBlending {
		return cfg.AdditiveBlendFactor, cfg.AdditiveDecayFactor
	}
	return cfg.BlendFactor, cfg.DecayFactor
}

// Retention is the fraction of last frame's brightness kept this frame.
func Retention(cfg config.TrailConfig) float64 {
	blend, decay := TrailFactors(cfg)
	return unit(blend * decay)
}

// Compose fades the history, draws the current frame on top with drawScene
// and leaves the result ready for Draw. In additive mode the fresh points
// are added onto the faded history instead of covering it.
func (t *TrailRenderer) Compose(cfg config.TrailConfig, drawScene func()) {
	if !t.initialized {
		t.Init()
	}

	prev := t.history[t.front]
	next := t.history[1-t.front]

	keep := uint8(255*Retention(cfg) + 0.5)

	rl.BeginTextureMode(next)
	rl.ClearBackground(rl.Black)
	rl.DrawTextureRec(prev.Texture, t.flipped(), rl.Vector2{}, rl.Color{R: keep, G: keep, B: keep, A: 255})

	if cfg.AdditiveBlending {
		rl.BeginBlendMode(rl.BlendAdditive)
		drawScene()
		rl.EndBlendMode()
	} else {
		drawScene()
	}
	rl.EndTextureMode()

	t.front = 1 - t.front
}

// Draw blits the composed trail to the screen.
func (t *TrailRenderer) Draw() {
	if !t.initialized {
		return
	}
	rl.DrawTextureRec(t.history[t.front].Texture, t.flipped(), rl.Vector2{}, rl.White)
}

// flipped returns the source rect for a render texture, which is stored
// upside down.
func (t *TrailRenderer) flipped() rl.Rectangle {
	return rl.Rectangle{
		X:      0,
		Y:      0,
		Width:  float32(t.width),
		Height: -float32(t.height),
	}
}

// Unload frees GPU resources.
func (t *TrailRenderer) Unload() {
	if !t.initialized {
		return
	}
	for i := range t.history {
		rl.UnloadRenderTexture(t.history[i])
	}
	t.initialized = false
}
