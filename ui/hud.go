package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flock/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title          string
	Model          string
	Population     int
	Tick           int32
	SimTime        float64
	StepsPerUpdate int
	FPS            int32
	Paused         bool
	Follow         bool
	Degraded       int
	Aborted        int
	ScreenWidth    int32
	ScreenHeight   int32
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD in the top right corner.
func (h *HUD) Draw(data HUDData) {
	x := data.ScreenWidth - 260

	rl.DrawText(data.Title, x, 10, 20, rl.White)
	rl.DrawText(
		fmt.Sprintf("%s | agents: %d", data.Model, data.Population),
		x, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | t=%.1fs | %dx | FPS: %d", data.Tick, data.SimTime, data.StepsPerUpdate, data.FPS),
		x, 55, 14, rl.LightGray,
	)

	y := int32(75)
	if data.Paused {
		rl.DrawText("PAUSED", x, y, 16, rl.Yellow)
		y += 20
	}
	if data.Follow {
		rl.DrawText("FOLLOWING POINTER", x, y, 16, rl.SkyBlue)
		y += 20
	}
	if data.Degraded > 0 || data.Aborted > 0 {
		rl.DrawText(fmt.Sprintf("degraded: %d  aborted: %d", data.Degraded, data.Aborted), x, y, 14, rl.Orange)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-stage timing panel.
type PerfPanel struct {
	renderer *Renderer
	phases   *telemetry.PhaseRegistry
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		phases:   telemetry.NewPhaseRegistry(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// perfPanelWidth is the width of the stage timing panel.
const perfPanelWidth = 300

// Draw renders stage timings in pipeline order, one bar per phase share of
// the tick.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	pad := r.Theme.Padding
	phases := p.phases.All()
	height := pad*2 + r.Theme.LineHeight*3 + int32(len(phases))*(r.Theme.LineHeight+2)
	r.DrawPanel(p.x, p.y, perfPanelWidth, height)

	x := p.x + pad
	y := r.DrawSectionHeader(x, p.y+pad, "Stage Performance")
	y = r.DrawLabelValue(x, y, "Tick", fmt.Sprintf("%s (%.0f tps)", stats.AvgTickDuration.Round(time.Microsecond), stats.TicksPerSecond))
	y = r.DrawLabelValue(x, y, "Launches", fmt.Sprintf("%.1f / tick", stats.LaunchesPerTick))

	for _, phase := range phases {
		if _, ok := stats.PhaseAvg[phase.ID]; !ok {
			continue
		}
		y = r.DrawBar(x, y, phase.Name, float32(stats.PhasePct[phase.ID]/100), perfPanelWidth-2*pad)
	}
}
