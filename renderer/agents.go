package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/camera"
	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/systems"
)

// TintMode selects how points are colored.
type TintMode int

const (
	TintSpeed TintMode = iota
	TintDensity
)

// PointStyle controls agent point rendering.
type PointStyle struct {
	Size float32
	Mode TintMode
	// Speed ramp bounds for TintSpeed.
	MinSpeed, MaxSpeed float64
	// Reference density for TintDensity.
	TargetDensity float64
}

// AgentRenderer draws agents as points.
type AgentRenderer struct{}

// NewAgentRenderer creates a new agent renderer.
func NewAgentRenderer() *AgentRenderer {
	return &AgentRenderer{}
}

// Color returns the point color for an agent under a style.
func (s PointStyle) Color(a *components.Agent) rl.Color {
	if s.Mode == TintDensity {
		return DensityColor(a.Density, s.TargetDensity)
	}
	return SpeedColor(a.Speed(), s.MinSpeed, s.MaxSpeed)
}

// Draw renders every agent visible through the camera.
func (r *AgentRenderer) Draw(agents []components.Agent, cam *camera.Camera, style PointStyle) {
	radius := float64(style.Size) / cam.PixelsPerUnit()
	for i := range agents {
		a := &agents[i]
		if !cam.IsVisible(a.Position, radius) {
			continue
		}
		sx, sy := cam.WorldToScreen(a.Position)
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, style.Size*0.5, style.Color(a))
	}
}

// DrawGrid outlines the bucket grid.
func (r *AgentRenderer) DrawGrid(grid systems.Grid, cam *camera.Camera) {
	color := rl.Color{R: 80, G: 80, B: 100, A: 160}
	cell := grid.CellSize()
	b := grid.Bounds

	for i := 0; i <= grid.Size; i++ {
		x := b.Min.X + float64(i)*cell.X
		x0, y0 := cam.WorldToScreen(r2.Vec{X: x, Y: b.Min.Y})
		x1, y1 := cam.WorldToScreen(r2.Vec{X: x, Y: b.Max.Y})
		rl.DrawLineV(rl.Vector2{X: x0, Y: y0}, rl.Vector2{X: x1, Y: y1}, color)

		y := b.Min.Y + float64(i)*cell.Y
		x0, y0 = cam.WorldToScreen(r2.Vec{X: b.Min.X, Y: y})
		x1, y1 = cam.WorldToScreen(r2.Vec{X: b.Max.X, Y: y})
		rl.DrawLineV(rl.Vector2{X: x0, Y: y0}, rl.Vector2{X: x1, Y: y1}, color)
	}
}

// DrawCellLoad shades each cell by its occupancy relative to the fullest cell.
func (r *AgentRenderer) DrawCellLoad(grid systems.Grid, counts []uint32, cam *camera.Camera, alpha uint8) {
	var peak uint32
	for _, c := range counts {
		if c > peak {
			peak = c
		}
	}
	if peak == 0 {
		return
	}

	cell := grid.CellSize()
	for id, c := range counts {
		if c == 0 {
			continue
		}
		col, row := grid.Cell(uint32(id))
		lo := r2.Vec{
			X: grid.Bounds.Min.X + float64(col)*cell.X,
			Y: grid.Bounds.Min.Y + float64(row+1)*cell.Y,
		}
		hi := r2.Vec{X: lo.X + cell.X, Y: lo.Y - cell.Y}
		x0, y0 := cam.WorldToScreen(lo)
		x1, y1 := cam.WorldToScreen(hi)
		rl.DrawRectangleRec(
			rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0},
			HeatColor(float64(c)/float64(peak), alpha),
		)
	}
}

// DrawVectors draws one line per agent along a per-agent vector, scaled
// from domain units to the given length.
func (r *AgentRenderer) DrawVectors(agents []components.Agent, cam *camera.Camera, vec func(*components.Agent) r2.Vec, scale float64, color rl.Color) {
	for i := range agents {
		a := &agents[i]
		if !cam.IsVisible(a.Position, 0) {
			continue
		}
		x0, y0 := cam.WorldToScreen(a.Position)
		x1, y1 := cam.WorldToScreen(r2.Add(a.Position, r2.Scale(scale, vec(a))))
		rl.DrawLineV(rl.Vector2{X: x0, Y: y0}, rl.Vector2{X: x1, Y: y1}, color)
	}
}

// Velocity returns the agent velocity.
func Velocity(a *components.Agent) r2.Vec { return a.Velocity }

// Pressure returns the negated pressure gradient, the direction the agent is pushed.
func Pressure(a *components.Agent) r2.Vec { return r2.Scale(-1, a.PressureGradient) }

// DrawPointer marks the pointer override target.
func (r *AgentRenderer) DrawPointer(target r2.Vec, cam *camera.Camera) {
	sx, sy := cam.WorldToScreen(target)
	rl.DrawCircleLines(int32(sx), int32(sy), 8, rl.SkyBlue)
}
