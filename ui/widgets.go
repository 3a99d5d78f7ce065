package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Renderer handles all UI drawing with consistent styling.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel draws a panel background with border.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, r.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)
}

// DrawSectionHeader draws a section header and returns the new Y position.
func (r *Renderer) DrawSectionHeader(x, y int32, title string) int32 {
	rl.DrawText(title, x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
	return y + r.Theme.LineHeight
}

// DrawLabelValue draws a label and value on the same line.
func (r *Renderer) DrawLabelValue(x, y int32, label, value string) int32 {
	rl.DrawText(label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawText(value, x+r.Theme.LabelWidth, y, r.Theme.FontSize, r.Theme.ValueColor)
	return y + r.Theme.LineHeight
}

// DrawBar draws a progress bar for [0, 1] values.
func (r *Renderer) DrawBar(x, y int32, label string, value float32, width int32) int32 {
	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}

	barX := x + r.Theme.LabelWidth
	barWidth := width - r.Theme.LabelWidth - 50

	rl.DrawText(label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawRectangle(barX, y+2, barWidth, r.Theme.BarHeight, r.Theme.BarBg)

	fill := r.Theme.BarFill
	if value > 0.8 {
		fill = r.Theme.BarFillHigh
	}
	rl.DrawRectangle(barX, y+2, int32(float32(barWidth)*value), r.Theme.BarHeight, fill)
	rl.DrawText(fmt.Sprintf("%.0f%%", value*100), barX+barWidth+5, y, r.Theme.FontSize, r.Theme.ValueColor)

	return y + r.Theme.LineHeight + 2
}

// DrawSlider draws a raygui slider bound to d and returns the new Y position.
func (r *Renderer) DrawSlider(x, y int32, d SliderDescriptor, width int32) int32 {
	rl.DrawText(d.Label, x, y, r.Theme.FontSize, r.Theme.LabelColor)

	bounds := rl.Rectangle{
		X:      float32(x + r.Theme.LabelWidth),
		Y:      float32(y),
		Width:  float32(width - r.Theme.LabelWidth - 60),
		Height: float32(r.Theme.SliderHeight),
	}
	d.Set(gui.SliderBar(bounds, "", "", d.Get(), d.Min, d.Max))

	format := d.Format
	if format == "" {
		format = "%.2f"
	}
	rl.DrawText(fmt.Sprintf(format, *d.Value), int32(bounds.X+bounds.Width)+6, y, r.Theme.FontSize, r.Theme.ValueColor)

	return y + r.Theme.SliderHeight + 6
}

// DrawToggle draws a raygui checkbox bound to d and returns the new Y position.
func (r *Renderer) DrawToggle(x, y int32, d ToggleDescriptor) int32 {
	bounds := rl.Rectangle{
		X:      float32(x),
		Y:      float32(y),
		Width:  float32(r.Theme.SliderHeight),
		Height: float32(r.Theme.SliderHeight),
	}
	label := d.Label
	if d.KeyLabel != "" {
		label = fmt.Sprintf("%s [%s]", d.Label, d.KeyLabel)
	}
	*d.Value = gui.CheckBox(bounds, label, *d.Value)
	return y + r.Theme.SliderHeight + 6
}
