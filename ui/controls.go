package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// PanelContent is what the controls panel edits on a given frame.
type PanelContent struct {
	Title   string
	Sliders []SliderDescriptor
	Toggles []ToggleDescriptor
}

// ControlsPanel renders the parameter panel with sliders, toggles and
// overlay switches.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool

	// height of the last drawn frame, used for hit testing
	lastHeight int32
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// SetVisible shows or hides the panel.
func (c *ControlsPanel) SetVisible(visible bool) {
	c.visible = visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Contains reports whether a screen point is over the panel, so clicks
// there are not treated as pointer targets.
func (c *ControlsPanel) Contains(x, y float32) bool {
	if !c.visible {
		return false
	}
	return x >= float32(c.x) && x <= float32(c.x+c.width) && y >= float32(c.y) && y <= float32(c.y+c.lastHeight)
}

func (c *ControlsPanel) height(content PanelContent, overlays *OverlayRegistry) int32 {
	t := c.renderer.Theme
	rows := int32(len(content.Sliders)+len(content.Toggles)) * (t.SliderHeight + 6)
	items := int32(len(overlays.All()) + len(overlays.Categories()))
	return t.Padding*3 + t.LineHeight*2 + rows + items*t.LineHeight
}

// Draw renders the controls panel and returns the Y below it.
func (c *ControlsPanel) Draw(content PanelContent, overlays *OverlayRegistry) int32 {
	if !c.visible {
		return c.y
	}

	r := c.renderer
	padding := r.Theme.Padding
	inner := c.width - padding*2

	c.lastHeight = c.height(content, overlays)
	r.DrawPanel(c.x, c.y, c.width, c.lastHeight)

	y := c.y + padding
	rl.DrawText(content.Title, c.x+padding, y, 16, rl.White)
	y += r.Theme.LineHeight + 4

	for _, d := range content.Sliders {
		y = r.DrawSlider(c.x+padding, y, d, inner)
	}
	for _, d := range content.Toggles {
		y = r.DrawToggle(c.x+padding, y, d)
	}

	y += 4
	for _, category := range overlays.Categories() {
		rl.DrawText(categoryLabel(category), c.x+padding, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += r.Theme.LineHeight

		for _, desc := range overlays.ByCategory(category) {
			c.drawToggle(c.x+padding, y, desc, overlays.IsEnabled(desc.ID), inner)
			y += r.Theme.LineHeight
		}
	}

	return y
}

// drawToggle draws a single overlay toggle line.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)

	nameColor := r.Theme.LabelColor
	if enabled {
		nameColor = rl.White
	}
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "visual":
		return "Visual"
	case "debug":
		return "Debug"
	default:
		return cat
	}
}
