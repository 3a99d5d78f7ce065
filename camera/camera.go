// Package camera maps the bounded simulation domain onto the screen.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/components"
)

// Camera controls the viewport into the simulation domain.
// Domain y points up, screen y points down.
type Camera struct {
	// Center is the camera center in domain coordinates.
	Center r2.Vec

	// Zoom level relative to the fitted view (1.0 = whole domain visible).
	Zoom float64

	// Viewport dimensions (screen size).
	ViewportW, ViewportH float64

	// Domain is the simulated region.
	Domain components.Bounds

	// Zoom constraints
	MinZoom, MaxZoom float64
}

// New creates a camera centered on the domain with the whole domain fitted
// into the viewport.
func New(viewportW, viewportH float64, domain components.Bounds) *Camera {
	return &Camera{
		Center:    domain.Center(),
		Zoom:      1.0,
		ViewportW: viewportW,
		ViewportH: viewportH,
		Domain:    domain,
		MinZoom:   1.0,
		MaxZoom:   8.0,
	}
}

// PixelsPerUnit returns the current screen scale.
func (c *Camera) PixelsPerUnit() float64 {
	size := c.Domain.Size()
	fit := math.Min(c.ViewportW/size.X, c.ViewportH/size.Y)
	return fit * c.Zoom
}

// WorldToScreen converts domain coordinates to screen coordinates.
func (c *Camera) WorldToScreen(p r2.Vec) (sx, sy float32) {
	s := c.PixelsPerUnit()
	d := r2.Sub(p, c.Center)
	sx = float32(c.ViewportW/2 + d.X*s)
	sy = float32(c.ViewportH/2 - d.Y*s)
	return sx, sy
}

// ScreenToWorld converts screen coordinates to domain coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) r2.Vec {
	s := c.PixelsPerUnit()
	return r2.Vec{
		X: c.Center.X + (float64(sx)-c.ViewportW/2)/s,
		Y: c.Center.Y - (float64(sy)-c.ViewportH/2)/s,
	}
}

// IsVisible returns true if a circle at p with the given domain radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(p r2.Vec, radius float64) bool {
	s := c.PixelsPerUnit()
	d := r2.Sub(p, c.Center)
	halfW := c.ViewportW/(2*s) + radius
	halfH := c.ViewportH/(2*s) + radius
	return math.Abs(d.X) <= halfW && math.Abs(d.Y) <= halfH
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float64) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.clampCenter()
}

// Pan moves the camera by the given delta in screen pixels.
// The center stays inside the domain.
func (c *Camera) Pan(dx, dy float64) {
	s := c.PixelsPerUnit()
	c.Center.X += dx / s
	c.Center.Y -= dy / s
	c.clampCenter()
}

// Follow centers the camera on a domain point.
func (c *Camera) Follow(p r2.Vec) {
	c.Center = p
	c.clampCenter()
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float64) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
	c.clampCenter()
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float64) {
	c.SetZoom(c.Zoom * factor)
}

// Reset returns the camera to the fitted view.
func (c *Camera) Reset() {
	c.Center = c.Domain.Center()
	c.Zoom = 1.0
}

// VisibleWorldBounds returns the domain-coordinate rectangle on screen.
func (c *Camera) VisibleWorldBounds() components.Bounds {
	s := c.PixelsPerUnit()
	half := r2.Vec{X: c.ViewportW / (2 * s), Y: c.ViewportH / (2 * s)}
	return components.Bounds{Min: r2.Sub(c.Center, half), Max: r2.Add(c.Center, half)}
}

func (c *Camera) clampCenter() {
	c.Center.X = clamp(c.Center.X, c.Domain.Min.X, c.Domain.Max.X)
	c.Center.Y = clamp(c.Center.Y, c.Domain.Min.Y, c.Domain.Max.Y)
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
