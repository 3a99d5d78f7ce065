package renderer

import rl "github.com/gen2brain/raylib-go/raylib"

var (
	slowColor = rl.Color{R: 40, G: 90, B: 220, A: 255}
	fastColor = rl.Color{R: 255, G: 240, B: 200, A: 255}
	lowColor  = rl.Color{R: 30, G: 160, B: 255, A: 255}
	highColor = rl.Color{R: 255, G: 80, B: 40, A: 255}
)

// SpeedColor tints a point by where its speed falls between lo and hi.
func SpeedColor(speed, lo, hi float64) rl.Color {
	t := 1.0
	if hi > lo {
		t = (speed - lo) / (hi - lo)
	}
	return lerpColor(slowColor, fastColor, unit(t))
}

// DensityColor tints a point by its density relative to the target.
// Target density maps to the middle of the ramp.
func DensityColor(density, target float64) rl.Color {
	t := 1.0
	if target > 0 {
		t = density / (2 * target)
	}
	return lerpColor(lowColor, highColor, unit(t))
}

// HeatColor maps a [0, 1] load to black -> green -> yellow.
func HeatColor(value float64, alpha uint8) rl.Color {
	value = unit(value)
	switch {
	case value < 0.3:
		t := value / 0.3
		return rl.Color{R: 0, G: uint8(50 * t), B: 0, A: alpha}
	case value < 0.6:
		t := (value - 0.3) / 0.3
		return rl.Color{R: 0, G: uint8(50 + 150*t), B: 0, A: alpha}
	default:
		t := (value - 0.6) / 0.4
		return rl.Color{R: uint8(255 * t), G: 200, B: 0, A: alpha}
	}
}

func lerpColor(a, b rl.Color, t float64) rl.Color {
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t + 0.5)
	}
	return rl.Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

func unit(t float64) float64 {
	if t < 0 || t != t {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
