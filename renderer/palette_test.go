package renderer

import (
	"math"
	"testing"

	"github.com/pthm-cable/flock/config"
)

func TestSpeedColorEndpoints(t *testing.T) {
	if got := SpeedColor(0.2, 0.2, 0.3); got != slowColor {
		t.Errorf("min speed should map to slow color, got %v", got)
	}
	if got := SpeedColor(0.3, 0.2, 0.3); got != fastColor {
		t.Errorf("max speed should map to fast color, got %v", got)
	}
	if got := SpeedColor(5, 0.2, 0.3); got != fastColor {
		t.Errorf("speed above range should clamp, got %v", got)
	}
	if got := SpeedColor(math.NaN(), 0.2, 0.3); got != slowColor {
		t.Errorf("NaN speed should map to slow color, got %v", got)
	}
	// Degenerate range does not divide by zero.
	if got := SpeedColor(1, 0.5, 0.5); got != fastColor {
		t.Errorf("degenerate range should map to fast color, got %v", got)
	}
}

func TestDensityColorMidpoint(t *testing.T) {
	got := DensityColor(100, 100)
	want := lerpColor(lowColor, highColor, 0.5)
	if got != want {
		t.Errorf("target density should map to midpoint, got %v want %v", got, want)
	}
}

func TestHeatColorRamp(t *testing.T) {
	if c := HeatColor(0, 200); c.G != 0 || c.A != 200 {
		t.Errorf("empty cell should be black, got %v", c)
	}
	if c := HeatColor(1, 200); c.R != 255 || c.G != 200 {
		t.Errorf("full cell should be yellow, got %v", c)
	}
}

func TestTrailFactors(t *testing.T) {
	cfg := config.TrailConfig{
		BlendFactor:         0.85,
		DecayFactor:         1.0,
		AdditiveBlendFactor: 0.95,
		AdditiveDecayFactor: 0.8,
	}

	blend, decay := TrailFactors(cfg)
	if blend != 0.85 || decay != 1.0 {
		t.Errorf("normal mode factors = %v, %v", blend, decay)
	}
	if r := Retention(cfg); math.Abs(r-0.85) > 1e-9 {
		t.Errorf("normal retention = %v", r)
	}

	cfg.AdditiveBlending = true
	blend, decay = TrailFactors(cfg)
	if blend != 0.95 || decay != 0.8 {
		t.Errorf("additive mode factors = %v, %v", blend, decay)
	}
	if r := Retention(cfg); math.Abs(r-0.76) > 1e-9 {
		t.Errorf("additive retention = %v", r)
	}
}
