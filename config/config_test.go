package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg, err := Defaults()
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("embedded defaults do not validate: %v", err)
	}
	if cfg.Simulation.Variant != VariantFlocking {
		t.Errorf("default variant = %q", cfg.Simulation.Variant)
	}
	if cfg.Derived.NumCells != cfg.Simulation.GridSize*cfg.Simulation.GridSize {
		t.Errorf("num cells = %d", cfg.Derived.NumCells)
	}
	if cfg.Derived.CellWidth != 0.5 || cfg.Derived.DomainW != 2 {
		t.Errorf("unexpected derived geometry: %+v", cfg.Derived)
	}
	// dt 0 means wall clock; the fixed step falls back to headless_dt.
	if cfg.Derived.StepDT != cfg.Simulation.HeadlessDT {
		t.Errorf("step dt = %v, want headless dt %v", cfg.Derived.StepDT, cfg.Simulation.HeadlessDT)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "simulation:\n  population: 250\n  grid_size: 8\n  dt: 0.01\nflocking:\n  max_speed: 0.6\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Simulation.Population != 250 || cfg.Simulation.GridSize != 8 {
		t.Errorf("overlay not applied: %+v", cfg.Simulation)
	}
	if cfg.Flocking.MaxSpeed != 0.6 {
		t.Errorf("max speed = %v", cfg.Flocking.MaxSpeed)
	}
	if cfg.Flocking.MinSpeed != 0.2 {
		t.Errorf("fields absent from the file should keep defaults, min speed = %v", cfg.Flocking.MinSpeed)
	}
	if cfg.Derived.StepDT != 0.01 || cfg.Derived.CellWidth != 0.25 {
		t.Errorf("derived not recomputed: %+v", cfg.Derived)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero population", func(c *Config) { c.Simulation.Population = 0 }},
		{"zero grid", func(c *Config) { c.Simulation.GridSize = 0 }},
		{"unknown variant", func(c *Config) { c.Simulation.Variant = "gas" }},
		{"unknown spawn", func(c *Config) { c.Simulation.Spawn = "spiral" }},
		{"degenerate domain", func(c *Config) { c.Domain.MaxX = c.Domain.MinX }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Defaults()
			if err != nil {
				t.Fatal(err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestTunablesAreNotRejected(t *testing.T) {
	cfg, err := Defaults()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Flocking.MinSpeed = 1
	cfg.Flocking.MaxSpeed = 0.5
	cfg.Flocking.VisualRange = 2
	if err := cfg.Validate(); err != nil {
		t.Fatalf("tunables should not fail validation: %v", err)
	}

	warnings := strings.Join(cfg.Warnings(), "\n")
	for _, want := range []string{"min_speed", "visual_range"} {
		if !strings.Contains(warnings, want) {
			t.Errorf("expected a warning about %s, got:\n%s", want, warnings)
		}
	}
}

func TestRefresh(t *testing.T) {
	cfg, err := Defaults()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Simulation.GridSize = 16
	if err := cfg.Refresh(); err != nil {
		t.Fatal(err)
	}
	if cfg.Derived.NumCells != 256 || cfg.Derived.CellWidth != 0.125 {
		t.Errorf("derived not refreshed: %+v", cfg.Derived)
	}

	cfg.Simulation.Population = 0
	if err := cfg.Refresh(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Defaults()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Fluid.TargetDensity = 42
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Fluid.TargetDensity != 42 {
		t.Errorf("target density = %v", loaded.Fluid.TargetDensity)
	}
}
