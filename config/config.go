// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Interaction variants.
const (
	VariantFlocking = "flocking"
	VariantFluid    = "fluid"
)

// Spawn layouts.
const (
	SpawnRing    = "ring"
	SpawnRandom  = "random"
	SpawnLattice = "lattice"
)

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Simulation SimulationConfig `yaml:"simulation"`
	Domain     DomainConfig     `yaml:"domain"`
	Flocking   FlockingConfig   `yaml:"flocking"`
	Fluid      FluidConfig      `yaml:"fluid"`
	Pointer    PointerConfig    `yaml:"pointer"`
	Trail      TrailConfig      `yaml:"trail"`
	Device     DeviceConfig     `yaml:"device"`
	Debug      DebugConfig      `yaml:"debug"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// SimulationConfig holds the fixed-size pipeline parameters.
// Population and grid size cannot change after startup.
type SimulationConfig struct {
	Variant    string  `yaml:"variant"`     // flocking | fluid
	Population int     `yaml:"population"`  // fixed agent count n
	GridSize   int     `yaml:"grid_size"`   // cells per axis
	Spawn      string  `yaml:"spawn"`       // ring | random | lattice
	DT         float64 `yaml:"dt"`          // fixed step; 0 = wall clock in graphical mode
	HeadlessDT float64 `yaml:"headless_dt"` // step used when no wall clock is available
}

// DomainConfig holds the simulated region bounds.
type DomainConfig struct {
	MinX float64 `yaml:"min_x"`
	MaxX float64 `yaml:"max_x"`
	MinY float64 `yaml:"min_y"`
	MaxY float64 `yaml:"max_y"`
}

// FlockingConfig holds boid interaction parameters.
type FlockingConfig struct {
	VisualRange     float64 `yaml:"visual_range"`
	ProtectedRange  float64 `yaml:"protected_range"`
	CenteringFactor float64 `yaml:"centering_factor"`
	MatchingFactor  float64 `yaml:"matching_factor"`
	AvoidFactor     float64 `yaml:"avoid_factor"`
	BorderMargin    float64 `yaml:"border_margin"`
	TurnFactor      float64 `yaml:"turn_factor"`
	MinSpeed        float64 `yaml:"min_speed"`
	MaxSpeed        float64 `yaml:"max_speed"`
	RandFactor      float64 `yaml:"rand_factor"`
}

// FluidConfig holds density/pressure interaction parameters.
type FluidConfig struct {
	SmoothingRadius     float64 `yaml:"smoothing_radius"`
	KernelScalingFactor float64 `yaml:"kernel_scaling_factor"`
	TargetDensity       float64 `yaml:"target_density"`
	PressureMultiplier  float64 `yaml:"pressure_multiplier"`
	GravityEnabled      bool    `yaml:"gravity_enabled"`
	GravityStrength     float64 `yaml:"gravity_strength"`
	CollisionDamping    float64 `yaml:"collision_damping"`
	MaxSpeed            float64 `yaml:"max_speed"`
}

// PointerConfig holds the initial pointer override state.
type PointerConfig struct {
	Enabled bool    `yaml:"enabled"`
	TargetX float64 `yaml:"target_x"`
	TargetY float64 `yaml:"target_y"`
}

// TrailConfig holds trail compositing parameters.
type TrailConfig struct {
	AdditiveBlending bool    `yaml:"additive_blending"`
	PointSize        float64 `yaml:"point_size"`
	// Normal mode: new frame weight and accumulated decay.
	BlendFactor float64 `yaml:"blend_factor"`
	DecayFactor float64 `yaml:"decay_factor"`
	// Additive mode equivalents.
	AdditiveBlendFactor float64 `yaml:"additive_blend_factor"`
	AdditiveDecayFactor float64 `yaml:"additive_decay_factor"`
}

// DeviceConfig holds compute executor settings.
type DeviceConfig struct {
	Workers   int `yaml:"workers"`    // 0 = GOMAXPROCS
	ChunkSize int `yaml:"chunk_size"` // invocations per work item; 0 = auto
}

// DebugConfig holds correctness-checking switches.
type DebugConfig struct {
	StrictInvariants   bool `yaml:"strict_invariants"`   // verify partition each tick, fatal errors stop the run
	DeterministicOrder bool `yaml:"deterministic_order"` // order agents by ID within each cell after reindexing
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	NumCells    int     // GridSize squared
	CellWidth   float64 // domain width / GridSize
	CellHeight  float64 // domain height / GridSize
	DomainW     float64
	DomainH     float64
	StepDT      float64 // DT if set, else HeadlessDT
	ScreenW32   float32
	ScreenH32   float32
	AspectRatio float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Defaults returns a fresh copy of the embedded defaults with derived values.
func Defaults() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	cfg.computeDerived()
	return cfg, nil
}

// ErrInvalid is returned for configurations the pipeline cannot be built from.
var ErrInvalid = errors.New("invalid config")

// Validate rejects structural settings that would make buffer allocation or
// cell mapping impossible. Physics tunables are deliberately not range checked.
func (c *Config) Validate() error {
	s := c.Simulation
	if s.Population < 1 {
		return fmt.Errorf("%w: simulation.population must be >= 1, got %d", ErrInvalid, s.Population)
	}
	if s.GridSize < 1 {
		return fmt.Errorf("%w: simulation.grid_size must be >= 1, got %d", ErrInvalid, s.GridSize)
	}
	switch s.Variant {
	case VariantFlocking, VariantFluid:
	default:
		return fmt.Errorf("%w: unknown simulation.variant %q", ErrInvalid, s.Variant)
	}
	switch s.Spawn {
	case SpawnRing, SpawnRandom, SpawnLattice:
	default:
		return fmt.Errorf("%w: unknown simulation.spawn %q", ErrInvalid, s.Spawn)
	}
	d := c.Domain
	if !(d.MaxX > d.MinX) || !(d.MaxY > d.MinY) {
		return fmt.Errorf("%w: degenerate domain [%g,%g]x[%g,%g]", ErrInvalid, d.MinX, d.MaxX, d.MinY, d.MaxY)
	}
	return nil
}

// Warnings lists tunable values that are accepted but likely to misbehave.
func (c *Config) Warnings() []string {
	var w []string
	f := c.Flocking
	if f.MinSpeed > f.MaxSpeed {
		w = append(w, fmt.Sprintf("flocking.min_speed (%g) > max_speed (%g); speeds clamp to the narrower bound", f.MinSpeed, f.MaxSpeed))
	}
	if f.ProtectedRange > f.VisualRange {
		w = append(w, "flocking.protected_range exceeds visual_range; separation only sees neighbors inside visual_range")
	}
	cell := c.Derived.CellWidth
	if c.Derived.CellHeight < cell {
		cell = c.Derived.CellHeight
	}
	if f.VisualRange > cell {
		w = append(w, fmt.Sprintf("flocking.visual_range (%g) exceeds cell size (%g); neighbor scan widens beyond 3x3", f.VisualRange, cell))
	}
	if c.Fluid.SmoothingRadius > cell {
		w = append(w, fmt.Sprintf("fluid.smoothing_radius (%g) exceeds cell size (%g); neighbor scan widens beyond 3x3", c.Fluid.SmoothingRadius, cell))
	}
	return w
}

// Refresh revalidates c and recomputes derived values after fields were
// edited in code.
func (c *Config) Refresh() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DomainW = c.Domain.MaxX - c.Domain.MinX
	c.Derived.DomainH = c.Domain.MaxY - c.Domain.MinY
	c.Derived.NumCells = c.Simulation.GridSize * c.Simulation.GridSize
	if c.Simulation.GridSize > 0 {
		c.Derived.CellWidth = c.Derived.DomainW / float64(c.Simulation.GridSize)
		c.Derived.CellHeight = c.Derived.DomainH / float64(c.Simulation.GridSize)
	}

	c.Derived.StepDT = c.Simulation.DT
	if c.Derived.StepDT <= 0 {
		c.Derived.StepDT = c.Simulation.HeadlessDT
	}

	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	if c.Screen.Height > 0 {
		c.Derived.AspectRatio = c.Derived.ScreenW32 / c.Derived.ScreenH32
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
