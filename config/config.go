// Package config provides configuration loading and access for the trail engine.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all engine configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Emitter   EmitterConfig   `yaml:"emitter"`
	Particle  ParticleConfig  `yaml:"particle"`
	Render    RenderConfig    `yaml:"render"`
	Terminal  TerminalConfig  `yaml:"terminal"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds window settings for the overlay host.
type ScreenConfig struct {
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	TargetFPS   int    `yaml:"target_fps"`
	Title       string `yaml:"title"`
	Transparent bool   `yaml:"transparent"` // Undecorated, topmost, see-through overlay
	Passthrough bool   `yaml:"passthrough"` // Clicks fall through; most platforms then stop reporting the cursor
}

// EmitterConfig controls how pointer movement turns into spawn requests.
type EmitterConfig struct {
	SpawnIntervalMS  float64 `yaml:"spawn_interval_ms"`  // Minimum time between spawn batches
	MinSpeed         float64 `yaml:"min_speed"`          // Pointer speed (px/sample) that must be exceeded
	SpeedPerParticle float64 `yaml:"speed_per_particle"` // count = floor(speed / this) + 1
	MaxPerBatch      int     `yaml:"max_per_batch"`      // Upper clamp on count
}

// ParticleConfig holds per-particle spawn ranges and kinematics.
// These are tuned for looks; nothing depends on their exact magnitudes.
type ParticleConfig struct {
	SizeMin   float64 `yaml:"size_min"`
	SizeMax   float64 `yaml:"size_max"`
	LifeMin   int     `yaml:"life_min"` // Ticks, inclusive
	LifeMax   int     `yaml:"life_max"` // Ticks, exclusive
	HintScale float64 `yaml:"hint_scale"`
	Jitter    float64 `yaml:"jitter"`
	Drag      float64 `yaml:"drag"`
	Gravity   float64 `yaml:"gravity"`
	HueStep   float64 `yaml:"hue_step"` // Degrees per tick
}

// RenderConfig holds renderer appearance parameters.
type RenderConfig struct {
	Saturation     float64 `yaml:"saturation"`
	Lightness      float64 `yaml:"lightness"`
	StrokeWidth    float64 `yaml:"stroke_width"`
	StarPoints     int     `yaml:"star_points"`
	CircleSegments int     `yaml:"circle_segments"`
	ScreenBlend    bool    `yaml:"screen_blend"`
}

// TerminalConfig maps terminal cells onto the pixel space particles live in.
type TerminalConfig struct {
	CellWidth  float64 `yaml:"cell_width"`
	CellHeight float64 `yaml:"cell_height"`
	FPS        int     `yaml:"fps"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow   float64 `yaml:"stats_window"`    // Seconds
	PerfWindow    int     `yaml:"perf_window"`     // Frames
	FrameBudgetMS float64 `yaml:"frame_budget_ms"` // Frames slower than this count as overruns
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	SpawnInterval time.Duration
	FrameBudget   time.Duration
	FrameInterval time.Duration // 1 / Screen.TargetFPS
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

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
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
		return nil, fmt.Errorf("validating config: %w", err)
	}

	cfg.computeDerived()

	return cfg, nil
}

// Validate checks ranges that would otherwise produce degenerate particles.
func (c *Config) Validate() error {
	var errs []error

	p := c.Particle
	if p.SizeMin <= 0 || p.SizeMax <= p.SizeMin {
		errs = append(errs, fmt.Errorf("particle size range [%v, %v) is empty or non-positive", p.SizeMin, p.SizeMax))
	}
	if p.LifeMin < 1 || p.LifeMax <= p.LifeMin {
		errs = append(errs, fmt.Errorf("particle life range [%d, %d) is empty or below one tick", p.LifeMin, p.LifeMax))
	}
	if p.Drag <= 0 || p.Drag > 1 {
		errs = append(errs, fmt.Errorf("particle drag %v outside (0, 1]", p.Drag))
	}
	if p.HueStep < 0 {
		errs = append(errs, fmt.Errorf("particle hue_step %v is negative", p.HueStep))
	}
	if p.Jitter < 0 {
		errs = append(errs, fmt.Errorf("particle jitter %v is negative", p.Jitter))
	}

	e := c.Emitter
	if e.SpawnIntervalMS < 0 {
		errs = append(errs, fmt.Errorf("emitter spawn interval %vms is negative", e.SpawnIntervalMS))
	}
	if e.SpeedPerParticle <= 0 {
		errs = append(errs, fmt.Errorf("emitter speed_per_particle %v must be positive", e.SpeedPerParticle))
	}
	if e.MaxPerBatch < 1 {
		errs = append(errs, fmt.Errorf("emitter max_per_batch %d must be at least 1", e.MaxPerBatch))
	}

	if c.Render.StarPoints < 2 {
		errs = append(errs, fmt.Errorf("render star_points %d must be at least 2", c.Render.StarPoints))
	}
	if c.Render.CircleSegments < 3 {
		errs = append(errs, fmt.Errorf("render circle_segments %d must be at least 3", c.Render.CircleSegments))
	}

	if c.Terminal.CellWidth <= 0 || c.Terminal.CellHeight <= 0 {
		errs = append(errs, fmt.Errorf("terminal cell size %vx%v must be positive", c.Terminal.CellWidth, c.Terminal.CellHeight))
	}

	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.SpawnInterval = time.Duration(c.Emitter.SpawnIntervalMS * float64(time.Millisecond))
	c.Derived.FrameBudget = time.Duration(c.Telemetry.FrameBudgetMS * float64(time.Millisecond))

	fps := c.Screen.TargetFPS
	if fps <= 0 {
		fps = 60
	}
	c.Derived.FrameInterval = time.Second / time.Duration(fps)
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
