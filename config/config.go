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

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Viewport  ViewportConfig  `yaml:"viewport"`
	Magnets   MagnetsConfig   `yaml:"magnets"`
	Particles ParticlesConfig `yaml:"particles"`
	Field     FieldConfig     `yaml:"field"`
	Input     InputConfig     `yaml:"input"`
	Palette   PaletteConfig   `yaml:"palette"`
	Lines     LinesConfig     `yaml:"lines"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// ViewportConfig holds the world-space rectangle tracers are scattered in.
type ViewportConfig struct {
	MinX float64 `yaml:"min_x"`
	MinY float64 `yaml:"min_y"`
	MaxX float64 `yaml:"max_x"`
	MaxY float64 `yaml:"max_y"`
}

// MagnetPose is the starting pose of one magnet.
type MagnetPose struct {
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Angle   float64 `yaml:"angle"`   // radians
	Flipped bool    `yaml:"flipped"` // North on the local -X end
}

// MagnetsConfig holds magnet geometry and the initial scene.
type MagnetsConfig struct {
	HalfWidth    float64      `yaml:"half_width"`
	HalfHeight   float64      `yaml:"half_height"`
	PoleStrength float64      `yaml:"pole_strength"`
	Initial      []MagnetPose `yaml:"initial"`
}

// ParticlesConfig holds tracer population parameters.
type ParticlesConfig struct {
	Initial int `yaml:"initial"`
	Max     int `yaml:"max"` // slider upper bound; 0 = unbounded
}

// FieldConfig holds numeric guards for the field computation.
type FieldConfig struct {
	MinDistSq      float64 `yaml:"min_dist_sq"`
	UniformEpsilon float64 `yaml:"uniform_epsilon"`
	ZeroEpsilon    float64 `yaml:"zero_epsilon"`
}

// InputConfig holds interactive control parameters.
type InputConfig struct {
	RotateStep      float64 `yaml:"rotate_step"`
	SpringFrequency float64 `yaml:"spring_frequency"`
	SpringDamping   float64 `yaml:"spring_damping"`
	CountStep       int     `yaml:"count_step"`
}

// PaletteConfig holds the strength colour ramp endpoints as hex strings.
type PaletteConfig struct {
	Low  string `yaml:"low"`
	High string `yaml:"high"`
}

// LinesConfig holds field-line overlay parameters.
type LinesConfig struct {
	Step         float64 `yaml:"step"`
	MaxSteps     int     `yaml:"max_steps"`
	SeedsPerPole int     `yaml:"seeds_per_pole"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT          float64 // seconds per frame at the target FPS
	ViewportW   float64
	ViewportH   float64
	ScreenW32   float32
	ScreenH32   float32
	ViewportW32 float32
	ViewportH32 float32
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
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file; lists are replaced whole
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg.computeDerived()

	return cfg, nil
}

// Validate reports configurations the simulation cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Viewport.MaxX <= c.Viewport.MinX || c.Viewport.MaxY <= c.Viewport.MinY {
		errs = append(errs, errors.New("viewport must have positive width and height"))
	}
	if c.Magnets.HalfWidth <= 0 || c.Magnets.HalfHeight <= 0 {
		errs = append(errs, errors.New("magnet half extents must be positive"))
	}
	if c.Field.MinDistSq <= 0 {
		errs = append(errs, errors.New("field.min_dist_sq must be positive"))
	}
	if c.Field.UniformEpsilon <= 0 || c.Field.ZeroEpsilon <= 0 {
		errs = append(errs, errors.New("field epsilons must be positive"))
	}
	if c.Particles.Initial < 0 {
		errs = append(errs, errors.New("particles.initial must not be negative"))
	}
	if c.Particles.Max > 0 && c.Particles.Initial > c.Particles.Max {
		errs = append(errs, fmt.Errorf("particles.initial (%d) exceeds particles.max (%d)",
			c.Particles.Initial, c.Particles.Max))
	}
	if c.Screen.TargetFPS <= 0 {
		errs = append(errs, errors.New("screen.target_fps must be positive"))
	}
	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT = 1.0 / float64(c.Screen.TargetFPS)
	c.Derived.ViewportW = c.Viewport.MaxX - c.Viewport.MinX
	c.Derived.ViewportH = c.Viewport.MaxY - c.Viewport.MinY
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.ViewportW32 = float32(c.Derived.ViewportW)
	c.Derived.ViewportH32 = float32(c.Derived.ViewportH)

	if c.Telemetry.PerfCollectorWindow < 1 {
		c.Telemetry.PerfCollectorWindow = c.Screen.TargetFPS
	}
	if c.Lines.MaxSteps < 1 {
		c.Lines.MaxSteps = 400
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
