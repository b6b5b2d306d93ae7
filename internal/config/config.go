// Package config loads the optional YAML configuration for the host. Fields
// left out of the file keep their defaults.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/irfansharif/neonglow/internal/palette"
	"github.com/irfansharif/neonglow/internal/preset"
)

type Size struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Color is the initial color state.
type Color struct {
	Hue           float64 `yaml:"hue"`
	Saturation    float64 `yaml:"saturation"`
	Brightness    float64 `yaml:"brightness"`
	Fluorescence  float64 `yaml:"fluorescence"`
	Neon          bool    `yaml:"neon"`
	HaloWidth     float64 `yaml:"halo_width"`
	HaloIntensity float64 `yaml:"halo_intensity"`
}

type Config struct {
	Window Size  `yaml:"window"`
	Render Size  `yaml:"render"`
	UseGPU bool  `yaml:"use_gpu"`
	Color  Color `yaml:"color"`

	DefaultDurationMs int `yaml:"default_duration_ms"`
	DemoCycleMs       int `yaml:"demo_cycle_ms"`
	DemoStepMs        int `yaml:"demo_step_ms"`
	TargetFPS         int `yaml:"target_fps"`

	StatusAddr string         `yaml:"status_addr,omitempty"` // websocket feed, e.g. ":8090"
	Presets    []preset.Entry `yaml:"presets,omitempty"`
}

func Default() *Config {
	s := palette.Default()
	return &Config{
		Window: Size{Width: 800, Height: 800},
		Render: Size{Width: 512, Height: 512},
		UseGPU: true,
		Color: Color{
			Hue:           s.Hue,
			Saturation:    s.Saturation,
			Brightness:    s.Brightness,
			Fluorescence:  s.Fluorescence,
			Neon:          s.Neon,
			HaloWidth:     s.HaloWidth,
			HaloIntensity: s.HaloIntensity,
		},
		DefaultDurationMs: 500,
		DemoCycleMs:       10000,
		DemoStepMs:        100,
		TargetFPS:         60,
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Overrides are settings given on the command line. Nil fields were not
// given and leave the configured value alone.
type Overrides struct {
	UseGPU       *bool
	RenderWidth  *int
	RenderHeight *int
	StatusAddr   *string
}

// Apply layers o over c. Command-line settings win over the file.
func (c *Config) Apply(o Overrides) {
	if o.UseGPU != nil {
		c.UseGPU = *o.UseGPU
	}
	if o.RenderWidth != nil {
		c.Render.Width = *o.RenderWidth
	}
	if o.RenderHeight != nil {
		c.Render.Height = *o.RenderHeight
	}
	if o.StatusAddr != nil {
		c.StatusAddr = *o.StatusAddr
	}
}

// ApplyEnv applies environment overrides last: NEONGLOW_USE_GPU=0 forces the
// CPU path.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv("NEONGLOW_USE_GPU") == "0" {
		c.UseGPU = false
	}
}

// Validate reports every problem found, joined.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		errs = append(errs, fmt.Errorf("render size %dx%d must be positive", c.Render.Width, c.Render.Height))
	}
	for name, v := range map[string]int{
		"default_duration_ms": c.DefaultDurationMs,
		"demo_cycle_ms":       c.DemoCycleMs,
		"demo_step_ms":        c.DemoStepMs,
	} {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative (got %d)", name, v))
		}
	}
	if c.TargetFPS <= 0 {
		errs = append(errs, fmt.Errorf("target_fps must be positive (got %d)", c.TargetFPS))
	}
	if _, err := c.State(); err != nil {
		errs = append(errs, fmt.Errorf("color: %w", err))
	}
	for i, p := range c.Presets {
		if err := p.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("presets[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// State converts the configured color through the palette setters, so
// out-of-range values clamp and non-finite ones are rejected.
func (c *Config) State() (palette.State, error) {
	s := palette.Default()
	s.SetNeon(c.Color.Neon)
	for _, set := range []struct {
		fn func(float64) error
		v  float64
	}{
		{s.SetHue, c.Color.Hue},
		{s.SetSaturation, c.Color.Saturation},
		{s.SetBrightness, c.Color.Brightness},
		{s.SetFluorescence, c.Color.Fluorescence},
		{s.SetHaloWidth, c.Color.HaloWidth},
		{s.SetHaloIntensity, c.Color.HaloIntensity},
	} {
		if err := set.fn(set.v); err != nil {
			return palette.State{}, err
		}
	}
	return s, nil
}

// Registry returns the built-in presets followed by the configured ones.
func (c *Config) Registry() *preset.Registry {
	return preset.Builtin().With(c.Presets...)
}

func (c *Config) DefaultDuration() time.Duration { return ms(c.DefaultDurationMs) }
func (c *Config) DemoCycle() time.Duration       { return ms(c.DemoCycleMs) }
func (c *Config) DemoStep() time.Duration        { return ms(c.DemoStepMs) }

// FrameInterval is the loop period for the target frame rate.
func (c *Config) FrameInterval() time.Duration {
	if c.TargetFPS <= 0 {
		return time.Second / 60
	}
	return time.Duration(math.Round(float64(time.Second) / float64(c.TargetFPS)))
}

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }
