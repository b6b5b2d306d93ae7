// Package app assembles the color engine: the validated state, the animation
// controller, the demo cycler, the preset registry and the frame pacer. The
// host owns one Engine and calls Tick once per loop iteration.
package app

import (
	"os"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/rs/zerolog"

	"github.com/irfansharif/neonglow/internal/anim"
	"github.com/irfansharif/neonglow/internal/demo"
	"github.com/irfansharif/neonglow/internal/pacer"
	"github.com/irfansharif/neonglow/internal/palette"
	"github.com/irfansharif/neonglow/internal/preset"
	"github.com/irfansharif/neonglow/internal/render"
)

const resetFluorescence = 0.5

var runtimeLogger = zerolog.Nop()

func init() {
	if os.Getenv("NEONGLOW_DEBUG_RUNTIME") == "1" {
		runtimeLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}).
			With().Timestamp().Str("pkg", "app").Logger()
	}
}

// Options configures a new Engine. The zero value is usable.
type Options struct {
	Clock           func() time.Time // defaults to time.Now
	Initial         *palette.State   // defaults to palette.Default()
	Presets         *preset.Registry // defaults to preset.Builtin()
	DefaultDuration time.Duration    // for presets and host actions; defaults to anim.DefaultDuration
	DemoCycle       time.Duration
	DemoStep        time.Duration
}

// Engine encapsulates the color state and everything that mutates it. It is
// not safe for concurrent use; the host drives it from its loop thread.
type Engine struct {
	clock    func() time.Time
	state    *palette.State
	anim     *anim.Controller
	demo     *demo.Cycler
	presets  *preset.Registry
	pacer    *pacer.Pacer
	duration time.Duration

	lastRender  time.Time // zero until the first render
	renderTicks int       // ticks since lastRender, including skipped ones
}

// NewEngine creates a new engine instance.
func NewEngine(opts Options) *Engine {
	e := &Engine{
		clock:    opts.Clock,
		presets:  opts.Presets,
		pacer:    pacer.New(),
		duration: opts.DefaultDuration,
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	if e.presets == nil {
		e.presets = preset.Builtin()
	}
	if e.duration <= 0 {
		e.duration = anim.DefaultDuration
	}
	s := palette.Default()
	if opts.Initial != nil {
		s = *opts.Initial
	}
	e.state = &s
	e.anim = anim.NewController(e.state)
	e.demo = demo.NewCycler(e.anim, opts.DemoCycle, opts.DemoStep)
	return e
}

// State returns a copy of the current color state.
func (e *Engine) State() palette.State { return *e.state }

// DefaultDuration is the animation length used for presets and host actions.
func (e *Engine) DefaultDuration() time.Duration { return e.duration }

func (e *Engine) SetHue(v float64) error           { return e.state.SetHue(v) }
func (e *Engine) SetSaturation(v float64) error    { return e.state.SetSaturation(v) }
func (e *Engine) SetBrightness(v float64) error    { return e.state.SetBrightness(v) }
func (e *Engine) SetFluorescence(v float64) error  { return e.state.SetFluorescence(v) }
func (e *Engine) SetHaloWidth(v float64) error     { return e.state.SetHaloWidth(v) }
func (e *Engine) SetHaloIntensity(v float64) error { return e.state.SetHaloIntensity(v) }
func (e *Engine) SetMode(neon bool)                { e.state.SetNeon(neon) }

// AnimateTo starts an eased transition toward t, replacing any transition in
// flight.
func (e *Engine) AnimateTo(t anim.Target, d time.Duration) {
	e.anim.AnimateTo(e.clock(), t, d)
}

// UpdateAnimation advances the transition to now. It reports whether the
// state changed.
func (e *Engine) UpdateAnimation(now time.Time) bool { return e.anim.Update(now) }

func (e *Engine) IsAnimating() bool { return e.anim.Active() }

func (e *Engine) StartDemo(now time.Time) { e.demo.Start(now) }

func (e *Engine) StopDemo() { e.demo.Stop() }

func (e *Engine) DemoEnabled() bool { return e.demo.Enabled() }

// UpdateDemo re-targets the animation from the demo cycle, if enabled.
func (e *Engine) UpdateDemo(now time.Time) bool { return e.demo.Update(now) }

// ApplyPreset animates toward the named preset. It returns false, leaving the
// state untouched, if the preset is unknown or malformed.
func (e *Engine) ApplyPreset(name string, d time.Duration) bool {
	if err := e.presets.Apply(e.anim, e.clock(), name, d); err != nil {
		runtimeLogger.Debug().Err(err).Str("preset", name).Msg("preset not applied")
		return false
	}
	return true
}

// ListPresetNames returns the preset names in registration order.
func (e *Engine) ListPresetNames() []string { return e.presets.Names() }

// Tick advances the animation and then lets the demo re-target it.
func (e *Engine) Tick(now time.Time) {
	e.UpdateAnimation(now)
	e.UpdateDemo(now)
}

// Reset restores the startup look: red, full saturation and brightness, half
// fluorescence, neon, default halo. It stops the demo and drops any
// transition.
func (e *Engine) Reset() {
	e.demo.Stop()
	e.anim.Cancel()
	s := palette.Default()
	s.Fluorescence = resetFluorescence
	*e.state = s
}

func (e *Engine) HSV() (h, s, v float64)           { return palette.HSVForMode(*e.state) }
func (e *Engine) RGB() colorful.Color              { return palette.RGB(*e.state) }
func (e *Engine) Hex() string                      { return palette.Hex(*e.state) }
func (e *Engine) ShaderColor() [3]float32          { return palette.ShaderColor(*e.state) }
func (e *Engine) BloomIntensity() float64          { return palette.BloomIntensity(*e.state) }
func (e *Engine) HaloRGB() colorful.Color          { return palette.HaloRGB(*e.state) }
func (e *Engine) Complementary() (h, s, v float64) { return palette.Complementary(*e.state) }

// RecordFrame feeds a displayed frame's interval to the pacer.
func (e *Engine) RecordFrame(interval time.Duration) {
	e.pacer.RecordFrame(interval, e.state.Neon)
}

// ShouldRenderThisTick reports whether a loop that skipped counter ticks
// should render now.
func (e *Engine) ShouldRenderThisTick(counter int) bool {
	return e.pacer.ShouldRenderThisTick(counter)
}

// RenderTick is ShouldRenderThisTick with the counter kept by the pacer.
func (e *Engine) RenderTick() bool {
	e.renderTicks++
	return e.pacer.Tick()
}

// RecordRender is called on ticks that rendered. It feeds the pacer the mean
// tick cost since the previous render: the elapsed time divided by the ticks
// it spanned. Skipped ticks are cheap, so the render's own cost is spread
// over the period instead of being lost behind them.
func (e *Engine) RecordRender(now time.Time) {
	ticks := e.renderTicks
	if ticks < 1 {
		ticks = 1
	}
	if !e.lastRender.IsZero() {
		e.RecordFrame(now.Sub(e.lastRender) / time.Duration(ticks))
	}
	e.lastRender = now
	e.renderTicks = 0
}

func (e *Engine) FPS() float64 { return e.pacer.FPS() }

func (e *Engine) Quality() int { return e.pacer.Quality() }

func (e *Engine) PacerStats() pacer.Stats { return e.pacer.Stats() }

// Frame snapshots what the render pipeline needs for time now.
func (e *Engine) Frame(now time.Time) render.Frame {
	f := render.Frame{
		State:      *e.state,
		Quality:    e.pacer.Quality(),
		Animating:  e.anim.Active(),
		DemoActive: e.demo.Enabled(),
	}
	if f.DemoActive {
		f.DemoPhase = e.demo.Phase(now)
	}
	return f
}
