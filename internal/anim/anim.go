// Package anim eases a palette.State toward a target over time.
//
// A Controller is either idle or animating. AnimateTo captures the current
// state as the starting point and arms a timer; Update advances the state as a
// pure function of the wall-clock time passed in. A new AnimateTo discards the
// animation in flight, there is no queue and no blending of two animations.
package anim

import (
	"math"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/irfansharif/neonglow/internal/palette"
)

const (
	MinDuration     = 100 * time.Millisecond
	DefaultDuration = 500 * time.Millisecond

	// Linear progress past which the live mode snaps to the target mode. Mode
	// has no continuous interpolation.
	modeSnapProgress = 0.5
)

var animLogger = zerolog.Nop()

func init() {
	if os.Getenv("NEONGLOW_DEBUG_ANIM") == "1" {
		animLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}).
			With().Timestamp().Str("pkg", "anim").Logger()
	}
}

// Target is a partial state. Nil fields keep their current value.
type Target struct {
	Hue           *float64
	Saturation    *float64
	Brightness    *float64
	Fluorescence  *float64
	HaloWidth     *float64
	HaloIntensity *float64
	Neon          *bool
}

func (t Target) WithHue(v float64) Target           { t.Hue = &v; return t }
func (t Target) WithSaturation(v float64) Target    { t.Saturation = &v; return t }
func (t Target) WithBrightness(v float64) Target    { t.Brightness = &v; return t }
func (t Target) WithFluorescence(v float64) Target  { t.Fluorescence = &v; return t }
func (t Target) WithHaloWidth(v float64) Target     { t.HaloWidth = &v; return t }
func (t Target) WithHaloIntensity(v float64) Target { t.HaloIntensity = &v; return t }
func (t Target) WithNeon(v bool) Target             { t.Neon = &v; return t }

// Resolve fills the unspecified fields of t from cur and clamps the rest.
// Fields that are not finite numbers are treated as unspecified.
func (t Target) Resolve(cur palette.State) palette.State {
	out := cur
	pick := func(f palette.Field, v *float64, dst *float64) {
		if v == nil {
			return
		}
		if c, err := palette.Validate(f, *v); err == nil {
			*dst = c
		}
	}
	pick(palette.FieldHue, t.Hue, &out.Hue)
	pick(palette.FieldSaturation, t.Saturation, &out.Saturation)
	pick(palette.FieldBrightness, t.Brightness, &out.Brightness)
	pick(palette.FieldFluorescence, t.Fluorescence, &out.Fluorescence)
	pick(palette.FieldHaloWidth, t.HaloWidth, &out.HaloWidth)
	pick(palette.FieldHaloIntensity, t.HaloIntensity, &out.HaloIntensity)
	if t.Neon != nil {
		out.Neon = *t.Neon
	}
	return out
}

// NormalizeDuration floors d at MinDuration. Negative durations are rejected
// and replaced by DefaultDuration.
func NormalizeDuration(d time.Duration) time.Duration {
	if d < 0 {
		return DefaultDuration
	}
	if d < MinDuration {
		return MinDuration
	}
	return d
}

// Controller owns the animation timer and mutates the state it was built
// with.
type Controller struct {
	state *palette.State

	from, to palette.State
	start    time.Time
	duration time.Duration
	active   bool
	snapped  bool // mode already switched for this animation
}

// NewController returns an idle controller driving s.
func NewController(s *palette.State) *Controller {
	return &Controller{state: s}
}

// AnimateTo starts easing toward t over d, starting at now.
func (c *Controller) AnimateTo(now time.Time, t Target, d time.Duration) {
	c.from = *c.state
	c.to = t.Resolve(c.from)
	c.start = now
	c.duration = NormalizeDuration(d)
	c.active = true
	c.snapped = c.from.Neon == c.to.Neon

	animLogger.Debug().
		Float64("hue", c.to.Hue).
		Bool("neon", c.to.Neon).
		Dur("duration", c.duration).
		Msg("animate")
}

// Update advances the state to time now. It returns true while an animation
// was in flight.
func (c *Controller) Update(now time.Time) bool {
	if !c.active {
		return false
	}

	progress := c.Progress(now)
	if progress >= 1 {
		*c.state = c.to // exact target, no float residue
		c.active = false
		animLogger.Debug().Msg("done")
		return true
	}

	eased := EaseOutCubic(progress)
	s := c.state
	s.Hue = LerpHue(c.from.Hue, c.to.Hue, eased)
	s.Saturation = Lerp(c.from.Saturation, c.to.Saturation, eased)
	s.Brightness = Lerp(c.from.Brightness, c.to.Brightness, eased)
	s.Fluorescence = Lerp(c.from.Fluorescence, c.to.Fluorescence, eased)
	s.HaloWidth = Lerp(c.from.HaloWidth, c.to.HaloWidth, eased)
	s.HaloIntensity = Lerp(c.from.HaloIntensity, c.to.HaloIntensity, eased)
	if !c.snapped && progress > modeSnapProgress {
		s.Neon = c.to.Neon
		c.snapped = true
	}
	return true
}

// Progress returns linear progress in [0,1] at time now.
func (c *Controller) Progress(now time.Time) float64 {
	if c.duration <= 0 {
		return 1
	}
	p := float64(now.Sub(c.start)) / float64(c.duration)
	return math.Max(0, math.Min(1, p))
}

// Active reports whether an animation is in flight.
func (c *Controller) Active() bool { return c.active }

// Target returns the resolved target of the current (or last) animation.
func (c *Controller) Target() palette.State { return c.to }

// Cancel stops the animation where it is.
func (c *Controller) Cancel() { c.active = false }

// EaseOutCubic maps linear progress p to 1-(1-p)^3.
func EaseOutCubic(p float64) float64 {
	q := 1 - p
	return 1 - q*q*q
}

func Lerp(a, b, t float64) float64 { return a + (b-a)*t }

// LerpHue interpolates along the shortest arc of the hue circle, so the path
// never travels more than 180 degrees. The result is in [0,360).
func LerpHue(from, to, t float64) float64 {
	diff := palette.NormalizeHue(to - from)
	if diff > 180 {
		diff -= 360
	}
	return palette.NormalizeHue(from + diff*t)
}
