// Package demo drives the color state unattended. While enabled, every tick
// computes a target from the position in a fixed-length cycle and hands it to
// the animator as a short eased hop, so the disc moves continuously.
package demo

import (
	"math"
	"time"

	"github.com/irfansharif/neonglow/internal/anim"
)

const (
	DefaultCycle = 10 * time.Second
	DefaultStep  = 100 * time.Millisecond
)

// Animator is the part of the animation controller the cycler drives.
type Animator interface {
	AnimateTo(now time.Time, t anim.Target, d time.Duration)
}

type Cycler struct {
	animator Animator
	cycle    time.Duration
	step     time.Duration

	enabled bool
	start   time.Time
}

// NewCycler returns a disabled cycler. Non-positive durations select the
// defaults.
func NewCycler(a Animator, cycle, step time.Duration) *Cycler {
	if cycle <= 0 {
		cycle = DefaultCycle
	}
	if step <= 0 {
		step = DefaultStep
	}
	return &Cycler{animator: a, cycle: cycle, step: step}
}

func (c *Cycler) Start(now time.Time) {
	c.enabled = true
	c.start = now
}

func (c *Cycler) Stop() { c.enabled = false }

func (c *Cycler) Enabled() bool { return c.enabled }

func (c *Cycler) Cycle() time.Duration { return c.cycle }

// Update re-targets the animator for time now. It is a no-op while disabled.
func (c *Cycler) Update(now time.Time) bool {
	if !c.enabled {
		return false
	}
	c.animator.AnimateTo(now, c.TargetAt(now), c.step)
	return true
}

// Progress returns the position in the current cycle, in [0,1).
func (c *Cycler) Progress(now time.Time) float64 {
	elapsed := c.elapsed(now)
	return float64(elapsed%c.cycle) / float64(c.cycle)
}

// Phase returns the time elapsed in the current cycle.
func (c *Cycler) Phase(now time.Time) time.Duration {
	return c.elapsed(now) % c.cycle
}

// TargetAt computes the full target for time now: the hue sweeps the wheel
// once per cycle, the other channels oscillate at different rates, and the
// mode alternates every half cycle starting with neon.
func (c *Cycler) TargetAt(now time.Time) anim.Target {
	p := c.Progress(now)
	half := int64(c.elapsed(now) / (c.cycle / 2))
	return anim.Target{}.
		WithHue(p*360).
		WithSaturation(0.8 + 0.2*math.Sin(2*math.Pi*p)).
		WithBrightness(0.7 + 0.3*math.Sin(4*math.Pi*p)).
		WithFluorescence(0.3 + 0.7*math.Sin(3*math.Pi*p)).
		WithNeon(half%2 == 0)
}

func (c *Cycler) elapsed(now time.Time) time.Duration {
	d := now.Sub(c.start)
	if d < 0 {
		return 0
	}
	return d
}
