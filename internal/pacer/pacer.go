// Package pacer keeps the render loop near its target rate. It smooths the
// frame rate over the last few displayed frames and, every few frames, adapts
// how many ticks are skipped between renders and a discrete quality level.
//
// The adaptation is a hysteresis controller: below lowFPS it backs off, above
// highFPS it recovers, and between the two it holds.
package pacer

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const (
	TargetFPS = 60

	MaxSkipFrames = 2
	MinQuality    = 0
	MaxQuality    = 2

	windowSize      = 10 // frame intervals kept for smoothing
	evalEvery       = 10 // frames between adaptation passes
	lowFPS          = 30
	highFPS         = 50
	qualityCooldown = 2 * time.Second
	initialQuality  = 1
)

var pacerLogger = zerolog.Nop()

func init() {
	if os.Getenv("NEONGLOW_DEBUG_PACER") == "1" {
		pacerLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}).
			With().Timestamp().Str("pkg", "pacer").Logger()
	}
}

// Pacer is not safe for concurrent use; it is driven from the tick loop.
type Pacer struct {
	intervals [windowSize]time.Duration // zero slots are not yet filled
	next      int
	fps       float64

	frames     int           // since the last adaptation pass
	clock      time.Duration // sum of recorded intervals
	lastBump   time.Duration // clock at the last quality increase
	skipFrames int
	quality    int

	counter int // ticks since the last render, for Tick
}

// Stats is a snapshot of the pacer for display.
type Stats struct {
	FPS        float64
	SkipFrames int
	Quality    int
}

func (s Stats) String() string {
	return fmt.Sprintf("%.1f FPS, skip %d, quality %d", s.FPS, s.SkipFrames, s.Quality)
}

func New() *Pacer {
	return &Pacer{quality: initialQuality}
}

// RecordFrame records the interval since the previous displayed frame. neon
// reports the current color mode; quality is only lowered in neon mode, where
// the optional detail is drawn.
func (p *Pacer) RecordFrame(interval time.Duration, neon bool) {
	if interval < 0 {
		interval = 0
	}
	p.intervals[p.next] = interval
	p.next = (p.next + 1) % windowSize
	p.clock += interval
	p.fps = p.smoothedFPS()

	p.frames++
	if p.frames < evalEvery {
		return
	}
	p.frames = 0
	p.adapt(neon)
}

func (p *Pacer) smoothedFPS() float64 {
	var sum time.Duration
	n := 0
	for _, d := range p.intervals {
		if d > 0 {
			sum += d
			n++
		}
	}
	if n == 0 || sum <= 0 {
		return p.fps
	}
	mean := sum.Seconds() / float64(n)
	return 1 / mean
}

func (p *Pacer) adapt(neon bool) {
	before := p.Stats()
	switch {
	case p.fps < lowFPS && p.skipFrames < MaxSkipFrames:
		p.skipFrames++
		if neon && p.quality > MinQuality {
			p.quality--
		}
	case p.fps > highFPS && p.skipFrames > 0:
		p.skipFrames--
		if p.clock-p.lastBump >= qualityCooldown {
			if p.quality < MaxQuality {
				p.quality++
			}
			p.lastBump = p.clock
		}
	}
	if after := p.Stats(); after != before {
		pacerLogger.Debug().Stringer("before", before).Stringer("after", after).Msg("adapted")
	}
}

// ShouldRenderThisTick reports whether a loop that has skipped counter ticks
// since its last render should render now.
func (p *Pacer) ShouldRenderThisTick(counter int) bool {
	return counter >= p.skipFrames
}

// Tick keeps the skip counter for the caller: it returns true on ticks that
// should render and resets, otherwise it counts the skipped tick.
func (p *Pacer) Tick() bool {
	if p.ShouldRenderThisTick(p.counter) {
		p.counter = 0
		return true
	}
	p.counter++
	return false
}

func (p *Pacer) FPS() float64    { return p.fps }
func (p *Pacer) Quality() int    { return p.quality }
func (p *Pacer) SkipFrames() int { return p.skipFrames }
func (p *Pacer) Stats() Stats    { return Stats{FPS: p.fps, SkipFrames: p.skipFrames, Quality: p.quality} }
