// Package render turns a color state into a pixel buffer for the host to
// display. It has two paths sharing one input:
// 1. A GPU path that uploads per-mode uniforms to a full-screen-quad shader
//    and reads the result back.
// 2. A CPU fallback that computes a radial falloff per pixel.
//
// The first GPU error moves the backend to Failed and switches the pipeline
// to the CPU path for the rest of the session. The failure is reported once.
package render

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/irfansharif/neonglow/internal/palette"
)

// redrawInterval is how far the demo cycle may advance before an otherwise
// unchanged frame is recomputed (about two frames at 60 Hz).
const redrawInterval = 33 * time.Millisecond

var renderLogger = zerolog.Nop()

func init() {
	if os.Getenv("NEONGLOW_DEBUG_RENDER") == "1" {
		renderLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}).
			With().Timestamp().Str("pkg", "render").Logger()
	}
}

// BackendState tracks the GPU backend. Failed is terminal.
type BackendState int

const (
	Uninitialized BackendState = iota
	Ready
	Failed
)

func (s BackendState) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Frame is everything a render depends on.
type Frame struct {
	State     palette.State
	Quality   int  // 0..2, optional neon detail
	Animating bool // an eased transition is in flight

	DemoActive bool
	DemoPhase  time.Duration // position within the demo cycle
}

// Stats tracks rendering performance metrics.
type Stats struct {
	LastRenderTimeMs float64 // time spent in the last recomputed frame
	FramesRendered   int
	FramesReused     int // suppressed renders that returned the cached buffer
	GPUFrames        int
	CPUFrames        int
	Backend          BackendState
}

// Pipeline is not safe for concurrent use. GL backends must be driven from
// the thread that owns the context.
type Pipeline struct {
	width, height int

	useGPU    bool
	gpu       Backend
	gpuState  BackendState
	onFailure func(error)

	cpu *cpuRenderer
	out *Buffer

	cached    Frame
	haveCache bool

	stats Stats
}

type Option func(*Pipeline)

// WithBackend replaces the default OpenGL backend.
func WithBackend(b Backend) Option {
	return func(p *Pipeline) { p.gpu = b }
}

// WithFailureHandler registers fn to be called, once, when the GPU backend
// fails.
func WithFailureHandler(fn func(error)) Option {
	return func(p *Pipeline) { p.onFailure = fn }
}

// NewPipeline returns a pipeline producing width×height buffers.
func NewPipeline(width, height int, useGPU bool, opts ...Option) (*Pipeline, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid render dimensions %dx%d", width, height)
	}
	p := &Pipeline{
		width:  width,
		height: height,
		useGPU: useGPU,
		cpu:    newCPURenderer(width, height),
		out:    NewBuffer(width, height),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.useGPU && p.gpu == nil {
		p.gpu = NewGLBackend()
	}
	return p, nil
}

// RenderFrame produces the buffer for f. The returned buffer is owned by the
// pipeline and is valid until the next call.
func (p *Pipeline) RenderFrame(f Frame) *Buffer {
	if p.reusable(f) {
		p.stats.FramesReused++
		return p.out
	}

	start := time.Now()
	if !p.renderGPU(f) {
		p.cpu.render(f, p.out)
		p.stats.CPUFrames++
	}
	p.cached, p.haveCache = f, true
	p.stats.FramesRendered++
	p.stats.LastRenderTimeMs = float64(time.Since(start).Microseconds()) / 1000.0
	return p.out
}

// reusable reports whether the cached buffer still shows f.
func (p *Pipeline) reusable(f Frame) bool {
	if !p.haveCache || f.Animating {
		return false
	}
	c := p.cached
	if f.State != c.State || f.Quality != c.Quality || f.DemoActive != c.DemoActive {
		return false
	}
	if f.DemoActive {
		advance := f.DemoPhase - c.DemoPhase
		if advance < 0 || advance > redrawInterval {
			return false // wrapped, or moved on
		}
	}
	return true
}

func (p *Pipeline) renderGPU(f Frame) bool {
	if !p.useGPU {
		return false
	}
	if p.gpuState == Uninitialized {
		if err := p.gpu.Init(p.width, p.height); err != nil {
			p.fail(StageInit, err)
			return false
		}
		p.gpuState = Ready
		renderLogger.Debug().Int("w", p.width).Int("h", p.height).Msg("gpu backend ready")
	}
	if err := p.gpu.Draw(UniformsFor(f), p.out); err != nil {
		p.fail(StageDraw, err)
		return false
	}
	p.stats.GPUFrames++
	return true
}

// fail is the one-way degrade to the CPU path.
func (p *Pipeline) fail(stage Stage, err error) {
	if p.gpuState == Failed {
		return
	}
	p.gpuState = Failed
	p.useGPU = false
	if !errors.Is(err, ErrGPUUnavailable) {
		err = &GPUError{Stage: stage, Err: err}
	}
	log.Warn().Err(err).Msg("GPU rendering disabled, using CPU fallback")
	if p.onFailure != nil {
		p.onFailure(err)
	}
}

// UsingGPU reports whether frames are rendered on the GPU path.
func (p *Pipeline) UsingGPU() bool { return p.useGPU }

func (p *Pipeline) BackendState() BackendState { return p.gpuState }

func (p *Pipeline) Size() (w, h int) { return p.width, p.height }

// Stats returns the current performance statistics.
func (p *Pipeline) Stats() Stats {
	s := p.stats
	s.Backend = p.gpuState
	return s
}

// Invalidate drops the cached frame so the next call recomputes.
func (p *Pipeline) Invalidate() { p.haveCache = false }

// Cleanup releases GPU resources whichever path was last active. It is safe
// to call more than once.
func (p *Pipeline) Cleanup() {
	if p.gpu != nil {
		p.gpu.Release()
	}
	p.useGPU = false
	p.haveCache = false
}
