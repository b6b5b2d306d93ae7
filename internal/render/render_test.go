package render

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irfansharif/neonglow/internal/palette"
)

// fakeBackend stands in for a GL context. Draw fills the buffer with a
// marker value so tests can tell which path produced a frame.
type fakeBackend struct {
	initErr  error
	drawErr  error
	inits    int
	draws    int
	releases int
	last     Uniforms
}

const gpuMarker = 0.25

func (b *fakeBackend) Init(width, height int) error {
	b.inits++
	return b.initErr
}

func (b *fakeBackend) Draw(u Uniforms, dst *Buffer) error {
	b.draws++
	b.last = u
	if b.drawErr != nil {
		return b.drawErr
	}
	dst.Fill(gpuMarker, gpuMarker, gpuMarker, 1)
	return nil
}

func (b *fakeBackend) Release() { b.releases++ }

func newTestPipeline(t *testing.T, b *fakeBackend) (*Pipeline, *[]error) {
	t.Helper()
	var failures []error
	p, err := NewPipeline(testSize, testSize, true,
		WithBackend(b),
		WithFailureHandler(func(err error) { failures = append(failures, err) }),
	)
	require.NoError(t, err)
	return p, &failures
}

func isGPUFrame(buf *Buffer) bool {
	return buf.At(0, 0) == [4]float32{gpuMarker, gpuMarker, gpuMarker, 1}
}

func TestNewPipelineInvalidSize(t *testing.T) {
	_, err := NewPipeline(0, 10, false)
	require.Error(t, err)
	_, err = NewPipeline(10, -1, false)
	require.Error(t, err)
}

func TestPipelineCPUOnly(t *testing.T) {
	p, err := NewPipeline(testSize, testSize, false)
	require.NoError(t, err)
	assert.False(t, p.UsingGPU())
	assert.Equal(t, Uninitialized, p.BackendState())

	buf := p.RenderFrame(Frame{State: palette.Default()})
	assert.False(t, isGPUFrame(buf))
	st := p.Stats()
	assert.Equal(t, 1, st.CPUFrames)
	assert.Equal(t, 0, st.GPUFrames)
	assert.Equal(t, 1, st.FramesRendered)

	w, h := p.Size()
	assert.Equal(t, testSize, w)
	assert.Equal(t, testSize, h)
}

func TestPipelineGPUPath(t *testing.T) {
	b := &fakeBackend{}
	p, failures := newTestPipeline(t, b)

	buf := p.RenderFrame(Frame{State: palette.Default(), Quality: 2})
	assert.True(t, isGPUFrame(buf))
	assert.Equal(t, Ready, p.BackendState())
	assert.True(t, p.UsingGPU())
	assert.Equal(t, 1, b.inits)
	assert.Equal(t, int32(2), b.last.Quality)
	assert.Empty(t, *failures)

	s := palette.Default()
	require.NoError(t, s.SetHue(120))
	p.RenderFrame(Frame{State: s})
	assert.Equal(t, 1, b.inits, "init runs once")
	assert.Equal(t, 2, b.draws)
	assert.Equal(t, 2, p.Stats().GPUFrames)
}

func TestPipelineInitFailure(t *testing.T) {
	b := &fakeBackend{initErr: errors.New("no context")}
	p, failures := newTestPipeline(t, b)

	buf := p.RenderFrame(Frame{State: palette.Default()})
	assert.False(t, isGPUFrame(buf), "failed frame still renders on the CPU")
	assert.Equal(t, Failed, p.BackendState())
	assert.False(t, p.UsingGPU())

	require.Len(t, *failures, 1)
	err := (*failures)[0]
	assert.ErrorIs(t, err, ErrGPUUnavailable)
	var gerr *GPUError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, StageInit, gerr.Stage)

	for hue := 10.0; hue < 50; hue += 10 {
		s := palette.Default()
		require.NoError(t, s.SetHue(hue))
		p.RenderFrame(Frame{State: s})
	}
	assert.Equal(t, 1, b.inits)
	assert.Equal(t, 0, b.draws)
	assert.Len(t, *failures, 1, "failure is reported once")
	assert.Equal(t, 5, p.Stats().CPUFrames)
}

func TestPipelineDrawFailure(t *testing.T) {
	b := &fakeBackend{}
	p, failures := newTestPipeline(t, b)

	assert.True(t, isGPUFrame(p.RenderFrame(Frame{State: palette.Default()})))

	b.drawErr = &GPUError{Stage: StageReadback, Err: errors.New("lost")}
	s := palette.Default()
	require.NoError(t, s.SetHue(200))
	assert.False(t, isGPUFrame(p.RenderFrame(Frame{State: s})))
	assert.Equal(t, Failed, p.BackendState())

	require.Len(t, *failures, 1)
	var gerr *GPUError
	require.ErrorAs(t, (*failures)[0], &gerr)
	assert.Equal(t, StageReadback, gerr.Stage, "backend stage is preserved")

	// Never retried.
	b.drawErr = nil
	require.NoError(t, s.SetHue(210))
	assert.False(t, isGPUFrame(p.RenderFrame(Frame{State: s})))
	assert.Equal(t, 2, b.draws)
	assert.Len(t, *failures, 1)
}

func TestPipelinePlainDrawErrorIsWrapped(t *testing.T) {
	b := &fakeBackend{drawErr: errors.New("boom")}
	p, failures := newTestPipeline(t, b)
	p.RenderFrame(Frame{State: palette.Default()})

	require.Len(t, *failures, 1)
	var gerr *GPUError
	require.ErrorAs(t, (*failures)[0], &gerr)
	assert.Equal(t, StageDraw, gerr.Stage)
	assert.ErrorIs(t, (*failures)[0], ErrGPUUnavailable)
}

func TestPipelineSuppression(t *testing.T) {
	b := &fakeBackend{}
	p, _ := newTestPipeline(t, b)
	f := Frame{State: palette.Default(), Quality: 1}

	p.RenderFrame(f)
	p.RenderFrame(f)
	assert.Equal(t, 1, b.draws)
	assert.Equal(t, 1, p.Stats().FramesReused)

	f.Animating = true
	p.RenderFrame(f)
	assert.Equal(t, 2, b.draws, "animating frames always render")

	f.Animating = false
	f.Quality = 2
	p.RenderFrame(f)
	assert.Equal(t, 3, b.draws, "quality change renders")

	f.State.Neon = false
	p.RenderFrame(f)
	assert.Equal(t, 4, b.draws, "state change renders")

	p.Invalidate()
	p.RenderFrame(f)
	assert.Equal(t, 5, b.draws)
}

func TestPipelineDemoPhase(t *testing.T) {
	b := &fakeBackend{}
	p, _ := newTestPipeline(t, b)
	f := Frame{State: palette.Default(), DemoActive: true, DemoPhase: time.Second}

	p.RenderFrame(f)
	f.DemoPhase += 16 * time.Millisecond
	p.RenderFrame(f)
	assert.Equal(t, 1, b.draws, "small phase advance is suppressed")

	f.DemoPhase += 40 * time.Millisecond
	p.RenderFrame(f)
	assert.Equal(t, 2, b.draws)

	f.DemoPhase = 5 * time.Millisecond // cycle wrapped
	p.RenderFrame(f)
	assert.Equal(t, 3, b.draws)

	f.DemoActive = false
	p.RenderFrame(f)
	assert.Equal(t, 4, b.draws, "demo stop renders")
}

func TestPipelineCleanup(t *testing.T) {
	b := &fakeBackend{}
	p, _ := newTestPipeline(t, b)
	p.RenderFrame(Frame{State: palette.Default()})

	p.Cleanup()
	assert.Equal(t, 1, b.releases)
	assert.False(t, p.UsingGPU())
	p.Cleanup()

	// Still renders, on the CPU.
	assert.False(t, isGPUFrame(p.RenderFrame(Frame{State: palette.Default()})))
}

func TestUniformsFor(t *testing.T) {
	s := palette.Default()
	require.NoError(t, s.SetFluorescence(1))
	u := UniformsFor(Frame{State: s, Quality: 1})
	assert.True(t, u.Neon)
	assert.Equal(t, [3]float32{1, 0, 0}, u.Core)
	assert.InDelta(t, 1.0, u.Bloom, 1e-6)
	assert.InDelta(t, palette.DefaultHaloWidth, u.HaloWidth, 1e-6)
	assert.Zero(t, u.Shadow)
	assert.Equal(t, int32(1), u.Quality)

	s.SetNeon(false)
	u = UniformsFor(Frame{State: s})
	assert.False(t, u.Neon)
	assert.Zero(t, u.Bloom)
	assert.Zero(t, u.HaloIntensity)
	assert.Equal(t, [3]float32{}, u.Halo)
	assert.InDelta(t, antiNeonShadow, u.Shadow, 1e-6)
}

func TestBufferFlipRowsAndImage(t *testing.T) {
	b := NewBuffer(2, 3)
	for y := 0; y < 3; y++ {
		for x := 0; x < 2; x++ {
			v := float32(y) / 2
			b.set((y*2+x)*4, v, v, v, 1)
		}
	}
	c := b.Clone()
	b.FlipRows()
	assert.Equal(t, c.At(0, 0), b.At(0, 2))
	assert.Equal(t, c.At(1, 2), b.At(1, 0))
	assert.Equal(t, c.At(0, 1), b.At(0, 1))

	img := c.Image()
	assert.Equal(t, uint8(0), img.NRGBAAt(0, 0).R)
	assert.Equal(t, uint8(128), img.NRGBAAt(0, 1).R)
	assert.Equal(t, uint8(255), img.NRGBAAt(1, 2).R)
	assert.Equal(t, uint8(255), img.NRGBAAt(1, 2).A)
}

func TestBufferWritePNG(t *testing.T) {
	p, err := NewPipeline(16, 16, false)
	require.NoError(t, err)
	buf := p.RenderFrame(Frame{State: palette.Default()})

	var out bytes.Buffer
	require.NoError(t, buf.WritePNG(&out))
	img, err := png.Decode(&out)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 16), img.Bounds())

	r, _, _, a := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), a)
	assert.Equal(t, uint32(13)*0x101, r, "background 0.05 gray")
}
