package app

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irfansharif/neonglow/internal/anim"
	"github.com/irfansharif/neonglow/internal/palette"
	"github.com/irfansharif/neonglow/internal/preset"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// testEngine returns an engine whose clock reads *now.
func testEngine(t *testing.T) (*Engine, *time.Time) {
	t.Helper()
	now := t0
	e := NewEngine(Options{Clock: func() time.Time { return now }})
	return e, &now
}

func TestSettersClampAndReject(t *testing.T) {
	e, _ := testEngine(t)

	require.NoError(t, e.SetHue(400))
	assert.Equal(t, 360.0, e.State().Hue)
	require.NoError(t, e.SetHue(-10))
	assert.Equal(t, 0.0, e.State().Hue)
	require.NoError(t, e.SetSaturation(2))
	require.NoError(t, e.SetBrightness(-1))
	require.NoError(t, e.SetFluorescence(0.25))
	require.NoError(t, e.SetHaloWidth(10))
	require.NoError(t, e.SetHaloIntensity(-3))

	s := e.State()
	assert.Equal(t, 1.0, s.Saturation)
	assert.Equal(t, 0.0, s.Brightness)
	assert.Equal(t, 0.25, s.Fluorescence)
	assert.Equal(t, palette.MaxHaloWidth, s.HaloWidth)
	assert.Equal(t, 0.0, s.HaloIntensity)

	before := e.State()
	err := e.SetFluorescence(math.NaN())
	require.Error(t, err)
	assert.True(t, errors.Is(err, palette.ErrInvalidValue))
	var verr *palette.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, palette.FieldFluorescence, verr.Field)
	assert.Equal(t, before, e.State(), "rejected input leaves state unchanged")

	e.SetMode(false)
	assert.False(t, e.State().Neon)
}

func TestAnimateShortestArc(t *testing.T) {
	e, _ := testEngine(t)
	require.NoError(t, e.SetHue(350))

	e.AnimateTo(anim.Target{}.WithHue(10), time.Second)
	assert.True(t, e.IsAnimating())

	for ms := 100; ms < 1000; ms += 100 {
		e.UpdateAnimation(t0.Add(time.Duration(ms) * time.Millisecond))
		h := e.State().Hue
		assert.True(t, h >= 350 || h <= 10, "hue %v left the short arc", h)
	}
	e.UpdateAnimation(t0.Add(time.Second))
	assert.Equal(t, 10.0, e.State().Hue)
	assert.False(t, e.IsAnimating())
}

func TestApplyPreset(t *testing.T) {
	e, _ := testEngine(t)

	require.True(t, e.ApplyPreset("Cool Blue", time.Second))
	e.UpdateAnimation(t0.Add(time.Second))
	s := e.State()
	assert.Equal(t, 210.0, s.Hue)
	assert.Equal(t, 0.9, s.Saturation)
	assert.Equal(t, 1.0, s.Brightness)
	assert.Equal(t, 0.6, s.Fluorescence)
	assert.True(t, s.Neon)
	assert.False(t, e.IsAnimating())

	before := e.State()
	assert.False(t, e.ApplyPreset("Nonexistent", time.Second))
	assert.False(t, e.IsAnimating())
	assert.Equal(t, before, e.State())
}

func TestApplyMalformedPreset(t *testing.T) {
	hue := 40.0
	reg := preset.Builtin().With(preset.Entry{Name: "Broken", Hue: &hue})
	e := NewEngine(Options{Clock: func() time.Time { return t0 }, Presets: reg})

	assert.False(t, e.ApplyPreset("Broken", time.Second))
	assert.False(t, e.IsAnimating())
	assert.Contains(t, e.ListPresetNames(), "Broken")
}

func TestListPresetNames(t *testing.T) {
	e, _ := testEngine(t)
	names := e.ListPresetNames()
	require.NotEmpty(t, names)
	seen := map[string]bool{}
	for _, n := range names {
		assert.False(t, seen[n], "duplicate %q", n)
		seen[n] = true
	}
	assert.True(t, seen["Cool Blue"])
	assert.Equal(t, names, e.ListPresetNames(), "stable order")
}

func TestDemoDrivesState(t *testing.T) {
	e, _ := testEngine(t)
	e.StartDemo(t0)
	assert.True(t, e.DemoEnabled())

	for ms := 0; ms <= 2500; ms += 16 {
		e.Tick(t0.Add(time.Duration(ms) * time.Millisecond))
	}
	assert.True(t, e.IsAnimating())
	h := e.State().Hue
	assert.InDelta(t, 90, h, 10, "a quarter cycle in, hue trails 90°")

	f := e.Frame(t0.Add(12500 * time.Millisecond))
	assert.True(t, f.DemoActive)
	assert.Equal(t, 2500*time.Millisecond, f.DemoPhase)

	e.StopDemo()
	e.Tick(t0.Add(5 * time.Second))
	assert.False(t, e.IsAnimating(), "the last hop has finished")
	assert.False(t, e.Frame(t0.Add(5*time.Second)).DemoActive)
}

func TestReset(t *testing.T) {
	e, _ := testEngine(t)
	e.SetMode(false)
	require.NoError(t, e.SetHue(200))
	e.StartDemo(t0)
	e.Tick(t0.Add(time.Second))
	require.True(t, e.IsAnimating())

	e.Reset()
	assert.False(t, e.IsAnimating())
	assert.False(t, e.DemoEnabled())
	s := e.State()
	assert.Equal(t, 0.0, s.Hue)
	assert.Equal(t, 1.0, s.Saturation)
	assert.Equal(t, 1.0, s.Brightness)
	assert.Equal(t, 0.5, s.Fluorescence)
	assert.True(t, s.Neon)
	assert.Equal(t, palette.DefaultHaloWidth, s.HaloWidth)
	assert.Equal(t, palette.DefaultHaloIntensity, s.HaloIntensity)

	// Ticking after reset leaves it alone.
	e.Tick(t0.Add(2 * time.Second))
	assert.Equal(t, s, e.State())
}

func TestQueries(t *testing.T) {
	e, _ := testEngine(t)
	require.NoError(t, e.SetFluorescence(1))

	h, s, v := e.HSV()
	assert.Equal(t, [3]float64{0, 1, 1}, [3]float64{h, s, v})
	assert.Equal(t, "#ff0000", e.Hex())
	assert.Equal(t, [3]float32{1, 0, 0}, e.ShaderColor())
	assert.InDelta(t, 1.0, e.BloomIntensity(), 1e-12)
	assert.InDelta(t, 1.0, e.RGB().R, 1e-12)
	assert.InDelta(t, 1.0, e.HaloRGB().R, 1e-12)

	ch, _, _ := e.Complementary()
	assert.Equal(t, 180.0, ch)
}

func TestPacerThroughEngine(t *testing.T) {
	e, _ := testEngine(t)
	assert.Equal(t, 1, e.Quality())
	assert.True(t, e.ShouldRenderThisTick(0))

	for i := 0; i < 10; i++ {
		e.RecordFrame(50 * time.Millisecond) // 20 fps
	}
	assert.InDelta(t, 20, e.FPS(), 1e-9)
	assert.Equal(t, 1, e.PacerStats().SkipFrames)
	assert.Equal(t, 0, e.Quality(), "neon drops quality")
	assert.False(t, e.ShouldRenderThisTick(0))
	assert.True(t, e.ShouldRenderThisTick(1))

	assert.False(t, e.RenderTick())
	assert.True(t, e.RenderTick())
	assert.False(t, e.RenderTick())

	f := e.Frame(t0)
	assert.Equal(t, 0, f.Quality)
	assert.False(t, f.DemoActive)
	assert.Zero(t, f.DemoPhase)
}

func TestAntiNeonKeepsQuality(t *testing.T) {
	e, _ := testEngine(t)
	e.SetMode(false)
	for i := 0; i < 10; i++ {
		e.RecordFrame(50 * time.Millisecond)
	}
	assert.Equal(t, 1, e.PacerStats().SkipFrames)
	assert.Equal(t, 1, e.Quality())
}

// runLoop drives e the way the host loop does for n ticks. cost returns how
// long a tick takes given whether it rendered. It returns the skip setting
// seen after each tick.
func runLoop(e *Engine, n int, cost func(rendered bool) time.Duration) []int {
	now := t0
	skips := make([]int, 0, n)
	for i := 0; i < n; i++ {
		rendered := e.RenderTick()
		if rendered {
			e.RecordRender(now)
		}
		now = now.Add(cost(rendered))
		skips = append(skips, e.PacerStats().SkipFrames)
	}
	return skips
}

func TestSlowRenderSettlesSkip(t *testing.T) {
	e, _ := testEngine(t)
	skips := runLoop(e, 400, func(rendered bool) time.Duration {
		if rendered {
			return 40 * time.Millisecond
		}
		return 16700 * time.Microsecond
	})

	changes := 0
	for i := 1; i < len(skips); i++ {
		if skips[i] != skips[i-1] {
			changes++
		}
	}
	assert.Equal(t, 1, changes, "skip moves once and holds")
	for _, s := range skips[100:] {
		require.Equal(t, 1, s)
	}
	st := e.PacerStats()
	assert.InDelta(t, 35.3, st.FPS, 0.1, "mean tick cost includes the render")
	assert.Equal(t, 0, st.Quality)
}

func TestCheapRendersRecoverSkip(t *testing.T) {
	e, _ := testEngine(t)
	renders := 0
	skips := runLoop(e, 200, func(rendered bool) time.Duration {
		if rendered {
			renders++
			if renders <= 12 {
				return 40 * time.Millisecond
			}
		}
		return 16700 * time.Microsecond
	})
	assert.Contains(t, skips, 1)
	assert.Equal(t, 0, skips[len(skips)-1])
}

func TestRecordRenderFirstCallOnlyMarks(t *testing.T) {
	e, _ := testEngine(t)
	require.True(t, e.RenderTick())
	e.RecordRender(t0)
	assert.Zero(t, e.FPS())

	require.True(t, e.RenderTick())
	e.RecordRender(t0.Add(20 * time.Millisecond))
	assert.InDelta(t, 50, e.FPS(), 1e-9)
}

func TestStatus(t *testing.T) {
	e, _ := testEngine(t)
	require.NoError(t, e.SetFluorescence(1))
	e.AnimateTo(anim.Target{}.WithHue(90), time.Second)

	st := e.Status(t0)
	assert.Equal(t, t0, st.Time)
	assert.Equal(t, "#ff0000", st.Hex)
	assert.True(t, st.Neon)
	assert.True(t, st.Animating)
	assert.False(t, st.Demo)
	assert.Equal(t, 1, st.Quality)
}

func TestOptionsDefaults(t *testing.T) {
	e := NewEngine(Options{})
	assert.Equal(t, anim.DefaultDuration, e.DefaultDuration())
	assert.Equal(t, palette.Default(), e.State())

	initial := palette.Default()
	initial.Hue = 123
	e = NewEngine(Options{Initial: &initial, DefaultDuration: 2 * time.Second})
	assert.Equal(t, 123.0, e.State().Hue)
	assert.Equal(t, 2*time.Second, e.DefaultDuration())
	initial.Hue = 5
	assert.Equal(t, 123.0, e.State().Hue, "engine owns its copy")
}
