package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irfansharif/neonglow/internal/palette"
	"github.com/irfansharif/neonglow/internal/preset"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 500*time.Millisecond, c.DefaultDuration())
	assert.Equal(t, 10*time.Second, c.DemoCycle())
	assert.Equal(t, 100*time.Millisecond, c.DemoStep())
	assert.Equal(t, time.Duration(16666667), c.FrameInterval())

	s, err := c.State()
	require.NoError(t, err)
	assert.Equal(t, palette.Default(), s)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
use_gpu: false
render:
  width: 256
  height: 128
color:
  hue: 210
  neon: false
  saturation: 3
presets:
  - name: Deep Sea
    hue: 200
    saturation: 0.8
    brightness: 0.4
    fluorescence: 0.2
    neon: false
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.False(t, c.UseGPU)
	assert.Equal(t, Size{Width: 256, Height: 128}, c.Render)
	assert.Equal(t, Default().Window, c.Window, "unset sections keep defaults")
	assert.Equal(t, 60, c.TargetFPS)

	s, err := c.State()
	require.NoError(t, err)
	assert.Equal(t, 210.0, s.Hue)
	assert.Equal(t, 1.0, s.Saturation, "clamped")
	assert.False(t, s.Neon)

	names := c.Registry().Names()
	assert.Equal(t, "Deep Sea", names[len(names)-1])
	assert.Contains(t, names, "Cool Blue")
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))

	_, err = Load(writeFile(t, "window: [1, 2"))
	require.Error(t, err)

	_, err = Load(writeFile(t, "color:\n  hue: .nan\n"))
	require.ErrorIs(t, err, palette.ErrInvalidValue)
}

func TestValidate(t *testing.T) {
	c := Default()
	c.Window.Width = 0
	c.Render.Height = -5
	c.DemoStepMs = -1
	c.TargetFPS = 0
	c.Presets = append(c.Presets, preset.Entry{Name: "Half"})

	err := c.Validate()
	require.Error(t, err)
	for _, want := range []string{"window size", "render size", "demo_step_ms", "target_fps", "presets[0]"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	c := Default()
	c.Color.Hue = 42
	c.StatusAddr = ":8090"
	require.NoError(t, Save(path, c))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestFlagsOverrideFile(t *testing.T) {
	path := writeFile(t, `
render:
  width: 256
status_addr: ":9000"
`)
	c, err := Load(path)
	require.NoError(t, err)

	gpu, height, addr := false, 128, ":9100"
	c.Apply(Overrides{UseGPU: &gpu, RenderHeight: &height, StatusAddr: &addr})
	assert.False(t, c.UseGPU, "flag wins where the file is silent")
	assert.Equal(t, Size{Width: 256, Height: 128}, c.Render)
	assert.Equal(t, ":9100", c.StatusAddr)

	c.Apply(Overrides{})
	assert.Equal(t, Size{Width: 256, Height: 128}, c.Render, "unset flags change nothing")
}

func TestEnvForcesCPU(t *testing.T) {
	c := Default()
	c.ApplyEnv(func(string) string { return "" })
	assert.True(t, c.UseGPU)

	gpu := true
	c.Apply(Overrides{UseGPU: &gpu})
	c.ApplyEnv(func(k string) string {
		if k == "NEONGLOW_USE_GPU" {
			return "0"
		}
		return ""
	})
	assert.False(t, c.UseGPU)
}
