package render

import (
	"errors"
	"fmt"

	"github.com/irfansharif/neonglow/internal/palette"
)

// ErrGPUUnavailable is wrapped by every GPU backend failure.
var ErrGPUUnavailable = errors.New("gpu unavailable")

// Stage names where in the GPU path a failure happened.
type Stage string

const (
	StageInit     Stage = "init"
	StageCompile  Stage = "compile"
	StageLink     Stage = "link"
	StageUniform  Stage = "uniform"
	StageDraw     Stage = "draw"
	StageReadback Stage = "readback"
)

type GPUError struct {
	Stage Stage
	Err   error
}

func (e *GPUError) Error() string { return fmt.Sprintf("gpu %s: %v", e.Stage, e.Err) }

func (e *GPUError) Unwrap() []error { return []error{ErrGPUUnavailable, e.Err} }

// Backend renders uniforms into a buffer on the GPU. Init is called once,
// before the first Draw; Release must be idempotent.
type Backend interface {
	Init(width, height int) error
	Draw(u Uniforms, dst *Buffer) error
	Release()
}

// antiNeonShadow is the drop-shadow strength under the flat anti-neon disc.
const antiNeonShadow = 0.5

// Uniforms is the per-frame shader input. Neon frames use the core and halo
// colors, halo and bloom; anti-neon frames use the flat core color and the
// shadow.
type Uniforms struct {
	Neon          bool
	Core          [3]float32
	Halo          [3]float32
	HaloWidth     float32
	HaloIntensity float32
	Bloom         float32
	Shadow        float32
	Quality       int32
	DiscScale     float32 // disc radius as a fraction of half the short side
}

// UniformsFor derives the uniforms for a frame.
func UniformsFor(f Frame) Uniforms {
	s := f.State
	u := Uniforms{
		Neon:      s.Neon,
		Core:      palette.ShaderColor(s),
		Quality:   int32(f.Quality),
		DiscScale: float32(1 - discMargin),
	}
	if s.Neon {
		u.Halo = palette.Vec3(palette.HaloRGB(s))
		u.HaloWidth = float32(s.HaloWidth)
		u.HaloIntensity = float32(s.HaloIntensity)
		u.Bloom = float32(palette.BloomIntensity(s))
	} else {
		u.Shadow = antiNeonShadow
	}
	return u
}
