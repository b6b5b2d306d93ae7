package render

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// GLBackend renders on an OpenGL 4.1 core context. The host must make the
// context current on the calling thread before the first frame.
type GLBackend struct {
	width, height int
	shaders       *ShaderManager
	res           *gpuResources
}

func NewGLBackend() *GLBackend { return &GLBackend{} }

// Init loads GL entry points for the current context and builds the program,
// quad and offscreen target.
func (b *GLBackend) Init(width, height int) error {
	if err := gl.Init(); err != nil {
		return &GPUError{Stage: StageInit, Err: err}
	}
	renderLogger.Debug().Str("version", gl.GoStr(gl.GetString(gl.VERSION))).Msg("gl context")

	sm, err := NewShaderManager()
	if err != nil {
		return err
	}
	vertices, err := quadVertices()
	if err != nil {
		sm.Release()
		return &GPUError{Stage: StageInit, Err: err}
	}
	res, err := newGPUResources(width, height, vertices)
	if err != nil {
		sm.Release()
		return err
	}
	b.width, b.height = width, height
	b.shaders, b.res = sm, res
	renderLogger.Debug().
		Int64("gpu_bytes", res.gpuBytes).
		Int32("vertices", res.vertexCount).
		Msg("gpu resources allocated")
	return nil
}

func (b *GLBackend) Draw(u Uniforms, dst *Buffer) error {
	if b.shaders == nil || b.res == nil {
		return &GPUError{Stage: StageDraw, Err: fmt.Errorf("backend not initialized")}
	}
	if dst.Width != b.width || dst.Height != b.height {
		return &GPUError{Stage: StageReadback, Err: fmt.Errorf("buffer %dx%d does not match target %dx%d", dst.Width, dst.Height, b.width, b.height)}
	}
	if err := b.shaders.Use(u, b.width, b.height); err != nil {
		return err
	}
	return b.res.draw(dst)
}

func (b *GLBackend) Release() {
	if b.res != nil {
		b.res.release()
		b.res = nil
	}
	if b.shaders != nil {
		b.shaders.Release()
		b.shaders = nil
	}
}
