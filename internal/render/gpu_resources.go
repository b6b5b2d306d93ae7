package render

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

const bytesPerFloat = 4

// gpuResources owns every GL object the GPU path allocates: the quad's
// VAO+VBO and an offscreen float framebuffer the shader renders into.
type gpuResources struct {
	vao, vbo      uint32
	fbo, colorTex uint32
	vertexCount   int32
	width, height int
	gpuBytes      int64
}

func newGPUResources(width, height int, vertices []float32) (*gpuResources, error) {
	r := &gpuResources{width: width, height: height, vertexCount: int32(len(vertices) / 2)}

	// Quad geometry: position only, 2 floats per vertex.
	gl.GenVertexArrays(1, &r.vao)
	gl.GenBuffers(1, &r.vbo)
	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*bytesPerFloat, gl.Ptr(vertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*bytesPerFloat, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	r.gpuBytes += int64(len(vertices) * bytesPerFloat)

	// Render target: RGBA32F so read-back matches the CPU path's buffer.
	gl.GenTextures(1, &r.colorTex)
	gl.BindTexture(gl.TEXTURE_2D, r.colorTex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA32F, int32(width), int32(height), 0, gl.RGBA, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	r.gpuBytes += int64(width * height * 4 * bytesPerFloat)

	gl.GenFramebuffers(1, &r.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, r.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, r.colorTex, 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	if status != gl.FRAMEBUFFER_COMPLETE {
		r.release()
		return nil, &GPUError{Stage: StageInit, Err: fmt.Errorf("framebuffer incomplete (0x%x)", status)}
	}
	if code := gl.GetError(); code != gl.NO_ERROR {
		r.release()
		return nil, &GPUError{Stage: StageInit, Err: fmt.Errorf("gl error 0x%x", code)}
	}
	return r, nil
}

// draw renders the quad into the offscreen target and reads it back into dst.
func (r *gpuResources) draw(dst *Buffer) error {
	gl.BindFramebuffer(gl.FRAMEBUFFER, r.fbo)
	defer gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	gl.Viewport(0, 0, int32(r.width), int32(r.height))
	gl.Disable(gl.BLEND)
	gl.BindVertexArray(r.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, r.vertexCount)
	gl.BindVertexArray(0)
	if code := gl.GetError(); code != gl.NO_ERROR {
		return &GPUError{Stage: StageDraw, Err: fmt.Errorf("gl error 0x%x", code)}
	}

	gl.ReadBuffer(gl.COLOR_ATTACHMENT0)
	gl.ReadPixels(0, 0, int32(r.width), int32(r.height), gl.RGBA, gl.FLOAT, gl.Ptr(dst.Pix))
	if code := gl.GetError(); code != gl.NO_ERROR {
		return &GPUError{Stage: StageReadback, Err: fmt.Errorf("gl error 0x%x", code)}
	}
	dst.FlipRows()
	return nil
}

// release deletes every object; zeroed handles make it idempotent.
func (r *gpuResources) release() {
	if r.fbo != 0 {
		gl.DeleteFramebuffers(1, &r.fbo)
		r.fbo = 0
	}
	if r.colorTex != 0 {
		gl.DeleteTextures(1, &r.colorTex)
		r.colorTex = 0
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
		r.vbo = 0
	}
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
		r.vao = 0
	}
	r.gpuBytes = 0
}
