package main

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/irfansharif/neonglow/internal/geom"
	"github.com/irfansharif/neonglow/internal/render"
)

const blitVertexShader = `
#version 330 core
layout (location = 0) in vec2 aPos;
out vec2 vUV;

void main() {
    gl_Position = vec4(aPos, 0.0, 1.0);
    // Buffers are stored top row first.
    vUV = vec2(aPos.x * 0.5 + 0.5, 0.5 - aPos.y * 0.5);
}
` + "\x00"

const blitFragmentShader = `
#version 330 core
in vec2 vUV;
out vec4 FragColor;
uniform sampler2D uFrame;

void main() {
    FragColor = vec4(texture(uFrame, vUV).rgb, 1.0);
}
` + "\x00"

// presenter draws the latest pixel buffer into the window, whichever path
// produced it.
type presenter struct {
	program  uint32
	texture  uint32
	vao, vbo uint32
	texW     int
	texH     int
}

func newPresenter() (*presenter, error) {
	program, err := render.LinkProgram(blitVertexShader, blitFragmentShader)
	if err != nil {
		return nil, err
	}
	p := &presenter{program: program}

	quad := []float32{-1, -1, 1, -1, -1, 1, 1, 1} // triangle strip
	gl.GenVertexArrays(1, &p.vao)
	gl.GenBuffers(1, &p.vbo)
	gl.BindVertexArray(p.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, p.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quad)*4, gl.Ptr(quad), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	gl.GenTextures(1, &p.texture)
	gl.BindTexture(gl.TEXTURE_2D, p.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.UseProgram(p.program)
	gl.Uniform1i(gl.GetUniformLocation(p.program, gl.Str("uFrame\x00")), 0)
	gl.UseProgram(0)
	return p, nil
}

// upload copies buf into the texture, reallocating on size change.
func (p *presenter) upload(buf *render.Buffer) {
	gl.BindTexture(gl.TEXTURE_2D, p.texture)
	if buf.Width != p.texW || buf.Height != p.texH {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA32F, int32(buf.Width), int32(buf.Height), 0, gl.RGBA, gl.FLOAT, gl.Ptr(buf.Pix))
		p.texW, p.texH = buf.Width, buf.Height
	} else {
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(buf.Width), int32(buf.Height), gl.RGBA, gl.FLOAT, gl.Ptr(buf.Pix))
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// draw clears the window and blits the texture into dst, given in window
// pixels with the origin at the top left.
func (p *presenter) draw(dst geom.Box, fbW, fbH int) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(fbW), int32(fbH))
	gl.ClearColor(0.05, 0.05, 0.05, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	if p.texW == 0 || dst.W <= 0 || dst.H <= 0 {
		return
	}

	// GL viewports count from the bottom left.
	gl.Viewport(int32(dst.X), int32(float64(fbH)-dst.Y-dst.H), int32(dst.W), int32(dst.H))
	gl.UseProgram(p.program)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, p.texture)
	gl.BindVertexArray(p.vao)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

func (p *presenter) release() {
	if p.texture != 0 {
		gl.DeleteTextures(1, &p.texture)
		p.texture = 0
	}
	if p.vbo != 0 {
		gl.DeleteBuffers(1, &p.vbo)
		p.vbo = 0
	}
	if p.vao != 0 {
		gl.DeleteVertexArrays(1, &p.vao)
		p.vao = 0
	}
	if p.program != 0 {
		gl.DeleteProgram(p.program)
		p.program = 0
	}
}
