package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// ShaderManager handles OpenGL shader program compilation, linking, and uniform
// management.
type ShaderManager struct {
	program  uint32 // program ID
	uniforms map[string]int32
}

// Uniform names, NUL-terminated for gl.Str.
var uniformNames = []string{
	"uResolution",
	"uNeon",
	"uCoreColor",
	"uHaloColor",
	"uHaloWidth",
	"uHaloIntensity",
	"uBloom",
	"uShadow",
	"uQuality",
	"uDiscScale",
}

// Vertex shader. Passes the full-screen quad through and derives texture
// coordinates from clip space.
const vertexShaderSource = `
#version 330 core
layout (location = 0) in vec2 aPos;

out vec2 vUV;

void main() {
    gl_Position = vec4(aPos, 0.0, 1.0);
    vUV = aPos * 0.5 + 0.5;
}
` + "\x00"

// Fragment shader. Draws the disc: in neon mode a soft core with halo, bloom
// and rays depending on quality; in anti-neon mode a flat darkened disc over
// a drop shadow.
const fragmentShaderSource = `
#version 330 core
in vec2 vUV;
out vec4 FragColor;

uniform vec2  uResolution;
uniform int   uNeon;
uniform vec3  uCoreColor;
uniform vec3  uHaloColor;
uniform float uHaloWidth;
uniform float uHaloIntensity;
uniform float uBloom;
uniform float uShadow;
uniform int   uQuality;
uniform float uDiscScale;

const float kEdge = 0.95;
const vec3  kBackground = vec3(0.05);

float rays(vec2 p, int n) {
    float acc = 0.0;
    for (int i = 0; i < n; i++) {
        float a = float(i) * 6.2831853 / float(n);
        vec2 dir = vec2(cos(a), sin(a));
        acc += 1.0 - smoothstep(0.03, 0.05, abs(dot(dir, p)));
    }
    return acc;
}

void main() {
    vec2 p = (vUV - 0.5) * uResolution;
    float radius = 0.5 * min(uResolution.x, uResolution.y) * uDiscScale;
    p /= radius;
    float d = length(p);

    vec3 col = kBackground;
    float alpha = 1.0;

    if (uNeon == 1) {
        float base = clamp(1.0 - d * (1.2 - 0.5 * uBloom), 0.0, 1.0);
        float intensity = pow(base, 0.7);
        float glow = pow(clamp(1.0 - d * 2.5, 0.0, 1.0), 2.0) * uBloom * 1.2;
        float halo = exp(-pow((d - kEdge) / uHaloWidth, 2.0)) * uHaloIntensity;

        if (d < kEdge) {
            col = max(uCoreColor * intensity, uCoreColor * glow);
            if (uQuality > 0 && uBloom > 0.2) {
                int n = uQuality >= 2 ? 8 : 4;
                col += uCoreColor * 0.3 * uBloom * rays(p, n);
            }
            alpha = intensity;
        }
        col = min(col + uHaloColor * halo * uBloom, vec3(1.0));
    } else {
        vec2 sp = p - vec2(0.04, -0.04);
        float shadow = uShadow * (1.0 - smoothstep(0.9, 1.15, length(sp)));
        col = kBackground * (1.0 - shadow);
        if (d < kEdge) {
            float intensity = pow(clamp(1.0 - d * 1.2, 0.0, 1.0), 1.5) * 0.6;
            col = uCoreColor * 0.7 * intensity;
            alpha = intensity;
        }
    }
    if (d >= kEdge && d <= 1.0) {
        col = max(col, vec3(uNeon == 1 ? 0.3 : 0.15));
    }
    FragColor = vec4(col, alpha);
}
` + "\x00"

// NewShaderManager compiles and links the disc program and resolves its
// uniform locations.
func NewShaderManager() (*ShaderManager, error) {
	program, err := LinkProgram(vertexShaderSource, fragmentShaderSource)
	if err != nil {
		return nil, err
	}
	sm := &ShaderManager{program: program, uniforms: make(map[string]int32, len(uniformNames))}

	for _, name := range uniformNames {
		loc := gl.GetUniformLocation(sm.program, gl.Str(name+"\x00"))
		if loc < 0 {
			sm.Release()
			return nil, &GPUError{Stage: StageUniform, Err: fmt.Errorf("uniform %s not found", name)}
		}
		sm.uniforms[name] = loc
	}
	return sm, nil
}

// LinkProgram compiles a vertex and fragment shader pair (NUL-terminated
// sources) and links them into a program.
func LinkProgram(vertexSource, fragmentSource string) (uint32, error) {
	// Create and compile shaders.
	vertexShader, err := compileShader(vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertexShader)

	fragmentShader, err := compileShader(fragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragmentShader)

	// Link shader program.
	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	// Check linking status.
	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(logText))
		gl.DeleteProgram(program)
		return 0, &GPUError{Stage: StageLink, Err: errors.New(strings.TrimRight(logText, "\x00"))}
	}
	return program, nil
}

// Use binds the program and uploads the frame's uniforms.
func (sm *ShaderManager) Use(u Uniforms, width, height int) error {
	gl.UseProgram(sm.program)
	gl.Uniform2f(sm.uniforms["uResolution"], float32(width), float32(height))
	neon := int32(0)
	if u.Neon {
		neon = 1
	}
	gl.Uniform1i(sm.uniforms["uNeon"], neon)
	gl.Uniform3fv(sm.uniforms["uCoreColor"], 1, &u.Core[0])
	gl.Uniform3fv(sm.uniforms["uHaloColor"], 1, &u.Halo[0])
	// A zero width would divide by zero in the halo term; anti-neon frames
	// leave it unset.
	gl.Uniform1f(sm.uniforms["uHaloWidth"], max(u.HaloWidth, 0.02))
	gl.Uniform1f(sm.uniforms["uHaloIntensity"], u.HaloIntensity)
	gl.Uniform1f(sm.uniforms["uBloom"], u.Bloom)
	gl.Uniform1f(sm.uniforms["uShadow"], u.Shadow)
	gl.Uniform1i(sm.uniforms["uQuality"], u.Quality)
	gl.Uniform1f(sm.uniforms["uDiscScale"], u.DiscScale)
	if code := gl.GetError(); code != gl.NO_ERROR {
		return &GPUError{Stage: StageUniform, Err: fmt.Errorf("gl error 0x%x", code)}
	}
	return nil
}

// Release deletes the program.
func (sm *ShaderManager) Release() {
	if sm.program != 0 {
		gl.DeleteProgram(sm.program)
		sm.program = 0
	}
}

// compileShader compiles a single shader from source.
func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	// Check compilation status.
	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		gl.DeleteShader(shader)
		return 0, &GPUError{Stage: StageCompile, Err: errors.New(strings.TrimRight(logText, "\x00"))}
	}

	return shader, nil
}
