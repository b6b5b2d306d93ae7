package render

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/irfansharif/neonglow/internal/geom"
	"github.com/irfansharif/neonglow/internal/palette"
)

const (
	discMargin = 0.1  // fraction of the half short side left around the disc
	discEdge   = 0.95 // normalized radius where the border ring starts

	backgroundGray  = 0.05
	neonBorderGray  = 0.3
	antiBorderGray  = 0.15
	rayHalfWidth    = 0.05
	rayMinBloom     = 0.2
	antiNeonDesat   = 0.7
	antiNeonGain    = 0.6
	neonExponent    = 0.7
	antiNeonExpo    = 1.5
	antiNeonRimDark = 0.2
)

// cpuRenderer is the fallback path. Per-pixel geometry depends only on the
// buffer size and is computed once.
type cpuRenderer struct {
	width, height int
	offsets       []geom.Point // pixel offset from the center, in disc radii
	dist          []float64    // |offset|
}

func newCPURenderer(width, height int) *cpuRenderer {
	view := geom.MakeBox(0, 0, float64(width), float64(height))
	center := view.Center()
	radius := view.InscribedRadius(discMargin)

	r := &cpuRenderer{
		width:   width,
		height:  height,
		offsets: make([]geom.Point, width*height),
		dist:    make([]float64, width*height),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			px := geom.MakePoint(float64(x), float64(y))
			r.offsets[i] = px.Sub(center).Scale(1 / radius)
			r.dist[i] = geom.Dist(px, center) / radius
		}
	}
	return r
}

func (r *cpuRenderer) render(f Frame, dst *Buffer) {
	core, err := frameColor(f.State)
	if err != nil {
		renderLogger.Debug().Err(err).Msg("cpu fallback fill")
		dst.Fill(float32(core.R), float32(core.G), float32(core.B), 1)
		return
	}

	s := f.State
	bloom := palette.BloomIntensity(s)
	var rays []geom.Point
	if s.Neon && bloom > rayMinBloom {
		rays = rayDirections(f.Quality)
	}
	border := float32(antiBorderGray)
	if s.Neon {
		border = neonBorderGray
	}

	for i, d := range r.dist {
		o := i * 4
		switch {
		case d > 1:
			dst.set(o, backgroundGray, backgroundGray, backgroundGray, 1)
		case d >= discEdge:
			dst.set(o, border, border, border, 1)
		case s.Neon:
			r.shadeNeon(dst, o, r.offsets[i], d, core, s.Fluorescence, bloom, rays)
		default:
			r.shadeAntiNeon(dst, o, d, core)
		}
	}
}

// shadeNeon: soft falloff brightened by fluorescence, a center glow and
// optional rays.
func (r *cpuRenderer) shadeNeon(dst *Buffer, o int, p geom.Point, d float64, core colorful.Color, fluorescence, bloom float64, rays []geom.Point) {
	base := clamp01(1 - d*(1.2-0.5*bloom))
	intensity := math.Pow(base, neonExponent) * (1 + 0.5*fluorescence)

	cr := math.Min(1, core.R*intensity)
	cg := math.Min(1, core.G*intensity)
	cb := math.Min(1, core.B*intensity)

	glow := clamp01(1 - d*2.5)
	glow = glow * glow * bloom * 1.2
	cr = math.Max(cr, glow*core.R)
	cg = math.Max(cg, glow*core.G)
	cb = math.Max(cb, glow*core.B)

	// Each direction lights the full line through the center perpendicular to
	// it. Opposite directions share a line, so every arm is added twice.
	add := 0.3 * bloom
	for _, dir := range rays {
		if math.Abs(geom.Dot(dir, p)) < rayHalfWidth {
			cr = math.Min(1, cr+add*core.R)
			cg = math.Min(1, cg+add*core.G)
			cb = math.Min(1, cb+add*core.B)
		}
	}
	dst.set(o, float32(cr), float32(cg), float32(cb), float32(clamp01(intensity)))
}

// shadeAntiNeon: sharper, darker falloff on a desaturated color with a dark
// rim inside the edge.
func (r *cpuRenderer) shadeAntiNeon(dst *Buffer, o int, d float64, core colorful.Color) {
	base := clamp01(1 - d*1.2)
	intensity := math.Pow(base, antiNeonExpo) * antiNeonGain
	rim := clamp01(1-math.Abs(d-0.7)*10) * 0.7 * antiNeonRimDark

	shade := func(c float64) float32 {
		return float32(math.Max(0, c*antiNeonDesat*intensity-rim))
	}
	dst.set(o, shade(core.R), shade(core.G), shade(core.B), float32(intensity))
}

// rayDirections returns the unit ray directions for a quality level: none,
// four, or eight.
func rayDirections(quality int) []geom.Point {
	n := 0
	switch {
	case quality >= 2:
		n = 8
	case quality == 1:
		n = 4
	}
	dirs := make([]geom.Point, n)
	for i := range dirs {
		dirs[i] = geom.Unit(float64(i) * 2 * math.Pi / float64(n))
	}
	return dirs
}

// frameColor returns the displayed color of s. If s fails validation it
// returns an error and the color to fill the frame with instead: half the
// requested color, or black when even that cannot be computed.
func frameColor(s palette.State) (colorful.Color, error) {
	for _, f := range []palette.Field{
		palette.FieldHue,
		palette.FieldSaturation,
		palette.FieldBrightness,
		palette.FieldFluorescence,
		palette.FieldHaloWidth,
		palette.FieldHaloIntensity,
	} {
		if _, err := palette.Validate(f, s.Get(f)); err != nil {
			c := palette.RGB(s)
			if c == palette.FallbackRGB {
				return colorful.Color{}, err
			}
			return colorful.Color{R: c.R / 2, G: c.G / 2, B: c.B / 2}, err
		}
	}
	return palette.RGB(s), nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
