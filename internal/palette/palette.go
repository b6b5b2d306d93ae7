// Package palette provides the color model for the neon disc. It holds the
// validated color State and the pure conversions the renderer reads from it:
// mode-dependent HSV scaling, HSV to RGB (via go-colorful), bloom, halo and
// hex output.
//
// Conversions assume a validated State. They never fail; if a conversion ever
// produces a non-finite channel, a neutral fallback color is returned instead.
package palette

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Fallback colors for conversions that produced non-finite output.
var (
	FallbackRGB  = colorful.Color{R: 0.5, G: 0.5, B: 0.5}
	FallbackHalo = colorful.Color{R: 1, G: 1, B: 1}
)

const antiNeonBloom = 0.05

// HSVForMode returns the hue, saturation and value actually displayed for the
// state's mode. Neon scales by fluorescence; anti-neon desaturates and darkens.
func HSVForMode(s State) (h, sat, val float64) {
	if s.Neon {
		boost := 0.8 + 0.2*s.Fluorescence
		sat = s.Saturation * boost
		val = s.Brightness * boost
	} else {
		sat = s.Saturation * 0.3
		val = s.Brightness * 0.5
	}
	return s.Hue, clamp(sat, 0, 1), clamp(val, 0, 1)
}

// HSVToRGB converts hue (degrees, any value; reduced mod 360), saturation and
// value into an RGB color with every channel in [0,1].
func HSVToRGB(h, s, v float64) colorful.Color {
	c := colorful.Hsv(NormalizeHue(h), s, v)
	if !finite(c) {
		return FallbackRGB
	}
	return c.Clamped()
}

// RGB returns the displayed color of the state.
func RGB(s State) colorful.Color {
	return HSVToRGB(HSVForMode(s))
}

// BloomIntensity grows with fluorescence in neon mode and is a faint constant
// in anti-neon mode.
func BloomIntensity(s State) float64 {
	if !s.Neon {
		return antiNeonBloom
	}
	return 0.3 + 0.7*s.Fluorescence
}

// HaloRGB returns the halo color: the current hue with boosted saturation and
// value.
func HaloRGB(s State) colorful.Color {
	sat := math.Min(1, s.Saturation*(0.9+0.2*s.Fluorescence))
	val := math.Min(1, 0.85+0.15*(s.Fluorescence+0.5))
	c := colorful.Hsv(NormalizeHue(s.Hue), sat, val)
	if !finite(c) {
		return FallbackHalo
	}
	return c.Clamped()
}

// Hex returns the displayed color as "#rrggbb".
func Hex(s State) string {
	return RGB(s).Hex()
}

// ShaderColor returns the displayed color as a vec3 for shader uniforms.
func ShaderColor(s State) [3]float32 {
	return Vec3(RGB(s))
}

// Vec3 narrows a color to shader precision.
func Vec3(c colorful.Color) [3]float32 {
	return [3]float32{float32(c.R), float32(c.G), float32(c.B)}
}

// Complementary returns the color opposite on the wheel, with the raw
// (unscaled) saturation and brightness.
func Complementary(s State) (h, sat, val float64) {
	return NormalizeHue(s.Hue + 180), s.Saturation, s.Brightness
}

// NormalizeHue reduces h into [0,360).
func NormalizeHue(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

func finite(c colorful.Color) bool {
	for _, v := range [...]float64{c.R, c.G, c.B} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
