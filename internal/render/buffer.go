package render

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
)

// Buffer is an RGBA float pixel buffer, rows top to bottom, channels in
// [0,1].
type Buffer struct {
	Width, Height int
	Pix           []float32
}

func NewBuffer(width, height int) *Buffer {
	return &Buffer{Width: width, Height: height, Pix: make([]float32, width*height*4)}
}

// At returns the RGBA value of pixel (x, y).
func (b *Buffer) At(x, y int) [4]float32 {
	i := (y*b.Width + x) * 4
	return [4]float32{b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3]}
}

func (b *Buffer) set(i int, r, g, bl, a float32) {
	b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3] = r, g, bl, a
}

// Fill sets every pixel to the same value.
func (b *Buffer) Fill(r, g, bl, a float32) {
	for i := 0; i < len(b.Pix); i += 4 {
		b.set(i, r, g, bl, a)
	}
}

// FlipRows reverses the row order in place (GL reads bottom row first).
func (b *Buffer) FlipRows() {
	stride := b.Width * 4
	row := make([]float32, stride)
	for top, bot := 0, b.Height-1; top < bot; top, bot = top+1, bot-1 {
		t := b.Pix[top*stride : (top+1)*stride]
		u := b.Pix[bot*stride : (bot+1)*stride]
		copy(row, t)
		copy(t, u)
		copy(u, row)
	}
}

func (b *Buffer) Clone() *Buffer {
	c := NewBuffer(b.Width, b.Height)
	copy(c.Pix, b.Pix)
	return c
}

// Image converts the buffer to 8-bit NRGBA.
func (b *Buffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			p := b.At(x, y)
			img.SetNRGBA(x, y, color.NRGBA{R: to8(p[0]), G: to8(p[1]), B: to8(p[2]), A: to8(p[3])})
		}
	}
	return img
}

// WritePNG encodes the buffer as an 8-bit PNG with alpha.
func (b *Buffer) WritePNG(w io.Writer) error {
	return png.Encode(w, b.Image())
}

func to8(v float32) uint8 {
	if math.IsNaN(float64(v)) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
