package app

import (
	"math"

	"github.com/irfansharif/neonglow/internal/geom"
)

const (
	minZoom = 0.25
	maxZoom = 4.0
)

// View manages how the rendered buffer is placed in the window: the viewport
// size and a zoom factor around its center.
type View struct {
	Zoom          float64
	Width, Height int
}

// NewView creates a new view state with default values.
func NewView(width, height int) *View {
	return &View{
		Zoom:   1.0,
		Width:  width,
		Height: height,
	}
}

// SetZoom sets the zoom level, clamping to valid range.
func (vs *View) SetZoom(zoom float64) {
	if zoom < minZoom {
		vs.Zoom = minZoom
	} else if zoom > maxZoom {
		vs.Zoom = maxZoom
	} else {
		vs.Zoom = zoom
	}
}

// SetViewport updates the viewport dimensions.
func (vs *View) SetViewport(width, height int) {
	vs.Width = width
	vs.Height = height
}

// Reset restores zoom 1.0.
func (vs *View) Reset() { vs.Zoom = 1.0 }

// Placement returns where a bufW×bufH image lands in the viewport: scaled to
// fit while keeping its aspect ratio, multiplied by the zoom, and centered.
func (vs *View) Placement(bufW, bufH int) geom.Box {
	if bufW <= 0 || bufH <= 0 || vs.Width <= 0 || vs.Height <= 0 {
		return geom.Box{}
	}
	fit := math.Min(float64(vs.Width)/float64(bufW), float64(vs.Height)/float64(bufH))
	w := float64(bufW) * fit * vs.Zoom
	h := float64(bufH) * fit * vs.Zoom
	view := geom.MakeBox(0, 0, float64(vs.Width), float64(vs.Height))
	origin := view.Center().Add(geom.MakePoint(-w/2, -h/2))
	return geom.MakeBox(origin.X, origin.Y, w, h)
}
