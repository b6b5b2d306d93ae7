package app

import (
	"time"

	"github.com/irfansharif/neonglow/internal/palette"
)

// Status is a point-in-time summary of the engine, for display and the
// websocket feed. The host fills in the render fields.
type Status struct {
	Time       time.Time `json:"time"`
	Hex        string    `json:"hex"`
	Hue        float64   `json:"hue"`
	Saturation float64   `json:"saturation"`
	Brightness float64   `json:"brightness"`
	Fluor      float64   `json:"fluorescence"`
	Neon       bool      `json:"neon"`
	Animating  bool      `json:"animating"`
	Demo       bool      `json:"demo"`

	FPS        float64 `json:"fps"`
	Quality    int     `json:"quality"`
	SkipFrames int     `json:"skip_frames"`

	GPU     bool   `json:"gpu"`
	Backend string `json:"backend,omitempty"`
}

// Status snapshots the engine at time now.
func (e *Engine) Status(now time.Time) Status {
	s := *e.state
	ps := e.pacer.Stats()
	return Status{
		Time:       now,
		Hex:        palette.Hex(s),
		Hue:        s.Hue,
		Saturation: s.Saturation,
		Brightness: s.Brightness,
		Fluor:      s.Fluorescence,
		Neon:       s.Neon,
		Animating:  e.anim.Active(),
		Demo:       e.demo.Enabled(),
		FPS:        ps.FPS,
		Quality:    ps.Quality,
		SkipFrames: ps.SkipFrames,
	}
}
