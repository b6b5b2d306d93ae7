package main

import (
	"math"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/rs/zerolog/log"

	"github.com/irfansharif/neonglow/internal/anim"
)

const repeatInterval = 125 * time.Millisecond // time between successive nudges when a key is held down

const (
	hueStep          = 15.0 // degrees per nudge
	fluorescenceStep = 0.1
	nudgeDuration    = 150 * time.Millisecond
)

// EventHandlers manages all event handling for the application.
type EventHandlers struct {
	host *host

	// Left/Right nudge the hue and Up/Down the fluorescence. If held, we do so
	// continuously.
	nudgeHeld        bool
	hueDir, fluorDir float64
	lastNudgeTime    time.Time

	// Index of the preset last applied with Tab/Shift+Tab.
	presetIndex int
}

// NewEventHandlers creates a new event handlers manager.
func NewEventHandlers(h *host) *EventHandlers {
	eh := &EventHandlers{
		host:          h,
		lastNudgeTime: time.Now(),
		presetIndex:   -1,
	}
	eh.SetupCallbacks(h.Window)
	return eh
}

// SetupCallbacks configures all GLFW event callbacks.
func (eh *EventHandlers) SetupCallbacks(window *glfw.Window) {
	window.SetKeyCallback(func(wnd *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		eh.handleKey(key, action, mods)
	})
	window.SetScrollCallback(func(wnd *glfw.Window, _, zoomDelta float64) {
		eh.performZoom(zoomDelta)
	})
	window.SetFramebufferSizeCallback(func(wnd *glfw.Window, newW, newH int) {
		eh.host.View.SetViewport(newW, newH)
	})
}

// handleKey handles keyboard input events.
func (eh *EventHandlers) handleKey(key glfw.Key, action glfw.Action, mods glfw.ModifierKey) {
	switch key {
	case glfw.KeyLeft:
		eh.handleNudgeKeys(action, -1 /* hue */, 0 /* fluorescence */)
		return
	case glfw.KeyRight:
		eh.handleNudgeKeys(action, 1, 0)
		return
	case glfw.KeyUp:
		eh.handleNudgeKeys(action, 0, 1)
		return
	case glfw.KeyDown:
		eh.handleNudgeKeys(action, 0, -1)
		return
	}

	if action != glfw.Press {
		return
	}

	// Number keys apply presets by position.
	if key >= glfw.Key1 && key <= glfw.Key9 {
		eh.applyPresetAt(int(key - glfw.Key1))
		return
	}

	switch key {
	case glfw.KeySpace:
		eh.handleDemoKey()
	case glfw.KeyN:
		eh.handleModeKey()
	case glfw.KeyC:
		eh.handleComplementaryKey()
	case glfw.KeyTab:
		step := 1
		if (mods & glfw.ModShift) != 0 {
			step = -1
		}
		eh.applyPresetAt(eh.presetIndex + step)
	case glfw.KeyR:
		eh.host.Engine.Reset()
		eh.host.View.Reset()
		eh.presetIndex = -1
	case glfw.KeyE:
		eh.handleExportKey()
	case glfw.KeyEscape:
		eh.host.Window.SetShouldClose(true)
	case glfw.KeyEqual:
		if (mods & glfw.ModSuper) != 0 {
			eh.performZoom(1) // zoom in
		}
	case glfw.KeyMinus:
		if (mods & glfw.ModSuper) != 0 {
			eh.performZoom(-1) // zoom out
		}
	}
}

// handleDemoKey toggles the demo cycle.
func (eh *EventHandlers) handleDemoKey() {
	engine := eh.host.Engine
	if engine.DemoEnabled() {
		engine.StopDemo()
		log.Info().Msg("demo stopped")
		return
	}
	engine.StartDemo(time.Now())
	log.Info().Msg("demo started")
}

// handleModeKey animates to the other mode; the switch lands halfway.
func (eh *EventHandlers) handleModeKey() {
	engine := eh.host.Engine
	engine.AnimateTo(anim.Target{}.WithNeon(!engine.State().Neon), engine.DefaultDuration())
}

// handleComplementaryKey animates the hue to the opposite side of the wheel.
func (eh *EventHandlers) handleComplementaryKey() {
	engine := eh.host.Engine
	h, _, _ := engine.Complementary()
	engine.AnimateTo(anim.Target{}.WithHue(h), engine.DefaultDuration())
}

// applyPresetAt applies the i-th preset, wrapping around the list.
func (eh *EventHandlers) applyPresetAt(i int) {
	engine := eh.host.Engine
	names := engine.ListPresetNames()
	if len(names) == 0 {
		return // nothing to do
	}
	i = ((i % len(names)) + len(names)) % len(names)
	if !engine.ApplyPreset(names[i], engine.DefaultDuration()) {
		log.Warn().Str("preset", names[i]).Msg("preset could not be applied")
		return
	}
	eh.presetIndex = i
	log.Info().Str("preset", names[i]).Msg("preset applied")
}

// handleNudgeKeys handles arrow key presses, and also releases for continuous
// nudging.
func (eh *EventHandlers) handleNudgeKeys(action glfw.Action, hueDir, fluorDir float64) {
	switch action {
	case glfw.Press:
		eh.nudgeHeld = true
		eh.hueDir, eh.fluorDir = hueDir, fluorDir
		eh.performNudge()
		eh.lastNudgeTime = time.Now()

	case glfw.Release:
		eh.nudgeHeld = false

	case glfw.Repeat:
		// Ignore repeat events - we handle continuous nudging ourselves to
		// ensure consistent timing.
	}
}

// performNudge executes a single hue/fluorescence step as a short animation.
func (eh *EventHandlers) performNudge() {
	engine := eh.host.Engine
	s := engine.State()
	t := anim.Target{}
	if eh.hueDir != 0 {
		t = t.WithHue(math.Mod(s.Hue+eh.hueDir*hueStep+360, 360))
	}
	if eh.fluorDir != 0 {
		t = t.WithFluorescence(s.Fluorescence + eh.fluorDir*fluorescenceStep)
	}
	engine.AnimateTo(t, nudgeDuration)
}

// handleContinuousNudge handles continuous nudging while arrow keys are held.
func (eh *EventHandlers) handleContinuousNudge(now time.Time) {
	if !eh.nudgeHeld {
		return // nothing to do
	}
	if now.Sub(eh.lastNudgeTime) < repeatInterval {
		return // not enough time has passed since the last nudge
	}
	eh.performNudge()
	eh.lastNudgeTime = now
}

// performZoom scales the presented image around the window center.
func (eh *EventHandlers) performZoom(zoomDelta float64) {
	view := eh.host.View
	view.SetZoom(view.Zoom * (1.0 + zoomDelta*0.15))
}

// handleExportKey writes the last rendered frame to disk.
func (eh *EventHandlers) handleExportKey() {
	path, err := exportFrame(eh.host.exportDir, eh.host.last, time.Now())
	if err != nil {
		log.Warn().Err(err).Msg("export failed")
		return
	}
	log.Info().Str("path", path).Msg("frame exported")
}
