package palette

import (
	"errors"
	"fmt"
	"math"
)

// Parameter ranges. Hue is a wrap-around domain for interpolation, but the
// setters clamp it like every other field.
const (
	MinHue           = 0.0
	MaxHue           = 360.0
	MinHaloWidth     = 0.02
	MaxHaloWidth     = 0.4
	MinHaloIntensity = 0.0
	MaxHaloIntensity = 2.0

	DefaultHaloWidth     = 0.15
	DefaultHaloIntensity = 1.0
)

// ErrInvalidValue is wrapped by every ValidationError.
var ErrInvalidValue = errors.New("invalid value")

// Field names a ColorState parameter.
type Field string

const (
	FieldHue           Field = "hue"
	FieldSaturation    Field = "saturation"
	FieldBrightness    Field = "brightness"
	FieldFluorescence  Field = "fluorescence"
	FieldHaloWidth     Field = "halo width"
	FieldHaloIntensity Field = "halo intensity"
)

// ValidationError reports input that cannot be clamped into range because it
// is not a number at all (NaN or an infinity).
type ValidationError struct {
	Field Field
	Value float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v is not a finite number", e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidValue }

// State is the validated color parameter set. The zero value is not valid;
// use Default.
type State struct {
	Hue           float64 // degrees, [0,360]
	Saturation    float64 // [0,1]
	Brightness    float64 // [0,1]
	Fluorescence  float64 // [0,1]
	Neon          bool
	HaloWidth     float64 // [0.02,0.4]
	HaloIntensity float64 // [0,2]
}

// Default returns the power-on state: pure red, full saturation and
// brightness, no fluorescence, neon mode.
func Default() State {
	return State{
		Hue:           0,
		Saturation:    1,
		Brightness:    1,
		Fluorescence:  0,
		Neon:          true,
		HaloWidth:     DefaultHaloWidth,
		HaloIntensity: DefaultHaloIntensity,
	}
}

// Range returns the inclusive bounds of a field.
func Range(f Field) (lo, hi float64) {
	switch f {
	case FieldHue:
		return MinHue, MaxHue
	case FieldHaloWidth:
		return MinHaloWidth, MaxHaloWidth
	case FieldHaloIntensity:
		return MinHaloIntensity, MaxHaloIntensity
	default:
		return 0, 1
	}
}

// Validate clamps v into the range of f. Non-finite input is rejected.
func Validate(f Field, v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ValidationError{Field: f, Value: v}
	}
	lo, hi := Range(f)
	return clamp(v, lo, hi), nil
}

func (s *State) SetHue(v float64) error           { return s.set(FieldHue, v, &s.Hue) }
func (s *State) SetSaturation(v float64) error    { return s.set(FieldSaturation, v, &s.Saturation) }
func (s *State) SetBrightness(v float64) error    { return s.set(FieldBrightness, v, &s.Brightness) }
func (s *State) SetFluorescence(v float64) error  { return s.set(FieldFluorescence, v, &s.Fluorescence) }
func (s *State) SetHaloWidth(v float64) error     { return s.set(FieldHaloWidth, v, &s.HaloWidth) }
func (s *State) SetHaloIntensity(v float64) error { return s.set(FieldHaloIntensity, v, &s.HaloIntensity) }
func (s *State) SetNeon(neon bool)                { s.Neon = neon }

func (s *State) set(f Field, v float64, dst *float64) error {
	c, err := Validate(f, v)
	if err != nil {
		return err // leave state unchanged
	}
	*dst = c
	return nil
}

// Get returns the value of a numeric field.
func (s State) Get(f Field) float64 {
	switch f {
	case FieldHue:
		return s.Hue
	case FieldSaturation:
		return s.Saturation
	case FieldBrightness:
		return s.Brightness
	case FieldFluorescence:
		return s.Fluorescence
	case FieldHaloWidth:
		return s.HaloWidth
	case FieldHaloIntensity:
		return s.HaloIntensity
	default:
		return 0
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
