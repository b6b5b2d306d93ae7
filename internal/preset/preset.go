// Package preset holds the named color states the host can jump to.
package preset

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/irfansharif/neonglow/internal/anim"
)

var (
	ErrNotFound = errors.New("preset not found")
	ErrInvalid  = errors.New("preset invalid")
)

// Animator starts an eased transition toward a target.
type Animator interface {
	AnimateTo(now time.Time, t anim.Target, d time.Duration)
}

// Entry is one named target. Every field is required; pointers let entries
// loaded from configuration be checked for omissions.
type Entry struct {
	Name         string   `yaml:"name"`
	Hue          *float64 `yaml:"hue"`
	Saturation   *float64 `yaml:"saturation"`
	Brightness   *float64 `yaml:"brightness"`
	Fluorescence *float64 `yaml:"fluorescence"`
	Neon         *bool    `yaml:"neon"`
}

// Make builds a complete entry.
func Make(name string, hue, saturation, brightness, fluorescence float64, neon bool) Entry {
	return Entry{
		Name:         name,
		Hue:          &hue,
		Saturation:   &saturation,
		Brightness:   &brightness,
		Fluorescence: &fluorescence,
		Neon:         &neon,
	}
}

// Validate reports the first missing or non-finite field.
func (e Entry) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalid)
	}
	for _, f := range []struct {
		name string
		v    *float64
	}{
		{"hue", e.Hue},
		{"saturation", e.Saturation},
		{"brightness", e.Brightness},
		{"fluorescence", e.Fluorescence},
	} {
		if f.v == nil {
			return fmt.Errorf("%w: %q is missing %s", ErrInvalid, e.Name, f.name)
		}
		if math.IsNaN(*f.v) || math.IsInf(*f.v, 0) {
			return fmt.Errorf("%w: %q has non-finite %s", ErrInvalid, e.Name, f.name)
		}
	}
	if e.Neon == nil {
		return fmt.Errorf("%w: %q is missing neon", ErrInvalid, e.Name)
	}
	return nil
}

// Target returns the entry as a fully specified animation target.
func (e Entry) Target() anim.Target {
	return anim.Target{}.
		WithHue(*e.Hue).
		WithSaturation(*e.Saturation).
		WithBrightness(*e.Brightness).
		WithFluorescence(*e.Fluorescence).
		WithNeon(*e.Neon)
}

var builtin = []Entry{
	Make("Classic Red", 0, 1, 1, 0.5, true),
	Make("Neon Pink", 320, 1, 1, 0.8, true),
	Make("Cool Blue", 210, 0.9, 1, 0.6, true),
	Make("Electric Green", 120, 1, 1, 0.9, true),
	Make("Sunset Orange", 25, 0.95, 1, 0.5, true),
	Make("Ultraviolet", 275, 1, 0.9, 1, true),
	Make("Muted Teal", 175, 0.6, 0.7, 0.1, false),
	Make("Dusk", 250, 0.5, 0.6, 0, false),
}

// Registry is an immutable, ordered name → entry table. Entries are not
// validated on registration; Lookup reports malformed ones.
type Registry struct {
	names   []string
	entries map[string]Entry
}

// New builds a registry. A repeated name replaces the earlier entry but keeps
// its position.
func New(entries ...Entry) *Registry {
	r := &Registry{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		if _, ok := r.entries[e.Name]; !ok {
			r.names = append(r.names, e.Name)
		}
		r.entries[e.Name] = e
	}
	return r
}

// Builtin returns the registry of built-in presets.
func Builtin() *Registry { return New(builtin...) }

// With returns a new registry with extra entries appended (or replacing
// existing names).
func (r *Registry) With(extra ...Entry) *Registry {
	all := make([]Entry, 0, len(r.names)+len(extra))
	for _, n := range r.names {
		all = append(all, r.entries[n])
	}
	return New(append(all, extra...)...)
}

// Names returns every registered name once, in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Lookup returns the animation target for name.
func (r *Registry) Lookup(name string) (anim.Target, error) {
	e, ok := r.entries[name]
	if !ok {
		return anim.Target{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err := e.Validate(); err != nil {
		return anim.Target{}, err
	}
	return e.Target(), nil
}

// Apply animates toward the named preset. On error nothing is started.
func (r *Registry) Apply(a Animator, now time.Time, name string, d time.Duration) error {
	t, err := r.Lookup(name)
	if err != nil {
		return err
	}
	a.AnimateTo(now, t, d)
	return nil
}
