// Package geom provides the 2D primitives used to lay out the disc:
// - points and vector arithmetic
// - viewport boxes and the disc inscribed in them
package geom

import "math"

// Point represents a 2D point or vector in Cartesian coordinates.
type Point struct {
	X float64
	Y float64
}

// Box represents an axis-aligned rectangle.
type Box struct {
	X float64
	Y float64
	W float64
	H float64
}

func MakePoint(x, y float64) Point   { return Point{X: x, Y: y} }
func MakeBox(x, y, w, h float64) Box { return Box{X: x, Y: y, W: w, H: h} }

func (p Point) Add(q Point) Point     { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point     { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }
func (p Point) Len() float64          { return math.Hypot(p.X, p.Y) }

func Dot(p, q Point) float64 { return p.X*q.X + p.Y*q.Y }

func Dist(p, q Point) float64 { return p.Sub(q).Len() }

// Unit returns the unit vector at angle theta (radians).
func Unit(theta float64) Point { return Point{math.Cos(theta), math.Sin(theta)} }

// Center returns the center of the box.
func (b Box) Center() Point { return Point{b.X + 0.5*b.W, b.Y + 0.5*b.H} }

// InscribedRadius returns the radius of the largest circle centered in the
// box, shrunk by the given margin fraction.
func (b Box) InscribedRadius(margin float64) float64 {
	return 0.5 * math.Min(b.W, b.H) * (1 - margin)
}

// Polygon returns the box corners counter-clockwise from (X,Y).
func (b Box) Polygon() []Point {
	return []Point{
		{b.X, b.Y},
		{b.X + b.W, b.Y},
		{b.X + b.W, b.Y + b.H},
		{b.X, b.Y + b.H},
	}
}
