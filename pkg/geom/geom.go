// Package geom provides 2D geometry primitives and the mapping between
// video (detector) coordinate space and on-screen display space.
package geom

import "math"

// Point is a 2D point in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale returns p scaled by f.
func (p Point) Scale(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// Mag returns the distance from the origin.
func (p Point) Mag() float64 {
	return math.Hypot(p.X, p.Y)
}

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Size is a width/height pair in pixels.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Valid reports whether both dimensions are strictly positive.
func (s Size) Valid() bool {
	return s.W > 0 && s.H > 0
}

// Rect is an axis-aligned rectangle. X,Y is the top-left corner.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Size returns the rectangle's dimensions.
func (r Rect) Size() Size {
	return Size{W: r.W, H: r.H}
}

// Contains reports whether p lies inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Clamp limits v to the range [min, max].
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Lerp linearly interpolates from a to b by t.
// At t=1 the result is exactly b.
func Lerp(a, b Point, t float64) Point {
	return Point{
		X: a.X*(1-t) + b.X*t,
		Y: a.Y*(1-t) + b.Y*t,
	}
}

// ToDisplay maps a point in video space onto the on-screen surface rect.
// The scale is independent per axis; an aspect mismatch stretches rather
// than letterboxes. Returns false when video has a zero or negative
// dimension.
func ToDisplay(p Point, video Size, surface Rect) (Point, bool) {
	if !video.Valid() {
		return Point{}, false
	}
	return Point{
		X: surface.X + p.X*(surface.W/video.W),
		Y: surface.Y + p.Y*(surface.H/video.H),
	}, true
}

// ToVideo is the inverse of ToDisplay. Returns false when the surface has
// a zero or negative dimension.
func ToVideo(p Point, video Size, surface Rect) (Point, bool) {
	if !surface.Size().Valid() {
		return Point{}, false
	}
	return Point{
		X: (p.X - surface.X) * (video.W / surface.W),
		Y: (p.Y - surface.Y) * (video.H / surface.H),
	}, true
}

// ScaleRect maps a rectangle in video space onto the surface rect.
func ScaleRect(r Rect, video Size, surface Rect) (Rect, bool) {
	origin, ok := ToDisplay(Point{X: r.X, Y: r.Y}, video, surface)
	if !ok {
		return Rect{}, false
	}
	return Rect{
		X: origin.X,
		Y: origin.Y,
		W: r.W * (surface.W / video.W),
		H: r.H * (surface.H / video.H),
	}, true
}
