// Package placement converts world-relative vectors into screen anchors for
// circular sprites and decides which anchors are still in view.
package placement

import (
	"errors"

	"agarclient/geom"
)

// ErrLengthMismatch is returned by Project when vectors and radii differ
// in length.
var ErrLengthMismatch = errors.New("placement: vectors and radii differ in length")

// Point is a screen coordinate in pixels.
type Point struct {
	X, Y float64
}

// Viewport is the size of the render area in pixels.
type Viewport struct {
	Width, Height float64
}

// Center returns the middle of the viewport.
func (v Viewport) Center() Point {
	return Point{X: v.Width / 2, Y: v.Height / 2}
}

// Project places each vector relative to center, scaled from world units to
// pixels, and returns the upper-left corner of the square that bounds a
// circle of the matching radius.
func Project(vectors []geom.Vec, radii []float64, center Point, scale float64) ([]Point, error) {
	if len(vectors) != len(radii) {
		return nil, ErrLengthMismatch
	}
	out := make([]Point, len(vectors))
	for i, v := range vectors {
		r := radii[i] * scale
		out[i] = Point{
			X: center.X + v.X*scale - r,
			Y: center.Y + v.Y*scale - r,
		}
	}
	return out, nil
}

// Anchor is Project for a single vector.
func Anchor(v geom.Vec, radius float64, center Point, scale float64) Point {
	r := radius * scale
	return Point{X: center.X + v.X*scale - r, Y: center.Y + v.Y*scale - r}
}

// Visible reports whether an anchor is still in view. Only the right and
// bottom edges cull, and they are exclusive: an anchor equal to the width or
// height is out of view. Anchors past the left or top edge stay visible.
func Visible(p Point, size float64, vp Viewport) bool {
	return p.X < vp.Width && p.Y < vp.Height
}
