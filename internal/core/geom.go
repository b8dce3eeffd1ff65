// Package core provides fundamental types and utilities for the hockey platform.
// It contains no terminal or network dependencies to keep game logic pure
// and testable.
package core

import "golang.org/x/exp/constraints"

// Rect is an integer rectangle in screen cells.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Contains returns true if the point (x, y) is inside this rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Box is an axis-aligned bounding box in field units.
type Box struct {
	X, Y float64 // Top-left corner
	W, H float64
}

// BoxAround returns the square box of half-size r centred on (cx, cy).
func BoxAround(cx, cy, r float64) Box {
	return Box{X: cx - r, Y: cy - r, W: 2 * r, H: 2 * r}
}

// Right returns the x-coordinate of the right edge.
func (b Box) Right() float64 {
	return b.X + b.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (b Box) Bottom() float64 {
	return b.Y + b.H
}

// Overlaps reports whether two boxes intersect. Edges are inclusive, so
// boxes that only touch count as overlapping.
func (b Box) Overlaps(other Box) bool {
	if b.X > other.Right() || other.X > b.Right() {
		return false
	}
	if b.Y > other.Bottom() || other.Y > b.Bottom() {
		return false
	}
	return true
}

// Clamp restricts a value to be within [lo, hi].
func Clamp[T constraints.Integer | constraints.Float](val, lo, hi T) T {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// Scale maps host coordinates (terminal cells, pixels) onto the field by a
// fixed linear factor per axis.
type Scale struct {
	X, Y float64
}

// NewScale builds the factor that maps a host area of hostW x hostH onto a
// field of fieldW x fieldH.
func NewScale(hostW, hostH int, fieldW, fieldH float64) Scale {
	s := Scale{X: 1, Y: 1}
	if hostW > 0 {
		s.X = fieldW / float64(hostW)
	}
	if hostH > 0 {
		s.Y = fieldH / float64(hostH)
	}
	return s
}

// ToField converts a host coordinate to field units.
func (s Scale) ToField(x, y int) (float64, float64) {
	return float64(x) * s.X, float64(y) * s.Y
}

// ToHost converts a field coordinate back to the nearest host cell.
func (s Scale) ToHost(x, y float64) (int, int) {
	hx, hy := 0, 0
	if s.X != 0 {
		hx = int(x / s.X)
	}
	if s.Y != 0 {
		hy = int(y / s.Y)
	}
	return hx, hy
}
