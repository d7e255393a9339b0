// Package geom holds the 2D math shared by the simulation: normalized
// playfield vectors, surface conversions and circle tests.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vector is a 2D point or direction. Playfield positions are normalized to
// [0,1] on both axes.
type Vector = mgl64.Vec2

// Vec builds a Vector.
func Vec(x, y float64) Vector {
	return Vector{x, y}
}

// Surface is the size of the render target in pixels.
type Surface struct {
	Width, Height float64
}

// Valid reports whether the surface has a drawable area.
func (s Surface) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// Aspect returns width/height, the factor applied to vertical motion so a
// normalized step covers the same pixel distance on both axes. An invalid
// surface yields 1.
func (s Surface) Aspect() float64 {
	if !s.Valid() {
		return 1
	}
	return s.Width / s.Height
}

// ToCanvas converts a normalized position to pixels.
func (s Surface) ToCanvas(v Vector) Vector {
	return Vector{v.X() * s.Width, v.Y() * s.Height}
}

// FromCanvas converts pixels to a normalized position.
func (s Surface) FromCanvas(c Vector) Vector {
	if !s.Valid() {
		return Vector{}
	}
	return Vector{c.X() / s.Width, c.Y() / s.Height}
}

// Bound clamps v to [0,1].
func Bound(v float64) float64 {
	return mgl64.Clamp(v, 0, 1)
}

// BoundVec clamps both axes to [0,1].
func BoundVec(v Vector) Vector {
	return Vector{Bound(v.X()), Bound(v.Y())}
}

// Heading returns the unit direction for an angle in radians.
func Heading(rotation float64) Vector {
	return Vector{math.Cos(rotation), math.Sin(rotation)}
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b Vector) float64 {
	return b.Sub(a).Len()
}

// DistanceSq returns the squared distance between a and b.
func DistanceSq(a, b Vector) float64 {
	d := b.Sub(a)
	return d.Dot(d)
}

// Interpolate returns the point at frac along a->b. frac outside [0,1]
// extrapolates.
func Interpolate(a, b Vector, frac float64) Vector {
	return a.Add(b.Sub(a).Mul(frac))
}

// CirclesIntersect reports whether two circles overlap or touch. Touching
// circles intersect.
func CirclesIntersect(a Vector, ra float64, b Vector, rb float64) bool {
	sum := ra + rb
	return DistanceSq(a, b) <= sum*sum
}
