// Package geomath provides the scalar, vector and transform primitives used
// throughout the conversion pipeline. All fuzzy comparisons take an explicit
// tolerance; there is no package-level default.
package geomath

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// Vector2D is an immutable 2D vector with finite components.
type Vector2D struct {
	X, Y float64
}

// Vector3D is an immutable 3D vector with finite components.
type Vector3D struct {
	X, Y, Z float64
}

// NewVector2D builds a vector after checking both components are finite.
func NewVector2D(x, y float64) (Vector2D, error) {
	if !isFinite(x) || !isFinite(y) {
		return Vector2D{}, fmt.Errorf("vector components must be finite, got (%v, %v)", x, y)
	}
	return Vector2D{X: x, Y: y}, nil
}

// NewVector3D builds a vector after checking all components are finite.
func NewVector3D(x, y, z float64) (Vector3D, error) {
	if !isFinite(x) || !isFinite(y) || !isFinite(z) {
		return Vector3D{}, fmt.Errorf("vector components must be finite, got (%v, %v, %v)", x, y, z)
	}
	return Vector3D{X: x, Y: y, Z: z}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// IsFinite reports whether all components are finite.
func (v Vector2D) IsFinite() bool { return isFinite(v.X) && isFinite(v.Y) }

// IsFinite reports whether all components are finite.
func (v Vector3D) IsFinite() bool { return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z) }

// Add returns v + o.
func (v Vector2D) Add(o Vector2D) Vector2D { return Vector2D{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vector2D) Sub(o Vector2D) Vector2D { return Vector2D{v.X - o.X, v.Y - o.Y} }

// Scale returns v scaled by f.
func (v Vector2D) Scale(f float64) Vector2D { return Vector2D{v.X * f, v.Y * f} }

// Dot returns the dot product of v and o.
func (v Vector2D) Dot(o Vector2D) float64 { return v.X*o.X + v.Y*o.Y }

// Norm returns the Euclidean length of v.
func (v Vector2D) Norm() float64 { return math.Hypot(v.X, v.Y) }

// DistanceTo returns the Euclidean distance between v and o.
func (v Vector2D) DistanceTo(o Vector2D) float64 { return v.Sub(o).Norm() }

// Angle returns the direction angle of v in radians, in (-π, π].
func (v Vector2D) Angle() float64 { return math.Atan2(v.Y, v.X) }

// Normalize returns the unit vector in the direction of v.
// Fails on the zero vector.
func (v Vector2D) Normalize() (Vector2D, error) {
	n := v.Norm()
	if n == 0 {
		return Vector2D{}, fmt.Errorf("cannot normalize zero vector")
	}
	return v.Scale(1 / n), nil
}

// FuzzyEquals reports componentwise equality within tolerance.
func (v Vector2D) FuzzyEquals(o Vector2D, tolerance float64) bool {
	return scalar.EqualWithinAbs(v.X, o.X, tolerance) &&
		scalar.EqualWithinAbs(v.Y, o.Y, tolerance)
}

// To3D lifts v into 3D with the given z coordinate.
func (v Vector2D) To3D(z float64) Vector3D { return Vector3D{v.X, v.Y, z} }

// Add returns v + o.
func (v Vector3D) Add(o Vector3D) Vector3D { return Vector3D{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v - o.
func (v Vector3D) Sub(o Vector3D) Vector3D { return Vector3D{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v scaled by f.
func (v Vector3D) Scale(f float64) Vector3D { return Vector3D{v.X * f, v.Y * f, v.Z * f} }

// Dot returns the dot product of v and o.
func (v Vector3D) Dot(o Vector3D) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Cross returns the cross product v × o.
func (v Vector3D) Cross(o Vector3D) Vector3D {
	return Vector3D{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// Norm returns the Euclidean length of v.
func (v Vector3D) Norm() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

// DistanceTo returns the Euclidean distance between v and o.
func (v Vector3D) DistanceTo(o Vector3D) float64 { return v.Sub(o).Norm() }

// AngleTo returns the angle between v and o in [0, π].
func (v Vector3D) AngleTo(o Vector3D) float64 {
	denom := v.Norm() * o.Norm()
	if denom == 0 {
		return 0
	}
	c := v.Dot(o) / denom
	// Clamp against rounding before acos.
	c = math.Max(-1, math.Min(1, c))
	return math.Acos(c)
}

// Normalize returns the unit vector in the direction of v.
// Fails on the zero vector.
func (v Vector3D) Normalize() (Vector3D, error) {
	n := v.Norm()
	if n == 0 {
		return Vector3D{}, fmt.Errorf("cannot normalize zero vector")
	}
	return v.Scale(1 / n), nil
}

// FuzzyEquals reports componentwise equality within tolerance.
func (v Vector3D) FuzzyEquals(o Vector3D, tolerance float64) bool {
	return scalar.EqualWithinAbs(v.X, o.X, tolerance) &&
		scalar.EqualWithinAbs(v.Y, o.Y, tolerance) &&
		scalar.EqualWithinAbs(v.Z, o.Z, tolerance)
}

// XY projects v onto the ground plane.
func (v Vector3D) XY() Vector2D { return Vector2D{v.X, v.Y} }

// FuzzyEquals reports |a-b| <= tolerance.
func FuzzyEquals(a, b, tolerance float64) bool {
	return scalar.EqualWithinAbs(a, b, tolerance)
}

// RemoveConsecutiveDuplicates drops points that fuzzy-equal their predecessor.
func RemoveConsecutiveDuplicates(points []Vector3D, tolerance float64) []Vector3D {
	if len(points) == 0 {
		return nil
	}
	out := []Vector3D{points[0]}
	for _, p := range points[1:] {
		if !p.FuzzyEquals(out[len(out)-1], tolerance) {
			out = append(out, p)
		}
	}
	return out
}
