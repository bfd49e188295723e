package geomath

import (
	"fmt"
	"math"
)

// TwoPi is the full angle in radians.
const TwoPi = 2 * math.Pi

// NormalizeAngle maps an angle into [0, 2π).
func NormalizeAngle(angle float64) float64 {
	a := math.Mod(angle, TwoPi)
	if a < 0 {
		a += TwoPi
	}
	return a
}

// AngleDifference returns the smallest absolute difference between two angles,
// in [0, π].
func AngleDifference(a, b float64) float64 {
	d := math.Abs(NormalizeAngle(a) - NormalizeAngle(b))
	if d > math.Pi {
		d = TwoPi - d
	}
	return d
}

// Rotation2D is a rotation in the plane, stored as a normalized angle.
type Rotation2D struct {
	Angle float64 // radians, in [0, 2π)
}

// NewRotation2D builds a rotation from an angle in radians.
func NewRotation2D(angle float64) (Rotation2D, error) {
	if !isFinite(angle) {
		return Rotation2D{}, fmt.Errorf("rotation angle must be finite, got %v", angle)
	}
	return Rotation2D{Angle: NormalizeAngle(angle)}, nil
}

// Rotate applies the rotation to v.
func (r Rotation2D) Rotate(v Vector2D) Vector2D {
	sin, cos := math.Sincos(r.Angle)
	return Vector2D{X: cos*v.X - sin*v.Y, Y: sin*v.X + cos*v.Y}
}

// Append composes rotations: the result applies r first, then o.
func (r Rotation2D) Append(o Rotation2D) Rotation2D {
	return Rotation2D{Angle: NormalizeAngle(r.Angle + o.Angle)}
}

// FuzzyEquals compares angles modulo 2π within tolerance.
func (r Rotation2D) FuzzyEquals(o Rotation2D, tolerance float64) bool {
	return AngleDifference(r.Angle, o.Angle) <= tolerance
}

// Rotation3D is an intrinsic heading/pitch/roll rotation (yaw about Z, then
// pitch about the new Y, then roll about the new X). Angles are normalized to
// [0, 2π) at construction.
type Rotation3D struct {
	Heading float64
	Pitch   float64
	Roll    float64
}

// NewRotation3D builds a rotation from heading, pitch and roll in radians.
func NewRotation3D(heading, pitch, roll float64) (Rotation3D, error) {
	if !isFinite(heading) || !isFinite(pitch) || !isFinite(roll) {
		return Rotation3D{}, fmt.Errorf("rotation angles must be finite, got (%v, %v, %v)", heading, pitch, roll)
	}
	return Rotation3D{
		Heading: NormalizeAngle(heading),
		Pitch:   NormalizeAngle(pitch),
		Roll:    NormalizeAngle(roll),
	}, nil
}

// HeadingRotation returns a rotation with only the heading component set.
func HeadingRotation(heading float64) Rotation3D {
	return Rotation3D{Heading: NormalizeAngle(heading)}
}

// Matrix returns the 3x3 rotation matrix in row-major order.
func (r Rotation3D) Matrix() [9]float64 {
	sh, ch := math.Sincos(r.Heading)
	sp, cp := math.Sincos(r.Pitch)
	sr, cr := math.Sincos(r.Roll)
	return [9]float64{
		ch * cp, ch*sp*sr - sh*cr, ch*sp*cr + sh*sr,
		sh * cp, sh*sp*sr + ch*cr, sh*sp*cr - ch*sr,
		-sp, cp * sr, cp * cr,
	}
}

// Rotate applies the rotation to v.
func (r Rotation3D) Rotate(v Vector3D) Vector3D {
	m := r.Matrix()
	return Vector3D{
		X: m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		Y: m[3]*v.X + m[4]*v.Y + m[5]*v.Z,
		Z: m[6]*v.X + m[7]*v.Y + m[8]*v.Z,
	}
}

// Append composes rotations: the result applies r first, then o.
func (r Rotation3D) Append(o Rotation3D) Rotation3D {
	a := AffineFromRotation(o).Append(AffineFromRotation(r))
	return a.ExtractRotation()
}

// FuzzyEquals compares all three angles modulo 2π within tolerance.
func (r Rotation3D) FuzzyEquals(o Rotation3D, tolerance float64) bool {
	return AngleDifference(r.Heading, o.Heading) <= tolerance &&
		AngleDifference(r.Pitch, o.Pitch) <= tolerance &&
		AngleDifference(r.Roll, o.Roll) <= tolerance
}
