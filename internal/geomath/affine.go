package geomath

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Affine3D is a 4x4 homogeneous transform stored row-major:
//
//	m00 m01 m02 m03
//	m10 m11 m12 m13
//	m20 m21 m22 m23
//	  0   0   0   1
//
// The last row is always [0 0 0 1]; the transform is strictly affine.
type Affine3D struct {
	T [16]float64
}

// IdentityAffine3D returns the identity transform.
func IdentityAffine3D() Affine3D {
	return Affine3D{T: [16]float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}}
}

// AffineFromTranslation returns a pure translation transform.
func AffineFromTranslation(t Vector3D) Affine3D {
	a := IdentityAffine3D()
	a.T[3], a.T[7], a.T[11] = t.X, t.Y, t.Z
	return a
}

// AffineFromRotation returns a pure rotation transform.
func AffineFromRotation(r Rotation3D) Affine3D {
	m := r.Matrix()
	return Affine3D{T: [16]float64{
		m[0], m[1], m[2], 0,
		m[3], m[4], m[5], 0,
		m[6], m[7], m[8], 0,
		0, 0, 0, 1,
	}}
}

// AffineFromScaling returns a pure axis-aligned scaling transform.
func AffineFromScaling(s Vector3D) Affine3D {
	a := IdentityAffine3D()
	a.T[0], a.T[5], a.T[10] = s.X, s.Y, s.Z
	return a
}

// AffineFromPose returns translation ∘ rotation, placing a local frame at the
// given position with the given orientation.
func AffineFromPose(position Vector3D, rotation Rotation3D) Affine3D {
	return AffineFromTranslation(position).Append(AffineFromRotation(rotation))
}

// AffineFromBasis builds the transform mapping local basis coordinates into
// the frame spanned by the given (unit) axes at origin.
func AffineFromBasis(origin, xAxis, yAxis, zAxis Vector3D) Affine3D {
	return Affine3D{T: [16]float64{
		xAxis.X, yAxis.X, zAxis.X, origin.X,
		xAxis.Y, yAxis.Y, zAxis.Y, origin.Y,
		xAxis.Z, yAxis.Z, zAxis.Z, origin.Z,
		0, 0, 0, 1,
	}}
}

// IsFinite reports whether every matrix entry is finite.
func (a Affine3D) IsFinite() bool {
	for _, v := range a.T {
		if !isFinite(v) {
			return false
		}
	}
	return true
}

// Append composes transforms: the result applies o first, then a.
// This matches matrix multiplication a.T * o.T.
func (a Affine3D) Append(o Affine3D) Affine3D {
	var r [16]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var s float64
			for k := 0; k < 4; k++ {
				s += a.T[i*4+k] * o.T[k*4+j]
			}
			r[i*4+j] = s
		}
	}
	return Affine3D{T: r}
}

// TransformPoint applies the full transform, including translation.
func (a Affine3D) TransformPoint(p Vector3D) Vector3D {
	return Vector3D{
		X: a.T[0]*p.X + a.T[1]*p.Y + a.T[2]*p.Z + a.T[3],
		Y: a.T[4]*p.X + a.T[5]*p.Y + a.T[6]*p.Z + a.T[7],
		Z: a.T[8]*p.X + a.T[9]*p.Y + a.T[10]*p.Z + a.T[11],
	}
}

// TransformVector applies only the linear part of the transform.
func (a Affine3D) TransformVector(v Vector3D) Vector3D {
	return Vector3D{
		X: a.T[0]*v.X + a.T[1]*v.Y + a.T[2]*v.Z,
		Y: a.T[4]*v.X + a.T[5]*v.Y + a.T[6]*v.Z,
		Z: a.T[8]*v.X + a.T[9]*v.Y + a.T[10]*v.Z,
	}
}

// TransformPoints applies the transform to every point.
func (a Affine3D) TransformPoints(points []Vector3D) []Vector3D {
	out := make([]Vector3D, len(points))
	for i, p := range points {
		out[i] = a.TransformPoint(p)
	}
	return out
}

// Inverse returns the inverse transform. Fails if the linear part is singular.
func (a Affine3D) Inverse() (Affine3D, error) {
	m := mat.NewDense(4, 4, a.T[:])
	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		return Affine3D{}, fmt.Errorf("affine transform not invertible: %w", err)
	}
	var r Affine3D
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			r.T[i*4+j] = inv.At(i, j)
		}
	}
	// Clean up the homogeneous row against rounding.
	r.T[12], r.T[13], r.T[14], r.T[15] = 0, 0, 0, 1
	return r, nil
}

// ExtractTranslation returns the translation component.
func (a Affine3D) ExtractTranslation() Vector3D {
	return Vector3D{X: a.T[3], Y: a.T[7], Z: a.T[11]}
}

// ExtractScaling returns the column norms of the linear part.
func (a Affine3D) ExtractScaling() Vector3D {
	col := func(j int) float64 {
		return math.Sqrt(a.T[j]*a.T[j] + a.T[4+j]*a.T[4+j] + a.T[8+j]*a.T[8+j])
	}
	return Vector3D{X: col(0), Y: col(1), Z: col(2)}
}

// ExtractRotation decomposes the linear part into heading/pitch/roll, removing
// scaling first.
func (a Affine3D) ExtractRotation() Rotation3D {
	s := a.ExtractScaling()
	sx, sy, sz := s.X, s.Y, s.Z
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	if sz == 0 {
		sz = 1
	}
	r00, r10, r20 := a.T[0]/sx, a.T[4]/sx, a.T[8]/sx
	r21, r22 := a.T[9]/sy, a.T[10]/sz

	pitch := math.Asin(math.Max(-1, math.Min(1, -r20)))
	var heading, roll float64
	if math.Abs(math.Cos(pitch)) > 1e-12 {
		heading = math.Atan2(r10, r00)
		roll = math.Atan2(r21, r22)
	} else {
		// Gimbal lock: fold roll into heading.
		heading = math.Atan2(-a.T[1]/sy, a.T[5]/sy)
		roll = 0
	}
	return Rotation3D{
		Heading: NormalizeAngle(heading),
		Pitch:   NormalizeAngle(pitch),
		Roll:    NormalizeAngle(roll),
	}
}

// Affine2D is a planar affine transform, kept as the 3D transform restricted
// to the ground plane.
type Affine2D struct {
	a Affine3D
}

// IdentityAffine2D returns the identity transform.
func IdentityAffine2D() Affine2D { return Affine2D{a: IdentityAffine3D()} }

// Affine2DFromTranslation returns a pure translation transform.
func Affine2DFromTranslation(t Vector2D) Affine2D {
	return Affine2D{a: AffineFromTranslation(t.To3D(0))}
}

// Affine2DFromRotation returns a pure rotation transform about the origin.
func Affine2DFromRotation(r Rotation2D) Affine2D {
	return Affine2D{a: AffineFromRotation(HeadingRotation(r.Angle))}
}

// Affine2DFromPose returns translation ∘ rotation.
func Affine2DFromPose(position Vector2D, heading float64) Affine2D {
	return Affine2D{a: AffineFromPose(position.To3D(0), HeadingRotation(heading))}
}

// Append composes transforms: the result applies o first, then a.
func (a Affine2D) Append(o Affine2D) Affine2D { return Affine2D{a: a.a.Append(o.a)} }

// TransformPoint applies the transform to p.
func (a Affine2D) TransformPoint(p Vector2D) Vector2D {
	return a.a.TransformPoint(p.To3D(0)).XY()
}

// TransformPoints applies the transform to every point.
func (a Affine2D) TransformPoints(points []Vector2D) []Vector2D {
	out := make([]Vector2D, len(points))
	for i, p := range points {
		out[i] = a.TransformPoint(p)
	}
	return out
}

// Inverse returns the inverse transform.
func (a Affine2D) Inverse() (Affine2D, error) {
	inv, err := a.a.Inverse()
	if err != nil {
		return Affine2D{}, err
	}
	return Affine2D{a: inv}, nil
}

// ExtractTranslation returns the translation component.
func (a Affine2D) ExtractTranslation() Vector2D { return a.a.ExtractTranslation().XY() }

// ExtractRotationAngle returns the planar rotation angle in [0, 2π).
func (a Affine2D) ExtractRotationAngle() float64 {
	return NormalizeAngle(math.Atan2(a.a.T[4], a.a.T[0]))
}

// To3D widens the planar transform back into an Affine3D.
func (a Affine2D) To3D() Affine3D { return a.a }
