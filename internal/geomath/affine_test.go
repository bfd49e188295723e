package geomath

import (
	"math"
	"testing"
)

func TestAffine3D_AppendInverseIsIdentity(t *testing.T) {
	rotation, err := NewRotation3D(0.7, 0.2, -0.4)
	if err != nil {
		t.Fatal(err)
	}
	a := AffineFromPose(Vector3D{X: 4, Y: -2, Z: 9}, rotation)
	inv, err := a.Inverse()
	if err != nil {
		t.Fatal(err)
	}
	roundTrip := a.Append(inv)
	p := Vector3D{X: 1.5, Y: -3.25, Z: 0.75}
	if got := roundTrip.TransformPoint(p); !got.FuzzyEquals(p, 1e-9) {
		t.Errorf("A∘A⁻¹ transformed %+v to %+v", p, got)
	}
}

func TestAffine3D_ExtractTranslation(t *testing.T) {
	a := AffineFromTranslation(Vector3D{X: 1, Y: 2, Z: 3})
	if got := a.ExtractTranslation(); !got.FuzzyEquals(Vector3D{X: 1, Y: 2, Z: 3}, 0) {
		t.Errorf("translation = %+v", got)
	}
}

func TestAffine3D_DecomposeRotation(t *testing.T) {
	tests := []struct {
		heading, pitch, roll float64
	}{
		{0, 0, 0},
		{1.2, 0, 0},
		{0.3, 0.4, 0},
		{2.5, -0.3, 0.8},
	}
	for _, tt := range tests {
		rotation, err := NewRotation3D(tt.heading, tt.pitch, tt.roll)
		if err != nil {
			t.Fatal(err)
		}
		got := AffineFromRotation(rotation).ExtractRotation()
		if !got.FuzzyEquals(rotation, 1e-9) {
			t.Errorf("decomposed %+v as %+v", rotation, got)
		}
	}
}

func TestAffine3D_ExtractScaling(t *testing.T) {
	a := AffineFromScaling(Vector3D{X: 2, Y: 3, Z: 4})
	if got := a.ExtractScaling(); !got.FuzzyEquals(Vector3D{X: 2, Y: 3, Z: 4}, 1e-12) {
		t.Errorf("scaling = %+v", got)
	}
}

func TestAffine2D_PoseAndRotationAngle(t *testing.T) {
	a := Affine2DFromPose(Vector2D{X: 10, Y: 5}, math.Pi/2)
	got := a.TransformPoint(Vector2D{X: 1, Y: 0})
	if !got.FuzzyEquals(Vector2D{X: 10, Y: 6}, 1e-12) {
		t.Errorf("transformed point = %+v, want (10, 6)", got)
	}
	if angle := a.ExtractRotationAngle(); math.Abs(angle-math.Pi/2) > 1e-12 {
		t.Errorf("rotation angle = %v, want π/2", angle)
	}
}

func TestRotation3D_AppendMatchesMatrixProduct(t *testing.T) {
	r1 := HeadingRotation(0.5)
	r2 := HeadingRotation(1.25)
	combined := r1.Append(r2)
	if math.Abs(combined.Heading-1.75) > 1e-9 {
		t.Errorf("combined heading = %v, want 1.75", combined.Heading)
	}
}
