package geomath

import (
	"math"
	"testing"
)

func TestNewVector3D_RejectsNonFinite(t *testing.T) {
	tests := []struct {
		name    string
		x, y, z float64
	}{
		{"nan x", math.NaN(), 0, 0},
		{"inf y", 0, math.Inf(1), 0},
		{"neg inf z", 0, 0, math.Inf(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewVector3D(tt.x, tt.y, tt.z); err == nil {
				t.Errorf("expected error for (%v, %v, %v)", tt.x, tt.y, tt.z)
			}
		})
	}
	if _, err := NewVector3D(1, 2, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestVector3D_CrossAndDot(t *testing.T) {
	x := Vector3D{X: 1}
	y := Vector3D{Y: 1}
	z := x.Cross(y)
	if !z.FuzzyEquals(Vector3D{Z: 1}, 1e-12) {
		t.Errorf("x cross y = %+v, want (0,0,1)", z)
	}
	if d := x.Dot(y); d != 0 {
		t.Errorf("x dot y = %v, want 0", d)
	}
}

func TestVector3D_AngleTo(t *testing.T) {
	tests := []struct {
		a, b Vector3D
		want float64
	}{
		{Vector3D{X: 1}, Vector3D{X: 1}, 0},
		{Vector3D{X: 1}, Vector3D{Y: 1}, math.Pi / 2},
		{Vector3D{X: 1}, Vector3D{X: -1}, math.Pi},
	}
	for _, tt := range tests {
		if got := tt.a.AngleTo(tt.b); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("AngleTo(%+v, %+v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestVector2D_NormalizeZeroFails(t *testing.T) {
	if _, err := (Vector2D{}).Normalize(); err == nil {
		t.Error("expected error normalizing zero vector")
	}
}

func TestRemoveConsecutiveDuplicates(t *testing.T) {
	points := []Vector3D{{X: 0}, {X: 0}, {X: 1}, {X: 1}, {X: 2}}
	got := RemoveConsecutiveDuplicates(points, 1e-9)
	if len(got) != 3 {
		t.Fatalf("got %d points, want 3", len(got))
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{-math.Pi / 2, 3 * math.Pi / 2},
		{2*math.Pi + 0.5, 0.5},
		{-4 * math.Pi, 0},
	}
	for _, tt := range tests {
		if got := NormalizeAngle(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
