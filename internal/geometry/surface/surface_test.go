package surface

import (
	"math"
	"testing"

	"github.com/tum-gis/rtron-sub004/internal/geomath"
)

const testTolerance = 1e-7

func v(x, y, z float64) geomath.Vector3D { return geomath.Vector3D{X: x, Y: y, Z: z} }

func TestNewPolygon3D_Validation(t *testing.T) {
	tests := []struct {
		name     string
		vertices []geomath.Vector3D
		wantErr  bool
	}{
		{"triangle", []geomath.Vector3D{v(0, 0, 0), v(1, 0, 0), v(0, 1, 0)}, false},
		{"closed ring input", []geomath.Vector3D{v(0, 0, 0), v(1, 0, 0), v(0, 1, 0), v(0, 0, 0)}, false},
		{"too few", []geomath.Vector3D{v(0, 0, 0), v(1, 0, 0)}, true},
		{"colinear", []geomath.Vector3D{v(0, 0, 0), v(1, 0, 0), v(2, 0, 0)}, true},
		{"non planar", []geomath.Vector3D{v(0, 0, 0), v(1, 0, 0), v(1, 1, 1), v(0, 1, 0)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPolygon3D(tt.vertices, testTolerance)
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

func TestPolygon3D_VerticesAreCoplanar(t *testing.T) {
	p, err := NewPolygon3D([]geomath.Vector3D{v(0, 0, 1), v(4, 0, 1), v(4, 3, 1), v(0, 3, 1)}, testTolerance)
	if err != nil {
		t.Fatal(err)
	}
	plane, err := BestFitPlane(p.Vertices, testTolerance)
	if err != nil {
		t.Fatal(err)
	}
	for _, vertex := range p.Vertices {
		if d := plane.DistanceTo(vertex); d > testTolerance {
			t.Errorf("vertex %+v is %v off the plane", vertex, d)
		}
	}
}

func TestPolygon3D_NormalAndArea(t *testing.T) {
	p, err := NewPolygon3D([]geomath.Vector3D{v(0, 0, 0), v(2, 0, 0), v(2, 3, 0), v(0, 3, 0)}, testTolerance)
	if err != nil {
		t.Fatal(err)
	}
	n, err := p.Normal()
	if err != nil {
		t.Fatal(err)
	}
	if !n.FuzzyEquals(v(0, 0, 1), 1e-12) {
		t.Errorf("normal = %+v, want +z", n)
	}
	if a := p.Area(); math.Abs(a-6) > 1e-12 {
		t.Errorf("area = %v, want 6", a)
	}
	if rn, _ := p.Reversed().Normal(); !rn.FuzzyEquals(v(0, 0, -1), 1e-12) {
		t.Errorf("reversed normal = %+v, want -z", rn)
	}
}

func TestBestFitPlane_RecoverTiltedPlane(t *testing.T) {
	// Points on the plane z = x.
	points := []geomath.Vector3D{v(0, 0, 0), v(1, 0, 1), v(0, 1, 0), v(1, 1, 1), v(2, 0.5, 2)}
	plane, err := BestFitPlane(points, testTolerance)
	if err != nil {
		t.Fatal(err)
	}
	want := geomath.Vector3D{X: -1 / math.Sqrt2, Z: 1 / math.Sqrt2}
	if !plane.Normal.FuzzyEquals(want, 1e-9) && !plane.Normal.FuzzyEquals(want.Scale(-1), 1e-9) {
		t.Errorf("normal = %+v, want ±%+v", plane.Normal, want)
	}
}

func TestBestFitPlane_ColinearFails(t *testing.T) {
	points := []geomath.Vector3D{v(0, 0, 0), v(1, 1, 1), v(2, 2, 2)}
	if _, err := BestFitPlane(points, testTolerance); err == nil {
		t.Error("expected error for colinear points")
	}
}

func TestIsColinear(t *testing.T) {
	if !IsColinear([]geomath.Vector3D{v(0, 0, 0), v(1, 2, 3), v(2, 4, 6)}, testTolerance) {
		t.Error("expected colinear")
	}
	if IsColinear([]geomath.Vector3D{v(0, 0, 0), v(1, 0, 0), v(0, 1, 0)}, testTolerance) {
		t.Error("unexpected colinear")
	}
}

func TestPolygonizeQuad(t *testing.T) {
	// Degenerate cell drops silently.
	if got := PolygonizeQuad(v(1, 1, 1), v(1, 1, 1), v(1, 1, 1), v(1, 1, 1), testTolerance); got != nil {
		t.Errorf("degenerate quad produced %d polygons", len(got))
	}
	// A planar cell stays one polygon.
	got := PolygonizeQuad(v(0, 0, 0), v(1, 0, 0), v(1, 1, 0), v(0, 1, 0), testTolerance)
	if len(got) != 1 {
		t.Fatalf("planar quad produced %d polygons, want 1", len(got))
	}
	// A twisted cell splits into triangles.
	got = PolygonizeQuad(v(0, 0, 0), v(1, 0, 0), v(1, 1, 0.5), v(0, 1, 0), testTolerance)
	if len(got) != 2 {
		t.Fatalf("twisted quad produced %d polygons, want 2", len(got))
	}
}

func TestRuledSurface_MismatchedLengthsFail(t *testing.T) {
	left := []geomath.Vector3D{v(0, 0, 0), v(1, 0, 0)}
	right := []geomath.Vector3D{v(0, 1, 0)}
	if _, err := RuledSurface(left, right, testTolerance); err == nil {
		t.Error("expected error for mismatched polylines")
	}
}

func TestLinearRing3D_DuplicatesRemoval(t *testing.T) {
	ring, err := NewLinearRing3DWithDuplicatesRemoval([]geomath.Vector3D{
		v(0, 0, 0), v(0, 0, 0), v(1, 0, 0), v(1, 1, 0), v(0, 0, 0),
	}, testTolerance)
	if err != nil {
		t.Fatal(err)
	}
	if len(ring.Vertices) != 3 {
		t.Errorf("got %d vertices, want 3", len(ring.Vertices))
	}
}
