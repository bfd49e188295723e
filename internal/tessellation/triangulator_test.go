package tessellation

import (
	"math"
	"testing"

	"github.com/tum-gis/rtron-sub004/internal/geomath"
	"github.com/tum-gis/rtron-sub004/internal/geometry/surface"
)

const testTolerance = 1e-7

func v(x, y, z float64) geomath.Vector3D { return geomath.Vector3D{X: x, Y: y, Z: z} }

func ring(t *testing.T, vertices ...geomath.Vector3D) surface.LinearRing3D {
	t.Helper()
	r, err := surface.NewLinearRing3D(vertices, testTolerance)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func totalArea(polygons []surface.Polygon3D) float64 {
	var a float64
	for _, p := range polygons {
		a += p.Area()
	}
	return a
}

func TestTriangulate_PlanarRingPassesThrough(t *testing.T) {
	r := ring(t, v(0, 0, 0), v(2, 0, 0), v(2, 2, 0), v(0, 2, 0))
	polygons, err := NewTriangulator().Triangulate(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(polygons) != 1 {
		t.Fatalf("got %d polygons, want 1", len(polygons))
	}
	if math.Abs(totalArea(polygons)-4) > 1e-9 {
		t.Errorf("area = %v, want 4", totalArea(polygons))
	}
}

func TestTriangulate_NonConvexPlanarRing(t *testing.T) {
	// L-shaped outline of area 3.
	r := ring(t, v(0, 0, 0), v(2, 0, 0), v(2, 1, 0), v(1, 1, 0), v(1, 2, 0), v(0, 2, 0))
	polygons, err := NewTriangulator().Triangulate(r)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(totalArea(polygons)-3) > 1e-9 {
		t.Errorf("area = %v, want 3", totalArea(polygons))
	}
}

func TestTriangulate_NonPlanarRing(t *testing.T) {
	r := ring(t, v(0, 0, 0), v(2, 0, 0.1), v(2, 2, 0), v(0, 2, 0.3))
	polygons, err := NewTriangulator().Triangulate(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(polygons) < 2 {
		t.Errorf("got %d polygons, want at least 2 triangles", len(polygons))
	}
}

func TestTriangulate_NormalsFollowOutline(t *testing.T) {
	r := ring(t, v(0, 0, 0), v(2, 0, 0), v(2, 1, 0), v(1, 1, 0), v(1, 2, 0), v(0, 2, 0))
	reference, err := r.Normal()
	if err != nil {
		t.Fatal(err)
	}
	polygons, err := NewTriangulator().Triangulate(r)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range polygons {
		n, err := p.Normal()
		if err != nil {
			t.Fatal(err)
		}
		if reference.AngleTo(n) > 3*math.Pi/4 {
			t.Errorf("triangle normal %+v opposes outline normal %+v", n, reference)
		}
	}
}

func TestTriangulate_DegenerateRingFails(t *testing.T) {
	r := ring(t, v(0, 0, 0), v(1, 0, 0), v(2, 0, 0))
	if _, err := NewTriangulator().Triangulate(r); err == nil {
		t.Error("expected triangulation failure for colinear ring")
	}
}
