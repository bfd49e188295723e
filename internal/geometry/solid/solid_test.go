package solid

import (
	"math"
	"testing"

	"github.com/tum-gis/rtron-sub004/internal/geomath"
	"github.com/tum-gis/rtron-sub004/internal/geometry/curve"
	"github.com/tum-gis/rtron-sub004/internal/geometry/surface"
	"github.com/tum-gis/rtron-sub004/internal/interval"
	"github.com/tum-gis/rtron-sub004/internal/mathfn"
	"github.com/tum-gis/rtron-sub004/internal/testutil"
)

const testTolerance = 1e-7

func v(x, y, z float64) geomath.Vector3D { return geomath.Vector3D{X: x, Y: y, Z: z} }

func totalArea(polygons []surface.Polygon3D) float64 {
	var a float64
	for _, p := range polygons {
		a += p.Area()
	}
	return a
}

func TestCuboid3D_Polygons(t *testing.T) {
	cuboid, err := NewCuboid3D(5, 3, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	polygons, err := cuboid.Polygons()
	if err != nil {
		t.Fatal(err)
	}
	if len(polygons) != 6 {
		t.Fatalf("got %d polygons, want 6", len(polygons))
	}

	// Total face area is 2(LW + LH + WH).
	want := 2.0 * (5*3 + 5*1 + 3*1)
	if got := totalArea(polygons); math.Abs(got-want) > 1e-9 {
		t.Errorf("total area = %v, want %v", got, want)
	}

	// The front face contains exactly the expected corner set.
	front := []geomath.Vector3D{v(2.5, 1.5, 0), v(2.5, 1.5, 1), v(2.5, -1.5, 1), v(2.5, -1.5, 0)}
	found := false
	for _, p := range polygons {
		if containsAllVertices(p, front) {
			found = true
			break
		}
	}
	if !found {
		t.Error("front face with expected vertices not found")
	}
}

func containsAllVertices(p surface.Polygon3D, want []geomath.Vector3D) bool {
	if len(p.Vertices) != len(want) {
		return false
	}
	for _, w := range want {
		ok := false
		for _, vertex := range p.Vertices {
			if vertex.FuzzyEquals(w, 1e-12) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

func TestCuboid3D_RejectsNonPositive(t *testing.T) {
	if _, err := NewCuboid3D(0, 1, 1, 0); err == nil {
		t.Error("expected error for zero length")
	}
	if _, err := NewCuboid3D(1, -2, 1, 0); err == nil {
		t.Error("expected error for negative width")
	}
}

func TestCylinder3D_Polygons(t *testing.T) {
	cylinder, err := NewCylinder3D(1, 2, 16, testTolerance)
	if err != nil {
		t.Fatal(err)
	}
	polygons, err := cylinder.Polygons()
	if err != nil {
		t.Fatal(err)
	}
	if len(polygons) != 18 {
		t.Fatalf("got %d polygons, want 16 sides + 2 caps", len(polygons))
	}
	// Lateral area approaches 2πrh from below.
	lateral := totalArea(polygons[2:])
	if lateral > 2*math.Pi*2 || lateral < 0.95*2*math.Pi*2 {
		t.Errorf("lateral area = %v, want near %v", lateral, 2*math.Pi*2)
	}
}

func TestPolyhedronFromVerticalOutline_Box(t *testing.T) {
	// A square outline extruded to height 1 on all corners.
	height := v(0, 0, 1)
	corners := []geomath.Vector3D{v(0, 0, 0), v(1, 0, 0), v(1, 1, 0), v(0, 1, 0)}
	var elements []VerticalOutlineElement
	for _, c := range corners {
		elements = append(elements, NewOneHeadElement(c, c.Add(height), true))
	}
	polyhedron, err := PolyhedronFromVerticalOutline(elements, testTolerance)
	testutil.AssertNoError(t, err)
	faces, err := polyhedron.Polygons()
	testutil.AssertNoError(t, err)
	// A closed unit box has surface area 6.
	testutil.AssertInDelta(t, totalArea(faces), 6, 1e-9)
}

func TestPolyhedronFromVerticalOutline_Degenerate(t *testing.T) {
	elements := []VerticalOutlineElement{
		NewBaseElement(v(0, 0, 0)),
		NewBaseElement(v(1, 0, 0)),
		NewBaseElement(v(2, 0, 0)),
	}
	_, err := PolyhedronFromVerticalOutline(elements, testTolerance)
	testutil.AssertError(t, err)
}

func TestPolyhedronFromVerticalOutline_DropsDuplicatesAndSpikes(t *testing.T) {
	elements := []VerticalOutlineElement{
		NewOneHeadElement(v(0, 0, 0), v(0, 0, 1), true),
		NewOneHeadElement(v(0, 0, 0), v(0, 0, 1), true), // duplicate
		NewOneHeadElement(v(1, 0, 0), v(1, 0, 1), true),
		NewOneHeadElement(v(2, 0, 0), v(2, 0, 1), true), // spike
		NewOneHeadElement(v(1, 0, 0), v(1, 0, 1), true),
		NewOneHeadElement(v(1, 1, 0), v(1, 1, 1), true),
		NewOneHeadElement(v(0, 1, 0), v(0, 1, 1), true),
	}
	polyhedron, err := PolyhedronFromVerticalOutline(elements, testTolerance)
	testutil.AssertNoError(t, err)
	faces, err := polyhedron.Polygons()
	testutil.AssertNoError(t, err)
	testutil.AssertInDelta(t, totalArea(faces), 6, 1e-9)
}

func TestParametricSweep3D_StraightBar(t *testing.T) {
	line, err := curve.NewLineSegment2D(10, geomath.Affine2DFromPose(geomath.Vector2D{}, 0), testTolerance)
	if err != nil {
		t.Fatal(err)
	}
	road, err := curve.NewRoadCurve3D(line, nil, nil, testTolerance)
	if err != nil {
		t.Fatal(err)
	}
	domain := interval.MustRange(0, 10)
	localDomain := interval.MustRange(0, 10)
	width, err := mathfn.NewConstant(2, localDomain)
	if err != nil {
		t.Fatal(err)
	}
	heightFn, err := mathfn.NewConstant(1, localDomain)
	if err != nil {
		t.Fatal(err)
	}
	sweep, err := NewParametricSweep3D(road, width, heightFn, nil, domain, 1.0, testTolerance)
	testutil.AssertNoError(t, err)
	polygons, err := sweep.Polygons()
	testutil.AssertNoError(t, err)
	if len(polygons) == 0 {
		t.Fatal("sweep produced no polygons")
	}
	// A straight constant bar is a 10×2×1 box: surface area 2(20+10+2) = 64.
	testutil.AssertInDelta(t, totalArea(polygons), 64, 1e-6)
}
