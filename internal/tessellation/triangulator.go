// Package tessellation turns linear rings into triangle polygons through a
// fallback chain: planar rings pass through unchanged, general rings are
// projected onto their best-fit plane and ear-clipped, and a fan from the
// first vertex is the last resort.
package tessellation

import (
	"fmt"
	"math"

	"github.com/tum-gis/rtron-sub004/internal/geomath"
	"github.com/tum-gis/rtron-sub004/internal/geometry/surface"
)

// ErrTriangulationFailure is returned when every strategy in the chain fails.
var ErrTriangulationFailure = fmt.Errorf("triangulation failure")

// maxNormalDeviation is the largest angle a triangle normal may deviate from
// the outline's reference normal before the triangle is flipped.
const maxNormalDeviation = 3 * math.Pi / 4

// Triangulator triangulates linear rings. It keeps per-instance scratch
// state, so one instance must not be shared across workers.
type Triangulator struct {
	scratch2D []geomath.Vector2D
}

// NewTriangulator returns a fresh triangulator instance.
func NewTriangulator() *Triangulator {
	return &Triangulator{}
}

// Triangulate runs the fallback chain on the ring and returns polygons whose
// normals are aligned with the ring's Newell normal.
func (t *Triangulator) Triangulate(ring surface.LinearRing3D) ([]surface.Polygon3D, error) {
	if len(ring.Vertices) < 3 {
		return nil, fmt.Errorf("%w: ring has %d vertices", ErrTriangulationFailure, len(ring.Vertices))
	}

	// Planar rings need no triangulation at all.
	if ring.IsPlanar() {
		if p, err := surface.NewPolygon3D(ring.Vertices, ring.Tolerance); err == nil {
			return []surface.Polygon3D{p}, nil
		}
	}

	if polygons, err := t.projectedEarClipping(ring); err == nil {
		return reorient(ring, polygons), nil
	}

	if polygons, err := fanTriangulation(ring); err == nil {
		return reorient(ring, polygons), nil
	}

	return nil, fmt.Errorf("%w: all strategies failed for ring with %d vertices", ErrTriangulationFailure, len(ring.Vertices))
}

// reorient flips triangles whose normal deviates more than
// maxNormalDeviation from the outline's reference normal.
func reorient(ring surface.LinearRing3D, polygons []surface.Polygon3D) []surface.Polygon3D {
	reference, err := ring.Normal()
	if err != nil {
		return polygons
	}
	out := make([]surface.Polygon3D, 0, len(polygons))
	for _, p := range polygons {
		n, err := p.Normal()
		if err == nil && reference.AngleTo(n) > maxNormalDeviation {
			p = p.Reversed()
		}
		out = append(out, p)
	}
	return out
}

// projectedEarClipping projects the ring onto its best-fit plane, ear-clips
// the resulting 2D polygon, and lifts the triangles back by vertex index.
func (t *Triangulator) projectedEarClipping(ring surface.LinearRing3D) ([]surface.Polygon3D, error) {
	plane, err := surface.BestFitPlane(ring.Vertices, ring.Tolerance)
	if err != nil {
		return nil, err
	}
	// Build an orthonormal in-plane basis.
	var seed geomath.Vector3D
	if math.Abs(plane.Normal.X) <= math.Abs(plane.Normal.Y) && math.Abs(plane.Normal.X) <= math.Abs(plane.Normal.Z) {
		seed = geomath.Vector3D{X: 1}
	} else if math.Abs(plane.Normal.Y) <= math.Abs(plane.Normal.Z) {
		seed = geomath.Vector3D{Y: 1}
	} else {
		seed = geomath.Vector3D{Z: 1}
	}
	uAxis, err := plane.Normal.Cross(seed).Normalize()
	if err != nil {
		return nil, err
	}
	vAxis := plane.Normal.Cross(uAxis)

	if cap(t.scratch2D) < len(ring.Vertices) {
		t.scratch2D = make([]geomath.Vector2D, 0, len(ring.Vertices))
	}
	projected := t.scratch2D[:0]
	for _, p := range ring.Vertices {
		d := p.Sub(plane.Point)
		projected = append(projected, geomath.Vector2D{X: d.Dot(uAxis), Y: d.Dot(vAxis)})
	}
	t.scratch2D = projected

	triangles, err := earClip(projected)
	if err != nil {
		return nil, err
	}
	polygons := make([]surface.Polygon3D, 0, len(triangles))
	for _, tri := range triangles {
		p, err := surface.NewPolygon3D([]geomath.Vector3D{
			ring.Vertices[tri[0]], ring.Vertices[tri[1]], ring.Vertices[tri[2]],
		}, ring.Tolerance)
		if err != nil {
			// Colinear lift result counts as a strategy failure.
			return nil, err
		}
		polygons = append(polygons, p)
	}
	if len(polygons) == 0 {
		return nil, fmt.Errorf("projected ear clipping produced no triangles")
	}
	return polygons, nil
}

// earClip triangulates a simple 2D polygon into index triples.
func earClip(polygon []geomath.Vector2D) ([][3]int, error) {
	n := len(polygon)
	if n < 3 {
		return nil, fmt.Errorf("ear clipping requires at least 3 vertices, got %d", n)
	}
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	if signedArea(polygon) < 0 {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			indices[i], indices[j] = indices[j], indices[i]
		}
	}

	var triangles [][3]int
	guard := 0
	for len(indices) > 3 {
		clipped := false
		for i := 0; i < len(indices); i++ {
			prev := indices[(i+len(indices)-1)%len(indices)]
			cur := indices[i]
			next := indices[(i+1)%len(indices)]
			if !isEar(polygon, indices, prev, cur, next) {
				continue
			}
			triangles = append(triangles, [3]int{prev, cur, next})
			indices = append(indices[:i], indices[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			return nil, fmt.Errorf("no ear found; polygon is not simple")
		}
		guard++
		if guard > 4*n {
			return nil, fmt.Errorf("ear clipping did not terminate")
		}
	}
	triangles = append(triangles, [3]int{indices[0], indices[1], indices[2]})
	return triangles, nil
}

func signedArea(polygon []geomath.Vector2D) float64 {
	var a float64
	for i, p := range polygon {
		q := polygon[(i+1)%len(polygon)]
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2
}

func cross2(o, a, b geomath.Vector2D) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

func isEar(polygon []geomath.Vector2D, indices []int, prev, cur, next int) bool {
	a, b, c := polygon[prev], polygon[cur], polygon[next]
	if cross2(a, b, c) <= 0 {
		return false
	}
	for _, i := range indices {
		if i == prev || i == cur || i == next {
			continue
		}
		if pointInTriangle(polygon[i], a, b, c) {
			return false
		}
	}
	return true
}

func pointInTriangle(p, a, b, c geomath.Vector2D) bool {
	d1 := cross2(a, b, p)
	d2 := cross2(b, c, p)
	d3 := cross2(c, a, p)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

// fanTriangulation fans triangles from the first vertex. It rejects rings
// whose first vertex duplicates any other vertex.
func fanTriangulation(ring surface.LinearRing3D) ([]surface.Polygon3D, error) {
	first := ring.Vertices[0]
	for _, v := range ring.Vertices[1:] {
		if first.FuzzyEquals(v, ring.Tolerance) {
			return nil, fmt.Errorf("fan triangulation rejected: first vertex duplicated")
		}
	}
	var polygons []surface.Polygon3D
	for i := 1; i+1 < len(ring.Vertices); i++ {
		p, err := surface.NewPolygon3D([]geomath.Vector3D{first, ring.Vertices[i], ring.Vertices[i+1]}, ring.Tolerance)
		if err != nil {
			continue
		}
		polygons = append(polygons, p)
	}
	if len(polygons) == 0 {
		return nil, fmt.Errorf("fan triangulation produced no valid triangles")
	}
	return polygons, nil
}
