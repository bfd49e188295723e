// Package surface provides planar polygons, linear rings and the parametric
// ruled surfaces spanned between boundary curves.
package surface

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/tum-gis/rtron-sub004/internal/geomath"
)

// NewellNormal computes the outline normal of a vertex cycle by Newell's
// method. The result is not normalized; it is zero for degenerate outlines.
func NewellNormal(vertices []geomath.Vector3D) geomath.Vector3D {
	var n geomath.Vector3D
	for i, cur := range vertices {
		next := vertices[(i+1)%len(vertices)]
		n.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		n.Y += (cur.Z - next.Z) * (cur.X + next.X)
		n.Z += (cur.X - next.X) * (cur.Y + next.Y)
	}
	return n
}

// IsColinear reports whether all points lie on a single line within
// tolerance, meaning the dimension of their span is below 2.
func IsColinear(points []geomath.Vector3D, tolerance float64) bool {
	if len(points) < 3 {
		return true
	}
	base := points[0]
	var dir geomath.Vector3D
	for _, p := range points[1:] {
		d := p.Sub(base)
		if d.Norm() > tolerance {
			dir = d
			break
		}
	}
	if dir.Norm() <= tolerance {
		return true
	}
	unit, err := dir.Normalize()
	if err != nil {
		return true
	}
	for _, p := range points[1:] {
		d := p.Sub(base)
		// Distance of p from the line through base with direction unit.
		if d.Cross(unit).Norm() > tolerance {
			return false
		}
	}
	return true
}

// Plane3D is a plane given by a point and a unit normal.
type Plane3D struct {
	Point  geomath.Vector3D
	Normal geomath.Vector3D
}

// DistanceTo returns the unsigned distance of p from the plane.
func (pl Plane3D) DistanceTo(p geomath.Vector3D) float64 {
	return math.Abs(p.Sub(pl.Point).Dot(pl.Normal))
}

// BestFitPlane computes the least-squares plane through the points. The
// normal is the left singular vector of the centered coordinate matrix with
// the smallest singular value. Fails for fewer than three points or a
// degenerate (colinear) configuration.
func BestFitPlane(points []geomath.Vector3D, tolerance float64) (Plane3D, error) {
	if len(points) < 3 {
		return Plane3D{}, fmt.Errorf("best fit plane requires at least 3 points, got %d", len(points))
	}
	if IsColinear(points, tolerance) {
		return Plane3D{}, fmt.Errorf("best fit plane undefined for colinear points")
	}
	var cx, cy, cz float64
	for _, p := range points {
		cx += p.X
		cy += p.Y
		cz += p.Z
	}
	n := float64(len(points))
	centroid := geomath.Vector3D{X: cx / n, Y: cy / n, Z: cz / n}

	m := mat.NewDense(3, len(points), nil)
	for j, p := range points {
		d := p.Sub(centroid)
		m.Set(0, j, d.X)
		m.Set(1, j, d.Y)
		m.Set(2, j, d.Z)
	}
	var svd mat.SVD
	if !svd.Factorize(m, mat.SVDThinU) {
		return Plane3D{}, fmt.Errorf("SVD factorization failed for best fit plane")
	}
	var u mat.Dense
	svd.UTo(&u)
	normal := geomath.Vector3D{X: u.At(0, 2), Y: u.At(1, 2), Z: u.At(2, 2)}
	unit, err := normal.Normalize()
	if err != nil {
		return Plane3D{}, fmt.Errorf("degenerate best fit plane normal: %w", err)
	}
	return Plane3D{Point: centroid, Normal: unit}, nil
}

// planarityEpsilon floors the planarity tolerance so rounding noise in the
// plane fit does not reject exactly planar inputs at zero tolerance.
const planarityEpsilon = 1e-10

// IsPlanar reports whether all points lie within tolerance of their best-fit
// plane.
func IsPlanar(points []geomath.Vector3D, tolerance float64) bool {
	if len(points) <= 3 {
		return true
	}
	plane, err := BestFitPlane(points, tolerance)
	if err != nil {
		return false
	}
	limit := math.Max(tolerance, planarityEpsilon)
	for _, p := range points {
		if plane.DistanceTo(p) > limit {
			return false
		}
	}
	return true
}

// Polygon3D is a planar polygon with at least three fuzzy-unique,
// fuzzy-coplanar vertices.
type Polygon3D struct {
	Vertices  []geomath.Vector3D
	Tolerance float64
}

// NewPolygon3D validates and builds a polygon.
func NewPolygon3D(vertices []geomath.Vector3D, tolerance float64) (Polygon3D, error) {
	cleaned := geomath.RemoveConsecutiveDuplicates(vertices, tolerance)
	if len(cleaned) > 1 && cleaned[0].FuzzyEquals(cleaned[len(cleaned)-1], tolerance) {
		cleaned = cleaned[:len(cleaned)-1]
	}
	if len(cleaned) < 3 {
		return Polygon3D{}, fmt.Errorf("polygon requires at least 3 distinct vertices, got %d", len(cleaned))
	}
	for _, v := range cleaned {
		if !v.IsFinite() {
			return Polygon3D{}, fmt.Errorf("polygon vertex must be finite, got %+v", v)
		}
	}
	if IsColinear(cleaned, tolerance) {
		return Polygon3D{}, fmt.Errorf("polygon vertices are colinear")
	}
	if !IsPlanar(cleaned, tolerance) {
		return Polygon3D{}, fmt.Errorf("polygon vertices are not coplanar within tolerance %v", tolerance)
	}
	return Polygon3D{Vertices: cleaned, Tolerance: tolerance}, nil
}

// Normal returns the unit normal by Newell's method.
func (p Polygon3D) Normal() (geomath.Vector3D, error) {
	return NewellNormal(p.Vertices).Normalize()
}

// Area returns the polygon area.
func (p Polygon3D) Area() float64 {
	return NewellNormal(p.Vertices).Norm() / 2
}

// Centroid returns the vertex mean.
func (p Polygon3D) Centroid() geomath.Vector3D {
	var c geomath.Vector3D
	for _, v := range p.Vertices {
		c = c.Add(v)
	}
	return c.Scale(1 / float64(len(p.Vertices)))
}

// Reversed returns the polygon with opposite orientation.
func (p Polygon3D) Reversed() Polygon3D {
	out := make([]geomath.Vector3D, len(p.Vertices))
	for i, v := range p.Vertices {
		out[len(out)-1-i] = v
	}
	return Polygon3D{Vertices: out, Tolerance: p.Tolerance}
}

// Transform returns the polygon with every vertex transformed.
func (p Polygon3D) Transform(a geomath.Affine3D) Polygon3D {
	return Polygon3D{Vertices: a.TransformPoints(p.Vertices), Tolerance: p.Tolerance}
}

// Surface3D yields a boundary polygonization.
type Surface3D interface {
	// Polygons returns a non-empty list of planar polygons.
	Polygons() ([]Polygon3D, error)
}

// Polygons returns the polygon itself.
func (p Polygon3D) Polygons() ([]Polygon3D, error) { return []Polygon3D{p}, nil }
