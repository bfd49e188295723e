package surface

import (
	"fmt"

	"github.com/tum-gis/rtron-sub004/internal/geomath"
	"github.com/tum-gis/rtron-sub004/internal/geometry/curve"
	"github.com/tum-gis/rtron-sub004/internal/interval"
)

// PolygonizeQuad turns a 4-corner discretization cell into polygons. A cell
// whose corners all coincide within tolerance is dropped (nil result); a
// twisted (non-planar) cell is split along its diagonal into two triangles.
func PolygonizeQuad(a, b, c, d geomath.Vector3D, tolerance float64) []Polygon3D {
	if a.FuzzyEquals(b, tolerance) && a.FuzzyEquals(c, tolerance) && a.FuzzyEquals(d, tolerance) {
		return nil
	}
	if quad, err := NewPolygon3D([]geomath.Vector3D{a, b, c, d}, tolerance); err == nil {
		return []Polygon3D{quad}
	}
	var out []Polygon3D
	if t1, err := NewPolygon3D([]geomath.Vector3D{a, b, c}, tolerance); err == nil {
		out = append(out, t1)
	}
	if t2, err := NewPolygon3D([]geomath.Vector3D{a, c, d}, tolerance); err == nil {
		out = append(out, t2)
	}
	return out
}

// ParametricBoundedSurface is the ruled surface spanned between an inner and
// an outer boundary curve over an s-interval. The lateral parameter t in
// [0, 1] interpolates linearly between the boundary points at each s.
type ParametricBoundedSurface struct {
	Inner, Outer curve.Curve3D
	Domain       interval.Range
	Tolerance    float64
}

// NewParametricBoundedSurface builds the surface between the two boundary
// curves over the given parameter interval.
func NewParametricBoundedSurface(inner, outer curve.Curve3D, domain interval.Range, tolerance float64) (*ParametricBoundedSurface, error) {
	if inner == nil || outer == nil {
		return nil, fmt.Errorf("parametric bounded surface requires two boundary curves")
	}
	if domain.Length() < tolerance {
		return nil, fmt.Errorf("parametric bounded surface domain length %v below tolerance %v", domain.Length(), tolerance)
	}
	return &ParametricBoundedSurface{Inner: inner, Outer: outer, Domain: domain, Tolerance: tolerance}, nil
}

// PointAt evaluates the surface at (s, t) with t in [0, 1].
func (ps *ParametricBoundedSurface) PointAt(s, t float64) (geomath.Vector3D, error) {
	in, err := ps.Inner.PointAt(s)
	if err != nil {
		return geomath.Vector3D{}, err
	}
	out, err := ps.Outer.PointAt(s)
	if err != nil {
		return geomath.Vector3D{}, err
	}
	return in.Add(out.Sub(in).Scale(t)), nil
}

// boundaries samples both boundary curves at the same parameters.
func (ps *ParametricBoundedSurface) boundaries(stepSize float64) (inner, outer []geomath.Vector3D, err error) {
	params, err := ps.Domain.Arrange(stepSize, true, ps.Tolerance)
	if err != nil {
		return nil, nil, err
	}
	inner = make([]geomath.Vector3D, 0, len(params))
	outer = make([]geomath.Vector3D, 0, len(params))
	for _, s := range params {
		in, err := ps.Inner.PointAt(s)
		if err != nil {
			return nil, nil, err
		}
		out, err := ps.Outer.PointAt(s)
		if err != nil {
			return nil, nil, err
		}
		inner = append(inner, in)
		outer = append(outer, out)
	}
	return inner, outer, nil
}

// Polygonize discretizes the surface at the given step into cell polygons.
// Degenerate cells are dropped; fails only if no cell survives.
func (ps *ParametricBoundedSurface) Polygonize(stepSize float64) ([]Polygon3D, error) {
	inner, outer, err := ps.boundaries(stepSize)
	if err != nil {
		return nil, err
	}
	polygons, err := RuledSurface(inner, outer, ps.Tolerance)
	if err != nil {
		return nil, fmt.Errorf("parametric bounded surface over [%v, %v]: %w", ps.Domain.Lower, ps.Domain.Upper, err)
	}
	return polygons, nil
}

// RuledSurface stitches two polylines of equal length into cell polygons,
// one cell per sample pair. Cells with no area are dropped silently; fails
// if the polylines mismatch in length or every cell degenerates.
func RuledSurface(left, right []geomath.Vector3D, tolerance float64) ([]Polygon3D, error) {
	if len(left) != len(right) {
		return nil, fmt.Errorf("ruled surface requires polylines of equal length, got %d and %d", len(left), len(right))
	}
	if len(left) < 2 {
		return nil, fmt.Errorf("ruled surface requires at least 2 sample pairs, got %d", len(left))
	}
	var polygons []Polygon3D
	for i := 0; i+1 < len(left); i++ {
		cell := PolygonizeQuad(left[i], left[i+1], right[i+1], right[i], tolerance)
		polygons = append(polygons, cell...)
	}
	if len(polygons) == 0 {
		return nil, fmt.Errorf("ruled surface degenerated to zero polygons")
	}
	return polygons, nil
}
