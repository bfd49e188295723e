package surface

import (
	"fmt"

	"github.com/tum-gis/rtron-sub004/internal/geomath"
)

// LinearRing3D is an ordered cycle of at least three distinct vertices. The
// ring is not required to be planar; triangulation turns it into polygons.
type LinearRing3D struct {
	Vertices  []geomath.Vector3D
	Tolerance float64
}

// NewLinearRing3D validates and builds a ring. The vertex list must not
// repeat the first vertex at the end.
func NewLinearRing3D(vertices []geomath.Vector3D, tolerance float64) (LinearRing3D, error) {
	if len(vertices) < 3 {
		return LinearRing3D{}, fmt.Errorf("linear ring requires at least 3 vertices, got %d", len(vertices))
	}
	for _, v := range vertices {
		if !v.IsFinite() {
			return LinearRing3D{}, fmt.Errorf("linear ring vertex must be finite, got %+v", v)
		}
	}
	cp := make([]geomath.Vector3D, len(vertices))
	copy(cp, vertices)
	return LinearRing3D{Vertices: cp, Tolerance: tolerance}, nil
}

// NewLinearRing3DWithDuplicatesRemoval drops consecutive fuzzy duplicates
// (including a closing vertex equal to the first) before validation.
func NewLinearRing3DWithDuplicatesRemoval(vertices []geomath.Vector3D, tolerance float64) (LinearRing3D, error) {
	cleaned := geomath.RemoveConsecutiveDuplicates(vertices, tolerance)
	if len(cleaned) > 1 && cleaned[0].FuzzyEquals(cleaned[len(cleaned)-1], tolerance) {
		cleaned = cleaned[:len(cleaned)-1]
	}
	return NewLinearRing3D(cleaned, tolerance)
}

// IsPlanar reports whether the ring vertices are fuzzy-coplanar.
func (r LinearRing3D) IsPlanar() bool {
	return IsPlanar(r.Vertices, r.Tolerance)
}

// Normal returns the ring's reference normal by Newell's method.
func (r LinearRing3D) Normal() (geomath.Vector3D, error) {
	return NewellNormal(r.Vertices).Normalize()
}

// Transform returns the ring with every vertex transformed.
func (r LinearRing3D) Transform(a geomath.Affine3D) LinearRing3D {
	return LinearRing3D{Vertices: a.TransformPoints(r.Vertices), Tolerance: r.Tolerance}
}
