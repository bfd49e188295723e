package solid

import (
	"fmt"

	"github.com/tum-gis/rtron-sub004/internal/geomath"
	"github.com/tum-gis/rtron-sub004/internal/geometry/curve"
	"github.com/tum-gis/rtron-sub004/internal/geometry/surface"
	"github.com/tum-gis/rtron-sub004/internal/interval"
	"github.com/tum-gis/rtron-sub004/internal/mathfn"
	"github.com/tum-gis/rtron-sub004/internal/tessellation"
)

// ParametricSweep3D sweeps a varying rectangular cross-section along a
// reference curve. Width and height functions give the section size at each
// parameter; the optional absolute-height function lifts the section base in
// the moving frame. The boundary consists of side, top, base and two cap
// faces stitched from the four edge curves (lower/upper × left/right).
type ParametricSweep3D struct {
	Reference      curve.Curve3D
	Width, Height  mathfn.UnivariateFunction
	AbsoluteHeight mathfn.UnivariateFunction // optional base lift, may be nil
	Domain         interval.Range
	StepSize       float64
	Tolerance      float64
}

// NewParametricSweep3D validates and builds a sweep over the given parameter
// sub-range of the reference curve.
func NewParametricSweep3D(reference curve.Curve3D, width, height mathfn.UnivariateFunction, absoluteHeight mathfn.UnivariateFunction, domain interval.Range, stepSize, tolerance float64) (*ParametricSweep3D, error) {
	if reference == nil || width == nil || height == nil {
		return nil, fmt.Errorf("parametric sweep requires reference curve, width and height functions")
	}
	if domain.Length() < tolerance {
		return nil, fmt.Errorf("parametric sweep domain length %v below tolerance %v", domain.Length(), tolerance)
	}
	if stepSize <= 0 {
		return nil, fmt.Errorf("parametric sweep step size must be positive, got %v", stepSize)
	}
	return &ParametricSweep3D{
		Reference:      reference,
		Width:          width,
		Height:         height,
		AbsoluteHeight: absoluteHeight,
		Domain:         domain,
		StepSize:       stepSize,
		Tolerance:      tolerance,
	}, nil
}

// edgeVertices samples the four edge curves at shared parameters.
func (ps *ParametricSweep3D) edgeVertices() (lowerLeft, lowerRight, upperLeft, upperRight []geomath.Vector3D, err error) {
	params, err := ps.Domain.Arrange(ps.StepSize, true, ps.Tolerance)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	width := mathfn.NewFuzzyBounded(ps.Width, ps.Tolerance)
	height := mathfn.NewFuzzyBounded(ps.Height, ps.Tolerance)
	var base *mathfn.FuzzyBounded
	if ps.AbsoluteHeight != nil {
		base = mathfn.NewFuzzyBounded(ps.AbsoluteHeight, ps.Tolerance)
	}
	for _, s := range params {
		frame, err := ps.Reference.AffineAt(s)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		// Size functions are local to the sweep's sub-range.
		local := s - ps.Domain.Lower
		w, err := width.Value(local)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		h, err := height.Value(local)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		var z0 float64
		if base != nil {
			z0, err = base.Value(local)
			if err != nil {
				return nil, nil, nil, nil, err
			}
		}
		lowerLeft = append(lowerLeft, frame.TransformPoint(geomath.Vector3D{Y: w / 2, Z: z0}))
		lowerRight = append(lowerRight, frame.TransformPoint(geomath.Vector3D{Y: -w / 2, Z: z0}))
		upperLeft = append(upperLeft, frame.TransformPoint(geomath.Vector3D{Y: w / 2, Z: z0 + h}))
		upperRight = append(upperRight, frame.TransformPoint(geomath.Vector3D{Y: -w / 2, Z: z0 + h}))
	}
	return lowerLeft, lowerRight, upperLeft, upperRight, nil
}

// Polygons stitches and triangulates the sweep boundary.
func (ps *ParametricSweep3D) Polygons() ([]surface.Polygon3D, error) {
	ll, lr, ul, ur, err := ps.edgeVertices()
	if err != nil {
		return nil, err
	}
	if len(ll) < 2 {
		return nil, fmt.Errorf("parametric sweep sampled fewer than 2 sections")
	}
	triangulator := tessellation.NewTriangulator()
	var polygons []surface.Polygon3D

	addRing := func(name string, vertices []geomath.Vector3D) error {
		ring, err := surface.NewLinearRing3DWithDuplicatesRemoval(vertices, ps.Tolerance)
		if err != nil {
			// A degenerate face (zero width or height run) is skipped.
			return nil
		}
		faces, err := triangulator.Triangulate(ring)
		if err != nil {
			return fmt.Errorf("sweep %s face: %w", name, err)
		}
		polygons = append(polygons, faces...)
		return nil
	}

	last := len(ll) - 1
	// Quadrilateral strips along the sweep.
	for i := 0; i < last; i++ {
		strips := []struct {
			name       string
			a, b, c, d geomath.Vector3D
		}{
			{"base", ll[i], lr[i], lr[i+1], ll[i+1]},
			{"top", ul[i], ul[i+1], ur[i+1], ur[i]},
			{"left", ll[i], ll[i+1], ul[i+1], ul[i]},
			{"right", lr[i], ur[i], ur[i+1], lr[i+1]},
		}
		for _, st := range strips {
			if err := addRing(st.name, []geomath.Vector3D{st.a, st.b, st.c, st.d}); err != nil {
				return nil, err
			}
		}
	}
	// Caps.
	if err := addRing("start cap", []geomath.Vector3D{ll[0], ul[0], ur[0], lr[0]}); err != nil {
		return nil, err
	}
	if err := addRing("end cap", []geomath.Vector3D{ll[last], lr[last], ur[last], ul[last]}); err != nil {
		return nil, err
	}
	if len(polygons) == 0 {
		return nil, fmt.Errorf("parametric sweep degenerated to zero polygons")
	}
	return polygons, nil
}
