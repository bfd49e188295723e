package curve

import (
	"fmt"
	"math"

	"github.com/tum-gis/rtron-sub004/internal/geomath"
	"github.com/tum-gis/rtron-sub004/internal/interval"
	"github.com/tum-gis/rtron-sub004/internal/mathfn"
)

// Curve3D is a space curve parameterized by arc length s in [0, Length].
type Curve3D interface {
	// Length returns the curve length.
	Length() float64

	// PointAt returns the point at parameter s.
	PointAt(s float64) (geomath.Vector3D, error)

	// AffineAt returns the tangent frame at parameter s: the x-axis follows
	// the tangent, the z-axis is rolled about it by the curve torsion.
	AffineAt(s float64) (geomath.Affine3D, error)

	// PointList samples the curve at the given step, always including both
	// endpoints.
	PointList(stepSize float64) ([]geomath.Vector3D, error)
}

// RoadCurve3D lifts a plan-view curve into space with an elevation profile
// and a torsion (superelevation) profile. Both profiles are evaluated at the
// global parameter s; missing profiles default to zero.
type RoadCurve3D struct {
	planView  Curve2D
	elevation mathfn.UnivariateFunction
	torsion   mathfn.UnivariateFunction
	tolerance float64
}

// NewRoadCurve3D builds the 3D road curve. elevation and torsion may be nil.
func NewRoadCurve3D(planView Curve2D, elevation, torsion mathfn.UnivariateFunction, tolerance float64) (*RoadCurve3D, error) {
	if planView == nil {
		return nil, fmt.Errorf("road curve requires a plan view curve")
	}
	return &RoadCurve3D{
		planView:  planView,
		elevation: elevation,
		torsion:   torsion,
		tolerance: tolerance,
	}, nil
}

func (c *RoadCurve3D) Length() float64 { return c.planView.Length() }

func (c *RoadCurve3D) elevationAt(s float64) (z, slope float64, err error) {
	if c.elevation == nil {
		return 0, 0, nil
	}
	f := mathfn.NewFuzzyBounded(c.elevation, c.tolerance)
	z, err = f.Value(s)
	if err != nil {
		return 0, 0, err
	}
	slope, err = f.Slope(s)
	if err != nil {
		return 0, 0, err
	}
	return z, slope, nil
}

func (c *RoadCurve3D) torsionAt(s float64) (float64, error) {
	if c.torsion == nil {
		return 0, nil
	}
	return mathfn.NewFuzzyBounded(c.torsion, c.tolerance).Value(s)
}

func (c *RoadCurve3D) PointAt(s float64) (geomath.Vector3D, error) {
	p, err := c.planView.PointAt(s)
	if err != nil {
		return geomath.Vector3D{}, err
	}
	z, _, err := c.elevationAt(s)
	if err != nil {
		return geomath.Vector3D{}, err
	}
	return p.To3D(z), nil
}

func (c *RoadCurve3D) AffineAt(s float64) (geomath.Affine3D, error) {
	p, err := c.PointAt(s)
	if err != nil {
		return geomath.Affine3D{}, err
	}
	heading, err := c.planView.HeadingAt(s)
	if err != nil {
		return geomath.Affine3D{}, err
	}
	_, slope, err := c.elevationAt(s)
	if err != nil {
		return geomath.Affine3D{}, err
	}
	roll, err := c.torsionAt(s)
	if err != nil {
		return geomath.Affine3D{}, err
	}
	rotation, err := geomath.NewRotation3D(heading, math.Atan(-slope), roll)
	if err != nil {
		return geomath.Affine3D{}, err
	}
	return geomath.AffineFromPose(p, rotation), nil
}

func (c *RoadCurve3D) PointList(stepSize float64) ([]geomath.Vector3D, error) {
	return samplePoints(c, stepSize, c.tolerance)
}

// samplePoints arranges the parameter domain of any Curve3D and evaluates it.
func samplePoints(c Curve3D, stepSize, tolerance float64) ([]geomath.Vector3D, error) {
	domain, err := interval.NewRange(0, c.Length())
	if err != nil {
		return nil, err
	}
	params, err := domain.Arrange(stepSize, true, tolerance)
	if err != nil {
		return nil, err
	}
	points := make([]geomath.Vector3D, 0, len(params))
	for _, s := range params {
		p, err := c.PointAt(s)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

// LateralTranslatedCurve offsets a road curve laterally and vertically within
// the road curve's moving frame. It models lane boundaries: the lateral
// offset function gives the signed t coordinate, the height offset function
// an additional z in the rotated frame.
type LateralTranslatedCurve struct {
	road          *RoadCurve3D
	lateralOffset mathfn.UnivariateFunction
	heightOffset  mathfn.UnivariateFunction
	tolerance     float64
}

// NewLateralTranslatedCurve builds an offset curve over the road curve.
// heightOffset may be nil.
func NewLateralTranslatedCurve(road *RoadCurve3D, lateralOffset, heightOffset mathfn.UnivariateFunction, tolerance float64) (*LateralTranslatedCurve, error) {
	if road == nil || lateralOffset == nil {
		return nil, fmt.Errorf("lateral translated curve requires a road curve and a lateral offset function")
	}
	return &LateralTranslatedCurve{
		road:          road,
		lateralOffset: lateralOffset,
		heightOffset:  heightOffset,
		tolerance:     tolerance,
	}, nil
}

func (c *LateralTranslatedCurve) Length() float64 { return c.road.Length() }

func (c *LateralTranslatedCurve) offsetsAt(s float64) (t, h float64, err error) {
	t, err = mathfn.NewFuzzyBounded(c.lateralOffset, c.tolerance).Value(s)
	if err != nil {
		return 0, 0, err
	}
	if c.heightOffset != nil {
		h, err = mathfn.NewFuzzyBounded(c.heightOffset, c.tolerance).Value(s)
		if err != nil {
			return 0, 0, err
		}
	}
	return t, h, nil
}

func (c *LateralTranslatedCurve) PointAt(s float64) (geomath.Vector3D, error) {
	frame, err := c.road.AffineAt(s)
	if err != nil {
		return geomath.Vector3D{}, err
	}
	t, h, err := c.offsetsAt(s)
	if err != nil {
		return geomath.Vector3D{}, err
	}
	return frame.TransformPoint(geomath.Vector3D{Y: t, Z: h}), nil
}

func (c *LateralTranslatedCurve) AffineAt(s float64) (geomath.Affine3D, error) {
	frame, err := c.road.AffineAt(s)
	if err != nil {
		return geomath.Affine3D{}, err
	}
	t, h, err := c.offsetsAt(s)
	if err != nil {
		return geomath.Affine3D{}, err
	}
	return frame.Append(geomath.AffineFromTranslation(geomath.Vector3D{Y: t, Z: h})), nil
}

func (c *LateralTranslatedCurve) PointList(stepSize float64) ([]geomath.Vector3D, error) {
	return samplePoints(c, stepSize, c.tolerance)
}

// LineString samples any 3D curve into a polyline with consecutive
// duplicates removed. Fails if fewer than two distinct points remain.
func LineString(c Curve3D, stepSize, tolerance float64) ([]geomath.Vector3D, error) {
	points, err := samplePoints(c, stepSize, tolerance)
	if err != nil {
		return nil, err
	}
	points = geomath.RemoveConsecutiveDuplicates(points, tolerance)
	if len(points) < 2 {
		return nil, fmt.Errorf("line string degenerates to fewer than two distinct points")
	}
	return points, nil
}
