// Package curve provides the parametric curves of the road reference line:
// plan-view primitives in 2D, their composition along s, and the 3D road
// curve with elevation and torsion.
package curve

import (
	"fmt"
	"math"

	"github.com/tum-gis/rtron-sub004/internal/geomath"
)

// ErrOutOfRange is wrapped by evaluations with a parameter outside
// [0, length] plus tolerance.
var ErrOutOfRange = fmt.Errorf("curve parameter out of range")

// Curve2D is a planar curve parameterized by arc length s in [0, Length].
type Curve2D interface {
	// Length returns the curve length.
	Length() float64

	// PointAt returns the point at parameter s.
	PointAt(s float64) (geomath.Vector2D, error)

	// HeadingAt returns the tangent direction angle at parameter s.
	HeadingAt(s float64) (float64, error)
}

// checkParam clamps s into [0, length] if it lies within tolerance of the
// domain, and fails otherwise.
func checkParam(s, length, tolerance float64) (float64, error) {
	if math.IsNaN(s) || s < -tolerance || s > length+tolerance {
		return 0, fmt.Errorf("%w: s=%v not in [0, %v] with tolerance %v", ErrOutOfRange, s, length, tolerance)
	}
	return math.Max(0, math.Min(length, s)), nil
}

// LineSegment2D is a straight segment along the local x-axis, placed by pose.
type LineSegment2D struct {
	length    float64
	tolerance float64
	pose      geomath.Affine2D
}

// NewLineSegment2D builds a straight segment of the given length. The pose
// places the local frame (start point and direction) in global coordinates.
func NewLineSegment2D(length float64, pose geomath.Affine2D, tolerance float64) (*LineSegment2D, error) {
	if !(length >= tolerance) {
		return nil, fmt.Errorf("line segment length %v below tolerance %v", length, tolerance)
	}
	return &LineSegment2D{length: length, tolerance: tolerance, pose: pose}, nil
}

func (c *LineSegment2D) Length() float64 { return c.length }

func (c *LineSegment2D) PointAt(s float64) (geomath.Vector2D, error) {
	s, err := checkParam(s, c.length, c.tolerance)
	if err != nil {
		return geomath.Vector2D{}, err
	}
	return c.pose.TransformPoint(geomath.Vector2D{X: s}), nil
}

func (c *LineSegment2D) HeadingAt(s float64) (float64, error) {
	if _, err := checkParam(s, c.length, c.tolerance); err != nil {
		return 0, err
	}
	return c.pose.ExtractRotationAngle(), nil
}

// Arc2D is a circular arc of constant curvature, starting at the local origin
// heading along local +x. Positive curvature turns left.
type Arc2D struct {
	curvature float64
	length    float64
	tolerance float64
	pose      geomath.Affine2D
}

// NewArc2D builds an arc with the given constant curvature and length.
func NewArc2D(curvature, length float64, pose geomath.Affine2D, tolerance float64) (*Arc2D, error) {
	if !(length >= tolerance) {
		return nil, fmt.Errorf("arc length %v below tolerance %v", length, tolerance)
	}
	if curvature == 0 || math.IsNaN(curvature) || math.IsInf(curvature, 0) {
		return nil, fmt.Errorf("arc curvature must be finite and non-zero, got %v", curvature)
	}
	return &Arc2D{curvature: curvature, length: length, tolerance: tolerance, pose: pose}, nil
}

func (c *Arc2D) Length() float64 { return c.length }

func (c *Arc2D) PointAt(s float64) (geomath.Vector2D, error) {
	s, err := checkParam(s, c.length, c.tolerance)
	if err != nil {
		return geomath.Vector2D{}, err
	}
	// Unit-radius arc scaled by 1/curvature: centre sits at (0, 1/κ).
	r := 1 / c.curvature
	phi := s * c.curvature
	local := geomath.Vector2D{X: r * math.Sin(phi), Y: r * (1 - math.Cos(phi))}
	return c.pose.TransformPoint(local), nil
}

func (c *Arc2D) HeadingAt(s float64) (float64, error) {
	s, err := checkParam(s, c.length, c.tolerance)
	if err != nil {
		return 0, err
	}
	return geomath.NormalizeAngle(c.pose.ExtractRotationAngle() + s*c.curvature), nil
}

// Spiral2D is an Euler spiral (clothoid) with curvature varying linearly
// along arc length at rate curvatureRate. The segment may start at non-zero
// curvature: paramOffset shifts the segment along the canonical clothoid,
// and the pose places the shifted start point at the local origin heading
// along local +x.
type Spiral2D struct {
	curvatureRate float64
	length        float64
	paramOffset   float64
	tolerance     float64
	// rebase maps canonical clothoid coordinates into the global frame so
	// that the canonical point at paramOffset lands on the pose origin.
	rebase geomath.Affine2D
}

// NewSpiral2D builds a clothoid segment starting at zero curvature.
func NewSpiral2D(curvatureRate, length float64, pose geomath.Affine2D, tolerance float64) (*Spiral2D, error) {
	return NewSpiral2DWithStartCurvature(curvatureRate, 0, length, pose, tolerance)
}

// NewSpiral2DWithStartCurvature builds a clothoid segment whose curvature at
// s=0 is startCurvature and changes at curvatureRate per unit length.
func NewSpiral2DWithStartCurvature(curvatureRate, startCurvature, length float64, pose geomath.Affine2D, tolerance float64) (*Spiral2D, error) {
	if !(length >= tolerance) {
		return nil, fmt.Errorf("spiral length %v below tolerance %v", length, tolerance)
	}
	if curvatureRate == 0 || math.IsNaN(curvatureRate) || math.IsInf(curvatureRate, 0) {
		return nil, fmt.Errorf("spiral curvature rate must be finite and non-zero, got %v", curvatureRate)
	}
	c := &Spiral2D{
		curvatureRate: curvatureRate,
		length:        length,
		paramOffset:   startCurvature / curvatureRate,
		tolerance:     tolerance,
		rebase:        pose,
	}
	if c.paramOffset != 0 {
		startFrame := geomath.Affine2DFromPose(c.localPoint(c.paramOffset), c.localHeading(c.paramOffset))
		inverse, err := startFrame.Inverse()
		if err != nil {
			return nil, fmt.Errorf("spiral start frame not invertible: %w", err)
		}
		c.rebase = pose.Append(inverse)
	}
	return c, nil
}

func (c *Spiral2D) Length() float64 { return c.length }

// localPoint evaluates the clothoid at arc length l (may exceed [0, length]
// for asymptotic evaluation). With a = √(π/|cDot|), the spiral point is
// a·(C(l/a), ±S(l/a)) in the normalized Fresnel convention.
func (c *Spiral2D) localPoint(l float64) geomath.Vector2D {
	a := math.Sqrt(math.Pi / math.Abs(c.curvatureRate))
	cf, sf := geomath.Fresnel(l / a)
	y := sf
	if c.curvatureRate < 0 {
		y = -sf
	}
	return geomath.Vector2D{X: a * cf, Y: a * y}
}

// localHeading is the canonical clothoid tangent angle θ(l) = cDot·l²/2.
func (c *Spiral2D) localHeading(l float64) float64 {
	return c.curvatureRate * l * l / 2
}

func (c *Spiral2D) PointAt(s float64) (geomath.Vector2D, error) {
	s, err := checkParam(s, c.length, c.tolerance)
	if err != nil {
		return geomath.Vector2D{}, err
	}
	return c.rebase.TransformPoint(c.localPoint(c.paramOffset + s)), nil
}

// AsymptoticPoint returns the local-frame limit point for l → ±∞.
func (c *Spiral2D) AsymptoticPoint(positive bool) geomath.Vector2D {
	a := math.Sqrt(math.Pi / math.Abs(c.curvatureRate))
	sign := 1.0
	if !positive {
		sign = -1
	}
	y := sign * a / 2
	if c.curvatureRate < 0 {
		y = -y
	}
	return geomath.Vector2D{X: sign * a / 2, Y: y}
}

func (c *Spiral2D) HeadingAt(s float64) (float64, error) {
	s, err := checkParam(s, c.length, c.tolerance)
	if err != nil {
		return 0, err
	}
	return geomath.NormalizeAngle(c.rebase.ExtractRotationAngle() + c.localHeading(c.paramOffset+s)), nil
}

// CubicPolynomial2D evaluates v(u) = a + b·u + c·u² + d·u³ as a lateral
// offset along the local x-axis; the curve parameter is approximated by u.
type CubicPolynomial2D struct {
	coefficients [4]float64
	length       float64
	tolerance    float64
	pose         geomath.Affine2D
}

// NewCubicPolynomial2D builds the lateral cubic v(u) over u in [0, length].
func NewCubicPolynomial2D(coefficients [4]float64, length float64, pose geomath.Affine2D, tolerance float64) (*CubicPolynomial2D, error) {
	if !(length >= tolerance) {
		return nil, fmt.Errorf("cubic polynomial length %v below tolerance %v", length, tolerance)
	}
	for i, v := range coefficients {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("cubic polynomial coefficient %d must be finite, got %v", i, v)
		}
	}
	return &CubicPolynomial2D{coefficients: coefficients, length: length, tolerance: tolerance, pose: pose}, nil
}

func (c *CubicPolynomial2D) Length() float64 { return c.length }

func (c *CubicPolynomial2D) polyAt(u float64) (v, dv float64) {
	a, b, cc, d := c.coefficients[0], c.coefficients[1], c.coefficients[2], c.coefficients[3]
	return a + u*(b+u*(cc+u*d)), b + u*(2*cc+u*3*d)
}

func (c *CubicPolynomial2D) PointAt(s float64) (geomath.Vector2D, error) {
	u, err := checkParam(s, c.length, c.tolerance)
	if err != nil {
		return geomath.Vector2D{}, err
	}
	v, _ := c.polyAt(u)
	return c.pose.TransformPoint(geomath.Vector2D{X: u, Y: v}), nil
}

func (c *CubicPolynomial2D) HeadingAt(s float64) (float64, error) {
	u, err := checkParam(s, c.length, c.tolerance)
	if err != nil {
		return 0, err
	}
	_, dv := c.polyAt(u)
	return geomath.NormalizeAngle(c.pose.ExtractRotationAngle() + math.Atan(dv)), nil
}

// ParamRange selects the parameter convention of a parametric cubic.
type ParamRange int

const (
	// ParamRangeArcLength evaluates p over [0, length].
	ParamRangeArcLength ParamRange = iota
	// ParamRangeNormalized evaluates p over [0, 1].
	ParamRangeNormalized
)

// ParametricCubic2D evaluates two cubics u(p) and v(p) in the local frame.
type ParametricCubic2D struct {
	coefficientsU [4]float64
	coefficientsV [4]float64
	paramRange    ParamRange
	length        float64
	tolerance     float64
	pose          geomath.Affine2D
}

// NewParametricCubic2D builds the parametric cubic (u(p), v(p)).
func NewParametricCubic2D(coefficientsU, coefficientsV [4]float64, paramRange ParamRange, length float64, pose geomath.Affine2D, tolerance float64) (*ParametricCubic2D, error) {
	if !(length >= tolerance) {
		return nil, fmt.Errorf("parametric cubic length %v below tolerance %v", length, tolerance)
	}
	for i := 0; i < 4; i++ {
		if !geomath.FuzzyEquals(coefficientsU[i], coefficientsU[i], 0) || !geomath.FuzzyEquals(coefficientsV[i], coefficientsV[i], 0) {
			return nil, fmt.Errorf("parametric cubic coefficient %d is NaN", i)
		}
		if math.IsInf(coefficientsU[i], 0) || math.IsInf(coefficientsV[i], 0) {
			return nil, fmt.Errorf("parametric cubic coefficient %d must be finite", i)
		}
	}
	return &ParametricCubic2D{
		coefficientsU: coefficientsU,
		coefficientsV: coefficientsV,
		paramRange:    paramRange,
		length:        length,
		tolerance:     tolerance,
		pose:          pose,
	}, nil
}

func (c *ParametricCubic2D) Length() float64 { return c.length }

func (c *ParametricCubic2D) param(s float64) float64 {
	if c.paramRange == ParamRangeNormalized {
		return s / c.length
	}
	return s
}

func cubicAt(co [4]float64, p float64) (v, dv float64) {
	return co[0] + p*(co[1]+p*(co[2]+p*co[3])), co[1] + p*(2*co[2]+p*3*co[3])
}

func (c *ParametricCubic2D) PointAt(s float64) (geomath.Vector2D, error) {
	s, err := checkParam(s, c.length, c.tolerance)
	if err != nil {
		return geomath.Vector2D{}, err
	}
	p := c.param(s)
	u, _ := cubicAt(c.coefficientsU, p)
	v, _ := cubicAt(c.coefficientsV, p)
	return c.pose.TransformPoint(geomath.Vector2D{X: u, Y: v}), nil
}

func (c *ParametricCubic2D) HeadingAt(s float64) (float64, error) {
	s, err := checkParam(s, c.length, c.tolerance)
	if err != nil {
		return 0, err
	}
	p := c.param(s)
	_, du := cubicAt(c.coefficientsU, p)
	_, dv := cubicAt(c.coefficientsV, p)
	if du == 0 && dv == 0 {
		return c.pose.ExtractRotationAngle(), nil
	}
	return geomath.NormalizeAngle(c.pose.ExtractRotationAngle() + math.Atan2(dv, du)), nil
}
