package curve

import (
	"math"
	"testing"

	"github.com/tum-gis/rtron-sub004/internal/geomath"
	"github.com/tum-gis/rtron-sub004/internal/interval"
	"github.com/tum-gis/rtron-sub004/internal/mathfn"
	"github.com/tum-gis/rtron-sub004/internal/testutil"
)

const testTolerance = 1e-7

func TestLineSegment2D_PointAndHeading(t *testing.T) {
	pose := geomath.Affine2DFromPose(geomath.Vector2D{X: 1, Y: 2}, math.Pi/2)
	line, err := NewLineSegment2D(4, pose, testTolerance)
	if err != nil {
		t.Fatal(err)
	}
	p, err := line.PointAt(4)
	if err != nil {
		t.Fatal(err)
	}
	if !p.FuzzyEquals(geomath.Vector2D{X: 1, Y: 6}, 1e-9) {
		t.Errorf("end point = %+v, want (1, 6)", p)
	}
	if _, err := line.PointAt(5); err == nil {
		t.Error("expected out-of-range error")
	}
}

func TestCompositeCurve2D_LineArcContinuity(t *testing.T) {
	// Straight segment of length 10 followed by a left-turning unit arc of
	// length π: pointAt(10) = (10, 0), pointAt(10+π) = (10, 2).
	linePose := geomath.Affine2DFromPose(geomath.Vector2D{}, 0)
	line, err := NewLineSegment2D(10, linePose, testTolerance)
	if err != nil {
		t.Fatal(err)
	}
	arcPose := geomath.Affine2DFromPose(geomath.Vector2D{X: 10, Y: 0}, 0)
	arc, err := NewArc2D(1, math.Pi, arcPose, testTolerance)
	if err != nil {
		t.Fatal(err)
	}
	composite, err := NewCompositeCurve2D([]Curve2D{line, arc}, testTolerance)
	if err != nil {
		t.Fatal(err)
	}

	if got := composite.Length(); math.Abs(got-(10+math.Pi)) > 1e-12 {
		t.Errorf("length = %v, want %v", got, 10+math.Pi)
	}
	p, err := composite.PointAt(10)
	if err != nil {
		t.Fatal(err)
	}
	if !p.FuzzyEquals(geomath.Vector2D{X: 10, Y: 0}, 1e-9) {
		t.Errorf("pointAt(10) = %+v, want (10, 0)", p)
	}
	p, err = composite.PointAt(10 + math.Pi)
	if err != nil {
		t.Fatal(err)
	}
	if !p.FuzzyEquals(geomath.Vector2D{X: 10, Y: 2}, 1e-9) {
		t.Errorf("pointAt(10+π) = %+v, want (10, 2)", p)
	}

	// Segment endpoints are continuous.
	end, err := line.PointAt(line.Length())
	if err != nil {
		t.Fatal(err)
	}
	start, err := arc.PointAt(0)
	if err != nil {
		t.Fatal(err)
	}
	if end.DistanceTo(start) > 1e-9 {
		t.Errorf("segments disconnected by %v", end.DistanceTo(start))
	}
}

func TestCompositeCurve2D_CoveredRangesJoin(t *testing.T) {
	line1, err := NewLineSegment2D(4, geomath.Affine2DFromPose(geomath.Vector2D{}, 0), testTolerance)
	if err != nil {
		t.Fatal(err)
	}
	line2, err := NewLineSegment2D(6, geomath.Affine2DFromPose(geomath.Vector2D{X: 4}, 0), testTolerance)
	if err != nil {
		t.Fatal(err)
	}
	composite, err := NewCompositeCurve2D([]Curve2D{line1, line2}, testTolerance)
	if err != nil {
		t.Fatal(err)
	}
	covered := composite.CoveredRanges()
	ranges := covered.Ranges()
	if len(ranges) != 1 {
		t.Fatalf("covered ranges = %d, want 1 joined range", len(ranges))
	}
	span, err := covered.Span()
	if err != nil {
		t.Fatal(err)
	}
	if !span.FuzzyEquals(interval.MustRange(0, 10), 1e-12) {
		t.Errorf("span = [%v, %v], want [0, 10]", span.Lower, span.Upper)
	}
}

func TestSpiral2D_Asymptotics(t *testing.T) {
	// With curvature rate π the clothoid's characteristic length is 1 and
	// the asymptotic points are (±0.5, ±0.5).
	spiral, err := NewSpiral2D(math.Pi, 1000, geomath.IdentityAffine2D(), testTolerance)
	if err != nil {
		t.Fatal(err)
	}
	limit := spiral.AsymptoticPoint(true)
	if !limit.FuzzyEquals(geomath.Vector2D{X: 0.5, Y: 0.5}, 1e-12) {
		t.Errorf("positive asymptote = %+v, want (0.5, 0.5)", limit)
	}
	limit = spiral.AsymptoticPoint(false)
	if !limit.FuzzyEquals(geomath.Vector2D{X: -0.5, Y: -0.5}, 1e-12) {
		t.Errorf("negative asymptote = %+v, want (-0.5, -0.5)", limit)
	}
	// A distant sample converges toward the limit point.
	p, err := spiral.PointAt(900)
	if err != nil {
		t.Fatal(err)
	}
	if !p.FuzzyEquals(geomath.Vector2D{X: 0.5, Y: 0.5}, 1e-1) {
		t.Errorf("pointAt(900) = %+v, want near (0.5, 0.5)", p)
	}
}

func TestSpiral2D_StartsAtOriginWithZeroHeading(t *testing.T) {
	spiral, err := NewSpiral2D(0.05, 30, geomath.IdentityAffine2D(), testTolerance)
	if err != nil {
		t.Fatal(err)
	}
	p, err := spiral.PointAt(0)
	if err != nil {
		t.Fatal(err)
	}
	if !p.FuzzyEquals(geomath.Vector2D{}, 1e-12) {
		t.Errorf("start point = %+v, want origin", p)
	}
	h, err := spiral.HeadingAt(0)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(h) > 1e-12 {
		t.Errorf("start heading = %v, want 0", h)
	}
}

func TestSpiral2D_WithStartCurvatureMatchesPose(t *testing.T) {
	pose := geomath.Affine2DFromPose(geomath.Vector2D{X: 3, Y: -1}, 0.4)
	spiral, err := NewSpiral2DWithStartCurvature(0.01, 0.02, 50, pose, testTolerance)
	if err != nil {
		t.Fatal(err)
	}
	p, err := spiral.PointAt(0)
	if err != nil {
		t.Fatal(err)
	}
	if !p.FuzzyEquals(geomath.Vector2D{X: 3, Y: -1}, 1e-9) {
		t.Errorf("start point = %+v, want (3, -1)", p)
	}
	h, err := spiral.HeadingAt(0)
	if err != nil {
		t.Fatal(err)
	}
	if geomath.AngleDifference(h, 0.4) > 1e-9 {
		t.Errorf("start heading = %v, want 0.4", h)
	}
}

func TestRoadCurve3D_AffineTranslationMatchesPoint(t *testing.T) {
	linePose := geomath.Affine2DFromPose(geomath.Vector2D{}, 0.3)
	line, err := NewLineSegment2D(20, linePose, testTolerance)
	if err != nil {
		t.Fatal(err)
	}
	elevation, err := mathfn.NewPolynomial([]float64{1, 0.1}, interval.MustRange(0, 20))
	if err != nil {
		t.Fatal(err)
	}
	road, err := NewRoadCurve3D(line, elevation, nil, testTolerance)
	testutil.AssertNoError(t, err)
	for _, s := range []float64{0, 5.5, 13.2, 20} {
		p, err := road.PointAt(s)
		testutil.AssertNoError(t, err)
		frame, err := road.AffineAt(s)
		testutil.AssertNoError(t, err)
		testutil.AssertVectorInDelta(t, frame.ExtractTranslation(), p, testTolerance)
	}
}

func TestLateralTranslatedCurve_OffsetsInFrame(t *testing.T) {
	line, err := NewLineSegment2D(10, geomath.Affine2DFromPose(geomath.Vector2D{}, 0), testTolerance)
	if err != nil {
		t.Fatal(err)
	}
	road, err := NewRoadCurve3D(line, nil, nil, testTolerance)
	if err != nil {
		t.Fatal(err)
	}
	offset, err := mathfn.NewConstant(2.5, interval.MustRange(0, 10))
	if err != nil {
		t.Fatal(err)
	}
	height, err := mathfn.NewConstant(0.15, interval.MustRange(0, 10))
	if err != nil {
		t.Fatal(err)
	}
	boundary, err := NewLateralTranslatedCurve(road, offset, height, testTolerance)
	testutil.AssertNoError(t, err)
	p, err := boundary.PointAt(4)
	testutil.AssertNoError(t, err)
	testutil.AssertVectorInDelta(t, p, geomath.Vector3D{X: 4, Y: 2.5, Z: 0.15}, 1e-9)
}

func TestLineString_RemovesDuplicates(t *testing.T) {
	line, err := NewLineSegment2D(1, geomath.Affine2DFromPose(geomath.Vector2D{}, 0), testTolerance)
	if err != nil {
		t.Fatal(err)
	}
	road, err := NewRoadCurve3D(line, nil, nil, testTolerance)
	if err != nil {
		t.Fatal(err)
	}
	points, err := LineString(road, 0.25, testTolerance)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 5 {
		t.Errorf("got %d points, want 5", len(points))
	}
}
