package opendrive2roadspace

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/tum-gis/rtron-sub004/internal/geomath"
	"github.com/tum-gis/rtron-sub004/internal/geometry/curve"
	"github.com/tum-gis/rtron-sub004/internal/interval"
	"github.com/tum-gis/rtron-sub004/internal/mathfn"
	"github.com/tum-gis/rtron-sub004/internal/opendrive"
	"github.com/tum-gis/rtron-sub004/internal/report"
)

// ErrDegenerateReferenceLine is returned when no usable plan view segment
// remains for a road.
var ErrDegenerateReferenceLine = fmt.Errorf("degenerate reference line")

// buildPlanViewCurve composes the road's plan view records into one
// composite curve. Short segments are filtered with a healed entry;
// continuity violations between neighbouring segments are reported but do
// not abort.
func buildPlanViewCurve(road *opendrive.Road, opts Options, rep *report.Report) (*curve.CompositeCurve2D, error) {
	loc := fmt.Sprintf("road %s", road.ID)

	records := make([]opendrive.PlanViewGeometry, len(road.PlanView))
	copy(records, road.PlanView)
	sort.SliceStable(records, func(i, j int) bool { return records[i].S < records[j].S })

	var members []curve.Curve2D
	for _, g := range records {
		if g.Length < opts.Tolerance {
			rep.Healed(loc, "plan view segment at s=%v shorter than tolerance; removed", g.S)
			continue
		}
		member, err := buildPlanViewSegment(g, opts.Tolerance)
		if err != nil {
			rep.Error(loc, "plan view segment at s=%v: %v", g.S, err)
			continue
		}
		members = append(members, member)
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("%w: all plan view segments filtered out", ErrDegenerateReferenceLine)
	}

	checkPlanViewContinuity(members, loc, opts, rep)
	return curve.NewCompositeCurve2D(members, opts.Tolerance)
}

// buildPlanViewSegment builds the globally placed local curve of one record.
func buildPlanViewSegment(g opendrive.PlanViewGeometry, tolerance float64) (curve.Curve2D, error) {
	pose := geomath.Affine2DFromPose(geomath.Vector2D{X: g.X, Y: g.Y}, g.Hdg)
	switch g.Kind {
	case opendrive.KindLine:
		return curve.NewLineSegment2D(g.Length, pose, tolerance)
	case opendrive.KindArc:
		return curve.NewArc2D(g.Curvature, g.Length, pose, tolerance)
	case opendrive.KindSpiral:
		rate := (g.CurvEnd - g.CurvStart) / g.Length
		return curve.NewSpiral2DWithStartCurvature(rate, g.CurvStart, g.Length, pose, tolerance)
	case opendrive.KindPoly3:
		return curve.NewCubicPolynomial2D(g.Poly3, g.Length, pose, tolerance)
	case opendrive.KindParamPoly3:
		paramRange := curve.ParamRangeNormalized
		if g.ParamRange == opendrive.PRangeArcLength {
			paramRange = curve.ParamRangeArcLength
		}
		return curve.NewParametricCubic2D(g.ParamPolyU, g.ParamPolyV, paramRange, g.Length, pose, tolerance)
	default:
		return nil, fmt.Errorf("unknown plan view geometry kind %q", g.Kind)
	}
}

// checkPlanViewContinuity verifies endpoint and tangent continuity between
// successive members.
func checkPlanViewContinuity(members []curve.Curve2D, loc string, opts Options, rep *report.Report) {
	for i := 0; i+1 < len(members); i++ {
		end, err1 := members[i].PointAt(members[i].Length())
		start, err2 := members[i+1].PointAt(0)
		if err1 != nil || err2 != nil {
			continue
		}
		if d := end.DistanceTo(start); d > opts.PlanViewGeometryDistanceTolerance {
			rep.Warning(loc, "plan view segments %d and %d are %v apart (tolerance %v)",
				i, i+1, d, opts.PlanViewGeometryDistanceTolerance)
		}
		endHeading, err1 := members[i].HeadingAt(members[i].Length())
		startHeading, err2 := members[i+1].HeadingAt(0)
		if err1 != nil || err2 != nil {
			continue
		}
		if d := geomath.AngleDifference(endHeading, startHeading); d > opts.PlanViewGeometryAngleTolerance {
			rep.Warning(loc, "plan view segments %d and %d differ %v in tangent angle (tolerance %v)",
				i, i+1, d, opts.PlanViewGeometryAngleTolerance)
		}
	}
}

// buildProfile turns cubic records into a piecewise polynomial over
// [0, length]. Returns nil for an empty record list.
func buildProfile(records []opendrive.ElevationRecord, length, tolerance float64) (mathfn.UnivariateFunction, error) {
	if len(records) == 0 {
		return nil, nil
	}
	sorted := make([]opendrive.ElevationRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].S < sorted[j].S })

	// A profile not starting at s=0 is led in with a constant hold.
	if sorted[0].S > tolerance {
		sorted = append([]opendrive.ElevationRecord{{S: 0, A: sorted[0].A}}, sorted...)
	}
	starts := make([]float64, len(sorted))
	members := make([]mathfn.UnivariateFunction, len(sorted))
	for i, rec := range sorted {
		upper := length
		if i+1 < len(sorted) {
			upper = sorted[i+1].S
		}
		domain, err := interval.NewRange(0, maxf(0, upper-rec.S))
		if err != nil {
			return nil, err
		}
		member, err := mathfn.NewPolynomial([]float64{rec.A, rec.B, rec.C, rec.D}, domain)
		if err != nil {
			return nil, err
		}
		starts[i] = rec.S
		members[i] = member
	}
	return mathfn.NewPiecewise(starts, members, length, tolerance)
}

var epsgPattern = regexp.MustCompile(`(?i)epsg["':,\s]*?(\d{3,6})`)

// parseEPSG extracts an EPSG code from a header georeference string;
// zero if none is found.
func parseEPSG(geoReference string) int {
	m := epsgPattern.FindStringSubmatch(geoReference)
	if m == nil {
		return 0
	}
	code, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return code
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
