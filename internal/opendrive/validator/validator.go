// Package validator applies structural and numeric sanity rules to an
// OpenDRIVE model, healing what it can and reporting everything it touches.
package validator

import (
	"fmt"
	"math"
	"sort"

	"github.com/tum-gis/rtron-sub004/internal/opendrive"
	"github.com/tum-gis/rtron-sub004/internal/report"
)

// Options tunes the validator.
type Options struct {
	// Tolerance is the numeric tolerance for length and interval checks.
	Tolerance float64
}

// Validate runs all rules over the model in place and records findings in
// the report. The returned model shares storage with the input.
func Validate(model *opendrive.Model, opts Options, rep *report.Report) *opendrive.Model {
	for i := range model.Roads {
		validateRoad(&model.Roads[i], opts, rep)
	}
	for i := range model.Junctions {
		validateJunction(&model.Junctions[i], model, rep)
	}
	return model
}

func roadLocation(r *opendrive.Road) string { return fmt.Sprintf("road %s", r.ID) }

func validateRoad(r *opendrive.Road, opts Options, rep *report.Report) {
	loc := roadLocation(r)

	if !isFinite(r.Length) || r.Length < 0 {
		rep.Fatal(loc, "road length %v is negative or non-finite", r.Length)
		return
	}

	validatePlanView(r, opts, rep)
	validateElevations(r, rep)
	validateLaneSections(r, opts, rep)
	validateObjects(r, rep)
}

func validatePlanView(r *opendrive.Road, opts Options, rep *report.Report) {
	loc := roadLocation(r)
	kept := r.PlanView[:0]
	for _, g := range r.PlanView {
		if !isFinite(g.S) || !isFinite(g.X) || !isFinite(g.Y) || !isFinite(g.Hdg) || !isFinite(g.Length) {
			rep.Healed(loc, "plan view geometry at s=%v has non-finite scalars; removed", g.S)
			continue
		}
		if g.Length < 0 {
			rep.Fatal(loc, "plan view geometry at s=%v has negative length %v", g.S, g.Length)
			continue
		}
		if g.Length < opts.Tolerance {
			rep.Healed(loc, "plan view geometry at s=%v has length %v below tolerance; removed", g.S, g.Length)
			continue
		}
		kept = append(kept, g)
	}
	r.PlanView = kept
}

func validateElevations(r *opendrive.Road, rep *report.Report) {
	loc := roadLocation(r)
	for i, e := range r.Elevations {
		if !isFinite(e.A) || !isFinite(e.B) || !isFinite(e.C) || !isFinite(e.D) {
			rep.Healed(loc, "elevation record at s=%v has non-finite coefficients; healed to 0", e.S)
			r.Elevations[i] = opendrive.ElevationRecord{S: e.S}
		}
	}
	for i, e := range r.Lateral.Superelevations {
		if !isFinite(e.A) || !isFinite(e.B) || !isFinite(e.C) || !isFinite(e.D) {
			rep.Healed(loc, "superelevation record at s=%v has non-finite coefficients; healed to 0", e.S)
			r.Lateral.Superelevations[i] = opendrive.ElevationRecord{S: e.S}
		}
	}
}

func validateLaneSections(r *opendrive.Road, opts Options, rep *report.Report) {
	loc := roadLocation(r)
	if len(r.Lanes.Sections) == 0 {
		rep.Fatal(loc, "road has no lane sections")
		return
	}
	for si := range r.Lanes.Sections {
		sec := &r.Lanes.Sections[si]
		secLoc := fmt.Sprintf("%s section %d", loc, si)

		if len(sec.Center) != 1 {
			rep.Fatal(secLoc, "lane section requires exactly one center lane, got %d", len(sec.Center))
			continue
		}
		if len(sec.Left) == 0 && len(sec.Right) == 0 {
			rep.Fatal(secLoc, "lane section has neither left nor right lanes")
			continue
		}

		validateLaneNumbering(sec, secLoc, rep)
		for li := range sec.Left {
			validateLane(&sec.Left[li], secLoc, rep)
		}
		for li := range sec.Right {
			validateLane(&sec.Right[li], secLoc, rep)
		}
	}
}

// validateLaneNumbering enforces gapless signed ids: left lanes 1..n and
// right lanes -1..-n. Out-of-order lists are healed by a descending sort on
// absolute position from the center.
func validateLaneNumbering(sec *opendrive.LaneSection, loc string, rep *report.Report) {
	check := func(lanes []opendrive.Lane, sign int, side string) {
		if len(lanes) == 0 {
			return
		}
		seen := map[int]bool{}
		for _, l := range lanes {
			if seen[l.ID] {
				rep.Fatal(loc, "%s lane id %d is duplicated", side, l.ID)
				return
			}
			seen[l.ID] = true
		}
		for i := 1; i <= len(lanes); i++ {
			if !seen[sign*i] {
				rep.Fatal(loc, "%s lane ids have a gap: missing id %d", side, sign*i)
				return
			}
		}
		sorted := sort.SliceIsSorted(lanes, func(i, j int) bool {
			return abs(lanes[i].ID) > abs(lanes[j].ID)
		})
		if !sorted {
			sort.Slice(lanes, func(i, j int) bool { return abs(lanes[i].ID) > abs(lanes[j].ID) })
			rep.Healed(loc, "%s lanes were out of order; sorted descending by absolute id", side)
		}
	}
	check(sec.Left, 1, "left")
	check(sec.Right, -1, "right")
}

func validateLane(l *opendrive.Lane, loc string, rep *report.Report) {
	laneLoc := fmt.Sprintf("%s lane %d", loc, l.ID)
	kept := l.Widths[:0]
	for _, w := range l.Widths {
		if !isFinite(w.SOffset) || !isFinite(w.A) || !isFinite(w.B) || !isFinite(w.C) || !isFinite(w.D) {
			rep.Healed(laneLoc, "width record at sOffset=%v has non-finite coefficients; removed", w.SOffset)
			continue
		}
		kept = append(kept, w)
	}
	l.Widths = kept
	for i, h := range l.Heights {
		if !isFinite(h.Inner) || !isFinite(h.Outer) {
			rep.Healed(laneLoc, "height record at sOffset=%v has non-finite values; healed to 0", h.SOffset)
			l.Heights[i] = opendrive.HeightRecord{SOffset: h.SOffset}
		}
	}
}

func validateObjects(r *opendrive.Road, rep *report.Report) {
	loc := roadLocation(r)
	for oi := range r.Objects {
		obj := &r.Objects[oi]
		objLoc := fmt.Sprintf("%s object %s", loc, obj.ID)

		if obj.Radius < 0 {
			rep.Fatal(objLoc, "object radius %v is negative", obj.Radius)
			continue
		}

		keptRepeats := obj.Repeats[:0]
		for _, rp := range obj.Repeats {
			if !isFinite(rp.S) || !isFinite(rp.Length) || !isFinite(rp.Distance) {
				rep.Healed(objLoc, "repeat record has non-finite key scalars; removed")
				continue
			}
			keptRepeats = append(keptRepeats, rp)
		}
		obj.Repeats = keptRepeats

		for ui := range obj.Outlines {
			outline := &obj.Outlines[ui]
			keptRoad := outline.CornersRoad[:0]
			for _, c := range outline.CornersRoad {
				if !isFinite(c.S) || !isFinite(c.T) || !isFinite(c.DZ) {
					rep.Healed(objLoc, "outline corner has non-finite coordinates; removed")
					continue
				}
				if c.Height < 0 {
					rep.Healed(objLoc, "outline corner height %v is negative; healed to 0", c.Height)
					c.Height = 0
				}
				keptRoad = append(keptRoad, c)
			}
			outline.CornersRoad = keptRoad

			keptLocal := outline.CornersLocal[:0]
			for _, c := range outline.CornersLocal {
				if !isFinite(c.U) || !isFinite(c.V) || !isFinite(c.Z) {
					rep.Healed(objLoc, "outline corner has non-finite coordinates; removed")
					continue
				}
				if c.Height < 0 {
					rep.Healed(objLoc, "outline corner height %v is negative; healed to 0", c.Height)
					c.Height = 0
				}
				keptLocal = append(keptLocal, c)
			}
			outline.CornersLocal = keptLocal
		}
	}
}

func validateJunction(j *opendrive.Junction, model *opendrive.Model, rep *report.Report) {
	loc := fmt.Sprintf("junction %s", j.ID)
	roadByID := map[string]*opendrive.Road{}
	for i := range model.Roads {
		roadByID[model.Roads[i].ID] = &model.Roads[i]
	}
	for _, c := range j.Connections {
		connLoc := fmt.Sprintf("%s connection %s", loc, c.ID)
		if _, ok := roadByID[c.IncomingRoad]; !ok {
			rep.Error(connLoc, "incoming road %s does not exist", c.IncomingRoad)
		}
		if _, ok := roadByID[c.ConnectingRoad]; !ok {
			rep.Error(connLoc, "connecting road %s does not exist", c.ConnectingRoad)
		}
	}
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
