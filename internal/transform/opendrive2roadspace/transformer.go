package opendrive2roadspace

import (
	"fmt"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/tum-gis/rtron-sub004/internal/geometry/curve"
	"github.com/tum-gis/rtron-sub004/internal/interval"
	"github.com/tum-gis/rtron-sub004/internal/mathfn"
	"github.com/tum-gis/rtron-sub004/internal/opendrive"
	"github.com/tum-gis/rtron-sub004/internal/report"
	"github.com/tum-gis/rtron-sub004/internal/roadspace"
)

// TransformModel builds the road-space model from a validated OpenDRIVE
// model. A failing road aborts only that road with a fatal entry; the rest
// of the dataset continues.
func TransformModel(src *opendrive.Model, opts Options, rep *report.Report) (*roadspace.Model, error) {
	epsg := opts.CrsEPSG
	if epsg == 0 {
		epsg = parseEPSG(src.Header.GeoReference)
	}
	modelName := opts.ModelName
	if modelName == "" {
		modelName = src.Header.Name
	}
	model := roadspace.NewModel(modelName, roadspace.Header{
		Name:   src.Header.Name,
		EPSG:   epsg,
		Offset: opts.Offset,
	})

	// Each road transforms independently; a failing road aborts only
	// itself. With concurrent processing enabled every worker owns its road
	// exclusively and registration happens afterwards in input order.
	results := make([]*roadspace.Roadspace, len(src.Roads))
	transformOne := func(i int) {
		road := &src.Roads[i]
		rs, err := transformRoad(road, modelName, opts, rep)
		if err != nil {
			rep.Fatal(fmt.Sprintf("road %s", road.ID), "road transformation aborted: %v", err)
			return
		}
		results[i] = rs
	}
	if opts.ConcurrentProcessing {
		var wg sync.WaitGroup
		var progress atomic.Int64
		for i := range src.Roads {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				transformOne(i)
				progress.Add(1)
			}(i)
		}
		wg.Wait()
	} else {
		for i := range src.Roads {
			transformOne(i)
		}
	}
	for i, rs := range results {
		if rs == nil {
			continue
		}
		if err := model.AddRoadspace(rs); err != nil {
			rep.Fatal(fmt.Sprintf("road %s", src.Roads[i].ID), "road registration failed: %v", err)
		}
	}
	for i := range src.Junctions {
		j := transformJunction(&src.Junctions[i], modelName)
		if err := model.AddJunction(j); err != nil {
			rep.Fatal(fmt.Sprintf("junction %s", src.Junctions[i].ID), "junction registration failed: %v", err)
		}
	}
	return model, nil
}

func transformRoad(src *opendrive.Road, modelName string, opts Options, rep *report.Report) (*roadspace.Roadspace, error) {
	id := roadspace.RoadspaceID{ModelName: modelName, RoadID: src.ID}

	planView, err := buildPlanViewCurve(src, opts, rep)
	if err != nil {
		return nil, err
	}
	length := planView.Length()
	loc := fmt.Sprintf("road %s", src.ID)
	if diff := length - src.Length; diff > opts.Tolerance || diff < -opts.Tolerance {
		rep.Warning(loc, "composed reference line length %v differs from declared length %v; using declared length semantics with composed geometry", length, src.Length)
	}

	elevation, err := buildProfile(src.Elevations, length, opts.Tolerance)
	if err != nil {
		return nil, fmt.Errorf("elevation profile: %w", err)
	}
	superelevation, err := buildProfile(src.Lateral.Superelevations, length, opts.Tolerance)
	if err != nil {
		return nil, fmt.Errorf("superelevation profile: %w", err)
	}
	roadCurve, err := curve.NewRoadCurve3D(planView, elevation, superelevation, opts.Tolerance)
	if err != nil {
		return nil, err
	}

	laneOffset, err := buildLaneOffset(src.Lanes.LaneOffsets, length, opts.Tolerance)
	if err != nil {
		return nil, fmt.Errorf("lane offset: %w", err)
	}

	rs := &roadspace.Roadspace{
		ID:          id,
		Name:        src.Name,
		Curve:       roadCurve,
		JunctionID:  src.JunctionID,
		Predecessor: transformRoadLink(src.Link.Predecessor),
		Successor:   transformRoadLink(src.Link.Successor),
		Tolerance:   opts.Tolerance,
	}

	if len(src.Lanes.Sections) == 0 {
		return nil, fmt.Errorf("road has no lane sections")
	}
	sections := make([]opendrive.LaneSection, len(src.Lanes.Sections))
	copy(sections, src.Lanes.Sections)
	sort.SliceStable(sections, func(i, j int) bool { return sections[i].S < sections[j].S })

	for si := range sections {
		upper := length
		if si+1 < len(sections) {
			upper = sections[si+1].S
		}
		domain, err := interval.NewRange(sections[si].S, maxf(sections[si].S, upper))
		if err != nil {
			return nil, fmt.Errorf("section %d domain: %w", si, err)
		}
		if domain.Length() < opts.Tolerance {
			rep.Healed(loc, "lane section %d has zero extent; removed", si)
			continue
		}
		section, err := transformLaneSection(&sections[si], si, id, domain, laneOffset, opts)
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", si, err)
		}
		rs.Sections = append(rs.Sections, section)
	}

	if err := rs.Validate(); err != nil {
		return nil, err
	}

	transformObjects(src, rs, opts, rep)
	return rs, nil
}

func transformRoadLink(src *opendrive.RoadLinkTarget) *roadspace.RoadLink {
	if src == nil {
		return nil
	}
	link := &roadspace.RoadLink{ElementID: src.ElementID}
	if src.ElementType == opendrive.ElementJunction {
		link.Kind = roadspace.LinkToJunction
	}
	if src.ContactPoint == opendrive.ContactEnd {
		link.ContactPoint = roadspace.ContactEnd
	}
	return link
}

// buildLaneOffset turns laneOffset records into a function over absolute s;
// a missing record list yields the zero function.
func buildLaneOffset(records []opendrive.LaneOffset, length, tolerance float64) (mathfn.UnivariateFunction, error) {
	if len(records) == 0 {
		domain, err := interval.NewRange(0, length)
		if err != nil {
			return nil, err
		}
		return mathfn.NewConstant(0, domain)
	}
	converted := make([]opendrive.ElevationRecord, len(records))
	for i, r := range records {
		converted[i] = opendrive.ElevationRecord{S: r.S, A: r.A, B: r.B, C: r.C, D: r.D}
	}
	return buildProfile(converted, length, tolerance)
}

// transformLaneSection builds the section with its lanes and their boundary
// offset functions.
func transformLaneSection(src *opendrive.LaneSection, index int, roadID roadspace.RoadspaceID, domain interval.Range, laneOffset mathfn.UnivariateFunction, opts Options) (roadspace.LaneSection, error) {
	sectionID := roadspace.LaneSectionID{Roadspace: roadID, SectionIndex: index}
	if len(src.Center) != 1 {
		return roadspace.LaneSection{}, fmt.Errorf("lane section requires exactly one center lane, got %d", len(src.Center))
	}

	section := roadspace.LaneSection{ID: sectionID, Domain: domain}

	centerOffset := mathfn.NewFuzzyBounded(laneOffset, opts.Tolerance)
	center, err := transformLane(&src.Center[0], sectionID, domain, centerOffset, centerOffset, opts)
	if err != nil {
		return roadspace.LaneSection{}, fmt.Errorf("center lane: %w", err)
	}
	section.Center = center

	// Left lanes stack outward with increasing id; the source lists them
	// outermost first after validation, so walk innermost-out.
	leftInnerFirst := make([]*opendrive.Lane, len(src.Left))
	for i := range src.Left {
		leftInnerFirst[len(src.Left)-1-i] = &src.Left[i]
	}
	inner := mathfn.UnivariateFunction(centerOffset)
	for _, l := range leftInnerFirst {
		lane, outer, err := transformSideLane(l, sectionID, domain, inner, 1, opts)
		if err != nil {
			return roadspace.LaneSection{}, fmt.Errorf("lane %d: %w", l.ID, err)
		}
		section.Left = append([]roadspace.Lane{lane}, section.Left...)
		inner = outer
	}

	// Right lanes are listed outermost first as well; walk them innermost-out
	// and keep the section list outermost first.
	inner = centerOffset
	for i := len(src.Right) - 1; i >= 0; i-- {
		l := &src.Right[i]
		lane, outer, err := transformSideLane(l, sectionID, domain, inner, -1, opts)
		if err != nil {
			return roadspace.LaneSection{}, fmt.Errorf("lane %d: %w", l.ID, err)
		}
		section.Right = append([]roadspace.Lane{lane}, section.Right...)
		inner = outer
	}

	return section, nil
}

// transformSideLane builds one non-center lane and returns its outer
// boundary offset for stacking the next lane.
func transformSideLane(src *opendrive.Lane, sectionID roadspace.LaneSectionID, domain interval.Range, innerOffset mathfn.UnivariateFunction, sign int, opts Options) (roadspace.Lane, mathfn.UnivariateFunction, error) {
	lane, err := transformLane(src, sectionID, domain, innerOffset, nil, opts)
	if err != nil {
		return roadspace.Lane{}, nil, err
	}

	width := lane.Width
	outer := mathfn.NewAdapter(domain,
		func(s float64) (float64, error) {
			in, err := innerOffset.Value(s)
			if err != nil {
				return 0, err
			}
			w, err := mathfn.NewFuzzyBounded(width, opts.Tolerance).Value(domain.Clamp(s) - domain.Lower)
			if err != nil {
				return 0, err
			}
			return in + float64(sign)*w, nil
		}, nil)
	lane.OuterOffset = outer
	return lane, outer, nil
}

// transformLane builds the lane core: width, heights, road marks and
// attributes. outerOffset may be nil; the caller fills it for side lanes.
func transformLane(src *opendrive.Lane, sectionID roadspace.LaneSectionID, domain interval.Range, innerOffset, outerOffset mathfn.UnivariateFunction, opts Options) (roadspace.Lane, error) {
	laneID := roadspace.LaneID{Section: sectionID, Lane: src.ID}
	localLength := domain.Length()

	width, err := buildWidth(src, localLength, opts.Tolerance)
	if err != nil {
		return roadspace.Lane{}, err
	}

	lane := roadspace.Lane{
		ID:          laneID,
		Type:        src.Type,
		Level:       src.Level,
		Width:       width,
		InnerOffset: innerOffset,
		OuterOffset: outerOffset,
		Attributes:  laneAttributes(src),
	}
	lane.PredecessorIDs = append(lane.PredecessorIDs, src.Predecessors...)
	lane.SuccessorIDs = append(lane.SuccessorIDs, src.Successors...)

	if len(src.Heights) > 0 {
		inner, outer, err := buildHeights(src.Heights, localLength, opts.Tolerance)
		if err != nil {
			return roadspace.Lane{}, err
		}
		lane.InnerHeight = inner
		lane.OuterHeight = outer
	}

	for i, rm := range src.RoadMarks {
		upper := localLength
		if i+1 < len(src.RoadMarks) {
			upper = src.RoadMarks[i+1].SOffset
		}
		markDomain, err := interval.NewRange(domain.Lower+rm.SOffset, domain.Lower+maxf(rm.SOffset, upper))
		if err != nil {
			continue
		}
		lane.RoadMarks = append(lane.RoadMarks, roadspace.RoadMark{
			Domain: markDomain,
			Type:   rm.Type,
			Color:  rm.Color,
			Width:  rm.Width,
		})
	}
	return lane, nil
}

// buildWidth turns width records into a piecewise cubic over section-local
// s. The center lane and lanes without records get the zero function.
func buildWidth(src *opendrive.Lane, localLength, tolerance float64) (mathfn.UnivariateFunction, error) {
	domain, err := interval.NewRange(0, localLength)
	if err != nil {
		return nil, err
	}
	if src.ID == 0 || len(src.Widths) == 0 {
		return mathfn.NewConstant(0, domain)
	}
	sorted := make([]opendrive.Poly3Record, len(src.Widths))
	copy(sorted, src.Widths)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].SOffset < sorted[j].SOffset })
	if sorted[0].SOffset > tolerance {
		sorted = append([]opendrive.Poly3Record{{SOffset: 0, A: sorted[0].A}}, sorted...)
	}
	starts := make([]float64, len(sorted))
	members := make([]mathfn.UnivariateFunction, len(sorted))
	for i, rec := range sorted {
		upper := localLength
		if i+1 < len(sorted) {
			upper = sorted[i+1].SOffset
		}
		memberDomain, err := interval.NewRange(0, maxf(0, upper-rec.SOffset))
		if err != nil {
			return nil, err
		}
		member, err := mathfn.NewPolynomial([]float64{rec.A, rec.B, rec.C, rec.D}, memberDomain)
		if err != nil {
			return nil, err
		}
		starts[i] = rec.SOffset
		members[i] = member
	}
	return mathfn.NewPiecewise(starts, members, localLength, tolerance)
}

// buildHeights turns height records into inner and outer step functions over
// section-local s.
func buildHeights(records []opendrive.HeightRecord, localLength, tolerance float64) (inner, outer mathfn.UnivariateFunction, err error) {
	sorted := make([]opendrive.HeightRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].SOffset < sorted[j].SOffset })
	if sorted[0].SOffset > tolerance {
		sorted = append([]opendrive.HeightRecord{{SOffset: 0, Inner: sorted[0].Inner, Outer: sorted[0].Outer}}, sorted...)
	}
	build := func(pick func(opendrive.HeightRecord) float64) (mathfn.UnivariateFunction, error) {
		starts := make([]float64, len(sorted))
		members := make([]mathfn.UnivariateFunction, len(sorted))
		for i, rec := range sorted {
			upper := localLength
			if i+1 < len(sorted) {
				upper = sorted[i+1].SOffset
			}
			domain, err := interval.NewRange(0, maxf(0, upper-rec.SOffset))
			if err != nil {
				return nil, err
			}
			member, err := mathfn.NewConstant(pick(rec), domain)
			if err != nil {
				return nil, err
			}
			starts[i] = rec.SOffset
			members[i] = member
		}
		return mathfn.NewPiecewise(starts, members, localLength, tolerance)
	}
	inner, err = build(func(r opendrive.HeightRecord) float64 { return r.Inner })
	if err != nil {
		return nil, nil, err
	}
	outer, err = build(func(r opendrive.HeightRecord) float64 { return r.Outer })
	if err != nil {
		return nil, nil, err
	}
	return inner, outer, nil
}

// laneAttributes flattens material, speed, access and rule records into the
// lane attribute map.
func laneAttributes(src *opendrive.Lane) map[string]string {
	attrs := map[string]string{}
	for i, m := range src.Materials {
		attrs[fmt.Sprintf("material_%d_surface", i)] = m.Surface
		attrs[fmt.Sprintf("material_%d_friction", i)] = strconv.FormatFloat(m.Friction, 'g', -1, 64)
	}
	for i, s := range src.Speeds {
		attrs[fmt.Sprintf("speed_%d_max", i)] = strconv.FormatFloat(s.Max, 'g', -1, 64)
		if s.Unit != "" {
			attrs[fmt.Sprintf("speed_%d_unit", i)] = s.Unit
		}
	}
	for i, a := range src.Accesses {
		attrs[fmt.Sprintf("access_%d_rule", i)] = a.Rule
		attrs[fmt.Sprintf("access_%d_restriction", i)] = a.Restriction
	}
	for i, r := range src.Rules {
		attrs[fmt.Sprintf("rule_%d", i)] = r.Value
	}
	return attrs
}

func transformJunction(src *opendrive.Junction, modelName string) *roadspace.Junction {
	j := &roadspace.Junction{
		ID:   roadspace.JunctionID{ModelName: modelName, JunctionID: src.ID},
		Name: src.Name,
	}
	for _, c := range src.Connections {
		conn := roadspace.Connection{
			ID:             c.ID,
			IncomingRoad:   c.IncomingRoad,
			ConnectingRoad: c.ConnectingRoad,
		}
		if c.ContactPoint == opendrive.ContactEnd {
			conn.ContactPoint = roadspace.ContactEnd
		}
		for _, ll := range c.LaneLinks {
			conn.LaneLinks = append(conn.LaneLinks, roadspace.LaneLink{From: ll.From, To: ll.To})
		}
		j.Connections = append(j.Connections, conn)
	}
	return j
}
