package roadspace2citygml

import (
	"encoding/xml"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/tum-gis/rtron-sub004/internal/citygml"
	"github.com/tum-gis/rtron-sub004/internal/geomath"
	"github.com/tum-gis/rtron-sub004/internal/geometry/curve"
	"github.com/tum-gis/rtron-sub004/internal/geometry/surface"
	"github.com/tum-gis/rtron-sub004/internal/interval"
	"github.com/tum-gis/rtron-sub004/internal/report"
	"github.com/tum-gis/rtron-sub004/internal/roadspace"
)

// Filler surface names by kind.
const (
	fillerLateral      = "LateralFillerSurface"
	fillerWithinRoad   = "LongitudinalFillerSurfaceWithinRoad"
	fillerBetweenRoads = "LongitudinalFillerSurfaceBetweenRoads"
)

// transformer carries the per-dataset emission state.
type transformer struct {
	opts   Options
	gen    idGenerator
	model  *roadspace.Model
	rep    *report.Report
	offset geomath.Vector3D

	// mu guards the feature, lane-feature and point sinks when roads are
	// transformed concurrently.
	mu           sync.Mutex
	features     []*citygml.Feature
	laneFeatures map[roadspace.LaneRef]*citygml.Feature
	points       []geomath.Vector3D
}

// TransformModel maps the road-space model onto a CityGML document.
func TransformModel(model *roadspace.Model, opts Options, rep *report.Report) (*citygml.CityModel, error) {
	if opts.GMLIDPrefix == "" {
		opts.GMLIDPrefix = DefaultGMLIDPrefix
	}
	t := &transformer{
		opts:         opts,
		gen:          idGenerator{prefix: opts.GMLIDPrefix, random: opts.GenerateRandomGeometryIDs},
		model:        model,
		rep:          rep,
		offset:       geomath.Vector3D{X: model.Header.Offset[0], Y: model.Header.Offset[1], Z: model.Header.Offset[2]},
		laneFeatures: map[roadspace.LaneRef]*citygml.Feature{},
	}

	// Each worker owns its roadspace exclusively; the only shared state is
	// the mutex-guarded feature sink and the report.
	if opts.ConcurrentProcessing {
		var wg sync.WaitGroup
		var progress atomic.Int64
		for _, rs := range model.Roadspaces() {
			wg.Add(1)
			go func(rs *roadspace.Roadspace) {
				defer wg.Done()
				t.transformRoadspace(rs)
				progress.Add(1)
			}(rs)
		}
		wg.Wait()
	} else {
		for _, rs := range model.Roadspaces() {
			t.transformRoadspace(rs)
		}
	}
	t.linkLaneTopology()

	// Output ordering is stabilized by sorting features on their
	// deterministic ids.
	sort.Slice(t.features, func(i, j int) bool { return t.features[i].ID < t.features[j].ID })

	doc := citygml.NewCityModel(opts.Version)
	doc.Envelope = citygml.ComputeEnvelope(t.points, model.Header.EPSG)
	for _, f := range t.features {
		doc.Members = append(doc.Members, citygml.Member{Feature: f})
	}
	return doc, nil
}

func (t *transformer) addPoints(points ...geomath.Vector3D) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.points = append(t.points, points...)
}

func (t *transformer) addFeature(f *citygml.Feature) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.features = append(t.features, f)
}

func (t *transformer) addLaneFeature(ref roadspace.LaneRef, f *citygml.Feature) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.laneFeatures[ref] = f
	t.features = append(t.features, f)
}

func (t *transformer) laneFeature(ref roadspace.LaneRef) (*citygml.Feature, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	f, ok := t.laneFeatures[ref]
	return f, ok
}

func (t *transformer) addPolygons(polygons []surface.Polygon3D) {
	for _, p := range polygons {
		t.addPoints(p.Vertices...)
	}
}

func (t *transformer) transformRoadspace(rs *roadspace.Roadspace) {
	loc := fmt.Sprintf("road %s", rs.ID.RoadID)

	for si := range rs.Sections {
		t.transformSectionLanes(rs, si)
		if si+1 < len(rs.Sections) {
			t.emitLongitudinalFillers(rs, si, si+1)
		}
	}
	t.emitJunctionFillers(rs)

	for i := range rs.Objects {
		t.transformObject(&rs.Objects[i], loc)
	}

	if t.opts.TransformAdditionalRoadLines {
		t.emitRoadLines(rs, loc)
	}
}

// transformSectionLanes emits one feature per routed lane with its sampled
// surface, road marks, and lateral fillers toward the inner neighbour.
func (t *transformer) transformSectionLanes(rs *roadspace.Roadspace, sectionIndex int) {
	section := rs.Sections[sectionIndex]
	loc := fmt.Sprintf("road %s section %d", rs.ID.RoadID, sectionIndex)

	for _, lane := range section.Lanes() {
		if lane.ID.Lane == 0 {
			continue
		}
		routing := routeLane(lane.Type)
		if routing == RouteNone {
			continue
		}
		laneLoc := fmt.Sprintf("%s lane %d", loc, lane.ID.Lane)

		polygons, err := t.laneSurfacePolygons(rs, sectionIndex, lane.ID.Lane)
		if err != nil {
			t.rep.Error(laneLoc, "lane surface dropped: %v", err)
			continue
		}
		t.addPolygons(polygons)

		feature := &citygml.Feature{
			XMLName: xml.Name{Local: laneElement(routing, t.opts.Version)},
			ID:      t.gen.FeatureID(lane.ID.HashKey()),
			Name:    fmt.Sprintf("Lane_%d", lane.ID.Lane),
		}
		for _, k := range sortedKeys(lane.ID.Attributes()) {
			feature.Attributes = append(feature.Attributes,
				citygml.StringAttribute{Name: k, Value: lane.ID.Attributes()[k]})
		}
		for _, k := range sortedKeys(lane.Attributes) {
			feature.Attributes = append(feature.Attributes,
				citygml.StringAttribute{Name: k, Value: lane.Attributes[k]})
		}
		feature.Lod2MultiSurface = t.gen.buildMultiSurface(polygons)

		t.emitLateralFiller(rs, sectionIndex, lane, feature, laneLoc)
		t.emitRoadMarks(rs, sectionIndex, lane, laneLoc)

		ref := roadspace.LaneRef{RoadID: rs.ID.RoadID, SectionIndex: sectionIndex, LaneID: lane.ID.Lane}
		t.addLaneFeature(ref, feature)
	}
}

// laneSurfacePolygons discretizes the ruled surface between the lane's
// boundary curves.
func (t *transformer) laneSurfacePolygons(rs *roadspace.Roadspace, sectionIndex, laneID int) ([]surface.Polygon3D, error) {
	inner, err := rs.BoundaryCurve(sectionIndex, laneID, false)
	if err != nil {
		return nil, err
	}
	outer, err := rs.BoundaryCurve(sectionIndex, laneID, true)
	if err != nil {
		return nil, err
	}
	bounded, err := surface.NewParametricBoundedSurface(inner, outer, rs.Sections[sectionIndex].Domain, t.opts.Tolerance)
	if err != nil {
		return nil, err
	}
	polygons, err := bounded.Polygonize(t.opts.DiscretizationStepSize)
	if err != nil {
		return nil, err
	}
	shift := geomath.AffineFromTranslation(t.offset)
	for i, p := range polygons {
		polygons[i] = p.Transform(shift)
	}
	return polygons, nil
}

// emitLateralFiller closes the height step between the lane's inner boundary
// and its inner neighbour's outer boundary.
func (t *transformer) emitLateralFiller(rs *roadspace.Roadspace, sectionIndex int, lane roadspace.Lane, feature *citygml.Feature, loc string) {
	section := rs.Sections[sectionIndex]
	innerNeighbourID := lane.ID.Lane - lane.Side()
	neighbour, ok := section.Lane(innerNeighbourID)
	if !ok {
		return
	}
	if lane.InnerHeight == nil && neighbour.OuterHeight == nil {
		return
	}

	laneBoundary, err := rs.BoundaryCurve(sectionIndex, lane.ID.Lane, false)
	if err != nil {
		t.rep.Error(loc, "lateral filler dropped: %v", err)
		return
	}
	neighbourBoundary, err := rs.BoundaryCurve(sectionIndex, neighbour.ID.Lane, neighbour.ID.Lane != 0)
	if err != nil {
		t.rep.Error(loc, "lateral filler dropped: %v", err)
		return
	}

	left, right, err := t.sampleBoundaryPair(section.Domain, laneBoundary, neighbourBoundary)
	if err != nil {
		t.rep.Error(loc, "lateral filler dropped: %v", err)
		return
	}
	if polylinesFuzzyEqual(left, right, t.opts.Tolerance) {
		return
	}
	polygons, err := surface.RuledSurface(left, right, t.opts.Tolerance)
	if err != nil {
		// An all-degenerate filler is silently dropped.
		return
	}
	t.attachFiller(feature, fillerLateral, polygons)
}

// emitLongitudinalFillers stitches each lane's boundary end points to the
// next section's start points.
func (t *transformer) emitLongitudinalFillers(rs *roadspace.Roadspace, fromIndex, toIndex int) {
	from := rs.Sections[fromIndex]
	to := rs.Sections[toIndex]
	loc := fmt.Sprintf("road %s sections %d-%d", rs.ID.RoadID, fromIndex, toIndex)

	for _, lane := range from.Lanes() {
		if lane.ID.Lane == 0 {
			continue
		}
		if _, ok := to.Lane(lane.ID.Lane); !ok {
			continue
		}
		ref := roadspace.LaneRef{RoadID: rs.ID.RoadID, SectionIndex: fromIndex, LaneID: lane.ID.Lane}
		feature, ok := t.laneFeature(ref)
		if !ok {
			continue
		}
		quad, err := t.sectionGapQuad(rs, fromIndex, toIndex, lane.ID.Lane, lane.ID.Lane)
		if err != nil {
			t.rep.Error(loc, "longitudinal filler for lane %d dropped: %v", lane.ID.Lane, err)
			continue
		}
		if quad != nil {
			t.attachFiller(feature, fillerWithinRoad, quad)
		}
	}
}

// emitJunctionFillers closes gaps between the last section of this road and
// the first section of connecting roads linked through a junction.
func (t *transformer) emitJunctionFillers(rs *roadspace.Roadspace) {
	if rs.Successor == nil || rs.Successor.Kind != roadspace.LinkToJunction {
		return
	}
	junction, ok := t.model.Junction(rs.Successor.ElementID)
	if !ok {
		t.rep.Error(fmt.Sprintf("road %s", rs.ID.RoadID), "successor junction %s missing", rs.Successor.ElementID)
		return
	}
	lastIndex := len(rs.Sections) - 1
	for _, c := range junction.ConnectionsFrom(rs.ID.RoadID) {
		connecting, ok := t.model.Roadspace(c.ConnectingRoad)
		if !ok {
			continue
		}
		for _, link := range c.LaneLinks {
			ref := roadspace.LaneRef{RoadID: rs.ID.RoadID, SectionIndex: lastIndex, LaneID: link.From}
			feature, ok := t.laneFeature(ref)
			if !ok {
				continue
			}
			quad, err := t.roadGapQuad(rs, lastIndex, link.From, connecting, c.ContactPoint, link.To)
			if err != nil {
				t.rep.Error(fmt.Sprintf("road %s junction %s", rs.ID.RoadID, junction.ID.JunctionID),
					"filler for lane %d dropped: %v", link.From, err)
				continue
			}
			if quad != nil {
				t.attachFiller(feature, fillerBetweenRoads, quad)
			}
		}
	}
}

// sectionGapQuad builds the quad between a lane's boundary points at the end
// of one section and the start of the following section. Returns nil when
// the gap degenerates.
func (t *transformer) sectionGapQuad(rs *roadspace.Roadspace, fromIndex, toIndex, fromLane, toLane int) ([]surface.Polygon3D, error) {
	endInner, endOuter, err := t.boundaryEndpoints(rs, fromIndex, fromLane, rs.Sections[fromIndex].Domain.Upper)
	if err != nil {
		return nil, err
	}
	startInner, startOuter, err := t.boundaryEndpoints(rs, toIndex, toLane, rs.Sections[toIndex].Domain.Lower)
	if err != nil {
		return nil, err
	}
	return t.gapQuad(endInner, endOuter, startInner, startOuter), nil
}

// roadGapQuad builds the quad between a lane end on this road and a lane
// start on a connecting road.
func (t *transformer) roadGapQuad(rs *roadspace.Roadspace, sectionIndex, laneID int, next *roadspace.Roadspace, contact roadspace.ContactPoint, nextLane int) ([]surface.Polygon3D, error) {
	endInner, endOuter, err := t.boundaryEndpoints(rs, sectionIndex, laneID, rs.Sections[sectionIndex].Domain.Upper)
	if err != nil {
		return nil, err
	}
	nextSection := 0
	s := next.Sections[0].Domain.Lower
	if contact == roadspace.ContactEnd {
		nextSection = len(next.Sections) - 1
		s = next.Sections[nextSection].Domain.Upper
	}
	startInner, startOuter, err := t.boundaryEndpoints(next, nextSection, nextLane, s)
	if err != nil {
		return nil, err
	}
	return t.gapQuad(endInner, endOuter, startInner, startOuter), nil
}

func (t *transformer) boundaryEndpoints(rs *roadspace.Roadspace, sectionIndex, laneID int, s float64) (inner, outer geomath.Vector3D, err error) {
	innerCurve, err := rs.BoundaryCurve(sectionIndex, laneID, false)
	if err != nil {
		return geomath.Vector3D{}, geomath.Vector3D{}, err
	}
	outerCurve, err := rs.BoundaryCurve(sectionIndex, laneID, true)
	if err != nil {
		return geomath.Vector3D{}, geomath.Vector3D{}, err
	}
	inner, err = innerCurve.PointAt(s)
	if err != nil {
		return geomath.Vector3D{}, geomath.Vector3D{}, err
	}
	outer, err = outerCurve.PointAt(s)
	if err != nil {
		return geomath.Vector3D{}, geomath.Vector3D{}, err
	}
	shift := geomath.AffineFromTranslation(t.offset)
	return shift.TransformPoint(inner), shift.TransformPoint(outer), nil
}

// gapQuad polygonizes the four gap corners; nil when all corners coincide.
func (t *transformer) gapQuad(endInner, endOuter, startInner, startOuter geomath.Vector3D) []surface.Polygon3D {
	return surface.PolygonizeQuad(endInner, endOuter, startOuter, startInner, t.opts.Tolerance)
}

func (t *transformer) attachFiller(feature *citygml.Feature, kind string, polygons []surface.Polygon3D) {
	t.addPolygons(polygons)
	feature.Boundaries = append(feature.Boundaries, citygml.BoundaryProperty{
		Surface: citygml.BoundarySurface{
			XMLName:      xml.Name{Local: "trans:AuxiliaryTrafficArea"},
			ID:           t.gen.FeatureID(feature.ID + "_" + kind + fmt.Sprint(len(feature.Boundaries))),
			Name:         kind,
			MultiSurface: t.gen.buildMultiSurface(polygons),
		},
	})
}

// sampleBoundaryPair samples two boundary curves at the shared parameters of
// the section domain.
func (t *transformer) sampleBoundaryPair(domain interval.Range, a, b curve.Curve3D) (left, right []geomath.Vector3D, err error) {
	params, err := domain.Arrange(t.opts.DiscretizationStepSize, true, t.opts.Tolerance)
	if err != nil {
		return nil, nil, err
	}
	shift := geomath.AffineFromTranslation(t.offset)
	for _, s := range params {
		pa, err := a.PointAt(s)
		if err != nil {
			return nil, nil, err
		}
		pb, err := b.PointAt(s)
		if err != nil {
			return nil, nil, err
		}
		left = append(left, shift.TransformPoint(pa))
		right = append(right, shift.TransformPoint(pb))
	}
	return left, right, nil
}

func polylinesFuzzyEqual(a, b []geomath.Vector3D, tolerance float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].FuzzyEquals(b[i], tolerance) {
			return false
		}
	}
	return true
}

// emitRoadMarks renders the lane's road marks as Marking features along the
// outer boundary curve.
func (t *transformer) emitRoadMarks(rs *roadspace.Roadspace, sectionIndex int, lane roadspace.Lane, loc string) {
	if len(lane.RoadMarks) == 0 {
		return
	}
	boundary, err := rs.BoundaryCurve(sectionIndex, lane.ID.Lane, true)
	if err != nil {
		t.rep.Error(loc, "road marks dropped: %v", err)
		return
	}
	shift := geomath.AffineFromTranslation(t.offset)
	for mi, mark := range lane.RoadMarks {
		if mark.Type == "none" || mark.Type == "" {
			continue
		}
		params, err := mark.Domain.Arrange(t.opts.DiscretizationStepSize, true, t.opts.Tolerance)
		if err != nil {
			continue
		}
		var points []geomath.Vector3D
		for _, s := range params {
			p, err := boundary.PointAt(s)
			if err != nil {
				points = nil
				break
			}
			points = append(points, shift.TransformPoint(p))
		}
		points = geomath.RemoveConsecutiveDuplicates(points, t.opts.Tolerance)
		if len(points) < 2 {
			continue
		}
		t.addPoints(points...)

		element := "trans:Marking"
		if t.opts.Version == citygml.Version2 {
			element = "gen:GenericCityObject"
		}
		feature := &citygml.Feature{
			XMLName: xml.Name{Local: element},
			ID:      t.gen.FeatureID(fmt.Sprintf("%s_M%d", lane.ID.HashKey(), mi)),
			Name:    fmt.Sprintf("RoadMark_%s", mark.Type),
			Attributes: []citygml.StringAttribute{
				{Name: "roadMarkType", Value: mark.Type},
				{Name: "roadMarkColor", Value: mark.Color},
			},
			Lod2Curve: t.gen.buildLineString(points),
		}
		t.addFeature(feature)
	}
}

// transformObject routes a road object and renders its geometry per LoD
// rules; solids additionally get face-cutout boundaries.
func (t *transformer) transformObject(obj *roadspace.Object, loc string) {
	class := routeObject(obj.Type)
	r, err := transformGeometry(obj, t.offset)
	if err != nil {
		t.rep.Error(loc, "object %s dropped: %v", obj.ID.Object, err)
		return
	}
	if !r.hasGeometry() {
		t.rep.Error(loc, "object %s has no usable geometry", obj.ID.Object)
		return
	}
	t.addPolygons(r.solidPolygons)
	t.addPolygons(r.surfacePolys)
	t.addPoints(r.curve...)
	if r.point != nil {
		t.addPoints(*r.point)
	}

	feature := &citygml.Feature{
		XMLName: xml.Name{Local: featureElement(class, t.opts.Version)},
		ID:      t.gen.FeatureID(obj.ID.HashKey()),
		Name:    obj.Name,
	}
	for _, k := range sortedKeys(obj.Attributes) {
		if obj.Attributes[k] == "" {
			continue
		}
		feature.Attributes = append(feature.Attributes, citygml.StringAttribute{Name: k, Value: obj.Attributes[k]})
	}
	populateLods(feature, r, t.gen)

	// Typed faces for solids: cut the boundary into top, side and base.
	if len(r.solidPolygons) > 0 && t.opts.Version == citygml.Version3 {
		t.attachFaceCutouts(feature, r.solidPolygons)
	}
	t.addFeature(feature)
}

// attachFaceCutouts groups solid faces by their normal classification.
func (t *transformer) attachFaceCutouts(feature *citygml.Feature, polygons []surface.Polygon3D) {
	groups := map[FaceKind][]surface.Polygon3D{}
	for _, p := range polygons {
		kind := classifyFace(p)
		if kind == FaceNone {
			continue
		}
		groups[kind] = append(groups[kind], p)
	}
	names := []struct {
		kind FaceKind
		name string
	}{
		{FaceTop, "TopSurface"},
		{FaceSide, "SideSurface"},
		{FaceBase, "BaseSurface"},
	}
	for _, n := range names {
		faces := groups[n.kind]
		if len(faces) == 0 {
			continue
		}
		feature.Boundaries = append(feature.Boundaries, citygml.BoundaryProperty{
			Surface: citygml.BoundarySurface{
				XMLName:      xml.Name{Local: "core:ClosureSurface"},
				ID:           t.gen.FeatureID(feature.ID + "_" + n.name),
				Name:         n.name,
				MultiSurface: t.gen.buildMultiSurface(faces),
			},
		})
	}
}

// emitRoadLines renders the reference line, lane boundaries and lane center
// lines as generic city objects.
func (t *transformer) emitRoadLines(rs *roadspace.Roadspace, loc string) {
	emit := func(name, hashKey string, points []geomath.Vector3D) {
		points = geomath.RemoveConsecutiveDuplicates(points, t.opts.Tolerance)
		if len(points) < 2 {
			return
		}
		shift := geomath.AffineFromTranslation(t.offset)
		points = shift.TransformPoints(points)
		t.addPoints(points...)
		element := "gen:GenericOccupiedSpace"
		if t.opts.Version == citygml.Version2 {
			element = "gen:GenericCityObject"
		}
		t.addFeature(&citygml.Feature{
			XMLName:   xml.Name{Local: element},
			ID:        t.gen.FeatureID(hashKey),
			Name:      name,
			Lod2Curve: t.gen.buildLineString(points),
		})
	}

	if points, err := rs.Curve.PointList(t.opts.DiscretizationStepSize); err == nil {
		emit("RoadReferenceLine", rs.ID.HashKey()+"_RefLine", points)
	} else {
		t.rep.Error(loc, "reference line dropped: %v", err)
	}

	for si := range rs.Sections {
		for _, lane := range rs.Sections[si].Lanes() {
			if lane.ID.Lane == 0 {
				continue
			}
			if boundary, err := rs.BoundaryCurve(si, lane.ID.Lane, true); err == nil {
				if points, err := t.curvePointsOver(rs.Sections[si].Domain, boundary); err == nil {
					emit(fmt.Sprintf("LaneBoundary_%d", lane.ID.Lane), lane.ID.HashKey()+"_Boundary", points)
				}
			}
			if center, err := t.laneCenterPoints(rs, si, lane.ID.Lane); err == nil {
				emit(fmt.Sprintf("LaneCenterLine_%d", lane.ID.Lane), lane.ID.HashKey()+"_Center", center)
			}
		}
	}
}

func (t *transformer) curvePointsOver(domain interval.Range, c curve.Curve3D) ([]geomath.Vector3D, error) {
	params, err := domain.Arrange(t.opts.DiscretizationStepSize, true, t.opts.Tolerance)
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

// laneCenterPoints samples the midpoint between the lane's boundaries.
func (t *transformer) laneCenterPoints(rs *roadspace.Roadspace, sectionIndex, laneID int) ([]geomath.Vector3D, error) {
	inner, err := rs.BoundaryCurve(sectionIndex, laneID, false)
	if err != nil {
		return nil, err
	}
	outer, err := rs.BoundaryCurve(sectionIndex, laneID, true)
	if err != nil {
		return nil, err
	}
	innerPoints, err := t.curvePointsOver(rs.Sections[sectionIndex].Domain, inner)
	if err != nil {
		return nil, err
	}
	outerPoints, err := t.curvePointsOver(rs.Sections[sectionIndex].Domain, outer)
	if err != nil {
		return nil, err
	}
	points := make([]geomath.Vector3D, len(innerPoints))
	for i := range innerPoints {
		points[i] = innerPoints[i].Add(outerPoints[i].Sub(innerPoints[i]).Scale(0.5))
	}
	return points, nil
}

// linkLaneTopology sets predecessor and successor cross-references on every
// emitted lane feature.
func (t *transformer) linkLaneTopology() {
	refs := make([]roadspace.LaneRef, 0, len(t.laneFeatures))
	for ref := range t.laneFeatures {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return t.laneFeatures[refs[i]].ID < t.laneFeatures[refs[j]].ID })

	for _, ref := range refs {
		feature := t.laneFeatures[ref]
		successors, err := t.model.Successors(ref)
		if err != nil {
			t.rep.Error(fmt.Sprintf("road %s section %d lane %d", ref.RoadID, ref.SectionIndex, ref.LaneID),
				"successor resolution failed: %v", err)
			continue
		}
		for _, s := range successors {
			if target, ok := t.laneFeatures[s]; ok {
				feature.Successors = append(feature.Successors, citygml.XLink{Href: "#" + target.ID})
			}
		}
		predecessors, err := t.model.Predecessors(ref)
		if err != nil {
			continue
		}
		for _, p := range predecessors {
			if target, ok := t.laneFeatures[p]; ok {
				feature.Predecessors = append(feature.Predecessors, citygml.XLink{Href: "#" + target.ID})
			}
		}
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
