package roadspace2citygml

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tum-gis/rtron-sub004/internal/citygml"
	"github.com/tum-gis/rtron-sub004/internal/opendrive"
	"github.com/tum-gis/rtron-sub004/internal/report"
	"github.com/tum-gis/rtron-sub004/internal/roadspace"
	"github.com/tum-gis/rtron-sub004/internal/transform/opendrive2roadspace"
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.DiscretizationStepSize = 1.0
	return opts
}

// buildModel runs the OpenDRIVE → road space transformation on a source
// model so the CityGML stage is exercised on realistic inputs.
func buildModel(t *testing.T, src *opendrive.Model) *roadspace.Model {
	t.Helper()
	o2r := opendrive2roadspace.DefaultOptions()
	o2r.ModelName = "test"
	rep := &report.Report{}
	model, err := opendrive2roadspace.TransformModel(src, o2r, rep)
	require.NoError(t, err)
	require.False(t, rep.HasFatal(), "road space build failed: %+v", rep.Entries())
	return model
}

func laneWithHeight(id int, width, height float64) opendrive.Lane {
	lane := opendrive.Lane{
		ID:     id,
		Type:   "driving",
		Widths: []opendrive.Poly3Record{{A: width}},
	}
	if height != 0 {
		lane.Heights = []opendrive.HeightRecord{{Inner: height, Outer: height}}
	}
	return lane
}

func sourceRoad(length float64) opendrive.Road {
	return opendrive.Road{
		ID:     "1",
		Length: length,
		PlanView: []opendrive.PlanViewGeometry{
			{S: 0, Length: length, Kind: opendrive.KindLine},
		},
		Lanes: opendrive.Lanes{
			Sections: []opendrive.LaneSection{{
				S:      0,
				Left:   []opendrive.Lane{laneWithHeight(2, 3, 0.15), laneWithHeight(1, 3, 0)},
				Center: []opendrive.Lane{{ID: 0, Type: "none"}},
				Right:  []opendrive.Lane{laneWithHeight(-1, 3, 0)},
			}},
		},
	}
}

func featureByName(doc *citygml.CityModel, name string) *citygml.Feature {
	for _, m := range doc.Members {
		if m.Feature.Name == name {
			return m.Feature
		}
	}
	return nil
}

func TestTransformModel_EmitsLaneFeatures(t *testing.T) {
	model := buildModel(t, &opendrive.Model{Roads: []opendrive.Road{sourceRoad(10)}})
	rep := &report.Report{}
	doc, err := TransformModel(model, testOptions(), rep)
	require.NoError(t, err)

	lanes := 0
	for _, m := range doc.Members {
		if m.Feature.XMLName.Local == "trans:TrafficSpace" {
			lanes++
			assert.NotNil(t, m.Feature.Lod2MultiSurface, "lane %s missing surface", m.Feature.Name)
		}
	}
	assert.Equal(t, 3, lanes, "three driving lanes expected")
	require.NotNil(t, doc.Envelope)
}

func TestTransformModel_LateralFillerOnHeightStep(t *testing.T) {
	// Lane 2 is lifted by 0.15 over a 10 unit section; the lateral filler
	// between lane 1 and lane 2 must close an area of 10 × 0.15.
	model := buildModel(t, &opendrive.Model{Roads: []opendrive.Road{sourceRoad(10)}})
	rep := &report.Report{}
	doc, err := TransformModel(model, testOptions(), rep)
	require.NoError(t, err)

	var filler *citygml.BoundarySurface
	for _, m := range doc.Members {
		for i := range m.Feature.Boundaries {
			if m.Feature.Boundaries[i].Surface.Name == "LateralFillerSurface" {
				filler = &m.Feature.Boundaries[i].Surface
			}
		}
	}
	require.NotNil(t, filler, "lateral filler surface not emitted")
	require.NotNil(t, filler.MultiSurface)

	area := multiSurfaceArea(t, filler.MultiSurface)
	assert.InDelta(t, 10*0.15, area, 1e-6)
}

// multiSurfaceArea recomputes polygon areas from the serialized posList
// coordinates.
func multiSurfaceArea(t *testing.T, ms *citygml.MultiSurface) float64 {
	t.Helper()
	var total float64
	for _, member := range ms.Members {
		coords := strings.Fields(member.Polygon.Exterior.PosList)
		require.Equal(t, 0, len(coords)%3)
		var xs, ys, zs []float64
		for i := 0; i+2 < len(coords); i += 3 {
			xs = append(xs, parseFloat(t, coords[i]))
			ys = append(ys, parseFloat(t, coords[i+1]))
			zs = append(zs, parseFloat(t, coords[i+2]))
		}
		// Newell's formula over the ring (last vertex repeats the first).
		var nx, ny, nz float64
		n := len(xs) - 1
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			nx += (ys[i] - ys[j]) * (zs[i] + zs[j])
			ny += (zs[i] - zs[j]) * (xs[i] + xs[j])
			nz += (xs[i] - xs[j]) * (ys[i] + ys[j])
		}
		total += 0.5 * vectorNorm(nx, ny, nz)
	}
	return total
}

func TestTransformModel_StableIDsAcrossRuns(t *testing.T) {
	src := &opendrive.Model{Roads: []opendrive.Road{sourceRoad(10)}}
	first, err := TransformModel(buildModel(t, src), testOptions(), &report.Report{})
	require.NoError(t, err)
	second, err := TransformModel(buildModel(t, src), testOptions(), &report.Report{})
	require.NoError(t, err)

	require.Equal(t, len(first.Members), len(second.Members))
	for i := range first.Members {
		assert.Equal(t, first.Members[i].Feature.ID, second.Members[i].Feature.ID)
	}
}

func TestTransformModel_TopologyCrossReferences(t *testing.T) {
	roadA := sourceRoad(10)
	roadA.ID = "A"
	roadA.Link.Successor = &opendrive.RoadLinkTarget{ElementType: opendrive.ElementJunction, ElementID: "J"}
	roadB := sourceRoad(10)
	roadB.ID = "B"
	src := &opendrive.Model{
		Roads: []opendrive.Road{roadA, roadB},
		Junctions: []opendrive.Junction{{
			ID: "J",
			Connections: []opendrive.Connection{{
				ID: "0", IncomingRoad: "A", ConnectingRoad: "B",
				ContactPoint: opendrive.ContactStart,
				LaneLinks:    []opendrive.LaneLink{{From: -1, To: -1}},
			}},
		}},
	}
	doc, err := TransformModel(buildModel(t, src), testOptions(), &report.Report{})
	require.NoError(t, err)

	linked := 0
	for _, m := range doc.Members {
		if len(m.Feature.Successors) > 0 {
			linked++
			assert.True(t, strings.HasPrefix(m.Feature.Successors[0].Href, "#"+DefaultGMLIDPrefix))
		}
	}
	assert.GreaterOrEqual(t, linked, 1, "junction-linked lane must carry a successor xlink")
}

func TestTransformModel_ObjectRoutingAndFaces(t *testing.T) {
	road := sourceRoad(20)
	road.Objects = []opendrive.Object{
		{ID: "b", Name: "shed", Type: "building", S: 5, T: 10, Length: 4, Width: 4, Height: 3},
		{ID: "t", Name: "oak", Type: "tree", S: 10, T: 10, Radius: 0.4, Height: 7},
		{ID: "x", Name: "blob", Type: "obstacle", S: 15, T: 10, Length: 1, Width: 1, Height: 1},
	}
	doc, err := TransformModel(buildModel(t, &opendrive.Model{Roads: []opendrive.Road{road}}), testOptions(), &report.Report{})
	require.NoError(t, err)

	elements := map[string]string{}
	for _, m := range doc.Members {
		if m.Feature.Name != "" {
			elements[m.Feature.Name] = m.Feature.XMLName.Local
		}
	}
	assert.Equal(t, "bldg:Building", elements["shed"])
	assert.Equal(t, "veg:SolitaryVegetationObject", elements["oak"])
	assert.Equal(t, "gen:GenericOccupiedSpace", elements["blob"])

	shed := featureByName(doc, "shed")
	require.NotNil(t, shed)
	require.NotNil(t, shed.Lod1Solid, "solid routed object must carry LoD1 solid")
	require.NotNil(t, shed.Lod2Solid)

	// Face cutouts: a cuboid has top, side and base groups.
	names := map[string]bool{}
	for _, b := range shed.Boundaries {
		names[b.Surface.Name] = true
	}
	assert.True(t, names["TopSurface"] && names["SideSurface"] && names["BaseSurface"],
		"cuboid boundaries = %v", names)
}

func TestTransformModel_CityGML2Routing(t *testing.T) {
	road := sourceRoad(10)
	road.Objects = []opendrive.Object{
		{ID: "x", Name: "blob", Type: "obstacle", S: 5, T: 10, Length: 1, Width: 1, Height: 1},
	}
	opts := testOptions()
	opts.Version = citygml.Version2
	doc, err := TransformModel(buildModel(t, &opendrive.Model{Roads: []opendrive.Road{road}}), opts, &report.Report{})
	require.NoError(t, err)

	elements := map[string]string{}
	lanes := 0
	for _, m := range doc.Members {
		elements[m.Feature.Name] = m.Feature.XMLName.Local
		if m.Feature.XMLName.Local == "trans:TrafficArea" {
			lanes++
		}
	}
	assert.Equal(t, "gen:GenericCityObject", elements["blob"],
		"occupied space collapses onto generic city object in CityGML 2.0")
	assert.Equal(t, 3, lanes, "lanes map to traffic areas in CityGML 2.0")
}

func TestTransformModel_AdditionalRoadLines(t *testing.T) {
	opts := testOptions()
	opts.TransformAdditionalRoadLines = true
	doc, err := TransformModel(buildModel(t, &opendrive.Model{Roads: []opendrive.Road{sourceRoad(10)}}), opts, &report.Report{})
	require.NoError(t, err)

	names := map[string]bool{}
	for _, m := range doc.Members {
		names[m.Feature.Name] = true
	}
	assert.True(t, names["RoadReferenceLine"])
	assert.True(t, names["LaneBoundary_1"])
	assert.True(t, names["LaneCenterLine_-1"])
}

func TestRouteLane_Totality(t *testing.T) {
	assert.Equal(t, RouteTrafficSpace, routeLane("driving"))
	assert.Equal(t, RouteTrafficSpace, routeLane("rail"))
	assert.Equal(t, RouteAuxiliaryTrafficSpace, routeLane("sidewalk"))
	assert.Equal(t, RouteNone, routeLane("curb"))
	assert.Equal(t, RouteNone, routeLane("none"))
	assert.Equal(t, RouteAuxiliaryTrafficSpace, routeLane("somethingNew"))
}
