package validator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tum-gis/rtron-sub004/internal/opendrive"
	"github.com/tum-gis/rtron-sub004/internal/report"
)

func lane(id int, width float64) opendrive.Lane {
	return opendrive.Lane{
		ID:     id,
		Type:   "driving",
		Widths: []opendrive.Poly3Record{{A: width}},
	}
}

func baseRoad() opendrive.Road {
	return opendrive.Road{
		ID:     "1",
		Length: 100,
		PlanView: []opendrive.PlanViewGeometry{
			{S: 0, Length: 100, Kind: opendrive.KindLine},
		},
		Lanes: opendrive.Lanes{
			Sections: []opendrive.LaneSection{{
				S:      0,
				Left:   []opendrive.Lane{lane(1, 3.5)},
				Center: []opendrive.Lane{lane(0, 0)},
				Right:  []opendrive.Lane{lane(-1, 3.5)},
			}},
		},
	}
}

func TestValidate_CleanModelPasses(t *testing.T) {
	model := &opendrive.Model{Roads: []opendrive.Road{baseRoad()}}
	rep := &report.Report{}
	Validate(model, Options{Tolerance: 1e-7}, rep)
	assert.Empty(t, rep.Entries())
}

func TestValidate_LaneOrderingHealed(t *testing.T) {
	road := baseRoad()
	road.Lanes.Sections[0].Left = []opendrive.Lane{lane(1, 3), lane(3, 3), lane(2, 3)}
	model := &opendrive.Model{Roads: []opendrive.Road{road}}
	rep := &report.Report{}
	Validate(model, Options{Tolerance: 1e-7}, rep)

	healed := 0
	for _, e := range rep.Entries() {
		if e.WasHealed {
			healed++
		}
	}
	assert.Equal(t, 1, healed, "expected exactly one healed entry")
	assert.False(t, rep.HasFatal())

	got := model.Roads[0].Lanes.Sections[0].Left
	require.Len(t, got, 3)
	assert.Equal(t, []int{3, 2, 1}, []int{got[0].ID, got[1].ID, got[2].ID})
}

func TestValidate_DuplicateLaneIDFatal(t *testing.T) {
	road := baseRoad()
	road.Lanes.Sections[0].Left = []opendrive.Lane{lane(1, 3), lane(1, 3)}
	model := &opendrive.Model{Roads: []opendrive.Road{road}}
	rep := &report.Report{}
	Validate(model, Options{Tolerance: 1e-7}, rep)
	assert.True(t, rep.HasFatal())
}

func TestValidate_LaneGapFatal(t *testing.T) {
	road := baseRoad()
	road.Lanes.Sections[0].Left = []opendrive.Lane{lane(1, 3), lane(3, 3)}
	model := &opendrive.Model{Roads: []opendrive.Road{road}}
	rep := &report.Report{}
	Validate(model, Options{Tolerance: 1e-7}, rep)
	assert.True(t, rep.HasFatal())
}

func TestValidate_MissingCenterLaneFatal(t *testing.T) {
	road := baseRoad()
	road.Lanes.Sections[0].Center = nil
	model := &opendrive.Model{Roads: []opendrive.Road{road}}
	rep := &report.Report{}
	Validate(model, Options{Tolerance: 1e-7}, rep)
	assert.True(t, rep.HasFatal())
}

func TestValidate_NegativeRoadLengthFatal(t *testing.T) {
	road := baseRoad()
	road.Length = -5
	model := &opendrive.Model{Roads: []opendrive.Road{road}}
	rep := &report.Report{}
	Validate(model, Options{Tolerance: 1e-7}, rep)
	assert.True(t, rep.HasFatal())
}

func TestValidate_NonFiniteScalarsHealed(t *testing.T) {
	road := baseRoad()
	road.Elevations = []opendrive.ElevationRecord{{S: 0, A: math.NaN()}}
	road.PlanView = append(road.PlanView, opendrive.PlanViewGeometry{S: 100, X: math.Inf(1), Length: 5})
	model := &opendrive.Model{Roads: []opendrive.Road{road}}
	rep := &report.Report{}
	Validate(model, Options{Tolerance: 1e-7}, rep)

	assert.False(t, rep.HasFatal())
	assert.Len(t, model.Roads[0].PlanView, 1, "non-finite plan view record removed")
	assert.Equal(t, 0.0, model.Roads[0].Elevations[0].A, "elevation healed to zero")
	healed := 0
	for _, e := range rep.Entries() {
		if e.WasHealed {
			healed++
		}
	}
	assert.Equal(t, 2, healed)
}

func TestValidate_RepeatAndOutlineHealing(t *testing.T) {
	road := baseRoad()
	road.Objects = []opendrive.Object{{
		ID: "o1",
		Repeats: []opendrive.Repeat{
			{S: 0, Length: 10, Distance: 2},
			{S: math.NaN(), Length: 10, Distance: 2},
		},
		Outlines: []opendrive.Outline{{
			CornersRoad: []opendrive.CornerRoad{
				{S: 0, T: 0, Height: -1},
				{S: math.Inf(1), T: 0},
			},
		}},
	}}
	model := &opendrive.Model{Roads: []opendrive.Road{road}}
	rep := &report.Report{}
	Validate(model, Options{Tolerance: 1e-7}, rep)

	obj := model.Roads[0].Objects[0]
	assert.Len(t, obj.Repeats, 1, "non-finite repeat filtered")
	require.Len(t, obj.Outlines[0].CornersRoad, 1, "non-finite corner filtered")
	assert.Equal(t, 0.0, obj.Outlines[0].CornersRoad[0].Height, "negative height healed")
}

func TestValidate_DanglingConnectionRoads(t *testing.T) {
	model := &opendrive.Model{
		Roads: []opendrive.Road{baseRoad()},
		Junctions: []opendrive.Junction{{
			ID: "10",
			Connections: []opendrive.Connection{
				{ID: "0", IncomingRoad: "1", ConnectingRoad: "missing"},
			},
		}},
	}
	rep := &report.Report{}
	Validate(model, Options{Tolerance: 1e-7}, rep)
	summary := rep.Summary()
	assert.Equal(t, 1, summary.Errors)
}
