// Package roadspace holds the intermediate road-space model: roads with
// their reference curves and lane sections, road objects, junctions, and the
// arena that resolves lane topology across them.
package roadspace

import (
	"fmt"
	"strconv"
)

// Attribute keys of the identifier hierarchy.
const (
	AttrModelName    = "modelName"
	AttrRoadID       = "roadId"
	AttrSectionIndex = "laneSectionIndex"
	AttrLaneID       = "laneId"
	AttrObjectID     = "objectId"
)

// RoadspaceID identifies one road within a model.
type RoadspaceID struct {
	ModelName string
	RoadID    string
}

// Attributes returns the deterministic attribute map of the identifier.
func (id RoadspaceID) Attributes() map[string]string {
	return map[string]string{AttrModelName: id.ModelName, AttrRoadID: id.RoadID}
}

// HashKey returns the stable hash key of the identifier.
func (id RoadspaceID) HashKey() string {
	return fmt.Sprintf("Roadspace_%s_%s", id.ModelName, id.RoadID)
}

// LaneSectionID identifies one lane section within a road.
type LaneSectionID struct {
	Roadspace    RoadspaceID
	SectionIndex int
}

// Attributes returns the deterministic attribute map of the identifier.
func (id LaneSectionID) Attributes() map[string]string {
	m := id.Roadspace.Attributes()
	m[AttrSectionIndex] = strconv.Itoa(id.SectionIndex)
	return m
}

// HashKey returns the stable hash key of the identifier.
func (id LaneSectionID) HashKey() string {
	return fmt.Sprintf("%s_S%d", id.Roadspace.HashKey(), id.SectionIndex)
}

// LaneID identifies one lane within a section.
type LaneID struct {
	Section LaneSectionID
	Lane    int
}

// Attributes returns the deterministic attribute map of the identifier.
func (id LaneID) Attributes() map[string]string {
	m := id.Section.Attributes()
	m[AttrLaneID] = strconv.Itoa(id.Lane)
	return m
}

// HashKey returns the stable hash key of the identifier.
func (id LaneID) HashKey() string {
	return fmt.Sprintf("%s_L%d", id.Section.HashKey(), id.Lane)
}

// ParseLaneID restores a LaneID from its attribute map.
func ParseLaneID(attributes map[string]string) (LaneID, error) {
	sectionIndex, err := strconv.Atoi(attributes[AttrSectionIndex])
	if err != nil {
		return LaneID{}, fmt.Errorf("parse lane identifier: bad section index %q", attributes[AttrSectionIndex])
	}
	lane, err := strconv.Atoi(attributes[AttrLaneID])
	if err != nil {
		return LaneID{}, fmt.Errorf("parse lane identifier: bad lane id %q", attributes[AttrLaneID])
	}
	return LaneID{
		Section: LaneSectionID{
			Roadspace:    RoadspaceID{ModelName: attributes[AttrModelName], RoadID: attributes[AttrRoadID]},
			SectionIndex: sectionIndex,
		},
		Lane: lane,
	}, nil
}

// ObjectID identifies one road object within a road.
type ObjectID struct {
	Roadspace RoadspaceID
	Object    string
	// RepeatIndex distinguishes instances of a repeated object; -1 for
	// non-repeated objects.
	RepeatIndex int
}

// Attributes returns the deterministic attribute map of the identifier.
func (id ObjectID) Attributes() map[string]string {
	m := id.Roadspace.Attributes()
	m[AttrObjectID] = id.Object
	return m
}

// HashKey returns the stable hash key of the identifier.
func (id ObjectID) HashKey() string {
	if id.RepeatIndex >= 0 {
		return fmt.Sprintf("%s_O%s_R%d", id.Roadspace.HashKey(), id.Object, id.RepeatIndex)
	}
	return fmt.Sprintf("%s_O%s", id.Roadspace.HashKey(), id.Object)
}

// JunctionID identifies one junction within a model.
type JunctionID struct {
	ModelName  string
	JunctionID string
}

// HashKey returns the stable hash key of the identifier.
func (id JunctionID) HashKey() string {
	return fmt.Sprintf("Junction_%s_%s", id.ModelName, id.JunctionID)
}
