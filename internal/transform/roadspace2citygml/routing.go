package roadspace2citygml

import "github.com/tum-gis/rtron-sub004/internal/citygml"

// LaneRouting classifies a lane's CityGML target.
type LaneRouting int

const (
	// RouteTrafficSpace emits the lane as trans:TrafficSpace.
	RouteTrafficSpace LaneRouting = iota
	// RouteAuxiliaryTrafficSpace emits the lane as
	// trans:AuxiliaryTrafficSpace.
	RouteAuxiliaryTrafficSpace
	// RouteNone suppresses the lane feature.
	RouteNone
)

// routeLane maps an OpenDRIVE lane type onto its CityGML target. The
// mapping is total: unknown types fall back to auxiliary traffic space.
func routeLane(laneType string) LaneRouting {
	switch laneType {
	case "driving", "biking", "bus", "taxi", "hov", "rail", "tram",
		"entry", "exit", "onRamp", "offRamp", "connectingRamp", "mwyEntry", "mwyExit":
		return RouteTrafficSpace
	case "sidewalk", "walking", "shoulder", "parking", "restricted",
		"border", "stop", "median", "bidirectional", "special1", "special2", "special3":
		return RouteAuxiliaryTrafficSpace
	case "none", "curb":
		return RouteNone
	default:
		return RouteAuxiliaryTrafficSpace
	}
}

// ObjectClass names the CityGML feature class a road object is routed to.
type ObjectClass int

const (
	// ClassTrafficSpace routes into the transportation module.
	ClassTrafficSpace ObjectClass = iota
	// ClassAuxiliaryTrafficSpace routes beside the carriageway.
	ClassAuxiliaryTrafficSpace
	// ClassMarking is a road marking.
	ClassMarking
	// ClassBuilding is a building feature.
	ClassBuilding
	// ClassCityFurniture is street furniture.
	ClassCityFurniture
	// ClassVegetation is a solitary vegetation object.
	ClassVegetation
	// ClassGenericOccupiedSpace collects everything else.
	ClassGenericOccupiedSpace
)

// routeObject maps an OpenDRIVE object type onto a feature class. The
// mapping is total over the closed object type set; unknown types go to the
// generic class. CityGML 2.0 has no occupied-space or marking classes, so
// those collapse onto generic city objects at emission.
func routeObject(objectType string) ObjectClass {
	switch objectType {
	case "building":
		return ClassBuilding
	case "barrier", "pole", "streetLamp", "trafficIsland", "crosswalk-light",
		"signal", "gantry", "speedBump":
		return ClassCityFurniture
	case "tree", "vegetation":
		return ClassVegetation
	case "crosswalk", "roadMark":
		return ClassMarking
	case "parkingSpace":
		return ClassAuxiliaryTrafficSpace
	case "obstacle", "car", "van", "bus", "trailer", "train", "motorbike",
		"bike", "pedestrian", "wind", "patch", "none", "":
		return ClassGenericOccupiedSpace
	default:
		return ClassGenericOccupiedSpace
	}
}

// featureElement returns the XML element name of a feature class for the
// target version.
func featureElement(class ObjectClass, version citygml.Version) string {
	if version == citygml.Version2 {
		switch class {
		case ClassBuilding:
			return "bldg:Building"
		case ClassCityFurniture:
			return "frn:CityFurniture"
		case ClassVegetation:
			return "veg:SolitaryVegetationObject"
		case ClassTrafficSpace, ClassAuxiliaryTrafficSpace:
			return "trans:TrafficArea"
		default:
			// CityGML 2.0 has neither markings nor occupied spaces.
			return "gen:GenericCityObject"
		}
	}
	switch class {
	case ClassBuilding:
		return "bldg:Building"
	case ClassCityFurniture:
		return "frn:CityFurniture"
	case ClassVegetation:
		return "veg:SolitaryVegetationObject"
	case ClassTrafficSpace:
		return "trans:TrafficSpace"
	case ClassAuxiliaryTrafficSpace:
		return "trans:AuxiliaryTrafficSpace"
	case ClassMarking:
		return "trans:Marking"
	default:
		return "gen:GenericOccupiedSpace"
	}
}

// laneElement returns the XML element name for a routed lane.
func laneElement(routing LaneRouting, version citygml.Version) string {
	if version == citygml.Version2 {
		// CityGML 2.0 models lanes as traffic and auxiliary traffic areas.
		if routing == RouteAuxiliaryTrafficSpace {
			return "trans:AuxiliaryTrafficArea"
		}
		return "trans:TrafficArea"
	}
	if routing == RouteAuxiliaryTrafficSpace {
		return "trans:AuxiliaryTrafficSpace"
	}
	return "trans:TrafficSpace"
}
