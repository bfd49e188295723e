// Package roadspace2citygml maps the road-space model onto CityGML
// features: lane surfaces to traffic spaces, road objects to their thematic
// classes, filler surfaces closing discretization gaps, and lane topology
// cross-references.
package roadspace2citygml

import "github.com/tum-gis/rtron-sub004/internal/citygml"

// Options tunes the transformation.
type Options struct {
	// Version selects the target CityGML release; the routing table for
	// some object types differs between releases.
	Version citygml.Version
	// GMLIDPrefix prefixes every emitted feature id.
	GMLIDPrefix string
	// GenerateRandomGeometryIDs assigns random ids to anonymous geometry
	// elements; deterministic feature ids are unaffected.
	GenerateRandomGeometryIDs bool
	// TransformAdditionalRoadLines emits reference-line, lane-boundary and
	// lane-center polylines as generic city objects.
	TransformAdditionalRoadLines bool
	// DiscretizationStepSize samples lane surfaces and boundary polylines.
	DiscretizationStepSize float64
	// Tolerance is the global numeric tolerance.
	Tolerance float64
	// ConcurrentProcessing transforms roads in parallel workers; output
	// ordering is unaffected because features are sorted by id.
	ConcurrentProcessing bool
}

// DefaultGMLIDPrefix is prepended to generated feature ids.
const DefaultGMLIDPrefix = "UUID_"

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		Version:                citygml.Version3,
		GMLIDPrefix:            DefaultGMLIDPrefix,
		DiscretizationStepSize: 0.7,
		Tolerance:              1e-7,
	}
}
