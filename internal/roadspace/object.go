package roadspace

import (
	"github.com/tum-gis/rtron-sub004/internal/geomath"
	"github.com/tum-gis/rtron-sub004/internal/geometry/solid"
	"github.com/tum-gis/rtron-sub004/internal/geometry/surface"
)

// GeometryKind tags the geometry variant of a road object.
type GeometryKind int

const (
	// GeometryPoint is a bare located point.
	GeometryPoint GeometryKind = iota
	// GeometryCuboid is a box solid.
	GeometryCuboid
	// GeometryCylinder is a cylinder solid.
	GeometryCylinder
	// GeometryPolyhedron is an extruded outline solid.
	GeometryPolyhedron
	// GeometrySweep is a parametric sweep solid for continuous repeats.
	GeometrySweep
	// GeometrySurface is a flat outline, rectangle or polygon.
	GeometrySurface
	// GeometryLineString is a polyline, used for road markings and lines.
	GeometryLineString
)

// Geometry is the tagged geometry union of a road object. Exactly the fields
// implied by Kind are set.
type Geometry struct {
	Kind GeometryKind

	Point      geomath.Vector3D
	Cuboid     solid.Cuboid3D
	Cylinder   solid.Cylinder3D
	Polyhedron solid.Polyhedron3D
	Sweep      *solid.ParametricSweep3D
	Surface    surface.Polygon3D
	LineString []geomath.Vector3D
}

// Solid returns the solid variant if the geometry is one.
func (g Geometry) Solid() (solid.Solid3D, bool) {
	switch g.Kind {
	case GeometryCuboid:
		return g.Cuboid, true
	case GeometryCylinder:
		return g.Cylinder, true
	case GeometryPolyhedron:
		return g.Polyhedron, true
	case GeometrySweep:
		return g.Sweep, true
	default:
		return nil, false
	}
}

// Object is a typed road object with a resolved global pose.
type Object struct {
	ID   ObjectID
	Name string
	Type string

	// Pose places the object's local frame in world coordinates.
	Pose geomath.Affine3D
	// Geometry is expressed in the object's local frame except for
	// GeometrySweep and GeometryLineString, which are already global.
	Geometry Geometry

	Attributes map[string]string
}
