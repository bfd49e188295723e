package roadspace2citygml

import (
	"math"

	"github.com/google/uuid"

	"github.com/tum-gis/rtron-sub004/internal/citygml"
	"github.com/tum-gis/rtron-sub004/internal/geomath"
	"github.com/tum-gis/rtron-sub004/internal/geometry/surface"
	"github.com/tum-gis/rtron-sub004/internal/roadspace"
)

// FaceKind classifies a solid face by its normal.
type FaceKind int

const (
	// FaceNone marks an undefined normal.
	FaceNone FaceKind = iota
	// FaceTop faces are within π/4 of +Z.
	FaceTop
	// FaceSide faces are between π/4 and 3π/4 of +Z.
	FaceSide
	// FaceBase faces are more than 3π/4 from +Z.
	FaceBase
)

// classifyFace cuts a polygon out of a solid boundary by its normal angle to
// +Z.
func classifyFace(p surface.Polygon3D) FaceKind {
	normal, err := p.Normal()
	if err != nil {
		return FaceNone
	}
	angle := normal.AngleTo(geomath.Vector3D{Z: 1})
	switch {
	case angle < math.Pi/4:
		return FaceTop
	case angle > 3*math.Pi/4:
		return FaceBase
	default:
		return FaceSide
	}
}

// representations are the four CityGML-ready renderings of a geometry, best
// first: solid, multi-surface, curve, point.
type representations struct {
	solidPolygons []surface.Polygon3D
	surfacePolys  []surface.Polygon3D
	curve         []geomath.Vector3D
	point         *geomath.Vector3D
}

// hasGeometry reports whether any representation is populated.
func (r representations) hasGeometry() bool {
	return len(r.solidPolygons) > 0 || len(r.surfacePolys) > 0 || len(r.curve) > 0 || r.point != nil
}

// transformGeometry renders an object geometry into its representations,
// applying the object pose and the model offset.
func transformGeometry(obj *roadspace.Object, offset geomath.Vector3D) (representations, error) {
	var out representations
	shift := geomath.AffineFromTranslation(offset)
	pose := shift.Append(obj.Pose)

	if s, ok := obj.Geometry.Solid(); ok {
		polygons, err := s.Polygons()
		if err != nil {
			return out, err
		}
		for i, p := range polygons {
			polygons[i] = p.Transform(pose)
		}
		out.solidPolygons = polygons
		return out, nil
	}

	switch obj.Geometry.Kind {
	case roadspace.GeometrySurface:
		out.surfacePolys = []surface.Polygon3D{obj.Geometry.Surface.Transform(pose)}
	case roadspace.GeometryLineString:
		out.curve = pose.TransformPoints(obj.Geometry.LineString)
	default:
		p := pose.TransformPoint(geomath.Vector3D{})
		out.point = &p
	}
	return out, nil
}

// idGenerator derives feature ids. Feature ids are name-based UUIDs over the
// identifier hash key, reproducible across runs on identical input; random
// ids are only handed out for anonymous geometry when enabled.
type idGenerator struct {
	prefix string
	random bool
}

// FeatureID returns prefix + UUIDv5(hashKey).
func (g idGenerator) FeatureID(hashKey string) string {
	return g.prefix + uuid.NewSHA1(uuid.NameSpaceOID, []byte(hashKey)).String()
}

// GeometryID returns a random id for an anonymous geometry element, or the
// empty string when random ids are disabled.
func (g idGenerator) GeometryID() string {
	if !g.random {
		return ""
	}
	return g.prefix + uuid.NewString()
}

// buildSolid renders polygons as a gml:Solid.
func (g idGenerator) buildSolid(polygons []surface.Polygon3D) *citygml.Solid {
	s := &citygml.Solid{ID: g.GeometryID()}
	for _, p := range polygons {
		s.Members = append(s.Members, citygml.SurfaceMember{Polygon: g.buildPolygon(p)})
	}
	return s
}

// buildMultiSurface renders polygons as a gml:MultiSurface.
func (g idGenerator) buildMultiSurface(polygons []surface.Polygon3D) *citygml.MultiSurface {
	m := &citygml.MultiSurface{ID: g.GeometryID()}
	for _, p := range polygons {
		m.Members = append(m.Members, citygml.SurfaceMember{Polygon: g.buildPolygon(p)})
	}
	return m
}

func (g idGenerator) buildPolygon(p surface.Polygon3D) citygml.Polygon {
	// The ring closes by repeating the first vertex.
	ring := append(append([]geomath.Vector3D{}, p.Vertices...), p.Vertices[0])
	return citygml.Polygon{
		ID:       g.GeometryID(),
		Exterior: citygml.LinearRing{PosList: citygml.FormatPosList(ring)},
	}
}

func (g idGenerator) buildLineString(points []geomath.Vector3D) *citygml.LineString {
	return &citygml.LineString{ID: g.GeometryID(), PosList: citygml.FormatPosList(points)}
}

func (g idGenerator) buildPoint(p geomath.Vector3D) *citygml.Point {
	return &citygml.Point{ID: g.GeometryID(), Pos: citygml.FormatPos(p)}
}

// populateLods fills the feature's geometry properties per the LoD rules:
// LoD0 point only, LoD1 solid only, LoD2 and LoD3 the first available of
// solid, multi-surface, curve.
func populateLods(f *citygml.Feature, r representations, g idGenerator) {
	if r.point != nil {
		f.Lod0Point = g.buildPoint(*r.point)
	}
	if len(r.solidPolygons) > 0 {
		f.Lod1Solid = g.buildSolid(r.solidPolygons)
		f.Lod2Solid = g.buildSolid(r.solidPolygons)
		f.Lod3Solid = g.buildSolid(r.solidPolygons)
		return
	}
	if len(r.surfacePolys) > 0 {
		f.Lod2MultiSurface = g.buildMultiSurface(r.surfacePolys)
		f.Lod3MultiSurface = g.buildMultiSurface(r.surfacePolys)
		return
	}
	if len(r.curve) > 0 {
		f.Lod2Curve = g.buildLineString(r.curve)
		f.Lod3Curve = g.buildLineString(r.curve)
	}
}
