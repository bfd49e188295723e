package opendrive2roadspace

import (
	"fmt"
	"math"

	"github.com/tum-gis/rtron-sub004/internal/geomath"
	"github.com/tum-gis/rtron-sub004/internal/geometry/curve"
	"github.com/tum-gis/rtron-sub004/internal/geometry/solid"
	"github.com/tum-gis/rtron-sub004/internal/geometry/surface"
	"github.com/tum-gis/rtron-sub004/internal/interval"
	"github.com/tum-gis/rtron-sub004/internal/mathfn"
	"github.com/tum-gis/rtron-sub004/internal/opendrive"
	"github.com/tum-gis/rtron-sub004/internal/report"
	"github.com/tum-gis/rtron-sub004/internal/roadspace"
	"github.com/tum-gis/rtron-sub004/internal/tessellation"
)

// transformObjects instantiates the road's objects. Failures are local: the
// offending object is dropped with a report entry and the road continues.
func transformObjects(src *opendrive.Road, rs *roadspace.Roadspace, opts Options, rep *report.Report) {
	for i := range src.Objects {
		obj := &src.Objects[i]
		loc := fmt.Sprintf("road %s object %s", src.ID, obj.ID)

		if len(obj.Repeats) > 0 {
			transformRepeatedObject(obj, rs, loc, opts, rep)
			continue
		}
		out, err := transformSingleObject(obj, rs, opts)
		if err != nil {
			rep.Error(loc, "object dropped: %v", err)
			continue
		}
		rs.Objects = append(rs.Objects, out)
	}
}

// objectPose resolves the curve-relative pose of an object at (s, t,
// zOffset) with optional hdg/pitch/roll.
func objectPose(rs *roadspace.Roadspace, s, t, zOffset, hdg, pitch, roll float64) (geomath.Affine3D, error) {
	frame, err := rs.Curve.AffineAt(s)
	if err != nil {
		return geomath.Affine3D{}, err
	}
	rotation, err := geomath.NewRotation3D(hdg, pitch, roll)
	if err != nil {
		return geomath.Affine3D{}, err
	}
	local := geomath.AffineFromPose(geomath.Vector3D{Y: t, Z: zOffset}, rotation)
	return frame.Append(local), nil
}

func transformSingleObject(obj *opendrive.Object, rs *roadspace.Roadspace, opts Options) (roadspace.Object, error) {
	pose, err := objectPose(rs, obj.S, obj.T, obj.ZOffset, obj.Hdg, obj.Pitch, obj.Roll)
	if err != nil {
		return roadspace.Object{}, err
	}
	out := roadspace.Object{
		ID:   roadspace.ObjectID{Roadspace: rs.ID, Object: obj.ID, RepeatIndex: -1},
		Name: obj.Name,
		Type: obj.Type,
		Pose: pose,
		Attributes: map[string]string{
			"name": obj.Name,
			"type": obj.Type,
		},
	}

	if len(obj.Outlines) > 0 {
		geometry, err := transformOutlineGeometry(obj, rs, pose, opts)
		if err != nil {
			return roadspace.Object{}, err
		}
		out.Geometry = geometry
		// Outline geometry is produced in world coordinates.
		out.Pose = geomath.IdentityAffine3D()
		return out, nil
	}

	geometry, err := primitiveGeometry(obj, opts)
	if err != nil {
		return roadspace.Object{}, err
	}
	out.Geometry = geometry
	return out, nil
}

// primitiveGeometry picks the local-frame primitive implied by the object's
// size attributes.
func primitiveGeometry(obj *opendrive.Object, opts Options) (roadspace.Geometry, error) {
	switch {
	case obj.Radius > 0 && obj.Height > 0:
		cylinder, err := solid.NewCylinder3D(obj.Radius, obj.Height, opts.CircleSlices, opts.Tolerance)
		if err != nil {
			return roadspace.Geometry{}, err
		}
		return roadspace.Geometry{Kind: roadspace.GeometryCylinder, Cylinder: cylinder}, nil
	case obj.Radius > 0:
		disc, err := circlePolygon(obj.Radius, opts.CircleSlices, opts.Tolerance)
		if err != nil {
			return roadspace.Geometry{}, err
		}
		return roadspace.Geometry{Kind: roadspace.GeometrySurface, Surface: disc}, nil
	case obj.Length > 0 && obj.Width > 0 && obj.Height > 0:
		cuboid, err := solid.NewCuboid3D(obj.Length, obj.Width, obj.Height, opts.Tolerance)
		if err != nil {
			return roadspace.Geometry{}, err
		}
		return roadspace.Geometry{Kind: roadspace.GeometryCuboid, Cuboid: cuboid}, nil
	case obj.Length > 0 && obj.Width > 0:
		rectangle, err := rectanglePolygon(obj.Length, obj.Width, opts.Tolerance)
		if err != nil {
			return roadspace.Geometry{}, err
		}
		return roadspace.Geometry{Kind: roadspace.GeometrySurface, Surface: rectangle}, nil
	default:
		return roadspace.Geometry{Kind: roadspace.GeometryPoint}, nil
	}
}

func rectanglePolygon(length, width, tolerance float64) (surface.Polygon3D, error) {
	hl, hw := length/2, width/2
	return surface.NewPolygon3D([]geomath.Vector3D{
		{X: -hl, Y: -hw}, {X: hl, Y: -hw}, {X: hl, Y: hw}, {X: -hl, Y: hw},
	}, tolerance)
}

func circlePolygon(radius float64, slices int, tolerance float64) (surface.Polygon3D, error) {
	vertices := make([]geomath.Vector3D, slices)
	for i := 0; i < slices; i++ {
		phi := geomath.TwoPi * float64(i) / float64(slices)
		vertices[i] = geomath.Vector3D{X: radius * math.Cos(phi), Y: radius * math.Sin(phi)}
	}
	return surface.NewPolygon3D(vertices, tolerance)
}

// transformOutlineGeometry builds a polyhedron or flat surface from the
// object's first outline. Corners with heights extrude upward.
func transformOutlineGeometry(obj *opendrive.Object, rs *roadspace.Roadspace, pose geomath.Affine3D, opts Options) (roadspace.Geometry, error) {
	outline := obj.Outlines[0]

	var elements []solid.VerticalOutlineElement
	var extruded bool
	appendCorner := func(base geomath.Vector3D, height float64) {
		if height > opts.Tolerance {
			extruded = true
			head := base.Add(geomath.Vector3D{Z: height})
			elements = append(elements, solid.NewOneHeadElement(base, head, true))
		} else {
			elements = append(elements, solid.NewBaseElement(base))
		}
	}

	switch {
	case len(outline.CornersRoad) > 0:
		for _, c := range outline.CornersRoad {
			frame, err := rs.Curve.AffineAt(c.S)
			if err != nil {
				return roadspace.Geometry{}, err
			}
			base := frame.TransformPoint(geomath.Vector3D{Y: c.T, Z: c.DZ + obj.ZOffset})
			appendCorner(base, c.Height)
		}
	case len(outline.CornersLocal) > 0:
		for _, c := range outline.CornersLocal {
			base := pose.TransformPoint(geomath.Vector3D{X: c.U, Y: c.V, Z: c.Z})
			appendCorner(base, c.Height)
		}
	default:
		return roadspace.Geometry{}, fmt.Errorf("outline %d has no corners", outline.ID)
	}

	if extruded {
		polyhedron, err := solid.PolyhedronFromVerticalOutline(elements, opts.Tolerance)
		if err != nil {
			return roadspace.Geometry{}, err
		}
		return roadspace.Geometry{Kind: roadspace.GeometryPolyhedron, Polyhedron: polyhedron}, nil
	}

	bases := make([]geomath.Vector3D, len(elements))
	for i, e := range elements {
		bases[i] = e.Base
	}
	if polygon, err := surface.NewPolygon3D(bases, opts.Tolerance); err == nil {
		return roadspace.Geometry{Kind: roadspace.GeometrySurface, Surface: polygon}, nil
	}
	// A non-planar flat outline is triangulated into a thin polyhedron.
	ring, err := surface.NewLinearRing3DWithDuplicatesRemoval(bases, opts.Tolerance)
	if err != nil {
		return roadspace.Geometry{}, err
	}
	faces, err := tessellation.NewTriangulator().Triangulate(ring)
	if err != nil {
		return roadspace.Geometry{}, err
	}
	polyhedron, err := solid.NewPolyhedron3D(faces)
	if err != nil {
		return roadspace.Geometry{}, err
	}
	return roadspace.Geometry{Kind: roadspace.GeometryPolyhedron, Polyhedron: polyhedron}, nil
}

// transformRepeatedObject expands repeat records: zero distance sweeps a
// continuous solid along the road, positive distance instantiates discrete
// copies.
func transformRepeatedObject(obj *opendrive.Object, rs *roadspace.Roadspace, loc string, opts Options, rep *report.Report) {
	for ri, rp := range obj.Repeats {
		if rp.Length < opts.Tolerance {
			rep.Error(loc, "repeat %d has zero length; dropped", ri)
			continue
		}
		if rp.Distance == 0 {
			out, err := transformContinuousRepeat(obj, &rp, ri, rs, opts)
			if err != nil {
				rep.Error(loc, "continuous repeat %d dropped: %v", ri, err)
				continue
			}
			rs.Objects = append(rs.Objects, out)
			continue
		}
		transformDiscreteRepeat(obj, &rp, ri, rs, loc, opts, rep)
	}
}

// transformContinuousRepeat builds a parametric sweep over the repeat range.
func transformContinuousRepeat(obj *opendrive.Object, rp *opendrive.Repeat, repeatIndex int, rs *roadspace.Roadspace, opts Options) (roadspace.Object, error) {
	widthStart, widthEnd := repeatWidths(obj, rp)
	heightStart, heightEnd := repeatHeights(obj, rp)
	if widthStart <= 0 && widthEnd <= 0 {
		return roadspace.Object{}, fmt.Errorf("repeat satisfies neither sweep nor repeated-solid predicate (zero widths)")
	}
	if heightStart < 0 || heightEnd < 0 {
		return roadspace.Object{}, fmt.Errorf("repeat has negative heights")
	}

	upper := math.Min(rp.S+rp.Length, rs.Curve.Length())
	domain, err := interval.NewRange(rp.S, upper)
	if err != nil {
		return roadspace.Object{}, err
	}
	length := domain.Length()
	localDomain, err := interval.NewRange(0, length)
	if err != nil {
		return roadspace.Object{}, err
	}

	lateral, err := mathfn.NewLinear(rp.TStart-rp.S*(rp.TEnd-rp.TStart)/length, (rp.TEnd-rp.TStart)/length, domain)
	if err != nil {
		return roadspace.Object{}, err
	}
	reference, err := curve.NewLateralTranslatedCurve(rs.Curve, lateral, nil, opts.Tolerance)
	if err != nil {
		return roadspace.Object{}, err
	}
	width, err := mathfn.NewLinear(widthStart, (widthEnd-widthStart)/length, localDomain)
	if err != nil {
		return roadspace.Object{}, err
	}
	height, err := mathfn.NewLinear(heightStart, (heightEnd-heightStart)/length, localDomain)
	if err != nil {
		return roadspace.Object{}, err
	}
	base, err := mathfn.NewLinear(rp.ZOffsetStart, (rp.ZOffsetEnd-rp.ZOffsetStart)/length, localDomain)
	if err != nil {
		return roadspace.Object{}, err
	}
	sweep, err := solid.NewParametricSweep3D(reference, width, height, base, domain, opts.SweepDiscretizationStepSize, opts.Tolerance)
	if err != nil {
		return roadspace.Object{}, err
	}
	return roadspace.Object{
		ID:       roadspace.ObjectID{Roadspace: rs.ID, Object: obj.ID, RepeatIndex: repeatIndex},
		Name:     obj.Name,
		Type:     obj.Type,
		Pose:     geomath.IdentityAffine3D(),
		Geometry: roadspace.Geometry{Kind: roadspace.GeometrySweep, Sweep: sweep},
		Attributes: map[string]string{
			"name": obj.Name,
			"type": obj.Type,
		},
	}, nil
}

// transformDiscreteRepeat instantiates one primitive per repeat step.
func transformDiscreteRepeat(obj *opendrive.Object, rp *opendrive.Repeat, repeatIndex int, rs *roadspace.Roadspace, loc string, opts Options, rep *report.Report) {
	steps := int(math.Floor(rp.Length/rp.Distance)) + 1
	for k := 0; k < steps; k++ {
		fraction := 0.0
		if steps > 1 {
			fraction = float64(k) / float64(steps-1)
		}
		s := rp.S + float64(k)*rp.Distance
		if s > rs.Curve.Length()+opts.Tolerance {
			break
		}
		t := rp.TStart + fraction*(rp.TEnd-rp.TStart)
		z := rp.ZOffsetStart + fraction*(rp.ZOffsetEnd-rp.ZOffsetStart)

		widthStart, widthEnd := repeatWidths(obj, rp)
		heightStart, heightEnd := repeatHeights(obj, rp)
		instance := *obj
		instance.Width = widthStart + fraction*(widthEnd-widthStart)
		instance.Height = heightStart + fraction*(heightEnd-heightStart)
		if rp.LengthStart > 0 || rp.LengthEnd > 0 {
			instance.Length = rp.LengthStart + fraction*(rp.LengthEnd-rp.LengthStart)
		}
		if rp.RadiusStart > 0 || rp.RadiusEnd > 0 {
			instance.Radius = rp.RadiusStart + fraction*(rp.RadiusEnd-rp.RadiusStart)
		}

		geometry, err := primitiveGeometry(&instance, opts)
		if err != nil {
			rep.Error(loc, "repeat instance %d dropped: %v", k, err)
			continue
		}
		if geometry.Kind == roadspace.GeometryPoint && (instance.Width != 0 || instance.Height != 0 || instance.Radius != 0) {
			// Mixed zero radius/width combinations satisfy neither the sweep
			// nor a repeated-solid predicate.
			rep.Warning(loc, "repeat instance %d has ambiguous zero-size combination; emitted as point", k)
		}
		pose, err := objectPose(rs, s, t, z, obj.Hdg, obj.Pitch, obj.Roll)
		if err != nil {
			rep.Error(loc, "repeat instance %d dropped: %v", k, err)
			continue
		}
		rs.Objects = append(rs.Objects, roadspace.Object{
			ID:       roadspace.ObjectID{Roadspace: rs.ID, Object: obj.ID, RepeatIndex: repeatIndex*100000 + k},
			Name:     obj.Name,
			Type:     obj.Type,
			Pose:     pose,
			Geometry: geometry,
			Attributes: map[string]string{
				"name": obj.Name,
				"type": obj.Type,
			},
		})
	}
}

func repeatWidths(obj *opendrive.Object, rp *opendrive.Repeat) (start, end float64) {
	start, end = rp.WidthStart, rp.WidthEnd
	if start == 0 && end == 0 {
		start, end = obj.Width, obj.Width
	}
	return start, end
}

func repeatHeights(obj *opendrive.Object, rp *opendrive.Repeat) (start, end float64) {
	start, end = rp.HeightStart, rp.HeightEnd
	if start == 0 && end == 0 {
		start, end = obj.Height, obj.Height
	}
	return start, end
}
