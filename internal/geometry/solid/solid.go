// Package solid provides closed 3D solids and their boundary
// polygonizations: cuboids, cylinders, parametric sweeps along a curve, and
// general triangulated polyhedra.
package solid

import (
	"fmt"
	"math"

	"github.com/tum-gis/rtron-sub004/internal/geomath"
	"github.com/tum-gis/rtron-sub004/internal/geometry/surface"
)

// Solid3D yields the closed boundary polygonization of a solid.
type Solid3D interface {
	// Polygons returns the boundary polygons of the solid.
	Polygons() ([]surface.Polygon3D, error)
}

// Cuboid3D is an axis-aligned box centered on the z-axis, with its base in
// the z=0 plane: x in [-L/2, L/2], y in [-W/2, W/2], z in [0, H].
type Cuboid3D struct {
	Length, Width, Height float64
	Tolerance             float64
}

// NewCuboid3D validates and builds a cuboid.
func NewCuboid3D(length, width, height, tolerance float64) (Cuboid3D, error) {
	for _, v := range []float64{length, width, height} {
		if !(v > 0) || math.IsInf(v, 0) {
			return Cuboid3D{}, fmt.Errorf("cuboid dimensions must be positive and finite, got (%v, %v, %v)", length, width, height)
		}
	}
	return Cuboid3D{Length: length, Width: width, Height: height, Tolerance: tolerance}, nil
}

// Polygons returns the six faces with outward-facing normals.
func (c Cuboid3D) Polygons() ([]surface.Polygon3D, error) {
	hl, hw := c.Length/2, c.Width/2
	v := func(x, y, z float64) geomath.Vector3D { return geomath.Vector3D{X: x, Y: y, Z: z} }
	faces := [][]geomath.Vector3D{
		// base (z=0, normal -z) and top (z=H, normal +z)
		{v(-hl, -hw, 0), v(-hl, hw, 0), v(hl, hw, 0), v(hl, -hw, 0)},
		{v(-hl, -hw, c.Height), v(hl, -hw, c.Height), v(hl, hw, c.Height), v(-hl, hw, c.Height)},
		// front (x=+L/2) and back (x=-L/2)
		{v(hl, hw, 0), v(hl, hw, c.Height), v(hl, -hw, c.Height), v(hl, -hw, 0)},
		{v(-hl, -hw, 0), v(-hl, -hw, c.Height), v(-hl, hw, c.Height), v(-hl, hw, 0)},
		// left (y=+W/2) and right (y=-W/2)
		{v(hl, hw, 0), v(-hl, hw, 0), v(-hl, hw, c.Height), v(hl, hw, c.Height)},
		{v(hl, -hw, 0), v(hl, -hw, c.Height), v(-hl, -hw, c.Height), v(-hl, -hw, 0)},
	}
	polygons := make([]surface.Polygon3D, 0, len(faces))
	for _, f := range faces {
		p, err := surface.NewPolygon3D(f, c.Tolerance)
		if err != nil {
			return nil, fmt.Errorf("cuboid face: %w", err)
		}
		polygons = append(polygons, p)
	}
	return polygons, nil
}

// Cylinder3D is a circular cylinder on the z-axis with its base in the z=0
// plane, tessellated into a fixed number of slices.
type Cylinder3D struct {
	Radius, Height float64
	Slices         int
	Tolerance      float64
}

// NewCylinder3D validates and builds a cylinder.
func NewCylinder3D(radius, height float64, slices int, tolerance float64) (Cylinder3D, error) {
	if !(radius > 0) || math.IsInf(radius, 0) || !(height > 0) || math.IsInf(height, 0) {
		return Cylinder3D{}, fmt.Errorf("cylinder radius and height must be positive and finite, got (%v, %v)", radius, height)
	}
	if slices < 3 {
		return Cylinder3D{}, fmt.Errorf("cylinder requires at least 3 slices, got %d", slices)
	}
	return Cylinder3D{Radius: radius, Height: height, Slices: slices, Tolerance: tolerance}, nil
}

// Polygons returns base, top and one side quad per slice.
func (c Cylinder3D) Polygons() ([]surface.Polygon3D, error) {
	ring := make([]geomath.Vector3D, c.Slices)
	for i := 0; i < c.Slices; i++ {
		phi := geomath.TwoPi * float64(i) / float64(c.Slices)
		ring[i] = geomath.Vector3D{X: c.Radius * math.Cos(phi), Y: c.Radius * math.Sin(phi)}
	}
	polygons := make([]surface.Polygon3D, 0, c.Slices+2)

	base := make([]geomath.Vector3D, c.Slices)
	top := make([]geomath.Vector3D, c.Slices)
	for i, p := range ring {
		base[c.Slices-1-i] = p
		top[i] = geomath.Vector3D{X: p.X, Y: p.Y, Z: c.Height}
	}
	for _, face := range [][]geomath.Vector3D{base, top} {
		p, err := surface.NewPolygon3D(face, c.Tolerance)
		if err != nil {
			return nil, fmt.Errorf("cylinder cap: %w", err)
		}
		polygons = append(polygons, p)
	}
	for i := 0; i < c.Slices; i++ {
		j := (i + 1) % c.Slices
		side, err := surface.NewPolygon3D([]geomath.Vector3D{
			ring[i], ring[j],
			{X: ring[j].X, Y: ring[j].Y, Z: c.Height},
			{X: ring[i].X, Y: ring[i].Y, Z: c.Height},
		}, c.Tolerance)
		if err != nil {
			return nil, fmt.Errorf("cylinder side %d: %w", i, err)
		}
		polygons = append(polygons, side)
	}
	return polygons, nil
}

// Polyhedron3D is an arbitrary solid given by its boundary polygons.
type Polyhedron3D struct {
	Faces []surface.Polygon3D
}

// NewPolyhedron3D builds a polyhedron from a non-empty face list.
func NewPolyhedron3D(faces []surface.Polygon3D) (Polyhedron3D, error) {
	if len(faces) == 0 {
		return Polyhedron3D{}, fmt.Errorf("polyhedron requires at least one face")
	}
	return Polyhedron3D{Faces: faces}, nil
}

// Polygons returns the boundary faces.
func (p Polyhedron3D) Polygons() ([]surface.Polygon3D, error) { return p.Faces, nil }

// TransformSolid applies an affine transform to a solid's polygonization and
// wraps the result as a polyhedron.
func TransformSolid(s Solid3D, a geomath.Affine3D) (Polyhedron3D, error) {
	polygons, err := s.Polygons()
	if err != nil {
		return Polyhedron3D{}, err
	}
	faces := make([]surface.Polygon3D, len(polygons))
	for i, p := range polygons {
		faces[i] = p.Transform(a)
	}
	return NewPolyhedron3D(faces)
}
