package solid

import (
	"fmt"

	"github.com/tum-gis/rtron-sub004/internal/geomath"
	"github.com/tum-gis/rtron-sub004/internal/geometry/surface"
	"github.com/tum-gis/rtron-sub004/internal/tessellation"
)

// HeadPoints tags which head points a vertical outline element carries.
type HeadPoints int

const (
	// BaseOnly marks an element without head points.
	BaseOnly HeadPoints = iota
	// LeftHeadOnly marks an element with only the left head point.
	LeftHeadOnly
	// RightHeadOnly marks an element with only the right head point.
	RightHeadOnly
	// TwoHeads marks an element with both head points.
	TwoHeads
)

// VerticalOutlineElement is one post of a cyclic outline: a base point with
// up to two head points above it. The Heads tag states which head points are
// meaningful.
type VerticalOutlineElement struct {
	Base      geomath.Vector3D
	LeftHead  geomath.Vector3D
	RightHead geomath.Vector3D
	Heads     HeadPoints
}

// NewBaseElement builds an element without head points.
func NewBaseElement(base geomath.Vector3D) VerticalOutlineElement {
	return VerticalOutlineElement{Base: base, Heads: BaseOnly}
}

// NewOneHeadElement builds an element with a single head point on the given
// side.
func NewOneHeadElement(base, head geomath.Vector3D, left bool) VerticalOutlineElement {
	if left {
		return VerticalOutlineElement{Base: base, LeftHead: head, Heads: LeftHeadOnly}
	}
	return VerticalOutlineElement{Base: base, RightHead: head, Heads: RightHeadOnly}
}

// NewTwoHeadElement builds an element with both head points.
func NewTwoHeadElement(base, leftHead, rightHead geomath.Vector3D) VerticalOutlineElement {
	return VerticalOutlineElement{Base: base, LeftHead: leftHead, RightHead: rightHead, Heads: TwoHeads}
}

// hasLeft and hasRight report head availability.
func (e VerticalOutlineElement) hasLeft() bool { return e.Heads == LeftHeadOnly || e.Heads == TwoHeads }
func (e VerticalOutlineElement) hasRight() bool {
	return e.Heads == RightHeadOnly || e.Heads == TwoHeads
}

// highestHead returns the head point adjacent to the top face: the left head
// if present, else the right head, else the base point.
func (e VerticalOutlineElement) highestHead() geomath.Vector3D {
	switch e.Heads {
	case LeftHeadOnly, TwoHeads:
		return e.LeftHead
	case RightHeadOnly:
		return e.RightHead
	default:
		return e.Base
	}
}

// leftBoundary returns base-to-head vertices on the left side. A single
// head point closes the side faces on both sides of its element.
func (e VerticalOutlineElement) leftBoundary() []geomath.Vector3D {
	switch {
	case e.hasLeft():
		return []geomath.Vector3D{e.Base, e.LeftHead}
	case e.hasRight():
		return []geomath.Vector3D{e.Base, e.RightHead}
	default:
		return []geomath.Vector3D{e.Base}
	}
}

// rightBoundary returns base-to-head vertices on the right side.
func (e VerticalOutlineElement) rightBoundary() []geomath.Vector3D {
	switch {
	case e.hasRight():
		return []geomath.Vector3D{e.Base, e.RightHead}
	case e.hasLeft():
		return []geomath.Vector3D{e.Base, e.LeftHead}
	default:
		return []geomath.Vector3D{e.Base}
	}
}

// prepareOutlineElements cleans a cyclic outline: drops consecutive base
// duplicates and back-and-forth spikes, merges runs sharing a base point, and
// rejects degenerate outlines.
func prepareOutlineElements(elements []VerticalOutlineElement, tolerance float64) ([]VerticalOutlineElement, error) {
	// Drop consecutive duplicates by base point (cyclically).
	var dedup []VerticalOutlineElement
	for _, e := range elements {
		if len(dedup) > 0 && dedup[len(dedup)-1].Base.FuzzyEquals(e.Base, tolerance) {
			dedup[len(dedup)-1] = mergeElements(dedup[len(dedup)-1], e)
			continue
		}
		dedup = append(dedup, e)
	}
	if len(dedup) > 1 && dedup[0].Base.FuzzyEquals(dedup[len(dedup)-1].Base, tolerance) {
		dedup[0] = mergeElements(dedup[len(dedup)-1], dedup[0])
		dedup = dedup[:len(dedup)-1]
	}

	// Drop ...A,B,A... spike patterns.
	var cleaned []VerticalOutlineElement
	for i := 0; i < len(dedup); i++ {
		prev := dedup[(i+len(dedup)-1)%len(dedup)]
		next := dedup[(i+1)%len(dedup)]
		if len(dedup) > 3 && prev.Base.FuzzyEquals(next.Base, tolerance) {
			continue
		}
		cleaned = append(cleaned, dedup[i])
	}

	if len(cleaned) < 3 {
		return nil, fmt.Errorf("vertical outline requires at least 3 distinct elements, got %d", len(cleaned))
	}
	bases := make([]geomath.Vector3D, len(cleaned))
	for i, e := range cleaned {
		bases[i] = e.Base
	}
	if surface.IsColinear(bases, tolerance) {
		return nil, fmt.Errorf("vertical outline base points are colinear")
	}
	return cleaned, nil
}

// mergeElements unifies two elements sharing a base point, combining head
// points left-to-right.
func mergeElements(a, b VerticalOutlineElement) VerticalOutlineElement {
	out := a
	if !out.hasLeft() && b.hasLeft() {
		out.LeftHead = b.LeftHead
		if out.Heads == RightHeadOnly {
			out.Heads = TwoHeads
		} else {
			out.Heads = LeftHeadOnly
		}
	}
	if !out.hasRight() && b.hasRight() {
		out.RightHead = b.RightHead
		if out.Heads == LeftHeadOnly {
			out.Heads = TwoHeads
		} else if out.Heads == BaseOnly {
			out.Heads = RightHeadOnly
		}
	}
	return out
}

// PolyhedronFromVerticalOutline constructs a closed polyhedron from a cyclic
// sequence of vertical outline elements: a reversed base face, a top face
// through the highest head points, and side faces between neighbouring
// elements.
func PolyhedronFromVerticalOutline(elements []VerticalOutlineElement, tolerance float64) (Polyhedron3D, error) {
	prepared, err := prepareOutlineElements(elements, tolerance)
	if err != nil {
		return Polyhedron3D{}, err
	}
	triangulator := tessellation.NewTriangulator()
	var faces []surface.Polygon3D

	addRing := func(name string, vertices []geomath.Vector3D) error {
		ring, err := surface.NewLinearRing3DWithDuplicatesRemoval(vertices, tolerance)
		if err != nil {
			return nil
		}
		triangles, err := triangulator.Triangulate(ring)
		if err != nil {
			return fmt.Errorf("vertical outline %s face: %w", name, err)
		}
		faces = append(faces, triangles...)
		return nil
	}

	// Base face: base points reversed, so the normal points downward.
	base := make([]geomath.Vector3D, len(prepared))
	top := make([]geomath.Vector3D, len(prepared))
	for i, e := range prepared {
		base[len(prepared)-1-i] = e.Base
		top[i] = e.highestHead()
	}
	if err := addRing("base", base); err != nil {
		return Polyhedron3D{}, err
	}
	if err := addRing("top", top); err != nil {
		return Polyhedron3D{}, err
	}

	// Side faces between neighbouring elements join the right boundary of
	// one element to the left boundary of the next; no mid vertex is chosen
	// between head edges of different length. A pair without any head yields
	// no side face.
	for i := range prepared {
		cur := prepared[i]
		next := prepared[(i+1)%len(prepared)]
		if cur.Heads == BaseOnly && next.Heads == BaseOnly {
			continue
		}
		left := cur.rightBoundary()
		right := next.leftBoundary()
		vertices := make([]geomath.Vector3D, 0, len(left)+len(right))
		vertices = append(vertices, left...)
		for j := len(right) - 1; j >= 0; j-- {
			vertices = append(vertices, right[j])
		}
		// Reverse for an outward normal with counterclockwise base cycles.
		for a, b := 0, len(vertices)-1; a < b; a, b = a+1, b-1 {
			vertices[a], vertices[b] = vertices[b], vertices[a]
		}
		if err := addRing(fmt.Sprintf("side %d", i), vertices); err != nil {
			return Polyhedron3D{}, err
		}
	}

	return NewPolyhedron3D(faces)
}
