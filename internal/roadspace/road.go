package roadspace

import (
	"fmt"

	"github.com/tum-gis/rtron-sub004/internal/geometry/curve"
	"github.com/tum-gis/rtron-sub004/internal/interval"
	"github.com/tum-gis/rtron-sub004/internal/mathfn"
)

// LinkTargetKind distinguishes road and junction successors.
type LinkTargetKind int

const (
	// LinkToRoad links directly to another road.
	LinkToRoad LinkTargetKind = iota
	// LinkToJunction links into a junction.
	LinkToJunction
)

// ContactPoint names the end of the linked road the link attaches to.
type ContactPoint int

const (
	// ContactStart attaches at s=0.
	ContactStart ContactPoint = iota
	// ContactEnd attaches at s=length.
	ContactEnd
)

// RoadLink is a resolved predecessor or successor of a road.
type RoadLink struct {
	Kind         LinkTargetKind
	ElementID    string
	ContactPoint ContactPoint
}

// Roadspace is a road with its reference curve, lane sections and objects.
type Roadspace struct {
	ID   RoadspaceID
	Name string

	// Curve is the 3D reference curve with elevation and superelevation.
	Curve *curve.RoadCurve3D
	// Sections are ordered by domain; together they cover [0, length].
	Sections []LaneSection
	Objects  []Object

	Predecessor *RoadLink
	Successor   *RoadLink
	// JunctionID is set for connecting roads inside a junction.
	JunctionID string

	Tolerance float64
}

// Validate checks the road invariants: section partition of [0, length] and
// per-section invariants.
func (r *Roadspace) Validate() error {
	if r.Curve == nil {
		return fmt.Errorf("roadspace %s has no reference curve", r.ID.RoadID)
	}
	if len(r.Sections) == 0 {
		return fmt.Errorf("roadspace %s has no lane sections", r.ID.RoadID)
	}
	length := r.Curve.Length()
	covered := interval.NewRangeSet()
	for i, s := range r.Sections {
		if i > 0 {
			prev := r.Sections[i-1].Domain
			if !prev.FuzzyIsConnected(s.Domain, r.Tolerance) {
				return fmt.Errorf("roadspace %s sections %d and %d are not connected", r.ID.RoadID, i-1, i)
			}
		}
		if err := s.Validate(r.Tolerance); err != nil {
			return fmt.Errorf("roadspace %s section %d: %w", r.ID.RoadID, i, err)
		}
		covered = covered.Add(s.Domain)
	}
	span, err := covered.Span()
	if err != nil {
		return err
	}
	full, err := interval.NewRange(0, length)
	if err != nil {
		return err
	}
	if !span.FuzzyEquals(full, r.Tolerance) {
		return fmt.Errorf("roadspace %s sections cover [%v, %v] instead of [0, %v]",
			r.ID.RoadID, span.Lower, span.Upper, length)
	}
	return nil
}

// SectionAt returns the section containing the absolute parameter s.
func (r *Roadspace) SectionAt(s float64) (LaneSection, bool) {
	for i := len(r.Sections) - 1; i >= 0; i-- {
		if r.Sections[i].Domain.FuzzyContains(s, r.Tolerance) && s >= r.Sections[i].Domain.Lower-r.Tolerance {
			return r.Sections[i], true
		}
	}
	return LaneSection{}, false
}

// BoundaryCurve returns the 3D curve of a lane boundary: the lane's outer
// boundary if outer is true, else its inner boundary. Height offsets are
// shifted into absolute road coordinates.
func (r *Roadspace) BoundaryCurve(sectionIndex, laneID int, outer bool) (*curve.LateralTranslatedCurve, error) {
	if sectionIndex < 0 || sectionIndex >= len(r.Sections) {
		return nil, fmt.Errorf("roadspace %s has no section %d", r.ID.RoadID, sectionIndex)
	}
	section := r.Sections[sectionIndex]
	lane, ok := section.Lane(laneID)
	if !ok {
		return nil, fmt.Errorf("roadspace %s section %d has no lane %d", r.ID.RoadID, sectionIndex, laneID)
	}
	offset := lane.InnerOffset
	height := lane.InnerHeight
	if outer {
		offset = lane.OuterOffset
		height = lane.OuterHeight
	}
	if offset == nil {
		return nil, fmt.Errorf("roadspace %s section %d lane %d has no boundary offsets", r.ID.RoadID, sectionIndex, laneID)
	}
	if height != nil {
		height = mathfn.NewShifted(height, section.Domain.Lower)
	}
	return curve.NewLateralTranslatedCurve(r.Curve, offset, height, r.Tolerance)
}
