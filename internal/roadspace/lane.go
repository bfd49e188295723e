package roadspace

import (
	"fmt"
	"sort"

	"github.com/tum-gis/rtron-sub004/internal/interval"
	"github.com/tum-gis/rtron-sub004/internal/mathfn"
)

// RoadMark is a road marking on a lane boundary.
type RoadMark struct {
	Domain interval.Range // absolute s-range on the road
	Type   string
	Color  string
	Width  float64
}

// Lane is one lane of a section. Offset functions are expressed over the
// absolute road s; width and height functions over the section-local s.
type Lane struct {
	ID   LaneID
	Type string
	// Level suppresses superelevation for the lane surface.
	Level bool

	// Width is the lane width over section-local s; zero only for the
	// center lane.
	Width mathfn.UnivariateFunction
	// InnerOffset and OuterOffset are the signed lateral boundary offsets
	// from the reference line over absolute road s.
	InnerOffset mathfn.UnivariateFunction
	OuterOffset mathfn.UnivariateFunction
	// InnerHeight and OuterHeight lift the lane surface at its boundaries
	// over section-local s; nil means no lift.
	InnerHeight mathfn.UnivariateFunction
	OuterHeight mathfn.UnivariateFunction

	RoadMarks []RoadMark

	// PredecessorIDs and SuccessorIDs are the linked lane ids declared by
	// the source dataset; topology resolution turns them into lane
	// references.
	PredecessorIDs []int
	SuccessorIDs   []int

	// Attributes carries material, speed, access and rule values keyed by
	// flattened attribute names.
	Attributes map[string]string
}

// Side returns -1, 0 or +1 for right, center and left lanes.
func (l Lane) Side() int {
	switch {
	case l.ID.Lane > 0:
		return 1
	case l.ID.Lane < 0:
		return -1
	default:
		return 0
	}
}

// LaneSection groups the lanes over one s-interval of a road.
type LaneSection struct {
	ID     LaneSectionID
	Domain interval.Range // absolute s-range on the road
	Center Lane
	// Left lanes ordered descending by id (outermost first); right lanes
	// ordered ascending by id (outermost first).
	Left  []Lane
	Right []Lane
}

// Validate checks the section invariants: gapless numbering and width
// functions covering the section domain.
func (s LaneSection) Validate(tolerance float64) error {
	if s.Center.ID.Lane != 0 {
		return fmt.Errorf("center lane must have id 0, got %d", s.Center.ID.Lane)
	}
	leftIDs := make([]int, len(s.Left))
	for i, l := range s.Left {
		leftIDs[i] = l.ID.Lane
	}
	sort.Sort(sort.Reverse(sort.IntSlice(leftIDs)))
	for i, id := range leftIDs {
		if id != len(s.Left)-i {
			return fmt.Errorf("left lane ids are not gapless 1..%d: %v", len(s.Left), leftIDs)
		}
	}
	rightIDs := make([]int, len(s.Right))
	for i, l := range s.Right {
		rightIDs[i] = l.ID.Lane
	}
	sort.Ints(rightIDs)
	for i, id := range rightIDs {
		if id != -len(s.Right)+i {
			return fmt.Errorf("right lane ids are not gapless -1..-%d: %v", len(s.Right), rightIDs)
		}
	}
	localDomain, err := interval.NewRange(0, s.Domain.Length())
	if err != nil {
		return err
	}
	for _, l := range s.Lanes() {
		if l.ID.Lane == 0 {
			continue
		}
		if l.Width == nil {
			return fmt.Errorf("lane %d has no width function", l.ID.Lane)
		}
		d := l.Width.Domain()
		if !d.FuzzyContains(localDomain.Lower, tolerance) || !d.FuzzyContains(localDomain.Upper, tolerance) {
			return fmt.Errorf("lane %d width domain [%v, %v] does not cover section domain [0, %v]",
				l.ID.Lane, d.Lower, d.Upper, localDomain.Upper)
		}
	}
	return nil
}

// Lanes returns all lanes including the center lane, left side first.
func (s LaneSection) Lanes() []Lane {
	out := make([]Lane, 0, len(s.Left)+1+len(s.Right))
	out = append(out, s.Left...)
	out = append(out, s.Center)
	out = append(out, s.Right...)
	return out
}

// Lane returns the lane with the given signed id.
func (s LaneSection) Lane(id int) (Lane, bool) {
	for _, l := range s.Lanes() {
		if l.ID.Lane == id {
			return l, true
		}
	}
	return Lane{}, false
}

// LaneCount returns the number of lanes including the center lane.
func (s LaneSection) LaneCount() int { return len(s.Left) + 1 + len(s.Right) }
