package curve

import (
	"fmt"
	"sort"

	"github.com/tum-gis/rtron-sub004/internal/geomath"
	"github.com/tum-gis/rtron-sub004/internal/interval"
)

// CompositeCurve2D concatenates member curves under a single global arc
// length parameter. Member k covers the absolute range
// [offset(k), offset(k)+length(k)]; at shared boundaries the later member
// wins.
type CompositeCurve2D struct {
	members   []Curve2D
	offsets   []float64 // absolute start parameter per member
	length    float64
	tolerance float64
}

// NewCompositeCurve2D builds a composite from the ordered members. The
// members must already be globally placed; their lengths determine the
// absolute parameter ranges.
func NewCompositeCurve2D(members []Curve2D, tolerance float64) (*CompositeCurve2D, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("composite curve requires at least one member")
	}
	offsets := make([]float64, len(members))
	var total float64
	for i, m := range members {
		offsets[i] = total
		total += m.Length()
	}
	if !(total >= tolerance) {
		return nil, fmt.Errorf("composite curve length %v below tolerance %v", total, tolerance)
	}
	return &CompositeCurve2D{members: members, offsets: offsets, length: total, tolerance: tolerance}, nil
}

func (c *CompositeCurve2D) Length() float64 { return c.length }

// Members returns the member curves in order.
func (c *CompositeCurve2D) Members() []Curve2D { return c.members }

// CoveredRanges returns the absolute parameter ranges of the members as a
// range set; since the members are contiguous this joins to a single range.
func (c *CompositeCurve2D) CoveredRanges() interval.RangeSet {
	rs := interval.NewRangeSet()
	for i, m := range c.members {
		r, err := interval.NewRange(c.offsets[i], c.offsets[i]+m.Length())
		if err == nil {
			rs = rs.Add(r)
		}
	}
	return rs
}

// locate maps the global parameter to (member index, local parameter).
func (c *CompositeCurve2D) locate(s float64) (int, float64, error) {
	s, err := checkParam(s, c.length, c.tolerance)
	if err != nil {
		return 0, 0, err
	}
	i := sort.Search(len(c.offsets), func(i int) bool { return c.offsets[i] > s })
	i--
	if i < 0 {
		i = 0
	}
	local := s - c.offsets[i]
	// The global clamp can still leave local epsilon-past the member end.
	if local > c.members[i].Length() {
		local = c.members[i].Length()
	}
	return i, local, nil
}

func (c *CompositeCurve2D) PointAt(s float64) (geomath.Vector2D, error) {
	i, local, err := c.locate(s)
	if err != nil {
		return geomath.Vector2D{}, err
	}
	return c.members[i].PointAt(local)
}

func (c *CompositeCurve2D) HeadingAt(s float64) (float64, error) {
	i, local, err := c.locate(s)
	if err != nil {
		return 0, err
	}
	return c.members[i].HeadingAt(local)
}
