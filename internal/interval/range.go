// Package interval provides ordered intervals and interval sets over float64
// parameters, with the fuzzy-containment semantics used by the curve and lane
// machinery.
package interval

import (
	"fmt"
	"math"
)

// BoundType distinguishes open and closed interval endpoints.
type BoundType int

const (
	// Closed includes the endpoint.
	Closed BoundType = iota
	// Open excludes the endpoint.
	Open
)

// Range is an ordered interval [lower, upper] with configurable endpoint
// bound types. The zero value is the degenerate closed range [0, 0].
type Range struct {
	Lower, Upper           float64
	LowerBound, UpperBound BoundType
}

// NewRange builds a closed range. Fails if the endpoints are non-finite or
// out of order.
func NewRange(lower, upper float64) (Range, error) {
	return NewRangeWithBounds(lower, upper, Closed, Closed)
}

// NewRangeWithBounds builds a range with explicit endpoint bound types.
func NewRangeWithBounds(lower, upper float64, lowerBound, upperBound BoundType) (Range, error) {
	if math.IsNaN(lower) || math.IsNaN(upper) {
		return Range{}, fmt.Errorf("range endpoints must not be NaN, got [%v, %v]", lower, upper)
	}
	if lower > upper {
		return Range{}, fmt.Errorf("range endpoints out of order: [%v, %v]", lower, upper)
	}
	return Range{Lower: lower, Upper: upper, LowerBound: lowerBound, UpperBound: upperBound}, nil
}

// MustRange builds a closed range and panics on invalid input. For literals
// in tests and tables only.
func MustRange(lower, upper float64) Range {
	r, err := NewRange(lower, upper)
	if err != nil {
		panic(err)
	}
	return r
}

// Length returns upper - lower.
func (r Range) Length() float64 { return r.Upper - r.Lower }

// Contains reports strict containment honoring the bound types.
func (r Range) Contains(v float64) bool {
	if v < r.Lower || v > r.Upper {
		return false
	}
	if v == r.Lower && r.LowerBound == Open {
		return false
	}
	if v == r.Upper && r.UpperBound == Open {
		return false
	}
	return true
}

// FuzzyContains reports containment with both endpoints expanded by
// tolerance. Bound types are ignored under fuzzy containment.
func (r Range) FuzzyContains(v, tolerance float64) bool {
	return v >= r.Lower-tolerance && v <= r.Upper+tolerance
}

// FuzzyEquals reports endpointwise equality within tolerance.
func (r Range) FuzzyEquals(o Range, tolerance float64) bool {
	return math.Abs(r.Lower-o.Lower) <= tolerance && math.Abs(r.Upper-o.Upper) <= tolerance
}

// IsConnected reports whether r and o overlap or touch, so that their union
// is a single interval.
func (r Range) IsConnected(o Range) bool {
	return r.Lower <= o.Upper && o.Lower <= r.Upper
}

// FuzzyIsConnected reports connectedness with endpoints expanded by tolerance.
func (r Range) FuzzyIsConnected(o Range, tolerance float64) bool {
	return r.Lower-tolerance <= o.Upper && o.Lower-tolerance <= r.Upper
}

// Join merges two ranges into their spanning interval. Fails if the ranges
// are disjoint beyond tolerance.
func (r Range) Join(o Range, tolerance float64) (Range, error) {
	if !r.FuzzyIsConnected(o, tolerance) {
		return Range{}, fmt.Errorf("cannot join disconnected ranges [%v, %v] and [%v, %v]",
			r.Lower, r.Upper, o.Lower, o.Upper)
	}
	return Range{
		Lower: math.Min(r.Lower, o.Lower),
		Upper: math.Max(r.Upper, o.Upper),
	}, nil
}

// Shift translates the range by d.
func (r Range) Shift(d float64) Range {
	return Range{Lower: r.Lower + d, Upper: r.Upper + d, LowerBound: r.LowerBound, UpperBound: r.UpperBound}
}

// Clamp restricts v into [lower, upper].
func (r Range) Clamp(v float64) float64 {
	return math.Max(r.Lower, math.Min(r.Upper, v))
}

// Arrange samples the range from the lower endpoint in steps of stepSize.
// With includeEndpoint the upper endpoint is appended unless the last step
// already reaches it within tolerance. Fails on non-positive step sizes.
func (r Range) Arrange(stepSize float64, includeEndpoint bool, tolerance float64) ([]float64, error) {
	if stepSize <= 0 || math.IsNaN(stepSize) {
		return nil, fmt.Errorf("step size must be positive, got %v", stepSize)
	}
	n := int(math.Floor(r.Length() / stepSize))
	points := make([]float64, 0, n+2)
	for i := 0; i <= n; i++ {
		points = append(points, r.Lower+float64(i)*stepSize)
	}
	if includeEndpoint && math.Abs(points[len(points)-1]-r.Upper) > tolerance {
		points = append(points, r.Upper)
	}
	return points, nil
}
