package interval

import (
	"math"
	"testing"
)

func TestNewRange_Validation(t *testing.T) {
	if _, err := NewRange(2, 1); err == nil {
		t.Error("expected error for out-of-order endpoints")
	}
	if _, err := NewRange(math.NaN(), 1); err == nil {
		t.Error("expected error for NaN endpoint")
	}
}

func TestRange_ContainsImpliesFuzzyContains(t *testing.T) {
	r := MustRange(1, 5)
	for _, v := range []float64{1, 2.5, 5} {
		if !r.Contains(v) {
			t.Errorf("Contains(%v) = false", v)
		}
		if !r.FuzzyContains(v, 1e-7) {
			t.Errorf("Contains(%v) but not FuzzyContains", v)
		}
	}
	if r.Contains(5.0000001) {
		t.Error("Contains past upper endpoint")
	}
	if !r.FuzzyContains(5.00000001, 1e-7) {
		t.Error("FuzzyContains should expand endpoints by tolerance")
	}
}

func TestRange_OpenBounds(t *testing.T) {
	r, err := NewRangeWithBounds(0, 1, Open, Closed)
	if err != nil {
		t.Fatal(err)
	}
	if r.Contains(0) {
		t.Error("open lower bound must exclude endpoint")
	}
	if !r.Contains(1) {
		t.Error("closed upper bound must include endpoint")
	}
}

func TestRange_Join(t *testing.T) {
	a := MustRange(0, 2)
	b := MustRange(2, 5)
	joined, err := a.Join(b, 1e-9)
	if err != nil {
		t.Fatal(err)
	}
	if joined.Lower != 0 || joined.Upper != 5 {
		t.Errorf("joined = [%v, %v], want [0, 5]", joined.Lower, joined.Upper)
	}
	c := MustRange(7, 9)
	if _, err := a.Join(c, 1e-9); err == nil {
		t.Error("expected error joining disjoint ranges")
	}
}

func TestRange_Arrange(t *testing.T) {
	r := MustRange(0, 1)
	points, err := r.Arrange(0.3, true, 1e-9)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 0.3, 0.6, 0.9, 1}
	if len(points) != len(want) {
		t.Fatalf("got %v, want %v", points, want)
	}
	for i := range want {
		if math.Abs(points[i]-want[i]) > 1e-12 {
			t.Errorf("points[%d] = %v, want %v", i, points[i], want[i])
		}
	}

	// The endpoint is not duplicated when the last step lands on it.
	points, err = r.Arrange(0.5, true, 1e-9)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 3 {
		t.Errorf("got %v, want 3 points", points)
	}

	if _, err := r.Arrange(0, true, 1e-9); err == nil {
		t.Error("expected error for zero step size")
	}
}

func TestRangeSet_UnionJoinsConnected(t *testing.T) {
	a := NewRangeSet(MustRange(0, 2))
	b := NewRangeSet(MustRange(2, 5))
	union := a.Union(b)
	ranges := union.Ranges()
	if len(ranges) != 1 {
		t.Fatalf("union has %d ranges, want 1", len(ranges))
	}
	if ranges[0].Lower != 0 || ranges[0].Upper != 5 {
		t.Errorf("union = [%v, %v], want [0, 5]", ranges[0].Lower, ranges[0].Upper)
	}
}

func TestRangeSet_Intersects(t *testing.T) {
	a := NewRangeSet(MustRange(0, 1), MustRange(4, 6))
	b := NewRangeSet(MustRange(5, 8))
	if !a.Intersects(b) {
		t.Error("expected intersection")
	}
	c := NewRangeSet(MustRange(2, 3))
	if a.Intersects(c) {
		t.Error("unexpected intersection")
	}
}

func TestRangeSet_DisjointStaysSeparate(t *testing.T) {
	s := NewRangeSet(MustRange(0, 1), MustRange(3, 4))
	if len(s.Ranges()) != 2 {
		t.Errorf("got %d ranges, want 2", len(s.Ranges()))
	}
	if s.Contains(2) {
		t.Error("gap value must not be contained")
	}
}
