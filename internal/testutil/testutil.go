// Package testutil provides shared test helpers for the geometry and
// transformation packages.
package testutil

import (
	"math"
	"testing"

	"github.com/tum-gis/rtron-sub004/internal/geomath"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertInDelta checks that got is within delta of want.
func AssertInDelta(t *testing.T, got, want, delta float64) {
	t.Helper()
	if math.IsNaN(got) || math.Abs(got-want) > delta {
		t.Errorf("value = %v, want %v within %v", got, want, delta)
	}
}

// AssertVectorInDelta checks that got is componentwise within delta of want.
func AssertVectorInDelta(t *testing.T, got, want geomath.Vector3D, delta float64) {
	t.Helper()
	if !got.FuzzyEquals(want, delta) {
		t.Errorf("vector = %+v, want %+v within %v", got, want, delta)
	}
}
