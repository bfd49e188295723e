package roadspace2citygml

import (
	"math"
	"strconv"
	"testing"
)

func parseFloat(t *testing.T, s string) float64 {
	t.Helper()
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		t.Fatalf("bad coordinate %q: %v", s, err)
	}
	return v
}

func vectorNorm(x, y, z float64) float64 {
	return math.Sqrt(x*x + y*y + z*z)
}
