package geomath

import (
	"math"
	"testing"
)

func TestFresnel_ReferenceValues(t *testing.T) {
	// Reference values from Abramowitz & Stegun, table 7.7.
	tests := []struct {
		x, c, s float64
	}{
		{0, 0, 0},
		{0.5, 0.4923442, 0.0647324},
		{1.0, 0.7798934, 0.4382591},
		{1.5, 0.4452612, 0.6975050},
		{2.0, 0.4882534, 0.3434157},
		{3.0, 0.6057208, 0.4963130},
	}
	for _, tt := range tests {
		c, s := Fresnel(tt.x)
		if math.Abs(c-tt.c) > 1e-6 || math.Abs(s-tt.s) > 1e-6 {
			t.Errorf("Fresnel(%v) = (%v, %v), want (%v, %v)", tt.x, c, s, tt.c, tt.s)
		}
	}
}

func TestFresnel_Odd(t *testing.T) {
	c1, s1 := Fresnel(1.3)
	c2, s2 := Fresnel(-1.3)
	if c1 != -c2 || s1 != -s2 {
		t.Errorf("Fresnel is not odd: (%v, %v) vs (%v, %v)", c1, s1, c2, s2)
	}
}

func TestFresnel_Asymptotics(t *testing.T) {
	c, s := Fresnel(100)
	if math.Abs(c-0.5) > 1e-1 || math.Abs(s-0.5) > 1e-1 {
		t.Errorf("Fresnel(100) = (%v, %v), want near (0.5, 0.5)", c, s)
	}
	c, s = Fresnel(-100)
	if math.Abs(c+0.5) > 1e-1 || math.Abs(s+0.5) > 1e-1 {
		t.Errorf("Fresnel(-100) = (%v, %v), want near (-0.5, -0.5)", c, s)
	}
}
