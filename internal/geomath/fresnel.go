package geomath

import (
	"math"
	"math/cmplx"
)

// Fresnel integral evaluation. The integrals are defined with the normalized
// argument convention
//
//	C(x) = ∫₀ˣ cos(π/2·t²) dt
//	S(x) = ∫₀ˣ sin(π/2·t²) dt
//
// For small arguments a power series is used; beyond that a complex continued
// fraction of the complementary error function, evaluated with the modified
// Lentz algorithm.
const (
	fresnelSeriesLimit = 1.5
	fresnelMaxIter     = 100
	fresnelEps         = 1.0e-12
	fresnelFPMin       = 1.0e-300
)

// Fresnel returns (C(x), S(x)) in the normalized convention above. The
// integrals are odd, so Fresnel(-x) = -Fresnel(x); both converge to ±0.5 as
// x → ±∞.
func Fresnel(x float64) (c, s float64) {
	ax := math.Abs(x)
	switch {
	case ax*ax < fresnelFPMin:
		c, s = ax, 0
	case ax <= fresnelSeriesLimit:
		c, s = fresnelSeries(ax)
	default:
		c, s = fresnelContinuedFraction(ax)
	}
	if x < 0 {
		return -c, -s
	}
	return c, s
}

func fresnelSeries(x float64) (c, s float64) {
	sum, sumC, sumS := 0.0, x, 0.0
	sign := 1.0
	fact := math.Pi / 2 * x * x
	odd := true
	term := x
	n := 3
	for k := 1; k <= fresnelMaxIter; k++ {
		term *= fact / float64(k)
		sum += sign * term / float64(n)
		test := math.Abs(sum) * fresnelEps
		if odd {
			sign = -sign
			sumS = sum
			sum = sumC
		} else {
			sumC = sum
			sum = sumS
		}
		if term < test {
			break
		}
		odd = !odd
		n += 2
	}
	return sumC, sumS
}

func fresnelContinuedFraction(x float64) (c, s float64) {
	pix2 := math.Pi * x * x
	b := complex(1, -pix2)
	cc := complex(1/fresnelFPMin, 0)
	d := 1 / b
	h := d
	n := -1
	for k := 2; k <= 2*fresnelMaxIter; k++ {
		n += 2
		a := complex(-float64(n*(n+1)), 0)
		b += complex(4, 0)
		d = 1 / (a*d + b)
		cc = b + a/cc
		del := cc * d
		h *= del
		if math.Abs(real(del)-1)+math.Abs(imag(del)) < fresnelEps {
			break
		}
	}
	h *= complex(x, -x)
	phase := cmplx.Exp(complex(0, pix2/2))
	cs := complex(0.5, 0.5) * (1 - phase*h)
	return real(cs), imag(cs)
}
