// Package mathfn provides univariate real functions over explicit domains.
// Evaluation outside the domain fails; the fuzzy-bounded wrapper widens the
// domain by a tolerance and clamps the argument.
package mathfn

import (
	"fmt"
	"math"
	"sort"

	"github.com/tum-gis/rtron-sub004/internal/interval"
)

// ErrOutOfDomain is wrapped by evaluation failures caused by an argument
// outside the function's domain.
var ErrOutOfDomain = fmt.Errorf("argument outside function domain")

// UnivariateFunction is a real function of one real variable over a domain.
type UnivariateFunction interface {
	// Domain returns the interval over which the function is defined.
	Domain() interval.Range

	// Value evaluates the function at x. Fails if x is outside the domain.
	Value(x float64) (float64, error)

	// Slope evaluates the first derivative at x. Fails if x is outside the
	// domain.
	Slope(x float64) (float64, error)
}

func checkDomain(d interval.Range, x float64) error {
	if !d.Contains(x) {
		return fmt.Errorf("%w: x=%v not in [%v, %v]", ErrOutOfDomain, x, d.Lower, d.Upper)
	}
	return nil
}

// Constant is the constant function over a domain.
type Constant struct {
	C      float64
	domain interval.Range
}

// NewConstant builds a constant function over the given domain.
func NewConstant(c float64, domain interval.Range) (*Constant, error) {
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return nil, fmt.Errorf("constant must be finite, got %v", c)
	}
	return &Constant{C: c, domain: domain}, nil
}

func (f *Constant) Domain() interval.Range { return f.domain }

func (f *Constant) Value(x float64) (float64, error) {
	if err := checkDomain(f.domain, x); err != nil {
		return 0, err
	}
	return f.C, nil
}

func (f *Constant) Slope(x float64) (float64, error) {
	if err := checkDomain(f.domain, x); err != nil {
		return 0, err
	}
	return 0, nil
}

// Linear is f(x) = intercept + slope·x over a domain.
type Linear struct {
	Intercept, Gradient float64
	domain              interval.Range
}

// NewLinear builds a linear function over the given domain.
func NewLinear(intercept, gradient float64, domain interval.Range) (*Linear, error) {
	if math.IsNaN(intercept) || math.IsInf(intercept, 0) || math.IsNaN(gradient) || math.IsInf(gradient, 0) {
		return nil, fmt.Errorf("linear coefficients must be finite, got (%v, %v)", intercept, gradient)
	}
	return &Linear{Intercept: intercept, Gradient: gradient, domain: domain}, nil
}

func (f *Linear) Domain() interval.Range { return f.domain }

func (f *Linear) Value(x float64) (float64, error) {
	if err := checkDomain(f.domain, x); err != nil {
		return 0, err
	}
	return f.Intercept + f.Gradient*x, nil
}

func (f *Linear) Slope(x float64) (float64, error) {
	if err := checkDomain(f.domain, x); err != nil {
		return 0, err
	}
	return f.Gradient, nil
}

// Polynomial is f(x) = Σ coefficients[i]·xⁱ over a domain.
type Polynomial struct {
	// Coefficients in ascending order of degree.
	Coefficients []float64
	domain       interval.Range
}

// NewPolynomial builds a polynomial from ascending-degree coefficients.
func NewPolynomial(coefficients []float64, domain interval.Range) (*Polynomial, error) {
	if len(coefficients) == 0 {
		return nil, fmt.Errorf("polynomial requires at least one coefficient")
	}
	for i, c := range coefficients {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("polynomial coefficient %d must be finite, got %v", i, c)
		}
	}
	cp := make([]float64, len(coefficients))
	copy(cp, coefficients)
	return &Polynomial{Coefficients: cp, domain: domain}, nil
}

func (f *Polynomial) Domain() interval.Range { return f.domain }

func (f *Polynomial) Value(x float64) (float64, error) {
	if err := checkDomain(f.domain, x); err != nil {
		return 0, err
	}
	return horner(f.Coefficients, x), nil
}

func (f *Polynomial) Slope(x float64) (float64, error) {
	if err := checkDomain(f.domain, x); err != nil {
		return 0, err
	}
	// Differentiate the coefficient vector, then evaluate.
	if len(f.Coefficients) == 1 {
		return 0, nil
	}
	d := make([]float64, len(f.Coefficients)-1)
	for i := 1; i < len(f.Coefficients); i++ {
		d[i-1] = float64(i) * f.Coefficients[i]
	}
	return horner(d, x), nil
}

func horner(coefficients []float64, x float64) float64 {
	v := 0.0
	for i := len(coefficients) - 1; i >= 0; i-- {
		v = v*x + coefficients[i]
	}
	return v
}

// piece is one member of a piecewise function: the absolute sub-domain and
// the member function, which is evaluated in local coordinates relative to
// the sub-domain start.
type piece struct {
	absolute interval.Range
	fn       UnivariateFunction
}

// Piecewise concatenates member functions over adjacent sub-domains. Member
// functions are evaluated at x - start(sub-domain), matching the s-relative
// convention of lane width and elevation records.
type Piecewise struct {
	pieces    []piece
	domain    interval.Range
	tolerance float64
}

// NewPiecewise builds a piecewise function from absolute start positions and
// member functions. starts and members must have equal length; starts must be
// strictly increasing; the overall domain runs from the first start to end.
func NewPiecewise(starts []float64, members []UnivariateFunction, end, tolerance float64) (*Piecewise, error) {
	if len(starts) == 0 || len(starts) != len(members) {
		return nil, fmt.Errorf("piecewise requires equal non-zero numbers of starts and members, got %d and %d",
			len(starts), len(members))
	}
	if !sort.Float64sAreSorted(starts) {
		return nil, fmt.Errorf("piecewise start positions must be ascending")
	}
	if end < starts[len(starts)-1]-tolerance {
		return nil, fmt.Errorf("piecewise end %v before last start %v", end, starts[len(starts)-1])
	}
	pieces := make([]piece, len(starts))
	for i := range starts {
		upper := end
		if i+1 < len(starts) {
			upper = starts[i+1]
		}
		r, err := interval.NewRange(starts[i], math.Max(starts[i], upper))
		if err != nil {
			return nil, fmt.Errorf("piecewise sub-domain %d: %w", i, err)
		}
		pieces[i] = piece{absolute: r, fn: members[i]}
	}
	domain, err := interval.NewRange(starts[0], math.Max(starts[0], end))
	if err != nil {
		return nil, err
	}
	return &Piecewise{pieces: pieces, domain: domain, tolerance: tolerance}, nil
}

func (f *Piecewise) Domain() interval.Range { return f.domain }

// find returns the member covering x, preferring the later member at shared
// boundaries.
func (f *Piecewise) find(x float64) (piece, bool) {
	i := sort.Search(len(f.pieces), func(i int) bool { return f.pieces[i].absolute.Lower > x })
	if i == 0 {
		if f.pieces[0].absolute.FuzzyContains(x, f.tolerance) {
			return f.pieces[0], true
		}
		return piece{}, false
	}
	return f.pieces[i-1], true
}

func (f *Piecewise) Value(x float64) (float64, error) {
	if err := checkDomain(f.domain, x); err != nil {
		return 0, err
	}
	p, ok := f.find(x)
	if !ok {
		return 0, fmt.Errorf("%w: no piecewise member covers x=%v", ErrOutOfDomain, x)
	}
	local := p.fn.Domain().Clamp(x - p.absolute.Lower)
	return p.fn.Value(local)
}

func (f *Piecewise) Slope(x float64) (float64, error) {
	if err := checkDomain(f.domain, x); err != nil {
		return 0, err
	}
	p, ok := f.find(x)
	if !ok {
		return 0, fmt.Errorf("%w: no piecewise member covers x=%v", ErrOutOfDomain, x)
	}
	local := p.fn.Domain().Clamp(x - p.absolute.Lower)
	return p.fn.Slope(local)
}

// Stacked is the pointwise sum of member functions. Its domain is the first
// member's domain; members beyond it are evaluated clamped.
type Stacked struct {
	members []UnivariateFunction
}

// NewStacked builds the pointwise sum of the members.
func NewStacked(members ...UnivariateFunction) (*Stacked, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("stacked function requires at least one member")
	}
	return &Stacked{members: members}, nil
}

func (f *Stacked) Domain() interval.Range { return f.members[0].Domain() }

func (f *Stacked) Value(x float64) (float64, error) {
	if err := checkDomain(f.Domain(), x); err != nil {
		return 0, err
	}
	var sum float64
	for _, m := range f.members {
		v, err := m.Value(m.Domain().Clamp(x))
		if err != nil {
			return 0, err
		}
		sum += v
	}
	return sum, nil
}

func (f *Stacked) Slope(x float64) (float64, error) {
	if err := checkDomain(f.Domain(), x); err != nil {
		return 0, err
	}
	var sum float64
	for _, m := range f.members {
		v, err := m.Slope(m.Domain().Clamp(x))
		if err != nil {
			return 0, err
		}
		sum += v
	}
	return sum, nil
}

// FuzzyBounded wraps a function, widening its domain by tolerance and
// clamping the argument into the strict domain before evaluation.
type FuzzyBounded struct {
	fn        UnivariateFunction
	tolerance float64
}

// NewFuzzyBounded wraps fn with a tolerance-widened domain.
func NewFuzzyBounded(fn UnivariateFunction, tolerance float64) *FuzzyBounded {
	return &FuzzyBounded{fn: fn, tolerance: tolerance}
}

func (f *FuzzyBounded) Domain() interval.Range {
	d := f.fn.Domain()
	r, _ := interval.NewRange(d.Lower-f.tolerance, d.Upper+f.tolerance)
	return r
}

func (f *FuzzyBounded) Value(x float64) (float64, error) {
	d := f.fn.Domain()
	if !d.FuzzyContains(x, f.tolerance) {
		return 0, fmt.Errorf("%w: x=%v not in [%v, %v] with tolerance %v",
			ErrOutOfDomain, x, d.Lower, d.Upper, f.tolerance)
	}
	return f.fn.Value(d.Clamp(x))
}

func (f *FuzzyBounded) Slope(x float64) (float64, error) {
	d := f.fn.Domain()
	if !d.FuzzyContains(x, f.tolerance) {
		return 0, fmt.Errorf("%w: x=%v not in [%v, %v] with tolerance %v",
			ErrOutOfDomain, x, d.Lower, d.Upper, f.tolerance)
	}
	return f.fn.Slope(d.Clamp(x))
}
