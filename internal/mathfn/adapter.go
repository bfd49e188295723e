package mathfn

import "github.com/tum-gis/rtron-sub004/internal/interval"

// Adapter lifts value and slope closures into a UnivariateFunction over an
// explicit domain. The closures are only called with arguments inside the
// domain.
type Adapter struct {
	domain interval.Range
	value  func(x float64) (float64, error)
	slope  func(x float64) (float64, error)
}

// NewAdapter builds a function from closures. slope may be nil, in which
// case a central finite difference over the value closure is used.
func NewAdapter(domain interval.Range, value func(x float64) (float64, error), slope func(x float64) (float64, error)) *Adapter {
	a := &Adapter{domain: domain, value: value, slope: slope}
	if slope == nil {
		const h = 1e-6
		a.slope = func(x float64) (float64, error) {
			lo := domain.Clamp(x - h)
			hi := domain.Clamp(x + h)
			if hi == lo {
				return 0, nil
			}
			vLo, err := value(lo)
			if err != nil {
				return 0, err
			}
			vHi, err := value(hi)
			if err != nil {
				return 0, err
			}
			return (vHi - vLo) / (hi - lo), nil
		}
	}
	return a
}

func (a *Adapter) Domain() interval.Range { return a.domain }

func (a *Adapter) Value(x float64) (float64, error) {
	if err := checkDomain(a.domain, x); err != nil {
		return 0, err
	}
	return a.value(x)
}

func (a *Adapter) Slope(x float64) (float64, error) {
	if err := checkDomain(a.domain, x); err != nil {
		return 0, err
	}
	return a.slope(x)
}
