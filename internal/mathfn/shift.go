package mathfn

import "github.com/tum-gis/rtron-sub004/internal/interval"

// Shifted translates a function's domain by offset: the wrapper evaluates
// fn(x - offset) over [lower+offset, upper+offset].
type Shifted struct {
	fn     UnivariateFunction
	offset float64
}

// NewShifted wraps fn with its domain translated by offset.
func NewShifted(fn UnivariateFunction, offset float64) *Shifted {
	return &Shifted{fn: fn, offset: offset}
}

func (f *Shifted) Domain() interval.Range { return f.fn.Domain().Shift(f.offset) }

func (f *Shifted) Value(x float64) (float64, error) { return f.fn.Value(x - f.offset) }

func (f *Shifted) Slope(x float64) (float64, error) { return f.fn.Slope(x - f.offset) }
