package spectrum

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SavitzkyGolay is a least-squares polynomial smoothing filter.
//
// Each output sample is the value at that position of the polynomial of the
// configured order fitted to a window of samples. Interior samples use the
// window centered on them; the first and last window/2 samples are evaluated
// on the fit of the first and last full window, so polynomials of degree <=
// order pass through unchanged everywhere.
type SavitzkyGolay struct {
	window int
	order  int
	hat    *mat.Dense // window x window, row r evaluates the fit at position r
}

// NewSavitzkyGolay designs a filter. window must be odd and positive and
// order must be smaller than window.
func NewSavitzkyGolay(window, order int) (*SavitzkyGolay, error) {
	if window <= 0 || window%2 == 0 {
		return nil, fmt.Errorf("savitzky-golay window must be odd and > 0: %d", window)
	}
	if order < 0 || order >= window {
		return nil, fmt.Errorf("savitzky-golay order must be in [0,%d): %d", window, order)
	}

	half := window / 2
	scale := float64(max(half, 1))
	p := order + 1

	// Vandermonde on positions scaled to [-1, 1] for conditioning; the
	// projection does not depend on the scale.
	a := mat.NewDense(window, p, nil)
	for i := range window {
		x := float64(i-half) / scale
		v := 1.0
		for k := range p {
			a.Set(i, k, v)
			v *= x
		}
	}

	var ata mat.Dense
	ata.Mul(a.T(), a)

	var inv mat.Dense
	if err := inv.Inverse(&ata); err != nil {
		return nil, fmt.Errorf("savitzky-golay design: %w", err)
	}

	var proj mat.Dense
	proj.Mul(&inv, a.T())

	hat := mat.NewDense(window, window, nil)
	hat.Mul(a, &proj)

	return &SavitzkyGolay{window: window, order: order, hat: hat}, nil
}

// Window returns the filter length.
func (s *SavitzkyGolay) Window() int { return s.window }

// Order returns the polynomial order.
func (s *SavitzkyGolay) Order() int { return s.order }

// Filter returns the smoothed copy of values. values must hold at least
// Window() samples.
func (s *SavitzkyGolay) Filter(values []float64) ([]float64, error) {
	n := len(values)
	if n < s.window {
		return nil, fmt.Errorf("savitzky-golay input shorter than window: %d < %d", n, s.window)
	}

	half := s.window / 2
	out := make([]float64, n)

	center := s.hat.RawRowView(half)
	for i := half; i < n-half; i++ {
		out[i] = floats.Dot(center, values[i-half:i+half+1])
	}

	head := values[:s.window]
	tail := values[n-s.window:]
	for r := range half {
		out[r] = floats.Dot(s.hat.RawRowView(r), head)
		out[n-half+r] = floats.Dot(s.hat.RawRowView(half+1+r), tail)
	}

	return out, nil
}
