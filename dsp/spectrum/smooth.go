package spectrum

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-hvsr/dsp/window"
	"gonum.org/v1/gonum/mat"
)

// KonnoOhmachi smooths spectra on a fixed frequency axis with the
// Konno & Ohmachi (1998) logarithmic window
//
//	W(f, fc) = [sin(b*log10(f/fc)) / (b*log10(f/fc))]^4
//
// where b is the bandwidth coefficient. Lower b gives broader smoothing.
// Weights are normalized so each output bin is a weighted mean.
//
// The weight matrix is computed once in [NewKonnoOhmachi] and reused for
// every row, so smoothing many windows on the same axis is a single
// matrix product.
type KonnoOhmachi struct {
	bandwidth float64
	weights   *mat.Dense
}

// NewKonnoOhmachi precomputes the normalized smoothing matrix for freqHz.
func NewKonnoOhmachi(freqHz []float64, bandwidth float64) (*KonnoOhmachi, error) {
	if len(freqHz) == 0 {
		return nil, fmt.Errorf("konno-ohmachi requires a non-empty frequency axis")
	}
	if !(bandwidth > 0) {
		return nil, fmt.Errorf("konno-ohmachi bandwidth must be > 0: %f", bandwidth)
	}

	n := len(freqHz)
	w := mat.NewDense(n, n, nil)

	for i, fc := range freqHz {
		row := w.RawRowView(i)
		sum := 0.0
		for j, f := range freqHz {
			row[j] = konnoOhmachiWeight(f, fc, bandwidth)
			sum += row[j]
		}
		if sum == 0 {
			row[i] = 1
			continue
		}
		for j := range row {
			row[j] /= sum
		}
	}

	return &KonnoOhmachi{bandwidth: bandwidth, weights: w}, nil
}

func konnoOhmachiWeight(f, fc, b float64) float64 {
	if f <= 0 || fc <= 0 {
		return 0
	}
	if f == fc {
		return 1
	}

	x := b * math.Log10(f/fc)
	s := math.Sin(x) / x
	return s * s * s * s
}

// Bandwidth returns the bandwidth coefficient b.
func (k *KonnoOhmachi) Bandwidth() float64 {
	return k.bandwidth
}

// Len returns the number of frequency bins the smoother was built for.
func (k *KonnoOhmachi) Len() int {
	r, _ := k.weights.Dims()
	return r
}

// Smooth returns a smoothed copy of values.
func (k *KonnoOhmachi) Smooth(values []float64) ([]float64, error) {
	rows, err := k.SmoothRows([][]float64{values})
	if err != nil {
		return nil, err
	}
	return rows[0], nil
}

// SmoothRows smooths every row of a [window][bin] matrix.
func (k *KonnoOhmachi) SmoothRows(rows [][]float64) ([][]float64, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	n := k.Len()
	x := mat.NewDense(len(rows), n, nil)
	for r, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("konno-ohmachi row %d length mismatch: %d != %d", r, len(row), n)
		}
		x.SetRow(r, row)
	}

	var out mat.Dense
	out.Mul(x, k.weights.T())

	res := make([][]float64, len(rows))
	for r := range res {
		res[r] = mat.Row(nil, r, &out)
	}
	return res, nil
}

// SmoothTriangular applies a centered triangular moving average with the
// given half width in bins. The center sample has weight 1 and weights fall
// linearly to 0 at offset +-halfWidth. Near the ends the kernel is truncated
// and the remaining weights renormalized.
func SmoothTriangular(values []float64, halfWidth int) ([]float64, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("triangular smoothing requires non-empty values")
	}

	out := make([]float64, len(values))
	if halfWidth < 1 {
		copy(out, values)
		return out, nil
	}

	kernel, err := window.Triangular(halfWidth)
	if err != nil {
		return nil, err
	}

	n := len(values)
	for i := range values {
		lo := max(0, i-halfWidth)
		hi := min(n-1, i+halfWidth)

		sum, wsum := 0.0, 0.0
		for j := lo; j <= hi; j++ {
			w := kernel[j-i+halfWidth]
			sum += w * values[j]
			wsum += w
		}
		out[i] = sum / wsum
	}

	return out, nil
}
