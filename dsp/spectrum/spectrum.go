package spectrum

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/cwbudde/algo-vecmath"
)

// scratchBuf holds pooled scratch memory for complex-to-real unpacking.
type scratchBuf struct {
	data []float64
}

var scratchPool = sync.Pool{
	New: func() any { return &scratchBuf{} },
}

func getScratch(n int) (re, im []float64, buf *scratchBuf) {
	buf = scratchPool.Get().(*scratchBuf)
	need := 2 * n
	if cap(buf.data) < need {
		buf.data = make([]float64, need)
	} else {
		buf.data = buf.data[:need]
	}
	return buf.data[:n], buf.data[n:need], buf
}

func putScratch(buf *scratchBuf) {
	scratchPool.Put(buf)
}

// Power returns |X[k]|^2 for each complex spectrum bin.
//
// Scratch buffers are pooled internally, so in steady state this allocates
// only the output slice.
func Power(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	out := make([]float64, len(in))
	re, im, buf := getScratch(len(in))

	for i, c := range in {
		re[i] = real(c)
		im[i] = imag(c)
	}

	vecmath.Power(out, re, im)
	putScratch(buf)
	return out
}

// InterpolateLinear performs piecewise-linear interpolation at queryX.
//
// x must be strictly increasing and have the same length as y. Queries
// outside the x range are clamped to the end values.
func InterpolateLinear(x, y, queryX []float64) ([]float64, error) {
	if err := validateAxis(x, y, "interpolate"); err != nil {
		return nil, err
	}

	out := make([]float64, len(queryX))
	for i, q := range queryX {
		if q <= x[0] {
			out[i] = y[0]
			continue
		}
		if q >= x[len(x)-1] {
			out[i] = y[len(y)-1]
			continue
		}

		j := sort.SearchFloat64s(x, q)
		x0, x1 := x[j-1], x[j]
		t := (q - x0) / (x1 - x0)
		out[i] = y[j-1] + t*(y[j]-y[j-1])
	}
	return out, nil
}

// AverageOctaveBands averages linear-domain values over a band of
// widthOctaves octaves centered (geometrically) on each of centersHz.
//
// freqHz and values must have equal length and freqHz must be strictly
// increasing with positive values. A center whose band holds no input bin
// gets NaN.
func AverageOctaveBands(freqHz, values, centersHz []float64, widthOctaves float64) ([]float64, error) {
	if err := validateAxis(freqHz, values, "octave-band"); err != nil {
		return nil, err
	}
	if widthOctaves <= 0 {
		return nil, fmt.Errorf("octave-band width must be > 0: %f", widthOctaves)
	}
	if freqHz[0] <= 0 {
		return nil, fmt.Errorf("octave-band frequencies must be > 0")
	}

	out := make([]float64, len(centersHz))
	halfBand := math.Pow(2, widthOctaves/2)

	for i, fc := range centersHz {
		fLo := fc / halfBand
		fHi := fc * halfBand

		i0 := sort.Search(len(freqHz), func(k int) bool { return freqHz[k] >= fLo })
		i1 := sort.Search(len(freqHz), func(k int) bool { return freqHz[k] > fHi })
		if i0 >= i1 {
			out[i] = math.NaN()
			continue
		}

		sum := 0.0
		for j := i0; j < i1; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(i1-i0)
	}

	return out, nil
}

func validateAxis(x, y []float64, what string) error {
	if len(x) == 0 || len(y) == 0 {
		return fmt.Errorf("%s requires non-empty x and y", what)
	}
	if len(x) != len(y) {
		return fmt.Errorf("%s x/y length mismatch: %d != %d", what, len(x), len(y))
	}
	for i := 1; i < len(x); i++ {
		if !(x[i] > x[i-1]) {
			return fmt.Errorf("%s x must be strictly increasing at index %d", what, i)
		}
	}
	return nil
}
