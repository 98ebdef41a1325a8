package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
)

// PowerSpectrum returns the magnitude of the first half of the spectrum of
// the longest power-of-two prefix of data. Keeping to powers of two holds
// the transform on its radix-2 path.
func PowerSpectrum(data []float64) []float64 {
	spectrum := fft.FFTReal(data[:pow2Floor(len(data))])
	ps := make([]float64, len(spectrum)/2)

	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}

	return ps
}

// DominantFrequency returns the strongest non-DC frequency of a series
// sampled once per step, in cycles per step, and its magnitude. The mean is
// removed first.
func DominantFrequency(series []float64) (freq, power float64) {
	n := pow2Floor(len(series))
	if n < 4 {
		return 0, 0
	}

	centered := make([]float64, n)
	copy(centered, series[:n])
	floats.AddConst(-floats.Sum(centered)/float64(n), centered)

	ps := PowerSpectrum(centered)
	k := floats.MaxIdx(ps[1:]) + 1
	return float64(k) / float64(n), ps[k]
}

func pow2Floor(n int) int {
	if n < 1 {
		return 0
	}
	p := 1
	for p*2 <= n {
		p *= 2
	}
	return p
}
