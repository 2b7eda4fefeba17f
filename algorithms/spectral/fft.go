package spectral

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// FFT wraps the go-dsp real FFT.
type FFT struct{}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute computes the Fast Fourier Transform of a real signal. go-dsp
// handles non-power-of-two sizes.
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}
	return fft.FFTReal(x)
}

// Magnitude returns |X[k]| for the non-negative frequencies, DC through Nyquist.
func (f *FFT) Magnitude(x []float64) []float64 {
	spectrum := f.Compute(x)
	bins := len(spectrum)/2 + 1
	bins = min(bins, len(spectrum))

	mag := make([]float64, bins)
	for i := range bins {
		mag[i] = cmplx.Abs(spectrum[i])
	}
	return mag
}
