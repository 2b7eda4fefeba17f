package filters

import (
	"math"

	"github.com/RyanBlaney/sonido-pulido/algorithms/common"
)

// DCRemoval implements a DC blocking filter (high-pass filter) to remove
// the DC component (0 Hz) from audio signals.
//
// References:
//   - Julius O. Smith III, "Introduction to Digital Filters with Audio Applications"
//     https://ccrma.stanford.edu/~jos/filters/DC_Blocker.html
//
// The difference equation is:
//
//	y[n] = x[n] - x[n-1] + R * y[n-1]
type DCRemoval struct {
	poleLocation float64 // R parameter (0 < R < 1)

	x1 float64 // Previous input sample x[n-1]
	y1 float64 // Previous output sample y[n-1]
}

// NewDCRemovalWithCutoff creates a DC removal filter with specified cutoff frequency.
//
// The pole location R is calculated as:
// R = 1 - 2*pi*fc/fs
// which holds for cutoffs far below Nyquist.
func NewDCRemovalWithCutoff(sampleRate int, cutoffFreq float64) *DCRemoval {
	pole := 0.995
	if sampleRate > 0 && cutoffFreq > 0 {
		pole = common.Clamp(1.0-(2.0*math.Pi*cutoffFreq/float64(sampleRate)), 0.001, 0.99999)
	}
	return &DCRemoval{poleLocation: pole}
}

// Process applies DC removal to a single sample.
func (dc *DCRemoval) Process(input float64) float64 {
	output := input - dc.x1 + dc.poleLocation*dc.y1

	dc.x1 = input
	dc.y1 = output

	return output
}

// ProcessBuffer applies DC removal to an entire buffer of samples.
func (dc *DCRemoval) ProcessBuffer(input []float64) []float64 {
	output := make([]float64, len(input))
	for i, sample := range input {
		output[i] = dc.Process(sample)
	}
	return output
}

// Reset clears the filter's internal state.
func (dc *DCRemoval) Reset() {
	dc.x1 = 0.0
	dc.y1 = 0.0
}

// CutoffFrequency returns the approximate -3dB cutoff: fc ≈ (1-R)*fs/(2*pi)
func (dc *DCRemoval) CutoffFrequency(sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0.0
	}
	return (1.0 - dc.poleLocation) * float64(sampleRate) / (2.0 * math.Pi)
}

// RemoveDC subtracts the long-term mean and then runs a blocker at
// cutoffFreq to take out slow drift the mean cannot.
func RemoveDC(signal []float64, sampleRate int, cutoffFreq float64) []float64 {
	mean := common.Mean(signal)
	centered := make([]float64, len(signal))
	for i, v := range signal {
		centered[i] = v - mean
	}
	return NewDCRemovalWithCutoff(sampleRate, cutoffFreq).ProcessBuffer(centered)
}
