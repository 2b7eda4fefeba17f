package filters

import "math"

// OnePoleLowpass is a first-order low-pass with a 6 dB/octave slope.
type OnePoleLowpass struct {
	coeff float64
	state float64
}

// NewOnePoleLowpass creates a first-order low-pass at cutoff Hz.
func NewOnePoleLowpass(sampleRate int, cutoff float64) *OnePoleLowpass {
	cutoff = math.Min(cutoff, float64(sampleRate)*0.49)
	return &OnePoleLowpass{coeff: 1 - math.Exp(-2*math.Pi*cutoff/float64(sampleRate))}
}

// Process filters one sample.
func (f *OnePoleLowpass) Process(x float64) float64 {
	f.state += f.coeff * (x - f.state)
	return f.state
}

// ProcessBuffer filters a whole signal into a new slice.
func (f *OnePoleLowpass) ProcessBuffer(input []float64) []float64 {
	output := make([]float64, len(input))
	for i, x := range input {
		output[i] = f.Process(x)
	}
	return output
}
