package spectral

import (
	"math"
)

// SpectralFlatness computes spectral flatness (Wiener entropy): the ratio of
// the geometric to the arithmetic mean of a spectrum.
// Values near 0 indicate tonal content, values near 1 noise.
type SpectralFlatness struct {
	minThreshold float64 // Minimum value to avoid log(0)
}

// NewSpectralFlatness creates a new spectral flatness calculator
func NewSpectralFlatness() *SpectralFlatness {
	return &SpectralFlatness{
		minThreshold: 1e-10,
	}
}

// Compute calculates spectral flatness for a single magnitude spectrum.
// Silent frames return 0.
func (sf *SpectralFlatness) Compute(magnitudeSpectrum []float64) float64 {
	if len(magnitudeSpectrum) == 0 {
		return 0.0
	}

	logSum := 0.0
	arithmeticMean := 0.0

	for _, magnitude := range magnitudeSpectrum {
		logSum += math.Log(math.Max(magnitude, sf.minThreshold))
		arithmeticMean += magnitude
	}

	n := float64(len(magnitudeSpectrum))
	arithmeticMean /= n

	if arithmeticMean <= sf.minThreshold {
		return 0.0
	}

	geometricMean := math.Exp(logSum / n)
	return math.Min(1.0, geometricMean/arithmeticMean)
}

// ComputeFrames returns the flatness of every frame of a spectrogram.
func (sf *SpectralFlatness) ComputeFrames(spectrogram [][]float64) []float64 {
	flatness := make([]float64, len(spectrogram))
	for t, spectrum := range spectrogram {
		flatness[t] = sf.Compute(spectrum)
	}
	return flatness
}
