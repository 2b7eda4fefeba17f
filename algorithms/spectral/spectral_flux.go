package spectral

import (
	"math"
)

// SpectralFlux measures frame-to-frame spectral change.
type SpectralFlux struct{}

// NewSpectralFlux creates a new spectral flux calculator
func NewSpectralFlux() *SpectralFlux {
	return &SpectralFlux{}
}

// Compute returns, for each pair of adjacent frames, the RMS difference of
// their magnitude spectra. Both increases and decreases count.
func (sf *SpectralFlux) Compute(spectrogram [][]float64) []float64 {
	if len(spectrogram) < 2 {
		return []float64{}
	}

	flux := make([]float64, len(spectrogram)-1)

	for t := 1; t < len(spectrogram); t++ {
		bins := min(len(spectrogram[t]), len(spectrogram[t-1]))
		if bins == 0 {
			continue
		}

		sum := 0.0
		for f := range bins {
			diff := spectrogram[t][f] - spectrogram[t-1][f]
			sum += diff * diff
		}
		flux[t-1] = math.Sqrt(sum / float64(bins))
	}

	return flux
}
