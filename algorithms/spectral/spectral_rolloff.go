package spectral

// DefaultRolloffFraction is the share of energy below the rolloff frequency.
const DefaultRolloffFraction = 0.85

// SpectralRolloff finds the frequency below which a fixed fraction of the
// spectral energy lies.
type SpectralRolloff struct {
	sampleRate int
	freqBins   []float64
}

// NewSpectralRolloff creates a new spectral rolloff calculator
func NewSpectralRolloff(sampleRate int) *SpectralRolloff {
	return &SpectralRolloff{
		sampleRate: sampleRate,
	}
}

// Compute calculates spectral rolloff for a single magnitude spectrum.
// threshold is typically DefaultRolloffFraction.
func (sr *SpectralRolloff) Compute(spectrum []float64, threshold float64) float64 {
	if len(spectrum) == 0 {
		return 0.0
	}

	if len(sr.freqBins) != len(spectrum) {
		sr.freqBins = binFrequencies(len(spectrum), sr.sampleRate)
	}

	totalEnergy := 0.0
	for _, mag := range spectrum {
		totalEnergy += mag * mag
	}

	if totalEnergy == 0 {
		return 0
	}

	targetEnergy := threshold * totalEnergy
	cumulativeEnergy := 0.0

	for i, mag := range spectrum {
		cumulativeEnergy += mag * mag
		if cumulativeEnergy >= targetEnergy {
			return sr.freqBins[i]
		}
	}

	return sr.freqBins[len(sr.freqBins)-1]
}

// ComputeFrames returns the rolloff of every frame of a spectrogram.
func (sr *SpectralRolloff) ComputeFrames(spectrogram [][]float64, threshold float64) []float64 {
	rolloffs := make([]float64, len(spectrogram))
	for t, spectrum := range spectrogram {
		rolloffs[t] = sr.Compute(spectrum, threshold)
	}
	return rolloffs
}
