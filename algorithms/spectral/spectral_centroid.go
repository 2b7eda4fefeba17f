package spectral

// SpectralCentroid computes the energy-weighted mean frequency of a spectrum.
type SpectralCentroid struct {
	sampleRate int
	freqBins   []float64
}

// NewSpectralCentroid creates a new spectral centroid calculator
func NewSpectralCentroid(sampleRate int) *SpectralCentroid {
	return &SpectralCentroid{
		sampleRate: sampleRate,
	}
}

// Compute calculates the centroid in Hz for a single magnitude spectrum.
func (sc *SpectralCentroid) Compute(spectrum []float64) float64 {
	if len(spectrum) == 0 {
		return 0.0
	}

	if len(sc.freqBins) != len(spectrum) {
		sc.freqBins = binFrequencies(len(spectrum), sc.sampleRate)
	}

	numerator := 0.0
	denominator := 0.0

	for i, mag := range spectrum {
		energy := mag * mag
		numerator += sc.freqBins[i] * energy
		denominator += energy
	}

	if denominator == 0 {
		return 0
	}

	return numerator / denominator
}

// ComputeFrames returns the centroid of every frame of a spectrogram.
func (sc *SpectralCentroid) ComputeFrames(spectrogram [][]float64) []float64 {
	centroids := make([]float64, len(spectrogram))
	for t, spectrum := range spectrogram {
		centroids[t] = sc.Compute(spectrum)
	}
	return centroids
}

// binFrequencies maps the numBins bins of a one-sided spectrum to Hz.
func binFrequencies(numBins, sampleRate int) []float64 {
	bins := make([]float64, numBins)
	if numBins < 2 {
		return bins
	}
	for i := range numBins {
		bins[i] = float64(i) * float64(sampleRate) / float64((numBins-1)*2)
	}
	return bins
}
