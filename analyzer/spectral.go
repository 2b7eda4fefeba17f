package analyzer

import (
	"fmt"

	"github.com/RyanBlaney/sonido-pulido/algorithms/common"
	"github.com/RyanBlaney/sonido-pulido/algorithms/spectral"
	"github.com/RyanBlaney/sonido-pulido/algorithms/windowing"
)

type spectralMetrics struct {
	valid    bool
	centroid float64
	rolloff  float64
	flatness float64
	flux     float64
	warning  string
}

func (a *Analyzer) measureSpectrum(mono []float64, sampleRate int) spectralMetrics {
	if len(mono) < a.opts.WindowSize {
		return spectralMetrics{
			warning: fmt.Sprintf("buffer shorter than one %d-sample spectral window; spectral metrics defaulted", a.opts.WindowSize),
		}
	}

	stft := spectral.NewSTFT()
	res, err := stft.ComputeWithWindow(mono, a.opts.WindowSize, a.opts.HopSize, sampleRate, windowing.NewHann(a.opts.WindowSize, false))
	if err != nil {
		return spectralMetrics{warning: fmt.Sprintf("spectral analysis unavailable: %v", err)}
	}

	// Silent frames carry no spectral shape; average over the audible ones.
	var audible [][]float64
	for _, frame := range res.Magnitude {
		if common.Peak(frame) > 1e-6 {
			audible = append(audible, frame)
		}
	}
	if len(audible) == 0 {
		return spectralMetrics{warning: "no audible frames; spectral metrics defaulted"}
	}

	// Scale magnitudes to the window sum so flux reads in signal units.
	norm := 2.0 / float64(a.opts.WindowSize)
	scaled := make([][]float64, len(res.Magnitude))
	for t, frame := range res.Magnitude {
		scaled[t] = make([]float64, len(frame))
		for k, v := range frame {
			scaled[t][k] = v * norm
		}
	}

	return spectralMetrics{
		valid:    true,
		centroid: common.Mean(spectral.NewSpectralCentroid(sampleRate).ComputeFrames(audible)),
		rolloff:  common.Mean(spectral.NewSpectralRolloff(sampleRate).ComputeFrames(audible, spectral.DefaultRolloffFraction)),
		flatness: common.Mean(spectral.NewSpectralFlatness().ComputeFrames(audible)),
		flux:     common.Mean(spectral.NewSpectralFlux().Compute(scaled)),
	}
}

func (m spectralMetrics) apply(r *Report) {
	r.SpectralCentroidHz = m.centroid
	r.SpectralRolloffHz = m.rolloff
	r.SpectralFlatness = m.flatness
	r.SpectralFlux = m.flux
	if m.warning != "" {
		r.Warnings = append(r.Warnings, m.warning)
	}
}

type bandMetrics struct {
	valid    bool
	balance  spectral.BandBalance
	dominant int
	share    float64
}

func (a *Analyzer) measureBands(mono []float64, sampleRate int) bandMetrics {
	balance, ok := spectral.NewBandAnalyzer(sampleRate).Compute(mono)
	if !ok {
		return bandMetrics{}
	}
	idx, share := balance.Dominant()
	return bandMetrics{valid: true, balance: balance, dominant: idx, share: share}
}

func (m bandMetrics) apply(r *Report) {
	r.BandEnergies = bandEnergiesFrom(m.balance)
	if !m.valid {
		r.Warnings = append(r.Warnings, "no in-band energy; frequency balance defaulted")
	}
}
