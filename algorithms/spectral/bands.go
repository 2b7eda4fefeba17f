package spectral

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/RyanBlaney/sonido-pulido/algorithms/windowing"
)

// Band is a named frequency range in Hz, low inclusive and high exclusive.
type Band struct {
	Name string
	Low  float64
	High float64
}

// BalanceBands are the six ranges used to judge tonal balance.
var BalanceBands = [6]Band{
	{"sub_bass", 20, 60},
	{"bass", 60, 250},
	{"low_mid", 250, 500},
	{"mid", 500, 2000},
	{"high_mid", 2000, 6000},
	{"high", 6000, 20000},
}

// BandBalance holds the share of energy, in percent, falling in each of
// BalanceBands. The shares sum to 100 unless the signal has no in-band energy.
type BandBalance [6]float64

// BandAnalyzer measures long-term band energy with averaged periodograms.
type BandAnalyzer struct {
	sampleRate int
	size       int
	hop        int
}

// NewBandAnalyzer creates an analyzer with 8192-point frames at 50% overlap.
func NewBandAnalyzer(sampleRate int) *BandAnalyzer {
	return &BandAnalyzer{sampleRate: sampleRate, size: 8192, hop: 4096}
}

// Compute returns the band balance of signal. ok is false when the signal
// carries no energy inside the measured bands.
func (ba *BandAnalyzer) Compute(signal []float64) (balance BandBalance, ok bool) {
	if len(signal) == 0 {
		return balance, false
	}

	size := ba.size
	if len(signal) < size {
		// One zero-padded frame; keep the size even for the real transform.
		size = len(signal) + len(signal)%2
	}

	fft := fourier.NewFFT(size)
	window := windowing.NewHann(size, false)
	frame := make([]float64, size)
	var coeffs []complex128
	var energies [6]float64

	binHz := float64(ba.sampleRate) / float64(size)

	for start := 0; start == 0 || start+size <= len(signal); start += ba.hop {
		clear(frame)
		copy(frame, signal[start:min(start+size, len(signal))])
		if err := window.ApplyInPlace(frame); err != nil {
			return balance, false
		}

		coeffs = fft.Coefficients(coeffs, frame)
		for k, c := range coeffs {
			freq := float64(k) * binHz
			for b, band := range BalanceBands {
				if freq >= band.Low && freq < band.High {
					mag := cmplx.Abs(c)
					energies[b] += mag * mag
					break
				}
			}
		}
	}

	total := 0.0
	for _, e := range energies {
		total += e
	}
	if total <= 0 {
		return balance, false
	}

	for b, e := range energies {
		balance[b] = 100 * e / total
	}
	return balance, true
}

// Dominant returns the index and share of the band holding the most energy.
func (bb BandBalance) Dominant() (int, float64) {
	best := 0
	for b := range bb {
		if bb[b] > bb[best] {
			best = b
		}
	}
	return best, bb[best]
}
