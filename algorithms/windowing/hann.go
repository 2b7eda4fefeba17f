package windowing

import (
	"fmt"
	"math"
)

// Hann is a raised-cosine analysis window.
type Hann struct {
	size         int
	symmetric    bool
	coefficients []float64
	energy       float64
}

// NewHann creates a new Hann window. Periodic windows (symmetric=false) are
// the right choice for overlapping STFT frames.
func NewHann(size int, symmetric bool) *Hann {
	h := &Hann{
		size:      size,
		symmetric: symmetric,
	}
	h.generate()
	return h
}

func (h *Hann) generate() {
	h.coefficients = make([]float64, h.size)

	denominator := float64(h.size)
	if h.symmetric {
		denominator = float64(h.size - 1)
	}

	h.energy = 0
	for i := range h.size {
		w := 0.5 * (1.0 - math.Cos(2*math.Pi*float64(i)/denominator))
		h.coefficients[i] = w
		h.energy += w * w
	}
}

// ApplyInPlace applies the window to a signal in-place
func (h *Hann) ApplyInPlace(signal []float64) error {
	if len(signal) != h.size {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), h.size)
	}

	for i := range h.size {
		signal[i] *= h.coefficients[i]
	}

	return nil
}

// GetCoefficients returns a copy of the window coefficients
func (h *Hann) GetCoefficients() []float64 {
	coeffs := make([]float64, len(h.coefficients))
	copy(coeffs, h.coefficients)
	return coeffs
}

// GetSize returns the window size
func (h *Hann) GetSize() int {
	return h.size
}

// GetEnergy returns the sum of squared coefficients, used to normalize power spectra.
func (h *Hann) GetEnergy() float64 {
	return h.energy
}
