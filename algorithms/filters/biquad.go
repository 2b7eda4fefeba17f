package filters

import (
	"math"
	"math/cmplx"
)

// Biquad is a second-order IIR section.
//
// Coefficients follow Robert Bristow-Johnson's
// "Cookbook formulae for audio EQ biquad filter coefficients"
// Reference: https://webaudio.github.io/Audio-EQ-Cookbook/audio-eq-cookbook.html
//
// All coefficients are normalized by a0, and the section runs in direct
// form I:
//
//	y[n] = b0*x[n] + b1*x[n-1] + b2*x[n-2] - a1*y[n-1] - a2*y[n-2]
type Biquad struct {
	b0, b1, b2 float64
	a1, a2     float64

	x1, x2 float64
	y1, y2 float64
}

// ButterworthQ is the Q of a maximally flat second-order section.
const ButterworthQ = math.Sqrt2 / 2

// prewarp returns cos(w0) and sin(w0) for a corner frequency, keeping the
// frequency strictly between DC and Nyquist.
func prewarp(sampleRate int, freq float64) (float64, float64) {
	nyquist := float64(sampleRate) / 2
	freq = math.Max(1e-3, math.Min(freq, nyquist*0.98))
	w0 := 2 * math.Pi * freq / float64(sampleRate)
	return math.Cos(w0), math.Sin(w0)
}

func newNormalized(b0, b1, b2, a0, a1, a2 float64) *Biquad {
	return &Biquad{
		b0: b0 / a0,
		b1: b1 / a0,
		b2: b2 / a0,
		a1: a1 / a0,
		a2: a2 / a0,
	}
}

// NewLowpass creates a second-order low-pass filter.
func NewLowpass(sampleRate int, cutoff, q float64) *Biquad {
	cosw, sinw := prewarp(sampleRate, cutoff)
	alpha := sinw / (2 * q)
	return newNormalized(
		(1-cosw)/2, 1-cosw, (1-cosw)/2,
		1+alpha, -2*cosw, 1-alpha,
	)
}

// NewHighpass creates a second-order high-pass filter.
func NewHighpass(sampleRate int, cutoff, q float64) *Biquad {
	cosw, sinw := prewarp(sampleRate, cutoff)
	alpha := sinw / (2 * q)
	return newNormalized(
		(1+cosw)/2, -(1 + cosw), (1+cosw)/2,
		1+alpha, -2*cosw, 1-alpha,
	)
}

// NewBandpass creates a band-pass filter with 0 dB gain at the center
// frequency. Higher Q values create narrower, more selective filters.
func NewBandpass(sampleRate int, center, q float64) *Biquad {
	cosw, sinw := prewarp(sampleRate, center)
	alpha := sinw / (2 * q)
	return newNormalized(
		alpha, 0, -alpha,
		1+alpha, -2*cosw, 1-alpha,
	)
}

// NewNotch creates a notch (band-reject) filter.
func NewNotch(sampleRate int, center, q float64) *Biquad {
	cosw, sinw := prewarp(sampleRate, center)
	alpha := sinw / (2 * q)
	return newNormalized(
		1, -2*cosw, 1,
		1+alpha, -2*cosw, 1-alpha,
	)
}

// NewPeaking creates a peaking EQ section with gainDB at center.
func NewPeaking(sampleRate int, center, q, gainDB float64) *Biquad {
	cosw, sinw := prewarp(sampleRate, center)
	alpha := sinw / (2 * q)
	a := math.Pow(10, gainDB/40)
	return newNormalized(
		1+alpha*a, -2*cosw, 1-alpha*a,
		1+alpha/a, -2*cosw, 1-alpha/a,
	)
}

// NewHighShelf creates a high-shelf section raising (or cutting) everything
// above the corner frequency by gainDB.
func NewHighShelf(sampleRate int, corner, q, gainDB float64) *Biquad {
	cosw, sinw := prewarp(sampleRate, corner)
	alpha := sinw / (2 * q)
	a := math.Pow(10, gainDB/40)
	sqrtA2alpha := 2 * math.Sqrt(a) * alpha

	return newNormalized(
		a*((a+1)+(a-1)*cosw+sqrtA2alpha),
		-2*a*((a-1)+(a+1)*cosw),
		a*((a+1)+(a-1)*cosw-sqrtA2alpha),
		(a+1)-(a-1)*cosw+sqrtA2alpha,
		2*((a-1)-(a+1)*cosw),
		(a+1)-(a-1)*cosw-sqrtA2alpha,
	)
}

// Process filters one sample.
func (bq *Biquad) Process(x float64) float64 {
	y := bq.b0*x + bq.b1*bq.x1 + bq.b2*bq.x2 - bq.a1*bq.y1 - bq.a2*bq.y2

	bq.x2, bq.x1 = bq.x1, x
	bq.y2, bq.y1 = bq.y1, y

	return y
}

// ProcessBuffer filters a whole signal into a new slice. Filter state carries
// over from previous calls; call Reset first for an independent pass.
func (bq *Biquad) ProcessBuffer(input []float64) []float64 {
	output := make([]float64, len(input))
	for i, x := range input {
		output[i] = bq.Process(x)
	}
	return output
}

// Reset clears the delay lines.
func (bq *Biquad) Reset() {
	bq.x1, bq.x2 = 0, 0
	bq.y1, bq.y2 = 0, 0
}

// Clone returns a section with the same coefficients and cleared state.
func (bq *Biquad) Clone() *Biquad {
	return &Biquad{b0: bq.b0, b1: bq.b1, b2: bq.b2, a1: bq.a1, a2: bq.a2}
}

// MagnitudeAt evaluates the section's gain at freq.
func (bq *Biquad) MagnitudeAt(sampleRate int, freq float64) float64 {
	w := 2 * math.Pi * freq / float64(sampleRate)
	z1 := complex(math.Cos(w), -math.Sin(w))
	z2 := z1 * z1

	num := complex(bq.b0, 0) + complex(bq.b1, 0)*z1 + complex(bq.b2, 0)*z2
	den := 1 + complex(bq.a1, 0)*z1 + complex(bq.a2, 0)*z2

	return cmplx.Abs(num / den)
}
