package mastering

import (
	"math"

	"github.com/RyanBlaney/sonido-pulido/algorithms/filters"
)

const (
	rolloffHz      = 16000
	sideHighpass   = 200
	saturationAsym = 0.1
)

// saturate blends an asymmetric tanh curve into x. The bias makes positive
// and negative half-waves clip differently, which adds even harmonics. A
// one-pole low-pass at 16 kHz follows.
func saturate(x []float64, sampleRate int, amount float64) []float64 {
	bias := saturationAsym * amount
	offset := math.Tanh(bias)

	out := make([]float64, len(x))
	for i, v := range x {
		driven := v * (1 + amount)
		sat := math.Tanh(driven+bias) - offset
		out[i] = v*(1-amount/2) + sat*amount/2
	}
	return filters.NewOnePoleLowpass(sampleRate, rolloffHz).ProcessBuffer(out)
}

// widen raises the side channel above 200 Hz by a factor of 1+width and
// leaves the low side untouched. Mono buffers pass through.
func widen(channels [][]float64, sampleRate int, width float64) [][]float64 {
	if len(channels) != 2 {
		return channels
	}
	left, right := channels[0], channels[1]

	mid := make([]float64, len(left))
	side := make([]float64, len(left))
	for i := range left {
		mid[i] = (left[i] + right[i]) / 2
		side[i] = (left[i] - right[i]) / 2
	}
	sideHP := filters.NewHighpass(sampleRate, sideHighpass, filters.ButterworthQ).ProcessBuffer(side)

	outL := make([]float64, len(left))
	outR := make([]float64, len(left))
	for i := range mid {
		s := side[i] + width*sideHP[i]
		outL[i] = mid[i] + s
		outR[i] = mid[i] - s
	}
	return [][]float64{outL, outR}
}
