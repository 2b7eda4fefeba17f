package mastering

import (
	"github.com/RyanBlaney/sonido-pulido/algorithms/filters"
	"github.com/RyanBlaney/sonido-pulido/algorithms/spectral"
)

// resonances are the build-up frequencies notched out at a 10% blend.
var resonances = [...]float64{120, 240, 500, 1000, 2500}

const (
	resonanceQ     = 20
	resonanceBlend = 0.1
	dcCutoffHz     = 5
)

// correctiveEQ applies the style's six-band curve, removes DC and tames
// fixed resonances.
func correctiveEQ(x []float64, sampleRate int, gains [6]float64) []float64 {
	out := append([]float64(nil), x...)

	for i, band := range spectral.BalanceBands {
		delta := gains[i] - 1
		if delta == 0 {
			continue
		}
		filtered := filters.NewBandLimit(sampleRate, band.Low, band.High).ProcessBuffer(x)
		for k, v := range filtered {
			out[k] += delta * v
		}
	}

	out = filters.RemoveDC(out, sampleRate, dcCutoffHz)

	for _, freq := range resonances {
		notched := filters.NewNotch(sampleRate, freq, resonanceQ).ProcessBuffer(out)
		for k, v := range notched {
			out[k] = out[k]*(1-resonanceBlend) + v*resonanceBlend
		}
	}

	return out
}
