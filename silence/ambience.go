package silence

import (
	"github.com/RyanBlaney/sonido-pulido/algorithms/common"
)

// ambienceLayer mixes the generators for a continuous bed. Tape is vinyl at
// a lower level; subtle is mostly room tone with a little vinyl.
func ambienceLayer(ambience Ambience, n, channels, sampleRate int, rng *common.Rand) [][]float64 {
	switch ambience {
	case AmbienceVinyl:
		return vinylNoise(n, channels, sampleRate, rng)
	case AmbienceTape:
		return mix(n, channels, layerGain{vinylNoise(n, channels, sampleRate, rng), 0.7})
	case AmbienceRoom:
		return roomTone(n, channels, sampleRate, rng)
	default:
		return mix(n, channels,
			layerGain{roomTone(n, channels, sampleRate, rng.Fork()), 0.7},
			layerGain{vinylNoise(n, channels, sampleRate, rng.Fork()), 0.3},
		)
	}
}

type layerGain struct {
	layer [][]float64
	gain  float64
}

func mix(n, channels int, layers ...layerGain) [][]float64 {
	out := newLayer(n, channels)
	for _, l := range layers {
		for ch, data := range l.layer {
			for i, v := range data {
				out[ch][i] += v * l.gain
			}
		}
	}
	return out
}
