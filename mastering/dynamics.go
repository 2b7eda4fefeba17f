package mastering

import (
	"github.com/RyanBlaney/sonido-pulido/algorithms/filters"
)

const (
	crossoverLowHz  = 250
	crossoverHighHz = 2000
)

// dynamics compresses low, mid and high bands independently, then blends a
// heavily compressed copy of the result under it.
func dynamics(channels [][]float64, sampleRate int, p styleParams) [][]float64 {
	xover := filters.NewCrossover(sampleRate, crossoverLowHz, crossoverHighHz)

	var bands [3][][]float64
	for b := range bands {
		bands[b] = make([][]float64, len(channels))
	}
	for ch, data := range channels {
		bands[0][ch], bands[1][ch], bands[2][ch] = xover.Split(data)
	}

	summed := make([][]float64, len(channels))
	for ch, data := range channels {
		summed[ch] = make([]float64, len(data))
	}
	for b, settings := range p.bands {
		compressed := NewCompressor(sampleRate, settings).Process(bands[b])
		for ch, data := range compressed {
			for i, v := range data {
				summed[ch][i] += v
			}
		}
	}

	mix := p.parallel.mix
	crushed := NewCompressor(sampleRate, p.parallel.compressor).Process(summed)
	for ch, data := range summed {
		for i, v := range data {
			data[i] = v*(1-mix) + crushed[ch][i]*mix
		}
	}

	return summed
}
