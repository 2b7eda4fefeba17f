package mastering

import (
	"math"

	"github.com/RyanBlaney/sonido-pulido/algorithms/common"
	"github.com/RyanBlaney/sonido-pulido/algorithms/filters"
)

const (
	shelfHz = 12000
	shelfQ  = 0.7
)

// shelve adds the style's gentle air boost.
func shelve(x []float64, sampleRate int, gainDB float64) []float64 {
	return filters.NewHighShelf(sampleRate, shelfHz, shelfQ, gainDB).ProcessBuffer(x)
}

// ditherTo adds TPDF dither and quantizes x to bitDepth in place. Samples
// are held to the largest quantization step at or below ceiling, so the
// quantized output still respects it.
func ditherTo(x []float64, bitDepth int, ceiling float64, rng *common.Rand) {
	scale := math.Exp2(float64(bitDepth-1)) - 1
	limit := math.Floor(ceiling*scale) / scale
	for i, v := range x {
		q := math.Round((v+rng.TPDF()/scale)*scale) / scale
		x[i] = common.Clamp(q, -limit, limit)
	}
}
