package temporal

import (
	"math"

	"github.com/RyanBlaney/sonido-pulido/algorithms/filters"
)

// MinLoudness is reported for signals whose every block falls under the
// absolute gate.
const MinLoudness = -70.0

// LoudnessMeter measures integrated program loudness in LUFS: K-weighted
// mean-square energy over 400 ms blocks with 75% overlap, gated at -70 LUFS
// absolute and 10 LU below the ungated mean.
//
// K-weighting constants follow ITU-R BS.1770-4, re-derived for arbitrary
// sample rates with the RBJ shelf and high-pass designs.
type LoudnessMeter struct {
	sampleRate int
	blockMs    float64
	stepMs     float64
}

// NewLoudnessMeter creates a meter for the given sample rate.
func NewLoudnessMeter(sampleRate int) *LoudnessMeter {
	return &LoudnessMeter{sampleRate: sampleRate, blockMs: 400, stepMs: 100}
}

// kWeighting returns a fresh pre-filter chain.
func (m *LoudnessMeter) kWeighting() filters.Cascade {
	return filters.Cascade{
		filters.NewHighShelf(m.sampleRate, 1681.974450955533, 0.7071752369554196, 3.999843853973347),
		filters.NewHighpass(m.sampleRate, 38.13547087602444, 0.5003270373238773),
	}
}

// Integrated returns the gated loudness of channels in LUFS. Every channel is
// weighted equally, so a mono signal reads 3 LU below the same signal
// duplicated to stereo.
func (m *LoudnessMeter) Integrated(channels [][]float64) float64 {
	if len(channels) == 0 || len(channels[0]) == 0 || m.sampleRate <= 0 {
		return MinLoudness
	}
	frames := len(channels[0])

	// prefix[i] holds the summed squared K-weighted samples of frames [0, i)
	prefix := make([]float64, frames+1)
	for _, data := range channels {
		weighted := m.kWeighting().ProcessBuffer(data)
		running := 0.0
		for i, v := range weighted {
			running += v * v
			prefix[i+1] += running
		}
	}

	blockSize := int(m.blockMs * 0.001 * float64(m.sampleRate))
	step := max(1, int(m.stepMs*0.001*float64(m.sampleRate)))
	if blockSize <= 0 || frames < blockSize {
		blockSize = frames
	}

	var blocks []float64
	for start := 0; start+blockSize <= frames; start += step {
		blocks = append(blocks, (prefix[start+blockSize]-prefix[start])/float64(blockSize))
	}

	absGated := gate(blocks, MinLoudness)
	if len(absGated) == 0 {
		return MinLoudness
	}

	relative := energyToLUFS(mean(absGated)) - 10
	relGated := gate(absGated, relative)
	if len(relGated) == 0 {
		return MinLoudness
	}

	return energyToLUFS(mean(relGated))
}

// MeanSquareForLoudness returns the K-weighted channel-summed mean square
// that reads as lufs on this meter's scale.
func MeanSquareForLoudness(lufs float64) float64 {
	return math.Pow(10, (lufs+0.691)/10)
}

func gate(blocks []float64, thresholdLUFS float64) []float64 {
	var kept []float64
	for _, z := range blocks {
		if energyToLUFS(z) > thresholdLUFS {
			kept = append(kept, z)
		}
	}
	return kept
}

func energyToLUFS(z float64) float64 {
	if z <= 0 {
		return math.Inf(-1)
	}
	return -0.691 + 10*math.Log10(z)
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
