package humanize

import (
	"math"

	"github.com/RyanBlaney/sonido-pulido/algorithms/common"
	"github.com/RyanBlaney/sonido-pulido/algorithms/filters"
)

// Early reflection delays in ms for the smallest and largest rooms.
var (
	smallRoom = [4]float64{7, 11, 13, 17}
	largeRoom = [4]float64{37, 47, 59, 71}
)

// warm soft-saturates x, rolls off above 16 kHz and lays tape hiss and a
// ~30 Hz rumble underneath, blended with the dry signal.
func warm(x []float64, sampleRate int, amount float64, rng *common.Rand) []float64 {
	drive := 1 + 0.2*amount
	makeup := 1 + 0.1*amount

	sat := make([]float64, len(x))
	for i, v := range x {
		sat[i] = math.Tanh(v*drive) / makeup
	}
	sat = filters.NewLowpass(sampleRate, 16000, filters.ButterworthQ).ProcessBuffer(sat)

	hiss := rng.Noise(len(x))
	for i := range hiss {
		hiss[i] *= amount * 0.002
	}
	hiss = filters.NewLinkwitzRileyHighpass(sampleRate, 4000).ProcessBuffer(hiss)

	rumbleFreq := common.Clamp(30+rng.Normal()*5, 20, 40)
	rumbleW := 2 * math.Pi * rumbleFreq / float64(sampleRate)
	rumbleAmp := amount * 0.001

	blend := 0.6 + 0.4*amount
	out := make([]float64, len(x))
	for i, v := range x {
		wet := sat[i] + hiss[i] + rumbleAmp*math.Sin(rumbleW*float64(i))
		out[i] = wet*blend + v*(1-blend)
	}
	return out
}

// room adds four low-passed early reflections. size interpolates the tap
// delays and decay between the small and large rooms.
func room(x []float64, sampleRate int, size, mix float64) []float64 {
	n := len(x)
	decay := 0.3 + 0.2*size
	reflections := make([]float64, n)

	gain := 1.0
	for i := range smallRoom {
		gain *= decay
		delay := common.MsToSamples(common.Lerp(smallRoom[i], largeRoom[i], size), sampleRate)
		if delay <= 0 || delay >= n {
			continue
		}

		tap := make([]float64, n)
		for k := delay; k < n; k++ {
			tap[k] = x[k-delay] * gain
		}
		tap = filters.NewLowpass(sampleRate, 8000-1000*float64(i), filters.ButterworthQ).ProcessBuffer(tap)

		for k, v := range tap {
			reflections[k] += v
		}
	}

	out := make([]float64, n)
	for i, v := range x {
		out[i] = v*(1-mix) + reflections[i]*mix
	}
	return out
}
