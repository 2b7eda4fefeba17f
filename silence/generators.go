package silence

import (
	"math"

	"github.com/RyanBlaney/sonido-pulido/algorithms/common"
	"github.com/RyanBlaney/sonido-pulido/algorithms/filters"
)

// Each generator returns one slice of n samples per channel. Layers are
// summed into the slices in place.

var padRoots = [...]float64{65.41, 82.41, 110.0, 130.81}

func generate(style Style, n, channels, sampleRate int, rng *common.Rand) [][]float64 {
	switch style {
	case StyleAmbientPad:
		return ambientPad(n, channels, sampleRate, rng)
	case StyleRoomTone:
		return roomTone(n, channels, sampleRate, rng)
	default:
		return vinylNoise(n, channels, sampleRate, rng)
	}
}

func newLayer(n, channels int) [][]float64 {
	layer := make([][]float64, channels)
	for ch := range layer {
		layer[ch] = make([]float64, n)
	}
	return layer
}

// addSine accumulates amp*sin(2*pi*freq*t + phase) into dst.
func addSine(dst []float64, sampleRate int, freq, amp, phase float64) {
	w := 2 * math.Pi * freq / float64(sampleRate)
	for i := range dst {
		dst[i] += amp * math.Sin(w*float64(i)+phase)
	}
}

// vinylNoise is hiss with sparse crackle, band-limited to 20 Hz to 12 kHz,
// over turntable rumble at 33 and 45 Hz. Hiss and crackle are independent
// per channel.
func vinylNoise(n, channels, sampleRate int, rng *common.Rand) [][]float64 {
	layer := newLayer(n, channels)
	crackles := int(float64(n) / float64(sampleRate) * 3)

	for ch, data := range layer {
		chRand := rng.Fork()
		for i := range data {
			data[i] = chRand.Normal() * 0.05
		}

		for range crackles {
			if n <= 100 {
				break
			}
			pos := chRand.IntN(n - 100)
			amp := chRand.Uniform(0.1, 0.3)
			if chRand.Float64() < 0.5 {
				amp = -amp
			}
			length := 20 + chRand.IntN(61)
			for k := range length {
				data[pos+k] += amp * math.Exp(-float64(k)/10)
			}
		}

		copy(data, filters.NewHighpass(sampleRate, 20, filters.ButterworthQ).ProcessBuffer(data))
		copy(data, filters.NewOnePoleLowpass(sampleRate, 12000).ProcessBuffer(data))

		scale := 1 + 0.05*float64(ch)
		addSine(data, sampleRate, 33, 0.02*scale, 0)
		addSine(data, sampleRate, 45, 0.015*scale, 1.2)
	}

	return layer
}

// ambientPad is a root, fifth, octave and third chord with slow squared
// attack and release, a touch of vibrato, a 3 kHz low-pass and a quiet
// band-passed noise texture. The second channel is slightly detuned.
func ambientPad(n, channels, sampleRate int, rng *common.Rand) [][]float64 {
	layer := newLayer(n, channels)
	root := padRoots[rng.IntN(len(padRoots))]
	sr := float64(sampleRate)

	ramp := min(n/4, int(2*sr))
	env := make([]float64, n)
	for i := range env {
		env[i] = 1
	}
	for k := range ramp {
		g := float64(k) / float64(ramp)
		env[k] = g * g
		env[n-1-k] = g * g
	}

	texture := filters.NewBandLimit(sampleRate, 800, 4000).ProcessBuffer(scaled(rng.Noise(n), 0.02))

	for ch, data := range layer {
		detune := 1.0
		if ch == 1 {
			detune = 1.001
		}

		chord := make([]float64, n)
		addSine(chord, sampleRate, root*detune, 0.3, 0)
		addSine(chord, sampleRate, root*1.5/detune, 0.25, 0)
		addSine(chord, sampleRate, root*2, 0.2, 0)
		addSine(chord, sampleRate, root*1.25*detune, 0.15, 0.1)

		w := 2 * math.Pi * root * detune / sr
		for i := range chord {
			t := float64(i) / sr
			vibrato := 1 + 0.002*math.Sin(2*math.Pi*0.3*t)
			chord[i] = (0.7*chord[i] + 0.3*0.3*math.Sin(w*float64(i)*vibrato)) * env[i]
		}

		copy(data, filters.NewLowpass(sampleRate, 3000, filters.ButterworthQ).ProcessBuffer(chord))

		gain := 1 - 0.05*float64(ch)
		for i, v := range texture {
			data[i] += v * gain
		}
	}

	return layer
}

// roomTone is pink noise band-limited to 100 Hz to 2 kHz plus faint 40 and
// 55 Hz rumble. Noise is uncorrelated between channels.
func roomTone(n, channels, sampleRate int, rng *common.Rand) [][]float64 {
	layer := newLayer(n, channels)

	for ch, data := range layer {
		pink := filters.NewPinkingFilter().ProcessBuffer(scaled(rng.Fork().Noise(n), 0.03))
		copy(data, filters.NewBandLimit(sampleRate, 100, 2000).ProcessBuffer(pink))

		scale := 1 + 0.05*float64(ch)
		addSine(data, sampleRate, 40, 0.01*scale, 0)
		addSine(data, sampleRate, 55, 0.008*scale, 0.7)
	}

	return layer
}

func scaled(data []float64, gain float64) []float64 {
	for i := range data {
		data[i] *= gain
	}
	return data
}
