package synth

import (
	"math"

	"github.com/RyanBlaney/sonido-pulido/algorithms/common"
	"github.com/RyanBlaney/sonido-pulido/algorithms/filters"
)

// Voice names a drum sound.
type Voice string

const (
	Kick  Voice = "kick"
	Snare Voice = "snare"
	HiHat Voice = "hihat"
)

// voice durations in seconds
const (
	kickSeconds  = 0.5
	snareSeconds = 0.2
	hatSeconds   = 0.1
)

func (v Voice) render(sampleRate int, rng *common.Rand) []float64 {
	switch v {
	case Kick:
		return kick(sampleRate, rng)
	case Snare:
		return snare(sampleRate, rng)
	default:
		return hihat(sampleRate, rng)
	}
}

// kick sweeps a sine from 200 Hz down to 50 Hz with two harmonics and a
// noise click on the attack.
func kick(sampleRate int, rng *common.Rand) []float64 {
	n := int(kickSeconds * float64(sampleRate))
	attack := common.MsToSamples(5, sampleRate)
	out := make([]float64, n)

	phase := 0.0
	for i := range out {
		pos := float64(i) / float64(n)
		freq := 200 * math.Pow(50.0/200, pos)
		phase += 2 * math.Pi * freq / float64(sampleRate)

		env := math.Exp(-5 * pos)
		if i < attack {
			env = float64(i) / float64(attack)
		}
		out[i] = env * (math.Sin(phase) + 0.3*math.Sin(2*phase) + 0.15*math.Sin(3*phase))
	}

	click := common.MsToSamples(10, sampleRate)
	for i := range min(click, n) {
		out[i] += 0.2 * rng.Normal() * math.Exp(-100*float64(i)/float64(click))
	}
	return normalize(out, 0.95)
}

// snare mixes a 200 Hz body with band-passed noise under a sharp decay.
func snare(sampleRate int, rng *common.Rand) []float64 {
	n := int(snareSeconds * float64(sampleRate))
	noise := filters.NewBandpass(sampleRate, 3000, 0.7).ProcessBuffer(rng.Noise(n))

	out := make([]float64, n)
	for i := range out {
		t := float64(i) / float64(sampleRate)
		env := math.Exp(-10 * t / snareSeconds)
		out[i] = env * (0.4*math.Sin(2*math.Pi*200*t) + 0.6*noise[i])
	}
	return normalize(out, 0.8)
}

// hihat is high-passed noise with a very short decay.
func hihat(sampleRate int, rng *common.Rand) []float64 {
	n := int(hatSeconds * float64(sampleRate))
	out := filters.NewHighpass(sampleRate, 7000, filters.ButterworthQ).ProcessBuffer(rng.Noise(n))
	for i := range out {
		out[i] *= math.Exp(-30 * float64(i) / float64(n))
	}
	return normalize(out, 0.6)
}

// piano is additive: eight harmonics under an ADSR envelope.
func piano(sampleRate int, freq, seconds float64) []float64 {
	harmonics := [...]float64{1, 0.8, 0.6, 0.4, 0.25, 0.15, 0.1, 0.05}

	n := int(seconds * float64(sampleRate))
	out := make([]float64, n)
	nyquist := float64(sampleRate) / 2
	for h, amp := range harmonics {
		f := freq * float64(h+1)
		if f >= nyquist {
			break
		}
		w := 2 * math.Pi * f / float64(sampleRate)
		for i := range out {
			out[i] += amp * math.Sin(w*float64(i))
		}
	}

	env := adsr(n, common.MsToSamples(10, sampleRate), common.MsToSamples(100, sampleRate),
		common.MsToSamples(300, sampleRate), 0.7)
	for i := range out {
		out[i] *= env[i]
	}
	return normalize(out, 0.8)
}

// adsr returns a linear envelope. Short notes shrink the release first.
func adsr(n, attack, decay, release int, sustain float64) []float64 {
	attack = min(attack, n)
	decay = min(decay, n-attack)
	release = min(release, n-attack-decay)

	env := make([]float64, n)
	for i := range env {
		switch {
		case i < attack:
			env[i] = float64(i) / float64(attack)
		case i < attack+decay:
			env[i] = 1 - (1-sustain)*float64(i-attack)/float64(decay)
		case i < n-release:
			env[i] = sustain
		default:
			env[i] = sustain * float64(n-i) / float64(release)
		}
	}
	return env
}

func normalize(x []float64, peak float64) []float64 {
	p := common.Peak(x)
	if p == 0 {
		return x
	}
	g := peak / p
	for i := range x {
		x[i] *= g
	}
	return x
}
