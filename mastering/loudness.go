package mastering

import (
	"math"

	"github.com/RyanBlaney/sonido-pulido/algorithms/common"
	"github.com/RyanBlaney/sonido-pulido/algorithms/temporal"
	"github.com/RyanBlaney/sonido-pulido/pcm"
)

const (
	// MaxGainDB bounds the gain the loudness pass may apply.
	MaxGainDB = 20.0

	lookaheadMs = 5.0
	attackMs    = 1.0
	releaseMs   = 50.0

	convergencePasses = 4
	loudnessTolerance = 0.05
)

// MeasureLoudness returns the integrated loudness of buf in LUFS, or
// temporal.MinLoudness for silent and empty buffers.
func MeasureLoudness(buf *pcm.Buffer) float64 {
	if buf.Empty() {
		return temporal.MinLoudness
	}
	return temporal.NewLoudnessMeter(buf.SampleRate).Integrated(buf.Channels)
}

// Limiter is a stereo-linked look-ahead peak limiter. Gain reduction starts
// lookahead samples before a peak, recovers exponentially, and is smoothed
// by a moving average no longer than the lookahead. No output sample
// exceeds the ceiling.
type Limiter struct {
	ceiling     float64
	lookahead   int
	attack      int
	releaseCoef float64
}

// NewLimiter creates a limiter. The release time is how long the gain takes
// to recover 99% of a reduction.
func NewLimiter(sampleRate int, ceiling, lookaheadMs, attackMs, releaseMs float64) *Limiter {
	lookahead := max(1, common.MsToSamples(lookaheadMs, sampleRate))
	release := max(1, common.MsToSamples(releaseMs, sampleRate))
	return &Limiter{
		ceiling:     ceiling,
		lookahead:   lookahead,
		attack:      min(max(1, common.MsToSamples(attackMs, sampleRate)), lookahead+1),
		releaseCoef: math.Pow(0.01, 1/float64(release)),
	}
}

// GainCurve returns the per-frame gain the limiter applies to channels.
func (l *Limiter) GainCurve(channels [][]float64) []float64 {
	if len(channels) == 0 {
		return nil
	}
	n := len(channels[0])

	required := make([]float64, n)
	for i := range required {
		peak := 0.0
		for _, data := range channels {
			peak = max(peak, math.Abs(data[i]))
		}
		required[i] = 1
		if peak > l.ceiling {
			required[i] = l.ceiling / peak
		}
	}

	ahead := forwardMin(required, l.lookahead)

	// Drop instantly, recover exponentially.
	held := make([]float64, n)
	prev := 1.0
	for i, g := range ahead {
		recovered := 1 - (1-prev)*l.releaseCoef
		held[i] = min(g, recovered)
		prev = held[i]
	}

	// Every sample of the averaging window lies inside the look-ahead span of
	// the peak it precedes, so the average never exceeds the required gain.
	smooth := make([]float64, n)
	sum := 0.0
	for i, g := range held {
		sum += g
		if i >= l.attack {
			sum -= held[i-l.attack]
		}
		smooth[i] = sum / float64(min(i+1, l.attack))
	}
	return smooth
}

// Process limits channels and returns new slices.
func (l *Limiter) Process(channels [][]float64) [][]float64 {
	gain := l.GainCurve(channels)
	out := make([][]float64, len(channels))
	for ch, data := range channels {
		out[ch] = make([]float64, len(data))
		for i, v := range data {
			out[ch][i] = common.Clamp(v*gain[i], -l.ceiling, l.ceiling)
		}
	}
	return out
}

// forwardMin returns, for every i, the minimum of values[i:i+span+1].
func forwardMin(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	window := make([]int, 0, span+1) // indices, values increasing front to back
	for i := len(values) - 1; i >= 0; i-- {
		for len(window) > 0 && values[window[len(window)-1]] >= values[i] {
			window = window[:len(window)-1]
		}
		window = append(window, i)
		if window[0] > i+span {
			window = window[1:]
		}
		out[i] = values[window[0]]
	}
	return out
}

// maximize gains channels toward target LUFS and limits them to ceiling.
// Limiting lowers loudness, so the gain is corrected over a few passes, each
// limiting the unlimited signal afresh. It returns the result and the gain
// applied in dB.
func maximize(channels [][]float64, sampleRate int, target, ceiling float64) ([][]float64, float64) {
	meter := temporal.NewLoudnessMeter(sampleRate)
	limiter := NewLimiter(sampleRate, ceiling, lookaheadMs, attackMs, releaseMs)

	measured := meter.Integrated(channels)
	if measured <= temporal.MinLoudness {
		return limiter.Process(channels), 0
	}

	gainDB := min(MaxGainDB, target-measured)
	var out [][]float64
	for range convergencePasses {
		out = limiter.Process(scaled(channels, common.DBToAmplitude(gainDB)))

		diff := target - meter.Integrated(out)
		if math.Abs(diff) < loudnessTolerance || (diff > 0 && gainDB >= MaxGainDB) {
			break
		}
		gainDB = min(MaxGainDB, gainDB+diff)
	}
	return out, gainDB
}

func scaled(channels [][]float64, gain float64) [][]float64 {
	out := make([][]float64, len(channels))
	for ch, data := range channels {
		out[ch] = make([]float64, len(data))
		for i, v := range data {
			out[ch][i] = v * gain
		}
	}
	return out
}
