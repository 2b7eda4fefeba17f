package humanize

import (
	"math"

	"github.com/RyanBlaney/sonido-pulido/algorithms/common"
)

const (
	maxDriftSeconds = 0.005
	grooveDelay     = 0.004
	maxVelocity     = 0.15
	velocityStep    = 0.25
	grooveRamp      = 0.005
)

// wobble oscillators: frequency in Hz and depth in cents at full intensity.
var wobble = [...]struct{ freq, cents float64 }{
	{0.8, 6}, // wow
	{3.2, 2}, // flutter
	{0.3, 4}, // drift
}

// wobblePositions integrates a slowly varying playback rate into read
// positions. The positions are normalized to span the buffer exactly, so
// length is unchanged and the first and last samples stay in place.
func wobblePositions(n, sampleRate int, amount float64, rng *common.Rand) []float64 {
	phases := make([]float64, len(wobble))
	for i := range phases {
		phases[i] = rng.Uniform(0, 2*math.Pi)
	}

	pos := make([]float64, n)
	for i := 1; i < n; i++ {
		t := float64(i) / float64(sampleRate)
		cents := 0.0
		for k, lfo := range wobble {
			cents += lfo.cents * amount * math.Sin(2*math.Pi*lfo.freq*t+phases[k])
		}
		pos[i] = pos[i-1] + math.Exp2(cents/1200)
	}

	scale := float64(n-1) / pos[n-1]
	for i := range pos {
		pos[i] *= scale
	}
	return pos
}

// displacement builds a per-sample delay curve, in samples, pinned to zero at
// both ends. Every onset gets a random drift; onsets landing on beats 2 and 4
// are pushed late by the groove.
func displacement(n, sampleRate int, onsets []int, drift, groove, bpm float64, rng *common.Rand) ([]float64, error) {
	sr := float64(sampleRate)
	maxDrift := drift * maxDriftSeconds * sr

	xs := []float64{0}
	ys := []float64{0}
	for _, onset := range onsets {
		if onset <= 0 || onset >= n-1 {
			continue
		}
		d := rng.Bipolar() * maxDrift
		if groove > 0 && bpm > 0 && offBeat(float64(onset)/sr, bpm) {
			d += groove * grooveDelay * sr
		}
		xs = append(xs, float64(onset))
		ys = append(ys, d)
	}
	xs = append(xs, float64(n-1))
	ys = append(ys, 0)

	curve, err := common.NewControlCurve(xs, ys)
	if err != nil {
		return nil, err
	}
	return curve.Render(n), nil
}

// offBeat reports whether t seconds falls within an eighth of a beat of
// beat 2 or 4 of a bar.
func offBeat(t, bpm float64) bool {
	pos := t * bpm / 60
	beat := math.Round(pos)
	if math.Abs(pos-beat) > 0.125 {
		return false
	}
	return int(beat)%2 == 1
}

// velocityCurve is a smooth gain curve through random control points at
// every onset and every quarter second, bounded to 1±0.15*amount.
func velocityCurve(n, sampleRate int, onsets []int, amount float64, rng *common.Rand) ([]float64, error) {
	step := velocityStep * float64(sampleRate)
	depth := maxVelocity * amount

	var xs []float64
	for x := 0.0; x < float64(n-1); x += step {
		xs = append(xs, x)
	}
	for _, onset := range onsets {
		xs = append(xs, float64(onset))
	}
	xs = append(xs, float64(n-1))

	ys := make([]float64, len(xs))
	for i := range ys {
		ys[i] = 1 + rng.Bipolar()*depth
	}

	curve, err := common.NewControlCurve(xs, ys)
	if err != nil {
		return nil, err
	}
	return curve.Render(n), nil
}

// grooveGain accents beat 1 and 3 of each bar and softens 2 and 4. Level
// changes ramp over 5 ms with a raised cosine.
func grooveGain(n, sampleRate int, bpm, amount float64) []float64 {
	levels := [4]float64{
		1 + 0.08*amount,
		1 - 0.03*amount,
		1 + 0.05*amount,
		1 - 0.03*amount,
	}
	beatLen := 60 / bpm * float64(sampleRate)
	ramp := grooveRamp * float64(sampleRate)

	gain := make([]float64, n)
	for i := range gain {
		pos := float64(i) / beatLen
		beat := int(pos)
		g := levels[beat%4]
		if into := (pos - float64(beat)) * beatLen; beat > 0 && into < ramp {
			prev := levels[(beat-1)%4]
			g = prev + (g-prev)*0.5*(1-math.Cos(math.Pi*into/ramp))
		}
		gain[i] = g
	}
	return gain
}
