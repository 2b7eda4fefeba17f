// Package humanize loosens machine-rendered audio: it drifts note timing,
// varies dynamics, wobbles pitch, applies a groove, and adds analog color
// and early reflections. All randomness comes from an explicit seed.
package humanize

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-pulido/algorithms/common"
	"github.com/RyanBlaney/sonido-pulido/algorithms/temporal"
	"github.com/RyanBlaney/sonido-pulido/logging"
	"github.com/RyanBlaney/sonido-pulido/pcm"
)

// DefaultTempo is used for the groove grid when neither the caller nor the
// onset pattern supplies a tempo.
const DefaultTempo = 120.0

// Humanizer applies humanization passes. It is stateless and safe for
// concurrent use.
type Humanizer struct {
	onsets *temporal.OnsetDetection
	tempo  *temporal.TempoEstimation
	logger logging.Logger
}

// New creates a humanizer.
func New() *Humanizer {
	return &Humanizer{
		onsets: temporal.NewOnsetDetection(),
		tempo:  temporal.NewTempoEstimation(),
		logger: logging.WithFields(logging.Fields{"component": "humanizer"}),
	}
}

// Humanize returns a humanized copy of buf. Passes run in a fixed order:
// pitch wobble, timing drift with groove timing, velocity, groove accents,
// analog warmth, room, then dither. With every intensity at zero the result
// equals the input. Equal inputs and seeds give bit-identical output.
func (h *Humanizer) Humanize(buf *pcm.Buffer, params Params, seed uint64) (*pcm.Buffer, error) {
	logger := h.logger.WithFields(logging.Fields{"function": "Humanize"})

	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("humanize: %w", err)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if params.passthrough() || buf.Frames() < 2 {
		return buf.Clone(), nil
	}

	// One stream per pass, so toggling a pass never reshuffles another.
	rng := common.NewRand(seed)
	var (
		pitchRand    = rng.Fork()
		timingRand   = rng.Fork()
		velocityRand = rng.Fork()
		warmthRand   = rng.Fork()
		ditherRand   = rng.Fork()
	)

	sr := buf.SampleRate
	n := buf.Frames()
	work := buf.Clone()
	cubic := common.NewInterpolator(common.Cubic)

	if params.PitchWobble > 0 {
		positions := wobblePositions(n, sr, params.PitchWobble, pitchRand)
		for ch, data := range work.Channels {
			work.Channels[ch] = cubic.Resample(data, positions)
		}
	}

	needsOnsets := params.TimingDrift > 0 || params.VelocityVariation > 0 || params.GrooveAmount > 0
	var onsets []int
	var mono []float64
	if needsOnsets {
		mono = work.Mono()
		onsets = h.onsets.DetectOnsets(mono, sr)
	}

	bpm := 0.0
	if params.GrooveAmount > 0 {
		bpm = h.resolveTempo(params.Tempo, mono, sr)
	}

	if params.TimingDrift > 0 || params.GrooveAmount > 0 {
		disp, err := displacement(n, sr, onsets, params.TimingDrift, params.GrooveAmount, bpm, timingRand)
		if err != nil {
			return nil, fmt.Errorf("timing drift: %w", err)
		}
		positions := make([]float64, n)
		for i, d := range disp {
			positions[i] = common.Clamp(float64(i)-d, 0, float64(n-1))
		}
		for ch, data := range work.Channels {
			work.Channels[ch] = cubic.Resample(data, positions)
		}
	}

	if params.VelocityVariation > 0 {
		gain, err := velocityCurve(n, sr, onsets, params.VelocityVariation, velocityRand)
		if err != nil {
			return nil, fmt.Errorf("velocity variation: %w", err)
		}
		applyGain(work.Channels, gain)
	}

	if params.GrooveAmount > 0 {
		applyGain(work.Channels, grooveGain(n, sr, bpm, params.GrooveAmount))
	}

	if params.AnalogWarmth > 0 {
		for ch, data := range work.Channels {
			work.Channels[ch] = warm(data, sr, params.AnalogWarmth, warmthRand.Fork())
		}
	}

	if params.RoomMix > 0 {
		for ch, data := range work.Channels {
			work.Channels[ch] = room(data, sr, params.RoomSize, params.RoomMix)
		}
	}

	if params.TargetBitDepth > 0 {
		for _, data := range work.Channels {
			dither(data, params.TargetBitDepth, ditherRand.Fork())
		}
		work.BitDepth = params.TargetBitDepth
	}

	logger.Debug("Humanized buffer", logging.Fields{
		"onsets": len(onsets),
		"tempo":  fmt.Sprintf("%.1f", bpm),
		"seed":   seed,
	})

	return work, nil
}

func (h *Humanizer) resolveTempo(tempo float64, mono []float64, sampleRate int) float64 {
	if tempo > 0 {
		return tempo
	}
	if bpm, ok := h.tempo.EstimateTempo(mono, sampleRate); ok {
		return bpm
	}
	return DefaultTempo
}

func applyGain(channels [][]float64, gain []float64) {
	for _, data := range channels {
		for i := range data {
			data[i] *= gain[i]
		}
	}
}

// dither adds one LSB of TPDF noise and quantizes to bitDepth in place.
func dither(data []float64, bitDepth int, rng *common.Rand) {
	scale := math.Exp2(float64(bitDepth-1)) - 1
	for i, v := range data {
		q := math.Round((v+rng.TPDF()/scale)*scale) / scale
		data[i] = common.Clamp(q, -1, 1)
	}
}
