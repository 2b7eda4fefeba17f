// Package synth renders drum and melodic patterns to raw buffers. It is a
// small reference synthesizer that answers the pipeline's regeneration
// requests.
package synth

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/RyanBlaney/sonido-pulido/algorithms/common"
	"github.com/RyanBlaney/sonido-pulido/logging"
	"github.com/RyanBlaney/sonido-pulido/pcm"
	"github.com/RyanBlaney/sonido-pulido/pipeline"
)

// mix levels per part
const (
	kickGain  = 0.8
	snareGain = 0.5
	hatGain   = 0.25
	pianoGain = 0.35

	// renders are normalized to this peak
	headroom = 0.7

	baseVelocityJitter = 0.05
	maxTimingJitterMs  = 10.0
)

// Renderer renders one pattern. It implements pipeline.Synthesizer.
type Renderer struct {
	pattern    Pattern
	sampleRate int
	channels   int
	logger     logging.Logger
}

// New creates a renderer for pattern at the given sample rate and channel
// count (1 or 2).
func New(pattern Pattern, sampleRate, channels int) (*Renderer, error) {
	if err := pattern.Validate(); err != nil {
		return nil, err
	}
	if sampleRate < 8000 {
		return nil, &pcm.ConfigurationError{Field: "sample_rate", Value: sampleRate, Reason: "must be at least 8000"}
	}
	if channels != 1 && channels != 2 {
		return nil, &pcm.ConfigurationError{Field: "channels", Value: channels, Reason: "must be 1 or 2"}
	}

	return &Renderer{
		pattern:    pattern,
		sampleRate: sampleRate,
		channels:   channels,
		logger:     logging.WithFields(logging.Fields{"component": "pattern_renderer", "pattern": pattern.Name}),
	}, nil
}

// Generate renders the pattern. The seed drives the noise voices and the
// humanlike jitter; Variation widens the velocity and timing jitter. A
// positive params.Tempo overrides the pattern tempo.
func (r *Renderer) Generate(ctx context.Context, params pipeline.SynthParams) (*pcm.Buffer, error) {
	logger := r.logger.WithContext(ctx).WithFields(logging.Fields{
		"function": "Generate",
		"attempt":  params.Attempt,
	})
	started := time.Now()

	tempo := r.pattern.Tempo
	if params.Tempo > 0 {
		tempo = params.Tempo
	}
	beatSamples := 60 / tempo * float64(r.sampleRate)
	frames := int(math.Round(float64(r.pattern.Beats) * beatSamples))

	buf := pcm.New(r.channels, frames, r.sampleRate, 24)
	rng := common.NewRand(params.Seed)
	velocityJitter := baseVelocityJitter + 0.2*params.Variation
	timingJitter := params.Variation * maxTimingJitterMs / 1000 * float64(r.sampleRate)

	place := func(beat float64) int {
		pos := int(math.Round(beat*beatSamples + rng.Bipolar()*timingJitter))
		return max(0, pos)
	}
	velocity := func(v float64) float64 {
		return common.Clamp(v*(1+rng.Bipolar()*velocityJitter), 0, 1)
	}

	for _, hit := range r.pattern.Drums {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		gain := hatGain
		switch hit.Voice {
		case Kick:
			gain = kickGain
		case Snare:
			gain = snareGain
		}
		sound := hit.Voice.render(r.sampleRate, rng.Fork())
		r.overlay(buf, sound, place(hit.Beat), gain*velocity(hit.Velocity), hit.Pan)
	}

	for _, note := range r.pattern.Melody {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sound := piano(r.sampleRate, note.Freq, note.Length*beatSamples/float64(r.sampleRate))
		r.overlay(buf, sound, place(note.Beat), pianoGain*velocity(note.Velocity), note.Pan)
	}

	if peak := buf.Peak(); peak > 0 {
		g := headroom / peak
		for _, data := range buf.Channels {
			for i := range data {
				data[i] *= g
			}
		}
	}

	logger.Debug("Pattern rendered", logging.Fields{
		"tempo":      tempo,
		"seconds":    fmt.Sprintf("%.2f", buf.Seconds()),
		"variation":  params.Variation,
		"elapsed_ms": time.Since(started).Milliseconds(),
	})
	return buf, nil
}

// overlay adds sound at offset with a constant-power pan. Samples past the
// end of the buffer are dropped.
func (r *Renderer) overlay(buf *pcm.Buffer, sound []float64, offset int, gain, pan float64) {
	gains := []float64{gain}
	if r.channels == 2 {
		theta := (common.Clamp(pan, -1, 1) + 1) * math.Pi / 4
		gains = []float64{gain * math.Cos(theta), gain * math.Sin(theta)}
	}

	for ch, data := range buf.Channels {
		for i, v := range sound {
			pos := offset + i
			if pos >= len(data) {
				break
			}
			data[pos] += v * gains[ch]
		}
	}
}
