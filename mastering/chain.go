// Package mastering turns a mixed buffer into a loudness-normalized master
// through six ordered passes: corrective EQ, dynamics, saturation, stereo
// enhancement, loudness maximization, and polish with dither.
package mastering

import (
	"fmt"
	"time"

	"github.com/RyanBlaney/sonido-pulido/algorithms/common"
	"github.com/RyanBlaney/sonido-pulido/logging"
	"github.com/RyanBlaney/sonido-pulido/pcm"
)

// Defaults for Options.
const (
	DefaultTargetLUFS = -14.0
	DefaultCeiling    = 0.95
	DefaultBitDepth   = 16
)

// Options configures a mastering chain.
type Options struct {
	// TargetLUFS is the integrated loudness to reach (default: -14).
	TargetLUFS float64 `yaml:"target_lufs" json:"target_lufs"`

	Style Style `yaml:"style" json:"style"`

	ApplySaturation bool `yaml:"apply_saturation" json:"apply_saturation"`
	EnhanceStereo   bool `yaml:"enhance_stereo" json:"enhance_stereo"`

	// Ceiling is the linear peak no output sample exceeds (default: 0.95).
	Ceiling float64 `yaml:"ceiling" json:"ceiling"`

	// BitDepth is the dither and quantization target (default: 16).
	BitDepth int `yaml:"bit_depth" json:"bit_depth"`

	// DitherSeed makes the dither noise reproducible.
	DitherSeed uint64 `yaml:"dither_seed" json:"dither_seed"`
}

// DefaultOptions returns a balanced streaming master.
func DefaultOptions() Options {
	return Options{
		TargetLUFS:      DefaultTargetLUFS,
		Style:           StyleBalanced,
		ApplySaturation: true,
		EnhanceStereo:   true,
		Ceiling:         DefaultCeiling,
		BitDepth:        DefaultBitDepth,
	}
}

// Validate checks the options.
func (o Options) Validate() error {
	if err := pcm.CheckRange("target_lufs", o.TargetLUFS, -40, -3); err != nil {
		return err
	}
	if _, err := ParseStyle(string(o.Style)); err != nil {
		return err
	}
	if err := pcm.CheckRange("ceiling", o.Ceiling, 0.1, 1); err != nil {
		return err
	}
	switch o.BitDepth {
	case 8, 16, 24:
		return nil
	}
	return &pcm.ConfigurationError{Field: "bit_depth", Value: o.BitDepth, Reason: "must be 8, 16 or 24"}
}

type pass struct {
	name  string
	apply func(channels [][]float64, sampleRate int) [][]float64
}

// Chain is a configured mastering chain. It is deterministic: equal input
// gives equal output.
type Chain struct {
	opts   Options
	params styleParams
	logger logging.Logger
}

// New creates a chain. Invalid options are reported as a
// *pcm.ConfigurationError.
func New(opts Options) (*Chain, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Chain{
		opts:   opts,
		params: opts.Style.params(),
		logger: logging.WithFields(logging.Fields{"component": "mastering_chain"}),
	}, nil
}

// Master runs a one-off chain with default ceiling and bit depth.
func Master(buf *pcm.Buffer, targetLUFS float64, style Style, applySaturation, enhanceStereo bool) (*pcm.Buffer, error) {
	opts := DefaultOptions()
	opts.TargetLUFS = targetLUFS
	opts.Style = style
	opts.ApplySaturation = applySaturation
	opts.EnhanceStereo = enhanceStereo

	chain, err := New(opts)
	if err != nil {
		return nil, err
	}
	return chain.Master(buf)
}

// Options returns the chain's settings.
func (c *Chain) Options() Options {
	return c.opts
}

func perChannel(fn func(x []float64, sampleRate int) []float64) func([][]float64, int) [][]float64 {
	return func(channels [][]float64, sampleRate int) [][]float64 {
		out := make([][]float64, len(channels))
		for ch, data := range channels {
			out[ch] = fn(data, sampleRate)
		}
		return out
	}
}

func (c *Chain) passes() []pass {
	p := c.params
	passes := []pass{
		{"corrective_eq", perChannel(func(x []float64, sr int) []float64 {
			return correctiveEQ(x, sr, p.eqGains)
		})},
		{"dynamics", func(channels [][]float64, sr int) [][]float64 {
			return dynamics(channels, sr, p)
		}},
	}

	if c.opts.ApplySaturation {
		passes = append(passes, pass{"saturation", perChannel(func(x []float64, sr int) []float64 {
			return saturate(x, sr, p.saturation)
		})})
	}
	if c.opts.EnhanceStereo {
		passes = append(passes, pass{"stereo", func(channels [][]float64, sr int) [][]float64 {
			return widen(channels, sr, p.width)
		}})
	}

	passes = append(passes,
		pass{"loudness", func(channels [][]float64, sr int) [][]float64 {
			out, gainDB := maximize(channels, sr, c.opts.TargetLUFS, c.opts.Ceiling)
			c.logger.Debug("Loudness gain applied", logging.Fields{"gain_db": fmt.Sprintf("%.2f", gainDB)})
			return out
		}},
		pass{"polish", func(channels [][]float64, sr int) [][]float64 {
			rng := common.NewRand(c.opts.DitherSeed)
			out := make([][]float64, len(channels))
			for ch, data := range channels {
				out[ch] = shelve(data, sr, p.shelfDB)
				ditherTo(out[ch], c.opts.BitDepth, c.opts.Ceiling, rng.Fork())
			}
			return out
		}},
	)

	return passes
}

// Master runs every pass over buf and returns the master. Channel count and
// sample rate are preserved; mono stays mono.
func (c *Chain) Master(buf *pcm.Buffer) (*pcm.Buffer, error) {
	logger := c.logger.WithFields(logging.Fields{
		"function": "Master",
		"style":    string(c.opts.Style),
	})

	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("master: %w", err)
	}
	if buf.Empty() {
		return buf.Clone(), nil
	}

	started := time.Now()
	inputLUFS := MeasureLoudness(buf)
	channels := buf.Clone().Channels

	for _, p := range c.passes() {
		next := p.apply(channels, buf.SampleRate)
		if len(next) != len(channels) {
			return nil, fmt.Errorf("%w: pass %s returned %d channels for %d", pcm.ErrShapeMismatch, p.name, len(next), len(channels))
		}
		channels = next
	}

	out := buf.WithChannels(channels)
	out.BitDepth = c.opts.BitDepth

	logger.Debug("Mastering complete", logging.Fields{
		"input_lufs":  fmt.Sprintf("%.2f", inputLUFS),
		"output_lufs": fmt.Sprintf("%.2f", MeasureLoudness(out)),
		"peak":        fmt.Sprintf("%.3f", out.Peak()),
		"elapsed_ms":  time.Since(started).Milliseconds(),
	})

	return out, nil
}
