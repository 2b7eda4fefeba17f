// Package silence finds silent gaps in a buffer and covers them, or the
// whole buffer, with synthesized ambience.
package silence

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-pulido/algorithms/common"
	"github.com/RyanBlaney/sonido-pulido/algorithms/temporal"
	"github.com/RyanBlaney/sonido-pulido/logging"
	"github.com/RyanBlaney/sonido-pulido/pcm"
)

// Style selects the material synthesized into a gap.
type Style string

const (
	StyleSmart      Style = "smart"
	StyleVinyl      Style = "vinyl"
	StyleAmbientPad Style = "ambient_pad"
	StyleRoomTone   Style = "room_tone"
)

// ParseStyle validates a fill style name.
func ParseStyle(name string) (Style, error) {
	switch s := Style(name); s {
	case StyleSmart, StyleVinyl, StyleAmbientPad, StyleRoomTone:
		return s, nil
	}
	return "", &pcm.ConfigurationError{
		Field:  "fill_style",
		Value:  name,
		Reason: "must be one of smart, vinyl, ambient_pad, room_tone",
	}
}

// forGap resolves StyleSmart by gap length.
func (s Style) forGap(seconds float64) Style {
	if s != StyleSmart {
		return s
	}
	switch {
	case seconds < 1:
		return StyleVinyl
	case seconds <= 3:
		return StyleRoomTone
	default:
		return StyleAmbientPad
	}
}

// Ambience selects the layer laid under a whole buffer.
type Ambience string

const (
	AmbienceSubtle Ambience = "subtle"
	AmbienceVinyl  Ambience = "vinyl"
	AmbienceTape   Ambience = "tape"
	AmbienceRoom   Ambience = "room"
)

// ParseAmbience validates an ambience type name.
func ParseAmbience(name string) (Ambience, error) {
	switch a := Ambience(name); a {
	case AmbienceSubtle, AmbienceVinyl, AmbienceTape, AmbienceRoom:
		return a, nil
	}
	return "", &pcm.ConfigurationError{
		Field:  "ambience_type",
		Value:  name,
		Reason: "must be one of subtle, vinyl, tape, room",
	}
}

// Options configures gap detection and the default fill.
type Options struct {
	// ThresholdDB is the frame level below which audio is silent (default: -60).
	ThresholdDB float64 `yaml:"threshold_db" json:"threshold_db"`

	// MinGapDuration is the shortest gap filled, in seconds (default: 0.5).
	MinGapDuration float64 `yaml:"min_gap_duration" json:"min_gap_duration"`

	FillStyle  Style   `yaml:"fill_style" json:"fill_style"`
	FillVolume float64 `yaml:"fill_volume" json:"fill_volume"`

	AmbienceType   Ambience `yaml:"ambience_type" json:"ambience_type"`
	AmbienceVolume float64  `yaml:"ambience_volume" json:"ambience_volume"`
}

// DefaultOptions returns the standard repair settings.
func DefaultOptions() Options {
	return Options{
		ThresholdDB:    temporal.DefaultSilenceThresholdDB,
		MinGapDuration: 0.5,
		FillStyle:      StyleSmart,
		FillVolume:     0.35,
		AmbienceType:   AmbienceSubtle,
		AmbienceVolume: 0.1,
	}
}

// Validate checks the options.
func (o Options) Validate() error {
	if err := pcm.CheckRange("threshold_db", o.ThresholdDB, -120, 0); err != nil {
		return err
	}
	if err := pcm.CheckRange("min_gap_duration", o.MinGapDuration, 0.01, 60); err != nil {
		return err
	}
	if _, err := ParseStyle(string(o.FillStyle)); err != nil {
		return err
	}
	if err := pcm.CheckRange("fill_volume", o.FillVolume, 0, 1); err != nil {
		return err
	}
	if _, err := ParseAmbience(string(o.AmbienceType)); err != nil {
		return err
	}
	return pcm.CheckRange("ambience_volume", o.AmbienceVolume, 0, 1)
}

// DetectGaps returns the silent gaps of buf lasting at least minGapDuration
// seconds, sorted by start and non-overlapping. It uses the same detector as
// the quality analyzer.
func DetectGaps(buf *pcm.Buffer, minGapDuration, thresholdDB float64) []temporal.Gap {
	if buf == nil || buf.Empty() {
		return nil
	}
	return temporal.NewSilenceDetection(thresholdDB).
		Detect(buf.Channels, buf.SampleRate).
		Gaps(minGapDuration)
}

// Filler synthesizes gap fills and ambience. All randomness derives from
// the seed given to New, so equal inputs give equal outputs.
type Filler struct {
	opts   Options
	seed   uint64
	logger logging.Logger
}

// New creates a filler. Invalid options are reported as a
// *pcm.ConfigurationError.
func New(opts Options, seed uint64) (*Filler, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Filler{
		opts:   opts,
		seed:   seed,
		logger: logging.WithFields(logging.Fields{"component": "silence_filler"}),
	}, nil
}

// Options returns the filler's settings.
func (f *Filler) Options() Options {
	return f.opts
}

// DetectGaps finds gaps with the filler's threshold and minimum duration.
func (f *Filler) DetectGaps(buf *pcm.Buffer) []temporal.Gap {
	return DetectGaps(buf, f.opts.MinGapDuration, f.opts.ThresholdDB)
}

// FillSilenceGaps detects gaps in buf and fills each one.
func (f *Filler) FillSilenceGaps(buf *pcm.Buffer, style Style, volume float64) (*pcm.Buffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("fill silence gaps: %w", err)
	}
	return f.FillGaps(buf, f.DetectGaps(buf), style, volume)
}

// FillGaps blends synthesized material into each gap of a precomputed list.
// The fill fades in and out with raised-cosine ramps that are zero at the gap
// edges, so the samples at each boundary are left untouched. Length, channel
// count and sample rate are preserved.
func (f *Filler) FillGaps(buf *pcm.Buffer, gaps []temporal.Gap, style Style, volume float64) (*pcm.Buffer, error) {
	logger := f.logger.WithFields(logging.Fields{"function": "FillGaps"})

	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("fill gaps: %w", err)
	}
	if _, err := ParseStyle(string(style)); err != nil {
		return nil, err
	}
	if err := pcm.CheckRange("fill_volume", volume, 0, 1); err != nil {
		return nil, err
	}

	out := buf.Clone()
	if len(gaps) == 0 || volume == 0 {
		return out, nil
	}

	rng := common.NewRand(f.seed)
	frames := buf.Frames()
	maxFade := common.MsToSamples(30, buf.SampleRate)

	for _, gap := range gaps {
		gapRand := rng.Fork()
		start, end := gap.SampleRange(buf.SampleRate, frames)
		n := end - start
		if n < 2 {
			continue
		}

		chosen := style.forGap(gap.Duration)
		fill := generate(chosen, n, buf.NumChannels(), buf.SampleRate, gapRand)
		env := gapEnvelope(n, min(n/4, maxFade))

		for ch, data := range out.Channels {
			for i := range n {
				data[start+i] += fill[ch][i] * env[i] * volume
			}
		}

		logger.Debug("Filled gap", logging.Fields{
			"start":    fmt.Sprintf("%.3f", gap.Start),
			"duration": fmt.Sprintf("%.3f", gap.Duration),
			"style":    string(chosen),
		})
	}

	return out, nil
}

// AddContinuousAmbience lays an ambience layer under the whole buffer.
func (f *Filler) AddContinuousAmbience(buf *pcm.Buffer, ambience Ambience, volume float64) (*pcm.Buffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("add ambience: %w", err)
	}
	if _, err := ParseAmbience(string(ambience)); err != nil {
		return nil, err
	}
	if err := pcm.CheckRange("ambience_volume", volume, 0, 1); err != nil {
		return nil, err
	}

	out := buf.Clone()
	if volume == 0 || buf.Empty() {
		return out, nil
	}

	// A distinct stream from gap fills made with the same seed.
	layer := ambienceLayer(ambience, buf.Frames(), buf.NumChannels(), buf.SampleRate, common.NewRand(^f.seed))
	for ch, data := range out.Channels {
		for i, v := range layer[ch] {
			data[i] += v * volume
		}
	}

	f.logger.Debug("Added continuous ambience", logging.Fields{
		"function": "AddContinuousAmbience",
		"type":     string(ambience),
		"volume":   volume,
	})

	return out, nil
}

// gapEnvelope is 1 across the gap with raised-cosine ramps of fade samples
// at both ends. The first and last samples are exactly 0.
func gapEnvelope(n, fade int) []float64 {
	env := make([]float64, n)
	for i := range env {
		env[i] = 1
	}
	fade = max(1, min(fade, n/2))
	for k := range fade {
		g := 0.5 * (1 - math.Cos(math.Pi*float64(k)/float64(fade)))
		env[k] = g
		env[n-1-k] = g
	}
	return env
}
