// Package transcode moves audio between WAV files and pcm buffers.
package transcode

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/go-audio/wav"

	"github.com/RyanBlaney/sonido-pulido/logging"
	"github.com/RyanBlaney/sonido-pulido/pcm"
)

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	// TargetChannels is 1 or 2 to force a layout. Zero keeps the source layout.
	TargetChannels int `yaml:"target_channels" json:"target_channels"`
	// MaxDuration truncates longer input. Zero means no limit.
	MaxDuration time.Duration `yaml:"max_duration" json:"max_duration"`
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		TargetChannels: 0,
		MaxDuration:    0,
	}
}

// Validate checks the config ranges.
func (c *DecoderConfig) Validate() error {
	if c.TargetChannels < 0 || c.TargetChannels > 2 {
		return &pcm.ConfigurationError{Field: "target_channels", Value: c.TargetChannels, Reason: "must be 0, 1 or 2"}
	}
	if c.MaxDuration < 0 {
		return &pcm.ConfigurationError{Field: "max_duration", Value: c.MaxDuration, Reason: "must not be negative"}
	}
	return nil
}

// Decoder reads PCM WAV data into normalized buffers.
type Decoder struct {
	config *DecoderConfig
}

// NewDecoder creates a new audio decoder
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{config: config}
}

// DecodeFile decodes a WAV file
func (d *Decoder) DecodeFile(filename string) (*pcm.Buffer, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	buf, err := d.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return buf, nil
}

// Decode reads a complete WAV stream.
func (d *Decoder) Decode(r io.ReadSeeker) (*pcm.Buffer, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"function":  "Decode",
	})

	if err := d.config.Validate(); err != nil {
		return nil, err
	}

	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("not a valid wav file")
	}

	ib, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read pcm data: %w", err)
	}

	bitDepth := int(decoder.BitDepth)
	logger.Debug("WAV header parsed", logging.Fields{
		"sample_rate": ib.Format.SampleRate,
		"channels":    ib.Format.NumChannels,
		"bit_depth":   bitDepth,
		"samples":     len(ib.Data),
	})

	channels := ib.Format.NumChannels
	if channels < 1 {
		return nil, fmt.Errorf("wav has %d channels", channels)
	}
	fb := ib.AsFloatBuffer()
	normalize(fb.Data, bitDepth)
	var buf *pcm.Buffer
	if channels > 2 {
		buf, err = foldChannels(fb.Data, channels, ib.Format.SampleRate, bitDepth)
	} else {
		buf, err = pcm.FromFloatBuffer(fb, bitDepth)
	}
	if err != nil {
		return nil, err
	}

	buf = d.shape(buf)
	logger.Debug("Audio decoded", logging.Fields{
		"channels": buf.NumChannels(),
		"duration": buf.Duration().String(),
	})
	return buf, nil
}

func (d *Decoder) shape(buf *pcm.Buffer) *pcm.Buffer {
	if d.config.MaxDuration > 0 {
		limit := int(d.config.MaxDuration.Seconds() * float64(buf.SampleRate))
		if limit < buf.Frames() {
			trimmed := make([][]float64, buf.NumChannels())
			for ch, data := range buf.Channels {
				trimmed[ch] = data[:limit]
			}
			buf = buf.WithChannels(trimmed)
		}
	}

	switch {
	case d.config.TargetChannels == 1 && buf.IsStereo():
		buf = buf.WithChannels([][]float64{buf.Mono()})
	case d.config.TargetChannels == 2 && !buf.IsStereo():
		mono := buf.Channels[0]
		buf = buf.WithChannels([][]float64{mono, append([]float64(nil), mono...)})
	}
	return buf
}

// normalize scales integer-valued samples into [-1, 1) in place. 8-bit WAV
// is unsigned.
func normalize(data []float64, bitDepth int) {
	if bitDepth == 8 {
		for i, v := range data {
			data[i] = (v - 128) / 128
		}
		return
	}

	scale := math.Pow(2, float64(bitDepth-1))
	for i, v := range data {
		data[i] = v / scale
	}
}

func foldChannels(data []float64, channels, sampleRate, bitDepth int) (*pcm.Buffer, error) {
	frames := len(data) / channels
	mono := make([]float64, frames)
	for i := range frames {
		sum := 0.0
		for ch := range channels {
			sum += data[i*channels+ch]
		}
		mono[i] = sum / float64(channels)
	}
	return pcm.FromChannels([][]float64{mono}, sampleRate, bitDepth)
}
