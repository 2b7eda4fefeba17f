// Package pcm holds the in-memory audio buffer passed between processing
// stages, plus the error kinds shared by every stage.
package pcm

import (
	"fmt"
	"math"
	"time"

	"github.com/go-audio/audio"
)

// DefaultBitDepth is assumed when a producer does not tag its buffer.
const DefaultBitDepth = 24

// Buffer is a block of planar floating-point audio normalized to [-1, 1].
//
// Buffers are immutable by convention: stages read their input and return a
// new Buffer. Channel count and sample rate never change across a stage.
type Buffer struct {
	// Channels holds one sample slice per channel; all slices share a length.
	Channels   [][]float64 `json:"-"`
	SampleRate int         `json:"sample_rate"`
	BitDepth   int         `json:"bit_depth"`
}

// New allocates a zeroed buffer.
func New(channels, frames, sampleRate, bitDepth int) *Buffer {
	data := make([][]float64, channels)
	for ch := range data {
		data[ch] = make([]float64, frames)
	}
	if bitDepth <= 0 {
		bitDepth = DefaultBitDepth
	}
	return &Buffer{Channels: data, SampleRate: sampleRate, BitDepth: bitDepth}
}

// FromChannels wraps existing planar data without copying.
func FromChannels(channels [][]float64, sampleRate, bitDepth int) (*Buffer, error) {
	if bitDepth <= 0 {
		bitDepth = DefaultBitDepth
	}
	b := &Buffer{Channels: channels, SampleRate: sampleRate, BitDepth: bitDepth}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// FromInterleaved de-interleaves frame-ordered samples.
func FromInterleaved(data []float64, channels, sampleRate, bitDepth int) (*Buffer, error) {
	if channels <= 0 {
		return nil, &ConfigurationError{Field: "channels", Value: channels, Reason: "must be positive"}
	}
	if len(data)%channels != 0 {
		return nil, fmt.Errorf("interleaved length %d is not a multiple of %d channels", len(data), channels)
	}

	frames := len(data) / channels
	b := New(channels, frames, sampleRate, bitDepth)
	for i := range frames {
		for ch := range channels {
			b.Channels[ch][i] = data[i*channels+ch]
		}
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// FromFloatBuffer converts a go-audio float buffer holding normalized
// samples. go-audio float buffers carry no bit depth, so the caller supplies
// it; zero means DefaultBitDepth.
func FromFloatBuffer(fb *audio.FloatBuffer, bitDepth int) (*Buffer, error) {
	if fb == nil || fb.Format == nil {
		return nil, fmt.Errorf("float buffer has no format")
	}
	return FromInterleaved(fb.Data, fb.Format.NumChannels, fb.Format.SampleRate, bitDepth)
}

// Validate checks the structural invariants.
func (b *Buffer) Validate() error {
	if b == nil {
		return fmt.Errorf("nil buffer")
	}
	if n := len(b.Channels); n < 1 || n > 2 {
		return &ConfigurationError{Field: "channels", Value: n, Reason: "must be 1 or 2"}
	}
	if b.SampleRate <= 0 {
		return &ConfigurationError{Field: "sample_rate", Value: b.SampleRate, Reason: "must be positive"}
	}

	frames := len(b.Channels[0])
	for ch, data := range b.Channels {
		if len(data) != frames {
			return fmt.Errorf("channel %d has %d frames, channel 0 has %d", ch, len(data), frames)
		}
	}

	return nil
}

// NumChannels returns the channel count.
func (b *Buffer) NumChannels() int {
	return len(b.Channels)
}

// Frames returns the number of sample frames.
func (b *Buffer) Frames() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// Empty reports whether the buffer carries no frames.
func (b *Buffer) Empty() bool {
	return b == nil || b.Frames() == 0
}

// IsStereo reports whether the buffer has two channels.
func (b *Buffer) IsStereo() bool {
	return len(b.Channels) == 2
}

// Seconds returns the duration in seconds.
func (b *Buffer) Seconds() float64 {
	if b.SampleRate == 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

// Duration returns the duration as a time.Duration.
func (b *Buffer) Duration() time.Duration {
	return time.Duration(b.Seconds() * float64(time.Second))
}

// Clone deep-copies the buffer.
func (b *Buffer) Clone() *Buffer {
	out := &Buffer{
		Channels:   make([][]float64, len(b.Channels)),
		SampleRate: b.SampleRate,
		BitDepth:   b.BitDepth,
	}
	for ch, data := range b.Channels {
		out.Channels[ch] = append([]float64(nil), data...)
	}
	return out
}

// WithChannels returns a buffer carrying the given data and this buffer's tags.
func (b *Buffer) WithChannels(channels [][]float64) *Buffer {
	return &Buffer{Channels: channels, SampleRate: b.SampleRate, BitDepth: b.BitDepth}
}

// Mono returns the average of all channels.
func (b *Buffer) Mono() []float64 {
	frames := b.Frames()
	if len(b.Channels) == 1 {
		return append([]float64(nil), b.Channels[0]...)
	}

	mono := make([]float64, frames)
	scale := 1.0 / float64(len(b.Channels))
	for _, data := range b.Channels {
		for i, v := range data {
			mono[i] += v * scale
		}
	}
	return mono
}

// Interleaved returns frame-ordered samples.
func (b *Buffer) Interleaved() []float64 {
	channels := len(b.Channels)
	frames := b.Frames()
	out := make([]float64, frames*channels)
	for ch, data := range b.Channels {
		for i, v := range data {
			out[i*channels+ch] = v
		}
	}
	return out
}

// ToFloatBuffer converts to a go-audio float buffer.
func (b *Buffer) ToFloatBuffer() *audio.FloatBuffer {
	return &audio.FloatBuffer{
		Format: &audio.Format{NumChannels: len(b.Channels), SampleRate: b.SampleRate},
		Data:   b.Interleaved(),
	}
}

// ToIntBuffer quantizes to signed integers at bitDepth, clamping to full scale.
// A bitDepth of zero uses the buffer's own depth.
func (b *Buffer) ToIntBuffer(bitDepth int) *audio.IntBuffer {
	if bitDepth <= 0 {
		bitDepth = b.BitDepth
	}
	scale := math.Pow(2, float64(bitDepth-1)) - 1

	interleaved := b.Interleaved()
	data := make([]int, len(interleaved))
	for i, v := range interleaved {
		v = math.Max(-1, math.Min(1, v))
		data[i] = int(math.Round(v * scale))
	}

	return &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: len(b.Channels), SampleRate: b.SampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
}

// Peak returns the largest absolute sample across channels.
func (b *Buffer) Peak() float64 {
	peak := 0.0
	for _, data := range b.Channels {
		for _, v := range data {
			if a := math.Abs(v); a > peak {
				peak = a
			}
		}
	}
	return peak
}

// Finite reports whether every sample is a finite number.
func (b *Buffer) Finite() bool {
	for _, data := range b.Channels {
		for _, v := range data {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
