package transcode

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/RyanBlaney/sonido-pulido/logging"
	"github.com/RyanBlaney/sonido-pulido/pcm"
)

const testRate = 44100

func init() {
	logging.SetGlobalLogger(&logging.NoOpLogger{})
}

func stereoTone(seconds float64) *pcm.Buffer {
	n := int(seconds * testRate)
	buf := pcm.New(2, n, testRate, 24)
	for i := range n {
		t := float64(i) / testRate
		buf.Channels[0][i] = 0.5 * math.Sin(2*math.Pi*440*t)
		buf.Channels[1][i] = 0.25 * math.Sin(2*math.Pi*660*t)
	}
	return buf
}

func writeTemp(t *testing.T, buf *pcm.Buffer, bitDepth int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.wav")
	if err := EncodeFile(path, buf, bitDepth); err != nil {
		t.Fatalf("EncodeFile: %v", err)
	}
	return path
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		bitDepth  int
		tolerance float64
	}{
		{"16bit", 16, 1e-4},
		{"24bit", 24, 1e-6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := stereoTone(0.25)
			out, err := NewDecoder(nil).DecodeFile(writeTemp(t, in, tt.bitDepth))
			if err != nil {
				t.Fatalf("DecodeFile: %v", err)
			}
			if err := pcm.SameShape(in, out); err != nil {
				t.Fatal(err)
			}
			if out.BitDepth != tt.bitDepth {
				t.Errorf("BitDepth = %d, want %d", out.BitDepth, tt.bitDepth)
			}
			for ch := range in.Channels {
				for i, want := range in.Channels[ch] {
					if d := math.Abs(out.Channels[ch][i] - want); d > tt.tolerance {
						t.Fatalf("ch %d sample %d: got %f want %f", ch, i, out.Channels[ch][i], want)
					}
				}
			}
		})
	}
}

func TestDecoderShapes(t *testing.T) {
	path := writeTemp(t, stereoTone(1), 16)

	t.Run("downmix", func(t *testing.T) {
		out, err := NewDecoder(&DecoderConfig{TargetChannels: 1}).DecodeFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if out.NumChannels() != 1 || out.Frames() != testRate {
			t.Errorf("got %d ch %d frames", out.NumChannels(), out.Frames())
		}
	})

	t.Run("truncate", func(t *testing.T) {
		out, err := NewDecoder(&DecoderConfig{MaxDuration: 500 * time.Millisecond}).DecodeFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if out.Frames() != testRate/2 || out.NumChannels() != 2 {
			t.Errorf("got %d ch %d frames", out.NumChannels(), out.Frames())
		}
	})

	t.Run("upmix", func(t *testing.T) {
		mono := pcm.New(1, 1000, testRate, 16)
		for i := range mono.Channels[0] {
			mono.Channels[0][i] = 0.1
		}
		out, err := NewDecoder(&DecoderConfig{TargetChannels: 2}).DecodeFile(writeTemp(t, mono, 16))
		if err != nil {
			t.Fatal(err)
		}
		if !out.IsStereo() {
			t.Fatal("expected stereo")
		}
		if out.Channels[0][500] != out.Channels[1][500] {
			t.Errorf("channels differ: %f vs %f", out.Channels[0][500], out.Channels[1][500])
		}
	})
}

func TestDecodeInvalid(t *testing.T) {
	if _, err := NewDecoder(nil).Decode(bytes.NewReader([]byte("not a riff file at all"))); err == nil {
		t.Error("expected error for garbage input")
	}

	if _, err := NewDecoder(nil).DecodeFile(filepath.Join(t.TempDir(), "missing.wav")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: got %v", err)
	}

	var cfgErr *pcm.ConfigurationError
	_, err := NewDecoder(&DecoderConfig{TargetChannels: 3}).Decode(bytes.NewReader(nil))
	if !errors.As(err, &cfgErr) {
		t.Errorf("TargetChannels 3: got %v, want ConfigurationError", err)
	}
}

func TestEncodeRejectsBitDepth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	var cfgErr *pcm.ConfigurationError
	if err := EncodeFile(path, stereoTone(0.01), 12); !errors.As(err, &cfgErr) {
		t.Errorf("got %v, want ConfigurationError", err)
	}
}
