package transcode

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/wav"

	"github.com/RyanBlaney/sonido-pulido/pcm"
)

// wavFormatPCM is the WAVE_FORMAT_PCM tag.
const wavFormatPCM = 1

// SupportedBitDepth reports whether Encode can write bitDepth.
func SupportedBitDepth(bitDepth int) bool {
	return bitDepth == 16 || bitDepth == 24
}

// Encode writes buf as integer PCM at bitDepth.
func Encode(w io.WriteSeeker, buf *pcm.Buffer, bitDepth int) error {
	if !SupportedBitDepth(bitDepth) {
		return &pcm.ConfigurationError{Field: "bit_depth", Value: bitDepth, Reason: "must be 16 or 24"}
	}
	if err := buf.Validate(); err != nil {
		return err
	}

	encoder := wav.NewEncoder(w, buf.SampleRate, bitDepth, buf.NumChannels(), wavFormatPCM)
	if err := encoder.Write(buf.ToIntBuffer(bitDepth)); err != nil {
		return fmt.Errorf("write samples: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}

// EncodeFile creates path and writes buf into it.
func EncodeFile(path string, buf *pcm.Buffer, bitDepth int) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := Encode(out, buf, bitDepth); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
