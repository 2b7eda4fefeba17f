package pcm

import (
	"errors"
	"fmt"
	"math"
)

// ErrShapeMismatch reports that a stage changed the channel count or sample
// rate of a buffer. It always signals a defect in the stage, never bad input.
var ErrShapeMismatch = errors.New("buffer shape mismatch")

// ConfigurationError describes an invalid parameter detected before processing.
type ConfigurationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Reason)
}

// CheckRange returns a ConfigurationError when v is outside [lo, hi].
func CheckRange(field string, v, lo, hi float64) error {
	if math.IsNaN(v) || v < lo || v > hi {
		return &ConfigurationError{
			Field:  field,
			Value:  v,
			Reason: fmt.Sprintf("must be within [%g, %g]", lo, hi),
		}
	}
	return nil
}

// SameShape returns an error wrapping ErrShapeMismatch when got differs from
// want in channel count or sample rate.
func SameShape(want, got *Buffer) error {
	if got == nil {
		return fmt.Errorf("%w: nil buffer", ErrShapeMismatch)
	}
	if want.NumChannels() != got.NumChannels() {
		return fmt.Errorf("%w: %d channels became %d", ErrShapeMismatch, want.NumChannels(), got.NumChannels())
	}
	if want.SampleRate != got.SampleRate {
		return fmt.Errorf("%w: sample rate %d became %d", ErrShapeMismatch, want.SampleRate, got.SampleRate)
	}
	return nil
}
