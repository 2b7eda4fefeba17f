package temporal

import (
	"math"
)

// Envelope provides amplitude envelope extraction
type Envelope struct{}

// NewEnvelope creates a new envelope extractor
func NewEnvelope() *Envelope {
	return &Envelope{}
}

// ComputeRMS computes RMS envelope with given frame and hop sizes
func (e *Envelope) ComputeRMS(signal []float64, frameSize, hopSize int) []float64 {
	if len(signal) < frameSize || frameSize <= 0 || hopSize <= 0 {
		return []float64{}
	}

	numFrames := (len(signal)-frameSize)/hopSize + 1
	envelope := make([]float64, numFrames)

	for i := range numFrames {
		startIdx := i * hopSize

		sumSquares := 0.0
		for _, v := range signal[startIdx : startIdx+frameSize] {
			sumSquares += v * v
		}
		envelope[i] = math.Sqrt(sumSquares / float64(frameSize))
	}

	return envelope
}

// Follow runs a peak envelope follower with separate attack and release
// times. The output has one value per input sample.
func (e *Envelope) Follow(signal []float64, sampleRate int, attackMs, releaseMs float64) []float64 {
	attack := followerCoeff(attackMs, sampleRate)
	release := followerCoeff(releaseMs, sampleRate)

	envelope := make([]float64, len(signal))
	level := 0.0
	for i, v := range signal {
		target := math.Abs(v)
		if target > level {
			level = attack*level + (1-attack)*target
		} else {
			level = release*level + (1-release)*target
		}
		envelope[i] = level
	}

	return envelope
}

// followerCoeff is the one-pole smoothing factor for a time constant in ms.
func followerCoeff(ms float64, sampleRate int) float64 {
	if ms <= 0 || sampleRate <= 0 {
		return 0
	}
	return math.Exp(-1.0 / (ms * 0.001 * float64(sampleRate)))
}
