package temporal

import (
	"math"
)

// TempoEstimation estimates tempo from the spacing of note onsets.
type TempoEstimation struct {
	onsetDetector *OnsetDetection
}

// NewTempoEstimation creates a new tempo estimator
func NewTempoEstimation() *TempoEstimation {
	return &TempoEstimation{
		onsetDetector: NewOnsetDetection(),
	}
}

// EstimateTempo estimates tempo in BPM. ok is false when the signal has too
// few onsets to judge.
func (te *TempoEstimation) EstimateTempo(signal []float64, sampleRate int) (bpm float64, ok bool) {
	onsets := te.onsetDetector.DetectOnsets(signal, sampleRate)
	if len(onsets) < 3 {
		return 0, false
	}

	intervals := make([]float64, len(onsets)-1)
	for i := range intervals {
		intervals[i] = float64(onsets[i+1]-onsets[i]) / float64(sampleRate)
	}

	return te.findTempoFromIntervals(intervals)
}

// findTempoFromIntervals votes every interval, and its doublings, into a
// 1 BPM histogram over 60-180 BPM and returns the most popular bin.
func (te *TempoEstimation) findTempoFromIntervals(intervals []float64) (float64, bool) {
	const minBPM, maxBPM = 60, 180
	votes := make([]float64, maxBPM-minBPM+1)

	for _, interval := range intervals {
		if interval <= 0 {
			continue
		}
		// Sub-beat intervals (eighths, sixteenths) vote for the beat they divide.
		for _, mult := range []float64{1, 2, 4} {
			bpm := 60.0 / (interval * mult)
			if bpm < minBPM || bpm > maxBPM {
				continue
			}
			bin := int(math.Round(bpm)) - minBPM
			weight := 1.0 / mult
			votes[bin] += weight
			if bin > 0 {
				votes[bin-1] += weight / 2
			}
			if bin < len(votes)-1 {
				votes[bin+1] += weight / 2
			}
		}
	}

	best := -1
	for i, v := range votes {
		if v > 0 && (best < 0 || v > votes[best]) {
			best = i
		}
	}
	if best < 0 {
		return 0, false
	}
	return float64(best + minBPM), true
}
