package temporal

import (
	"math"
)

// DefaultSilenceThresholdDB is the level below which a frame counts as silent.
const DefaultSilenceThresholdDB = -60.0

// Gap is a run of silence, in seconds.
type Gap struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// End returns the time the gap stops.
func (g Gap) End() float64 {
	return g.Start + g.Duration
}

// SampleRange converts the gap to a half-open [start, end) sample range
// clamped to frames.
func (g Gap) SampleRange(sampleRate, frames int) (int, int) {
	start := int(math.Round(g.Start * float64(sampleRate)))
	end := int(math.Round(g.End() * float64(sampleRate)))
	return max(0, min(start, frames)), max(0, min(end, frames))
}

// SilenceResult describes every silent run found in a signal.
type SilenceResult struct {
	// Runs holds every silent run regardless of length, sorted by start.
	Runs []Gap
	// Percentage of the signal's duration covered by silent frames.
	Percentage float64
	// Longest is the duration of the longest run in seconds.
	Longest float64
}

// Gaps returns the runs lasting at least minDuration seconds.
func (r SilenceResult) Gaps(minDuration float64) []Gap {
	gaps := make([]Gap, 0, len(r.Runs))
	for _, run := range r.Runs {
		if run.Duration >= minDuration {
			gaps = append(gaps, run)
		}
	}
	return gaps
}

// SilenceDetection finds silent stretches by scanning fixed 10 ms frames.
// A frame is silent when its peak level across all channels is below the
// threshold.
type SilenceDetection struct {
	thresholdDB float64
	frameMs     float64
}

// NewSilenceDetection creates a detector with the given dBFS threshold.
func NewSilenceDetection(thresholdDB float64) *SilenceDetection {
	return &SilenceDetection{
		thresholdDB: thresholdDB,
		frameMs:     10,
	}
}

// Detect scans channels, which must share a length.
func (sd *SilenceDetection) Detect(channels [][]float64, sampleRate int) SilenceResult {
	if len(channels) == 0 || len(channels[0]) == 0 || sampleRate <= 0 {
		return SilenceResult{}
	}

	frames := len(channels[0])
	frameSize := max(1, int(sd.frameMs*0.001*float64(sampleRate)))
	threshold := math.Pow(10, sd.thresholdDB/20)

	var (
		result       SilenceResult
		silentFrames int
		runStart     = -1
	)

	closeRun := func(endSample int) {
		if runStart < 0 {
			return
		}
		gap := Gap{
			Start:    float64(runStart) / float64(sampleRate),
			Duration: float64(endSample-runStart) / float64(sampleRate),
		}
		result.Runs = append(result.Runs, gap)
		result.Longest = math.Max(result.Longest, gap.Duration)
		runStart = -1
	}

	for start := 0; start < frames; start += frameSize {
		end := min(start+frameSize, frames)

		peak := 0.0
		for _, data := range channels {
			for _, v := range data[start:end] {
				if a := math.Abs(v); a > peak {
					peak = a
				}
			}
		}

		if peak < threshold {
			silentFrames += end - start
			if runStart < 0 {
				runStart = start
			}
		} else {
			closeRun(start)
		}
	}
	closeRun(frames)

	result.Percentage = 100 * float64(silentFrames) / float64(frames)
	return result
}
