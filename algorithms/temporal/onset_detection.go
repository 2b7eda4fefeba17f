package temporal

// OnsetDetection finds note onsets as sharp rises of an amplitude envelope.
type OnsetDetection struct {
	envelopeExtractor *Envelope

	attackMs    float64
	releaseMs   float64
	hopMs       float64
	threshold   float64 // rise per hop, relative to the signal's envelope peak
	minInterval float64 // seconds between accepted onsets
}

// NewOnsetDetection creates a new onset detector
func NewOnsetDetection() *OnsetDetection {
	return &OnsetDetection{
		envelopeExtractor: NewEnvelope(),
		attackMs:          1,
		releaseMs:         80,
		hopMs:             5,
		threshold:         0.05,
		minInterval:       0.05,
	}
}

// DetectOnsets returns onset positions as sample indices in ascending order.
func (od *OnsetDetection) DetectOnsets(signal []float64, sampleRate int) []int {
	if len(signal) == 0 || sampleRate <= 0 {
		return []int{}
	}

	envelope := od.envelopeExtractor.Follow(signal, sampleRate, od.attackMs, od.releaseMs)

	peak := 0.0
	for _, v := range envelope {
		peak = max(peak, v)
	}
	if peak == 0 {
		return []int{}
	}

	hopSize := max(1, int(od.hopMs*0.001*float64(sampleRate)))
	numHops := len(envelope) / hopSize
	if numHops < 3 {
		return []int{}
	}

	rise := make([]float64, numHops)
	for k := 1; k < numHops; k++ {
		diff := (envelope[k*hopSize] - envelope[(k-1)*hopSize]) / peak
		if diff > 0 {
			rise[k] = diff
		}
	}

	onsetHops := od.findRisePeaks(rise, hopSize, sampleRate)

	onsets := make([]int, len(onsetHops))
	for i, k := range onsetHops {
		// the rise is measured at the end of the hop; the note starts before it
		onsets[i] = (k - 1) * hopSize
	}
	return onsets
}

// findRisePeaks finds local maxima above threshold, at least minInterval apart.
func (od *OnsetDetection) findRisePeaks(rise []float64, hopSize int, sampleRate int) []int {
	minIntervalHops := max(1, int(od.minInterval*float64(sampleRate)/float64(hopSize)))

	var peaks []int
	lastPeak := -minIntervalHops

	for i := 1; i < len(rise)-1; i++ {
		if rise[i] >= od.threshold &&
			rise[i] >= rise[i-1] &&
			rise[i] > rise[i+1] &&
			i-lastPeak >= minIntervalHops {
			peaks = append(peaks, i)
			lastPeak = i
		}
	}

	return peaks
}
