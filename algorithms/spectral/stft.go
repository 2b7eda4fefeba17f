package spectral

import (
	"fmt"
	"math/cmplx"
	"runtime"
	"sync"

	"github.com/RyanBlaney/sonido-pulido/logging"
)

// STFT provides Short-Time Fourier Transform functionality
type STFT struct {
	fft    *FFT
	logger logging.Logger
}

// STFTResult holds the magnitude spectrogram of a signal.
type STFTResult struct {
	Magnitude      [][]float64 `json:"magnitude"`       // Time x Frequency magnitude matrix
	TimeFrames     int         `json:"time_frames"`     // Number of time frames
	FreqBins       int         `json:"freq_bins"`       // Number of frequency bins
	SampleRate     int         `json:"sample_rate"`     // Sample rate
	WindowSize     int         `json:"window_size"`     // FFT window size
	HopSize        int         `json:"hop_size"`        // Hop size between frames
	FreqResolution float64     `json:"freq_resolution"` // Frequency resolution (Hz/bin)
	TimeResolution float64     `json:"time_resolution"` // Time resolution (seconds/frame)
}

// Window interface for windowing functions
type Window interface {
	ApplyInPlace(signal []float64) error
}

// NewSTFT creates a new STFT calculator
func NewSTFT() *STFT {
	return &STFT{
		fft:    NewFFT(),
		logger: logging.WithFields(logging.Fields{"component": "stft"}),
	}
}

// ComputeWithWindow computes the STFT, spreading frames across a worker pool.
// The window must be safe for concurrent reads.
func (s *STFT) ComputeWithWindow(signal []float64, windowSize int, hopSize int, sampleRate int, window Window) (*STFTResult, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("empty signal")
	}

	if windowSize <= 0 {
		return nil, fmt.Errorf("window size must be positive")
	}

	if hopSize <= 0 {
		return nil, fmt.Errorf("hop size must be positive")
	}

	if len(signal) < windowSize {
		return nil, fmt.Errorf("signal of %d samples is shorter than one %d-sample window", len(signal), windowSize)
	}

	numFrames := (len(signal)-windowSize)/hopSize + 1
	freqBins := windowSize/2 + 1

	magnitude := make([][]float64, numFrames)
	for i := range numFrames {
		magnitude[i] = make([]float64, freqBins)
	}

	numWorkers := s.workerCount(numFrames)

	jobs := make(chan int, numFrames)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			frameBuffer := make([]float64, windowSize)

			for frameIdx := range jobs {
				start := frameIdx * hopSize
				copy(frameBuffer, signal[start:start+windowSize])

				if window != nil {
					if err := window.ApplyInPlace(frameBuffer); err != nil {
						errOnce.Do(func() { firstErr = err })
						continue
					}
				}

				spectrum := s.fft.Compute(frameBuffer)
				row := magnitude[frameIdx]
				for i := range freqBins {
					row[i] = cmplx.Abs(spectrum[i])
				}
			}
		}()
	}

	for frameIdx := range numFrames {
		jobs <- frameIdx
	}
	close(jobs)

	wg.Wait()

	if firstErr != nil {
		return nil, fmt.Errorf("windowing frame: %w", firstErr)
	}

	s.logger.Debug("STFT computed", logging.Fields{
		"frames":  numFrames,
		"window":  windowSize,
		"hop":     hopSize,
		"workers": numWorkers,
	})

	return &STFTResult{
		Magnitude:      magnitude,
		TimeFrames:     numFrames,
		FreqBins:       freqBins,
		SampleRate:     sampleRate,
		WindowSize:     windowSize,
		HopSize:        hopSize,
		FreqResolution: float64(sampleRate) / float64(windowSize),
		TimeResolution: float64(hopSize) / float64(sampleRate),
	}, nil
}

// workerCount scales the pool with the workload; always at least one worker.
func (s *STFT) workerCount(numFrames int) int {
	numCPU := runtime.NumCPU()

	var workers int
	switch {
	case numFrames < 64:
		workers = 1
	case numFrames < 512:
		workers = numCPU / 2
	default:
		workers = numCPU
	}

	return max(1, min(workers, numFrames))
}
