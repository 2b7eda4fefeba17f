package spectral

import (
	"math"
	"testing"

	"github.com/RyanBlaney/sonido-pulido/algorithms/common"
	"github.com/RyanBlaney/sonido-pulido/algorithms/windowing"
)

const testRate = 44100

func tone(freq float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/testRate)
	}
	return out
}

func noise(seed uint64, n int) []float64 {
	r := common.NewRand(seed)
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.3 * r.Bipolar()
	}
	return out
}

func TestSTFTFrameCount(t *testing.T) {
	stft := NewSTFT()
	signal := tone(1000, 10000)

	res, err := stft.ComputeWithWindow(signal, 1024, 512, testRate, windowing.NewHann(1024, false))
	if err != nil {
		t.Fatalf("ComputeWithWindow: %v", err)
	}

	wantFrames := (10000-1024)/512 + 1
	if res.TimeFrames != wantFrames || len(res.Magnitude) != wantFrames {
		t.Errorf("frames = %d, want %d", res.TimeFrames, wantFrames)
	}
	if res.FreqBins != 513 {
		t.Errorf("bins = %d, want 513", res.FreqBins)
	}
}

func TestSTFTRejectsShortSignal(t *testing.T) {
	if _, err := NewSTFT().ComputeWithWindow(make([]float64, 100), 1024, 512, testRate, nil); err == nil {
		t.Error("expected error for signal shorter than a window")
	}
}

func TestToneDescriptors(t *testing.T) {
	res, err := NewSTFT().ComputeWithWindow(tone(1000, testRate), 4096, 2048, testRate, windowing.NewHann(4096, false))
	if err != nil {
		t.Fatalf("ComputeWithWindow: %v", err)
	}

	centroid := common.Mean(NewSpectralCentroid(testRate).ComputeFrames(res.Magnitude))
	if math.Abs(centroid-1000) > 30 {
		t.Errorf("centroid = %v, want ~1000", centroid)
	}

	rolloff := common.Mean(NewSpectralRolloff(testRate).ComputeFrames(res.Magnitude, DefaultRolloffFraction))
	if math.Abs(rolloff-1000) > 30 {
		t.Errorf("rolloff = %v, want ~1000", rolloff)
	}

	flatness := common.Mean(NewSpectralFlatness().ComputeFrames(res.Magnitude))
	if flatness > 0.05 {
		t.Errorf("tone flatness = %v, want near 0", flatness)
	}
}

func TestNoiseIsFlatterThanTone(t *testing.T) {
	sf := NewSpectralFlatness()
	fft := NewFFT()

	toneFlat := sf.Compute(fft.Magnitude(tone(1000, 4096)))
	noiseFlat := sf.Compute(fft.Magnitude(noise(1, 4096)))
	if noiseFlat <= toneFlat || noiseFlat < 0.3 {
		t.Errorf("noise flatness %v, tone flatness %v", noiseFlat, toneFlat)
	}
	if sf.Compute(make([]float64, 64)) != 0 {
		t.Error("silent spectrum should have zero flatness")
	}
}

func TestSpectralFlux(t *testing.T) {
	steady := [][]float64{{1, 2, 3}, {1, 2, 3}, {1, 2, 3}}
	for _, f := range NewSpectralFlux().Compute(steady) {
		if f != 0 {
			t.Fatalf("steady spectrum flux = %v", f)
		}
	}

	changing := [][]float64{{0, 0}, {3, 4}}
	got := NewSpectralFlux().Compute(changing)
	if len(got) != 1 || math.Abs(got[0]-math.Sqrt(12.5)) > 1e-12 {
		t.Errorf("flux = %v", got)
	}
}

func TestBandAnalyzer(t *testing.T) {
	tests := []struct {
		name string
		freq float64
		band int
	}{
		{"sub bass", 40, 0},
		{"bass", 120, 1},
		{"low mid", 350, 2},
		{"mid", 1000, 3},
		{"high mid", 4000, 4},
		{"high", 10000, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balance, ok := NewBandAnalyzer(testRate).Compute(tone(tt.freq, testRate))
			if !ok {
				t.Fatal("no energy measured")
			}
			idx, share := balance.Dominant()
			if idx != tt.band || share < 90 {
				t.Errorf("dominant band %d (%.1f%%), want %d", idx, share, tt.band)
			}

			sum := 0.0
			for _, v := range balance {
				sum += v
			}
			if math.Abs(sum-100) > 1e-9 {
				t.Errorf("shares sum to %v", sum)
			}
		})
	}
}

func TestBandAnalyzerSilenceAndShortInput(t *testing.T) {
	if _, ok := NewBandAnalyzer(testRate).Compute(make([]float64, 20000)); ok {
		t.Error("silence should report no energy")
	}
	if _, ok := NewBandAnalyzer(testRate).Compute(tone(1000, 1001)); !ok {
		t.Error("short tone should still be measured")
	}
}
