package temporal

import (
	"math"
	"testing"
)

const testRate = 44100

// clicks renders decaying 200 Hz bursts at the given times.
func clicks(seconds float64, times []float64) []float64 {
	out := make([]float64, int(seconds*testRate))
	for _, at := range times {
		start := int(at * testRate)
		for i := 0; i < testRate/10 && start+i < len(out); i++ {
			t := float64(i) / testRate
			out[start+i] += 0.8 * math.Exp(-t*40) * math.Sin(2*math.Pi*200*t)
		}
	}
	return out
}

func toneWithHole(seconds, holeStart, holeDur float64) []float64 {
	out := make([]float64, int(seconds*testRate))
	for i := range out {
		t := float64(i) / testRate
		if t >= holeStart && t < holeStart+holeDur {
			continue
		}
		out[i] = 0.5 * math.Sin(2*math.Pi*220*t)
	}
	return out
}

func TestSilenceDetectionKnownGap(t *testing.T) {
	tests := []struct {
		name     string
		holeDur  float64
		minGap   float64
		wantGaps int
	}{
		{"long hole reported", 1.2, 0.5, 1},
		{"exact-ish hole reported", 0.6, 0.5, 1},
		{"short hole ignored", 0.3, 0.5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signal := toneWithHole(4, 1.5, tt.holeDur)
			res := NewSilenceDetection(DefaultSilenceThresholdDB).Detect([][]float64{signal}, testRate)

			gaps := res.Gaps(tt.minGap)
			if len(gaps) != tt.wantGaps {
				t.Fatalf("got %d gaps (%+v), want %d", len(gaps), gaps, tt.wantGaps)
			}
			if tt.wantGaps == 1 {
				if math.Abs(gaps[0].Duration-tt.holeDur) > 0.05 {
					t.Errorf("duration %v, want %v±0.05", gaps[0].Duration, tt.holeDur)
				}
				if math.Abs(gaps[0].Start-1.5) > 0.05 {
					t.Errorf("start %v, want 1.5", gaps[0].Start)
				}
			}

			// short or long, the hole counts toward total silence
			wantPct := 100 * tt.holeDur / 4
			if math.Abs(res.Percentage-wantPct) > 2 {
				t.Errorf("silence %.2f%%, want about %.2f%%", res.Percentage, wantPct)
			}
		})
	}
}

func TestSilenceDetectionStereoNeedsBothChannels(t *testing.T) {
	left := toneWithHole(2, 0.5, 1.0)
	right := toneWithHole(2, 5, 0) // never silent

	res := NewSilenceDetection(DefaultSilenceThresholdDB).Detect([][]float64{left, right}, testRate)
	if len(res.Runs) != 0 {
		t.Errorf("stereo with one live channel reported runs %+v", res.Runs)
	}
}

func TestSilenceDetectionAllSilent(t *testing.T) {
	res := NewSilenceDetection(DefaultSilenceThresholdDB).Detect([][]float64{make([]float64, testRate)}, testRate)
	if res.Percentage != 100 || len(res.Runs) != 1 || math.Abs(res.Longest-1) > 1e-9 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestGapSampleRange(t *testing.T) {
	g := Gap{Start: 0.5, Duration: 1}
	start, end := g.SampleRange(1000, 1200)
	if start != 500 || end != 1200 {
		t.Errorf("range = [%d, %d), want [500, 1200)", start, end)
	}
}

func TestOnsetDetection(t *testing.T) {
	times := []float64{0.2, 0.7, 1.2, 1.45, 2.0}
	onsets := NewOnsetDetection().DetectOnsets(clicks(2.5, times), testRate)

	if len(onsets) != len(times) {
		t.Fatalf("found %d onsets %v, want %d", len(onsets), onsets, len(times))
	}
	for i, at := range times {
		got := float64(onsets[i]) / testRate
		if math.Abs(got-at) > 0.015 {
			t.Errorf("onset %d at %.3fs, want %.3fs", i, got, at)
		}
	}
}

func TestOnsetDetectionSilence(t *testing.T) {
	if onsets := NewOnsetDetection().DetectOnsets(make([]float64, testRate), testRate); len(onsets) != 0 {
		t.Errorf("silence produced onsets %v", onsets)
	}
}

func TestEnvelopeFollower(t *testing.T) {
	signal := make([]float64, testRate)
	for i := range testRate / 2 {
		signal[i] = 1
	}

	env := NewEnvelope().Follow(signal, testRate, 1, 50)
	if env[testRate/4] < 0.99 {
		t.Errorf("envelope did not reach the held level: %v", env[testRate/4])
	}
	if env[testRate-1] > 0.01 {
		t.Errorf("envelope did not release: %v", env[testRate-1])
	}
}

func TestEstimateTempo(t *testing.T) {
	var beats []float64
	for b := 0.0; b < 8; b += 0.5 { // 120 BPM
		beats = append(beats, b+0.1)
	}

	bpm, ok := NewTempoEstimation().EstimateTempo(clicks(8.5, beats), testRate)
	if !ok {
		t.Fatal("no tempo estimated")
	}
	if math.Abs(bpm-120) > 2 {
		t.Errorf("tempo = %v, want 120", bpm)
	}

	if _, ok := NewTempoEstimation().EstimateTempo(make([]float64, testRate), testRate); ok {
		t.Error("silence should not yield a tempo")
	}
}

func TestComputeRMS(t *testing.T) {
	env := NewEnvelope().ComputeRMS([]float64{1, -1, 1, -1, 0, 0, 0, 0}, 4, 4)
	if len(env) != 2 || env[0] != 1 || env[1] != 0 {
		t.Errorf("RMS envelope = %v", env)
	}
}

func TestLoudnessMeterReferenceTone(t *testing.T) {
	// At 997 Hz the K-weighting gain cancels the -0.691 offset, so a stereo
	// sine at -20 dBFS RMS per channel reads -20 + 3.01 LUFS.
	amp := math.Pow(10, -20.0/20) * math.Sqrt2
	n := 5 * testRate
	ch := make([]float64, n)
	for i := range ch {
		ch[i] = amp * math.Sin(2*math.Pi*997*float64(i)/testRate)
	}

	got := NewLoudnessMeter(testRate).Integrated([][]float64{ch, ch})
	want := -20 + 3.0103
	if math.Abs(got-want) > 0.3 {
		t.Errorf("loudness = %.2f LUFS, want about %.2f", got, want)
	}

	mono := NewLoudnessMeter(testRate).Integrated([][]float64{ch})
	if math.Abs((got-mono)-3.0103) > 0.01 {
		t.Errorf("stereo/mono difference = %.3f LU, want 3.01", got-mono)
	}
}

func TestLoudnessMeterSilenceAndGating(t *testing.T) {
	m := NewLoudnessMeter(testRate)
	if got := m.Integrated([][]float64{make([]float64, testRate)}); got != MinLoudness {
		t.Errorf("silence = %v, want %v", got, MinLoudness)
	}

	// Appending long silence must not drag the gated loudness down.
	tone := make([]float64, 2*testRate)
	for i := range tone {
		tone[i] = 0.1 * math.Sin(2*math.Pi*1000*float64(i)/testRate)
	}
	padded := append(append([]float64{}, tone...), make([]float64, 6*testRate)...)

	a := m.Integrated([][]float64{tone})
	b := m.Integrated([][]float64{padded})
	if math.Abs(a-b) > 0.5 {
		t.Errorf("silence shifted gated loudness from %.2f to %.2f", a, b)
	}
}
