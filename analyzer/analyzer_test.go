package analyzer

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/RyanBlaney/sonido-pulido/algorithms/common"
	"github.com/RyanBlaney/sonido-pulido/logging"
	"github.com/RyanBlaney/sonido-pulido/pcm"
)

const testRate = 44100

func init() {
	logging.SetGlobalLogger(&logging.NoOpLogger{})
}

func newAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := New(DefaultOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

// music renders a stereo mix of a few partials plus noise, slightly
// different per channel, at roughly -18 dBFS RMS.
func music(seconds float64) *pcm.Buffer {
	n := int(seconds * testRate)
	buf := pcm.New(2, n, testRate, 24)
	r := common.NewRand(3)
	for i := range n {
		t := float64(i) / testRate
		beat := math.Exp(-8 * math.Mod(t, 0.5))
		base := 0.15*math.Sin(2*math.Pi*110*t)*beat +
			0.08*math.Sin(2*math.Pi*440*t) +
			0.05*math.Sin(2*math.Pi*1320*t) +
			0.02*r.Normal()*beat
		buf.Channels[0][i] = base + 0.01*r.Normal()
		buf.Channels[1][i] = base + 0.01*r.Normal()
	}
	return buf
}

func TestAnalyzeEmptyBuffer(t *testing.T) {
	a := newAnalyzer(t)

	for name, buf := range map[string]*pcm.Buffer{
		"nil":    nil,
		"frames": pcm.New(2, 0, testRate, 16),
	} {
		t.Run(name, func(t *testing.T) {
			r := a.Analyze(buf)
			if r.OverallScore != 0 || r.Passed {
				t.Errorf("score %v passed %v, want 0/false", r.OverallScore, r.Passed)
			}
			if len(r.Issues) == 0 {
				t.Error("empty buffer must carry an issue")
			}
		})
	}
}

func TestScoreBounds(t *testing.T) {
	a := newAnalyzer(t)

	clipped := pcm.New(2, testRate, testRate, 16)
	for ch := range clipped.Channels {
		for i := range clipped.Channels[ch] {
			if (i/50)%2 == 0 {
				clipped.Channels[ch][i] = 1
			} else {
				clipped.Channels[ch][i] = -1
			}
		}
	}

	tests := map[string]*pcm.Buffer{
		"silence": pcm.New(2, 2*testRate, testRate, 16),
		"clipped": clipped,
		"music":   music(3),
		"tiny":    pcm.New(1, 10, testRate, 16),
	}

	for name, buf := range tests {
		t.Run(name, func(t *testing.T) {
			r := a.Analyze(buf)
			if r.OverallScore < 0 || r.OverallScore > 100 {
				t.Errorf("score %v out of range", r.OverallScore)
			}
			if r.Passed != (r.OverallScore >= r.Threshold) {
				t.Error("passed disagrees with score")
			}
		})
	}
}

func TestAnalyzeMusicPasses(t *testing.T) {
	r := newAnalyzer(t).Analyze(music(4))

	if !r.Passed {
		t.Fatalf("plain music scored %.1f with issues %v", r.OverallScore, r.Issues)
	}
	if r.ClippingPct != 0 {
		t.Errorf("clipping %v", r.ClippingPct)
	}
	if r.SilencePct != 0 || len(r.Gaps) != 0 {
		t.Errorf("silence %v gaps %v", r.SilencePct, r.Gaps)
	}
	if r.PhaseCorrelation < 0.9 {
		t.Errorf("correlation %v", r.PhaseCorrelation)
	}
	if r.DynamicRangeDB != r.PeakDB-r.RMSDB {
		t.Error("dynamic range is not peak minus RMS")
	}
	if r.BandEnergies.Bass < r.BandEnergies.High {
		t.Errorf("band energies look inverted: %+v", r.BandEnergies)
	}
}

func TestAnalyzeClipping(t *testing.T) {
	buf := pcm.New(1, testRate, testRate, 16)
	for i := range buf.Channels[0] {
		buf.Channels[0][i] = math.Max(-1, math.Min(1, 2*math.Sin(2*math.Pi*100*float64(i)/testRate)))
	}

	r := newAnalyzer(t).Analyze(buf)
	if r.ClippingPct < 30 {
		t.Errorf("clipping %.1f%%, want a large share", r.ClippingPct)
	}
	if !hasIssue(r, "clipping") {
		t.Errorf("issues %v lack a clipping entry", r.Issues)
	}
}

func TestAnalyzeGaps(t *testing.T) {
	buf := music(6)
	start, end := int(2.0*testRate), int(3.5*testRate)
	for ch := range buf.Channels {
		for i := start; i < end; i++ {
			buf.Channels[ch][i] = 0
		}
	}

	r := newAnalyzer(t).Analyze(buf)
	if len(r.Gaps) != 1 {
		t.Fatalf("gaps = %+v, want one", r.Gaps)
	}
	if math.Abs(r.Gaps[0].Duration-1.5) > 0.05 || math.Abs(r.Gaps[0].Start-2.0) > 0.05 {
		t.Errorf("gap %+v, want start 2.0 duration 1.5", r.Gaps[0])
	}
	if math.Abs(r.SilencePct-25) > 1 {
		t.Errorf("silence %.2f%%, want 25%%", r.SilencePct)
	}
	if !hasIssue(r, "silent gap") {
		t.Errorf("issues %v lack a gap entry", r.Issues)
	}
}

func TestAnalyzeMonoWarns(t *testing.T) {
	stereo := music(2)
	mono := stereo.WithChannels(stereo.Channels[:1])

	r := newAnalyzer(t).Analyze(mono)
	if r.PhaseCorrelation != 1 || r.StereoWidthPct != 0 {
		t.Errorf("mono stereo metrics %v/%v, want neutral", r.PhaseCorrelation, r.StereoWidthPct)
	}
	if !hasWarning(r, "mono") {
		t.Errorf("warnings %v lack a mono entry", r.Warnings)
	}
}

func TestAnalyzeAntiPhase(t *testing.T) {
	buf := music(2)
	for i, v := range buf.Channels[0] {
		buf.Channels[1][i] = -v
	}

	r := newAnalyzer(t).Analyze(buf)
	if r.PhaseCorrelation > -0.99 {
		t.Errorf("correlation %v, want -1", r.PhaseCorrelation)
	}
	if r.StereoWidthPct < 99 {
		t.Errorf("width %v, want ~100", r.StereoWidthPct)
	}
	if !hasIssue(r, "phase") {
		t.Errorf("issues %v lack a phase entry", r.Issues)
	}
}

func TestAnalyzeShortBufferDegrades(t *testing.T) {
	buf := music(0.05) // shorter than one 4096-sample window
	r := newAnalyzer(t).Analyze(buf)

	if r.SpectralCentroidHz != 0 {
		t.Errorf("centroid %v, want defaulted 0", r.SpectralCentroidHz)
	}
	if !hasWarning(r, "spectral window") {
		t.Errorf("warnings %v lack a spectral entry", r.Warnings)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	a := newAnalyzer(t)
	buf := music(3)

	first := a.Analyze(buf)
	second := a.Analyze(buf)
	if !reflect.DeepEqual(first, second) {
		t.Error("two analyses of the same buffer differ")
	}
}

func TestVerboseDoesNotChangeReport(t *testing.T) {
	opts := DefaultOptions()
	opts.Verbose = true
	verbose, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	buf := music(2)
	if !reflect.DeepEqual(verbose.Analyze(buf), newAnalyzer(t).Analyze(buf)) {
		t.Error("verbose analysis changed the report")
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"threshold", func(o *Options) { o.Threshold = 140 }},
		{"silence threshold", func(o *Options) { o.SilenceThresholdDB = 3 }},
		{"window", func(o *Options) { o.WindowSize = 16 }},
		{"hop", func(o *Options) { o.HopSize = o.WindowSize * 2 }},
		{"near clip zero", func(o *Options) { o.NearClipLevel = 0 }},
		{"near clip above clip", func(o *Options) { o.NearClipLevel = 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			_, err := New(opts)
			var cfgErr *pcm.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Errorf("err = %v, want ConfigurationError", err)
			}
		})
	}
}

func TestReportListsMarshalAsArrays(t *testing.T) {
	tests := []struct {
		name string
		buf  *pcm.Buffer
	}{
		{"clean", music(2)},
		{"empty", pcm.New(2, 0, testRate, 24)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(newAnalyzer(t).Analyze(tt.buf))
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if !strings.Contains(string(data), `"gaps":[]`) {
				t.Errorf("gaps not an empty array in %s", data)
			}
			if strings.Contains(string(data), "null") {
				t.Errorf("null list in %s", data)
			}
		})
	}
}

func hasIssue(r *Report, fragment string) bool {
	for _, s := range r.Issues {
		if strings.Contains(s, fragment) {
			return true
		}
	}
	return false
}

func hasWarning(r *Report, fragment string) bool {
	for _, s := range r.Warnings {
		if strings.Contains(s, fragment) {
			return true
		}
	}
	return false
}
