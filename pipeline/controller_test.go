package pipeline

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/RyanBlaney/sonido-pulido/algorithms/common"
	"github.com/RyanBlaney/sonido-pulido/analyzer"
	"github.com/RyanBlaney/sonido-pulido/config"
	"github.com/RyanBlaney/sonido-pulido/logging"
	"github.com/RyanBlaney/sonido-pulido/pcm"
	"github.com/RyanBlaney/sonido-pulido/silence"
)

const testRate = 44100

func init() {
	logging.SetGlobalLogger(&logging.NoOpLogger{})
}

// music is a stereo beat with tonal partials and a little noise; it scores
// well above the default threshold.
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

// fixed returns a synthesizer that always renders buf and records the
// parameters it was called with.
func fixed(buf *pcm.Buffer, calls *[]SynthParams) Synthesizer {
	return SynthesizerFunc(func(_ context.Context, p SynthParams) (*pcm.Buffer, error) {
		*calls = append(*calls, p)
		return buf, nil
	})
}

func stagesOff() *config.Config {
	cfg := config.Default()
	cfg.EnableRepair = false
	cfg.EnableHumanization = false
	cfg.EnableMastering = false
	return cfg
}

func TestRegenerationExhausted(t *testing.T) {
	low := pcm.New(2, 2*testRate, testRate, 24)
	var calls []SynthParams

	ctrl, err := NewController(stagesOff(), fixed(low, &calls))
	if err != nil {
		t.Fatal(err)
	}
	res, err := ctrl.Run(context.Background(), Job{Name: "silent"})
	if err != nil {
		t.Fatal(err)
	}

	if res.Regenerations != config.DefaultMaxRegenerationAttempts {
		t.Errorf("regenerations = %d, want %d", res.Regenerations, config.DefaultMaxRegenerationAttempts)
	}
	if len(calls) != 1+config.DefaultMaxRegenerationAttempts || res.Attempts != len(calls) {
		t.Errorf("synthesizer called %d times, attempts %d", len(calls), res.Attempts)
	}
	if res.Buffer != low {
		t.Error("expected the fixed buffer back")
	}
	if res.Report.Passed {
		t.Errorf("passed with score %.1f", res.Report.OverallScore)
	}
	if res.Baseline == nil || res.Baseline.OverallScore != res.Report.OverallScore {
		t.Error("baseline should score the returned raw buffer")
	}
}

func TestRegenerationParams(t *testing.T) {
	var calls []SynthParams
	cfg := stagesOff()
	cfg.Genre = "house"

	ctrl, err := NewController(cfg, fixed(pcm.New(1, testRate, testRate, 16), &calls))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ctrl.Run(context.Background(), Job{Seed: 100}); err != nil {
		t.Fatal(err)
	}

	want := []SynthParams{
		{Attempt: 0, Seed: 100, Variation: 0, Genre: "house", Tempo: 125},
		{Attempt: 1, Seed: 100 + 7919, Variation: 0.15, Genre: "house", Tempo: 125},
		{Attempt: 2, Seed: 100 + 3*7919, Variation: 0.30, Genre: "house", Tempo: 125},
		{Attempt: 3, Seed: 100 + 6*7919, Variation: 0.45, Genre: "house", Tempo: 125},
	}
	if len(calls) != len(want) {
		t.Fatalf("%d calls, want %d", len(calls), len(want))
	}
	for i := range want {
		got := calls[i]
		if got.Attempt != want[i].Attempt || got.Seed != want[i].Seed || got.Genre != want[i].Genre || got.Tempo != want[i].Tempo {
			t.Errorf("call %d = %+v, want %+v", i, got, want[i])
		}
		if math.Abs(got.Variation-want[i].Variation) > 1e-9 {
			t.Errorf("call %d variation %v, want %v", i, got.Variation, want[i].Variation)
		}
	}
}

func TestPassingRenderIsNotRegenerated(t *testing.T) {
	var calls []SynthParams
	ctrl, err := NewController(stagesOff(), fixed(music(4), &calls))
	if err != nil {
		t.Fatal(err)
	}
	res, err := ctrl.Run(context.Background(), Job{})
	if err != nil {
		t.Fatal(err)
	}
	if len(calls) != 1 || res.Regenerations != 0 {
		t.Errorf("calls %d regenerations %d", len(calls), res.Regenerations)
	}
	if !res.Baseline.Passed {
		t.Errorf("baseline failed with %.1f: %v", res.Baseline.OverallScore, res.Baseline.Issues)
	}
}

func TestZeroBudget(t *testing.T) {
	var calls []SynthParams
	cfg := stagesOff()
	cfg.MaxRegenerationAttempts = 0

	ctrl, err := NewController(cfg, fixed(pcm.New(2, testRate, testRate, 16), &calls))
	if err != nil {
		t.Fatal(err)
	}
	res, err := ctrl.Run(context.Background(), Job{})
	if err != nil {
		t.Fatal(err)
	}
	if len(calls) != 1 || res.Regenerations != 0 {
		t.Errorf("calls %d regenerations %d", len(calls), res.Regenerations)
	}
}

func TestBestRenderKept(t *testing.T) {
	bufs := []*pcm.Buffer{
		pcm.New(1, 10, testRate, 16),
		pcm.New(1, 10, testRate, 16),
		pcm.New(1, 10, testRate, 16),
		pcm.New(1, 10, testRate, 16),
	}
	scores := []float64{40, 30, 55, 55}

	var acc attempt
	var history []float64
	for i, buf := range bufs {
		acc = acc.offer(buf, &analyzer.Report{OverallScore: scores[i]})
		history = append(history, acc.bestScore())
	}

	if acc.best != bufs[2] {
		t.Error("an equal score must not replace the best render")
	}
	if want := []float64{40, 40, 55, 55}; !reflect.DeepEqual(history, want) {
		t.Errorf("best scores %v, want %v", history, want)
	}
}

func TestQADisabled(t *testing.T) {
	var calls []SynthParams
	cfg := stagesOff()
	cfg.EnableQA = false
	raw := pcm.New(2, testRate, testRate, 16)

	ctrl, err := NewController(cfg, fixed(raw, &calls))
	if err != nil {
		t.Fatal(err)
	}
	res, err := ctrl.Run(context.Background(), Job{})
	if err != nil {
		t.Fatal(err)
	}

	if len(calls) != 1 || res.Baseline != nil {
		t.Errorf("calls %d baseline %v", len(calls), res.Baseline)
	}
	if res.Buffer != raw || res.Report == nil {
		t.Error("disabled stages should hand the raw buffer to the final analysis")
	}

	want := []State{StateGenerate, StateRepair, StateHumanize, StateMaster, StateFinalAnalyze, StateDone}
	if !reflect.DeepEqual(res.Trace, want) {
		t.Errorf("trace %v, want %v", res.Trace, want)
	}
	for _, s := range res.Stages {
		if s.Diagnostics["skipped"] != true {
			t.Errorf("stage %s not skipped", s.Name)
		}
	}
}

func TestTraceWithRegeneration(t *testing.T) {
	var calls []SynthParams
	cfg := stagesOff()
	cfg.MaxRegenerationAttempts = 1

	ctrl, err := NewController(cfg, fixed(pcm.New(2, testRate, testRate, 16), &calls))
	if err != nil {
		t.Fatal(err)
	}
	res, err := ctrl.Run(context.Background(), Job{})
	if err != nil {
		t.Fatal(err)
	}

	want := []State{
		StateGenerate, StateAnalyze, StateRegenerate, StateAnalyze,
		StateRepair, StateHumanize, StateMaster, StateFinalAnalyze, StateDone,
	}
	if !reflect.DeepEqual(res.Trace, want) {
		t.Errorf("trace %v, want %v", res.Trace, want)
	}
}

func TestInvalidConfig(t *testing.T) {
	var calls []SynthParams
	cfg := config.Default()
	cfg.Humanize.PitchWobble = 2

	_, err := NewController(cfg, fixed(music(1), &calls))
	var cfgErr *pcm.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("err = %v, want ConfigurationError", err)
	}
	if len(calls) != 0 {
		t.Error("synthesizer called despite invalid configuration")
	}

	if _, err := NewController(config.Default(), nil); err == nil {
		t.Error("nil synthesizer accepted")
	}
}

func TestRegeneratedShapeMismatch(t *testing.T) {
	n := 0
	synth := SynthesizerFunc(func(_ context.Context, p SynthParams) (*pcm.Buffer, error) {
		n++
		if p.Attempt == 0 {
			return pcm.New(2, testRate, testRate, 16), nil
		}
		return pcm.New(1, testRate, testRate, 16), nil
	})

	ctrl, err := NewController(stagesOff(), synth)
	if err != nil {
		t.Fatal(err)
	}
	_, err = ctrl.Run(context.Background(), Job{})
	if !errors.Is(err, pcm.ErrShapeMismatch) {
		t.Fatalf("err = %v, want ErrShapeMismatch", err)
	}
	if n != 2 {
		t.Errorf("synthesizer called %d times", n)
	}
}

type monoStage struct{}

func (monoStage) Name() string { return "downmix" }

func (monoStage) Process(_ context.Context, buf *pcm.Buffer) (*pcm.Buffer, Diagnostics, error) {
	out, err := pcm.FromChannels([][]float64{buf.Mono()}, buf.SampleRate, buf.BitDepth)
	return out, nil, err
}

func TestStageShapeMismatch(t *testing.T) {
	ctrl, err := NewController(stagesOff(), fixed(music(1), new([]SynthParams)))
	if err != nil {
		t.Fatal(err)
	}

	stages := []Stage{Passthrough(StageRepair), monoStage{}, Passthrough(StageMaster)}
	_, err = ctrl.runStages(context.Background(), stages, music(1), &Result{}, ctrl.logger)
	if !errors.Is(err, pcm.ErrShapeMismatch) {
		t.Fatalf("err = %v, want ErrShapeMismatch", err)
	}
	if err != nil && !strings.HasPrefix(err.Error(), "stage downmix") {
		t.Errorf("error %q does not name the stage", err)
	}
}

func TestSynthesizerError(t *testing.T) {
	boom := errors.New("soundfont missing")
	synth := SynthesizerFunc(func(context.Context, SynthParams) (*pcm.Buffer, error) {
		return nil, boom
	})

	ctrl, err := NewController(config.Default(), synth)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ctrl.Run(context.Background(), Job{}); !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls []SynthParams
	ctrl, err := NewController(config.Default(), fixed(music(1), &calls))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ctrl.Run(ctx, Job{}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if len(calls) != 0 {
		t.Error("rendered after cancellation")
	}
}

func TestRepairStage(t *testing.T) {
	buf := music(6)
	from, to := 2*testRate, int(3.5*testRate)
	for _, data := range buf.Channels {
		clear(data[from:to])
	}

	cfg := config.Default()
	a, err := analyzer.New(cfg.Analyzer)
	if err != nil {
		t.Fatal(err)
	}
	filler, err := silence.New(cfg.Silence, 1)
	if err != nil {
		t.Fatal(err)
	}
	stage := &repairStage{analyzer: a, filler: filler, bounds: cfg.Repair}

	out, diag, err := stage.Process(context.Background(), buf)
	if err != nil {
		t.Fatal(err)
	}
	if err := pcm.SameShape(buf, out); err != nil {
		t.Fatal(err)
	}
	if out.Frames() != buf.Frames() {
		t.Errorf("frames %d, want %d", out.Frames(), buf.Frames())
	}

	if diag["ambience"] != true || diag["gaps"] != 1 {
		t.Errorf("diagnostics %v", diag)
	}
	if gaps := silence.DetectGaps(out, cfg.Silence.MinGapDuration, cfg.Silence.ThresholdDB); len(gaps) != 0 {
		t.Errorf("gaps left after repair: %v", gaps)
	}
	if r := a.Analyze(out); r.SilencePct > cfg.Repair.SilenceBoundPct {
		t.Errorf("silence %.1f%% after repair", r.SilencePct)
	}
}
