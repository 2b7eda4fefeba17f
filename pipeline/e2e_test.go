package pipeline_test

import (
	"context"
	"math"
	"testing"

	"github.com/RyanBlaney/sonido-pulido/config"
	"github.com/RyanBlaney/sonido-pulido/mastering"
	"github.com/RyanBlaney/sonido-pulido/pipeline"
	"github.com/RyanBlaney/sonido-pulido/synth"
)

func TestCompileDemoPattern(t *testing.T) {
	if testing.Short() {
		t.Skip("full compile")
	}

	renderer, err := synth.New(synth.Demo(), 44100, 2)
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Genre = "pop"

	ctrl, err := pipeline.NewController(cfg, renderer)
	if err != nil {
		t.Fatal(err)
	}
	res, err := ctrl.Run(context.Background(), pipeline.Job{Name: "demo", Tempo: 90, Seed: 7})
	if err != nil {
		t.Fatal(err)
	}

	if got := res.Buffer.Seconds(); math.Abs(got-32.0/3) > 0.01 {
		t.Errorf("duration %.3fs, want 10.667s", got)
	}
	if res.Buffer.NumChannels() != 2 || res.Buffer.SampleRate != 44100 {
		t.Errorf("shape %d ch at %d Hz", res.Buffer.NumChannels(), res.Buffer.SampleRate)
	}
	if res.Baseline == nil {
		t.Fatal("no baseline with QA enabled")
	}

	t.Logf("baseline %.1f %v", res.Baseline.OverallScore, res.Baseline.Issues)
	t.Logf("final %.1f %v", res.Report.OverallScore, res.Report.Issues)

	if res.Report.OverallScore < res.Baseline.OverallScore-2 {
		t.Errorf("final score %.1f regressed from baseline %.1f", res.Report.OverallScore, res.Baseline.OverallScore)
	}
	if peak := res.Buffer.Peak(); peak > mastering.DefaultCeiling {
		t.Errorf("peak %.4f above ceiling", peak)
	}
	if lufs := res.Report.LoudnessLUFS; math.Abs(lufs-mastering.DefaultTargetLUFS) > 1 {
		t.Errorf("loudness %.2f LUFS", lufs)
	}
	if len(res.Report.Gaps) != 0 {
		t.Errorf("gaps left: %v", res.Report.Gaps)
	}
	if res.ID.String() == "" || res.Trace[len(res.Trace)-1] != pipeline.StateDone {
		t.Errorf("id %s trace %v", res.ID, res.Trace)
	}
}
