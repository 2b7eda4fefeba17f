package pipeline

import (
	"context"
	"fmt"

	"github.com/RyanBlaney/sonido-pulido/analyzer"
	"github.com/RyanBlaney/sonido-pulido/config"
	"github.com/RyanBlaney/sonido-pulido/humanize"
	"github.com/RyanBlaney/sonido-pulido/mastering"
	"github.com/RyanBlaney/sonido-pulido/pcm"
	"github.com/RyanBlaney/sonido-pulido/silence"
)

// Diagnostics are the values a stage reports about one run.
type Diagnostics map[string]any

// Stage is one buffer-in, buffer-out step of the pipeline. A stage must
// keep the channel count and sample rate of its input.
type Stage interface {
	Name() string
	Process(ctx context.Context, buf *pcm.Buffer) (*pcm.Buffer, Diagnostics, error)
}

// Stage names in pipeline order.
const (
	StageRepair   = "repair"
	StageHumanize = "humanize"
	StageMaster   = "master"
)

type passthrough struct {
	name string
}

// Passthrough returns a stage that hands its input on unchanged. Disabled
// stages are replaced by one.
func Passthrough(name string) Stage {
	return passthrough{name: name}
}

func (p passthrough) Name() string { return p.name }

func (p passthrough) Process(_ context.Context, buf *pcm.Buffer) (*pcm.Buffer, Diagnostics, error) {
	return buf, Diagnostics{"skipped": true}, nil
}

// repairStage masks excessive silence, fills gaps and tames an excessive
// dynamic range.
type repairStage struct {
	analyzer *analyzer.Analyzer
	filler   *silence.Filler
	bounds   config.RepairConfig
}

func (s *repairStage) Name() string { return StageRepair }

func (s *repairStage) Process(_ context.Context, buf *pcm.Buffer) (*pcm.Buffer, Diagnostics, error) {
	report := s.analyzer.Analyze(buf)
	opts := s.filler.Options()

	// Gaps are found before ambience raises the noise floor.
	gaps := s.filler.DetectGaps(buf)
	diag := Diagnostics{
		"silence_pct":      report.SilencePct,
		"dynamic_range_db": report.DynamicRangeDB,
		"gaps":             len(gaps),
		"ambience":         false,
		"compressed":       false,
	}

	out := buf
	var err error
	if report.SilencePct > s.bounds.SilenceBoundPct {
		out, err = s.filler.AddContinuousAmbience(out, opts.AmbienceType, opts.AmbienceVolume)
		if err != nil {
			return nil, nil, fmt.Errorf("add ambience: %w", err)
		}
		diag["ambience"] = true
	}

	if len(gaps) > 0 {
		out, err = s.filler.FillGaps(out, gaps, opts.FillStyle, opts.FillVolume)
		if err != nil {
			return nil, nil, fmt.Errorf("fill gaps: %w", err)
		}
	}

	if report.DynamicRangeDB > s.bounds.DynamicRangeBoundDB {
		comp := mastering.NewCompressor(out.SampleRate, mastering.LightCompression)
		out = out.WithChannels(comp.Process(out.Channels))
		diag["compressed"] = true
	}

	return out, diag, nil
}

type humanizeStage struct {
	humanizer *humanize.Humanizer
	params    humanize.Params
	seed      uint64
}

func (s *humanizeStage) Name() string { return StageHumanize }

func (s *humanizeStage) Process(_ context.Context, buf *pcm.Buffer) (*pcm.Buffer, Diagnostics, error) {
	out, err := s.humanizer.Humanize(buf, s.params, s.seed)
	if err != nil {
		return nil, nil, err
	}
	return out, Diagnostics{"tempo": s.params.Tempo}, nil
}

type masterStage struct {
	chain *mastering.Chain
}

func (s *masterStage) Name() string { return StageMaster }

func (s *masterStage) Process(_ context.Context, buf *pcm.Buffer) (*pcm.Buffer, Diagnostics, error) {
	out, err := s.chain.Master(buf)
	if err != nil {
		return nil, nil, err
	}
	opts := s.chain.Options()
	return out, Diagnostics{
		"style":       string(opts.Style),
		"target_lufs": opts.TargetLUFS,
		"output_lufs": mastering.MeasureLoudness(out),
	}, nil
}
