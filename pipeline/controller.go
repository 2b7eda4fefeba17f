// Package pipeline coordinates a compile: generate, score and regenerate,
// then repair, humanize and master the accepted buffer and score it again.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/RyanBlaney/sonido-pulido/analyzer"
	"github.com/RyanBlaney/sonido-pulido/config"
	"github.com/RyanBlaney/sonido-pulido/humanize"
	"github.com/RyanBlaney/sonido-pulido/logging"
	"github.com/RyanBlaney/sonido-pulido/mastering"
	"github.com/RyanBlaney/sonido-pulido/pcm"
	"github.com/RyanBlaney/sonido-pulido/silence"
)

// SynthParams are passed to the synthesizer on every attempt. Attempt 0 is
// the first render; later attempts carry a new seed and more variation.
type SynthParams struct {
	Attempt   int
	Seed      uint64
	Variation float64
	Genre     string
	Tempo     float64
}

// Synthesizer renders the raw buffer of a composition. Every call for one
// job must return buffers of the same channel count and sample rate.
type Synthesizer interface {
	Generate(ctx context.Context, params SynthParams) (*pcm.Buffer, error)
}

// SynthesizerFunc adapts a function to Synthesizer.
type SynthesizerFunc func(ctx context.Context, params SynthParams) (*pcm.Buffer, error)

func (f SynthesizerFunc) Generate(ctx context.Context, params SynthParams) (*pcm.Buffer, error) {
	return f(ctx, params)
}

// Job names one compile. Zero fields fall back to the configuration.
type Job struct {
	Name  string
	Genre string
	Tempo float64
	Seed  uint64
}

// StageResult records one stage run.
type StageResult struct {
	Name        string
	Diagnostics Diagnostics
	Elapsed     time.Duration
}

// Result is the outcome of a compile.
type Result struct {
	ID     uuid.UUID
	Job    Job
	Buffer *pcm.Buffer

	// Report scores the finished buffer. Baseline scores the accepted raw
	// buffer and is nil when QA is disabled.
	Report   *analyzer.Report
	Baseline *analyzer.Report

	// Attempts counts renders; Regenerations counts renders after the first.
	Attempts      int
	Regenerations int

	Stages []StageResult
	Trace  []State
}

// Controller runs compiles. It is stateless between runs.
type Controller struct {
	cfg      *config.Config
	synth    Synthesizer
	analyzer *analyzer.Analyzer
	logger   logging.Logger
}

// NewController validates cfg and creates a controller. Invalid
// configuration is reported as a *pcm.ConfigurationError before anything is
// rendered.
func NewController(cfg *config.Config, synth Synthesizer) (*Controller, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if synth == nil {
		return nil, errors.New("pipeline: nil synthesizer")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a, err := analyzer.New(cfg.Analyzer)
	if err != nil {
		return nil, err
	}

	return &Controller{
		cfg:      cfg,
		synth:    synth,
		analyzer: a,
		logger:   logging.WithFields(logging.Fields{"component": "pipeline_controller"}),
	}, nil
}

// Run compiles one job. Stage order is fixed; disabled stages pass the
// buffer through. A stage that changes the buffer shape aborts the run with
// an error wrapping pcm.ErrShapeMismatch.
func (c *Controller) Run(ctx context.Context, job Job) (*Result, error) {
	cfg := c.resolve(job)
	result := &Result{ID: uuid.New(), Job: job}
	ctx = logging.ContextWithFields(ctx, logging.Fields{"compile_id": result.ID.String()})

	logger := c.logger.WithContext(ctx).WithFields(logging.Fields{
		"function": "Run",
		"job":      job.Name,
	})
	logger.Info("Compile started", logging.Fields{
		"genre": cfg.Genre,
		"tempo": cfg.Humanize.Tempo,
		"seed":  cfg.Seed,
	})

	params := SynthParams{Seed: cfg.Seed, Genre: cfg.Genre, Tempo: cfg.Humanize.Tempo}
	buf, err := c.generate(ctx, cfg, params, result, logger)
	if err != nil {
		return nil, err
	}

	stages, err := buildStages(cfg, c.analyzer)
	if err != nil {
		return nil, err
	}

	if buf, err = c.runStages(ctx, stages, buf, result, logger); err != nil {
		return nil, err
	}

	result.Trace = append(result.Trace, StateFinalAnalyze)
	result.Buffer = buf
	result.Report = c.analyzer.Analyze(buf)
	result.Trace = append(result.Trace, StateDone)

	logger.Info("Compile complete", logging.Fields{
		"score":         fmt.Sprintf("%.1f", result.Report.OverallScore),
		"passed":        result.Report.Passed,
		"attempts":      result.Attempts,
		"regenerations": result.Regenerations,
	})
	return result, nil
}

// runStages passes buf through stages in order and checks that every stage
// keeps its shape.
func (c *Controller) runStages(ctx context.Context, stages []Stage, buf *pcm.Buffer, result *Result, logger logging.Logger) (*pcm.Buffer, error) {
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result.Trace = append(result.Trace, stageStates[stage.Name()])

		started := time.Now()
		out, diag, err := stage.Process(ctx, buf)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", stage.Name(), err)
		}
		if err := pcm.SameShape(buf, out); err != nil {
			return nil, fmt.Errorf("stage %s: %w", stage.Name(), err)
		}

		result.Stages = append(result.Stages, StageResult{
			Name:        stage.Name(),
			Diagnostics: diag,
			Elapsed:     time.Since(started),
		})
		logger.Debug("Stage complete", logging.Fields{
			"stage":      stage.Name(),
			"elapsed_ms": time.Since(started).Milliseconds(),
		})
		buf = out
	}
	return buf, nil
}

// generate renders the raw buffer. With QA enabled it scores every render
// and regenerates while the score is below threshold and budget remains,
// keeping the best render seen.
func (c *Controller) generate(ctx context.Context, cfg *config.Config, params SynthParams, result *Result, logger logging.Logger) (*pcm.Buffer, error) {
	var first *pcm.Buffer
	render := func(p SynthParams) (*pcm.Buffer, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		buf, err := c.synth.Generate(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("generate attempt %d: %w", p.Attempt, err)
		}
		if err := buf.Validate(); err != nil {
			return nil, fmt.Errorf("generate attempt %d: %w", p.Attempt, err)
		}
		if first == nil {
			first = buf
		} else if err := pcm.SameShape(first, buf); err != nil {
			return nil, fmt.Errorf("regenerate attempt %d: %w", p.Attempt, err)
		}
		result.Attempts++
		return buf, nil
	}

	result.Trace = append(result.Trace, StateGenerate)
	buf, err := render(params)
	if err != nil {
		return nil, err
	}
	if !cfg.EnableQA {
		return buf, nil
	}

	acc := attempt{}
	for {
		result.Trace = append(result.Trace, StateAnalyze)
		report := c.analyzer.Analyze(buf)
		acc = acc.offer(buf, report)

		if report.Passed || acc.regenerations >= cfg.MaxRegenerationAttempts {
			break
		}

		logger.Debug("Render below threshold, regenerating", logging.Fields{
			"attempt":    params.Attempt,
			"score":      fmt.Sprintf("%.1f", report.OverallScore),
			"best_score": fmt.Sprintf("%.1f", acc.bestScore()),
		})

		result.Trace = append(result.Trace, StateRegenerate)
		acc.regenerations++
		params = params.next()
		if buf, err = render(params); err != nil {
			return nil, err
		}
	}

	if !acc.bestReport.Passed {
		logger.Warn("Regeneration budget exhausted, continuing with best render", logging.Fields{
			"best_score": fmt.Sprintf("%.1f", acc.bestScore()),
		})
	}

	result.Regenerations = acc.regenerations
	result.Baseline = acc.bestReport
	return acc.best, nil
}

// resolve applies the job's overrides to a copy of the configuration.
func (c *Controller) resolve(job Job) *config.Config {
	cfg := *c.cfg
	if job.Genre != "" {
		cfg.Genre = job.Genre
	}
	if job.Seed != 0 {
		cfg.Seed = job.Seed
	}
	if job.Tempo > 0 {
		cfg.Humanize.Tempo = job.Tempo
	} else {
		cfg.Humanize.Tempo = cfg.Tempo()
	}
	return &cfg
}

// buildStages returns repair, humanize and master in order, each replaced
// by a passthrough when disabled.
func buildStages(cfg *config.Config, a *analyzer.Analyzer) ([]Stage, error) {
	stages := make([]Stage, 0, 3)

	if cfg.EnableRepair {
		filler, err := silence.New(cfg.Silence, cfg.Seed)
		if err != nil {
			return nil, err
		}
		stages = append(stages, &repairStage{analyzer: a, filler: filler, bounds: cfg.Repair})
	} else {
		stages = append(stages, Passthrough(StageRepair))
	}

	if cfg.EnableHumanization {
		stages = append(stages, &humanizeStage{
			humanizer: humanize.New(),
			params:    cfg.Humanize,
			seed:      cfg.Seed + 1,
		})
	} else {
		stages = append(stages, Passthrough(StageHumanize))
	}

	if cfg.EnableMastering {
		opts := cfg.MasteringOptions()
		if opts.DitherSeed == 0 {
			opts.DitherSeed = cfg.Seed + 2
		}
		chain, err := mastering.New(opts)
		if err != nil {
			return nil, err
		}
		stages = append(stages, &masterStage{chain: chain})
	} else {
		stages = append(stages, Passthrough(StageMaster))
	}

	return stages, nil
}
