// Package analyzer scores a rendered buffer on objective level, silence,
// spectral and stereo metrics.
package analyzer

import (
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/RyanBlaney/sonido-pulido/algorithms/common"
	"github.com/RyanBlaney/sonido-pulido/algorithms/temporal"
	"github.com/RyanBlaney/sonido-pulido/logging"
	"github.com/RyanBlaney/sonido-pulido/pcm"
)

// DefaultThreshold is the score at or above which a buffer passes.
const DefaultThreshold = 70.0

// Options configures analysis.
type Options struct {
	// Threshold is the passing score (default: 70).
	Threshold float64 `yaml:"threshold" json:"threshold"`

	// SilenceThresholdDB is the frame level below which audio is silent (default: -60).
	SilenceThresholdDB float64 `yaml:"silence_threshold_db" json:"silence_threshold_db"`

	// MinGapDuration is the shortest silence listed as a gap, in seconds (default: 0.5).
	// Shorter silences still count toward the silence percentage.
	MinGapDuration float64 `yaml:"min_gap_duration" json:"min_gap_duration"`

	// ClipLevel and NearClipLevel are linear sample magnitudes.
	ClipLevel     float64 `yaml:"clip_level" json:"clip_level"`
	NearClipLevel float64 `yaml:"near_clip_level" json:"near_clip_level"`

	// WindowSize and HopSize drive the spectral descriptors.
	WindowSize int `yaml:"window_size" json:"window_size"`
	HopSize    int `yaml:"hop_size" json:"hop_size"`

	// Verbose logs every metric at info level. It never changes the report.
	Verbose bool `yaml:"verbose" json:"verbose"`

	Targets Targets `yaml:"targets" json:"targets"`
}

// DefaultOptions returns the standard analysis settings.
func DefaultOptions() Options {
	return Options{
		Threshold:          DefaultThreshold,
		SilenceThresholdDB: temporal.DefaultSilenceThresholdDB,
		MinGapDuration:     0.5,
		ClipLevel:          0.99,
		NearClipLevel:      0.95,
		WindowSize:         4096,
		HopSize:            2048,
		Targets:            DefaultTargets(),
	}
}

// Validate checks the options.
func (o Options) Validate() error {
	if err := pcm.CheckRange("threshold", o.Threshold, 0, 100); err != nil {
		return err
	}
	if err := pcm.CheckRange("silence_threshold_db", o.SilenceThresholdDB, -120, 0); err != nil {
		return err
	}
	if err := pcm.CheckRange("min_gap_duration", o.MinGapDuration, 0, 60); err != nil {
		return err
	}
	if err := pcm.CheckRange("clip_level", o.ClipLevel, 0.5, 1); err != nil {
		return err
	}
	if err := pcm.CheckRange("near_clip_level", o.NearClipLevel, 0.5, o.ClipLevel); err != nil {
		return err
	}
	if o.WindowSize < 64 || o.HopSize <= 0 || o.HopSize > o.WindowSize {
		return &pcm.ConfigurationError{
			Field:  "window_size",
			Value:  fmt.Sprintf("%d/%d", o.WindowSize, o.HopSize),
			Reason: "window must be at least 64 and hop within (0, window]",
		}
	}
	return nil
}

// Analyzer computes quality reports. It holds no per-buffer state and is
// safe for concurrent use.
type Analyzer struct {
	opts   Options
	logger logging.Logger
}

// New creates an analyzer. Invalid options are reported as a
// *pcm.ConfigurationError.
func New(opts Options) (*Analyzer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Analyzer{
		opts:   opts,
		logger: logging.WithFields(logging.Fields{"component": "quality_analyzer"}),
	}, nil
}

// Options returns the analyzer's settings.
func (a *Analyzer) Options() Options {
	return a.opts
}

// Analyze measures buf and scores it. It never fails: metrics that cannot be
// computed fall back to neutral values and are listed as warnings.
func (a *Analyzer) Analyze(buf *pcm.Buffer) *Report {
	logger := a.logger.WithFields(logging.Fields{"function": "Analyze"})
	started := time.Now()

	report := &Report{
		Threshold: a.opts.Threshold,
		Gaps:      []temporal.Gap{},
		Warnings:  []string{},
	}

	if buf == nil || buf.Empty() || buf.Validate() != nil {
		report.PeakDB = common.DBFloor
		report.RMSDB = common.DBFloor
		report.LoudnessLUFS = temporal.MinLoudness
		report.Issues = []string{"empty or malformed buffer: nothing to analyze"}
		if buf != nil {
			report.SampleRate = buf.SampleRate
			report.Channels = buf.NumChannels()
		}
		logger.Warn("Empty buffer analyzed")
		return report
	}

	report.Duration = buf.Seconds()
	report.SampleRate = buf.SampleRate
	report.Channels = buf.NumChannels()

	// Metric groups read the same buffer and write disjoint results.
	var (
		g        errgroup.Group
		lv       levelMetrics
		sil      silenceMetrics
		spectrum spectralMetrics
		bands    bandMetrics
		stereo   stereoMetrics
		channel  = buf.Channels
	)

	g.Go(func() error {
		lv = a.measureLevels(channel, buf.SampleRate)
		return nil
	})
	g.Go(func() error {
		sil = a.measureSilence(channel, buf.SampleRate)
		return nil
	})
	g.Go(func() error {
		spectrum = a.measureSpectrum(buf.Mono(), buf.SampleRate)
		return nil
	})
	g.Go(func() error {
		bands = a.measureBands(buf.Mono(), buf.SampleRate)
		return nil
	})
	g.Go(func() error {
		stereo = a.measureStereo(channel)
		return nil
	})

	// Groups never fail; Wait is the join point.
	_ = g.Wait()

	lv.apply(report)
	sil.apply(report)
	spectrum.apply(report)
	bands.apply(report)
	stereo.apply(report)

	report.OverallScore, report.Issues = a.opts.Targets.score(report, spectrum.valid, bands.valid, stereo.valid)
	report.Passed = report.OverallScore >= a.opts.Threshold

	fields := logging.Fields{
		"score":      fmt.Sprintf("%.1f", report.OverallScore),
		"passed":     report.Passed,
		"issues":     len(report.Issues),
		"warnings":   len(report.Warnings),
		"elapsed_ms": time.Since(started).Milliseconds(),
	}
	if a.opts.Verbose {
		fields["peak_db"] = fmt.Sprintf("%.2f", report.PeakDB)
		fields["rms_db"] = fmt.Sprintf("%.2f", report.RMSDB)
		fields["lufs"] = fmt.Sprintf("%.2f", report.LoudnessLUFS)
		fields["silence_pct"] = fmt.Sprintf("%.2f", report.SilencePct)
		fields["centroid_hz"] = fmt.Sprintf("%.0f", report.SpectralCentroidHz)
		fields["width_pct"] = fmt.Sprintf("%.1f", report.StereoWidthPct)
		logger.Info("Quality analysis complete", fields)
		for _, issue := range report.Issues {
			logger.Info("Quality issue", logging.Fields{"issue": issue})
		}
	} else {
		logger.Debug("Quality analysis complete", fields)
	}

	return report
}
