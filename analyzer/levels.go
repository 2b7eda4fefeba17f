package analyzer

import (
	"math"

	"github.com/RyanBlaney/sonido-pulido/algorithms/common"
	"github.com/RyanBlaney/sonido-pulido/algorithms/temporal"
)

type levelMetrics struct {
	peakDB       float64
	rmsDB        float64
	lufs         float64
	clipPct      float64
	nearClipPct  float64
	crestFactor  float64
	dynamicRange float64
}

func (a *Analyzer) measureLevels(channels [][]float64, sampleRate int) levelMetrics {
	var (
		peak, sumSquares float64
		clipped, near    int
		total            int
	)

	for _, data := range channels {
		for _, v := range data {
			abs := math.Abs(v)
			peak = math.Max(peak, abs)
			sumSquares += v * v
			if abs >= a.opts.ClipLevel {
				clipped++
			}
			if abs >= a.opts.NearClipLevel {
				near++
			}
		}
		total += len(data)
	}

	m := levelMetrics{
		peakDB:      common.AmplitudeToDB(peak),
		rmsDB:       common.PowerToDB(sumSquares / float64(total)),
		lufs:        temporal.NewLoudnessMeter(sampleRate).Integrated(channels),
		clipPct:     100 * float64(clipped) / float64(total),
		nearClipPct: 100 * float64(near) / float64(total),
	}

	// Peak and RMS share the dB scale, so the difference is both the
	// dynamic range and the crest factor; silence has neither.
	if peak > 0 {
		m.dynamicRange = m.peakDB - m.rmsDB
		m.crestFactor = m.dynamicRange
	}

	return m
}

func (m levelMetrics) apply(r *Report) {
	r.PeakDB = m.peakDB
	r.RMSDB = m.rmsDB
	r.LoudnessLUFS = m.lufs
	r.ClippingPct = m.clipPct
	r.NearClippingPct = m.nearClipPct
	r.DynamicRangeDB = m.dynamicRange
	r.CrestFactorDB = m.crestFactor
}

type silenceMetrics struct {
	pct     float64
	longest float64
	gaps    []temporal.Gap
}

func (a *Analyzer) measureSilence(channels [][]float64, sampleRate int) silenceMetrics {
	res := temporal.NewSilenceDetection(a.opts.SilenceThresholdDB).Detect(channels, sampleRate)
	return silenceMetrics{
		pct:     res.Percentage,
		longest: res.Longest,
		gaps:    res.Gaps(a.opts.MinGapDuration),
	}
}

func (m silenceMetrics) apply(r *Report) {
	r.SilencePct = m.pct
	r.LongestSilenceS = m.longest
	if m.gaps != nil {
		r.Gaps = m.gaps
	}
}
