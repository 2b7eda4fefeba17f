package analyzer

import (
	"github.com/RyanBlaney/sonido-pulido/algorithms/common"
)

type stereoMetrics struct {
	valid       bool
	widthPct    float64
	correlation float64
	warning     string
}

// measureStereo derives width from side versus mid energy and the phase
// correlation from the Pearson coefficient of the two channels.
func (a *Analyzer) measureStereo(channels [][]float64) stereoMetrics {
	if len(channels) != 2 {
		return stereoMetrics{
			correlation: 1,
			warning:     "mono buffer: stereo width and phase correlation not measured",
		}
	}

	left, right := channels[0], channels[1]
	var midEnergy, sideEnergy float64
	for i := range left {
		mid := (left[i] + right[i]) / 2
		side := (left[i] - right[i]) / 2
		midEnergy += mid * mid
		sideEnergy += side * side
	}

	if midEnergy+sideEnergy == 0 {
		return stereoMetrics{
			correlation: 1,
			warning:     "silent stereo buffer: stereo metrics defaulted",
		}
	}

	m := stereoMetrics{
		valid:    true,
		widthPct: 100 * sideEnergy / (midEnergy + sideEnergy),
	}

	// Identical channels correlate perfectly; Pearson needs variance in both.
	if sideEnergy == 0 {
		m.correlation = 1
	} else {
		m.correlation = common.Correlation(left, right)
	}

	return m
}

func (m stereoMetrics) apply(r *Report) {
	r.StereoWidthPct = m.widthPct
	r.PhaseCorrelation = m.correlation
	if m.warning != "" {
		r.Warnings = append(r.Warnings, m.warning)
	}
}
