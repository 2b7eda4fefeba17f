package analyzer

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-pulido/algorithms/spectral"
)

// Targets are the acceptable ranges a buffer is scored against. Each metric
// outside its range costs points in proportion to the deviation, up to the
// category's cap.
type Targets struct {
	MaxClippingPct    float64 `yaml:"max_clipping_pct" json:"max_clipping_pct"`
	MaxSilencePct     float64 `yaml:"max_silence_pct" json:"max_silence_pct"`
	MaxGapSeconds     float64 `yaml:"max_gap_seconds" json:"max_gap_seconds"`
	MinDynamicRangeDB float64 `yaml:"min_dynamic_range_db" json:"min_dynamic_range_db"`
	MaxPeakDB         float64 `yaml:"max_peak_db" json:"max_peak_db"`
	MinLUFS           float64 `yaml:"min_lufs" json:"min_lufs"`
	MaxLUFS           float64 `yaml:"max_lufs" json:"max_lufs"`
	MinFlatness       float64 `yaml:"min_flatness" json:"min_flatness"`
	MinCentroidHz     float64 `yaml:"min_centroid_hz" json:"min_centroid_hz"`
	MaxCentroidHz     float64 `yaml:"max_centroid_hz" json:"max_centroid_hz"`
	MaxBandSharePct   float64 `yaml:"max_band_share_pct" json:"max_band_share_pct"`
	MinCorrelation    float64 `yaml:"min_correlation" json:"min_correlation"`
	MinWidthPct       float64 `yaml:"min_width_pct" json:"min_width_pct"`
}

// DefaultTargets returns ranges suited to finished stereo music.
func DefaultTargets() Targets {
	return Targets{
		MaxClippingPct:    0.001,
		MaxSilencePct:     5,
		MaxGapSeconds:     0.8,
		MinDynamicRangeDB: 10,
		MaxPeakDB:         -0.3,
		MinLUFS:           -23,
		MaxLUFS:           -8,
		MinFlatness:       0.05,
		MinCentroidHz:     300,
		MaxCentroidHz:     6000,
		MaxBandSharePct:   75,
		MinCorrelation:    0.3,
		MinWidthPct:       3,
	}
}

type penalty struct {
	points float64
	issue  string
}

// score returns the clamped overall score and one issue per deduction.
// Metrics flagged invalid were defaulted and are not scored.
func (t Targets) score(r *Report, spectrumValid, bandsValid, stereoValid bool) (float64, []string) {
	var penalties []penalty
	add := func(points, limit float64, format string, args ...any) {
		if points <= 0 {
			return
		}
		penalties = append(penalties, penalty{math.Min(points, limit), fmt.Sprintf(format, args...)})
	}

	// Level
	if r.ClippingPct > t.MaxClippingPct {
		add(10+20*r.ClippingPct, 40, "clipping: %.3f%% of samples at full scale", r.ClippingPct)
	}
	if r.PeakDB > t.MaxPeakDB {
		add((r.PeakDB-t.MaxPeakDB)*10, 15, "peak level %.2f dBFS leaves no headroom", r.PeakDB)
	}
	if r.DynamicRangeDB < t.MinDynamicRangeDB && r.PeakDB > -100 {
		add((t.MinDynamicRangeDB-r.DynamicRangeDB)*3, 20, "dynamic range %.1f dB is over-compressed", r.DynamicRangeDB)
	}
	if r.LoudnessLUFS < t.MinLUFS {
		add((t.MinLUFS-r.LoudnessLUFS)*1.5, 20, "loudness %.1f LUFS is too quiet", r.LoudnessLUFS)
	}
	if r.LoudnessLUFS > t.MaxLUFS {
		add((r.LoudnessLUFS-t.MaxLUFS)*3, 15, "loudness %.1f LUFS is too loud", r.LoudnessLUFS)
	}

	// Silence
	if r.SilencePct > t.MaxSilencePct {
		add((r.SilencePct-t.MaxSilencePct)*3, 30, "silence covers %.1f%% of the buffer", r.SilencePct)
	}
	if r.LongestSilenceS > t.MaxGapSeconds {
		add((r.LongestSilenceS-t.MaxGapSeconds)*20, 25, "silent gap of %.2fs", r.LongestSilenceS)
	}

	// Spectrum
	if spectrumValid {
		if r.SpectralFlatness < t.MinFlatness {
			add((t.MinFlatness-r.SpectralFlatness)*100, 5, "spectral flatness %.3f sounds sterile", r.SpectralFlatness)
		}
		if r.SpectralCentroidHz < t.MinCentroidHz {
			add((t.MinCentroidHz-r.SpectralCentroidHz)/30, 10, "spectral centroid %.0f Hz sounds muddy", r.SpectralCentroidHz)
		}
		if r.SpectralCentroidHz > t.MaxCentroidHz {
			add((r.SpectralCentroidHz-t.MaxCentroidHz)/300, 10, "spectral centroid %.0f Hz sounds harsh", r.SpectralCentroidHz)
		}
	}
	if bandsValid {
		idx, share := spectral.BandBalance{
			r.BandEnergies.SubBass, r.BandEnergies.Bass, r.BandEnergies.LowMid,
			r.BandEnergies.Mid, r.BandEnergies.HighMid, r.BandEnergies.High,
		}.Dominant()
		if share > t.MaxBandSharePct {
			add((share-t.MaxBandSharePct)/2, 10, "%s band holds %.0f%% of the energy", spectral.BalanceBands[idx].Name, share)
		}
	}

	// Stereo
	if stereoValid {
		if r.PhaseCorrelation < t.MinCorrelation {
			add((t.MinCorrelation-r.PhaseCorrelation)*40, 20, "phase correlation %.2f risks mono cancellation", r.PhaseCorrelation)
		}
		if r.StereoWidthPct < t.MinWidthPct {
			add(t.MinWidthPct-r.StereoWidthPct, 5, "stereo image is narrow (%.1f%% width)", r.StereoWidthPct)
		}
	}

	score := 100.0
	issues := make([]string, 0, len(penalties))
	for _, p := range penalties {
		score -= p.points
		issues = append(issues, p.issue)
	}

	return math.Max(0, math.Min(100, score)), issues
}
