package analyzer

import (
	"github.com/RyanBlaney/sonido-pulido/algorithms/spectral"
	"github.com/RyanBlaney/sonido-pulido/algorithms/temporal"
)

// BandEnergies is the share of in-band energy, in percent, per balance band.
type BandEnergies struct {
	SubBass float64 `json:"sub_bass"`
	Bass    float64 `json:"bass"`
	LowMid  float64 `json:"low_mid"`
	Mid     float64 `json:"mid"`
	HighMid float64 `json:"high_mid"`
	High    float64 `json:"high"`
}

func bandEnergiesFrom(b spectral.BandBalance) BandEnergies {
	return BandEnergies{
		SubBass: b[0],
		Bass:    b[1],
		LowMid:  b[2],
		Mid:     b[3],
		HighMid: b[4],
		High:    b[5],
	}
}

// Report is the result of one analysis. A Report is built once by Analyze
// and never modified afterwards.
type Report struct {
	OverallScore float64 `json:"overall_score"`
	Passed       bool    `json:"passed"`
	Threshold    float64 `json:"threshold"`

	// Levels
	PeakDB         float64 `json:"peak_db"`
	RMSDB          float64 `json:"rms_db"`
	DynamicRangeDB float64 `json:"dynamic_range_db"`
	CrestFactorDB  float64 `json:"crest_factor_db"`
	LoudnessLUFS   float64 `json:"loudness_lufs"`

	// Clipping
	ClippingPct     float64 `json:"clipping_pct"`
	NearClippingPct float64 `json:"near_clipping_pct"`

	// Silence
	SilencePct      float64        `json:"silence_pct"`
	LongestSilenceS float64        `json:"longest_silence_s"`
	Gaps            []temporal.Gap `json:"gaps"`

	// Spectrum
	SpectralCentroidHz float64      `json:"spectral_centroid_hz"`
	SpectralRolloffHz  float64      `json:"spectral_rolloff_hz"`
	SpectralFlatness   float64      `json:"spectral_flatness"`
	SpectralFlux       float64      `json:"spectral_flux"`
	BandEnergies       BandEnergies `json:"band_energies"`

	// Stereo
	StereoWidthPct   float64 `json:"stereo_width_pct"`
	PhaseCorrelation float64 `json:"phase_correlation"`

	Issues   []string `json:"issues"`
	Warnings []string `json:"warnings"`

	Duration   float64 `json:"duration_s"`
	SampleRate int     `json:"sample_rate"`
	Channels   int     `json:"channels"`
}
