package mastering

import (
	"github.com/RyanBlaney/sonido-pulido/pcm"
)

// Style selects the coefficient set used by every pass of the chain.
type Style string

const (
	StyleWarm       Style = "warm"
	StyleBalanced   Style = "balanced"
	StyleBright     Style = "bright"
	StyleAggressive Style = "aggressive"
)

// Styles lists every mastering style.
var Styles = []Style{StyleWarm, StyleBalanced, StyleBright, StyleAggressive}

// ParseStyle validates a style name.
func ParseStyle(name string) (Style, error) {
	for _, s := range Styles {
		if string(s) == name {
			return s, nil
		}
	}
	return "", &pcm.ConfigurationError{
		Field:  "style",
		Value:  name,
		Reason: "must be one of warm, balanced, bright, aggressive",
	}
}

// parallelSettings drive the heavily compressed copy blended under the
// dry signal.
type parallelSettings struct {
	compressor CompressorSettings
	mix        float64
}

type styleParams struct {
	// eqGains are linear gains for the six balance bands, sub-bass first.
	eqGains [6]float64

	// bands are the low, mid and high band compressors.
	bands    [3]CompressorSettings
	parallel parallelSettings

	saturation float64
	width      float64
	shelfDB    float64
}

// baseBands is the neutral multiband setup; styles scale it.
var baseBands = [3]CompressorSettings{
	{ThresholdDB: -4.4, Ratio: 3, KneeDB: 6, AttackMs: 10, ReleaseMs: 100},
	{ThresholdDB: -6, Ratio: 4, KneeDB: 6, AttackMs: 5, ReleaseMs: 50},
	{ThresholdDB: -8, Ratio: 3.5, KneeDB: 6, AttackMs: 1, ReleaseMs: 30},
}

func bandsWith(thresholdOffsetDB, ratioScale float64) [3]CompressorSettings {
	bands := baseBands
	for i := range bands {
		bands[i].ThresholdDB += thresholdOffsetDB
		bands[i].Ratio = max(1.2, bands[i].Ratio*ratioScale)
	}
	return bands
}

func parallelWith(thresholdDB, ratio, mix float64) parallelSettings {
	return parallelSettings{
		compressor: CompressorSettings{
			ThresholdDB: thresholdDB,
			Ratio:       ratio,
			KneeDB:      3,
			AttackMs:    3,
			ReleaseMs:   80,
			AutoMakeup:  true,
		},
		mix: mix,
	}
}

func (s Style) params() styleParams {
	switch s {
	case StyleWarm:
		return styleParams{
			eqGains:    [6]float64{1.0, 1.05, 0.98, 0.95, 1.02, 0.92},
			bands:      bandsWith(1, 0.8),
			parallel:   parallelWith(-6, 4, 0.25),
			saturation: 0.4,
			width:      0.2,
			shelfDB:    0.3,
		}
	case StyleBright:
		return styleParams{
			eqGains:    [6]float64{0.95, 0.98, 0.98, 1.02, 1.08, 1.12},
			bands:      bandsWith(0, 1),
			parallel:   parallelWith(-8, 6, 0.3),
			saturation: 0.15,
			width:      0.35,
			shelfDB:    0.8,
		}
	case StyleAggressive:
		return styleParams{
			eqGains:    [6]float64{1.05, 1.08, 1.0, 0.95, 1.10, 1.08},
			bands:      bandsWith(-2, 1.3),
			parallel:   parallelWith(-10.5, 8, 0.4),
			saturation: 0.5,
			width:      0.4,
			shelfDB:    0.6,
		}
	default:
		return styleParams{
			eqGains:    [6]float64{0.98, 1.02, 1.0, 1.0, 1.03, 1.02},
			bands:      bandsWith(0, 1),
			parallel:   parallelWith(-8, 6, 0.3),
			saturation: 0.2,
			width:      0.3,
			shelfDB:    0.5,
		}
	}
}
