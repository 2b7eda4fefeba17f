package mastering

import (
	"math"

	"github.com/RyanBlaney/sonido-pulido/algorithms/common"
)

// CompressorSettings configure a soft-knee downward compressor.
type CompressorSettings struct {
	ThresholdDB float64 `yaml:"threshold_db" json:"threshold_db"`
	Ratio       float64 `yaml:"ratio" json:"ratio"`
	KneeDB      float64 `yaml:"knee_db" json:"knee_db"`
	AttackMs    float64 `yaml:"attack_ms" json:"attack_ms"`
	ReleaseMs   float64 `yaml:"release_ms" json:"release_ms"`
	MakeupDB    float64 `yaml:"makeup_db" json:"makeup_db"`

	// AutoMakeup replaces MakeupDB with the gain lost at full scale.
	AutoMakeup bool `yaml:"auto_makeup" json:"auto_makeup"`
}

// LightCompression is a gentle 2:1 setting for taming excessive dynamic
// range without audible pumping.
var LightCompression = CompressorSettings{
	ThresholdDB: -18,
	Ratio:       2,
	KneeDB:      6,
	AttackMs:    10,
	ReleaseMs:   120,
}

// Compressor is a peak-detecting soft-knee compressor. The detector is linked
// across channels so the stereo image does not shift under gain reduction.
type Compressor struct {
	thresholdDB float64
	slope       float64 // 1/ratio - 1
	kneeDB      float64
	makeup      float64

	attackFactor  float64
	releaseFactor float64
}

// NewCompressor creates a compressor for the given sample rate.
func NewCompressor(sampleRate int, s CompressorSettings) *Compressor {
	ratio := max(1, s.Ratio)
	c := &Compressor{
		thresholdDB: s.ThresholdDB,
		slope:       1/ratio - 1,
		kneeDB:      max(0, s.KneeDB),
	}

	makeupDB := s.MakeupDB
	if s.AutoMakeup {
		makeupDB = -c.gainDB(0)
	}
	c.makeup = common.DBToAmplitude(makeupDB)

	sr := float64(sampleRate)
	c.attackFactor = 1 - math.Exp(-math.Ln2/(max(0.1, s.AttackMs)*0.001*sr))
	c.releaseFactor = math.Exp(-math.Ln2 / (max(1, s.ReleaseMs) * 0.001 * sr))

	return c
}

// gainDB is the static curve: the gain change in dB for a detector level.
func (c *Compressor) gainDB(levelDB float64) float64 {
	over := levelDB - c.thresholdDB
	switch {
	case 2*over <= -c.kneeDB:
		return 0
	case c.kneeDB > 0 && 2*math.Abs(over) < c.kneeDB:
		x := over + c.kneeDB/2
		return c.slope * x * x / (2 * c.kneeDB)
	default:
		return c.slope * over
	}
}

// Process compresses channels, which must share a length, and returns new
// slices.
func (c *Compressor) Process(channels [][]float64) [][]float64 {
	out := make([][]float64, len(channels))
	for ch := range out {
		out[ch] = make([]float64, len(channels[ch]))
	}
	if len(channels) == 0 {
		return out
	}

	peak := 0.0
	for i := range channels[0] {
		level := 0.0
		for _, data := range channels {
			level = max(level, math.Abs(data[i]))
		}

		if level > peak {
			peak += (level - peak) * c.attackFactor
		} else {
			peak = level + (peak-level)*c.releaseFactor
		}

		gain := c.makeup * common.DBToAmplitude(c.gainDB(common.AmplitudeToDB(peak)))
		for ch, data := range channels {
			out[ch][i] = data[i] * gain
		}
	}

	return out
}
