package humanize

import (
	"github.com/RyanBlaney/sonido-pulido/pcm"
)

// Params sets the intensity of every humanization pass. Intensities are
// normalized to [0, 1]; a zero intensity disables its pass.
type Params struct {
	// TimingDrift shifts each onset by up to ±5 ms.
	TimingDrift float64 `yaml:"timing_drift" json:"timing_drift"`

	// VelocityVariation scales a smooth gain curve bounded to ±15%.
	VelocityVariation float64 `yaml:"velocity_variation" json:"velocity_variation"`

	// PitchWobble scales tape-style wow and flutter.
	PitchWobble float64 `yaml:"pitch_wobble" json:"pitch_wobble"`

	// GrooveAmount accents beats 1 and 3 and softens and delays 2 and 4.
	GrooveAmount float64 `yaml:"groove_amount" json:"groove_amount"`

	// AnalogWarmth drives saturation, hiss and rumble.
	AnalogWarmth float64 `yaml:"analog_warmth" json:"analog_warmth"`

	// RoomSize morphs the early reflections from a small room (0) to a
	// large one (1). RoomMix is the wet level; 0 disables the room.
	RoomSize float64 `yaml:"room_size" json:"room_size"`
	RoomMix  float64 `yaml:"room_mix" json:"room_mix"`

	// Tempo in BPM places the groove grid. Zero estimates it from onsets.
	Tempo float64 `yaml:"tempo" json:"tempo"`

	// TargetBitDepth, when set, dithers and quantizes the output.
	TargetBitDepth int `yaml:"target_bit_depth" json:"target_bit_depth"`
}

// DefaultParams returns moderate settings that loosen a quantized render
// without smearing it.
func DefaultParams() Params {
	return Params{
		TimingDrift:       0.3,
		VelocityVariation: 0.2,
		PitchWobble:       0.15,
		GrooveAmount:      0.4,
		AnalogWarmth:      0.3,
		RoomSize:          0,
		RoomMix:           0.12,
	}
}

// Validate checks every intensity.
func (p Params) Validate() error {
	checks := []struct {
		field string
		value float64
	}{
		{"timing_drift", p.TimingDrift},
		{"velocity_variation", p.VelocityVariation},
		{"pitch_wobble", p.PitchWobble},
		{"groove_amount", p.GrooveAmount},
		{"analog_warmth", p.AnalogWarmth},
		{"room_size", p.RoomSize},
		{"room_mix", p.RoomMix},
	}
	for _, c := range checks {
		if err := pcm.CheckRange(c.field, c.value, 0, 1); err != nil {
			return err
		}
	}
	if err := pcm.CheckRange("tempo", p.Tempo, 0, 300); err != nil {
		return err
	}
	switch p.TargetBitDepth {
	case 0, 8, 16, 24:
		return nil
	}
	return &pcm.ConfigurationError{Field: "target_bit_depth", Value: p.TargetBitDepth, Reason: "must be 0, 8, 16 or 24"}
}

// passthrough reports whether no pass would touch the signal.
func (p Params) passthrough() bool {
	return p.TimingDrift == 0 && p.VelocityVariation == 0 && p.PitchWobble == 0 &&
		p.GrooveAmount == 0 && p.AnalogWarmth == 0 && p.RoomMix == 0 && p.TargetBitDepth == 0
}
