package synth

import (
	"fmt"

	"github.com/RyanBlaney/sonido-pulido/pcm"
)

// Hit places a drum voice on a beat.
type Hit struct {
	Voice    Voice
	Beat     float64
	Velocity float64
	Pan      float64 // -1 left, +1 right
}

// Note is a melodic event. Times are in beats.
type Note struct {
	Freq     float64
	Beat     float64
	Length   float64
	Velocity float64
	Pan      float64
}

// Pattern is one drum part and one melodic part over a fixed number of
// beats.
type Pattern struct {
	Name   string
	Tempo  float64
	Beats  int
	Drums  []Hit
	Melody []Note
}

// Validate checks that every event lies inside the pattern.
func (p Pattern) Validate() error {
	if p.Beats <= 0 {
		return &pcm.ConfigurationError{Field: "beats", Value: p.Beats, Reason: "must be positive"}
	}
	if err := pcm.CheckRange("tempo", p.Tempo, 20, 300); err != nil {
		return err
	}
	for i, h := range p.Drums {
		if h.Beat < 0 || h.Beat >= float64(p.Beats) {
			return &pcm.ConfigurationError{Field: fmt.Sprintf("drums[%d].beat", i), Value: h.Beat, Reason: "outside the pattern"}
		}
	}
	for i, n := range p.Melody {
		if n.Beat < 0 || n.Beat+n.Length > float64(p.Beats) || n.Length <= 0 {
			return &pcm.ConfigurationError{Field: fmt.Sprintf("melody[%d]", i), Value: n.Beat, Reason: "outside the pattern"}
		}
		if n.Freq <= 0 {
			return &pcm.ConfigurationError{Field: fmt.Sprintf("melody[%d].freq", i), Value: n.Freq, Reason: "must be positive"}
		}
	}
	return nil
}

// note frequencies
const (
	c4 = 261.63
	d4 = 293.66
	e4 = 329.63
	g4 = 392.00
	a4 = 440.00
	c5 = 523.25
)

// Demo is four bars of 4/4 at 90 BPM: kick on 1 and 3, snare on 2 and 4,
// eighth-note hats and a piano line. Every part rests for the first half of
// the last bar, which leaves a gap for the repair stage.
func Demo() Pattern {
	p := Pattern{Name: "demo", Tempo: 90, Beats: 16}

	rest := func(beat float64) bool { return beat >= 12 && beat < 14 }

	for bar := range 4 {
		base := float64(bar * 4)
		for _, b := range []float64{0, 2} {
			if !rest(base + b) {
				p.Drums = append(p.Drums, Hit{Voice: Kick, Beat: base + b, Velocity: 1})
			}
		}
		for _, b := range []float64{1, 3} {
			if !rest(base + b) {
				p.Drums = append(p.Drums, Hit{Voice: Snare, Beat: base + b, Velocity: 0.7, Pan: -0.1})
			}
		}
		for e := range 8 {
			beat := base + float64(e)/2
			vel := 0.5
			if e%2 == 1 {
				vel = 0.35
			}
			if !rest(beat) {
				p.Drums = append(p.Drums, Hit{Voice: HiHat, Beat: beat, Velocity: vel, Pan: 0.5})
			}
		}
	}

	line := []float64{c4, e4, g4, e4, d4, g4, a4, g4, c4, e4, g4, c5, 0, 0, a4, g4}
	for beat, freq := range line {
		if freq == 0 {
			continue
		}
		p.Melody = append(p.Melody, Note{Freq: freq, Beat: float64(beat), Length: 1, Velocity: 0.8, Pan: -0.6})
	}

	return p
}
