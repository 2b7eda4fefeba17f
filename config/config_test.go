package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/RyanBlaney/sonido-pulido/mastering"
	"github.com/RyanBlaney/sonido-pulido/pcm"
	"github.com/RyanBlaney/sonido-pulido/silence"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}

	if !cfg.EnableQA || !cfg.EnableRepair || !cfg.EnableHumanization || !cfg.EnableMastering {
		t.Error("every stage should be enabled by default")
	}
	if cfg.MaxRegenerationAttempts != 3 {
		t.Errorf("MaxRegenerationAttempts = %d", cfg.MaxRegenerationAttempts)
	}
	if cfg.Analyzer.Threshold != 70 {
		t.Errorf("threshold = %v", cfg.Analyzer.Threshold)
	}
	if cfg.Repair.SilenceBoundPct != 10 || cfg.Repair.DynamicRangeBoundDB != 20 {
		t.Errorf("repair bounds = %+v", cfg.Repair)
	}
	if cfg.Silence.ThresholdDB != -60 || cfg.Silence.MinGapDuration != 0.5 {
		t.Errorf("gap detection = %v dB / %v s", cfg.Silence.ThresholdDB, cfg.Silence.MinGapDuration)
	}
	if cfg.Mastering.TargetLUFS != -14 {
		t.Errorf("target = %v", cfg.Mastering.TargetLUFS)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
enable_humanization: false
max_regeneration_attempts: 5
genre: techno
seed: 42
silence:
  fill_style: vinyl
  fill_volume: 0.2
humanize:
  timing_drift: 0.6
mastering:
  target_lufs: -10
`))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.EnableHumanization {
		t.Error("enable_humanization not applied")
	}
	if !cfg.EnableMastering {
		t.Error("unset flag lost its default")
	}
	if cfg.MaxRegenerationAttempts != 5 || cfg.Seed != 42 {
		t.Errorf("attempts %d seed %d", cfg.MaxRegenerationAttempts, cfg.Seed)
	}
	if cfg.Silence.FillStyle != silence.StyleVinyl || cfg.Silence.FillVolume != 0.2 {
		t.Errorf("silence = %+v", cfg.Silence)
	}
	if cfg.Silence.MinGapDuration != 0.5 {
		t.Error("nested default lost")
	}
	if cfg.Humanize.TimingDrift != 0.6 || cfg.Humanize.VelocityVariation != 0.2 {
		t.Errorf("humanize = %+v", cfg.Humanize)
	}

	m := cfg.MasteringOptions()
	if m.TargetLUFS != -10 || m.Style != mastering.StyleAggressive {
		t.Errorf("mastering = %+v", m)
	}
	if cfg.Tempo() != 130 {
		t.Errorf("tempo = %v", cfg.Tempo())
	}
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxRegenerationAttempts != DefaultMaxRegenerationAttempts {
		t.Error("empty document should yield defaults")
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		configErr bool
	}{
		{"unknown key", "enable_everything: true", false},
		{"bad yaml", "seed: [", false},
		{"unknown style", "mastering:\n  style: loud", true},
		{"intensity out of range", "humanize:\n  pitch_wobble: 1.5", true},
		{"negative attempts", "max_regeneration_attempts: -1", true},
		{"fill style", "silence:\n  fill_style: static", true},
		{"threshold", "analyzer:\n  threshold: 120", true},
		{"silence bound", "repair:\n  silence_bound_pct: 150", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			var cfgErr *pcm.ConfigurationError
			if got := errors.As(err, &cfgErr); got != tt.configErr {
				t.Errorf("ConfigurationError = %v, want %v (%v)", got, tt.configErr, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	if err := os.WriteFile(path, []byte("genre: lofi\nenable_qa: false\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.EnableQA || cfg.Genre != "lofi" {
		t.Errorf("loaded %+v", cfg)
	}
	if cfg.MasteringOptions().Style != mastering.StyleWarm {
		t.Errorf("style = %s", cfg.MasteringOptions().Style)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestExplicitStyleWins(t *testing.T) {
	cfg := Default()
	cfg.Genre = "lofi"
	cfg.Mastering.Style = mastering.StyleBright
	if got := cfg.MasteringOptions().Style; got != mastering.StyleBright {
		t.Errorf("style = %s", got)
	}
}

func TestForGenre(t *testing.T) {
	tests := []struct {
		genre string
		style mastering.Style
		tempo float64
	}{
		{"lofi", mastering.StyleWarm, 80},
		{"relax", mastering.StyleWarm, 70},
		{"ambient", mastering.StyleWarm, 75},
		{"jazz", mastering.StyleWarm, 120},
		{"techno", mastering.StyleAggressive, 130},
		{"electro", mastering.StyleAggressive, 130},
		{"dnb", mastering.StyleAggressive, 120},
		{"funk", mastering.StyleBright, 110},
		{"house", mastering.StyleBright, 125},
		{"pop", mastering.StyleBright, 120},
		{"  LoFi ", mastering.StyleWarm, 80},
		{"", mastering.StyleBalanced, 120},
		{"polka", mastering.StyleBalanced, 120},
	}

	for _, tt := range tests {
		t.Run(tt.genre, func(t *testing.T) {
			got := ForGenre(tt.genre)
			if got.Style != tt.style || got.Tempo != tt.tempo {
				t.Errorf("ForGenre(%q) = %+v, want %s at %v", tt.genre, got, tt.style, tt.tempo)
			}
		})
	}
}
