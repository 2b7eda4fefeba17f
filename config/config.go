// Package config holds the pipeline's stage configuration: enable flags,
// regeneration budget, repair bounds and the options of every component.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/sonido-pulido/analyzer"
	"github.com/RyanBlaney/sonido-pulido/humanize"
	"github.com/RyanBlaney/sonido-pulido/mastering"
	"github.com/RyanBlaney/sonido-pulido/pcm"
	"github.com/RyanBlaney/sonido-pulido/silence"
)

// Defaults for Config.
const (
	DefaultMaxRegenerationAttempts = 3
	DefaultSilenceBoundPct         = 10.0
	DefaultDynamicRangeBoundDB     = 20.0
)

// RepairConfig bounds the repair stage.
type RepairConfig struct {
	// SilenceBoundPct is the silence percentage above which continuous
	// ambience is added (default: 10).
	SilenceBoundPct float64 `yaml:"silence_bound_pct" json:"silence_bound_pct"`

	// DynamicRangeBoundDB is the dynamic range above which light
	// compression is applied (default: 20).
	DynamicRangeBoundDB float64 `yaml:"dynamic_range_bound_db" json:"dynamic_range_bound_db"`
}

// Config configures one compile.
type Config struct {
	EnableQA           bool `yaml:"enable_qa" json:"enable_qa"`
	EnableRepair       bool `yaml:"enable_repair" json:"enable_repair"`
	EnableHumanization bool `yaml:"enable_humanization" json:"enable_humanization"`
	EnableMastering    bool `yaml:"enable_mastering" json:"enable_mastering"`

	// MaxRegenerationAttempts bounds how often a low-scoring render is
	// regenerated (default: 3).
	MaxRegenerationAttempts int `yaml:"max_regeneration_attempts" json:"max_regeneration_attempts"`

	// Genre selects the mastering style and default tempo.
	Genre string `yaml:"genre" json:"genre"`

	// Seed drives every random source in the pipeline.
	Seed uint64 `yaml:"seed" json:"seed"`

	Analyzer  analyzer.Options  `yaml:"analyzer" json:"analyzer"`
	Silence   silence.Options   `yaml:"silence" json:"silence"`
	Repair    RepairConfig      `yaml:"repair" json:"repair"`
	Humanize  humanize.Params   `yaml:"humanize" json:"humanize"`
	Mastering mastering.Options `yaml:"mastering" json:"mastering"`
}

// Default returns the configuration used when no file is given. The
// mastering style is left empty so it follows the genre.
func Default() *Config {
	m := mastering.DefaultOptions()
	m.Style = ""

	return &Config{
		EnableQA:                true,
		EnableRepair:            true,
		EnableHumanization:      true,
		EnableMastering:         true,
		MaxRegenerationAttempts: DefaultMaxRegenerationAttempts,
		Analyzer:                analyzer.DefaultOptions(),
		Silence:                 silence.DefaultOptions(),
		Repair: RepairConfig{
			SilenceBoundPct:     DefaultSilenceBoundPct,
			DynamicRangeBoundDB: DefaultDynamicRangeBoundDB,
		},
		Humanize:  humanize.DefaultParams(),
		Mastering: m,
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section. Errors are *pcm.ConfigurationError.
func (c *Config) Validate() error {
	if c.MaxRegenerationAttempts < 0 || c.MaxRegenerationAttempts > 10 {
		return &pcm.ConfigurationError{
			Field:  "max_regeneration_attempts",
			Value:  c.MaxRegenerationAttempts,
			Reason: "must be within [0, 10]",
		}
	}
	if err := pcm.CheckRange("repair.silence_bound_pct", c.Repair.SilenceBoundPct, 0, 100); err != nil {
		return err
	}
	if err := pcm.CheckRange("repair.dynamic_range_bound_db", c.Repair.DynamicRangeBoundDB, 0, 120); err != nil {
		return err
	}

	if err := c.Analyzer.Validate(); err != nil {
		return err
	}
	if err := c.Silence.Validate(); err != nil {
		return err
	}
	if err := c.Humanize.Validate(); err != nil {
		return err
	}
	return c.MasteringOptions().Validate()
}

// MasteringOptions returns the mastering options with the style resolved
// from the genre when none is set.
func (c *Config) MasteringOptions() mastering.Options {
	opts := c.Mastering
	if opts.Style == "" {
		opts.Style = ForGenre(c.Genre).Style
	}
	return opts
}

// Tempo returns the humanizer tempo, falling back to the genre default.
func (c *Config) Tempo() float64 {
	if c.Humanize.Tempo > 0 {
		return c.Humanize.Tempo
	}
	return ForGenre(c.Genre).Tempo
}
