package audiomarker

import (
	"os"

	"github.com/atelier-socle/audiomarker/id3v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds the options spec §6 names: the ID3v2 version to write,
// whether a write is validated first, whether unmapped frames/atoms
// survive a write, and the ID3v2 padding size.
type Config struct {
	ID3Version           id3v2.Version
	ValidateBeforeWriting bool
	PreserveUnknownData   bool
	ID3PaddingSize        int
}

// Option configures a Config via functional options, as
// NewConfig(WithID3Version(...), ...).
type Option func(*Config)

// DefaultConfig returns the spec-mandated defaults: ID3v2.3, validate
// before writing, preserve unknown data, 2048 bytes of padding.
func DefaultConfig() Config {
	return Config{
		ID3Version:            id3v2.Version23,
		ValidateBeforeWriting: true,
		PreserveUnknownData:   true,
		ID3PaddingSize:        id3v2.DefaultPaddingSize,
	}
}

// NewConfig builds a Config from DefaultConfig, applying opts in
// order.
func NewConfig(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithID3Version overrides the ID3v2 version written on a full write.
func WithID3Version(v id3v2.Version) Option {
	return func(c *Config) { c.ID3Version = v }
}

// WithValidateBeforeWriting toggles pre-write validation.
func WithValidateBeforeWriting(validate bool) Option {
	return func(c *Config) { c.ValidateBeforeWriting = validate }
}

// WithPreserveUnknownData toggles whether unmapped frames/atoms
// survive a Modify-style write.
func WithPreserveUnknownData(preserve bool) Option {
	return func(c *Config) { c.PreserveUnknownData = preserve }
}

// WithID3PaddingSize sets Config.ID3PaddingSize. The ID3v2 writer does
// not read this value: every ID3v2 write reserves
// id3v2.DefaultPaddingSize bytes of padding after the frame block.
func WithID3PaddingSize(bytes int) Option {
	return func(c *Config) { c.ID3PaddingSize = bytes }
}

// fileConfig is the YAML shape decoded from an .audiomarker.yaml
// config file, grounded on awslabs/ferret-scan's internal/config
// pattern: plain string/bool fields decoded with gopkg.in/yaml.v3,
// translated into functional options afterward.
type fileConfig struct {
	ID3Version            string `yaml:"id3Version"`
	ValidateBeforeWriting *bool  `yaml:"validateBeforeWriting"`
	PreserveUnknownData   *bool  `yaml:"preserveUnknownData"`
	ID3PaddingSize         *int  `yaml:"id3PaddingSize"`
}

// LoadConfigFile decodes a YAML config file (e.g. ".audiomarker.yaml")
// into a Config, starting from DefaultConfig for any field the file
// omits.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "audiomarker: read config %s", path)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, errors.Wrapf(err, "audiomarker: parse config %s", path)
	}

	cfg := DefaultConfig()
	switch fc.ID3Version {
	case "v2.3", "2.3", "":
		// already the default
	case "v2.4", "2.4":
		cfg.ID3Version = id3v2.Version24
	default:
		return Config{}, errors.Errorf("audiomarker: unrecognised id3Version %q in %s", fc.ID3Version, path)
	}
	if fc.ValidateBeforeWriting != nil {
		cfg.ValidateBeforeWriting = *fc.ValidateBeforeWriting
	}
	if fc.PreserveUnknownData != nil {
		cfg.PreserveUnknownData = *fc.PreserveUnknownData
	}
	if fc.ID3PaddingSize != nil {
		cfg.ID3PaddingSize = *fc.ID3PaddingSize
	}

	return cfg, nil
}
