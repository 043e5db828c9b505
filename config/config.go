package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/QEStudios/BuzzerCompiler/melody"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML configuration file and layers it over melody.DefaultConfig.
// Keys missing from the file keep their default value.
func Load(path string) (melody.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return melody.Config{}, fmt.Errorf("cannot read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return melody.Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML configuration data over the defaults and validates it.
// Unknown keys are rejected.
func Parse(data []byte) (melody.Config, error) {
	cfg := melody.DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return melody.Config{}, fmt.Errorf("invalid config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return melody.Config{}, err
	}
	return cfg, nil
}
