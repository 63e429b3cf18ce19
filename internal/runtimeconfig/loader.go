package runtimeconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Load builds a Config from DefaultConfig, the optional YAML file at path and
// PORTAL_* environment variables, in that order, then validates it.
func Load(path string) (Config, error) {
	return load(path, env.Options{})
}

// LoadWithEnvironment is Load with an explicit environment map in place of
// the process environment.
func LoadWithEnvironment(path string, environment map[string]string) (Config, error) {
	return load(path, env.Options{Environment: environment})
}

func load(path string, opts env.Options) (Config, error) {
	cfg := DefaultConfig()

	if trimmed := strings.TrimSpace(path); trimmed != "" {
		data, err := os.ReadFile(trimmed)
		if err != nil {
			return Config{}, fmt.Errorf("portal config: read %s: %w", trimmed, err)
		}
		if err := decodeYAML(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("portal config: parse %s: %w", trimmed, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("portal config: parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
