package config

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a configuration encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from a file extension (.yaml, .yml, .json).
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported config file extension: %q", ext)
	}
}

// FromFile loads configuration from a file. ${VAR} references in the file
// are expanded from the environment before parsing.
func FromFile(path string) (Config, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	return Parse([]byte(os.ExpandEnv(string(data))), format)
}

// Parse decodes data in the given format.
func Parse(data []byte, format Format) (Config, error) {
	var m map[string]any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &m); err != nil {
			return Config{}, fmt.Errorf("parse yaml: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &m); err != nil {
			return Config{}, fmt.Errorf("parse json: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported config format: %q", format)
	}
	return New(m), nil
}

// Merge returns a Config holding base's keys overlaid with overrides'.
// Only top-level keys are merged; neither input is modified.
func Merge(base, overrides Config) Config {
	out := make(map[string]any, len(base.data)+len(overrides.data))
	maps.Copy(out, base.data)
	maps.Copy(out, overrides.data)
	return New(out)
}
