package cmd

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/simergy/simergy/sim"
)

// Config represents the full defaults.yaml structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Config struct {
	Version string                  `yaml:"version"`
	Presets map[string]sim.Scenario `yaml:"presets"`
}

// loadDefaultsConfig parses defaults.yaml into a Config struct.
// Uses strict field checking: typos must cause errors.
func loadDefaultsConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading defaults file: %w", err)
	}
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing defaults YAML: %w", err)
	}
	return cfg, nil
}

// GetPreset returns the named preset scenario of a defaults file. A preset
// without a name is named after its key.
func GetPreset(name, defaultsFilePath string) (*sim.Scenario, error) {
	cfg, err := loadDefaultsConfig(defaultsFilePath)
	if err != nil {
		return nil, err
	}
	sc, ok := cfg.Presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q; valid: %v", name, presetNames(cfg))
	}
	if sc.Name == "" {
		sc.Name = name
	}
	return &sc, nil
}

func presetNames(cfg Config) []string {
	names := make([]string, 0, len(cfg.Presets))
	for name := range cfg.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
