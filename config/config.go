// Package config loads optional display defaults from a .harq.yml file in
// the working directory or the user's home directory. Flags always win
// over config values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the complete harq configuration
type Config struct {
	Output OutputConfig `yaml:"output"`
}

// OutputConfig holds display defaults
type OutputConfig struct {
	Format string `yaml:"format"`  // table|json|compact
	Color  string `yaml:"color"`   // auto|always|never
	MaxURL int    `yaml:"max_url"` // URL truncation width
	Limit  int    `yaml:"limit"`   // 0 = unlimited
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Format: "table",
			Color:  "auto",
			MaxURL: 60,
			Limit:  0,
		},
	}
}

// Load finds and parses the config file. A missing file is not an error;
// a malformed one is.
func Load() (*Config, error) {
	path, ok := findConfigFile()
	if !ok {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile parses one config file over the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Output.MaxURL <= 0 {
		cfg.Output.MaxURL = 60
	}
	return cfg, nil
}

func findConfigFile() (string, bool) {
	if _, err := os.Stat(".harq.yml"); err == nil {
		return ".harq.yml", true
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, ".harq.yml")
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}
