package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileNames are the project file names Load looks for, in order
var FileNames = []string{"arborist.yml", "arborist.yaml"}

// ProjectConfig holds project-level defaults loaded from arborist.yml.
// Command-line flags override every field.
type ProjectConfig struct {
	Registry string `yaml:"registry,omitempty"` // Manifest path, relative to the config file
	Verbose  bool   `yaml:"verbose,omitempty"`
	NoColor  bool   `yaml:"noColor,omitempty"`
	Jobs     int    `yaml:"jobs,omitempty"`
	TwoPass  bool   `yaml:"twoPass,omitempty"`
	Builtins bool   `yaml:"builtins,omitempty"` // Layer the registry over the built-in callables
	MaxDepth int    `yaml:"maxDepth,omitempty"`

	// Path of the file the config came from; empty when none was found
	Path string `yaml:"-"`
}

// Load attempts to read arborist.yml or arborist.yaml from the given
// directory. Returns a zero-value config (not an error) if no config file
// exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}

		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if err := cfg.validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		cfg.Path = path
		if cfg.Registry != "" && !filepath.IsAbs(cfg.Registry) {
			cfg.Registry = filepath.Join(dir, cfg.Registry)
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}

func (c *ProjectConfig) validate() error {
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative (got %d)", c.Jobs)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("maxDepth must not be negative (got %d)", c.MaxDepth)
	}
	return nil
}
