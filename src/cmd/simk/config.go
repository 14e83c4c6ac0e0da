package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/phroun/simkernel"
)

// CLIConfig holds configuration loaded from ~/.simk/config.yaml or --config
type CLIConfig struct {
	Debug         bool     `yaml:"debug" toml:"debug"`
	LogCategories []string `yaml:"log_categories" toml:"log_categories"`
	Format        string   `yaml:"format" toml:"format"`   // "text" or "yaml"
	Params        []string `yaml:"params" toml:"params"`   // names printed per point; empty prints all
	Workers       int      `yaml:"workers" toml:"workers"` // parallel engines
	MaxRecursion  int      `yaml:"max_recursion" toml:"max_recursion"`
	MaxScopeLevel int      `yaml:"max_scope_level" toml:"max_scope_level"`
	ErrorContext  bool     `yaml:"error_context" toml:"error_context"`
	ContextLines  int      `yaml:"context_lines" toml:"context_lines"`
	Seed          int64    `yaml:"seed" toml:"seed"`   // 0 seeds from the clock
	Color         string   `yaml:"color" toml:"color"` // "auto", "always" or "never"
	History       bool     `yaml:"history" toml:"history"`
}

func defaultCLIConfig() CLIConfig {
	return CLIConfig{
		Format:        "text",
		Workers:       1,
		MaxRecursion:  simkernel.DefaultMaxRecursion,
		MaxScopeLevel: simkernel.DefaultMaxScopeLevel,
		ErrorContext:  true,
		ContextLines:  2,
		Color:         "auto",
		History:       true,
	}
}

// defaultConfigFile is written on first run
const defaultConfigFile = `# simk configuration
# This file is automatically created on first run

# Debug output and the categories it covers (empty means all):
# parse, eval, scope, sweep, conversion, io, config, sim, user
debug: false
log_categories: []

# Per point output of the parameter kernel: "text" or "yaml"
format: text
# Parameters printed per point; empty prints every plain definition
params: []
# Independent engines running sweep points in parallel
workers: 1

max_recursion: 256
max_scope_level: 512
error_context: true
context_lines: 2

# Random seed, 0 seeds from the clock
seed: 0

# REPL colors: "auto", "always" or "never"
color: auto
# Keep REPL history in the config directory
history: true
`

// getConfigDir returns the path to ~/.simk
func getConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".simk")
}

// loadCLIConfig reads path, or the default config file when path is empty.
// The default file is created when missing; an explicit path must exist.
func loadCLIConfig(path string) (CLIConfig, error) {
	cfg := defaultCLIConfig()
	explicit := path != ""
	if !explicit {
		dir := getConfigDir()
		if dir == "" {
			return cfg, nil
		}
		path = filepath.Join(dir, "config.yaml")
	}

	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		createDefaultConfig(path)
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := decodeCLIConfig(path, content, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.validate()
}

// decodeCLIConfig picks the decoder by file extension
func decodeCLIConfig(path string, content []byte, cfg *CLIConfig) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(content), cfg); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(content, cfg); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func (c CLIConfig) validate() error {
	if _, err := simkernel.ParseParamFormat(c.Format); err != nil {
		return err
	}
	for _, name := range c.LogCategories {
		if _, ok := simkernel.ParseCategory(name); !ok {
			return fmt.Errorf("unknown log category %q", name)
		}
	}
	switch c.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("color must be auto, always or never, not %q", c.Color)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	return nil
}

// createDefaultConfig writes the default config file, ignoring failures
func createDefaultConfig(configPath string) {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return
	}
	_ = os.WriteFile(configPath, []byte(defaultConfigFile), 0644)
}

// engineConfig builds the engine configuration
func (c CLIConfig) engineConfig() *simkernel.Config {
	config := simkernel.DefaultConfig()
	config.Debug = c.Debug
	for _, name := range c.LogCategories {
		if cat, ok := simkernel.ParseCategory(name); ok {
			config.LogCategories = append(config.LogCategories, cat)
		}
	}
	config.MaxRecursion = c.MaxRecursion
	config.MaxScopeLevel = c.MaxScopeLevel
	config.ShowErrorContext = c.ErrorContext
	config.ContextLines = c.ContextLines
	config.Seed = c.Seed
	return config
}
