// Package config loads the optional YAML configuration file. Values from the
// file sit between the built-in defaults and the command-line flags.
//
//	suffixes: [.beancount, .bean, .ledger]
//	disabled_passes: [document_paths]
//	parallelism: 4
//	progress: false
//	log_level: info
//	currency_column: 60
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/robinvdvleuten/beancount-validate/logging"
	"gopkg.in/yaml.v3"
)

// DefaultSuffixes are the ledger file extensions accepted without a config.
var DefaultSuffixes = []string{".beancount", ".bean"}

// Config holds the settings of a validation run.
type Config struct {
	Suffixes       []string `yaml:"suffixes,omitempty"`
	DisabledPasses []string `yaml:"disabled_passes,omitempty"`
	Parallelism    int      `yaml:"parallelism,omitempty"`
	Progress       *bool    `yaml:"progress,omitempty"`
	LogLevel       string   `yaml:"log_level,omitempty"`
	CurrencyColumn int      `yaml:"currency_column,omitempty"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Suffixes: append([]string(nil), DefaultSuffixes...),
		LogLevel: logging.DefaultLevel,
	}
}

// Load reads a YAML config file. Unknown keys are rejected; an empty file is
// an empty config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates YAML config data.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.Suffixes = normalizeSuffixes(cfg.Suffixes)
	return cfg, nil
}

// Validate checks the values that can be checked without running anything.
func (c *Config) Validate() error {
	if c.Parallelism < 0 {
		return fmt.Errorf("parallelism must not be negative, got %d", c.Parallelism)
	}
	if c.CurrencyColumn < 0 {
		return fmt.Errorf("currency_column must not be negative, got %d", c.CurrencyColumn)
	}
	for _, s := range c.Suffixes {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("suffixes must not contain empty entries")
		}
	}
	if c.LogLevel != "" {
		if _, err := logging.ParseLevel(c.LogLevel); err != nil {
			return err
		}
	}
	return nil
}

// Merge returns a copy of c with the values set in other applied on top.
// Suffixes are replaced; disabled passes add up.
func (c *Config) Merge(other *Config) *Config {
	merged := *c
	merged.Suffixes = append([]string(nil), c.Suffixes...)
	merged.DisabledPasses = append([]string(nil), c.DisabledPasses...)
	if other == nil {
		return &merged
	}

	if len(other.Suffixes) > 0 {
		merged.Suffixes = normalizeSuffixes(other.Suffixes)
	}
	for _, name := range other.DisabledPasses {
		if !contains(merged.DisabledPasses, name) {
			merged.DisabledPasses = append(merged.DisabledPasses, name)
		}
	}
	if other.Parallelism > 0 {
		merged.Parallelism = other.Parallelism
	}
	if other.Progress != nil {
		v := *other.Progress
		merged.Progress = &v
	}
	if other.LogLevel != "" {
		merged.LogLevel = other.LogLevel
	}
	if other.CurrencyColumn > 0 {
		merged.CurrencyColumn = other.CurrencyColumn
	}
	return &merged
}

// AcceptsFile reports whether path ends in one of the configured suffixes,
// ignoring case.
func (c *Config) AcceptsFile(path string) bool {
	lower := strings.ToLower(path)
	for _, s := range c.Suffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

// normalizeSuffixes lower-cases suffixes and gives them a leading dot.
func normalizeSuffixes(suffixes []string) []string {
	if suffixes == nil {
		return nil
	}
	out := make([]string, 0, len(suffixes))
	for _, s := range suffixes {
		s = strings.ToLower(strings.TrimSpace(s))
		if !strings.HasPrefix(s, ".") {
			s = "." + s
		}
		out = append(out, s)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
