// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads breakctl configuration from YAML and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	breakerrors "github.com/tombee/breakctl/pkg/errors"
)

var (
	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Stop-point strategies for source rules.
const (
	StopPointsGo   = "go"
	StopPointsText = "text"
)

// Registry backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Relative path anchors for file:line locations.
const (
	RelativeToWorkDir = "cwd"
	RelativeToFrame   = "frame"
)

// Config represents the complete breakctl configuration.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Source   SourceConfig   `yaml:"source"`
	Registry RegistryConfig `yaml:"registry"`
	Symbols  SymbolsConfig  `yaml:"symbols"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Tracing  TracingConfig  `yaml:"tracing"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is json or text.
	Format string `yaml:"format"`

	AddSource bool `yaml:"add_source"`
}

// SourceConfig configures how source files are read and where execution
// can stop in them.
type SourceConfig struct {
	// RelativeTo anchors relative file:line paths: "cwd" (the working
	// directory) or "frame" (the directory of the active frame's file).
	RelativeTo string `yaml:"relative_to"`

	// Rules pick a stop-point strategy by path. The first matching rule
	// wins; unmatched files use the text strategy.
	Rules []SourceRule `yaml:"rules"`

	// Watch invalidates cached stop points when files change.
	Watch bool `yaml:"watch"`
}

// SourceRule maps a doublestar glob to a stop-point strategy.
type SourceRule struct {
	Pattern string `yaml:"pattern"`

	// Kind is "go" or "text".
	Kind string `yaml:"kind"`

	// CommentPrefixes overrides the text strategy's comment markers.
	CommentPrefixes []string `yaml:"comment_prefixes,omitempty"`
}

// RegistryConfig configures breakpoint storage.
type RegistryConfig struct {
	// Backend is "memory" or "sqlite". The sqlite backend is in-memory
	// and lives only as long as the process.
	Backend string `yaml:"backend"`
}

// SymbolsConfig lists the owner names known to be loaded.
type SymbolsConfig struct {
	Types   []string          `yaml:"types"`
	Aliases map[string]string `yaml:"aliases"`
}

// MetricsConfig configures resolution metrics.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// TracingConfig configures span export for breakpoint resolution.
type TracingConfig struct {
	// Exporter is one of none, console, otlp, otlp_http.
	Exporter string            `yaml:"exporter"`
	Endpoint string            `yaml:"endpoint,omitempty"`
	Insecure bool              `yaml:"insecure,omitempty"`
	Headers  map[string]string `yaml:"headers,omitempty"`

	// SampleRate is the fraction of resolutions traced. Zero means all.
	SampleRate float64 `yaml:"sample_rate,omitempty"`
}

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Source: SourceConfig{
			RelativeTo: RelativeToWorkDir,
			Rules: []SourceRule{
				{Pattern: "**/*.go", Kind: StopPointsGo},
			},
		},
		Registry: RegistryConfig{
			Backend: BackendMemory,
		},
		Tracing: TracingConfig{
			Exporter: "none",
		},
	}
}

// Load loads configuration from environment variables and optionally from a YAML file.
// Environment variables take precedence over file-based configuration.
// If configPath is empty, only environment variables are used.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		if err := cfg.loadFromFile(configPath); err != nil {
			return nil, &breakerrors.ConfigError{
				Key:    "config_file",
				Reason: fmt.Sprintf("failed to load from %s", configPath),
				Cause:  err,
			}
		}
	}

	// Apply defaults to any zero values (handles minimal configs)
	cfg.applyDefaults()

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, &breakerrors.ConfigError{
			Key:    "validation",
			Reason: "configuration validation failed",
			Cause:  err,
		}
	}

	return cfg, nil
}

// applyDefaults fills in zero values left by a partial config file.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Source.RelativeTo == "" {
		c.Source.RelativeTo = d.Source.RelativeTo
	}
	for i := range c.Source.Rules {
		if c.Source.Rules[i].Kind == "" {
			c.Source.Rules[i].Kind = StopPointsText
		}
	}
	if c.Registry.Backend == "" {
		c.Registry.Backend = d.Registry.Backend
	}
	if c.Tracing.Exporter == "" {
		c.Tracing.Exporter = d.Tracing.Exporter
	}
}

// loadFromFile loads configuration from a YAML file.
func (c *Config) loadFromFile(path string) error {
	// Expand home directory if present
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	return nil
}

// loadFromEnv loads configuration from environment variables.
func (c *Config) loadFromEnv() {
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = strings.ToLower(val)
	}
	if val := os.Getenv("BREAKCTL_LOG_LEVEL"); val != "" {
		c.Log.Level = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_SOURCE"); val != "" {
		c.Log.AddSource = truthy(val)
	}

	if val := os.Getenv("BREAKCTL_RELATIVE_TO"); val != "" {
		c.Source.RelativeTo = strings.ToLower(val)
	}
	if val := os.Getenv("BREAKCTL_WATCH"); val != "" {
		c.Source.Watch = truthy(val)
	}
	if val := os.Getenv("BREAKCTL_REGISTRY_BACKEND"); val != "" {
		c.Registry.Backend = strings.ToLower(val)
	}
	if val := os.Getenv("BREAKCTL_METRICS"); val != "" {
		c.Metrics.Enabled = truthy(val)
	}

	if val := os.Getenv("BREAKCTL_TRACE_EXPORTER"); val != "" {
		c.Tracing.Exporter = strings.ToLower(val)
	}
	if val := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); val != "" {
		c.Tracing.Endpoint = val
	}
}

func truthy(val string) bool {
	return val == "1" || strings.ToLower(val) == "true"
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level must be one of [trace, debug, info, warn, warning, error], got %q", c.Log.Level))
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("log.format must be one of [json, text], got %q", c.Log.Format))
	}

	if c.Source.RelativeTo != RelativeToWorkDir && c.Source.RelativeTo != RelativeToFrame {
		errs = append(errs, fmt.Sprintf("source.relative_to must be one of [cwd, frame], got %q", c.Source.RelativeTo))
	}
	for i, rule := range c.Source.Rules {
		if rule.Pattern == "" {
			errs = append(errs, fmt.Sprintf("source.rules[%d]: pattern is required", i))
		} else if !doublestar.ValidatePattern(rule.Pattern) {
			errs = append(errs, fmt.Sprintf("source.rules[%d]: invalid pattern %q", i, rule.Pattern))
		}
		if rule.Kind != StopPointsGo && rule.Kind != StopPointsText {
			errs = append(errs, fmt.Sprintf("source.rules[%d]: kind must be one of [go, text], got %q", i, rule.Kind))
		}
		if rule.Kind == StopPointsGo && len(rule.CommentPrefixes) > 0 {
			errs = append(errs, fmt.Sprintf("source.rules[%d]: comment_prefixes only applies to kind text", i))
		}
	}

	if c.Registry.Backend != BackendMemory && c.Registry.Backend != BackendSQLite {
		errs = append(errs, fmt.Sprintf("registry.backend must be one of [memory, sqlite], got %q", c.Registry.Backend))
	}

	switch c.Tracing.Exporter {
	case "none", "console":
	case "otlp", "otlp_http":
		if c.Tracing.Endpoint == "" {
			errs = append(errs, fmt.Sprintf("tracing.endpoint is required for exporter %q", c.Tracing.Exporter))
		}
	default:
		errs = append(errs, fmt.Sprintf("tracing.exporter must be one of [none, console, otlp, otlp_http], got %q", c.Tracing.Exporter))
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, fmt.Sprintf("tracing.sample_rate must be between 0 and 1, got %v", c.Tracing.SampleRate))
	}

	for alias, target := range c.Symbols.Aliases {
		if alias == "" || target == "" {
			errs = append(errs, fmt.Sprintf("symbols.aliases: empty name in %q -> %q", alias, target))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  - %s", ErrInvalidConfig, strings.Join(errs, "\n  - "))
	}

	return nil
}
