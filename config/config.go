// Package config holds the optional YAML run configuration of the
// jwreftools command.
package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/hbushouse/jwreftools/reffile"
)

// Config is the run configuration. Command-line flags take precedence over
// it, and environment variables over the file.
type Config struct {
	Author          string                `yaml:"author"`
	Logging         LoggingConfig         `yaml:"logging"`
	SpecWCS         SpecWCSConfig         `yaml:"specwcs"`
	WavelengthRange WavelengthRangeConfig `yaml:"wavelengthrange"`
}

// LoggingConfig configures diagnostics.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// SpecWCSConfig configures the specwcs command.
type SpecWCSConfig struct {
	OutDir string `yaml:"outdir"`
	Jobs   int    `yaml:"jobs"`
}

// WavelengthRangeConfig configures the wavelengthrange command.
type WavelengthRangeConfig struct {
	Mode        string `yaml:"mode"`    // wfss, tsgrism
	RangesFile  string `yaml:"ranges"`  // CSV override of the built-in table
	ExtractFile string `yaml:"extract"` // CSV override of the extract orders
}

// Environment variables read by Load.
const (
	EnvAuthor   = "JWREFTOOLS_AUTHOR"
	EnvLogLevel = "JWREFTOOLS_LOG_LEVEL"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Author: reffile.DefaultAuthor,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		SpecWCS: SpecWCSConfig{
			OutDir: ".",
			Jobs:   runtime.NumCPU(),
		},
		WavelengthRange: WavelengthRangeConfig{
			Mode: "wfss",
		},
	}
}

// Load reads the configuration at path over the defaults and applies the
// environment overrides. An empty path yields the defaults plus overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if author := os.Getenv(EnvAuthor); author != "" {
		c.Author = author
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Logging.Level = level
	}
}

var (
	validLevels  = []string{"debug", "info", "warn", "error"}
	validFormats = []string{"console", "json"}
	validModes   = []string{"wfss", "tsgrism"}
)

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Author == "" {
		return fmt.Errorf("author must not be empty")
	}
	if !contains(validLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, validLevels)
	}
	if !contains(validFormats, c.Logging.Format) {
		return fmt.Errorf("invalid log format: %s (valid: %v)", c.Logging.Format, validFormats)
	}
	if !contains(validModes, c.WavelengthRange.Mode) {
		return fmt.Errorf("invalid wavelengthrange mode: %s (valid: %v)", c.WavelengthRange.Mode, validModes)
	}
	if c.SpecWCS.Jobs < 1 {
		return fmt.Errorf("specwcs jobs must be at least 1, got %d", c.SpecWCS.Jobs)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
