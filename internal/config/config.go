// Package config loads b64pdf settings from YAML and environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	b64pdf "github.com/porticus-lab/go-b64pdf"
)

// Config holds all configuration for the CLI.
type Config struct {
	Output        OutputConfig        `yaml:"output"`
	Extraction    ExtractionConfig    `yaml:"extraction"`
	Browser       BrowserConfig       `yaml:"browser"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// OutputConfig controls where and under which name downloads land.
type OutputConfig struct {
	Dir             string `yaml:"dir"`
	DefaultFileName string `yaml:"default_file_name"`
}

// ExtractionConfig tunes the Base64 extraction heuristics.
type ExtractionConfig struct {
	FieldNames   []string `yaml:"field_names"`
	MinRunLength int      `yaml:"min_run_length"`
}

// BrowserConfig holds headless Chrome settings.
type BrowserConfig struct {
	Enabled      bool          `yaml:"enabled"`
	ChromePath   string        `yaml:"chrome_path"`
	NoSandbox    bool          `yaml:"no_sandbox"`
	AutoDownload bool          `yaml:"auto_download"`
	Headless     string        `yaml:"headless"`
	Timeout      time.Duration `yaml:"timeout"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Load reads configuration from a YAML file and applies environment overrides.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Dir:             ".",
			DefaultFileName: b64pdf.DefaultFileName,
		},
		Extraction: ExtractionConfig{
			FieldNames:   append([]string(nil), b64pdf.DefaultFieldNames...),
			MinRunLength: b64pdf.DefaultMinRunLength,
		},
		Browser: BrowserConfig{
			Headless: "new",
			Timeout:  30 * time.Second,
		},
		Observability: ObservabilityConfig{
			LogLevel:  "warn",
			LogFormat: "console",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Output.Dir) == "" {
		return fmt.Errorf("output dir must not be empty")
	}
	if len(c.Extraction.FieldNames) == 0 {
		return fmt.Errorf("extraction field_names must not be empty")
	}
	if c.Extraction.MinRunLength < 1 {
		return fmt.Errorf("min_run_length must be positive: %d", c.Extraction.MinRunLength)
	}
	if c.Browser.Timeout < 0 {
		return fmt.Errorf("browser timeout must not be negative: %s", c.Browser.Timeout)
	}
	if f := c.Observability.LogFormat; f != "json" && f != "console" {
		return fmt.Errorf("invalid log format: %s", f)
	}
	return nil
}

// Extractor builds the extraction chain described by the configuration.
func (c *Config) Extractor() b64pdf.Extractor {
	return b64pdf.Chain{
		b64pdf.JSONFields{Names: c.Extraction.FieldNames},
		b64pdf.LongestRun{MinLength: c.Extraction.MinRunLength},
	}
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("B64PDF_OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}

	if v := os.Getenv("B64PDF_DEFAULT_NAME"); v != "" {
		cfg.Output.DefaultFileName = v
	}

	if v := os.Getenv("B64PDF_FIELD_NAMES"); v != "" {
		var names []string
		for _, n := range strings.Split(v, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
		cfg.Extraction.FieldNames = names
	}

	if v := os.Getenv("B64PDF_BROWSER"); v != "" {
		cfg.Browser.Enabled = parseBool(v, cfg.Browser.Enabled)
	}

	if v := os.Getenv("B64PDF_CHROME_PATH"); v != "" {
		cfg.Browser.ChromePath = v
	}

	if v := os.Getenv("B64PDF_NO_SANDBOX"); v != "" {
		cfg.Browser.NoSandbox = parseBool(v, cfg.Browser.NoSandbox)
	}

	if v := os.Getenv("B64PDF_AUTO_DOWNLOAD"); v != "" {
		cfg.Browser.AutoDownload = parseBool(v, cfg.Browser.AutoDownload)
	}

	if v := os.Getenv("B64PDF_BROWSER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Browser.Timeout = d
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}

func parseBool(v string, fallback bool) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
