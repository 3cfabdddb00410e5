// Package config loads missiongate configuration from .gate/config.json with
// environment variable overrides. Missing config falls back to defaults; the
// gate itself never requires a config file to run.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all missiongate configuration.
type Config struct {
	Name    string `json:"name"`
	Version string `json:"version"`

	// External field extractor
	Extractor ExtractorConfig `json:"extractor"`

	// Mission event log
	Store StoreConfig `json:"store"`

	// Logging
	Logging LoggingConfig `json:"logging"`
}

// ExtractorConfig configures the external field extractor.
type ExtractorConfig struct {
	Enabled bool   `json:"enabled"`
	APIKey  string `json:"api_key"`
	Model   string `json:"model"`
	BaseURL string `json:"base_url"`
	Timeout string `json:"timeout"` // Go duration string, e.g. "5s"
}

// StoreConfig configures the mission event log.
type StoreConfig struct {
	DatabasePath string `json:"database_path"`
}

// LoggingConfig controls category file logging.
type LoggingConfig struct {
	DebugMode  bool            `json:"debug_mode"`
	Categories map[string]bool `json:"categories"`
	Level      string          `json:"level"`
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Name:    "missiongate",
		Version: "1.0.0",
		Extractor: ExtractorConfig{
			Enabled: false,
			BaseURL: "https://generativelanguage.googleapis.com/v1beta",
			Model:   "gemini-2.0-flash",
			Timeout: "5s",
		},
		Store: StoreConfig{
			DatabasePath: filepath.Join(".gate", "missions.db"),
		},
		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	return filepath.Join(workspace, ".gate", "config.json")
}

// Load reads config from workspace/.gate/config.json, applies defaults for
// missing sections, then applies environment overrides.
func Load(workspace string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the config to workspace/.gate/config.json, creating the
// directory if needed.
func (c *Config) Save(workspace string) error {
	dir := filepath.Join(workspace, ".gate")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(Path(workspace), data, 0644)
}

// applyEnvOverrides lets environment variables win over file values.
// GATE_API_KEY implies the extractor is enabled unless GATE_EXTRACTOR=off.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("GATE_API_KEY"); v != "" {
		c.Extractor.APIKey = v
		c.Extractor.Enabled = true
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" && c.Extractor.APIKey == "" {
		c.Extractor.APIKey = v
		c.Extractor.Enabled = true
	}
	if v := os.Getenv("GATE_EXTRACTOR"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err == nil {
			c.Extractor.Enabled = enabled
		} else if v == "off" {
			c.Extractor.Enabled = false
		}
	}
	if v := os.Getenv("GATE_EXTRACTOR_MODEL"); v != "" {
		c.Extractor.Model = v
	}
	if v := os.Getenv("GATE_DB_PATH"); v != "" {
		c.Store.DatabasePath = v
	}
	if v := os.Getenv("GATE_DEBUG"); v != "" {
		if debug, err := strconv.ParseBool(v); err == nil {
			c.Logging.DebugMode = debug
		}
	}
	if v := os.Getenv("GATE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// ExtractorTimeout parses the extractor timeout, defaulting to 5s.
func (c *Config) ExtractorTimeout() time.Duration {
	d, err := time.ParseDuration(c.Extractor.Timeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}
