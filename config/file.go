package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// StorageConfig selects the record store backend.
type StorageConfig struct {
	Type string `yaml:"type"` // "csv" or "sqlite"
	DSN  string `yaml:"dsn"`
}

// FetchConfig controls page retrieval.
type FetchConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Timeout     time.Duration `yaml:"timeout"`
	UserAgent   string        `yaml:"user_agent"`
	Headless    *bool         `yaml:"headless"`
}

// ScrapeConfig controls the extraction pipeline.
type ScrapeConfig struct {
	FailFast bool `yaml:"fail_fast"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// SummarizerConfig controls the summarization stage.
type SummarizerConfig struct {
	Sentences int `yaml:"sentences"`
}

// FileConfig represents the structure of ~/.newsdigest/config.yaml.
type FileConfig struct {
	Storage    StorageConfig    `yaml:"storage"`
	Fetch      FetchConfig      `yaml:"fetch"`
	Scrape     ScrapeConfig     `yaml:"scrape"`
	Log        LogConfig        `yaml:"log"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
}

// Default returns the configuration used when no file is present.
func Default() *FileConfig {
	headless := true
	return &FileConfig{
		Storage: StorageConfig{Type: "csv"},
		Fetch: FetchConfig{
			MaxAttempts: 3,
			Timeout:     60 * time.Second,
			UserAgent:   "newsdigest/1.0 (news article scraper)",
			Headless:    &headless,
		},
		Log:        LogConfig{Level: "info"},
		Summarizer: SummarizerConfig{Sentences: 3},
	}
}

// DefaultPath returns ~/.newsdigest/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".newsdigest", "config.yaml"), nil
}

// LoadConfigFile loads configuration from path, or from DefaultPath when path
// is empty. Returns nil if the file doesn't exist (not an error). Returns
// error if the file exists but cannot be parsed.
func LoadConfigFile(path string) (*FileConfig, error) {
	if path == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// Load reads the config file at path and overlays it on Default. A missing
// file yields the defaults.
func Load(path string) (*FileConfig, error) {
	cfg := Default()

	fileCfg, err := LoadConfigFile(path)
	if err != nil {
		return nil, err
	}
	if fileCfg != nil {
		cfg.Merge(fileCfg)
	}

	return cfg, nil
}

// Merge overlays every non-zero value of other onto c.
func (c *FileConfig) Merge(other *FileConfig) {
	if other.Storage.Type != "" {
		c.Storage.Type = other.Storage.Type
	}
	if other.Storage.DSN != "" {
		c.Storage.DSN = other.Storage.DSN
	}
	if other.Fetch.MaxAttempts > 0 {
		c.Fetch.MaxAttempts = other.Fetch.MaxAttempts
	}
	if other.Fetch.Timeout > 0 {
		c.Fetch.Timeout = other.Fetch.Timeout
	}
	if other.Fetch.UserAgent != "" {
		c.Fetch.UserAgent = other.Fetch.UserAgent
	}
	if other.Fetch.Headless != nil {
		c.Fetch.Headless = other.Fetch.Headless
	}
	if other.Scrape.FailFast {
		c.Scrape.FailFast = true
	}
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.Development {
		c.Log.Development = true
	}
	if other.Summarizer.Sentences > 0 {
		c.Summarizer.Sentences = other.Summarizer.Sentences
	}
}

// IsHeadless reports whether the rendering browser runs without a window.
func (c *FileConfig) IsHeadless() bool {
	return c.Fetch.Headless == nil || *c.Fetch.Headless
}
