package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper: write a config file into a temp dir and return its path
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigFile_NoFile(t *testing.T) {
	cfg, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Nil(t, cfg, "Should return nil when config file doesn't exist")
}

func TestLoadConfigFile_DefaultPath(t *testing.T) {
	// Temporarily change HOME to point to an empty directory
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfigFile("")
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoadConfigFile_ValidConfig(t *testing.T) {
	path := writeConfigFile(t, `storage:
  type: "sqlite"
  dsn: "/path/to/articles.db"
fetch:
  max_attempts: 5
  timeout: 30s
  user_agent: "test-agent"
  headless: false
scrape:
  fail_fast: true
log:
  level: debug
summarizer:
  sentences: 2
`)

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "sqlite", cfg.Storage.Type)
	assert.Equal(t, "/path/to/articles.db", cfg.Storage.DSN)
	assert.Equal(t, 5, cfg.Fetch.MaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, "test-agent", cfg.Fetch.UserAgent)
	require.NotNil(t, cfg.Fetch.Headless)
	assert.False(t, *cfg.Fetch.Headless)
	assert.True(t, cfg.Scrape.FailFast)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 2, cfg.Summarizer.Sentences)
}

func TestLoadConfigFile_InvalidYAML(t *testing.T) {
	path := writeConfigFile(t, `storage:
  - this is invalid yaml because storage should be an object not a list
`)

	cfg, err := LoadConfigFile(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

// TestLoad_Defaults verifies defaults when no file exists
func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "csv", cfg.Storage.Type)
	assert.Empty(t, cfg.Storage.DSN)
	assert.Equal(t, 3, cfg.Fetch.MaxAttempts)
	assert.Equal(t, 60*time.Second, cfg.Fetch.Timeout)
	assert.True(t, cfg.IsHeadless())
	assert.False(t, cfg.Scrape.FailFast)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 3, cfg.Summarizer.Sentences)
}

// TestLoad_PartialConfig verifies unspecified values keep their defaults
func TestLoad_PartialConfig(t *testing.T) {
	path := writeConfigFile(t, `storage:
  dsn: "news.csv"
fetch:
  headless: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "csv", cfg.Storage.Type, "type should keep its default")
	assert.Equal(t, "news.csv", cfg.Storage.DSN)
	assert.Equal(t, 3, cfg.Fetch.MaxAttempts)
	assert.False(t, cfg.IsHeadless())
}

// TestApplyEnv verifies environment variables override file values
func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvStorageType, "sqlite")
	t.Setenv(EnvStorageDSN, "env.db")
	t.Setenv(EnvMaxAttempts, "7")
	t.Setenv(EnvTimeout, "5s")
	t.Setenv(EnvHeadless, "false")
	t.Setenv(EnvLogLevel, "debug")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, "sqlite", cfg.Storage.Type)
	assert.Equal(t, "env.db", cfg.Storage.DSN)
	assert.Equal(t, 7, cfg.Fetch.MaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.Fetch.Timeout)
	assert.False(t, cfg.IsHeadless())
	assert.Equal(t, "debug", cfg.Log.Level)
}

// TestApplyEnv_InvalidValues verifies unparseable values are ignored
func TestApplyEnv_InvalidValues(t *testing.T) {
	t.Setenv(EnvMaxAttempts, "many")
	t.Setenv(EnvTimeout, "soon")
	t.Setenv(EnvHeadless, "maybe")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, 3, cfg.Fetch.MaxAttempts)
	assert.Equal(t, 60*time.Second, cfg.Fetch.Timeout)
	assert.True(t, cfg.IsHeadless())
}
