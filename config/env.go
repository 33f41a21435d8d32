package config

import (
	"os"
	"strconv"
	"time"
)

// Environment variables that override file values
const (
	EnvStorageType = "NEWSDIGEST_STORAGE_TYPE"
	EnvStorageDSN  = "NEWSDIGEST_STORAGE_DSN"
	EnvMaxAttempts = "NEWSDIGEST_MAX_ATTEMPTS"
	EnvTimeout     = "NEWSDIGEST_FETCH_TIMEOUT"
	EnvUserAgent   = "NEWSDIGEST_USER_AGENT"
	EnvHeadless    = "NEWSDIGEST_HEADLESS"
	EnvLogLevel    = "NEWSDIGEST_LOG_LEVEL"
)

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// ApplyEnv overlays NEWSDIGEST_* environment variables onto c. Values that
// don't parse are ignored.
func (c *FileConfig) ApplyEnv() {
	c.Storage.Type = getEnv(EnvStorageType, c.Storage.Type)
	c.Storage.DSN = getEnv(EnvStorageDSN, c.Storage.DSN)
	c.Fetch.UserAgent = getEnv(EnvUserAgent, c.Fetch.UserAgent)
	c.Log.Level = getEnv(EnvLogLevel, c.Log.Level)

	if n, err := strconv.Atoi(getEnv(EnvMaxAttempts, "")); err == nil && n > 0 {
		c.Fetch.MaxAttempts = n
	}
	if d, err := time.ParseDuration(getEnv(EnvTimeout, "")); err == nil && d > 0 {
		c.Fetch.Timeout = d
	}
	if b, err := strconv.ParseBool(getEnv(EnvHeadless, "")); err == nil {
		c.Fetch.Headless = &b
	}
}
