package logger

import (
	"os"
	"strconv"
)

// envPrefix namespaces the logging environment variables.
const envPrefix = "AUTOCHECKS_"

// DefaultConfig logs at info level to stderr. AUTOCHECKS_LOG_LEVEL,
// AUTOCHECKS_LOG_OUTPUT, AUTOCHECKS_LOG_TIME_FORMAT and AUTOCHECKS_DEBUG
// override the defaults.
func DefaultConfig() *Config {
	cfg := &Config{
		Level:      env("LOG_LEVEL", "info"),
		Output:     env("LOG_OUTPUT", "stderr"),
		TimeFormat: env("LOG_TIME_FORMAT", ""),
	}

	if debug, err := strconv.ParseBool(env("DEBUG", "false")); err == nil {
		cfg.Debug = debug
	}

	return cfg
}

func env(key, fallback string) string {
	if v, ok := os.LookupEnv(envPrefix + key); ok && v != "" {
		return v
	}

	return fallback
}
