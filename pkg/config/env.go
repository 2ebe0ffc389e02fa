// Package config provides environment variable helpers with defaulting
// and validation, shared by every component that loads configuration.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnvString returns the environment variable's value, or defaultValue
// when the variable is unset or empty.
//
// Example:
//
//	path := GetEnvString("ENTITIES_CONFIG", "entities.yaml")
func GetEnvString(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// GetEnvInt returns the environment variable parsed as an integer.
// Unparseable values fall back to defaultValue with a warning; a bad
// setting should degrade the knob, not the process.
//
// Example:
//
//	port := GetEnvInt("METRICS_PORT", 9090)
func GetEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("invalid integer value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Int("default", defaultValue))
		return defaultValue
	}
	return v
}

// GetEnvBool returns the environment variable parsed as a boolean,
// accepting the forms strconv.ParseBool accepts ("1", "t", "true",
// "0", "f", "false", any casing). Unparseable values fall back to
// defaultValue with a warning.
//
// Example:
//
//	seed := GetEnvBool("SEED_ENTITIES", false)
func GetEnvBool(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Warn("invalid boolean value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Bool("default", defaultValue))
		return defaultValue
	}
	return v
}

// GetEnvDuration returns the environment variable parsed with
// time.ParseDuration ("30s", "1h30m"). Unparseable values fall back to
// defaultValue with a warning.
//
// Example:
//
//	timeout := GetEnvDuration("FEED_FETCH_TIMEOUT", 10*time.Second)
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("invalid duration value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.String("default", defaultValue.String()))
		return defaultValue
	}
	return v
}

// GetEnvStringList returns the environment variable split on commas,
// with entries trimmed and empties dropped. An unset variable, or one
// whose entries are all empty, yields defaultValue.
//
// Example:
//
//	relays := GetEnvStringList("FEED_RELAYS", nil)
//	// FEED_RELAYS="allorigins=https://api.allorigins.win/raw?url=%s, corsproxy=https://corsproxy.io/?%s"
func GetEnvStringList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
