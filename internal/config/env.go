// Package config provides the configuration management for the fibengine
// application. This file contains environment variable utilities for
// configuration override.
package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// getEnvString returns the value of the environment variable with the given
// key (prefixed with EnvPrefix), or the default value if not set.
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvUint64 returns the value of the environment variable with the given
// key (prefixed with EnvPrefix) parsed as uint64, or the default value if not
// set or invalid.
func getEnvUint64(key string, defaultVal uint64) uint64 {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.ParseUint(val, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvInt returns the value of the environment variable with the given key
// (prefixed with EnvPrefix) parsed as int, or the default value if not set or
// invalid.
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvBool returns the value of the environment variable with the given key
// (prefixed with EnvPrefix) parsed as bool, or the default value if not set.
// Accepts "true", "1", "yes" as true; "false", "0", "no" as false
// (case-insensitive).
func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		switch strings.ToLower(val) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultVal
}

// getEnvDuration returns the value of the environment variable with the given
// key (prefixed with EnvPrefix) parsed as time.Duration, or the default value
// if not set or invalid. Accepts formats like "5m", "30s", "1h30m".
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// applyEnvOverrides applies environment variable values to configuration
// fields whose flags were not explicitly set on the command line. Flags take
// precedence over environment variables, which take precedence over defaults.
func applyEnvOverrides(cfg *AppConfig, fs *flag.FlagSet) {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})

	if !set["n"] {
		cfg.N = getEnvUint64("N", cfg.N)
	}
	if !set["start"] {
		cfg.Start = getEnvUint64("START", cfg.Start)
	}
	if !set["end"] {
		cfg.End = getEnvUint64("END", cfg.End)
	}
	if !set["algo"] {
		cfg.Algo = getEnvString("ALGO", cfg.Algo)
	}
	if !set["timeout"] {
		cfg.Timeout = getEnvDuration("TIMEOUT", cfg.Timeout)
	}
	if !set["threshold"] {
		cfg.Threshold = getEnvInt("THRESHOLD", cfg.Threshold)
	}
	if !set["max-n"] {
		cfg.MaxN = getEnvUint64("MAX_N", cfg.MaxN)
	}
	if !set["port"] {
		cfg.Port = getEnvString("PORT", cfg.Port)
	}
	if !set["server"] {
		cfg.ServerMode = getEnvBool("SERVER", cfg.ServerMode)
	}
	if !set["json"] {
		cfg.JSONOutput = getEnvBool("JSON", cfg.JSONOutput)
	}
	if !set["quiet"] && !set["q"] {
		cfg.Quiet = getEnvBool("QUIET", cfg.Quiet)
	}
	if !set["no-color"] {
		// NO_COLOR (without prefix) is the de facto cross-tool convention.
		if os.Getenv("NO_COLOR") != "" {
			cfg.NoColor = true
		} else {
			cfg.NoColor = getEnvBool("NO_COLOR", cfg.NoColor)
		}
	}
}
