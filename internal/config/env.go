package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables read by FromEnv.
const (
	EnvPreset      = "SWEEP_PRESET"
	EnvSeed        = "SWEEP_SEED"
	EnvDB          = "SWEEP_DB"
	EnvLogLevel    = "SWEEP_LOG_LEVEL"
	EnvLogFormat   = "SWEEP_LOG_FORMAT"
	EnvMetricsFile = "SWEEP_METRICS_FILE"
)

// Settings are the process-wide defaults for the CLI.
type Settings struct {
	Preset      string
	Seed        uint64
	HasSeed     bool
	DB          string
	LogLevel    string
	LogFormat   string
	MetricsFile string
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Settings {
	return Settings{
		Preset:    "beginner",
		DB:        ":memory:",
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// LoadDotEnv loads variables from path into the environment without
// overriding ones already set. An empty path means ".env", which may be
// absent; an explicit path must exist.
func LoadDotEnv(path string) error {
	if path == "" {
		err := godotenv.Load()
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// FromEnv returns Defaults overridden by any SWEEP_* variables.
func FromEnv() (Settings, error) {
	s := Defaults()
	s.Preset = getEnvWithDefault(EnvPreset, s.Preset)
	s.DB = getEnvWithDefault(EnvDB, s.DB)
	s.LogLevel = getEnvWithDefault(EnvLogLevel, s.LogLevel)
	s.LogFormat = getEnvWithDefault(EnvLogFormat, s.LogFormat)
	s.MetricsFile = getEnvWithDefault(EnvMetricsFile, s.MetricsFile)

	if raw, ok := os.LookupEnv(EnvSeed); ok && raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return Settings{}, fmt.Errorf("%s must be an unsigned integer: %w", EnvSeed, err)
		}
		s.Seed = seed
		s.HasSeed = true
	}

	switch s.LogFormat {
	case "text", "json":
	default:
		return Settings{}, fmt.Errorf("%s must be text or json, got %q", EnvLogFormat, s.LogFormat)
	}
	return s, nil
}

func getEnvWithDefault(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
