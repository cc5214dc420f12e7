// Package config resolves the process configuration for the atlas server.
//
// Everything the server depends on is explicit here: the root directory
// that registered document paths resolve against, an optional manifest
// path, the data directory for the activity store, and the log level.
// Values come from flags first, then environment variables, then
// defaults. There is no config file discovery and no dependency on
// where the binary itself is installed.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Environment variables consulted for fields not set by flags.
const (
	EnvRoot     = "ATLAS_ROOT"
	EnvManifest = "ATLAS_MANIFEST"
	EnvDataDir  = "ATLAS_DATA_DIR"
	EnvLogLevel = "ATLAS_LOG_LEVEL"
)

// DefaultLogLevel is used when neither flag nor environment sets one.
const DefaultLogLevel = "info"

// Config holds the resolved process configuration.
type Config struct {
	// RootDir is the absolute directory all registered document paths
	// resolve against.
	RootDir string

	// ManifestPath optionally points at a YAML project manifest. Empty
	// means the built-in project table is used.
	ManifestPath string

	// DataDir holds the activity database. Empty disables recording.
	DataDir string

	// LogLevel is a zap level string: debug, info, warn, or error.
	LogLevel string
}

// Resolve fills unset fields of cfg from the environment and defaults,
// then validates the result. Fields already set (from flags) win over
// the environment.
//
// The root defaults to the current working directory, made absolute,
// and must exist as a directory. The data dir defaults to ~/.atlas and
// stays empty when no home directory is available, which disables
// activity recording downstream.
func Resolve(cfg Config) (Config, error) {
	if cfg.RootDir == "" {
		cfg.RootDir = envOrDefault(EnvRoot, "")
	}
	if cfg.RootDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("resolving working directory: %w", err)
		}
		cfg.RootDir = wd
	}

	if cfg.ManifestPath == "" {
		cfg.ManifestPath = envOrDefault(EnvManifest, "")
	}

	if cfg.DataDir == "" {
		cfg.DataDir = envOrDefault(EnvDataDir, "")
	}
	if cfg.DataDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.DataDir = filepath.Join(home, ".atlas")
		}
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = envOrDefault(EnvLogLevel, DefaultLogLevel)
	}

	abs, err := filepath.Abs(cfg.RootDir)
	if err != nil {
		return Config{}, fmt.Errorf("resolving root %s: %w", cfg.RootDir, err)
	}
	cfg.RootDir = abs

	info, err := os.Stat(cfg.RootDir)
	if err != nil {
		return Config{}, fmt.Errorf("root directory %s: %w", cfg.RootDir, err)
	}
	if !info.IsDir() {
		return Config{}, fmt.Errorf("root %s is not a directory", cfg.RootDir)
	}

	return cfg, nil
}

// envOrDefault returns the value of key, or def when unset or empty.
func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
