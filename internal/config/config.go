// Package config loads the engine-wide tunables every host process needs:
// the evaluation deadline default, trace coloring, and the optional world
// cache path. It follows the teacher's internal/config package (a handful
// of process-wide settings flipped once at startup) generalized into a
// single loaded struct, the way internal/ext/config.go loads funxy.yaml.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EngineConfig holds the tunables read by internal/world, internal/
// telemetry, and internal/worldcache.
type EngineConfig struct {
	// DefaultDeadline is the fallback evaluation deadline a host applies
	// via context.WithTimeout when it doesn't set one of its own.
	DefaultDeadline time.Duration `yaml:"default_deadline"`
	// TraceColor enables ANSI-colored trace rendering. It defaults to true;
	// Load does no terminal detection (telemetry.New checks the writer).
	TraceColor bool `yaml:"trace_color"`
	// WorldCachePath is an optional path to a SQLite world-link cache
	// (internal/worldcache). Empty disables caching.
	WorldCachePath string `yaml:"world_cache_path"`
}

// Default returns the engine's built-in defaults, used when no config file
// or environment overlay is present.
func Default() EngineConfig {
	return EngineConfig{DefaultDeadline: 30 * time.Second, TraceColor: true}
}

// Load reads an optional YAML file at path (missing file is not an error —
// Default() is returned instead), then overlays a .env file and any
// POLICY_* environment variables already in the process environment.
func Load(path string) (EngineConfig, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return EngineConfig{}, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return EngineConfig{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	// Best-effort .env load: a missing .env file is normal, not an error.
	_ = godotenv.Load()

	applyEnvOverlay(&cfg)
	return cfg, nil
}

func applyEnvOverlay(cfg *EngineConfig) {
	if v, ok := os.LookupEnv("POLICY_DEFAULT_DEADLINE"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.DefaultDeadline = d
		}
	}
	if v, ok := os.LookupEnv("POLICY_TRACE_COLOR"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.TraceColor = b
		}
	}
	if v, ok := os.LookupEnv("POLICY_WORLD_CACHE_PATH"); ok {
		cfg.WorldCachePath = v
	}
}

// IsTestMode mirrors the teacher's own config.IsTestMode flag. Nothing in
// this module reads or sets it; it has no effect on output.
var IsTestMode = false
