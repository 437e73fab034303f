// Package config loads CLI configuration from a YAML file with environment
// variable overrides.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mizupe/appliedml/pkg/errors"
)

// Config holds the runtime settings of the appliedml CLI.
type Config struct {
	// CacheDir is where downloaded datasets are stored.
	CacheDir string `yaml:"cache_dir"`

	// LogLevel is a zerolog level name: trace, debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// LogConsole switches from JSON logs to human-readable console output.
	LogConsole bool `yaml:"log_console"`

	// FetchTimeout bounds each dataset download.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// Seed is the default random seed for splits and model training.
	Seed int64 `yaml:"seed"`
}

// Default returns the configuration used when no file or overrides exist.
func Default() Config {
	cacheDir := ".appliedml-cache"
	if home, err := os.UserHomeDir(); err == nil {
		cacheDir = filepath.Join(home, ".cache", "appliedml")
	}
	return Config{
		CacheDir:     cacheDir,
		LogLevel:     "info",
		LogConsole:   false,
		FetchTimeout: 5 * time.Minute,
		Seed:         42,
	}
}

// Load reads the YAML file at path on top of the defaults, then applies
// environment overrides. An empty path skips the file and a missing file is
// not an error; a malformed file is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to env overrides
		case err != nil:
			return Config{}, errors.Wrapf(err, "config: read %s", path)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, errors.Wrapf(err, "config: parse %s", path)
			}
		}
	}

	applyEnv(&cfg)

	if cfg.FetchTimeout <= 0 {
		return Config{}, errors.NewValidationError("fetch_timeout", "must be positive", cfg.FetchTimeout.String())
	}
	return cfg, nil
}

// applyEnv overrides fields from APPLIEDML_* environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("APPLIEDML_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("APPLIEDML_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("APPLIEDML_LOG_CONSOLE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.LogConsole = b
		}
	}
	if v := os.Getenv("APPLIEDML_FETCH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.FetchTimeout = d
		}
	}
	if v := os.Getenv("APPLIEDML_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Seed = n
		}
	}
}
