// Package config loads the server configuration from
// ~/.thoughtbox/config.yaml. A missing file means defaults; a malformed
// file is a startup error, never silently ignored.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Kastalien-Research/thoughtbox-sub003/internal/claims"
	"gopkg.in/yaml.v3"
)

// ConfigFile is the file name looked up under the data directory.
const ConfigFile = "config.yaml"

// WaitConfig bounds long-poll timeouts. Callers must always pass an
// explicit timeout; these bounds clamp what they may ask for.
type WaitConfig struct {
	DefaultTimeoutMs int `yaml:"default_timeout_ms"`
	MaxTimeoutMs     int `yaml:"max_timeout_ms"`
}

// Config is the full server configuration.
type Config struct {
	DataDir  string        `yaml:"data_dir"`
	Wait     WaitConfig    `yaml:"wait"`
	Conflict claims.Policy `yaml:"conflict"`
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir: filepath.Join(home, ".thoughtbox"),
		Wait: WaitConfig{
			DefaultTimeoutMs: 30_000,
			MaxTimeoutMs:     120_000,
		},
		Conflict: claims.DefaultPolicy(),
	}
}

// Load reads the config file under dir, applying defaults for any field
// left unset. A missing file returns the defaults.
func Load(dir string) (Config, error) {
	cfg := Default()
	if dir != "" {
		cfg.DataDir = dir
	}

	path := filepath.Join(cfg.DataDir, ConfigFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.Wait.DefaultTimeoutMs <= 0 {
		return fmt.Errorf("wait.default_timeout_ms must be positive, got %d", cfg.Wait.DefaultTimeoutMs)
	}
	if cfg.Wait.MaxTimeoutMs < cfg.Wait.DefaultTimeoutMs {
		return fmt.Errorf("wait.max_timeout_ms (%d) must be >= wait.default_timeout_ms (%d)",
			cfg.Wait.MaxTimeoutMs, cfg.Wait.DefaultTimeoutMs)
	}
	if cfg.Conflict.NumericTolerance < 0 {
		return fmt.Errorf("conflict.numeric_tolerance must be >= 0, got %f", cfg.Conflict.NumericTolerance)
	}
	if cfg.Conflict.HighSeverityConfidence < 0 || cfg.Conflict.HighSeverityConfidence > 1 {
		return fmt.Errorf("conflict.high_severity_confidence must be in [0, 1], got %f", cfg.Conflict.HighSeverityConfidence)
	}
	return nil
}
