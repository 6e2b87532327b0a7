// Package config loads finz settings from a TOML file. Everything has a
// working default; a missing config file is not an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/dortega/finz/internal/forecast"
	"github.com/shopspring/decimal"
)

// Config holds all finz configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Thresholds ThresholdsConfig `toml:"thresholds"`
	Taxonomy   TaxonomyConfig   `toml:"taxonomy"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DBPath string `toml:"db_path,omitempty"`
	// Actor is the identity stamped on submissions, acceptances, and
	// month closes when --actor is not given on the command line.
	Actor string `toml:"actor,omitempty"`
	// HorizonMonths is the default forecast window for grid and summary
	// views when no explicit range is requested.
	HorizonMonths int `toml:"horizon_months"`
}

// ThresholdsConfig holds the budget-health classification boundaries as
// whole percentages of budget consumption.
type ThresholdsConfig struct {
	FavorableBelowPct int `toml:"favorable_below_pct"`
	AtRiskAbovePct    int `toml:"at_risk_above_pct"`
}

// TaxonomyConfig overlays extra legacy aliases onto the built-in catalog.
// Keys are the identifiers as source systems spell them, values are
// canonical category codes.
type TaxonomyConfig struct {
	Aliases map[string]string `toml:"aliases,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			HorizonMonths: 12,
		},
		Thresholds: ThresholdsConfig{
			FavorableBelowPct: 75,
			AtRiskAbovePct:    90,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "finz")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "finz")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads a config file at an explicit path. Defaults fill in for a
// missing file; a present but unparsable file is an error.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Thresholds.FavorableBelowPct <= 0 || c.Thresholds.AtRiskAbovePct <= 0 {
		return fmt.Errorf("config: thresholds must be positive percentages")
	}
	if c.Thresholds.FavorableBelowPct >= c.Thresholds.AtRiskAbovePct {
		return fmt.Errorf("config: favorable_below_pct %d must be below at_risk_above_pct %d",
			c.Thresholds.FavorableBelowPct, c.Thresholds.AtRiskAbovePct)
	}
	if c.General.HorizonMonths < 1 {
		return fmt.Errorf("config: horizon_months must be >= 1")
	}
	return nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// DBPath returns the database path from env var, config, or the default
// under the user's home directory, in that order.
func DBPath(cfg Config) string {
	if p := os.Getenv("FINZ_DB"); p != "" {
		return p
	}
	if cfg.General.DBPath != "" {
		return cfg.General.DBPath
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".finz", "finz.db")
}

// ForecastThresholds converts the configured percentages into the
// classification boundaries the forecast package works with.
func ForecastThresholds(cfg Config) forecast.Thresholds {
	return forecast.Thresholds{
		FavorableBelowPct: decimal.NewFromInt(int64(cfg.Thresholds.FavorableBelowPct)),
		AtRiskAbovePct:    decimal.NewFromInt(int64(cfg.Thresholds.AtRiskAbovePct)),
	}
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
