// Package daemon manages the honor daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all daemon configuration.
type Config struct {
	Node      NodeConfig      `toml:"node"`
	API       APIConfig       `toml:"api"`
	Scoring   ScoringConfig   `toml:"scoring"`
	Schedule  ScheduleConfig  `toml:"schedule"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Logging   LoggingConfig   `toml:"logging"`
}

// NodeConfig identifies this deployment.
type NodeConfig struct {
	ID string `toml:"id"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// ScoringConfig tunes the aggregation fold.
type ScoringConfig struct {
	// DayCompletionRatio is the fraction of a day's logged habits that
	// must be completed for the day to count.
	DayCompletionRatio float64 `toml:"day_completion_ratio"`
	// MissPenaltyCap is how many consecutive misses cost points.
	MissPenaltyCap int `toml:"miss_penalty_cap"`
}

// ScheduleConfig controls the recomputation triggers.
type ScheduleConfig struct {
	Enabled          bool `toml:"enabled"`
	CloseDelayMin    int  `toml:"close_delay_minutes"`
	DailyRefreshHour int  `toml:"daily_refresh_hour"`
	ActiveWindowDays int  `toml:"active_window_days"`
}

// TelemetryConfig controls observability endpoints.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	homeDir := honorHome()
	return Config{
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8420,
		},
		Scoring: ScoringConfig{
			DayCompletionRatio: 0.7,
			MissPenaltyCap:     3,
		},
		Schedule: ScheduleConfig{
			Enabled:          true,
			CloseDelayMin:    5,
			DailyRefreshHour: 3,
			ActiveWindowDays: 7,
		},
		Telemetry: TelemetryConfig{
			Prometheus: true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(homeDir, "honor.log"),
		},
	}
}

// LoadConfig reads config from ~/.honor/config.toml, falling back to defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(honorHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // No config file yet — use defaults
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes the config to ~/.honor/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(honorHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// honorHome returns the honor data directory.
func honorHome() string {
	if env := os.Getenv("HONOR_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".honor")
}

// HonorHome is exported for use by other packages.
func HonorHome() string {
	return honorHome()
}
