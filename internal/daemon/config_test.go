package daemon

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "127.0.0.1")
	}
	if cfg.API.Port != 8420 {
		t.Errorf("API.Port = %d, want %d", cfg.API.Port, 8420)
	}
	if cfg.Scoring.DayCompletionRatio != 0.7 {
		t.Errorf("Scoring.DayCompletionRatio = %v, want 0.7", cfg.Scoring.DayCompletionRatio)
	}
	if cfg.Scoring.MissPenaltyCap != 3 {
		t.Errorf("Scoring.MissPenaltyCap = %d, want 3", cfg.Scoring.MissPenaltyCap)
	}
	if !cfg.Schedule.Enabled || cfg.Schedule.DailyRefreshHour != 3 {
		t.Errorf("Schedule = %+v, want enabled with refresh hour 3", cfg.Schedule)
	}
	if !cfg.Telemetry.Prometheus {
		t.Error("Telemetry.Prometheus should default to true")
	}
}

func TestLoadConfig_NoFile(t *testing.T) {
	t.Setenv("HONOR_HOME", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.API.Port != DefaultConfig().API.Port {
		t.Errorf("missing file should yield defaults, got port %d", cfg.API.Port)
	}
}

func TestLoadConfig_PartialOverride(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HONOR_HOME", home)

	raw := "[api]\nport = 9000\n\n[scoring]\nmiss_penalty_cap = 5\n"
	if err := os.WriteFile(filepath.Join(home, "config.toml"), []byte(raw), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.API.Port != 9000 {
		t.Errorf("API.Port = %d, want override 9000", cfg.API.Port)
	}
	if cfg.Scoring.MissPenaltyCap != 5 {
		t.Errorf("MissPenaltyCap = %d, want override 5", cfg.Scoring.MissPenaltyCap)
	}
	// Untouched keys keep defaults.
	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want default", cfg.API.Host)
	}
	if cfg.Scoring.DayCompletionRatio != 0.7 {
		t.Errorf("DayCompletionRatio = %v, want default", cfg.Scoring.DayCompletionRatio)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	t.Setenv("HONOR_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.API.Port = 8888
	cfg.Schedule.ActiveWindowDays = 14

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if loaded.API.Port != 8888 {
		t.Errorf("Port = %d, want 8888", loaded.API.Port)
	}
	if loaded.Schedule.ActiveWindowDays != 14 {
		t.Errorf("ActiveWindowDays = %d, want 14", loaded.Schedule.ActiveWindowDays)
	}
}
