package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Server.Port)
	}
	if cfg.Overdue.ThresholdDays != 4 {
		t.Fatalf("expected default threshold 4, got %d", cfg.Overdue.ThresholdDays)
	}
	if cfg.Overdue.Message == "" {
		t.Fatal("expected a default overdue message")
	}
	if cfg.Overdue.Cron != "0 0 0 * * *" {
		t.Fatalf("unexpected default cron: %q", cfg.Overdue.Cron)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port, got %q", cfg.Server.Port)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := []byte("server:\n  port: \"9090\"\noverdue:\n  threshold_days: 7\n  message: \"Bring it back.\"\n")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("expected port 9090, got %q", cfg.Server.Port)
	}
	if cfg.Overdue.ThresholdDays != 7 {
		t.Fatalf("expected threshold 7, got %d", cfg.Overdue.ThresholdDays)
	}
	if cfg.Overdue.Message != "Bring it back." {
		t.Fatalf("unexpected message: %q", cfg.Overdue.Message)
	}
	// Values the file leaves out keep their defaults.
	if cfg.Overdue.Cron != "0 0 0 * * *" {
		t.Fatalf("unexpected cron: %q", cfg.Overdue.Cron)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: \"9090\"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("PORT", "7070")
	t.Setenv("OVERDUE_THRESHOLD_DAYS", "10")
	t.Setenv("OVERDUE_MESSAGE", "Overdue!")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Fatalf("expected env port 7070, got %q", cfg.Server.Port)
	}
	if cfg.Overdue.ThresholdDays != 10 {
		t.Fatalf("expected env threshold 10, got %d", cfg.Overdue.ThresholdDays)
	}
	if cfg.Overdue.Message != "Overdue!" {
		t.Fatalf("unexpected message: %q", cfg.Overdue.Message)
	}
}

func TestLoadClampsNegativeThreshold(t *testing.T) {
	t.Setenv("OVERDUE_THRESHOLD_DAYS", "-3")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Overdue.ThresholdDays != 0 {
		t.Fatalf("expected clamped threshold 0, got %d", cfg.Overdue.ThresholdDays)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [broken"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed config file")
	}
}
