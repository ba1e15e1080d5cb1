package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q, want %q", cfg.Server.Port, "8080")
	}
	if cfg.Server.DBPath != "liste.db" {
		t.Errorf("db path = %q, want %q", cfg.Server.DBPath, "liste.db")
	}
	if cfg.Server.BaseURL != "http://localhost:8080" {
		t.Errorf("base url = %q", cfg.Server.BaseURL)
	}
	want := []string{"Carrefour", "Intermarché", "Picard", "Satoriz", "Autres"}
	if !slices.Equal(cfg.Catalog.Stores, want) {
		t.Errorf("stores = %v, want %v", cfg.Catalog.Stores, want)
	}
	if !slices.Contains(cfg.Catalog.Categories, "Fruits et Légumes") {
		t.Errorf("categories = %v, expected names with spaces to survive", cfg.Catalog.Categories)
	}
	if !cfg.Backup.OnClear {
		t.Error("expected archive on clear by default")
	}
	if cfg.BackupEnabled() {
		t.Error("backup should be disabled without S3 settings")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(Port, "9090")
	t.Setenv(Stores, "Lidl, Biocoop ,")
	t.Setenv(RateLimit, "10")
	t.Setenv(BackupOnClear, "false")
	t.Setenv(BackupInterval, "24h")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q, want %q", cfg.Server.Port, "9090")
	}
	if !slices.Equal(cfg.Catalog.Stores, []string{"Lidl", "Biocoop"}) {
		t.Errorf("stores = %v", cfg.Catalog.Stores)
	}
	if cfg.Server.RateLimit != 10 {
		t.Errorf("rate limit = %d, want 10", cfg.Server.RateLimit)
	}
	if cfg.Backup.OnClear {
		t.Error("expected archive on clear to be disabled")
	}
	if cfg.Backup.Interval != 24*time.Hour {
		t.Errorf("backup interval = %v, want 24h", cfg.Backup.Interval)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := "LISTE_PORT=7000\nLISTE_S3_BUCKET=archives\nLISTE_S3_ACCESS_KEY=ak\nLISTE_S3_SECRET_KEY=sk\nLISTE_BACKUP_PASSPHRASE=secret\n"
	if err := os.WriteFile(filepath.Join(dir, "liste.env"), []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "7000" {
		t.Errorf("port = %q, want %q", cfg.Server.Port, "7000")
	}
	if !cfg.BackupEnabled() {
		t.Error("expected backup enabled from config file")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load(t.TempDir())
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.Server.Port = "" }},
		{"no stores", func(c *Config) { c.Catalog.Stores = nil }},
		{"no users", func(c *Config) { c.Catalog.Users = nil }},
		{"zero rate limit", func(c *Config) { c.Server.RateLimit = 0 }},
		{"half VAPID", func(c *Config) { c.Push.VAPIDPublicKey = "pub" }},
		{"negative interval", func(c *Config) { c.Backup.Interval = -time.Second }},
	}
	for _, tt := range tests {
		cfg := base()
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}
