package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TUTORING_CONFIG_FILE",
		"TUTORING_HTTP_PORT",
		"TUTORING_SQLITE_PATH",
		"TUTORING_CONVERSION_STRATEGY",
		"TUTORING_CACHE_TTL",
		"TUTORING_CACHE_MAX_ENTRIES",
		"TUTORING_WORKING_HOURS_START",
		"TUTORING_WORKING_HOURS_END",
		"TUTORING_MIN_SESSION_MINUTES",
		"TUTORING_MAX_SESSION_MINUTES",
	} {
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
}

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLitePath != "tutoring.db" {
			t.Fatalf("unexpected default database path: %q", cfg.SQLitePath)
		}
		if cfg.ConversionStrategy != "iana" {
			t.Fatalf("expected default conversion strategy iana, got %q", cfg.ConversionStrategy)
		}
		if cfg.WorkingHoursStart != "08:00" || cfg.WorkingHoursEnd != "22:00" {
			t.Fatalf("unexpected working hours window: %s-%s", cfg.WorkingHoursStart, cfg.WorkingHoursEnd)
		}
	})

	t.Run("parses duration and numeric fields", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("TUTORING_HTTP_PORT", "9090")
		t.Setenv("TUTORING_SQLITE_PATH", "/tmp/tutoring.db")
		t.Setenv("TUTORING_CACHE_TTL", "90s")
		t.Setenv("TUTORING_CACHE_MAX_ENTRIES", "512")
		t.Setenv("TUTORING_MIN_SESSION_MINUTES", "30")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.SQLitePath != "/tmp/tutoring.db" {
			t.Fatalf("unexpected database path: %q", cfg.SQLitePath)
		}
		if cfg.CacheTTL != 90*time.Second {
			t.Fatalf("expected cache TTL 90s, got %s", cfg.CacheTTL)
		}
		if cfg.CacheMaxEntries != 512 {
			t.Fatalf("expected 512 cache entries, got %d", cfg.CacheMaxEntries)
		}
		if cfg.MinSessionMinutes != 30 {
			t.Fatalf("expected min session 30 minutes, got %d", cfg.MinSessionMinutes)
		}
	})

	t.Run("rejects malformed numeric values", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("TUTORING_HTTP_PORT", "not-a-port")

		if _, err := Load(); err == nil {
			t.Fatal("expected error for malformed port")
		}
	})

	t.Run("rejects unknown conversion strategy", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("TUTORING_CONVERSION_STRATEGY", "sundial")

		if _, err := Load(); err == nil {
			t.Fatal("expected error for unknown conversion strategy")
		}
	})
}

func TestLoader_ConfigFile(t *testing.T) {

	t.Run("reads YAML file and lets environment win", func(t *testing.T) {
		clearEnv(t)

		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		contents := []byte("http_port: 7070\nsqlite_path: /var/lib/tutoring.db\nconversion_strategy: legacy\ncache_max_entries: 64\n")
		if err := os.WriteFile(path, contents, 0o600); err != nil {
			t.Fatalf("write config file: %v", err)
		}

		t.Setenv("TUTORING_CONFIG_FILE", path)
		t.Setenv("TUTORING_HTTP_PORT", "9090")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 {
			t.Fatalf("environment must win over the file, got port %d", cfg.HTTPPort)
		}
		if cfg.SQLitePath != "/var/lib/tutoring.db" {
			t.Fatalf("unexpected database path: %q", cfg.SQLitePath)
		}
		if cfg.ConversionStrategy != "legacy" {
			t.Fatalf("expected legacy strategy from file, got %q", cfg.ConversionStrategy)
		}
		if cfg.CacheMaxEntries != 64 {
			t.Fatalf("expected 64 cache entries from file, got %d", cfg.CacheMaxEntries)
		}
	})

	t.Run("errors on missing file", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("TUTORING_CONFIG_FILE", "/does/not/exist.yaml")

		if _, err := Load(); err == nil {
			t.Fatal("expected error for missing config file")
		}
	})
}
