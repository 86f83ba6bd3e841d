package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadProjectConfig(t *testing.T) {
	t.Run("valid config loads", func(t *testing.T) {
		cfg, err := LoadProjectConfig(filepath.Join("testdata", "valid_config.yaml"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.SourcePath != "encounter-source/sunless-citadel" {
			t.Fatalf("expected source path, got %q", cfg.SourcePath)
		}
		if cfg.Prefix != "Citadel" {
			t.Fatalf("expected prefix, got %q", cfg.Prefix)
		}
		if *cfg.Scan.IndexDepth != 5 {
			t.Fatalf("expected index depth 5, got %d", *cfg.Scan.IndexDepth)
		}
	})

	t.Run("defaults applied", func(t *testing.T) {
		path := writeTempConfig(t, "version: 1\nsource_path: encounter-source/x\n")
		cfg, err := LoadProjectConfig(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Prefix != DefaultPrefix {
			t.Fatalf("expected default prefix, got %q", cfg.Prefix)
		}
		if cfg.Destination != "world" {
			t.Fatalf("expected world destination, got %q", cfg.Destination)
		}
		if *cfg.Scan.ManifestDepth != 2 || *cfg.Scan.IndexDepth != 4 || *cfg.Scan.RepairDepth != 6 {
			t.Fatalf("unexpected scan depths: %d %d %d", *cfg.Scan.ManifestDepth, *cfg.Scan.IndexDepth, *cfg.Scan.RepairDepth)
		}
		if cfg.Scan.MaxFiles != 25000 {
			t.Fatalf("expected max files 25000, got %d", cfg.Scan.MaxFiles)
		}
		if len(cfg.UserDataRoots) != 1 || cfg.UserDataRoots[0] != "encounter-source" {
			t.Fatalf("unexpected user data roots: %#v", cfg.UserDataRoots)
		}
		if cfg.Database.DSN != DefaultDSN {
			t.Fatalf("expected default dsn, got %q", cfg.Database.DSN)
		}
	})

	t.Run("explicit zero depth kept", func(t *testing.T) {
		path := writeTempConfig(t, "version: 1\nscan:\n  manifest_depth: 0\n")
		cfg, err := LoadProjectConfig(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if *cfg.Scan.ManifestDepth != 0 {
			t.Fatalf("expected manifest depth 0, got %d", *cfg.Scan.ManifestDepth)
		}
		if *cfg.Scan.IndexDepth != DefaultIndexDepth {
			t.Fatalf("expected default index depth, got %d", *cfg.Scan.IndexDepth)
		}
	})

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("ENCOUNTERPORT_PREFIX", "FromEnv")
		t.Setenv("ENCOUNTERPORT_DATABASE_DSN", "sqlite://:memory:")
		path := writeTempConfig(t, "version: 1\nprefix: FromFile\n")
		cfg, err := LoadProjectConfig(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Prefix != "FromEnv" {
			t.Fatalf("expected env prefix, got %q", cfg.Prefix)
		}
		if cfg.Database.DSN != "sqlite://:memory:" {
			t.Fatalf("expected env dsn, got %q", cfg.Database.DSN)
		}
	})

	t.Run("unsupported version", func(t *testing.T) {
		path := writeTempConfig(t, "version: 2\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unsupported destination", func(t *testing.T) {
		path := writeTempConfig(t, "version: 1\ndestination: compendium\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unsupported dsn", func(t *testing.T) {
		path := writeTempConfig(t, "version: 1\ndatabase:\n  dsn: mysql://localhost\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("negative depth", func(t *testing.T) {
		path := writeTempConfig(t, "version: 1\nscan:\n  index_depth: -1\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unsupported log format", func(t *testing.T) {
		path := writeTempConfig(t, "version: 1\nlogging:\n  format: xml\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("duplicate user data roots", func(t *testing.T) {
		path := writeTempConfig(t, "version: 1\nuser_data_roots: [assets, Assets]\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("file not found", func(t *testing.T) {
		if _, err := LoadProjectConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeTempConfig(t, "version: [\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := validateProjectConfig(cfg); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
}

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}
