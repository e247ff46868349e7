package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigurationDefaults(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Migration.BaseURL != "https://www.example.com" {
		t.Errorf("BaseURL = %q", cfg.Migration.BaseURL)
	}
	if cfg.Migration.HeadingLevels != 1 {
		t.Errorf("HeadingLevels = %d, want 1", cfg.Migration.HeadingLevels)
	}
	if cfg.Migration.ColumnBreaks != ColumnBreakModeKeep {
		t.Errorf("ColumnBreaks = %v, want keep", cfg.Migration.ColumnBreaks)
	}
	if cfg.Migration.Lookup.Format != LookupFmtCSV {
		t.Errorf("Lookup.Format = %v, want csv", cfg.Migration.Lookup.Format)
	}
	if !cfg.Migration.FixZip {
		t.Error("FixZip must default to true")
	}
	if cfg.Migration.Bundle {
		t.Error("Bundle must default to false")
	}
	if cfg.Logging.ConsoleLogger.Level != "normal" {
		t.Errorf("console level = %q, want normal", cfg.Logging.ConsoleLogger.Level)
	}
	if cfg.Logging.FileLogger.Level != "none" {
		t.Errorf("file level = %q, want none", cfg.Logging.FileLogger.Level)
	}
}

func TestLoadConfigurationFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(path, []byte(`
migration:
  base_url: "https://legacy.example.org"
  site_hosts:
    - "example.org"
    - "www.example.org"
  heading_levels: 2
  column_breaks: drop
  two_column_pass: true
  lookup:
    format: sqlite
`), 0644)
	if err != nil {
		t.Fatalf("unable to write config file: %v", err)
	}

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Migration.BaseURL != "https://legacy.example.org" {
		t.Errorf("BaseURL = %q", cfg.Migration.BaseURL)
	}
	if len(cfg.Migration.SiteHosts) != 2 || cfg.Migration.SiteHosts[1] != "www.example.org" {
		t.Errorf("SiteHosts = %v", cfg.Migration.SiteHosts)
	}
	if cfg.Migration.HeadingLevels != 2 {
		t.Errorf("HeadingLevels = %d, want 2", cfg.Migration.HeadingLevels)
	}
	if cfg.Migration.ColumnBreaks != ColumnBreakModeDrop {
		t.Errorf("ColumnBreaks = %v, want drop", cfg.Migration.ColumnBreaks)
	}
	if !cfg.Migration.TwoColumnPass {
		t.Error("TwoColumnPass must be true")
	}
	if cfg.Migration.Lookup.Format != LookupFmtSQLite {
		t.Errorf("Lookup.Format = %v, want sqlite", cfg.Migration.Lookup.Format)
	}
	// untouched values keep template defaults
	if !cfg.Migration.FixZip {
		t.Error("FixZip must keep its default")
	}
}

func TestLoadConfigurationRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("migration:\n  no_such_knob: true\n"), 0644); err != nil {
		t.Fatalf("unable to write config file: %v", err)
	}
	if _, err := LoadConfiguration(path); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestLoadConfigurationValidates(t *testing.T) {
	t.Run("bad version", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("version: 2\n"), 0644); err != nil {
			t.Fatalf("unable to write config file: %v", err)
		}
		if _, err := LoadConfiguration(path); err == nil {
			t.Error("expected error for unsupported version")
		}
	})

	t.Run("bad heading levels", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("migration:\n  heading_levels: 7\n"), 0644); err != nil {
			t.Fatalf("unable to write config file: %v", err)
		}
		if _, err := LoadConfiguration(path); err == nil {
			t.Error("expected error for heading_levels out of range")
		}
	})

	t.Run("bad base url", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("migration:\n  base_url: \"not a url\"\n"), 0644); err != nil {
			t.Fatalf("unable to write config file: %v", err)
		}
		if _, err := LoadConfiguration(path); err == nil {
			t.Error("expected error for malformed base_url")
		}
	})
}

func TestLoadConfigurationMissingFile(t *testing.T) {
	if _, err := LoadConfiguration(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if !strings.Contains(string(data), "base_url") {
		t.Error("prepared configuration must contain migration defaults")
	}
}

func TestDump(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}

	text := string(data)
	for _, want := range []string{"base_url: https://www.example.com", "column_breaks: keep", "format: csv"} {
		if !strings.Contains(text, want) {
			t.Errorf("dump is missing %q", want)
		}
	}
}
