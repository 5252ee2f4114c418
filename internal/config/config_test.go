package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.Output != "yaml" {
		t.Errorf("Output = %q", cfg.Output)
	}
	if cfg.PagePattern != "page-%d.png" {
		t.Errorf("PagePattern = %q", cfg.PagePattern)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("loads from config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `
log_level: debug
frequency_table: /data/freq.csv
project: /data/plant.json
page_dir: /data/pages
`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		cm, err := NewManager(path)
		if err != nil {
			t.Fatalf("NewManager: %v", err)
		}
		cfg := cm.Get()
		if cfg.LogLevel != "debug" {
			t.Errorf("LogLevel = %q", cfg.LogLevel)
		}
		if cfg.FrequencyTable != "/data/freq.csv" || cfg.Project != "/data/plant.json" || cfg.PageDir != "/data/pages" {
			t.Errorf("unexpected config %+v", cfg)
		}
		if cfg.Output != "yaml" || cfg.PagePattern != "page-%d.png" {
			t.Errorf("defaults not applied: %+v", cfg)
		}
		if cm.ConfigFile() != path {
			t.Errorf("ConfigFile = %q", cm.ConfigFile())
		}
	})

	t.Run("environment overrides file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("log_level: warn\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		t.Setenv("SPECTRA_LOG_LEVEL", "error")
		t.Setenv("SPECTRA_OUTPUT", "json")

		cm, err := NewManager(path)
		if err != nil {
			t.Fatalf("NewManager: %v", err)
		}
		if got := cm.Get().LogLevel; got != "error" {
			t.Errorf("LogLevel = %q, want error", got)
		}
		if got := cm.Get().Output; got != "json" {
			t.Errorf("Output = %q, want json", got)
		}
	})

	t.Run("missing default file is fine", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		cm, err := NewManager("")
		if err != nil {
			t.Fatalf("NewManager: %v", err)
		}
		if cm.Get().LogLevel != "info" {
			t.Errorf("LogLevel = %q", cm.Get().LogLevel)
		}
	})

	t.Run("explicit missing file fails", func(t *testing.T) {
		if _, err := NewManager(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("expected error for missing explicit config file")
		}
	})

	t.Run("malformed file fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("log_level: [unclosed\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := NewManager(path); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestManager_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("project: a.json\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cm, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}
	cm.Viper().Set("project", "b.json")
	cfg, err := cm.Reload()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Project != "b.json" || cm.Get().Project != "b.json" {
		t.Errorf("Reload did not pick up override: %+v", cfg)
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	cm, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager on written default: %v", err)
	}
	if cm.Get().PagePattern != "page-%d.png" {
		t.Errorf("PagePattern = %q", cm.Get().PagePattern)
	}
}
