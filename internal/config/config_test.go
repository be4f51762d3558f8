package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadFrom_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	def := Default()
	if cfg.Database != def.Database || cfg.List != def.List {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if cfg.Storage.WriteTimeout.Duration != 5*time.Second {
		t.Fatalf("write timeout = %v", cfg.Storage.WriteTimeout)
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[database]
path = "~/tasks/todo.db"
driver = "sqlite"

[storage]
backend = "file"
dir = "/tmp/todo-store"
write_timeout = "250ms"

[list]
mode = "inplace"

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	home, _ := os.UserHomeDir()
	if cfg.Database.Path != filepath.Join(home, "tasks", "todo.db") {
		t.Fatalf("path not expanded: %s", cfg.Database.Path)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Storage.Backend != "file" || cfg.List.Mode != "inplace" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Storage.WriteTimeout.Duration != 250*time.Millisecond {
		t.Fatalf("write timeout = %v", cfg.Storage.WriteTimeout)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Path != Default().Log.Path {
		t.Fatalf("log config = %+v", cfg.Log)
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := map[string]string{
		"syntax":   "[list\nmode = ",
		"mode":     "[list]\nmode = \"sideways\"\n",
		"driver":   "[database]\ndriver = \"postgres\"\n",
		"duration": "[storage]\nwrite_timeout = \"soon\"\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(data), 0644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, err := LoadFrom(path); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.List.Mode = "inplace"
	cfg.Storage.WriteTimeout = Duration{2 * time.Second}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `write_timeout = "2s"`) {
		t.Fatalf("duration not written as text:\n%s", data)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.List.Mode != "inplace" || loaded.Storage.WriteTimeout.Duration != 2*time.Second {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
}

func TestSave_StandardLocation(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := Default()
	cfg.Storage.Backend = "file"
	if err := cfg.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Storage.Backend != "file" {
		t.Fatalf("backend = %q, want file", loaded.Storage.Backend)
	}
}
