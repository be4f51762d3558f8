package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds the application configuration
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Storage  StorageConfig  `toml:"storage"`
	List     ListConfig     `toml:"list"`
	Log      LogConfig      `toml:"log"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path   string `toml:"path"`
	Driver string `toml:"driver"` // "sqlite3" (cgo) or "sqlite" (pure Go)
}

// StorageConfig selects where task snapshots are written
type StorageConfig struct {
	Backend      string   `toml:"backend"` // "sqlite", "file", "memory"; empty tries them in order
	Dir          string   `toml:"dir"`     // used by the file backend
	WriteTimeout Duration `toml:"write_timeout"`
}

// ListConfig controls how completed tasks are shown and stored
type ListConfig struct {
	Mode string `toml:"mode"` // "split" or "inplace"
}

// LogConfig holds logging configuration
type LogConfig struct {
	Path  string `toml:"path"`
	Level string `toml:"level"`
}

// Duration is a time.Duration written as a string such as "5s" in TOML
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Dir returns the directory holding config, data and logs
func Dir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "todo-tui")
}

// Default returns the default configuration
func Default() *Config {
	dir := Dir()
	return &Config{
		Database: DatabaseConfig{
			Path:   filepath.Join(dir, "todo.db"),
			Driver: "sqlite3",
		},
		Storage: StorageConfig{
			Dir:          filepath.Join(dir, "store"),
			WriteTimeout: Duration{5 * time.Second},
		},
		List: ListConfig{
			Mode: "split",
		},
		Log: LogConfig{
			Path:  filepath.Join(dir, "todo.log"),
			Level: "info",
		},
	}
}

// Load loads configuration from the standard location
func Load() (*Config, error) {
	return LoadFrom(filepath.Join(Dir(), "config.toml"))
}

// LoadFrom loads configuration from a specific path
func LoadFrom(configPath string) (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// No config file, return defaults
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Expand home directory in paths
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Storage.Dir = expandPath(cfg.Storage.Dir)
	cfg.Log.Path = expandPath(cfg.Log.Path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail later at startup
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "", "sqlite3", "sqlite":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	switch strings.ToLower(c.List.Mode) {
	case "", "split", "inplace":
	default:
		return fmt.Errorf("unknown list mode %q", c.List.Mode)
	}

	if c.Storage.WriteTimeout.Duration < 0 {
		return fmt.Errorf("storage write_timeout must not be negative")
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

// Save saves the configuration to the standard location
func (c *Config) Save() error {
	configDir := Dir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return c.SaveTo(filepath.Join(configDir, "config.toml"))
}

// SaveTo saves the configuration to a specific path
func (c *Config) SaveTo(configPath string) error {
	f, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	return nil
}
