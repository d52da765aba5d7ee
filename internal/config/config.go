package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "taskpilot.db"
	DefaultWebPort        = 8990
)

type Config struct {
	DBPath         string `toml:"db_path"`
	WebPort        int    `toml:"web_port"`
	ReminderWindow string `toml:"reminder_window"`
	DefaultSort    string `toml:"default_sort"`
}

// DefaultConfigPath resolves the per-user config file, e.g.
// ~/.config/taskpilot/config.toml on Linux.
func DefaultConfigPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "taskpilot", DefaultConfigFileName), nil
}

// LoadOrCreate reads the config at path, writing the defaults there
// first if no file exists yet.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig(filepath.Dir(path))
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(filepath.Dir(path), DefaultDBName)
	}
	if cfg.WebPort == 0 {
		cfg.WebPort = DefaultWebPort
	}
	if cfg.ReminderWindow == "" {
		cfg.ReminderWindow = "24h"
	}
	return cfg, nil
}

// Window parses the reminder window duration.
func (c Config) Window() (time.Duration, error) {
	window, err := time.ParseDuration(c.ReminderWindow)
	if err != nil {
		return 0, fmt.Errorf("reminder_window %q: %w", c.ReminderWindow, err)
	}
	if window <= 0 {
		return 0, fmt.Errorf("reminder_window %q: must be positive", c.ReminderWindow)
	}
	return window, nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig(dir string) Config {
	return Config{
		DBPath:         filepath.Join(dir, DefaultDBName),
		WebPort:        DefaultWebPort,
		ReminderWindow: "24h",
		DefaultSort:    "created_at",
	}
}
