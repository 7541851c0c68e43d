// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/vmunix/rowsync/internal/item"
)

// Config is the root configuration structure.
type Config struct {
	Log     LogConfig     `toml:"log"`
	Demo    DemoConfig    `toml:"demo"`
	Seed    SeedConfig    `toml:"seed"`
	Journal JournalConfig `toml:"journal"`
	Bus     BusConfig     `toml:"bus"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "text" or "json"
}

type DemoConfig struct {
	DownloadDelay time.Duration `toml:"download_delay"`
	ClickRate     float64       `toml:"click_rate"` // clicks per second
	Clicks        int           `toml:"clicks"`
	Duration      time.Duration `toml:"duration"` // 0 waits for every revert
}

type SeedConfig struct {
	DownloadableIDs []int64 `toml:"downloadable_ids"`
	EmptyCount      int     `toml:"empty_count"`
}

// Items builds the seed list.
func (s SeedConfig) Items() []item.ListItem {
	return item.Seed(s.DownloadableIDs, s.EmptyCount)
}

type JournalConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type BusConfig struct {
	Buffer int `toml:"buffer"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults(toml.MetaData{})
	return cfg
}

// Load reads, substitutes and parses the configuration file, then validates it.
// A .env file next to the config supplies variables missing from the environment.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	dotenv, err := readDotenv(filepath.Join(filepath.Dir(path), ".env"))
	if err != nil {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	content, missing := substituteVars(string(data), dotenv)

	var cfg Config
	md, err := toml.Decode(content, &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults(md)

	cfgErr := &ConfigError{Path: path, Missing: missing, Errors: cfg.Validate()}
	if cfgErr.HasErrors() {
		return nil, cfgErr
	}
	return &cfg, nil
}

func readDotenv(path string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return env, err
}

// applyDefaults fills fields the file left unset. md tells an explicit zero
// apart from an absent key.
func (c *Config) applyDefaults(md toml.MetaData) {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Demo.DownloadDelay == 0 {
		c.Demo.DownloadDelay = 5 * time.Second
	}
	if c.Demo.ClickRate == 0 {
		c.Demo.ClickRate = 1
	}
	if !md.IsDefined("demo", "clicks") {
		c.Demo.Clicks = 8
	}
	if !md.IsDefined("seed", "downloadable_ids") {
		c.Seed.DownloadableIDs = append([]int64(nil), item.DefaultDownloadableIDs...)
	}
	if !md.IsDefined("seed", "empty_count") {
		c.Seed.EmptyCount = item.DefaultEmptyCount
	}
	if c.Journal.Path == "" {
		c.Journal.Path = "./data/rowsync.db"
	}
	if c.Bus.Buffer == 0 {
		c.Bus.Buffer = 100
	}
}
