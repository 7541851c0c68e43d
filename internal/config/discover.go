package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by Discover when no config file exists.
var ErrNotFound = fmt.Errorf("config not found")

// DefaultPath returns the XDG-compliant default config path.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "./rowsync.toml"
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "rowsync", "config.toml")
}

// Discover finds the config file using the standard search order.
// Search order:
//  1. ROWSYNC_CONFIG environment variable
//  2. ./rowsync.toml (current directory)
//  3. $XDG_CONFIG_HOME/rowsync/config.toml
//  4. /etc/rowsync/config.toml
func Discover() (string, error) {
	if envPath := os.Getenv("ROWSYNC_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("ROWSYNC_CONFIG=%s: %w", envPath, err)
		}
		return envPath, nil
	}

	paths := []string{
		"./rowsync.toml",
		DefaultPath(),
		"/etc/rowsync/config.toml",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("%w, checked: %s", ErrNotFound, strings.Join(paths, ", "))
}
