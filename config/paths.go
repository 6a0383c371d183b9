// Package config provides XDG paths and the TOML configuration file.
package config

import (
	"os"
	"path/filepath"
)

// DBPathEnv overrides the SQLite database location.
const DBPathEnv = "ROLLBOOK_DB_PATH"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), "rollbook", "config.toml")
}

// DefaultDBPath returns the SQLite path, honoring ROLLBOOK_DB_PATH.
func DefaultDBPath() string {
	if p := os.Getenv(DBPathEnv); p != "" {
		return p
	}
	return filepath.Join(XDGDataHome(), "rollbook", "rollbook.db")
}
