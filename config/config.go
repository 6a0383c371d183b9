package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Defaults shared by the CLI flags and the config template.
const (
	DefaultBackend       = BackendSQLite
	DefaultAttendanceCol = "C"
	DefaultRosterCol     = "F"
	DefaultAddr          = ":8080"
	DefaultRedisAddr     = "127.0.0.1:6379"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Store     StoreConfig     `toml:"store"`
	Reconcile ReconcileConfig `toml:"reconcile"`
	Weekly    WeeklyConfig    `toml:"weekly"`
	Serve     ServeConfig     `toml:"serve"`
}

// StoreConfig selects where weekly sessions are kept.
type StoreConfig struct {
	Backend       *string `toml:"backend"`
	Path          *string `toml:"path"`
	RedisAddr     *string `toml:"redis-addr"`
	RedisPassword *string `toml:"redis-password"`
	RedisDB       *int    `toml:"redis-db"`
	RedisPrefix   *string `toml:"redis-prefix"`
}

// ReconcileConfig maps reconciliation defaults.
type ReconcileConfig struct {
	AttendanceCol *string `toml:"attendance-col"`
	RosterCol     *string `toml:"roster-col"`
}

// WeeklyConfig maps day-file parsing options.
type WeeklyConfig struct {
	RequireHeaders *bool `toml:"require-headers"`
}

// ServeConfig maps HTTP server settings.
type ServeConfig struct {
	Addr *string `toml:"addr"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// WriteDefault writes the commented template to path unless a file already exists.
// It reports whether a file was created.
func WriteDefault(path string) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.WriteFile(path, []byte(DefaultTemplate()), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config: %w", err)
	}
	return true, nil
}

// DefaultTemplate is the commented config written by `rollbook config`.
func DefaultTemplate() string {
	return fmt.Sprintf(`# rollbook configuration
# Uncomment a value to enable it. CLI flags override config values.

[store]
# backend = %q            # sqlite, redis or memory
# path = %q               # SQLite file (ROLLBOOK_DB_PATH overrides)
# redis-addr = %q
# redis-password = ""
# redis-db = 0
# redis-prefix = "rollbook:"

[reconcile]
# attendance-col = %q     # Identifier column of the attendance sheet
# roster-col = %q         # Identifier column of the main roster

[weekly]
# require-headers = false   # Reject day files without recognizable name/id headers

[serve]
# addr = %q
`,
		DefaultBackend,
		DefaultDBPath(),
		DefaultRedisAddr,
		DefaultAttendanceCol,
		DefaultRosterCol,
		DefaultAddr,
	)
}
