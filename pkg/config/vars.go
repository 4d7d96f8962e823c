package config

import (
	"path/filepath"
)

var (
	// SchemaVersion is written to schema_versions by create and migrate.
	SchemaVersion = "v0.1.0"
	// MinVersionSchema is the oldest database schema version gnbackbone
	// can still read. Newer versions are all supported.
	MinVersionSchema = "v0.1.0"
	// AppName is used in generating file system paths.
	AppName = "gnbackbone"
)

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/gnbackbone by default.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// CacheDir returns the directory path for cache files.
// Returns ~/.cache/gnbackbone by default.
func CacheDir(homeDir string) string {
	return filepath.Join(homeDir, ".cache", AppName)
}

// LogDir returns the directory path for log files.
// Returns ~/.local/share/gnbackbone/logs by default.
func LogDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName, "logs")
}

// ConfigFilePath returns the full path to the config.yaml file.
// Returns ~/.config/gnbackbone/config.yaml by default.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "config.yaml")
}
