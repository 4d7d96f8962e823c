// Package config provides configuration management for gnbackbone.
//
// This package has no I/O dependencies (no file operations, no network calls).
// Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Persistent vs Runtime Fields
//
// Persistent fields (in ToOptions, config.yaml, and env vars):
//   - Database: driver, path, host, port, user, password, database,
//     ssl_mode, batch_size
//   - Build: filter_file, delimiter, report_dir
//   - Resolve: kingdom_hint
//   - Log: level, format, destination
//   - General: jobs_number
//
// Runtime-only fields (CLI flags only):
//   - Build.DryRun (per-command)
//   - HomeDir (set once at startup)
//
// # Environment Variables
//
// Use GNBACKBONE_ prefix with underscores for nesting:
//
//	GNBACKBONE_DATABASE_DRIVER=sqlite
//	GNBACKBONE_DATABASE_PATH=/data/backbone.sqlite
//	GNBACKBONE_LOG_LEVEL=info
//	GNBACKBONE_JOBS_NUMBER=8
package config

import (
	"runtime"
)

// Config represents the complete gnbackbone configuration.
type Config struct {
	// Database contains connection settings for the taxonomy store.
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Build contains settings of the backbone ingestion.
	Build BuildConfig `mapstructure:"build" yaml:"build"`

	// Resolve contains settings of the species resolver.
	Resolve ResolveConfig `mapstructure:"resolve" yaml:"resolve"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// JobsNumber is the number of concurrent workers used to normalize
	// names before resolution.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// HomeDir determines where config, cache and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string
}

// DatabaseConfig contains connection parameters of the taxonomy store.
type DatabaseConfig struct {
	// Driver selects the backing store: "sqlite" or "postgres".
	Driver string `mapstructure:"driver" yaml:"driver"`

	// Path is the SQLite database file. Relative paths are resolved
	// against the current directory. Ignored by PostgreSQL.
	Path string `mapstructure:"path" yaml:"path"`

	// Host is the PostgreSQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the PostgreSQL database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the PostgreSQL database name to connect to.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the SSL connection mode.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`

	// BatchSize is the number of writes grouped into one transaction.
	// It only affects performance, the resulting backbone is the same for
	// any batch size.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`
}

// BuildConfig contains settings for the build command.
type BuildConfig struct {
	// FilterFile is a YAML file with a rank-keyed allow-list
	// (e.g. family: [Fringillidae, Plantaginaceae]). Empty means no
	// filtering.
	FilterFile string `mapstructure:"filter_file" yaml:"filter_file"`

	// Delimiter of the taxa file: "," or "\t".
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`

	// ReportDir is where statistics and name status reports are written.
	// Empty means the current directory.
	ReportDir string `mapstructure:"report_dir" yaml:"report_dir"`

	// DryRun builds the backbone in memory without touching the database.
	DryRun bool `mapstructure:"-" yaml:"-"`
}

// ResolveConfig contains settings for the resolve command.
type ResolveConfig struct {
	// KingdomHint is used to disambiguate homonymous genera when the
	// input does not provide a kingdom for a name.
	KingdomHint string `mapstructure:"kingdom_hint" yaml:"kingdom_hint"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json', 'text' or 'tint' (user-facing and colored).
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		Database: DatabaseConfig{
			Driver:    "sqlite",
			Path:      "gnbackbone.sqlite",
			Host:      "localhost",
			Port:      5432,
			User:      "postgres",
			Password:  "postgres",
			Database:  "gnbackbone",
			SSLMode:   "disable",
			BatchSize: 10_000,
		},
		Build: BuildConfig{
			Delimiter: ",",
		},
		Log: LogConfig{
			Format:      "json",
			Level:       "info",
			Destination: "file",
		},
		JobsNumber: runtime.NumCPU(),
	}

	return res
}
