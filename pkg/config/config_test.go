package config_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/gnames/gnbackbone/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirs(t *testing.T) {
	tempHome := t.TempDir()

	tests := []struct {
		msg string
		fn  func(string) string
		res string
	}{
		{
			msg: "config dir",
			fn:  config.ConfigDir,
			res: filepath.Join(tempHome, ".config", "gnbackbone"),
		},
		{
			msg: "cache dir",
			fn:  config.CacheDir,
			res: filepath.Join(tempHome, ".cache", "gnbackbone"),
		},
		{
			msg: "log dir",
			fn:  config.LogDir,
			res: filepath.Join(tempHome, ".local", "share", "gnbackbone", "logs"),
		},
		{
			msg: "config file",
			fn:  config.ConfigFilePath,
			res: filepath.Join(tempHome, ".config", "gnbackbone", "config.yaml"),
		},
	}

	for _, v := range tests {
		res := v.fn(tempHome)
		assert.Equal(t, v.res, res, v.msg)
	}
}

func TestNew(t *testing.T) {
	cfg := config.New()
	require.NotNil(t, cfg)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "gnbackbone.sqlite", cfg.Database.Path)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "gnbackbone", cfg.Database.Database)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 10_000, cfg.Database.BatchSize)

	assert.Equal(t, ",", cfg.Build.Delimiter)
	assert.Empty(t, cfg.Build.FilterFile)
	assert.False(t, cfg.Build.DryRun)
	assert.Empty(t, cfg.Resolve.KingdomHint)

	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "file", cfg.Log.Destination)

	assert.Equal(t, runtime.NumCPU(), cfg.JobsNumber)
}

func TestOptDatabaseDriver(t *testing.T) {
	tests := []struct {
		name, input, expected string
	}{
		{"sqlite", "sqlite", "sqlite"},
		{"postgres", "postgres", "postgres"},
		{"normalizes case", " PostgreS ", "postgres"},
		{"ignores unknown", "mysql", "sqlite"},
		{"ignores empty", "", "sqlite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{config.OptDatabaseDriver(tt.input)})
			assert.Equal(t, tt.expected, cfg.Database.Driver)
		})
	}
}

func TestOptDatabaseHost(t *testing.T) {
	tests := []struct {
		name, input, expected string
	}{
		{"sets valid host", "db.example.com", "db.example.com"},
		{"trims whitespace", "  db.example.com  ", "db.example.com"},
		{"ignores empty string", "", "localhost"},
		{"ignores whitespace-only", "   ", "localhost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{config.OptDatabaseHost(tt.input)})
			assert.Equal(t, tt.expected, cfg.Database.Host)
		})
	}
}

func TestOptInts(t *testing.T) {
	tests := []struct {
		name     string
		opt      func(int) config.Option
		get      func(*config.Config) int
		input    int
		expected int
	}{
		{
			name:     "port",
			opt:      config.OptDatabasePort,
			get:      func(c *config.Config) int { return c.Database.Port },
			input:    6543,
			expected: 6543,
		},
		{
			name:     "port ignores zero",
			opt:      config.OptDatabasePort,
			get:      func(c *config.Config) int { return c.Database.Port },
			input:    0,
			expected: 5432,
		},
		{
			name:     "batch size",
			opt:      config.OptDatabaseBatchSize,
			get:      func(c *config.Config) int { return c.Database.BatchSize },
			input:    500,
			expected: 500,
		},
		{
			name:     "batch size ignores negative",
			opt:      config.OptDatabaseBatchSize,
			get:      func(c *config.Config) int { return c.Database.BatchSize },
			input:    -1,
			expected: 10_000,
		},
		{
			name:     "jobs number",
			opt:      config.OptJobsNumber,
			get:      func(c *config.Config) int { return c.JobsNumber },
			input:    3,
			expected: 3,
		},
		{
			name:     "jobs number ignores zero",
			opt:      config.OptJobsNumber,
			get:      func(c *config.Config) int { return c.JobsNumber },
			input:    0,
			expected: runtime.NumCPU(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{tt.opt(tt.input)})
			assert.Equal(t, tt.expected, tt.get(cfg))
		})
	}
}

func TestOptBuildDelimiter(t *testing.T) {
	tests := []struct {
		name, input, expected string
	}{
		{"comma", ",", ","},
		{"tab char", "\t", "\t"},
		{"tab word", "TAB", "\t"},
		{"escaped tab", `\t`, "\t"},
		{"comma word", "comma", ","},
		{"ignores pipe", "|", ","},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{config.OptBuildDelimiter(tt.input)})
			assert.Equal(t, tt.expected, cfg.Build.Delimiter)
		})
	}
}

func TestOptLog(t *testing.T) {
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptLogLevel("DEBUG"),
		config.OptLogFormat("tint"),
		config.OptLogDestination("stderr"),
	})
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "tint", cfg.Log.Format)
	assert.Equal(t, "stderr", cfg.Log.Destination)

	cfg.Update([]config.Option{
		config.OptLogLevel("trace"),
		config.OptLogFormat("xml"),
		config.OptLogDestination("stdin"),
	})
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "tint", cfg.Log.Format)
	assert.Equal(t, "stderr", cfg.Log.Destination)
}

func TestMultipleOptions(t *testing.T) {
	t.Run("later options override earlier ones", func(t *testing.T) {
		cfg := config.New()
		cfg.Update([]config.Option{
			config.OptDatabaseHost("first.host.com"),
			config.OptDatabaseHost("second.host.com"),
		})
		assert.Equal(t, "second.host.com", cfg.Database.Host)
	})
}

func TestToOptions(t *testing.T) {
	t.Run("round trips persistent fields", func(t *testing.T) {
		original := config.New()
		original.Update([]config.Option{
			config.OptDatabaseDriver("postgres"),
			config.OptDatabasePath("/tmp/bb.sqlite"),
			config.OptDatabaseHost("test.host.com"),
			config.OptDatabasePort(3306),
			config.OptDatabaseUser("testuser"),
			config.OptDatabasePassword("testpass"),
			config.OptDatabaseDatabase("testdb"),
			config.OptDatabaseSSLMode("require"),
			config.OptDatabaseBatchSize(100),
			config.OptBuildFilterFile("filter.yaml"),
			config.OptBuildDelimiter("tab"),
			config.OptBuildReportDir("/tmp/reports"),
			config.OptResolveKingdomHint("Plantae"),
			config.OptLogLevel("debug"),
			config.OptLogFormat("text"),
			config.OptLogDestination("stdout"),
			config.OptJobsNumber(8),
		})

		newCfg := config.New()
		newCfg.Update(original.ToOptions())
		assert.Equal(t, original.Database, newCfg.Database)
		assert.Equal(t, original.Build, newCfg.Build)
		assert.Equal(t, original.Resolve, newCfg.Resolve)
		assert.Equal(t, original.Log, newCfg.Log)
		assert.Equal(t, original.JobsNumber, newCfg.JobsNumber)
	})

	t.Run("excludes runtime-only fields", func(t *testing.T) {
		cfg := config.New()
		cfg.Update([]config.Option{
			config.OptHomeDir("/custom/home"),
			config.OptBuildDryRun(true),
		})

		newCfg := config.New()
		newCfg.Update(cfg.ToOptions())
		assert.Empty(t, newCfg.HomeDir)
		assert.False(t, newCfg.Build.DryRun)
	})
}
