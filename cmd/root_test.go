package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gnames/gnbackbone/internal/iofs"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGetRootCmd_Exists verifies getRootCmd returns
// a valid command.
func TestGetRootCmd_Exists(t *testing.T) {
	cmd := getRootCmd()
	require.NotNil(t, cmd, "Root command should exist")
	assert.Equal(t, "gnbackbone", cmd.Use)
	assert.NotNil(t, cmd.PersistentPreRunE,
		"PersistentPreRunE should be set for bootstrap")
	assert.NotNil(t, cmd.RunE)
	assert.True(t, cmd.SilenceErrors, "Errors should be silenced")
	assert.True(t, cmd.SilenceUsage, "Usage should be silenced on errors")
}

// TestGetRootCmd_Version verifies version output with long and short
// flags.
func TestGetRootCmd_Version(t *testing.T) {
	for _, flag := range []string{"--version", "-V"} {
		cmd := getRootCmd()
		cmd.Version = "version: v1.2.3\nbuild:   abc123"

		buf := new(bytes.Buffer)
		cmd.SetOut(buf)
		cmd.SetArgs([]string{flag})

		err := cmd.Execute()
		require.NoError(t, err, flag)

		output := buf.String()
		assert.Contains(t, output, "v1.2.3", flag)
		assert.Contains(t, output, "abc123", flag)
		assert.NotContains(t, output, "gnbackbone version", flag)
	}
}

// TestGetRootCmd_Subcommands verifies all commands are registered.
func TestGetRootCmd_Subcommands(t *testing.T) {
	cmd := getRootCmd()
	var names []string
	for _, v := range cmd.Commands() {
		names = append(names, v.Name())
	}
	for _, v := range []string{
		"create", "migrate", "build", "index", "resolve", "export", "stats",
	} {
		assert.Contains(t, names, v)
	}
}

// TestGetRootCmd_HelpText verifies help text content.
func TestGetRootCmd_HelpText(t *testing.T) {
	cmd := getRootCmd()

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	require.NoError(t, err)

	helpText := buf.String()
	assert.Contains(t, helpText, "gnbackbone")
	assert.Contains(t, helpText, "Darwin Core")
	assert.Contains(t, helpText, "Nested Set")
	assert.Contains(t, helpText, "resolve")
}

// TestGetRootCmd_InvalidCommand verifies error on invalid command.
func TestGetRootCmd_InvalidCommand(t *testing.T) {
	cmd := getRootCmd()

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"nonexistent-command"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.True(t,
		strings.Contains(buf.String(), "unknown") ||
			strings.Contains(err.Error(), "unknown"),
		"Error should indicate unknown command")
}

// TestGetRootCmd_IndependentInstances verifies each call returns an
// independent instance.
func TestGetRootCmd_IndependentInstances(t *testing.T) {
	cmd1 := getRootCmd()
	cmd2 := getRootCmd()
	assert.NotSame(t, cmd1, cmd2)

	cmd1.Version = "version1"
	cmd2.Version = "version2"
	assert.Equal(t, "version1", cmd1.Version)
	assert.Equal(t, "version2", cmd2.Version)
}

// TestInitEnvVars verifies GNBACKBONE_ variables reach viper keys.
func TestInitEnvVars(t *testing.T) {
	t.Setenv("GNBACKBONE_DATABASE_DRIVER", "postgres")
	t.Setenv("GNBACKBONE_BUILD_DELIMITER", "tab")
	t.Setenv("GNBACKBONE_RESOLVE_KINGDOM_HINT", "Plantae")
	t.Setenv("GNBACKBONE_JOBS_NUMBER", "3")

	v := viper.New()
	initEnvVars(v)
	assert.Equal(t, "postgres", v.GetString("database.driver"))
	assert.Equal(t, "tab", v.GetString("build.delimiter"))
	assert.Equal(t, "Plantae", v.GetString("resolve.kingdom_hint"))
	assert.Equal(t, 3, v.GetInt("jobs_number"))
}

// TestInitConfig verifies that env vars override config.yaml.
func TestInitConfig(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, iofs.EnsureDirs(home))
	require.NoError(t, iofs.EnsureConfigFile(home))
	t.Setenv("GNBACKBONE_LOG_LEVEL", "debug")
	t.Setenv("GNBACKBONE_DATABASE_BATCH_SIZE", "500")

	res, err := initConfig(home)
	require.NoError(t, err)
	assert.Equal(t, "debug", res.Log.Level)
	assert.Equal(t, 500, res.Database.BatchSize)
	assert.Equal(t, "sqlite", res.Database.Driver)
	assert.Equal(t, ",", res.Build.Delimiter)
}

// TestInitConfig_NoFile verifies the error for a missing config.
func TestInitConfig_NoFile(t *testing.T) {
	_, err := initConfig(t.TempDir())
	assert.Error(t, err)
}
