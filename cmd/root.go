/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gnbackbone/internal/iofs"
	"github.com/gnames/gnbackbone/internal/iologger"
	app "github.com/gnames/gnbackbone/pkg"
	"github.com/gnames/gnbackbone/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	homeDir string
	opts    []config.Option
	cfg     *config.Config
	logFile io.Closer
)

// getRootCmd returns the root command with all subcommands attached.
// Extracted as a function to facilitate testing.
func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Version: fmt.Sprintf("version: %s\nbuild:   %s", app.Version, app.Build),
		Use:     "gnbackbone",
		Short:   "GNbackbone builds and queries a taxonomic backbone",
		Long: `GNbackbone turns flat Darwin Core checklists into a taxonomic
hierarchy stored in SQLite or PostgreSQL, and resolves free-text
taxon names to species of that hierarchy.

Features:
  - Schema Management: create and migrate the database
  - Backbone Build: nodes, species and synonyms from a taxa file
  - Nested Set Index: fast subtree and ancestor queries
  - Name Resolution: exact, synonym and "Genus sp." matching
  - Export: Newick trees and statistics

Configuration is read from ~/.config/gnbackbone/config.yaml,
GNBACKBONE_* environment variables and command line flags.`,
		PersistentPreRunE: bootstrap,
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if logFile != nil {
				logFile.Close()
			}
		},
		RunE:          runRoot,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Remove the automatic "gnbackbone version" prefix
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// -V is consistent with other gn projects
	rootCmd.Flags().BoolP("version", "V", false, "version for gnbackbone")

	rootCmd.AddCommand(
		getCreateCmd(),
		getMigrateCmd(),
		getBuildCmd(),
		getIndexCmd(),
		getResolveCmd(),
		getExportCmd(),
		getStatsCmd(),
	)
	return rootCmd
}

func bootstrap(cmd *cobra.Command, args []string) error {
	var err error
	homeDir, err = os.UserHomeDir()
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureDirs(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	// Logging with defaults, reconfigured after config is loaded.
	defaultLog := config.LogConfig{
		Format:      "json",
		Level:       "info",
		Destination: "file",
	}
	if logFile, err = iologger.Init(config.LogDir(homeDir), defaultLog, false); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureConfigFile(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	var cfgViper *config.Config
	if cfgViper, err = initConfig(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	cfg = config.New()
	opts = cfgViper.ToOptions()
	cfg.Update(opts)

	// HomeDir is runtime-only, set after config is loaded
	cfg.Update([]config.Option{config.OptHomeDir(homeDir)})

	if err = reconfigureLogging(cfg); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	slog.Info("Configuration loaded",
		"config_file", config.ConfigFilePath(homeDir),
		"driver", cfg.Database.Driver,
		"command", cmd.Name(),
	)

	return nil
}

// reconfigureLogging reinitializes the logger with the loaded
// configuration, appending to the log file opened by bootstrap.
func reconfigureLogging(cfg *config.Config) error {
	if logFile != nil {
		logFile.Close()
	}
	var err error
	logFile, err = iologger.Init(config.LogDir(cfg.HomeDir), cfg.Log, true)
	return err
}

func runRoot(cmd *cobra.Command, args []string) error {
	versionFlag(cmd)
	return cmd.Help()
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := getRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func initConfig(home string) (*config.Config, error) {
	var err error
	cfgPath := config.ConfigFilePath(home)
	v := viper.New()
	v.SetConfigFile(cfgPath)

	initEnvVars(v)

	if err = v.ReadInConfig(); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	var res config.Config
	if err = v.Unmarshal(&res); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	return &res, nil
}

func initEnvVars(v *viper.Viper) {
	// Env variables are bound one by one to keep the allowed list
	// visible. They match the fields of config.ToOptions().
	v.SetEnvPrefix("GNBACKBONE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Database configuration
	v.BindEnv("database.driver", "GNBACKBONE_DATABASE_DRIVER")
	v.BindEnv("database.path", "GNBACKBONE_DATABASE_PATH")
	v.BindEnv("database.host", "GNBACKBONE_DATABASE_HOST")
	v.BindEnv("database.port", "GNBACKBONE_DATABASE_PORT")
	v.BindEnv("database.user", "GNBACKBONE_DATABASE_USER")
	v.BindEnv("database.password", "GNBACKBONE_DATABASE_PASSWORD")
	v.BindEnv("database.database", "GNBACKBONE_DATABASE_DATABASE")
	v.BindEnv("database.ssl_mode", "GNBACKBONE_DATABASE_SSL_MODE")
	v.BindEnv("database.batch_size", "GNBACKBONE_DATABASE_BATCH_SIZE")

	// Build configuration
	v.BindEnv("build.filter_file", "GNBACKBONE_BUILD_FILTER_FILE")
	v.BindEnv("build.delimiter", "GNBACKBONE_BUILD_DELIMITER")
	v.BindEnv("build.report_dir", "GNBACKBONE_BUILD_REPORT_DIR")

	// Resolve configuration
	v.BindEnv("resolve.kingdom_hint", "GNBACKBONE_RESOLVE_KINGDOM_HINT")

	// Log configuration
	v.BindEnv("log.level", "GNBACKBONE_LOG_LEVEL")
	v.BindEnv("log.format", "GNBACKBONE_LOG_FORMAT")
	v.BindEnv("log.destination", "GNBACKBONE_LOG_DESTINATION")

	// General configuration
	v.BindEnv("jobs_number", "GNBACKBONE_JOBS_NUMBER")

	v.AutomaticEnv()
}
