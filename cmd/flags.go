package cmd

import (
	"fmt"
	"os"

	app "github.com/gnames/gnbackbone/pkg"
	"github.com/gnames/gnbackbone/pkg/config"
	"github.com/spf13/cobra"
)

type funcFlag func(cmd *cobra.Command)

func versionFlag(cmd *cobra.Command) {
	hasVersionFlag, _ := cmd.Flags().GetBool("version")
	if hasVersionFlag {
		fmt.Printf("\nversion: %s\nbuild: %s\n\n", app.Version, app.Build)
		os.Exit(0)
	}
}

// flagOptions converts flags explicitly set by the user into config
// options. Unset flags keep values from config.yaml and environment.
func flagOptions(cmd *cobra.Command) []config.Option {
	var res []config.Option
	flags := cmd.Flags()

	if flags.Changed("filter") {
		s, _ := flags.GetString("filter")
		res = append(res, config.OptBuildFilterFile(s))
	}
	if flags.Changed("delimiter") {
		s, _ := flags.GetString("delimiter")
		res = append(res, config.OptBuildDelimiter(s))
	}
	if flags.Changed("report-dir") {
		s, _ := flags.GetString("report-dir")
		res = append(res, config.OptBuildReportDir(s))
	}
	if flags.Changed("dry-run") {
		b, _ := flags.GetBool("dry-run")
		res = append(res, config.OptBuildDryRun(b))
	}
	if flags.Changed("kingdom") {
		s, _ := flags.GetString("kingdom")
		res = append(res, config.OptResolveKingdomHint(s))
	}
	if flags.Changed("jobs") {
		i, _ := flags.GetInt("jobs")
		res = append(res, config.OptJobsNumber(i))
	}
	if flags.Changed("batch-size") {
		i, _ := flags.GetInt("batch-size")
		res = append(res, config.OptDatabaseBatchSize(i))
	}
	return res
}

func batchSizeFlag(cmd *cobra.Command) {
	cmd.Flags().IntP("batch-size", "b", 0,
		"number of writes per transaction")
}

func jobsFlag(cmd *cobra.Command) {
	cmd.Flags().IntP("jobs", "j", 0,
		"number of concurrent workers")
}

func addFlags(cmd *cobra.Command, fs ...funcFlag) {
	for _, f := range fs {
		f(cmd)
	}
}
