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
	"log/slog"
	"time"

	"github.com/gnames/gn"
	"github.com/gnames/gnbackbone/internal/iodwc"
	"github.com/gnames/gnbackbone/internal/iofs"
	"github.com/gnames/gnbackbone/internal/iomem"
	"github.com/gnames/gnbackbone/internal/ioreport"
	"github.com/gnames/gnbackbone/pkg/backbone"
	"github.com/gnames/gnbackbone/pkg/store"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// getBuildCmd returns the build command.
func getBuildCmd() *cobra.Command {
	buildCmd := &cobra.Command{
		Use:   "build TAXA_FILE",
		Short: "Build the backbone from a Darwin Core taxa file",
		Long: `Build reads a Darwin Core taxa file and adds its species,
synonyms and their lineages to the backbone.

This command:
  1. Reads rows of the taxa file (CSV or TSV)
  2. Creates kingdom to species nodes for accepted names
  3. Saves species and synonyms, replaying synonyms that came
     before their accepted names
  4. Computes nested-set bounds of the hierarchy
  5. Writes backbone_stats_<date>.tsv and
     species_names_added_status.tsv reports

Building is idempotent, running it twice on the same file adds nothing.
With --dry-run the backbone is built in memory, only reports are saved.

Examples:
  gnbackbone build taxa.csv
  gnbackbone build taxa.tsv --delimiter tab --filter birds.yaml
  gnbackbone build taxa.csv --dry-run --report-dir reports`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Update(flagOptions(cmd))
			return runBuild(cmd.Context(), args[0])
		},
	}

	buildCmd.Flags().StringP("filter", "F", "",
		"YAML allow-list of lineage names keyed by rank")
	buildCmd.Flags().StringP("delimiter", "d", "",
		`delimiter of the taxa file: "," or "tab"`)
	buildCmd.Flags().StringP("report-dir", "r", "",
		"directory for build reports")
	buildCmd.Flags().BoolP("dry-run", "n", false,
		"build in memory without touching the database")
	addFlags(buildCmd, batchSizeFlag)

	return buildCmd
}

func runBuild(ctx context.Context, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	filter, err := iodwc.LoadFilter(cfg.Build.FilterFile)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	reportDir := cfg.Build.ReportDir
	if reportDir == "" {
		reportDir = "."
	}
	if err = iofs.EnsureDir(reportDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	var st store.TaxonomyStore
	if cfg.Build.DryRun {
		gn.Info("Dry run, the backbone is built in memory")
		st = iomem.New()
	} else {
		op, sqlStore, err := openStore(ctx)
		if err != nil {
			gn.PrintErrorMessage(err)
			return err
		}
		defer op.Close()
		st = sqlStore
	}
	defer st.Close()

	names, err := ioreport.NewNameWriter(reportDir)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	defer names.Close()

	sum, err := ingest(ctx, st, path, filter, names)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	if err = names.Close(); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = index(ctx, st); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	stats, err := backbone.CollectStats(ctx, st)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	statsPath, err := ioreport.WriteStats(reportDir, start, sum, stats)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	sum.Duration = time.Since(start)
	sum.Log()
	fmt.Printf("\nBackbone build summary:\n%s\n", sum.String())
	gn.Info("Reports: <em>%s</em>, <em>%s</em>", statsPath, names.Path())
	return nil
}

// ingest streams rows of the taxa file into a Builder. The reader, a
// progress counter and the builder run in their own goroutines.
func ingest(
	ctx context.Context,
	st store.TaxonomyStore,
	path string,
	filter backbone.Filter,
	names *ioreport.NameWriter,
) (*backbone.Summary, error) {
	total, err := iodwc.CountRows(path)
	if err != nil {
		return nil, err
	}

	b, err := backbone.NewBuilder(ctx, st,
		backbone.OptFilter(filter),
		backbone.OptNameReport(names.Add),
	)
	if err != nil {
		return nil, err
	}

	reader := iodwc.NewReader(path, iodwc.OptDelimiter(cfg.Build.Delimiter))
	rawCh := make(chan backbone.Row, 1_000)
	rowCh := make(chan backbone.Row, 1_000)
	bar := newProgressBar(total, "Processing rows: ")
	defer bar.Finish()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return reader.Read(gctx, rawCh)
	})

	g.Go(func() error {
		defer close(rowCh)
		for row := range rawCh {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case rowCh <- row:
				bar.Increment()
			}
		}
		return nil
	})

	var sum *backbone.Summary
	g.Go(func() error {
		var err error
		sum, err = b.Build(gctx, rowCh)
		return err
	})

	if err = g.Wait(); err != nil {
		return nil, err
	}
	slog.Info("Rows ingested", "rows", sum.LinesNum)
	return sum, nil
}

// index recomputes nested-set bounds of all nodes.
func index(ctx context.Context, st store.TaxonomyStore) error {
	total, err := st.MaxNodeID(ctx)
	if err != nil {
		return err
	}
	bar := newProgressBar(total, "Indexing nodes: ")
	defer bar.Finish()

	ix := backbone.NewIndexer(st, backbone.OptOnNode(func() { bar.Increment() }))
	num, err := ix.Index(ctx)
	if err != nil {
		return err
	}
	bar.Finish()
	gn.Info("Indexed <em>%d</em> nodes", num)
	return nil
}
