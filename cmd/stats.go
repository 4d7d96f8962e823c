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
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnbackbone/internal/iofs"
	"github.com/gnames/gnbackbone/internal/ioreport"
	"github.com/gnames/gnbackbone/pkg/backbone"
	"github.com/gnames/gnbackbone/pkg/ent/rank"
	"github.com/spf13/cobra"
)

// getStatsCmd returns the stats command.
func getStatsCmd() *cobra.Command {
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show node counts per rank and species per kingdom",
		Long: `Stats reads the whole backbone and prints node counts per rank,
species per kingdom and counts of incomplete or uncertain lineages.

With --report-dir the statistics are also saved as
backbone_stats_<date>.tsv.

Examples:
  gnbackbone stats
  gnbackbone stats --report-dir reports`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg.Update(flagOptions(cmd))
			save := cmd.Flags().Changed("report-dir")
			return runStats(cmd.Context(), save)
		},
	}
	statsCmd.Flags().StringP("report-dir", "r", "",
		"save statistics report to this directory")
	return statsCmd
}

func runStats(ctx context.Context, save bool) error {
	op, st, err := openStore(ctx)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	defer op.Close()
	defer st.Close()

	stats, err := backbone.CollectStats(ctx, st)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	fmt.Print(statsString(stats))

	if !save {
		return nil
	}
	if err = iofs.EnsureDir(cfg.Build.ReportDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	path, err := ioreport.WriteStats(cfg.Build.ReportDir, time.Now(), nil, stats)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	gn.Info("Statistics saved to <em>%s</em>", path)
	return nil
}

func statsString(st *backbone.Stats) string {
	var sb strings.Builder
	line := func(name string, n int) {
		fmt.Fprintf(&sb, "  %-24s %s\n", name, humanize.Comma(int64(n)))
	}

	sb.WriteString("Nodes per rank:\n")
	for _, r := range rank.Lineage {
		line(r.String(), st.NodesPerRank[r.String()])
	}
	line("total", st.NodesNum)

	sb.WriteString("Species per kingdom:\n")
	for _, k := range slices.Sorted(maps.Keys(st.SpeciesPerKingdom)) {
		line(k, st.SpeciesPerKingdom[k])
	}

	sb.WriteString("Lineages:\n")
	line("nodes without name", st.UnnamedNodesNum)
	line(backbone.IncertaeSedis, st.IncertaeSedisNodes)
	line(backbone.Unassigned, st.UnassignedNodes)
	line("sp. species", st.PlaceholderNodesNum)
	line("unindexed nodes", st.UnindexedNodesNum)

	sb.WriteString("Names:\n")
	line("species", st.SpeciesNum)
	line("synonyms", st.SynonymsNum)
	return sb.String()
}
