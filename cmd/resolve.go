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
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnbackbone/internal/iofs"
	"github.com/gnames/gnbackbone/pkg/backbone"
	"github.com/gnames/gnbackbone/pkg/errcode"
	"github.com/gnames/gnbackbone/pkg/normalize"
	"github.com/gnames/gnbackbone/pkg/parserpool"
	"github.com/gnames/gnbackbone/pkg/store"
	"github.com/gnames/gnfmt"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// nameInput is one name to resolve with an optional kingdom.
type nameInput struct {
	name    string
	kingdom string
}

// output is one line of resolve results.
type output struct {
	Input         string `json:"input"`
	Cleaned       string `json:"cleaned,omitempty"`
	MatchType     string `json:"matchType"`
	SpeciesID     int    `json:"speciesId,omitempty"`
	CanonicalName string `json:"canonicalName,omitempty"`
}

var outputHeader = []string{
	"input", "cleaned", "match_type", "species_id", "canonical_name",
}

// getResolveCmd returns the resolve command.
func getResolveCmd() *cobra.Command {
	resolveCmd := &cobra.Command{
		Use:   "resolve [NAME...]",
		Short: "Resolve taxon names to species of the backbone",
		Long: `Resolve maps free-text taxon names to species of the backbone.

Each name is normalized to a canonical binomial and looked up as:
  1. an exact species name
  2. a synonym of a species
  3. a genus of the backbone, returning or creating its "Genus sp."
     species

Names come from arguments or from a file given by --input, one per
line, optionally followed by a tab and a kingdom. The kingdom selects
the genus when several kingdoms use the same genus name.

Results are printed as TSV (default), CSV or JSON lines.

Examples:
  gnbackbone resolve "Tipula oleracea L."
  gnbackbone resolve "Ficus nova" --kingdom Plantae
  gnbackbone resolve --input names.txt --format csv > results.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Update(flagOptions(cmd))
			input, _ := cmd.Flags().GetString("input")
			format, _ := cmd.Flags().GetString("format")
			return runResolve(cmd.Context(), args, input, format)
		},
	}

	resolveCmd.Flags().StringP("input", "i", "",
		"file with names, one per line, optional tab-separated kingdom")
	resolveCmd.Flags().StringP("kingdom", "k", "",
		"kingdom used for names without one")
	resolveCmd.Flags().StringP("format", "f", "tsv",
		"output format: tsv, csv or json")
	addFlags(resolveCmd, jobsFlag, batchSizeFlag)

	return resolveCmd
}

func runResolve(
	ctx context.Context,
	args []string,
	inputPath, format string,
) error {
	if ctx == nil {
		ctx = context.Background()
	}

	names, err := collectNames(args, inputPath)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	if len(names) == 0 {
		gn.Warn("No names to resolve")
		return nil
	}

	op, st, err := openStore(ctx)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	defer op.Close()
	defer st.Close()

	pool := parserpool.NewPool(cfg.JobsNumber)
	defer pool.Close()
	norm := normalize.New(pool)

	res, err := resolveNames(ctx, st, norm, names)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	w := bufio.NewWriter(os.Stdout)
	if err = writeResults(w, res, format); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	if err = w.Flush(); err != nil {
		return err
	}

	tally := countMatches(res)
	if tally[backbone.PlaceholderCreated] > 0 {
		gn.Info("New placeholder species were created, reindexing")
		if err = index(ctx, st); err != nil {
			gn.PrintErrorMessage(err)
			return err
		}
	}
	if err = st.Flush(ctx); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	printTally(tally, len(res))
	return nil
}

// collectNames gathers names from arguments and an input file.
func collectNames(args []string, inputPath string) ([]nameInput, error) {
	var res []nameInput
	for _, v := range args {
		res = append(res, nameInput{name: v, kingdom: cfg.Resolve.KingdomHint})
	}
	if inputPath == "" {
		return res, nil
	}

	f, err := os.Open(inputPath)
	if err != nil {
		return nil, iofs.ReadFileError(inputPath, err)
	}
	defer f.Close()

	fromFile, err := readNames(f, cfg.Resolve.KingdomHint)
	if err != nil {
		return nil, iofs.ReadFileError(inputPath, err)
	}
	return append(res, fromFile...), nil
}

// readNames parses lines of "name[\tkingdom]". Empty lines are
// skipped, a missing kingdom falls back to hint.
func readNames(r io.Reader, hint string) ([]nameInput, error) {
	var res []nameInput
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		name, kingdom, _ := strings.Cut(line, "\t")
		kingdom = strings.TrimSpace(kingdom)
		if kingdom == "" {
			kingdom = hint
		}
		res = append(res, nameInput{
			name:    strings.TrimSpace(name),
			kingdom: kingdom,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// resolveNames normalizes names concurrently and resolves them in
// input order. Resolution writes to the store, so it runs in one
// goroutine.
func resolveNames(
	ctx context.Context,
	st store.TaxonomyStore,
	norm *normalize.Normalizer,
	names []nameInput,
) ([]*backbone.Resolution, error) {
	cleaned := make([]string, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.JobsNumber, 1))
	for i, v := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var err error
			cleaned[i], err = normalizeName(norm, v)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r := backbone.NewResolver(st, norm,
		backbone.OptKingdomHint(cfg.Resolve.KingdomHint))
	res := make([]*backbone.Resolution, len(names))
	for i, v := range names {
		rsl, err := r.ResolveCleaned(ctx, v.name, cleaned[i], v.kingdom)
		if err != nil {
			return nil, err
		}
		res[i] = rsl
	}
	return res, nil
}

// normalizeName returns an empty string for unparsable names, other
// errors stop the run.
func normalizeName(norm *normalize.Normalizer, inp nameInput) (string, error) {
	res, err := norm.Normalize(inp.name, inp.kingdom)
	if err == nil {
		return res, nil
	}
	if gnErr, ok := err.(*gn.Error); ok &&
		gnErr.Code == errcode.UnparsableNameError {
		return "", nil
	}
	return "", err
}

func toOutput(r *backbone.Resolution) output {
	res := output{
		Input:     r.Input,
		Cleaned:   r.Cleaned,
		MatchType: r.MatchType.String(),
	}
	if r.Species != nil {
		res.SpeciesID = r.Species.ID
		res.CanonicalName = r.Species.CanonicalName
	}
	return res
}

func writeResults(w io.Writer, res []*backbone.Resolution, format string) error {
	var sep rune
	switch strings.ToLower(format) {
	case "json":
		enc := gnfmt.GNjson{}
		for _, v := range res {
			bs, err := enc.Encode(toOutput(v))
			if err != nil {
				return err
			}
			if _, err = fmt.Fprintln(w, string(bs)); err != nil {
				return err
			}
		}
		return nil
	case "csv":
		sep = ','
	default:
		sep = '\t'
	}

	if _, err := fmt.Fprintln(w, gnfmt.ToCSV(outputHeader, sep)); err != nil {
		return err
	}
	for _, v := range res {
		o := toOutput(v)
		var id string
		if o.SpeciesID > 0 {
			id = strconv.Itoa(o.SpeciesID)
		}
		rec := []string{o.Input, o.Cleaned, o.MatchType, id, o.CanonicalName}
		if _, err := fmt.Fprintln(w, gnfmt.ToCSV(rec, sep)); err != nil {
			return err
		}
	}
	return nil
}

func countMatches(res []*backbone.Resolution) map[backbone.MatchType]int {
	tally := make(map[backbone.MatchType]int)
	for _, v := range res {
		tally[v.MatchType]++
	}
	return tally
}

func printTally(tally map[backbone.MatchType]int, total int) {
	line := func(mt backbone.MatchType) string {
		return fmt.Sprintf("  %-20s %s",
			mt.String(), humanize.Comma(int64(tally[mt])))
	}
	gn.Info(`Resolved <em>%s</em> names:
%s
%s
%s
%s
%s
%s`,
		humanize.Comma(int64(total)),
		line(backbone.Exact),
		line(backbone.SynonymMatch),
		line(backbone.Placeholder),
		line(backbone.PlaceholderCreated),
		line(backbone.NoMatch),
		line(backbone.Unparsable),
	)
}
