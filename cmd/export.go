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
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gnbackbone/pkg/backbone"
	"github.com/gnames/gnbackbone/pkg/schema"
	"github.com/gnames/gnbackbone/pkg/store"
	"github.com/spf13/cobra"
)

// getExportCmd returns the export command.
func getExportCmd() *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export a subtree of the backbone as Newick",
		Long: `Export prints the subtree of a node in Newick format. Leaves and
internal nodes are labeled with their names.

With --lineage it prints the path from the node up to the root
instead.

Examples:
  gnbackbone export --node 2 > backbone.nwk
  gnbackbone export --node 1234 --lineage`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetInt("node")
			lineage, _ := cmd.Flags().GetBool("lineage")
			return runExport(cmd.Context(), id, lineage)
		},
	}

	exportCmd.Flags().IntP("node", "N", schema.RootID,
		"ID of the subtree root")
	exportCmd.Flags().BoolP("lineage", "l", false,
		"print ancestors of the node instead of its subtree")
	return exportCmd
}

func runExport(ctx context.Context, id int, lineage bool) error {
	op, st, err := openStore(ctx)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	defer op.Close()
	defer st.Close()

	var out string
	if lineage {
		out, err = lineageString(ctx, st, id)
	} else {
		out, err = backbone.Newick(ctx, st, id)
	}
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	fmt.Println(out)
	return nil
}

// lineageString renders ancestors of a node as
// "name (rank) < name (rank) < ...", starting from the node itself.
func lineageString(
	ctx context.Context,
	st store.TaxonomyStore,
	id int,
) (string, error) {
	node, err := st.GetNode(ctx, id)
	if err != nil {
		return "", err
	}
	if node == nil {
		return "", backbone.NodeNotFoundError(id)
	}
	ancestors, err := backbone.Ancestors(ctx, st, *node)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(ancestors)+1)
	for _, v := range append([]schema.Node{*node}, ancestors...) {
		name := v.Name
		if name == "" {
			name = "-"
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", name, v.Rank))
	}
	return strings.Join(parts, " < "), nil
}
