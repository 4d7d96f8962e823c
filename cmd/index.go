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

	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getIndexCmd returns the index command.
func getIndexCmd() *cobra.Command {
	indexCmd := &cobra.Command{
		Use:   "index",
		Short: "Recompute nested-set bounds of the backbone",
		Long: `Index traverses the hierarchy from the root and assigns nested-set
bounds (lft, rgt) to every node. Descendant queries depend on them.

build runs indexing automatically, use this command after manual
changes to the database or an interrupted build.

Examples:
  gnbackbone index`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg.Update(flagOptions(cmd))
			return runIndex(cmd.Context())
		},
	}
	addFlags(indexCmd, batchSizeFlag)
	return indexCmd
}

func runIndex(ctx context.Context) error {
	op, st, err := openStore(ctx)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	defer op.Close()
	defer st.Close()

	if err = index(ctx, st); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	return nil
}
