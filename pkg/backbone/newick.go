package backbone

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/gnames/gnbackbone/pkg/schema"
	"github.com/gnames/gnbackbone/pkg/store"
)

// Newick exports the subtree of a node in Newick format with labels on
// internal nodes, for example "((Tipula oleracea)Tipula)Tipulidae;".
// Indexed subtrees are read with one nested-set query, otherwise the
// export walks child links.
func Newick(ctx context.Context, st store.TaxonomyStore, id int) (string, error) {
	node, desc, err := Descendants(ctx, st, id)
	if err != nil {
		return "", err
	}

	children := make(map[int][]schema.Node)
	if node.IsIndexed() {
		for _, v := range desc {
			children[v.ParentID] = append(children[v.ParentID], v)
		}
	} else {
		slog.Warn("Node is not indexed, walking children", "node_id", id)
		if err = collectChildren(ctx, st, node.ID, children, 0); err != nil {
			return "", err
		}
	}

	var sb strings.Builder
	if err = writeNewick(&sb, *node, children, 0); err != nil {
		return "", err
	}
	sb.WriteString(";")
	return sb.String(), nil
}

func collectChildren(
	ctx context.Context,
	st store.TaxonomyStore,
	id int,
	children map[int][]schema.Node,
	depth int,
) error {
	if depth > MaxDepth {
		return HierarchyCycleError(id, MaxDepth)
	}
	nodes, err := st.GetChildren(ctx, id)
	if err != nil {
		return err
	}
	children[id] = nodes
	for _, v := range nodes {
		if err = collectChildren(ctx, st, v.ID, children, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func writeNewick(
	sb *strings.Builder,
	node schema.Node,
	children map[int][]schema.Node,
	depth int,
) error {
	if depth > MaxDepth {
		return HierarchyCycleError(node.ID, MaxDepth)
	}
	kids := children[node.ID]
	if len(kids) > 0 {
		slices.SortFunc(kids, func(a, b schema.Node) int {
			if a.Lft != b.Lft {
				return a.Lft - b.Lft
			}
			return a.ID - b.ID
		})
		sb.WriteString("(")
		for i, v := range kids {
			if i > 0 {
				sb.WriteString(",")
			}
			if err := writeNewick(sb, v, children, depth+1); err != nil {
				return err
			}
		}
		sb.WriteString(")")
	}
	sb.WriteString(newickLabel(node.Name))
	return nil
}

// newickLabel quotes labels with characters that have a meaning in
// Newick. Single quotes are doubled inside quoted labels.
func newickLabel(name string) string {
	if !strings.ContainsAny(name, " ()[]':;,") {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
