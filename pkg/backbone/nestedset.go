package backbone

import (
	"context"
	"log/slog"

	"github.com/gnames/gnbackbone/pkg/schema"
	"github.com/gnames/gnbackbone/pkg/store"
)

// MaxDepth bounds walks over the hierarchy. The backbone has eight
// levels, anything deeper means a broken parent link.
const MaxDepth = 32

// Indexer assigns nested-set bounds to all nodes reachable from the
// root.
type Indexer struct {
	store    store.TaxonomyStore
	maxDepth int
	onNode   func()
	counter  int
	indexed  int
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// OptMaxDepth overrides the depth bound of the traversal.
func OptMaxDepth(depth int) IndexerOption {
	return func(ix *Indexer) {
		if depth > 0 {
			ix.maxDepth = depth
		}
	}
}

// OptOnNode sets a callback called after each indexed node, for
// example to advance a progress bar.
func OptOnNode(fn func()) IndexerOption {
	return func(ix *Indexer) {
		ix.onNode = fn
	}
}

// NewIndexer creates an Indexer for the store.
func NewIndexer(st store.TaxonomyStore, opts ...IndexerOption) *Indexer {
	res := &Indexer{
		store:    st,
		maxDepth: MaxDepth,
		onNode:   func() {},
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// Index traverses the hierarchy from the root in pre-order, children
// ordered by ID. The counter starts at 1. A node gets its left bound on
// entry. A leaf gets right equal to its left. An internal node gets
// right after all its children are done. It returns the number of
// indexed nodes.
func (ix *Indexer) Index(ctx context.Context) (int, error) {
	ix.counter = 1
	ix.indexed = 0

	root, err := ix.store.GetNode(ctx, schema.RootID)
	if err != nil {
		return 0, err
	}
	if root == nil {
		return 0, NodeNotFoundError(schema.RootID)
	}

	slog.Info("Computing nested-set bounds")
	if err = ix.traverse(ctx, root.ID, 0); err != nil {
		return 0, err
	}
	if err = ix.store.Flush(ctx); err != nil {
		return 0, err
	}
	slog.Info("Computed nested-set bounds",
		"nodes", ix.indexed, "last_bound", ix.counter-1)
	return ix.indexed, nil
}

func (ix *Indexer) traverse(ctx context.Context, id, depth int) error {
	if depth > ix.maxDepth {
		return HierarchyCycleError(id, ix.maxDepth)
	}
	if err := ctx.Err(); err != nil {
		return CancelledError(err)
	}

	lft := ix.counter
	ix.counter++

	children, err := ix.store.GetChildren(ctx, id)
	if err != nil {
		return err
	}

	rgt := lft
	if len(children) > 0 {
		for _, v := range children {
			if err = ix.traverse(ctx, v.ID, depth+1); err != nil {
				return err
			}
		}
		rgt = ix.counter
		ix.counter++
	}

	if err = ix.store.SetBounds(ctx, id, lft, rgt); err != nil {
		return err
	}
	ix.indexed++
	ix.onNode()
	return nil
}

// Ancestors returns ancestors of a node from its parent up to the root.
// The walk follows parent links and fails with HierarchyCycleError if it
// goes deeper than MaxDepth.
func Ancestors(
	ctx context.Context,
	st store.TaxonomyStore,
	node schema.Node,
) ([]schema.Node, error) {
	var res []schema.Node
	curr := node
	for depth := 0; curr.ID != schema.RootID; depth++ {
		if depth >= MaxDepth {
			return nil, HierarchyCycleError(node.ID, MaxDepth)
		}
		parent, err := st.GetNode(ctx, curr.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			break
		}
		res = append(res, *parent)
		curr = *parent
	}
	return res, nil
}

// Descendants returns all nodes inside the nested-set interval of the
// node with the given ID, ordered by their left bound.
func Descendants(
	ctx context.Context,
	st store.TaxonomyStore,
	id int,
) (*schema.Node, []schema.Node, error) {
	node, err := st.GetNode(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if node == nil {
		return nil, nil, NodeNotFoundError(id)
	}
	if node.IsLeaf() {
		return node, nil, nil
	}
	res, err := st.GetDescendants(ctx, *node)
	if err != nil {
		return nil, nil, err
	}
	return node, res, nil
}
