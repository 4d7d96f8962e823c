package backbone

import (
	"context"

	"github.com/gnames/gnbackbone/pkg/ent/rank"
	"github.com/gnames/gnbackbone/pkg/schema"
	"github.com/gnames/gnbackbone/pkg/store"
)

// nodeIDs hands out node identifiers from a monotonic counter.
type nodeIDs struct {
	last int
}

// newNodeIDs starts the counter after the largest ID of the store, and
// never below the root.
func newNodeIDs(ctx context.Context, st store.TaxonomyStore) (*nodeIDs, error) {
	last, err := st.MaxNodeID(ctx)
	if err != nil {
		return nil, err
	}
	return &nodeIDs{last: max(last, schema.RootID)}, nil
}

func (ids *nodeIDs) next() int {
	ids.last++
	return ids.last
}

// GetOrCreateNode returns a node of rank r with lineage cls, creating
// it if it does not exist yet. The lineage must be restricted to ranks
// from kingdom to r. A new node gets the next ID, parent set to the root
// and speciesID as a placeholder link. The second value is true when
// the node was created.
//
// It is the only place where nodes of the backbone lineage are created,
// so identical lineages are never inserted twice.
func (b *Builder) GetOrCreateNode(
	ctx context.Context,
	r rank.Rank,
	speciesID int,
	cls schema.Classification,
) (*schema.Node, bool, error) {
	node, err := b.store.FindNodeByClassification(ctx, r, cls)
	if err != nil {
		return nil, false, err
	}
	if node != nil {
		return node, false, nil
	}

	node = &schema.Node{
		ID:             b.ids.next(),
		ParentID:       schema.RootID,
		Rank:           r.String(),
		Name:           cls.Get(r),
		Classification: cls,
		SpeciesID:      speciesID,
	}
	if err = b.store.InsertNode(ctx, node); err != nil {
		return nil, false, err
	}
	b.summary.NodesCreated++
	return node, true, nil
}

// ensureRoot creates the "All of life" node if it is missing.
func ensureRoot(ctx context.Context, st store.TaxonomyStore) error {
	root, err := st.GetNode(ctx, schema.RootID)
	if err != nil {
		return err
	}
	if root != nil {
		return nil
	}
	return st.InsertNode(ctx, &schema.Node{
		ID:       schema.RootID,
		ParentID: schema.RootParentID,
		Rank:     rank.Life.String(),
		Name:     schema.RootName,
	})
}
