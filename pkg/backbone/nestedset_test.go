package backbone_test

import (
	"context"
	"testing"

	"github.com/gnames/gnbackbone/internal/iomem"
	"github.com/gnames/gnbackbone/pkg/backbone"
	"github.com/gnames/gnbackbone/pkg/ent/rank"
	"github.com/gnames/gnbackbone/pkg/errcode"
	"github.com/gnames/gnbackbone/pkg/schema"
	"github.com/gnames/gnbackbone/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func indexedStore(t *testing.T) store.TaxonomyStore {
	st := iomem.New()
	build(t, st, []backbone.Row{
		tipulaRow, paludosaRow, ficusPlantRow, ficusSnailRow,
	})
	_, err := backbone.NewIndexer(st).Index(context.Background())
	require.NoError(t, err)
	return st
}

func TestIndex(t *testing.T) {
	assert := assert.New(t)
	st := iomem.New()
	build(t, st, []backbone.Row{tipulaRow})

	var calls int
	ix := backbone.NewIndexer(st, backbone.OptOnNode(func() { calls++ }))
	n, err := ix.Index(context.Background())
	require.NoError(t, err)
	assert.Equal(8, n)
	assert.Equal(8, calls)

	// a single chain: lft grows downwards, the species is a leaf
	for i, r := range rank.Lineage {
		node := findNode(t, st, r, tipulaRow)
		assert.Equal(i+2, node.Lft, r.String())
		assert.Equal(16-(i+2), node.Rgt, r.String())
	}
	root := allNodes(t, st)[0]
	assert.Equal(1, root.Lft)
	assert.Equal(15, root.Rgt)

	sp := findNode(t, st, rank.Species, tipulaRow)
	assert.True(sp.IsLeaf())
	assert.Equal(8, sp.Rgt)
}

func TestNestedSetContainment(t *testing.T) {
	ctx := context.Background()
	st := indexedStore(t)

	nodes := allNodes(t, st)
	hasChildren := make(map[int]bool)
	for _, v := range nodes {
		hasChildren[v.ParentID] = true
	}

	for _, v := range nodes {
		assert.True(t, v.IsIndexed(), v.Name)
		if !hasChildren[v.ID] {
			assert.Equal(t, v.Lft, v.Rgt, v.Name)
		}

		ancestors, err := backbone.Ancestors(ctx, st, v)
		require.NoError(t, err)
		for _, a := range ancestors {
			assert.Less(t, a.Lft, v.Lft, "%s in %s", v.Name, a.Name)
			assert.Less(t, v.Rgt, a.Rgt, "%s in %s", v.Name, a.Name)
		}
	}

	// bounds are unique
	seen := make(map[int]int)
	for _, v := range nodes {
		seen[v.Lft]++
		if v.Rgt != v.Lft {
			seen[v.Rgt]++
		}
	}
	for k, v := range seen {
		assert.Equal(t, 1, v, "bound %d", k)
	}
}

func TestDescendants(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	st := indexedStore(t)

	genus := findNode(t, st, rank.Genus, tipulaRow)
	node, desc, err := backbone.Descendants(ctx, st, genus.ID)
	require.NoError(t, err)
	assert.Equal(genus.ID, node.ID)
	require.Len(t, desc, 2)
	assert.Equal("Tipula oleracea", desc[0].Name)
	assert.Equal("Tipula paludosa", desc[1].Name)

	sp := findNode(t, st, rank.Species, tipulaRow)
	_, desc, err = backbone.Descendants(ctx, st, sp.ID)
	require.NoError(t, err)
	assert.Empty(desc)

	_, _, err = backbone.Descendants(ctx, st, 1000)
	assert.Equal(errcode.NodeNotFoundError, errCode(t, err))
}

func TestAncestors(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	st := indexedStore(t)

	sp := findNode(t, st, rank.Species, ficusPlantRow)
	res, err := backbone.Ancestors(ctx, st, *sp)
	require.NoError(t, err)
	require.Len(t, res, 7)
	assert.Equal("Ficus", res[0].Name)
	assert.Equal("Plantae", res[5].Name)
	assert.Equal(schema.RootID, res[6].ID)
}

func TestHierarchyCycle(t *testing.T) {
	ctx := context.Background()
	st := iomem.New()
	for _, v := range []*schema.Node{
		{ID: 10, ParentID: 11, Rank: "genus", Name: "Loopus",
			Classification: schema.Classification{Genus: "Loopus"}},
		{ID: 11, ParentID: 10, Rank: "family", Name: "Loopidae",
			Classification: schema.Classification{Family: "Loopidae"}},
	} {
		require.NoError(t, st.InsertNode(ctx, v))
	}

	node, err := st.GetNode(ctx, 10)
	require.NoError(t, err)
	_, err = backbone.Ancestors(ctx, st, *node)
	assert.Equal(t, errcode.HierarchyCycleError, errCode(t, err))
}

func TestIndexMaxDepth(t *testing.T) {
	st := iomem.New()
	build(t, st, []backbone.Row{tipulaRow})

	ix := backbone.NewIndexer(st, backbone.OptMaxDepth(3))
	_, err := ix.Index(context.Background())
	assert.Equal(t, errcode.HierarchyCycleError, errCode(t, err))
}

func TestIndexNoRoot(t *testing.T) {
	_, err := backbone.NewIndexer(iomem.New()).Index(context.Background())
	assert.Equal(t, errcode.NodeNotFoundError, errCode(t, err))
}

func TestIndexCancelled(t *testing.T) {
	st := iomem.New()
	build(t, st, []backbone.Row{tipulaRow})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := backbone.NewIndexer(st).Index(ctx)
	assert.Equal(t, errcode.CancelledError, errCode(t, err))
}

func TestReindexAfterPlaceholder(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	st := indexedStore(t)

	res, err := backbone.NewResolver(st, nil).Resolve(ctx, "Tipula maxima", "")
	require.NoError(t, err)
	require.Equal(t, backbone.PlaceholderCreated, res.MatchType)

	stats, err := backbone.CollectStats(ctx, st)
	require.NoError(t, err)
	assert.Equal(1, stats.UnindexedNodesNum)

	_, err = backbone.NewIndexer(st).Index(ctx)
	require.NoError(t, err)

	genus := findNode(t, st, rank.Genus, tipulaRow)
	_, desc, err := backbone.Descendants(ctx, st, genus.ID)
	require.NoError(t, err)
	assert.Len(desc, 3)
}
