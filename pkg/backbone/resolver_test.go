package backbone_test

import (
	"context"
	"testing"

	"github.com/gnames/gnbackbone/internal/iomem"
	"github.com/gnames/gnbackbone/pkg/backbone"
	"github.com/gnames/gnbackbone/pkg/ent/rank"
	"github.com/gnames/gnbackbone/pkg/errcode"
	"github.com/gnames/gnbackbone/pkg/normalize"
	"github.com/gnames/gnbackbone/pkg/parserpool"
	"github.com/gnames/gnbackbone/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	ctx := context.Background()
	st := iomem.New()
	build(t, st, []backbone.Row{tipulaRow, tipulaSynRow, paludosaRow})
	r := backbone.NewResolver(st, nil)

	tests := []struct {
		msg, inp, cleaned string
		match             backbone.MatchType
		species           string
	}{
		{"exact", "Tipula oleracea", "Tipula oleracea",
			backbone.Exact, "Tipula oleracea"},
		{"authorship", "Tipula oleracea Meigen, 1818", "Tipula oleracea",
			backbone.Exact, "Tipula oleracea"},
		{"marker", "Tipula paludosa var. x", "Tipula paludosa",
			backbone.Exact, "Tipula paludosa"},
		{"synonym", "Tipula vetusta", "Tipula vetusta",
			backbone.SynonymMatch, "Tipula oleracea"},
		{"placeholder", "Tipula maxima", "Tipula maxima",
			backbone.PlaceholderCreated, "Tipula sp."},
		{"placeholder again", "Tipula lunata", "Tipula lunata",
			backbone.Placeholder, "Tipula sp."},
		{"genus only", "Tipula sp.", "Tipula",
			backbone.Placeholder, "Tipula sp."},
		{"no match", "Homo sapiens", "Homo sapiens", backbone.NoMatch, ""},
		{"unparsable", "12 monkeys", "", backbone.Unparsable, ""},
		{"empty", "  ", "", backbone.Unparsable, ""},
	}

	for _, v := range tests {
		res, err := r.Resolve(ctx, v.inp, "")
		require.NoError(t, err, v.msg)
		assert.Equal(t, v.inp, res.Input, v.msg)
		assert.Equal(t, v.cleaned, res.Cleaned, v.msg)
		assert.Equal(t, v.match, res.MatchType, v.msg)
		if v.species == "" {
			assert.Nil(t, res.Species, v.msg)
			continue
		}
		require.NotNil(t, res.Species, v.msg)
		assert.Equal(t, v.species, res.Species.CanonicalName, v.msg)
	}
}

func TestResolveIdempotent(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	st := iomem.New()
	build(t, st, []backbone.Row{tipulaRow})
	r := backbone.NewResolver(st, nil)

	for _, name := range []string{"Tipula oleracea", "Tipula nonexistent"} {
		res1, err := r.Resolve(ctx, name, "")
		require.NoError(t, err)
		res2, err := r.Resolve(ctx, name, "")
		require.NoError(t, err)
		require.NotNil(t, res1.Species)
		require.NotNil(t, res2.Species)
		assert.Equal(res1.Species.ID, res2.Species.ID, name)
	}

	n, err := st.CountSpecies(ctx)
	require.NoError(t, err)
	assert.Equal(2, n)
}

func TestResolvePlaceholderNode(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	st := iomem.New()
	build(t, st, []backbone.Row{tipulaRow})
	maxID, err := st.MaxNodeID(ctx)
	require.NoError(t, err)

	res, err := backbone.NewResolver(st, nil).Resolve(ctx, "Tipula longa", "")
	require.NoError(t, err)
	require.Equal(t, backbone.PlaceholderCreated, res.MatchType)

	genus := findNode(t, st, rank.Genus, tipulaRow)
	cls := genus.Classification
	cls.Species = "Tipula sp."
	node, err := st.FindNodeByClassification(ctx, rank.Species, cls)
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.Equal(maxID+1, node.ID)
	assert.Equal(genus.ID, node.ParentID)
	assert.Equal(res.Species.ID, node.SpeciesID)
	assert.Equal("Tipula sp.", node.Name)
	assert.Equal("Animalia", node.Kingdom)
}

func TestBuildAfterPlaceholder(t *testing.T) {
	ctx := context.Background()
	st := iomem.New()
	build(t, st, []backbone.Row{tipulaRow})

	res, err := backbone.NewResolver(st, nil).Resolve(ctx, "Tipula longa", "")
	require.NoError(t, err)
	require.Equal(t, backbone.PlaceholderCreated, res.MatchType)
	maxID, err := st.MaxNodeID(ctx)
	require.NoError(t, err)

	// a new builder continues after the placeholder node, species first
	sum := build(t, st, []backbone.Row{ficusPlantRow})
	assert.Equal(t, 7, sum.NodesCreated)
	sp := findNode(t, st, rank.Species, ficusPlantRow)
	assert.Equal(t, maxID+1, sp.ID)
}

func TestResolveHomonymousGenus(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	st := iomem.New()
	build(t, st, []backbone.Row{ficusPlantRow, ficusSnailRow})
	r := backbone.NewResolver(st, nil)

	_, err := r.Resolve(ctx, "Ficus nonexistent", "")
	assert.Equal(errcode.AmbiguousGenusError, errCode(t, err))

	_, err = r.Resolve(ctx, "Ficus nonexistent", "Fungi")
	assert.Equal(errcode.AmbiguousGenusError, errCode(t, err))

	plant, err := r.Resolve(ctx, "Ficus nonexistent", "plantae")
	require.NoError(t, err)
	assert.Equal(backbone.PlaceholderCreated, plant.MatchType)

	snail, err := r.Resolve(ctx, "Ficus nonexistent", "Animalia")
	require.NoError(t, err)
	assert.Equal(backbone.PlaceholderCreated, snail.MatchType)
	assert.NotEqual(plant.Species.ID, snail.Species.ID)

	again, err := r.Resolve(ctx, "Ficus other", "Plantae")
	require.NoError(t, err)
	assert.Equal(backbone.Placeholder, again.MatchType)
	assert.Equal(plant.Species.ID, again.Species.ID)

	// exact matches do not need a kingdom
	exact, err := r.Resolve(ctx, "Ficus carica", "")
	require.NoError(t, err)
	assert.Equal(backbone.Exact, exact.MatchType)

	withHint := backbone.NewResolver(st, nil, backbone.OptKingdomHint("Animalia"))
	res, err := withHint.Resolve(ctx, "Ficus nonexistent", "")
	require.NoError(t, err)
	assert.Equal(snail.Species.ID, res.Species.ID)
}

func TestResolveAmbiguousSpecies(t *testing.T) {
	ctx := context.Background()
	st := iomem.New()
	build(t, st, []backbone.Row{tipulaRow})
	require.NoError(t, st.InsertSpecies(ctx,
		&schema.Species{CanonicalName: "Tipula oleracea"}))

	_, err := backbone.NewResolver(st, nil).Resolve(ctx, "Tipula oleracea", "")
	assert.Equal(t, errcode.AmbiguousSpeciesError, errCode(t, err))
}

func TestResolveAmbiguousSynonym(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	st := iomem.New()

	synPaludosa := tipulaSynRow
	synPaludosa.TaxonID = "T4"
	synPaludosa.AcceptedNameUsageID = "T3"
	build(t, st, []backbone.Row{tipulaRow, paludosaRow, tipulaSynRow, synPaludosa})

	res, err := backbone.NewResolver(st, nil).Resolve(ctx, "Tipula vetusta", "")
	require.NoError(t, err)
	assert.Equal(backbone.PlaceholderCreated, res.MatchType)
	assert.Equal("Tipula sp.", res.Species.CanonicalName)
}

func TestResolveWithParser(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	st := iomem.New()
	build(t, st, []backbone.Row{tipulaRow, ficusPlantRow})

	pool := parserpool.NewPool(2)
	defer pool.Close()
	r := backbone.NewResolver(st, normalize.New(pool))

	res, err := r.Resolve(ctx, "Tipula (Tipula) oleracea Meigen, 1818", "Animalia")
	require.NoError(t, err)
	assert.Equal(backbone.Exact, res.MatchType)
	assert.Equal("Tipula oleracea", res.Species.CanonicalName)

	res, err = r.Resolve(ctx, "Ficus carica L.", "Plantae")
	require.NoError(t, err)
	assert.Equal(backbone.Exact, res.MatchType)
}

func TestMatchTypeString(t *testing.T) {
	assert.Equal(t, "Synonym", backbone.SynonymMatch.String())
	assert.Equal(t, "PlaceholderCreated", backbone.PlaceholderCreated.String())
	assert.Equal(t, "NoMatch", backbone.NoMatch.String())
}
