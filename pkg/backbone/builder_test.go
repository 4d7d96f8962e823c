package backbone_test

import (
	"context"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/gnbackbone/internal/iomem"
	"github.com/gnames/gnbackbone/pkg/backbone"
	"github.com/gnames/gnbackbone/pkg/ent/rank"
	"github.com/gnames/gnbackbone/pkg/errcode"
	"github.com/gnames/gnbackbone/pkg/schema"
	"github.com/gnames/gnbackbone/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tipulaRow = backbone.Row{
		TaxonID:          "T1",
		TaxonomicStatus:  "accepted name",
		Kingdom:          "Animalia",
		Phylum:           "Arthropoda",
		Class:            "Insecta",
		Order:            "Diptera",
		Family:           "Tipulidae",
		Genus:            "Tipula",
		SpecificEpithet:  "oleracea",
		OccurrenceStatus: "1",
	}

	tipulaSynRow = backbone.Row{
		TaxonID:             "T2",
		AcceptedNameUsageID: "T1",
		TaxonomicStatus:     "synonym",
		Genus:               "Tipula",
		SpecificEpithet:     "vetusta",
	}

	paludosaRow = backbone.Row{
		TaxonID:          "T3",
		TaxonomicStatus:  "accepted name",
		Kingdom:          "Animalia",
		Phylum:           "Arthropoda",
		Class:            "Insecta",
		Order:            "Diptera",
		Family:           "Tipulidae",
		Genus:            "Tipula",
		SpecificEpithet:  "paludosa",
		OccurrenceStatus: "3cE",
	}

	ficusPlantRow = backbone.Row{
		TaxonID:         "F1",
		TaxonomicStatus: "accepted name",
		Kingdom:         "Plantae",
		Phylum:          "Tracheophyta",
		Class:           "Magnoliopsida",
		Order:           "Rosales",
		Family:          "Moraceae",
		Genus:           "Ficus",
		SpecificEpithet: "carica",
	}

	ficusSnailRow = backbone.Row{
		TaxonID:         "F2",
		TaxonomicStatus: "accepted name",
		Kingdom:         "Animalia",
		Phylum:          "Mollusca",
		Class:           "Gastropoda",
		Order:           "Littorinimorpha",
		Family:          "Ficidae",
		Genus:           "Ficus",
		SpecificEpithet: "ficus",
	}
)

// build runs rows through a new Builder on st.
func build(
	t *testing.T,
	st store.TaxonomyStore,
	rows []backbone.Row,
	opts ...backbone.Option,
) *backbone.Summary {
	ctx := context.Background()
	b, err := backbone.NewBuilder(ctx, st, opts...)
	require.NoError(t, err)
	for _, v := range rows {
		require.NoError(t, b.AddRow(ctx, v))
	}
	res, err := b.Finish(ctx)
	require.NoError(t, err)
	return res
}

func allNodes(t *testing.T, st store.TaxonomyStore) []schema.Node {
	var res []schema.Node
	err := st.WalkNodes(context.Background(), func(n schema.Node) error {
		res = append(res, n)
		return nil
	})
	require.NoError(t, err)
	return res
}

func findNode(
	t *testing.T,
	st store.TaxonomyStore,
	r rank.Rank,
	row backbone.Row,
) *schema.Node {
	cls := row.Classification().Upto(r)
	res, err := st.FindNodeByClassification(context.Background(), r, cls)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func errCode(t *testing.T, err error) gn.ErrorCode {
	require.Error(t, err)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	return gnErr.Code
}

func TestBuildScenario(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	st := iomem.New()

	sum := build(t, st, []backbone.Row{tipulaRow, tipulaSynRow})
	assert.Equal(2, sum.LinesNum)
	assert.Equal(7, sum.NodesCreated)
	assert.Equal(1, sum.SpeciesCreated)
	assert.Equal(1, sum.SynonymsCreated)
	assert.Equal(1, sum.Occurrences["1"])
	assert.NotEmpty(sum.RunID)

	nodes := allNodes(t, st)
	assert.Len(nodes, 8)
	assert.Equal(schema.RootID, nodes[0].ID)
	assert.Equal(schema.RootParentID, nodes[0].ParentID)

	sps, err := st.FindSpeciesByName(ctx, "Tipula oleracea")
	require.NoError(t, err)
	require.Len(t, sps, 1)
	sp := sps[0]
	assert.Equal("1", sp.OccurrenceStatus.String)
	assert.True(sp.OccurrenceStatus.Valid)
	assert.NotEmpty(sp.NameUUID)

	syns, err := st.FindSynonymByName(ctx, "Tipula vetusta")
	require.NoError(t, err)
	require.Len(t, syns, 1)
	assert.Equal(sp.ID, syns[0].SpeciesID)
	assert.Equal("synonym", syns[0].TaxonomicStatus)

	// every node hangs on the rank above
	spNode := findNode(t, st, rank.Species, tipulaRow)
	assert.Equal(sp.ID, spNode.SpeciesID)
	curr := spNode
	for _, r := range rank.Upward(rank.Genus) {
		parent := findNode(t, st, r, tipulaRow)
		assert.Equal(parent.ID, curr.ParentID, r.String())
		curr = parent
	}
	assert.Equal(schema.RootID, curr.ParentID)

	res, err := backbone.NewResolver(st, nil).Resolve(ctx, "Tipula vetusta", "")
	require.NoError(t, err)
	assert.Equal(backbone.SynonymMatch, res.MatchType)
	assert.Equal(sp.ID, res.Species.ID)
}

func TestBuildSharedLineage(t *testing.T) {
	assert := assert.New(t)
	st := iomem.New()

	sum := build(t, st, []backbone.Row{tipulaRow, paludosaRow})
	assert.Equal(8, sum.NodesCreated)
	assert.Equal(2, sum.SpeciesCreated)
	assert.Equal(1, sum.Occurrences["3c"])

	genus := findNode(t, st, rank.Genus, tipulaRow)
	for _, row := range []backbone.Row{tipulaRow, paludosaRow} {
		node := findNode(t, st, rank.Species, row)
		assert.Equal(genus.ID, node.ParentID)
	}
}

func TestBuildIdempotent(t *testing.T) {
	assert := assert.New(t)
	st := iomem.New()
	rows := []backbone.Row{tipulaRow, tipulaSynRow}

	build(t, st, rows)
	sum := build(t, st, rows)
	assert.Equal(0, sum.NodesCreated)
	assert.Equal(0, sum.SpeciesCreated)
	assert.Equal(0, sum.SynonymsCreated)
	assert.Equal(1, sum.ExistingSpecies)
	assert.Equal(1, sum.ExistingSynonyms)

	assert.Len(allNodes(t, st), 8)
	n, err := st.CountSynonyms(context.Background())
	require.NoError(t, err)
	assert.Equal(1, n)
}

func TestBuildUniqueness(t *testing.T) {
	st := iomem.New()
	emptyPhylum := paludosaRow
	emptyPhylum.TaxonID = "T4"
	emptyPhylum.Phylum = ""

	rows := []backbone.Row{
		tipulaRow, paludosaRow, emptyPhylum, ficusPlantRow, ficusSnailRow,
		tipulaRow, ficusSnailRow,
	}
	sum := build(t, st, rows)
	assert.Equal(t, 2, sum.ExistingSpecies)

	type key struct {
		rank string
		cls  schema.Classification
	}
	seen := make(map[key]int)
	for _, v := range allNodes(t, st) {
		k := key{rank: v.Rank, cls: v.Classification}
		id, ok := seen[k]
		assert.False(t, ok, "nodes %d and %d share lineage", id, v.ID)
		seen[k] = v.ID
	}

	genera, err := st.FindGenusNodesByName(context.Background(), "Ficus")
	require.NoError(t, err)
	assert.Len(t, genera, 2)
}

func TestBuildHomonyms(t *testing.T) {
	st := iomem.New()
	sum := build(t, st, []backbone.Row{ficusPlantRow, ficusSnailRow})
	assert.Equal(t, 1, sum.Homonyms)
	assert.Equal(t, 14, sum.NodesCreated)
}

func TestGetOrCreateNode(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	st := iomem.New()
	b, err := backbone.NewBuilder(ctx, st)
	require.NoError(t, err)

	cls := tipulaRow.Classification().Upto(rank.Genus)
	node, created, err := b.GetOrCreateNode(ctx, rank.Genus, 0, cls)
	require.NoError(t, err)
	assert.True(created)
	assert.Equal(schema.RootID+1, node.ID)
	assert.Equal(schema.RootID, node.ParentID)
	assert.Equal("Tipula", node.Name)

	again, created, err := b.GetOrCreateNode(ctx, rank.Genus, 0, cls)
	require.NoError(t, err)
	assert.False(created)
	assert.Equal(node.ID, again.ID)

	// same columns at another rank is another node
	other, created, err := b.GetOrCreateNode(ctx, rank.Family, 0,
		tipulaRow.Classification().Upto(rank.Family))
	require.NoError(t, err)
	assert.True(created)
	assert.Equal(node.ID+1, other.ID)
}

func TestBuildSkippedRows(t *testing.T) {
	noKingdom := paludosaRow
	noKingdom.Kingdom = ""

	infraSyn := tipulaSynRow
	infraSyn.TaxonID = "T5"
	infraSyn.InfraspecificEpithet = "minor"

	sameSyn := tipulaSynRow
	sameSyn.TaxonID = "T6"
	sameSyn.SpecificEpithet = "oleracea"

	orphanSyn := tipulaSynRow
	orphanSyn.TaxonID = "T7"
	orphanSyn.AcceptedNameUsageID = "T100"

	noAccID := tipulaSynRow
	noAccID.TaxonID = "T9"
	noAccID.AcceptedNameUsageID = ""

	doubtful := paludosaRow
	doubtful.TaxonID = "T8"
	doubtful.TaxonomicStatus = "doubtful"

	tests := []struct {
		msg     string
		row     backbone.Row
		reason  string
		ignored int
		synIgn  int
	}{
		{"no kingdom", noKingdom, backbone.ReasonNoKingdom, 1, 0},
		{"infra synonym", infraSyn, backbone.ReasonInfraSynonym, 0, 1},
		{"same as accepted", sameSyn, backbone.ReasonSameAsAccepted, 0, 1},
		{"unknown accepted", orphanSyn, backbone.ReasonNoAccepted, 0, 1},
		{"empty accepted id", noAccID, backbone.ReasonNoAccepted, 0, 1},
		{"unknown status", doubtful, backbone.ReasonIgnoredSynonym, 0, 1},
	}

	for _, v := range tests {
		st := iomem.New()
		var statuses []backbone.NameStatus
		report := backbone.OptNameReport(func(ns backbone.NameStatus) {
			statuses = append(statuses, ns)
		})
		sum := build(t, st, []backbone.Row{tipulaRow, v.row}, report)
		assert.Equal(t, 7, sum.NodesCreated, v.msg)
		assert.Equal(t, v.ignored, sum.IgnoredEntries, v.msg)
		assert.Equal(t, v.synIgn, sum.IgnoredSynonyms, v.msg)
		require.Len(t, statuses, 2, v.msg)
		assert.True(t, statuses[0].Added, v.msg)
		assert.Equal(t, "ADDED", statuses[0].StatusString(), v.msg)
		assert.False(t, statuses[1].Added, v.msg)
		assert.Equal(t, "DISCARDED", statuses[1].StatusString(), v.msg)
		assert.Equal(t, v.reason, statuses[1].Reason, v.msg)
	}
}

func TestBuildEmptyTaxonID(t *testing.T) {
	assert := assert.New(t)
	acc := tipulaRow
	acc.TaxonID = ""

	syn := tipulaSynRow
	syn.AcceptedNameUsageID = ""
	syn.Genus = "Aus"
	syn.SpecificEpithet = "bus"

	st := iomem.New()
	sum := build(t, st, []backbone.Row{acc, syn})
	assert.Equal(1, sum.SpeciesCreated)
	assert.Equal(0, sum.SynonymsCreated)
	assert.Equal(0, sum.DeferredSynonyms)
	assert.Equal(1, sum.IgnoredSynonyms)

	syns, err := st.FindSynonymByName(context.Background(), "Aus bus")
	require.NoError(t, err)
	assert.Empty(syns)
}

func TestBuildDeferredSynonym(t *testing.T) {
	assert := assert.New(t)
	st := iomem.New()

	sum := build(t, st, []backbone.Row{tipulaSynRow, tipulaRow})
	assert.Equal(1, sum.DeferredSynonyms)
	assert.Equal(1, sum.SynonymsCreated)
	assert.Equal(0, sum.IgnoredSynonyms)

	syns, err := st.FindSynonymByName(context.Background(), "Tipula vetusta")
	require.NoError(t, err)
	assert.Len(syns, 1)
}

func TestBuildFilter(t *testing.T) {
	assert := assert.New(t)
	st := iomem.New()

	f, unknown := backbone.NewFilter(map[string][]string{
		"family": {"TIPULIDAE", "Moraceae"},
		"tribe":  {"Ficeae"},
	})
	assert.Equal([]string{"tribe"}, unknown)

	rows := []backbone.Row{tipulaRow, ficusPlantRow, ficusSnailRow}
	sum := build(t, st, rows, backbone.OptFilter(f))
	assert.Equal(2, sum.SpeciesCreated)
	assert.Equal(1, sum.FilteredEntries)
	assert.Equal(1, sum.IgnoredEntries)
}

func TestBuildOccurrence(t *testing.T) {
	tests := []struct {
		msg, occ, code string
	}{
		{"code", "2b", "2b"},
		{"code with comment", "1a Native", "1a"},
		{"invalid 3cE", "3cE", "3c"},
		{"unknown", "bogus", "Null"},
		{"empty", "", "Null"},
	}

	for _, v := range tests {
		st := iomem.New()
		row := tipulaRow
		row.OccurrenceStatus = v.occ
		sum := build(t, st, []backbone.Row{row})
		assert.Equal(t, 1, sum.Occurrences[v.code], v.msg)

		sps, err := st.FindSpeciesByName(context.Background(), "Tipula oleracea")
		require.NoError(t, err)
		require.Len(t, sps, 1)
		assert.Equal(t, v.code != "Null", sps[0].OccurrenceStatus.Valid, v.msg)
	}
}

func TestBuildBinomialError(t *testing.T) {
	ctx := context.Background()
	noEpithet := tipulaRow
	noEpithet.SpecificEpithet = ""
	noGenus := tipulaSynRow
	noGenus.Genus = " "

	for _, row := range []backbone.Row{noEpithet, noGenus} {
		b, err := backbone.NewBuilder(ctx, iomem.New())
		require.NoError(t, err)
		err = b.AddRow(ctx, row)
		assert.Equal(t, errcode.BinomialError, errCode(t, err), row.TaxonID)
	}
}

func TestBuildChannel(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	b, err := backbone.NewBuilder(ctx, iomem.New())
	require.NoError(t, err)

	ch := make(chan backbone.Row)
	go func() {
		defer close(ch)
		for _, v := range []backbone.Row{tipulaRow, tipulaSynRow, paludosaRow} {
			ch <- v
		}
	}()

	sum, err := b.Build(ctx, ch)
	require.NoError(t, err)
	assert.Equal(3, sum.LinesNum)
	assert.Equal(2, sum.SpeciesCreated)
	assert.Contains(sum.String(), "Species created")

	ctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = b.Build(ctx, make(chan backbone.Row))
	assert.Equal(errcode.CancelledError, errCode(t, err))
}
