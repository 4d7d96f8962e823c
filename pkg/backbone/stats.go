package backbone

import (
	"context"
	"strings"

	"github.com/gnames/gnbackbone/pkg/ent/rank"
	"github.com/gnames/gnbackbone/pkg/normalize"
	"github.com/gnames/gnbackbone/pkg/schema"
	"github.com/gnames/gnbackbone/pkg/store"
)

// Unsure lineage markers counted in statistics.
const (
	IncertaeSedis = "Incertae sedis"
	Unassigned    = "[unassigned]"
)

// Stats describes the content of a backbone.
type Stats struct {
	// NodesPerRank is the number of nodes for every rank.
	NodesPerRank map[string]int

	// SpeciesPerKingdom is the number of species nodes per kingdom.
	SpeciesPerKingdom map[string]int

	// IncompletePerKingdom counts species nodes with an empty lineage
	// column, per kingdom.
	IncompletePerKingdom map[string]int

	// IncertaeSedisPerKingdom counts species nodes with "Incertae sedis"
	// in their lineage, per kingdom.
	IncertaeSedisPerKingdom map[string]int

	// UnassignedPerKingdom counts species nodes with "[unassigned]" in
	// their lineage, per kingdom.
	UnassignedPerKingdom map[string]int

	NodesNum            int
	UnnamedNodesNum     int
	IncertaeSedisNodes  int
	UnassignedNodes     int
	PlaceholderNodesNum int
	UnindexedNodesNum   int
	SpeciesNum          int
	SynonymsNum         int
}

// CollectStats reads the whole store and computes statistics.
func CollectStats(ctx context.Context, st store.TaxonomyStore) (*Stats, error) {
	res := &Stats{
		NodesPerRank:            make(map[string]int),
		SpeciesPerKingdom:       make(map[string]int),
		IncompletePerKingdom:    make(map[string]int),
		IncertaeSedisPerKingdom: make(map[string]int),
		UnassignedPerKingdom:    make(map[string]int),
	}

	err := st.WalkNodes(ctx, func(n schema.Node) error {
		res.add(n)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.SpeciesNum, err = st.CountSpecies(ctx); err != nil {
		return nil, err
	}
	if res.SynonymsNum, err = st.CountSynonyms(ctx); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Stats) add(n schema.Node) {
	s.NodesNum++
	s.NodesPerRank[n.Rank]++
	if !n.IsIndexed() {
		s.UnindexedNodesNum++
	}
	if n.Rank == rank.Life.String() {
		return
	}

	incomplete := hasGaps(n.Classification, rank.New(n.Rank))
	if n.Name == "" && incomplete {
		s.UnnamedNodesNum++
	}

	lineage := n.Classification.String()
	incertae := strings.Contains(lineage, IncertaeSedis)
	unassigned := strings.Contains(lineage, Unassigned)
	if incertae {
		s.IncertaeSedisNodes++
	}
	if unassigned {
		s.UnassignedNodes++
	}

	if n.Rank != rank.Species.String() {
		return
	}
	k := n.Kingdom
	s.SpeciesPerKingdom[k]++
	if normalize.IsPlaceholder(n.Name) {
		s.PlaceholderNodesNum++
	}
	if incomplete {
		s.IncompletePerKingdom[k]++
	}
	if incertae {
		s.IncertaeSedisPerKingdom[k]++
	}
	if unassigned {
		s.UnassignedPerKingdom[k]++
	}
}

// hasGaps checks if any lineage name from kingdom down to r is empty.
func hasGaps(cls schema.Classification, r rank.Rank) bool {
	for _, v := range rank.Lineage {
		if v > r {
			break
		}
		if cls.Get(v) == "" {
			return true
		}
	}
	return false
}
