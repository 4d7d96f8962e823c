// Package ioreport writes build statistics and per-name status reports
// as tab-separated files.
package ioreport

import (
	"bufio"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gnames/gnbackbone/pkg/backbone"
	"github.com/gnames/gnbackbone/pkg/ent/rank"
	"github.com/gnames/gnfmt"
)

// StatsFile returns the name of the statistics report for a date.
func StatsFile(date time.Time) string {
	return "backbone_stats_" + date.Format("2006-01-02") + ".tsv"
}

// StatsRecords converts run counters and backbone statistics into
// key/value pairs in report order. Stats may be nil.
func StatsRecords(sum *backbone.Summary, st *backbone.Stats) [][2]string {
	var res [][2]string
	add := func(k string, v int) {
		res = append(res, [2]string{k, strconv.Itoa(v)})
	}
	perKey := func(prefix string, m map[string]int) {
		for _, k := range slices.Sorted(maps.Keys(m)) {
			name := k
			if name == "" {
				name = "none"
			}
			add(prefix+"_"+strings.ToLower(name), m[k])
		}
	}

	if sum != nil {
		add("lines", sum.LinesNum)
		add("inserted_nodes", sum.NodesCreated)
		add("inserted_species", sum.SpeciesCreated)
		add("inserted_synonyms", sum.SynonymsCreated)
		add("ignored_entries", sum.IgnoredEntries)
		add("ignored_entries_empty_kingdom", sum.IgnoredEmptyKingdom)
		add("filtered_entries", sum.FilteredEntries)
		add("ignored_synonyms", sum.IgnoredSynonyms)
		add("deferred_synonyms", sum.DeferredSynonyms)
		add("existing_species", sum.ExistingSpecies)
		add("existing_synonyms", sum.ExistingSynonyms)
		add("homonyms", sum.Homonyms)
	}

	if st != nil {
		add("nodes", st.NodesNum)
		for _, r := range rank.Lineage {
			add("nodes_"+r.String(), st.NodesPerRank[r.String()])
		}
		add("species", st.SpeciesNum)
		add("synonyms", st.SynonymsNum)
		perKey("species", st.SpeciesPerKingdom)
		add("nodes_without_name", st.UnnamedNodesNum)
		perKey("incomplete", st.IncompletePerKingdom)
		add("incertae_sedis_nodes", st.IncertaeSedisNodes)
		perKey("incertae_sedis", st.IncertaeSedisPerKingdom)
		add("unassigned_nodes", st.UnassignedNodes)
		perKey("unassigned", st.UnassignedPerKingdom)
		add("sp_species", st.PlaceholderNodesNum)
		add("unindexed_nodes", st.UnindexedNodesNum)
	}

	if sum != nil {
		perKey("occ_status", sum.Occurrences)
	}
	return res
}

// WriteStats saves statistics into dir and returns the path of the
// report.
func WriteStats(
	dir string,
	date time.Time,
	sum *backbone.Summary,
	st *backbone.Stats,
) (string, error) {
	path := filepath.Join(dir, StatsFile(date))
	f, err := os.Create(path)
	if err != nil {
		return "", WriteFileError(path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, v := range StatsRecords(sum, st) {
		if _, err = w.WriteString(gnfmt.ToCSV(v[:], '\t') + "\n"); err != nil {
			return "", WriteFileError(path, err)
		}
	}
	if err = w.Flush(); err != nil {
		return "", WriteFileError(path, err)
	}
	return path, nil
}
