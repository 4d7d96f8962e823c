package backbone

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gnbackbone/pkg/ent/status"
	"github.com/gnames/gnfmt"
)

// Reasons of a name status report entry.
const (
	ReasonNoKingdom       = "NO KINGDOM"
	ReasonIgnoredSynonym  = "IGNORED SYNONYM"
	ReasonInfraSynonym    = "IGNORED SYNONYM (INFRA)"
	ReasonAlreadyInserted = "ALREADY INSERTED"
	ReasonAsSynonym       = "AS SYNONYM"
	ReasonFiltered        = "FILTERED"
	ReasonSameAsAccepted  = "SAME AS ACCEPTED"
	ReasonNoAccepted      = "UNKNOWN ACCEPTED NAME"
)

// NameStatus tells what happened to a row of the taxa file.
type NameStatus struct {
	TaxonID string
	Name    string
	Added   bool
	Reason  string
}

// StatusString returns ADDED or DISCARDED.
func (ns NameStatus) StatusString() string {
	if ns.Added {
		return "ADDED"
	}
	return "DISCARDED"
}

// Summary contains counters of one build run.
type Summary struct {
	// RunID identifies the run in logs.
	RunID string

	// LinesNum is the number of processed rows.
	LinesNum int

	NodesCreated    int
	SpeciesCreated  int
	SynonymsCreated int

	// IgnoredEntries counts accepted rows without kingdom or rejected by
	// the allow-list.
	IgnoredEntries int

	// IgnoredEmptyKingdom counts accepted rows without kingdom.
	IgnoredEmptyKingdom int

	// FilteredEntries counts accepted rows rejected by the allow-list.
	FilteredEntries int

	// IgnoredSynonyms counts rows with unknown status, infraspecific
	// synonyms, synonyms equal to their accepted name and synonyms with
	// unknown accepted name.
	IgnoredSynonyms int

	// DeferredSynonyms counts synonyms that came before their accepted
	// name and were replayed at the end.
	DeferredSynonyms int

	ExistingSpecies  int
	ExistingSynonyms int

	// Homonyms is the number of names used by more than one node.
	Homonyms int

	// Occurrences tallies occurrence status of created species.
	Occurrences map[string]int

	Duration time.Duration
}

func newSummary(runID string) *Summary {
	res := &Summary{
		RunID:       runID,
		Occurrences: make(map[string]int),
	}
	for _, v := range status.Occurrences {
		res.Occurrences[v] = 0
	}
	res.Occurrences[status.NullOccurrence] = 0
	return res
}

// Log writes the summary to the structured log.
func (s *Summary) Log() {
	slog.Info("Backbone build summary",
		"run_id", s.RunID,
		"lines", s.LinesNum,
		"nodes_created", s.NodesCreated,
		"species_created", s.SpeciesCreated,
		"synonyms_created", s.SynonymsCreated,
		"ignored_entries", s.IgnoredEntries,
		"ignored_empty_kingdom", s.IgnoredEmptyKingdom,
		"ignored_synonyms", s.IgnoredSynonyms,
		"existing_species", s.ExistingSpecies,
		"existing_synonyms", s.ExistingSynonyms,
		"homonyms", s.Homonyms,
		"duration", gnfmt.TimeString(s.Duration.Seconds()),
	)
}

// String returns a human-readable summary.
func (s *Summary) String() string {
	var sb strings.Builder
	line := func(name string, n int) {
		fmt.Fprintf(&sb, "  %-22s %s\n", name, humanize.Comma(int64(n)))
	}
	line("Rows", s.LinesNum)
	line("Nodes created", s.NodesCreated)
	line("Species created", s.SpeciesCreated)
	line("Synonyms created", s.SynonymsCreated)
	line("Existing species", s.ExistingSpecies)
	line("Existing synonyms", s.ExistingSynonyms)
	line("Ignored entries", s.IgnoredEntries)
	line("  without kingdom", s.IgnoredEmptyKingdom)
	line("  filtered", s.FilteredEntries)
	line("Ignored synonyms", s.IgnoredSynonyms)
	line("Deferred synonyms", s.DeferredSynonyms)
	line("Homonyms", s.Homonyms)
	fmt.Fprintf(&sb, "  %-22s %s\n", "Elapsed",
		gnfmt.TimeString(s.Duration.Seconds()))
	return sb.String()
}
