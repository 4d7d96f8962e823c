package backbone

import (
	"strings"

	"github.com/gnames/gnbackbone/pkg/ent/rank"
	"github.com/gnames/gnbackbone/pkg/schema"
)

// Row is one record of a Darwin Core taxa file.
type Row struct {
	// Line is the line number in the source file, 0 if unknown.
	Line int

	TaxonID              string
	AcceptedNameUsageID  string
	TaxonomicStatus      string
	Kingdom              string
	Phylum               string
	Class                string
	Order                string
	Family               string
	Genus                string
	SpecificEpithet      string
	InfraspecificEpithet string
	OccurrenceStatus     string
}

// Binomial composes "genus specificEpithet". The second value is false
// when either part is missing.
func (r Row) Binomial() (string, bool) {
	genus := strings.TrimSpace(r.Genus)
	epithet := strings.TrimSpace(r.SpecificEpithet)
	if genus == "" || epithet == "" {
		return "", false
	}
	return genus + " " + epithet, true
}

// Classification returns the lineage of the row. The species column
// holds the binomial, or stays empty if it cannot be composed.
func (r Row) Classification() schema.Classification {
	res := schema.Classification{
		Kingdom: strings.TrimSpace(r.Kingdom),
		Phylum:  strings.TrimSpace(r.Phylum),
		Class:   strings.TrimSpace(r.Class),
		Order:   strings.TrimSpace(r.Order),
		Family:  strings.TrimSpace(r.Family),
		Genus:   strings.TrimSpace(r.Genus),
	}
	if sp, ok := r.Binomial(); ok {
		res.Set(rank.Species, sp)
	}
	return res
}
