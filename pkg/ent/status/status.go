// Package status keeps closed sets of taxonomic and occurrence statuses
// recognized during ingestion.
package status

import "strings"

// Accepted is the taxonomic status of accepted names.
const Accepted = "accepted name"

// Synonyms are taxonomic statuses modeled as synonyms of an accepted
// species.
var Synonyms = map[string]struct{}{
	"synonym":         {},
	"basionym":        {},
	"nomen nudum":     {},
	"misspelled name": {},
	"invalid name":    {},
}

// Taxonomic classifies a raw taxonomic status.
type Taxonomic int

const (
	Other Taxonomic = iota
	AcceptedName
	Synonym
)

// NewTaxonomic classifies a raw status string, case-insensitively.
func NewTaxonomic(s string) Taxonomic {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == Accepted {
		return AcceptedName
	}
	if _, ok := Synonyms[s]; ok {
		return Synonym
	}
	return Other
}

// IsSynonymStatus returns true if s belongs to the synonym status set.
func IsSynonymStatus(s string) bool {
	return NewTaxonomic(s) == Synonym
}

// NullOccurrence is the tally key for species without occurrence status.
const NullOccurrence = "Null"

// Occurrences lists occurrence status codes in report order.
var Occurrences = []string{
	"0", "0a", "1", "1a", "1b", "2", "2a", "2b", "2c", "2d",
	"3a", "3b", "3c", "3d", "4",
}

// Occurrence normalizes a raw occurrence status. It keeps the first
// whitespace-separated token and maps the known invalid code "3cE" to
// "3c". The second value is false when the code is outside of the
// closed set. Empty input returns an empty code and true.
func Occurrence(s string) (string, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "", true
	}
	code := fields[0]
	if code == "3cE" {
		code = "3c"
	}
	for _, v := range Occurrences {
		if v == code {
			return code, true
		}
	}
	return "", false
}
