// Package rank provides the ordered set of ranks used by the backbone
// hierarchy.
package rank

import "strings"

// Rank is a level of the backbone hierarchy. Lower values are closer
// to the root.
type Rank int

const (
	Unknown Rank = iota
	Life
	Kingdom
	Phylum
	Class
	Order
	Family
	Genus
	Species
)

var names = map[Rank]string{
	Unknown: "",
	Life:    "life",
	Kingdom: "kingdom",
	Phylum:  "phylum",
	Class:   "class",
	Order:   "order",
	Family:  "family",
	Genus:   "genus",
	Species: "species",
}

// Lineage lists ranks that carry a denormalized lineage column, from
// kingdom down to species.
var Lineage = []Rank{Kingdom, Phylum, Class, Order, Family, Genus, Species}

// String returns the lower-case name of the rank.
func (r Rank) String() string {
	return names[r]
}

// New converts a rank name to Rank. Unknown names return Unknown.
func New(s string) Rank {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, v := range names {
		if v == s && k != Unknown {
			return k
		}
	}
	return Unknown
}

// Parent returns the rank directly above r, or Unknown for Life.
func (r Rank) Parent() Rank {
	if r <= Life || r > Species {
		return Unknown
	}
	return r - 1
}

// Upward returns lineage ranks from r up to kingdom, for example
// species, genus, ..., kingdom.
func Upward(r Rank) []Rank {
	var res []Rank
	for i := len(Lineage) - 1; i >= 0; i-- {
		if Lineage[i] <= r {
			res = append(res, Lineage[i])
		}
	}
	return res
}
