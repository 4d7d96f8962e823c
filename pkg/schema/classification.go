package schema

import (
	"strings"

	"github.com/gnames/gnbackbone/pkg/ent/rank"
)

// Classification holds the denormalized lineage of a node, one name per
// rank from kingdom to species. Together with the node rank it is the
// deduplication key of nodes.
type Classification struct {
	Kingdom string `db:"kingdom" ddl:"VARCHAR(255) NOT NULL DEFAULT ''" gorm:"type:varchar(255);not null;default:'';uniqueIndex:idx_nodes_lineage,priority:2"`
	Phylum  string `db:"phylum" ddl:"VARCHAR(255) NOT NULL DEFAULT ''" gorm:"type:varchar(255);not null;default:'';uniqueIndex:idx_nodes_lineage,priority:3"`
	// Class is stored as t_class, CLASS is reserved in some SQL dialects.
	Class string `db:"t_class" ddl:"VARCHAR(255) NOT NULL DEFAULT ''" gorm:"column:t_class;type:varchar(255);not null;default:'';uniqueIndex:idx_nodes_lineage,priority:4"`
	// Order is stored as t_order, ORDER is reserved in SQL.
	Order   string `db:"t_order" ddl:"VARCHAR(255) NOT NULL DEFAULT ''" gorm:"column:t_order;type:varchar(255);not null;default:'';uniqueIndex:idx_nodes_lineage,priority:5"`
	Family  string `db:"family" ddl:"VARCHAR(255) NOT NULL DEFAULT ''" gorm:"type:varchar(255);not null;default:'';uniqueIndex:idx_nodes_lineage,priority:6"`
	Genus   string `db:"genus" ddl:"VARCHAR(255) NOT NULL DEFAULT ''" gorm:"type:varchar(255);not null;default:'';uniqueIndex:idx_nodes_lineage,priority:7"`
	Species string `db:"species" ddl:"VARCHAR(255) NOT NULL DEFAULT ''" gorm:"type:varchar(255);not null;default:'';uniqueIndex:idx_nodes_lineage,priority:8"`
}

// LineageColumns are the database columns of Classification in rank
// order.
var LineageColumns = []string{
	"kingdom", "phylum", "t_class", "t_order", "family", "genus", "species",
}

// Get returns the name at the given rank.
func (c Classification) Get(r rank.Rank) string {
	switch r {
	case rank.Kingdom:
		return c.Kingdom
	case rank.Phylum:
		return c.Phylum
	case rank.Class:
		return c.Class
	case rank.Order:
		return c.Order
	case rank.Family:
		return c.Family
	case rank.Genus:
		return c.Genus
	case rank.Species:
		return c.Species
	}
	return ""
}

// Set assigns a name to the given rank. Ranks outside of the lineage
// are ignored.
func (c *Classification) Set(r rank.Rank, name string) {
	switch r {
	case rank.Kingdom:
		c.Kingdom = name
	case rank.Phylum:
		c.Phylum = name
	case rank.Class:
		c.Class = name
	case rank.Order:
		c.Order = name
	case rank.Family:
		c.Family = name
	case rank.Genus:
		c.Genus = name
	case rank.Species:
		c.Species = name
	}
}

// Upto returns a copy of the lineage restricted to ranks from kingdom
// down to r. Names below r are blank.
func (c Classification) Upto(r rank.Rank) Classification {
	var res Classification
	for _, v := range rank.Lineage {
		if v > r {
			break
		}
		res.Set(v, c.Get(v))
	}
	return res
}

// Values returns lineage names in the order of LineageColumns.
func (c Classification) Values() []string {
	res := make([]string, len(rank.Lineage))
	for i, v := range rank.Lineage {
		res[i] = c.Get(v)
	}
	return res
}

// String returns the lineage as a pipe-delimited string.
func (c Classification) String() string {
	return strings.Join(c.Values(), "|")
}
