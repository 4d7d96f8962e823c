// Package schema provides database models of the taxonomic backbone.
package schema

import (
	"database/sql"
	"time"
)

const (
	// RootID is the identifier of the "All of life" node.
	RootID = 2
	// RootParentID is the sentinel parent of the root node.
	RootParentID = 1
	// RootName is the name of the root node.
	RootName = "All of life"
)

// DDLGenerator defines how Go models generate SQL DDL.
type DDLGenerator interface {
	// TableDDL returns the CREATE TABLE statement for this model.
	TableDDL() string

	// IndexDDL returns CREATE INDEX statements for this model.
	// Returns empty slice if no indexes needed.
	IndexDDL() []string

	// TableName returns the table name for this model.
	TableName() string
}

// Node is one entry of the rank hierarchy.
type Node struct {
	// ID is assigned by the builder from a monotonic counter. The root
	// has ID 2.
	ID int `db:"id" ddl:"INTEGER PRIMARY KEY" gorm:"primaryKey;autoIncrement:false"`

	// ParentID is the ID of the parent node. The root's parent is 1.
	ParentID int `db:"parent_id" ddl:"INTEGER NOT NULL" gorm:"not null;index"`

	// Rank is one of life, kingdom, phylum, class, order, family, genus,
	// species.
	Rank string `db:"rank" ddl:"VARCHAR(20) NOT NULL" gorm:"type:varchar(20);not null;uniqueIndex:idx_nodes_lineage,priority:1;index:idx_nodes_rank_name,priority:1"`

	// Name at this rank, may be empty for unplaced taxa.
	Name string `db:"name" ddl:"VARCHAR(255) NOT NULL DEFAULT ''" gorm:"type:varchar(255);not null;default:'';index:idx_nodes_rank_name,priority:2"`

	// Classification is the lineage from kingdom down to this rank.
	Classification `gorm:"embedded"`

	// SpeciesID links species-rank nodes to their Species, 0 otherwise.
	SpeciesID int `db:"species_id" ddl:"INTEGER NOT NULL DEFAULT 0" gorm:"not null;default:0;index"`

	// Lft is the left nested-set bound, 0 until indexed.
	Lft int `db:"lft" ddl:"INTEGER NOT NULL DEFAULT 0" gorm:"not null;default:0;index"`

	// Rgt is the right nested-set bound, 0 until indexed. Leaves have
	// Rgt == Lft.
	Rgt int `db:"rgt" ddl:"INTEGER NOT NULL DEFAULT 0" gorm:"not null;default:0"`
}

// IsIndexed returns true when nested-set bounds were assigned.
func (n Node) IsIndexed() bool {
	return n.Lft > 0
}

// IsLeaf returns true for indexed nodes without descendants.
func (n Node) IsLeaf() bool {
	return n.IsIndexed() && n.Lft == n.Rgt
}

// Contains returns true if other is a descendant of n according to
// nested-set bounds.
func (n Node) Contains(other Node) bool {
	return n.Lft < other.Lft && other.Rgt < n.Rgt
}

// Species is a canonical species identity.
type Species struct {
	ID int `db:"id" ddl:"INTEGER PRIMARY KEY" gorm:"primaryKey"`

	// CanonicalName is a cleaned binomial, or "Genus sp." for
	// placeholders.
	CanonicalName string `db:"canonical_name" ddl:"VARCHAR(255) NOT NULL" gorm:"type:varchar(255);not null;index"`

	// NameUUID is UUID v5 of the canonical name.
	NameUUID string `db:"name_uuid" ddl:"VARCHAR(36) NOT NULL" gorm:"type:varchar(36);not null"`

	// OccurrenceStatus is a code from a closed set, NULL when unknown.
	OccurrenceStatus sql.NullString `db:"occurrence_status" ddl:"VARCHAR(10)" gorm:"type:varchar(10)"`
}

// Synonym is an alternative name of an accepted Species.
type Synonym struct {
	ID int `db:"id" ddl:"INTEGER PRIMARY KEY" gorm:"primaryKey"`

	// Name is the cleaned alternative name.
	Name string `db:"name" ddl:"VARCHAR(255) NOT NULL" gorm:"type:varchar(255);not null;uniqueIndex:idx_synonyms_name_species,priority:1"`

	// TaxonomicStatus is one of synonym, basionym, nomen nudum,
	// misspelled name, invalid name.
	TaxonomicStatus string `db:"taxonomic_status" ddl:"VARCHAR(50) NOT NULL" gorm:"type:varchar(50);not null"`

	// SpeciesID refers to the accepted Species.
	SpeciesID int `db:"species_id" ddl:"INTEGER NOT NULL" gorm:"not null;uniqueIndex:idx_synonyms_name_species,priority:2"`
}

// SchemaVersion tracks database schema migrations.
type SchemaVersion struct {
	Version     string    `db:"version" ddl:"VARCHAR(50) PRIMARY KEY" gorm:"type:varchar(50);primaryKey"`
	Description string    `db:"description" ddl:"TEXT" gorm:"type:text"`
	AppliedAt   time.Time `db:"applied_at" ddl:"TIMESTAMP DEFAULT CURRENT_TIMESTAMP" gorm:"default:CURRENT_TIMESTAMP"`
}
