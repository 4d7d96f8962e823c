// Package store defines the persistence contract of the taxonomic
// backbone. Implementations live in internal/iomem (in-memory arena)
// and internal/iosql (SQLite and PostgreSQL).
package store

import (
	"context"

	"github.com/gnames/gnbackbone/pkg/ent/rank"
	"github.com/gnames/gnbackbone/pkg/schema"
)

// TaxonomyStore owns nodes, species and synonyms of the backbone.
//
// Writes may be buffered in batches, but every read must observe all
// previous writes of the same store. Lookups that find nothing return
// nil values and no error.
type TaxonomyStore interface {
	// FindNodeByClassification returns a node with the given rank whose
	// lineage columns are equal to cls.
	FindNodeByClassification(
		ctx context.Context, r rank.Rank, cls schema.Classification,
	) (*schema.Node, error)

	// InsertNode saves a node with its ID already assigned.
	InsertNode(ctx context.Context, n *schema.Node) error

	// UpdateNodeParent rewrites the parent of a node.
	UpdateNodeParent(ctx context.Context, id, parentID int) error

	// UpdateNodeSpecies links a species-rank node to its Species.
	UpdateNodeSpecies(ctx context.Context, id, speciesID int) error

	// GetNode returns a node by ID.
	GetNode(ctx context.Context, id int) (*schema.Node, error)

	// MaxNodeID returns the largest node ID, or 0 for an empty store.
	MaxNodeID(ctx context.Context) (int, error)

	// FindGenusNodesByName returns genus-rank nodes with the given name.
	FindGenusNodesByName(ctx context.Context, name string) ([]schema.Node, error)

	// GetChildren returns direct children of a node ordered by ID.
	GetChildren(ctx context.Context, id int) ([]schema.Node, error)

	// GetDescendants returns nodes inside nested-set bounds of a node,
	// ordered by the left bound.
	GetDescendants(ctx context.Context, n schema.Node) ([]schema.Node, error)

	// SetBounds saves nested-set bounds of a node.
	SetBounds(ctx context.Context, id, lft, rgt int) error

	// FindSpeciesByName returns species with exactly this canonical name.
	FindSpeciesByName(ctx context.Context, name string) ([]schema.Species, error)

	// FindSpeciesByNameFold returns species whose canonical name is equal
	// to name under case folding.
	FindSpeciesByNameFold(ctx context.Context, name string) ([]schema.Species, error)

	// FindSpeciesUnderGenus returns species with the given canonical name
	// whose species-rank node has genusID as its parent.
	FindSpeciesUnderGenus(
		ctx context.Context, name string, genusID int,
	) ([]schema.Species, error)

	// GetSpecies returns species by ID.
	GetSpecies(ctx context.Context, id int) (*schema.Species, error)

	// InsertSpecies saves a species and assigns its ID.
	InsertSpecies(ctx context.Context, s *schema.Species) error

	// FindSynonymByName returns synonyms with exactly this name.
	FindSynonymByName(ctx context.Context, name string) ([]schema.Synonym, error)

	// FindSynonym returns a synonym of a given species by its name.
	FindSynonym(
		ctx context.Context, name string, speciesID int,
	) (*schema.Synonym, error)

	// InsertSynonym saves a synonym and assigns its ID.
	InsertSynonym(ctx context.Context, s *schema.Synonym) error

	// WalkNodes calls fn for every node ordered by ID. It stops at the
	// first error returned by fn.
	WalkNodes(ctx context.Context, fn func(schema.Node) error) error

	// CountSpecies returns the number of species.
	CountSpecies(ctx context.Context) (int, error)

	// CountSynonyms returns the number of synonyms.
	CountSynonyms(ctx context.Context) (int, error)

	// Flush commits buffered writes.
	Flush(ctx context.Context) error

	// Close flushes buffered writes and releases resources.
	Close() error
}
