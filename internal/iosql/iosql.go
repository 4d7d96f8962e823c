// Package iosql implements store.TaxonomyStore on top of database/sql
// for SQLite and PostgreSQL. Writes are grouped into transactions of
// BatchSize statements. Reads go through the open transaction, so they
// always see previous writes.
package iosql

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/gnames/gnbackbone/internal/iodb"
	"github.com/gnames/gnbackbone/pkg/db"
	"github.com/gnames/gnbackbone/pkg/ent/rank"
	"github.com/gnames/gnbackbone/pkg/schema"
	"github.com/gnames/gnbackbone/pkg/store"
)

// walkPage is the number of nodes read per query by WalkNodes.
const walkPage = 10_000

const nodeColumns = `id, parent_id, rank, name, kingdom, phylum, t_class,
	t_order, family, genus, species, species_id, lft, rgt`

const speciesColumns = `id, canonical_name, name_uuid, occurrence_status`

const synonymColumns = `id, name, taxonomic_status, species_id`

type querier interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type sqlstore struct {
	db        *sql.DB
	driver    string
	batchSize int

	tx     *sql.Tx
	writes int
}

// New creates a store on a connected operator. The store is not safe
// for concurrent use.
func New(op db.Operator, batchSize int) store.TaxonomyStore {
	if batchSize <= 0 {
		batchSize = 10_000
	}
	return &sqlstore{
		db:        op.DB(),
		driver:    op.Driver(),
		batchSize: batchSize,
	}
}

func (s *sqlstore) FindNodeByClassification(
	ctx context.Context,
	r rank.Rank,
	cls schema.Classification,
) (*schema.Node, error) {
	var cond strings.Builder
	for _, v := range schema.LineageColumns {
		cond.WriteString(" AND ")
		cond.WriteString(v)
		cond.WriteString(" = ?")
	}
	q := "SELECT " + nodeColumns + " FROM nodes WHERE rank = ?" +
		cond.String() + " LIMIT 1"

	args := []any{r.String()}
	for _, v := range cls.Values() {
		args = append(args, v)
	}
	return s.node(ctx, q, args...)
}

func (s *sqlstore) InsertNode(ctx context.Context, n *schema.Node) error {
	q := `INSERT INTO nodes (` + nodeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	args := []any{n.ID, n.ParentID, n.Rank, n.Name}
	for _, v := range n.Classification.Values() {
		args = append(args, v)
	}
	args = append(args, n.SpeciesID, n.Lft, n.Rgt)

	if err := s.exec(ctx, q, args...); err != nil {
		return InsertError("nodes", err)
	}
	return nil
}

func (s *sqlstore) UpdateNodeParent(ctx context.Context, id, parentID int) error {
	q := "UPDATE nodes SET parent_id = ? WHERE id = ?"
	if err := s.exec(ctx, q, parentID, id); err != nil {
		return UpdateError("nodes", id, err)
	}
	return nil
}

func (s *sqlstore) UpdateNodeSpecies(ctx context.Context, id, speciesID int) error {
	q := "UPDATE nodes SET species_id = ? WHERE id = ?"
	if err := s.exec(ctx, q, speciesID, id); err != nil {
		return UpdateError("nodes", id, err)
	}
	return nil
}

func (s *sqlstore) GetNode(ctx context.Context, id int) (*schema.Node, error) {
	q := "SELECT " + nodeColumns + " FROM nodes WHERE id = ?"
	return s.node(ctx, q, id)
}

func (s *sqlstore) MaxNodeID(ctx context.Context) (int, error) {
	return s.count(ctx, "nodes", "SELECT COALESCE(MAX(id), 0) FROM nodes")
}

func (s *sqlstore) FindGenusNodesByName(
	ctx context.Context,
	name string,
) ([]schema.Node, error) {
	q := "SELECT " + nodeColumns +
		" FROM nodes WHERE rank = ? AND name = ? ORDER BY id"
	return s.nodes(ctx, q, rank.Genus.String(), name)
}

func (s *sqlstore) GetChildren(ctx context.Context, id int) ([]schema.Node, error) {
	q := "SELECT " + nodeColumns +
		" FROM nodes WHERE parent_id = ? ORDER BY id"
	return s.nodes(ctx, q, id)
}

func (s *sqlstore) GetDescendants(
	ctx context.Context,
	n schema.Node,
) ([]schema.Node, error) {
	q := "SELECT " + nodeColumns +
		" FROM nodes WHERE lft > ? AND rgt < ? ORDER BY lft"
	return s.nodes(ctx, q, n.Lft, n.Rgt)
}

func (s *sqlstore) SetBounds(ctx context.Context, id, lft, rgt int) error {
	q := "UPDATE nodes SET lft = ?, rgt = ? WHERE id = ?"
	if err := s.exec(ctx, q, lft, rgt, id); err != nil {
		return UpdateError("nodes", id, err)
	}
	return nil
}

func (s *sqlstore) FindSpeciesByName(
	ctx context.Context,
	name string,
) ([]schema.Species, error) {
	q := "SELECT " + speciesColumns +
		" FROM species WHERE canonical_name = ? ORDER BY id"
	return s.species(ctx, q, name)
}

func (s *sqlstore) FindSpeciesByNameFold(
	ctx context.Context,
	name string,
) ([]schema.Species, error) {
	q := "SELECT " + speciesColumns +
		" FROM species WHERE LOWER(canonical_name) = LOWER(?) ORDER BY id"
	return s.species(ctx, q, name)
}

func (s *sqlstore) FindSpeciesUnderGenus(
	ctx context.Context,
	name string,
	genusID int,
) ([]schema.Species, error) {
	q := `SELECT s.id, s.canonical_name, s.name_uuid, s.occurrence_status
		FROM species s
		JOIN nodes n ON n.species_id = s.id
		WHERE s.canonical_name = ? AND n.parent_id = ?
		ORDER BY s.id`
	return s.species(ctx, q, name, genusID)
}

func (s *sqlstore) GetSpecies(ctx context.Context, id int) (*schema.Species, error) {
	q := "SELECT " + speciesColumns + " FROM species WHERE id = ?"
	res, err := s.species(ctx, q, id)
	if err != nil || len(res) == 0 {
		return nil, err
	}
	return &res[0], nil
}

func (s *sqlstore) InsertSpecies(ctx context.Context, sp *schema.Species) error {
	q := `INSERT INTO species (canonical_name, name_uuid, occurrence_status)
		VALUES (?, ?, ?) RETURNING id`
	id, err := s.insertReturning(ctx, q,
		sp.CanonicalName, sp.NameUUID, sp.OccurrenceStatus)
	if err != nil {
		return InsertError("species", err)
	}
	sp.ID = id
	return nil
}

func (s *sqlstore) FindSynonymByName(
	ctx context.Context,
	name string,
) ([]schema.Synonym, error) {
	q := "SELECT " + synonymColumns +
		" FROM synonyms WHERE name = ? ORDER BY id"
	return s.synonyms(ctx, q, name)
}

func (s *sqlstore) FindSynonym(
	ctx context.Context,
	name string,
	speciesID int,
) (*schema.Synonym, error) {
	q := "SELECT " + synonymColumns +
		" FROM synonyms WHERE name = ? AND species_id = ?"
	res, err := s.synonyms(ctx, q, name, speciesID)
	if err != nil || len(res) == 0 {
		return nil, err
	}
	return &res[0], nil
}

func (s *sqlstore) InsertSynonym(ctx context.Context, syn *schema.Synonym) error {
	q := `INSERT INTO synonyms (name, taxonomic_status, species_id)
		VALUES (?, ?, ?) RETURNING id`
	id, err := s.insertReturning(ctx, q,
		syn.Name, syn.TaxonomicStatus, syn.SpeciesID)
	if err != nil {
		return InsertError("synonyms", err)
	}
	syn.ID = id
	return nil
}

// WalkNodes reads nodes page by page in ID order, so fn may use the
// store.
func (s *sqlstore) WalkNodes(
	ctx context.Context,
	fn func(schema.Node) error,
) error {
	q := "SELECT " + nodeColumns +
		" FROM nodes WHERE id > ? ORDER BY id LIMIT ?"
	var last int
	for {
		page, err := s.nodes(ctx, q, last, walkPage)
		if err != nil {
			return err
		}
		for _, v := range page {
			if err = fn(v); err != nil {
				return err
			}
		}
		if len(page) < walkPage {
			return nil
		}
		last = page[len(page)-1].ID
	}
}

func (s *sqlstore) CountSpecies(ctx context.Context) (int, error) {
	return s.count(ctx, "species", "SELECT COUNT(*) FROM species")
}

func (s *sqlstore) CountSynonyms(ctx context.Context) (int, error) {
	return s.count(ctx, "synonyms", "SELECT COUNT(*) FROM synonyms")
}

// Flush commits the open transaction.
func (s *sqlstore) Flush(_ context.Context) error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Commit()
	if err != nil {
		return CommitError(err)
	}
	slog.Debug("Committed batch", "writes", s.writes)
	s.tx = nil
	s.writes = 0
	return nil
}

// Close commits pending writes. The connection belongs to the operator
// and stays open.
func (s *sqlstore) Close() error {
	return s.Flush(context.Background())
}

// conn returns the open transaction, starting one if needed.
func (s *sqlstore) conn(ctx context.Context) (querier, error) {
	if s.tx != nil {
		return s.tx, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	s.tx = tx
	return tx, nil
}

func (s *sqlstore) rebind(q string) string {
	return iodb.Rebind(s.driver, q)
}

// written counts a write and commits the batch when it is full.
func (s *sqlstore) written(ctx context.Context) error {
	s.writes++
	if s.writes >= s.batchSize {
		return s.Flush(ctx)
	}
	return nil
}

func (s *sqlstore) exec(ctx context.Context, q string, args ...any) error {
	c, err := s.conn(ctx)
	if err != nil {
		return err
	}
	res, err := c.ExecContext(ctx, s.rebind(q), args...)
	if err != nil {
		return err
	}
	if strings.HasPrefix(q, "UPDATE") {
		n, err := res.RowsAffected()
		if err == nil && n == 0 {
			return sql.ErrNoRows
		}
	}
	return s.written(ctx)
}

func (s *sqlstore) insertReturning(
	ctx context.Context,
	q string,
	args ...any,
) (int, error) {
	c, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}
	var id int
	if err = c.QueryRowContext(ctx, s.rebind(q), args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, s.written(ctx)
}

func (s *sqlstore) count(ctx context.Context, what, q string) (int, error) {
	c, err := s.conn(ctx)
	if err != nil {
		return 0, QueryError(what, err)
	}
	var res int
	if err = c.QueryRowContext(ctx, q).Scan(&res); err != nil {
		return 0, QueryError(what, err)
	}
	return res, nil
}

func (s *sqlstore) node(ctx context.Context, q string, args ...any) (*schema.Node, error) {
	res, err := s.nodes(ctx, q, args...)
	if err != nil || len(res) == 0 {
		return nil, err
	}
	return &res[0], nil
}

func (s *sqlstore) nodes(ctx context.Context, q string, args ...any) ([]schema.Node, error) {
	c, err := s.conn(ctx)
	if err != nil {
		return nil, QueryError("nodes", err)
	}
	rows, err := c.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return nil, QueryError("nodes", err)
	}
	defer rows.Close()

	var res []schema.Node
	for rows.Next() {
		var n schema.Node
		cls := &n.Classification
		err = rows.Scan(
			&n.ID, &n.ParentID, &n.Rank, &n.Name,
			&cls.Kingdom, &cls.Phylum, &cls.Class, &cls.Order,
			&cls.Family, &cls.Genus, &cls.Species,
			&n.SpeciesID, &n.Lft, &n.Rgt,
		)
		if err != nil {
			return nil, QueryError("nodes", err)
		}
		res = append(res, n)
	}
	if err = rows.Err(); err != nil {
		return nil, QueryError("nodes", err)
	}
	return res, nil
}

func (s *sqlstore) species(ctx context.Context, q string, args ...any) ([]schema.Species, error) {
	c, err := s.conn(ctx)
	if err != nil {
		return nil, QueryError("species", err)
	}
	rows, err := c.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return nil, QueryError("species", err)
	}
	defer rows.Close()

	var res []schema.Species
	for rows.Next() {
		var sp schema.Species
		err = rows.Scan(&sp.ID, &sp.CanonicalName, &sp.NameUUID, &sp.OccurrenceStatus)
		if err != nil {
			return nil, QueryError("species", err)
		}
		res = append(res, sp)
	}
	if err = rows.Err(); err != nil {
		return nil, QueryError("species", err)
	}
	return res, nil
}

func (s *sqlstore) synonyms(ctx context.Context, q string, args ...any) ([]schema.Synonym, error) {
	c, err := s.conn(ctx)
	if err != nil {
		return nil, QueryError("synonyms", err)
	}
	rows, err := c.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return nil, QueryError("synonyms", err)
	}
	defer rows.Close()

	var res []schema.Synonym
	for rows.Next() {
		var syn schema.Synonym
		err = rows.Scan(&syn.ID, &syn.Name, &syn.TaxonomicStatus, &syn.SpeciesID)
		if err != nil {
			return nil, QueryError("synonyms", err)
		}
		res = append(res, syn)
	}
	if err = rows.Err(); err != nil {
		return nil, QueryError("synonyms", err)
	}
	return res, nil
}
