// Package backbone builds a taxonomic hierarchy from flat Darwin Core
// rows, indexes it as a nested set and resolves free-text names to
// species of the hierarchy.
package backbone

import (
	"context"
	"database/sql"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/gnames/gnbackbone/pkg/ent/rank"
	"github.com/gnames/gnbackbone/pkg/ent/status"
	"github.com/gnames/gnbackbone/pkg/schema"
	"github.com/gnames/gnbackbone/pkg/store"
	"github.com/gnames/gnuuid"
	"github.com/google/uuid"
)

// Builder converts Darwin Core rows into nodes, species and synonyms.
// It is not safe for concurrent use. Node IDs come from a counter
// started at NewBuilder, nodes inserted by other writers meanwhile are
// not seen by it.
type Builder struct {
	store  store.TaxonomyStore
	filter Filter
	report func(NameStatus)

	ids *nodeIDs

	// accepted maps taxonID of accepted rows to their species.
	accepted map[string]acceptedSpecies

	// homonyms maps lower-case names of created nodes to their lineages.
	homonyms map[string][]homonym

	// pending keeps synonyms that came before their accepted names.
	pending []Row

	start   time.Time
	summary *Summary
}

type acceptedSpecies struct {
	id   int
	name string
}

type homonym struct {
	line    int
	name    string
	rank    string
	lineage string
}

// Option configures a Builder.
type Option func(*Builder)

// OptFilter sets a rank-keyed allow-list for accepted rows.
func OptFilter(f Filter) Option {
	return func(b *Builder) {
		b.filter = f
	}
}

// OptNameReport sets a callback that receives the outcome of every
// species or synonym row.
func OptNameReport(fn func(NameStatus)) Option {
	return func(b *Builder) {
		b.report = fn
	}
}

// NewBuilder prepares a Builder for one ingestion run. It creates the
// root node if needed and starts node IDs after the largest existing ID.
func NewBuilder(
	ctx context.Context,
	st store.TaxonomyStore,
	opts ...Option,
) (*Builder, error) {
	res := &Builder{
		store:    st,
		report:   func(NameStatus) {},
		accepted: make(map[string]acceptedSpecies),
		homonyms: make(map[string][]homonym),
		start:    time.Now(),
		summary:  newSummary(uuid.NewString()),
	}
	for _, opt := range opts {
		opt(res)
	}

	if err := ensureRoot(ctx, st); err != nil {
		return nil, err
	}

	ids, err := newNodeIDs(ctx, st)
	if err != nil {
		return nil, err
	}
	res.ids = ids

	slog.Info("Starting backbone build",
		"run_id", res.summary.RunID,
		"first_node_id", ids.last+1,
	)
	return res, nil
}

// Build consumes all rows from the channel, replays deferred synonyms
// and returns the summary. Fatal errors stop the run.
func (b *Builder) Build(ctx context.Context, rows <-chan Row) (*Summary, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, CancelledError(ctx.Err())
		case row, ok := <-rows:
			if !ok {
				return b.Finish(ctx)
			}
			if err := b.AddRow(ctx, row); err != nil {
				return nil, err
			}
		}
	}
}

// AddRow processes one row. Only fatal conditions return an error,
// skipped rows are counted and logged.
func (b *Builder) AddRow(ctx context.Context, row Row) error {
	b.summary.LinesNum++
	if row.Line == 0 {
		row.Line = b.summary.LinesNum
	}

	switch status.NewTaxonomic(row.TaxonomicStatus) {
	case status.AcceptedName:
		return b.addAccepted(ctx, row)
	case status.Synonym:
		return b.addSynonym(ctx, row, true)
	default:
		slog.Warn("Ignoring row with unknown taxonomic status",
			"line", row.Line,
			"taxon_id", row.TaxonID,
			"status", row.TaxonomicStatus,
		)
		b.summary.IgnoredSynonyms++
		b.report(NameStatus{TaxonID: row.TaxonID, Reason: ReasonIgnoredSynonym})
		return nil
	}
}

// Finish replays deferred synonyms, flushes the store and returns the
// summary of the run.
func (b *Builder) Finish(ctx context.Context) (*Summary, error) {
	pending := b.pending
	b.pending = nil
	for _, row := range pending {
		if err := b.addSynonym(ctx, row, false); err != nil {
			return nil, err
		}
	}

	b.summary.Homonyms = b.logHomonyms()
	if err := b.store.Flush(ctx); err != nil {
		return nil, err
	}
	b.summary.Duration = time.Since(b.start)
	return b.summary, nil
}

func (b *Builder) addAccepted(ctx context.Context, row Row) error {
	cls := row.Classification()
	if cls.Kingdom == "" {
		b.summary.IgnoredEntries++
		b.summary.IgnoredEmptyKingdom++
		b.report(NameStatus{TaxonID: row.TaxonID, Reason: ReasonNoKingdom})
		return nil
	}

	if len(b.filter) > 0 && !b.filter.Allows(cls) {
		b.summary.IgnoredEntries++
		b.summary.FilteredEntries++
		b.report(NameStatus{
			TaxonID: row.TaxonID,
			Name:    cls.Species,
			Reason:  ReasonFiltered,
		})
		return nil
	}

	spName, ok := row.Binomial()
	if !ok {
		slog.Error("Cannot compose binomial name",
			"line", row.Line, "taxon_id", row.TaxonID)
		return BinomialError(row.TaxonID, row.Line)
	}

	var prev *schema.Node
	for _, r := range rank.Upward(rank.Species) {
		name := cls.Get(r)
		if name == "" {
			slog.Warn("Empty name in lineage",
				"line", row.Line, "rank", r.String(), "species", spName)
		}

		node, created, err := b.GetOrCreateNode(ctx, r, 0, cls.Upto(r))
		if err != nil {
			return err
		}

		if prev != nil {
			// kingdom nodes keep the root as their parent
			err = b.store.UpdateNodeParent(ctx, prev.ID, node.ID)
			if err != nil {
				return err
			}
			prev.ParentID = node.ID
		}

		if !created {
			if r == rank.Species {
				b.existingSpecies(row, node)
			}
			break
		}
		prev = node

		key := strings.ToLower(name)
		b.homonyms[key] = append(b.homonyms[key], homonym{
			line:    row.Line,
			name:    name,
			rank:    r.String(),
			lineage: node.Classification.String(),
		})

		if r == rank.Species {
			if err = b.createSpecies(ctx, row, node); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *Builder) existingSpecies(row Row, node *schema.Node) {
	b.summary.ExistingSpecies++
	slog.Info("Species already in the backbone",
		"line", row.Line, "species", node.Name)
	b.report(NameStatus{
		TaxonID: row.TaxonID,
		Name:    node.Name,
		Reason:  ReasonAlreadyInserted,
	})
	// synonyms of repeated rows still attach to the existing species
	if node.SpeciesID > 0 {
		b.register(row.TaxonID, acceptedSpecies{
			id:   node.SpeciesID,
			name: node.Name,
		})
	}
}

// register remembers the species of an accepted row for its synonyms.
// Rows without taxonID cannot be referenced and are skipped.
func (b *Builder) register(taxonID string, acc acceptedSpecies) {
	taxonID = strings.TrimSpace(taxonID)
	if taxonID == "" {
		return
	}
	b.accepted[taxonID] = acc
}

func (b *Builder) createSpecies(
	ctx context.Context,
	row Row,
	node *schema.Node,
) error {
	sp := &schema.Species{
		CanonicalName: node.Name,
		NameUUID:      gnuuid.New(node.Name).String(),
	}

	code, ok := status.Occurrence(row.OccurrenceStatus)
	switch {
	case !ok:
		slog.Warn("Unknown occurrence status",
			"line", row.Line,
			"species", node.Name,
			"status", row.OccurrenceStatus,
		)
		b.summary.Occurrences[status.NullOccurrence]++
	case code == "":
		slog.Debug("Occurrence status is empty", "species", node.Name)
		b.summary.Occurrences[status.NullOccurrence]++
	default:
		sp.OccurrenceStatus = sql.NullString{String: code, Valid: true}
		b.summary.Occurrences[code]++
	}

	if err := b.store.InsertSpecies(ctx, sp); err != nil {
		return err
	}
	if err := b.store.UpdateNodeSpecies(ctx, node.ID, sp.ID); err != nil {
		return err
	}
	node.SpeciesID = sp.ID

	b.summary.SpeciesCreated++
	b.register(row.TaxonID, acceptedSpecies{id: sp.ID, name: sp.CanonicalName})
	b.report(NameStatus{TaxonID: row.TaxonID, Name: sp.CanonicalName, Added: true})
	return nil
}

// addSynonym inserts a synonym row. With canDefer a synonym of an
// unknown accepted name is queued for the end of the run, otherwise
// it is dropped.
func (b *Builder) addSynonym(ctx context.Context, row Row, canDefer bool) error {
	name, ok := row.Binomial()
	if !ok {
		slog.Error("Cannot compose binomial name",
			"line", row.Line, "taxon_id", row.TaxonID)
		return BinomialError(row.TaxonID, row.Line)
	}

	if strings.TrimSpace(row.InfraspecificEpithet) != "" {
		slog.Warn("Ignoring synonym with infraspecific epithet",
			"line", row.Line, "synonym", name)
		b.summary.IgnoredSynonyms++
		b.report(NameStatus{TaxonID: row.TaxonID, Name: name, Reason: ReasonInfraSynonym})
		return nil
	}

	accID := strings.TrimSpace(row.AcceptedNameUsageID)
	acc, ok := b.accepted[accID]
	if !ok {
		// an empty reference never resolves later
		if canDefer && accID != "" {
			b.pending = append(b.pending, row)
			b.summary.DeferredSynonyms++
			return nil
		}
		slog.Warn("Accepted name of synonym is unknown",
			"line", row.Line,
			"synonym", name,
			"accepted_id", row.AcceptedNameUsageID,
		)
		b.summary.IgnoredSynonyms++
		b.report(NameStatus{TaxonID: row.TaxonID, Name: name, Reason: ReasonNoAccepted})
		return nil
	}

	if name == acc.name {
		slog.Info("Synonym is the same as its accepted name",
			"line", row.Line, "name", name)
		b.summary.IgnoredSynonyms++
		b.report(NameStatus{TaxonID: row.TaxonID, Name: name, Reason: ReasonSameAsAccepted})
		return nil
	}

	taxStatus := strings.ToLower(strings.TrimSpace(row.TaxonomicStatus))
	created, err := b.insertSynonym(ctx, name, taxStatus, acc.id)
	if err != nil {
		return err
	}
	if !created {
		b.report(NameStatus{TaxonID: row.TaxonID, Name: name, Reason: ReasonAlreadyInserted})
		return nil
	}
	b.report(NameStatus{TaxonID: row.TaxonID, Name: name, Added: true, Reason: ReasonAsSynonym})
	return nil
}

// insertSynonym is idempotent by (name, species).
func (b *Builder) insertSynonym(
	ctx context.Context,
	name, taxStatus string,
	speciesID int,
) (bool, error) {
	syn, err := b.store.FindSynonym(ctx, name, speciesID)
	if err != nil {
		return false, err
	}
	if syn != nil {
		if syn.TaxonomicStatus != taxStatus {
			slog.Warn("Synonym exists with a different status",
				"synonym", name,
				"species_id", speciesID,
				"status", syn.TaxonomicStatus,
				"new_status", taxStatus,
			)
		}
		b.summary.ExistingSynonyms++
		return false, nil
	}

	syn = &schema.Synonym{
		Name:            name,
		TaxonomicStatus: taxStatus,
		SpeciesID:       speciesID,
	}
	if err = b.store.InsertSynonym(ctx, syn); err != nil {
		return false, err
	}
	b.summary.SynonymsCreated++
	return true, nil
}

// logHomonyms reports names shared by several nodes and returns the
// number of such non-empty names.
func (b *Builder) logHomonyms() int {
	var res int
	keys := make([]string, 0, len(b.homonyms))
	for k := range b.homonyms {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		lst := b.homonyms[k]
		if k == "" || len(lst) < 2 {
			continue
		}
		res++
		for _, v := range lst {
			slog.Warn("Homonym",
				"taxon", k,
				"line", v.line,
				"name", v.name,
				"rank", v.rank,
				"lineage", v.lineage,
			)
		}
	}
	return res
}
