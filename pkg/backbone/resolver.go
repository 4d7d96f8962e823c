package backbone

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gnbackbone/pkg/errcode"
	"github.com/gnames/gnbackbone/pkg/ent/rank"
	"github.com/gnames/gnbackbone/pkg/normalize"
	"github.com/gnames/gnbackbone/pkg/schema"
	"github.com/gnames/gnbackbone/pkg/store"
	"github.com/gnames/gnuuid"
)

// MatchType tells how a name was resolved.
type MatchType int

const (
	// NoMatch means neither species nor genus were found.
	NoMatch MatchType = iota
	// Unparsable means the input has no recognizable genus.
	Unparsable
	// Exact is a match by canonical name of a species.
	Exact
	// SynonymMatch is a match by a synonym of a species.
	SynonymMatch
	// Placeholder is a match to an existing "Genus sp." species.
	Placeholder
	// PlaceholderCreated means a new "Genus sp." species was created.
	PlaceholderCreated
)

var matchTypes = map[MatchType]string{
	NoMatch:            "NoMatch",
	Unparsable:         "Unparsable",
	Exact:              "Exact",
	SynonymMatch:       "Synonym",
	Placeholder:        "Placeholder",
	PlaceholderCreated: "PlaceholderCreated",
}

func (m MatchType) String() string {
	return matchTypes[m]
}

// Resolution is the outcome of resolving one name.
type Resolution struct {
	// Input is the name as given.
	Input string
	// Cleaned is the normalized name, empty for unparsable input.
	Cleaned string
	// MatchType tells which step of the fallback chain succeeded.
	MatchType MatchType
	// Species is nil for NoMatch and Unparsable.
	Species *schema.Species
}

// Resolver maps free-text names to species of the backbone. It may
// create "Genus sp." species. It is not safe for concurrent use.
//
// Placeholder nodes take IDs after MaxNodeID of the store. A Builder
// counts IDs on its own, so a Builder created before resolution must
// not add rows afterwards; create a new one instead.
type Resolver struct {
	store       store.TaxonomyStore
	norm        *normalize.Normalizer
	kingdomHint string
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// OptKingdomHint sets a kingdom used when a call provides none.
func OptKingdomHint(kingdom string) ResolverOption {
	return func(r *Resolver) {
		r.kingdomHint = strings.TrimSpace(kingdom)
	}
}

// NewResolver creates a Resolver. A nil normalizer uses the token
// heuristic without gnparser.
func NewResolver(
	st store.TaxonomyStore,
	norm *normalize.Normalizer,
	opts ...ResolverOption,
) *Resolver {
	if norm == nil {
		norm = normalize.New(nil)
	}
	res := &Resolver{store: st, norm: norm}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// Resolve normalizes text and resolves it. Misses and unparsable
// names are reported through MatchType. Returned errors are fatal for
// the run: an ambiguous species name, an ambiguous genus, or a store
// failure.
func (r *Resolver) Resolve(
	ctx context.Context,
	text, kingdomHint string,
) (*Resolution, error) {
	kingdom := r.kingdom(kingdomHint)
	cleaned, err := r.norm.Normalize(text, kingdom)
	if err != nil {
		if gnErr, ok := err.(*gn.Error); ok &&
			gnErr.Code == errcode.UnparsableNameError {
			slog.Warn("Cannot parse taxon name", "name", text)
			return &Resolution{Input: text, MatchType: Unparsable}, nil
		}
		return nil, err
	}
	return r.ResolveCleaned(ctx, text, cleaned, kingdomHint)
}

// ResolveCleaned runs the fallback chain for an already normalized
// name: exact species, synonym, genus placeholder.
func (r *Resolver) ResolveCleaned(
	ctx context.Context,
	input, cleaned, kingdomHint string,
) (*Resolution, error) {
	res := &Resolution{Input: input, Cleaned: cleaned}
	if cleaned == "" {
		res.MatchType = Unparsable
		return res, nil
	}

	sp, err := r.exact(ctx, cleaned)
	if err != nil {
		return nil, err
	}
	if sp != nil {
		res.MatchType = Exact
		res.Species = sp
		return res, nil
	}

	sp, err = r.synonym(ctx, cleaned)
	if err != nil {
		return nil, err
	}
	if sp != nil {
		res.MatchType = SynonymMatch
		res.Species = sp
		return res, nil
	}

	genus, err := r.genus(ctx, cleaned, r.kingdom(kingdomHint))
	if err != nil {
		return nil, err
	}
	if genus == nil {
		slog.Info("Taxon not found in the backbone", "name", cleaned)
		res.MatchType = NoMatch
		return res, nil
	}

	sp, created, err := r.placeholder(ctx, *genus)
	if err != nil {
		return nil, err
	}
	res.Species = sp
	res.MatchType = Placeholder
	if created {
		res.MatchType = PlaceholderCreated
	}
	return res, nil
}

func (r *Resolver) kingdom(hint string) string {
	hint = strings.TrimSpace(hint)
	if hint != "" {
		return hint
	}
	return r.kingdomHint
}

func (r *Resolver) exact(ctx context.Context, name string) (*schema.Species, error) {
	sps, err := r.store.FindSpeciesByName(ctx, name)
	if err != nil {
		return nil, err
	}
	switch len(sps) {
	case 0:
		return nil, nil
	case 1:
		return &sps[0], nil
	default:
		ids := make([]int, len(sps))
		for i := range sps {
			ids[i] = sps[i].ID
		}
		slog.Error("Species name matches several species",
			"name", name, "species_ids", ids)
		return nil, AmbiguousSpeciesError(name, ids)
	}
}

func (r *Resolver) synonym(ctx context.Context, name string) (*schema.Species, error) {
	syns, err := r.store.FindSynonymByName(ctx, name)
	if err != nil || len(syns) == 0 {
		return nil, err
	}

	variants, err := r.store.FindSpeciesByNameFold(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(variants) > 0 {
		slog.Warn("Synonym conflicts with a species name variant",
			"synonym", name, "species", variants[0].CanonicalName)
	}

	if len(syns) > 1 {
		slog.Warn("Synonym refers to several species, ignoring",
			"synonym", name, "count", len(syns))
		return nil, nil
	}

	sp, err := r.store.GetSpecies(ctx, syns[0].SpeciesID)
	if err != nil {
		return nil, err
	}
	if sp == nil {
		slog.Warn("Synonym refers to a missing species",
			"synonym", name, "species_id", syns[0].SpeciesID)
	}
	return sp, nil
}

// genus finds the genus node of a name. Homonymous genera are narrowed
// down by the kingdom of their lineage.
func (r *Resolver) genus(
	ctx context.Context,
	name, kingdom string,
) (*schema.Node, error) {
	genus := normalize.GenusOf(name)
	nodes, err := r.store.FindGenusNodesByName(ctx, genus)
	if err != nil {
		return nil, err
	}
	switch len(nodes) {
	case 0:
		return nil, nil
	case 1:
		return &nodes[0], nil
	}

	if kingdom == "" {
		slog.Error("Ambiguous genus without kingdom hint",
			"genus", genus, "candidates", len(nodes))
		return nil, AmbiguousGenusError(genus, kingdom, len(nodes))
	}

	var found []schema.Node
	for _, v := range nodes {
		k, err := kingdomOf(ctx, r.store, v)
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(k, kingdom) {
			found = append(found, v)
		}
	}
	if len(found) != 1 {
		slog.Error("Ambiguous genus",
			"genus", genus, "kingdom", kingdom, "candidates", len(found))
		return nil, AmbiguousGenusError(genus, kingdom, len(found))
	}
	return &found[0], nil
}

// kingdomOf walks ancestors of a node up to its kingdom.
func kingdomOf(
	ctx context.Context,
	st store.TaxonomyStore,
	node schema.Node,
) (string, error) {
	ancestors, err := Ancestors(ctx, st, node)
	if err != nil {
		return "", err
	}
	for _, v := range ancestors {
		if v.Rank == rank.Kingdom.String() {
			return v.Name, nil
		}
	}
	return "", nil
}

// placeholder returns the "Genus sp." species under the genus node,
// creating the species and its node when missing.
func (r *Resolver) placeholder(
	ctx context.Context,
	genus schema.Node,
) (*schema.Species, bool, error) {
	spName := genus.Name + " sp."
	sps, err := r.store.FindSpeciesUnderGenus(ctx, spName, genus.ID)
	if err != nil {
		return nil, false, err
	}
	if len(sps) > 0 {
		return &sps[0], false, nil
	}

	sp := &schema.Species{
		CanonicalName: spName,
		NameUUID:      gnuuid.New(spName).String(),
	}
	if err = r.store.InsertSpecies(ctx, sp); err != nil {
		return nil, false, err
	}

	maxID, err := r.store.MaxNodeID(ctx)
	if err != nil {
		return nil, false, err
	}
	cls := genus.Classification
	cls.Set(rank.Species, spName)
	node := &schema.Node{
		ID:             maxID + 1,
		ParentID:       genus.ID,
		Rank:           rank.Species.String(),
		Name:           spName,
		Classification: cls,
		SpeciesID:      sp.ID,
	}
	if err = r.store.InsertNode(ctx, node); err != nil {
		return nil, false, err
	}

	slog.Info("Created placeholder species",
		"species", spName, "species_id", sp.ID, "genus_id", genus.ID)
	return sp, true, nil
}
