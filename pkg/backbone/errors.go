package backbone

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnbackbone/pkg/errcode"
)

// BinomialError is a fatal error for rows without genus or specific
// epithet.
func BinomialError(taxonID string, line int) error {
	msg := `Cannot compose a binomial name for taxon <em>%s</em> (line %d)

<em>Possible causes:</em>
  - genus or specificEpithet field is empty
  - columns of the file are shifted

<em>How to fix:</em>
  1. Check the row in the taxa file
  2. Check the delimiter of the file`

	vars := []any{taxonID, line}

	return &gn.Error{
		Code: errcode.BinomialError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf(
			"missing genus or specificEpithet for taxon '%s' at line %d",
			taxonID, line),
	}
}

// AmbiguousSpeciesError is a fatal error for a canonical name shared by
// several species.
func AmbiguousSpeciesError(name string, ids []int) error {
	msg := `Species name <em>%s</em> belongs to several species: %v

The backbone is inconsistent, a canonical name has to map to one species.`

	vars := []any{name, ids}

	return &gn.Error{
		Code: errcode.AmbiguousSpeciesError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf(
			"species name '%s' matches %d species", name, len(ids)),
	}
}

// AmbiguousGenusError is a fatal error for homonymous genera that could
// not be narrowed down to one by a kingdom hint.
func AmbiguousGenusError(genus, kingdom string, num int) error {
	if kingdom == "" {
		kingdom = "none"
	}
	msg := `Genus <em>%s</em> matches %d homonymous genera (kingdom hint: %s)

<em>How to fix:</em>
  1. Provide a kingdom for the name
  2. Use --kingdom flag or resolve.kingdom_hint setting`

	vars := []any{genus, num, kingdom}

	return &gn.Error{
		Code: errcode.AmbiguousGenusError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf(
			"genus '%s' is ambiguous: %d candidates, kingdom '%s'",
			genus, num, kingdom),
	}
}

// HierarchyCycleError happens when a walk over parent or child links
// goes deeper than the hierarchy allows.
func HierarchyCycleError(nodeID, depth int) error {
	msg := `Node <em>%d</em> is deeper than %d levels, the hierarchy has a cycle

<em>How to fix:</em>
  1. Recreate the database with 'gnbackbone create'
  2. Build the backbone again`

	vars := []any{nodeID, depth}

	return &gn.Error{
		Code: errcode.HierarchyCycleError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf(
			"node %d exceeds depth %d", nodeID, depth),
	}
}

// NodeNotFoundError is returned when a node is referenced but missing.
func NodeNotFoundError(id int) error {
	msg := "Node <em>%d</em> does not exist"
	vars := []any{id}

	return &gn.Error{
		Code: errcode.NodeNotFoundError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("node %d not found", id),
	}
}

// CancelledError wraps context cancellation of long operations.
func CancelledError(err error) error {
	msg := "Operation was cancelled"

	return &gn.Error{
		Code: errcode.CancelledError,
		Msg:  msg,
		Err:  fmt.Errorf("cancelled: %w", err),
	}
}
