// Package parserpool provides a pool of gnparser instances for concurrent
// name parsing. Parsing is computation, not I/O.
package parserpool

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/gnames/gnlib/ent/nomcode"
	"github.com/gnames/gnparser"
	"github.com/gnames/gnparser/ent/parsed"
)

// Pool keeps parsers for botanical and zoological nomenclatural codes.
type Pool interface {
	// Parse parses a name-string with a parser of the given code.
	// It is safe for concurrent use.
	Parse(nameString string, code nomcode.Code) (parsed.Parsed, error)

	// Close shuts down the parser pools. The pool cannot be used after
	// Close.
	Close()
}

type pool struct {
	botanicalCh  chan gnparser.GNparser
	zoologicalCh chan gnparser.GNparser
}

// NewPool creates a pool with jobsNum parsers per nomenclatural code.
// Zero jobsNum means runtime.NumCPU().
func NewPool(jobsNum int) Pool {
	poolSize := jobsNum
	if poolSize <= 0 {
		poolSize = runtime.NumCPU()
	}

	botanicalCfg := gnparser.NewConfig(
		gnparser.OptCode(nomcode.Botanical),
	)
	zoologicalCfg := gnparser.NewConfig(
		gnparser.OptCode(nomcode.Zoological),
	)

	return &pool{
		botanicalCh:  gnparser.NewPool(botanicalCfg, poolSize),
		zoologicalCh: gnparser.NewPool(zoologicalCfg, poolSize),
	}
}

// Parse takes a parser of the given code from the pool, parses the
// name-string and returns the parser back.
func (p *pool) Parse(nameString string, code nomcode.Code) (parsed.Parsed, error) {
	var ch chan gnparser.GNparser
	switch code {
	case nomcode.Botanical:
		ch = p.botanicalCh
	case nomcode.Zoological:
		ch = p.zoologicalCh
	default:
		return parsed.Parsed{}, fmt.Errorf("unsupported nomenclatural code: %v", code)
	}

	parser := <-ch
	result := parser.ParseName(nameString)
	ch <- parser

	return result, nil
}

// Close closes and drains both parser channels.
func (p *pool) Close() {
	if p.botanicalCh != nil {
		close(p.botanicalCh)
		for range p.botanicalCh {
		}
	}

	if p.zoologicalCh != nil {
		close(p.zoologicalCh)
		for range p.zoologicalCh {
		}
	}
}

// CodeByKingdom picks a nomenclatural code for a kingdom name. Plants,
// fungi and chromists follow the botanical code, everything else is
// parsed as zoological.
func CodeByKingdom(kingdom string) nomcode.Code {
	switch strings.ToLower(strings.TrimSpace(kingdom)) {
	case "plantae", "fungi", "chromista", "protozoa":
		return nomcode.Botanical
	default:
		return nomcode.Zoological
	}
}
