// Package normalize turns noisy taxon strings into canonical uninomials
// or binomials. It strips authorships, quotes, question marks and
// infraspecific or qualifier markers.
package normalize

import (
	"strings"
	"unicode"

	"github.com/gnames/gnbackbone/pkg/parserpool"
)

// markers truncate a name at their first occurrence. " f.sp." goes
// before " f." so the longer marker wins.
var markers = []string{
	" var.", " subsp.", " f.sp.", " f.", " nothovar.", " spec.",
	" cf.", " aff.", " s.l.", " s.s.",
}

// placeholders are epithets of names identified to genus only.
var placeholders = map[string]struct{}{
	"sp.": {}, "spp.": {}, "sp": {}, "spp": {},
}

// Normalizer converts raw taxon strings to canonical names. Without a
// parser pool it relies on a token heuristic only.
type Normalizer struct {
	pool parserpool.Pool
}

// New creates a Normalizer. The pool may be nil.
func New(pool parserpool.Pool) *Normalizer {
	return &Normalizer{pool: pool}
}

// Normalize returns a canonical uninomial or binomial for raw. The
// kingdom selects the nomenclatural code of the parser. It returns
// UnparsableNameError if no genus can be found in the input.
func (n *Normalizer) Normalize(raw, kingdom string) (string, error) {
	cleaned := Clean(raw)
	if cleaned == "" {
		return "", UnparsableNameError(raw)
	}

	if n.pool != nil {
		res, err := n.pool.Parse(cleaned, parserpool.CodeByKingdom(kingdom))
		if err == nil && res.Parsed && res.Canonical != nil &&
			res.Canonical.Simple != "" {
			return Binomial(res.Canonical.Simple), nil
		}
	}

	res := heuristic(cleaned)
	if res == "" {
		return "", UnparsableNameError(raw)
	}
	return res, nil
}

// Clean removes quotes and question marks, squeezes spaces and
// truncates the name at the first rank or qualifier marker.
func Clean(raw string) string {
	s := strings.Map(func(r rune) rune {
		switch r {
		case '"', '\'', '?':
			return -1
		}
		return r
	}, raw)
	s = strings.Join(strings.Fields(s), " ")

	cut := len(s)
	for _, m := range markers {
		if idx := strings.Index(s, m); idx > -1 && idx < cut {
			// a marker has to end the string or be followed by a space
			end := idx + len(m)
			if end == len(s) || s[end] == ' ' {
				cut = idx
			}
		}
	}
	return strings.TrimSpace(s[:cut])
}

// Binomial keeps at most the first two words of a canonical name, so
// trinomials collapse to their species.
func Binomial(canonical string) string {
	words := strings.Fields(canonical)
	if len(words) > 2 {
		words = words[:2]
	}
	return strings.Join(words, " ")
}

// GenusOf returns the genus of a cleaned name, dropping a parenthesized
// subgenus.
func GenusOf(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return ""
	}
	genus := words[0]
	if idx := strings.Index(genus, "("); idx > 0 {
		genus = genus[:idx]
	}
	return genus
}

// IsPlaceholder returns true for names like "Quercus sp.".
func IsPlaceholder(name string) bool {
	words := strings.Fields(name)
	if len(words) != 2 {
		return false
	}
	_, ok := placeholders[words[1]]
	return ok
}

func heuristic(s string) string {
	words := strings.Fields(s)
	if len(words) == 0 || !isGenus(words[0]) {
		return ""
	}
	genus := GenusOf(words[0])

	for _, w := range words[1:] {
		// subgenus
		if strings.HasPrefix(w, "(") {
			if strings.HasSuffix(w, ")") && isGenus(strings.Trim(w, "()")) {
				continue
			}
			break
		}
		if _, ok := placeholders[w]; ok {
			break
		}
		if isEpithet(w) {
			return genus + " " + w
		}
		break
	}
	return genus
}

func isGenus(s string) bool {
	rs := []rune(s)
	if len(rs) < 2 || !unicode.IsUpper(rs[0]) {
		return false
	}
	for _, r := range rs[1:] {
		if !unicode.IsLetter(r) && r != '(' && r != ')' {
			return false
		}
	}
	return true
}

func isEpithet(s string) bool {
	rs := []rune(s)
	if len(rs) < 2 {
		return false
	}
	for _, r := range rs {
		if !unicode.IsLower(r) && r != '-' {
			return false
		}
	}
	return true
}
