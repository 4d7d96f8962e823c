package backbone

import (
	"strings"

	"github.com/gnames/gnbackbone/pkg/ent/rank"
	"github.com/gnames/gnbackbone/pkg/schema"
)

// Filter is a rank-keyed allow-list. A lineage passes the filter if for
// every filtered rank its name is in the list.
type Filter map[rank.Rank]map[string]struct{}

// NewFilter converts rank names and allowed values into a Filter. Names
// are compared case-insensitively. Unknown ranks are returned as the
// second value.
func NewFilter(data map[string][]string) (Filter, []string) {
	var unknown []string
	res := make(Filter)
	for k, vals := range data {
		r := rank.New(k)
		if r == rank.Unknown || r == rank.Life {
			unknown = append(unknown, k)
			continue
		}
		set := make(map[string]struct{}, len(vals))
		for _, v := range vals {
			set[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
		}
		res[r] = set
	}
	return res, unknown
}

// Allows checks the lineage against the allow-list. An empty filter
// allows everything.
func (f Filter) Allows(cls schema.Classification) bool {
	for r, set := range f {
		name := strings.ToLower(cls.Get(r))
		if _, ok := set[name]; !ok {
			return false
		}
	}
	return true
}
