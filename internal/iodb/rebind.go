package iodb

import (
	"strconv"
	"strings"
)

// Rebind converts "?" placeholders to "$1", "$2"... for PostgreSQL.
// Queries for SQLite are returned unchanged. Question marks inside
// quoted literals are not supported.
func Rebind(driver, query string) string {
	if driver != DriverPostgres {
		return query
	}

	var sb strings.Builder
	sb.Grow(len(query) + 8)
	var n int
	for _, r := range query {
		if r != '?' {
			sb.WriteRune(r)
			continue
		}
		n++
		sb.WriteByte('$')
		sb.WriteString(strconv.Itoa(n))
	}
	return sb.String()
}
