// Package iodwc reads Darwin Core taxa files and allow-list filters.
package iodwc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gnames/gnbackbone/pkg/backbone"
)

// Darwin Core terms read from the taxa file.
const (
	termTaxonID              = "taxonid"
	termAcceptedNameUsageID  = "acceptednameusageid"
	termTaxonomicStatus      = "taxonomicstatus"
	termKingdom              = "kingdom"
	termPhylum               = "phylum"
	termClass                = "class"
	termOrder                = "order"
	termFamily               = "family"
	termGenus                = "genus"
	termSpecificEpithet      = "specificepithet"
	termInfraspecificEpithet = "infraspecificepithet"
	termOccurrenceStatus     = "occurrencestatus"
)

var requiredTerms = []string{
	termTaxonID, termTaxonomicStatus, termGenus, termSpecificEpithet,
}

// Reader streams rows of a Darwin Core taxa file.
type Reader struct {
	path  string
	delim rune
}

// Option configures a Reader.
type Option func(*Reader)

// OptDelimiter sets the field delimiter. Only ',' and '\t' are
// accepted, other values keep the default comma.
func OptDelimiter(s string) Option {
	return func(r *Reader) {
		switch s {
		case ",":
			r.delim = ','
		case "\t", `\t`, "tab":
			r.delim = '\t'
		}
	}
}

// NewReader creates a Reader of a comma-separated file by default.
func NewReader(path string, opts ...Option) *Reader {
	res := &Reader{path: path, delim: ','}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// Read parses the file and sends rows to ch. It closes ch when done.
// Rows keep their line numbers, the header being line 1.
func (r *Reader) Read(ctx context.Context, ch chan<- backbone.Row) error {
	defer close(ch)

	f, err := os.Open(r.path)
	if err != nil {
		return InputReadError(r.path, 0, err)
	}
	defer f.Close()

	return r.read(ctx, f, ch)
}

func (r *Reader) read(
	ctx context.Context,
	src io.Reader,
	ch chan<- backbone.Row,
) error {
	cr := csv.NewReader(bufio.NewReader(src))
	cr.Comma = r.delim
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	if r.delim == '\t' {
		cr.LazyQuotes = true
	}

	header, err := cr.Read()
	if err != nil {
		return InputReadError(r.path, 1, err)
	}
	cols, err := r.columns(header)
	if err != nil {
		return err
	}

	var line, rows int
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				line = perr.Line
			}
			return InputReadError(r.path, line, err)
		}
		line, _ = cr.FieldPos(0)
		rows++

		row := cols.row(rec)
		row.Line = line

		select {
		case <-ctx.Done():
			return ctx.Err()
		case ch <- row:
		}
	}

	slog.Info("Finished reading taxa file", "path", r.path, "rows", rows)
	return nil
}

// columns maps Darwin Core terms to their field positions.
type columns map[string]int

func (r *Reader) columns(header []string) (columns, error) {
	res := make(columns, len(header))
	for i, v := range header {
		term := normTerm(v)
		if _, ok := res[term]; ok {
			slog.Warn("Duplicate column in taxa file, using the first one",
				"path", r.path,
				"column", v,
			)
			continue
		}
		res[term] = i
	}

	var missing []string
	for _, v := range requiredTerms {
		if _, ok := res[v]; !ok {
			missing = append(missing, v)
		}
	}
	if len(missing) > 0 {
		return nil, InputHeaderError(r.path, missing)
	}
	return res, nil
}

func (c columns) get(rec []string, term string) string {
	idx, ok := c[term]
	if !ok || idx >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[idx])
}

func (c columns) row(rec []string) backbone.Row {
	return backbone.Row{
		TaxonID:              c.get(rec, termTaxonID),
		AcceptedNameUsageID:  c.get(rec, termAcceptedNameUsageID),
		TaxonomicStatus:      c.get(rec, termTaxonomicStatus),
		Kingdom:              c.get(rec, termKingdom),
		Phylum:               c.get(rec, termPhylum),
		Class:                c.get(rec, termClass),
		Order:                c.get(rec, termOrder),
		Family:               c.get(rec, termFamily),
		Genus:                c.get(rec, termGenus),
		SpecificEpithet:      c.get(rec, termSpecificEpithet),
		InfraspecificEpithet: c.get(rec, termInfraspecificEpithet),
		OccurrenceStatus:     c.get(rec, termOccurrenceStatus),
	}
}

// normTerm lower-cases a column name and removes "dwc:" style prefixes
// and term URIs.
func normTerm(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.TrimSpace(s)
	if i := strings.LastIndexAny(s, ":/#"); i >= 0 {
		s = s[i+1:]
	}
	return strings.ToLower(s)
}

// CountRows returns the number of data lines of a taxa file. Quoted
// fields with line breaks make it an estimate, good for progress bars.
func CountRows(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, InputReadError(path, 0, err)
	}
	defer f.Close()

	var count int
	var last byte
	buf := make([]byte, 64*1024)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			count += bytes.Count(buf[:n], []byte{'\n'})
			last = buf[n-1]
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, InputReadError(path, count, err)
		}
	}
	if last != 0 && last != '\n' {
		count++
	}
	if count > 0 {
		count--
	}
	return count, nil
}
