package ioreport

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/gnames/gnbackbone/pkg/backbone"
	"github.com/gnames/gnfmt"
)

// NamesFile is the name of the per-name status report.
const NamesFile = "species_names_added_status.tsv"

var namesHeader = []string{"taxon_id", "species_name", "status", "reason"}

// NameWriter streams outcomes of species and synonym rows into
// species_names_added_status.tsv.
type NameWriter struct {
	path string
	f    *os.File
	w    *bufio.Writer
	err  error

	closed bool
}

// NewNameWriter creates the report in dir and writes its header.
func NewNameWriter(dir string) (*NameWriter, error) {
	path := filepath.Join(dir, NamesFile)
	f, err := os.Create(path)
	if err != nil {
		return nil, WriteFileError(path, err)
	}

	res := &NameWriter{path: path, f: f, w: bufio.NewWriter(f)}
	res.write(namesHeader)
	if res.err != nil {
		f.Close()
		return nil, res.err
	}
	return res, nil
}

// Path returns the location of the report.
func (nw *NameWriter) Path() string {
	return nw.path
}

// Add writes one status line. It fits backbone.OptNameReport. The
// first write error is kept and returned by Close.
func (nw *NameWriter) Add(ns backbone.NameStatus) {
	nw.write([]string{ns.TaxonID, ns.Name, ns.StatusString(), ns.Reason})
}

func (nw *NameWriter) write(rec []string) {
	if nw.err != nil {
		return
	}
	if _, err := nw.w.WriteString(gnfmt.ToCSV(rec, '\t') + "\n"); err != nil {
		nw.err = WriteFileError(nw.path, err)
	}
}

// Close flushes the report. Repeated calls return the first result.
func (nw *NameWriter) Close() error {
	if nw.closed {
		return nw.err
	}
	nw.closed = true
	if err := nw.w.Flush(); err != nil && nw.err == nil {
		nw.err = WriteFileError(nw.path, err)
	}
	if err := nw.f.Close(); err != nil && nw.err == nil {
		nw.err = WriteFileError(nw.path, err)
	}
	return nw.err
}
