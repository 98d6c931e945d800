// Package canonical maps taxonomy-specific concept qnames to
// taxonomy-independent canonical concept names, so filings reported under
// different taxonomy versions can be compared line by line.
package canonical

import (
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// skipSentinel marks a row as an explicit non-mapping: the concept is known
// but deliberately left uncanonicalized.
const skipSentinel = "skip"

// Source is one mapping table. Name is used for logging only.
type Source struct {
	Name   string
	Reader io.Reader
}

// Table is an immutable concept -> canonical-concept lookup. Build it once
// at startup; Resolve is safe for unsynchronized concurrent reads.
type Table struct {
	entries map[string]string
}

// Build merges mapping sources into a single lookup. Each source is a
// delimited table with at least concept_qname and canonical_concept columns;
// extra columns are ignored. The first mapping seen for a concept wins, both
// within and across sources, so source order must be deterministic.
// Unreadable sources are skipped, never fatal.
func Build(log *slog.Logger, sources ...Source) *Table {
	t := &Table{entries: make(map[string]string)}
	for _, src := range sources {
		if err := t.merge(src.Reader); err != nil {
			log.Warn("skipping mapping source", "source", src.Name, "error", err)
		}
	}
	return t
}

// LoadDir discovers mapping CSVs in dir matching pattern (e.g.
// "mapping_*.csv") and builds a table from them in sorted filename order.
// Discovery order decides duplicate tie-breaks, so it is sorted rather than
// left to filesystem enumeration. A missing directory yields an empty table.
func LoadDir(log *slog.Logger, dir, pattern string) *Table {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil || len(matches) == 0 {
		if err == nil {
			err = errors.New("no mapping files found")
		}
		log.Warn("canonical mapping unavailable", "dir", dir, "pattern", pattern, "error", err)
		return &Table{entries: make(map[string]string)}
	}
	sort.Strings(matches)

	var sources []Source
	var files []*os.File
	for _, path := range matches {
		f, err := os.Open(path)
		if err != nil {
			log.Warn("skipping mapping source", "source", path, "error", err)
			continue
		}
		files = append(files, f)
		sources = append(sources, Source{Name: filepath.Base(path), Reader: f})
	}
	t := Build(log, sources...)
	for _, f := range files {
		f.Close()
	}
	log.Info("canonical mapping loaded", "sources", len(sources), "entries", t.Len())
	return t
}

func (t *Table) merge(r io.Reader) error {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return err
	}
	conceptCol, canonicalCol := -1, -1
	for i, name := range header {
		switch strings.TrimPrefix(strings.TrimSpace(name), "\uFEFF") {
		case "concept_qname":
			conceptCol = i
		case "canonical_concept":
			canonicalCol = i
		}
	}
	if conceptCol < 0 || canonicalCol < 0 {
		return errors.New("missing concept_qname or canonical_concept column")
	}

	for {
		row, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if conceptCol >= len(row) || canonicalCol >= len(row) {
			continue
		}
		concept := strings.TrimSpace(row[conceptCol])
		name := strings.TrimSpace(row[canonicalCol])
		if concept == "" || name == "" || strings.EqualFold(name, skipSentinel) {
			continue
		}
		if _, exists := t.entries[concept]; !exists {
			t.entries[concept] = name
		}
	}
}

// Resolve returns the canonical concept for a qname. The second return is
// false for unmapped, empty or skipped concepts. Pure lookup, no I/O.
func (t *Table) Resolve(conceptQName string) (string, bool) {
	conceptQName = strings.TrimSpace(conceptQName)
	if conceptQName == "" {
		return "", false
	}
	name, ok := t.entries[conceptQName]
	return name, ok
}

// Len returns the number of mapped concepts.
func (t *Table) Len() int {
	return len(t.entries)
}
