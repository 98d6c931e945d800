// Package pipeline orchestrates filing ingestion: parse the uploaded
// document, resolve its taxonomy, extract facts, canonicalize them, and
// hand the result to the store. Ingest itself is synchronous and
// per-document; the Orchestrator layers async job handling on top for the
// HTTP surface.
package pipeline

import (
	"bytes"

	"github.com/dgallion1/xbrlgest/internal/canonical"
	"github.com/dgallion1/xbrlgest/internal/extract"
	"github.com/dgallion1/xbrlgest/internal/taxonomy"
	"github.com/dgallion1/xbrlgest/internal/xbrl"
)

// Ingestor runs the parse -> resolve -> extract -> canonicalize pipeline
// for one document at a time. Both collaborators are read-only after
// construction, so a single Ingestor is safe for concurrent use.
type Ingestor struct {
	table    *canonical.Table
	resolver *taxonomy.Resolver
}

func NewIngestor(table *canonical.Table, resolver *taxonomy.Resolver) *Ingestor {
	return &Ingestor{table: table, resolver: resolver}
}

// Ingest processes one uploaded filing. It returns *ParseError when the
// bytes are not a loadable XBRL document, ErrNoFacts when the document
// parses but reports nothing, and a complete FilingResult otherwise.
// Per-fact data-quality problems never fail the call; they degrade the
// affected field.
func (in *Ingestor) Ingest(data []byte, filename string) (*extract.FilingResult, error) {
	parse, err := xbrl.ForFile(filename)
	if err != nil {
		return nil, &ParseError{Filename: filename, Err: err}
	}
	doc, err := parse(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Filename: filename, Err: err}
	}

	info := in.resolver.Resolve(doc)

	facts := extract.Extract(doc)
	if len(facts) == 0 {
		return nil, ErrNoFacts
	}

	for i := range facts {
		if v, ok := extract.CoerceNumeric(facts[i].RawValue); ok {
			facts[i].Value = &v
		}
		if name, ok := in.table.Resolve(facts[i].ConceptQName); ok {
			facts[i].CanonicalConcept = &name
		}
	}

	return &extract.FilingResult{
		Taxonomy: info.Name(),
		Version:  info.Version,
		Facts:    facts,
	}, nil
}
