// Package xbrl provides a minimal object model for XBRL instance documents
// and parsers that populate it from plain XML instances and inline-XBRL
// (XHTML) filings. The model is deliberately narrow: facts, contexts, units
// and schema references are all the downstream extraction pipeline needs,
// and synthetic documents can be built directly in tests.
package xbrl

import "time"

// QName is a namespace-qualified name. Prefix is the first prefix bound to
// Space in the source document; it is what String uses, so the same concept
// stringifies identically across repeated parses of the same input.
type QName struct {
	Space  string
	Prefix string
	Local  string
}

func (q QName) String() string {
	if q.Prefix == "" {
		return q.Local
	}
	return q.Prefix + ":" + q.Local
}

// IsZero reports whether the qname is unset.
func (q QName) IsZero() bool {
	return q.Local == ""
}

// EntityIdentifier is the reporting entity from a context's entity element.
type EntityIdentifier struct {
	Scheme     string
	Identifier string
}

// DimensionValue is one explicit dimension member qualifying a context.
type DimensionValue struct {
	Dimension QName
	Member    QName
}

// Context describes the period and entity/dimensional scope of a fact.
// Duration contexts set Start and End; instant contexts set only Instant.
type Context struct {
	ID         string
	Entity     *EntityIdentifier
	Start      *time.Time
	End        *time.Time
	Instant    *time.Time
	Dimensions []DimensionValue
}

// Unit describes the measure of a numeric fact. Numerator holds the first
// measure group; Denominator is set for divide units (e.g. per-share).
type Unit struct {
	ID          string
	Numerator   []QName
	Denominator []QName
}

// RawFact is a reported value as it appears in the instance, before
// normalization. Value is the raw text content; numeric coercion happens
// later in the pipeline.
type RawFact struct {
	Concept    QName
	ContextRef string
	UnitRef    string
	Value      string
	Decimals   *int
	Nil        bool
}

// SchemaRef is a link:schemaRef from the instance document. TargetNamespace
// is populated only when the referenced schema was itself loaded.
type SchemaRef struct {
	Href            string
	TargetNamespace string
}

// Document is a parsed XBRL filing.
type Document struct {
	// TargetNamespace is set when the parsed document is itself a schema;
	// plain instance documents normally leave it empty.
	TargetNamespace string

	SchemaRefs []SchemaRef
	Contexts   map[string]*Context
	Units      map[string]*Unit
	Facts      []*RawFact
}

// NewDocument returns an empty document with initialized maps.
func NewDocument() *Document {
	return &Document{
		Contexts: make(map[string]*Context),
		Units:    make(map[string]*Unit),
	}
}

// Context returns the context referenced by a fact, or nil.
func (d *Document) Context(ref string) *Context {
	if ref == "" {
		return nil
	}
	return d.Contexts[ref]
}

// Unit returns the unit referenced by a fact, or nil.
func (d *Document) Unit(ref string) *Unit {
	if ref == "" {
		return nil
	}
	return d.Units[ref]
}
