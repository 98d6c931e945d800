// Package extract walks a parsed XBRL document's fact set and produces
// normalized Fact records ready for canonical mapping and storage. It is
// the algorithmic core of the service: one bad fact degrades that fact's
// fields, never the filing.
package extract

import "time"

// EntityIdentifier is the reporting entity captured from a fact's context.
type EntityIdentifier struct {
	Scheme     string `json:"scheme"`
	Identifier string `json:"identifier"`
}

// Fact is one reported value, normalized. Pointer fields are absent when
// the source did not carry them or they could not be resolved; Dimensions
// is always non-nil, possibly empty.
type Fact struct {
	ConceptQName     string            `json:"concept_qname"`
	CanonicalConcept *string           `json:"canonical_concept,omitempty"`
	RawValue         string            `json:"raw_value,omitempty"`
	Value            *float64          `json:"value,omitempty"`
	Decimals         *int              `json:"decimals,omitempty"`
	Unit             *string           `json:"unit,omitempty"`
	Currency         *string           `json:"currency,omitempty"`
	Dimensions       map[string]string `json:"dimensions"`
	PeriodStart      *time.Time        `json:"period_start,omitempty"`
	PeriodEnd        *time.Time        `json:"period_end,omitempty"`
	Entity           *EntityIdentifier `json:"entity_identifier,omitempty"`
}

// FilingResult is the pipeline's sole output: resolved taxonomy metadata
// plus the canonicalized fact set.
type FilingResult struct {
	Taxonomy string `json:"taxonomy,omitempty"`
	Version  string `json:"version,omitempty"`
	Facts    []Fact `json:"facts"`
}

// Currency returns the filing-level currency: the first fact that carries
// one. Mirrors how the file row is labeled downstream.
func (fr *FilingResult) Currency() string {
	for i := range fr.Facts {
		if fr.Facts[i].Currency != nil {
			return *fr.Facts[i].Currency
		}
	}
	return ""
}

// FirstEntity returns the first entity identifier in the fact set, or nil.
func (fr *FilingResult) FirstEntity() *EntityIdentifier {
	for i := range fr.Facts {
		if fr.Facts[i].Entity != nil {
			return fr.Facts[i].Entity
		}
	}
	return nil
}

// FirstPeriod returns the first fact's period pair. Instant facts have only
// the end populated.
func (fr *FilingResult) FirstPeriod() (start, end *time.Time) {
	for i := range fr.Facts {
		if fr.Facts[i].PeriodStart != nil || fr.Facts[i].PeriodEnd != nil {
			return fr.Facts[i].PeriodStart, fr.Facts[i].PeriodEnd
		}
	}
	return nil, nil
}
