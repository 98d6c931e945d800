package extract

import (
	"github.com/dgallion1/xbrlgest/internal/xbrl"
)

// Extract produces one Fact per non-nil fact in the document, in document
// order. It never fails: unresolvable units, contexts or dimension members
// degrade the affected field to absent and extraction continues.
func Extract(doc *xbrl.Document) []Fact {
	facts := make([]Fact, 0, len(doc.Facts))
	for _, rf := range doc.Facts {
		if rf.Nil {
			continue
		}
		facts = append(facts, extractOne(doc, rf))
	}
	return facts
}

func extractOne(doc *xbrl.Document, rf *xbrl.RawFact) Fact {
	fact := Fact{
		ConceptQName: rf.Concept.String(),
		RawValue:     rf.Value,
		Decimals:     rf.Decimals,
		Dimensions:   map[string]string{},
	}

	if unit := doc.Unit(rf.UnitRef); unit != nil {
		id := unit.ID
		fact.Unit = &id
		// Currency is the local name of the first numerator measure:
		// iso4217:USD -> "USD". A unit with zero measures has no currency.
		if len(unit.Numerator) > 0 {
			cur := unit.Numerator[0].Local
			fact.Currency = &cur
		}
	}

	if ctx := doc.Context(rf.ContextRef); ctx != nil {
		switch {
		case ctx.Start != nil || ctx.End != nil:
			fact.PeriodStart = ctx.Start
			fact.PeriodEnd = ctx.End
		case ctx.Instant != nil:
			fact.PeriodEnd = ctx.Instant
		}
		if ctx.Entity != nil {
			fact.Entity = &EntityIdentifier{
				Scheme:     ctx.Entity.Scheme,
				Identifier: ctx.Entity.Identifier,
			}
		}
		for _, dv := range ctx.Dimensions {
			if dv.Dimension.IsZero() || dv.Member.IsZero() {
				continue
			}
			fact.Dimensions[dv.Dimension.String()] = dv.Member.String()
		}
	}

	return fact
}
