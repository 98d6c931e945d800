package xbrl

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// XBRL namespace URIs used while walking an instance document.
const (
	nsXBRLI  = "http://www.xbrl.org/2003/instance"
	nsLink   = "http://www.xbrl.org/2003/linkbase"
	nsXLink  = "http://www.w3.org/1999/xlink"
	nsXBRLDI = "http://xbrl.org/2006/xbrldi"
	nsXSI    = "http://www.w3.org/2001/XMLSchema-instance"
	nsXSD    = "http://www.w3.org/2001/XMLSchema"
)

// instanceParser tracks namespace prefix bindings as the token stream is
// walked. Go's xml.Decoder resolves names to namespace URIs but drops the
// prefixes, which we need for stable qname stringification.
type instanceParser struct {
	dec    *xml.Decoder
	doc    *Document
	scopes []map[string]string // prefix -> namespace URI, one map per open element
	prefix map[string]string   // namespace URI -> first declared prefix
}

// ParseInstance parses a plain XBRL instance document (or a taxonomy schema,
// in which case only targetNamespace is captured). The reader must hold the
// whole document; referenced schemas are not fetched.
func ParseInstance(r io.Reader) (*Document, error) {
	p := &instanceParser{
		dec:    xml.NewDecoder(r),
		doc:    NewDocument(),
		prefix: make(map[string]string),
	}
	if err := p.run(); err != nil {
		return nil, err
	}
	return p.doc, nil
}

func (p *instanceParser) run() error {
	sawRoot := false
	for {
		tok, err := p.dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("parse xbrl: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		p.pushScope(se)
		switch {
		case se.Name.Space == nsXBRLI && se.Name.Local == "xbrl":
			sawRoot = true
			if err := p.parseInstanceBody(); err != nil {
				return err
			}
		case se.Name.Space == nsXSD && se.Name.Local == "schema":
			sawRoot = true
			p.doc.TargetNamespace = attr(se, "", "targetNamespace")
			if err := p.dec.Skip(); err != nil {
				return fmt.Errorf("parse schema: %w", err)
			}
			p.popScope()
		default:
			return fmt.Errorf("parse xbrl: unexpected root element %s", se.Name.Local)
		}
	}
	if !sawRoot {
		return fmt.Errorf("parse xbrl: no xbrl root element")
	}
	return nil
}

// parseInstanceBody walks the direct children of the xbrl root. Everything
// that is not a schemaRef, context or unit is treated as a fact.
func (p *instanceParser) parseInstanceBody() error {
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return fmt.Errorf("parse xbrl: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			p.pushScope(t)
			switch {
			case t.Name.Space == nsLink && t.Name.Local == "schemaRef":
				if href := attr(t, nsXLink, "href"); href != "" {
					p.doc.SchemaRefs = append(p.doc.SchemaRefs, SchemaRef{Href: href})
				}
				if err := p.skip(); err != nil {
					return err
				}
			case t.Name.Space == nsXBRLI && t.Name.Local == "context":
				if err := p.parseContext(t); err != nil {
					return err
				}
			case t.Name.Space == nsXBRLI && t.Name.Local == "unit":
				if err := p.parseUnit(t); err != nil {
					return err
				}
			case t.Name.Space == nsLink || t.Name.Space == nsXBRLI:
				// footnoteLink and friends: not facts.
				if err := p.skip(); err != nil {
					return err
				}
			default:
				if err := p.parseFact(t); err != nil {
					return err
				}
			}
		case xml.EndElement:
			p.popScope()
			return nil
		}
	}
}

func (p *instanceParser) parseContext(se xml.StartElement) error {
	ctx := &Context{ID: attr(se, "", "id")}
	depth := 1
	inSegment := false
	var pending string // element local name whose chardata we want
	var text strings.Builder
	var pendingDim QName

	for depth > 0 {
		tok, err := p.dec.Token()
		if err != nil {
			return fmt.Errorf("parse context: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			p.pushScope(t)
			depth++
			switch {
			case t.Name.Space == nsXBRLI && t.Name.Local == "identifier":
				if ctx.Entity == nil {
					ctx.Entity = &EntityIdentifier{}
				}
				ctx.Entity.Scheme = attr(t, "", "scheme")
				pending, text = "identifier", strings.Builder{}
			case t.Name.Space == nsXBRLI && (t.Name.Local == "startDate" || t.Name.Local == "endDate" || t.Name.Local == "instant"):
				pending, text = t.Name.Local, strings.Builder{}
			case t.Name.Space == nsXBRLI && (t.Name.Local == "segment" || t.Name.Local == "scenario"):
				inSegment = true
			case t.Name.Space == nsXBRLDI && t.Name.Local == "explicitMember" && inSegment:
				pendingDim = p.resolveQName(attr(t, "", "dimension"))
				pending, text = "explicitMember", strings.Builder{}
			}
		case xml.CharData:
			if pending != "" {
				text.Write(t)
			}
		case xml.EndElement:
			switch pending {
			case "identifier":
				if ctx.Entity != nil {
					ctx.Entity.Identifier = strings.TrimSpace(text.String())
				}
			case "startDate":
				ctx.Start = parseXBRLDate(text.String())
			case "endDate":
				ctx.End = parseXBRLDate(text.String())
			case "instant":
				ctx.Instant = parseXBRLDate(text.String())
			case "explicitMember":
				member := p.resolveQName(strings.TrimSpace(text.String()))
				// An unresolvable dimension or member drops this one
				// qualifier, never the whole context.
				if !pendingDim.IsZero() && !member.IsZero() {
					ctx.Dimensions = append(ctx.Dimensions, DimensionValue{
						Dimension: pendingDim,
						Member:    member,
					})
				}
				pendingDim = QName{}
			}
			pending = ""
			if t.Name.Space == nsXBRLI && (t.Name.Local == "segment" || t.Name.Local == "scenario") {
				inSegment = false
			}
			p.popScope()
			depth--
		}
	}
	if ctx.ID != "" {
		p.doc.Contexts[ctx.ID] = ctx
	}
	return nil
}

func (p *instanceParser) parseUnit(se xml.StartElement) error {
	unit := &Unit{ID: attr(se, "", "id")}
	depth := 1
	denominator := false
	inMeasure := false
	var text strings.Builder

	for depth > 0 {
		tok, err := p.dec.Token()
		if err != nil {
			return fmt.Errorf("parse unit: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			p.pushScope(t)
			depth++
			switch {
			case t.Name.Space == nsXBRLI && t.Name.Local == "measure":
				inMeasure = true
				text.Reset()
			case t.Name.Space == nsXBRLI && t.Name.Local == "unitDenominator":
				denominator = true
			}
		case xml.CharData:
			if inMeasure {
				text.Write(t)
			}
		case xml.EndElement:
			if t.Name.Space == nsXBRLI && t.Name.Local == "measure" && inMeasure {
				if q := p.resolveQName(strings.TrimSpace(text.String())); !q.IsZero() {
					if denominator {
						unit.Denominator = append(unit.Denominator, q)
					} else {
						unit.Numerator = append(unit.Numerator, q)
					}
				}
				inMeasure = false
			}
			if t.Name.Space == nsXBRLI && t.Name.Local == "unitDenominator" {
				denominator = false
			}
			p.popScope()
			depth--
		}
	}
	if unit.ID != "" {
		p.doc.Units[unit.ID] = unit
	}
	return nil
}

// parseFact reads one fact element. Character data of the fact element
// itself is the value; nested elements (tuples) are skipped wholesale.
func (p *instanceParser) parseFact(se xml.StartElement) error {
	fact := &RawFact{
		Concept:    p.qnameFor(se.Name),
		ContextRef: attr(se, "", "contextRef"),
		UnitRef:    attr(se, "", "unitRef"),
	}
	if v := attr(se, nsXSI, "nil"); v == "true" || v == "1" {
		fact.Nil = true
	}
	if v := attr(se, "", "decimals"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			fact.Decimals = &n
		}
	}

	depth := 1
	var text strings.Builder
	for depth > 0 {
		tok, err := p.dec.Token()
		if err != nil {
			return fmt.Errorf("parse fact %s: %w", fact.Concept, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			p.pushScope(t)
			depth++
		case xml.CharData:
			if depth == 1 {
				text.Write(t)
			}
		case xml.EndElement:
			p.popScope()
			depth--
		}
	}
	fact.Value = strings.TrimSpace(text.String())
	p.doc.Facts = append(p.doc.Facts, fact)
	return nil
}

// skip consumes the current element's subtree, keeping scopes balanced.
func (p *instanceParser) skip() error {
	if err := p.dec.Skip(); err != nil {
		return fmt.Errorf("parse xbrl: %w", err)
	}
	p.popScope()
	return nil
}

// pushScope records the prefix bindings declared on an element.
func (p *instanceParser) pushScope(se xml.StartElement) {
	var scope map[string]string
	for _, a := range se.Attr {
		var pfx string
		switch {
		case a.Name.Space == "xmlns":
			pfx = a.Name.Local
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			pfx = "" // default namespace
		default:
			continue
		}
		if scope == nil {
			scope = make(map[string]string)
		}
		scope[pfx] = a.Value
		if pfx != "" {
			if _, seen := p.prefix[a.Value]; !seen {
				p.prefix[a.Value] = pfx
			}
		}
	}
	p.scopes = append(p.scopes, scope)
}

func (p *instanceParser) popScope() {
	if len(p.scopes) > 0 {
		p.scopes = p.scopes[:len(p.scopes)-1]
	}
}

// lookupPrefix resolves a prefix against the innermost scope that binds it.
func (p *instanceParser) lookupPrefix(pfx string) (string, bool) {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if p.scopes[i] == nil {
			continue
		}
		if uri, ok := p.scopes[i][pfx]; ok {
			return uri, true
		}
	}
	return "", false
}

// resolveQName resolves lexical "prefix:local" text (dimension members,
// unit measures) against the in-scope bindings. Returns the zero QName when
// the prefix is unbound.
func (p *instanceParser) resolveQName(s string) QName {
	if s == "" {
		return QName{}
	}
	pfx, local := "", s
	if i := strings.IndexByte(s, ':'); i >= 0 {
		pfx, local = s[:i], s[i+1:]
	}
	uri, ok := p.lookupPrefix(pfx)
	if !ok && pfx != "" {
		return QName{}
	}
	return p.canonical(uri, pfx, local)
}

// qnameFor converts a decoder-resolved element name (URI + local) back into
// a prefixed QName using the first prefix declared for that URI.
func (p *instanceParser) qnameFor(n xml.Name) QName {
	return p.canonical(n.Space, p.prefix[n.Space], n.Local)
}

func (p *instanceParser) canonical(uri, pfx, local string) QName {
	if first, ok := p.prefix[uri]; ok {
		pfx = first
	}
	return QName{Space: uri, Prefix: pfx, Local: local}
}

// attr returns the value of the named attribute, or "".
func attr(se xml.StartElement, space, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local && (space == "" && a.Name.Space == "" || a.Name.Space == space) {
			return a.Value
		}
	}
	return ""
}

// parseXBRLDate parses xs:date or xs:dateTime content, truncating any
// time-of-day component.
func parseXBRLDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", "2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}
