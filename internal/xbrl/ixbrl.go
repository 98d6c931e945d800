package xbrl

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// ParseInline parses an inline-XBRL (XHTML) filing. Contexts and units live
// in the hidden ix:header resources; facts are ix:nonFraction and
// ix:nonNumeric elements scattered through the markup. Only the
// conventional ix/xbrli/xbrldi prefixes are recognized, which is what
// filings in the wild use.
//
// html.Parse lowercases tag and attribute names, so all matching below is
// against lowercase.
func ParseInline(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse inline xbrl: %w", err)
	}

	p := &inlineParser{doc: NewDocument(), ns: make(map[string]string)}
	p.collectNamespaces(root)
	p.walk(root)

	if len(p.doc.Facts) == 0 && len(p.doc.Contexts) == 0 {
		return nil, fmt.Errorf("parse inline xbrl: no xbrl content found")
	}
	return p.doc, nil
}

type inlineParser struct {
	doc *Document
	ns  map[string]string // prefix -> namespace URI, from xmlns:* attrs
}

// collectNamespaces gathers xmlns declarations from the whole tree; inline
// filings declare them on <html> but some generators scatter them.
func (p *inlineParser) collectNamespaces(n *html.Node) {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if pfx, ok := strings.CutPrefix(a.Key, "xmlns:"); ok {
				if _, seen := p.ns[pfx]; !seen {
					p.ns[pfx] = a.Val
				}
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.collectNamespaces(c)
	}
}

func (p *inlineParser) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "xbrli:context":
			p.parseContext(n)
			return
		case "xbrli:unit":
			p.parseUnit(n)
			return
		case "ix:nonfraction":
			p.parseNonFraction(n)
			// Recurse anyway: nested nonFractions occur in practice.
		case "ix:nonnumeric":
			p.parseNonNumeric(n)
		case "link:schemaref", "ix:references":
			if href := nodeAttr(n, "xlink:href"); href != "" {
				p.doc.SchemaRefs = append(p.doc.SchemaRefs, SchemaRef{Href: href})
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c)
	}
}

func (p *inlineParser) parseContext(n *html.Node) {
	ctx := &Context{ID: nodeAttr(n, "id")}
	inSegment := false

	var visit func(*html.Node)
	visit = func(m *html.Node) {
		if m.Type == html.ElementNode {
			switch m.Data {
			case "xbrli:identifier":
				ctx.Entity = &EntityIdentifier{
					Scheme:     nodeAttr(m, "scheme"),
					Identifier: strings.TrimSpace(nodeText(m)),
				}
			case "xbrli:startdate":
				ctx.Start = parseXBRLDate(nodeText(m))
			case "xbrli:enddate":
				ctx.End = parseXBRLDate(nodeText(m))
			case "xbrli:instant":
				ctx.Instant = parseXBRLDate(nodeText(m))
			case "xbrli:segment", "xbrli:scenario":
				inSegment = true
				for c := m.FirstChild; c != nil; c = c.NextSibling {
					visit(c)
				}
				inSegment = false
				return
			case "xbrldi:explicitmember":
				if !inSegment {
					return
				}
				dim := p.resolveQName(nodeAttr(m, "dimension"))
				member := p.resolveQName(strings.TrimSpace(nodeText(m)))
				if !dim.IsZero() && !member.IsZero() {
					ctx.Dimensions = append(ctx.Dimensions, DimensionValue{Dimension: dim, Member: member})
				}
				return
			}
		}
		for c := m.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)

	if ctx.ID != "" {
		p.doc.Contexts[ctx.ID] = ctx
	}
}

func (p *inlineParser) parseUnit(n *html.Node) {
	unit := &Unit{ID: nodeAttr(n, "id")}

	var visit func(m *html.Node, denom bool)
	visit = func(m *html.Node, denom bool) {
		if m.Type == html.ElementNode {
			switch m.Data {
			case "xbrli:measure":
				if q := p.resolveQName(strings.TrimSpace(nodeText(m))); !q.IsZero() {
					if denom {
						unit.Denominator = append(unit.Denominator, q)
					} else {
						unit.Numerator = append(unit.Numerator, q)
					}
				}
				return
			case "xbrli:unitdenominator":
				denom = true
			}
		}
		for c := m.FirstChild; c != nil; c = c.NextSibling {
			visit(c, denom)
		}
	}
	visit(n, false)

	if unit.ID != "" {
		p.doc.Units[unit.ID] = unit
	}
}

func (p *inlineParser) parseNonFraction(n *html.Node) {
	fact := p.newFact(n)
	if fact == nil {
		return
	}
	if !fact.Nil {
		fact.Value = normalizeInlineNumber(
			nodeText(n),
			nodeAttr(n, "format"),
			nodeAttr(n, "scale"),
			nodeAttr(n, "sign"),
		)
	}
	p.doc.Facts = append(p.doc.Facts, fact)
}

func (p *inlineParser) parseNonNumeric(n *html.Node) {
	fact := p.newFact(n)
	if fact == nil {
		return
	}
	if !fact.Nil {
		fact.Value = strings.TrimSpace(nodeText(n))
	}
	p.doc.Facts = append(p.doc.Facts, fact)
}

// newFact builds the common RawFact envelope from an ix element, or nil when
// the element carries no concept name.
func (p *inlineParser) newFact(n *html.Node) *RawFact {
	concept := p.resolveQName(nodeAttr(n, "name"))
	if concept.IsZero() {
		return nil
	}
	fact := &RawFact{
		Concept:    concept,
		ContextRef: nodeAttr(n, "contextref"),
		UnitRef:    nodeAttr(n, "unitref"),
	}
	if v := nodeAttr(n, "xsi:nil"); v == "true" || v == "1" {
		fact.Nil = true
	}
	if v := nodeAttr(n, "decimals"); v != "" {
		if d, err := strconv.Atoi(v); err == nil {
			fact.Decimals = &d
		}
	}
	return fact
}

// resolveQName splits "prefix:local" and binds the prefix against collected
// xmlns declarations. Unlike the instance parser, an unknown prefix still
// yields a usable qname: inline filings routinely reference taxonomy
// prefixes declared only in the schema.
func (p *inlineParser) resolveQName(s string) QName {
	s = strings.TrimSpace(s)
	if s == "" {
		return QName{}
	}
	pfx, local := "", s
	if i := strings.IndexByte(s, ':'); i >= 0 {
		pfx, local = s[:i], s[i+1:]
	}
	return QName{Space: p.ns[pfx], Prefix: pfx, Local: local}
}

// normalizeInlineNumber turns an ix:nonFraction's display text into a plain
// numeric string, applying format, scale and sign transforms. Unparseable
// content is returned as-is; the pipeline's coercion step degrades it to an
// absent value.
func normalizeInlineNumber(text, format, scale, sign string) string {
	s := strings.TrimSpace(text)
	if s == "" {
		return s
	}

	cleaned := s
	switch {
	case strings.HasSuffix(format, "num-comma-decimal"):
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	default:
		// num-dot-decimal and unformatted: strip thousands separators.
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return s
	}
	if scale != "" {
		if exp, err := strconv.Atoi(scale); err == nil {
			v *= math.Pow10(exp)
		}
	}
	if sign == "-" {
		v = -v
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func nodeAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(m *html.Node) {
		if m.Type == html.TextNode {
			sb.WriteString(m.Data)
		}
		for c := m.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return sb.String()
}
