package xbrl

import (
	"strings"
	"testing"
	"time"
)

const sampleInstance = `<?xml version="1.0" encoding="UTF-8"?>
<xbrli:xbrl xmlns:xbrli="http://www.xbrl.org/2003/instance"
    xmlns:link="http://www.xbrl.org/2003/linkbase"
    xmlns:xlink="http://www.w3.org/1999/xlink"
    xmlns:xbrldi="http://xbrl.org/2006/xbrldi"
    xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
    xmlns:iso4217="http://www.xbrl.org/2003/iso4217"
    xmlns:ifrs="http://xbrl.ifrs.org/taxonomy/2021-03-24/ifrs-full"
    xmlns:dim="http://example.com/dimensions">
  <link:schemaRef xlink:type="simple" xlink:href="http://www.superfinanciera.gov.co/taxonomy/sfc_entry-point_2016-04-01.xsd"/>
  <xbrli:context id="I2023">
    <xbrli:entity>
      <xbrli:identifier scheme="http://www.superfinanciera.gov.co">890903938</xbrli:identifier>
    </xbrli:entity>
    <xbrli:period>
      <xbrli:instant>2023-12-31</xbrli:instant>
    </xbrli:period>
  </xbrli:context>
  <xbrli:context id="D2023">
    <xbrli:entity>
      <xbrli:identifier scheme="http://www.superfinanciera.gov.co">890903938</xbrli:identifier>
      <xbrli:segment>
        <xbrldi:explicitMember dimension="dim:BusinessSegment">dim:Retail</xbrldi:explicitMember>
        <xbrldi:explicitMember dimension="dim:Unbound">missing:Member</xbrldi:explicitMember>
      </xbrli:segment>
    </xbrli:entity>
    <xbrli:period>
      <xbrli:startDate>2023-01-01</xbrli:startDate>
      <xbrli:endDate>2023-12-31</xbrli:endDate>
    </xbrli:period>
  </xbrli:context>
  <xbrli:unit id="USD">
    <xbrli:measure>iso4217:USD</xbrli:measure>
  </xbrli:unit>
  <xbrli:unit id="perShare">
    <xbrli:divide>
      <xbrli:unitNumerator>
        <xbrli:measure>iso4217:USD</xbrli:measure>
      </xbrli:unitNumerator>
      <xbrli:unitDenominator>
        <xbrli:measure>xbrli:shares</xbrli:measure>
      </xbrli:unitDenominator>
    </xbrli:divide>
  </xbrli:unit>
  <xbrli:unit id="bare"></xbrli:unit>
  <ifrs:Assets contextRef="I2023" unitRef="USD" decimals="0">1000000</ifrs:Assets>
  <ifrs:Revenue contextRef="D2023" unitRef="USD" decimals="-3">2500000</ifrs:Revenue>
  <ifrs:Goodwill contextRef="I2023" unitRef="USD" xsi:nil="true"/>
  <ifrs:NameOfReportingEntity contextRef="I2023">Banco Ejemplo</ifrs:NameOfReportingEntity>
</xbrli:xbrl>`

func TestParseInstance_Facts(t *testing.T) {
	doc, err := ParseInstance(strings.NewReader(sampleInstance))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(doc.Facts) != 4 {
		t.Fatalf("expected 4 facts (nil facts still parsed), got %d", len(doc.Facts))
	}

	assets := doc.Facts[0]
	if got := assets.Concept.String(); got != "ifrs:Assets" {
		t.Errorf("concept = %q, want ifrs:Assets", got)
	}
	if assets.Value != "1000000" {
		t.Errorf("value = %q, want 1000000", assets.Value)
	}
	if assets.Decimals == nil || *assets.Decimals != 0 {
		t.Errorf("decimals = %v, want 0", assets.Decimals)
	}
	if assets.ContextRef != "I2023" || assets.UnitRef != "USD" {
		t.Errorf("refs = %q/%q", assets.ContextRef, assets.UnitRef)
	}

	revenue := doc.Facts[1]
	if revenue.Decimals == nil || *revenue.Decimals != -3 {
		t.Errorf("revenue decimals = %v, want -3", revenue.Decimals)
	}

	goodwill := doc.Facts[2]
	if !goodwill.Nil {
		t.Error("xsi:nil fact should have Nil set")
	}

	name := doc.Facts[3]
	if name.Value != "Banco Ejemplo" {
		t.Errorf("text fact value = %q", name.Value)
	}
	if name.Decimals != nil {
		t.Errorf("absent decimals should stay nil, got %v", *name.Decimals)
	}
}

func TestParseInstance_Contexts(t *testing.T) {
	doc, err := ParseInstance(strings.NewReader(sampleInstance))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inst := doc.Contexts["I2023"]
	if inst == nil {
		t.Fatal("missing context I2023")
	}
	if inst.Start != nil || inst.End != nil {
		t.Error("instant context should have no start/end")
	}
	if inst.Instant == nil || !inst.Instant.Equal(date(2023, 12, 31)) {
		t.Errorf("instant = %v, want 2023-12-31", inst.Instant)
	}
	if inst.Entity == nil || inst.Entity.Identifier != "890903938" {
		t.Errorf("entity = %+v", inst.Entity)
	}
	if inst.Entity.Scheme != "http://www.superfinanciera.gov.co" {
		t.Errorf("scheme = %q", inst.Entity.Scheme)
	}

	dur := doc.Contexts["D2023"]
	if dur == nil {
		t.Fatal("missing context D2023")
	}
	if dur.Start == nil || !dur.Start.Equal(date(2023, 1, 1)) {
		t.Errorf("start = %v, want 2023-01-01", dur.Start)
	}
	if dur.End == nil || !dur.End.Equal(date(2023, 12, 31)) {
		t.Errorf("end = %v, want 2023-12-31", dur.End)
	}

	// The unbound-prefix member is dropped, the resolvable one kept.
	if len(dur.Dimensions) != 1 {
		t.Fatalf("dimensions = %d, want 1", len(dur.Dimensions))
	}
	dv := dur.Dimensions[0]
	if dv.Dimension.String() != "dim:BusinessSegment" || dv.Member.String() != "dim:Retail" {
		t.Errorf("dimension = %s -> %s", dv.Dimension, dv.Member)
	}
}

func TestParseInstance_Units(t *testing.T) {
	doc, err := ParseInstance(strings.NewReader(sampleInstance))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	usd := doc.Units["USD"]
	if usd == nil || len(usd.Numerator) != 1 {
		t.Fatalf("unit USD = %+v", usd)
	}
	if usd.Numerator[0].Local != "USD" {
		t.Errorf("measure local = %q, want USD", usd.Numerator[0].Local)
	}

	ps := doc.Units["perShare"]
	if ps == nil || len(ps.Numerator) != 1 || len(ps.Denominator) != 1 {
		t.Fatalf("unit perShare = %+v", ps)
	}
	if ps.Denominator[0].Local != "shares" {
		t.Errorf("denominator local = %q, want shares", ps.Denominator[0].Local)
	}

	bare := doc.Units["bare"]
	if bare == nil {
		t.Fatal("missing unit bare")
	}
	if len(bare.Numerator) != 0 {
		t.Errorf("bare unit should have no measures, got %d", len(bare.Numerator))
	}
}

func TestParseInstance_SchemaRef(t *testing.T) {
	doc, err := ParseInstance(strings.NewReader(sampleInstance))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.SchemaRefs) != 1 {
		t.Fatalf("schemaRefs = %d, want 1", len(doc.SchemaRefs))
	}
	want := "http://www.superfinanciera.gov.co/taxonomy/sfc_entry-point_2016-04-01.xsd"
	if doc.SchemaRefs[0].Href != want {
		t.Errorf("href = %q", doc.SchemaRefs[0].Href)
	}
}

func TestParseInstance_DeterministicQNames(t *testing.T) {
	first, err := ParseInstance(strings.NewReader(sampleInstance))
	if err != nil {
		t.Fatal(err)
	}
	second, err := ParseInstance(strings.NewReader(sampleInstance))
	if err != nil {
		t.Fatal(err)
	}
	for i := range first.Facts {
		a, b := first.Facts[i].Concept.String(), second.Facts[i].Concept.String()
		if a == "" || a != b {
			t.Errorf("fact %d: qname %q vs %q", i, a, b)
		}
	}
}

func TestParseInstance_MalformedXML(t *testing.T) {
	_, err := ParseInstance(strings.NewReader(`<xbrli:xbrl xmlns:xbrli="http://www.xbrl.org/2003/instance"><unclosed>`))
	if err == nil {
		t.Fatal("expected error for malformed XML")
	}
}

func TestParseInstance_WrongRoot(t *testing.T) {
	_, err := ParseInstance(strings.NewReader(`<html><body>not xbrl</body></html>`))
	if err == nil {
		t.Fatal("expected error for non-xbrl root")
	}
}

func TestParseInstance_SchemaDocument(t *testing.T) {
	schema := `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
    targetNamespace="http://www.superfinanciera.gov.co/taxonomy/2016-04-01">
  <xs:element name="Assets" type="xs:decimal"/>
</xs:schema>`
	doc, err := ParseInstance(strings.NewReader(schema))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.TargetNamespace != "http://www.superfinanciera.gov.co/taxonomy/2016-04-01" {
		t.Errorf("targetNamespace = %q", doc.TargetNamespace)
	}
}

func TestForFile(t *testing.T) {
	for _, name := range []string{"filing.xbrl", "filing.xml", "FILING.XML"} {
		if _, err := ForFile(name); err != nil {
			t.Errorf("ForFile(%q): %v", name, err)
		}
	}
	for _, name := range []string{"filing.xhtml", "filing.html"} {
		if _, err := ForFile(name); err != nil {
			t.Errorf("ForFile(%q): %v", name, err)
		}
	}
	if _, err := ForFile("filing.pdf"); err == nil {
		t.Error("ForFile(.pdf) should fail")
	}
	if IsSupportedExtension("filing.docx") {
		t.Error("docx should not be supported")
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
