package pipeline

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/xbrlgest/internal/canonical"
	"github.com/dgallion1/xbrlgest/internal/taxonomy"
)

const sfcInstance = `<?xml version="1.0" encoding="UTF-8"?>
<xbrli:xbrl xmlns:xbrli="http://www.xbrl.org/2003/instance"
            xmlns:link="http://www.xbrl.org/2003/linkbase"
            xmlns:xlink="http://www.w3.org/1999/xlink"
            xmlns:iso4217="http://www.xbrl.org/2003/iso4217"
            xmlns:ifrs="http://xbrl.superfinanciera.gov.co/taxonomy/fr/2016-04-01/ifrs">
  <link:schemaRef xlink:type="simple" xlink:href="http://xbrl.superfinanciera.gov.co/taxonomy/fr/2016-04-01/sfc_entry-point_2016-04-01.xsd"/>
  <xbrli:context id="I2023">
    <xbrli:entity>
      <xbrli:identifier scheme="http://www.superfinanciera.gov.co">900123456</xbrli:identifier>
    </xbrli:entity>
    <xbrli:period>
      <xbrli:instant>2023-12-31</xbrli:instant>
    </xbrli:period>
  </xbrli:context>
  <xbrli:unit id="USD">
    <xbrli:measure>iso4217:USD</xbrli:measure>
  </xbrli:unit>
  <ifrs:Assets contextRef="I2023" unitRef="USD" decimals="0">1000000</ifrs:Assets>
</xbrli:xbrl>`

const emptyInstance = `<?xml version="1.0" encoding="UTF-8"?>
<xbrli:xbrl xmlns:xbrli="http://www.xbrl.org/2003/instance">
  <xbrli:context id="I2023">
    <xbrli:entity>
      <xbrli:identifier scheme="s">x</xbrli:identifier>
    </xbrli:entity>
    <xbrli:period><xbrli:instant>2023-12-31</xbrli:instant></xbrli:period>
  </xbrli:context>
</xbrli:xbrl>`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestIngestor(t *testing.T, mappingCSV string) *Ingestor {
	t.Helper()
	table := canonical.Build(discardLogger(), canonical.Source{
		Name:   "mapping_test.csv",
		Reader: strings.NewReader(mappingCSV),
	})
	return NewIngestor(table, taxonomy.NewResolver(nil))
}

func TestIngest_EndToEnd(t *testing.T) {
	ing := newTestIngestor(t, "concept_qname,canonical_concept\nifrs:Assets,activos_totales\n")

	res, err := ing.Ingest([]byte(sfcInstance), "filing.xbrl")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if res.Taxonomy != "sfc v2016-04-01" {
		t.Errorf("taxonomy = %q", res.Taxonomy)
	}
	if res.Version != "2016-04-01" {
		t.Errorf("version = %q", res.Version)
	}
	if len(res.Facts) != 1 {
		t.Fatalf("expected 1 fact, got %d", len(res.Facts))
	}

	f := res.Facts[0]
	if f.ConceptQName != "ifrs:Assets" {
		t.Errorf("concept = %q", f.ConceptQName)
	}
	if f.CanonicalConcept == nil || *f.CanonicalConcept != "activos_totales" {
		t.Errorf("canonical_concept = %v, want activos_totales", f.CanonicalConcept)
	}
	if f.Value == nil || *f.Value != 1000000 {
		t.Errorf("value = %v, want 1000000", f.Value)
	}
	if f.RawValue != "1000000" {
		t.Errorf("raw_value = %q", f.RawValue)
	}
	if f.PeriodStart != nil {
		t.Errorf("instant filing must not set period_start, got %v", *f.PeriodStart)
	}
	want := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	if f.PeriodEnd == nil || !f.PeriodEnd.Equal(want) {
		t.Errorf("period_end = %v, want 2023-12-31", f.PeriodEnd)
	}
	if f.Currency == nil || *f.Currency != "USD" {
		t.Errorf("currency = %v, want USD", f.Currency)
	}
	if len(f.Dimensions) != 0 {
		t.Errorf("dimensions = %v, want empty", f.Dimensions)
	}
	if f.Entity == nil || f.Entity.Identifier != "900123456" {
		t.Errorf("entity = %+v", f.Entity)
	}
}

func TestIngest_UnmappedConcept(t *testing.T) {
	ing := newTestIngestor(t, "concept_qname,canonical_concept\nother:Thing,algo\n")

	res, err := ing.Ingest([]byte(sfcInstance), "filing.xbrl")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if res.Facts[0].CanonicalConcept != nil {
		t.Errorf("unmapped concept should have no canonical name, got %q", *res.Facts[0].CanonicalConcept)
	}
}

func TestIngest_NoFacts(t *testing.T) {
	ing := newTestIngestor(t, "concept_qname,canonical_concept\n")

	_, err := ing.Ingest([]byte(emptyInstance), "empty.xbrl")
	if !errors.Is(err, ErrNoFacts) {
		t.Fatalf("err = %v, want ErrNoFacts", err)
	}
}

func TestIngest_MalformedDocument(t *testing.T) {
	ing := newTestIngestor(t, "concept_qname,canonical_concept\n")

	_, err := ing.Ingest([]byte("<xbrli:xbrl"), "broken.xbrl")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
	if pe.Filename != "broken.xbrl" {
		t.Errorf("filename = %q", pe.Filename)
	}
	if errors.Is(err, ErrNoFacts) {
		t.Error("parse failure must not match ErrNoFacts")
	}
}

func TestIngest_UnsupportedExtension(t *testing.T) {
	ing := newTestIngestor(t, "concept_qname,canonical_concept\n")

	_, err := ing.Ingest([]byte("no importa"), "filing.pdf")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
}

func TestIngest_NonNumericValueKeptRaw(t *testing.T) {
	doc := strings.Replace(sfcInstance,
		`<ifrs:Assets contextRef="I2023" unitRef="USD" decimals="0">1000000</ifrs:Assets>`,
		`<ifrs:NameOfReportingEntity contextRef="I2023">Banco Ejemplo S.A.</ifrs:NameOfReportingEntity>`, 1)
	ing := newTestIngestor(t, "concept_qname,canonical_concept\n")

	res, err := ing.Ingest([]byte(doc), "filing.xbrl")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	f := res.Facts[0]
	if f.Value != nil {
		t.Errorf("text fact must have no numeric value, got %v", *f.Value)
	}
	if f.RawValue != "Banco Ejemplo S.A." {
		t.Errorf("raw_value = %q", f.RawValue)
	}
}
