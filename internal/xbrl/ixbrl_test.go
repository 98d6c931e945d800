package xbrl

import (
	"strings"
	"testing"
)

const sampleInline = `<html xmlns:ix="http://www.xbrl.org/2013/inlineXBRL"
    xmlns:xbrli="http://www.xbrl.org/2003/instance"
    xmlns:xbrldi="http://xbrl.org/2006/xbrldi"
    xmlns:iso4217="http://www.xbrl.org/2003/iso4217"
    xmlns:us-gaap="http://fasb.org/us-gaap/2023"
    xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
<body>
  <div style="display:none">
    <ix:header>
      <ix:hidden>
        <xbrli:context id="c-1">
          <xbrli:entity>
            <xbrli:identifier scheme="http://www.sec.gov/CIK">0000320193</xbrli:identifier>
          </xbrli:entity>
          <xbrli:period>
            <xbrli:startDate>2022-01-01</xbrli:startDate>
            <xbrli:endDate>2022-12-31</xbrli:endDate>
          </xbrli:period>
        </xbrli:context>
        <xbrli:context id="c-2">
          <xbrli:period>
            <xbrli:instant>2022-12-31</xbrli:instant>
          </xbrli:period>
        </xbrli:context>
        <xbrli:unit id="usd">
          <xbrli:measure>iso4217:USD</xbrli:measure>
        </xbrli:unit>
      </ix:hidden>
    </ix:header>
  </div>
  <p>$<ix:nonFraction unitRef="usd" contextRef="c-1" decimals="-3"
      name="us-gaap:StockRepurchasedDuringPeriodValue"
      format="ixt:num-dot-decimal" scale="3">105,056</ix:nonFraction> of shares repurchased</p>
  <p><ix:nonFraction unitRef="usd" contextRef="c-2" decimals="0"
      name="us-gaap:Liabilities" sign="-" scale="0">1,234.5</ix:nonFraction></p>
  <p><ix:nonNumeric contextRef="c-1" name="us-gaap:EntityRegistrantName">Apple Inc.</ix:nonNumeric></p>
  <p><ix:nonFraction unitRef="usd" contextRef="c-2" name="us-gaap:Goodwill" xsi:nil="true"></ix:nonFraction></p>
</body></html>`

func TestParseInline_Facts(t *testing.T) {
	doc, err := ParseInline(strings.NewReader(sampleInline))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(doc.Facts) != 4 {
		t.Fatalf("expected 4 facts, got %d", len(doc.Facts))
	}

	buyback := doc.Facts[0]
	if got := buyback.Concept.String(); got != "us-gaap:StockRepurchasedDuringPeriodValue" {
		t.Errorf("concept = %q", got)
	}
	// 105,056 with scale 3 -> 105056000.
	if buyback.Value != "105056000" {
		t.Errorf("scaled value = %q, want 105056000", buyback.Value)
	}
	if buyback.ContextRef != "c-1" || buyback.UnitRef != "usd" {
		t.Errorf("refs = %q/%q", buyback.ContextRef, buyback.UnitRef)
	}
	if buyback.Decimals == nil || *buyback.Decimals != -3 {
		t.Errorf("decimals = %v, want -3", buyback.Decimals)
	}

	liab := doc.Facts[1]
	if liab.Value != "-1234.5" {
		t.Errorf("signed value = %q, want -1234.5", liab.Value)
	}

	name := doc.Facts[2]
	if name.Value != "Apple Inc." {
		t.Errorf("nonNumeric value = %q", name.Value)
	}

	if !doc.Facts[3].Nil {
		t.Error("xsi:nil inline fact should have Nil set")
	}
}

func TestParseInline_Resources(t *testing.T) {
	doc, err := ParseInline(strings.NewReader(sampleInline))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c1 := doc.Contexts["c-1"]
	if c1 == nil {
		t.Fatal("missing context c-1")
	}
	if c1.Start == nil || c1.End == nil {
		t.Error("c-1 should be a duration context")
	}
	if c1.Entity == nil || c1.Entity.Identifier != "0000320193" {
		t.Errorf("entity = %+v", c1.Entity)
	}

	c2 := doc.Contexts["c-2"]
	if c2 == nil || c2.Instant == nil {
		t.Fatal("c-2 should be an instant context")
	}

	usd := doc.Units["usd"]
	if usd == nil || len(usd.Numerator) != 1 || usd.Numerator[0].Local != "USD" {
		t.Errorf("unit usd = %+v", usd)
	}
	if usd.Numerator[0].Space != "http://www.xbrl.org/2003/iso4217" {
		t.Errorf("measure namespace = %q", usd.Numerator[0].Space)
	}
}

func TestParseInline_NoXBRLContent(t *testing.T) {
	_, err := ParseInline(strings.NewReader(`<html><body><p>just a web page</p></body></html>`))
	if err == nil {
		t.Fatal("expected error for HTML with no XBRL content")
	}
}

func TestNormalizeInlineNumber(t *testing.T) {
	tests := []struct {
		text, format, scale, sign string
		want                      string
	}{
		{"105,056", "ixt:num-dot-decimal", "3", "", "105056000"},
		{"1.234,5", "ixt:num-comma-decimal", "", "", "1234.5"},
		{"42", "", "", "-", "-42"},
		{"0.5", "", "2", "", "50"},
		{"n/a", "", "", "", "n/a"}, // unparseable passes through
	}
	for _, tt := range tests {
		got := normalizeInlineNumber(tt.text, tt.format, tt.scale, tt.sign)
		if got != tt.want {
			t.Errorf("normalizeInlineNumber(%q, %q, %q, %q) = %q, want %q",
				tt.text, tt.format, tt.scale, tt.sign, got, tt.want)
		}
	}
}
