package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/dgallion1/xbrlgest/internal/store"
)

func TestWorker_Process(t *testing.T) {
	ing := newTestIngestor(t, "concept_qname,canonical_concept\nifrs:Assets,activos_totales\n")
	st := store.NewMemory()
	w := NewWorker(ing, st, discardLogger())

	job := NewJob("filing.xbrl", []byte(sfcInstance))
	w.Process(context.Background(), job)

	s := job.Snapshot()
	if s.Status != StatusCompleted {
		t.Fatalf("status = %q (error: %s)", s.Status, s.Error)
	}
	if s.FactCount != 1 {
		t.Errorf("fact_count = %d", s.FactCount)
	}
	if s.Taxonomy != "sfc v2016-04-01" {
		t.Errorf("taxonomy = %q", s.Taxonomy)
	}
	if job.FileData() != nil {
		t.Error("upload bytes should be released after processing")
	}

	fl, err := st.GetFiling(context.Background(), s.FilingID)
	if err != nil {
		t.Fatalf("GetFiling: %v", err)
	}
	if fl.Filename != "filing.xbrl" || fl.Currency != "USD" {
		t.Errorf("stored filing = %+v", fl)
	}
}

func TestWorker_Process_NoFacts(t *testing.T) {
	ing := newTestIngestor(t, "concept_qname,canonical_concept\n")
	w := NewWorker(ing, store.NewMemory(), discardLogger())

	job := NewJob("empty.xbrl", []byte(emptyInstance))
	w.Process(context.Background(), job)

	s := job.Snapshot()
	if s.Status != StatusNoFacts {
		t.Errorf("status = %q, want no_facts", s.Status)
	}
	if !strings.Contains(s.Error, "no usable facts") {
		t.Errorf("error = %q", s.Error)
	}
	if job.FileData() != nil {
		t.Error("upload bytes should be released on failure too")
	}
}

func TestWorker_Process_ParseFailure(t *testing.T) {
	ing := newTestIngestor(t, "concept_qname,canonical_concept\n")
	st := store.NewMemory()
	w := NewWorker(ing, st, discardLogger())

	job := NewJob("broken.xbrl", []byte("<xbrli:xbrl"))
	w.Process(context.Background(), job)

	s := job.Snapshot()
	if s.Status != StatusFailed {
		t.Errorf("status = %q, want failed", s.Status)
	}
	if filings, _ := st.ListFilings(context.Background(), 0); len(filings) != 0 {
		t.Error("failed job must not persist a filing")
	}
}
