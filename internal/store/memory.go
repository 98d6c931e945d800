package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dgallion1/xbrlgest/internal/extract"
)

// Memory is an in-memory Store. It backs tests and lets the service run
// without a database, and applies the same entity/period natural-key
// deduplication as the Postgres store.
type Memory struct {
	mu       sync.Mutex
	nextID   int64
	filings  map[int64]Filing
	facts    map[int64][]FactRow
	entities map[string]int64 // identifier -> entity id
	periods  map[string]int64 // "start|end" -> period id
}

func NewMemory() *Memory {
	return &Memory{
		filings:  make(map[int64]Filing),
		facts:    make(map[int64][]FactRow),
		entities: make(map[string]int64),
		periods:  make(map[string]int64),
	}
}

func (s *Memory) SaveFiling(ctx context.Context, filename string, res *extract.FilingResult) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fl := Filing{
		Filename:  filename,
		Taxonomy:  res.Taxonomy,
		Version:   res.Version,
		Currency:  res.Currency(),
		FactCount: len(res.Facts),
		CreatedAt: time.Now(),
	}
	if ent := res.FirstEntity(); ent != nil && ent.Identifier != "" {
		if _, ok := s.entities[ent.Identifier]; !ok {
			s.nextID++
			s.entities[ent.Identifier] = s.nextID
		}
		fl.EntityName = ent.Identifier
		fl.EntityID = ent.Identifier
	}
	if start, end := res.FirstPeriod(); start != nil && end != nil {
		key := start.Format("2006-01-02") + "|" + end.Format("2006-01-02")
		if _, ok := s.periods[key]; !ok {
			s.nextID++
			s.periods[key] = s.nextID
		}
		fl.PeriodStart, fl.PeriodEnd = start, end
	}

	s.nextID++
	fl.ID = s.nextID
	s.filings[fl.ID] = fl

	rows := make([]FactRow, len(res.Facts))
	for i, f := range res.Facts {
		s.nextID++
		rows[i] = FactRow{ID: s.nextID, Fact: f}
	}
	s.facts[fl.ID] = rows
	return fl.ID, nil
}

func (s *Memory) ListFilings(ctx context.Context, limit int) ([]Filing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	filings := make([]Filing, 0, len(s.filings))
	for _, fl := range s.filings {
		filings = append(filings, fl)
	}
	sort.Slice(filings, func(i, j int) bool { return filings[i].ID > filings[j].ID })
	if limit > 0 && len(filings) > limit {
		filings = filings[:limit]
	}
	return filings, nil
}

func (s *Memory) GetFiling(ctx context.Context, id int64) (*Filing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fl, ok := s.filings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &fl, nil
}

func (s *Memory) ListFacts(ctx context.Context, filingID int64) ([]FactRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.filings[filingID]; !ok {
		return nil, ErrNotFound
	}
	return append([]FactRow(nil), s.facts[filingID]...), nil
}

func (s *Memory) DeleteFiling(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.filings[id]; !ok {
		return ErrNotFound
	}
	delete(s.filings, id)
	delete(s.facts, id)
	return nil
}

// EntityCount reports distinct entities seen, for tests and stats.
func (s *Memory) EntityCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entities)
}

// PeriodCount reports distinct periods seen.
func (s *Memory) PeriodCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.periods)
}

func (s *Memory) Close() {}

var _ Store = (*Memory)(nil)
