// Package store persists ingested filings: one filing row plus its fact
// rows, with entities and periods deduplicated by natural key. The pipeline
// only depends on the Store interface; Postgres backs production and Memory
// backs tests and store-less operation.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/dgallion1/xbrlgest/internal/extract"
)

// ErrNotFound is returned for lookups of filings that do not exist.
var ErrNotFound = errors.New("filing not found")

// Filing is one persisted filing with its resolved entity and period.
type Filing struct {
	ID          int64      `json:"id"`
	Filename    string     `json:"filename"`
	Taxonomy    string     `json:"taxonomy,omitempty"`
	Version     string     `json:"version,omitempty"`
	Currency    string     `json:"currency,omitempty"`
	EntityName  string     `json:"entity_name,omitempty"`
	EntityID    string     `json:"entity_identifier,omitempty"`
	PeriodStart *time.Time `json:"period_start,omitempty"`
	PeriodEnd   *time.Time `json:"period_end,omitempty"`
	FactCount   int        `json:"fact_count"`
	CreatedAt   time.Time  `json:"created_at"`
}

// FactRow is one persisted fact.
type FactRow struct {
	ID int64 `json:"id"`
	extract.Fact
}

// Store accepts pipeline output and serves the read endpoints. SaveFiling
// is all-or-nothing: on error nothing is persisted.
type Store interface {
	SaveFiling(ctx context.Context, filename string, res *extract.FilingResult) (int64, error)
	ListFilings(ctx context.Context, limit int) ([]Filing, error)
	GetFiling(ctx context.Context, id int64) (*Filing, error)
	ListFacts(ctx context.Context, filingID int64) ([]FactRow, error)
	DeleteFiling(ctx context.Context, id int64) error
	Close()
}
