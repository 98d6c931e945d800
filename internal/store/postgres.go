package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dgallion1/xbrlgest/internal/extract"
)

// Postgres persists filings through a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to the database and ensures the schema exists.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	s := &Postgres{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Postgres) ensureSchema(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS entities (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			identifier TEXT UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS periods (
			id BIGSERIAL PRIMARY KEY,
			start_date DATE NOT NULL,
			end_date DATE NOT NULL,
			UNIQUE (start_date, end_date)
		)`,
		`CREATE TABLE IF NOT EXISTS filings (
			id BIGSERIAL PRIMARY KEY,
			filename TEXT NOT NULL,
			taxonomy TEXT,
			version TEXT,
			currency TEXT,
			entity_id BIGINT REFERENCES entities(id),
			period_id BIGINT REFERENCES periods(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS facts (
			id BIGSERIAL PRIMARY KEY,
			filing_id BIGINT NOT NULL REFERENCES filings(id) ON DELETE CASCADE,
			concept_qname TEXT NOT NULL,
			canonical_concept TEXT,
			value NUMERIC(24,4),
			decimals INT,
			unit TEXT,
			currency TEXT,
			dimensions JSONB,
			period_start DATE,
			period_end DATE
		)`,
		`CREATE INDEX IF NOT EXISTS facts_filing_idx ON facts (filing_id)`,
		`CREATE INDEX IF NOT EXISTS facts_canonical_idx ON facts (canonical_concept)`,
	}
	for _, stmt := range ddl {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// SaveFiling persists the filing and all its facts in one transaction.
// Entities are deduplicated by identifier, periods by (start, end).
func (s *Postgres) SaveFiling(ctx context.Context, filename string, res *extract.FilingResult) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var entityID *int64
	if ent := res.FirstEntity(); ent != nil && ent.Identifier != "" {
		name := ent.Identifier
		var id int64
		err := tx.QueryRow(ctx, `
			INSERT INTO entities (name, identifier) VALUES ($1, $2)
			ON CONFLICT (identifier) DO UPDATE SET identifier = EXCLUDED.identifier
			RETURNING id`,
			name, ent.Identifier,
		).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("upsert entity: %w", err)
		}
		entityID = &id
	}

	var periodID *int64
	if start, end := res.FirstPeriod(); start != nil && end != nil {
		var id int64
		err := tx.QueryRow(ctx, `
			INSERT INTO periods (start_date, end_date) VALUES ($1, $2)
			ON CONFLICT (start_date, end_date) DO UPDATE SET start_date = EXCLUDED.start_date
			RETURNING id`,
			*start, *end,
		).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("upsert period: %w", err)
		}
		periodID = &id
	}

	var filingID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO filings (filename, taxonomy, version, currency, entity_id, period_id)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), $5, $6)
		RETURNING id`,
		filename, res.Taxonomy, res.Version, res.Currency(), entityID, periodID,
	).Scan(&filingID)
	if err != nil {
		return 0, fmt.Errorf("insert filing: %w", err)
	}

	batch := &pgx.Batch{}
	for i := range res.Facts {
		f := &res.Facts[i]
		dims, err := json.Marshal(f.Dimensions)
		if err != nil {
			return 0, fmt.Errorf("marshal dimensions: %w", err)
		}
		batch.Queue(`
			INSERT INTO facts (filing_id, concept_qname, canonical_concept, value,
				decimals, unit, currency, dimensions, period_start, period_end)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			filingID, f.ConceptQName, f.CanonicalConcept, f.Value,
			f.Decimals, f.Unit, f.Currency, dims, f.PeriodStart, f.PeriodEnd,
		)
	}
	br := tx.SendBatch(ctx, batch)
	for range res.Facts {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return 0, fmt.Errorf("insert fact: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return filingID, nil
}

const filingColumns = `
	f.id, f.filename, COALESCE(f.taxonomy, ''), COALESCE(f.version, ''),
	COALESCE(f.currency, ''), COALESCE(e.name, ''), COALESCE(e.identifier, ''),
	p.start_date, p.end_date,
	(SELECT count(*) FROM facts WHERE filing_id = f.id), f.created_at`

const filingJoins = `
	FROM filings f
	LEFT JOIN entities e ON e.id = f.entity_id
	LEFT JOIN periods p ON p.id = f.period_id`

func scanFiling(row pgx.Row) (*Filing, error) {
	var fl Filing
	err := row.Scan(&fl.ID, &fl.Filename, &fl.Taxonomy, &fl.Version, &fl.Currency,
		&fl.EntityName, &fl.EntityID, &fl.PeriodStart, &fl.PeriodEnd,
		&fl.FactCount, &fl.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &fl, nil
}

func (s *Postgres) ListFilings(ctx context.Context, limit int) ([]Filing, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+filingColumns+filingJoins+` ORDER BY f.created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list filings: %w", err)
	}
	defer rows.Close()

	filings := []Filing{}
	for rows.Next() {
		fl, err := scanFiling(rows)
		if err != nil {
			return nil, fmt.Errorf("scan filing: %w", err)
		}
		filings = append(filings, *fl)
	}
	return filings, rows.Err()
}

func (s *Postgres) GetFiling(ctx context.Context, id int64) (*Filing, error) {
	fl, err := scanFiling(s.pool.QueryRow(ctx,
		`SELECT `+filingColumns+filingJoins+` WHERE f.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get filing: %w", err)
	}
	return fl, nil
}

func (s *Postgres) ListFacts(ctx context.Context, filingID int64) ([]FactRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, concept_qname, canonical_concept, value, decimals, unit,
			currency, dimensions, period_start, period_end
		FROM facts WHERE filing_id = $1 ORDER BY id`, filingID)
	if err != nil {
		return nil, fmt.Errorf("list facts: %w", err)
	}
	defer rows.Close()

	facts := []FactRow{}
	for rows.Next() {
		var fr FactRow
		var dims []byte
		err := rows.Scan(&fr.ID, &fr.ConceptQName, &fr.CanonicalConcept, &fr.Value,
			&fr.Decimals, &fr.Unit, &fr.Currency, &dims, &fr.PeriodStart, &fr.PeriodEnd)
		if err != nil {
			return nil, fmt.Errorf("scan fact: %w", err)
		}
		fr.Dimensions = map[string]string{}
		if len(dims) > 0 {
			if err := json.Unmarshal(dims, &fr.Dimensions); err != nil {
				return nil, fmt.Errorf("unmarshal dimensions: %w", err)
			}
		}
		facts = append(facts, fr)
	}
	return facts, rows.Err()
}

func (s *Postgres) DeleteFiling(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM filings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete filing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Close releases the connection pool.
func (s *Postgres) Close() {
	s.pool.Close()
}

var _ Store = (*Postgres)(nil)
