// Package postgres provides Postgres-backed persistence implementations.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mintoswatch/docwatch/internal/docwatch"
)

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Store wraps a pgx pool and exposes the seen-set and URL cache backends.
type Store struct {
	pool  pgxPool
	clock docwatch.Clock
}

// New creates a Store with a fresh connection pool.
func New(ctx context.Context, dsn string, clock docwatch.Clock) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("store.dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	return NewWithPool(pool, clock)
}

// NewWithPool constructs a Store from an existing pool (primarily for testing).
func NewWithPool(pool pgxPool, clock docwatch.Clock) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if clock == nil {
		return nil, fmt.Errorf("clock is required")
	}
	return &Store{pool: pool, clock: clock}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// EnsureSchema creates the tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS seen_documents (
			company    TEXT NOT NULL,
			id         TEXT NOT NULL,
			title      TEXT NOT NULL,
			url        TEXT NOT NULL,
			doc_type   TEXT NOT NULL,
			country    TEXT NOT NULL DEFAULT '',
			published  TIMESTAMPTZ,
			added_at   TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (company, id)
		);
		CREATE TABLE IF NOT EXISTS scan_history (
			company          TEXT PRIMARY KEY,
			first_scanned_at TIMESTAMPTZ NOT NULL,
			last_scanned_at  TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS url_cache (
			company   TEXT PRIMARY KEY,
			url       TEXT NOT NULL,
			rendered  BOOLEAN NOT NULL,
			stored_at TIMESTAMPTZ NOT NULL
		);
	`
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// Has implements docwatch.SeenStore.
func (s *Store) Has(ctx context.Context, company, identity string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM seen_documents WHERE company = $1 AND id = $2);`
	var exists bool
	if err := s.pool.QueryRow(ctx, query, company, identity).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check seen document: %w", err)
	}
	return exists, nil
}

// Add implements docwatch.SeenStore.
func (s *Store) Add(ctx context.Context, company string, doc docwatch.DocumentRecord) error {
	query := `
		INSERT INTO seen_documents (company, id, title, url, doc_type, country, published, added_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (company, id) DO NOTHING;
	`
	_, err := s.pool.Exec(ctx, query,
		company,
		doc.ID,
		doc.Title,
		doc.URL,
		string(doc.Type),
		doc.Country,
		doc.Published,
		s.clock.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to add seen document: %w", err)
	}
	return nil
}

// Touch implements docwatch.SeenStore.
func (s *Store) Touch(ctx context.Context, company string) error {
	query := `
		INSERT INTO scan_history (company, first_scanned_at, last_scanned_at)
		VALUES ($1, $2, $2)
		ON CONFLICT (company) DO UPDATE
		SET last_scanned_at = EXCLUDED.last_scanned_at;
	`
	if _, err := s.pool.Exec(ctx, query, company, s.clock.Now()); err != nil {
		return fmt.Errorf("failed to touch scan history: %w", err)
	}
	return nil
}

// HasHistory implements docwatch.SeenStore.
func (s *Store) HasHistory(ctx context.Context, company string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM scan_history WHERE company = $1);`
	var exists bool
	if err := s.pool.QueryRow(ctx, query, company).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check scan history: %w", err)
	}
	return exists, nil
}

// Documents implements docwatch.SeenStore.
func (s *Store) Documents(ctx context.Context, company string) ([]docwatch.DocumentRecord, error) {
	query := `
		SELECT id, title, url, doc_type, country, published
		FROM seen_documents
		WHERE company = $1
		ORDER BY added_at, id;
	`
	rows, err := s.pool.Query(ctx, query, company)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []docwatch.DocumentRecord
	for rows.Next() {
		var (
			doc     docwatch.DocumentRecord
			docType string
		)
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.URL, &docType, &doc.Country, &doc.Published); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		doc.Type = docwatch.DocumentType(docType)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read document rows: %w", err)
	}
	return docs, nil
}

// Get implements docwatch.URLCache.
func (s *Store) Get(ctx context.Context, identifier string) (docwatch.CacheEntry, bool, error) {
	query := `SELECT url, rendered, stored_at FROM url_cache WHERE company = $1;`
	var entry docwatch.CacheEntry
	err := s.pool.QueryRow(ctx, query, identifier).Scan(&entry.URL, &entry.Rendered, &entry.StoredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return docwatch.CacheEntry{}, false, nil
		}
		return docwatch.CacheEntry{}, false, fmt.Errorf("failed to get cached url: %w", err)
	}
	return entry, true, nil
}

// Put implements docwatch.URLCache.
func (s *Store) Put(ctx context.Context, identifier string, entry docwatch.CacheEntry) error {
	query := `
		INSERT INTO url_cache (company, url, rendered, stored_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (company) DO UPDATE
		SET url = EXCLUDED.url, rendered = EXCLUDED.rendered, stored_at = EXCLUDED.stored_at;
	`
	if _, err := s.pool.Exec(ctx, query, identifier, entry.URL, entry.Rendered, entry.StoredAt); err != nil {
		return fmt.Errorf("failed to put cached url: %w", err)
	}
	return nil
}
