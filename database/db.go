// Package database provides the optional audit/idempotency layer for
// ingested documents. It sits outside the pure pipeline contract
// boundary: the pipeline itself never imports this package, and nothing
// here feeds back into ingest's pipeline logic. A caller wires the two
// together.
package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore is the connection handle every store method hangs off
// of.
type PostgresStore struct {
	DB *sql.DB
}

// NewPostgresStore opens and pings a Postgres connection using the pgx
// stdlib driver.
func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{DB: db}, nil
}

// EnsureSchema creates the ingestion_runs table if it does not already
// exist. It is safe to call on every startup.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ingestion_runs (
            id UUID PRIMARY KEY,
            document_id TEXT NOT NULL,
            canonical_hash TEXT NOT NULL,
            status TEXT NOT NULL,
            total_chunks INT NOT NULL DEFAULT 0,
            manifest JSONB NOT NULL DEFAULT '{}'::jsonb,
            target_documents TEXT[] DEFAULT '{}'::TEXT[],
            created_at TIMESTAMPTZ DEFAULT NOW()
        )`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_ingestion_runs_canonical_hash ON ingestion_runs(canonical_hash)`,
		`CREATE INDEX IF NOT EXISTS idx_ingestion_runs_document_id ON ingestion_runs(document_id)`,
	}

	for _, stmt := range stmts {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}
