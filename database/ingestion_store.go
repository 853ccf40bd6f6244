package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"legis-ingest/ingest"
)

// ErrNoPriorRun is returned by FindByHash when no run with the given
// canonical_hash has ever been recorded.
var ErrNoPriorRun = errors.New("database: no prior run for this canonical hash")

// RunRecord is a persisted summary of one completed ingest.Result, keyed
// by canonical_hash so re-ingesting byte-identical PDF bytes is detected
// before the pipeline runs again.
type RunRecord struct {
	ID              uuid.UUID
	DocumentID      string
	CanonicalHash   string
	Status          string
	TotalChunks     int
	TargetDocuments []string
	CreatedAt       time.Time
}

// IngestionStore is a content-hash dedup layer over ingestion runs:
// look up a prior run by canonical_hash before re-running the pipeline,
// and persist the manifest after a successful validation pass.
type IngestionStore struct {
	store *PostgresStore
}

// NewIngestionStore wraps an already-connected PostgresStore.
func NewIngestionStore(store *PostgresStore) *IngestionStore {
	return &IngestionStore{store: store}
}

// FindByHash looks up a prior completed run for canonicalHash. It
// returns ErrNoPriorRun when none exists, letting callers skip
// re-ingestion of bytes they have already processed successfully.
func (s *IngestionStore) FindByHash(ctx context.Context, canonicalHash string) (RunRecord, error) {
	const query = `
		SELECT id, document_id, canonical_hash, status, total_chunks, target_documents, created_at
		FROM ingestion_runs
		WHERE canonical_hash = $1 AND status = 'completed'
	`
	var rec RunRecord
	var targets pq.StringArray
	err := s.store.DB.QueryRowContext(ctx, query, canonicalHash).Scan(
		&rec.ID, &rec.DocumentID, &rec.CanonicalHash, &rec.Status, &rec.TotalChunks, &targets, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, ErrNoPriorRun
		}
		return RunRecord{}, fmt.Errorf("find ingestion run by hash: %w", err)
	}
	rec.TargetDocuments = []string(targets)
	return rec, nil
}

// RecordResult persists an ingest.Result keyed by canonical_hash (a later
// run with the same hash overwrites the row). A result without a
// canonical_hash is not recorded; ingest.Ingest leaves it empty on every
// failed result, so only completed runs are stored.
func (s *IngestionStore) RecordResult(ctx context.Context, result *ingest.Result) error {
	if result.CanonicalHash == "" {
		return nil
	}

	manifestJSON, err := json.Marshal(result.Manifest)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	query := `
		INSERT INTO ingestion_runs (id, document_id, canonical_hash, status, total_chunks, manifest, target_documents, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (canonical_hash)
		DO UPDATE SET status = EXCLUDED.status, total_chunks = EXCLUDED.total_chunks,
		              manifest = EXCLUDED.manifest, target_documents = EXCLUDED.target_documents, created_at = NOW()
	`
	_, err = s.store.DB.ExecContext(ctx, query,
		uuid.New(), result.DocumentID, result.CanonicalHash, string(result.Status),
		result.TotalChunks, string(manifestJSON), pq.StringArray(result.Manifest.ExternalMaterial.TargetDocuments))
	if err != nil {
		return fmt.Errorf("record ingestion run: %w", err)
	}
	return nil
}
