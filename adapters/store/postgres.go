package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"golens/domain/core"
	"golens/internal/errors"
	"golens/ports"
)

// explainerSchema creates the blob table. Idempotent.
const explainerSchema = `
CREATE TABLE IF NOT EXISTS golens_explainers (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	blob       BYTEA NOT NULL,
	size_bytes INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresStore persists explainer blobs in PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore wraps an open sqlx handle.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgresStore connects to url and ensures the schema exists.
func OpenPostgresStore(ctx context.Context, url string) (*PostgresStore, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	s := &PostgresStore{db: db}
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the blob table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, explainerSchema); err != nil {
		return fmt.Errorf("creating explainer table: %w", err)
	}
	return nil
}

// Put upserts one blob.
func (s *PostgresStore) Put(ctx context.Context, id core.ExplainerID, name string, blob []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO golens_explainers (id, name, blob, size_bytes)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = $2, blob = $3, size_bytes = $4
	`, id.String(), name, blob, len(blob))
	if err != nil {
		return fmt.Errorf("storing explainer blob: %w", err)
	}
	return nil
}

// Get reads one blob back.
func (s *PostgresStore) Get(ctx context.Context, id core.ExplainerID) ([]byte, error) {
	var blob []byte
	err := s.db.GetContext(ctx, &blob, `SELECT blob FROM golens_explainers WHERE id = $1`, id.String())
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("explainer " + id.String())
	}
	if err != nil {
		return nil, fmt.Errorf("loading explainer blob: %w", err)
	}
	return blob, nil
}

// List returns metadata for every stored blob, oldest first.
func (s *PostgresStore) List(ctx context.Context) ([]ports.StoredExplainer, error) {
	var out []ports.StoredExplainer
	err := s.db.SelectContext(ctx, &out, `
		SELECT id, name, size_bytes, created_at
		FROM golens_explainers
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing explainer blobs: %w", err)
	}
	return out, nil
}

// Delete removes one blob. Deleting a missing blob is not an error.
func (s *PostgresStore) Delete(ctx context.Context, id core.ExplainerID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM golens_explainers WHERE id = $1`, id.String()); err != nil {
		return fmt.Errorf("deleting explainer blob: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
