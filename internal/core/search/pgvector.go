package search

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mayowa-kalejaiye/docstream/internal/core"
	"github.com/mayowa-kalejaiye/docstream/internal/models"
)

// PgVectorStore is the non-AWS index backend: segments land in a Postgres
// table with a pgvector embedding column instead of an OpenSearch
// collection. Useful for local runs and deployments without a managed
// search service.
type PgVectorStore struct {
	db *sql.DB
}

func NewPgVectorStore(ctx context.Context, databaseURL string, embedDim int) (*PgVectorStore, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}
	if embedDim <= 0 {
		embedDim = 1024
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctxPing, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := db.PingContext(ctxPing); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	s := &PgVectorStore{db: db}
	if err := s.ensureSchema(ctx, embedDim); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PgVectorStore) ensureSchema(ctx context.Context, embedDim int) error {
	ctxBoot, cancel := context.WithTimeout(ctx, 1*time.Minute)
	defer cancel()

	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS kb_segments (
				id                bigserial PRIMARY KEY,
				chunk_id          text NOT NULL,
				doc_id            text NOT NULL,
				source            text NOT NULL,
				content           text NOT NULL,
				content_embedding vector(%d) NOT NULL,
				indexed_at        timestamptz NOT NULL DEFAULT now()
			)`, embedDim),
		`CREATE INDEX IF NOT EXISTS kb_segments_doc_idx ON kb_segments (doc_id)`,
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctxBoot, q); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	return nil
}

// IndexBatch inserts the batch in a single transaction; any failure rolls
// the whole batch back so the caller's all-or-nothing accounting holds.
func (s *PgVectorStore) IndexBatch(ctx context.Context, docs []models.IndexDocument) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	const q = `
		INSERT INTO kb_segments
			(chunk_id, doc_id, source, content, content_embedding)
		VALUES ($1, $2, $3, $4, $5)
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range docs {
		doc := &docs[i]
		vec := pgvector.NewVector(doc.ContentEmbedding)

		if _, err := stmt.ExecContext(ctx,
			doc.Metadata.ChunkID, doc.Metadata.DocID, doc.Metadata.Source, doc.Content, vec,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert segment %s: %w", doc.Metadata.ChunkID, err)
		}
	}
	return tx.Commit()
}

func (s *PgVectorStore) Close() error {
	return s.db.Close()
}

var _ core.Indexer = (*PgVectorStore)(nil)
