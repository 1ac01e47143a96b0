// Package pgvector implements the vector store on PostgreSQL with the pgvector
// extension. Embeddings live in a halfvec column (2 bytes per dimension) and
// nearest neighbors are ordered by cosine distance (<=>), score = 1 - distance.
package pgvector

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvec "github.com/pgvector/pgvector-go"
	pgvecpgx "github.com/pgvector/pgvector-go/pgx"

	"github.com/slicewise/crust/internal/models"
	"github.com/slicewise/crust/internal/vectorstore"
)

const collectionName = "restaurant_reviews"

// Store is a Postgres/pgvector-backed vector store.
type Store struct {
	db         *pgxpool.Pool
	dimensions int
}

// NewPool creates a pgx connection pool with pgvector types registered on each
// connection, and verifies connectivity with a ping.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgvecpgx.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// Open ensures the pgvector extension and schema exist and returns the store.
// dimensions fixes the halfvec column width and must match the embedding model.
func Open(ctx context.Context, db *pgxpool.Pool, dimensions int) (*Store, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("pgvector store: dimensions must be positive, got %d", dimensions)
	}

	if _, err := db.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return nil, fmt.Errorf("ensure pgvector extension: %w", err)
	}

	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			rating DOUBLE PRECISION NOT NULL,
			review_date TEXT NOT NULL,
			embedding halfvec(%d) NOT NULL
		)`, dimensions)
	if _, err := db.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("ensure documents table: %w", err)
	}

	_, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS collections (
			name TEXT PRIMARY KEY,
			populated_at TIMESTAMPTZ NOT NULL,
			document_count INT NOT NULL,
			run_id UUID NOT NULL
		)`)
	if err != nil {
		return nil, fmt.Errorf("ensure collections table: %w", err)
	}

	return &Store{db: db, dimensions: dimensions}, nil
}

// Populated reports whether the collection carries a completion marker.
func (s *Store) Populated(ctx context.Context) (bool, error) {
	var exists bool

	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM collections WHERE name = $1)`, collectionName,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query completion marker: %w", err)
	}

	return exists, nil
}

// MarkPopulated writes the completion marker. Call only after BulkInsert succeeded.
func (s *Store) MarkPopulated(ctx context.Context, documentCount int) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO collections (name, populated_at, document_count, run_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET
			populated_at = EXCLUDED.populated_at,
			document_count = EXCLUDED.document_count,
			run_id = EXCLUDED.run_id`,
		collectionName, time.Now().UTC(), documentCount, uuid.New(),
	)
	if err != nil {
		return fmt.Errorf("write completion marker: %w", err)
	}

	return nil
}

// Clear removes all documents and the completion marker.
func (s *Store) Clear(ctx context.Context) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin clear: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM documents`); err != nil {
		return fmt.Errorf("clear documents: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM collections WHERE name = $1`, collectionName); err != nil {
		return fmt.Errorf("clear completion marker: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit clear: %w", err)
	}

	return nil
}

// BulkInsert adds all documents in a single transaction.
func (s *Store) BulkInsert(ctx context.Context, docs []models.Document) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin bulk insert: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, d := range docs {
		if len(d.Embedding) != s.dimensions {
			return fmt.Errorf("document %s: embedding has %d dimensions, store expects %d", d.ID, len(d.Embedding), s.dimensions)
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO documents (id, content, rating, review_date, embedding)
			VALUES ($1, $2, $3, $4, $5)`,
			d.ID, d.Content, d.Rating, d.Date, pgvec.NewHalfVector(d.Embedding),
		)
		if err != nil {
			return fmt.Errorf("insert document %s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit bulk insert: %w", err)
	}

	return nil
}

// Search returns up to topK documents ordered by cosine distance to the query
// embedding, with score = 1 - distance.
func (s *Store) Search(ctx context.Context, embedding []float32, topK int) ([]models.DocumentWithScore, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("search: topK must be positive, got %d", topK)
	}

	queryVec := pgvec.NewHalfVector(embedding)

	rows, err := s.db.Query(ctx, `
		SELECT id, content, rating, review_date, (1 - (embedding <=> $1)) AS score
		FROM documents
		ORDER BY embedding <=> $1
		LIMIT $2`, queryVec, topK)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []models.DocumentWithScore

	for rows.Next() {
		var row models.DocumentWithScore

		if err := rows.Scan(&row.Document.ID, &row.Document.Content, &row.Document.Rating, &row.Document.Date, &row.Score); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}

		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating results: %w", err)
	}

	return results, nil
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}

	return n, nil
}

// Close closes the underlying pool.
func (s *Store) Close() error {
	s.db.Close()

	return nil
}

// Ensure Store satisfies the vectorstore interface.
var _ vectorstore.Store = (*Store)(nil)
