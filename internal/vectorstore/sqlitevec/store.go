// Package sqlitevec implements the vector store on an embedded SQLite file.
// Embeddings are stored as little-endian float32 BLOBs and ranked with
// brute-force cosine similarity in Go, which is plenty for a reviews-sized
// corpus and keeps the store a single local file.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure-Go sqlite driver

	"github.com/slicewise/crust/internal/models"
	"github.com/slicewise/crust/internal/vectorstore"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    id TEXT PRIMARY KEY,
    content TEXT NOT NULL,
    rating REAL NOT NULL,
    review_date TEXT NOT NULL,
    embedding BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS collection_meta (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    populated_at TEXT NOT NULL,
    document_count INTEGER NOT NULL,
    run_id TEXT NOT NULL
);
`

// Store is a SQLite-backed vector store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the store at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store %s: %w", path, err)
	}

	// The store is accessed by one process at a time; a single connection
	// avoids SQLITE_BUSY on concurrent writes from the pool.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure sqlite schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Populated reports whether the completion marker row exists.
func (s *Store) Populated(ctx context.Context) (bool, error) {
	var count int

	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM collection_meta WHERE id = 1`).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("query completion marker: %w", err)
	}

	return count > 0, nil
}

// MarkPopulated writes the completion marker. Call only after BulkInsert succeeded.
func (s *Store) MarkPopulated(ctx context.Context, documentCount int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO collection_meta (id, populated_at, document_count, run_id)
		VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			populated_at = excluded.populated_at,
			document_count = excluded.document_count,
			run_id = excluded.run_id`,
		time.Now().UTC().Format(time.RFC3339), documentCount, uuid.NewString(),
	)
	if err != nil {
		return fmt.Errorf("write completion marker: %w", err)
	}

	return nil
}

// Clear removes all documents and the completion marker.
func (s *Store) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clear: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		return fmt.Errorf("clear documents: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM collection_meta`); err != nil {
		return fmt.Errorf("clear completion marker: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clear: %w", err)
	}

	return nil
}

// BulkInsert adds all documents in a single transaction.
func (s *Store) BulkInsert(ctx context.Context, docs []models.Document) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO documents (id, content, rating, review_date, embedding) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare bulk insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range docs {
		if d.ID == "" {
			return errors.New("bulk insert: document id must be set")
		}

		if _, err := stmt.ExecContext(ctx, d.ID, d.Content, d.Rating, d.Date, encodeEmbedding(d.Embedding)); err != nil {
			return fmt.Errorf("insert document %s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk insert: %w", err)
	}

	return nil
}

// Search ranks all stored documents by cosine similarity to the query embedding
// and returns the topK best, ordered by decreasing score.
func (s *Store) Search(ctx context.Context, embedding []float32, topK int) ([]models.DocumentWithScore, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("search: topK must be positive, got %d", topK)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, content, rating, review_date, embedding FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var scored []models.DocumentWithScore

	for rows.Next() {
		var (
			doc  models.Document
			blob []byte
		)

		if err := rows.Scan(&doc.ID, &doc.Content, &doc.Rating, &doc.Date, &blob); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}

		vec, err := decodeEmbedding(blob)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", doc.ID, err)
		}

		doc.Embedding = vec
		scored = append(scored, models.DocumentWithScore{
			Document: doc,
			Score:    cosineSimilarity(embedding, vec),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	if topK > len(scored) {
		topK = len(scored)
	}

	return scored[:topK], nil
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}

	return n, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close sqlite store: %w", err)
	}

	return nil
}

// encodeEmbedding packs a float32 vector into a little-endian BLOB; length is
// recovered from the BLOB size on decode.
func encodeEmbedding(vec []float32) []byte {
	b := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}

	return b
}

func decodeEmbedding(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding blob length %d (not multiple of 4)", len(b))
	}

	vec := make([]float32, len(b)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}

	return vec, nil
}

// cosineSimilarity returns 0 for mismatched lengths or zero-magnitude inputs
// rather than erroring; a dissimilar score is the right behavior mid-ranking.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, na2, nb2 float64
	for i := range a {
		va := float64(a[i])
		vb := float64(b[i])
		dot += va * vb
		na2 += va * va
		nb2 += vb * vb
	}

	if na2 == 0 || nb2 == 0 {
		return 0
	}

	return dot / (math.Sqrt(na2) * math.Sqrt(nb2))
}

// Ensure Store satisfies the vectorstore interface.
var _ vectorstore.Store = (*Store)(nil)
