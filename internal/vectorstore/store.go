// Package vectorstore defines the persistent vector store interface shared by
// the SQLite and Postgres/pgvector backends.
package vectorstore

import (
	"context"

	"github.com/slicewise/crust/internal/models"
)

// Store persists embedded documents and answers nearest-neighbor queries.
//
// Population status is explicit state, not an artifact of the storage location
// existing: Populated reports true only after MarkPopulated has been called,
// which callers do strictly after a successful BulkInsert. A run that dies
// between creating the location and finishing inserts therefore leaves the
// store unpopulated and the next run starts over.
type Store interface {
	// Populated reports whether the collection carries a completion marker.
	Populated(ctx context.Context) (bool, error)

	// MarkPopulated writes the completion marker with the final document count.
	MarkPopulated(ctx context.Context, documentCount int) error

	// Clear removes all documents and the completion marker.
	Clear(ctx context.Context) error

	// BulkInsert adds all documents in one call. Document IDs must be unique.
	BulkInsert(ctx context.Context, docs []models.Document) error

	// Search returns up to topK documents ordered by decreasing similarity to
	// the query embedding. Scores are cosine similarity in [0, 1]-ish range
	// (store metric). An empty store yields an empty result, not an error.
	Search(ctx context.Context, embedding []float32, topK int) ([]models.DocumentWithScore, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Close releases the underlying database handle.
	Close() error
}
