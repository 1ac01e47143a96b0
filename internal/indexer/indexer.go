// Package indexer populates the vector store from the reviews dataset.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/slicewise/crust/internal/embeddings"
	"github.com/slicewise/crust/internal/models"
	"github.com/slicewise/crust/internal/ragerrors"
	"github.com/slicewise/crust/internal/vectorstore"
)

// Stats summarizes one population attempt.
type Stats struct {
	// Indexed is the number of documents embedded and inserted. Zero when the
	// run was skipped or the dataset was empty.
	Indexed int

	// Skipped is true when the store already carried a completion marker and
	// no work was done.
	Skipped bool
}

// Indexer embeds reviews and writes them into a vector store.
type Indexer struct {
	store    vectorstore.Store
	embedder embeddings.Client
	logger   *slog.Logger
	limiter  *rate.Limiter
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Indexer) {
		ix.logger = logger
	}
}

// WithRateLimit caps embedding calls at rps requests per second. A non-positive
// rps leaves embedding unthrottled.
func WithRateLimit(rps float64) Option {
	return func(ix *Indexer) {
		if rps > 0 {
			ix.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// New creates an Indexer writing to store via embedder.
func New(store vectorstore.Store, embedder embeddings.Client, opts ...Option) *Indexer {
	ix := &Indexer{
		store:    store,
		embedder: embedder,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(ix)
	}

	return ix
}

// EnsurePopulated makes the store contain the reviews exactly once. When the
// store already carries a completion marker the call returns immediately with
// Skipped set; otherwise any residue from an interrupted earlier run is cleared
// and the full dataset is embedded and inserted. The marker is written only
// after the insert succeeds, so a failed run is retried from scratch next time.
// An empty dataset still completes and writes the marker.
func (ix *Indexer) EnsurePopulated(ctx context.Context, revs []models.Review) (Stats, error) {
	populated, err := ix.store.Populated(ctx)
	if err != nil {
		return Stats{}, ragerrors.NewStoreError("populated", fmt.Sprintf("check population state: %v", err))
	}

	if populated {
		ix.logger.Info("vector store already populated, skipping indexing")
		return Stats{Skipped: true}, nil
	}

	return ix.populate(ctx, revs)
}

// Reindex rebuilds the store from scratch regardless of its current state.
func (ix *Indexer) Reindex(ctx context.Context, revs []models.Review) (Stats, error) {
	return ix.populate(ctx, revs)
}

func (ix *Indexer) populate(ctx context.Context, revs []models.Review) (Stats, error) {
	if err := ix.store.Clear(ctx); err != nil {
		return Stats{}, ragerrors.NewStoreError("clear", fmt.Sprintf("clear store before indexing: %v", err))
	}

	ix.logger.Info("indexing reviews", "count", len(revs))

	docs, err := ix.buildDocuments(ctx, revs)
	if err != nil {
		return Stats{}, err
	}

	if err := ix.store.BulkInsert(ctx, docs); err != nil {
		return Stats{}, ragerrors.NewStoreError("bulk_insert", fmt.Sprintf("insert %d documents: %v", len(docs), err))
	}

	if err := ix.store.MarkPopulated(ctx, len(docs)); err != nil {
		return Stats{}, ragerrors.NewStoreError("mark_populated", fmt.Sprintf("write completion marker: %v", err))
	}

	ix.logger.Info("indexing complete", "documents", len(docs))

	return Stats{Indexed: len(docs)}, nil
}

// buildDocuments embeds each review sequentially. The document id is the
// decimal row index and the searchable content is the title and body joined
// with a single space.
func (ix *Indexer) buildDocuments(ctx context.Context, revs []models.Review) ([]models.Document, error) {
	docs := make([]models.Document, 0, len(revs))

	for i, rev := range revs {
		if ix.limiter != nil {
			if err := ix.limiter.Wait(ctx); err != nil {
				return nil, ragerrors.NewEmbeddingServiceError(fmt.Sprintf("rate limit wait: %v", err))
			}
		}

		content := rev.Title + " " + rev.Body

		vec, err := ix.embedder.CreateEmbedding(ctx, content)
		if err != nil {
			return nil, ragerrors.NewEmbeddingServiceError(fmt.Sprintf("embed review %d: %v", i, err))
		}

		docs = append(docs, models.Document{
			ID:        strconv.Itoa(i),
			Content:   content,
			Rating:    rev.Rating,
			Date:      rev.Date,
			Embedding: vec,
		})
	}

	return docs, nil
}
