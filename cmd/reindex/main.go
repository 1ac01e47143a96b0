// Package main rebuilds the vector store from the reviews dataset, replacing
// whatever it currently holds.
//
// Usage:
//
//	./bin/reindex [-csv path/to/reviews.csv]
//
// The -csv flag overrides REVIEWS_CSV. Provider and store selection follow the
// same environment variables as the main binary.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/slicewise/crust/internal/config"
	"github.com/slicewise/crust/internal/embeddings"
	"github.com/slicewise/crust/internal/googleai"
	"github.com/slicewise/crust/internal/indexer"
	"github.com/slicewise/crust/internal/openai"
	"github.com/slicewise/crust/internal/reviews"
	"github.com/slicewise/crust/internal/vectorstore"
	"github.com/slicewise/crust/internal/vectorstore/pgvector"
	"github.com/slicewise/crust/internal/vectorstore/sqlitevec"
)

func main() {
	csvPath := flag.String("csv", "", "path to the reviews dataset (overrides REVIEWS_CSV)")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	if *csvPath != "" {
		cfg.ReviewsCSV = *csvPath
	}

	embedder, err := newEmbedder(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize LLM provider", "provider", cfg.Provider, "error", err)
		os.Exit(1)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("Failed to open vector store", "backend", cfg.VectorStore, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	revs, err := reviews.LoadCSV(cfg.ReviewsCSV)
	if err != nil {
		slog.Error("Failed to load reviews dataset", "path", cfg.ReviewsCSV, "error", err)
		os.Exit(1)
	}

	ix := indexer.New(store, embedder, indexer.WithRateLimit(cfg.EmbeddingRPS))

	stats, err := ix.Reindex(ctx, revs)
	if err != nil {
		slog.Error("Reindex failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Reindexed %d documents from %s\n", stats.Indexed, cfg.ReviewsCSV)
}

func newEmbedder(ctx context.Context, cfg *config.Config) (embeddings.Client, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return openai.NewClient(cfg.OpenAIAPIKey,
			openai.WithDimensions(cfg.EmbeddingDims),
			openai.WithEmbeddingModel(cfg.EmbeddingModel),
			openai.WithBaseURL(cfg.OpenAIBaseURL),
		), nil

	case config.ProviderGoogleAI:
		return googleai.NewClient(ctx, cfg.GoogleAIAPIKey,
			googleai.WithDimensions(cfg.EmbeddingDims),
			googleai.WithEmbeddingModel(cfg.EmbeddingModel),
		)

	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (vectorstore.Store, error) {
	switch cfg.VectorStore {
	case config.StoreSQLite:
		return sqlitevec.Open(cfg.StorePath)

	case config.StorePgvector:
		pool, err := pgvector.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return pgvector.Open(ctx, pool, cfg.EmbeddingDims)

	default:
		return nil, fmt.Errorf("unknown vector store %q", cfg.VectorStore)
	}
}
