// Package main runs the interactive pizza restaurant review assistant.
//
// On startup the reviews dataset is indexed into the vector store (skipped when
// the store is already populated), then questions are read from stdin until
// the user enters "q".
//
// Environment variables (see internal/config):
//   - LLM_PROVIDER: openai (default) or googleai
//   - OPENAI_API_KEY / OPENAI_BASE_URL: credentials or a compatible endpoint
//     such as Ollama (http://localhost:11434/v1)
//   - GOOGLEAI_API_KEY: Gemini API key
//   - VECTOR_STORE: sqlite (default) or pgvector
//   - STORE_PATH / DATABASE_URL: store location for the chosen backend
//   - REVIEWS_CSV: path to the reviews dataset
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/slicewise/crust/internal/config"
	"github.com/slicewise/crust/internal/embeddings"
	"github.com/slicewise/crust/internal/generation"
	"github.com/slicewise/crust/internal/googleai"
	"github.com/slicewise/crust/internal/indexer"
	"github.com/slicewise/crust/internal/openai"
	"github.com/slicewise/crust/internal/rag"
	"github.com/slicewise/crust/internal/repl"
	"github.com/slicewise/crust/internal/reviews"
	"github.com/slicewise/crust/internal/vectorstore"
	"github.com/slicewise/crust/internal/vectorstore/pgvector"
	"github.com/slicewise/crust/internal/vectorstore/sqlitevec"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Answers go to stdout; logs stay on stderr.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	embedder, generator, err := newProviderClients(ctx, cfg)
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

	stats, err := ix.EnsurePopulated(ctx, revs)
	if err != nil {
		slog.Error("Failed to populate vector store", "error", err)
		os.Exit(1)
	}

	if !stats.Skipped {
		slog.Info("Vector store populated", "documents", stats.Indexed)
	}

	svc := rag.NewService(store, embedder, generator,
		rag.WithTopK(cfg.SearchTopK),
		rag.WithMinScore(cfg.SearchMinScore),
		rag.WithQueryCache(cfg.QueryCacheSize),
	)

	if err := repl.New(svc, os.Stdin, os.Stdout).Run(ctx); err != nil {
		slog.Error("Question loop failed", "error", err)
		os.Exit(1)
	}
}

// newProviderClients builds the embedding and generation clients for the
// configured provider. Both roles are served by the same underlying client.
func newProviderClients(ctx context.Context, cfg *config.Config) (embeddings.Client, generation.Client, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		client := openai.NewClient(cfg.OpenAIAPIKey,
			openai.WithDimensions(cfg.EmbeddingDims),
			openai.WithEmbeddingModel(cfg.EmbeddingModel),
			openai.WithChatModel(cfg.ChatModel),
			openai.WithBaseURL(cfg.OpenAIBaseURL),
		)
		return client, client, nil

	case config.ProviderGoogleAI:
		client, err := googleai.NewClient(ctx, cfg.GoogleAIAPIKey,
			googleai.WithDimensions(cfg.EmbeddingDims),
			googleai.WithEmbeddingModel(cfg.EmbeddingModel),
			googleai.WithChatModel(cfg.ChatModel),
		)
		if err != nil {
			return nil, nil, err
		}
		return client, client, nil

	default:
		return nil, nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// openStore opens the configured vector store backend.
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
