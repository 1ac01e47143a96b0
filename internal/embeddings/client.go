// Package embeddings defines the text embedding client interface and a
// deterministic mock for tests.
package embeddings

import "context"

// Client defines the interface for generating text embeddings.
type Client interface {
	// CreateEmbedding generates an embedding vector for the given text.
	// Returns a slice of float32 values representing the embedding.
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}
