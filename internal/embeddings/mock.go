package embeddings

import (
	"context"
	"crypto/sha256"
	"fmt"
	"math"
)

// MockClient implements the Client interface for testing purposes.
// It generates deterministic embeddings based on the input text hash, so equal
// texts get identical vectors and distinct texts almost surely do not.
type MockClient struct {
	dimensions int
}

// NewMockClient creates a new mock embedding client.
// Default dimensions is 1536 to match OpenAI's text-embedding-3-small.
func NewMockClient() *MockClient {
	return &MockClient{dimensions: 1536}
}

// NewMockClientWithDimensions creates a mock client with custom dimensions.
func NewMockClientWithDimensions(dimensions int) *MockClient {
	return &MockClient{dimensions: dimensions}
}

// CreateEmbedding generates a deterministic embedding based on the text hash.
func (c *MockClient) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}
	return c.generateDeterministicEmbedding(text), nil
}

// generateDeterministicEmbedding creates a normalized embedding vector from the text hash.
func (c *MockClient) generateDeterministicEmbedding(text string) []float32 {
	hash := sha256.Sum256([]byte(text))
	embedding := make([]float32, c.dimensions)

	for i := 0; i < c.dimensions; i++ {
		// Use hash bytes cyclically, mapped into [-1, 1]
		byteIdx := i % len(hash)
		embedding[i] = (float32(hash[byteIdx]) / 127.5) - 1.0
	}

	return normalize(embedding)
}

// normalize normalizes a vector to unit length.
func normalize(v []float32) []float32 {
	var sum float64
	for _, val := range v {
		sum += float64(val * val)
	}
	magnitude := float32(math.Sqrt(sum))

	if magnitude == 0 {
		return v
	}

	normalized := make([]float32, len(v))
	for i, val := range v {
		normalized[i] = val / magnitude
	}
	return normalized
}

// Ensure MockClient implements Client interface
var _ Client = (*MockClient)(nil)
