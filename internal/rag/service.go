// Package rag answers questions about pizza restaurants by retrieving the most
// similar stored reviews and handing them to a generative model.
package rag

import (
	"context"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/slicewise/crust/internal/embeddings"
	"github.com/slicewise/crust/internal/generation"
	"github.com/slicewise/crust/internal/models"
	"github.com/slicewise/crust/internal/ragerrors"
)

// DefaultTopK is the number of reviews retrieved per question when not
// configured otherwise.
const DefaultTopK = 5

// SearchStore is the slice of the vector store the service needs.
type SearchStore interface {
	Search(ctx context.Context, embedding []float32, topK int) ([]models.DocumentWithScore, error)
}

// Answer is the result of one question: the generated text and the reviews it
// was grounded on, ordered by decreasing similarity.
type Answer struct {
	Text    string
	Sources []models.DocumentWithScore
}

// Service runs the retrieval and generation pipeline for a single question.
type Service struct {
	store     SearchStore
	embedder  embeddings.Client
	generator generation.Client
	logger    *slog.Logger

	topK     int
	minScore float64
	cache    *lru.Cache[string, []float32]
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithTopK sets how many reviews are retrieved per question.
func WithTopK(topK int) ServiceOption {
	return func(s *Service) {
		if topK > 0 {
			s.topK = topK
		}
	}
}

// WithMinScore drops retrieved reviews scoring below the cutoff. Zero (the
// default) disables the cutoff.
func WithMinScore(minScore float64) ServiceOption {
	return func(s *Service) {
		s.minScore = minScore
	}
}

// WithQueryCache caches question embeddings in an LRU of the given size, so a
// repeated question skips the embedding call. A non-positive size disables the
// cache.
func WithQueryCache(size int) ServiceOption {
	return func(s *Service) {
		if size <= 0 {
			return
		}

		// lru.New only fails on a non-positive size, which is excluded above.
		cache, err := lru.New[string, []float32](size)
		if err == nil {
			s.cache = cache
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a Service with the default retrieval settings.
func NewService(store SearchStore, embedder embeddings.Client, generator generation.Client, opts ...ServiceOption) *Service {
	s := &Service{
		store:     store,
		embedder:  embedder,
		generator: generator,
		logger:    slog.Default(),
		topK:      DefaultTopK,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Answer embeds the question, retrieves the topK most similar reviews, and
// generates a reply grounded on them. The question text is passed through
// verbatim; whether it is sensible (or even non-empty) is for the embedding
// provider to judge.
func (s *Service) Answer(ctx context.Context, question string) (Answer, error) {
	vec, err := s.embedQuestion(ctx, question)
	if err != nil {
		return Answer{}, ragerrors.NewEmbeddingServiceError(fmt.Sprintf("embed question: %v", err))
	}

	results, err := s.store.Search(ctx, vec, s.topK)
	if err != nil {
		return Answer{}, ragerrors.NewStoreError("search", fmt.Sprintf("retrieve reviews: %v", err))
	}

	results = s.filterByScore(results)

	s.logger.Debug("retrieved reviews", "count", len(results), "top_k", s.topK)

	text, err := s.generator.Generate(ctx, BuildPrompt(results, question))
	if err != nil {
		return Answer{}, ragerrors.NewGenerationServiceError(fmt.Sprintf("generate answer: %v", err))
	}

	return Answer{Text: text, Sources: results}, nil
}

func (s *Service) embedQuestion(ctx context.Context, question string) ([]float32, error) {
	if s.cache != nil {
		if vec, ok := s.cache.Get(question); ok {
			return vec, nil
		}
	}

	vec, err := s.embedder.CreateEmbedding(ctx, question)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Add(question, vec)
	}

	return vec, nil
}

// filterByScore applies the minimum score cutoff, preserving order.
func (s *Service) filterByScore(results []models.DocumentWithScore) []models.DocumentWithScore {
	if s.minScore <= 0 {
		return results
	}

	filtered := results[:0]
	for _, r := range results {
		if r.Score >= s.minScore {
			filtered = append(filtered, r)
		}
	}

	return filtered
}
