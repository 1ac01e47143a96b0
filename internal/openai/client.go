// Package openai provides a thin wrapper around the official OpenAI Go SDK for
// embeddings and chat completions. A custom base URL points the same client at
// any OpenAI-compatible endpoint, including a local Ollama (/v1).
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
)

var (
	// ErrEmptyInput is returned when CreateEmbedding is called with empty input.
	ErrEmptyInput = errors.New("openai: input text is empty")
	// ErrEmptyPrompt is returned when Generate is called with an empty prompt.
	ErrEmptyPrompt = errors.New("openai: prompt is empty")
	// ErrInvalidDims is returned when dimensions is not positive.
	ErrInvalidDims = errors.New("openai: embedding dimensions must be positive")
	// ErrNoEmbeddingInResponse is returned when the API response contains no embedding data.
	ErrNoEmbeddingInResponse = errors.New("openai: no embedding in response")
	// ErrDimensionMismatch is returned when the response embedding length does not match configured dimensions.
	ErrDimensionMismatch = errors.New("openai: embedding dimension mismatch")
	// ErrNoChoicesInResponse is returned when a chat completion contains no choices.
	ErrNoChoicesInResponse = errors.New("openai: no choices in response")
)

const (
	defaultDimension      = 1536
	defaultEmbeddingModel = string(openaisdk.EmbeddingModelTextEmbedding3Small)
	defaultChatModel      = string(openaisdk.ChatModelGPT4oMini)
)

// Client calls the OpenAI embeddings and chat completions APIs via the official SDK.
type Client struct {
	sdk            openaisdk.Client
	dimensions     int
	embeddingModel string
	chatModel      string
}

// ClientOption configures the Client.
type ClientOption func(*Client, *[]option.RequestOption)

// WithDimensions sets the requested embedding dimension (must match the store column).
func WithDimensions(dim int) ClientOption {
	return func(c *Client, _ *[]option.RequestOption) {
		c.dimensions = dim
	}
}

// WithEmbeddingModel sets the embedding model name. Empty uses the default.
func WithEmbeddingModel(model string) ClientOption {
	return func(c *Client, _ *[]option.RequestOption) {
		if model != "" {
			c.embeddingModel = model
		}
	}
}

// WithChatModel sets the chat model used for answer generation. Empty uses the default.
func WithChatModel(model string) ClientOption {
	return func(c *Client, _ *[]option.RequestOption) {
		if model != "" {
			c.chatModel = model
		}
	}
}

// WithBaseURL points the client at an OpenAI-compatible endpoint
// (e.g. http://localhost:11434/v1 for Ollama). Empty keeps the default.
func WithBaseURL(baseURL string) ClientOption {
	return func(_ *Client, reqOpts *[]option.RequestOption) {
		if baseURL != "" {
			*reqOpts = append(*reqOpts, option.WithBaseURL(baseURL))
		}
	}
}

// NewClient creates an OpenAI client using the official SDK. An empty apiKey is
// accepted only by compatible local endpoints; the hosted API rejects it.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	client := &Client{
		dimensions:     defaultDimension,
		embeddingModel: defaultEmbeddingModel,
		chatModel:      defaultChatModel,
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	for _, opt := range opts {
		opt(client, &reqOpts)
	}

	client.sdk = openaisdk.NewClient(reqOpts...)

	return client
}

// CreateEmbedding returns the embedding vector for the given text using the
// configured model. The returned slice length equals the configured dimensions.
func (c *Client) CreateEmbedding(ctx context.Context, input string) ([]float32, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyInput
	}

	if c.dimensions <= 0 {
		return nil, ErrInvalidDims
	}

	resp, err := c.sdk.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfString: param.NewOpt(input),
		},
		Model:      openaisdk.EmbeddingModel(c.embeddingModel),
		Dimensions: param.NewOpt(int64(c.dimensions)),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embedding: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, ErrNoEmbeddingInResponse
	}

	emb := resp.Data[0].Embedding
	if len(emb) != c.dimensions {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(emb), c.dimensions)
	}

	out := make([]float32, len(emb))
	for i := range emb {
		out[i] = float32(emb[i])
	}

	return out, nil
}

// Generate sends the prompt as a single user message to the configured chat
// model and returns the first choice's content.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}

	resp, err := c.sdk.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.UserMessage(prompt),
		},
		Model: openaisdk.ChatModel(c.chatModel),
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoicesInResponse
	}

	return resp.Choices[0].Message.Content, nil
}
