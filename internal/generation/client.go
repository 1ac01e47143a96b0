// Package generation defines the answer generation client interface and a
// scripted mock for tests.
package generation

import "context"

// Client defines the interface for generating free-text answers from a prompt.
type Client interface {
	// Generate sends the assembled prompt to the model and returns its answer.
	Generate(ctx context.Context, prompt string) (string, error)
}
