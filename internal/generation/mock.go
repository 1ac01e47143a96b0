package generation

import (
	"context"
	"fmt"
)

// MockClient implements the Client interface for testing purposes. When
// GenerateFunc is set it is called; otherwise a canned answer echoing the
// prompt length is returned.
type MockClient struct {
	GenerateFunc func(ctx context.Context, prompt string) (string, error)

	// Prompts records every prompt passed to Generate, in order.
	Prompts []string
}

// Generate implements Client.
func (c *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	c.Prompts = append(c.Prompts, prompt)

	if c.GenerateFunc != nil {
		return c.GenerateFunc(ctx, prompt)
	}

	return fmt.Sprintf("mock answer (%d prompt bytes)", len(prompt)), nil
}

// Ensure MockClient implements Client interface
var _ Client = (*MockClient)(nil)
