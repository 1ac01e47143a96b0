package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slicewise/crust/internal/models"
)

func TestBuildPrompt(t *testing.T) {
	docs := []models.DocumentWithScore{
		{
			Document: models.Document{ID: "0", Content: "Great crust Best thin crust in town", Rating: 5, Date: "2024-01-01"},
			Score:    0.91,
		},
		{
			Document: models.Document{ID: "7", Content: "Slow delivery Pie arrived cold", Rating: 2.5, Date: "2024-02-02"},
			Score:    0.64,
		},
	}

	got := BuildPrompt(docs, "Which place has the best crust?")

	want := `
You are an expert in answering questions about pizza restaurants.

Here are some relevant reviews about pizza restaurants:
- [rating 5, 2024-01-01] Great crust Best thin crust in town
- [rating 2.5, 2024-02-02] Slow delivery Pie arrived cold

Here is a question about pizza restaurants: Which place has the best crust?

Try to be helpful but concise in your answer.
`

	assert.Equal(t, want, got)
}

func TestBuildPromptNoReviews(t *testing.T) {
	got := BuildPrompt(nil, "Is anywhere open late?")

	want := `
You are an expert in answering questions about pizza restaurants.

Here are some relevant reviews about pizza restaurants:


Here is a question about pizza restaurants: Is anywhere open late?

Try to be helpful but concise in your answer.
`

	assert.Equal(t, want, got)
}
