package rag

import (
	"fmt"
	"strings"

	"github.com/slicewise/crust/internal/models"
)

// promptTemplate frames the retrieved reviews and the user question for the
// generative model. The wording is part of the product behavior; change it only
// together with the snapshot test.
const promptTemplate = `
You are an expert in answering questions about pizza restaurants.

Here are some relevant reviews about pizza restaurants:
%s

Here is a question about pizza restaurants: %s

Try to be helpful but concise in your answer.
`

// BuildPrompt renders the full prompt for a question with its retrieved
// reviews.
func BuildPrompt(docs []models.DocumentWithScore, question string) string {
	return fmt.Sprintf(promptTemplate, formatDocuments(docs), question)
}

// formatDocuments serializes retrieved reviews one per line, rating and date
// first so the model can weigh them.
func formatDocuments(docs []models.DocumentWithScore) string {
	if len(docs) == 0 {
		return ""
	}

	lines := make([]string, 0, len(docs))

	for _, d := range docs {
		lines = append(lines, fmt.Sprintf("- [rating %g, %s] %s", d.Document.Rating, d.Document.Date, d.Document.Content))
	}

	return strings.Join(lines, "\n")
}
