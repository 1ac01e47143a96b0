// Package models defines the core data types shared across the application.
package models

// Review is one raw row of the reviews dataset. Rows are read once at indexing
// time and never mutated.
type Review struct {
	Title  string
	Body   string
	Rating float64
	Date   string
}

// Document is the indexed form of a review: a stable id, the searchable text,
// and the metadata carried into the vector store. ID is the decimal row index
// of the source review and never changes between runs.
type Document struct {
	ID        string
	Content   string
	Rating    float64
	Date      string
	Embedding []float32
}

// DocumentWithScore is one retrieval result: the stored document and its
// similarity score (0..1, higher is more similar).
type DocumentWithScore struct {
	Document Document
	Score    float64
}
