// Package ragerrors provides sentinel and custom error types for the application.
package ragerrors

// ErrDataLoad represents a dataset loading error.
// Use when the reviews dataset is missing, malformed, or has absent fields.
var ErrDataLoad = &DataLoadError{}

// DataLoadError is a sentinel error for malformed or missing input data.
type DataLoadError struct {
	Path    string
	Message string
}

// NewDataLoadError creates a new DataLoadError with a custom message.
func NewDataLoadError(path, message string) *DataLoadError {
	return &DataLoadError{Path: path, Message: message}
}

// Error implements the error interface.
func (e *DataLoadError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Path != "" {
		return "failed to load dataset " + e.Path
	}

	return "data load error"
}

// Is implements the error interface for error comparison.
func (e *DataLoadError) Is(target error) bool {
	_, ok := target.(*DataLoadError)

	return ok
}

// ErrEmbeddingService represents an embedding service failure.
var ErrEmbeddingService = &EmbeddingServiceError{}

// EmbeddingServiceError is a sentinel error for failed embedding calls.
type EmbeddingServiceError struct {
	Message string
}

// NewEmbeddingServiceError creates an EmbeddingServiceError with a custom message.
func NewEmbeddingServiceError(message string) *EmbeddingServiceError {
	return &EmbeddingServiceError{Message: message}
}

// Error implements the error interface.
func (e *EmbeddingServiceError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	return "embedding service error"
}

// Is implements the error interface for error comparison.
func (e *EmbeddingServiceError) Is(target error) bool {
	_, ok := target.(*EmbeddingServiceError)

	return ok
}

// ErrGenerationService represents a generative model failure.
var ErrGenerationService = &GenerationServiceError{}

// GenerationServiceError is a sentinel error for failed generation calls.
type GenerationServiceError struct {
	Message string
}

// NewGenerationServiceError creates a GenerationServiceError with a custom message.
func NewGenerationServiceError(message string) *GenerationServiceError {
	return &GenerationServiceError{Message: message}
}

// Error implements the error interface.
func (e *GenerationServiceError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	return "generation service error"
}

// Is implements the error interface for error comparison.
func (e *GenerationServiceError) Is(target error) bool {
	_, ok := target.(*GenerationServiceError)

	return ok
}

// ErrStore represents a vector store failure.
var ErrStore = &StoreError{}

// StoreError is a sentinel error for failed vector store operations.
type StoreError struct {
	Op      string
	Message string
}

// NewStoreError creates a StoreError with a custom message.
func NewStoreError(op, message string) *StoreError {
	return &StoreError{Op: op, Message: message}
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Op != "" {
		return "vector store " + e.Op + " failed"
	}

	return "vector store error"
}

// Is implements the error interface for error comparison.
func (e *StoreError) Is(target error) bool {
	_, ok := target.(*StoreError)

	return ok
}
